package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
classifier:
  provider: static
dataset:
  source: file
  path: testdata/prospects.json
workers:
  sales-run-turn:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sales-assistant", cfg.App.Name)
	assert.Equal(t, 10, cfg.Conversation.MaxEntries)
	assert.Equal(t, 3, cfg.Conversation.HistoryWindow)
	assert.Equal(t, 10, cfg.Budget.MaxIterations)
	assert.Equal(t, 30000, cfg.Budget.Timeout)
	assert.Equal(t, "Data", cfg.Dataset.Sheet)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "Best Regards", cfg.Outreach.SignOff)

	w := cfg.Workers["sales-run-turn"]
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CLASSIFIER_KEY", "secret-key")
	path := writeConfig(t, `
classifier:
  provider: http
  base_url: http://localhost:9999/v1
  api_key: ${TEST_CLASSIFIER_KEY}
dataset:
  path: data.xlsx
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.Classifier.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "http provider without base url",
			body:    "classifier:\n  provider: http\ndataset:\n  path: x.csv\n",
			wantErr: "classifier.base_url",
		},
		{
			name:    "unknown provider",
			body:    "classifier:\n  provider: carrier-pigeon\ndataset:\n  path: x.csv\n",
			wantErr: "not supported",
		},
		{
			name:    "file source without path",
			body:    "classifier:\n  provider: static\n",
			wantErr: "dataset.path",
		},
		{
			name:    "camunda enabled without broker",
			body:    "classifier:\n  provider: static\ndataset:\n  path: x.csv\ncamunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATASET_PATH", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"sales-find-prospects": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "sales-find-prospects"))
	assert.True(t, IsWorkerEnabled(cfg, "sales-analyze-prospect"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "sales-find-prospects").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
}
