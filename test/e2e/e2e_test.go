// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/api"
	"sales-assistant/internal/classifier"
	"sales-assistant/internal/common/camunda"
	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/conversation"
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
	"sales-assistant/internal/workflow"
	draftoutreach "sales-assistant/internal/workers/communication/draft-outreach"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	findprospects "sales-assistant/internal/workers/prospecting/find-prospects"
	routerequest "sales-assistant/internal/workers/routing/route-request"
	"sales-assistant/pkg/registry"
)

// ==========================
// Test Configuration
// ==========================

const zeebeAddressEnv = "E2E_ZEEBE_ADDRESS"

type stack struct {
	engine   *workflow.Engine
	port     *classifier.Static
	store    *dataset.Store
	server   *httptest.Server
	handlers map[string]camunda.JobHandler
}

type turnView struct {
	Route       string `json:"route"`
	UserSegment string `json:"userSegment"`
	Payload     struct {
		Kind       string           `json:"kind"`
		Candidates []map[string]any `json:"candidates"`
		Report     map[string]any   `json:"report"`
		Brief      map[string]any   `json:"brief"`
		Status     *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"status"`
		Partial bool `json:"partial"`
	} `json:"payload"`
	States []string `json:"states"`
}

// ==========================
// Setup
// ==========================

func repoPath(t *testing.T, rel string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "..", rel))
	require.NoError(t, err)
	return p
}

func scriptedClassifier() *classifier.Static {
	return classifier.NewStatic(`{"filters":[]}`).
		On("Current message: Find", "SALESREP|prospecting").
		On("Current message: Analyze", "SALESREP|insights").
		On("Current message: Draft", "DEMANDGEN|communication").
		On("Current message: Bye", "SALESREP|end").
		On("Query: Find computer contractors in Texas",
			`{"filters":[{"field":"State","operator":"equals","value":"TX"},{"field":"Primary Category","operator":"contains","value":"Computer"}]}`).
		On("Message: Analyze Alamo", `{"business_name":"Alamo Tech Repair"}`).
		On("Message: Draft", `{"business_name":"Lone Star PCs"}`)
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log := logger.NewTestLogger(t)

	loader, err := dataset.NewLoader(config.DatasetConfig{
		Source: "file",
		Path:   repoPath(t, "configs/sample-prospects.json"),
	}, dataset.Sources{}, log)
	require.NoError(t, err)
	store, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, store.Len())

	reg, err := registry.LoadRegistry(repoPath(t, "configs/task-registry.json"))
	require.NoError(t, err)

	port := scriptedClassifier()

	router := routerequest.NewHandler(routerequest.LoadConfig(), port, log).WithRegistry(reg)
	find := findprospects.NewHandler(findprospects.LoadConfig(), port, store, log).WithRegistry(reg)
	analyze := analyzeprospect.NewHandler(analyzeprospect.LoadConfig(), port, store, log).WithRegistry(reg)
	draft := draftoutreach.NewHandler(draftoutreach.LoadConfig(), port, store, log).WithRegistry(reg)

	engine := workflow.NewEngine(workflow.Config{
		MaxIterations: 10,
		Timeout:       30 * time.Second,
		HistoryWindow: 3,
		Classifier:    "static",
	}, workflow.Deps{
		Router:        router,
		Prospecting:   find,
		Insights:      analyze,
		Communication: draft,
		Conversation:  conversation.New(conversation.DefaultMaxEntries),
		Store:         store,
	}, log)

	srv := httptest.NewServer(api.NewRouter(engine, 30*time.Second, log))
	t.Cleanup(srv.Close)

	return &stack{
		engine: engine,
		port:   port,
		store:  store,
		server: srv,
		handlers: map[string]camunda.JobHandler{
			workflow.TaskType:        workflow.NewTurnHandler(engine, log).WithRegistry(reg),
			routerequest.TaskType:    router,
			findprospects.TaskType:   find,
			analyzeprospect.TaskType: analyze,
			draftoutreach.TaskType:   draft,
		},
	}
}

func (s *stack) turn(t *testing.T, query string) turnView {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	resp, err := http.Post(s.server.URL+"/v1/turns", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out turnView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *stack) routerPrompts() []string {
	var out []string
	for _, p := range s.port.Prompts() {
		if strings.Contains(p, "Current message: ") {
			out = append(out, p)
		}
	}
	return out
}

// ==========================
// Conversation Journey
// ==========================

func TestConversationJourney(t *testing.T) {
	s := newStack(t)

	t.Run("find prospects", func(t *testing.T) {
		res := s.turn(t, "Find computer contractors in Texas")
		assert.Equal(t, "prospecting", res.Route)
		assert.Equal(t, "SalesRep", res.UserSegment)
		assert.Equal(t, []string{"start", "prospecting", "end"}, res.States)
		require.NotEmpty(t, res.Payload.Candidates)
		for _, c := range res.Payload.Candidates {
			assert.Contains(t, c["Location"], "TX")
			assert.NotEqual(t, "Gulf Coast Plumbing", c["Prospect Business Name"])
		}
	})

	t.Run("analyze a named prospect", func(t *testing.T) {
		res := s.turn(t, "Analyze Alamo Tech Repair")
		assert.Equal(t, "insights", res.Route)
		require.NotNil(t, res.Payload.Report)
		assert.Equal(t, "Alamo Tech Repair", res.Payload.Report["Prospect Business Name"])
		assert.Contains(t, res.Payload.Report, "SWOT Analysis")
		assert.Contains(t, res.Payload.Report, "Engagement Strategy")
	})

	t.Run("draft outreach", func(t *testing.T) {
		res := s.turn(t, "Draft an email for Lone Star PCs")
		assert.Equal(t, "communication", res.Route)
		assert.Equal(t, "DemandGen", res.UserSegment)
		require.NotNil(t, res.Payload.Brief)
		assert.Equal(t, "Lone Star PCs", res.Payload.Brief["businessName"])
	})

	t.Run("router sees recent history", func(t *testing.T) {
		prompts := s.routerPrompts()
		require.Len(t, prompts, 3)
		last := prompts[len(prompts)-1]
		assert.Contains(t, last, "Find computer contractors in Texas")
		assert.Contains(t, last, "Analyze Alamo Tech Repair")
	})

	t.Run("goodbye terminates", func(t *testing.T) {
		res := s.turn(t, "Bye for now")
		assert.Equal(t, "end", res.Route)
		require.NotNil(t, res.Payload.Status)
		assert.Equal(t, []string{"start", "end"}, res.States)
	})

	t.Run("context holds every turn", func(t *testing.T) {
		resp, err := http.Get(s.server.URL + "/v1/context")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var view struct {
			Entries []struct {
				Query string `json:"query"`
			} `json:"entries"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		require.Len(t, view.Entries, 4)
		assert.Equal(t, "Find computer contractors in Texas", view.Entries[0].Query)
		assert.Equal(t, "Bye for now", view.Entries[3].Query)
	})

	t.Run("clear context", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, s.server.URL+"/v1/context", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 0, s.engine.Conversation().Len())
		assert.Equal(t, models.SegmentUnknown, s.engine.Conversation().Segment())
	})
}

func TestUnknownProspect(t *testing.T) {
	s := newStack(t)

	res := s.turn(t, "Analyze somebody we never heard of")
	assert.Equal(t, "insights", res.Route)
	require.NotNil(t, res.Payload.Status)
	assert.Nil(t, res.Payload.Report)
}

func TestReadiness(t *testing.T) {
	s := newStack(t)

	resp, err := http.Get(s.server.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ready workflow.Readiness
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.True(t, ready.Ready)
	assert.Equal(t, 8, ready.DatasetRecords)
	assert.Equal(t, "static", ready.Classifier)
}

// ==========================
// Workflow Engine (broker required)
// ==========================

func zeebeClient(t *testing.T) zbc.Client {
	t.Helper()
	addr := os.Getenv(zeebeAddressEnv)
	if addr == "" {
		t.Skipf("%s not set, skipping broker test", zeebeAddressEnv)
	}
	c, err := camunda.NewClient(addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.HealthCheck(ctx))
	return c.GetClient()
}

func startWorkers(t *testing.T, client zbc.Client, s *stack, taskTypes ...string) {
	t.Helper()
	log := logger.NewTestLogger(t)
	wcfg := config.WorkerConfig{Enabled: true, MaxJobsActive: 2, Timeout: 30000, MaxRetries: 1}
	for _, tt := range taskTypes {
		h, ok := s.handlers[tt]
		require.True(t, ok, "no handler for %s", tt)
		w := camunda.StartWorker(client, tt, wcfg, h, log)
		t.Cleanup(func() { w.Close(); w.AwaitClose() })
	}
}

func runProcess(t *testing.T, client zbc.Client, file, processID string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := client.NewDeployResourceCommand().AddResourceFile(repoPath(t, filepath.Join("bpmn", file))).Send(ctx)
	require.NoError(t, err)

	cmd, err := client.NewCreateInstanceCommand().BPMNProcessId(processID).LatestVersion().VariablesFromMap(vars)
	require.NoError(t, err)
	res, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.GetVariables()), &out))
	return out
}

func TestZeebeRunTurn(t *testing.T) {
	client := zeebeClient(t)
	s := newStack(t)
	startWorkers(t, client, s, workflow.TaskType)

	vars := runProcess(t, client, "sales-turn.bpmn", "sales-turn", map[string]interface{}{
		"query": "Find computer contractors in Texas",
	})
	assert.Equal(t, "prospecting", vars["route"])
	payload, ok := vars["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(models.PayloadCandidates), payload["kind"])
}

func TestZeebeRoutedTurn(t *testing.T) {
	client := zeebeClient(t)
	s := newStack(t)
	startWorkers(t, client, s,
		routerequest.TaskType,
		findprospects.TaskType,
		analyzeprospect.TaskType,
		draftoutreach.TaskType,
	)

	tests := []struct {
		name    string
		query   string
		route   string
		wantVar string
	}{
		{name: "prospecting", query: "Find computer contractors in Texas", route: "prospecting", wantVar: "candidates"},
		{name: "insights", query: "Analyze Alamo Tech Repair", route: "insights", wantVar: "report"},
		{name: "communication", query: "Draft an email for Lone Star PCs", route: "communication", wantVar: "brief"},
		{name: "terminate", query: "Bye", route: "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := runProcess(t, client, "sales-routed-turn.bpmn", "sales-routed-turn", map[string]interface{}{
				"query": tt.query,
			})
			assert.Equal(t, tt.route, vars["route"])
			if tt.wantVar != "" {
				assert.Contains(t, vars, tt.wantVar)
			}
		})
	}
}
