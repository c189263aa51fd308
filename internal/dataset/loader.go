package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/database"
	"sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"

	"github.com/doug-martin/goqu/v9"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/xuri/excelize/v2"
)

// Loader produces a Store from some backing source.
type Loader interface {
	Load(ctx context.Context) (*Store, error)
}

// Sources holds the optional clients a loader may need.
type Sources struct {
	Postgres      *database.PostgresClient
	Elasticsearch *database.ElasticsearchClient
}

// NewLoader picks the loader for cfg.Source.
func NewLoader(cfg config.DatasetConfig, src Sources, log logger.Logger) (Loader, error) {
	switch cfg.Source {
	case "", "file":
		return &FileLoader{Path: cfg.Path, Sheet: cfg.Sheet, HeaderRow: cfg.HeaderRow, logger: log}, nil
	case "postgres":
		if src.Postgres == nil {
			return nil, fmt.Errorf("postgres dataset source requires a postgres client")
		}
		return &PostgresLoader{Client: src.Postgres, Table: cfg.Table, logger: log}, nil
	case "elasticsearch":
		if src.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch dataset source requires an elasticsearch client")
		}
		return &ElasticsearchLoader{Client: src.Elasticsearch, Index: cfg.Index, logger: log}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset source %q", cfg.Source)
	}
}

func finish(source string, headers []string, rows [][]string, log logger.Logger) (*Store, error) {
	records, columns := Normalize(headers, rows)
	if len(records) == 0 {
		return nil, errors.NewDatasetEmptyError(source)
	}
	log.Info("dataset loaded", map[string]interface{}{
		"source":  source,
		"rawRows": len(rows),
		"records": len(records),
		"columns": len(columns),
	})
	return NewStore(records, columns), nil
}

// ==========================
// File (xlsx, csv, json)
// ==========================

type FileLoader struct {
	Path      string
	Sheet     string
	HeaderRow int
	logger    logger.Logger
}

func (l *FileLoader) Load(_ context.Context) (*Store, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".xlsx", ".xlsm":
		headers, rows, err = l.readSpreadsheet()
	case ".csv":
		headers, rows, err = readCSV(l.Path)
	case ".json":
		headers, rows, err = readJSON(l.Path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(l.Path))
	}
	if err != nil {
		return nil, errors.NewDatasetLoadFailedError(l.Path, err)
	}
	return finish(l.Path, headers, rows, l.logger)
}

func (l *FileLoader) readSpreadsheet() ([]string, [][]string, error) {
	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheet := l.Sheet
	if sheet == "" {
		sheet = "Data"
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(all) <= l.HeaderRow {
		return nil, nil, fmt.Errorf("sheet %q has no header at row %d", sheet, l.HeaderRow)
	}
	return all[l.HeaderRow], all[l.HeaderRow+1:], nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty csv")
	}
	return all[0], all[1:], nil
}

func readJSON(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var docs []map[string]interface{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, nil, err
	}
	headers, rows := tabulate(docs)
	return headers, rows, nil
}

// tabulate flattens documents into a table. Headers are the sorted union of keys.
func tabulate(docs []map[string]interface{}) ([]string, [][]string) {
	seen := map[string]bool{}
	var headers []string
	for _, d := range docs {
		for k := range d {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	rows := make([][]string, len(docs))
	for i, d := range docs {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = cellString(d[h])
		}
		rows[i] = row
	}
	return headers, rows
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// ==========================
// Postgres
// ==========================

type PostgresLoader struct {
	Client *database.PostgresClient
	Table  string
	logger logger.Logger
}

func (l *PostgresLoader) Load(ctx context.Context) (*Store, error) {
	query, args, err := goqu.Dialect("postgres").
		From(l.Table).
		Select(goqu.Star()).
		ToSQL()
	if err != nil {
		return nil, errors.NewDatasetLoadFailedError(l.Table, err)
	}

	rows, err := l.Client.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError(query, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError(query, err)
	}

	var table [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(headers))
		dest := make([]interface{}, len(headers))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.NewQueryExecutionFailedError(query, err)
		}
		row := make([]string, len(headers))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError(query, err)
	}

	return finish("postgres:"+l.Table, headers, table, l.logger)
}

// ==========================
// Elasticsearch
// ==========================

const maxIndexDocs = 10000

type ElasticsearchLoader struct {
	Client *database.ElasticsearchClient
	Index  string
	logger logger.Logger
}

func (l *ElasticsearchLoader) Load(ctx context.Context) (*Store, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"size":  maxIndexDocs,
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []string{"_doc"},
	})

	req := esapi.SearchRequest{
		Index: []string{l.Index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, l.Client.Client)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(l.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(l.Index, fmt.Errorf("status %s", res.Status()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError(l.Index, err)
	}

	docs := make([]map[string]interface{}, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		if h.Source != nil {
			docs = append(docs, h.Source)
		}
	}
	headers, rows := tabulate(docs)
	return finish("elasticsearch:"+l.Index, headers, rows, l.logger)
}
