package main

import (
	"bufio"
	"context"
	"emailcount/internal/config"
	"emailcount/pkg/domain"
	"emailcount/pkg/logger"
	"emailcount/pkg/serrors"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup("test", "error")
	os.Exit(m.Run())
}

func newTombaServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Tomba-Key") != "key" || r.Header.Get("X-Tomba-Secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":{"message":"Invalid API key"}}`))

			return
		}

		switch r.URL.Query().Get("domain") {
		case "bad.com":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":{"message":"domain not found"}}`))
		case "empty.com":
			_, _ = w.Write([]byte(`{"data":null}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"total":4,"personal_emails":3}}`))
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Tomba.BaseURL = baseURL
	cfg.Output.Backend = config.BackendJSON
	cfg.Output.Path = filepath.Join(t.TempDir(), "out", "records.ndjson")
	cfg.Metrics.Enabled = false

	return cfg
}

func writeInput(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func readRecords(t *testing.T, path string) []domain.Record {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []domain.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r domain.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records = append(records, r)
	}
	require.NoError(t, scanner.Err())

	return records
}

func TestRunCount(t *testing.T) {
	srv := newTombaServer(t)
	cfg := newTestConfig(t, srv.URL)
	path := writeInput(t, `{
		"tombaApiKey": "key",
		"tombaApiSecret": "secret",
		"domains": ["a.com", " ", "empty.com", "bad.com", "c.com", "d.com"],
		"maxResults": 3
	}`)

	err := runCount(context.Background(), cfg, countOptions{inputPath: path}, prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	records := readRecords(t, cfg.Output.Path)
	require.Len(t, records, 3)
	require.Equal(t, "a.com", records[0].Domain)
	require.Equal(t, int64(4), records[0].Total())
	require.Equal(t, "bad.com", records[1].Domain)
	require.Equal(t, "domain not found", records[1].Error)
	require.Equal(t, "c.com", records[2].Domain)
}

func TestRunCount_FlagOverrides(t *testing.T) {
	srv := newTombaServer(t)
	cfg := newTestConfig(t, srv.URL)
	path := writeInput(t, `{"tombaApiKey":"key","tombaApiSecret":"secret","domains":["a.com","b.com"]}`)

	opts := countOptions{inputPath: path, domains: []string{"x.com", "y.com", "z.com"}, maxResults: 2}
	require.NoError(t, runCount(context.Background(), cfg, opts, prometheus.NewRegistry(), nil))

	records := readRecords(t, cfg.Output.Path)
	require.Len(t, records, 2)
	require.Equal(t, "x.com", records[0].Domain)
	require.Equal(t, "y.com", records[1].Domain)
}

func TestRunCount_OnlyEmptyResultsWritesNothing(t *testing.T) {
	srv := newTombaServer(t)
	cfg := newTestConfig(t, srv.URL)
	path := writeInput(t, `{"tombaApiKey":"key","tombaApiSecret":"secret","domains":["empty.com"]}`)

	require.NoError(t, runCount(context.Background(), cfg, countOptions{inputPath: path}, prometheus.NewRegistry(), nil))

	info, err := os.Stat(cfg.Output.Path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestRunCount_InvalidCredentialsBecomeRecords(t *testing.T) {
	srv := newTombaServer(t)
	cfg := newTestConfig(t, srv.URL)
	path := writeInput(t, `{"tombaApiKey":"wrong","tombaApiSecret":"secret","domains":["a.com"]}`)

	require.NoError(t, runCount(context.Background(), cfg, countOptions{inputPath: path}, prometheus.NewRegistry(), nil))

	records := readRecords(t, cfg.Output.Path)
	require.Len(t, records, 1)
	require.Equal(t, "Invalid API key", records[0].Error)
}

func TestRunCount_InputErrors(t *testing.T) {
	srv := newTombaServer(t)
	cfg := newTestConfig(t, srv.URL)

	err := runCount(context.Background(), cfg,
		countOptions{inputPath: filepath.Join(t.TempDir(), "missing.json")}, prometheus.NewRegistry(), nil)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	path := writeInput(t, `{"tombaApiKey":"","tombaApiSecret":"secret","domains":["a.com"]}`)
	err = runCount(context.Background(), cfg, countOptions{inputPath: path}, prometheus.NewRegistry(), nil)
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
	require.NoFileExists(t, cfg.Output.Path)
}

func TestRunCount_WithMetrics(t *testing.T) {
	srv := newTombaServer(t)
	cfg := newTestConfig(t, srv.URL)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Addr = "127.0.0.1:0"
	path := writeInput(t, `{"tombaApiKey":"key","tombaApiSecret":"secret","domains":["a.com","bad.com"]}`)

	reg := prometheus.NewRegistry()
	require.NoError(t, runCount(context.Background(), cfg, countOptions{inputPath: path}, reg, reg))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["emailcount_requests_total"], "gathered: %v", names)
	require.True(t, names["emailcount_request_duration_seconds"], "gathered: %v", names)
}

func TestNewSink(t *testing.T) {
	runID := uuid.New()

	tests := []struct {
		name    string
		backend string
		path    string
	}{
		{name: "json", backend: config.BackendJSON, path: "records.ndjson"},
		{name: "default", backend: "", path: "records.ndjson"},
		{name: "csv", backend: config.BackendCSV, path: "records.csv"},
		{name: "sqlite", backend: config.BackendSQLite, path: "records.db"},
		{name: "stdout", backend: config.BackendStdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Output.Backend = tt.backend
			if tt.path != "" {
				cfg.Output.Path = filepath.Join(t.TempDir(), tt.path)
			}

			sink, err := newSink(context.Background(), cfg, runID)
			require.NoError(t, err)
			require.NoError(t, sink.Emit(context.Background(), nil))
			require.NoError(t, sink.Close())
		})
	}
}

func TestNewSink_UnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Backend = "kafka"

	_, err := newSink(context.Background(), cfg, uuid.New())
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	require.Contains(t, err.Error(), `unknown output backend "kafka"`)
}

func TestRunCount_InterruptedRunFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var looked []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("domain")
		mu.Lock()
		looked = append(looked, name)
		mu.Unlock()

		if name == "slow.com" {
			cancel()
			<-r.Context().Done()

			return
		}
		_, _ = w.Write([]byte(`{"data":{"total":1}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := newTestConfig(t, srv.URL)
	path := writeInput(t, `{"tombaApiKey":"key","tombaApiSecret":"secret","domains":["a.com","slow.com","c.com","d.com"]}`)

	err := runCount(ctx, cfg, countOptions{inputPath: path}, prometheus.NewRegistry(), nil)
	require.ErrorIs(t, err, context.Canceled)

	records := readRecords(t, cfg.Output.Path)
	require.Len(t, records, 1)
	require.Equal(t, "a.com", records[0].Domain)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a.com", "slow.com"}, looked)
}
