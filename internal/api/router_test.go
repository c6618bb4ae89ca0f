package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/api"
	"github.com/ricirt/healthcheck/internal/api/handler"
	"github.com/ricirt/healthcheck/internal/auth"
	"github.com/ricirt/healthcheck/internal/metrics"
	"github.com/ricirt/healthcheck/internal/queue"
	"github.com/ricirt/healthcheck/internal/service"
)

type fixture struct {
	srv *httptest.Server
	m   *metrics.Metrics
}

func newServer(t *testing.T, rc api.RouterConfig, filter auth.Filter, q *queue.TransitionQueue) fixture {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onRead, onWrite := m.HandlerHooks()

	svc := service.NewDefaultService(logger, m.ObserveStatus)
	hh := handler.NewHealthHandler(svc, logger,
		handler.WithFilter(filter),
		handler.WithHooks(handler.Hooks{OnRead: onRead, OnWrite: onWrite}),
	)
	srv := httptest.NewServer(api.NewRouter(rc, hh, handler.NewQueueHandler(q), reg, logger))
	t.Cleanup(srv.Close)
	return fixture{srv: srv, m: m}
}

func do(t *testing.T, method, url, token, body string) (int, string, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), resp.Header
}

func TestRouter_DefaultServiceGet(t *testing.T) {
	f := newServer(t, api.RouterConfig{}, nil, nil)

	code, body, hdr := do(t, http.MethodGet, f.srv.URL+"/status", "", "")
	if code != http.StatusOK || body != "Healthy" {
		t.Fatalf("expected 200 Healthy, got %d %q", code, body)
	}
	if hdr.Get("X-Correlation-ID") == "" {
		t.Fatal("expected correlation id header")
	}
	if got := testutil.ToFloat64(f.m.HealthReads.WithLabelValues("healthy")); got != 1 {
		t.Fatalf("expected one healthy read counted, got %v", got)
	}
}

func TestRouter_PutWithoutFilterIsIgnored(t *testing.T) {
	f := newServer(t, api.RouterConfig{}, nil, nil)

	do(t, http.MethodPut, f.srv.URL+"/status", "anything", `{"status":"unhealthy","message":"db down"}`)

	code, body, _ := do(t, http.MethodGet, f.srv.URL+"/status", "", "")
	if code != http.StatusOK || body != "Healthy" {
		t.Fatalf("expected 200 Healthy, got %d %q", code, body)
	}
	if got := testutil.ToFloat64(f.m.HealthUpdates.WithLabelValues(handler.OutcomeNoFilter)); got != 1 {
		t.Fatalf("expected one no_filter outcome, got %v", got)
	}
}

func TestRouter_AuthorizedPutFlipsHealth(t *testing.T) {
	f := newServer(t, api.RouterConfig{HealthPath: "/healthz"}, auth.NewTokenFilter("s3cret"), nil)
	url := f.srv.URL + "/healthz"

	// wrong token: refused
	do(t, http.MethodPut, url, "wrong", `{"status":"unhealthy","message":"db down"}`)
	if code, body, _ := do(t, http.MethodGet, url, "", ""); code != http.StatusOK || body != "Healthy" {
		t.Fatalf("expected unchanged state, got %d %q", code, body)
	}

	do(t, http.MethodPut, url, "s3cret", `{"status":"unhealthy","message":"db down"}`)
	code, body, _ := do(t, http.MethodGet, url, "", "")
	if code != http.StatusServiceUnavailable || body != "db down" {
		t.Fatalf("expected 503 db down, got %d %q", code, body)
	}
	if got := testutil.ToFloat64(f.m.Healthy); got != 0 {
		t.Fatalf("expected healthy gauge 0, got %v", got)
	}

	// default path is not mounted when a custom one is configured
	if code, _, _ := do(t, http.MethodGet, f.srv.URL+"/status", "", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 on /status, got %d", code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	f := newServer(t, api.RouterConfig{}, nil, nil)
	do(t, http.MethodGet, f.srv.URL+"/status", "", "")

	code, body, _ := do(t, http.MethodGet, f.srv.URL+"/metrics", "", "")
	if code != http.StatusOK || !strings.Contains(body, "health_reads_total") {
		t.Fatalf("expected metrics exposition, got %d", code)
	}
}

func TestRouter_QueueSnapshot(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newServer(t, api.RouterConfig{}, nil, nil)
		_, body, _ := do(t, http.MethodGet, f.srv.URL+"/api/v1/webhooks/queue", "", "")
		var got map[string]any
		if err := json.Unmarshal([]byte(body), &got); err != nil {
			t.Fatal(err)
		}
		if got["enabled"] != false {
			t.Fatalf("expected enabled=false, got %v", got)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		f := newServer(t, api.RouterConfig{}, nil, queue.New(8))
		_, body, _ := do(t, http.MethodGet, f.srv.URL+"/api/v1/webhooks/queue", "", "")
		var got map[string]any
		if err := json.Unmarshal([]byte(body), &got); err != nil {
			t.Fatal(err)
		}
		if got["enabled"] != true || got["capacity"] != float64(8) || got["waiting"] != float64(0) {
			t.Fatalf("unexpected snapshot %v", got)
		}
	})
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newServer(t, api.RouterConfig{CORSOrigins: []string{"https://dash.example.com"}}, nil, nil)

	req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/status", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
}
