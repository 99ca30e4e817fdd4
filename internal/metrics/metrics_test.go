package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTPRequest(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveHTTPRequest("GET", "/api/cities", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/cities", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/restaurants/{name}", 404, time.Millisecond)

	if val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/cities", "200")); val != 2 {
		t.Errorf("requests for /api/cities = %f, want 2", val)
	}
	if val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/restaurants/{name}", "404")); val != 1 {
		t.Errorf("404 requests = %f, want 1", val)
	}
	if val := testutil.CollectAndCount(m.httpRequestDurationSeconds); val != 2 {
		t.Errorf("duration series = %d, want 2", val)
	}
}

func TestNewUsesPrivateRegistry(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	a.ObserveHTTPRequest("GET", "/healthz", 200, 0)

	if val := testutil.ToFloat64(b.httpRequestsTotal.WithLabelValues("GET", "/healthz", "200")); val != 0 {
		t.Errorf("counter leaked across instances: %f", val)
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m := New()
	mw := m.Middleware(func(r *http.Request) string {
		if r.URL.Path == "/missing" {
			return ""
		}
		return r.URL.Path
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/notfound", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	ts := httptest.NewServer(mw(mux))
	defer ts.Close()

	for _, path := range []string{"/test", "/notfound", "/missing"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
	}

	if val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/test", "200")); val != 1 {
		t.Errorf("GET /test = %f, want 1", val)
	}
	if val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/notfound", "404")); val != 1 {
		t.Errorf("GET /notfound 404 = %f, want 1", val)
	}
	if val := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unknown", "200")); val != 1 {
		t.Errorf("GET unknown = %f, want 1", val)
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveHTTPRequest("GET", "/api/stats", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`guidecrawl_http_requests_total{code="200",method="GET",route="/api/stats"} 1`,
		"guidecrawl_http_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
