package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/panel/facets/{action}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, action := range []string{"le", "ge", "clear"} {
		req := httptest.NewRequest(http.MethodPost, "/panel/facets/"+action, http.NoBody)
		req.Header.Set("HX-Request", "true")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/panel/facets/{action}", "200", kindFragment))
	if got < 3 {
		t.Errorf("expected >= 3 requests under the route pattern, got %f", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/panel/submit", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.WriteHeader(http.StatusOK) // superfluous, must not change the label
	})
	r.Get("/panel/results", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<div></div>"))
	})

	tests := []struct {
		method, path, status string
	}{
		{http.MethodPost, "/panel/submit", "409"},
		{http.MethodGet, "/panel/results", "200"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status, kindAPI))
			if val < 1 {
				t.Errorf("expected requests_total for %s %s >= 1, got %f", tc.path, tc.status, val)
			}
		})
	}
}

func TestRequestKind(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		htmx   bool
		want   string
	}{
		{"page load", http.MethodGet, "/", false, kindPage},
		{"htmx swap", http.MethodPost, "/panel/submit", true, kindFragment},
		{"json view", http.MethodGet, "/panel/state", false, kindAPI},
		{"health probe", http.MethodGet, "/health", false, kindAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			if got := requestKind(req); got != tt.want {
				t.Errorf("requestKind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath(""); got != "unknown" {
		t.Errorf("normalizePath(\"\") = %q", got)
	}
	if got := normalizePath("/panel/bench/{id}"); got != "/panel/bench/{id}" {
		t.Errorf("normalizePath kept = %q", got)
	}
}

func TestPanelMetrics_Collect(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(PanelSubmissionsTotal, SessionsActive)

	PanelSubmissionsTotal.WithLabelValues("stale").Inc()
	SessionsActive.Set(2)

	expected := `
# HELP facetdex_sessions_active Filter panel sessions currently held in memory
# TYPE facetdex_sessions_active gauge
facetdex_sessions_active 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "facetdex_sessions_active"); err != nil {
		t.Error(err)
	}
	if got := testutil.ToFloat64(PanelSubmissionsTotal.WithLabelValues("stale")); got < 1 {
		t.Errorf("stale submissions = %f", got)
	}
}
