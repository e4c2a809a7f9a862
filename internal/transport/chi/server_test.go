package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/facetdex/internal/db/memory"
	"github.com/kailas-cloud/facetdex/internal/domain/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/record"
	"github.com/kailas-cloud/facetdex/internal/repository/bench"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	"github.com/kailas-cloud/facetdex/internal/view"
)

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestPage_StartsSession(t *testing.T) {
	f := newBareFixture(t, nil, panel.Config{})

	rr := f.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(f.cookies) != 1 || f.cookies[0].Name != DefaultCookieName || !f.cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", f.cookies)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`id="filters-row"`,
		`data-facet="arch"`,
		`data-facet="package"`,
		`>Architecture</label>`,
		`id="hits-row"`,
		`id="modules-on-bench-counter"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if !strings.Contains(body, `id="filter_apply_btn" class="btn btn-outline-light"`) {
		t.Error("submit control should start disabled")
	}
}

func TestPage_ReusesSession(t *testing.T) {
	f := newFixture(t)
	first := f.cookies[0].Value

	rr := f.do(http.MethodGet, "/", nil)
	if len(rr.Result().Cookies()) != 0 {
		t.Error("existing session should not get a new cookie")
	}
	if f.cookies[0].Value != first || f.sessions.Len() != 1 {
		t.Errorf("session not reused: cookie %q, sessions %d", f.cookies[0].Value, f.sessions.Len())
	}
}

func TestPage_MalformedCookieStartsNewSession(t *testing.T) {
	f := newBareFixture(t, nil, panel.Config{})
	f.cookies = []*http.Cookie{{Name: DefaultCookieName, Value: "gone"}}

	f.do(http.MethodGet, "/", nil)
	if f.cookies[0].Value == "gone" {
		t.Error("expected a fresh session id")
	}
}

func TestPage_EvictedSessionKeepsBenchCount(t *testing.T) {
	counter := bench.New(memory.NewStore(), "test:", time.Hour)
	f := newBareFixture(t, counter, panel.Config{})
	f.do(http.MethodGet, "/", nil)
	id := f.cookies[0].Value

	f.event("select", "arch", "ARM Cortex-M0")
	f.do(http.MethodPost, "/panel/submit", nil)
	if rr := f.do(http.MethodPost, "/panel/bench/m1", nil); rr.Code != http.StatusOK {
		t.Fatalf("bench status = %d: %s", rr.Code, rr.Body)
	}

	if n := f.sessions.Sweep(time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}

	rr := f.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 || f.cookies[0].Value != id {
		t.Errorf("evicted session should be resumed under cookie %q, got %q", id, f.cookies[0].Value)
	}
	p, err := f.sessions.Get(id)
	if err != nil {
		t.Fatalf("resumed session missing: %v", err)
	}
	if got := p.Snapshot().BenchCount; got != 1 {
		t.Errorf("bench count after resume = %d, want 1", got)
	}
	if !strings.Contains(rr.Body.String(), `id="modules-on-bench-counter" class="badge bg-primary">1</span>`) {
		t.Error("page should show the persisted bench count")
	}
}

func TestSessions_OnlyThePageStartsOne(t *testing.T) {
	f := newBareFixture(t, nil, panel.Config{MaxSessions: 2})
	f.do(http.MethodGet, "/", nil)
	f.event("select", "arch", "ARM Cortex-M3")
	user := f.cookies

	for _, path := range []string{"/favicon.ico", "/robots.txt", "/panel/state"} {
		f.cookies = nil
		rr := f.do(http.MethodGet, path, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rr.Code)
		}
		if len(rr.Result().Cookies()) != 0 {
			t.Errorf("GET %s must not set a session cookie", path)
		}
	}
	if f.sessions.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", f.sessions.Len())
	}

	f.cookies = user
	rr := f.do(http.MethodGet, "/panel/state", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("user session lost: status %d", rr.Code)
	}
	var st struct {
		Dirty bool `json:"dirty"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if !st.Dirty {
		t.Error("pending selection should survive")
	}
}

func TestSessions_ExpiredHTMXRequestRedirects(t *testing.T) {
	f := newBareFixture(t, nil, panel.Config{})
	req := httptest.NewRequest(http.MethodPost, "/panel/submit", http.NoBody)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "3f1c2a3e-6a47-4b0e-9d61-0c5a8f2e9b11"})

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if got := rr.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect = %q, want /", got)
	}
	if resp := decodeError(t, rr); resp.Code != CodeSessionNotFound {
		t.Errorf("code = %q", resp.Code)
	}
	if f.sessions.Len() != 0 {
		t.Error("panel requests must not start sessions")
	}
}

func TestScenario_SelectLEThenSubmit(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/", nil)

	rr := f.event("select", "arch", "ARM Cortex-M0")
	if rr.Code != http.StatusOK {
		t.Fatalf("select status = %d: %s", rr.Code, rr.Body)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<option value="ARM Cortex-M0" selected>`) {
		t.Error("selected value not rendered")
	}
	if !strings.Contains(body, `hx-swap-oob="true"`) || strings.Contains(body, `hx-swap-oob="true" disabled`) {
		t.Error("submit control should be enabled out of band")
	}

	if rr := f.event("le", "arch"); rr.Code != http.StatusOK {
		t.Fatalf("le status = %d: %s", rr.Code, rr.Body)
	}

	rr = f.do(http.MethodGet, "/panel/query", nil)
	var q filter.Query
	if err := json.NewDecoder(rr.Body).Decode(&q); err != nil {
		t.Fatalf("decode query: %v", err)
	}
	want := filter.Query{{Field: "arch", Op: filter.OpEqual, Values: []string{"ARM Cortex-M0"}}}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("query (-want +got):\n%s", diff)
	}

	rr = f.do(http.MethodPost, "/panel/submit", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rr.Code, rr.Body)
	}
	if got := strings.Count(rr.Body.String(), "search-result"); got != 2 {
		t.Errorf("cards = %d, want 2", got)
	}
	if rr.Header().Get("X-Facetdex-Seq") == "" {
		t.Error("missing sequence header")
	}
	if !strings.Contains(rr.Body.String(), `hx-swap-oob="true" disabled`) {
		t.Error("submit control should be disabled after submission")
	}
	if diff := cmp.Diff([]filter.Query{want}, f.catalog.Queries()); diff != "" {
		t.Errorf("catalog queries (-want +got):\n%s", diff)
	}

	rr = f.do(http.MethodGet, "/panel/results", nil)
	if got := strings.Count(rr.Body.String(), "search-result"); got != 2 {
		t.Errorf("results fragment cards = %d, want 2", got)
	}
}

func TestSubmit_CleanIsConflict(t *testing.T) {
	f := newFixture(t)
	rr := f.do(http.MethodPost, "/panel/submit", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeSubmitDisabled {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestSubmit_SearchFailure(t *testing.T) {
	f := newFixture(t)
	f.catalog.searchFn = func(filter.Query) ([]record.Record, error) { return nil, errCatalogDown }
	f.event("select", "arch", "ARM Cortex-M3")

	rr := f.do(http.MethodPost, "/panel/submit", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Facetdex-Search-Failed") != "true" {
		t.Error("missing failure header")
	}
	body := rr.Body.String()
	if !strings.Contains(body, "search-error") || strings.Contains(body, "search-result") {
		t.Errorf("unexpected failure body: %s", body)
	}
}

func TestControlEvent_Errors(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		form     url.Values
		wantCode int
		wantErr  ErrorCode
	}{
		{"unknown action", "toggle", url.Values{"facet": {"arch"}}, http.StatusBadRequest, CodeBadRequest},
		{"unknown facet", "select", url.Values{"facet": {"voltage"}}, http.StatusNotFound, CodeFacetNotFound},
		{"unknown value", "select", url.Values{"facet": {"arch"}, "values": {"RISC-V"}},
			http.StatusBadRequest, CodeValidationFailed},
		{"missing facet", "select", url.Values{"values": {"QFN"}}, http.StatusBadRequest, CodeBadRequest},
		{"disabled clear", "clear", url.Values{"facet": {"arch"}}, http.StatusConflict, CodeButtonDisabled},
		{"disabled range", "ge", url.Values{"facet": {"package"}}, http.StatusConflict, CodeButtonDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.do(http.MethodPost, "/panel/facets/"+tt.action, tt.form)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantCode, rr.Body)
			}
			if resp := decodeError(t, rr); resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}

			rr = f.do(http.MethodGet, "/panel/state", nil)
			var st panel.State
			if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
				t.Fatal(err)
			}
			if st.Dirty {
				t.Error("rejected event must not mark the panel dirty")
			}
		})
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.event("select", "arch", "ARM Cortex-M0", "ARM Cortex-M4")

	rr := f.do(http.MethodPost, "/panel/reset", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), " selected>") {
		t.Error("reset left a selection")
	}

	rr = f.do(http.MethodGet, "/panel/state", nil)
	var st panel.State
	if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Dirty || st.Submit.Enabled {
		t.Errorf("state after reset: %+v", st)
	}
	if len(st.Controls) != 2 || len(st.Controls[0].Selected()) != 0 {
		t.Errorf("controls after reset: %+v", st.Controls)
	}
}

func TestAddToBench(t *testing.T) {
	f := newFixture(t)
	f.event("select", "arch", "ARM Cortex-M0")
	f.do(http.MethodPost, "/panel/submit", nil)

	rr := f.do(http.MethodPost, "/panel/bench/m1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Added!") {
		t.Errorf("missing success badge: %s", body)
	}
	if !strings.Contains(body, `hx-swap-oob="true">1</span>`) {
		t.Errorf("counter not updated out of band: %s", body)
	}

	rr = f.do(http.MethodPost, "/panel/bench/m1", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("second activation status = %d, want 409", rr.Code)
	}

	rr = f.do(http.MethodPost, "/panel/bench/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown record status = %d, want 404", rr.Code)
	}
}

func TestAddToBench_FailureShowsBadge(t *testing.T) {
	f := newFixture(t)
	f.catalog.benchErr = errCatalogDown
	f.event("select", "arch", "ARM Cortex-M0")
	f.do(http.MethodPost, "/panel/submit", nil)

	rr := f.do(http.MethodPost, "/panel/bench/m2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "bg-danger") || !strings.Contains(body, `hx-swap-oob="true">0</span>`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantCode int
	}{
		{"healthy", nil, http.StatusOK},
		{"db down", errCatalogDown, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(view.MustParse(), healthuc.New(&mockPinger{err: tt.dbErr}, nil), ServerConfig{}, nil)
			sessions := panel.NewService(panel.Deps{Schema: &mockCatalog{}}, nil, panel.Config{}, nil)
			r := chi.NewRouter()
			r.Use(SessionMiddleware(sessions, SessionConfig{}, nil))
			srv.Register(r)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if len(rr.Result().Cookies()) != 0 || sessions.Len() != 0 {
				t.Error("health check must not start a session")
			}
		})
	}
}

func TestPanelRoutes_WithoutSessionMiddleware(t *testing.T) {
	srv := NewServer(view.MustParse(), healthuc.New(&mockPinger{}, nil), ServerConfig{}, nil)
	r := chi.NewRouter()
	srv.Register(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panel/state", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeSessionNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	rr := f.do(http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
	if f.sessions.Len() != 1 {
		t.Error("metrics scrape must not start a session")
	}
}
