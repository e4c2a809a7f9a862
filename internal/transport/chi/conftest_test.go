package chi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/record"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	"github.com/kailas-cloud/facetdex/internal/view"
)

var errCatalogDown = errors.New("catalog down")

var archValues = []string{"ARM Cortex-M0", "ARM Cortex-M3", "ARM Cortex-M4"}

// --- Mocks ---

type mockCatalog struct {
	mu       sync.Mutex
	searchFn func(q filter.Query) ([]record.Record, error)
	benchErr error
	queries  []filter.Query
}

func (m *mockCatalog) SearchFields(_ context.Context) (facet.Schema, error) {
	return facet.NewSchema(
		facet.Facet{Key: "arch", Values: archValues},
		facet.Facet{Key: "package", Values: []string{"QFN"}},
	), nil
}

func (m *mockCatalog) Filters(_ context.Context) ([]facet.Info, error) {
	return []facet.Info{{Key: "arch", Name: "Architecture"}}, nil
}

func (m *mockCatalog) SearchModules(_ context.Context, q filter.Query) ([]record.Record, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	fn := m.searchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(q)
	}
	return []record.Record{{ID: "m1", Name: "Blinky"}, {ID: "m2", Name: "Sensor hub"}}, nil
}

func (m *mockCatalog) AddToBench(_ context.Context, _ string) error {
	return m.benchErr
}

func (m *mockCatalog) Queries() []filter.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Fixture ---

type fixture struct {
	t        *testing.T
	catalog  *mockCatalog
	sessions *panel.Service
	handler  http.Handler
	cookies  []*http.Cookie
}

// newFixture returns a fixture whose browser has already opened the page.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := newBareFixture(t, nil, panel.Config{})
	if rr := f.do(http.MethodGet, "/", nil); rr.Code != http.StatusOK {
		t.Fatalf("open page: status %d", rr.Code)
	}
	return f
}

// newBareFixture returns a fixture with no session yet. counter may be nil.
func newBareFixture(t *testing.T, counter panel.BenchCounter, cfg panel.Config) *fixture {
	t.Helper()
	cat := &mockCatalog{}
	tpl := view.MustParse()
	sessions := panel.NewService(
		panel.Deps{Schema: cat, Searcher: cat, Bench: cat, Counter: counter},
		func() panel.Renderer { return view.NewResultRenderer(tpl) },
		cfg,
		nil,
	)
	srv := NewServer(tpl, healthuc.New(&mockPinger{}, nil), ServerConfig{}, nil)

	r := chi.NewRouter()
	r.Use(SessionMiddleware(sessions, SessionConfig{}, nil))
	srv.Register(r)

	return &fixture{t: t, catalog: cat, sessions: sessions, handler: r}
}

// do sends a request carrying the session cookie, keeping any cookie the server sets.
func (f *fixture) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	f.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	for _, c := range f.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if set := rr.Result().Cookies(); len(set) > 0 {
		f.cookies = set
	}
	return rr
}

func (f *fixture) event(action, key string, values ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	form := url.Values{"facet": {key}}
	for _, v := range values {
		form.Add("values", v)
	}
	return f.do(http.MethodPost, "/panel/facets/"+action, form)
}
