package chi

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	"github.com/kailas-cloud/facetdex/internal/view"
)

// actionSelect is the control event of the multi-select itself; the other
// {action} values are bulk-action buttons.
const actionSelect = "select"

// DefaultTitle is the page title when none is configured.
const DefaultTitle = "Module catalog"

// htmlSource is a renderer whose live markup can be served directly.
type htmlSource interface {
	HTML() template.HTML
}

// ServerConfig holds presentation settings.
type ServerConfig struct {
	Title string
}

// Server serves the filter panel page, its htmx fragments and the JSON views.
type Server struct {
	tpl           *view.Templates
	health        *healthuc.Service
	cfg           ServerConfig
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the panel HTTP server.
func NewServer(tpl *view.Templates, health *healthuc.Service, cfg ServerConfig, logger *zap.Logger) *Server {
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		tpl:           tpl,
		health:        health,
		cfg:           cfg,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts the routes on r. Panel routes expect SessionMiddleware upstream.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Page)
	r.Route("/panel", func(r chi.Router) {
		r.Get("/facets", s.Facets)
		r.Post("/facets/{action}", s.ControlEvent)
		r.Post("/submit", s.Submit)
		r.Post("/reset", s.Reset)
		r.Get("/results", s.Results)
		r.Get("/query", s.Query)
		r.Get("/state", s.State)
		r.Post("/bench/{id}", s.AddToBench)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Page handles GET /.
func (s *Server) Page(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	results, err := s.resultsHTML(p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	err = s.tpl.Page(&buf, view.PageData{
		Title:   s.cfg.Title,
		State:   p.Snapshot(),
		Results: results,
	})
	s.writeHTML(w, &buf, err)
}

// Facets handles GET /panel/facets: reloads the schema and returns the filter region.
// An unavailable schema yields an empty region.
func (s *Server) Facets(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	if err := p.Load(r.Context()); err != nil {
		logpkg.FromContext(r.Context()).Warn("Facet region rendered empty", zap.Error(err))
	}

	var buf bytes.Buffer
	err := s.tpl.Facets(&buf, p.Snapshot())
	s.writeHTML(w, &buf, err)
}

// ControlEvent handles POST /panel/facets/{action}.
func (s *Server) ControlEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}

	var action string
	if err := pathParam(r, "action", &action); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	form, err := decodeControlEvent(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid form: facet is required")
		return
	}

	var cv panel.ControlView
	if action == actionSelect {
		cv, err = p.Select(form.Facet, form.Values)
	} else {
		var a facet.Action
		if a, err = facet.ParseAction(action); err == nil {
			cv, err = p.Bulk(form.Facet, a)
		}
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	err = s.tpl.Facet(&buf, cv, p.Snapshot().Submit)
	s.writeHTML(w, &buf, err)
}

// Submit handles POST /panel/submit. A response overtaken by a newer submission
// answers 204 so the page keeps the newer batch.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}

	out, err := p.Submit(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("X-Facetdex-Seq", strconv.FormatUint(out.Seq, 10))
	if out.Stale {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if out.Failed {
		w.Header().Set("X-Facetdex-Search-Failed", "true")
	}

	results, err := s.resultsHTML(p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	var buf bytes.Buffer
	buf.WriteString(string(results))
	err = s.tpl.Submit(&buf, p.Snapshot().Submit)
	s.writeHTML(w, &buf, err)
}

// Reset handles POST /panel/reset: clears every facet and returns the filter region.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	p.Reset()

	var buf bytes.Buffer
	err := s.tpl.Facets(&buf, p.Snapshot())
	s.writeHTML(w, &buf, err)
}

// Results handles GET /panel/results.
func (s *Server) Results(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	results, err := s.resultsHTML(p)
	s.writeHTML(w, bytes.NewBufferString(string(results)), err)
}

// Query handles GET /panel/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Query())
}

// State handles GET /panel/state.
func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// AddToBench handles POST /panel/bench/{id}. A catalog failure still answers 200
// with the error badge.
func (s *Server) AddToBench(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}

	var id string
	if err := pathParam(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	state, err := p.AddToBench(r.Context(), id)
	switch {
	case errors.Is(err, panel.ErrUnknownRecord), errors.Is(err, panel.ErrBenchActionDisabled):
		s.handleDomainError(w, err)
		return
	case err != nil:
		logpkg.FromContext(r.Context()).Warn("Bench state not rendered", zap.Error(err))
	}

	var buf bytes.Buffer
	err = s.tpl.Bench(&buf, id, state, p.BenchCount())
	s.writeHTML(w, &buf, err)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) panel(w http.ResponseWriter, r *http.Request) (*panel.Panel, bool) {
	p, ok := PanelFromContext(r.Context())
	if !ok {
		s.handleDomainError(w, domain.ErrSessionNotFound)
		return nil, false
	}
	return p, true
}

// resultsHTML returns the live results markup, rendering the current batch when the
// panel's renderer does not keep one.
func (s *Server) resultsHTML(p *panel.Panel) (template.HTML, error) {
	if src, ok := p.Renderer().(htmlSource); ok {
		return src.HTML(), nil
	}
	var buf bytes.Buffer
	if err := s.tpl.Results(&buf, p.Batch()); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

func (s *Server) writeHTML(w http.ResponseWriter, buf *bytes.Buffer, err error) {
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
