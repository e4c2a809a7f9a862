// Package panel implements the parametric filter panel: facet controls, pending-change
// tracking, sequenced query submission and the add-to-bench action.
package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/selection"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// Panel is the filter panel of one session. Events are serialized by a mutex
// that is never held across a catalog call.
type Panel struct {
	id       string
	deps     Deps
	renderer Renderer
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	controls   []*facet.Control
	byKey      map[string]int
	tracker    *selection.Tracker
	seq        uint64
	applied    Outcome
	bench      map[string]BenchState
	benchCount int64
	lastSeen   time.Time
}

// New creates an empty panel. Call Load to build its controls.
func New(id string, deps Deps, renderer Renderer, logger *zap.Logger) *Panel {
	return newPanel(id, deps, renderer, logger, time.Now)
}

func newPanel(id string, deps Deps, renderer Renderer, logger *zap.Logger, now func() time.Time) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		id:       id,
		deps:     deps,
		renderer: renderer,
		logger:   logger.With(zap.String("session", id)),
		now:      now,
		byKey:    map[string]int{},
		tracker:  selection.NewTracker(),
		bench:    map[string]BenchState{},
		lastSeen: now(),
	}
}

// ID returns the session id.
func (p *Panel) ID() string { return p.id }

// Renderer returns the renderer the panel draws results with.
func (p *Panel) Renderer() Renderer { return p.renderer }

// LastSeen returns the time of the last event handled by the panel.
func (p *Panel) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Load fetches the facet schema and metadata and rebuilds the controls.
// A metadata failure only costs the display names. A schema failure leaves the panel
// without controls and is returned so the caller can log it; it is not a user-facing error.
func (p *Panel) Load(ctx context.Context) error {
	var (
		schema  facet.Schema
		infos   []facet.Info
		metaErr error
		count   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := p.deps.Schema.SearchFields(gctx)
		if err != nil {
			return fmt.Errorf("search fields: %w", err)
		}
		schema = s
		return nil
	})
	g.Go(func() error {
		infos, metaErr = p.deps.Schema.Filters(gctx)
		return nil
	})
	if p.deps.Counter != nil {
		g.Go(func() error {
			n, err := p.deps.Counter.Get(gctx, p.id)
			if err != nil {
				p.logger.Warn("Bench counter unavailable", zap.Error(err))
				return nil
			}
			count = n
			return nil
		})
	}
	err := g.Wait()

	if metaErr != nil && err == nil {
		p.logger.Warn("Facet metadata unavailable, using raw keys", zap.Error(metaErr))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	if count > p.benchCount {
		p.benchCount = count
	}

	if err != nil {
		p.setControls(nil)
		p.logger.Warn("Facet schema unavailable, filter region left empty", zap.Error(err))
		return fmt.Errorf("load schema: %w", err)
	}
	p.setControls(facet.Build(schema, facet.NewMetadata(infos)))
	return nil
}

func (p *Panel) setControls(controls []*facet.Control) {
	p.controls = controls
	p.byKey = make(map[string]int, len(controls))
	for i, c := range controls {
		p.byKey[c.Key()] = i
	}
	p.tracker.MarkClean()
}

// Select replaces the selection of facet key, as a change of its multi-select does.
func (p *Panel) Select(key string, values []string) (ControlView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	i, c, err := p.control(key)
	if err != nil {
		return ControlView{}, err
	}
	if err := c.Select(values); err != nil {
		return ControlView{}, fmt.Errorf("select: %w", err)
	}
	p.tracker.MarkDirty()
	metrics.PanelEventsTotal.WithLabelValues("select").Inc()
	return viewOf(i, c), nil
}

// Bulk presses a bulk-action button of facet key. A press on a disabled button changes nothing.
func (p *Panel) Bulk(key string, action facet.Action) (ControlView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	i, c, err := p.control(key)
	if err != nil {
		return ControlView{}, err
	}
	if err := c.Apply(action); err != nil {
		return ControlView{}, fmt.Errorf("bulk %s: %w", action, err)
	}
	p.tracker.MarkDirty()
	metrics.PanelEventsTotal.WithLabelValues(string(action)).Inc()
	return viewOf(i, c), nil
}

// Reset clears every facet and discards pending changes. Submissions still in flight
// are treated as stale when they complete.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()

	for _, c := range p.controls {
		_ = c.Select(nil)
	}
	p.tracker.MarkClean()
	p.seq++
	metrics.PanelEventsTotal.WithLabelValues("reset").Inc()
}

// Submit sends the current selections to the catalog and renders the response.
// The tracker is reset before the request so changes made while it is in flight stay pending.
// A response that is overtaken by a newer submission is discarded.
// Catalog failures produce an empty, failed outcome rather than an error.
func (p *Panel) Submit(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	p.touch()
	if !p.tracker.IsDirty() {
		p.mu.Unlock()
		return Outcome{}, ErrSubmitDisabled
	}
	p.tracker.MarkClean()
	q := filter.Build(p.controls)
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.logger.Debug("Submitting search",
		zap.Uint64("seq", seq),
		zap.Strings("fields", q.Fields()),
		zap.Bool("unfiltered", q.IsEmpty()),
	)
	start := time.Now()
	records, err := p.deps.Searcher.SearchModules(ctx, q)
	metrics.PanelSearchDuration.Observe(time.Since(start).Seconds())

	out := Outcome{Seq: seq, Query: q, Records: records, At: p.now()}
	if err != nil {
		p.logger.Warn("Search failed",
			zap.Uint64("seq", seq),
			zap.Stringer("query", q),
			zap.Error(err),
		)
		out.Records = nil
		out.Failed = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq {
		out.Stale = true
		metrics.PanelSubmissionsTotal.WithLabelValues("stale").Inc()
		p.logger.Debug("Discarding stale search response",
			zap.Uint64("seq", seq), zap.Uint64("latest", p.seq))
		return out, nil
	}

	p.applied = out
	p.bench = map[string]BenchState{}
	if out.Failed {
		metrics.PanelSubmissionsTotal.WithLabelValues("failed").Inc()
	} else {
		metrics.PanelSubmissionsTotal.WithLabelValues("applied").Inc()
	}
	if err := p.render(); err != nil {
		return out, fmt.Errorf("render results: %w", err)
	}
	return out, nil
}

// Query returns the filter query the current selections would submit.
func (p *Panel) Query() filter.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return filter.Build(p.controls)
}

// Outcome returns the last applied outcome.
func (p *Panel) Outcome() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// Snapshot returns the current state of every control and of the submit control.
func (p *Panel) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	views := make([]ControlView, len(p.controls))
	for i, c := range p.controls {
		views[i] = viewOf(i, c)
	}
	return State{
		Controls:   views,
		Submit:     p.tracker.Submit(),
		Dirty:      p.tracker.IsDirty(),
		Seq:        p.applied.Seq,
		Results:    len(p.applied.Records),
		Failed:     p.applied.Failed,
		BenchCount: p.benchCount,
	}
}

// Batch returns the batch currently rendered.
func (p *Panel) Batch() Batch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batch()
}

func (p *Panel) control(key string) (int, *facet.Control, error) {
	i, ok := p.byKey[key]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %q", facet.ErrUnknownFacet, key)
	}
	return i, p.controls[i], nil
}

func (p *Panel) batch() Batch {
	bench := make(map[string]BenchState, len(p.bench))
	for id, s := range p.bench {
		bench[id] = s
	}
	return Batch{
		Outcome:    p.applied,
		Bench:      bench,
		BenchCount: p.benchCount,
		Now:        p.now(),
	}
}

// render must be called with mu held.
func (p *Panel) render() error {
	if p.renderer == nil {
		return nil
	}
	if err := p.renderer.Render(p.batch()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (p *Panel) touch() {
	p.lastSeen = p.now()
}
