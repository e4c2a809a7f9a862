package panel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain/record"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// AddToBench adds a displayed record to the working set. The record's control is
// disabled before the request goes out and stays disabled whatever the outcome.
// On success the bench counter grows; on failure the card shows an error badge.
func (p *Panel) AddToBench(ctx context.Context, id string) (BenchState, error) {
	p.mu.Lock()
	p.touch()
	if record.Index(p.applied.Records, id) < 0 {
		p.mu.Unlock()
		return BenchIdle, fmt.Errorf("%w: %q", ErrUnknownRecord, id)
	}
	if cur := p.bench[id]; cur.Disabled() {
		p.mu.Unlock()
		return cur, ErrBenchActionDisabled
	}
	p.bench[id] = BenchPending
	seq := p.applied.Seq
	if err := p.render(); err != nil {
		p.logger.Warn("Render pending bench state failed", zap.Error(err))
	}
	p.mu.Unlock()

	state := BenchAdded
	var count int64
	if err := p.deps.Bench.AddToBench(ctx, id); err != nil {
		state = BenchFailed
		p.logger.Warn("Add to bench failed", zap.String("record", id), zap.Error(err))
	} else if p.deps.Counter != nil {
		n, err := p.deps.Counter.Incr(ctx, p.id)
		if err != nil {
			p.logger.Warn("Bench counter increment failed", zap.Error(err))
		}
		count = n
	}
	metrics.BenchActionsTotal.WithLabelValues(string(state)).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	if state == BenchAdded {
		if count > 0 {
			p.benchCount = count
		} else {
			p.benchCount++
		}
	}
	// A newer batch has replaced the card; its control starts fresh.
	if p.applied.Seq != seq {
		return state, nil
	}
	p.bench[id] = state
	if err := p.render(); err != nil {
		return state, fmt.Errorf("render bench state: %w", err)
	}
	return state, nil
}

// BenchCount returns the number of records added to the bench in this session.
func (p *Panel) BenchCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.benchCount
}
