package panel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

func newTestService(t *testing.T, schema *mockSchemaSource, cfg Config) *Service {
	t.Helper()
	deps := Deps{Schema: schema, Searcher: &mockSearcher{}, Bench: &mockBench{}}
	svc := NewService(deps, func() Renderer { return &recordingRenderer{} }, cfg, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestService_CreateAndGet(t *testing.T) {
	svc := newTestService(t, &mockSchemaSource{schema: testSchema()}, Config{})

	p := svc.Create(context.Background())
	if p.ID() == "" {
		t.Fatal("empty session id")
	}
	if len(p.Snapshot().Controls) != 2 {
		t.Error("created panel should be loaded")
	}
	if _, ok := p.Renderer().(*recordingRenderer); !ok {
		t.Errorf("renderer = %T", p.Renderer())
	}

	got, err := svc.Get(p.ID())
	if err != nil || got != p {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := svc.Get("nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestService_CreateWithBrokenSchema(t *testing.T) {
	svc := newTestService(t, &mockSchemaSource{schemaErr: errCatalogDown}, Config{})

	p := svc.Create(context.Background())
	if len(p.Snapshot().Controls) != 0 {
		t.Error("expected empty filter region")
	}
	if svc.Len() != 1 {
		t.Error("session should still be registered")
	}
}

func TestService_SweepIdle(t *testing.T) {
	svc := newTestService(t, &mockSchemaSource{schema: testSchema()}, Config{IdleTimeout: time.Minute})

	old := svc.Create(context.Background())
	svc.now = func() time.Time { return testNow.Add(2 * time.Minute) }
	fresh := svc.Create(context.Background())

	removed := svc.Sweep(testNow.Add(2*time.Minute + 30*time.Second))
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := svc.Get(old.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("idle session should be gone")
	}
	if _, err := svc.Get(fresh.ID()); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
}

func TestService_ResumeRestoresBenchCount(t *testing.T) {
	counter := &mockCounter{}
	deps := Deps{Schema: &mockSchemaSource{schema: testSchema()}, Searcher: &mockSearcher{}, Bench: &mockBench{}, Counter: counter}
	svc := NewService(deps, nil, Config{IdleTimeout: time.Minute}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	p := svc.Create(ctx)
	if _, err := counter.Incr(ctx, p.ID()); err != nil {
		t.Fatal(err)
	}
	svc.Sweep(testNow.Add(time.Hour))

	resumed, err := svc.Resume(ctx, p.ID())
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.ID() != p.ID() || resumed == p {
		t.Fatalf("expected a new panel under id %s, got %s", p.ID(), resumed.ID())
	}
	if got := resumed.BenchCount(); got != 1 {
		t.Errorf("bench count = %d, want 1", got)
	}

	again, err := svc.Resume(ctx, p.ID())
	if err != nil || again != resumed {
		t.Errorf("live session should be returned as is: %v, %v", again, err)
	}
	if svc.Len() != 1 {
		t.Errorf("Len = %d, want 1", svc.Len())
	}
}

func TestService_ResumeRejectsMalformedID(t *testing.T) {
	svc := newTestService(t, &mockSchemaSource{schema: testSchema()}, Config{})

	if _, err := svc.Resume(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if svc.Len() != 0 {
		t.Error("malformed id must not start a session")
	}
}

func TestService_MaxSessionsEvictsOldest(t *testing.T) {
	svc := newTestService(t, &mockSchemaSource{schema: testSchema()}, Config{MaxSessions: 2})

	var ids []string
	for i := 0; i < 3; i++ {
		at := testNow.Add(time.Duration(i) * time.Second)
		svc.now = func() time.Time { return at }
		ids = append(ids, svc.Create(context.Background()).ID())
	}

	if svc.Len() != 2 {
		t.Fatalf("Len = %d, want 2", svc.Len())
	}
	if _, err := svc.Get(ids[0]); err == nil {
		t.Error("oldest session should have been evicted")
	}
	for _, id := range ids[1:] {
		if _, err := svc.Get(id); err != nil {
			t.Errorf("session %s evicted: %v", id, err)
		}
	}
}

func TestService_SchemaFetchShared(t *testing.T) {
	gate := make(chan struct{})
	schema := &mockSchemaSource{schema: testSchema(), gate: gate}
	svc := newTestService(t, schema, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Create(context.Background())
		}()
	}
	// Let the first fetch collect the waiters before releasing it.
	for schema.Calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if svc.Len() != 5 {
		t.Fatalf("Len = %d", svc.Len())
	}
	if got := schema.Calls(); got >= 5 {
		t.Errorf("schema fetched %d times, expected sharing", got)
	}
}

func TestService_RunStopsWithContext(t *testing.T) {
	svc := newTestService(t, &mockSchemaSource{schema: testSchema()}, Config{IdleTimeout: time.Nanosecond})
	svc.Create(context.Background())
	svc.now = func() time.Time { return testNow.Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for svc.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never evicted the idle session")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	<-done
}
