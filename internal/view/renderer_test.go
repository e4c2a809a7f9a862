package view

import (
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/domain/record"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
)

func TestResultRenderer_ReplacesWholeBatch(t *testing.T) {
	r := NewResultRenderer(MustParse())

	if r.HTML() != "" {
		t.Fatal("container should start empty")
	}

	if err := r.Render(batch(record.Record{ID: "a"}, record.Record{ID: "b"})); err != nil {
		t.Fatal(err)
	}
	if got := r.Container().Load().Cards; got != 2 {
		t.Errorf("cards = %d", got)
	}

	b := batch(record.Record{ID: "c"})
	b.Seq = 2
	if err := r.Render(b); err != nil {
		t.Fatal(err)
	}
	html := string(r.HTML())
	if strings.Count(html, "search-result") != 1 {
		t.Errorf("expected one card, got:\n%s", html)
	}
	if strings.Contains(html, `id="result-a"`) {
		t.Error("previous batch leaked into the new one")
	}
	if got := r.Container().Load().Seq; got != 2 {
		t.Errorf("seq = %d", got)
	}
}

func TestResultRenderer_EmptyBatchLeavesNothing(t *testing.T) {
	r := NewResultRenderer(MustParse())
	_ = r.Render(batch(record.Record{ID: "a"}))

	if err := r.Render(batch()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(r.HTML()), "search-result") {
		t.Errorf("residual cards:\n%s", r.HTML())
	}
}

func TestContainer_ConcurrentReadersSeeWholeBatches(t *testing.T) {
	r := NewResultRenderer(MustParse())
	small := batch(record.Record{ID: "x"})
	large := batch(record.Record{ID: "y1"}, record.Record{ID: "y2"}, record.Record{ID: "y3"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b := small
			if i%2 == 1 {
				b = large
			}
			_ = r.Render(b)
		}
	}()

	for i := 0; i < 200; i++ {
		cur := r.Container().Load()
		if got := strings.Count(string(cur.HTML), "search-result"); got != cur.Cards {
			t.Fatalf("partial batch: %d cards in markup, %d recorded", got, cur.Cards)
		}
	}
	wg.Wait()
}

var _ panel.Renderer = (*ResultRenderer)(nil)
