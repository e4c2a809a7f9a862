// Package view renders the filter panel and its results as HTML fragments.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/kailas-cloud/facetdex/internal/domain/selection"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds the parsed page and fragment templates.
type Templates struct {
	t *template.Template
}

type submitView struct {
	selection.SubmitControl
	OOB bool
}

type benchView struct {
	ID    string
	State panel.BenchState
}

var funcs = template.FuncMap{
	"reltime": RelativeTime,
	"iso": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	},
	"submitView": func(s selection.SubmitControl, oob bool) submitView {
		return submitView{SubmitControl: s, OOB: oob}
	},
	"benchView": func(id string, s panel.BenchState) benchView {
		return benchView{ID: id, State: s}
	},
}

// Parse parses the embedded templates.
func Parse() (*Templates, error) {
	t, err := template.New("facetdex").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{t: t}, nil
}

// MustParse is Parse for package initialization and tests.
func MustParse() *Templates {
	t, err := Parse()
	if err != nil {
		panic(err)
	}
	return t
}

// PageData is the input of the full page.
type PageData struct {
	Title   string
	State   panel.State
	Results template.HTML
}

// Page writes the full page shell.
func (t *Templates) Page(w io.Writer, d PageData) error {
	return t.exec(w, "page", d)
}

// Facets writes the filter region and, out of band, the submit control.
func (t *Templates) Facets(w io.Writer, st panel.State) error {
	if err := t.exec(w, "facets", st); err != nil {
		return err
	}
	return t.exec(w, "submit", submitView{SubmitControl: st.Submit, OOB: true})
}

// Facet writes one facet block and, out of band, the submit control.
func (t *Templates) Facet(w io.Writer, c panel.ControlView, submit selection.SubmitControl) error {
	if err := t.exec(w, "facet", c); err != nil {
		return err
	}
	return t.exec(w, "submit", submitView{SubmitControl: submit, OOB: true})
}

// Submit writes the submit control out of band.
func (t *Templates) Submit(w io.Writer, submit selection.SubmitControl) error {
	return t.exec(w, "submit", submitView{SubmitControl: submit, OOB: true})
}

// Results writes the result cards of a batch.
func (t *Templates) Results(w io.Writer, b panel.Batch) error {
	return t.exec(w, "results", b)
}

// Bench writes the add-to-bench control of one card and, out of band, the bench counter.
func (t *Templates) Bench(w io.Writer, id string, state panel.BenchState, count int64) error {
	if err := t.exec(w, "bench", benchView{ID: id, State: state}); err != nil {
		return err
	}
	return t.exec(w, "counter_oob", count)
}

func (t *Templates) exec(w io.Writer, name string, data any) error {
	// Buffered: a failing template writes nothing.
	var buf bytes.Buffer
	if err := t.t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
