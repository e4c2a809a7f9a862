// Package tui is a terminal front-end for the filter panel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
)

type focus int

const (
	focusFacets focus = iota
	focusResults
)

// Messages produced by the async commands.
type (
	loadedMsg struct {
		err error
	}
	submittedMsg struct {
		out panel.Outcome
		err error
	}
	benchMsg struct {
		id    string
		state panel.BenchState
		err   error
	}
)

// Model is the bubbletea model of one panel.
type Model struct {
	ctx      context.Context
	panel    *panel.Panel
	renderer *TextRenderer
	styles   Styles
	spinner  spinner.Model

	state   panel.State
	focus   focus
	facet   int
	value   int
	result  int
	pending int
	status  string
	width   int
}

// New creates a model over p. p must draw its results with r.
func New(ctx context.Context, p *panel.Panel, r *TextRenderer) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		panel:    p,
		renderer: r,
		styles:   DefaultStyles(),
		spinner:  sp,
		state:    p.Snapshot(),
		pending:  1,
		status:   "loading facets",
	}
}

// Init loads the facet schema.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m Model) loadCmd() tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: p.Load(ctx)}
	}
}

func (m Model) submitCmd() tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		out, err := p.Submit(ctx)
		return submittedMsg{out: out, err: err}
	}
}

func (m Model) benchCmd(id string) tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		state, err := p.AddToBench(ctx, id)
		return benchMsg{id: id, state: state, err: err}
	}
}

// Update handles keys and command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.done()
		m.status = ""
		if msg.err != nil {
			m.status = "facets unavailable"
		}
		m.facet, m.value = 0, 0
		m.refresh()
		return m, nil

	case submittedMsg:
		m.done()
		switch {
		case msg.err != nil:
			m.status = msg.err.Error()
		case msg.out.Stale:
			// A newer submission owns the results.
		case msg.out.Failed:
			m.status = "search failed"
			m.result = 0
		default:
			m.status = fmt.Sprintf("%d results", len(msg.out.Records))
			m.result = 0
		}
		m.refresh()
		return m, nil

	case benchMsg:
		m.done()
		switch {
		case msg.err != nil:
			m.status = msg.err.Error()
		case msg.state == panel.BenchFailed:
			m.status = "could not add " + msg.id + " to the bench"
		default:
			m.status = "added " + msg.id + " to the bench"
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyTab:
		if m.focus == focusFacets {
			m.focus = focusResults
		} else {
			m.focus = focusFacets
		}
		return m, nil
	case tea.KeyEnter:
		if !m.state.Submit.Enabled {
			m.status = "no pending changes"
			return m, nil
		}
		m.pending++
		m.status = "searching"
		return m, tea.Batch(m.submitCmd(), m.spinner.Tick)
	case tea.KeyLeft:
		m.moveFacet(-1)
		return m, nil
	case tea.KeyRight:
		m.moveFacet(1)
		return m, nil
	case tea.KeyUp:
		m.moveCursor(-1)
		return m, nil
	case tea.KeyDown:
		m.moveCursor(1)
		return m, nil
	case tea.KeySpace:
		m.toggle()
		return m, nil
	case tea.KeyRunes:
	default:
		return m, nil
	}

	switch string(msg.Runes) {
	case "q":
		return m, tea.Quit
	case " ":
		m.toggle()
	case "<":
		m.bulk(facet.ActionSelectLE)
	case ">":
		m.bulk(facet.ActionSelectGE)
	case "c":
		m.bulk(facet.ActionClear)
	case "r":
		m.panel.Reset()
		m.status = "filters cleared"
		m.refresh()
	case "b":
		cards := m.renderer.Frame().Cards
		if m.result >= len(cards) {
			return m, nil
		}
		card := cards[m.result]
		if card.Bench.Disabled() {
			return m, nil
		}
		m.pending++
		return m, tea.Batch(m.benchCmd(card.ID), m.spinner.Tick)
	case "h":
		m.moveFacet(-1)
	case "l":
		m.moveFacet(1)
	case "k":
		m.moveCursor(-1)
	case "j":
		m.moveCursor(1)
	}
	return m, nil
}

func (m *Model) moveFacet(d int) {
	n := len(m.state.Controls)
	if n == 0 {
		return
	}
	m.facet = (m.facet + d + n) % n
	m.value = 0
}

func (m *Model) moveCursor(d int) {
	if m.focus == focusResults {
		m.result = clamp(m.result+d, len(m.renderer.Frame().Cards))
		return
	}
	if cv, ok := m.current(); ok {
		m.value = clamp(m.value+d, len(cv.Values))
	}
}

func (m *Model) toggle() {
	cv, ok := m.current()
	if !ok || m.value >= len(cv.Values) {
		return
	}
	target := cv.Values[m.value].Value
	var next []string
	for _, v := range cv.Values {
		if v.Value == target {
			if !v.Selected {
				next = append(next, v.Value)
			}
			continue
		}
		if v.Selected {
			next = append(next, v.Value)
		}
	}
	_, err := m.panel.Select(cv.Key, next)
	m.apply(err)
}

func (m *Model) bulk(a facet.Action) {
	cv, ok := m.current()
	if !ok {
		return
	}
	_, err := m.panel.Bulk(cv.Key, a)
	if errors.Is(err, facet.ErrButtonDisabled) {
		m.status = a.Glyph() + " is disabled"
		return
	}
	m.apply(err)
}

func (m *Model) apply(err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refresh()
}

func (m *Model) current() (panel.ControlView, bool) {
	if m.facet >= len(m.state.Controls) {
		return panel.ControlView{}, false
	}
	return m.state.Controls[m.facet], true
}

func (m *Model) refresh() {
	m.state = m.panel.Snapshot()
	if m.facet >= len(m.state.Controls) {
		m.facet = 0
	}
	m.result = clamp(m.result, len(m.renderer.Frame().Cards))
}

func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// View renders the panel.
func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("facetdex"))
	fmt.Fprintf(&b, "  bench: %d\n\n", m.state.BenchCount)

	if len(m.state.Controls) == 0 {
		b.WriteString(s.Muted.Render("no facets"))
		b.WriteString("\n")
	} else {
		m.viewFacets(&b)
	}

	b.WriteString("\n")
	if m.state.Submit.Enabled {
		b.WriteString(s.Submit.Render("enter: apply filters"))
	} else {
		b.WriteString(s.Disabled.Render("[apply filters]"))
	}
	b.WriteString("\n\n")

	m.viewResults(&b)

	b.WriteString("\n")
	if m.pending > 0 {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(s.Help.Render("←/→ facet · ↑/↓ move · space toggle · < ≤ · > ≥ · c clear · enter apply · r reset · tab results · b bench · q quit"))
	return b.String()
}

func (m Model) viewFacets(b *strings.Builder) {
	s := m.styles
	tabs := make([]string, len(m.state.Controls))
	for i, cv := range m.state.Controls {
		label := cv.Label
		if n := len(cv.Selected()); n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if i == m.facet {
			tabs[i] = s.ActiveTab.Render(label)
		} else {
			tabs[i] = s.Tab.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, "│"))
	b.WriteString("\n")

	cv := m.state.Controls[m.facet]
	if cv.Description != "" {
		b.WriteString(s.Muted.Render(cv.Description))
		b.WriteString("\n")
	}
	for _, btn := range cv.Buttons {
		st := s.Disabled
		if btn.Enabled {
			st = s.Enabled
		}
		b.WriteString(st.Render("[" + btn.Glyph + "]"))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for i, v := range cv.Values {
		cursor := "  "
		if m.focus == focusFacets && i == m.value {
			cursor = s.Cursor.Render("> ")
		}
		box := "[ ] "
		line := v.Value
		if v.Selected {
			box = "[x] "
			line = s.Selected.Render(line)
		}
		b.WriteString(cursor + box + line + "\n")
	}
}

func (m Model) viewResults(b *strings.Builder) {
	s := m.styles
	frame := m.renderer.Frame()
	if frame.Failed {
		b.WriteString(s.Failed.Render("search failed, try again"))
		b.WriteString("\n")
	}
	for i, c := range frame.Cards {
		var card strings.Builder
		card.WriteString(s.CardTitle.Render(c.Title))
		switch c.Bench {
		case panel.BenchAdded:
			card.WriteString(" " + s.Added.Render(c.Badge))
		case panel.BenchFailed:
			card.WriteString(" " + s.Failed.Render(c.Badge))
		}
		card.WriteString("\n")
		if c.Body != "" {
			card.WriteString(c.Body + "\n")
		}
		card.WriteString(s.Muted.Render(c.Meta))

		if m.focus == focusResults && i == m.result {
			b.WriteString(s.Highlight.Render(card.String()))
		} else {
			b.WriteString(indent(card.String()))
		}
		b.WriteString("\n")
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
