package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ui/component"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ui/style"
)

type tab int

const (
	tabLaunches tab = iota
	tabPools
	tabAffiliates
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabLaunches:
		return "Launches"
	case tabPools:
		return "Pools"
	case tabAffiliates:
		return "Affiliates"
	default:
		return "?"
	}
}

const sparkWidth = 24

// Model is the dashboard's bubbletea model.
type Model struct {
	source   Source
	interval time.Duration
	timeout  time.Duration

	keys    KeyMap
	styles  style.Styles
	help    help.Model
	spinner spinner.Model
	tables  [tabCount]table.Model
	active  tab

	sparks   map[string]*component.Sparkline
	snapshot *Snapshot
	err      error
	loading  bool
	width    int
	height   int
}

func New(source Source, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.DefaultStyles().Good

	m := Model{
		source:   source,
		interval: interval,
		timeout:  max(interval, 5*time.Second),
		keys:     DefaultKeyMap(),
		styles:   style.DefaultStyles(),
		help:     help.New(),
		spinner:  sp,
		sparks:   make(map[string]*component.Sparkline),
		loading:  true,
	}
	m.tables[tabLaunches] = newTable(launchColumns)
	m.tables[tabPools] = newTable(poolColumns)
	m.tables[tabAffiliates] = newTable(affiliateColumns)
	m.tables[tabLaunches].Focus()
	return m
}

func newTable(cols []table.Column) table.Model {
	t := table.New(table.WithColumns(cols), table.WithHeight(10))
	s := table.DefaultStyles()
	p := style.DefaultPalette()
	s.Header = s.Header.Foreground(p.Primary).Bold(true)
	s.Selected = s.Selected.Foreground(p.Text).Background(p.Secondary)
	t.SetStyles(s)
	return t
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	source, timeout := m.source, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := source.Snapshot(ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		// Header, tabs, status, help and the pool trend panel.
		h := max(msg.Height-10, 3)
		for i := range m.tables {
			m.tables[i].SetHeight(h)
			m.tables[i].SetWidth(msg.Width)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			m.switchTab((m.active + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.switchTab((m.active + tabCount - 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.fetch()
		}
		var cmd tea.Cmd
		m.tables[m.active], cmd = m.tables[m.active].Update(msg)
		return m, cmd

	case snapshotMsg:
		m.loading = false
		m.err = nil
		m.apply(msg.snap)
		return m, m.tick()

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, m.tick()

	case tickMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) switchTab(t tab) {
	m.tables[m.active].Blur()
	m.active = t
	m.tables[m.active].Focus()
}

func (m *Model) apply(snap *Snapshot) {
	m.snapshot = snap
	m.tables[tabLaunches].SetRows(launchRows(snap.Launches))
	m.tables[tabPools].SetRows(poolRows(snap.Pools))
	m.tables[tabAffiliates].SetRows(affiliateRows(snap.Affiliates))

	for _, p := range snap.Pools {
		addr := p.Address.String()
		s, ok := m.sparks[addr]
		if !ok {
			s = component.NewSparkline(sparkWidth)
			m.sparks[addr] = s
		}
		price, _ := p.PriceDisplay.Float64()
		s.Add(price)
	}
}

// Selected returns the active tab name and the selected row, if any.
func (m Model) Selected() (string, []string) {
	return m.active.String(), m.tables[m.active].SelectedRow()
}

func (m Model) statusLine() string {
	switch {
	case m.loading:
		return m.spinner.View() + m.styles.Status.Render(" refreshing")
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("error: %v", m.err))
	case m.snapshot != nil:
		return m.styles.Status.Render(fmt.Sprintf("updated %s · commits %d · conflicts %d",
			m.snapshot.FetchedAt.Format(time.TimeOnly),
			m.snapshot.Store["commits"], m.snapshot.Store["conflicts"]))
	default:
		return ""
	}
}
