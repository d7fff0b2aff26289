package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/filter"
	"github.com/colonyops/checkup/internal/core/styles"
	"github.com/colonyops/checkup/internal/engine"
)

type view int

const (
	viewList view = iota
	viewDetail
)

// mutationDoneMsg reports the outcome of an async item mutation.
type mutationDoneMsg struct {
	item checklist.Item
	err  error
}

// remoteChangeMsg is sent from the event bus when another client changed
// an item.
type remoteChangeMsg struct {
	itemID string
}

// flashClearMsg clears the status line after a delay.
type flashClearMsg struct{ seq int }

type tickMsg time.Time

type model struct {
	session *engine.Session
	keys    keyMap
	styles  styleSet

	view   view
	cursor int
	width  int
	height int

	// active filters
	criteria    filter.Criteria
	pendingOnly bool

	// search input, active while searching is true
	searching bool
	search    textinput.Model

	// items is the filtered view, recomputed on every state change
	items []checklist.Item

	// detail is the item shown in the detail view
	detail checklist.Item

	// status line
	flash    string
	flashErr bool
	flashSeq int

	now func() time.Time
}

func newModel(session *engine.Session) model {
	search := textinput.New()
	search.Placeholder = "search title and description"
	search.CharLimit = 80

	m := model{
		session: session,
		keys:    defaultKeyMap(),
		styles:  newStyleSet(styles.Current()),
		search:  search,
		now:     time.Now,
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh recomputes the visible item slice from the session and clamps
// the cursor.
func (m *model) refresh() {
	criteria := m.criteria
	if m.pendingOnly {
		done := false
		criteria.Completed = &done
	}
	m.items = m.session.FilteredItems(criteria)
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) selected() (checklist.Item, bool) {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		return checklist.Item{}, false
	}
	return m.items[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case remoteChangeMsg:
		m.refresh()
		m.flash = m.styles.remote.Render("remote change: " + msg.itemID)
		m.flashErr = false
		return m, m.clearFlashAfter(3 * time.Second)

	case mutationDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.flash = msg.err.Error()
			m.flashErr = true
			return m, m.clearFlashAfter(5 * time.Second)
		}
		m.flash = ""
		return m, nil

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		if msg.Type == tea.KeyEsc {
			m.search.SetValue("")
		}
		m.searching = false
		m.search.Blur()
		m.criteria.Search = m.search.Value()
		m.refresh()
		return m, nil
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.criteria.Search = m.search.Value()
		m.refresh()
		return m, cmd
	}
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Detail):
		m.view = viewList
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle(m.detail.ID)
	case key.Matches(msg, m.keys.Verify):
		return m, m.verify(m.detail.ID)
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.selected(); ok {
			return m, m.toggle(it.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Verify):
		if it, ok := m.selected(); ok {
			return m, m.verify(it.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		if it, ok := m.selected(); ok {
			m.detail = it
			m.view = viewDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Category):
		m.criteria.Category = nextCategory(m.criteria.Category)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Priority):
		m.criteria.Priority = nextPriority(m.criteria.Priority)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Pending):
		m.pendingOnly = !m.pendingOnly
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.criteria = filter.Criteria{}
		m.pendingOnly = false
		m.search.SetValue("")
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m *model) clearFlashAfter(d time.Duration) tea.Cmd {
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(d, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

func (m model) toggle(itemID string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		it, err := session.ToggleItem(context.Background(), itemID)
		return mutationDoneMsg{item: it, err: err}
	}
}

func (m model) verify(itemID string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		it, err := session.AddVerification(context.Background(), itemID, checklist.VerificationManual)
		return mutationDoneMsg{item: it, err: err}
	}
}

// nextCategory cycles "" -> first -> ... -> last -> "".
func nextCategory(current checklist.Category) checklist.Category {
	if current == "" {
		return checklist.Categories[0]
	}
	for i, c := range checklist.Categories {
		if c == current {
			if i == len(checklist.Categories)-1 {
				return ""
			}
			return checklist.Categories[i+1]
		}
	}
	return ""
}

func nextPriority(current checklist.Priority) checklist.Priority {
	if current == "" {
		return checklist.Priorities[0]
	}
	for i, p := range checklist.Priorities {
		if p == current {
			if i == len(checklist.Priorities)-1 {
				return ""
			}
			return checklist.Priorities[i+1]
		}
	}
	return ""
}
