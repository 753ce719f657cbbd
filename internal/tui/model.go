// Package tui is the interactive client search screen: a filtered, paginated
// client listing with an order-history detail pane.
package tui

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/metrics"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/search"
)

// ViewState is the screen currently shown.
type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateFilter
	ViewStateDetail
	ViewStateQuitting
)

const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keyTab   = "tab"
	keySlash = "/"
	keyClear = "c"
	keyUp    = "up"
	keyDown  = "down"
	keyLeft  = "left"
	keyRight = "right"
	keyHome  = "home"
	keyEnd   = "end"

	filterInputCharLimit = 64
	filterInputWidth     = 24
	defaultWidth         = 100
)

// Message types delivered through the program.
type (
	// ChangedMsg tells the model that controller or detail state moved.
	ChangedMsg struct{}
	// NotificationMsg carries one user-facing notification.
	NotificationMsg notify.Notification
	doneMsg         struct{ err error }
)

var filterFields = []struct {
	field search.Field
	label string
}{
	{search.FieldID, "ID"},
	{search.FieldName, "Name"},
	{search.FieldPhone, "Phone"},
	{search.FieldAddress, "Address"},
}

// Options configure the screen.
type Options struct {
	Debounce  time.Duration
	PageSize  int
	Scheduler search.Scheduler
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// sender forwards messages to the running program once it is attached.
type sender struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (s *sender) Send(msg tea.Msg) {
	s.mu.Lock()
	f := s.send
	s.mu.Unlock()
	if f != nil {
		f(msg)
	}
}

// Model is the bubbletea model of the search screen.
type Model struct {
	ctx    context.Context
	list   *search.Controller[model.Client]
	detail *search.Detail[model.ClientOrders]
	out    *sender

	state  ViewState
	inputs []textinput.Model
	focus  int
	cursor int
	width  int
	note   *notify.Notification
}

// New builds the screen over a client listing and a per-client detail fetcher.
func New(
	ctx context.Context,
	fetch search.Fetcher[model.Client],
	fetchDetail search.DetailFetcher[model.ClientOrders],
	opts Options,
) *Model {
	out := &sender{}
	changed := func() { out.Send(ChangedMsg{}) }
	notes := func(n notify.Notification) { out.Send(NotificationMsg(n)) }

	m := &Model{
		ctx:   ctx,
		out:   out,
		state: ViewStateList,
		width: defaultWidth,
	}
	m.list = search.New(ctx, fetch, search.Options{
		Debounce:  opts.Debounce,
		PageSize:  opts.PageSize,
		Scheduler: opts.Scheduler,
		Notify:    notes,
		OnChange:  changed,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
		View:      "tui_clients",
	})
	m.detail = search.NewDetail(fetchDetail, search.DetailOptions{
		Notify:   notes,
		OnChange: changed,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
		View:     "tui_client_orders",
	})
	for _, f := range filterFields {
		m.inputs = append(m.inputs, newFilterInput(f.label))
	}
	return m
}

func newFilterInput(label string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = label
	ti.Prompt = label + ": "
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	return ti
}

// Attach routes controller callbacks into a running program.
func (m *Model) Attach(send func(tea.Msg)) {
	m.out.mu.Lock()
	m.out.send = send
	m.out.mu.Unlock()
}

// Run starts a full-screen program over m and blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.Attach(p.Send)
	defer m.list.Close()
	_, err := p.Run()
	return err
}

// State reports the current screen.
func (m *Model) State() ViewState { return m.state }

// Init loads the first unfiltered page.
func (m *Model) Init() tea.Cmd {
	return m.do(func(ctx context.Context) error { return m.list.Load(ctx, 1) })
}

// do runs f off the update loop.
func (m *Model) do(f func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg { return doneMsg{err: f(m.ctx)} }
}

func (m *Model) navigate(f func(ctx context.Context) bool) tea.Cmd {
	return m.do(func(ctx context.Context) error {
		f(ctx)
		return nil
	})
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case NotificationMsg:
		n := notify.Notification(msg)
		m.note = &n
		return m, nil
	case ChangedMsg, doneMsg:
		m.clampCursor()
		return m, nil
	}

	switch m.state {
	case ViewStateFilter:
		return m.handleFilterUpdate(msg)
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleFilterUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC:
			return m.quit()
		case keyTab:
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			return m, m.inputs[m.focus].Focus()
		case keyEnter:
			m.blurFilters()
			m.list.Submit()
			return m, nil
		case keyEsc:
			m.blurFilters()
			return m, nil
		}
	}
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if v := m.inputs[m.focus].Value(); v != before {
		_ = m.list.SetFilter(filterFields[m.focus].field, v)
	}
	return m, cmd
}

func (m *Model) blurFilters() {
	m.inputs[m.focus].Blur()
	m.state = ViewStateList
}

func (m *Model) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		return m.quit()
	case keySlash:
		m.state = ViewStateFilter
		return m, m.inputs[m.focus].Focus()
	case keyClear:
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
		m.cursor = 0
		return m, m.do(m.list.Clear)
	case keyUp, "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case keyDown, "j":
		m.cursor++
		m.clampCursor()
	case keyRight, "n":
		m.cursor = 0
		return m, m.navigate(m.list.Next)
	case keyLeft, "p":
		m.cursor = 0
		return m, m.navigate(m.list.Prev)
	case keyHome, "g":
		m.cursor = 0
		return m, m.navigate(m.list.First)
	case keyEnd, "G":
		m.cursor = 0
		return m, m.navigate(m.list.Last)
	case keyEnter:
		items := m.list.Snapshot().Items
		if m.cursor >= len(items) {
			return m, nil
		}
		id := items[m.cursor].ID
		m.state = ViewStateDetail
		return m, m.do(func(ctx context.Context) error {
			_, err := m.detail.Fetch(ctx, id)
			return err
		})
	default:
		if n, err := strconv.Atoi(keyMsg.String()); err == nil && n > 0 {
			m.cursor = 0
			return m, m.navigate(func(ctx context.Context) bool { return m.list.GoToPage(ctx, n) })
		}
	}
	return m, nil
}

func (m *Model) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			return m.quit()
		case keyEsc, "b":
			m.detail.Back()
			m.state = ViewStateList
		}
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.state = ViewStateQuitting
	m.list.Close()
	return m, tea.Quit
}

func (m *Model) clampCursor() {
	n := len(m.list.Snapshot().Items)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}
