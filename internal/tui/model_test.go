package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/pagination"
	"github.com/and161185/pawnshop/internal/search"
)

type holdScheduler struct {
	mu sync.Mutex
	f  func()
}

var _ search.Scheduler = (*holdScheduler)(nil)

func (s *holdScheduler) Schedule(_ time.Duration, f func()) {
	s.mu.Lock()
	s.f = f
	s.mu.Unlock()
}

func (s *holdScheduler) Stop() {
	s.mu.Lock()
	s.f = nil
	s.mu.Unlock()
}

func (s *holdScheduler) fire() {
	s.mu.Lock()
	f := s.f
	s.f = nil
	s.mu.Unlock()
	if f != nil {
		f()
	}
}

type backend struct {
	mu      sync.Mutex
	queries []search.Query
	details []int
}

var clients = []model.Client{
	{ID: 1, Name: "Dara", PhoneNumber: "0123456789", Address: "Phnom Penh"},
	{ID: 2, Name: "Sokha", PhoneNumber: "0987654321", Address: "Siem Reap"},
}

func (b *backend) list(_ context.Context, q search.Query) (pagination.Page[model.Client], error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.mu.Unlock()
	items := clients
	if q.Filters.Name != "" {
		items = clients[:1]
	}
	return pagination.Page[model.Client]{
		Items:      items,
		Pagination: &pagination.Info{CurrentPage: q.Page, PageSize: 2, TotalItems: 6, TotalPages: 3, HasNext: q.Page < 3, HasPrevious: q.Page > 1},
	}, nil
}

func (b *backend) detail(_ context.Context, id int) (model.ClientOrders, error) {
	b.mu.Lock()
	b.details = append(b.details, id)
	b.mu.Unlock()
	if id != 1 {
		return model.ClientOrders{}, errs.ErrNotFound
	}
	return model.ClientOrders{
		Client:      clients[0],
		Orders:      []model.ClientOrder{{ID: 7, Deposit: 1250.5, Date: "2024-05-01"}},
		TotalOrders: 1,
	}, nil
}

func (b *backend) lastQuery() search.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[len(b.queries)-1]
}

func newTestModel(t *testing.T) (*Model, *backend, *holdScheduler) {
	t.Helper()
	b := &backend{}
	s := &holdScheduler{}
	m := New(context.Background(), b.list, b.detail, Options{PageSize: 2, Scheduler: s})
	t.Cleanup(m.list.Close)
	return m, b, s
}

// run executes cmd like the program would and feeds its message back.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func key(s string) tea.KeyMsg {
	switch s {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEscape}
	case keyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case keyRight:
		return tea.KeyMsg{Type: tea.KeyRight}
	case keyDown:
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InitLoadsFirstPage(t *testing.T) {
	m, b, _ := newTestModel(t)
	assert.Equal(t, ViewStateList, m.State())

	run(t, m, m.Init())

	q := b.lastQuery()
	assert.Equal(t, 1, q.Page)
	assert.False(t, q.Search)
	view := m.View()
	assert.Contains(t, view, "Dara")
	assert.Contains(t, view, "Sokha")
	assert.Contains(t, view, "1-2 of 6")
}

func TestModel_TypingDebouncesSearch(t *testing.T) {
	m, b, s := newTestModel(t)
	run(t, m, m.Init())

	m.Update(key(keySlash))
	assert.Equal(t, ViewStateFilter, m.State())
	m.Update(key(keyTab)) // ID -> Name
	m.Update(key("D"))
	m.Update(key("a"))

	assert.Equal(t, search.Debouncing, m.list.Snapshot().State)
	assert.Len(t, b.queries, 1, "no request before the quiet period")

	s.fire()
	q := b.lastQuery()
	assert.True(t, q.Search)
	assert.Equal(t, "Da", q.Filters.Name)
	assert.Equal(t, "Da", q.Values().Get("search_name"))

	m.Update(key(keyEsc))
	assert.Equal(t, ViewStateList, m.State())
	assert.NotContains(t, m.View(), "Sokha")
}

func TestModel_PageNavigation(t *testing.T) {
	m, b, _ := newTestModel(t)
	run(t, m, m.Init())

	_, cmd := m.Update(key(keyRight))
	run(t, m, cmd)
	assert.Equal(t, 2, b.lastQuery().Page)

	_, cmd = m.Update(key("3"))
	run(t, m, cmd)
	assert.Equal(t, 3, b.lastQuery().Page)

	// out of range pages are ignored
	_, cmd = m.Update(key("9"))
	run(t, m, cmd)
	assert.Equal(t, 3, b.lastQuery().Page)
	assert.Len(t, b.queries, 3)
}

func TestModel_ClearResetsFilters(t *testing.T) {
	m, b, s := newTestModel(t)
	run(t, m, m.Init())
	m.Update(key(keySlash))
	m.Update(key("1"))
	m.Update(key(keyEsc))

	_, cmd := m.Update(key(keyClear))
	run(t, m, cmd)
	s.fire()

	q := b.lastQuery()
	assert.False(t, q.Search)
	assert.Empty(t, m.inputs[0].Value())
	assert.False(t, m.list.Snapshot().Filters.Active())
}

func TestModel_DetailAndBack(t *testing.T) {
	m, b, _ := newTestModel(t)
	run(t, m, m.Init())

	_, cmd := m.Update(key(keyEnter))
	assert.Equal(t, ViewStateDetail, m.State())
	run(t, m, cmd)
	assert.Equal(t, []int{1}, b.details)
	view := m.View()
	assert.Contains(t, view, "Dara (#1)")
	assert.Contains(t, view, "1,250.50")

	m.Update(key(keyEsc))
	assert.Equal(t, ViewStateList, m.State())
	_, _, ok := m.detail.Current()
	assert.False(t, ok)
}

func TestModel_DetailNotFoundShowsNotification(t *testing.T) {
	m, _, _ := newTestModel(t)
	var sent []tea.Msg
	m.Attach(func(msg tea.Msg) { sent = append(sent, msg) })
	run(t, m, m.Init())

	m.Update(key(keyDown))
	_, cmd := m.Update(key(keyEnter))
	run(t, m, cmd)

	var note *NotificationMsg
	for _, msg := range sent {
		if n, ok := msg.(NotificationMsg); ok {
			note = &n
		}
	}
	require.NotNil(t, note)
	m.Update(*note)
	assert.Contains(t, m.View(), note.Message)
	assert.Contains(t, m.View(), "nothing to show")
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(key(keyQuit))
	assert.Equal(t, ViewStateQuitting, m.State())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
