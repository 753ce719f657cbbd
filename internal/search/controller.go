package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/metrics"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/pagination"
)

// DefaultDebounce is the quiet period after the last edit before a search is sent.
const DefaultDebounce = 300 * time.Millisecond

// State is the controller's position in the search flow.
type State int

const (
	Idle State = iota
	Debouncing
	Fetching
	Results
)

func (s State) String() string {
	switch s {
	case Debouncing:
		return "debouncing"
	case Fetching:
		return "fetching"
	case Results:
		return "results"
	}
	return "idle"
}

// Fetcher loads one page for q.
type Fetcher[T any] func(ctx context.Context, q Query) (pagination.Page[T], error)

// Options configure a Controller.
type Options struct {
	Debounce  time.Duration
	PageSize  int
	Scheduler Scheduler
	Notify    notify.Func
	OnChange  func()
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	// View labels log lines and discard metrics.
	View string
	// ErrorKey is the message used for generic failures.
	ErrorKey notify.Key
}

// Snapshot is a consistent copy of controller state for rendering.
type Snapshot[T any] struct {
	State         State
	Items         []T
	Pagination    pagination.Info
	HasPagination bool
	Filters       Filters
	SearchMode    bool
	Loading       bool
	ShowControls  bool
	Window        []int
	Start, End    int
}

// Controller owns one paginated listing with a debounced filtered search on top.
type Controller[T any] struct {
	fetch Fetcher[T]
	opts  Options
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	filters    Filters
	searchMode bool
	items      []T
	page       pagination.Info
	hasPage    bool
	loading    bool
	seq        uint64
	armed      uint64
	closed     bool
}

// New builds a controller. Debounced searches run under ctx until Close.
func New[T any](ctx context.Context, fetch Fetcher[T], opts Options) *Controller[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PageSize <= 0 {
		opts.PageSize = pagination.DefaultPageSize
	}
	if opts.Scheduler == nil {
		opts.Scheduler = &TimerScheduler{}
	}
	if opts.ErrorKey == "" {
		opts.ErrorKey = notify.ClientListError
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cctx, cancel := context.WithCancel(ctx)
	return &Controller[T]{
		fetch:  fetch,
		opts:   opts,
		log:    log.With(zap.String("view", opts.View)),
		ctx:    cctx,
		cancel: cancel,
	}
}

// SetFilter records an edit and re-arms the debounce.
func (c *Controller[T]) SetFilter(field Field, value string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if err := c.filters.Set(field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = Debouncing
	c.arm()
	c.mu.Unlock()
	c.changed()
	return nil
}

// Submit is the explicit search action. Without active filters it only notifies.
func (c *Controller[T]) Submit() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if !c.filters.Active() {
		c.mu.Unlock()
		c.opts.Notify.Errorf(notify.SearchCriteriaMissing)
		return false
	}
	c.state = Debouncing
	c.arm()
	c.mu.Unlock()
	c.changed()
	return true
}

// arm must be called with mu held.
func (c *Controller[T]) arm() {
	c.armed++
	gen := c.armed
	c.opts.Scheduler.Schedule(c.opts.Debounce, func() { c.fire(gen) })
}

func (c *Controller[T]) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.armed {
		c.mu.Unlock()
		return
	}
	if !c.filters.Active() {
		c.state = Idle
		c.mu.Unlock()
		c.changed()
		return
	}
	c.searchMode = true
	q := Query{Page: pagination.DefaultPage, Limit: c.opts.PageSize, Filters: c.filters, Search: true}
	c.mu.Unlock()
	_ = c.run(c.ctx, q)
}

// Clear resets the filters, leaves search mode and reloads the first unfiltered page.
func (c *Controller[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.armed++
	c.opts.Scheduler.Stop()
	c.filters = Filters{}
	c.searchMode = false
	c.mu.Unlock()
	return c.run(ctx, Query{Page: pagination.DefaultPage, Limit: c.opts.PageSize})
}

// Load fetches an unfiltered listing page.
func (c *Controller[T]) Load(ctx context.Context, page int) error {
	c.mu.Lock()
	c.searchMode = false
	c.mu.Unlock()
	return c.run(ctx, Query{Page: page, Limit: c.opts.PageSize})
}

// GoToPage navigates within the current result set, keeping the filters.
// Out of range pages are ignored and reported as false.
func (c *Controller[T]) GoToPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	if c.closed || !c.hasPage || !c.page.Valid(n) {
		c.mu.Unlock()
		return false
	}
	q := Query{Page: n, Limit: c.opts.PageSize}
	if c.searchMode {
		q.Filters, q.Search = c.filters, true
	}
	c.mu.Unlock()
	_ = c.run(ctx, q)
	return true
}

func (c *Controller[T]) First(ctx context.Context) bool { return c.GoToPage(ctx, 1) }

func (c *Controller[T]) Prev(ctx context.Context) bool {
	return c.GoToPage(ctx, c.current()-1)
}

func (c *Controller[T]) Next(ctx context.Context) bool {
	return c.GoToPage(ctx, c.current()+1)
}

func (c *Controller[T]) Last(ctx context.Context) bool {
	c.mu.Lock()
	n := c.page.TotalPages
	c.mu.Unlock()
	return c.GoToPage(ctx, n)
}

func (c *Controller[T]) current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.CurrentPage
}

// run issues q and applies the answer unless a newer request was issued meanwhile.
// Only the error of an applied request is returned.
func (c *Controller[T]) run(ctx context.Context, q Query) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.seq++
	seq := c.seq
	c.state = Fetching
	c.loading = true
	c.mu.Unlock()
	c.changed()

	page, err := c.fetch(ctx, q)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.opts.Metrics.Discarded(c.opts.View)
		c.log.Debug("discard stale response", zap.Uint64("seq", seq), zap.Int("page", q.Page))
		return nil
	}
	c.loading = false
	c.state = Results
	if err != nil {
		c.items = nil
		c.page = pagination.Info{}
		c.hasPage = false
		c.mu.Unlock()
		c.log.Warn("fetch failed", zap.Int("page", q.Page), zap.Bool("search", q.Search), zap.Error(err))
		c.opts.Notify.Emit(notify.Error, notify.FromError(err, c.opts.ErrorKey))
		c.changed()
		return err
	}
	c.items = page.Items
	c.page = pagination.Resolve(page.Pagination, q.Page, c.opts.PageSize, len(page.Items))
	c.hasPage = true
	empty := len(page.Items) == 0
	c.mu.Unlock()

	if q.Search && empty && q.Page == pagination.DefaultPage {
		c.opts.Notify.Errorf(notify.NoResultsFound)
	}
	c.changed()
	return nil
}

// Snapshot copies the state under one lock.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot[T]{
		State:         c.state,
		Items:         append([]T(nil), c.items...),
		Pagination:    c.page,
		HasPagination: c.hasPage,
		Filters:       c.filters,
		SearchMode:    c.searchMode,
		Loading:       c.loading,
	}
	if c.hasPage {
		s.ShowControls = c.page.ShowControls(len(c.items))
		s.Window = c.page.Window()
		s.Start, s.End = c.page.Range()
	}
	return s
}

// Close stops the debounce and drops every completion that arrives later.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.opts.Scheduler.Stop()
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller[T]) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}
