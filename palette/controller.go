package palette

import (
	"context"
	"sync"
	"time"

	"taskdeck/log"
	"taskdeck/ui/debounce"

	"github.com/google/uuid"
)

// DefaultDebounce is how long query and context changes settle before a search runs
const DefaultDebounce = 150 * time.Millisecond

// Searcher is the part of Engine a Controller drives.
type Searcher interface {
	Query(ctx context.Context, req Request) ([]Result, error)
	InitialResults(ctx context.Context, pc Context) ([]Result, error)
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithDebounce sets the settle delay for query and context changes
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.debouncer.SetDelay(d)
	}
}

// WithLimit sets the result limit sent with every query
func WithLimit(n int) ControllerOption {
	return func(c *Controller) {
		c.limit = n
	}
}

// WithOnChange registers a callback that receives the latest state after
// every change. Calls are serialized and made without internal locks held,
// but the callback must not call back into the controller synchronously.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// Controller drives one palette instance: it loads initial results once,
// debounces query and context changes, and applies only the response to
// the most recently issued query.
//
// A Controller is safe for concurrent use.
type Controller struct {
	id        string
	engine    Searcher
	debouncer *debounce.Debouncer
	limit     int
	onChange  func(State)
	logger    *log.ScopedLoggers

	// lifetime is cancelled by Dispose.
	lifetime     context.Context
	stopLifetime context.CancelFunc

	mu    sync.Mutex
	state State
	// generation identifies the newest issued query; responses carrying an
	// older generation are discarded.
	generation      uint64
	cancelInFlight  context.CancelFunc
	initialInFlight bool
	disposed        bool

	notifyMu sync.Mutex
}

// NewController creates a closed palette bound to engine, starting in pc.
func NewController(engine Searcher, pc Context, opts ...ControllerOption) *Controller {
	id := uuid.NewString()[:8]
	c := &Controller{
		id:        id,
		engine:    engine,
		debouncer: debounce.New(DefaultDebounce),
		limit:     DefaultLimit,
		logger:    log.For("palette-" + id),
		state:     State{Context: pc},
	}
	c.lifetime, c.stopLifetime = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID identifies this instance in logs
func (c *Controller) ID() string {
	return c.id
}

// Debounce returns how long typing must pause before a query runs
func (c *Controller) Debounce() time.Duration {
	return c.debouncer.Delay()
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Open shows the palette. The first open fetches initial results; later
// opens show the retained results and refresh them right away.
func (c *Controller) Open() {
	c.mu.Lock()
	if c.disposed || c.state.IsOpen {
		c.mu.Unlock()
		return
	}
	c.state.IsOpen = true

	var run func()
	switch {
	case c.state.InitialResultsLoaded:
		run = c.beginLocked()
	case !c.initialInFlight:
		c.initialInFlight = true
		c.state.IsLoading = true
		pc := c.state.Context
		run = func() { c.loadInitial(pc) }
	}
	c.mu.Unlock()

	c.notify()
	if run != nil {
		go run()
	}
}

// Close hides the palette, clears the query and discards any pending or
// in-flight query. Results and the initial-load flag are kept.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.disposed || !c.state.IsOpen {
		c.mu.Unlock()
		return
	}
	c.debouncer.Cancel()
	c.supersedeLocked()
	c.state.IsOpen = false
	c.state.Query = ""
	c.state.IsLoading = c.initialInFlight
	c.mu.Unlock()

	c.notify()
}

// SetQuery records the typed text and schedules a debounced search.
// Only the last text typed within the debounce window is searched.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	if c.disposed || c.state.Query == query {
		c.mu.Unlock()
		return
	}
	c.state.Query = query
	c.scheduleLocked()
	c.mu.Unlock()

	c.notify()
}

// SetContext replaces the palette context. A structurally equal context is
// ignored; otherwise an open palette re-runs its query after the debounce.
func (c *Controller) SetContext(pc Context) {
	c.mu.Lock()
	if c.disposed || c.state.Context.Equal(pc) {
		c.mu.Unlock()
		return
	}
	c.state.Context = pc
	c.scheduleLocked()
	c.mu.Unlock()

	c.notify()
}

// Refresh runs the current query now, skipping the debounce
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.disposed || !c.state.IsOpen || !c.state.InitialResultsLoaded {
		c.mu.Unlock()
		return
	}
	c.debouncer.Cancel()
	run := c.beginLocked()
	c.mu.Unlock()

	c.notify()
	go run()
}

// Select runs the action of the displayed result with id and closes the
// palette. The action's error is returned after the palette is closed.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	r, ok := c.state.Result(id)
	pc := c.state.Context
	c.mu.Unlock()

	if !ok {
		return ErrResultNotFound
	}

	var err error
	if r.OnSelect != nil {
		err = r.OnSelect(pc)
		if err != nil {
			c.logger.WarningLog.Printf("select %s from %s: %v", r.ID, r.ProviderID, err)
		}
	}
	c.Close()
	return err
}

// Dispose stops all pending work. Responses that arrive afterwards are
// dropped and every later call is a no-op.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.debouncer.Cancel()
	c.supersedeLocked()
	c.mu.Unlock()

	c.stopLifetime()
}

func (c *Controller) scheduleLocked() {
	if !c.state.IsOpen || !c.state.InitialResultsLoaded {
		return
	}
	c.debouncer.Trigger(c.runDebounced)
}

func (c *Controller) runDebounced() {
	c.mu.Lock()
	if c.disposed || !c.state.IsOpen || !c.state.InitialResultsLoaded {
		c.mu.Unlock()
		return
	}
	run := c.beginLocked()
	c.mu.Unlock()

	c.notify()
	run()
}

// supersedeLocked invalidates whatever query is in flight.
func (c *Controller) supersedeLocked() {
	c.generation++
	if c.cancelInFlight != nil {
		c.cancelInFlight()
		c.cancelInFlight = nil
	}
}

// beginLocked issues a new query generation and returns the work to run
// without the lock held.
func (c *Controller) beginLocked() func() {
	c.supersedeLocked()
	gen := c.generation
	ctx, cancel := context.WithCancel(c.lifetime)
	c.cancelInFlight = cancel
	c.state.IsLoading = true

	req := Request{Query: c.state.Query, Context: c.state.Context, Limit: c.limit}
	return func() { c.execute(ctx, gen, req) }
}

func (c *Controller) execute(ctx context.Context, gen uint64, req Request) {
	results, err := c.engine.Query(ctx, req)

	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.mu.Unlock()
		c.logger.InfoLog.Printf("dropped stale response for %q", req.Query)
		return
	}
	c.cancelInFlight()
	c.cancelInFlight = nil
	c.state.IsLoading = false
	if err != nil {
		c.logger.WarningLog.Printf("query %q failed: %v", req.Query, err)
	} else {
		c.state.Results = results
	}
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) loadInitial(pc Context) {
	results, err := c.engine.InitialResults(c.lifetime, pc)

	c.mu.Lock()
	c.initialInFlight = false
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.logger.WarningLog.Printf("initial results failed: %v", err)
	} else {
		c.state.Results = results
	}
	c.state.InitialResultsLoaded = true
	c.state.IsLoading = false

	var run func()
	if c.state.IsOpen {
		run = c.beginLocked()
	}
	c.mu.Unlock()

	c.notify()
	if run != nil {
		run()
	}
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.onChange(c.State())
}
