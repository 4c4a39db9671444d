package palette

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher answers every query with a single result whose id is
// "q:" + the query text, unless respond overrides it.
type fakeSearcher struct {
	mu           sync.Mutex
	requests     []Request
	initialCalls int

	initial     []Result
	initialErr  error
	initialGate chan struct{}
	respond     func(ctx context.Context, req Request) ([]Result, error)
}

func (f *fakeSearcher) Query(ctx context.Context, req Request) ([]Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(ctx, req)
	}
	return []Result{res("q:"+req.Query, req.Query, 1)}, nil
}

func (f *fakeSearcher) InitialResults(ctx context.Context, _ Context) ([]Result, error) {
	f.mu.Lock()
	f.initialCalls++
	gate := f.initialGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.initial, f.initialErr
}

func (f *fakeSearcher) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Query
	}
	return out
}

func (f *fakeSearcher) lastRequest() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return Request{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeSearcher) initialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialCalls
}

func waitFor(t *testing.T, c *Controller, cond func(State) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(c.State()) }, 2*time.Second, 5*time.Millisecond)
}

func settled(ids ...string) func(State) bool {
	return func(s State) bool {
		if s.IsLoading || len(s.Results) != len(ids) {
			return false
		}
		for i, r := range s.Results {
			if r.ID != ids[i] {
				return false
			}
		}
		return true
	}
}

func TestStatePhase(t *testing.T) {
	tests := []struct {
		state State
		want  Phase
	}{
		{State{}, PhaseClosed},
		{State{InitialResultsLoaded: true}, PhaseClosed},
		{State{IsOpen: true}, PhaseLoadingInitial},
		{State{IsOpen: true, InitialResultsLoaded: true}, PhaseReady},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Phase())
		})
	}
}

func TestControllerOpenLoadsInitialResultsOnce(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeSearcher{initial: []Result{res("init", "Initial", 1)}, initialGate: gate}
	c := NewController(f, Context{Route: "/issues"}, WithDebounce(time.Hour))
	defer c.Dispose()

	c.Open()
	s := c.State()
	assert.Equal(t, PhaseLoadingInitial, s.Phase())
	assert.True(t, s.IsLoading)

	close(gate)
	// The initial results are followed by one immediate, undebounced query.
	waitFor(t, c, settled("q:"))
	assert.Equal(t, PhaseReady, c.State().Phase())
	assert.Equal(t, 1, f.initialCount())
	assert.Equal(t, []string{""}, f.queries())

	c.Close()
	c.Open()
	s = c.State()
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, []string{"q:"}, ids(s.Results), "reopen renders retained results")

	require.Eventually(t, func() bool { return len(f.queries()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.initialCount())
}

func TestControllerShowsInitialResultsBeforeFirstQuery(t *testing.T) {
	release := make(chan struct{})
	f := &fakeSearcher{
		initial: []Result{res("init", "Initial", 1)},
		respond: func(ctx context.Context, req Request) ([]Result, error) {
			<-release
			return []Result{res("q:"+req.Query, req.Query, 1)}, nil
		},
	}
	c := NewController(f, Context{}, WithDebounce(time.Hour))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, func(s State) bool { return s.InitialResultsLoaded })
	s := c.State()
	assert.Equal(t, []string{"init"}, ids(s.Results))
	assert.True(t, s.IsLoading)

	close(release)
	waitFor(t, c, settled("q:"))
}

func TestControllerDebounceLastWriteWins(t *testing.T) {
	f := &fakeSearcher{}
	c := NewController(f, Context{}, WithDebounce(40*time.Millisecond))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))

	c.SetQuery("c")
	c.SetQuery("cl")
	c.SetQuery("clo")
	assert.Equal(t, "clo", c.State().Query)

	waitFor(t, c, settled("q:clo"))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"", "clo"}, f.queries())
}

func TestControllerDiscardsStaleResponse(t *testing.T) {
	f := &fakeSearcher{
		respond: func(_ context.Context, req Request) ([]Result, error) {
			if req.Query == "slow" {
				// Ignores cancellation on purpose.
				time.Sleep(150 * time.Millisecond)
			}
			return []Result{res("q:"+req.Query, req.Query, 1)}, nil
		},
	}
	c := NewController(f, Context{}, WithDebounce(10*time.Millisecond))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))

	c.SetQuery("slow")
	require.Eventually(t, func() bool { return len(f.queries()) == 2 }, time.Second, 2*time.Millisecond)
	c.SetQuery("fast")

	waitFor(t, c, settled("q:fast"))
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{"q:fast"}, ids(c.State().Results))
}

func TestControllerCancelsSupersededQuery(t *testing.T) {
	cancelled := make(chan struct{})
	f := &fakeSearcher{
		respond: func(ctx context.Context, req Request) ([]Result, error) {
			if req.Query == "first" {
				<-ctx.Done()
				close(cancelled)
				return nil, ctx.Err()
			}
			return []Result{res("q:"+req.Query, req.Query, 1)}, nil
		},
	}
	c := NewController(f, Context{}, WithDebounce(10*time.Millisecond))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))

	c.SetQuery("first")
	require.Eventually(t, func() bool { return len(f.queries()) == 2 }, time.Second, 2*time.Millisecond)
	c.SetQuery("second")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded query was not cancelled")
	}
	waitFor(t, c, settled("q:second"))
}

func TestControllerCloseRetainsResults(t *testing.T) {
	f := &fakeSearcher{}
	c := NewController(f, Context{}, WithDebounce(5*time.Millisecond))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))
	c.SetQuery("board")
	waitFor(t, c, settled("q:board"))

	c.Close()
	s := c.State()
	assert.False(t, s.IsOpen)
	assert.Empty(t, s.Query)
	assert.True(t, s.InitialResultsLoaded)
	assert.False(t, s.IsLoading)
	assert.Equal(t, []string{"q:board"}, ids(s.Results))
}

func TestControllerCloseCancelsPendingDebounce(t *testing.T) {
	f := &fakeSearcher{}
	c := NewController(f, Context{}, WithDebounce(40*time.Millisecond))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))

	c.SetQuery("never")
	c.Close()
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, f.queries(), "never")
}

func TestControllerQueryWhileClosedDoesNotSearch(t *testing.T) {
	f := &fakeSearcher{}
	c := NewController(f, Context{}, WithDebounce(5*time.Millisecond))
	defer c.Dispose()

	c.SetQuery("hidden")
	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, f.queries())
	assert.Equal(t, 0, f.initialCount())
}

func TestControllerQueryFailureKeepsResults(t *testing.T) {
	f := &fakeSearcher{
		respond: func(_ context.Context, req Request) ([]Result, error) {
			if req.Query == "bad" {
				return nil, errors.New("engine exploded")
			}
			return []Result{res("q:"+req.Query, req.Query, 1)}, nil
		},
	}
	c := NewController(f, Context{}, WithDebounce(5*time.Millisecond))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))

	c.SetQuery("bad")
	require.Eventually(t, func() bool { return len(f.queries()) == 2 }, time.Second, 2*time.Millisecond)
	waitFor(t, c, func(s State) bool { return !s.IsLoading })
	assert.Equal(t, []string{"q:"}, ids(c.State().Results))
}

func TestControllerInitialFailureStillOpens(t *testing.T) {
	f := &fakeSearcher{initialErr: errors.New("no recents")}
	c := NewController(f, Context{}, WithDebounce(time.Hour))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))
	assert.Equal(t, PhaseReady, c.State().Phase())
}

func TestControllerSetContext(t *testing.T) {
	f := &fakeSearcher{}
	var changes atomic.Int32
	c := NewController(f, Context{Route: "/issues"},
		WithDebounce(5*time.Millisecond),
		WithOnChange(func(State) { changes.Add(1) }))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, settled("q:"))
	require.Len(t, f.queries(), 1)
	// Let the notification for the first query land.
	time.Sleep(20 * time.Millisecond)

	before := changes.Load()
	c.SetContext(Context{Route: "/issues"})
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, changes.Load(), "equal context is ignored")
	assert.Len(t, f.queries(), 1)

	selected := Context{Route: "/issues"}.WithSelection("issue", "PM-3")
	c.SetContext(selected)
	require.Eventually(t, func() bool { return len(f.queries()) == 2 }, time.Second, 2*time.Millisecond)
	assert.True(t, f.lastRequest().Context.Equal(selected))
	assert.True(t, c.State().Context.Equal(selected))
}

func TestControllerSelect(t *testing.T) {
	var got Context
	f := &fakeSearcher{
		respond: func(context.Context, Request) ([]Result, error) {
			return []Result{
				{ID: "go", Title: "Go", OnSelect: func(pc Context) error { got = pc; return nil }},
				{ID: "fail", Title: "Fail", OnSelect: func(Context) error { return errors.New("nope") }},
				{ID: "inert", Title: "Inert"},
			}, nil
		},
	}
	pc := Context{Route: "/board", User: User{ID: "u-1"}}
	c := NewController(f, pc, WithDebounce(time.Hour))
	defer c.Dispose()

	openReady := func() {
		c.Open()
		waitFor(t, c, func(s State) bool { return !s.IsLoading && len(s.Results) == 3 })
	}

	openReady()
	require.NoError(t, c.Select("go"))
	assert.True(t, got.Equal(pc))
	assert.False(t, c.State().IsOpen)

	openReady()
	assert.ErrorIs(t, c.Select("missing"), ErrResultNotFound)
	assert.True(t, c.State().IsOpen)

	assert.EqualError(t, c.Select("fail"), "nope")
	assert.False(t, c.State().IsOpen)

	openReady()
	assert.NoError(t, c.Select("inert"))
}

func TestControllerDebounce(t *testing.T) {
	c := NewController(&fakeSearcher{}, Context{})
	t.Cleanup(c.Dispose)
	assert.Equal(t, DefaultDebounce, c.Debounce())

	custom := NewController(&fakeSearcher{}, Context{}, WithDebounce(5*time.Millisecond))
	t.Cleanup(custom.Dispose)
	assert.Equal(t, 5*time.Millisecond, custom.Debounce())
}

func TestControllerDispose(t *testing.T) {
	release := make(chan struct{})
	f := &fakeSearcher{
		respond: func(_ context.Context, req Request) ([]Result, error) {
			<-release
			return []Result{res("late", "Late", 1)}, nil
		},
	}
	c := NewController(f, Context{}, WithDebounce(time.Hour))

	c.Open()
	require.Eventually(t, func() bool { return len(f.queries()) == 1 }, time.Second, 2*time.Millisecond)
	c.Dispose()
	close(release)

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, c.State().Results)
	assert.ErrorIs(t, c.Select("late"), ErrDisposed)

	c.Close()
	c.Open()
	c.Dispose()
	assert.True(t, c.State().IsOpen, "calls after dispose are no-ops")
}

func TestControllerWithEngine(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Provider{
		ID:       "routes",
		Priority: 1,
		Search: func(_ context.Context, query string, _ Context) ([]Result, error) {
			if query == "" {
				return nil, nil
			}
			return []Result{res("route:"+query, "Go to "+query, 10)}, nil
		},
		InitialResults: func(context.Context, Context) ([]Result, error) {
			return []Result{res("recent", "Recent", 1)}, nil
		},
	}))
	require.NoError(t, registry.Register(failingProvider("broken", errors.New("down"))))

	c := NewController(NewEngine(registry), Context{}, WithDebounce(5*time.Millisecond), WithLimit(5))
	defer c.Dispose()

	c.Open()
	waitFor(t, c, func(s State) bool { return s.Phase() == PhaseReady && !s.IsLoading })
	c.SetQuery("board")
	waitFor(t, c, settled("route:board"))
	assert.Equal(t, "routes", c.State().Results[0].ProviderID)
}
