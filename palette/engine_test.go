package palette

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func res(id, title string, score float64) Result {
	return Result{ID: id, Title: title, Group: "Test", Score: score}
}

func staticProvider(id string, priority int, results ...Result) Provider {
	return Provider{
		ID:       id,
		Label:    id,
		Priority: priority,
		Search: func(context.Context, string, Context) ([]Result, error) {
			return results, nil
		},
	}
}

func failingProvider(id string, err error) Provider {
	return Provider{
		ID: id,
		Search: func(context.Context, string, Context) ([]Result, error) {
			return nil, err
		},
	}
}

func newTestEngine(t *testing.T, providers []Provider, opts ...EngineOption) *Engine {
	t.Helper()
	registry := NewRegistry()
	for _, p := range providers {
		require.NoError(t, registry.Register(p))
	}
	return NewEngine(registry, opts...)
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

type errorSink struct {
	mu   sync.Mutex
	errs []*ProviderError
}

func (s *errorSink) handle(perr *ProviderError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, perr)
}

func (s *errorSink) all() []*ProviderError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ProviderError(nil), s.errs...)
}

func TestQueryPriorityBreaksScoreTie(t *testing.T) {
	engine := newTestEngine(t, []Provider{
		staticProvider("a", 10, res("a-400", "Alpha", 400), res("a-50", "Alpha low", 50)),
		staticProvider("b", 20, res("b-400", "Beta", 400)),
	})

	results, err := engine.Query(context.Background(), Request{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-400", "a-400", "a-50"}, ids(results))
	assert.Equal(t, "b", results[0].ProviderID)
	assert.Equal(t, "a", results[1].ProviderID)
}

func TestQueryIsolatesFailingProvider(t *testing.T) {
	sink := &errorSink{}
	engine := newTestEngine(t, []Provider{
		staticProvider("c", 0, res("c-100", "Hundred", 100), res("c-300", "Three hundred", 300), res("c-200", "Two hundred", 200)),
		failingProvider("d", errors.New("backend down")),
	}, WithErrorHandler(sink.handle))

	results, err := engine.Query(context.Background(), Request{Query: "x", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c-300", "c-200"}, ids(results))

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.Equal(t, "d", errs[0].ProviderID)
	assert.False(t, errs[0].Initial)
	assert.EqualError(t, errs[0], "provider d search: backend down")
}

func TestInitialResultsOnlyCallsDefiningProviders(t *testing.T) {
	var searched atomic.Int32
	searchOnly := Provider{
		ID: "search-only",
		Search: func(context.Context, string, Context) ([]Result, error) {
			searched.Add(1)
			return []Result{res("s", "Search", 1)}, nil
		},
	}
	initialOnly := Provider{
		ID: "e",
		InitialResults: func(_ context.Context, pc Context) ([]Result, error) {
			return []Result{res("e-1", "Recent on "+pc.Route, 1)}, nil
		},
	}
	engine := newTestEngine(t, []Provider{searchOnly, initialOnly})

	results, err := engine.InitialResults(context.Background(), Context{Route: "/issues"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "e-1", results[0].ID)
	assert.Equal(t, "Recent on /issues", results[0].Title)
	assert.Equal(t, int32(0), searched.Load())

	// Providers without Search are skipped by queries.
	results, err = engine.Query(context.Background(), Request{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids(results))
}

func TestQueryTieBreaks(t *testing.T) {
	tests := []struct {
		name      string
		providers []Provider
		want      []string
	}{
		{
			name: "score descending",
			providers: []Provider{
				staticProvider("p", 0, res("low", "A", 1), res("high", "B", 9), res("mid", "C", 5)),
			},
			want: []string{"high", "mid", "low"},
		},
		{
			name: "title ascending on equal score and priority",
			providers: []Provider{
				staticProvider("p", 0, res("2", "Zebra", 5), res("1", "apple", 5), res("3", "Apple", 5)),
			},
			want: []string{"3", "2", "1"},
		},
		{
			name: "id ascending on equal title",
			providers: []Provider{
				staticProvider("p", 0, res("b", "Same", 5), res("a", "Same", 5)),
			},
			want: []string{"a", "b"},
		},
		{
			name: "priority beats title",
			providers: []Provider{
				staticProvider("low", 0, res("l", "Aardvark", 5)),
				staticProvider("high", 1, res("h", "Zulu", 5)),
			},
			want: []string{"h", "l"},
		},
		{
			name: "score beats priority",
			providers: []Provider{
				staticProvider("low", 0, res("l", "Low", 6)),
				staticProvider("high", 100, res("h", "High", 5)),
			},
			want: []string{"l", "h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.providers)
			results, err := engine.Query(context.Background(), Request{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(results))
		})
	}
}

func TestQueryLimit(t *testing.T) {
	many := make([]Result, 60)
	for i := range many {
		many[i] = res(fmt.Sprintf("r%02d", i), fmt.Sprintf("Result %02d", i), float64(i))
	}

	tests := []struct {
		name  string
		limit int
		want  int
		first string
	}{
		{name: "default limit", limit: 0, want: DefaultLimit, first: "r59"},
		{name: "negative uses default", limit: -3, want: DefaultLimit, first: "r59"},
		{name: "one", limit: 1, want: 1, first: "r59"},
		{name: "more than candidates", limit: 100, want: 60, first: "r59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, []Provider{staticProvider("p", 0, many...)})
			results, err := engine.Query(context.Background(), Request{Limit: tt.limit})
			require.NoError(t, err)
			require.Len(t, results, tt.want)
			assert.Equal(t, tt.first, results[0].ID)
			// The kept results are the highest ranked ones.
			assert.Equal(t, 59-float64(tt.want-1), results[len(results)-1].Score)
		})
	}
}

func TestQueryTruncatesAfterGlobalSort(t *testing.T) {
	engine := newTestEngine(t, []Provider{
		staticProvider("busy", 10, res("b1", "B1", 1), res("b2", "B2", 2)),
		staticProvider("strong", 0, res("s1", "S1", 90), res("s2", "S2", 80), res("s3", "S3", 70)),
	})

	results, err := engine.Query(context.Background(), Request{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(results))
}

func TestQueryRecoversPanickingProvider(t *testing.T) {
	sink := &errorSink{}
	engine := newTestEngine(t, []Provider{
		{
			ID: "boom",
			Search: func(context.Context, string, Context) ([]Result, error) {
				panic("nil map")
			},
		},
		staticProvider("ok", 0, res("ok-1", "Fine", 1)),
	}, WithErrorHandler(sink.handle))

	results, err := engine.Query(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok-1"}, ids(results))

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrProviderPanic)
}

func TestQueryTimesOutSlowProvider(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	sink := &errorSink{}
	engine := newTestEngine(t, []Provider{
		{
			// Ignores its context entirely.
			ID: "stuck",
			Search: func(context.Context, string, Context) ([]Result, error) {
				<-release
				return []Result{res("late", "Late", 1000)}, nil
			},
		},
		staticProvider("fast", 0, res("fast-1", "Fast", 1)),
	}, WithProviderTimeout(30*time.Millisecond), WithErrorHandler(sink.handle))

	start := time.Now()
	results, err := engine.Query(context.Background(), Request{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, []string{"fast-1"}, ids(results))

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.Equal(t, "stuck", errs[0].ProviderID)
	assert.ErrorIs(t, errs[0], ErrProviderTimeout)
}

func TestQueryRunsProvidersConcurrently(t *testing.T) {
	slow := func(id string) Provider {
		return Provider{
			ID: id,
			Search: func(ctx context.Context, _ string, _ Context) ([]Result, error) {
				select {
				case <-time.After(100 * time.Millisecond):
					return []Result{res(id, id, 1)}, nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			},
		}
	}
	engine := newTestEngine(t, []Provider{slow("one"), slow("two"), slow("three"), slow("four")})

	start := time.Now()
	results, err := engine.Query(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Less(t, time.Since(start), 300*time.Millisecond)
}

func TestQueryMaxConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	tracked := func(id string) Provider {
		return Provider{
			ID: id,
			Search: func(context.Context, string, Context) ([]Result, error) {
				n := running.Add(1)
				defer running.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				return []Result{res(id, id, 1)}, nil
			},
		}
	}
	engine := newTestEngine(t, []Provider{tracked("a"), tracked("b"), tracked("c")}, WithMaxConcurrency(1))

	results, err := engine.Query(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, int32(1), peak.Load())
}

func TestQueryCancelledContext(t *testing.T) {
	sink := &errorSink{}
	engine := newTestEngine(t, []Provider{
		{
			ID: "waits",
			Search: func(ctx context.Context, _ string, _ Context) ([]Result, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		},
	}, WithErrorHandler(sink.handle))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	results, err := engine.Query(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
	assert.Empty(t, sink.all())
}

func TestQueryDropsDuplicateIDs(t *testing.T) {
	engine := newTestEngine(t, []Provider{
		staticProvider("weak", 0, res("shared", "From weak", 10), res("w", "W", 1)),
		staticProvider("strong", 5, res("shared", "From strong", 10)),
	})

	results, err := engine.Query(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "w"}, ids(results))
	assert.Equal(t, "strong", results[0].ProviderID)
}

func TestQueryPassesQueryAndContext(t *testing.T) {
	var gotQuery string
	var gotContext Context
	engine := newTestEngine(t, []Provider{{
		ID: "echo",
		Search: func(_ context.Context, query string, pc Context) ([]Result, error) {
			gotQuery, gotContext = query, pc
			return nil, nil
		},
	}})

	pc := Context{Route: "/board", User: User{ID: "u-1", Role: "admin"}}
	_, err := engine.Query(context.Background(), Request{Query: "close", Context: pc})
	require.NoError(t, err)
	assert.Equal(t, "close", gotQuery)
	assert.True(t, gotContext.Equal(pc))
}

func TestQueryIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var providers []Provider
	priorities := map[string]int{}
	for p := range 6 {
		id := fmt.Sprintf("p%d", p)
		priorities[id] = rng.IntN(3)
		var results []Result
		for r := range rng.IntN(12) {
			results = append(results, res(
				fmt.Sprintf("%s-%d", id, r),
				fmt.Sprintf("Title %d", rng.IntN(4)),
				float64(rng.IntN(5)),
			))
		}
		providers = append(providers, staticProvider(id, priorities[id], results...))
	}
	engine := newTestEngine(t, providers)

	first, err := engine.Query(context.Background(), Request{Limit: 20})
	require.NoError(t, err)
	second, err := engine.Query(context.Background(), Request{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))

	seen := map[string]bool{}
	for i, r := range first {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		if i == 0 {
			continue
		}
		prev := first[i-1]
		a := candidate{result: prev, priority: priorities[prev.ProviderID]}
		b := candidate{result: r, priority: priorities[r.ProviderID]}
		assert.Negative(t, compareCandidates(a, b), "%s should rank before %s", prev.ID, r.ID)
	}
}

func TestRegistry(t *testing.T) {
	t.Run("overwrites in place", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(staticProvider("a", 1)))
		require.NoError(t, registry.Register(staticProvider("b", 1)))
		require.NoError(t, registry.Register(staticProvider("a", 9)))

		providers := registry.Providers()
		require.Len(t, providers, 2)
		assert.Equal(t, "a", providers[0].ID)
		assert.Equal(t, 9, providers[0].Priority)

		p, ok := registry.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 9, p.Priority)
	})

	t.Run("clear", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(staticProvider("a", 0)))
		registry.Clear()
		assert.Equal(t, 0, registry.Len())
		_, ok := registry.Get("a")
		assert.False(t, ok)

		engine := NewEngine(registry)
		results, err := engine.Query(context.Background(), Request{Query: "x"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects invalid providers", func(t *testing.T) {
		registry := NewRegistry()
		assert.ErrorIs(t, registry.Register(Provider{Search: staticProvider("x", 0).Search}), ErrInvalidProvider)
		assert.ErrorIs(t, registry.Register(Provider{ID: "empty"}), ErrInvalidProvider)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(staticProvider("a", 0)))
		providers := registry.Providers()
		providers[0].ID = "mutated"
		p, _ := registry.Get("a")
		assert.Equal(t, "a", p.ID)
	})
}
