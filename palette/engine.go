package palette

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdeck/log"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLimit is the result budget when a request does not set one
	DefaultLimit = 50
	// DefaultProviderTimeout bounds how long one provider may take
	DefaultProviderTimeout = time.Second
)

// Engine fans queries out to every registered provider and merges the
// results. A failing, panicking or slow provider only loses its own
// contribution.
type Engine struct {
	registry       *Registry
	timeout        time.Duration
	maxConcurrency int
	onError        func(*ProviderError)
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithProviderTimeout sets the per-provider deadline. Zero disables it.
func WithProviderTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithMaxConcurrency caps how many providers run at once. Zero means no cap.
func WithMaxConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.maxConcurrency = n
	}
}

// WithErrorHandler receives every provider failure after it is logged.
// It may be called from several goroutines at once.
func WithErrorHandler(fn func(*ProviderError)) EngineOption {
	return func(e *Engine) {
		e.onError = fn
	}
}

// NewEngine creates a search engine over registry
func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		timeout:  DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the provider registry the engine queries
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Query runs req against every provider and returns the ranked results.
// Providers without a Search function are skipped. Provider failures
// never fail the query; an error is returned only when
// ctx is done before the results are merged.
func (e *Engine) Query(ctx context.Context, req Request) ([]Result, error) {
	start := time.Now()
	var providers []Provider
	for _, p := range e.registry.Providers() {
		if p.Search != nil {
			providers = append(providers, p)
		}
	}

	contributions := e.fanOut(ctx, providers, false, func(ctx context.Context, p Provider) ([]Result, error) {
		return p.Search(ctx, req.Query, req.Context)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := merge(contributions, limit)
	log.DebugLog.Printf("palette: query %q over %d providers -> %d results in %s",
		req.Query, len(providers), len(results), time.Since(start))
	return results, nil
}

// InitialResults collects results to show before the user types anything.
// Providers without an InitialResults function are skipped.
func (e *Engine) InitialResults(ctx context.Context, pc Context) ([]Result, error) {
	var providers []Provider
	for _, p := range e.registry.Providers() {
		if p.InitialResults != nil {
			providers = append(providers, p)
		}
	}

	contributions := e.fanOut(ctx, providers, true, func(ctx context.Context, p Provider) ([]Result, error) {
		return p.InitialResults(ctx, pc)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return merge(contributions, DefaultLimit), nil
}

// fanOut calls every provider concurrently and waits for all of them to
// settle. The returned slice is indexed like providers.
func (e *Engine) fanOut(ctx context.Context, providers []Provider, initial bool, call func(context.Context, Provider) ([]Result, error)) []contribution {
	out := make([]contribution, len(providers))

	var g errgroup.Group
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}

	for i, p := range providers {
		out[i] = contribution{provider: p, order: i}
		g.Go(func() error {
			results, err := e.invoke(ctx, func(ctx context.Context) ([]Result, error) {
				return call(ctx, p)
			})
			if err != nil {
				// A cancelled parent means the query was superseded; nothing to report.
				if ctx.Err() == nil {
					e.report(&ProviderError{ProviderID: p.ID, Initial: initial, Err: err})
				}
				return nil
			}
			out[i].results = results
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// invoke runs one provider call under the provider deadline. A provider
// that ignores its context is abandoned when the deadline passes.
func (e *Engine) invoke(ctx context.Context, fn func(context.Context) ([]Result, error)) ([]Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type outcome struct {
		results []Result
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrProviderPanic, r)}
			}
		}()
		results, err := fn(ctx)
		done <- outcome{results: results, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrProviderTimeout, e.timeout, o.err)
		}
		return o.results, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrProviderTimeout, e.timeout)
		}
		return nil, ctx.Err()
	}
}

func (e *Engine) report(perr *ProviderError) {
	log.ErrorLog.Printf("palette: %v", perr)
	if e.onError != nil {
		e.onError(perr)
	}
}
