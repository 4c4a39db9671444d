// Package palette implements the command palette query engine: a registry
// of result providers, a search engine that fans queries out to them and
// ranks the merged results, and a controller that drives debounced queries
// for one palette instance.
package palette

import (
	"context"

	"taskdeck/cmd/interfaces"
)

// Context is the snapshot of where the user is, shared with the command registry.
type Context = interfaces.CommandContext

// User and Selection are the parts of a Context.
type (
	User      = interfaces.User
	Selection = interfaces.Selection
)

// Result is a single palette entry. Results are built fresh for every query
// and never mutated once returned by a provider.
type Result struct {
	ID       string
	Title    string
	Subtitle string
	Group    string
	// Score is only comparable with other results of the same query.
	Score float64
	// OnSelect runs when the user picks the result.
	OnSelect func(ctx Context) error

	// ProviderID is stamped by the engine during merge.
	ProviderID string
}

// SearchFunc returns candidate results for a query. ctx carries the
// provider deadline and is cancelled when the query is superseded.
type SearchFunc func(ctx context.Context, query string, pc Context) ([]Result, error)

// InitialResultsFunc returns results to show before anything is typed.
type InitialResultsFunc func(ctx context.Context, pc Context) ([]Result, error)

// Provider is a registered unit of search logic.
type Provider struct {
	ID    string
	Label string
	// Priority breaks score ties between providers; higher wins.
	Priority int

	// A provider needs at least one of Search and InitialResults.
	Search         SearchFunc
	InitialResults InitialResultsFunc
}

// Request is a single query against the engine.
type Request struct {
	Query   string
	Context Context
	// Limit caps the number of results; zero or negative means DefaultLimit.
	Limit int
}
