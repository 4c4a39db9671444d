package providers

import (
	"context"
	"sync"

	"taskdeck/palette"
)

const (
	RecentsProviderID       = "recent"
	recentsProviderPriority = 40
	recentIDPrefix          = "recent:"

	// DefaultRecentsSize is how many selections Recents remembers
	DefaultRecentsSize = 8
)

// Recents remembers the results the user picked most recently, for this
// process only. It is safe for concurrent use.
type Recents struct {
	mu    sync.Mutex
	size  int
	items []palette.Result
}

// NewRecents creates a store holding at most size selections
func NewRecents(size int) *Recents {
	if size <= 0 {
		size = DefaultRecentsSize
	}
	return &Recents{size: size}
}

// Record moves r to the front, dropping the oldest entry when full
func (r *Recents) Record(res palette.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res.ProviderID = ""
	res.Score = 0
	items := make([]palette.Result, 0, r.size)
	items = append(items, res)
	for _, item := range r.items {
		if item.ID == res.ID {
			continue
		}
		if len(items) == r.size {
			break
		}
		items = append(items, item)
	}
	r.items = items
}

// Items returns the remembered results, most recent first
func (r *Recents) Items() []palette.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]palette.Result, len(r.items))
	copy(out, r.items)
	return out
}

// RecentID is the id the recents provider gives a remembered result, kept
// apart from the id of the provider it came from.
func RecentID(id string) string {
	return recentIDPrefix + id
}

// Track wraps p so that every result it returns is recorded when selected
// and its action succeeds. Results the recents provider already shows for
// the same query are left out.
func (r *Recents) Track(p palette.Provider) palette.Provider {
	if p.Search != nil {
		search := p.Search
		p.Search = func(ctx context.Context, query string, pc palette.Context) ([]palette.Result, error) {
			results, err := search(ctx, query, pc)
			return r.wrap(results, r.shown(query, false)), err
		}
	}
	if p.InitialResults != nil {
		initial := p.InitialResults
		p.InitialResults = func(ctx context.Context, pc palette.Context) ([]palette.Result, error) {
			results, err := initial(ctx, pc)
			return r.wrap(results, r.shown("", true)), err
		}
	}
	return p
}

// shown returns the original ids of the remembered results the recents
// provider lists for query
func (r *Recents) shown(query string, initial bool) map[string]bool {
	ids := make(map[string]bool)
	for _, item := range r.Items() {
		if initial || recentScore(query, item) > 0 {
			ids[item.ID] = true
		}
	}
	return ids
}

func (r *Recents) wrap(results []palette.Result, skip map[string]bool) []palette.Result {
	if len(results) == 0 {
		return results
	}
	out := make([]palette.Result, 0, len(results))
	for _, res := range results {
		if skip[res.ID] {
			continue
		}
		res.OnSelect = r.recording(res)
		out = append(out, res)
	}
	return out
}

// recording returns res's action followed by recording res
func (r *Recents) recording(res palette.Result) func(palette.Context) error {
	action := res.OnSelect
	return func(pc palette.Context) error {
		if action != nil {
			if err := action(pc); err != nil {
				return err
			}
		}
		stored := res
		stored.OnSelect = action
		r.Record(stored)
		return nil
	}
}

func recentScore(query string, item palette.Result) float64 {
	if query == "" {
		return 0
	}
	return bestScore(query, 0, field{text: item.Title, weight: 100, min: 0.3})
}

// present turns a remembered item into a result of the recents provider
func (r *Recents) present(item palette.Result, score float64) palette.Result {
	res := item
	res.ID = RecentID(item.ID)
	res.Score = score
	res.Group = "Recent"
	res.OnSelect = r.recording(item)
	return res
}

// Provider exposes the remembered results: all of them before anything is
// typed, fuzzy matched by title afterwards.
func (r *Recents) Provider() palette.Provider {
	return palette.Provider{
		ID:       RecentsProviderID,
		Label:    "Recent",
		Priority: recentsProviderPriority,
		Search: func(_ context.Context, query string, _ palette.Context) ([]palette.Result, error) {
			var out []palette.Result
			for _, item := range r.Items() {
				if score := recentScore(query, item); score > 0 {
					out = append(out, r.present(item, score))
				}
			}
			return out, nil
		},
		InitialResults: func(context.Context, palette.Context) ([]palette.Result, error) {
			items := r.Items()
			out := make([]palette.Result, len(items))
			for i, item := range items {
				// Recency outranks everything else shown before typing
				out[i] = r.present(item, float64(1000-i))
			}
			return out, nil
		},
	}
}
