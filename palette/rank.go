package palette

import (
	"cmp"
	"slices"

	"taskdeck/log"
)

// contribution is what one provider returned for a query
type contribution struct {
	provider Provider
	// order is the provider's registration position, the last tie-break
	order   int
	results []Result
}

type candidate struct {
	result   Result
	priority int
	order    int
}

// compareCandidates orders by score desc, provider priority desc, title asc,
// id asc, then provider registration order. Two candidates only compare
// equal when they are the same id from the same provider.
func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(b.result.Score, a.result.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.result.Title, b.result.Title); c != 0 {
		return c
	}
	if c := cmp.Compare(a.result.ID, b.result.ID); c != 0 {
		return c
	}
	return cmp.Compare(a.order, b.order)
}

// merge flattens contributions, ranks them, drops repeated ids and keeps the
// best limit results. When two results share an id the higher ranked one wins.
func merge(contributions []contribution, limit int) []Result {
	var candidates []candidate
	for _, c := range contributions {
		for _, r := range c.results {
			r.ProviderID = c.provider.ID
			candidates = append(candidates, candidate{result: r, priority: c.provider.Priority, order: c.order})
		}
	}

	slices.SortStableFunc(candidates, compareCandidates)

	out := make([]Result, 0, min(limit, len(candidates)))
	seen := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		if owner, dup := seen[c.result.ID]; dup {
			log.WarningLog.Printf("palette: dropping duplicate result id %q from provider %s (kept %s)",
				c.result.ID, c.result.ProviderID, owner)
			continue
		}
		seen[c.result.ID] = c.result.ProviderID
		out = append(out, c.result)
	}
	return out
}
