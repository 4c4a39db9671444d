package providers

import (
	"context"

	"taskdeck/cmd/commands"
	"taskdeck/palette"
)

const (
	NavigationProviderID       = "navigation"
	navigationProviderPriority = 20
)

// NewNavigationProvider offers every application route. Selecting one runs
// the navigation handler; the current route is listed last.
func NewNavigationProvider(h *commands.NavigationHandlers) palette.Provider {
	return palette.Provider{
		ID:       NavigationProviderID,
		Label:    "Go to",
		Priority: navigationProviderPriority,
		Search: func(_ context.Context, query string, pc palette.Context) ([]palette.Result, error) {
			var out []palette.Result
			for _, route := range commands.Routes {
				fields := append([]field{
					{text: route.Title, weight: 100, min: 0.3},
					{text: route.Path, weight: 90, min: 0.8},
				}, keywordFields(route.Keywords, 70, 0.8)...)
				score := bestScore(query, 1, fields...)
				if score <= 0 {
					continue
				}

				subtitle := route.Path
				if route.Path == pc.Route {
					subtitle += " (current)"
					score /= 2
				}
				out = append(out, palette.Result{
					ID:       "route:" + route.Path,
					Title:    "Go to " + route.Title,
					Subtitle: subtitle,
					Group:    "Navigation",
					Score:    score,
					OnSelect: commands.NavigateCommand(h, route.Path),
				})
			}
			return out, nil
		},
	}
}
