package commands

import (
	"taskdeck/cmd/interfaces"
)

// NavigationHandlers contains handlers for navigation commands
type NavigationHandlers struct {
	OnNavigate func(route string) error
	OnMove     func(delta int) error
}

// NavigateCommand switches the host to route
func NavigateCommand(h *NavigationHandlers, route string) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if ctx.Route == route {
			return nil
		}
		if h != nil && h.OnNavigate != nil {
			return h.OnNavigate(route)
		}
		return nil
	}
}

// UpCommand moves the list selection up
func UpCommand(h *NavigationHandlers) func(ctx interfaces.CommandContext) error {
	return moveCommand(h, -1)
}

// DownCommand moves the list selection down
func DownCommand(h *NavigationHandlers) func(ctx interfaces.CommandContext) error {
	return moveCommand(h, 1)
}

func moveCommand(h *NavigationHandlers, delta int) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if h != nil && h.OnMove != nil {
			return h.OnMove(delta)
		}
		return nil
	}
}
