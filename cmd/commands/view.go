package commands

import (
	"taskdeck/cmd/interfaces"
)

// Panels the host can show or hide
const (
	PanelSidebar = "sidebar"
	PanelDetails = "details"
)

// ViewHandlers contains handlers for layout and system commands
type ViewHandlers struct {
	OnTogglePanel func(panel string) error
	OnCycleLabel  func() error
	OnOpenPalette func() error
	OnShowHelp    func() error
	OnQuit        func() error
}

// TogglePanelCommand shows or hides a layout panel
func TogglePanelCommand(h *ViewHandlers, panel string) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if h != nil && h.OnTogglePanel != nil {
			return h.OnTogglePanel(panel)
		}
		return nil
	}
}

// CycleLabelCommand steps the issue list label filter
func CycleLabelCommand(h *ViewHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if h != nil && h.OnCycleLabel != nil {
			return h.OnCycleLabel()
		}
		return nil
	}
}

// OpenPaletteCommand opens the command palette
func OpenPaletteCommand(h *ViewHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if h != nil && h.OnOpenPalette != nil {
			return h.OnOpenPalette()
		}
		return nil
	}
}

// HelpCommand shows the keyboard shortcut screen
func HelpCommand(h *ViewHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if h != nil && h.OnShowHelp != nil {
			return h.OnShowHelp()
		}
		return nil
	}
}

// QuitCommand exits the application
func QuitCommand(h *ViewHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		if h != nil && h.OnQuit != nil {
			return h.OnQuit()
		}
		return nil
	}
}
