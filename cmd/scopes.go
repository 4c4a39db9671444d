package cmd

import "taskdeck/cmd/interfaces"

// Standard application scopes
const (
	ScopeGlobal  = interfaces.ScopeGlobal
	ScopeList    = interfaces.ScopeList
	ScopeSidebar = interfaces.ScopeSidebar
	ScopePalette = interfaces.ScopePalette
	ScopeHelp    = interfaces.ScopeHelp
)

// InitializeScopes sets up the scope hierarchy
func InitializeScopes(registry *CommandRegistry) error {
	scopes := []*Scope{
		{
			ID:          ScopeGlobal,
			Name:        "Global",
			Description: "Commands available everywhere",
		},
		{
			ID:          ScopeList,
			Name:        "Issue List",
			Parent:      ptr(ScopeGlobal),
			Description: "Commands available while browsing issues",
		},
		{
			ID:          ScopeSidebar,
			Name:        "Sidebar",
			Parent:      ptr(ScopeGlobal),
			Description: "Commands available while the sidebar has focus",
		},
		{
			ID:          ScopePalette,
			Name:        "Command Palette",
			Description: "Keys handled by the open command palette",
		},
		{
			ID:          ScopeHelp,
			Name:        "Help Screen",
			Parent:      ptr(ScopeGlobal),
			Description: "Commands available when viewing help",
		},
	}

	for _, scope := range scopes {
		if err := registry.RegisterScope(scope); err != nil {
			return err
		}
	}

	return nil
}

// ptr is a helper to get a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
