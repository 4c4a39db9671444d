package cmd

import (
	"fmt"

	"taskdeck/cmd/commands"
)

// InitializeCommands sets up all standard commands in the registry.
// Handlers may be nil; commands then run as no-ops.
func InitializeCommands(registry *CommandRegistry, h *commands.Handlers) error {
	if err := InitializeScopes(registry); err != nil {
		return err
	}
	if h == nil {
		h = &commands.Handlers{}
	}

	// Navigation commands
	for i, route := range commands.Routes {
		b, err := registry.Register(&Command{
			ID:          CommandID("nav.goto" + route.Path),
			Title:       "Go to " + route.Title,
			Description: "Open " + route.Title,
			Keywords:    route.Keywords,
			Category:    CategoryNavigation,
			Run:         commands.NavigateCommand(&h.Navigation, route.Path),
			Scopes:      []ScopeID{ScopeGlobal},
		})
		if err != nil {
			return err
		}
		b.BindKey(string(rune('1' + i)))
	}

	if _, err := registry.Register(&Command{
		ID:          "nav.up",
		Title:       "Previous Issue",
		Description: "Move selection up",
		Category:    CategoryNavigation,
		Run:         commands.UpCommand(&h.Navigation),
		Scopes:      []ScopeID{ScopeList, ScopeSidebar},
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "nav.down",
		Title:       "Next Issue",
		Description: "Move selection down",
		Category:    CategoryNavigation,
		Run:         commands.DownCommand(&h.Navigation),
		Scopes:      []ScopeID{ScopeList, ScopeSidebar},
	}); err != nil {
		return err
	}

	// Issue commands
	if _, err := registry.Register(&Command{
		ID:          "issue.assign_me",
		Title:       "Assign to Me",
		Description: "Assign the selected issue to yourself",
		Keywords:    []string{"assignee", "take", "own"},
		Category:    CategoryIssues,
		Run:         commands.AssignToMeCommand(&h.Issues),
		Scopes:      []ScopeID{ScopeList},
		When:        commands.HasIssueSelection,
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "issue.close",
		Title:       "Close Issue",
		Description: "Mark the selected issue as done",
		Keywords:    []string{"done", "resolve", "complete"},
		Category:    CategoryIssues,
		Run:         commands.CloseIssueCommand(&h.Issues),
		Scopes:      []ScopeID{ScopeList},
		When:        commands.HasIssueSelection,
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "issue.copy_key",
		Title:       "Copy Issue Key",
		Description: "Copy the selected issue key to the clipboard",
		Keywords:    []string{"clipboard", "yank", "id"},
		Category:    CategoryIssues,
		Run:         commands.CopyIssueKeyCommand(&h.Issues),
		Scopes:      []ScopeID{ScopeList},
		When:        commands.HasIssueSelection,
	}); err != nil {
		return err
	}

	// View commands
	if _, err := registry.Register(&Command{
		ID:          "view.toggle_sidebar",
		Title:       "Toggle Sidebar",
		Description: "Show or hide the sidebar",
		Keywords:    []string{"panel", "hide", "show", "navigation"},
		Category:    CategoryView,
		Run:         commands.TogglePanelCommand(&h.View, commands.PanelSidebar),
		Scopes:      []ScopeID{ScopeGlobal},
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "view.toggle_details",
		Title:       "Toggle Details Panel",
		Description: "Show or hide the issue details panel",
		Keywords:    []string{"panel", "preview", "inspector"},
		Category:    CategoryView,
		Run:         commands.TogglePanelCommand(&h.View, commands.PanelDetails),
		Scopes:      []ScopeID{ScopeGlobal},
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "view.cycle_label",
		Title:       "Filter by Label",
		Description: "Cycle the issue list label filter",
		Keywords:    []string{"label", "tag", "filter"},
		Category:    CategoryView,
		Run:         commands.CycleLabelCommand(&h.View),
		Scopes:      []ScopeID{ScopeList},
	}); err != nil {
		return err
	}

	// System commands
	if _, err := registry.Register(&Command{
		ID:          "sys.palette",
		Title:       "Command Palette",
		Description: "Search commands, issues and places",
		Category:    CategorySpecial,
		Run:         commands.OpenPaletteCommand(&h.View),
		Scopes:      []ScopeID{ScopeGlobal},
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "sys.help",
		Title:       "Keyboard Shortcuts",
		Description: "Show help screen",
		Keywords:    []string{"help", "keys", "bindings"},
		Category:    CategorySystem,
		Run:         commands.HelpCommand(&h.View),
		Scopes:      []ScopeID{ScopeGlobal},
	}); err != nil {
		return err
	}
	if _, err := registry.Register(&Command{
		ID:          "sys.quit",
		Title:       "Quit",
		Description: "Quit the application",
		Keywords:    []string{"exit", "close"},
		Category:    CategorySystem,
		Run:         commands.QuitCommand(&h.View),
		Scopes:      []ScopeID{ScopeGlobal},
	}); err != nil {
		return err
	}

	return bindDefaultKeys(registry)
}

// bindDefaultKeys attaches the default keymap to registered commands
func bindDefaultKeys(registry *CommandRegistry) error {
	defaults := []struct {
		id   CommandID
		keys []string
	}{
		{"nav.up", []string{"up", "k"}},
		{"nav.down", []string{"down", "j"}},
		{"issue.assign_me", []string{"a"}},
		{"issue.close", []string{"x"}},
		{"issue.copy_key", []string{"y"}},
		{"view.toggle_sidebar", []string{"ctrl+b"}},
		{"view.toggle_details", []string{"ctrl+e"}},
		{"view.cycle_label", []string{"l"}},
		{"sys.palette", []string{"ctrl+k", ":"}},
		{"sys.help", []string{"?"}},
		{"sys.quit", []string{"q", "ctrl+c"}},
	}

	for _, d := range defaults {
		command, ok := registry.GetCommand(d.id)
		if !ok {
			return fmt.Errorf("cannot bind keys: command %s not registered", d.id)
		}
		(&CommandBuilder{registry: registry, command: command}).BindKeys(d.keys...)
	}
	return nil
}
