package help

import (
	"fmt"
	"sort"
	"strings"

	"taskdeck/cmd"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Generator creates help content from the command registry
type Generator struct {
	registry *cmd.CommandRegistry

	// Styles for formatting help content
	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	keyStyle    lipgloss.Style
	descStyle   lipgloss.Style
	sepStyle    lipgloss.Style
}

// NewGenerator creates a new help generator
func NewGenerator(registry *cmd.CommandRegistry) *Generator {
	return &Generator{
		registry:    registry,
		titleStyle:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#7D56F4")),
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9")),
		keyStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00")),
		descStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		sepStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),
	}
}

// GenerateScopeHelp creates a comprehensive help screen for a scope
func (g *Generator) GenerateScopeHelp(scopeID cmd.ScopeID) string {
	commands := g.registry.GetCommandsForScope(scopeID)
	if len(commands) == 0 {
		return g.titleStyle.Render("No commands available here")
	}

	scope, exists := g.registry.GetScope(scopeID)
	scopeName := string(scopeID)
	if exists {
		scopeName = scope.Name
	}

	var content strings.Builder
	content.WriteString(g.titleStyle.Render(fmt.Sprintf("%s Commands", scopeName)))
	content.WriteString("\n\n")

	if exists && scope.Description != "" {
		content.WriteString(g.descStyle.Render(scope.Description))
		content.WriteString("\n\n")
	}

	categories := g.groupCommandsByCategory(commands)

	sortedCategories := make([]cmd.Category, 0, len(categories))
	for category := range categories {
		if !cmd.IsHiddenCategory(category) {
			sortedCategories = append(sortedCategories, category)
		}
	}
	sort.Slice(sortedCategories, func(i, j int) bool {
		return cmd.GetCategoryPriority(sortedCategories[i]) < cmd.GetCategoryPriority(sortedCategories[j])
	})

	for i, category := range sortedCategories {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(g.formatCategory(category, categories[category]))
	}

	return content.String()
}

// GenerateStatusLine creates the bottom status line showing key commands
func (g *Generator) GenerateStatusLine(scopeID cmd.ScopeID) string {
	primary := g.filterPrimaryCommands(g.registry.GetCommandsForScope(scopeID))

	sort.SliceStable(primary, func(i, j int) bool {
		return cmd.GetCategoryPriority(primary[i].Category) < cmd.GetCategoryPriority(primary[j].Category)
	})

	var parts []string
	for _, command := range primary {
		keys := g.registry.GetKeysForCommand(command.ID)
		if len(keys) == 0 {
			continue
		}
		desc := g.truncateDescription(command.Title, 15)
		parts = append(parts, fmt.Sprintf("%s %s", g.keyStyle.Render(keys[0]), g.descStyle.Render(desc)))
	}

	return strings.Join(parts, g.sepStyle.Render(" • "))
}

// GenerateQuickHelp creates a compact help display for overlays
func (g *Generator) GenerateQuickHelp(scopeID cmd.ScopeID, maxItems int) []string {
	primary := g.filterPrimaryCommands(g.registry.GetCommandsForScope(scopeID))
	if len(primary) > maxItems {
		primary = primary[:maxItems]
	}

	var items []string
	for _, command := range primary {
		keys := g.registry.GetKeysForCommand(command.ID)
		if len(keys) > 0 {
			items = append(items, fmt.Sprintf("%s - %s", keys[0], g.truncateDescription(command.Description, 25)))
		}
	}

	return items
}

// ValidateRegistry checks for issues in the command registry
func (g *Generator) ValidateRegistry() []string {
	var issues []string

	for _, conflict := range g.registry.DetectConflicts() {
		issues = append(issues, fmt.Sprintf("Key conflict in %s: '%s' bound to %v",
			conflict.Scope, conflict.Key, conflict.Commands))
	}

	for command := range g.registry.Commands() {
		if cmd.IsHiddenCategory(command.Category) {
			continue
		}
		if len(g.registry.GetKeysForCommand(command.ID)) == 0 && len(command.Scopes) > 0 {
			issues = append(issues, fmt.Sprintf("Command %s has scopes but no key bindings", command.ID))
		}
	}

	return issues
}

// groupCommandsByCategory groups commands by their category
func (g *Generator) groupCommandsByCategory(commands []*cmd.Command) map[cmd.Category][]*cmd.Command {
	groups := make(map[cmd.Category][]*cmd.Command)

	for _, command := range commands {
		category := command.Category
		if category == "" {
			category = "Other"
		}
		groups[category] = append(groups[category], command)
	}

	for category := range groups {
		sort.Slice(groups[category], func(i, j int) bool {
			return groups[category][i].Title < groups[category][j].Title
		})
	}

	return groups
}

// formatCategory creates formatted output for a command category
func (g *Generator) formatCategory(category cmd.Category, commands []*cmd.Command) string {
	var content strings.Builder

	content.WriteString(g.headerStyle.Render(string(category) + ":"))
	content.WriteString("\n")

	for _, command := range commands {
		keys := g.registry.GetKeysForCommand(command.ID)
		if len(keys) == 0 {
			continue
		}

		keyText := keys[0]
		if len(keys) > 1 {
			keyText += fmt.Sprintf(" (%s)", strings.Join(keys[1:], ", "))
		}

		// Pad on display width so arrows and other wide runes line up
		padding := strings.Repeat(" ", max(0, 16-runewidth.StringWidth(keyText)))

		content.WriteString(fmt.Sprintf("  %s%s - %s\n",
			g.keyStyle.Render(keyText),
			padding,
			g.descStyle.Render(command.Description)))
	}

	return content.String()
}

// filterPrimaryCommands filters to commands that should appear in status lines
func (g *Generator) filterPrimaryCommands(commands []*cmd.Command) []*cmd.Command {
	var primary []*cmd.Command
	for _, command := range commands {
		if cmd.IsHiddenCategory(command.Category) {
			continue
		}
		primary = append(primary, command)
	}
	return primary
}

// truncateDescription truncates a description to fit in the status line
func (g *Generator) truncateDescription(desc string, maxLen int) string {
	if runewidth.StringWidth(desc) <= maxLen {
		return desc
	}
	return runewidth.Truncate(desc, maxLen, "...")
}
