package interfaces

import "fmt"

// CommandID uniquely identifies a command
type CommandID string

// ScopeID identifies an application mode that key bindings apply in
type ScopeID string

// Category groups related commands for help display
type Category string

// User identifies who is acting.
type User struct {
	ID   string
	Role string
}

// Selection is the item currently focused in the host application.
type Selection struct {
	Type string
	ID   string
}

// CommandContext is an immutable snapshot of where the user is. It is passed
// by value to every provider call and every command run.
type CommandContext struct {
	Route     string
	User      User
	Selection *Selection
}

// Equal reports structural equality: route, user id/role and selection type/id.
func (c CommandContext) Equal(other CommandContext) bool {
	if c.Route != other.Route || c.User != other.User {
		return false
	}
	if c.Selection == nil || other.Selection == nil {
		return c.Selection == nil && other.Selection == nil
	}
	return *c.Selection == *other.Selection
}

// WithRoute returns a copy of the context at a different route.
func (c CommandContext) WithRoute(route string) CommandContext {
	c.Route = route
	return c
}

// WithSelection returns a copy with the given selection. Pass an empty type to clear it.
func (c CommandContext) WithSelection(typ, id string) CommandContext {
	if typ == "" {
		c.Selection = nil
		return c
	}
	c.Selection = &Selection{Type: typ, ID: id}
	return c
}

// Selected returns the selected id if the selection has the given type.
func (c CommandContext) Selected(typ string) (string, bool) {
	if c.Selection == nil || c.Selection.Type != typ {
		return "", false
	}
	return c.Selection.ID, true
}

func (c CommandContext) String() string {
	sel := "none"
	if c.Selection != nil {
		sel = c.Selection.Type + ":" + c.Selection.ID
	}
	return fmt.Sprintf("route=%s user=%s(%s) selection=%s", c.Route, c.User.ID, c.User.Role, sel)
}

// Standard application scopes
const (
	ScopeGlobal  ScopeID = "global"
	ScopeList    ScopeID = "list"
	ScopeSidebar ScopeID = "sidebar"
	ScopePalette ScopeID = "palette"
	ScopeHelp    ScopeID = "help"
)

// Standard command categories
const (
	CategoryNavigation Category = "Navigation"
	CategoryIssues     Category = "Issues"
	CategoryView       Category = "View"
	CategorySystem     Category = "System"
	CategorySpecial    Category = "Special" // Hidden from main help
)
