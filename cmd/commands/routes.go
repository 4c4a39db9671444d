package commands

// Application routes
const (
	RouteIssues   = "/issues"
	RouteMine     = "/issues/mine"
	RouteBoard    = "/board"
	RouteInbox    = "/inbox"
	RouteSettings = "/settings"
)

// Route describes a navigable destination
type Route struct {
	Path     string
	Title    string
	Keywords []string
}

// Routes lists every destination in sidebar order
var Routes = []Route{
	{Path: RouteIssues, Title: "All Issues", Keywords: []string{"issues", "list", "backlog"}},
	{Path: RouteMine, Title: "My Issues", Keywords: []string{"assigned", "mine", "me"}},
	{Path: RouteBoard, Title: "Board", Keywords: []string{"kanban", "columns", "status"}},
	{Path: RouteInbox, Title: "Inbox", Keywords: []string{"notifications", "mentions"}},
	{Path: RouteSettings, Title: "Settings", Keywords: []string{"preferences", "config"}},
}

// RouteTitle returns the display title for a path, or the path itself
func RouteTitle(path string) string {
	for _, r := range Routes {
		if r.Path == path {
			return r.Title
		}
	}
	return path
}
