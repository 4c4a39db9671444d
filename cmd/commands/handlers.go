package commands

// Handlers bundles the hooks the host application provides to commands
type Handlers struct {
	Navigation NavigationHandlers
	View       ViewHandlers
	Issues     IssueHandlers
}
