package state

import (
	"errors"
	"fmt"

	"taskdeck/cmd"
	"taskdeck/cmd/help"
)

// ErrUnboundKey is returned when no command is bound to a key in the current scope
var ErrUnboundKey = errors.New("unbound key")

// Manager manages the modal scope stack and routes keys to commands
type Manager struct {
	scopeStack []cmd.ScopeID
	registry   *cmd.CommandRegistry
	helpGen    *help.Generator

	// context supplies the current command context on every dispatch
	context func() cmd.CommandContext
}

// NewManager creates a new state manager
func NewManager(registry *cmd.CommandRegistry, context func() cmd.CommandContext) *Manager {
	return &Manager{
		scopeStack: []cmd.ScopeID{cmd.ScopeGlobal},
		registry:   registry,
		helpGen:    help.NewGenerator(registry),
		context:    context,
	}
}

// PushScope adds a new scope to the stack
func (sm *Manager) PushScope(scope cmd.ScopeID) {
	sm.scopeStack = append(sm.scopeStack, scope)
}

// PopScope removes the top scope from the stack and returns it
func (sm *Manager) PopScope() cmd.ScopeID {
	if len(sm.scopeStack) <= 1 {
		// Always keep at least the global scope
		return cmd.ScopeGlobal
	}

	scope := sm.scopeStack[len(sm.scopeStack)-1]
	sm.scopeStack = sm.scopeStack[:len(sm.scopeStack)-1]
	return scope
}

// ReplaceScope swaps the top scope, keeping global at the bottom
func (sm *Manager) ReplaceScope(scope cmd.ScopeID) {
	if len(sm.scopeStack) <= 1 {
		sm.PushScope(scope)
		return
	}
	sm.scopeStack[len(sm.scopeStack)-1] = scope
}

// CurrentScope returns the current (top) scope
func (sm *Manager) CurrentScope() cmd.ScopeID {
	if len(sm.scopeStack) == 0 {
		return cmd.ScopeGlobal
	}
	return sm.scopeStack[len(sm.scopeStack)-1]
}

// ScopeStack returns a copy of the scope stack
func (sm *Manager) ScopeStack() []cmd.ScopeID {
	stack := make([]cmd.ScopeID, len(sm.scopeStack))
	copy(stack, sm.scopeStack)
	return stack
}

// HandleKey resolves key in the current scope and runs the bound command
// with the current context. Commands not available in the context are
// treated as unbound.
func (sm *Manager) HandleKey(key string) (*cmd.Command, error) {
	currentScope := sm.CurrentScope()
	command := sm.registry.ResolveCommand(currentScope, key)
	if command == nil {
		return nil, fmt.Errorf("%w: '%s' in scope %s", ErrUnboundKey, key, currentScope)
	}

	ctx := sm.currentContext()
	if !command.Available(ctx) {
		return nil, fmt.Errorf("%w: %s is not available here", ErrUnboundKey, command.ID)
	}

	if err := command.Run(ctx); err != nil {
		return command, fmt.Errorf("command %s failed: %w", command.ID, err)
	}
	return command, nil
}

func (sm *Manager) currentContext() cmd.CommandContext {
	if sm.context == nil {
		return cmd.CommandContext{}
	}
	return sm.context()
}

// StatusLine generates the status line for the current scope
func (sm *Manager) StatusLine() string {
	return sm.helpGen.GenerateStatusLine(sm.CurrentScope())
}

// HelpContent generates help content for the current scope
func (sm *Manager) HelpContent() string {
	return sm.helpGen.GenerateScopeHelp(sm.CurrentScope())
}

// QuickHelp generates quick help for overlays
func (sm *Manager) QuickHelp(maxItems int) []string {
	return sm.helpGen.GenerateQuickHelp(sm.CurrentScope(), maxItems)
}

// ValidateCommands validates the current command registry
func (sm *Manager) ValidateCommands() []string {
	return sm.helpGen.ValidateRegistry()
}

// IsKeyAvailable checks if a key is bound to a command in the current scope
func (sm *Manager) IsKeyAvailable(key string) bool {
	return sm.registry.ResolveCommand(sm.CurrentScope(), key) != nil
}

// AvailableCommands returns all commands available in the current scope
func (sm *Manager) AvailableCommands() []*cmd.Command {
	return sm.registry.GetCommandsForScope(sm.CurrentScope())
}
