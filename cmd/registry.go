package cmd

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"taskdeck/cmd/interfaces"
)

// Use types from interfaces package to avoid duplication
type CommandID = interfaces.CommandID
type ScopeID = interfaces.ScopeID
type Category = interfaces.Category
type CommandContext = interfaces.CommandContext

// CommandRegistry is the catalog of invocable actions and their keybindings.
// It is owned by the application root and passed to whoever needs it.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[CommandID]*Command
	order    []CommandID
	scopes   map[ScopeID]*Scope
	bindings map[ScopeID]map[string]CommandID // scope -> key -> command mapping
}

// Command represents a user action that can be run from a keybinding or the palette
type Command struct {
	ID          CommandID
	Title       string
	Description string
	Keywords    []string
	Category    Category
	Run         RunFunc
	Scopes      []ScopeID

	// Shortcut is the display form of the primary key, e.g. "ctrl+k".
	// BindKey fills it in when left empty.
	Shortcut string

	// When reports whether the command applies to a context. Nil means always.
	When func(ctx CommandContext) bool

	// Internal tracking
	keys []string // All keys bound to this command
}

// RunFunc executes a command. Errors are returned to the caller untouched.
type RunFunc func(ctx CommandContext) error

// Available reports whether the command applies to ctx.
func (c *Command) Available(ctx CommandContext) bool {
	return c.When == nil || c.When(ctx)
}

// Scope represents an application mode
type Scope struct {
	ID          ScopeID
	Name        string
	Parent      *ScopeID
	Description string
}

// KeyConflict represents a keybinding conflict within a scope
type KeyConflict struct {
	Key      string
	Scope    ScopeID
	Commands []CommandID
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[CommandID]*Command),
		scopes:   make(map[ScopeID]*Scope),
		bindings: make(map[ScopeID]map[string]CommandID),
	}
}

// RegisterScope adds a new scope to the registry
func (r *CommandRegistry) RegisterScope(scope *Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scopes[scope.ID]; exists {
		return fmt.Errorf("scope %s already registered", scope.ID)
	}

	r.scopes[scope.ID] = scope
	if r.bindings[scope.ID] == nil {
		r.bindings[scope.ID] = make(map[string]CommandID)
	}

	return nil
}

// Register adds a command to the registry and returns a builder for further configuration.
// A command whose id is already registered is rejected with a *DuplicateCommandError.
func (r *CommandRegistry) Register(cmd *Command) (*CommandBuilder, error) {
	if cmd == nil || cmd.ID == "" {
		return nil, fmt.Errorf("%w: command ID cannot be empty", ErrInvalidCommand)
	}
	if cmd.Run == nil {
		return nil, fmt.Errorf("%w: command %s has no run function", ErrInvalidCommand, cmd.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.ID]; exists {
		return nil, &DuplicateCommandError{ID: cmd.ID}
	}

	cmd.keys = make([]string, 0)
	r.commands[cmd.ID] = cmd
	r.order = append(r.order, cmd.ID)

	return &CommandBuilder{
		registry: r,
		command:  cmd,
	}, nil
}

// MustRegister is Register for initialization code; it panics on error.
func (r *CommandRegistry) MustRegister(cmd *Command) *CommandBuilder {
	b, err := r.Register(cmd)
	if err != nil {
		panic(err)
	}
	return b
}

// CommandBuilder provides a fluent interface for configuring commands
type CommandBuilder struct {
	registry *CommandRegistry
	command  *Command
}

// BindKey binds a single key to the command in all its scopes
func (cb *CommandBuilder) BindKey(key string) *CommandBuilder {
	return cb.BindKeys(key)
}

// BindKeys binds multiple keys to the command in all its scopes
func (cb *CommandBuilder) BindKeys(keys ...string) *CommandBuilder {
	return cb.bind(keys, cb.command.Scopes)
}

// BindKeyInScope binds a key to the command only in specific scopes
func (cb *CommandBuilder) BindKeyInScope(key string, scopes ...ScopeID) *CommandBuilder {
	return cb.bind([]string{key}, scopes)
}

func (cb *CommandBuilder) bind(keys []string, scopes []ScopeID) *CommandBuilder {
	cb.registry.mu.Lock()
	defer cb.registry.mu.Unlock()

	for _, key := range keys {
		cb.command.keys = append(cb.command.keys, key)
		if cb.command.Shortcut == "" {
			cb.command.Shortcut = key
		}

		for _, scopeID := range scopes {
			if cb.registry.bindings[scopeID] == nil {
				cb.registry.bindings[scopeID] = make(map[string]CommandID)
			}
			cb.registry.bindings[scopeID][key] = cb.command.ID
		}
	}

	return cb
}

// Rebind replaces every key bound to the command with keys. It is used to
// apply user keymap overrides after the defaults are bound.
func (r *CommandRegistry) Rebind(id CommandID, keys ...string) error {
	r.mu.Lock()
	command, exists := r.commands[id]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("cannot rebind %s: %w", id, ErrCommandNotFound)
	}
	for _, bindings := range r.bindings {
		for key, bound := range bindings {
			if bound == id {
				delete(bindings, key)
			}
		}
	}
	command.keys = nil
	command.Shortcut = ""
	r.mu.Unlock()

	(&CommandBuilder{registry: r, command: command}).BindKeys(keys...)
	return nil
}

// Command returns the command being configured
func (cb *CommandBuilder) Command() *Command {
	return cb.command
}

// ResolveCommand finds the command bound to a key in a given scope
func (r *CommandRegistry) ResolveCommand(scopeID ScopeID, key string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.resolve(scopeID, key)
}

func (r *CommandRegistry) resolve(scopeID ScopeID, key string) *Command {
	if bindings, exists := r.bindings[scopeID]; exists {
		if cmdID, found := bindings[key]; found {
			return r.commands[cmdID]
		}
	}

	// If not found, check parent scopes
	if scope, exists := r.scopes[scopeID]; exists && scope.Parent != nil {
		return r.resolve(*scope.Parent, key)
	}

	return nil
}

// GetCommandsForScope returns all commands available in a scope (including inherited)
func (r *CommandRegistry) GetCommandsForScope(scopeID ScopeID) []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var commands []*Command
	seen := make(map[CommandID]bool)

	r.collectCommandsForScope(scopeID, &commands, seen)
	return commands
}

// collectCommandsForScope recursively collects commands from the scope hierarchy.
// Commands come out in registration order within each level.
func (r *CommandRegistry) collectCommandsForScope(scopeID ScopeID, commands *[]*Command, seen map[CommandID]bool) {
	bound := make(map[CommandID]bool)
	for _, cmdID := range r.bindings[scopeID] {
		bound[cmdID] = true
	}
	for _, cmdID := range r.order {
		if bound[cmdID] && !seen[cmdID] {
			seen[cmdID] = true
			*commands = append(*commands, r.commands[cmdID])
		}
	}

	if scope, exists := r.scopes[scopeID]; exists && scope.Parent != nil {
		r.collectCommandsForScope(*scope.Parent, commands, seen)
	}
}

// DetectConflicts finds keys that resolve to a different command in a child
// scope than in its parent, which shadows the parent binding.
func (r *CommandRegistry) DetectConflicts() []KeyConflict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conflicts []KeyConflict
	for scopeID, bindings := range r.bindings {
		scope, ok := r.scopes[scopeID]
		if !ok || scope.Parent == nil {
			continue
		}
		for key, cmdID := range bindings {
			inherited := r.resolve(*scope.Parent, key)
			if inherited != nil && inherited.ID != cmdID {
				conflicts = append(conflicts, KeyConflict{
					Key:      key,
					Scope:    scopeID,
					Commands: []CommandID{cmdID, inherited.ID},
				})
			}
		}
	}

	return conflicts
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id CommandID) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, exists := r.commands[id]
	return cmd, exists
}

// GetScope retrieves a scope by ID
func (r *CommandRegistry) GetScope(id ScopeID) (*Scope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scope, exists := r.scopes[id]
	return scope, exists
}

// Commands returns a restartable sequence over all commands in registration order.
// Each iteration works on a snapshot taken when it starts.
func (r *CommandRegistry) Commands() iter.Seq[*Command] {
	return func(yield func(*Command) bool) {
		r.mu.RLock()
		snapshot := make([]*Command, 0, len(r.order))
		for _, id := range r.order {
			snapshot = append(snapshot, r.commands[id])
		}
		r.mu.RUnlock()

		for _, cmd := range snapshot {
			if !yield(cmd) {
				return
			}
		}
	}
}

// Len returns the number of registered commands
func (r *CommandRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// GetKeysForCommand returns all keys bound to a command
func (r *CommandRegistry) GetKeysForCommand(cmdID CommandID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, exists := r.commands[cmdID]; exists {
		keys := make([]string, len(cmd.keys))
		copy(keys, cmd.keys)
		return keys
	}
	return nil
}

// String returns a debug string representation of the registry
func (r *CommandRegistry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("CommandRegistry:\n")

	sb.WriteString("  Scopes:\n")
	for id, scope := range r.scopes {
		sb.WriteString(fmt.Sprintf("    %s: %s\n", id, scope.Name))
	}

	sb.WriteString("  Commands:\n")
	for _, id := range r.order {
		cmd := r.commands[id]
		sb.WriteString(fmt.Sprintf("    %s: %s (%v)\n", id, cmd.Title, cmd.keys))
	}

	return sb.String()
}
