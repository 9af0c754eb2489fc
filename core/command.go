package core

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing command argument")
)

// CommandHandler handles one command line. args holds the tokens after
// the tool and command names, at least as many as the format declares.
type CommandHandler func(args []string) error

// Command represents a "tool name args..." text command
type Command struct {
	Tool    string
	Name    string
	Format  string // Argument names for the dictionary (e.g., "ch n us trig")
	Args    int    // Required argument count, from Format
	Handler CommandHandler
}

// CommandRegistry holds all registered commands
type CommandRegistry struct {
	mu         sync.RWMutex
	commands   map[string]*Command
	order      []*Command
	dictionary string // One "tool name format" line per command
}

var globalRegistry = NewCommandRegistry()

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
	}
}

// RegisterCommand registers a command handler with the global registry
func RegisterCommand(tool, name, format string, handler CommandHandler) *Command {
	return globalRegistry.Register(tool, name, format, handler)
}

func commandKey(tool, name string) string {
	return tool + " " + name
}

// Register adds a command to the registry. Registering the same tool and
// name twice keeps the first handler.
func (r *CommandRegistry) Register(tool, name, format string, handler CommandHandler) *Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := commandKey(tool, name)
	if cmd, exists := r.commands[key]; exists {
		return cmd
	}

	cmd := &Command{
		Tool:    tool,
		Name:    name,
		Format:  format,
		Args:    len(strings.Fields(format)),
		Handler: handler,
	}
	r.commands[key] = cmd
	r.order = append(r.order, cmd)

	// Rebuild dictionary
	r.rebuildDictionary()

	return cmd
}

// Lookup retrieves a command by tool and name
func (r *CommandRegistry) Lookup(tool, name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[commandKey(tool, name)]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler named by tokens[0] and tokens[1].
// Extra arguments beyond the declared format are passed through.
func (r *CommandRegistry) Dispatch(tokens []string) error {
	if len(tokens) < 2 {
		return ErrUnknownCommand
	}
	cmd, ok := r.Lookup(tokens[0], tokens[1])
	if !ok {
		return ErrUnknownCommand
	}
	args := tokens[2:]
	if len(args) < cmd.Args {
		return ErrMissingArgument
	}
	return cmd.Handler(args)
}

// GetDictionary returns the command dictionary string
func (r *CommandRegistry) GetDictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dictionary
}

// rebuildDictionary rebuilds the dictionary string
// Must be called with lock held
func (r *CommandRegistry) rebuildDictionary() {
	var b strings.Builder
	for _, cmd := range r.order {
		b.WriteString(cmd.Tool)
		b.WriteByte(' ')
		b.WriteString(cmd.Name)
		if cmd.Format != "" {
			b.WriteByte(' ')
			b.WriteString(cmd.Format)
		}
		b.WriteByte('\n')
	}
	r.dictionary = b.String()
}

// DispatchCommand is a convenience function using the global registry
func DispatchCommand(tokens []string) error {
	return globalRegistry.Dispatch(tokens)
}

// GetGlobalRegistry returns the global command registry
func GetGlobalRegistry() *CommandRegistry {
	return globalRegistry
}

// GetCommandCount returns the number of registered commands
func GetCommandCount() int {
	return globalRegistry.Count()
}
