package cmd

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateCommand matches any *DuplicateCommandError via errors.Is.
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrInvalidCommand is returned for commands missing an id or run function.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrCommandNotFound is returned when an operation names an unknown command.
	ErrCommandNotFound = errors.New("command not found")
)

// DuplicateCommandError reports a second registration of the same command id.
type DuplicateCommandError struct {
	ID CommandID
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %s already registered", e.ID)
}

func (e *DuplicateCommandError) Is(target error) bool {
	return target == ErrDuplicateCommand
}
