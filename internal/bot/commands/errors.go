package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned by Dispatch for names that were never registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrArgument is wrapped by every ArgumentError.
	ErrArgument = errors.New("invalid command arguments")
	// ErrGroupOnly is returned by handlers that need a group snapshot when there is none.
	ErrGroupOnly = errors.New("command requires a group")
)

// ArgumentError reports arguments that could not be parsed or resolved.
type ArgumentError struct {
	Command string
	Usage   string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrArgument, e.Command, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrArgument
}
