package dispatch

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// DiscoveryError describes a manifest or handler that could not be loaded.
type DiscoveryError struct {
	Locator string
	Group   string
	Action  string
	Err     error
}

func (e *DiscoveryError) Error() string {
	target := e.Group
	if e.Action != "" {
		target += " " + e.Action
	}
	if target == "" {
		return fmt.Sprintf("discover %s: %v", e.Locator, e.Err)
	}
	return fmt.Sprintf("discover %s (%s): %v", target, e.Locator, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// BindingError describes an action whose handler could not be constructed or
// failed to declare its arguments.
type BindingError struct {
	Group  string
	Action string
	Err    error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("bind %s %s: %v", e.Group, e.Action, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// UsageKind classifies routing failures before an action is reached.
type UsageKind int

const (
	// NoGroup means the command line named no group at all.
	NoGroup UsageKind = iota
	// UnknownGroup means the first token matched no group.
	UnknownGroup
	// MissingAction means a group was named without an action.
	MissingAction
	// UnknownAction means the action token matched nothing in the group.
	UnknownAction
)

// UsageError reports a command line that could not be routed to an action.
type UsageError struct {
	Kind        UsageKind
	Name        string
	Suggestions []string

	cmd *cobra.Command
}

func (e *UsageError) Error() string {
	var msg string
	switch e.Kind {
	case NoGroup:
		msg = fmt.Sprintf("no command given for %q", e.cmd.CommandPath())
	case UnknownGroup:
		msg = fmt.Sprintf("unknown command %q for %q", e.Name, e.cmd.CommandPath())
	case MissingAction:
		msg = fmt.Sprintf("missing action for %q", e.cmd.CommandPath())
	default:
		msg = fmt.Sprintf("unknown action %q for %q", e.Name, e.cmd.CommandPath())
	}
	if len(e.Suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(e.Suggestions, "\n\t")
	}
	return msg
}

// ExecutionError wraps a failure raised while a handler ran, including
// recovered panics.
type ExecutionError struct {
	Group        string
	Action       string
	InvocationID string
	Err          error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Group, e.Action, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// StatusCoder is implemented by errors that carry an upstream status code.
// The dispatcher logs the code; it does not interpret it.
type StatusCoder interface {
	StatusCode() int
}
