package dispatch

import "context"

// ActionHandler implements one action of a command group.
//
// DeclareArguments must be free of side effects: it runs for every action
// while the command tree is bound, long before any action is chosen. Execute
// performs the work and reports the outcome; it never exits the process.
type ActionHandler interface {
	DeclareArguments(s *Schema) error
	Execute(ctx context.Context, inv *Invocation) (Result, error)
}

// Result is what a handler reports back to the dispatcher. The zero value is
// a silent success.
type Result struct {
	// Failed marks a handled failure. The message goes to stderr.
	Failed bool
	// Message is printed after execution, to stdout on success.
	Message string
	// ExitCode overrides the process status. A failed result with a zero
	// code exits with ExitFailure.
	ExitCode int
}

// Succeeded returns a successful result carrying msg.
func Succeeded(msg string) Result {
	return Result{Message: msg}
}

// Failed returns a failure result carrying msg.
func Failed(msg string) Result {
	return Result{Failed: true, Message: msg, ExitCode: ExitFailure}
}
