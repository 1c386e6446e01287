package dispatch

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Invocation is a parsed command line bound to its action.
type Invocation struct {
	Group  string
	Action string
	// ID correlates log lines of this run.
	ID string
	// Args holds positional arguments left after flag parsing.
	Args       []string
	Descriptor *ActionDescriptor

	cmd    *cobra.Command
	logger *slog.Logger
}

func newInvocation(cmd *cobra.Command, desc *ActionDescriptor, args []string, id string, logger *slog.Logger) *Invocation {
	return &Invocation{
		Group:      desc.Group.Name,
		Action:     desc.Name,
		ID:         id,
		Args:       args,
		Descriptor: desc,
		cmd:        cmd,
		logger:     logger,
	}
}

func (inv *Invocation) flags() *pflag.FlagSet {
	return inv.cmd.Flags()
}

// String returns a string flag value, or "" when undeclared.
func (inv *Invocation) String(name string) string {
	v, err := inv.flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// Bool returns a boolean flag value, or false when undeclared.
func (inv *Invocation) Bool(name string) bool {
	v, err := inv.flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// Int returns an integer flag value, or 0 when undeclared.
func (inv *Invocation) Int(name string) int {
	v, err := inv.flags().GetInt(name)
	if err != nil {
		return 0
	}
	return v
}

// StringSlice returns a list flag value.
func (inv *Invocation) StringSlice(name string) []string {
	v, err := inv.flags().GetStringSlice(name)
	if err != nil {
		return nil
	}
	return v
}

// StringArray returns a repeatable flag's values in command line order.
func (inv *Invocation) StringArray(name string) []string {
	v, err := inv.flags().GetStringArray(name)
	if err != nil {
		return nil
	}
	return v
}

// Changed reports whether the flag was set on the command line.
func (inv *Invocation) Changed(name string) bool {
	return inv.flags().Changed(name)
}

// Options returns every flag value, defaults included, keyed by flag name.
func (inv *Invocation) Options() map[string]string {
	out := make(map[string]string)
	inv.flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		out[f.Name] = f.Value.String()
	})
	return out
}

// Logger returns a logger tagged with group, action, and invocation ID.
func (inv *Invocation) Logger() *slog.Logger {
	return inv.logger
}

// Stdout is where handlers write command output.
func (inv *Invocation) Stdout() io.Writer {
	return inv.cmd.OutOrStdout()
}

// Stderr is where handlers write prompts and diagnostics meant for people.
func (inv *Invocation) Stderr() io.Writer {
	return inv.cmd.ErrOrStderr()
}

// Stdin is the input stream for interactive prompts.
func (inv *Invocation) Stdin() io.Reader {
	return inv.cmd.InOrStdin()
}
