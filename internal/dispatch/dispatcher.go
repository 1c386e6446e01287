package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"jira/internal/logging"
)

// Dispatcher routes one command line to its handler and maps the outcome
// to an exit code.
type Dispatcher struct {
	registry *Registry
	binder   *Binder
	logger   *slog.Logger
	level    *slog.LevelVar
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	newID    func() string
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for execution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithLevelVar lets --verbose raise the shared log level to debug.
func WithLevelVar(level *slog.LevelVar) Option {
	return func(d *Dispatcher) { d.level = level }
}

// WithOutput overrides stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithInput overrides stdin.
func WithInput(stdin io.Reader) Option {
	return func(d *Dispatcher) { d.stdin = stdin }
}

// WithIDGenerator overrides invocation ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(d *Dispatcher) { d.newID = newID }
}

// New constructs a dispatcher over a discovered registry.
func New(reg *Registry, binder *Binder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		binder:   binder,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.binder == nil {
		d.binder = NewBinder(WithBinderLogger(d.logger))
	}
	d.logger = logging.NewComponentLogger(d.logger, "dispatch")
	return d
}

// Run executes one invocation and returns the process exit code. The tree is
// rebound on every call so flag values never carry over between runs in the
// same process.
func (d *Dispatcher) Run(ctx context.Context, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}

	var outcome *Result
	tree := d.binder.Bind(d.registry, func(cmd *cobra.Command, desc *ActionDescriptor, positional []string) error {
		res, err := d.execute(cmd.Context(), cmd, desc, positional)
		if err != nil {
			return err
		}
		outcome = &res
		return nil
	})

	root := tree.Root
	root.SetArgs(args)
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)
	root.SetIn(d.stdin)

	cmd, err := root.ExecuteContextC(ctx)
	if cmd == nil {
		cmd = root
	}
	return d.finish(cmd, err, outcome)
}

func (d *Dispatcher) execute(ctx context.Context, cmd *cobra.Command, desc *ActionDescriptor, args []string) (res Result, err error) {
	if verbose, _ := cmd.Flags().GetBool(FlagVerbose); verbose && d.level != nil {
		d.level.Set(slog.LevelDebug)
	}

	id := d.newID()
	ctx = logging.WithInvocationID(ctx, id)
	logger := logging.WithContext(ctx, d.logger).With(
		logging.String(logging.FieldGroup, desc.Group.Name),
		logging.String(logging.FieldAction, desc.Name),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("handler panic", logging.String("stack", string(debug.Stack())))
			err = &ExecutionError{Group: desc.Group.Name, Action: desc.Name, InvocationID: id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	handler, err := desc.Factory()
	if err != nil {
		return Result{}, &ExecutionError{Group: desc.Group.Name, Action: desc.Name, InvocationID: id, Err: fmt.Errorf("construct handler: %w", err)}
	}

	inv := newInvocation(cmd, desc, args, id, logger)
	logger.Debug("dispatching action", logging.String("handler", desc.TypeName), logging.Any("options", inv.Options()))

	res, err = handler.Execute(ctx, inv)
	if err != nil {
		return Result{}, &ExecutionError{Group: desc.Group.Name, Action: desc.Name, InvocationID: id, Err: err}
	}
	logger.Debug("action finished", logging.Bool("failed", res.Failed), logging.Int("exit_code", res.ExitCode))
	return res, nil
}

func (d *Dispatcher) finish(cmd *cobra.Command, err error, outcome *Result) int {
	if err == nil {
		if outcome == nil {
			// Help or version output.
			return ExitOK
		}
		return d.report(*outcome)
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		if usageErr.Kind == NoGroup {
			_ = usageErr.cmd.Help()
			return ExitFailure
		}
		d.printUsageError(usageErr.cmd, err)
		return ExitUsage
	}

	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		attrs := []logging.Attr{
			logging.String(logging.FieldGroup, execErr.Group),
			logging.String(logging.FieldAction, execErr.Action),
			logging.String(logging.FieldInvocationID, execErr.InvocationID),
			logging.Error(execErr.Err),
		}
		var coded StatusCoder
		if errors.As(execErr.Err, &coded) {
			attrs = append(attrs, logging.Int(logging.FieldStatus, coded.StatusCode()))
		}
		logging.ErrorWithContext(d.logger, "action failed", "action_failed", attrs...)
		fmt.Fprintf(d.stderr, "Error: %v\n", execErr.Err)
		return ExitFailure
	}

	d.printUsageError(cmd, err)
	return ExitUsage
}

func (d *Dispatcher) report(res Result) int {
	msg := strings.TrimRight(res.Message, "\n")
	if res.Failed {
		if msg != "" {
			fmt.Fprintf(d.stderr, "Error: %s\n", msg)
		}
		if res.ExitCode == ExitOK {
			return ExitFailure
		}
		return res.ExitCode
	}
	if msg != "" {
		fmt.Fprintln(d.stdout, msg)
	}
	return res.ExitCode
}

func (d *Dispatcher) printUsageError(cmd *cobra.Command, err error) {
	fmt.Fprintf(d.stderr, "Error: %v\n", err)
	fmt.Fprint(d.stderr, cmd.UsageString())
}
