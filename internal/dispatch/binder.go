package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"jira/internal/logging"
)

// Global flag names declared once on the root and inherited by every action.
const (
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagVersion = "version"
)

// RunFunc executes a bound action. The binder installs it as each action's
// cobra RunE.
type RunFunc func(cmd *cobra.Command, desc *ActionDescriptor, args []string) error

// Binder turns a registry into a cobra command tree.
type Binder struct {
	name    string
	summary string
	long    string
	version string
	logger  *slog.Logger
}

// BinderOption customizes a Binder.
type BinderOption func(*Binder)

// WithProgram sets the root command name and descriptions.
func WithProgram(name, summary, long string) BinderOption {
	return func(b *Binder) {
		b.name = name
		b.summary = summary
		b.long = long
	}
}

// WithVersion enables --version on the root.
func WithVersion(version string) BinderOption {
	return func(b *Binder) { b.version = version }
}

// WithBinderLogger routes binding warnings.
func WithBinderLogger(logger *slog.Logger) BinderOption {
	return func(b *Binder) { b.logger = logger }
}

// NewBinder constructs a Binder.
func NewBinder(opts ...BinderOption) *Binder {
	b := &Binder{name: "jira"}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "binder")
	return b
}

// Tree is a bound command tree.
type Tree struct {
	Root     *cobra.Command
	commands map[string]*cobra.Command
	failures []*BindingError
}

// Command returns the bound command for (group, action).
func (t *Tree) Command(group, action string) (*cobra.Command, bool) {
	cmd, ok := t.commands[indexKey(group, action)]
	return cmd, ok
}

// Failures lists actions excluded while binding.
func (t *Tree) Failures() []*BindingError {
	return append([]*BindingError(nil), t.failures...)
}

// Bind builds the whole tree up front: every action's handler is constructed
// once and asked to declare its arguments before any input is parsed.
func (b *Binder) Bind(reg *Registry, run RunFunc) *Tree {
	root := b.newRoot()
	tree := &Tree{Root: root, commands: make(map[string]*cobra.Command)}

	for _, group := range reg.Groups() {
		groupCmd := newGroupCommand(group)
		root.AddCommand(groupCmd)

		for _, action := range reg.Actions(group.Name) {
			cmd, err := b.bindAction(groupCmd, action, run)
			if err != nil {
				bindErr := &BindingError{Group: group.Name, Action: action.Name, Err: err}
				tree.failures = append(tree.failures, bindErr)
				logging.WarnWithContext(b.logger, "action excluded from command tree", "binding_failed",
					logging.String(logging.FieldGroup, group.Name),
					logging.String(logging.FieldAction, action.Name),
					logging.String("handler", action.TypeName),
					logging.Error(err),
					logging.String(logging.FieldImpact, "action unavailable"),
					logging.String(logging.FieldErrorHint, "check the handler's DeclareArguments"),
				)
				continue
			}
			tree.commands[indexKey(group.Name, action.Name)] = cmd
		}

		if !groupCmd.HasSubCommands() {
			root.RemoveCommand(groupCmd)
			logging.WarnWithContext(b.logger, "command group has no bindable actions", "binding_failed",
				logging.String(logging.FieldGroup, group.Name),
				logging.String(logging.FieldImpact, "command group unavailable"),
			)
		}
	}
	return tree
}

func (b *Binder) newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           b.name,
		Short:         b.summary,
		Long:          b.long,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		SuggestionsMinimumDistance: 2,

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &UsageError{Kind: NoGroup, cmd: cmd}
			}
			return &UsageError{Kind: UnknownGroup, Name: args[0], Suggestions: cmd.SuggestionsFor(args[0]), cmd: cmd}
		},
	}
	// Declared before Find so "--help <group>" parses as a bool flag.
	root.InitDefaultHelpFlag()
	root.PersistentFlags().BoolP(FlagVerbose, "v", false, "Enable debug logging")
	root.PersistentFlags().StringP(FlagConfig, "c", "", "Configuration file path")
	if b.version != "" {
		root.Version = b.version
		// Declared explicitly so cobra does not claim -v for --version.
		root.Flags().Bool(FlagVersion, false, "Print version information")
	}
	return root
}

func newGroupCommand(group *GroupDescriptor) *cobra.Command {
	return &cobra.Command{
		Use:     group.Name,
		Short:   group.Summary,
		Long:    group.Description,
		Aliases: group.Aliases,
		Args:    cobra.ArbitraryArgs,

		SuggestionsMinimumDistance: 2,

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &UsageError{Kind: MissingAction, Name: group.Name, cmd: cmd}
			}
			return &UsageError{Kind: UnknownAction, Name: args[0], Suggestions: cmd.SuggestionsFor(args[0]), cmd: cmd}
		},
	}
}

// bindAction attaches the action command before declaration so the schema
// sees inherited flags, and detaches it again on any failure.
func (b *Binder) bindAction(groupCmd *cobra.Command, desc *ActionDescriptor, run RunFunc) (_ *cobra.Command, err error) {
	cmd := &cobra.Command{
		Use:     desc.Name,
		Short:   desc.Summary,
		Long:    desc.Description,
		Example: desc.Example,
		Aliases: desc.Aliases,
		Hidden:  desc.Hidden,
		Args:    cobra.NoArgs,
	}
	groupCmd.AddCommand(cmd)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			groupCmd.RemoveCommand(cmd)
		}
	}()

	handler, err := desc.Factory()
	if err != nil {
		return nil, fmt.Errorf("construct handler: %w", err)
	}
	if err := handler.DeclareArguments(newSchema(cmd)); err != nil {
		return nil, fmt.Errorf("declare arguments: %w", err)
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return run(c, desc, args)
	}
	return cmd, nil
}
