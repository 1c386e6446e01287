package dispatch

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// reservedShorthands are claimed by cobra's help and the global flags.
var reservedShorthands = map[string]struct{}{"h": {}}

// Schema is the argument declaration surface handed to DeclareArguments.
//
// Declarations are idempotent: adding a flag that already exists on the
// action, or that it inherits from the root, is a no-op reported by a false
// return. A shorthand that is already taken is dropped and the long flag is
// still added.
type Schema struct {
	cmd *cobra.Command
}

func newSchema(cmd *cobra.Command) *Schema {
	return &Schema{cmd: cmd}
}

// Has reports whether a flag with this name is visible to the action.
func (s *Schema) Has(name string) bool {
	return s.cmd.Flags().Lookup(name) != nil ||
		s.cmd.PersistentFlags().Lookup(name) != nil ||
		s.cmd.InheritedFlags().Lookup(name) != nil
}

// String declares a string flag.
func (s *Schema) String(name, shorthand, value, usage string) bool {
	return s.declare(name, shorthand, func(fs *pflag.FlagSet, short string) {
		fs.StringP(name, short, value, usage)
	})
}

// Bool declares a boolean flag.
func (s *Schema) Bool(name, shorthand string, value bool, usage string) bool {
	return s.declare(name, shorthand, func(fs *pflag.FlagSet, short string) {
		fs.BoolP(name, short, value, usage)
	})
}

// Int declares an integer flag.
func (s *Schema) Int(name, shorthand string, value int, usage string) bool {
	return s.declare(name, shorthand, func(fs *pflag.FlagSet, short string) {
		fs.IntP(name, short, value, usage)
	})
}

// StringSlice declares a comma-separated list flag.
func (s *Schema) StringSlice(name, shorthand string, value []string, usage string) bool {
	return s.declare(name, shorthand, func(fs *pflag.FlagSet, short string) {
		fs.StringSliceP(name, short, value, usage)
	})
}

// StringArray declares a repeatable flag whose values are kept verbatim.
func (s *Schema) StringArray(name, shorthand string, value []string, usage string) bool {
	return s.declare(name, shorthand, func(fs *pflag.FlagSet, short string) {
		fs.StringArrayP(name, short, value, usage)
	})
}

// Require marks previously declared flags as mandatory.
func (s *Schema) Require(names ...string) error {
	for _, name := range names {
		if s.cmd.Flags().Lookup(name) == nil {
			return fmt.Errorf("require %q: flag not declared", name)
		}
		if err := s.cmd.MarkFlagRequired(name); err != nil {
			return fmt.Errorf("require %q: %w", name, err)
		}
	}
	return nil
}

// Args accepts between min and max positional arguments; a negative max
// means no upper bound. usage is appended to the command's usage line.
func (s *Schema) Args(min, max int, usage string) {
	switch {
	case max < 0:
		s.cmd.Args = cobra.MinimumNArgs(min)
	default:
		s.cmd.Args = cobra.RangeArgs(min, max)
	}
	if usage != "" {
		s.cmd.Use = s.cmd.Name() + " " + usage
	}
}

func (s *Schema) declare(name, shorthand string, add func(fs *pflag.FlagSet, short string)) bool {
	if name == "" || s.Has(name) {
		return false
	}
	if !s.shorthandFree(shorthand) {
		shorthand = ""
	}
	add(s.cmd.Flags(), shorthand)
	return true
}

func (s *Schema) shorthandFree(shorthand string) bool {
	if len(shorthand) != 1 {
		return false
	}
	if _, reserved := reservedShorthands[shorthand]; reserved {
		return false
	}
	return s.cmd.Flags().ShorthandLookup(shorthand) == nil &&
		s.cmd.PersistentFlags().ShorthandLookup(shorthand) == nil &&
		s.cmd.InheritedFlags().ShorthandLookup(shorthand) == nil
}
