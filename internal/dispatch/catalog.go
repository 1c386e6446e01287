package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Factory builds a fresh handler for one invocation.
type Factory func() (ActionHandler, error)

// Catalog maps handler type names to factories. Discovery consults it to
// resolve actions found in manifests; it replaces lookup by class name with a
// table filled in at startup.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds the factory for handler type T under T's Go type name. The
// name is what discovery matches against PascalCase(group)+PascalCase(action),
// so renaming the type unbinds its action. Registering a name twice panics.
func Register[T any, PT interface {
	*T
	ActionHandler
}](c *Catalog, factory func() (PT, error)) {
	name := reflect.TypeFor[T]().Name()
	c.add(name, func() (ActionHandler, error) {
		handler, err := factory()
		if err != nil {
			return nil, err
		}
		if handler == nil {
			return nil, errors.New("factory returned nil handler")
		}
		return handler, nil
	})
}

func (c *Catalog) add(name string, factory Factory) {
	if name == "" {
		panic("dispatch: cannot register anonymous handler type")
	}
	if factory == nil {
		panic(fmt.Sprintf("dispatch: nil factory for %s", name))
	}
	if _, exists := c.factories[name]; exists {
		panic(fmt.Sprintf("dispatch: handler %s registered twice", name))
	}
	c.factories[name] = factory
}

// Lookup returns the factory registered under typeName.
func (c *Catalog) Lookup(typeName string) (Factory, bool) {
	if c == nil {
		return nil, false
	}
	factory, ok := c.factories[typeName]
	return factory, ok
}

// Names lists registered type names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len reports the number of registered handlers.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.factories)
}
