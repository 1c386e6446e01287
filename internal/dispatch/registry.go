package dispatch

import (
	"slices"
	"strings"
)

// GroupDescriptor identifies a command group.
type GroupDescriptor struct {
	Name        string
	Summary     string
	Description string
	Aliases     []string
	// Locator names the marker file the group was read from.
	Locator string
}

// ActionDescriptor identifies one action and how to build its handler.
type ActionDescriptor struct {
	Group       *GroupDescriptor
	Name        string
	Summary     string
	Description string
	Example     string
	Aliases     []string
	Hidden      bool
	TypeName    string
	Locator     string
	Factory     Factory
}

// Key returns "group action".
func (d *ActionDescriptor) Key() string {
	return d.Group.Name + " " + d.Name
}

// Skip records a candidate that discovery excluded.
type Skip struct {
	Locator string
	Group   string
	Action  string
	Err     error
}

// Registry is the discovered command set. It is read-only once Discover
// returns; listings are alphabetical.
type Registry struct {
	groups  []*GroupDescriptor
	actions map[string][]*ActionDescriptor
	index   map[string]*ActionDescriptor
	skipped []Skip
}

func newRegistry() *Registry {
	return &Registry{
		actions: make(map[string][]*ActionDescriptor),
		index:   make(map[string]*ActionDescriptor),
	}
}

// Groups returns the groups sorted by name.
func (r *Registry) Groups() []*GroupDescriptor {
	return slices.Clone(r.groups)
}

// Group returns the named group.
func (r *Registry) Group(name string) (*GroupDescriptor, bool) {
	for _, g := range r.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Actions returns the actions of a group sorted by name.
func (r *Registry) Actions(group string) []*ActionDescriptor {
	return slices.Clone(r.actions[group])
}

// Lookup finds the action registered under (group, action).
func (r *Registry) Lookup(group, action string) (*ActionDescriptor, bool) {
	d, ok := r.index[indexKey(group, action)]
	return d, ok
}

// Len reports the number of actions.
func (r *Registry) Len() int {
	return len(r.index)
}

// Skipped lists every candidate discovery excluded, in discovery order.
func (r *Registry) Skipped() []Skip {
	return slices.Clone(r.skipped)
}

func (r *Registry) has(group, action string) bool {
	_, ok := r.index[indexKey(group, action)]
	return ok
}

func (r *Registry) ensureGroup(g *GroupDescriptor) *GroupDescriptor {
	if existing, ok := r.Group(g.Name); ok {
		return existing
	}
	r.groups = append(r.groups, g)
	return g
}

func (r *Registry) add(d *ActionDescriptor) {
	r.actions[d.Group.Name] = append(r.actions[d.Group.Name], d)
	r.index[indexKey(d.Group.Name, d.Name)] = d
}

func (r *Registry) skip(s Skip) {
	r.skipped = append(r.skipped, s)
}

// seal drops empty groups and fixes presentation order.
func (r *Registry) seal() {
	r.groups = slices.DeleteFunc(r.groups, func(g *GroupDescriptor) bool {
		return len(r.actions[g.Name]) == 0
	})
	slices.SortFunc(r.groups, func(a, b *GroupDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	for name, actions := range r.actions {
		slices.SortFunc(actions, func(a, b *ActionDescriptor) int {
			return strings.Compare(a.Name, b.Name)
		})
		r.actions[name] = actions
	}
}

func indexKey(group, action string) string {
	return group + "\x00" + action
}
