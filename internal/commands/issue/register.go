package issue

import (
	"context"

	"jira/internal/app"
	"jira/internal/dispatch"
	"jira/internal/tracker"
)

// Register adds every issue handler to c. IssueTransition has no builtin
// manifest and binds only when a plugin root supplies one.
func Register(c *dispatch.Catalog, env *app.Env) {
	b := base{env: env}
	dispatch.Register(c, func() (*IssueAssign, error) { return &IssueAssign{base: b}, nil })
	dispatch.Register(c, func() (*IssueAttach, error) { return &IssueAttach{base: b}, nil })
	dispatch.Register(c, func() (*IssueBegin, error) { return &IssueBegin{base: b}, nil })
	dispatch.Register(c, func() (*IssueBlock, error) { return &IssueBlock{base: b}, nil })
	dispatch.Register(c, func() (*IssueBrowse, error) { return &IssueBrowse{base: b}, nil })
	dispatch.Register(c, func() (*IssueClose, error) { return &IssueClose{base: b}, nil })
	dispatch.Register(c, func() (*IssueComment, error) { return &IssueComment{base: b}, nil })
	dispatch.Register(c, func() (*IssueCreate, error) { return &IssueCreate{base: b}, nil })
	dispatch.Register(c, func() (*IssueDelete, error) { return &IssueDelete{base: b}, nil })
	dispatch.Register(c, func() (*IssueFields, error) { return &IssueFields{base: b}, nil })
	dispatch.Register(c, func() (*IssueLabel, error) { return &IssueLabel{base: b}, nil })
	dispatch.Register(c, func() (*IssueList, error) { return &IssueList{base: b}, nil })
	dispatch.Register(c, func() (*IssueSearch, error) { return &IssueSearch{base: b}, nil })
	dispatch.Register(c, func() (*IssueShow, error) { return &IssueShow{base: b}, nil })
	dispatch.Register(c, func() (*IssueTransition, error) { return &IssueTransition{base: b}, nil })
	dispatch.Register(c, func() (*IssueUpdate, error) { return &IssueUpdate{base: b}, nil })
}

// base carries what every issue action shares: the environment and the
// --output and --project flags.
type base struct {
	env *app.Env
}

func (b base) declare(s *dispatch.Schema) {
	b.env.DeclareCommon(s)
	b.env.DeclareProject(s)
}

func (b base) service(ctx context.Context) (tracker.Service, error) {
	return b.env.Service(ctx)
}
