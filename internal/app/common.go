package app

import (
	"errors"
	"strings"

	"jira/internal/dispatch"
)

// Shared flag names.
const (
	FlagOutput  = "output"
	FlagProject = "project"
	FlagIssue   = "issue"
)

// ErrNoProject is returned when neither --project nor jira.project is set.
var ErrNoProject = errors.New("no project given; pass --project or set jira.project")

// DeclareProject adds --project/-p unless the action already has it.
func (e *Env) DeclareProject(s *dispatch.Schema) {
	s.String(FlagProject, "p", e.Config.Jira.Project, "Project key")
}

// Project returns the project key for inv, upper-cased.
func (e *Env) Project(inv *dispatch.Invocation) (string, error) {
	project := strings.ToUpper(strings.TrimSpace(inv.String(FlagProject)))
	if project == "" {
		project = e.Config.Jira.Project
	}
	if project == "" {
		return "", ErrNoProject
	}
	return project, nil
}

// DeclareIssue adds the required --issue/-i flag.
func DeclareIssue(s *dispatch.Schema) error {
	s.String(FlagIssue, "i", "", "Issue key, e.g. DEMO-123")
	return s.Require(FlagIssue)
}

// IssueKey returns the --issue value, upper-cased.
func IssueKey(inv *dispatch.Invocation) string {
	return strings.ToUpper(strings.TrimSpace(inv.String(FlagIssue)))
}
