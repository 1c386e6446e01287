package issue

import (
	"context"
	"strings"

	"jira/internal/dispatch"
	"jira/internal/tracker"
)

// IssueList lists issues in the project, open ones by default.
type IssueList struct {
	base
}

func (h *IssueList) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.Bool("mine", "m", false, "Only issues assigned to you")
	s.Bool("done", "d", false, "Include finished issues")
	s.Int("limit", "l", 0, "Stop after this many issues (0 for all)")
	return nil
}

func (h *IssueList) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	project, err := h.env.Project(inv)
	if err != nil {
		return dispatch.Failed(err.Error()), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}

	clauses := []string{projectClause(project)}
	if inv.Bool("mine") {
		clauses = append(clauses, "assignee = currentUser()")
	}
	if filter := strings.TrimSpace(h.env.Config.Issues.OpenFilter); filter != "" && !inv.Bool("done") {
		clauses = append(clauses, jqlTerm(filter))
	}
	jql := strings.Join(clauses, " AND ") + " ORDER BY updated DESC"

	records, err := collectIssues(ctx, inv, svc, tracker.Query{JQL: jql, Fields: listFields}, inv.Int("limit"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Result{}, h.env.Render(inv, records)
}

// IssueSearch runs a JQL query scoped to the project.
type IssueSearch struct {
	base
}

func (h *IssueSearch) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("jql", "q", "", "JQL query")
	s.Int("limit", "l", 0, "Stop after this many issues (0 for all)")
	return s.Require("jql")
}

func (h *IssueSearch) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	query := strings.TrimSpace(inv.String("jql"))
	if query == "" {
		return dispatch.Failed("--jql must not be empty"), nil
	}
	project, err := h.env.Project(inv)
	if err != nil {
		return dispatch.Failed(err.Error()), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}

	jql := projectClause(project) + " AND (" + query + ")"
	records, err := collectIssues(ctx, inv, svc, tracker.Query{JQL: jql, Fields: listFields}, inv.Int("limit"))
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Result{}, h.env.Render(inv, records)
}
