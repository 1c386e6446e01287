package issue

import (
	"context"
	"fmt"

	"jira/internal/app"
	"jira/internal/dispatch"
)

// IssueDelete removes an issue after confirmation.
type IssueDelete struct {
	base
}

func (h *IssueDelete) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.Bool("force", "", false, "Delete without asking")
	return declareIssue(s)
}

func (h *IssueDelete) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	key := issueKey(inv)
	if !inv.Bool("force") {
		if !app.Interactive(inv.Stdin()) {
			return dispatch.Failed(fmt.Sprintf("Refusing to delete %s without --force when input is not a terminal", key)), nil
		}
		ok, err := app.Confirm(inv.Stdin(), inv.Stderr(), fmt.Sprintf("Delete %s? This cannot be undone.", key))
		if err != nil {
			return dispatch.Result{}, err
		}
		if !ok {
			return dispatch.Failed("Aborted"), nil
		}
	}

	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	if err := svc.DeleteIssue(ctx, key); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded(fmt.Sprintf("Issue %s deleted", key)), nil
}
