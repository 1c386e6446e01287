package issue

import (
	"context"
	"fmt"
	"strings"

	"jira/internal/app"
	"jira/internal/dispatch"
	"jira/internal/output"
)

func declareIssue(s *dispatch.Schema) error {
	return app.DeclareIssue(s)
}

func issueKey(inv *dispatch.Invocation) string {
	return app.IssueKey(inv)
}

// IssueBegin moves an issue to the in-progress state.
type IssueBegin struct {
	base
}

func (h *IssueBegin) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	return declareIssue(s)
}

func (h *IssueBegin) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	return h.transition(ctx, inv, h.env.Config.Issues.InProgressTransition, "")
}

// IssueBlock moves an issue to the blocked state, optionally explaining why.
type IssueBlock struct {
	base
}

func (h *IssueBlock) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("comment", "c", "", "Comment to add explaining the block")
	return declareIssue(s)
}

func (h *IssueBlock) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	return h.transition(ctx, inv, h.env.Config.Issues.BlockedTransition, inv.String("comment"))
}

// IssueClose moves an issue to the done state.
type IssueClose struct {
	base
}

func (h *IssueClose) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("comment", "c", "", "Comment to add when closing")
	return declareIssue(s)
}

func (h *IssueClose) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	return h.transition(ctx, inv, h.env.Config.Issues.DoneTransition, inv.String("comment"))
}

func (b base) transition(ctx context.Context, inv *dispatch.Invocation, name, comment string) (dispatch.Result, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	move, failed, err := moveIssue(ctx, inv, svc, key, name)
	if err != nil {
		return dispatch.Result{}, err
	}
	if failed != nil {
		return *failed, nil
	}
	msg := fmt.Sprintf("Issue %s transitioned to %q", key, move.Name)
	if comment = strings.TrimSpace(comment); comment != "" {
		if _, err := svc.AddComment(ctx, key, comment); err != nil {
			return dispatch.Result{}, fmt.Errorf("issue %s transitioned but the comment failed: %w", key, err)
		}
		msg += " with comment"
	}
	return dispatch.Succeeded(msg), nil
}

// IssueTransition applies any workflow transition by name, or lists the
// transitions the issue offers when --to is omitted. No builtin manifest
// ships for it; dropping issue/transition.toml into plugins.dir enables it.
type IssueTransition struct {
	base
}

func (h *IssueTransition) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("to", "t", "", "Transition name (case-insensitive); omit to list")
	s.String("comment", "c", "", "Comment to add after the transition")
	return declareIssue(s)
}

func (h *IssueTransition) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	if to := strings.TrimSpace(inv.String("to")); to != "" {
		return h.transition(ctx, inv, to, inv.String("comment"))
	}

	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	if _, err := svc.GetIssue(ctx, key); err != nil {
		return dispatch.Result{}, err
	}
	transitions, err := svc.ListTransitions(ctx, key)
	if err != nil {
		return dispatch.Result{}, err
	}
	records := make([]output.Record, 0, len(transitions))
	for _, t := range transitions {
		records = append(records, output.Record{
			output.F("Name", t.Name),
			output.F("ID", t.ID),
			output.F("To", t.To.Name),
		})
	}
	return dispatch.Result{}, h.env.Render(inv, records)
}
