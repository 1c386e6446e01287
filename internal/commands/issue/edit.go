package issue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jira/internal/config"
	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/tracker"
)

// IssueAssign assigns an issue to a user, or to the caller by default.
type IssueAssign struct {
	base
}

func (h *IssueAssign) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("user", "u", "", "Account ID (cloud) or user name (server); defaults to you")
	return declareIssue(s)
}

func (h *IssueAssign) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	user, err := h.assignee(ctx, svc, inv.String("user"))
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	if err := svc.AssignIssue(ctx, key, user); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded(fmt.Sprintf("Issue %s assigned to %s", key, user.Label())), nil
}

// assignee resolves --user. Server instances address users by name, cloud
// instances by account ID.
func (b base) assignee(ctx context.Context, svc tracker.Service, who string) (*tracker.User, error) {
	who = strings.TrimSpace(who)
	if who == "" {
		return svc.CurrentUser(ctx)
	}
	if b.env.Config.Jira.AuthMethod == config.AuthPAT {
		return &tracker.User{Name: who}, nil
	}
	return &tracker.User{AccountID: who}, nil
}

// IssueComment adds a comment.
type IssueComment struct {
	base
}

func (h *IssueComment) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("comment", "c", "", "Comment text")
	if err := declareIssue(s); err != nil {
		return err
	}
	return s.Require("comment")
}

func (h *IssueComment) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	text := strings.TrimSpace(inv.String("comment"))
	if text == "" {
		return dispatch.Failed("--comment must not be empty"), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	if _, err := svc.AddComment(ctx, key, text); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded("Added comment to " + key), nil
}

// IssueLabel adds labels.
type IssueLabel struct {
	base
}

func (h *IssueLabel) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.StringSlice("labels", "l", nil, "Comma-separated labels to add")
	if err := declareIssue(s); err != nil {
		return err
	}
	return s.Require("labels")
}

func (h *IssueLabel) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	labels := cleanList(inv.StringSlice("labels"))
	if len(labels) == 0 {
		return dispatch.Failed("--labels must name at least one label"), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	if err := svc.AddLabels(ctx, key, labels); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded(fmt.Sprintf("Issue %s labels updated: %s", key, strings.Join(labels, ", "))), nil
}

// IssueUpdate changes the title or description.
type IssueUpdate struct {
	base
}

func (h *IssueUpdate) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("title", "t", "", "New title")
	s.String("description", "d", "", "New description")
	return declareIssue(s)
}

func (h *IssueUpdate) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	fields := tracker.Fields{}
	var changed []string
	if inv.Changed("title") {
		fields["summary"] = inv.String("title")
		changed = append(changed, "title")
	}
	if inv.Changed("description") {
		fields["description"] = inv.String("description")
		changed = append(changed, "description")
	}
	if len(fields) == 0 {
		return dispatch.Failed("Nothing to update; pass --title or --description"), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	if err := svc.UpdateIssue(ctx, key, fields); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded(fmt.Sprintf("Issue %s updated with new %s", key, strings.Join(changed, " and "))), nil
}

// IssueAttach uploads files.
type IssueAttach struct {
	base
}

func (h *IssueAttach) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.Args(1, -1, "FILE...")
	return declareIssue(s)
}

func (h *IssueAttach) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	key := issueKey(inv)
	for _, path := range inv.Args {
		if err := attachFile(ctx, svc, key, path); err != nil {
			return dispatch.Result{}, err
		}
		inv.Logger().Debug("attached file", logging.Issue(key), logging.String("file", path))
	}
	return dispatch.Succeeded(fmt.Sprintf("Attached %d file(s) to %s", len(inv.Args), key)), nil
}

func attachFile(ctx context.Context, svc tracker.Service, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer file.Close()
	return svc.AddAttachment(ctx, key, filepath.Base(path), file)
}

// IssueBrowse opens an issue in the browser.
type IssueBrowse struct {
	base
}

func (h *IssueBrowse) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.Bool("print", "", false, "Print the URL instead of opening it")
	return declareIssue(s)
}

func (h *IssueBrowse) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	issue, err := svc.GetIssue(ctx, issueKey(inv))
	if err != nil {
		return dispatch.Result{}, err
	}
	link := svc.IssueURL(issue.Key)
	if inv.Bool("print") {
		return dispatch.Succeeded(link), nil
	}
	if err := h.env.OpenURL(ctx, link); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Result{}, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
