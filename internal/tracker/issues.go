package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

func issuePath(key string, suffix ...string) string {
	return "/issue/" + url.PathEscape(key) + strings.Join(suffix, "")
}

// GetIssue fetches one issue by key or ID.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("issue key required")
	}
	var issue Issue
	if err := c.doJSON(ctx, "get issue "+key, http.MethodGet, issuePath(key), nil, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields,omitempty"`
}

type searchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// SearchIssues runs a JQL query page by page.
func (c *Client) SearchIssues(ctx context.Context, query Query) iter.Seq2[Issue, error] {
	pageSize := c.pageSize
	if query.PageSize > 0 {
		pageSize = query.PageSize
	}
	return Paginate(ctx, pageSize, c.maxPages, func(ctx context.Context, startAt, size int) ([]Issue, error) {
		req := searchRequest{JQL: query.JQL, StartAt: startAt, MaxResults: size, Fields: query.Fields}
		var resp searchResponse
		if err := c.doJSON(ctx, "search issues", http.MethodPost, "/search", nil, req, &resp); err != nil {
			return nil, err
		}
		return resp.Issues, nil
	})
}

// CreateIssue creates an issue and returns its reference (ID, key, self).
func (c *Client) CreateIssue(ctx context.Context, fields Fields) (*Issue, error) {
	var created struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	body := map[string]any{"fields": fields}
	if err := c.doJSON(ctx, "create issue", http.MethodPost, "/issue", nil, body, &created); err != nil {
		return nil, err
	}
	return &Issue{ID: created.ID, Key: created.Key, Self: created.Self}, nil
}

// UpdateIssue sets the given fields.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields Fields) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	body := map[string]any{"fields": fields}
	return c.doJSON(ctx, "update issue "+key, http.MethodPut, issuePath(key), nil, body, nil)
}

// DeleteIssue removes an issue.
func (c *Client) DeleteIssue(ctx context.Context, key string) error {
	return c.doJSON(ctx, "delete issue "+key, http.MethodDelete, issuePath(key), nil, nil, nil)
}

// AssignIssue assigns an issue; a nil user unassigns it.
func (c *Client) AssignIssue(ctx context.Context, key string, user *User) error {
	body := map[string]any{}
	switch {
	case user == nil:
		body["name"] = nil
	case user.AccountID != "":
		body["accountId"] = user.AccountID
	default:
		body["name"] = user.Name
	}
	return c.doJSON(ctx, "assign issue "+key, http.MethodPut, issuePath(key, "/assignee"), nil, body, nil)
}

// ListTransitions returns the workflow moves available on an issue.
func (c *Client) ListTransitions(ctx context.Context, key string) ([]Transition, error) {
	var resp struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.doJSON(ctx, "list transitions "+key, http.MethodGet, issuePath(key, "/transitions"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// ApplyTransition moves an issue through its workflow.
func (c *Client) ApplyTransition(ctx context.Context, key, transitionID string) error {
	body := map[string]any{"transition": map[string]string{"id": transitionID}}
	return c.doJSON(ctx, "transition issue "+key, http.MethodPost, issuePath(key, "/transitions"), nil, body, nil)
}

// AddComment posts a comment.
func (c *Client) AddComment(ctx context.Context, key, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("comment body required")
	}
	var comment Comment
	body := map[string]string{"body": text}
	if err := c.doJSON(ctx, "comment on "+key, http.MethodPost, issuePath(key, "/comment"), nil, body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// AddLabels adds labels without touching existing ones.
func (c *Client) AddLabels(ctx context.Context, key string, labels []string) error {
	ops := make([]map[string]string, 0, len(labels))
	for _, label := range labels {
		if label = strings.TrimSpace(label); label != "" {
			ops = append(ops, map[string]string{"add": label})
		}
	}
	if len(ops) == 0 {
		return errors.New("no labels to add")
	}
	body := map[string]any{"update": map[string]any{"labels": ops}}
	return c.doJSON(ctx, "label issue "+key, http.MethodPut, issuePath(key), nil, body, nil)
}

// AddAttachment uploads content as a file attached to the issue.
func (c *Client) AddAttachment(ctx context.Context, key, filename string, content io.Reader) error {
	op := "attach to " + key
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("%s: read %s: %w", op, filename, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(issuePath(key, "/attachments"), nil), &buf)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")
	return c.send(op, req, nil)
}

// CurrentUser returns the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, "current user", http.MethodGet, "/myself", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateMeta returns field metadata for creating issues in a project. An
// empty issueType returns every type.
func (c *Client) CreateMeta(ctx context.Context, project, issueType string) (*CreateMeta, error) {
	query := url.Values{}
	query.Set("projectKeys", project)
	query.Set("expand", "projects.issuetypes.fields")
	if issueType != "" {
		query.Set("issuetypeNames", issueType)
	}
	var resp struct {
		Projects []struct {
			Key        string          `json:"key"`
			IssueTypes []IssueTypeMeta `json:"issuetypes"`
		} `json:"projects"`
	}
	if err := c.doJSON(ctx, "create metadata "+project, http.MethodGet, "/issue/createmeta", query, nil, &resp); err != nil {
		return nil, err
	}
	for _, p := range resp.Projects {
		if !equalFold(p.Key, project) {
			continue
		}
		meta := &CreateMeta{Project: p.Key, IssueTypes: p.IssueTypes}
		for i := range meta.IssueTypes {
			for id, field := range meta.IssueTypes[i].Fields {
				if field.ID == "" {
					field.ID = id
					meta.IssueTypes[i].Fields[id] = field
				}
			}
		}
		return meta, nil
	}
	return nil, &ServiceError{Op: "create metadata " + project, Status: http.StatusNotFound, Messages: []string{"project not visible to this account"}}
}
