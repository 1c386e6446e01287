package tracker

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// ListProjects returns every project visible to the account.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, "list projects", http.MethodGet, "/project", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a project with its lead and issue types.
func (c *Client) GetProject(ctx context.Context, key string) (*Project, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("project key required")
	}
	var project Project
	if err := c.doJSON(ctx, "get project "+key, http.MethodGet, "/project/"+url.PathEscape(key), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
