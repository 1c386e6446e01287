// Package project implements the actions of the project command group.
package project

import (
	"context"
	"fmt"
	"strings"

	"jira/internal/app"
	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/output"
	"jira/internal/tracker"
)

// Register adds every project handler to c.
func Register(c *dispatch.Catalog, env *app.Env) {
	b := base{env: env}
	dispatch.Register(c, func() (*ProjectList, error) { return &ProjectList{base: b}, nil })
	dispatch.Register(c, func() (*ProjectShow, error) { return &ProjectShow{base: b}, nil })
}

type base struct {
	env *app.Env
}

// declare adds --output and the --name/--key filters.
func (b base) declare(s *dispatch.Schema) {
	b.env.DeclareCommon(s)
	s.String("name", "n", "", "Filter by name (case-insensitive substring)")
	s.String("key", "k", "", "Filter by key (case-insensitive substring)")
}

// projects lists projects matching the --name and --key filters.
func (b base) projects(ctx context.Context, svc tracker.Service, inv *dispatch.Invocation) ([]tracker.Project, error) {
	all, err := svc.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(strings.TrimSpace(inv.String("name")))
	key := strings.ToLower(strings.TrimSpace(inv.String("key")))
	matched := make([]tracker.Project, 0, len(all))
	for _, p := range all {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		if key != "" && !strings.Contains(strings.ToLower(p.Key), key) {
			continue
		}
		matched = append(matched, p)
	}
	inv.Logger().Debug("projects filtered", logging.Int("total", len(all)), logging.Int("matched", len(matched)))
	return matched, nil
}

// ProjectList lists projects.
type ProjectList struct {
	base
}

func (h *ProjectList) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.Bool("refresh", "r", false, "Drop cached project metadata first")
	return nil
}

func (h *ProjectList) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	svc, err := h.env.Service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	if inv.Bool("refresh") {
		if err := h.env.InvalidateCache(ctx); err != nil {
			logging.WarnWithContext(inv.Logger(), "cache refresh failed", "cache_error",
				logging.Error(err), logging.String(logging.FieldImpact, "cached projects may be shown"))
		}
	}
	projects, err := h.projects(ctx, svc, inv)
	if err != nil {
		return dispatch.Result{}, err
	}
	records := make([]output.Record, 0, len(projects))
	for _, p := range projects {
		records = append(records, output.Record{
			output.F("ID", p.ID),
			output.F("Key", p.Key),
			output.F("Name", p.Name),
		})
	}
	return dispatch.Result{}, h.env.Render(inv, records)
}

// ProjectShow prints details of the projects matching the filters.
type ProjectShow struct {
	base
}

func (h *ProjectShow) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	return nil
}

func (h *ProjectShow) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	if strings.TrimSpace(inv.String("key")) == "" && strings.TrimSpace(inv.String("name")) == "" {
		return dispatch.Failed("Pass --key or --name to choose a project"), nil
	}
	svc, err := h.env.Service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	projects, err := h.projects(ctx, svc, inv)
	if err != nil {
		return dispatch.Result{}, err
	}
	if len(projects) == 0 {
		return dispatch.Failed("No projects match"), nil
	}

	records := make([]output.Record, 0, len(projects))
	for _, p := range projects {
		detail, err := svc.GetProject(ctx, p.Key)
		if err != nil {
			return dispatch.Result{}, fmt.Errorf("project %s: %w", p.Key, err)
		}
		types := make([]string, 0, len(detail.IssueTypes))
		for _, t := range detail.IssueTypes {
			types = append(types, t.Name)
		}
		records = append(records, output.Record{
			output.F("ID", detail.ID),
			output.F("Key", detail.Key),
			output.F("Name", detail.Name),
			output.F("Type", detail.ProjectTypeKey),
			output.F("Lead", detail.Lead.Label()),
			output.F("Issue Types", types),
			output.F("Description", detail.Description),
		})
	}
	return dispatch.Result{}, h.env.Render(inv, records)
}
