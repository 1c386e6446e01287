package issue

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/output"
	"jira/internal/tracker"
)

// IssueCreate creates an issue, optionally assigning and starting it.
type IssueCreate struct {
	base
}

func (h *IssueCreate) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("title", "t", "", "Issue title")
	s.String("description", "d", "", "Issue description")
	s.String("type", "", h.env.Config.Issues.DefaultType, "Issue type (Bug, Task, Story, ...)")
	s.Bool("assign", "a", false, "Assign the issue to yourself")
	s.Bool("begin", "b", false, "Move the issue to in progress; implies --assign")
	s.String("epic", "e", "", "Key of the parent epic")
	s.StringSlice("labels", "l", nil, "Comma-separated labels")
	s.StringArray("field", "f", nil, "Extra field as NAME=VALUE (repeatable)")
	s.Bool("browse", "", false, "Open the new issue in the browser")
	return s.Require("title", "description")
}

func (h *IssueCreate) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	logger := inv.Logger()
	projectKey, err := h.env.Project(inv)
	if err != nil {
		return dispatch.Failed(err.Error()), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}

	project, err := svc.GetProject(ctx, projectKey)
	if tracker.IsNotFound(err) {
		return dispatch.Failed(fmt.Sprintf("Project %s not found", projectKey)), nil
	}
	if err != nil {
		return dispatch.Result{}, err
	}
	typeName, ok := matchIssueType(project, inv.String("type"))
	if !ok {
		names := make([]string, 0, len(project.IssueTypes))
		for _, t := range project.IssueTypes {
			names = append(names, t.Name)
		}
		return dispatch.Failed(fmt.Sprintf("Invalid issue type %q for project %s. Valid issue types are: %s",
			inv.String("type"), project.Key, strings.Join(names, ", "))), nil
	}

	fields := tracker.Fields{
		"project":     map[string]any{"key": project.Key},
		"summary":     inv.String("title"),
		"description": inv.String("description"),
		"issuetype":   map[string]any{"name": typeName},
	}
	if labels := cleanList(inv.StringSlice("labels")); len(labels) > 0 {
		fields["labels"] = labels
	}
	if epicKey := strings.ToUpper(strings.TrimSpace(inv.String("epic"))); epicKey != "" {
		epic, err := svc.GetIssue(ctx, epicKey)
		if err != nil {
			return dispatch.Result{}, fmt.Errorf("look up epic %s: %w", epicKey, err)
		}
		fields["parent"] = map[string]any{"key": epic.Key}
	}

	var typeMeta *tracker.IssueTypeMeta
	meta, err := svc.CreateMeta(ctx, project.Key, typeName)
	if err != nil {
		logging.WarnWithContext(logger, "create metadata unavailable", "create_meta_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "field names are not mapped and required fields are not checked"),
		)
	} else {
		typeMeta, _ = meta.IssueType(typeName)
	}
	if err := applyFields(fields, typeMeta, inv.StringArray("field")); err != nil {
		return dispatch.Failed(err.Error()), nil
	}
	if missing := missingFields(fields, typeMeta); len(missing) > 0 {
		return dispatch.Failed("Missing mandatory fields: " + strings.Join(missing, ", ")), nil
	}

	created, err := svc.CreateIssue(ctx, fields)
	if err != nil {
		return dispatch.Result{}, err
	}
	logger.Info("issue created", logging.Issue(created.Key))

	if inv.Bool("assign") || inv.Bool("begin") {
		me, err := svc.CurrentUser(ctx)
		if err == nil {
			err = svc.AssignIssue(ctx, created.Key, me)
		}
		if err != nil {
			return dispatch.Result{}, fmt.Errorf("issue %s created but assignment failed: %w", created.Key, err)
		}
	}
	if inv.Bool("begin") {
		_, failed, err := moveIssue(ctx, inv, svc, created.Key, h.env.Config.Issues.InProgressTransition)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "could not start new issue", "transition_failed",
				logging.Issue(created.Key), logging.Error(err))
		case failed != nil:
			logging.WarnWithContext(logger, "could not start new issue", "transition_failed",
				logging.Issue(created.Key), logging.String("reason", failed.Message))
		}
	}

	link := svc.IssueURL(created.Key)
	if inv.Bool("browse") {
		if err := h.env.OpenURL(ctx, link); err != nil {
			logging.WarnWithContext(logger, "could not open browser", "browser_failed",
				logging.Error(err), logging.String(logging.FieldImpact, "open "+link+" manually"))
		}
	}

	record := output.Record{
		output.F("ID", created.ID),
		output.F("Key", created.Key),
		output.F("Summary", inv.String("title")),
		output.F("Type", typeName),
		output.F("URL", link),
	}
	return dispatch.Result{}, h.env.Render(inv, []output.Record{record})
}

// matchIssueType returns the project's spelling of name. A project that
// reports no issue types accepts any name.
func matchIssueType(project *tracker.Project, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if len(project.IssueTypes) == 0 {
		return name, true
	}
	for _, t := range project.IssueTypes {
		if strings.EqualFold(t.Name, name) {
			return t.Name, true
		}
	}
	return "", false
}

// fieldKey is the command-line spelling of a field name: lower case with
// spaces replaced by underscores.
func fieldKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// applyFields adds NAME=VALUE pairs to fields. NAME may be a field ID or a
// fieldKey; custom array and option fields are shaped as the tracker expects.
func applyFields(fields tracker.Fields, meta *tracker.IssueTypeMeta, pairs []string) error {
	byKey := make(map[string]tracker.FieldMeta)
	byID := make(map[string]tracker.FieldMeta)
	if meta != nil {
		for id, f := range meta.Fields {
			if f.ID == "" {
				f.ID = id
			}
			byKey[fieldKey(f.Name)] = f
			byID[strings.ToLower(id)] = f
		}
	}

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid --field %q; use NAME=VALUE", pair)
		}
		id := name
		f, known := byKey[fieldKey(name)]
		if !known {
			f, known = byID[strings.ToLower(name)]
		}
		if known {
			id = f.ID
		}
		fields[id] = fieldValue(id, f.Schema, value)
	}
	return nil
}

func fieldValue(id string, schema tracker.FieldSchema, value string) any {
	if !strings.HasPrefix(id, "customfield_") {
		return value
	}
	switch schema.Type {
	case "array":
		return cleanList(strings.Split(value, ","))
	case "option":
		return map[string]any{"value": value}
	default:
		return value
	}
}

// Fields the create command always fills or the server derives.
var implicitFields = map[string]bool{
	"summary":     true,
	"description": true,
	"project":     true,
	"issuetype":   true,
	"reporter":    true,
}

func missingFields(fields tracker.Fields, meta *tracker.IssueTypeMeta) []string {
	if meta == nil {
		return nil
	}
	var missing []string
	for id, f := range meta.Fields {
		if !f.Required || f.HasDefaultValue || implicitFields[id] {
			continue
		}
		if _, ok := fields[id]; !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", fieldKey(f.Name), id))
		}
	}
	slices.Sort(missing)
	return missing
}
