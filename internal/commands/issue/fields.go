package issue

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"jira/internal/dispatch"
	"jira/internal/output"
	"jira/internal/tracker"
)

const maxListedOptions = 5

// IssueFields lists a project's issue types, or the fields of one type.
type IssueFields struct {
	base
}

func (h *IssueFields) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	s.String("type", "", "", "Issue type whose fields to list")
	return nil
}

func (h *IssueFields) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	project, err := h.env.Project(inv)
	if err != nil {
		return dispatch.Failed(err.Error()), nil
	}
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	typeName := strings.TrimSpace(inv.String("type"))
	meta, err := svc.CreateMeta(ctx, project, typeName)
	if err != nil {
		return dispatch.Result{}, err
	}

	if typeName == "" {
		records := make([]output.Record, 0, len(meta.IssueTypes))
		for _, t := range meta.IssueTypes {
			records = append(records, output.Record{output.F("Issue Type", t.Name), output.F("ID", t.ID)})
		}
		return dispatch.Result{}, h.env.Render(inv, records)
	}

	issueType, ok := meta.IssueType(typeName)
	if !ok {
		return dispatch.Failed(fmt.Sprintf("Issue type %q not found in project %s", typeName, project)), nil
	}
	return dispatch.Result{}, h.env.Render(inv, fieldRecords(issueType))
}

// fieldRecords lists required fields first, then optional ones, each by name.
func fieldRecords(issueType *tracker.IssueTypeMeta) []output.Record {
	metas := make([]tracker.FieldMeta, 0, len(issueType.Fields))
	for id, f := range issueType.Fields {
		if f.ID == "" {
			f.ID = id
		}
		metas = append(metas, f)
	}
	slices.SortFunc(metas, func(a, b tracker.FieldMeta) int {
		if a.Required != b.Required {
			if a.Required {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	records := make([]output.Record, 0, len(metas))
	for _, f := range metas {
		records = append(records, output.Record{
			output.F("Field", fieldKey(f.Name)),
			output.F("Name", f.Name),
			output.F("ID", f.ID),
			output.F("Required", f.Required),
			output.F("Type", f.Schema.Type),
			output.F("Options", optionSummary(f.AllowedValues)),
		})
	}
	return records
}

func optionSummary(values []tracker.AllowedValue) string {
	labels := make([]string, 0, maxListedOptions)
	for i, v := range values {
		if i == maxListedOptions {
			break
		}
		labels = append(labels, v.Label())
	}
	summary := strings.Join(labels, ", ")
	if len(values) > maxListedOptions {
		summary += ", ..."
	}
	return summary
}
