package issue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"jira/internal/dispatch"
	"jira/internal/output"
)

// IssueShow prints one issue. JSON output is the tracker's full payload.
type IssueShow struct {
	base
}

func (h *IssueShow) DeclareArguments(s *dispatch.Schema) error {
	h.declare(s)
	return declareIssue(s)
}

func (h *IssueShow) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	svc, err := h.service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	issue, err := svc.GetIssue(ctx, issueKey(inv))
	if err != nil {
		return dispatch.Result{}, err
	}

	if h.env.Format(inv) == output.FormatJSON && len(issue.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, issue.Raw, "", "  "); err != nil {
			return dispatch.Result{}, fmt.Errorf("format issue json: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(inv.Stdout())
		return dispatch.Result{}, err
	}

	record := output.Record{
		output.F("ID", issue.ID),
		output.F("Key", issue.Key),
		output.F("Summary", issue.Summary),
		output.F("Status", issue.Status),
		output.F("Type", issue.IssueType),
		output.F("Priority", issue.Priority),
		output.F("Assignee", issue.Assignee.Label()),
		output.F("Reporter", issue.Reporter.Label()),
		output.F("Labels", issue.Labels),
		output.F("Parent", issue.Parent),
		output.F("Updated", shortDate(issue.Updated)),
		output.F("URL", svc.IssueURL(issue.Key)),
	}
	return dispatch.Result{}, h.env.Render(inv, []output.Record{record})
}
