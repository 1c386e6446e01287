package issue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/output"
	"jira/internal/tracker"
)

// listFields are the fields requested for tabular issue listings.
var listFields = []string{"summary", "status", "assignee", "issuetype", "labels", "resolutiondate"}

const trackerTimeLayout = "2006-01-02T15:04:05.000-0700"

func listRecord(issue tracker.Issue) output.Record {
	assignee := "Unassigned"
	if issue.Assignee != nil {
		assignee = issue.Assignee.Label()
	}
	return output.Record{
		output.F("ID", issue.Key),
		output.F("Summary", issue.Summary),
		output.F("Status", issue.Status),
		output.F("Assignee", assignee),
		output.F("Issue Type", issue.IssueType),
		output.F("Labels", strings.Join(issue.Labels, ", ")),
		output.F("Resolution Date", shortDate(issue.ResolutionDate)),
	}
}

// shortDate renders a tracker timestamp as YYYY-MM-DD, or N/A when unset.
func shortDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "N/A"
	}
	if ts, err := time.Parse(trackerTimeLayout, value); err == nil {
		return ts.Format(time.DateOnly)
	}
	if len(value) >= len(time.DateOnly) {
		return value[:len(time.DateOnly)]
	}
	return value
}

// collectIssues drains a search into records, dropping repeated keys. A
// search cut short by the page cap keeps what it found and logs a warning.
func collectIssues(ctx context.Context, inv *dispatch.Invocation, svc tracker.Service, query tracker.Query, limit int) ([]output.Record, error) {
	seen := make(map[string]struct{})
	var records []output.Record
	for issue, err := range svc.SearchIssues(ctx, query) {
		if err != nil {
			if errors.Is(err, tracker.ErrPageLimit) {
				logging.WarnWithContext(inv.Logger(), "search stopped at the page limit", "page_limit",
					logging.Error(err),
					logging.Int("issues", len(records)),
					logging.String(logging.FieldImpact, "results are incomplete"),
					logging.String(logging.FieldErrorHint, "raise jira.max_pages or narrow the query"),
				)
				break
			}
			return nil, err
		}
		if _, dup := seen[issue.Key]; dup {
			continue
		}
		seen[issue.Key] = struct{}{}
		records = append(records, listRecord(issue))
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	inv.Logger().Debug("search complete", logging.Int("issues", len(records)))
	return records, nil
}

// jqlTerm parenthesizes a predicate that contains OR so it binds correctly
// when joined with AND.
// projectClause quotes the key so reserved JQL words stay literal.
func projectClause(project string) string {
	return fmt.Sprintf("project = %q", project)
}

func jqlTerm(predicate string) string {
	predicate = strings.TrimSpace(predicate)
	if strings.Contains(strings.ToUpper(predicate), " OR ") {
		return "(" + predicate + ")"
	}
	return predicate
}
