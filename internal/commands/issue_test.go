package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"jira/internal/dispatch"
	"jira/internal/testsupport"
	"jira/internal/tracker"
)

func TestIssueListReturnsEveryIssueAcrossPages(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 51)

	h.mustRun("issue", "list")

	records := h.records()
	if len(records) != 51 {
		t.Fatalf("expected 51 records, got %d", len(records))
	}
	seen := make(map[any]bool)
	for _, r := range records {
		if seen[r["ID"]] {
			t.Fatalf("duplicate record %v", r["ID"])
		}
		seen[r["ID"]] = true
	}
	if got := h.fake.Queries[0].JQL; got != `project = "DEMO" AND status != Done ORDER BY updated DESC` {
		t.Fatalf("unexpected jql %q", got)
	}
}

func TestIssueListColumns(t *testing.T) {
	h := newHarness(t)
	h.fake.Issues = []tracker.Issue{{
		Key:            "DEMO-7",
		Summary:        "Fix login",
		Status:         "Done",
		IssueType:      "Bug",
		Labels:         []string{"auth", "web"},
		ResolutionDate: "2024-03-05T10:11:12.000+0000",
	}}

	h.mustRun("issue", "list", "--done")

	want := map[string]any{
		"ID":              "DEMO-7",
		"Summary":         "Fix login",
		"Status":          "Done",
		"Assignee":        "Unassigned",
		"Issue Type":      "Bug",
		"Labels":          "auth, web",
		"Resolution Date": "2024-03-05",
	}
	if got := h.records()[0]; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected record:\n got %v\nwant %v", got, want)
	}
	if got := h.fake.Queries[0].JQL; got != `project = "DEMO" ORDER BY updated DESC` {
		t.Fatalf("--done must drop the open filter, got %q", got)
	}
}

func TestIssueListDropsRepeatedKeys(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 3)
	h.fake.Issues = append(h.fake.Issues, h.fake.Issues[0], h.fake.Issues[1])

	h.mustRun("issue", "list")
	if got := len(h.records()); got != 3 {
		t.Fatalf("expected 3 unique records, got %d", got)
	}
}

func TestIssueListMineAndProjectOverride(t *testing.T) {
	h := newHarness(t)
	h.mustRun("issue", "list", "--mine", "-p", "ops")
	if got := h.fake.Queries[0].JQL; got != `project = "OPS" AND assignee = currentUser() AND status != Done ORDER BY updated DESC` {
		t.Fatalf("unexpected jql %q", got)
	}
}

func TestIssueListQuotesReservedProjectKey(t *testing.T) {
	h := newHarness(t)
	h.mustRun("issue", "list", "--done", "-p", "order")
	if got := h.fake.Queries[0].JQL; got != `project = "ORDER" ORDER BY updated DESC` {
		t.Fatalf("unexpected jql %q", got)
	}
}

func TestIssueListKeepsPartialResultsAtPageCap(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 120)
	h.fake.MaxPages = 1

	h.mustRun("issue", "list")
	if got := len(h.records()); got != 50 {
		t.Fatalf("expected one page of results, got %d", got)
	}
}

func TestIssueListLimit(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 30)
	h.mustRun("issue", "list", "--limit", "5")
	if got := len(h.records()); got != 5 {
		t.Fatalf("expected 5 records, got %d", got)
	}
}

func TestIssueListWithoutProjectFails(t *testing.T) {
	h := newHarness(t, testsupport.WithProject(""))
	if code := h.run("issue", "list"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "--project") {
		t.Fatalf("expected project hint, got %q", h.stderr.String())
	}
}

func TestIssueSearchScopesQueryToProject(t *testing.T) {
	h := newHarness(t)
	h.mustRun("issue", "search", "--jql", "labels = urgent OR priority = High")
	want := `project = "DEMO" AND (labels = urgent OR priority = High)`
	if got := h.fake.Queries[0].JQL; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestIssueSearchRequiresJQL(t *testing.T) {
	h := newHarness(t)
	if code := h.run("issue", "search"); code != dispatch.ExitUsage {
		t.Fatalf("expected usage error, got %d", code)
	}
}

func inProgress(h *harness) {
	h.fake.Transitions["*"] = []tracker.Transition{
		{ID: "11", Name: "In Progress", To: tracker.Status{Name: "In Progress"}},
		{ID: "21", Name: "Blocked", To: tracker.Status{Name: "Blocked"}},
		{ID: "31", Name: "Done", To: tracker.Status{Name: "Done"}},
	}
}

func TestIssueBeginAppliesConfiguredTransition(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)
	inProgress(h)

	h.mustRun("issue", "begin", "-i", "demo-1")

	if got := h.fake.Applied["DEMO-1"]; !reflect.DeepEqual(got, []string{"11"}) {
		t.Fatalf("unexpected transitions %v", got)
	}
	if !strings.Contains(h.stdout.String(), `Issue DEMO-1 transitioned to "In Progress"`) {
		t.Fatalf("unexpected output %q", h.stdout.String())
	}
}

func TestIssueBeginListsAvailableTransitions(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)
	h.fake.Transitions["*"] = []tracker.Transition{{ID: "31", Name: "Done"}}

	if code := h.run("issue", "begin", "-i", "DEMO-1"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "Done (ID: 31)") {
		t.Fatalf("expected available transitions, got %q", h.stderr.String())
	}
	if len(h.fake.Applied) != 0 {
		t.Fatalf("nothing should be applied, got %v", h.fake.Applied)
	}
}

func TestIssueBlockAddsComment(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)
	inProgress(h)

	h.mustRun("issue", "block", "-i", "DEMO-1", "--comment", "waiting on vendor")

	if got := h.fake.Applied["DEMO-1"]; !reflect.DeepEqual(got, []string{"21"}) {
		t.Fatalf("unexpected transitions %v", got)
	}
	if got := h.fake.Comments["DEMO-1"]; !reflect.DeepEqual(got, []string{"waiting on vendor"}) {
		t.Fatalf("unexpected comments %v", got)
	}
}

func TestIssueCloseUnknownIssue(t *testing.T) {
	h := newHarness(t)
	if code := h.run("issue", "close", "-i", "DEMO-404"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "Issue does not exist") {
		t.Fatalf("expected server message, got %q", h.stderr.String())
	}
}

func createFixture(h *harness) {
	h.fake.Projects = []tracker.Project{{
		ID:         "1",
		Key:        "DEMO",
		Name:       "Demo",
		IssueTypes: []tracker.IssueType{{ID: "10", Name: "Task"}, {ID: "11", Name: "Bug"}},
	}}
	h.fake.Meta = &tracker.CreateMeta{
		Project: "DEMO",
		IssueTypes: []tracker.IssueTypeMeta{{
			ID:   "10",
			Name: "Task",
			Fields: map[string]tracker.FieldMeta{
				"summary":         {ID: "summary", Name: "Summary", Required: true},
				"customfield_100": {ID: "customfield_100", Name: "Delivery Team", Required: true, Schema: tracker.FieldSchema{Type: "option"}},
				"customfield_200": {ID: "customfield_200", Name: "Components Touched", Schema: tracker.FieldSchema{Type: "array"}},
				"priority":        {ID: "priority", Name: "Priority", Required: true, HasDefaultValue: true},
				"customfield_300": {ID: "customfield_300", Name: "Story Points"},
			},
		}},
	}
}

func TestIssueCreateReportsMissingMandatoryFields(t *testing.T) {
	h := newHarness(t)
	createFixture(h)

	code := h.run("issue", "create", "-t", "New thing", "-d", "Details")
	if code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "Missing mandatory fields: delivery_team (customfield_100)") {
		t.Fatalf("unexpected error %q", h.stderr.String())
	}
	if len(h.fake.Created) != 0 {
		t.Fatal("issue must not be created")
	}
}

func TestIssueCreateMapsFieldsByName(t *testing.T) {
	h := newHarness(t)
	createFixture(h)
	inProgress(h)

	h.mustRun("issue", "create",
		"-t", "New thing", "-d", "Details", "--type", "task",
		"--labels", "a,b",
		"-f", "delivery_team=Core",
		"--field", "customfield_200=api, db",
		"--field", "Story_Points=3",
		"--begin",
	)

	if len(h.fake.Created) != 1 {
		t.Fatalf("expected one create call, got %d", len(h.fake.Created))
	}
	fields := h.fake.Created[0]
	if got := fields["issuetype"]; !reflect.DeepEqual(got, map[string]any{"name": "Task"}) {
		t.Fatalf("issue type not normalized: %v", got)
	}
	if got := fields["customfield_100"]; !reflect.DeepEqual(got, map[string]any{"value": "Core"}) {
		t.Fatalf("option field: %v", got)
	}
	if got := fields["customfield_200"]; !reflect.DeepEqual(got, []string{"api", "db"}) {
		t.Fatalf("array field: %v", got)
	}
	if got := fields["customfield_300"]; got != "3" {
		t.Fatalf("plain field: %v", got)
	}
	if got := fields["labels"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("labels: %v", got)
	}

	key := h.records()[0]["Key"].(string)
	if h.fake.Assigned[key] == nil || h.fake.Assigned[key].AccountID != "me-1" {
		t.Fatalf("--begin must assign to the caller, got %+v", h.fake.Assigned[key])
	}
	if got := h.fake.Applied[key]; !reflect.DeepEqual(got, []string{"11"}) {
		t.Fatalf("--begin must start the issue, got %v", got)
	}
}

func TestIssueCreateRejectsUnknownType(t *testing.T) {
	h := newHarness(t)
	createFixture(h)

	if code := h.run("issue", "create", "-t", "x", "-d", "y", "--type", "Epic"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "Valid issue types are: Task, Bug") {
		t.Fatalf("unexpected error %q", h.stderr.String())
	}
}

func TestIssueCreateRequiresTitle(t *testing.T) {
	h := newHarness(t)
	if code := h.run("issue", "create", "-d", "y"); code != dispatch.ExitUsage {
		t.Fatalf("expected usage error, got %d", code)
	}
}

func TestIssueCreateWithEpicAndBrowse(t *testing.T) {
	h := newHarness(t)
	createFixture(h)
	h.fake.SeedIssues("DEMO", 1)

	h.mustRun("issue", "create", "-t", "Child", "-d", "y", "-f", "delivery_team=Core", "--epic", "demo-1", "--browse")

	if got := h.fake.Created[0]["parent"]; !reflect.DeepEqual(got, map[string]any{"key": "DEMO-1"}) {
		t.Fatalf("parent: %v", got)
	}
	if len(h.opened) != 1 || !strings.HasPrefix(h.opened[0], "https://jira.example.test/browse/") {
		t.Fatalf("expected browser launch, got %v", h.opened)
	}
}

func TestIssueFields(t *testing.T) {
	h := newHarness(t)
	createFixture(h)

	h.mustRun("issue", "fields")
	types := h.records()
	if len(types) != 1 || types[0]["Issue Type"] != "Task" {
		t.Fatalf("unexpected issue types %v", types)
	}

	h.mustRun("issue", "fields", "--type", "task")
	fields := h.records()
	if len(fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(fields))
	}
	if fields[0]["Required"] != true || fields[len(fields)-1]["Required"] != false {
		t.Fatalf("required fields must come first: %v", fields)
	}
	if fields[0]["Field"] != "delivery_team" {
		t.Fatalf("unexpected first field %v", fields[0])
	}

	if code := h.run("issue", "fields", "--type", "Epic"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1 for unknown type, got %d", code)
	}
}

func TestIssueDeleteRefusesWithoutForceOffTerminal(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)
	h.stdin = "y\n"

	if code := h.run("issue", "delete", "-i", "DEMO-1"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if len(h.fake.Deleted) != 0 {
		t.Fatal("issue must not be deleted")
	}

	h.mustRun("issue", "delete", "-i", "DEMO-1", "--force")
	if !reflect.DeepEqual(h.fake.Deleted, []string{"DEMO-1"}) {
		t.Fatalf("unexpected deletes %v", h.fake.Deleted)
	}
}

func TestIssueUpdate(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)

	if code := h.run("issue", "update", "-i", "DEMO-1"); code != dispatch.ExitFailure {
		t.Fatalf("expected exit 1 with nothing to update, got %d", code)
	}

	h.mustRun("issue", "update", "-i", "DEMO-1", "--title", "Renamed")
	if got := h.fake.Updated["DEMO-1"]; !reflect.DeepEqual(got, tracker.Fields{"summary": "Renamed"}) {
		t.Fatalf("unexpected update %v", got)
	}
	if !strings.Contains(h.stdout.String(), "new title") {
		t.Fatalf("unexpected output %q", h.stdout.String())
	}
}

func TestIssueAssignCommentLabel(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)

	h.mustRun("issue", "assign", "-i", "DEMO-1", "--user", "acct-42")
	if got := h.fake.Assigned["DEMO-1"]; got == nil || got.AccountID != "acct-42" {
		t.Fatalf("unexpected assignee %+v", got)
	}

	h.mustRun("issue", "comment", "-i", "DEMO-1", "--comment", "looks good")
	if got := h.fake.Comments["DEMO-1"]; !reflect.DeepEqual(got, []string{"looks good"}) {
		t.Fatalf("unexpected comments %v", got)
	}

	h.mustRun("issue", "label", "-i", "DEMO-1", "-l", "a, b")
	if got := h.fake.Labeled["DEMO-1"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestIssueAssignByNameOnServer(t *testing.T) {
	h := newHarness(t)
	h.cfg.Jira.AuthMethod = "pat"
	h.fake.SeedIssues("DEMO", 1)

	h.mustRun("issue", "assign", "-i", "DEMO-1", "--user", "jdoe")
	if got := h.fake.Assigned["DEMO-1"]; got == nil || got.Name != "jdoe" || got.AccountID != "" {
		t.Fatalf("unexpected assignee %+v", got)
	}
}

func TestIssueAttach(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)
	dir := t.TempDir()
	first := filepath.Join(dir, "crash.log")
	second := filepath.Join(dir, "shot.png")
	testsupport.WriteFile(t, first, []byte("boom"))
	testsupport.WriteFile(t, second, []byte("png"))

	h.mustRun("issue", "attach", "-i", "DEMO-1", first, second)
	if got := h.fake.Attachments["DEMO-1"]; !reflect.DeepEqual(got, []string{"crash.log", "shot.png"}) {
		t.Fatalf("unexpected attachments %v", got)
	}

	if code := h.run("issue", "attach", "-i", "DEMO-1"); code != dispatch.ExitUsage {
		t.Fatalf("expected usage error without files, got %d", code)
	}
	if code := h.run("issue", "attach", "-i", "DEMO-1", filepath.Join(dir, "missing")); code != dispatch.ExitFailure {
		t.Fatalf("expected failure for a missing file, got %d", code)
	}
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("attachment source touched: %v", err)
	}
}

func TestIssueShowJSONPrintsRawPayload(t *testing.T) {
	h := newHarness(t)
	raw := `{"id":"10001","key":"DEMO-1","fields":{"summary":"Raw","customfield_9":"kept"}}`
	var issue tracker.Issue
	if err := json.Unmarshal([]byte(raw), &issue); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	h.fake.Issues = []tracker.Issue{issue}

	h.mustRun("issue", "show", "-i", "DEMO-1")
	if !strings.Contains(h.stdout.String(), `"customfield_9": "kept"`) {
		t.Fatalf("expected raw payload, got:\n%s", h.stdout.String())
	}

	h.mustRun("issue", "show", "-i", "DEMO-1", "-o", "csv")
	if !strings.HasPrefix(h.stdout.String(), "ID,Key,Summary") {
		t.Fatalf("unexpected csv:\n%s", h.stdout.String())
	}
}

func TestIssueBrowse(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedIssues("DEMO", 1)

	h.mustRun("issue", "browse", "-i", "DEMO-1", "--print")
	if strings.TrimSpace(h.stdout.String()) != "https://jira.example.test/browse/DEMO-1" {
		t.Fatalf("unexpected url %q", h.stdout.String())
	}
	if len(h.opened) != 0 {
		t.Fatal("--print must not open a browser")
	}

	h.mustRun("issue", "browse", "-i", "DEMO-1")
	if len(h.opened) != 1 {
		t.Fatalf("expected browser launch, got %v", h.opened)
	}
}

func TestIssueTransitionFromPluginManifest(t *testing.T) {
	h := newHarness(t)
	h.plugins = transitionPlugin()
	h.fake.SeedIssues("DEMO", 1)
	inProgress(h)

	h.mustRun("issue", "transition", "-i", "DEMO-1", "--to", "blocked", "--comment", "waiting on ops")
	if got := h.fake.Applied["DEMO-1"]; !reflect.DeepEqual(got, []string{"21"}) {
		t.Fatalf("unexpected transitions %v", got)
	}
	if !strings.Contains(h.stdout.String(), `Issue DEMO-1 transitioned to "Blocked" with comment`) {
		t.Fatalf("unexpected output %q", h.stdout.String())
	}
}

func TestIssueTransitionListsWithoutTarget(t *testing.T) {
	h := newHarness(t)
	h.plugins = transitionPlugin()
	h.fake.SeedIssues("DEMO", 1)
	inProgress(h)

	h.mustRun("issue", "transition", "-i", "DEMO-1")
	records := h.records()
	if len(records) != 3 {
		t.Fatalf("expected 3 transitions, got %v", records)
	}
	want := map[string]any{"Name": "Blocked", "ID": "21", "To": "Blocked"}
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("unexpected record %v", records[1])
	}
	if len(h.fake.Applied) != 0 {
		t.Fatalf("listing must not transition, applied %v", h.fake.Applied)
	}
}
