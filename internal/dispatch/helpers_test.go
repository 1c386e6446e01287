package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"

	"jira/internal/dispatch"
	"jira/internal/logging"
)

type recorder struct {
	calls   int
	options map[string]string
	args    []string
	ids     []string
}

func (r *recorder) record(inv *dispatch.Invocation) {
	r.calls++
	r.options = inv.Options()
	r.args = inv.Args
	r.ids = append(r.ids, inv.ID)
}

type issueBase struct{}

func (issueBase) DeclareArguments(s *dispatch.Schema) error {
	s.String("project", "p", "PROJ", "Project key")
	return nil
}

type IssueBegin struct {
	issueBase
	rec *recorder
}

func (h *IssueBegin) DeclareArguments(s *dispatch.Schema) error {
	if err := h.issueBase.DeclareArguments(s); err != nil {
		return err
	}
	s.String("issue", "i", "", "Issue key")
	return s.Require("issue")
}

func (h *IssueBegin) Execute(_ context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	h.rec.record(inv)
	return dispatch.Succeeded("began " + inv.String("issue")), nil
}

type IssueList struct {
	issueBase
	rec *recorder
}

func (h *IssueList) DeclareArguments(s *dispatch.Schema) error {
	if err := h.issueBase.DeclareArguments(s); err != nil {
		return err
	}
	// Redeclaring shared and global flags must be harmless.
	s.String("project", "p", "OTHER", "Project key")
	s.Bool("verbose", "v", false, "shadow")
	s.Bool("mine", "m", false, "Only my issues")
	return nil
}

func (h *IssueList) Execute(_ context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	h.rec.record(inv)
	return dispatch.Result{}, nil
}

type ProjectList struct {
	rec *recorder
}

func (h *ProjectList) DeclareArguments(s *dispatch.Schema) error {
	s.String("name", "n", "", "Filter by name")
	s.String("key", "k", "", "Filter by key")
	return nil
}

func (h *ProjectList) Execute(_ context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	h.rec.record(inv)
	return dispatch.Result{}, nil
}

func newCatalog(rec *recorder) *dispatch.Catalog {
	c := dispatch.NewCatalog()
	dispatch.Register(c, func() (*IssueBegin, error) { return &IssueBegin{rec: rec}, nil })
	dispatch.Register(c, func() (*IssueList, error) { return &IssueList{rec: rec}, nil })
	dispatch.Register(c, func() (*ProjectList, error) { return &ProjectList{rec: rec}, nil })
	return c
}

func manifest(summary string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("summary = \"" + summary + "\"\n")}
}

func pluginFS() fstest.MapFS {
	return fstest.MapFS{
		"issue/group.toml":   manifest("Work with issues"),
		"issue/begin.toml":   manifest("Start work on an issue"),
		"issue/list.toml":    manifest("List issues"),
		"project/group.toml": manifest("Work with projects"),
		"project/list.toml":  manifest("List projects"),
	}
}

func captureLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger, &buf
}

type harness struct {
	dispatcher *dispatch.Dispatcher
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	logs       *bytes.Buffer
	level      *slog.LevelVar
}

func newHarness(t *testing.T, fsys fstest.MapFS, catalog *dispatch.Catalog) *harness {
	t.Helper()
	logger, logs := captureLogger(t)
	level := new(slog.LevelVar)
	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, catalog, logger)
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, logs: logs, level: level}
	h.dispatcher = dispatch.New(reg,
		dispatch.NewBinder(dispatch.WithProgram("prog", "test program", ""), dispatch.WithBinderLogger(logger)),
		dispatch.WithLogger(logger),
		dispatch.WithLevelVar(level),
		dispatch.WithOutput(h.stdout, h.stderr),
	)
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.dispatcher.Run(context.Background(), args)
}

var errBoom = errors.New("boom")
