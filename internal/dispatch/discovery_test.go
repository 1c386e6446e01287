package dispatch_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"jira/internal/dispatch"
	"jira/internal/logging"
)

func registryShape(reg *dispatch.Registry) []string {
	var out []string
	for _, g := range reg.Groups() {
		for _, a := range reg.Actions(g.Name) {
			out = append(out, a.Key())
		}
	}
	return out
}

func TestDiscoverIsDeterministicAndSorted(t *testing.T) {
	fsys := pluginFS()
	fsys["issue/zeta.toml"] = manifest("last")
	fsys["issue/alpha.toml"] = manifest("first")
	catalog := newCatalog(&recorder{})
	dispatch.Register(catalog, func() (*IssueZeta, error) { return &IssueZeta{}, nil })
	dispatch.Register(catalog, func() (*IssueAlpha, error) { return &IssueAlpha{}, nil })

	roots := []dispatch.Root{{Name: "builtin", FS: fsys}}
	first := registryShape(dispatch.Discover(roots, catalog, logging.NewNop()))
	second := registryShape(dispatch.Discover(roots, catalog, logging.NewNop()))

	want := []string{"issue alpha", "issue begin", "issue list", "issue zeta", "project list"}
	if strings.Join(first, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected order: %v", first)
	}
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Fatalf("discovery not deterministic: %v vs %v", first, second)
	}
}

type IssueAlpha struct{ ProjectList }
type IssueZeta struct{ ProjectList }

func TestDiscoverPopulatesDescriptors(t *testing.T) {
	fsys := pluginFS()
	fsys["issue/begin.toml"] = &fstest.MapFile{Data: []byte(`
summary = "Start work on an issue"
description = "Moves the issue to In Progress."
example = "jira issue begin -i PROJ-1"
aliases = ["start"]
`)}
	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, newCatalog(&recorder{}), logging.NewNop())

	desc, ok := reg.Lookup("issue", "begin")
	if !ok {
		t.Fatal("expected issue begin")
	}
	if desc.TypeName != "IssueBegin" || desc.Group.Name != "issue" {
		t.Fatalf("unexpected descriptor %+v", desc)
	}
	if desc.Locator != "builtin:issue/begin.toml" {
		t.Fatalf("unexpected locator %q", desc.Locator)
	}
	if len(desc.Aliases) != 1 || desc.Aliases[0] != "start" {
		t.Fatalf("unexpected aliases %v", desc.Aliases)
	}
	group, ok := reg.Group("issue")
	if !ok || group.Summary != "Work with issues" {
		t.Fatalf("unexpected group %+v", group)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 actions, got %d", reg.Len())
	}
}

func TestDiscoverExcludesActionWithoutHandlerType(t *testing.T) {
	fsys := pluginFS()
	fsys["issue/attach.toml"] = manifest("Attach a file")
	logger, logs := captureLogger(t)

	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, newCatalog(&recorder{}), logger)

	if _, ok := reg.Lookup("issue", "attach"); ok {
		t.Fatal("attach has no IssueAttach type and must be excluded")
	}
	for _, key := range []string{"begin", "list"} {
		if _, ok := reg.Lookup("issue", key); !ok {
			t.Fatalf("sibling action %q should survive", key)
		}
	}
	if _, ok := reg.Lookup("project", "list"); !ok {
		t.Fatal("other groups should be unaffected")
	}
	skipped := reg.Skipped()
	if len(skipped) != 1 || !errors.Is(skipped[0].Err, dispatch.ErrNoHandler) {
		t.Fatalf("expected one ErrNoHandler skip, got %+v", skipped)
	}
	if !strings.Contains(logs.String(), "IssueAttach") {
		t.Fatalf("expected warning naming the missing type, got %q", logs.String())
	}
}

func TestDiscoverRenamedTypeIsExcluded(t *testing.T) {
	// ProjectList is registered, but a manifest named "ls" needs ProjectLs.
	fsys := pluginFS()
	delete(fsys, "project/list.toml")
	fsys["project/ls.toml"] = manifest("List projects")

	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, newCatalog(&recorder{}), logging.NewNop())

	if _, ok := reg.Group("project"); ok {
		t.Fatal("group with no resolvable actions should be dropped")
	}
	if len(reg.Groups()) != 1 || reg.Groups()[0].Name != "issue" {
		t.Fatalf("unexpected groups %v", registryShape(reg))
	}
}

func TestDiscoverSkipsBrokenGroup(t *testing.T) {
	fsys := pluginFS()
	fsys["broken/group.toml"] = manifest("Always broken")
	fsys["broken/explode.toml"] = &fstest.MapFile{Data: []byte("summary = \n")}
	logger, logs := captureLogger(t)

	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, newCatalog(&recorder{}), logger)

	var names []string
	for _, g := range reg.Groups() {
		names = append(names, g.Name)
	}
	if strings.Join(names, ",") != "issue,project" {
		t.Fatalf("expected only issue and project, got %v", names)
	}
	if !strings.Contains(logs.String(), "broken") || !strings.Contains(logs.String(), "WARN") {
		t.Fatalf("expected warning referencing broken, got %q", logs.String())
	}
}

func TestDiscoverRejectsUnknownManifestKeys(t *testing.T) {
	fsys := pluginFS()
	fsys["issue/begin.toml"] = &fstest.MapFile{Data: []byte("summry = \"typo\"\n")}

	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, newCatalog(&recorder{}), logging.NewNop())
	if _, ok := reg.Lookup("issue", "begin"); ok {
		t.Fatal("manifest with unknown key should be skipped")
	}
}

func TestDiscoverIgnoresNonGroupEntriesSilently(t *testing.T) {
	fsys := pluginFS()
	fsys["README.md"] = &fstest.MapFile{Data: []byte("docs")}
	fsys["__pycache__/x.pyc"] = &fstest.MapFile{Data: []byte{0}}
	fsys["scratch/notes.toml"] = manifest("no marker here")
	fsys[".hidden/group.toml"] = manifest("hidden")
	fsys["issue/notes.txt"] = &fstest.MapFile{Data: []byte("not a manifest")}

	reg := dispatch.Discover([]dispatch.Root{{Name: "builtin", FS: fsys}}, newCatalog(&recorder{}), logging.NewNop())

	if len(reg.Skipped()) != 0 {
		t.Fatalf("expected silent skips, got %+v", reg.Skipped())
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 actions, got %d", reg.Len())
	}
}

func TestDiscoverFirstRootWins(t *testing.T) {
	extra := fstest.MapFS{
		"issue/group.toml": manifest("Override"),
		"issue/list.toml":  manifest("Shadowed list"),
		"issue/alpha.toml": manifest("Extra action"),
	}
	catalog := newCatalog(&recorder{})
	dispatch.Register(catalog, func() (*IssueAlpha, error) { return &IssueAlpha{}, nil })

	reg := dispatch.Discover([]dispatch.Root{
		{Name: "builtin", FS: pluginFS()},
		{Name: "local", FS: extra},
	}, catalog, logging.NewNop())

	list, _ := reg.Lookup("issue", "list")
	if list.Summary != "List issues" {
		t.Fatalf("expected builtin list to win, got %q", list.Summary)
	}
	alpha, ok := reg.Lookup("issue", "alpha")
	if !ok || alpha.Locator != "local:issue/alpha.toml" {
		t.Fatalf("expected alpha from local root, got %+v", alpha)
	}
	if g, _ := reg.Group("issue"); g.Summary != "Work with issues" {
		t.Fatalf("expected first group descriptor kept, got %q", g.Summary)
	}
	if len(reg.Skipped()) != 1 {
		t.Fatalf("expected duplicate recorded, got %+v", reg.Skipped())
	}
}

func TestDiscoverToleratesUnreadableRoot(t *testing.T) {
	reg := dispatch.Discover([]dispatch.Root{
		{Name: "missing", FS: os.DirFS(filepath.Join(t.TempDir(), "does-not-exist"))},
		{Name: "builtin", FS: pluginFS()},
	}, newCatalog(&recorder{}), logging.NewNop())

	if reg.Len() != 3 {
		t.Fatalf("expected builtin actions despite unreadable root, got %d", reg.Len())
	}
	skipped := reg.Skipped()
	if len(skipped) != 1 || skipped[0].Locator != "missing" {
		t.Fatalf("expected unreadable root recorded, got %+v", skipped)
	}
}
