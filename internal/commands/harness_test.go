package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"strings"
	"testing"

	"jira/internal/app"
	"jira/internal/commands"
	"jira/internal/config"
	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/testsupport"
)

type harness struct {
	t      *testing.T
	cfg    *config.Config
	fake   *testsupport.FakeService
	env    *app.Env
	opened []string
	stdin  string
	stdout bytes.Buffer
	stderr bytes.Buffer
	// plugins is an optional extra manifest root scanned after the builtins.
	plugins fs.FS
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	h := &harness{t: t, cfg: testsupport.NewConfig(t, opts...), fake: testsupport.NewFakeService()}
	h.env = h.newEnv(app.WithService(h.fake))
	return h
}

// newLiveHarness builds the tracker client from configuration instead of
// injecting the fake.
func newLiveHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	h := &harness{t: t, cfg: testsupport.NewConfig(t, opts...)}
	h.env = h.newEnv()
	return h
}

func (h *harness) newEnv(opts ...app.Option) *app.Env {
	opts = append(opts, app.WithURLOpener(func(_ context.Context, url string) error {
		h.opened = append(h.opened, url)
		return nil
	}))
	env := app.New(h.cfg, logging.NewNop(), opts...)
	h.t.Cleanup(func() { _ = env.Close() })
	return env
}

func (h *harness) run(args ...string) int {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	reg := dispatch.Discover(commands.Roots(h.plugins, "plugins"), commands.Catalog(h.env), logging.NewNop())
	d := dispatch.New(reg, dispatch.NewBinder(),
		dispatch.WithOutput(&h.stdout, &h.stderr),
		dispatch.WithInput(strings.NewReader(h.stdin)),
		dispatch.WithLogger(logging.NewNop()),
	)
	return d.Run(context.Background(), args)
}

func (h *harness) mustRun(args ...string) {
	h.t.Helper()
	if code := h.run(args...); code != dispatch.ExitOK {
		h.t.Fatalf("%v: exit %d\nstdout:\n%s\nstderr:\n%s", args, code, h.stdout.String(), h.stderr.String())
	}
}

func (h *harness) records() []map[string]any {
	h.t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(h.stdout.Bytes(), &out); err != nil {
		h.t.Fatalf("decode json output: %v\n%s", err, h.stdout.String())
	}
	return out
}
