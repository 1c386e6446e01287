// Package configcmd implements the actions of the config command group.
package configcmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"jira/internal/app"
	"jira/internal/config"
	"jira/internal/dispatch"
)

// Register adds every config handler to c.
func Register(c *dispatch.Catalog, env *app.Env) {
	dispatch.Register(c, func() (*ConfigInit, error) { return &ConfigInit{env: env}, nil })
	dispatch.Register(c, func() (*ConfigShow, error) { return &ConfigShow{env: env}, nil })
	dispatch.Register(c, func() (*ConfigValidate, error) { return &ConfigValidate{env: env}, nil })
}

// ConfigInit writes the sample configuration.
type ConfigInit struct {
	env *app.Env
}

func (h *ConfigInit) DeclareArguments(s *dispatch.Schema) error {
	defaultPath, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}
	s.String("path", "", defaultPath, "Where to write the file")
	s.Bool("overwrite", "", false, "Replace an existing file")
	return nil
}

func (h *ConfigInit) Execute(_ context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	path, err := config.ExpandPath(strings.TrimSpace(inv.String("path")))
	if err != nil {
		return dispatch.Result{}, err
	}
	if _, err := os.Stat(path); err == nil {
		if !inv.Bool("overwrite") {
			return dispatch.Failed(fmt.Sprintf("Config already exists at %s; pass --overwrite to replace it", path)), nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return dispatch.Result{}, fmt.Errorf("stat config: %w", err)
	}
	if err := config.CreateSample(path); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded(fmt.Sprintf("Wrote sample config to %s; set jira.server and jira.api_token next", path)), nil
}

// ConfigShow prints the effective configuration with secrets masked.
type ConfigShow struct {
	env *app.Env
}

func (h *ConfigShow) DeclareArguments(*dispatch.Schema) error {
	return nil
}

func (h *ConfigShow) Execute(_ context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	redacted := h.env.Config.Redacted()
	data, err := redacted.Marshal()
	if err != nil {
		return dispatch.Result{}, err
	}
	source := "defaults only; no config file found"
	if h.env.ConfigExists {
		source = h.env.ConfigPath
	}
	if _, err := fmt.Fprintf(inv.Stdout(), "# source: %s\n%s", source, data); err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Result{}, nil
}

// ConfigValidate checks settings and credentials, and optionally logs in.
type ConfigValidate struct {
	env *app.Env
}

func (h *ConfigValidate) DeclareArguments(s *dispatch.Schema) error {
	s.Bool("ping", "", false, "Also authenticate against the server")
	return nil
}

func (h *ConfigValidate) Execute(ctx context.Context, inv *dispatch.Invocation) (dispatch.Result, error) {
	cfg := h.env.Config
	if err := cfg.Validate(); err != nil {
		return dispatch.Failed("Invalid configuration: " + err.Error()), nil
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return dispatch.Failed("Incomplete credentials: " + err.Error()), nil
	}
	if !inv.Bool("ping") {
		return dispatch.Succeeded("Configuration OK"), nil
	}
	svc, err := h.env.Service(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	me, err := svc.CurrentUser(ctx)
	if err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Succeeded(fmt.Sprintf("Configuration OK; authenticated to %s as %s", cfg.BaseURL(), me.Label())), nil
}
