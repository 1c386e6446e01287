package dispatch

import (
	"bytes"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
)

const (
	// GroupMarker marks a directory as a command group.
	GroupMarker = "group.toml"
	// ManifestExt is the extension of action manifests.
	ManifestExt = ".toml"
)

type groupManifest struct {
	Summary     string   `toml:"summary"`
	Description string   `toml:"description"`
	Aliases     []string `toml:"aliases"`
}

type actionManifest struct {
	Summary     string   `toml:"summary"`
	Description string   `toml:"description"`
	Example     string   `toml:"example"`
	Aliases     []string `toml:"aliases"`
	Hidden      bool     `toml:"hidden"`
}

// decodeManifest reads a manifest strictly; unknown keys are rejected so a
// typo surfaces as a discovery warning instead of a silently empty field.
func decodeManifest(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	return nil
}
