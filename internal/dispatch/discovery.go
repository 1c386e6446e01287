package dispatch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"jira/internal/logging"
)

// ErrNoHandler reports an action whose handler type is not in the catalog.
var ErrNoHandler = errors.New("no handler type registered")

// Root is one manifest tree to scan. Name prefixes every locator so warnings
// say which tree a file came from.
type Root struct {
	Name string
	FS   fs.FS
}

// Discover scans roots in order and builds the registry. Groups and actions
// are visited in lexical order. When two roots define the same action the
// first one wins. Nothing here aborts: every failure is logged, recorded on
// the registry, and the candidate is skipped.
func Discover(roots []Root, catalog *Catalog, logger *slog.Logger) *Registry {
	d := discoverer{
		catalog:  catalog,
		logger:   logging.NewComponentLogger(logger, "discovery"),
		registry: newRegistry(),
	}
	for _, root := range roots {
		d.scanRoot(root)
	}
	d.registry.seal()
	d.logger.Debug("discovery complete",
		logging.Int("groups", len(d.registry.groups)),
		logging.Int("actions", d.registry.Len()),
		logging.Int("skipped", len(d.registry.skipped)),
	)
	return d.registry
}

type discoverer struct {
	catalog  *Catalog
	logger   *slog.Logger
	registry *Registry
}

func (d *discoverer) scanRoot(root Root) {
	if root.FS == nil {
		return
	}
	entries, err := fs.ReadDir(root.FS, ".")
	if err != nil {
		d.exclude(&DiscoveryError{Locator: root.Name, Err: fmt.Errorf("read plugin root: %w", err)})
		return
	}
	for _, name := range sortedNames(entries, true) {
		d.scanGroup(root, name)
	}
}

func (d *discoverer) scanGroup(root Root, name string) {
	markerPath := path.Join(name, GroupMarker)
	if info, err := fs.Stat(root.FS, markerPath); err != nil || info.IsDir() {
		return
	}

	var marker groupManifest
	if err := decodeManifest(root.FS, markerPath, &marker); err != nil {
		d.exclude(&DiscoveryError{Locator: locator(root, markerPath), Group: name, Err: err})
		return
	}
	group := d.registry.ensureGroup(&GroupDescriptor{
		Name:        name,
		Summary:     strings.TrimSpace(marker.Summary),
		Description: strings.TrimSpace(marker.Description),
		Aliases:     marker.Aliases,
		Locator:     locator(root, markerPath),
	})

	entries, err := fs.ReadDir(root.FS, name)
	if err != nil {
		d.exclude(&DiscoveryError{Locator: locator(root, name), Group: name, Err: fmt.Errorf("read group: %w", err)})
		return
	}
	for _, file := range sortedNames(entries, false) {
		if file == GroupMarker || path.Ext(file) != ManifestExt {
			continue
		}
		d.scanAction(root, group, file)
	}
}

func (d *discoverer) scanAction(root Root, group *GroupDescriptor, file string) {
	action := strings.TrimSuffix(file, ManifestExt)
	manifestPath := path.Join(group.Name, file)
	loc := locator(root, manifestPath)

	if d.registry.has(group.Name, action) {
		d.exclude(&DiscoveryError{Locator: loc, Group: group.Name, Action: action, Err: errors.New("action already defined by an earlier plugin root")})
		return
	}

	var manifest actionManifest
	if err := decodeManifest(root.FS, manifestPath, &manifest); err != nil {
		d.exclude(&DiscoveryError{Locator: loc, Group: group.Name, Action: action, Err: err})
		return
	}

	typeName := TypeName(group.Name, action)
	factory, ok := d.catalog.Lookup(typeName)
	if !ok {
		d.exclude(&DiscoveryError{Locator: loc, Group: group.Name, Action: action, Err: fmt.Errorf("%w: %s", ErrNoHandler, typeName)})
		return
	}

	d.registry.add(&ActionDescriptor{
		Group:       group,
		Name:        action,
		Summary:     strings.TrimSpace(manifest.Summary),
		Description: strings.TrimSpace(manifest.Description),
		Example:     strings.TrimRight(manifest.Example, "\n"),
		Aliases:     manifest.Aliases,
		Hidden:      manifest.Hidden,
		TypeName:    typeName,
		Locator:     loc,
		Factory:     factory,
	})
}

func (d *discoverer) exclude(err *DiscoveryError) {
	d.registry.skip(Skip{Locator: err.Locator, Group: err.Group, Action: err.Action, Err: err.Err})
	impact := "command group unavailable"
	if err.Action != "" {
		impact = "action unavailable"
	}
	logging.WarnWithContext(d.logger, "plugin skipped", "plugin_skipped",
		logging.String(logging.FieldLocator, err.Locator),
		logging.String(logging.FieldGroup, err.Group),
		logging.String(logging.FieldAction, err.Action),
		logging.Error(err.Err),
		logging.String(logging.FieldImpact, impact),
		logging.String(logging.FieldErrorHint, "fix or remove the manifest, or register the handler type"),
	)
}

// sortedNames returns visible entry names of the requested kind in lexical order.
func sortedNames(entries []fs.DirEntry, dirs bool) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() != dirs || strings.HasPrefix(entry.Name(), ".") || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names
}

func locator(root Root, name string) string {
	if root.Name == "" {
		return name
	}
	return root.Name + ":" + name
}
