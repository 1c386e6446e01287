// Package commands assembles the builtin command set: the embedded manifest
// tree that discovery scans and the catalog of handlers it resolves against.
package commands

import (
	"embed"
	"io/fs"

	"jira/internal/app"
	"jira/internal/commands/configcmd"
	"jira/internal/commands/issue"
	"jira/internal/commands/project"
	"jira/internal/dispatch"
)

// BuiltinRoot names the embedded manifest root in discovery locators.
const BuiltinRoot = "builtin"

//go:embed plugins
var plugins embed.FS

// Manifests returns the builtin manifest tree rooted at the group directories.
func Manifests() fs.FS {
	sub, err := fs.Sub(plugins, "plugins")
	if err != nil {
		panic(err)
	}
	return sub
}

// Catalog registers every builtin handler against env.
func Catalog(env *app.Env) *dispatch.Catalog {
	c := dispatch.NewCatalog()
	issue.Register(c, env)
	project.Register(c, env)
	configcmd.Register(c, env)
	return c
}

// Roots returns the discovery roots: the builtin tree first, then the
// optional on-disk plugin directory, whose duplicates therefore lose.
func Roots(pluginDir fs.FS, pluginDirName string) []dispatch.Root {
	roots := []dispatch.Root{{Name: BuiltinRoot, FS: Manifests()}}
	if pluginDir != nil {
		roots = append(roots, dispatch.Root{Name: pluginDirName, FS: pluginDir})
	}
	return roots
}
