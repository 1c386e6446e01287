// Package dispatch discovers command groups and actions from manifest trees,
// binds each action to its handler's argument schema, and routes a command
// line to the matching handler.
//
// The flow for one process is:
//
//	Catalog   handler factories registered under their Go type names
//	Discover  walks manifest roots (<group>/group.toml, <group>/<action>.toml)
//	          and resolves each action to the catalog entry named
//	          PascalCase(group)+PascalCase(action)
//	Binder    builds a cobra command tree: global flags on the root, one
//	          command per group, one sub-command per action whose handler
//	          declared its flags without error
//	Dispatcher parses arguments, builds a fresh handler, executes it and
//	          maps the outcome onto a process exit code
//
// A broken manifest, a missing handler type, or a handler that fails to
// declare its arguments removes only that action; the rest of the tree stays
// available. Warnings for every exclusion go through the logger and are kept
// on Registry.Skipped and Tree.Failures for inspection.
//
// The Registry is read-only once Discover returns. Handlers are constructed
// per invocation and never shared.
package dispatch
