// Package app holds the environment shared by every command handler.
//
// An Env is built once per process from the loaded configuration. Handler
// factories capture it, and handlers reach the tracker, the renderer, and the
// browser through it. The tracker client is constructed lazily so commands
// that never talk to the server work without credentials.
package app
