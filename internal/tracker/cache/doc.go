// Package cache keeps tracker project metadata in a local SQLite database so
// repeated project lookups skip the network.
//
// Wrap decorates a tracker.Service: ListProjects and GetProject read through
// the cache and refresh stale rows; every other call passes straight through.
// Writes are serialized across processes with a file lock, and a failed
// cache write never fails the command.
package cache
