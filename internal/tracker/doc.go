// Package tracker is the issue tracker client used by command handlers.
//
// Service is the narrow interface handlers depend on; Client implements it
// over the tracker's REST API (version 2) with basic or bearer-token auth.
// Failed calls return *ServiceError carrying the HTTP status and the
// tracker's own messages. Searches are lazy iterators that page through
// results until a short page arrives, with a hard page cap reported as
// ErrPageLimit.
package tracker
