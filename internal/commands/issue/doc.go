// Package issue implements the actions of the issue command group.
//
// Each exported handler type is named after its group and action, for
// example IssueList for "issue list"; discovery binds manifests to handlers
// by that name.
package issue
