package tracker

import (
	"context"
	"io"
	"iter"
	"strings"
)

// Service is everything command handlers need from the tracker.
type Service interface {
	GetIssue(ctx context.Context, key string) (*Issue, error)
	// SearchIssues lazily pages through a JQL query. Ranging over the
	// returned sequence again re-runs the query from the first page.
	SearchIssues(ctx context.Context, query Query) iter.Seq2[Issue, error]
	CreateIssue(ctx context.Context, fields Fields) (*Issue, error)
	UpdateIssue(ctx context.Context, key string, fields Fields) error
	DeleteIssue(ctx context.Context, key string) error
	AssignIssue(ctx context.Context, key string, user *User) error
	ListTransitions(ctx context.Context, key string) ([]Transition, error)
	ApplyTransition(ctx context.Context, key, transitionID string) error
	AddComment(ctx context.Context, key, body string) (*Comment, error)
	AddLabels(ctx context.Context, key string, labels []string) error
	AddAttachment(ctx context.Context, key, filename string, content io.Reader) error
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, key string) (*Project, error)
	CurrentUser(ctx context.Context) (*User, error)
	CreateMeta(ctx context.Context, project, issueType string) (*CreateMeta, error)
	IssueURL(key string) string
}

// Query is a JQL search request.
type Query struct {
	JQL string
	// Fields limits the returned fields; empty requests the navigable set.
	Fields []string
	// PageSize overrides the client's default page size when positive.
	PageSize int
}

// FindTransition returns the transition whose name matches, ignoring case.
func FindTransition(transitions []Transition, name string) (Transition, bool) {
	for _, t := range transitions {
		if equalFold(t.Name, name) {
			return t, true
		}
	}
	return Transition{}, false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
