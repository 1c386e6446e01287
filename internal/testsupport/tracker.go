package testsupport

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"sync"

	"jira/internal/tracker"
)

// FakeService is an in-memory tracker.Service. Search pages through Issues
// in order regardless of the JQL, which is recorded for assertions.
type FakeService struct {
	mu sync.Mutex

	Issues      []tracker.Issue
	Projects    []tracker.Project
	Transitions map[string][]tracker.Transition
	Meta        *tracker.CreateMeta
	Me          tracker.User
	PageSize    int
	MaxPages    int
	// Err, when set, is returned from every call.
	Err error

	Queries     []tracker.Query
	Created     []tracker.Fields
	Updated     map[string]tracker.Fields
	Deleted     []string
	Assigned    map[string]*tracker.User
	Applied     map[string][]string
	Comments    map[string][]string
	Labeled     map[string][]string
	Attachments map[string][]string
	ProjectCall int
	nextID      int
}

var _ tracker.Service = (*FakeService)(nil)

// NewFakeService returns an empty fake with default paging.
func NewFakeService() *FakeService {
	return &FakeService{
		Transitions: map[string][]tracker.Transition{},
		Updated:     map[string]tracker.Fields{},
		Assigned:    map[string]*tracker.User{},
		Applied:     map[string][]string{},
		Comments:    map[string][]string{},
		Labeled:     map[string][]string{},
		Attachments: map[string][]string{},
		Me:          tracker.User{AccountID: "me-1", DisplayName: "Test User"},
		PageSize:    50,
		MaxPages:    200,
	}
}

// SeedIssues appends n issues keyed <project>-1 through <project>-n.
func (f *FakeService) SeedIssues(project string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 1; i <= n; i++ {
		f.Issues = append(f.Issues, tracker.Issue{
			ID:        strconv.Itoa(10000 + i),
			Key:       fmt.Sprintf("%s-%d", project, i),
			Summary:   fmt.Sprintf("Issue %d", i),
			Status:    "To Do",
			IssueType: "Task",
		})
	}
}

func (f *FakeService) find(key string) (int, error) {
	for i := range f.Issues {
		if f.Issues[i].Key == key || f.Issues[i].ID == key {
			return i, nil
		}
	}
	return -1, &tracker.ServiceError{Op: "get issue " + key, Status: 404, Messages: []string{"Issue does not exist"}}
}

func (f *FakeService) GetIssue(_ context.Context, key string) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	i, err := f.find(key)
	if err != nil {
		return nil, err
	}
	issue := f.Issues[i]
	return &issue, nil
}

func (f *FakeService) SearchIssues(ctx context.Context, query tracker.Query) iter.Seq2[tracker.Issue, error] {
	f.mu.Lock()
	f.Queries = append(f.Queries, query)
	pageSize := f.PageSize
	if query.PageSize > 0 {
		pageSize = query.PageSize
	}
	maxPages := f.MaxPages
	f.mu.Unlock()

	return tracker.Paginate(ctx, pageSize, maxPages, func(_ context.Context, startAt, size int) ([]tracker.Issue, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.Err != nil {
			return nil, f.Err
		}
		if startAt >= len(f.Issues) {
			return nil, nil
		}
		end := min(startAt+size, len(f.Issues))
		return slices.Clone(f.Issues[startAt:end]), nil
	})
}

func (f *FakeService) CreateIssue(_ context.Context, fields tracker.Fields) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Created = append(f.Created, fields)
	f.nextID++
	project := "DEMO"
	if p, ok := fields["project"].(map[string]any); ok {
		if k, ok := p["key"].(string); ok {
			project = k
		}
	}
	issue := tracker.Issue{
		ID:  strconv.Itoa(20000 + f.nextID),
		Key: fmt.Sprintf("%s-%d", project, 1000+f.nextID),
	}
	if summary, ok := fields["summary"].(string); ok {
		issue.Summary = summary
	}
	f.Issues = append(f.Issues, issue)
	return &issue, nil
}

func (f *FakeService) UpdateIssue(_ context.Context, key string, fields tracker.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, err := f.find(key); err != nil {
		return err
	}
	f.Updated[key] = fields
	return nil
}

func (f *FakeService) DeleteIssue(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	i, err := f.find(key)
	if err != nil {
		return err
	}
	f.Issues = slices.Delete(f.Issues, i, i+1)
	f.Deleted = append(f.Deleted, key)
	return nil
}

func (f *FakeService) AssignIssue(_ context.Context, key string, user *tracker.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	i, err := f.find(key)
	if err != nil {
		return err
	}
	f.Assigned[key] = user
	f.Issues[i].Assignee = user
	return nil
}

func (f *FakeService) ListTransitions(_ context.Context, key string) ([]tracker.Transition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, err := f.find(key); err != nil {
		return nil, err
	}
	if ts, ok := f.Transitions[key]; ok {
		return ts, nil
	}
	return f.Transitions["*"], nil
}

func (f *FakeService) ApplyTransition(_ context.Context, key, transitionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	i, err := f.find(key)
	if err != nil {
		return err
	}
	f.Applied[key] = append(f.Applied[key], transitionID)
	candidates := f.Transitions[key]
	if candidates == nil {
		candidates = f.Transitions["*"]
	}
	for _, t := range candidates {
		if t.ID == transitionID && t.To.Name != "" {
			f.Issues[i].Status = t.To.Name
		}
	}
	return nil
}

func (f *FakeService) AddComment(_ context.Context, key, body string) (*tracker.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, err := f.find(key); err != nil {
		return nil, err
	}
	f.Comments[key] = append(f.Comments[key], body)
	return &tracker.Comment{ID: strconv.Itoa(len(f.Comments[key])), Body: body}, nil
}

func (f *FakeService) AddLabels(_ context.Context, key string, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	i, err := f.find(key)
	if err != nil {
		return err
	}
	f.Labeled[key] = append(f.Labeled[key], labels...)
	f.Issues[i].Labels = append(f.Issues[i].Labels, labels...)
	return nil
}

func (f *FakeService) AddAttachment(_ context.Context, key, filename string, content io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, err := f.find(key); err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return err
	}
	f.Attachments[key] = append(f.Attachments[key], filename)
	return nil
}

func (f *FakeService) ListProjects(context.Context) ([]tracker.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.ProjectCall++
	return slices.Clone(f.Projects), nil
}

func (f *FakeService) GetProject(_ context.Context, key string) (*tracker.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.ProjectCall++
	for _, p := range f.Projects {
		if p.Key == key {
			project := p
			return &project, nil
		}
	}
	return nil, &tracker.ServiceError{Op: "get project " + key, Status: 404, Messages: []string{"No project could be found with key '" + key + "'."}}
}

func (f *FakeService) CurrentUser(context.Context) (*tracker.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	me := f.Me
	return &me, nil
}

func (f *FakeService) CreateMeta(_ context.Context, project, issueType string) (*tracker.CreateMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Meta == nil {
		return &tracker.CreateMeta{Project: project}, nil
	}
	meta := *f.Meta
	return &meta, nil
}

func (f *FakeService) IssueURL(key string) string {
	return "https://jira.example.test/browse/" + key
}
