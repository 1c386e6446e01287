package cache

import (
	"context"
	"log/slog"
	"time"

	"jira/internal/logging"
	"jira/internal/tracker"
)

// Invalidator is implemented by services that can drop cached data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service caches project metadata in front of another tracker.Service.
type Service struct {
	tracker.Service
	store  *Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ tracker.Service = (*Service)(nil)
	_ Invalidator     = (*Service)(nil)
)

// Wrap returns svc with ListProjects and GetProject served from store while
// younger than ttl. A zero ttl caches nothing.
func Wrap(svc tracker.Service, store *Store, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		Service: svc,
		store:   store,
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "cache"),
		now:     time.Now,
	}
}

func (s *Service) fresh(fetchedAt time.Time) bool {
	return s.ttl > 0 && !fetchedAt.IsZero() && s.now().Sub(fetchedAt) < s.ttl
}

// ListProjects returns cached projects when fresh, otherwise refreshes them.
func (s *Service) ListProjects(ctx context.Context) ([]tracker.Project, error) {
	cached, fetchedAt, ok, err := s.store.Projects(ctx)
	if err != nil {
		s.warn("read project cache failed", err)
	} else if ok && s.fresh(fetchedAt) {
		s.logger.Debug("project list served from cache", logging.Int("projects", len(cached)))
		return cached, nil
	}

	projects, err := s.Service.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.store.ReplaceProjects(ctx, projects, s.now()); err != nil {
			s.warn("write project cache failed", err)
		}
	}
	return projects, nil
}

// GetProject returns a cached project when fresh, otherwise refreshes it.
func (s *Service) GetProject(ctx context.Context, key string) (*tracker.Project, error) {
	cached, fetchedAt, ok, err := s.store.Project(ctx, key)
	if err != nil {
		s.warn("read project cache failed", err)
	} else if ok && s.fresh(fetchedAt) {
		s.logger.Debug("project served from cache", logging.Project(key))
		return cached, nil
	}

	project, err := s.Service.GetProject(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.store.PutProject(ctx, project, s.now()); err != nil {
			s.warn("write project cache failed", err)
		}
	}
	return project, nil
}

// Invalidate drops every cached row.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *Service) warn(msg string, err error) {
	logging.WarnWithContext(s.logger, msg, "cache_error",
		logging.Error(err),
		logging.String(logging.FieldImpact, "project metadata fetched from the tracker instead"),
		logging.String(logging.FieldErrorHint, "delete "+s.store.Path()+" if the problem persists"),
	)
}
