package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aidar/taskboard-client/internal/api"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
	"github.com/aidar/taskboard-client/internal/store"
)

// defaultWorkAreaName is the work area created for every new project so the
// board is never empty.
const defaultWorkAreaName = "General"

// ProjectService handles project listing and lifecycle actions.
type ProjectService struct {
	client         *api.Client
	state          *store.Store
	retry          *api.Retryer
	metrics        *metrics.Metrics
	logger         *slog.Logger
	searchDebounce time.Duration
}

// NewProjectService creates a new ProjectService.
func NewProjectService(client *api.Client, state *store.Store, retry *api.Retryer, m *metrics.Metrics, logger *slog.Logger, searchDebounce time.Duration) *ProjectService {
	return &ProjectService{
		client:         client,
		state:          state,
		retry:          retry,
		metrics:        m,
		logger:         logger,
		searchDebounce: searchDebounce,
	}
}

// CreateProjectInput holds the fields of a create/update project action.
type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// List fetches the project listing, normalizes it and stores the result.
func (s *ProjectService) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Project], error) {
	return s.fetchListing(ctx, "/api/projects", req, nil)
}

// MyProjects fetches the listing filtered to projects the user owns or is an
// approved member of. The filter runs before the client-side pagination math
// so the counts reflect the filtered set.
func (s *ProjectService) MyProjects(ctx context.Context, userID string, req domain.PageRequest) (domain.Page[domain.Project], error) {
	return s.fetchListing(ctx, "/api/projects", req, func(p *domain.Project) bool {
		return p.BelongsTo(userID)
	})
}

// AppliedProjects fetches the projects the user has applied to join.
func (s *ProjectService) AppliedProjects(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Project], error) {
	return s.fetchListing(ctx, "/api/projects/applied-project", req, nil)
}

// PendingProjects fetches the projects with pending membership decisions.
func (s *ProjectService) PendingProjects(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Project], error) {
	return s.fetchListing(ctx, "/api/projects/pending", req, nil)
}

// Search schedules a debounced listing refetch for the given query. A
// pending (not yet fired) search is cancelled; an already in-flight fetch
// is not, so a stale response can still arrive and win.
func (s *ProjectService) Search(userID string, req domain.PageRequest) {
	s.state.ScheduleSearch(s.searchDebounce, func() {
		if _, err := s.MyProjects(context.Background(), userID, req); err != nil {
			s.logger.Warn("debounced search failed", "error", err)
		}
	})
}

// Get fetches one project into the current-project slot, which is refreshed
// independently of the listing.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	var entity api.Entity[domain.Project]
	err := s.retry.Do(ctx, "get project", func(ctx context.Context) error {
		return s.client.Get(ctx, "/api/projects/"+id, nil, &entity)
	})
	if err != nil {
		return nil, s.fail(err)
	}
	project := entity.Value
	project.Members = project.VisibleMembers()
	s.state.SetCurrentProject(&project)
	s.state.SetError(store.FeatureProjects, "")
	return &project, nil
}

// Create creates a project and then attempts to create its default work
// area. The work area call is best-effort: its failure is logged but never
// fails the create, the caller still navigates to the new project.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	var entity api.Entity[domain.Project]
	if err := s.client.Post(ctx, "/api/projects", input, &entity); err != nil {
		return nil, s.fail(err)
	}
	project := entity.Value

	area := map[string]string{"projectId": project.ID, "name": defaultWorkAreaName}
	if err := s.client.Post(ctx, "/api/workareas", area, nil); err != nil {
		s.logger.Warn("default work area creation failed",
			"project_id", project.ID,
			"error", err,
		)
	}

	s.state.SetCurrentProject(&project)
	s.state.SetError(store.FeatureProjects, "")
	return &project, nil
}

// Update updates a project and patches it into the listing in place.
func (s *ProjectService) Update(ctx context.Context, id string, input CreateProjectInput) (*domain.Project, error) {
	var entity api.Entity[domain.Project]
	if err := s.client.Put(ctx, "/api/projects/"+id, input, &entity); err != nil {
		return nil, s.fail(err)
	}
	project := entity.Value
	s.state.UpsertProject(project)
	s.state.SetError(store.FeatureProjects, "")
	return &project, nil
}

// Delete deletes a project and drops it from the in-memory listing.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/api/projects/"+id); err != nil {
		return s.fail(err)
	}
	s.state.RemoveProject(id)
	s.state.SetError(store.FeatureProjects, "")
	return nil
}

// Apply submits an application to join a project.
func (s *ProjectService) Apply(ctx context.Context, projectID string) error {
	path := fmt.Sprintf("/api/projects/%s/applied-project", projectID)
	if err := s.client.Post(ctx, path, nil, nil); err != nil {
		return s.fail(err)
	}
	return nil
}

// fetchListing runs the retry-wrapped fetch + normalize + store update
// shared by all project listings. Removed members are filtered from every
// project on every pass.
func (s *ProjectService) fetchListing(ctx context.Context, path string, req domain.PageRequest, keep func(*domain.Project) bool) (domain.Page[domain.Project], error) {
	var raw []byte
	err := s.retry.Do(ctx, "list projects", func(ctx context.Context) error {
		var opErr error
		raw, opErr = s.client.GetList(ctx, path, req.Values())
		return opErr
	})
	if err != nil {
		return domain.EmptyPage[domain.Project](), s.fail(err)
	}

	page, matched := api.NormalizeFilteredList[domain.Project](raw, api.KeyProjects, req, keep)
	if !matched {
		s.metrics.NormalizerFallbacks.Inc()
		s.logger.Warn("project listing matched no known shape", "path", path)
	}
	for i := range page.Items {
		page.Items[i].Members = page.Items[i].VisibleMembers()
	}

	s.state.SetProjects(page)
	s.state.SetError(store.FeatureProjects, "")
	return page, nil
}

func (s *ProjectService) fail(err error) error {
	s.state.SetError(store.FeatureProjects, api.UserMessage(err))
	return err
}
