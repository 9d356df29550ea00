package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aidar/taskboard-client/internal/api"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
	"github.com/aidar/taskboard-client/internal/store"
)

// WorkService handles work areas, work tasks and task objectives.
type WorkService struct {
	client  *api.Client
	state   *store.Store
	retry   *api.Retryer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewWorkService creates a new WorkService.
func NewWorkService(client *api.Client, state *store.Store, retry *api.Retryer, m *metrics.Metrics, logger *slog.Logger) *WorkService {
	return &WorkService{
		client:  client,
		state:   state,
		retry:   retry,
		metrics: m,
		logger:  logger,
	}
}

// WorkTaskInput holds the fields of a create/update work task action.
type WorkTaskInput struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Status      domain.WorkTaskStatus `json:"status,omitempty"`
	AssigneeIDs []string              `json:"assigneeIds,omitempty"`
}

// WorkAreas fetches the work areas of a project.
func (s *WorkService) WorkAreas(ctx context.Context, projectID string, req domain.PageRequest) (domain.Page[domain.WorkArea], error) {
	path := fmt.Sprintf("/api/projects/%s/workareas", projectID)
	return fetchWork[domain.WorkArea](ctx, s, path, api.KeyWorkAreas, req)
}

// CreateWorkArea creates a work area inside a project.
func (s *WorkService) CreateWorkArea(ctx context.Context, projectID, name string) (*domain.WorkArea, error) {
	body := map[string]string{"projectId": projectID, "name": name}
	var entity api.Entity[domain.WorkArea]
	if err := s.client.Post(ctx, "/api/workareas", body, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureWork, "")
	area := entity.Value
	return &area, nil
}

// WorkTasks fetches the tasks of a work area.
func (s *WorkService) WorkTasks(ctx context.Context, workAreaID string, req domain.PageRequest) (domain.Page[domain.WorkTask], error) {
	path := fmt.Sprintf("/api/workareas/%s/worktasks", workAreaID)
	return fetchWork[domain.WorkTask](ctx, s, path, api.KeyWorkTasks, req)
}

// CreateWorkTask creates a task inside a work area.
func (s *WorkService) CreateWorkTask(ctx context.Context, workAreaID string, input WorkTaskInput) (*domain.WorkTask, error) {
	path := fmt.Sprintf("/api/workareas/%s/worktasks", workAreaID)
	var entity api.Entity[domain.WorkTask]
	if err := s.client.Post(ctx, path, input, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureWork, "")
	task := entity.Value
	return &task, nil
}

// UpdateWorkTask updates a task in place.
func (s *WorkService) UpdateWorkTask(ctx context.Context, taskID string, input WorkTaskInput) (*domain.WorkTask, error) {
	var entity api.Entity[domain.WorkTask]
	if err := s.client.Put(ctx, "/api/worktasks/"+taskID, input, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureWork, "")
	task := entity.Value
	return &task, nil
}

// DeleteWorkTask deletes a task.
func (s *WorkService) DeleteWorkTask(ctx context.Context, taskID string) error {
	if err := s.client.Delete(ctx, "/api/worktasks/"+taskID); err != nil {
		return s.fail(err)
	}
	s.state.SetError(store.FeatureWork, "")
	return nil
}

// Objectives fetches the checklist of a task.
func (s *WorkService) Objectives(ctx context.Context, taskID string, req domain.PageRequest) (domain.Page[domain.TaskObjective], error) {
	path := fmt.Sprintf("/api/worktasks/%s/taskobjectives", taskID)
	return fetchWork[domain.TaskObjective](ctx, s, path, api.KeyObjectives, req)
}

// AddObjective adds a checklist item to a task.
func (s *WorkService) AddObjective(ctx context.Context, taskID, title string) (*domain.TaskObjective, error) {
	path := fmt.Sprintf("/api/worktasks/%s/taskobjectives", taskID)
	body := map[string]string{"title": title}
	var entity api.Entity[domain.TaskObjective]
	if err := s.client.Post(ctx, path, body, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureWork, "")
	objective := entity.Value
	return &objective, nil
}

// AssignMember assigns a project member to a task.
func (s *WorkService) AssignMember(ctx context.Context, taskID, userID string) error {
	path := fmt.Sprintf("/api/worktasks/%s/members", taskID)
	body := map[string]string{"userId": userID}
	if err := s.client.Post(ctx, path, body, nil); err != nil {
		return s.fail(err)
	}
	s.state.SetError(store.FeatureWork, "")
	return nil
}

// fetchWork runs the shared retry + normalize path for work listings.
func fetchWork[T any](ctx context.Context, s *WorkService, path, key string, req domain.PageRequest) (domain.Page[T], error) {
	var raw []byte
	err := s.retry.Do(ctx, "list "+key, func(ctx context.Context) error {
		var opErr error
		raw, opErr = s.client.GetList(ctx, path, req.Values())
		return opErr
	})
	if err != nil {
		return domain.EmptyPage[T](), s.fail(err)
	}

	page, matched := api.NormalizeList[T](raw, key, req)
	if !matched {
		s.metrics.NormalizerFallbacks.Inc()
		s.logger.Warn("work listing matched no known shape", "path", path)
	}
	s.state.SetError(store.FeatureWork, "")
	return page, nil
}

func (s *WorkService) fail(err error) error {
	s.state.SetError(store.FeatureWork, api.UserMessage(err))
	return err
}
