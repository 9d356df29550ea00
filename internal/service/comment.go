package service

import (
	"context"
	"log/slog"

	"github.com/aidar/taskboard-client/internal/api"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
	"github.com/aidar/taskboard-client/internal/store"
)

// CommentService handles task comments.
type CommentService struct {
	client  *api.Client
	state   *store.Store
	retry   *api.Retryer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(client *api.Client, state *store.Store, retry *api.Retryer, m *metrics.Metrics, logger *slog.Logger) *CommentService {
	return &CommentService{
		client:  client,
		state:   state,
		retry:   retry,
		metrics: m,
		logger:  logger,
	}
}

// List fetches the comments of a work task.
func (s *CommentService) List(ctx context.Context, workTaskID string, req domain.PageRequest) (domain.Page[domain.Comment], error) {
	query := req.Values()
	query.Set("workTaskId", workTaskID)

	var raw []byte
	err := s.retry.Do(ctx, "list comments", func(ctx context.Context) error {
		body, opErr := s.client.GetList(ctx, "/api/comments", query)
		raw = body
		return opErr
	})
	if err != nil {
		return domain.EmptyPage[domain.Comment](), s.fail(err)
	}

	page, matched := api.NormalizeList[domain.Comment](raw, api.KeyComments, req)
	if !matched {
		s.metrics.NormalizerFallbacks.Inc()
		s.logger.Warn("comment listing matched no known shape", "work_task_id", workTaskID)
	}
	s.state.SetError(store.FeatureComments, "")
	return page, nil
}

// Create posts a comment on a work task.
func (s *CommentService) Create(ctx context.Context, workTaskID, content string) (*domain.Comment, error) {
	body := map[string]string{"workTaskId": workTaskID, "content": content}
	var entity api.Entity[domain.Comment]
	if err := s.client.Post(ctx, "/api/comments", body, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureComments, "")
	comment := entity.Value
	return &comment, nil
}

// Update edits a comment.
func (s *CommentService) Update(ctx context.Context, commentID, content string) (*domain.Comment, error) {
	body := map[string]string{"content": content}
	var entity api.Entity[domain.Comment]
	if err := s.client.Put(ctx, "/api/comments/"+commentID, body, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureComments, "")
	comment := entity.Value
	return &comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, commentID string) error {
	if err := s.client.Delete(ctx, "/api/comments/"+commentID); err != nil {
		return s.fail(err)
	}
	s.state.SetError(store.FeatureComments, "")
	return nil
}

func (s *CommentService) fail(err error) error {
	s.state.SetError(store.FeatureComments, api.UserMessage(err))
	return err
}
