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

// MemberService handles project membership actions.
type MemberService struct {
	client  *api.Client
	state   *store.Store
	retry   *api.Retryer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewMemberService creates a new MemberService.
func NewMemberService(client *api.Client, state *store.Store, retry *api.Retryer, m *metrics.Metrics, logger *slog.Logger) *MemberService {
	return &MemberService{
		client:  client,
		state:   state,
		retry:   retry,
		metrics: m,
		logger:  logger,
	}
}

// List fetches the member listing of a project. Removed members are
// filtered out of the result on every pass; they stay present in the
// authoritative backend record.
func (s *MemberService) List(ctx context.Context, projectID string, req domain.PageRequest) (domain.Page[domain.ProjectMember], error) {
	path := fmt.Sprintf("/api/projects/%s/members", projectID)

	var raw []byte
	err := s.retry.Do(ctx, "list members", func(ctx context.Context) error {
		var opErr error
		raw, opErr = s.client.GetList(ctx, path, req.Values())
		return opErr
	})
	if err != nil {
		return domain.EmptyPage[domain.ProjectMember](), s.fail(err)
	}

	page, matched := api.NormalizeFilteredList[domain.ProjectMember](raw, api.KeyMembers, req, func(m *domain.ProjectMember) bool {
		return !m.IsRemoved()
	})
	if !matched {
		s.metrics.NormalizerFallbacks.Inc()
		s.logger.Warn("member listing matched no known shape", "project_id", projectID)
	}

	s.state.SetError(store.FeatureMembers, "")
	return page, nil
}

// Add adds a user to a project.
func (s *MemberService) Add(ctx context.Context, projectID, userID, role string) (*domain.ProjectMember, error) {
	path := fmt.Sprintf("/api/projects/%s/members", projectID)
	body := map[string]string{"userId": userID, "role": role}

	var entity api.Entity[domain.ProjectMember]
	if err := s.client.Post(ctx, path, body, &entity); err != nil {
		return nil, s.fail(err)
	}
	s.state.SetError(store.FeatureMembers, "")
	member := entity.Value
	return &member, nil
}

// UpdateApprovedStatus moves a member through the approval lifecycle.
func (s *MemberService) UpdateApprovedStatus(ctx context.Context, projectID, memberID string, status domain.ApprovedStatus) error {
	path := fmt.Sprintf("/api/projects/%s/members/%s/approved-status", projectID, memberID)
	body := map[string]string{"approvedStatus": string(status)}
	if err := s.client.Put(ctx, path, body, nil); err != nil {
		return s.fail(err)
	}
	s.state.SetError(store.FeatureMembers, "")
	return nil
}

// UpdateRole changes a member's role.
func (s *MemberService) UpdateRole(ctx context.Context, projectID, memberID, role string) error {
	path := fmt.Sprintf("/api/projects/%s/members/%s/role", projectID, memberID)
	body := map[string]string{"role": role}
	if err := s.client.Put(ctx, path, body, nil); err != nil {
		return s.fail(err)
	}
	s.state.SetError(store.FeatureMembers, "")
	return nil
}

// Remove excludes a member from a project. This is a soft delete: the
// member is marked REMOVED and filtered from display lists, not physically
// deleted from the backend record.
func (s *MemberService) Remove(ctx context.Context, projectID, memberID string) error {
	return s.UpdateApprovedStatus(ctx, projectID, memberID, domain.StatusRemoved)
}

func (s *MemberService) fail(err error) error {
	s.state.SetError(store.FeatureMembers, api.UserMessage(err))
	return err
}
