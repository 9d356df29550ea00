package backendtest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/aidar/taskboard-client/internal/domain"
)

// handleListProjects обрабатывает GET /api/projects (и applied/pending
// листинги — двойник не различает их содержимое)
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]any, 0, len(s.projects))
	search := r.URL.Query().Get("search")
	for _, p := range s.projects {
		if search != "" && !containsFold(p.Name, search) {
			continue
		}
		items = append(items, p)
	}
	s.mu.Unlock()

	s.renderListing(w, r, "projects", items)
}

// handleCreateProject обрабатывает POST /api/projects
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := decode(r, &req); err != nil || req.Name == "" {
		respondError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	p := &domain.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		OwnerID:     currentUserID(r),
	}

	s.mu.Lock()
	s.projects = append(s.projects, p)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"data": p})
}

// handleGetProject обрабатывает GET /api/projects/{id}
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.findProject(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if p == nil {
		respondError(w, r, http.StatusNotFound, "project not found")
		return
	}
	render.JSON(w, r, map[string]any{"data": p})
}

// handleUpdateProject обрабатывает PUT /api/projects/{id}
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	p := s.findProject(chi.URLParam(r, "id"))
	if p != nil {
		if req.Name != "" {
			p.Name = req.Name
		}
		if req.Description != "" {
			p.Description = req.Description
		}
		if req.Status != "" {
			p.Status = req.Status
		}
	}
	s.mu.Unlock()

	if p == nil {
		respondError(w, r, http.StatusNotFound, "project not found")
		return
	}
	render.JSON(w, r, map[string]any{"data": p})
}

// handleDeleteProject обрабатывает DELETE /api/projects/{id}
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	kept := s.projects[:0]
	found := false
	for _, p := range s.projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.projects = kept
	s.mu.Unlock()

	if !found {
		respondError(w, r, http.StatusNotFound, "project not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleApply обрабатывает POST /api/projects/{id}/applied-project:
// подача заявки добавляет участника в статусе PENDING
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.findProject(chi.URLParam(r, "id"))
	if p != nil {
		p.Members = append(p.Members, domain.ProjectMember{
			ID:             uuid.NewString(),
			UserID:         currentUserID(r),
			ApprovedStatus: domain.StatusPending,
		})
	}
	s.mu.Unlock()

	if p == nil {
		respondError(w, r, http.StatusNotFound, "project not found")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handleListMembers обрабатывает GET /api/projects/{id}/members.
// Исключенные участники намеренно НЕ фильтруются: это забота клиента.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.findProject(chi.URLParam(r, "id"))
	var items []any
	if p != nil {
		items = make([]any, 0, len(p.Members))
		for _, m := range p.Members {
			items = append(items, m)
		}
	}
	s.mu.Unlock()

	if p == nil {
		respondError(w, r, http.StatusNotFound, "project not found")
		return
	}
	s.renderListing(w, r, "members", items)
}

// handleAddMember обрабатывает POST /api/projects/{id}/members
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := decode(r, &req); err != nil || req.UserID == "" {
		respondError(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	member := domain.ProjectMember{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		Role:           req.Role,
		ApprovedStatus: domain.StatusApproved,
	}

	s.mu.Lock()
	p := s.findProject(chi.URLParam(r, "id"))
	if p != nil {
		p.Members = append(p.Members, member)
	}
	s.mu.Unlock()

	if p == nil {
		respondError(w, r, http.StatusNotFound, "project not found")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"data": member})
}

// handleApprovedStatus обрабатывает PUT .../members/{memberId}/approved-status
func (s *Server) handleApprovedStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApprovedStatus string `json:"approvedStatus"`
	}
	if err := decode(r, &req); err != nil || req.ApprovedStatus == "" {
		respondError(w, r, http.StatusBadRequest, "approvedStatus is required")
		return
	}

	s.mu.Lock()
	m := s.findMember(chi.URLParam(r, "id"), chi.URLParam(r, "memberId"))
	if m != nil {
		m.ApprovedStatus = domain.ParseApprovedStatus(req.ApprovedStatus, false)
	}
	s.mu.Unlock()

	if m == nil {
		respondError(w, r, http.StatusNotFound, "member not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleMemberRole обрабатывает PUT .../members/{memberId}/role
func (s *Server) handleMemberRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := decode(r, &req); err != nil || req.Role == "" {
		respondError(w, r, http.StatusBadRequest, "role is required")
		return
	}

	s.mu.Lock()
	m := s.findMember(chi.URLParam(r, "id"), chi.URLParam(r, "memberId"))
	if m != nil {
		m.Role = req.Role
	}
	s.mu.Unlock()

	if m == nil {
		respondError(w, r, http.StatusNotFound, "member not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// findProject ищет проект по id; вызывать под мьютексом
func (s *Server) findProject(id string) *domain.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// findMember ищет участника проекта; вызывать под мьютексом
func (s *Server) findMember(projectID, memberID string) *domain.ProjectMember {
	p := s.findProject(projectID)
	if p == nil {
		return nil
	}
	for i := range p.Members {
		if p.Members[i].ID == memberID {
			return &p.Members[i]
		}
	}
	return nil
}
