package backendtest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/aidar/taskboard-client/internal/domain"
)

// handleListWorkAreas обрабатывает GET /api/projects/{id}/workareas
func (s *Server) handleListWorkAreas(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	s.mu.Lock()
	items := make([]any, 0)
	for _, a := range s.workAreas {
		if a.ProjectID == projectID {
			items = append(items, a)
		}
	}
	s.mu.Unlock()

	s.renderListing(w, r, "workAreas", items)
}

// handleCreateWorkArea обрабатывает POST /api/workareas
func (s *Server) handleCreateWorkArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
		Name      string `json:"name"`
	}
	if err := decode(r, &req); err != nil || req.ProjectID == "" || req.Name == "" {
		respondError(w, r, http.StatusBadRequest, "projectId and name are required")
		return
	}

	s.mu.Lock()
	if s.failWorkAreas {
		s.mu.Unlock()
		respondError(w, r, http.StatusInternalServerError, "work area creation unavailable")
		return
	}
	area := &domain.WorkArea{ID: uuid.NewString(), ProjectID: req.ProjectID, Name: req.Name}
	s.workAreas = append(s.workAreas, area)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"data": area})
}

// handleListWorkTasks обрабатывает GET /api/workareas/{id}/worktasks
func (s *Server) handleListWorkTasks(w http.ResponseWriter, r *http.Request) {
	areaID := chi.URLParam(r, "id")

	s.mu.Lock()
	items := make([]any, 0)
	for _, t := range s.workTasks {
		if t.WorkAreaID == areaID {
			items = append(items, t)
		}
	}
	s.mu.Unlock()

	s.renderListing(w, r, "workTasks", items)
}

// handleCreateWorkTask обрабатывает POST /api/workareas/{id}/worktasks
func (s *Server) handleCreateWorkTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Status      string   `json:"status"`
		AssigneeIDs []string `json:"assigneeIds"`
	}
	if err := decode(r, &req); err != nil || req.Name == "" {
		respondError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	task := &domain.WorkTask{
		ID:          uuid.NewString(),
		WorkAreaID:  chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.WorkTaskStatus(req.Status),
		AssigneeIDs: req.AssigneeIDs,
	}
	if task.Status == "" {
		task.Status = domain.TaskTodo
	}

	s.mu.Lock()
	s.workTasks = append(s.workTasks, task)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"data": task})
}

// handleUpdateWorkTask обрабатывает PUT /api/worktasks/{id}
func (s *Server) handleUpdateWorkTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Status      string   `json:"status"`
		AssigneeIDs []string `json:"assigneeIds"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	task := s.findWorkTask(chi.URLParam(r, "id"))
	if task != nil {
		if req.Name != "" {
			task.Name = req.Name
		}
		if req.Description != "" {
			task.Description = req.Description
		}
		if req.Status != "" {
			task.Status = domain.WorkTaskStatus(req.Status)
		}
		if req.AssigneeIDs != nil {
			task.AssigneeIDs = req.AssigneeIDs
		}
	}
	s.mu.Unlock()

	if task == nil {
		respondError(w, r, http.StatusNotFound, "work task not found")
		return
	}
	render.JSON(w, r, map[string]any{"data": task})
}

// handleDeleteWorkTask обрабатывает DELETE /api/worktasks/{id}
func (s *Server) handleDeleteWorkTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	kept := s.workTasks[:0]
	found := false
	for _, t := range s.workTasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	s.workTasks = kept
	s.mu.Unlock()

	if !found {
		respondError(w, r, http.StatusNotFound, "work task not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleListObjectives обрабатывает GET /api/worktasks/{id}/taskobjectives
func (s *Server) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	s.mu.Lock()
	items := make([]any, 0)
	for _, o := range s.objectives {
		if o.WorkTaskID == taskID {
			items = append(items, o)
		}
	}
	s.mu.Unlock()

	s.renderListing(w, r, "taskObjectives", items)
}

// handleAddObjective обрабатывает POST /api/worktasks/{id}/taskobjectives
func (s *Server) handleAddObjective(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decode(r, &req); err != nil || req.Title == "" {
		respondError(w, r, http.StatusBadRequest, "title is required")
		return
	}

	objective := &domain.TaskObjective{
		ID:         uuid.NewString(),
		WorkTaskID: chi.URLParam(r, "id"),
		Title:      req.Title,
	}

	s.mu.Lock()
	s.objectives = append(s.objectives, objective)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"data": objective})
}

// handleAssignTaskMember обрабатывает POST /api/worktasks/{id}/members
func (s *Server) handleAssignTaskMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decode(r, &req); err != nil || req.UserID == "" {
		respondError(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	s.mu.Lock()
	task := s.findWorkTask(chi.URLParam(r, "id"))
	if task != nil {
		task.AssigneeIDs = append(task.AssigneeIDs, req.UserID)
	}
	s.mu.Unlock()

	if task == nil {
		respondError(w, r, http.StatusNotFound, "work task not found")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handleListComments обрабатывает GET /api/comments?workTaskId=...
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("workTaskId")

	s.mu.Lock()
	items := make([]any, 0)
	for _, c := range s.comments {
		if taskID == "" || c.WorkTaskID == taskID {
			items = append(items, c)
		}
	}
	s.mu.Unlock()

	s.renderListing(w, r, "comments", items)
}

// handleCreateComment обрабатывает POST /api/comments
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkTaskID string `json:"workTaskId"`
		Content    string `json:"content"`
	}
	if err := decode(r, &req); err != nil || req.Content == "" {
		respondError(w, r, http.StatusBadRequest, "content is required")
		return
	}

	comment := &domain.Comment{
		ID:         uuid.NewString(),
		WorkTaskID: req.WorkTaskID,
		AuthorID:   currentUserID(r),
		Content:    req.Content,
	}

	s.mu.Lock()
	s.comments = append(s.comments, comment)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"data": comment})
}

// handleUpdateComment обрабатывает PUT /api/comments/{id}
func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil || req.Content == "" {
		respondError(w, r, http.StatusBadRequest, "content is required")
		return
	}

	s.mu.Lock()
	var comment *domain.Comment
	for _, c := range s.comments {
		if c.ID == chi.URLParam(r, "id") {
			c.Content = req.Content
			comment = c
			break
		}
	}
	s.mu.Unlock()

	if comment == nil {
		respondError(w, r, http.StatusNotFound, "comment not found")
		return
	}
	render.JSON(w, r, map[string]any{"data": comment})
}

// handleDeleteComment обрабатывает DELETE /api/comments/{id}
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	kept := s.comments[:0]
	found := false
	for _, c := range s.comments {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	s.comments = kept
	s.mu.Unlock()

	if !found {
		respondError(w, r, http.StatusNotFound, "comment not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// findWorkTask ищет задачу по id; вызывать под мьютексом
func (s *Server) findWorkTask(id string) *domain.WorkTask {
	for _, t := range s.workTasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
