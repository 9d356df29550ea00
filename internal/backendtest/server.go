// Package backendtest provides an in-process double of the project
// management REST backend. It reproduces the backend's quirks on purpose:
// listing responses can be served in any of the five observed shapes, and
// failures (transient errors, expired credentials, broken refresh) can be
// injected per test.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/aidar/taskboard-client/internal/domain"
)

// ListShape задает форму ответа листинговых эндпоинтов
type ListShape int

// Пять наблюдаемых форм ответа бэкенда
const (
	ShapeBareArray       ListShape = iota // голый массив сущностей
	ShapeSuccessArray                     // {success:true, data:[...]}
	ShapeSuccessEnvelope                  // {success:true, data:{<key>:[...], totalCount,...}}
	ShapeDataEnvelope                     // {data:{<key>:[...], totalCount,...}}
	ShapeRootKeyed                        // {<key>:[...], totalCount,...} в корне
)

// RefreshMode задает поведение refresh-token эндпоинта
type RefreshMode int

// Режимы refresh эндпоинта
const (
	RefreshOK          RefreshMode = iota // нормальная выдача новой пары
	RefreshInvalidBody                    // ответ 200 без refreshToken
	RefreshReject                         // ответ 401
)

type account struct {
	user     domain.User
	password string
}

// Server это in-process двойник бэкенда
type Server struct {
	URL string

	httpServer *httptest.Server
	jwtSecret  []byte

	mu               sync.Mutex
	shape            ListShape
	accessTTL        time.Duration
	refreshMode      RefreshMode
	failListings     int // столько листинговых запросов ответят 500
	unauthorizedNext int // столько авторизованных запросов ответят 401
	failWorkAreas    bool

	accounts      map[string]*account // по email
	refreshTokens map[string]string   // refresh token -> userID
	projects      []*domain.Project
	workAreas     []*domain.WorkArea
	workTasks     []*domain.WorkTask
	objectives    []*domain.TaskObjective
	comments      []*domain.Comment

	refreshCalls int
	replayCalls  int
}

// New запускает двойник бэкенда и останавливает его по завершении теста
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		jwtSecret:     []byte("backendtest-secret"),
		shape:         ShapeSuccessEnvelope,
		accessTTL:     time.Hour,
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]string),
	}

	r := chi.NewRouter()

	r.Route("/api/authentications", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/login-google", s.handleLoginGoogle)
		r.Post("/refresh-token", s.handleRefreshToken)
	})
	r.Route("/api/accounts", func(r chi.Router) {
		r.Put("/forgot-password", s.handleNoContent)
		r.Put("/reset-password", s.handleNoContent)
		r.With(s.authMiddleware).Put("/change-password", s.handleNoContent)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/api/projects", s.handleListProjects)
		r.Post("/api/projects", s.handleCreateProject)
		r.Get("/api/projects/applied-project", s.handleListProjects)
		r.Get("/api/projects/pending", s.handleListProjects)
		r.Get("/api/projects/{id}", s.handleGetProject)
		r.Put("/api/projects/{id}", s.handleUpdateProject)
		r.Delete("/api/projects/{id}", s.handleDeleteProject)
		r.Post("/api/projects/{id}/applied-project", s.handleApply)
		r.Get("/api/projects/{id}/members", s.handleListMembers)
		r.Post("/api/projects/{id}/members", s.handleAddMember)
		r.Put("/api/projects/{id}/members/{memberId}/approved-status", s.handleApprovedStatus)
		r.Put("/api/projects/{id}/members/{memberId}/role", s.handleMemberRole)
		r.Get("/api/projects/{id}/workareas", s.handleListWorkAreas)

		r.Post("/api/workareas", s.handleCreateWorkArea)
		r.Get("/api/workareas/{id}/worktasks", s.handleListWorkTasks)
		r.Post("/api/workareas/{id}/worktasks", s.handleCreateWorkTask)
		r.Put("/api/worktasks/{id}", s.handleUpdateWorkTask)
		r.Delete("/api/worktasks/{id}", s.handleDeleteWorkTask)
		r.Get("/api/worktasks/{id}/taskobjectives", s.handleListObjectives)
		r.Post("/api/worktasks/{id}/taskobjectives", s.handleAddObjective)
		r.Post("/api/worktasks/{id}/members", s.handleAssignTaskMember)

		r.Get("/api/comments", s.handleListComments)
		r.Post("/api/comments", s.handleCreateComment)
		r.Put("/api/comments/{id}", s.handleUpdateComment)
		r.Delete("/api/comments/{id}", s.handleDeleteComment)
	})

	s.httpServer = httptest.NewServer(r)
	s.URL = s.httpServer.URL
	t.Cleanup(s.httpServer.Close)

	return s
}

// SetShape переключает форму листинговых ответов
func (s *Server) SetShape(shape ListShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shape = shape
}

// SetRefreshMode задает поведение refresh эндпоинта
func (s *Server) SetRefreshMode(mode RefreshMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshMode = mode
}

// FailNextListings заставляет следующие n листинговых запросов ответить 500
func (s *Server) FailNextListings(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failListings = n
}

// ExpireNextRequests заставляет следующие n авторизованных запросов
// ответить 401, имитируя истекший access токен
func (s *Server) ExpireNextRequests(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unauthorizedNext = n
}

// FailWorkAreaCreation включает отказ создания областей работ
// (для проверки best-effort создания дефолтной области)
func (s *Server) FailWorkAreaCreation(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWorkAreas = fail
}

// RefreshCalls возвращает число обращений к refresh эндпоинту
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// ReplayCalls возвращает число запросов с маркером повтора
func (s *Server) ReplayCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replayCalls
}

// SeedUser регистрирует пользователя напрямую, без HTTP
func (s *Server) SeedUser(email, password, name string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Provider: "email",
	}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// SeedProject добавляет проект напрямую, без HTTP
func (s *Server) SeedProject(p domain.Project) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	stored := p
	s.projects = append(s.projects, &stored)
	return stored
}

// renderListing отвечает на листинговый запрос в текущей форме.
// Формы с конвертом пагинируются на сервере; остальные отдают полный
// набор, и клиент нарезает его сам.
func (s *Server) renderListing(w http.ResponseWriter, r *http.Request, key string, items []any) {
	s.mu.Lock()
	if s.failListings > 0 {
		s.failListings--
		s.mu.Unlock()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"message": "temporary backend failure"})
		return
	}
	shape := s.shape
	s.mu.Unlock()

	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total := len(items)
	start := (pageNumber - 1) * pageSize
	sliced := []any{}
	if start < total {
		end := min(start+pageSize, total)
		sliced = items[start:end]
	}
	envelope := map[string]any{
		key:           sliced,
		"totalCount":  total,
		"pageCount":   (total + pageSize - 1) / pageSize,
		"currentPage": pageNumber,
	}

	switch shape {
	case ShapeBareArray:
		render.JSON(w, r, items)
	case ShapeSuccessArray:
		render.JSON(w, r, map[string]any{"success": true, "data": items})
	case ShapeSuccessEnvelope:
		render.JSON(w, r, map[string]any{"success": true, "data": envelope})
	case ShapeDataEnvelope:
		render.JSON(w, r, map[string]any{"data": envelope})
	case ShapeRootKeyed:
		render.JSON(w, r, envelope)
	}
}

// decode читает JSON тело запроса
func decode(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// respondError отвечает ошибкой в формате бэкенда
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"message": message})
}

// handleNoContent подтверждает запрос пустым телом
func (s *Server) handleNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// containsFold проверяет вхождение подстроки без учета регистра
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
