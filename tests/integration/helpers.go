package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskboard-client/internal/api"
	"github.com/aidar/taskboard-client/internal/auth"
	"github.com/aidar/taskboard-client/internal/backendtest"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
	"github.com/aidar/taskboard-client/internal/service"
	"github.com/aidar/taskboard-client/internal/store"
)

// TestEnvironment содержит все ресурсы необходимые для интеграционных тестов
type TestEnvironment struct {
	Backend *backendtest.Server
	Creds   *auth.Store
	State   *store.Store

	Auth     *service.AuthService
	Projects *service.ProjectService
	Members  *service.MemberService
	Work     *service.WorkService
	Comments *service.CommentService
}

// SetupTestEnvironment создает полное тестовое окружение: двойник бэкенда
// и клиентский конвейер поверх него (refresh transport, retryer, сервисы)
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	backend := backendtest.New(t)
	creds := auth.NewStore()
	state := store.New()
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Принудительный выход сбрасывает нормализованное состояние,
	// как это делает боевая сборка приложения
	creds.OnLogout(state.Reset)

	transport := &api.RefreshTransport{
		Base:        http.DefaultTransport,
		Credentials: creds,
		RefreshURL:  backend.URL + "/api/authentications/refresh-token",
		Logger:      logger,
		Metrics:     m,
	}
	client := api.NewClient(backend.URL, 5*time.Second, transport, creds, logger, m)
	retry := api.NewRetryer(3, time.Millisecond, logger, m)

	return &TestEnvironment{
		Backend:  backend,
		Creds:    creds,
		State:    state,
		Auth:     service.NewAuthService(client, creds, state, logger),
		Projects: service.NewProjectService(client, state, retry, m, logger, 10*time.Millisecond),
		Members:  service.NewMemberService(client, state, retry, m, logger),
		Work:     service.NewWorkService(client, state, retry, m, logger),
		Comments: service.NewCommentService(client, state, retry, m, logger),
	}
}

// SignIn регистрирует и входит пользователем с указанным email
func (env *TestEnvironment) SignIn(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := env.Auth.Register(context.Background(), email, "secret", "Test User")
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func firstPage() domain.PageRequest {
	return domain.PageRequest{PageNumber: 1, PageSize: 10}
}
