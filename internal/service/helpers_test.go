package service

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
	"github.com/aidar/taskboard-client/internal/store"
)

// testEnv собирает полный конвейер клиента поверх двойника бэкенда:
// refresh transport, retryer с короткими задержками и все сервисы
type testEnv struct {
	backend *backendtest.Server
	creds   *auth.Store
	state   *store.Store

	auth     *AuthService
	projects *ProjectService
	members  *MemberService
	work     *WorkService
	comments *CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := backendtest.New(t)
	creds := auth.NewStore()
	state := store.New()
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	transport := &api.RefreshTransport{
		Base:        http.DefaultTransport,
		Credentials: creds,
		RefreshURL:  backend.URL + "/api/authentications/refresh-token",
		Logger:      logger,
		Metrics:     m,
	}
	client := api.NewClient(backend.URL, 5*time.Second, transport, creds, logger, m)
	retry := api.NewRetryer(3, time.Millisecond, logger, m)

	return &testEnv{
		backend:  backend,
		creds:    creds,
		state:    state,
		auth:     NewAuthService(client, creds, state, logger),
		projects: NewProjectService(client, state, retry, m, logger, 20*time.Millisecond),
		members:  NewMemberService(client, state, retry, m, logger),
		work:     NewWorkService(client, state, retry, m, logger),
		comments: NewCommentService(client, state, retry, m, logger),
	}
}

// signIn регистрирует и входит тестовым пользователем
func (e *testEnv) signIn(t *testing.T) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), "alice@example.com", "secret", "Alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func firstPage() domain.PageRequest {
	return domain.PageRequest{PageNumber: 1, PageSize: 10}
}
