package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aidar/taskboard-client/internal/api"
	"github.com/aidar/taskboard-client/internal/auth"
	"github.com/aidar/taskboard-client/internal/config"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/metrics"
	"github.com/aidar/taskboard-client/internal/service"
	"github.com/aidar/taskboard-client/internal/store"
)

// App представляет клиент синхронизации со всеми зависимостями
type App struct {
	config  *config.Config
	logger  *slog.Logger
	creds   *auth.Store
	state   *store.Store
	metrics *metrics.Metrics
	server  *http.Server
	done    chan struct{}

	// Слой действий, доступный встраивающему коду
	Auth     *service.AuthService
	Projects *service.ProjectService
	Members  *service.MemberService
	Work     *service.WorkService
	Comments *service.CommentService

	currentUser *domain.User
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app := &App{
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	a.creds = auth.NewStore()
	a.state = store.New()
	a.metrics = metrics.New(prometheus.DefaultRegisterer)

	// При принудительном выходе сбрасываем нормализованное состояние
	a.creds.OnLogout(func() {
		a.logger.Warn("forced logout: resetting client state")
		a.state.Reset()
	})

	// Собираем конвейер: refresh transport под клиентом, retry над ним
	transport := &api.RefreshTransport{
		Base:         http.DefaultTransport,
		Credentials:  a.creds,
		RefreshURL:   a.config.API.BaseURL + "/api/authentications/refresh-token",
		SingleFlight: a.config.Client.SingleFlightRefresh,
		Logger:       a.logger,
		Metrics:      a.metrics,
	}
	client := api.NewClient(
		a.config.API.BaseURL,
		a.config.API.GetTimeout(),
		transport,
		a.creds,
		a.logger,
		a.metrics,
	)
	retryer := api.NewRetryer(
		a.config.Client.RetryMaxAttempts,
		a.config.Client.GetRetryBaseDelay(),
		a.logger,
		a.metrics,
	)

	// Инициализируем слой действий
	a.Auth = service.NewAuthService(client, a.creds, a.state, a.logger)
	a.Projects = service.NewProjectService(client, a.state, retryer, a.metrics, a.logger, a.config.Client.GetSearchDebounce())
	a.Members = service.NewMemberService(client, a.state, retryer, a.metrics, a.logger)
	a.Work = service.NewWorkService(client, a.state, retryer, a.metrics, a.logger)
	a.Comments = service.NewCommentService(client, a.state, retryer, a.metrics, a.logger)

	a.setupServer()

	a.logger.Info("application initialized", "backend", a.config.API.BaseURL)
	return nil
}

// setupServer настраивает HTTP сервер метрик и health check
func (a *App) setupServer() {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%s", a.config.Metrics.Host, a.config.Metrics.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("metrics server configured", "addr", addr)
}

// Run входит в сервисный аккаунт, запускает цикл синхронизации и
// блокируется на сервере метрик
func (a *App) Run() error {
	ctx := context.Background()

	if a.config.Auth.Email != "" {
		user, err := a.Auth.Login(ctx, a.config.Auth.Email, a.config.Auth.Password)
		if err != nil {
			return fmt.Errorf("service account login failed: %w", err)
		}
		a.currentUser = user
		go a.syncLoop()
	} else {
		a.logger.Warn("no service account configured, sync loop disabled")
	}

	a.logger.Info("starting metrics server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// syncLoop периодически обновляет листинг проектов пользователя
func (a *App) syncLoop() {
	ticker := time.NewTicker(a.config.Sync.GetInterval())
	defer ticker.Stop()

	req := domain.PageRequest{PageNumber: 1, PageSize: a.config.API.PageSize}
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			userID := ""
			if a.currentUser != nil {
				userID = a.currentUser.ID
			}
			page, err := a.Projects.MyProjects(context.Background(), userID, req)
			if err != nil {
				a.logger.Warn("project sync failed", "error", err)
				continue
			}
			a.logger.Info("projects synced",
				"count", len(page.Items),
				"total", page.TotalCount,
			)
		}
	}
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")
	close(a.done)

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	a.logger.Info("stopped gracefully")
	return nil
}
