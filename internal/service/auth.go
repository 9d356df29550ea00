package service

import (
	"context"
	"log/slog"

	"github.com/aidar/taskboard-client/internal/api"
	"github.com/aidar/taskboard-client/internal/auth"
	"github.com/aidar/taskboard-client/internal/domain"
	"github.com/aidar/taskboard-client/internal/store"
)

// AuthService handles authentication actions against the backend and owns
// installing/clearing the process-wide credential pair.
type AuthService struct {
	client *api.Client
	creds  *auth.Store
	state  *store.Store
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(client *api.Client, creds *auth.Store, state *store.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		client: client,
		creds:  creds,
		state:  state,
		logger: logger,
	}
}

// loginResponse tolerates both a flat token pair and the enveloped form.
type loginResponse struct {
	domain.TokenPair
	User *domain.User  `json:"user"`
	Data *loginPayload `json:"data"`
}

type loginPayload struct {
	domain.TokenPair
	User *domain.User `json:"user"`
}

// tokens picks whichever form actually carried the pair.
func (r *loginResponse) tokens() (domain.TokenPair, *domain.User) {
	if r.TokenPair.IsComplete() {
		return r.TokenPair, r.User
	}
	if r.Data != nil {
		return r.Data.TokenPair, r.Data.User
	}
	return r.TokenPair, r.User
}

// Login authenticates with email and password and installs the returned
// credential pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := s.client.Post(ctx, "/api/authentications/login", body, &resp); err != nil {
		return nil, s.fail(err)
	}
	return s.installSession(resp)
}

// Register creates an account and installs the returned credential pair.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var resp loginResponse
	if err := s.client.Post(ctx, "/api/authentications/register", body, &resp); err != nil {
		return nil, s.fail(err)
	}
	return s.installSession(resp)
}

// LoginGoogle authenticates with a Google ID token.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*domain.User, error) {
	body := map[string]string{"idToken": idToken}
	var resp loginResponse
	if err := s.client.Post(ctx, "/api/authentications/login-google", body, &resp); err != nil {
		return nil, s.fail(err)
	}
	return s.installSession(resp)
}

// Logout drops the credential pair and resets the in-memory state.
func (s *AuthService) Logout() {
	s.creds.Clear()
	s.state.Reset()
	s.logger.Info("logged out")
}

// ForgotPassword requests a password reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := s.client.Put(ctx, "/api/accounts/forgot-password", body, nil); err != nil {
		return s.fail(err)
	}
	return nil
}

// ResetPassword completes a password reset with the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	if err := s.client.Put(ctx, "/api/accounts/reset-password", body, nil); err != nil {
		return s.fail(err)
	}
	return nil
}

// ChangePassword changes the password of the signed-in user.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	if err := s.client.Put(ctx, "/api/accounts/change-password", body, nil); err != nil {
		return s.fail(err)
	}
	return nil
}

// installSession validates the login payload and installs the pair.
func (s *AuthService) installSession(resp loginResponse) (*domain.User, error) {
	pair, user := resp.tokens()
	if !pair.IsComplete() {
		err := domain.ErrInvalidRefreshResponse
		return nil, s.fail(err)
	}
	s.creds.Set(pair)
	s.state.SetError(store.FeatureAuth, "")
	s.logger.Info("signed in")
	return user, nil
}

// fail records the user-facing message in per-feature error state and
// passes the original error through.
func (s *AuthService) fail(err error) error {
	s.state.SetError(store.FeatureAuth, api.UserMessage(err))
	return err
}
