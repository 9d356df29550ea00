package backendtest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aidar/taskboard-client/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// claims это JWT claims access токена двойника
type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// mintPair выпускает новую пару токенов для пользователя
func (s *Server) mintPair(userID string) domain.TokenPair {
	now := time.Now()
	c := &claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		panic(err) // невозможная ситуация для HS256 с валидным ключом
	}

	refresh := uuid.NewString()
	s.refreshTokens[refresh] = userID
	return domain.TokenPair{AccessToken: signed, RefreshToken: refresh}
}

// handleLogin обрабатывает POST /api/authentications/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[req.Email]
	if !ok || acc.password != req.Password {
		respondError(w, r, http.StatusUnauthorized, "invalid email or password")
		return
	}

	pair := s.mintPair(acc.user.ID)
	render.JSON(w, r, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         acc.user,
	})
}

// handleRegister обрабатывает POST /api/authentications/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		respondError(w, r, http.StatusBadRequest, "email already registered")
		return
	}
	u := domain.User{ID: uuid.NewString(), Email: req.Email, Name: req.Name, Provider: "email"}
	s.accounts[req.Email] = &account{user: u, password: req.Password}

	pair := s.mintPair(u.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         u,
	})
}

// handleLoginGoogle обрабатывает POST /api/authentications/login-google.
// Двойник принимает любой непустой idToken и заводит пользователя по нему.
func (s *Server) handleLoginGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decode(r, &req); err != nil || req.IDToken == "" {
		respondError(w, r, http.StatusUnauthorized, "invalid google token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email := req.IDToken + "@google.example"
	acc, ok := s.accounts[email]
	if !ok {
		u := domain.User{ID: uuid.NewString(), Email: email, Provider: "google"}
		acc = &account{user: u}
		s.accounts[email] = acc
	}

	pair := s.mintPair(acc.user.ID)
	render.JSON(w, r, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         acc.user,
	})
}

// handleRefreshToken обрабатывает POST /api/authentications/refresh-token.
// Старая пара отзывается, выдается новая; режимы RefreshInvalidBody и
// RefreshReject имитируют сломанный refresh.
func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenPair
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++

	switch s.refreshMode {
	case RefreshReject:
		respondError(w, r, http.StatusUnauthorized, "refresh token revoked")
		return
	case RefreshInvalidBody:
		render.JSON(w, r, map[string]string{"accessToken": "incomplete"})
		return
	}

	userID, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unknown refresh token")
		return
	}
	delete(s.refreshTokens, req.RefreshToken)

	pair := s.mintPair(userID)
	render.JSON(w, r, pair)
}

// authMiddleware валидирует Bearer токен и учитывает инъекцию 401
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Taskboard-Replay") != "" {
			s.mu.Lock()
			s.replayCalls++
			s.mu.Unlock()
		} else {
			s.mu.Lock()
			if s.unauthorizedNext > 0 {
				s.unauthorizedNext--
				s.mu.Unlock()
				respondError(w, r, http.StatusUnauthorized, "access token expired")
				return
			}
			s.mu.Unlock()
		}

		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, r, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parsed, err := jwt.ParseWithClaims(parts[1], &claims{}, func(token *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		})
		if err != nil || !parsed.Valid {
			respondError(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c := parsed.Claims.(*claims)

		ctx := context.WithValue(r.Context(), userIDKey, c.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUserID извлекает ID пользователя из контекста запроса
func currentUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
