package domain

import "time"

// User представляет пользователя дашборда
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Provider  string    `json:"provider,omitempty"` // "email" или "google"
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// TokenPair представляет пару учетных данных процесса.
// AccessToken короткоживущий, RefreshToken используется для его обновления.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsComplete возвращает true если присутствуют оба токена.
// Refresh невозможен без полной пары.
func (p TokenPair) IsComplete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}
