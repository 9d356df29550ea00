package domain

import "errors"

// Доменные ошибки клиента
var (
	// ErrUnauthorized возвращается при неудачной аутентификации (HTTP 401)
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired возвращается когда refresh не смог восстановить сессию
	ErrSessionExpired = errors.New("session expired")

	// ErrNoCredentials возвращается когда в хранилище нет пары токенов
	ErrNoCredentials = errors.New("no stored credentials")

	// ErrInvalidRefreshResponse возвращается когда ответ refresh-эндпоинта
	// не содержит новую пару токенов
	ErrInvalidRefreshResponse = errors.New("refresh response missing tokens")

	// ErrProjectNotFound возвращается когда проект не найден
	ErrProjectNotFound = errors.New("project not found")

	// ErrMemberNotFound возвращается когда участник проекта не найден
	ErrMemberNotFound = errors.New("project member not found")

	// ErrNotFound возвращается когда ресурс не найден
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode представляет коды ошибок, которые видит UI слой
type ErrorCode string

// Коды ошибок для per-feature состояния ошибок
const (
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"    // Требуется повторный вход
	CodeSessionExpired ErrorCode = "SESSION_EXPIRED" // Сессия истекла, refresh не помог
	CodeNotFound       ErrorCode = "NOT_FOUND"       // Ресурс не найден
	CodeServerError    ErrorCode = "SERVER_ERROR"    // Ошибка на стороне бэкенда
)

// MapErrorToCode преобразует доменные ошибки в коды для UI слоя
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrInvalidRefreshResponse):
		return CodeSessionExpired
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNoCredentials):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProjectNotFound),
		errors.Is(err, ErrMemberNotFound):
		return CodeNotFound
	default:
		return CodeServerError
	}
}
