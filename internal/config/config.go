package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит всю конфигурацию клиента
type Config struct {
	API     APIConfig     // Настройки подключения к бэкенду
	Client  ClientConfig  // Настройки retry и refresh
	Auth    AuthConfig    // Учетные данные сервисного входа
	Metrics MetricsConfig // Настройки сервера метрик
	Sync    SyncConfig    // Настройки цикла синхронизации
}

// APIConfig содержит настройки подключения к REST бэкенду
type APIConfig struct {
	BaseURL        string `envconfig:"API_BASE_URL" default:"http://localhost:3000"`
	TimeoutSeconds int    `envconfig:"API_TIMEOUT_SECONDS" default:"15"`
	PageSize       int    `envconfig:"API_PAGE_SIZE" default:"10"`
}

// ClientConfig содержит настройки поведения клиента при сбоях
type ClientConfig struct {
	RetryMaxAttempts    int  `envconfig:"CLIENT_RETRY_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelayMs    int  `envconfig:"CLIENT_RETRY_BASE_DELAY_MS" default:"1000"`
	SearchDebounceMs    int  `envconfig:"CLIENT_SEARCH_DEBOUNCE_MS" default:"400"`
	SingleFlightRefresh bool `envconfig:"CLIENT_SINGLE_FLIGHT_REFRESH" default:"false"`
}

// AuthConfig содержит учетные данные для входа демона
type AuthConfig struct {
	Email    string `envconfig:"AUTH_EMAIL"`
	Password string `envconfig:"AUTH_PASSWORD"`
}

// MetricsConfig содержит настройки HTTP сервера метрик и health check
type MetricsConfig struct {
	Host string `envconfig:"METRICS_HOST" default:"0.0.0.0"`
	Port string `envconfig:"METRICS_PORT" default:"9090"`
}

// SyncConfig содержит настройки периодической синхронизации
type SyncConfig struct {
	IntervalSeconds int `envconfig:"SYNC_INTERVAL_SECONDS" default:"30"`
}

// GetTimeout возвращает таймаут HTTP запроса как time.Duration
func (a APIConfig) GetTimeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// GetRetryBaseDelay возвращает базовую задержку между повторами
func (c ClientConfig) GetRetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// GetSearchDebounce возвращает задержку debounce для поискового ввода
func (c ClientConfig) GetSearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// GetInterval возвращает период синхронизации как time.Duration
func (s SyncConfig) GetInterval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
