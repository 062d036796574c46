package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Ошибки валидации конфигурации трейсинга.
var (
	// ErrEndpointRequired — endpoint обязателен при включённом трейсинге.
	ErrEndpointRequired = errors.New("tracing: endpoint обязателен когда tracing включён")

	// ErrServiceNameRequired — service name обязателен.
	ErrServiceNameRequired = errors.New("tracing: service name обязателен")

	// ErrTimeoutInvalid — timeout должен быть положительным.
	ErrTimeoutInvalid = errors.New("tracing: timeout должен быть положительным")

	// ErrEndpointInvalidFormat — endpoint имеет невалидный URL формат.
	ErrEndpointInvalidFormat = errors.New("tracing: endpoint должен быть валидным URL с host (например http://jaeger:4318)")

	// ErrSamplingRateInvalid — sampling rate вне допустимого диапазона [0.0, 1.0].
	ErrSamplingRateInvalid = errors.New("tracing: sampling rate должен быть от 0.0 до 1.0")
)

// Config содержит настройки для инициализации TracerProvider.
type Config struct {
	// Enabled — включён ли трейсинг.
	Enabled bool `yaml:"enabled" env:"ETL_TRACING_ENABLED" env-default:"false"`

	// Endpoint — URL OTLP HTTP endpoint (например, "jaeger:4318").
	Endpoint string `yaml:"endpoint" env:"ETL_TRACING_ENDPOINT"`

	// ServiceName — имя сервиса для resource attributes.
	ServiceName string `yaml:"serviceName" env:"ETL_TRACING_SERVICE" env-default:"flexible-etl-audit"`

	// Version — версия сервиса для resource attributes.
	Version string `yaml:"version" env:"ETL_TRACING_VERSION"`

	// Environment — окружение (production, staging, development).
	Environment string `yaml:"environment" env:"ETL_TRACING_ENV" env-default:"production"`

	// Insecure — использовать HTTP вместо HTTPS.
	Insecure bool `yaml:"insecure" env:"ETL_TRACING_INSECURE" env-default:"false"`

	// Timeout — таймаут для экспорта трейсов.
	Timeout time.Duration `yaml:"timeout" env:"ETL_TRACING_TIMEOUT" env-default:"5s"`

	// SamplingRate — доля сэмплируемых трейсов (0.0 — ни один, 1.0 — все).
	SamplingRate float64 `yaml:"samplingRate" env:"ETL_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// Validate проверяет корректность конфигурации.
// Sentinel errors позволяют программную проверку через errors.Is().
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrEndpointRequired
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" {
		return ErrEndpointInvalidFormat
	}
	if c.ServiceName == "" {
		return ErrServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		return fmt.Errorf("%w, получено: %g", ErrSamplingRateInvalid, c.SamplingRate)
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (трейсинг выключен).
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ServiceName:  "flexible-etl-audit",
		Environment:  "production",
		Insecure:     false,
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}
