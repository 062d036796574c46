// Package config загружает декларативную конфигурацию подсистемы
// логирования и аудита из YAML/JSON файла с env-переопределениями.
//
// Верхний уровень файла повторяет схему движка (formatters, handlers,
// loggers, root) плюс ambient секции процесса: diagnostics, metrics,
// tracing. Чувствительные данные (учётка журнала аудита) в файл не
// кладутся — только переменные окружения.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditmetrics"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/tracing"
)

// Config — полная конфигурация подсистемы.
type Config struct {
	// Formatters, Handlers, Loggers, Root — схема движка аудита.
	Formatters map[string]auditlog.FormatterConfig `yaml:"formatters" json:"formatters"`
	Handlers   map[string]auditlog.HandlerConfig   `yaml:"handlers" json:"handlers"`
	Loggers    map[string]auditlog.LoggerConfig    `yaml:"loggers" json:"loggers"`
	Root       auditlog.RootConfig                 `yaml:"root" json:"root"`

	// Diagnostics — собственный диагностический канал подсистемы.
	Diagnostics logging.Config `yaml:"diagnostics" json:"diagnostics"`

	// Metrics — сбор и отправка Prometheus метрик.
	Metrics auditmetrics.Config `yaml:"metrics" json:"metrics"`

	// Tracing — OpenTelemetry трейсинг CLI.
	Tracing tracing.Config `yaml:"tracing" json:"tracing"`
}

// Logging собирает схему движка в auditlog.Config.
func (c *Config) Logging() *auditlog.Config {
	return &auditlog.Config{
		Formatters: c.Formatters,
		Handlers:   c.Handlers,
		Loggers:    c.Loggers,
		Root:       c.Root,
	}
}

// Dump сериализует эффективную конфигурацию (файл + env-переопределения)
// в YAML. Используется logcheck для вывода того, что реально собрано.
// Секретов не содержит: учётные данные в Config не живут.
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("сериализация конфигурации: %w", err)
	}
	return string(data), nil
}

// DBCredentials — учётные данные журнала аудита.
// Берутся только из окружения: конфигурационный файл коммитится в
// репозиторий и секретов содержать не должен.
type DBCredentials struct {
	// User — имя пользователя БД журнала.
	User string `env:"ETL_AUDIT_DB_USER"`

	// Password — пароль пользователя БД журнала.
	Password string `env:"ETL_AUDIT_DB_PASSWORD"`

	// Encrypt — использовать TLS при подключении.
	Encrypt bool `env:"ETL_AUDIT_DB_ENCRYPT" env-default:"true"`
}
