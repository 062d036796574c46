package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Asahi-UX/FlexibleETL/internal/adapter/mssql"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/apperrors"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditmetrics"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/tracing"
)

// DefaultConfigPath — путь к конфигурационному файлу по умолчанию.
// Переопределяется переменной окружения ETL_LOG_CONFIG или аргументом CLI.
const DefaultConfigPath = "config/logging.yaml"

// ConfigPath возвращает путь к конфигурационному файлу:
// явный аргумент, затем ETL_LOG_CONFIG, затем DefaultConfigPath.
func ConfigPath(arg string) string {
	if arg != "" {
		return arg
	}
	if env := os.Getenv("ETL_LOG_CONFIG"); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load читает конфигурацию из файла (YAML или JSON по расширению)
// и применяет env-переопределения поверх значений файла.
// Ошибки чтения и парсинга фатальны: частичная конфигурация не
// возвращается.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
			fmt.Sprintf("не удалось загрузить конфигурацию из %q", path), err)
	}
	return cfg, nil
}

// LoadOrBasic — как Load, но при любой ошибке загрузки возвращает
// базовую конфигурацию (console stderr, уровень INFO на root) вместе
// с ошибкой. Вызывающий решает, репортить ли ошибку и продолжать —
// отсутствие лог-конфига не должно оставлять процесс без логов вообще.
func LoadOrBasic(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Basic(), err
	}
	return cfg, nil
}

// Basic возвращает минимальную рабочую конфигурацию: единственный
// console-sink в stderr, привязанный к root с уровнем INFO.
func Basic() *Config {
	cfg := defaults()
	cfg.Handlers = map[string]auditlog.HandlerConfig{
		"console": {
			Class:  auditlog.ClassConsoleSink,
			Stream: auditlog.StreamStderr,
		},
	}
	cfg.Root = auditlog.RootConfig{
		Level:    "INFO",
		Handlers: []string{"console"},
	}
	return cfg
}

// defaults возвращает Config с дефолтами ambient секций.
func defaults() *Config {
	return &Config{
		Diagnostics: logging.DefaultConfig(),
		Metrics:     auditmetrics.DefaultConfig(),
		Tracing:     tracing.DefaultConfig(),
	}
}

// JournalOpener строит auditlog.JournalOpener для database-sink
// handler-ов: адресация из конфигурации handler-а, учётные данные
// из окружения.
func JournalOpener() (auditlog.JournalOpener, error) {
	var creds DBCredentials
	if err := cleanenv.ReadEnv(&creds); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrCredentialsRead,
			"не удалось прочитать учётные данные журнала аудита", err)
	}

	return func(name string, hc auditlog.HandlerConfig) (auditlog.Journal, error) {
		return mssql.NewJournal(mssql.JournalOptions{
			Server:   hc.Server,
			Port:     hc.Port,
			User:     creds.User,
			Password: creds.Password,
			Database: hc.Database,
			Table:    hc.Table,
			Timeout:  30 * time.Second,
			Encrypt:  creds.Encrypt,
		})
	}, nil
}
