package di

import (
	"context"

	"github.com/Asahi-UX/FlexibleETL/internal/config"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditmetrics"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/tracing"
)

// ProvideDiagLogger создаёт диагностический логгер подсистемы на
// основе секции diagnostics конфигурации. Диагностика — отдельный
// канал: движок аудита никогда не пишет о собственных сбоях в свои
// же sink-и.
func ProvideDiagLogger(cfg *config.Config) logging.Logger {
	if cfg == nil {
		return logging.NewLogger(logging.DefaultConfig())
	}
	return logging.NewLogger(cfg.Diagnostics)
}

// ProvideMetricsCollector создаёт сборщик метрик на основе секции
// metrics. Если метрики отключены — NopCollector, нулевой overhead.
// Ошибка создания Prometheus коллектора не фатальна: логируется в
// диагностику, процесс продолжает работу без метрик.
func ProvideMetricsCollector(cfg *config.Config, diag logging.Logger) auditmetrics.Collector {
	if cfg == nil || !cfg.Metrics.Enabled {
		return auditmetrics.NewNopCollector()
	}
	collector, err := auditmetrics.NewPrometheusCollector(cfg.Metrics, diag)
	if err != nil {
		diag.Error("метрики отключены из-за ошибки инициализации", "error", err)
		return auditmetrics.NewNopCollector()
	}
	return collector
}

// ProvideRegistry строит реестр логгеров аудита из декларативной
// конфигурации. Ошибка конфигурации фатальна: лучше упасть на старте,
// чем работать с молча отброшенной частью конфигурации.
func ProvideRegistry(cfg *config.Config, diag logging.Logger, collector auditmetrics.Collector) (*auditlog.Registry, error) {
	opener, err := config.JournalOpener()
	if err != nil {
		return nil, err
	}
	return auditlog.FromConfig(cfg.Logging(),
		auditlog.WithDiagnostics(diag),
		auditlog.WithMetrics(collector),
		auditlog.WithJournalOpener(opener),
	)
}

// ProvideTracerProvider инициализирует OTel TracerProvider на основе
// секции tracing и возвращает shutdown функцию. Если трейсинг
// отключён — nop.
func ProvideTracerProvider(cfg *config.Config, diag logging.Logger) (func(context.Context) error, error) {
	if cfg == nil || !cfg.Tracing.Enabled {
		return tracing.NewNopTracerProvider(), nil
	}
	return tracing.NewTracerProvider(cfg.Tracing, diag)
}

// ProvideTraceID генерирует уникальный trace_id запуска.
// Используется для корреляции диагностических записей в рамках
// одного запуска CLI.
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}
