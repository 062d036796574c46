package di

import (
	"context"

	"github.com/Asahi-UX/FlexibleETL/internal/config"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditmetrics"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// App содержит инициализированные зависимости процесса.
// Создаётся через Wire DI в InitializeApp().
//
// Все поля инициализируются через провайдеры в providers.go.
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config содержит конфигурацию подсистемы.
	// Передаётся извне через InitializeApp().
	Config *config.Config

	// Diag — диагностический канал самой подсистемы логирования.
	// Создаётся через ProvideDiagLogger на основе секции diagnostics.
	Diag logging.Logger

	// Registry — реестр логгеров аудита, построенный из декларативной
	// конфигурации. Создаётся через ProvideRegistry.
	Registry *auditlog.Registry

	// MetricsCollector собирает и отправляет метрики в Prometheus
	// Pushgateway. Если метрики отключены — NopCollector.
	MetricsCollector auditmetrics.Collector

	// TraceID — идентификатор запуска для корреляции диагностики.
	// Генерируется через ProvideTraceID.
	TraceID string

	// TracerShutdown завершает OTel TracerProvider и отправляет
	// буферизированные span-ы. Если трейсинг отключён — nop function.
	TracerShutdown func(context.Context) error
}

// Close завершает работу подсистемы: закрывает реестр со всеми
// sink-ами и глушит трейсер. Ошибки отдельных шагов не прерывают
// остальные.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.Registry != nil {
		if err := a.Registry.Close(); err != nil {
			firstErr = err
		}
	}
	if a.TracerShutdown != nil {
		if err := a.TracerShutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
