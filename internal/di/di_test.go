package di

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asahi-UX/FlexibleETL/internal/config"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditmetrics"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/tracing"
)

// openDescriptorsFor считает открытые дескрипторы процесса,
// указывающие на path (через /proc/self/fd).
func openDescriptorsFor(t *testing.T, path string) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)

	count := 0
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join("/proc/self/fd", e.Name()))
		if err == nil && target == path {
			count++
		}
	}
	return count
}

// TestProvideDiagLoggerNilConfig проверяет, что nil конфигурация
// не роняет провайдер: возвращается логгер с настройками по умолчанию.
func TestProvideDiagLoggerNilConfig(t *testing.T) {
	logger := ProvideDiagLogger(nil)
	require.NotNil(t, logger)
	logger.Debug("диагностика работает")
}

// TestProvideMetricsCollectorDisabled проверяет, что при отключённых
// метриках возвращается NopCollector.
func TestProvideMetricsCollectorDisabled(t *testing.T) {
	cfg := config.Basic()
	cfg.Metrics.Enabled = false

	collector := ProvideMetricsCollector(cfg, ProvideDiagLogger(cfg))
	assert.IsType(t, &auditmetrics.NopCollector{}, collector)
}

// TestProvideMetricsCollectorInvalidConfig проверяет, что ошибка
// конфигурации метрик не фатальна: провайдер откатывается на nop.
func TestProvideMetricsCollectorInvalidConfig(t *testing.T) {
	cfg := config.Basic()
	cfg.Metrics.Enabled = true
	cfg.Metrics.PushgatewayURL = ""

	collector := ProvideMetricsCollector(cfg, ProvideDiagLogger(cfg))
	assert.IsType(t, &auditmetrics.NopCollector{}, collector)
}

// TestProvideTraceIDFormat проверяет формат сгенерированного trace_id.
func TestProvideTraceIDFormat(t *testing.T) {
	id := ProvideTraceID()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id)
	assert.NotEqual(t, id, ProvideTraceID(), "trace_id должен быть уникальным")
}

// TestProvideTracerProviderDisabled проверяет nop shutdown при
// отключённом трейсинге.
func TestProvideTracerProviderDisabled(t *testing.T) {
	cfg := config.Basic()
	cfg.Tracing.Enabled = false

	shutdown, err := ProvideTracerProvider(cfg, ProvideDiagLogger(cfg))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

// TestInitializeApp проверяет сборку полного графа зависимостей
// на базовой конфигурации.
func TestInitializeApp(t *testing.T) {
	app, err := InitializeApp(config.Basic())
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.Diag)
	assert.NotNil(t, app.Registry)
	assert.NotNil(t, app.MetricsCollector)
	assert.NotEmpty(t, app.TraceID)
	assert.NotNil(t, app.TracerShutdown)

	root := app.Registry.Root()
	require.NotNil(t, root)
	root.Info("подсистема инициализирована")

	assert.NoError(t, app.Close(context.Background()))
}

// TestInitializeAppTracerFailureClosesRegistry проверяет, что при
// сбое инициализации трейсинга после успешной сборки реестра открытые
// файловые sink-и закрываются, а не утекают.
func TestInitializeAppTracerFailureClosesRegistry(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("подсчёт дескрипторов через /proc доступен только на linux")
	}

	logPath := filepath.Join(t.TempDir(), "audit.log")
	cfg := config.Basic()
	cfg.Handlers["file"] = auditlog.HandlerConfig{
		Class:    auditlog.ClassRotatingFileSink,
		Filename: logPath,
	}
	cfg.Root.Handlers = []string{"file"}
	// Endpoint пуст: инициализация трейсинга падает уже после того,
	// как реестр собран и файл открыт.
	cfg.Tracing.Enabled = true

	app, err := InitializeApp(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, tracing.ErrEndpointRequired)
	assert.Nil(t, app)

	assert.FileExists(t, logPath, "реестр был собран и открыл файл sink-а")
	assert.Zero(t, openDescriptorsFor(t, logPath),
		"реестр закрыт при сбое инициализации трейсинга")
}

// TestInitializeAppInvalidConfig проверяет, что ошибка конфигурации
// движка фатальна для инициализации.
func TestInitializeAppInvalidConfig(t *testing.T) {
	cfg := config.Basic()
	cfg.Root.Handlers = []string{"несуществующий"}

	app, err := InitializeApp(cfg)
	assert.Error(t, err)
	assert.Nil(t, app)
}
