package tracing

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// TestGenerateTraceID_Format проверяет формат: ровно 32 hex символа.
func TestGenerateTraceID_Format(t *testing.T) {
	id := GenerateTraceID()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id)
}

// TestGenerateTraceID_Unique проверяет уникальность последовательных ID.
func TestGenerateTraceID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateTraceID()
		_, dup := seen[id]
		require.False(t, dup, "trace ID не должен повторяться: %s", id)
		seen[id] = struct{}{}
	}
}

// TestContextWithTraceID_Valid проверяет что hex trace ID попадает в span context.
func TestContextWithTraceID_Valid(t *testing.T) {
	id := GenerateTraceID()
	ctx := ContextWithTraceID(context.Background(), id)

	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.HasTraceID())
	assert.Equal(t, id, sc.TraceID().String())
}

// TestContextWithTraceID_Invalid проверяет что невалидный ID не меняет контекст.
func TestContextWithTraceID_Invalid(t *testing.T) {
	ctx := context.Background()
	got := ContextWithTraceID(ctx, "не-hex")
	assert.Equal(t, ctx, got)

	sc := trace.SpanContextFromContext(got)
	assert.False(t, sc.HasTraceID())
}

// TestConfig_Validate проверяет правила валидации конфигурации трейсинга.
func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Enabled:      true,
		Endpoint:     "http://jaeger:4318",
		ServiceName:  "flexible-etl-audit",
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}

	t.Run("валидная конфигурация", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("выключенный трейсинг валиден без полей", func(t *testing.T) {
		cfg := Config{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("пустой endpoint", func(t *testing.T) {
		cfg := valid
		cfg.Endpoint = ""
		assert.ErrorIs(t, cfg.Validate(), ErrEndpointRequired)
	})

	t.Run("endpoint без host", func(t *testing.T) {
		cfg := valid
		cfg.Endpoint = "/just/path"
		assert.ErrorIs(t, cfg.Validate(), ErrEndpointInvalidFormat)
	})

	t.Run("пустой service name", func(t *testing.T) {
		cfg := valid
		cfg.ServiceName = ""
		assert.ErrorIs(t, cfg.Validate(), ErrServiceNameRequired)
	})

	t.Run("нулевой timeout", func(t *testing.T) {
		cfg := valid
		cfg.Timeout = 0
		assert.ErrorIs(t, cfg.Validate(), ErrTimeoutInvalid)
	})

	t.Run("sampling rate вне диапазона", func(t *testing.T) {
		cfg := valid
		cfg.SamplingRate = 1.5
		assert.ErrorIs(t, cfg.Validate(), ErrSamplingRateInvalid)
	})
}

// TestNewTracerProvider_Disabled проверяет nop shutdown при выключенном трейсинге.
func TestNewTracerProvider_Disabled(t *testing.T) {
	shutdown, err := NewTracerProvider(Config{Enabled: false}, logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

// TestNewTracerProvider_InvalidConfig проверяет что невалидная конфигурация отклоняется.
func TestNewTracerProvider_InvalidConfig(t *testing.T) {
	_, err := NewTracerProvider(Config{Enabled: true}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrEndpointRequired)
}
