package auditlog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/testutil"
)

// attachConsole подключает к логгеру console sink с буфером
// и возвращает буфер.
func attachConsole(t *testing.T, l *Logger, threshold Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l.AddSink(NewConsoleSink(l.Name()+"-sink", threshold, mustPattern(t, "{name}|{level}|{message}"), &buf, nil, nil))
	return &buf
}

// TestLoggerEffectiveLevelInheritance проверяет наследование уровня:
// a.b.c без собственного уровня берёт уровень ближайшего предка "a",
// а не root.
func TestLoggerEffectiveLevelInheritance(t *testing.T) {
	reg := New() // root INFO
	a := reg.GetOrCreate("a")
	a.SetLevel(LevelWarning)
	c := reg.GetOrCreate("a.b.c")

	assert.Equal(t, LevelWarning, c.EffectiveLevel())
	assert.Equal(t, LevelNotSet, reg.GetOrCreate("a.b").Level())
	assert.Equal(t, LevelInfo, reg.GetOrCreate("x.y").EffectiveLevel(), "без предков с уровнем — уровень root")
}

// TestLoggerEnabled проверяет порог эмиссии.
func TestLoggerEnabled(t *testing.T) {
	reg := New()
	l := reg.GetOrCreate("etl")
	l.SetLevel(LevelWarning)

	assert.False(t, l.Enabled(LevelDebug))
	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelWarning))
	assert.True(t, l.Enabled(LevelCritical))
}

// TestLoggerLevelGateOnce проверяет, что порог применяется один раз
// на эмитирующем логгере: запись, прошедшая порог потомка, доходит до
// sink-ов предков даже если их собственные уровни выше.
func TestLoggerLevelGateOnce(t *testing.T) {
	reg := New()
	parent := reg.GetOrCreate("etl")
	parent.SetLevel(LevelError)
	parentBuf := attachConsole(t, parent, LevelDebug)

	child := reg.GetOrCreate("etl.export")
	child.SetLevel(LevelDebug)
	child.Debug("детальная запись")

	assert.Contains(t, parentBuf.String(), "детальная запись",
		"уровень предка не перефильтровывает запись при propagation")
}

// TestLoggerPropagation проверяет доставку записи собственным sink-ам
// и sink-ам предков вплоть до root.
func TestLoggerPropagation(t *testing.T) {
	reg := New()
	rootBuf := attachConsole(t, reg.Root(), LevelDebug)
	mid := reg.GetOrCreate("etl")
	midBuf := attachConsole(t, mid, LevelDebug)
	leaf := reg.GetOrCreate("etl.export")
	leafBuf := attachConsole(t, leaf, LevelDebug)

	leaf.Info("выгрузка")

	for name, buf := range map[string]*bytes.Buffer{"leaf": leafBuf, "mid": midBuf, "root": rootBuf} {
		assert.Contains(t, buf.String(), "etl.export|INFO|выгрузка", "sink %s", name)
	}
}

// TestLoggerPropagationPerHop проверяет per-hop семантику флага:
// флаг узла прерывает цепочку на переходе от ЭТОГО узла к родителю,
// собственные sink-и узла запись всё равно получают.
func TestLoggerPropagationPerHop(t *testing.T) {
	reg := New()
	rootBuf := attachConsole(t, reg.Root(), LevelDebug)
	mid := reg.GetOrCreate("etl")
	mid.SetPropagate(false)
	midBuf := attachConsole(t, mid, LevelDebug)
	leaf := reg.GetOrCreate("etl.export")

	leaf.Info("выгрузка")

	assert.Contains(t, midBuf.String(), "выгрузка", "узел с propagate=false свои sink-и обслуживает")
	assert.Empty(t, rootBuf.String(), "цепочка оборвана на переходе mid→root")
}

// TestLoggerEmitterPropagateFalse проверяет обрыв на самом эмитенте:
// запись остаётся только в его собственных sink-ах.
func TestLoggerEmitterPropagateFalse(t *testing.T) {
	reg := New()
	rootBuf := attachConsole(t, reg.Root(), LevelDebug)
	leaf := reg.GetOrCreate("etl.export")
	leaf.SetPropagate(false)
	leafBuf := attachConsole(t, leaf, LevelDebug)

	leaf.Warning("локальная запись")

	assert.Contains(t, leafBuf.String(), "локальная запись")
	assert.Empty(t, rootBuf.String())
}

// TestLoggerSinkErrorSwallowed проверяет границу проглатывания ошибок:
// сбойный sink не мешает доставке остальным и не паникует.
func TestLoggerSinkErrorSwallowed(t *testing.T) {
	reg := New()
	l := reg.GetOrCreate("etl")
	l.AddSink(NewConsoleSink("broken", LevelDebug, mustPattern(t, "{message}"), failingWriter{}, nil, nil))
	buf := attachConsole(t, l, LevelDebug)

	assert.NotPanics(t, func() { l.Error("ошибка выгрузки") })
	assert.Contains(t, buf.String(), "ошибка выгрузки", "живой sink получил запись несмотря на сбойный")
}

// TestLoggerLastResort проверяет dispatch последней надежды: при
// полном отсутствии sink-ов в цепочке записи WARNING+ уходят в stderr,
// записи ниже порога last-resort теряются молча.
func TestLoggerLastResort(t *testing.T) {
	reg := New()
	l := reg.GetOrCreate("etl.export")

	out := testutil.CaptureStderr(t, func() {
		l.Error("потерянная ошибка")
		l.Info("информационная запись")
	})

	assert.Contains(t, out, "потерянная ошибка")
	assert.NotContains(t, out, "информационная запись", "порог last-resort — WARNING")
}

// TestLoggerLastResortNotUsedWithSinks проверяет, что при наличии
// хотя бы одного sink-а в цепочке last-resort не задействуется.
func TestLoggerLastResortNotUsedWithSinks(t *testing.T) {
	reg := New()
	attachConsole(t, reg.Root(), LevelCritical) // порог выше записи: sink есть, записи нет
	l := reg.GetOrCreate("etl")

	out := testutil.CaptureStderr(t, func() {
		l.Error("ошибка с настроенным sink-ом")
	})

	assert.Empty(t, out, "sink встретился в цепочке — last-resort не применяется")
}

// TestLoggerLogCtxTraceEnrichment проверяет обогащение записи
// trace_id/span_id из контекста OpenTelemetry.
func TestLoggerLogCtxTraceEnrichment(t *testing.T) {
	reg := New()
	l := reg.GetOrCreate("etl")
	var buf bytes.Buffer
	l.AddSink(NewConsoleSink("sink", LevelDebug, mustPattern(t, "{message} {fields}"), &buf, nil, nil))

	traceID, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0123456789abcdef")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	l.LogCtx(ctx, LevelInfo, "запись с трейсом", "op", "extract")

	line := buf.String()
	assert.Contains(t, line, "op=extract")
	assert.Contains(t, line, "trace_id=0123456789abcdef0123456789abcdef")
	assert.Contains(t, line, "span_id=0123456789abcdef")

	buf.Reset()
	l.LogCtx(context.Background(), LevelInfo, "запись без трейса")
	assert.False(t, strings.Contains(buf.String(), "trace_id"), "без span context поля не добавляются")
}

// TestLoggerConvenienceMethods проверяет уровневые методы-обёртки.
func TestLoggerConvenienceMethods(t *testing.T) {
	reg := New()
	l := reg.GetOrCreate("etl")
	l.SetLevel(LevelDebug)
	buf := attachConsole(t, l, LevelDebug)
	l.SetPropagate(false)

	l.Debug("d")
	l.Info("i")
	l.Warning("w")
	l.Error("e")
	l.Critical("c")

	for _, want := range []string{"DEBUG|d", "INFO|i", "WARNING|w", "ERROR|e", "CRITICAL|c"} {
		assert.Contains(t, buf.String(), want)
	}
}
