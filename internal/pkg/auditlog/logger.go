package auditlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger — именованный узел иерархии логгеров.
//
// Уровень опционален: LevelNotSet означает наследование эффективного
// уровня от ближайшего предка, который задал свой уровень явно
// (root всегда задаёт). Список sink-ов — ссылки, не владение: один sink
// может быть подключён к нескольким логгерам.
//
// Поля узла считаются неизменяемыми после построения конфигурации;
// сеттеры предназначены для фазы настройки, не для конкурентной
// мутации во время логирования.
type Logger struct {
	name      string
	level     Level
	sinks     []Sink
	propagate bool
	parent    *Logger
	registry  *Registry
}

// Name возвращает dotted имя логгера ("" для root).
func (l *Logger) Name() string { return l.name }

// Level возвращает собственный уровень логгера (LevelNotSet — не задан).
func (l *Logger) Level() Level { return l.level }

// SetLevel задаёт собственный уровень логгера.
func (l *Logger) SetLevel(level Level) { l.level = level }

// Propagate сообщает, продолжается ли dispatch этого логгера к его родителю.
func (l *Logger) Propagate() bool { return l.propagate }

// SetPropagate управляет продолжением dispatch к родителю.
// Флаг узла контролирует только переход от ЭТОГО узла к ЕГО родителю;
// каждый следующий узел цепочки проверяет свой флаг сам.
func (l *Logger) SetPropagate(propagate bool) { l.propagate = propagate }

// AddSink подключает sink к логгеру. Порядок подключения сохраняется.
func (l *Logger) AddSink(s Sink) { l.sinks = append(l.sinks, s) }

// Sinks возвращает копию списка собственных sink-ов логгера.
func (l *Logger) Sinks() []Sink {
	out := make([]Sink, len(l.sinks))
	copy(out, l.sinks)
	return out
}

// EffectiveLevel разрешает эффективный порог: собственный уровень, либо
// уровень ближайшего предка с явным уровнем. Root задаёт пол по умолчанию.
func (l *Logger) EffectiveLevel() Level {
	for cur := l; cur != nil; cur = cur.parent {
		if cur.level != LevelNotSet {
			return cur.level
		}
	}
	// Недостижимо при построении через Registry: root всегда задаёт уровень.
	return LevelWarning
}

// Enabled сообщает, пройдёт ли запись уровня level порог логгера.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.EffectiveLevel()
}

// Log эмитирует запись с уровнем level и key-value полями args.
// Запись ниже эффективного порога — no-op без обращения к sink-ам.
func (l *Logger) Log(level Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.emit(&Record{
		Time:       time.Now(),
		LoggerName: l.name,
		Level:      level,
		Message:    msg,
		Fields:     fieldsFromArgs(args),
	})
}

// LogCtx — как Log, но обогащает запись полями trace_id/span_id,
// если ctx несёт валидный OpenTelemetry span context.
func (l *Logger) LogCtx(ctx context.Context, level Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	fields := fieldsFromArgs(args)
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, Field{Key: "trace_id", Value: sc.TraceID().String()})
		if sc.HasSpanID() {
			fields = append(fields, Field{Key: "span_id", Value: sc.SpanID().String()})
		}
	}
	l.emit(&Record{
		Time:       time.Now(),
		LoggerName: l.name,
		Level:      level,
		Message:    msg,
		Fields:     fields,
	})
}

// Debug эмитирует запись уровня DEBUG.
func (l *Logger) Debug(msg string, args ...any) { l.Log(LevelDebug, msg, args...) }

// Info эмитирует запись уровня INFO.
func (l *Logger) Info(msg string, args ...any) { l.Log(LevelInfo, msg, args...) }

// Warning эмитирует запись уровня WARNING.
func (l *Logger) Warning(msg string, args ...any) { l.Log(LevelWarning, msg, args...) }

// Error эмитирует запись уровня ERROR.
func (l *Logger) Error(msg string, args ...any) { l.Log(LevelError, msg, args...) }

// Critical эмитирует запись уровня CRITICAL.
func (l *Logger) Critical(msg string, args ...any) { l.Log(LevelCritical, msg, args...) }

// emit раздаёт принятую запись по sink-ам: сначала собственным, затем —
// пока флаг propagate текущего узла разрешает — sink-ам предков вплоть
// до root. Ошибки sink-ов проглатываются на этой границе: логирование
// не имеет права уронить или заблокировать эмитирующую бизнес-логику.
//
// Если во всей цепочке не встретился ни один sink, запись уходит в
// last-resort sink реестра (stderr, порог WARNING) — dispatch последней
// надежды, чтобы не терять ошибки молча при пустой конфигурации.
func (l *Logger) emit(r *Record) {
	dispatched := 0
	for cur := l; cur != nil; cur = cur.parent {
		for _, s := range cur.sinks {
			dispatched++
			// written/err учтены sink-ом в метриках и диагностике.
			_, _ = s.Accept(r)
		}
		if !cur.propagate {
			break
		}
	}
	if dispatched == 0 && l.registry != nil && l.registry.lastResort != nil {
		_, _ = l.registry.lastResort.Accept(r)
	}
}
