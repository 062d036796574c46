// Package logging — диагностический канал подсистемы аудита.
// Сюда движок auditlog и CLI пишут СВОИ события (деградация sink-ов,
// fallback решения, lifecycle), никогда не проходя через сам audit
// pipeline: сломанный pipeline не должен лишать нас диагностики.
package logging

// Logger определяет интерфейс структурированного диагностического
// логирования. Основная реализация — SlogAdapter поверх log/slog.
//
// Все методы принимают сообщение и опциональные key-value пары:
//
//	diag.Warn("sink деградировал", "sink", name, "error", err)
//
// ВАЖНО: диагностика пишется только в stderr или файл, никогда в stdout —
// stdout принадлежит выводу CLI.
type Logger interface {
	// Debug записывает сообщение уровня DEBUG.
	Debug(msg string, args ...any)

	// Info записывает сообщение уровня INFO.
	Info(msg string, args ...any)

	// Warn записывает сообщение уровня WARN.
	Warn(msg string, args ...any)

	// Error записывает сообщение уровня ERROR.
	Error(msg string, args ...any)

	// With возвращает новый Logger с добавленными атрибутами,
	// включаемыми во все последующие записи.
	With(args ...any) Logger
}
