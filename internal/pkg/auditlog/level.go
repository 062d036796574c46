package auditlog

import "fmt"

// Level определяет уровень серьёзности записи лога.
// Числовые значения совместимы с уровнями классической иерархии
// DEBUG < INFO < WARNING < ERROR < CRITICAL, шаг 10 оставлен
// для возможных промежуточных уровней в будущем.
type Level int

// Поддерживаемые уровни логирования.
const (
	// LevelNotSet — уровень не задан явно; логгер с таким уровнем
	// наследует эффективный уровень от ближайшего предка.
	// Недопустим для sink-ов и root логгера.
	LevelNotSet Level = 0

	// LevelDebug — детальная диагностика.
	LevelDebug Level = 10

	// LevelInfo — значимые события (старт/стоп, успешные операции).
	LevelInfo Level = 20

	// LevelWarning — recoverable issues, deprecated usage.
	LevelWarning Level = 30

	// LevelError — ошибки требующие внимания.
	LevelError Level = 40

	// LevelCritical — фатальные ошибки бизнес-логики.
	LevelCritical Level = 50
)

// String возвращает каноническое имя уровня (DEBUG, INFO, WARNING, ERROR, CRITICAL).
func (l Level) String() string {
	switch l {
	case LevelNotSet:
		return "NOTSET"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel конвертирует строковое имя уровня в Level.
// Принимает канонические имена в любом регистре плюс алиас "warn".
// Неизвестное имя — ошибка конфигурации (ErrUnknownLevel),
// обнаруживается на этапе загрузки, не в рантайме.
func ParseLevel(name string) (Level, error) {
	switch normalizeName(name) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	default:
		return LevelNotSet, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// parseOptionalLevel парсит уровень логгера: пустая строка означает LevelNotSet
// (наследование от предка), всё остальное — как ParseLevel.
func parseOptionalLevel(name string) (Level, error) {
	if name == "" {
		return LevelNotSet, nil
	}
	return ParseLevel(name)
}
