// Package auditlog реализует движок структурированного логирования и
// audit trail: иерархию именованных логгеров, маршрутизирующих записи
// через sink-и с независимой фильтрацией по уровню, форматированием
// и (для файловых sink-ов) ротацией по размеру с ограниченным числом
// backup файлов.
//
// Движок — пассивная библиотека: собственного планировщика нет, все
// операции выполняются синхронно на горутине вызывающего. Свои
// внутренние события (деградация sink-а, fallback решения) движок
// никогда не пишет через себя — только в отдельный диагностический
// logging.Logger.
package auditlog

import (
	"fmt"
	"time"
)

// Field — одна пара ключ-значение структурированных полей записи.
// Порядок полей сохраняется в порядке передачи.
type Field struct {
	Key   string
	Value any
}

// Record — неизменяемая запись лога. Создаётся один раз на вызов
// эмиссии, после обработки всеми sink-ами ссылка нигде не удерживается.
type Record struct {
	// Time — момент создания записи.
	Time time.Time

	// LoggerName — dotted имя логгера, через который запись эмитирована.
	LoggerName string

	// Level — уровень серьёзности записи.
	Level Level

	// Message — текст сообщения.
	Message string

	// Fields — опциональные структурированные поля.
	Fields []Field
}

// fieldsFromArgs собирает Field-ы из вариадических key-value пар
// в стиле slog: ("key", value, "key2", value2, ...).
// Непарный хвост и нестроковый ключ не считаются ошибкой — логирование
// не должно падать из-за кривых аргументов, поэтому значение попадает
// в запись под синтетическим ключом.
func fieldsFromArgs(args []any) []Field {
	if len(args) == 0 {
		return nil
	}
	fields := make([]Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields = append(fields, Field{Key: "!BADKEY", Value: args[i]})
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = safeString(args[i])
		}
		fields = append(fields, Field{Key: key, Value: args[i+1]})
	}
	return fields
}

// safeString конвертирует значение поля в строку, не позволяя паникующему
// Stringer или Error уронить всю строку лога. Потеря одного поля
// допустима, потеря записи и каскад в бизнес-логику — нет.
func safeString(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("!PANIC(%v)", r)
		}
	}()
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
