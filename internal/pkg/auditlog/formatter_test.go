package auditlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord возвращает запись с фиксированным временем для
// детерминированных проверок рендеринга.
func testRecord() *Record {
	return &Record{
		Time:       time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		LoggerName: "etl.export",
		Level:      LevelInfo,
		Message:    "выгрузка завершена",
	}
}

// TestPatternFormatterDefault проверяет рендеринг pattern-ом
// по умолчанию.
func TestPatternFormatterDefault(t *testing.T) {
	f, err := NewPatternFormatter("", "")
	require.NoError(t, err)

	got := f.Format(testRecord())
	assert.Equal(t, "2026-03-14 09:26:53 | etl.export | INFO | выгрузка завершена", got)
}

// TestPatternFormatterCustom проверяет пользовательский pattern
// и формат времени.
func TestPatternFormatterCustom(t *testing.T) {
	f, err := NewPatternFormatter("[{level}] {name}: {message}", time.RFC3339)
	require.NoError(t, err)

	got := f.Format(testRecord())
	assert.Equal(t, "[INFO] etl.export: выгрузка завершена", got)
}

// TestPatternFormatterFields проверяет рендеринг структурированных
// полей: порядок передачи сохраняется, пары разделяются пробелом.
func TestPatternFormatterFields(t *testing.T) {
	f, err := NewPatternFormatter("{message} {fields}", "")
	require.NoError(t, err)

	r := testRecord()
	r.Fields = []Field{
		{Key: "rows", Value: 1200},
		{Key: "table", Value: "invoices"},
		{Key: "err", Value: errors.New("timeout")},
	}
	assert.Equal(t, "выгрузка завершена rows=1200 table=invoices err=timeout", f.Format(r))
}

// TestPatternFormatterUnknownPlaceholder проверяет, что неизвестный
// placeholder отклоняется при компиляции, не при рендеринге.
func TestPatternFormatterUnknownPlaceholder(t *testing.T) {
	_, err := NewPatternFormatter("{time} {module}", "")
	require.ErrorIs(t, err, ErrUnknownPlaceholder)
	assert.Contains(t, err.Error(), "{module}")
}

// TestPatternFormatterUnmatchedBrace проверяет, что скобка без пары —
// литеральный текст, а не ошибка.
func TestPatternFormatterUnmatchedBrace(t *testing.T) {
	f, err := NewPatternFormatter("{message} {unclosed", "")
	require.NoError(t, err)
	assert.Equal(t, "выгрузка завершена {unclosed", f.Format(testRecord()))
}

// TestPatternFormatterStateless проверяет, что повторный рендеринг
// той же записи даёт идентичный результат: форматтер без состояния
// и может разделяться sink-ами.
func TestPatternFormatterStateless(t *testing.T) {
	f, err := NewPatternFormatter("", "")
	require.NoError(t, err)

	r := testRecord()
	first := f.Format(r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Format(r))
	}
}

// TestPatternFormatterPanickingStringer проверяет, что паникующий
// Stringer в значении поля не роняет рендеринг записи.
func TestPatternFormatterPanickingStringer(t *testing.T) {
	f, err := NewPatternFormatter("{message} {fields}", "")
	require.NoError(t, err)

	r := testRecord()
	r.Fields = []Field{{Key: "bad", Value: panickingStringer{}}}
	got := f.Format(r)
	assert.Contains(t, got, "bad=!PANIC(")
}

type panickingStringer struct{}

func (panickingStringer) String() string { panic("stringer сломан") }

// TestPatternFormatterRoundTrip проверяет закон обратимости формата:
// строка, отрендеренная pattern-ом с разделителями, разбирается обратно
// в исходные уровень, имя логгера и сообщение.
func TestPatternFormatterRoundTrip(t *testing.T) {
	f, err := NewPatternFormatter(DefaultPattern, DefaultDateFormat)
	require.NoError(t, err)

	records := []*Record{
		testRecord(),
		{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), LoggerName: "a.b.c", Level: LevelCritical, Message: "сбой этапа load"},
		{Time: time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), LoggerName: "", Level: LevelDebug, Message: "trace"},
	}

	for _, r := range records {
		parts := strings.SplitN(f.Format(r), " | ", 4)
		require.Len(t, parts, 4)

		parsedTime, err := time.Parse(DefaultDateFormat, parts[0])
		require.NoError(t, err)
		assert.True(t, parsedTime.Equal(r.Time.Truncate(time.Second)))

		assert.Equal(t, r.LoggerName, parts[1])

		parsedLevel, err := ParseLevel(parts[2])
		require.NoError(t, err)
		assert.Equal(t, r.Level, parsedLevel)

		assert.Equal(t, r.Message, parts[3])
	}
}

// TestFieldsFromArgs проверяет сборку полей из вариадических
// key-value пар, включая непарный хвост и нестроковый ключ.
func TestFieldsFromArgs(t *testing.T) {
	fields := fieldsFromArgs([]any{"a", 1, 2, "b", "tail"})
	require.Len(t, fields, 3)
	assert.Equal(t, Field{Key: "a", Value: 1}, fields[0])
	assert.Equal(t, Field{Key: "2", Value: "b"}, fields[1])
	assert.Equal(t, Field{Key: "!BADKEY", Value: "tail"}, fields[2])

	assert.Nil(t, fieldsFromArgs(nil))
}
