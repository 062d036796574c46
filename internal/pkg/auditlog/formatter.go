package auditlog

import (
	"fmt"
	"strings"
)

// Значения по умолчанию для форматирования.
const (
	// DefaultPattern — формат строки лога по умолчанию.
	DefaultPattern = "{time} | {name} | {level} | {message}"

	// DefaultDateFormat — формат timestamp по умолчанию (Go reference layout).
	DefaultDateFormat = "2006-01-02 15:04:05"
)

// Formatter рендерит запись лога в текстовое представление.
// Реализации stateless и могут разделяться любым числом sink-ов.
// Рендеринг корректной записи никогда не возвращает ошибку:
// проблемные структурированные поля конвертируются защитно (safeString),
// а не роняют всю строку.
type Formatter interface {
	Format(r *Record) string
}

// Распознаваемые placeholder-ы pattern-а.
// Нераспознанный placeholder — ошибка конфигурации, обнаруживаемая
// при создании форматтера, а не при рендеринге.
const (
	phTime    = "time"
	phName    = "name"
	phLevel   = "level"
	phMessage = "message"
	phFields  = "fields"
)

// segment — один компилированный фрагмент pattern-а:
// либо литеральный текст, либо ссылка на placeholder.
type segment struct {
	literal     string
	placeholder string
}

// PatternFormatter рендерит запись по pattern-у с именованными
// placeholder-ами вида {time}, {name}, {level}, {message}, {fields}.
// Pattern компилируется один раз при создании; неизвестные
// placeholder-ы отклоняются сразу (ErrUnknownPlaceholder).
type PatternFormatter struct {
	segments   []segment
	timeLayout string
}

// Compile-time проверка реализации интерфейса.
var _ Formatter = (*PatternFormatter)(nil)

// NewPatternFormatter создаёт PatternFormatter из pattern-а и формата
// timestamp (Go reference layout). Пустой pattern и пустой datefmt
// заменяются значениями по умолчанию.
func NewPatternFormatter(pattern, datefmt string) (*PatternFormatter, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if datefmt == "" {
		datefmt = DefaultDateFormat
	}

	segments, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	return &PatternFormatter{
		segments:   segments,
		timeLayout: datefmt,
	}, nil
}

// compilePattern разбирает pattern в список сегментов.
// Открывающая скобка без закрывающей трактуется как литерал —
// это не конфигурационная ошибка, а просто текст.
func compilePattern(pattern string) ([]segment, error) {
	var segments []segment
	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			break
		}
		name := rest[open+1 : open+closing]
		switch name {
		case phTime, phName, phLevel, phMessage, phFields:
		default:
			return nil, fmt.Errorf("%w: {%s}", ErrUnknownPlaceholder, name)
		}
		if open > 0 {
			segments = append(segments, segment{literal: rest[:open]})
		}
		segments = append(segments, segment{placeholder: name})
		rest = rest[open+closing+1:]
	}
	if rest != "" {
		segments = append(segments, segment{literal: rest})
	}
	return segments, nil
}

// Format подставляет значения записи в компилированный pattern.
func (f *PatternFormatter) Format(r *Record) string {
	var b strings.Builder
	for _, seg := range f.segments {
		if seg.placeholder == "" {
			b.WriteString(seg.literal)
			continue
		}
		switch seg.placeholder {
		case phTime:
			b.WriteString(r.Time.Format(f.timeLayout))
		case phName:
			b.WriteString(r.LoggerName)
		case phLevel:
			b.WriteString(r.Level.String())
		case phMessage:
			b.WriteString(r.Message)
		case phFields:
			writeFields(&b, r.Fields)
		}
	}
	return b.String()
}

// writeFields рендерит структурированные поля как "k=v k2=v2".
func writeFields(b *strings.Builder, fields []Field) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(safeString(f.Value))
	}
}
