package auditlog

import "encoding/json"

// JSONFormatter рендерит запись как однострочный JSON объект:
//
//	{"ts":"...","logger":"etl.export","level":"INFO","msg":"...","fields":{...}}
//
// Используется для машинно-читаемого audit trail; поля с не
// сериализуемыми значениями конвертируются защитно в строку.
type JSONFormatter struct {
	timeLayout string
}

var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter создаёт JSONFormatter с заданным форматом timestamp
// (Go reference layout). Пустой datefmt заменяется DefaultDateFormat.
func NewJSONFormatter(datefmt string) *JSONFormatter {
	if datefmt == "" {
		datefmt = DefaultDateFormat
	}
	return &JSONFormatter{timeLayout: datefmt}
}

// jsonRecord — wire-представление записи.
// Ключи фиксированы и проверяются схемой в тестах.
type jsonRecord struct {
	Timestamp string         `json:"ts"`
	Logger    string         `json:"logger"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Format сериализует запись в JSON. Ошибка сериализации отдельного
// поля не роняет строку: значение заменяется его строковым
// представлением через safeString.
func (f *JSONFormatter) Format(r *Record) string {
	out := jsonRecord{
		Timestamp: r.Time.Format(f.timeLayout),
		Logger:    r.LoggerName,
		Level:     r.Level.String(),
		Message:   r.Message,
	}
	if len(r.Fields) > 0 {
		out.Fields = make(map[string]any, len(r.Fields))
		for _, fld := range r.Fields {
			if isJSONSafe(fld.Value) {
				out.Fields[fld.Key] = fld.Value
			} else {
				out.Fields[fld.Key] = safeString(fld.Value)
			}
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		// Недостижимо для jsonRecord с безопасными полями, но рендеринг
		// не имеет права вернуть пустоту: деградируем до plain text.
		return r.Time.Format(f.timeLayout) + " " + r.Level.String() + " " + r.Message
	}
	return string(data)
}

// isJSONSafe проверяет что значение сериализуется в JSON без ошибки.
// Каналы, функции, NaN и циклические структуры не сериализуются.
func isJSONSafe(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}
