package auditlog

import (
	"fmt"
	"sort"
)

// Классы sink-ов, распознаваемые в декларативной конфигурации.
const (
	ClassConsoleSink      = "console-sink"
	ClassRotatingFileSink = "rotating-file-sink"
	ClassDatabaseSink     = "database-sink"
)

// Виды форматтеров.
const (
	FormatterKindPattern = "pattern"
	FormatterKindJSON    = "json"
)

// Режимы открытия файла rotating sink-а.
const (
	ModeAppend   = "append"
	ModeTruncate = "truncate"
)

// Имена потоков console sink-а.
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

// Config — декларативная конфигурация подсистемы логирования:
// именованные форматтеры, handler-ы (sink-и) и логгеры плюс root.
// Загружается из YAML/JSON файла (internal/config), env-переопределения
// применяются через cleanenv теги.
type Config struct {
	// Formatters — объявления форматтеров по имени.
	Formatters map[string]FormatterConfig `yaml:"formatters" json:"formatters"`

	// Handlers — объявления sink-ов по имени.
	Handlers map[string]HandlerConfig `yaml:"handlers" json:"handlers"`

	// Loggers — настройки именованных логгеров по dotted имени.
	Loggers map[string]LoggerConfig `yaml:"loggers" json:"loggers"`

	// Root — настройки root логгера, вершина иерархии.
	Root RootConfig `yaml:"root" json:"root"`
}

// FormatterConfig — объявление одного форматтера.
type FormatterConfig struct {
	// Kind — вид форматтера: "pattern" (по умолчанию) или "json".
	Kind string `yaml:"kind" json:"kind"`

	// Format — pattern строка с placeholder-ами
	// {time}, {name}, {level}, {message}, {fields}.
	// Для kind=json игнорируется.
	Format string `yaml:"format" json:"format"`

	// DateFormat — формат timestamp (Go reference layout).
	DateFormat string `yaml:"datefmt" json:"datefmt"`
}

// HandlerConfig — объявление одного sink-а.
// Поля за пределами общих интерпретируются по классу.
type HandlerConfig struct {
	// Class — класс sink-а: console-sink, rotating-file-sink, database-sink.
	Class string `yaml:"class" json:"class"`

	// Level — порог sink-а. Пустое значение — DEBUG (пропускать всё).
	Level string `yaml:"level" json:"level"`

	// Formatter — ссылка на объявленный форматтер.
	// Пустое значение — форматтер по умолчанию (pattern + DefaultPattern).
	Formatter string `yaml:"formatter" json:"formatter"`

	// Stream — поток console sink-а: stdout или stderr (по умолчанию stderr).
	Stream string `yaml:"stream" json:"stream"`

	// Filename — путь активного файла rotating sink-а.
	Filename string `yaml:"filename" json:"filename"`

	// Mode — режим открытия: append (по умолчанию) или truncate.
	Mode string `yaml:"mode" json:"mode"`

	// MaxBytes — порог ротации в байтах; 0 отключает ротацию.
	MaxBytes int64 `yaml:"maxBytes" json:"maxBytes"`

	// BackupCount — число backup файлов; 0 отключает хранение.
	BackupCount int `yaml:"backupCount" json:"backupCount"`

	// Encoding — имя текстовой кодировки (utf-8, cp1251, ...).
	Encoding string `yaml:"encoding" json:"encoding"`

	// Server, Port, Database, Table — параметры database-sink.
	// Учётные данные в конфигурационный файл не кладутся:
	// journal opener берёт их из окружения.
	Server   string `yaml:"server" json:"server"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	Table    string `yaml:"table" json:"table"`
}

// LoggerConfig — настройки именованного логгера.
type LoggerConfig struct {
	// Level — собственный уровень; пустое значение — наследование от предка.
	Level string `yaml:"level" json:"level"`

	// Handlers — упорядоченные ссылки на объявленные handler-ы.
	Handlers []string `yaml:"handlers" json:"handlers"`

	// Propagate — продолжать ли dispatch к родителю.
	// nil трактуется как true.
	Propagate *bool `yaml:"propagate" json:"propagate"`
}

// RootConfig — настройки root логгера.
type RootConfig struct {
	// Level — уровень root; пустое значение — INFO.
	Level string `yaml:"level" json:"level" env:"ETL_LOG_ROOT_LEVEL"`

	// Handlers — упорядоченные ссылки на объявленные handler-ы.
	Handlers []string `yaml:"handlers" json:"handlers"`
}

// Validate проверяет конфигурацию целиком: неизвестные классы и имена,
// висящие ссылки, отрицательные числовые значения, нераспознанные
// уровни, placeholder-ы, кодировки и потоки. Все ошибки конфигурации
// фатальны на этапе загрузки — в рантайм они не доживают.
func (c *Config) Validate() error {
	for _, name := range sortedKeys(c.Formatters) {
		fc := c.Formatters[name]
		if err := fc.validate(); err != nil {
			return fmt.Errorf("formatter %q: %w", name, err)
		}
	}

	for _, name := range sortedKeys(c.Handlers) {
		hc := c.Handlers[name]
		if err := hc.validate(c.Formatters); err != nil {
			return fmt.Errorf("handler %q: %w", name, err)
		}
	}

	for _, name := range sortedKeys(c.Loggers) {
		lc := c.Loggers[name]
		if _, err := parseOptionalLevel(lc.Level); err != nil {
			return fmt.Errorf("logger %q: %w", name, err)
		}
		for _, ref := range lc.Handlers {
			if _, ok := c.Handlers[ref]; !ok {
				return fmt.Errorf("logger %q: %w: %q", name, ErrUnknownHandlerRef, ref)
			}
		}
	}

	if _, err := parseOptionalLevel(c.Root.Level); err != nil {
		return fmt.Errorf("root: %w", err)
	}
	for _, ref := range c.Root.Handlers {
		if _, ok := c.Handlers[ref]; !ok {
			return fmt.Errorf("root: %w: %q", ErrUnknownHandlerRef, ref)
		}
	}
	return nil
}

func (fc FormatterConfig) validate() error {
	switch normalizeName(fc.Kind) {
	case "", FormatterKindPattern:
		_, err := compilePattern(orDefault(fc.Format, DefaultPattern))
		return err
	case FormatterKindJSON:
		return nil
	default:
		return fmt.Errorf("auditlog: unknown formatter kind %q", fc.Kind)
	}
}

func (hc HandlerConfig) validate(formatters map[string]FormatterConfig) error {
	if _, err := parseOptionalLevel(hc.Level); err != nil {
		return err
	}
	if hc.Formatter != "" {
		if _, ok := formatters[hc.Formatter]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFormatterRef, hc.Formatter)
		}
	}

	switch hc.Class {
	case ClassConsoleSink:
		switch normalizeName(hc.Stream) {
		case "", StreamStdout, StreamStderr:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownStream, hc.Stream)
		}
	case ClassRotatingFileSink:
		if hc.Filename == "" {
			return ErrFilenameRequired
		}
		if hc.MaxBytes < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeMaxBytes, hc.MaxBytes)
		}
		if hc.BackupCount < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeBackupCount, hc.BackupCount)
		}
		switch normalizeName(hc.Mode) {
		case "", ModeAppend, ModeTruncate:
		default:
			return fmt.Errorf("auditlog: unknown open mode %q (expected append or truncate)", hc.Mode)
		}
		if _, err := resolveEncoding(hc.Encoding); err != nil {
			return err
		}
	case ClassDatabaseSink:
		if hc.Table == "" {
			return fmt.Errorf("auditlog: table is required for database-sink")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHandlerClass, hc.Class)
	}
	return nil
}

// sortedKeys итерирует map в детерминированном порядке имён —
// порядок обхода map в Go случаен, а сообщения об ошибках и порядок
// построения должны быть воспроизводимы.
func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
