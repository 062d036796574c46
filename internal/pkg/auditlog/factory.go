package auditlog

import (
	"fmt"
	"io"
	"os"
)

// JournalOpener открывает журнал аудита для database-sink handler-а.
// Вызывается фабрикой по одному разу на каждый database-sink в
// конфигурации. Учётные данные — забота реализации (обычно окружение),
// в декларативный файл они не попадают.
type JournalOpener func(name string, cfg HandlerConfig) (Journal, error)

// FromConfig строит Registry из валидированной декларативной
// конфигурации: формирует форматтеры, затем sink-и, затем root и
// именованные логгеры. Sink-и разделяются логгерами по имени handler-а:
// два логгера со ссылкой на один handler получают один и тот же
// экземпляр sink-а.
//
// Любая ошибка конфигурации фатальна: частично построенный Registry
// не возвращается, успевшие открыться sink-и закрываются.
func FromConfig(cfg *Config, opts ...Option) (*Registry, error) {
	o := buildOptions(opts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	formatters, err := buildFormatters(cfg.Formatters)
	if err != nil {
		return nil, err
	}

	reg := newRegistry(o)

	sinks, err := buildSinks(cfg.Handlers, formatters, o)
	if err != nil {
		closeSinks(sinks)
		return nil, err
	}

	if err := configureLoggers(reg, cfg, sinks); err != nil {
		closeSinks(sinks)
		return nil, err
	}

	o.diag.Debug("audit registry построен",
		"handlers", len(cfg.Handlers),
		"loggers", len(cfg.Loggers),
	)
	return reg, nil
}

// buildFormatters создаёт форматтеры по объявлениям.
func buildFormatters(cfgs map[string]FormatterConfig) (map[string]Formatter, error) {
	formatters := make(map[string]Formatter, len(cfgs))
	for _, name := range sortedKeys(cfgs) {
		fc := cfgs[name]
		var (
			f   Formatter
			err error
		)
		switch normalizeName(fc.Kind) {
		case FormatterKindJSON:
			f = NewJSONFormatter(fc.DateFormat)
		default:
			f, err = NewPatternFormatter(fc.Format, fc.DateFormat)
		}
		if err != nil {
			return nil, fmt.Errorf("formatter %q: %w", name, err)
		}
		formatters[name] = f
	}
	return formatters, nil
}

// buildSinks создаёт sink-и по объявлениям handler-ов в
// детерминированном порядке имён.
func buildSinks(cfgs map[string]HandlerConfig, formatters map[string]Formatter, o options) (map[string]Sink, error) {
	sinks := make(map[string]Sink, len(cfgs))
	for _, name := range sortedKeys(cfgs) {
		hc := cfgs[name]
		sink, err := buildSink(name, hc, formatters, o)
		if err != nil {
			return sinks, fmt.Errorf("handler %q: %w", name, err)
		}
		sinks[name] = sink
	}
	return sinks, nil
}

func buildSink(name string, hc HandlerConfig, formatters map[string]Formatter, o options) (Sink, error) {
	threshold, err := handlerThreshold(hc.Level)
	if err != nil {
		return nil, err
	}

	formatter, err := resolveFormatter(hc.Formatter, formatters)
	if err != nil {
		return nil, err
	}

	switch hc.Class {
	case ClassConsoleSink:
		stream, err := resolveStream(hc.Stream, o.streams)
		if err != nil {
			return nil, err
		}
		return NewConsoleSink(name, threshold, formatter, stream, o.diag, o.metrics), nil

	case ClassRotatingFileSink:
		return NewRotatingFileSink(name, threshold, formatter, RotatingFileConfig{
			Filename:    hc.Filename,
			MaxBytes:    hc.MaxBytes,
			BackupCount: hc.BackupCount,
			Encoding:    hc.Encoding,
			Truncate:    normalizeName(hc.Mode) == ModeTruncate,
		}, o.diag, o.metrics)

	case ClassDatabaseSink:
		if o.journalOpener == nil {
			return nil, ErrNoJournalOpener
		}
		journal, err := o.journalOpener(name, hc)
		if err != nil {
			return nil, fmt.Errorf("открытие журнала аудита: %w", err)
		}
		return NewDatabaseSink(name, threshold, formatter, journal, o.diag, o.metrics), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandlerClass, hc.Class)
	}
}

// handlerThreshold парсит порог sink-а: пустое значение — DEBUG,
// то есть sink пропускает всё, что пропустил логгер.
func handlerThreshold(level string) (Level, error) {
	if level == "" {
		return LevelDebug, nil
	}
	return ParseLevel(level)
}

func resolveFormatter(ref string, formatters map[string]Formatter) (Formatter, error) {
	if ref == "" {
		return NewPatternFormatter(DefaultPattern, DefaultDateFormat)
	}
	f, ok := formatters[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormatterRef, ref)
	}
	return f, nil
}

func resolveStream(name string, overrides map[string]io.Writer) (io.Writer, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		normalized = StreamStderr
	}
	if w, ok := overrides[normalized]; ok {
		return w, nil
	}
	switch normalized {
	case StreamStdout:
		return os.Stdout, nil
	case StreamStderr:
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, name)
	}
}

// configureLoggers применяет настройки root и именованных логгеров.
// Имена обходятся в сортированном порядке: родители конфигурируются
// раньше потомков.
func configureLoggers(reg *Registry, cfg *Config, sinks map[string]Sink) error {
	rootLevel := LevelInfo
	if cfg.Root.Level != "" {
		var err error
		if rootLevel, err = ParseLevel(cfg.Root.Level); err != nil {
			return fmt.Errorf("root: %w", err)
		}
	}
	reg.root.SetLevel(rootLevel)
	for _, ref := range cfg.Root.Handlers {
		reg.root.AddSink(sinks[ref])
	}

	for _, name := range sortedKeys(cfg.Loggers) {
		lc := cfg.Loggers[name]
		level, err := parseOptionalLevel(lc.Level)
		if err != nil {
			return fmt.Errorf("logger %q: %w", name, err)
		}
		l := reg.GetOrCreate(name)
		l.SetLevel(level)
		l.SetPropagate(lc.Propagate == nil || *lc.Propagate)
		for _, ref := range lc.Handlers {
			l.AddSink(sinks[ref])
		}
	}
	return nil
}

// closeSinks закрывает успевшие открыться sink-и при сбое построения.
func closeSinks(sinks map[string]Sink) {
	for _, s := range sinks {
		if s != nil {
			_ = s.Close()
		}
	}
}
