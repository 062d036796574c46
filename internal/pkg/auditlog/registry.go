package auditlog

import (
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// Delimiter — разделитель сегментов в dotted имени логгера.
const Delimiter = "."

// Registry — иерархия логгеров процесса, ключованная dotted именем,
// с выделенным root логгером (имя ""). Явная структура вместо
// ambient глобального состояния: передаётся по ссылке коду, которому
// нужно разрешение логгеров, инициализация и teardown документированы
// (New/FromConfig и Close).
//
// Инвариант: у каждого не-root логгера ровно один разрешимый родитель
// (longest-prefix по сегментам имени, с откатом к root); граф — дерево.
// GetOrCreate безопасен при конкурентном первом обращении к одному
// имени: на имя создаётся не более одного узла.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	root    *Logger

	diag       logging.Logger
	lastResort Sink
	closed     bool
}

// options — настройки построения Registry.
type options struct {
	diag          logging.Logger
	metrics       Metrics
	journalOpener JournalOpener
	streams       map[string]io.Writer
}

// Option настраивает Registry при создании.
type Option func(*options)

// WithDiagnostics задаёт диагностический логгер движка — канал, куда
// движок сообщает о собственных проблемах (деградация sink-ов,
// fallback решения). По умолчанию no-op.
func WithDiagnostics(diag logging.Logger) Option {
	return func(o *options) { o.diag = diag }
}

// WithMetrics задаёт коллектор метрик движка. По умолчанию NopMetrics.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithJournalOpener задаёт способ открытия журнала аудита для
// database-sink handler-ов. Без него конфигурация с database-sink
// отклоняется (ErrNoJournalOpener).
func WithJournalOpener(open JournalOpener) Option {
	return func(o *options) { o.journalOpener = open }
}

// WithStream переопределяет поток console sink-ов с данным именем
// ("stdout"/"stderr"). Используется в тестах для перехвата вывода.
func WithStream(name string, w io.Writer) Option {
	return func(o *options) {
		if o.streams == nil {
			o.streams = make(map[string]io.Writer)
		}
		o.streams[normalizeName(name)] = w
	}
}

func buildOptions(opts []Option) options {
	o := options{
		diag:    logging.NewNopLogger(),
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New создаёт Registry с root логгером по умолчанию: уровень INFO,
// без sink-ов. Записи root при этом не теряются — их подхватывает
// last-resort sink (stderr, порог WARNING).
func New(opts ...Option) *Registry {
	return newRegistry(buildOptions(opts))
}

func newRegistry(o options) *Registry {
	reg := &Registry{
		loggers: make(map[string]*Logger),
		diag:    o.diag,
	}
	reg.root = &Logger{
		name:     "",
		level:    LevelInfo,
		registry: reg,
	}
	reg.lastResort = newLastResortSink(o.diag)
	return reg
}

// newLastResortSink создаёт stderr sink последней надежды: порог
// WARNING, формат по умолчанию. Ошибки его конструирования невозможны
// (pattern — компилируемая константа).
func newLastResortSink(diag logging.Logger) Sink {
	f, err := NewPatternFormatter(DefaultPattern, DefaultDateFormat)
	if err != nil {
		panic("auditlog: default pattern must compile: " + err.Error())
	}
	return NewConsoleSink("last-resort", LevelWarning, f, os.Stderr, diag, NopMetrics{})
}

// Root возвращает root логгер.
func (reg *Registry) Root() *Logger {
	return reg.root
}

// GetOrCreate разрешает логгер по dotted имени, создавая недостающие
// промежуточные узлы. Созданный узел получает уровень LevelNotSet
// (наследование), propagate=true, пустой список sink-ов и родителем —
// ближайший существующий префикс (промежуточные узлы материализуются,
// так что это всегда непосредственный префикс). Пустое имя — root.
func (reg *Registry) GetOrCreate(name string) *Logger {
	if name == "" {
		return reg.root
	}

	reg.mu.RLock()
	if l, ok := reg.loggers[name]; ok {
		reg.mu.RUnlock()
		return l
	}
	reg.mu.RUnlock()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	// Recheck под write-lock: конкурентная горутина могла создать узел.
	if l, ok := reg.loggers[name]; ok {
		return l
	}

	parent := reg.root
	segments := strings.Split(name, Delimiter)
	prefix := ""
	for _, seg := range segments {
		if prefix == "" {
			prefix = seg
		} else {
			prefix = prefix + Delimiter + seg
		}
		node, ok := reg.loggers[prefix]
		if !ok {
			node = &Logger{
				name:      prefix,
				level:     LevelNotSet,
				propagate: true,
				parent:    parent,
				registry:  reg,
			}
			reg.loggers[prefix] = node
		}
		parent = node
	}
	return parent
}

// Names возвращает отсортированные имена всех явных логгеров (без root).
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.loggers))
	for name := range reg.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close закрывает все sink-и реестра, каждый ровно один раз даже если
// он разделяется несколькими логгерами. Идемпотентен. Ошибки закрытия
// отдельных sink-ов агрегируются, не прерывая teardown остальных.
func (reg *Registry) Close() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.closed {
		return nil
	}
	reg.closed = true

	seen := make(map[Sink]struct{})
	var errs []error
	closeAll := func(l *Logger) {
		for _, s := range l.sinks {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	closeAll(reg.root)
	for _, l := range reg.loggers {
		closeAll(l)
	}
	if err := reg.lastResort.Close(); err != nil {
		errs = append(errs, err)
	}
	reg.diag.Debug("audit registry закрыт", "sinks", len(seen), "errors", len(errs))
	return errors.Join(errs...)
}
