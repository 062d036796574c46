package auditlog

import "errors"

// Ошибки валидации конфигурации.
// Любая из них фатальна на этапе загрузки: движок с невалидной
// конфигурацией не создаётся.
var (
	// ErrUnknownLevel — неизвестное имя уровня логирования.
	ErrUnknownLevel = errors.New("auditlog: unknown severity level")

	// ErrUnknownHandlerClass — неизвестный класс sink-а в конфигурации.
	ErrUnknownHandlerClass = errors.New("auditlog: unknown handler class")

	// ErrUnknownFormatterRef — handler ссылается на необъявленный formatter.
	ErrUnknownFormatterRef = errors.New("auditlog: handler references undeclared formatter")

	// ErrUnknownHandlerRef — logger ссылается на необъявленный handler.
	ErrUnknownHandlerRef = errors.New("auditlog: logger references undeclared handler")

	// ErrUnknownPlaceholder — pattern содержит нераспознанный placeholder.
	ErrUnknownPlaceholder = errors.New("auditlog: unknown placeholder in format pattern")

	// ErrUnknownEncoding — неизвестное имя кодировки текста.
	ErrUnknownEncoding = errors.New("auditlog: unknown text encoding")

	// ErrUnknownStream — неизвестное имя потока вывода console sink-а.
	ErrUnknownStream = errors.New("auditlog: unknown console stream (expected stdout or stderr)")

	// ErrNegativeMaxBytes — отрицательный порог ротации.
	ErrNegativeMaxBytes = errors.New("auditlog: maxBytes must be non-negative")

	// ErrNegativeBackupCount — отрицательное число backup файлов.
	ErrNegativeBackupCount = errors.New("auditlog: backupCount must be non-negative")

	// ErrFilenameRequired — не указан путь к файлу rotating sink-а.
	ErrFilenameRequired = errors.New("auditlog: filename is required for rotating-file-sink")

	// ErrNoJournalOpener — конфигурация содержит database-sink,
	// но способ открытия журнала не задан (см. WithJournalOpener).
	ErrNoJournalOpener = errors.New("auditlog: database-sink configured but no journal opener provided")
)

// Ошибки рантайма. Наружу к бизнес-коду они не распространяются:
// Logger проглатывает их на границе sink-а, sink помечается degraded
// и однократно сообщает об этом в диагностический лог.
var (
	// ErrSinkClosed — запись в уже закрытый sink.
	ErrSinkClosed = errors.New("auditlog: sink is closed")

	// ErrWriteFailed — ошибка ввода-вывода при записи рендеренной записи.
	ErrWriteFailed = errors.New("auditlog: write failed")

	// ErrRolloverFailed — ошибка в цепочке rename/evict при ротации.
	// Уже зафиксированные backup файлы при этом не затрагиваются,
	// абортируется только текущий шаг.
	ErrRolloverFailed = errors.New("auditlog: rollover failed")
)
