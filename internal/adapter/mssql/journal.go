// Package mssql реализует журнал аудита поверх Microsoft SQL Server:
// принятые движком audit записи дописываются в журнальную таблицу.
package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sync"
	"time"

	// blank import для драйвера SQL Server
	_ "github.com/denisenkom/go-mssqldb"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
)

// Коды ошибок адаптера.
const (
	// ErrMSSQLConnect — ошибка подключения к серверу MSSQL
	ErrMSSQLConnect = "MSSQL.CONNECT_FAILED"
	// ErrMSSQLInsert — ошибка добавления записи в журнал
	ErrMSSQLInsert = "MSSQL.INSERT_FAILED"
)

// identRe — допустимая форма имени таблицы/схемы.
// Имя таблицы интерполируется в запрос (параметризовать идентификатор
// нельзя), поэтому валидация обязательна.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile-time проверка реализации порта журнала движка.
var _ auditlog.Journal = (*journal)(nil)

// JournalOptions содержит параметры подключения журнала аудита.
type JournalOptions struct {
	// Server — адрес сервера MSSQL
	Server string
	// Port — порт сервера (по умолчанию 1433)
	Port int
	// User — имя пользователя
	User string
	// Password — пароль пользователя
	Password string
	// Database — имя базы данных журнала
	Database string
	// Table — имя журнальной таблицы (по умолчанию AuditJournal)
	Table string
	// Timeout — таймаут подключения
	Timeout time.Duration
	// Encrypt — использовать TLS шифрование
	Encrypt bool
}

// journal — реализация auditlog.Journal для MSSQL.
// Соединение устанавливается отложенно при первой записи.
type journal struct {
	opts JournalOptions

	mu sync.Mutex
	db *sql.DB
}

// NewJournal создаёт журнал аудита с указанными параметрами.
// Подключение к серверу откладывается до первого Append.
func NewJournal(opts JournalOptions) (auditlog.Journal, error) {
	if opts.Server == "" {
		return nil, fmt.Errorf("%s: server is required", ErrMSSQLConnect)
	}
	if opts.Port == 0 {
		opts.Port = 1433
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("%s: invalid port %d, must be between 1 and 65535", ErrMSSQLConnect, opts.Port)
	}
	if opts.Database == "" {
		return nil, fmt.Errorf("%s: database is required", ErrMSSQLConnect)
	}
	if opts.Table == "" {
		opts.Table = "AuditJournal"
	}
	if !identRe.MatchString(opts.Table) {
		return nil, fmt.Errorf("%s: invalid table name %q", ErrMSSQLInsert, opts.Table)
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &journal{opts: opts}, nil
}

// newJournalWithDB создаёт журнал поверх готового *sql.DB.
// Используется в тестах (sqlmock).
func newJournalWithDB(opts JournalOptions, db *sql.DB) *journal {
	if opts.Table == "" {
		opts.Table = "AuditJournal"
	}
	return &journal{opts: opts, db: db}
}

// connect устанавливает соединение с сервером.
// Вызывать под mutex-ом.
func (j *journal) connect(ctx context.Context) error {
	if j.db != nil {
		return nil
	}

	encryptMode := "true"
	if !j.opts.Encrypt {
		encryptMode = "disable"
	}

	// Экранируем параметры: ; и = имеют особое значение в connection string.
	connString := fmt.Sprintf(
		"server=%s;user id=%s;password=%s;port=%d;database=%s;encrypt=%s;connection timeout=%d",
		escapeConnStringParam(j.opts.Server),
		escapeConnStringParam(j.opts.User),
		escapeConnStringParam(j.opts.Password),
		j.opts.Port,
		escapeConnStringParam(j.opts.Database),
		encryptMode,
		int(j.opts.Timeout.Seconds()),
	)

	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMSSQLConnect, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // best-effort close; важнее исходная ошибка
		if ctx.Err() != nil {
			return fmt.Errorf("%s: context cancelled during ping: %w", ErrMSSQLConnect, ctx.Err())
		}
		return fmt.Errorf("%s: ping failed: %w", ErrMSSQLConnect, err)
	}

	j.db = db
	return nil
}

// Append добавляет одну audit запись в журнальную таблицу.
// Структурированные поля сериализуются в JSON колонку.
func (j *journal) Append(ctx context.Context, r *auditlog.Record, rendered string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.connect(ctx); err != nil {
		return err
	}

	var fieldsJSON sql.NullString
	if len(r.Fields) > 0 {
		m := make(map[string]any, len(r.Fields))
		for _, f := range r.Fields {
			m[f.Key] = f.Value
		}
		if data, err := json.Marshal(m); err == nil {
			fieldsJSON = sql.NullString{String: string(data), Valid: true}
		}
	}

	// Имя таблицы прошло валидацию identRe в NewJournal.
	query := fmt.Sprintf(
		"INSERT INTO [%s] (LoggedAt, LoggerName, Severity, Message, Rendered, Fields) VALUES (@p1, @p2, @p3, @p4, @p5, @p6)",
		j.opts.Table,
	)

	_, err := j.db.ExecContext(ctx, query,
		r.Time,
		r.LoggerName,
		r.Level.String(),
		r.Message,
		rendered,
		fieldsJSON,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMSSQLInsert, err)
	}
	return nil
}

// Close закрывает соединение с сервером. Идемпотентен.
func (j *journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// escapeConnStringParam экранирует параметр connection string.
func escapeConnStringParam(s string) string {
	return url.QueryEscape(s)
}
