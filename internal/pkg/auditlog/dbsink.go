package auditlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// defaultJournalTimeout — предел ожидания одной записи в журнал.
// Подвисшая БД не должна бесконечно блокировать эмитирующую горутину.
const defaultJournalTimeout = 10 * time.Second

// Journal — узкий порт для добавления audit записей в постоянное
// хранилище. Production реализация — MSSQL адаптер
// (internal/adapter/mssql); тесты подставляют fake или sqlmock.
type Journal interface {
	// Append добавляет одну запись журнала аудита.
	Append(ctx context.Context, r *Record, rendered string) error

	// Close освобождает соединение. Идемпотентен.
	Close() error
}

// DatabaseSink пишет принятые записи в журнал аудита в БД.
// Семантика сбоев та же, что у остальных sink-ов: ошибка Append
// деградирует sink, однократно попадает в диагностику и не
// распространяется в бизнес-код.
type DatabaseSink struct {
	sinkCore
	journal Journal
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

var _ Sink = (*DatabaseSink)(nil)

// NewDatabaseSink создаёт DatabaseSink поверх готового журнала.
func NewDatabaseSink(name string, threshold Level, f Formatter, journal Journal, diag logging.Logger, metrics Metrics) *DatabaseSink {
	return &DatabaseSink{
		sinkCore: newSinkCore(name, threshold, f, diag, metrics),
		journal:  journal,
		timeout:  defaultJournalTimeout,
	}
}

// Accept фильтрует по порогу sink-а и добавляет запись в журнал.
func (s *DatabaseSink) Accept(r *Record) (bool, error) {
	if s.belowThreshold(r) {
		return false, nil
	}
	rendered := s.formatter.Format(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSinkClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.journal.Append(ctx, r, rendered); err != nil {
		s.reportDegraded("append", err)
		return false, fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
	}
	s.clearDegraded()
	s.metrics.RecordWritten(s.name)
	return true, nil
}

// Close закрывает журнал. Идемпотентен.
func (s *DatabaseSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.journal.Close()
}
