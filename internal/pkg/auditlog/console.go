package auditlog

import (
	"fmt"
	"io"
	"sync"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// ConsoleSink пишет отформатированную строку плюс перевод строки
// напрямую в поток (stdout/stderr). Состояния на диске не имеет.
// Ошибка записи (например закрытый поток) — деградация доставки,
// не фатальна для вызывающего логгера.
type ConsoleSink struct {
	sinkCore
	mu     sync.Mutex
	stream io.Writer
	closed bool
}

var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink создаёт ConsoleSink, пишущий в stream.
// diag и metrics допускают nil (заменяются no-op реализациями).
func NewConsoleSink(name string, threshold Level, f Formatter, stream io.Writer, diag logging.Logger, metrics Metrics) *ConsoleSink {
	return &ConsoleSink{
		sinkCore: newSinkCore(name, threshold, f, diag, metrics),
		stream:   stream,
	}
}

// Accept фильтрует по порогу sink-а и пишет строку в поток.
// Конкурентные вызовы сериализуются: строки разных горутин
// не перемешиваются.
func (s *ConsoleSink) Accept(r *Record) (bool, error) {
	if s.belowThreshold(r) {
		return false, nil
	}
	line := s.formatter.Format(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSinkClosed
	}
	if _, err := io.WriteString(s.stream, line+"\n"); err != nil {
		s.reportDegraded("write", err)
		return false, fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
	}
	s.clearDegraded()
	s.metrics.RecordWritten(s.name)
	return true, nil
}

// Close помечает sink закрытым. Сам поток (stdout/stderr) не закрывается —
// sink им не владеет. Идемпотентен.
func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
