package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/encoding"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// RotatingFileConfig содержит параметры rotating file sink-а.
type RotatingFileConfig struct {
	// Filename — путь к активному файлу лога.
	Filename string

	// MaxBytes — порог ротации в байтах. 0 отключает ротацию.
	MaxBytes int64

	// BackupCount — число хранимых backup файлов (суффиксы .1...N,
	// 1 — самый свежий). 0 отключает хранение: rollover просто
	// truncate-ит активный файл.
	BackupCount int

	// Encoding — имя текстовой кодировки записываемых байт.
	// Пустое значение и "utf-8" — passthrough.
	Encoding string

	// Truncate — открыть активный файл в режиме truncate вместо append.
	Truncate bool
}

// RotatingFileSink — файловый sink с ротацией по размеру.
//
// State machine над одной логической идентичностью файла с ограниченным
// набором исторических backup-ов .1...N. Перед записью, которая
// превысила бы MaxBytes при непустом активном файле, выполняется
// rollover: закрыть активный файл, удалить backup .N, сдвинуть
// .i → .(i+1) для i = N-1..1, переименовать активный файл в .1,
// открыть свежий активный файл.
//
// Один mutex охраняет {проверка размера, запись, rollover}: конкурентные
// Accept не перемешивают байты, rollover взаимоисключён с записью.
//
// Цепочка rename принципиально неатомарна на уровне файловой системы:
// крэш посреди rollover может оставить максимум один дублирующий или
// отсутствующий backup. Сбой любого шага абортирует только текущий шаг
// (уже зафиксированные backup-ы не трогаются), sink переходит в degraded
// и при следующей записи пересоздаёт активный файл, если тот исчез.
type RotatingFileSink struct {
	sinkCore
	cfg RotatingFileConfig
	enc encoding.Encoding

	mu     sync.Mutex
	file   *os.File
	size   int64
	closed bool
}

var _ Sink = (*RotatingFileSink)(nil)

// NewRotatingFileSink создаёт sink и открывает активный файл.
// Директория файла создаётся при отсутствии. Все конфигурационные
// ошибки (пустой путь, отрицательные значения, неизвестная кодировка)
// возвращаются сразу — невалидный sink не создаётся.
func NewRotatingFileSink(name string, threshold Level, f Formatter, cfg RotatingFileConfig, diag logging.Logger, metrics Metrics) (*RotatingFileSink, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("%w (sink %q)", ErrFilenameRequired, name)
	}
	if cfg.MaxBytes < 0 {
		return nil, fmt.Errorf("%w (sink %q): %d", ErrNegativeMaxBytes, name, cfg.MaxBytes)
	}
	if cfg.BackupCount < 0 {
		return nil, fmt.Errorf("%w (sink %q): %d", ErrNegativeBackupCount, name, cfg.BackupCount)
	}
	enc, err := resolveEncoding(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w (sink %q)", err, name)
	}

	if dir := filepath.Dir(cfg.Filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("auditlog: создание директории логов %q: %w", dir, err)
		}
	}

	s := &RotatingFileSink{
		sinkCore: newSinkCore(name, threshold, f, diag, metrics),
		cfg:      cfg,
		enc:      enc,
	}
	if err := s.openActive(cfg.Truncate); err != nil {
		return nil, err
	}
	return s, nil
}

// Accept рендерит запись, кодирует байты сконфигурированной кодировкой
// и дописывает их в активный файл, выполнив rollover если запись
// превысила бы MaxBytes. Запись крупнее MaxBytes сама по себе пишется
// целиком после rollover-а (без разрезания): активному файлу разрешено
// превысить порог на одну такую запись.
//
// Сбой rollover-а не теряет запись: sink переоткрывает активный файл
// в append режиме, пишет запись и возвращает ошибку для наблюдаемости.
func (s *RotatingFileSink) Accept(r *Record) (bool, error) {
	if s.belowThreshold(r) {
		return false, nil
	}
	data := []byte(s.formatter.Format(r) + "\n")
	if s.enc != nil {
		encoded, err := newEncoder(s.enc).Bytes(data)
		if err == nil {
			data = encoded
		}
		// Ошибка кодирования с ReplaceUnsupported практически недостижима;
		// на всякий случай пишем исходные UTF-8 байты, а не теряем запись.
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSinkClosed
	}
	if err := s.ensureOpen(); err != nil {
		s.reportDegraded("open", err)
		return false, fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
	}

	var rollErr error
	if s.cfg.MaxBytes > 0 && s.size > 0 && s.size+int64(len(data)) > s.cfg.MaxBytes {
		if rollErr = s.rollover(); rollErr != nil {
			s.reportDegraded("rollover", rollErr)
			// Пишем дальше в то, что удалось открыть (degraded-but-recoverable).
			if err := s.ensureOpen(); err != nil {
				return false, fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
			}
		}
	}

	n, err := s.file.Write(data)
	s.size += int64(n)
	if err != nil {
		s.reportDegraded("write", err)
		return false, fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
	}
	if rollErr == nil {
		s.clearDegraded()
	}
	s.metrics.RecordWritten(s.name)
	return true, rollErr
}

// Rotate принудительно выполняет rollover вне зависимости от размера.
// Применяется операционно (logrotate-style сигналы, тесты).
func (s *RotatingFileSink) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if err := s.rollover(); err != nil {
		s.reportDegraded("rollover", err)
		return err
	}
	return nil
}

// Close сбрасывает и закрывает активный файл. Идемпотентен.
func (s *RotatingFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeFile()
}

// ensureOpen гарантирует открытый активный файл: после сбойного
// rollover-а или внешнего удаления файл пересоздаётся, а не падает.
// Вызывать под mutex-ом.
func (s *RotatingFileSink) ensureOpen() error {
	if s.file != nil {
		return nil
	}
	return s.openActive(false)
}

// openActive открывает активный файл и инициализирует счётчик размера.
// Вызывать под mutex-ом (или до публикации sink-а).
func (s *RotatingFileSink) openActive(truncate bool) error {
	flags := os.O_WRONLY | os.O_CREATE
	if truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(s.cfg.Filename, flags, 0640)
	if err != nil {
		return fmt.Errorf("auditlog: открытие файла %q: %w", s.cfg.Filename, err)
	}
	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	s.file = f
	s.size = size
	return nil
}

// closeFile закрывает активный handle если он открыт.
// Вызывать под mutex-ом.
func (s *RotatingFileSink) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.size = 0
	return err
}

// backupPath возвращает путь backup файла с индексом i (1 — самый свежий).
func (s *RotatingFileSink) backupPath(i int) string {
	return fmt.Sprintf("%s.%d", s.cfg.Filename, i)
}

// rollover выполняет цепочку ротации. При BackupCount=0 цепочка
// rename пропускается: активный файл просто truncate-ится, прежнее
// содержимое отбрасывается. Ошибка на любом шаге абортирует цепочку
// до деструктивных rename следующих шагов; уже завершённые шаги
// не откатываются (rollback невозможен на уровне ФС).
// Вызывать под mutex-ом.
func (s *RotatingFileSink) rollover() error {
	if err := s.closeFile(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrRolloverFailed, err)
	}

	if s.cfg.BackupCount > 0 {
		// Вытеснить самый старый backup (FIFO retention).
		oldest := s.backupPath(s.cfg.BackupCount)
		if _, err := os.Stat(oldest); err == nil {
			if err := os.Remove(oldest); err != nil {
				return fmt.Errorf("%w: evict %s: %w", ErrRolloverFailed, oldest, err)
			}
		}

		// Сдвинуть backup-ы: .i → .(i+1), от старых к новым.
		for i := s.cfg.BackupCount - 1; i >= 1; i-- {
			src := s.backupPath(i)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			if err := os.Rename(src, s.backupPath(i+1)); err != nil {
				return fmt.Errorf("%w: shift %s: %w", ErrRolloverFailed, src, err)
			}
		}

		// Активный файл становится backup .1. Отсутствие активного файла
		// (внешнее удаление) — не ошибка: просто нечего переименовывать.
		if _, err := os.Stat(s.cfg.Filename); err == nil {
			if err := os.Rename(s.cfg.Filename, s.backupPath(1)); err != nil {
				return fmt.Errorf("%w: rename active: %w", ErrRolloverFailed, err)
			}
		}
	}

	if err := s.openActive(true); err != nil {
		return fmt.Errorf("%w: reopen: %w", ErrRolloverFailed, err)
	}
	s.metrics.RecordRotation(s.name)
	return nil
}
