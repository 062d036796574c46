package auditlog

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingMetrics — fake Metrics, считающий события по sink-ам.
type countingMetrics struct {
	written   map[string]int
	dropped   map[string]int
	rotations map[string]int
	writeErrs map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		written:   make(map[string]int),
		dropped:   make(map[string]int),
		rotations: make(map[string]int),
		writeErrs: make(map[string]int),
	}
}

func (m *countingMetrics) RecordWritten(sink string)    { m.written[sink]++ }
func (m *countingMetrics) RecordDropped(sink string)    { m.dropped[sink]++ }
func (m *countingMetrics) RecordRotation(sink string)   { m.rotations[sink]++ }
func (m *countingMetrics) RecordWriteError(sink string) { m.writeErrs[sink]++ }

// TestSinkMetricsWrittenDropped проверяет учёт записанных и
// отброшенных порогом записей.
func TestSinkMetricsWrittenDropped(t *testing.T) {
	m := newCountingMetrics()
	var buf bytes.Buffer
	s := NewConsoleSink("console", LevelWarning, mustPattern(t, "{message}"), &buf, nil, m)

	_, _ = s.Accept(testRecord()) // INFO — отброшена
	r := testRecord()
	r.Level = LevelError
	_, _ = s.Accept(r)

	assert.Equal(t, 1, m.written["console"])
	assert.Equal(t, 1, m.dropped["console"])
}

// TestSinkMetricsWriteError проверяет учёт ошибок записи.
func TestSinkMetricsWriteError(t *testing.T) {
	m := newCountingMetrics()
	s := NewConsoleSink("console", LevelDebug, mustPattern(t, "{message}"), failingWriter{}, nil, m)

	_, _ = s.Accept(testRecord())
	_, _ = s.Accept(testRecord())

	assert.Equal(t, 2, m.writeErrs["console"])
	assert.Equal(t, 0, m.written["console"])
}

// TestSinkMetricsRotation проверяет учёт rollover-ов файлового sink-а.
func TestSinkMetricsRotation(t *testing.T) {
	m := newCountingMetrics()
	path := filepath.Join(t.TempDir(), "audit.log")
	s, err := NewRotatingFileSink("file", LevelDebug, mustPattern(t, "{message}"), RotatingFileConfig{
		Filename:    path,
		MaxBytes:    40,
		BackupCount: 1,
	}, nil, m)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r := testRecord()
		r.Message = strings.Repeat("x", 30)
		_, err := s.Accept(r)
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	assert.Equal(t, 2, m.rotations["file"])
	assert.Equal(t, 3, m.written["file"])
}
