package auditlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJournal — in-memory реализация Journal для тестов sink-а.
type fakeJournal struct {
	appended  []string
	appendErr error
	closes    int
}

func (j *fakeJournal) Append(_ context.Context, _ *Record, rendered string) error {
	if j.appendErr != nil {
		return j.appendErr
	}
	j.appended = append(j.appended, rendered)
	return nil
}

func (j *fakeJournal) Close() error {
	j.closes++
	return nil
}

// TestDatabaseSinkAppend проверяет запись отрендеренной строки в журнал.
func TestDatabaseSinkAppend(t *testing.T) {
	journal := &fakeJournal{}
	s := NewDatabaseSink("db", LevelDebug, mustPattern(t, "{level} {message}"), journal, nil, nil)

	written, err := s.Accept(testRecord())
	require.NoError(t, err)
	assert.True(t, written)
	require.Len(t, journal.appended, 1)
	assert.Equal(t, "INFO выгрузка завершена", journal.appended[0])
}

// TestDatabaseSinkThreshold проверяет порог sink-а: запись ниже
// порога не доходит до журнала.
func TestDatabaseSinkThreshold(t *testing.T) {
	journal := &fakeJournal{}
	s := NewDatabaseSink("db", LevelError, mustPattern(t, "{message}"), journal, nil, nil)

	written, err := s.Accept(testRecord()) // INFO < ERROR
	require.NoError(t, err)
	assert.False(t, written)
	assert.Empty(t, journal.appended)
}

// TestDatabaseSinkAppendFailure проверяет деградацию при сбое журнала:
// ошибка обёрнута в ErrWriteFailed, sink продолжает принимать вызовы.
func TestDatabaseSinkAppendFailure(t *testing.T) {
	journal := &fakeJournal{appendErr: errors.New("connection reset")}
	s := NewDatabaseSink("db", LevelDebug, mustPattern(t, "{message}"), journal, nil, nil)

	written, err := s.Accept(testRecord())
	assert.False(t, written)
	assert.ErrorIs(t, err, ErrWriteFailed)

	journal.appendErr = nil
	written, err = s.Accept(testRecord())
	require.NoError(t, err)
	assert.True(t, written, "sink восстанавливается после сбоя")
}

// TestDatabaseSinkClose проверяет идемпотентность Close: журнал
// закрывается ровно один раз.
func TestDatabaseSinkClose(t *testing.T) {
	journal := &fakeJournal{}
	s := NewDatabaseSink("db", LevelDebug, mustPattern(t, "{message}"), journal, nil, nil)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, journal.closes)

	written, err := s.Accept(testRecord())
	assert.False(t, written)
	assert.ErrorIs(t, err, ErrSinkClosed)
}
