package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// fallbackCounter используется для генерации уникальных fallback ID.
var fallbackCounter atomic.Uint64

// GenerateTraceID генерирует уникальный trace ID для корреляции
// диагностики и audit записей одного запуска.
// Формат: 32 символа hex (16 байт) — совместим с W3C Trace Context,
// поэтому тот же ID используется как OTel trace ID (ContextWithTraceID).
//
// Использует crypto/rand; при его ошибке (практически невозможной)
// возвращает fallback на основе timestamp и счётчика.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID генерирует ID из текущего времени и счётчика.
// %016x для обоих компонентов гарантирует ровно 32 hex символа.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
