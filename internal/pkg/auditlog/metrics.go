package auditlog

// Metrics — счётчики событий движка в разрезе sink-ов.
// Реализация по умолчанию — NopMetrics; production реализация
// на Prometheus живёт в internal/pkg/auditmetrics и подключается
// через WithMetrics, чтобы движок не тянул prometheus в каждый импорт.
type Metrics interface {
	// RecordWritten — запись успешно записана sink-ом.
	RecordWritten(sink string)

	// RecordDropped — запись отброшена порогом sink-а.
	RecordDropped(sink string)

	// RecordRotation — выполнен rollover файла.
	RecordRotation(sink string)

	// RecordWriteError — ошибка записи или ротации.
	RecordWriteError(sink string)
}

// NopMetrics — реализация Metrics, которая ничего не считает.
// Используется когда метрики не сконфигурированы и в тестах.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

// RecordWritten ничего не делает.
func (NopMetrics) RecordWritten(string) {}

// RecordDropped ничего не делает.
func (NopMetrics) RecordDropped(string) {}

// RecordRotation ничего не делает.
func (NopMetrics) RecordRotation(string) {}

// RecordWriteError ничего не делает.
func (NopMetrics) RecordWriteError(string) {}
