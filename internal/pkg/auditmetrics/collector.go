// Package auditmetrics собирает Prometheus метрики движка аудита:
// записанные/отброшенные записи, ротации и ошибки записи в разрезе
// sink-ов, с опциональной отправкой в Pushgateway из CLI.
package auditmetrics

import "context"

// Collector — интерфейс сбора метрик движка. Сигнатуры Record*
// совпадают с auditlog.Metrics, поэтому любой Collector подключается
// к реестру через auditlog.WithMetrics без адаптера.
type Collector interface {
	// RecordWritten — запись успешно записана sink-ом.
	RecordWritten(sink string)

	// RecordDropped — запись отброшена порогом sink-а.
	RecordDropped(sink string)

	// RecordRotation — выполнен rollover файла.
	RecordRotation(sink string)

	// RecordWriteError — ошибка записи или ротации.
	RecordWriteError(sink string)

	// Push отправляет накопленные метрики в Pushgateway.
	// Для короткоживущего CLI это единственный способ доставки.
	Push(ctx context.Context) error
}
