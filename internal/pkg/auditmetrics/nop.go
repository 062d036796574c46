package auditmetrics

import "context"

// NopCollector — реализация Collector, которая ничего не собирает.
// Используется когда метрики выключены конфигурацией.
type NopCollector struct{}

var _ Collector = (*NopCollector)(nil)

// NewNopCollector создаёт Collector, игнорирующий все события.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordWritten ничего не делает.
func (*NopCollector) RecordWritten(string) {}

// RecordDropped ничего не делает.
func (*NopCollector) RecordDropped(string) {}

// RecordRotation ничего не делает.
func (*NopCollector) RecordRotation(string) {}

// RecordWriteError ничего не делает.
func (*NopCollector) RecordWriteError(string) {}

// Push ничего не делает.
func (*NopCollector) Push(context.Context) error { return nil }
