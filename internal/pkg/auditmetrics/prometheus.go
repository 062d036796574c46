package auditmetrics

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/urlutil"
)

// PrometheusCollector реализует Collector с Prometheus метриками.
// Счётчики копятся в собственном Registry и отправляются в Pushgateway
// при вызове Push().
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	recordsWritten *prometheus.CounterVec
	recordsDropped *prometheus.CounterVec
	rotations      *prometheus.CounterVec
	writeErrors    *prometheus.CounterVec

	// Instance label (hostname по умолчанию)
	instance string
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector создаёт PrometheusCollector с указанной конфигурацией.
// Регистрирует метрики:
//   - etl_audit_records_written_total (counter, label sink)
//   - etl_audit_records_dropped_total (counter, label sink)
//   - etl_audit_rotations_total (counter, label sink)
//   - etl_audit_write_errors_total (counter, label sink)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	registry := prometheus.NewRegistry()

	recordsWritten := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl_audit",
			Name:      "records_written_total",
			Help:      "Записи, успешно записанные sink-ами",
		},
		[]string{"sink"},
	)

	recordsDropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl_audit",
			Name:      "records_dropped_total",
			Help:      "Записи, отброшенные порогом sink-а",
		},
		[]string{"sink"},
	)

	rotations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl_audit",
			Name:      "rotations_total",
			Help:      "Выполненные rollover-ы файлов",
		},
		[]string{"sink"},
	)

	writeErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "etl_audit",
			Name:      "write_errors_total",
			Help:      "Ошибки записи и ротации",
		},
		[]string{"sink"},
	)

	for _, c := range []prometheus.Collector{recordsWritten, recordsDropped, rotations, writeErrors} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("регистрация метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:         config,
		logger:         logger,
		registry:       registry,
		recordsWritten: recordsWritten,
		recordsDropped: recordsDropped,
		rotations:      rotations,
		writeErrors:    writeErrors,
		instance:       instance,
	}, nil
}

// RecordWritten инкрементирует счётчик записанных записей.
func (p *PrometheusCollector) RecordWritten(sink string) {
	p.recordsWritten.WithLabelValues(sink).Inc()
}

// RecordDropped инкрементирует счётчик отброшенных записей.
func (p *PrometheusCollector) RecordDropped(sink string) {
	p.recordsDropped.WithLabelValues(sink).Inc()
}

// RecordRotation инкрементирует счётчик ротаций.
func (p *PrometheusCollector) RecordRotation(sink string) {
	p.rotations.WithLabelValues(sink).Inc()
}

// RecordWriteError инкрементирует счётчик ошибок записи.
func (p *PrometheusCollector) RecordWriteError(sink string) {
	p.writeErrors.WithLabelValues(sink).Inc()
}

// Push отправляет накопленные метрики в Pushgateway.
// Ошибки отправки логируются и возвращаются, но вызывающий CLI
// трактует их как некритичные: сбой доставки метрик не должен
// влиять на exit code проверки конфигурации.
func (p *PrometheusCollector) Push(ctx context.Context) error {
	pusher := push.New(p.config.PushgatewayURL, p.config.JobName).
		Gatherer(p.registry).
		Grouping("instance", p.instance)

	pushCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	if err := pusher.PushContext(pushCtx); err != nil {
		p.logger.Warn("не удалось отправить метрики в Pushgateway",
			"url", urlutil.MaskURL(p.config.PushgatewayURL),
			"error", err.Error(),
		)
		return fmt.Errorf("push метрик: %w", err)
	}

	p.logger.Debug("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(p.config.PushgatewayURL),
		"job", p.config.JobName,
	)
	return nil
}
