package auditlog

import (
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/logging"
)

// Sink — сконфигурированное назначение вывода отформатированных записей.
// Один sink может разделяться несколькими логгерами (shared ownership,
// lifetime = процесс или явный Registry.Close).
//
// Контракт Accept: запись сначала сравнивается с порогом самого sink-а
// (независимо от порога логгера); запись ниже порога молча отбрасывается
// (written=false, err=nil) — это не ошибка. Пороги логгера и sink-а
// применяются ОБА: запись пишется только пройдя обе проверки.
//
// Контракт Close: освобождение открытых ресурсов; идемпотентен,
// повторный вызов — no-op без ошибки.
//
// Все реализации конкурентно-безопасны: записи внутри одного sink-а
// сериализуются его собственным mutex-ом, частичные записи не
// перемешиваются.
type Sink interface {
	// Name возвращает имя sink-а из конфигурации (для диагностики и метрик).
	Name() string

	// Accept фильтрует по порогу sink-а, рендерит запись и пишет её.
	// written=true только при фактически выполненной записи.
	Accept(r *Record) (written bool, err error)

	// Close освобождает ресурсы sink-а. Идемпотентен.
	Close() error
}

// sinkCore — общее состояние всех sink-ов: имя, порог, форматтер,
// диагностический логгер, метрики и однократный репорт деградации.
// Встраивается в конкретные реализации.
type sinkCore struct {
	name      string
	threshold Level
	formatter Formatter
	diag      logging.Logger
	metrics   Metrics
	degraded  bool // защищён mutex-ом владеющего sink-а
}

func newSinkCore(name string, threshold Level, f Formatter, diag logging.Logger, metrics Metrics) sinkCore {
	if diag == nil {
		diag = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return sinkCore{
		name:      name,
		threshold: threshold,
		formatter: f,
		diag:      diag,
		metrics:   metrics,
	}
}

// Name возвращает имя sink-а.
func (c *sinkCore) Name() string { return c.name }

// Threshold возвращает порог sink-а.
func (c *sinkCore) Threshold() Level { return c.threshold }

// belowThreshold — проверка порога sink-а; при отбрасывании
// инкрементирует метрику dropped.
func (c *sinkCore) belowThreshold(r *Record) bool {
	if r.Level < c.threshold {
		c.metrics.RecordDropped(c.name)
		return true
	}
	return false
}

// reportDegraded однократно пишет в диагностический лог переход sink-а
// в degraded состояние. Повторные ошибки не спамят диагностику;
// sink продолжает принимать вызовы best-effort, а не отключается.
// Вызывать под mutex-ом владеющего sink-а.
func (c *sinkCore) reportDegraded(op string, err error) {
	c.metrics.RecordWriteError(c.name)
	if c.degraded {
		return
	}
	c.degraded = true
	c.diag.Error("sink переведён в degraded режим",
		"sink", c.name,
		"op", op,
		"error", err.Error(),
	)
}

// clearDegraded сбрасывает degraded после успешной операции,
// чтобы следующий сбой снова попал в диагностику.
// Вызывать под mutex-ом владеющего sink-а.
func (c *sinkCore) clearDegraded() {
	if c.degraded {
		c.degraded = false
		c.diag.Info("sink восстановился из degraded режима", "sink", c.name)
	}
}
