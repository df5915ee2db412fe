package capacitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Trigger names the path that caused a flush. It is used as the "trigger" metric label and as a
// log field.
type Trigger string

const (
	TriggerCapacity   Trigger = "capacity"
	TriggerInactivity Trigger = "inactivity"
	TriggerManual     Trigger = "manual"
	TriggerClose      Trigger = "close"
)

type metrics struct {
	charges         prometheus.Gauge
	itemsPushed     prometheus.Counter
	itemsFlushed    *prometheus.CounterVec
	flushes         *prometheus.CounterVec
	invalidations   prometheus.Counter
	handlerErrors   *prometheus.CounterVec
	handlerDuration prometheus.Histogram
}

func (m *metrics) pushed(charges int) {
	m.itemsPushed.Inc()
	m.charges.Set(float64(charges))
}

func (m *metrics) invalidated() {
	m.invalidations.Inc()
	m.charges.Set(0)
}

func (m *metrics) flushed(trigger Trigger, items int, took time.Duration, err error) {
	label := string(trigger)
	m.flushes.WithLabelValues(label).Inc()
	m.itemsFlushed.WithLabelValues(label).Add(float64(items))
	m.handlerDuration.Observe(took.Seconds())
	if err != nil {
		m.handlerErrors.WithLabelValues(label).Inc()
	}
	m.charges.Set(0)
}
