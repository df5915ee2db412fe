package capacitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusConfig is a config of the Prometheus metrics provided by the capacitor.
//
// An instance can be created only by the [Prometheus] function. The zero value is invalid.
type PrometheusConfig struct {
	// Namespace of the metrics. It replaces the namespace of every option below that still
	// holds the default "capacitor".
	Namespace string
	// Subsystem of the metrics. It is set on every option below whose subsystem is empty.
	Subsystem string
	// Options for the charges gauge.
	Charges prometheus.GaugeOpts
	// Options for the pushed items counter.
	ItemsPushed prometheus.CounterOpts
	// Options for the flushed items counter. It is partitioned by the "trigger" label.
	ItemsFlushed prometheus.CounterOpts
	// Options for the flushes counter. It is partitioned by the "trigger" label.
	Flushes prometheus.CounterOpts
	// Options for the invalidations counter.
	Invalidations prometheus.CounterOpts
	// Options for the handler errors counter. It is partitioned by the "trigger" label.
	HandlerErrors prometheus.CounterOpts
	// Options for the handler duration histogram.
	HandlerDuration prometheus.HistogramOpts

	registerer prometheus.Registerer
}

// Prometheus returns a [PrometheusConfig] with the provided registerer. If registerer is nil,
// metrics will not be registered. Many default parameters can be configured by passing
// configuration functions.
//
// Every capacitor registers its own collectors, so two capacitors sharing a registerer need
// distinct namespaces, subsystems or constant labels.
func Prometheus(
	registerer prometheus.Registerer,
	configFuncs ...func(c *PrometheusConfig),
) *PrometheusConfig {
	const (
		namespace = "capacitor"
		subsystem = ""
	)

	c := PrometheusConfig{
		registerer: registerer,
		Namespace:  namespace,
		Subsystem:  subsystem,
		Charges: prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "charges",
			Help:      "Number of items currently buffered",
		},
		ItemsPushed: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items_pushed",
			Help:      "Number of items pushed into the capacitor",
		},
		ItemsFlushed: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items_flushed",
			Help:      "Number of items passed to the handler",
		},
		Flushes: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flushes",
			Help:      "Number of handler invocations",
		},
		Invalidations: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invalidations",
			Help:      "Number of times buffered items were discarded",
		},
		HandlerErrors: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_errors",
			Help:      "Number of errors returned by the handler",
		},
		HandlerDuration: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_duration_seconds",
			Help:      "Duration of handler invocations",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	}

	for _, cf := range configFuncs {
		if cf != nil {
			cf(&c)
		}
	}

	// Namespace and Subsystem apply to every option that still holds the default.
	for _, opts := range []struct{ namespace, subsystem *string }{
		{&c.Charges.Namespace, &c.Charges.Subsystem},
		{&c.ItemsPushed.Namespace, &c.ItemsPushed.Subsystem},
		{&c.ItemsFlushed.Namespace, &c.ItemsFlushed.Subsystem},
		{&c.Flushes.Namespace, &c.Flushes.Subsystem},
		{&c.Invalidations.Namespace, &c.Invalidations.Subsystem},
		{&c.HandlerErrors.Namespace, &c.HandlerErrors.Subsystem},
		{&c.HandlerDuration.Namespace, &c.HandlerDuration.Subsystem},
	} {
		if *opts.namespace == namespace {
			*opts.namespace = c.Namespace
		}
		if *opts.subsystem == subsystem {
			*opts.subsystem = c.Subsystem
		}
	}

	return &c
}

func (c *PrometheusConfig) metrics() *metrics {
	m := metrics{
		charges:         prometheus.NewGauge(c.Charges),
		itemsPushed:     prometheus.NewCounter(c.ItemsPushed),
		itemsFlushed:    prometheus.NewCounterVec(c.ItemsFlushed, []string{"trigger"}),
		flushes:         prometheus.NewCounterVec(c.Flushes, []string{"trigger"}),
		invalidations:   prometheus.NewCounter(c.Invalidations),
		handlerErrors:   prometheus.NewCounterVec(c.HandlerErrors, []string{"trigger"}),
		handlerDuration: prometheus.NewHistogram(c.HandlerDuration),
	}

	if c.registerer != nil {
		c.registerer.MustRegister(
			m.charges,
			m.itemsPushed,
			m.itemsFlushed,
			m.flushes,
			m.invalidations,
			m.handlerErrors,
			m.handlerDuration,
		)
	}

	return &m
}
