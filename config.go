package capacitor

import (
	"time"

	"go.uber.org/zap"

	"github.com/teenjuna/capacitor/buffer"
)

// ConfigFunc configures a capacitor. It is passed to [New].
type ConfigFunc[Item any] = func(c *Config[Item])

// Config holds the optional settings of a capacitor. Every setter panics on invalid input.
type Config[Item any] struct {
	buffer     Buffer[Item]
	inactivity time.Duration
	logger     *zap.Logger
	prometheus *PrometheusConfig
	onError    func(error)
}

// Buffer sets the storage of charges. Default is [buffer.Appending].
func (c *Config[Item]) Buffer(buffer Buffer[Item]) {
	if buffer == nil {
		panic("buffer can't be nil")
	}
	c.buffer = buffer
}

// Inactivity sets the initial inactivity duration. A non-positive duration disables the
// inactivity flush. It can be changed later with [Capacitor.Unstable].
func (c *Config[Item]) Inactivity(inactivity time.Duration) {
	c.inactivity = inactivity
}

// Logger sets the logger. Default is [zap.NewNop].
func (c *Config[Item]) Logger(logger *zap.Logger) {
	if logger == nil {
		panic("logger can't be nil")
	}
	c.logger = logger
}

// Prometheus sets the metrics config. By default metrics are collected but not registered.
func (c *Config[Item]) Prometheus(prometheus *PrometheusConfig) {
	if prometheus == nil {
		panic("prometheus config can't be nil")
	}
	c.prometheus = prometheus
}

// OnError sets the hook receiving handler errors of inactivity flushes, which have no caller to
// return them to. By default such errors are logged.
func (c *Config[Item]) OnError(onError func(error)) {
	if onError == nil {
		panic("error hook can't be nil")
	}
	c.onError = onError
}

func newConfig[Item any](configFuncs ...ConfigFunc[Item]) *Config[Item] {
	cfg := Config[Item]{}
	cfg.Buffer(buffer.Appending[Item]())
	cfg.Logger(zap.NewNop())
	cfg.Prometheus(Prometheus(nil))
	for _, cf := range configFuncs {
		if cf != nil {
			cf(&cfg)
		}
	}

	if cfg.onError == nil {
		logger := cfg.logger
		cfg.onError = func(err error) {
			logger.Error("inactivity flush failed", zap.Error(err))
		}
	}

	return &cfg
}
