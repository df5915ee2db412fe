// Command capacitor reads newline-delimited records from stdin and forwards them in batches to a
// sink.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/teenjuna/capacitor"
	"github.com/teenjuna/capacitor/codec/json"
	"github.com/teenjuna/capacitor/internal/config"
	"github.com/teenjuna/capacitor/retry"
	"github.com/teenjuna/capacitor/sink/kafka"
	"github.com/teenjuna/capacitor/sink/sqlite"
)

var configFile = flag.String("config", os.Getenv("CAPACITOR_CONFIG"), "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.NewLoader().Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("Stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) error {
	handler, closeSink, err := newHandler(cfg, out)
	if err != nil {
		return fmt.Errorf("create sink: %w", err)
	}
	if cfg.Retry.Attempts > 0 {
		handler = capacitor.Retrying(ctx, retry.Fixed(cfg.Retry.Attempts, cfg.Retry.Interval), handler)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cptor := capacitor.New(cfg.Capacity, handler, func(c *capacitor.Config[string]) {
		c.Inactivity(cfg.Inactivity)
		c.Logger(logger.Named("capacitor"))
		c.Prometheus(capacitor.Prometheus(registry))
	})

	logger.Info("Capacitor started",
		zap.String("sink", cfg.Sink),
		zap.Int("capacity", cfg.Capacity),
		zap.Duration("inactivity", cfg.Inactivity),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		pump(ctx, cptor, in, logger)
		if err := cptor.Close(); err != nil {
			return fmt.Errorf("close capacitor: %w", err)
		}
		return nil
	})

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, cfg.Metrics.Addr, registry, logger)
		})
	}

	return errors.Join(g.Wait(), closeSink())
}

// pump pushes every line of in into cptor until in is exhausted or ctx is done.
func pump(ctx context.Context, cptor *capacitor.Capacitor[string], in io.Reader, logger *zap.Logger) {
	lines := make(chan string)

	// Scan blocks on the reader, so the scanner goroutine is left behind on cancellation.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Error("Failed to read input", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping input")
			return
		case line, ok := <-lines:
			if !ok {
				logger.Info("Input exhausted")
				return
			}
			if line == "" {
				continue
			}
			if err := cptor.Push(line); err != nil {
				logger.Error("Failed to flush batch", zap.Error(err))
			}
		}
	}
}

// newHandler creates the handler of the configured sink and a function releasing its resources.
func newHandler(cfg *config.Config, out io.Writer) (capacitor.Handler[string], func() error, error) {
	codec := json.New[string]()

	switch cfg.Sink {
	case config.SinkStdout:
		handler := func(batch []string) error {
			for _, line := range batch {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		}
		return handler, func() error { return nil }, nil

	case config.SinkSQLite:
		storage, err := sqlite.New(sqlite.WithFile(cfg.SQLite.File))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return sqlite.Handler[string](storage, codec), storage.Close, nil

	case config.SinkKafka:
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, nil, err
		}
		return kafka.Handler[string](producer, cfg.Kafka.Topic, codec, nil), producer.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported sink: %s", cfg.Sink)
	}
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("Starting metrics server", zap.String("addr", addr))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
