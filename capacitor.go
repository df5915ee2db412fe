// Package capacitor buffers items and flushes them to a handler when a capacity is reached, when
// no item arrived for a configured inactivity duration, or on demand.
package capacitor

import (
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teenjuna/capacitor/buffer"
)

var (
	ErrClosed = errors.New("capacitor is closed")
)

// Handler receives the flushed items. The batch belongs to the handler: the capacitor never
// reads or writes it after the call.
//
// The handler is invoked while the capacitor is locked, so it must not call the capacitor that
// invoked it.
type Handler[Item any] = func(batch []Item) error

// Capacitor accumulates items (charges) and flushes them to its handler when:
//   - the number of charges reaches the capacity;
//   - no item was pushed for the inactivity duration (see [Capacitor.Unstable]);
//   - [Capacitor.Trigger] or [Capacitor.Close] is called.
//
// All methods are safe for concurrent use. At most one inactivity timer is pending at any time
// and a flush always resets the buffer and cancels that timer together.
type Capacitor[Item any] struct {
	mu sync.Mutex

	capacity   int
	handler    Handler[Item]
	buffer     Buffer[Item]
	inactivity time.Duration
	closed     bool

	// timer is the pending inactivity flush. A callback only flushes if generation still equals
	// the value it was armed with, because Stop can lose the race against an already fired timer.
	timer      *time.Timer
	generation uint64

	logger  *zap.Logger
	metrics *metrics
	onError func(error)
}

// New creates a capacitor that flushes to handler every time capacity items are buffered.
//
// It panics if capacity is < 1 or handler is nil.
func New[Item any](
	capacity int,
	handler Handler[Item],
	configFuncs ...ConfigFunc[Item],
) *Capacitor[Item] {
	if capacity < 1 {
		panic("capacity can't be < 1")
	}
	if handler == nil {
		panic("handler can't be nil")
	}

	cfg := newConfig(configFuncs...)
	if grower, ok := cfg.buffer.(buffer.Grower); ok {
		grower.Grow(capacity)
	}

	return &Capacitor[Item]{
		capacity:   capacity,
		handler:    handler,
		buffer:     cfg.buffer,
		inactivity: cfg.inactivity,
		logger:     cfg.logger,
		metrics:    cfg.prometheus.metrics(),
		onError:    cfg.onError,
	}
}

// Push adds a charge. It rearms the inactivity timer and, if the capacity is reached, flushes
// synchronously and returns the handler's error.
func (c *Capacitor[Item]) Push(item Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.buffer.Push(item)
	c.metrics.pushed(c.buffer.Size())
	c.rearm()

	if c.buffer.Size() >= c.capacity {
		return c.flush(TriggerCapacity)
	}

	return nil
}

// Invalidate discards all charges without calling the handler and cancels the pending
// inactivity flush. It does nothing on a closed capacitor.
func (c *Capacitor[Item]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	discarded := c.buffer.Size()
	c.discharge()
	c.metrics.invalidated()

	c.logger.Debug("invalidated", zap.Int("items", discarded))
}

// Trigger flushes the current charges, even if there are none, and returns the handler's error.
func (c *Capacitor[Item]) Trigger() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	return c.flush(TriggerManual)
}

// Unstable sets the inactivity duration and returns the capacitor. A non-positive duration
// disables the inactivity flush.
//
// The pending timer is always canceled. A new one is armed only if some items are buffered:
// an empty capacitor starts counting from the next push.
func (c *Capacitor[Item]) Unstable(inactivity time.Duration) *Capacitor[Item] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inactivity = inactivity
	if c.closed {
		return c
	}

	if c.buffer.Size() == 0 {
		c.stop()
	} else {
		c.rearm()
	}

	c.logger.Debug("inactivity changed", zap.Duration("inactivity", inactivity))

	return c
}

// Charges returns the number of buffered items.
func (c *Capacitor[Item]) Charges() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buffer.Size()
}

// Close cancels the inactivity timer and flushes the remaining charges, if any. After that Push,
// Trigger and Close return [ErrClosed]. The handler's error of the final flush is returned.
func (c *Capacitor[Item]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true

	if c.buffer.Size() == 0 {
		c.stop()
		return nil
	}

	return c.flush(TriggerClose)
}

// flush must be called with c.mu held.
func (c *Capacitor[Item]) flush(trigger Trigger) error {
	batch := slices.AppendSeq(make([]Item, 0, c.buffer.Size()), c.buffer.Iter())
	c.discharge()

	started := time.Now()
	err := c.handler(batch)
	took := time.Since(started)

	c.metrics.flushed(trigger, len(batch), took, err)
	c.logger.Debug("flushed",
		zap.String("trigger", string(trigger)),
		zap.Int("items", len(batch)),
		zap.Duration("took", took),
		zap.Error(err),
	)

	return err
}

// discharge resets the buffer and cancels the timer as one step. It must be called with c.mu held.
func (c *Capacitor[Item]) discharge() {
	c.stop()
	c.buffer.Reset()
}

func (c *Capacitor[Item]) rearm() {
	c.stop()
	if c.inactivity <= 0 {
		return
	}

	generation := c.generation
	c.timer = time.AfterFunc(c.inactivity, func() {
		c.expire(generation)
	})
}

func (c *Capacitor[Item]) stop() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Capacitor[Item]) expire(generation uint64) {
	err := func() error {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed || generation != c.generation {
			return nil
		}
		c.timer = nil

		if c.buffer.Size() == 0 {
			return nil
		}

		return c.flush(TriggerInactivity)
	}()
	if err != nil {
		c.onError(err)
	}
}
