package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhouwensi/Bridge/pkg/exceptions"
)

// Scheduler runs callbacks later, never inside the posting call. Post and
// After fail once the scheduler no longer accepts work. A callback handed to
// After runs exactly once: with nil when d elapses, or with the closing error
// if the scheduler shuts down first.
type Scheduler interface {
	Post(fn func()) error
	After(d time.Duration, fn func(err error)) error
}

func closedError() error {
	return exceptions.NewInvalidOperation("Scheduler is closed.", nil)
}

// taskObserver is implemented by schedulers that want to hear about task
// lifecycle transitions.
type taskObserver interface {
	taskStarted()
	taskSettled(Status)
}

// Loop executes callbacks on a single worker goroutine in FIFO order.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	timers  map[*time.Timer]func(error)
	active  bool
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	metrics *Metrics
	limiter *rate.Limiter
	stopped chan struct{}
}

type LoopOption func(*Loop)

func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) LoopOption {
	return func(l *Loop) { l.metrics = m }
}

// WithDispatchRate throttles dispatch to limit callbacks per second with the
// given burst. A non-positive limit leaves dispatch unthrottled.
func WithDispatchRate(limit float64, burst int) LoopOption {
	return func(l *Loop) {
		if limit <= 0 {
			l.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithQueueHint preallocates room for n queued callbacks.
func WithQueueHint(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make([]func(), 0, n)
		}
	}
}

// NewLoop starts the worker goroutine. Close stops it.
func NewLoop(opts ...LoopOption) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		timers:  make(map[*time.Timer]func(error)),
		ctx:     ctx,
		cancel:  cancel,
		logger:  slog.New(slog.DiscardHandler),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Post queues fn. It fails with an invalid-operation exception after Close.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.logger.Debug("task: loop closed, rejecting callback")
		return closedError()
	}
	l.enqueueLocked(fn)
	return nil
}

func (l *Loop) enqueueLocked(fn func()) {
	l.queue = append(l.queue, fn)
	l.metrics.observeQueue(len(l.queue))
	l.cond.Broadcast()
}

// After queues fn(nil) once d has elapsed. Pending timers keep Flush waiting;
// Close turns them into fn(err) calls.
func (l *Loop) After(d time.Duration, fn func(err error)) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return closedError()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, pending := l.timers[timer]; !pending {
			return
		}
		delete(l.timers, timer)
		l.enqueueLocked(func() { fn(nil) })
	})
	l.timers[timer] = fn
	return nil
}

// Flush blocks until the queue is empty, no callback is running and no timer
// is pending. It must not be called from a callback running on the loop.
func (l *Loop) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for (len(l.queue) > 0 || l.active || len(l.timers) > 0) && !l.closed {
		l.cond.Wait()
	}
}

// Pending reports the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops accepting work, hands every pending timer callback the closing
// error and waits for the queue to drain. Queued callbacks still run,
// unthrottled. Close must not be called from a callback running on the loop.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.stopped
		return
	}
	l.closed = true
	aborted := 0
	for timer, fn := range l.timers {
		timer.Stop()
		l.enqueueLocked(func() { fn(closedError()) })
		aborted++
	}
	clear(l.timers)
	l.cond.Broadcast()
	l.mu.Unlock()
	l.cancel()
	if aborted > 0 {
		l.logger.Debug("task: loop closed with pending timers", "timers", aborted)
	}
	<-l.stopped
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		fn, ok := l.next()
		if !ok {
			return
		}
		if l.limiter != nil {
			if err := l.limiter.Wait(l.ctx); err != nil {
				l.logger.Debug("task: dispatching unthrottled", "error", err)
			}
		}
		l.dispatch(fn)
		l.finish()
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.queue) == 0 && !l.closed {
		l.cond.Wait()
	}
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.active = true
	l.metrics.observeQueue(len(l.queue))
	return fn, true
}

func (l *Loop) finish() {
	l.mu.Lock()
	l.active = false
	l.cond.Broadcast()
	l.mu.Unlock()
}

func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.metrics.observePanic()
			l.logger.Error("task: callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	l.metrics.observeDispatch()
	fn()
}

func (l *Loop) taskStarted() { l.metrics.taskStarted() }

func (l *Loop) taskSettled(status Status) { l.metrics.taskSettled(status) }
