package async

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatcher runs webhook work in background goroutines. It counts running
// handlers so the server can report them and drain them on shutdown.
type Dispatcher struct {
	wg       sync.WaitGroup
	inFlight atomic.Int64
	timeout  time.Duration
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTimeout bounds each handler's context. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(x *Dispatcher) {
		x.timeout = d
	}
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs handler in a new goroutine and returns immediately. The handler
// context keeps the values of ctx, including the logger, but not its
// cancellation, so the work outlives the HTTP request that triggered it.
// Returned errors and panics are logged and sent to Sentry when it is enabled.
func (d *Dispatcher) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	handlerCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	d.inFlight.Add(1)

	go func() {
		defer d.wg.Done()
		defer d.inFlight.Add(-1)
		defer recoverHandler(handlerCtx)

		if d.timeout > 0 {
			var cancel context.CancelFunc
			handlerCtx, cancel = context.WithTimeout(handlerCtx, d.timeout)
			defer cancel()
		}

		if err := handler(handlerCtx); err != nil {
			ctxlog.From(handlerCtx).Error("error in async handler", "error", err)
			sentry.CaptureException(err)
		}
	}()
}

func recoverHandler(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}

	ctxlog.From(ctx).Error("panic in async handler",
		"recover", r,
		"stack", string(debug.Stack()),
	)
	sentry.CurrentHub().Recover(r)
}

// InFlight returns the number of handlers still running
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// Wait blocks until every dispatched handler returns or ctx is done. When ctx
// ends first, the goroutine waiting on the handlers keeps running until they
// return, so give up only on shutdown.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "gave up waiting for async handlers",
			goerr.V("in_flight", d.InFlight()))
	}
}
