package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/themepreview/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

// syncHandler is a slog.Handler that signals when a log is written
type syncHandler struct {
	handler slog.Handler
	done    chan struct{}
}

func newSyncHandler(buf *safeBuffer) *syncHandler {
	return &syncHandler{
		handler: slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level: slog.LevelError,
		}),
		done: make(chan struct{}, 1),
	}
}

func (h *syncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *syncHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.handler.Handle(ctx, r)
	select {
	case h.done <- struct{}{}:
	default:
	}
	return err
}

func (h *syncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syncHandler{
		handler: h.handler.WithAttrs(attrs),
		done:    h.done,
	}
}

func (h *syncHandler) WithGroup(name string) slog.Handler {
	return &syncHandler{
		handler: h.handler.WithGroup(name),
		done:    h.done,
	}
}

func TestDispatcher(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		ctx := context.Background()
		d := async.NewDispatcher()
		var executed atomic.Bool

		d.Dispatch(ctx, func(ctx context.Context) error {
			executed.Store(true)
			return nil
		})

		gt.NoError(t, d.Wait(ctx))
		gt.True(t, executed.Load())
		gt.V(t, d.InFlight()).Equal(int64(0))
	})

	t.Run("handles errors without crashing", func(t *testing.T) {
		ctx := context.Background()
		d := async.NewDispatcher()

		d.Dispatch(ctx, func(ctx context.Context) error {
			return errors.New("test error")
		})

		gt.NoError(t, d.Wait(ctx))
	})

	t.Run("recovers from panic with stack trace", func(t *testing.T) {
		logBuf := &safeBuffer{}
		handler := newSyncHandler(logBuf)
		logger := slog.New(handler)

		ctx := ctxlog.With(context.Background(), logger)
		d := async.NewDispatcher()

		d.Dispatch(ctx, func(ctx context.Context) error {
			panic("test panic with stack")
		})

		gt.NoError(t, d.Wait(context.Background()))

		select {
		case <-handler.done:
		case <-time.After(1 * time.Second):
			t.Fatal("log was not written within timeout")
		}

		logOutput := logBuf.String()
		gt.True(t, strings.Contains(logOutput, "panic in async handler"))
		gt.True(t, strings.Contains(logOutput, "test panic with stack"))
		gt.True(t, strings.Contains(logOutput, "goroutine"))
		gt.True(t, strings.Contains(logOutput, "dispatch_test.go"))
	})

	t.Run("preserves logger but not cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctxlog.With(context.Background(), slog.Default()))
		d := async.NewDispatcher()

		var cancelled atomic.Bool
		d.Dispatch(ctx, func(newCtx context.Context) error {
			gt.NotNil(t, ctxlog.From(newCtx))

			cancel()
			select {
			case <-newCtx.Done():
				cancelled.Store(true)
			default:
			}
			return nil
		})

		gt.NoError(t, d.Wait(context.Background()))
		gt.False(t, cancelled.Load())
	})

	t.Run("applies handler timeout", func(t *testing.T) {
		d := async.NewDispatcher(async.WithTimeout(10 * time.Millisecond))

		var hasDeadline atomic.Bool
		d.Dispatch(context.Background(), func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			hasDeadline.Store(ok)
			<-ctx.Done()
			return ctx.Err()
		})

		gt.NoError(t, d.Wait(context.Background()))
		gt.True(t, hasDeadline.Load())
	})

	t.Run("wait gives up when context is done", func(t *testing.T) {
		d := async.NewDispatcher()
		release := make(chan struct{})
		defer close(release)

		d.Dispatch(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})

		waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		gt.Error(t, d.Wait(waitCtx))
		gt.V(t, d.InFlight()).Equal(int64(1))
	})
}
