// core/dispatch.go
package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-print/pkg/device"
	"github.com/joeydtaylor/steeze-print/pkg/vararg"
	"go.uber.org/zap"
)

var (
	// ErrInvalidDestination: empty or unregistered destination. No handler ran.
	ErrInvalidDestination = errors.New("dispatch: no such destination")

	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("dispatch: handler panic")
)

// State is a step of a single dispatch call.
type State uint8

const (
	StateIdle State = iota
	StateResolved
	StateCursorOpen
	StateHandlerRunning
	StateCursorClosed
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolved:
		return "resolved"
	case StateCursorOpen:
		return "cursor_open"
	case StateHandlerRunning:
		return "handler_running"
	case StateCursorClosed:
		return "cursor_closed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// StateHook observes every transition of every call.
type StateHook func(destination string, s State)

// Observer receives one callback per finished call; the metrics package
// provides the prometheus implementation.
type Observer interface {
	ObserveDispatch(destination, outcome string, d time.Duration)
}

// Router resolves destinations and forwards the trailing arguments to
// exactly one handler. It holds no per-call state and is safe for
// concurrent use once its registry is populated.
type Router struct {
	reg           *device.Registry
	log           *zap.Logger
	obs           Observer
	hook          StateHook
	timeout       time.Duration
	recoverPanics bool
}

type Option func(*Router)

func WithLogger(l *zap.Logger) Option  { return func(r *Router) { r.log = l } }
func WithObserver(o Observer) Option   { return func(r *Router) { r.obs = o } }
func WithStateHook(h StateHook) Option { return func(r *Router) { r.hook = h } }

// WithTimeout bounds the context handed to handlers; 0 disables it.
func WithTimeout(d time.Duration) Option { return func(r *Router) { r.timeout = d } }

// WithPanicRecovery converts handler panics into ErrHandlerPanic (default on).
func WithPanicRecovery(on bool) Option { return func(r *Router) { r.recoverPanics = on } }

// NewRouter takes an already populated registry; the registry is frozen here.
func NewRouter(reg *device.Registry, opts ...Option) *Router {
	r := &Router{reg: reg, recoverPanics: true}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	reg.Freeze()
	return r
}

func (r *Router) Registry() *device.Registry { return r.reg }

// Dispatch tags args and forwards them to the handler registered for destination.
func (r *Router) Dispatch(ctx context.Context, destination, format string, args ...any) error {
	return r.dispatch(ctx, destination, format, args, nil)
}

// DispatchValues forwards arguments that are already tagged.
func (r *Router) DispatchValues(ctx context.Context, destination, format string, vals []vararg.Value) error {
	return r.dispatch(ctx, destination, format, nil, vals)
}

func (r *Router) dispatch(ctx context.Context, destination, format string, raw []any, vals []vararg.Value) error {
	start := time.Now()
	call := uuid.NewString()
	r.step(destination, StateIdle)

	h, ok := r.resolve(destination)
	if !ok {
		r.step(destination, StateFailed)
		r.finish(call, destination, "invalid_destination", start, len(raw)+len(vals), ErrInvalidDestination)
		return fmt.Errorf("%w: %q", ErrInvalidDestination, destination)
	}
	r.step(destination, StateResolved)

	if vals == nil {
		vals = vararg.Pack(raw...)
	}
	frame := vararg.NewFrame(vals)
	cur := frame.Start()
	r.step(destination, StateCursorOpen)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.step(destination, StateHandlerRunning)
	herr := r.invoke(ctx, h, format, cur)

	leak := frame.End()
	r.step(destination, StateCursorClosed)

	err := errors.Join(herr, leak)
	if err != nil {
		r.step(destination, StateFailed)
		r.finish(call, destination, outcome(err), start, frame.Len(), err)
		return err
	}
	r.step(destination, StateDone)
	r.finish(call, destination, "ok", start, frame.Len(), nil)
	return nil
}

func (r *Router) resolve(destination string) (device.Handler, bool) {
	if destination == "" {
		return nil, false
	}
	return r.reg.Lookup(destination)
}

func (r *Router) invoke(ctx context.Context, h device.Handler, format string, cur *vararg.Cursor) (err error) {
	if r.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				r.log.Error("handler panic", zap.Any("panic", p), zap.ByteString("stack", stack[:n]))
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, p)
			}
		}()
	}
	return h.Handle(ctx, format, cur)
}

func (r *Router) step(destination string, s State) {
	if r.hook != nil {
		r.hook(destination, s)
	}
}

func (r *Router) finish(call, destination, result string, start time.Time, argc int, err error) {
	lat := time.Since(start)
	if r.obs != nil {
		r.obs.ObserveDispatch(destination, result, lat)
	}
	fields := []zap.Field{
		zap.String("callId", call),
		zap.String("destination", destination),
		zap.String("outcome", result),
		zap.Int("argc", argc),
		zap.Duration("lat", lat),
	}
	switch {
	case err == nil:
		r.log.Info("dispatch", fields...)
	case result == "handler_error":
		r.log.Error("dispatch", append(fields, zap.Error(err))...)
	default:
		r.log.Warn("dispatch", append(fields, zap.Error(err))...)
	}
}

// outcome is the metrics/log label for a failed call.
func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDestination):
		return "invalid_destination"
	case errors.Is(err, vararg.ErrArgumentContract):
		return "contract_violation"
	case errors.Is(err, vararg.ErrCursorLeak):
		return "cursor_leak"
	case errors.Is(err, ErrHandlerPanic):
		return "panic"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "handler_error"
	}
}
