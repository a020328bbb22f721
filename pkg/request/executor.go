// Package request runs remote API calls on behalf of a user-facing command:
// it tracks whether a call is in flight, and turns every failure into a
// single user notification and a false return instead of an error.
package request

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/icondb/icondb/pkg/apierror"
	"github.com/rs/zerolog"
)

// Operation is a remote call. A successful result may be an Enveloped
// response, in which case Execute returns its payload.
type Operation func(ctx context.Context) (any, error)

// Enveloped is implemented by transport responses that wrap their payload in
// a data field.
type Enveloped interface {
	Payload() (any, bool)
}

// ClassifiedFailure records the last failed call of an executor.
type ClassifiedFailure struct {
	Action       apierror.Action
	Failure      apierror.Failure
	Category     apierror.Category
	Presentation apierror.Presentation
}

// Error implements the error interface
func (f *ClassifiedFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Category, f.Presentation.Message)
}

// Unwrap returns the transport failure.
func (f *ClassifiedFailure) Unwrap() error {
	return &f.Failure
}

// State is a point-in-time view of an executor.
type State struct {
	Loading   bool
	LastError *ClassifiedFailure
}

// Option modifies a single Execute call
type Option func(*callOptions)

type callOptions struct {
	action  apierror.Action
	warning bool
}

// WithAction tags the call with a business action for more specific text.
func WithAction(action apierror.Action) Option {
	return func(o *callOptions) {
		o.action = action
	}
}

// AsWarning routes a failure to NotifyWarning instead of NotifyError.
func AsWarning() Option {
	return func(o *callOptions) {
		o.warning = true
	}
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithTable sets the table used to resolve failure text.
func WithTable(table *apierror.Table) ExecutorOption {
	return func(e *Executor) {
		if table != nil {
			e.table = table
		}
	}
}

// WithLogger sets the logger used to trace failures.
func WithLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// Executor runs operations and owns their loading and last-error state.
// Separate executors share nothing. One executor may run overlapping calls;
// Loading stays true until every call has settled.
type Executor struct {
	sink   NotificationSink
	table  *apierror.Table
	logger zerolog.Logger

	inflight atomic.Int64

	mu        sync.Mutex
	lastError *ClassifiedFailure
}

// NewExecutor returns an executor that reports failures to sink.
func NewExecutor(sink NotificationSink, options ...ExecutorOption) *Executor {
	if sink == nil {
		sink = DiscardSink{}
	}

	e := &Executor{
		sink:   sink,
		table:  apierror.DefaultTable(),
		logger: zerolog.Nop(),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Execute runs op. On success it returns the payload of an Enveloped result,
// or the result itself, and true. On failure it notifies the sink once and
// returns nil and false; the failure has already been shown to the user.
func (e *Executor) Execute(ctx context.Context, op Operation, opts ...Option) (any, bool) {
	result, ok := run[any](ctx, e, op, opts)
	if !ok {
		return nil, false
	}

	if env, isEnvelope := result.(Enveloped); isEnvelope {
		if payload, has := env.Payload(); has {
			return payload, true
		}
	}

	return result, true
}

// Do is the typed form of Execute for operations that already yield their
// payload.
func Do[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error), opts ...Option) (T, bool) {
	return run(ctx, e, op, opts)
}

// Loading reports whether any call is in flight.
func (e *Executor) Loading() bool {
	return e.inflight.Load() > 0
}

// LastError returns the failure of the most recent call, or nil when that
// call succeeded or the error was cleared.
func (e *Executor) LastError() *ClassifiedFailure {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastError
}

// ClearError forgets the last failure.
func (e *Executor) ClearError() {
	e.setLastError(nil)
}

// State returns the loading flag and last failure together.
func (e *Executor) State() State {
	return State{
		Loading:   e.Loading(),
		LastError: e.LastError(),
	}
}

func (e *Executor) setLastError(f *ClassifiedFailure) {
	e.mu.Lock()
	e.lastError = f
	e.mu.Unlock()
}

func run[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error), opts []Option) (result T, ok bool) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	e.setLastError(nil)
	e.inflight.Add(1)
	defer e.inflight.Add(-1)

	value, err := invoke(ctx, op)
	if err != nil {
		e.fail(o, err)
		var zero T
		return zero, false
	}

	return value, true
}

// invoke calls op and turns a panic into an error so the caller's deferred
// bookkeeping still runs.
func invoke[T any](ctx context.Context, op func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()

	if op == nil {
		return value, fmt.Errorf("nil operation")
	}

	return op(ctx)
}

func (e *Executor) fail(o callOptions, err error) {
	failure := apierror.FromError(err)
	res := e.table.Resolve(o.action, failure)

	classified := &ClassifiedFailure{
		Action:       o.action,
		Failure:      failure,
		Category:     res.Category,
		Presentation: res.Presentation,
	}
	e.setLastError(classified)

	e.logger.Debug().
		Err(err).
		Str("action", string(o.action)).
		Int("status", failure.Status).
		Str("category", string(res.Category)).
		Bool("override", res.Override).
		Str("title", res.Presentation.Title).
		Msg("Request failed")

	if o.warning {
		e.sink.NotifyWarning(res.Presentation.Title, res.Presentation.Message)
		return
	}
	e.sink.NotifyError(res.Presentation.Title, res.Presentation.Message)
}
