package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Kind tags the shape of a Failure.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota
	// KindTimeout means the request gave up waiting for a response.
	KindTimeout
	// KindHTTP means the server answered with an error status.
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	default:
		return "network"
	}
}

// Failure is the closed set of ways a remote call can fail. It is built once
// at the transport boundary and consumed everywhere else only through Kind
// and Status.
type Failure struct {
	Kind   Kind
	Status int // set only for KindHTTP
	Err    error
}

// HTTPFailure returns a failure carrying a response status.
func HTTPFailure(status int, err error) *Failure {
	return &Failure{Kind: KindHTTP, Status: status, Err: err}
}

// NetworkFailure returns a failure for a request that got no response.
func NetworkFailure(err error) *Failure {
	return &Failure{Kind: KindNetwork, Err: err}
}

// TimeoutFailure returns a failure for a request that timed out.
func TimeoutFailure(err error) *Failure {
	return &Failure{Kind: KindTimeout, Err: err}
}

// HasStatus reports whether the failure carries an HTTP status code.
func (f Failure) HasStatus() bool {
	return f.Kind == KindHTTP && f.Status > 0
}

// Error implements the error interface
func (f *Failure) Error() string {
	switch {
	case f.Kind == KindHTTP && f.Err != nil:
		return fmt.Sprintf("http %d: %v", f.Status, f.Err)
	case f.Kind == KindHTTP:
		return fmt.Sprintf("http %d", f.Status)
	case f.Err != nil:
		return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
	default:
		return fmt.Sprintf("%s failure", f.Kind)
	}
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// StatusCoder is implemented by errors that carry an HTTP response status.
type StatusCoder interface {
	HTTPStatus() int
}

// FromError adapts an arbitrary error into a Failure. Errors exposing an
// HTTP status become KindHTTP, deadline and net timeouts become KindTimeout,
// and everything else is treated as a request that got no response.
func FromError(err error) Failure {
	if err == nil {
		return Failure{Kind: KindNetwork}
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return *failure
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		return Failure{Kind: KindHTTP, Status: coder.HTTPStatus(), Err: err}
	}

	if IsTimeout(err) {
		return Failure{Kind: KindTimeout, Err: err}
	}

	return Failure{Kind: KindNetwork, Err: err}
}

// IsTimeout reports whether err signals an exceeded deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
