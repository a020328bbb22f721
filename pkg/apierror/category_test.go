package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify_StatusTable(t *testing.T) {
	tests := []struct {
		status   int
		expected Category
	}{
		{400, CategoryBadRequest},
		{401, CategoryUnauthorized},
		{403, CategoryForbidden},
		{404, CategoryNotFound},
		{409, CategoryConflict},
		{413, CategoryPayloadTooLarge},
		{429, CategoryRateLimited},
		{500, CategoryServerError},
		{502, CategoryBadGateway},
		{503, CategoryServiceUnavailable},
		{418, CategoryUnknown},
		{415, CategoryUnknown},
		{504, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(Failure{Kind: KindHTTP, Status: tt.status}))
		})
	}
}

func TestClassify_Totality(t *testing.T) {
	kinds := []Kind{KindNetwork, KindTimeout, KindHTTP}

	for status := 100; status <= 599; status++ {
		for _, kind := range kinds {
			for _, withStatus := range []bool{true, false} {
				f := Failure{Kind: kind}
				if withStatus {
					f.Status = status
				}

				c := Classify(f)
				require.True(t, c.Valid(), "status=%d kind=%s withStatus=%v gave %q", status, kind, withStatus, c)
			}
		}
	}
}

func TestClassify_NetworkVersusTimeout(t *testing.T) {
	assert.Equal(t, CategoryTimeout, Classify(Failure{Kind: KindTimeout}))
	assert.Equal(t, CategoryNetworkError, Classify(Failure{Kind: KindNetwork}))
	// a status-less HTTP failure has no response to classify by
	assert.Equal(t, CategoryNetworkError, Classify(Failure{Kind: KindHTTP}))
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		status   int
		category Category
	}{
		{
			name:     "status error",
			err:      statusErr(401),
			kind:     KindHTTP,
			status:   401,
			category: CategoryUnauthorized,
		},
		{
			name:     "wrapped status error",
			err:      fmt.Errorf("sign in: %w", statusErr(409)),
			kind:     KindHTTP,
			status:   409,
			category: CategoryConflict,
		},
		{
			name:     "context deadline",
			err:      fmt.Errorf("post: %w", context.DeadlineExceeded),
			kind:     KindTimeout,
			category: CategoryTimeout,
		},
		{
			name:     "net timeout",
			err:      &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}},
			kind:     KindTimeout,
			category: CategoryTimeout,
		},
		{
			name:     "connection refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			kind:     KindNetwork,
			category: CategoryNetworkError,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			kind:     KindNetwork,
			category: CategoryNetworkError,
		},
		{
			name:     "existing failure",
			err:      fmt.Errorf("wrapped: %w", HTTPFailure(418, nil)),
			kind:     KindHTTP,
			status:   418,
			category: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FromError(tt.err)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.status, f.Status)
			assert.Equal(t, tt.category, Classify(f))
		})
	}
}

func TestFailure_Error(t *testing.T) {
	assert.Equal(t, "http 404", HTTPFailure(404, nil).Error())
	assert.Equal(t, "timeout failure: deadline", TimeoutFailure(errors.New("deadline")).Error())

	cause := errors.New("refused")
	assert.ErrorIs(t, NetworkFailure(cause), cause)
}
