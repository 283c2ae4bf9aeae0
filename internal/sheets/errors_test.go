package sheets

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/fleet/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassifyAPIError(t *testing.T) {
	quota := &googleapi.Error{Code: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"7"}}}

	tests := []struct {
		err           error
		name          string
		wantRetryable bool
		wantRateLimit bool
		wantAfter     time.Duration
	}{
		{name: "quota", err: quota, wantRetryable: true, wantRateLimit: true, wantAfter: 7 * time.Second},
		{name: "wrapped quota", err: fmt.Errorf("update: %w", quota), wantRetryable: true, wantRateLimit: true, wantAfter: 7 * time.Second},
		{name: "timeout", err: &googleapi.Error{Code: http.StatusRequestTimeout}, wantRetryable: true},
		{name: "not found", err: &googleapi.Error{Code: http.StatusNotFound}},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden}},
		{name: "server error", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, wantRetryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAPIError(tt.err)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.wantRetryable, common.IsRetryable(got))
			assert.Equal(t, tt.wantRateLimit, errors.Is(got, common.ErrRateLimit))

			var retryErr *common.RetryableError
			require.ErrorAs(t, got, &retryErr)
			assert.Equal(t, tt.wantAfter, retryErr.RetryAfter)
		})
	}
}

func TestClassifyAPIError_PassThrough(t *testing.T) {
	assert.NoError(t, classifyAPIError(nil))

	plain := errors.New("dial tcp: connection refused")
	assert.Same(t, plain, classifyAPIError(plain))
}
