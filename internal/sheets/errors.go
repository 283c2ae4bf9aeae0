package sheets

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/fleet/internal/common"
	"google.golang.org/api/googleapi"
)

// classifyAPIError tags a Sheets API failure for common.WithRetry: quota
// errors wait for the server's Retry-After, other client errors stop at once,
// and server errors are retried.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return &common.RetryableError{
			Err:        fmt.Errorf("%w: %w", common.ErrRateLimit, err),
			Retryable:  true,
			RetryAfter: retryAfter(apiErr.Header),
		}
	case apiErr.Code == http.StatusRequestTimeout:
		return &common.RetryableError{Err: err, Retryable: true}
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	default:
		return &common.RetryableError{Err: err, Retryable: true}
	}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
