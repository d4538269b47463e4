// Package httputil provides retry helpers for registry HTTP calls.
//
// Registry lookups fail transiently (connection resets, 5xx, 429). Callers
// mark such failures with [RetryableError] and run the request through
// [Retry] or [RetryWithBackoff]; any other error returns immediately.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The backoff doubles after each attempt and stops early when ctx is done.
package httputil
