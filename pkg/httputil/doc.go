// Package httputil provides retry helpers for HTTP clients.
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// returned error is wrapped in [RetryableError]. Clients wrap transport
// failures and 5xx responses; everything else fails immediately:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The family-tree client retries GETs only, and only when configured to
// (api.retries in the config file). Writes are never retried.
package httputil
