package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	httpTimeout  = 10 * time.Second
	maxErrorBody = 512
)

// ErrRequestFailed is the single failure kind for service calls. Non-2xx
// statuses, transport failures and undecodable bodies all match it with
// errors.Is; callers do not branch on the status code.
var ErrRequestFailed = errors.New("API request failed")

// APIError describes a failed service call for logs.
type APIError struct {
	Method     string
	URL        string
	StatusCode int    // 0 when no response was received
	Body       string // leading bytes of the response body
	Err        error  // transport or decode error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0:
		msg := fmt.Sprintf("%s: %d %s (%s %s)", ErrRequestFailed, e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL)
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	case e.Err != nil:
		return fmt.Sprintf("%s: %s %s: %v", ErrRequestFailed, e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %s %s", ErrRequestFailed, e.Method, e.URL)
	}
}

// Is makes every APIError match [ErrRequestFailed].
func (e *APIError) Is(target error) bool { return target == ErrRequestFailed }

// Unwrap returns the transport or decode error, if any.
func (e *APIError) Unwrap() error { return e.Err }

// NewHTTPClient creates an HTTP client with a standard timeout for service requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
