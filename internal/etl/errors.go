package etl

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline stages. Concrete errors wrap one of
// these so callers can test them with errors.Is.
var (
	ErrTransientFetch    = errors.New("fetch failed")
	ErrUnsupportedFormat = errors.New("unsupported content_type")
	ErrParse             = errors.New("malformed payload")
	ErrPersistence       = errors.New("persistence failed")
	ErrSchema            = errors.New("schema mismatch")
)

// FetchError reports an extraction that failed on every attempt.
type FetchError struct {
	Endpoint string
	Date     string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s failed after %d attempt(s): %v", e.Endpoint, e.Date, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrTransientFetch, e.Err}
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so RetryPolicy.Do stops retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
