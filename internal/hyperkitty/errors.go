package hyperkitty

import (
	"errors"
	"fmt"
)

// RequestError indicates the server answered with a non-200 status.
// Empty collections always mean "no data"; a failed request surfaces
// as this error instead.
type RequestError struct {
	URL        string
	StatusCode int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// IsRequestError reports whether err (or any error in its chain) is a
// RequestError.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// ConnectError indicates a network-level failure (refused connection,
// timeout, DNS) before any HTTP status was received. A batch fetch
// aborts entirely on the first ConnectError, since all URLs in a batch
// target the same server.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// IsConnectError reports whether err (or any error in its chain) is a
// ConnectError.
func IsConnectError(err error) bool {
	var connErr *ConnectError
	return errors.As(err, &connErr)
}

// URLFetchError names a collection URL that could not be resolved
// while reconciling a thread's emails. It is recoverable: the caller
// reports it and lets the user retry.
type URLFetchError struct {
	URL string
	Err error
}

func (e *URLFetchError) Error() string {
	return fmt.Sprintf("fetching collection %s: %v", e.URL, e.Err)
}

func (e *URLFetchError) Unwrap() error { return e.Err }

// IsURLFetchError reports whether err (or any error in its chain) is a
// URLFetchError.
func IsURLFetchError(err error) bool {
	var fetchErr *URLFetchError
	return errors.As(err, &fetchErr)
}
