package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches a RemoteError carrying HTTP 404.
var ErrNotFound = errors.New("remote resource not found")

// ErrEmptyBody is returned when a success answer carries no usable value.
var ErrEmptyBody = errors.New("empty response body")

// ErrEmptyToken is returned when a login succeeds without handing out a token.
var ErrEmptyToken = errors.New("remote login returned no token")

// RemoteError is a non-2xx answer from the remote API.
type RemoteError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: remote answered %d %s", e.Op, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes errors.Is(err, ErrNotFound) true for 404 answers.
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// TransportError is a failure to obtain a usable answer at all:
// timeout, DNS, refused connection or an unreadable success body.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
