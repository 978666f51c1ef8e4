package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamServiceError reports a failed call to the language-model service.
type UpstreamServiceError struct {
	Provider   string
	StatusCode int // 0 when the request never got an HTTP response
	Attempts   int
	Err        error
}

func (e *UpstreamServiceError) Error() string {
	msg := fmt.Sprintf("%s request failed", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamServiceError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request may succeed.
func (e *UpstreamServiceError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500 && e.StatusCode <= 599:
		return true
	}
	return false
}

// ErrNoChoices is returned when the service answers without any completion.
var ErrNoChoices = errors.New("no choices in response")
