package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed completion call.
type Kind int

const (
	// KindAPI covers any other non-2xx status, undecodable success bodies
	// and transport failures.
	KindAPI Kind = iota
	KindAuthentication
	KindRateLimit
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindBadRequest:
		return "bad_request"
	default:
		return "api"
	}
}

// Error is the single error type returned by Client.
type Error struct {
	Kind        Kind
	Message     string
	HTTPStatus  int    // 0 for transport failures
	RawResponse []byte // body of the failed response, if any
	Err         error  // underlying transport or decode error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrAPI            = &Error{Kind: KindAPI}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
	ErrBadRequest     = &Error{Kind: KindBadRequest}
)

func (e *Error) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("llm %s error (HTTP %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("llm %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.HTTPStatus == 0 && t.Kind == e.Kind
}

// KindOf returns the kind of an *Error in err's chain. ok is false when err
// did not come from the client.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindAPI, false
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusBadRequest:
		return KindBadRequest
	default:
		return KindAPI
	}
}

// statusError builds the error for a non-2xx response.
func statusError(status int, body []byte) *Error {
	return &Error{
		Kind:        KindForStatus(status),
		Message:     errorMessage(status, body),
		HTTPStatus:  status,
		RawResponse: body,
	}
}

func transportError(err error) *Error {
	return &Error{Kind: KindAPI, Message: err.Error(), Err: err}
}

// errorMessage extracts error.message from the envelope. A bare string under
// "error" is accepted too.
func errorMessage(status int, body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		var s string
		if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d error", status)
}
