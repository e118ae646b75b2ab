// Package fault turns raw playback and network faults into typed, classified errors.
package fault

import (
	"fmt"
	"net/http"

	"github.com/samber/mo"
)

// Kind is the category of a classified fault.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindFormat     Kind = "format"
	KindPermission Kind = "permission"
	KindAborted    Kind = "aborted"
	KindUnknown    Kind = "unknown"
)

// Code is a native media error code as reported by the media element.
type Code int

const (
	CodeNone           Code = 0
	CodeAborted        Code = 1
	CodeNetwork        Code = 2
	CodeDecode         Code = 3
	CodeSrcUnsupported Code = 4
)

func (c Code) String() string {
	switch c {
	case CodeAborted:
		return "MEDIA_ERR_ABORTED"
	case CodeNetwork:
		return "MEDIA_ERR_NETWORK"
	case CodeDecode:
		return "MEDIA_ERR_DECODE"
	case CodeSrcUnsupported:
		return "MEDIA_ERR_SRC_NOT_SUPPORTED"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Raw is an unclassified fault as observed at the platform boundary.
type Raw struct {
	// Offline is set when connectivity was lost.
	Offline bool
	// Code is the native media error code, CodeNone when absent.
	Code Code
	// Status is the HTTP status of a failed reachability probe, zero when absent.
	Status int
	// Message is the platform's own description.
	Message string
	// Err is the underlying Go error, if any.
	Err error
}

func (r Raw) String() string {
	switch {
	case r.Offline:
		return "offline"
	case r.Status != 0:
		return fmt.Sprintf("http %d: %s", r.Status, r.Message)
	case r.Code != CodeNone:
		return fmt.Sprintf("%s: %s", r.Code, r.Message)
	case r.Err != nil:
		return r.Err.Error()
	default:
		return r.Message
	}
}

// Error is a classified playback fault.
type Error struct {
	Kind      Kind
	Message   string
	Code      mo.Option[int]
	Retryable bool
	Raw       Raw
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Raw.Err
}

// Classify maps a raw fault to its classified form. The mapping is total and
// deterministic: anything unrecognised is an unknown, retryable fault.
func Classify(raw Raw) *Error {
	e := &Error{Raw: raw, Message: raw.Message}
	if raw.Code != CodeNone {
		e.Code = mo.Some(int(raw.Code))
	}

	switch {
	case raw.Offline:
		e.Kind, e.Retryable = KindNetwork, true
		e.Message = "network connection lost"
	case raw.Status == http.StatusUnauthorized || raw.Status == http.StatusForbidden:
		e.Kind, e.Retryable = KindPermission, false
	case raw.Code == CodeAborted:
		e.Kind, e.Retryable = KindAborted, true
	case raw.Code == CodeNetwork:
		e.Kind, e.Retryable = KindNetwork, true
	case raw.Code == CodeDecode:
		e.Kind, e.Retryable = KindFormat, false
	case raw.Code == CodeSrcUnsupported:
		e.Kind, e.Retryable = KindFormat, false
	default:
		e.Kind, e.Retryable = KindUnknown, true
	}

	if e.Message == "" {
		e.Message = defaultMessage(e.Kind, raw.Code)
	}

	return e
}

func defaultMessage(kind Kind, code Code) string {
	switch {
	case code == CodeDecode:
		return "the video could not be decoded"
	case code == CodeSrcUnsupported:
		return "the video format is not supported"
	case kind == KindAborted:
		return "loading was aborted"
	case kind == KindNetwork:
		return "a network error interrupted playback"
	case kind == KindPermission:
		return "access to the video was denied"
	default:
		return "an unknown playback error occurred"
	}
}

// Exhausted builds the terminal error raised once automatic retries run out.
func Exhausted(last *Error, attempts int) *Error {
	e := &Error{
		Kind:      KindUnknown,
		Message:   fmt.Sprintf("maximum retry attempts (%d) reached", attempts),
		Retryable: false,
	}

	if last != nil {
		e.Kind = last.Kind
		e.Code = last.Code
		e.Raw = last.Raw
		e.Message = fmt.Sprintf("%s: %s", e.Message, last.Message)
	}

	return e
}
