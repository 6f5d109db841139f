package marketdata

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every typed error below matches exactly one of them.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrTransport        = errors.New("transport failure")
	ErrVenueUnavailable = errors.New("venue unavailable")
	ErrNotSupported     = errors.New("not supported by venue")
	ErrAdapter          = errors.New("unexpected venue payload")
)

// InvalidArgumentError is a malformed or unsupported (base, counter) pair. It is always
// returned before any network access.
type InvalidArgumentError struct {
	Venue   string
	Base    string
	Counter string
	Reason  string
	Err     error
}

func (e *InvalidArgumentError) Error() string {
	msg := fmt.Sprintf("%s: invalid argument %q/%q: %s", e.Venue, e.Base, e.Counter, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
func (e *InvalidArgumentError) Unwrap() error        { return e.Err }

// TransportError wraps a network, HTTP status or decoding failure of the transport
// collaborator. The caller may retry.
type TransportError struct {
	Venue      string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: transport error calling %s (status %d): %v", e.Venue, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transport error calling %s: %v", e.Venue, e.Endpoint, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// VenueError is the venue-unavailable signal: the venue answered, but its payload carries
// a business error (maintenance, rate limit, ...). It comes with a nil result and is
// distinct from a TransportError.
type VenueError struct {
	Venue     string
	Operation string
	Message   string
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("%s: %s unavailable: %s", e.Venue, e.Operation, e.Message)
}

func (e *VenueError) Is(target error) bool { return target == ErrVenueUnavailable }

// NotSupportedError marks an operation the venue never offers. It is never retryable.
type NotSupportedError struct {
	Venue     string
	Operation string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: %s is not available from this exchange", e.Venue, e.Operation)
}

func (e *NotSupportedError) Is(target error) bool { return target == ErrNotSupported }

// AdapterError reports a payload that does not match the documented venue format.
type AdapterError struct {
	Venue  string
	Reason string
	Err    error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unexpected payload: %s: %v", e.Venue, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: unexpected payload: %s", e.Venue, e.Reason)
}

func (e *AdapterError) Is(target error) bool { return target == ErrAdapter }
func (e *AdapterError) Unwrap() error        { return e.Err }

// NewAdapterError is a shorthand used by the venue adapters.
func NewAdapterError(venue, reason string, err error) error {
	return &AdapterError{Venue: venue, Reason: reason, Err: err}
}

// Result classifies the outcome of a service call.
type Result int

const (
	ResultSuccess Result = iota
	ResultUnavailable
	ResultFailure
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultUnavailable:
		return "unavailable"
	default:
		return "failure"
	}
}

// Outcome maps a call's error onto the three outcomes callers must handle distinctly.
func Outcome(err error) Result {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrVenueUnavailable):
		return ResultUnavailable
	default:
		return ResultFailure
	}
}

// IsRetryable reports whether repeating the same call later may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrVenueUnavailable)
}
