package core

import "fmt"

// Reason is the wire-level error reason string returned to API clients.
type Reason string

const (
	ReasonInvalidArgument Reason = "ERR_INVALID_ARGUMENT"
	ReasonNotFound        Reason = "ERR_NOT_FOUND"
	ReasonRateLimit       Reason = "ERR_RATE_LIMIT"
	ReasonExternal        Reason = "ERR_EXTERNAL"
	ReasonInternal        Reason = "ERR_INTERNAL"
)

// codes mirror the taxonomy in the judge's error design: each reason has a
// stable numeric code independent of its HTTP status mapping.
var codes = map[Reason]int{
	ReasonInvalidArgument: 1,
	ReasonNotFound:        3,
	ReasonRateLimit:       4,
	ReasonExternal:        5,
	ReasonInternal:        6,
}

// Error is the structured error returned by the core pipeline and
// registries. The HTTP surface renders it as {reason, code, message}.
type Error struct {
	Reason  Reason
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func newErr(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Code: codes[reason], Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return newErr(ReasonInvalidArgument, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newErr(ReasonNotFound, format, args...)
}

func RateLimit(format string, args ...interface{}) *Error {
	return newErr(ReasonRateLimit, format, args...)
}

func External(format string, args ...interface{}) *Error {
	return newErr(ReasonExternal, format, args...)
}

func Internal(format string, args ...interface{}) *Error {
	return newErr(ReasonInternal, format, args...)
}

// AsError unwraps err into *Error if possible.
func AsError(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
