package model

import "fmt"

// Reject is a designed validation failure: a protocol error code plus a
// human-readable message. Every domain rejection is one of these; anything
// else bubbling out of the core is an infrastructure error.
type Reject struct {
	Code    string
	Message string
}

func (r *Reject) Error() string {
	return r.Code + ": " + r.Message
}

func Rejectf(code, format string, args ...interface{}) *Reject {
	return &Reject{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the protocol code from an error, or fallback when the
// error is not a Reject.
func CodeOf(err error, fallback string) string {
	if r, ok := err.(*Reject); ok {
		return r.Code
	}
	return fallback
}
