package ledger

import (
	"errors"
	"fmt"
)

// Kind discriminates remote-call failures so callers can branch without
// string matching. Local validation failures never reach this package; they
// surface as field errors from the compose and budget layers.
type Kind int

const (
	// KindAuthorization is an authorization-denied response. Not retryable;
	// the session guard has already fired by the time the caller sees it.
	KindAuthorization Kind = iota
	// KindConflict is a business-rule rejection (overdraft without the
	// override flag, same-account transfer, currency mismatch). Retryable
	// after the user corrects the request.
	KindConflict
	// KindNetwork is a transport failure or timeout; no response arrived.
	KindNetwork
	// KindServer is any other non-2xx response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is a failed remote call. Message carries the collaborator's own
// wording when it sent one, else a generic fallback.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("ledger: %s error: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("ledger: %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is a ledger Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}
