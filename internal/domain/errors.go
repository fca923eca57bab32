package domain

import "errors"

// Kind classifies a failure surfaced to a tool caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthentication
	KindPermission
	KindRateLimit
	KindNotFound
	KindValidation
	KindUpstream
	KindTransport
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindRateLimit:
		return "rate_limit"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing the gateway and tool boundaries.
// Message is safe to show to the caller; it never contains credentials.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int    // upstream HTTP status, when there was one
	Body       string // truncated upstream body, upstream errors only
	Err        error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrPermission     = &Error{Kind: KindPermission}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrUpstream       = &Error{Kind: KindUpstream}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrPrecondition   = &Error{Kind: KindPrecondition}
)

func (e *Error) Error() string {
	if e.Kind == KindTransport && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// NewError builds a classified error wrapping cause (which may be nil).
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// NewValidationError reports bad caller input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
