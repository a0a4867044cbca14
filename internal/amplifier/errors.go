// internal/amplifier/errors.go
package amplifier

import "fmt"

// Kind classifies a session-terminal failure.
// Values double as the raw error code published in the status block.
type Kind uint16

const (
	KindNoInputSelected Kind = iota + 1
	KindUnsupportedValue
	KindConnectTimeout
	KindConnectRefused
	KindReadTimeout
	KindShortRead
	KindSocketUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNoInputSelected:
		return "no input selected"
	case KindUnsupportedValue:
		return "unsupported value"
	case KindConnectTimeout:
		return "connect timeout"
	case KindConnectRefused:
		return "connect refused"
	case KindReadTimeout:
		return "read timeout"
	case KindShortRead:
		return "short read"
	case KindSocketUnavailable:
		return "socket unavailable"
	default:
		return fmt.Sprintf("kind(%d)", uint16(k))
	}
}

// Error is the single error type surfaced by the amplifier layer.
// All kinds are terminal for the current session.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := "amplifier: " + e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Code exposes the kind as a raw status code.
func (e *Error) Code() uint16 { return uint16(e.Kind) }

// Is matches sentinels by kind only, so errors.Is(err, ErrReadTimeout)
// holds regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// ---- sentinels ----

var (
	ErrNoInputSelected   = &Error{Kind: KindNoInputSelected}
	ErrUnsupportedValue  = &Error{Kind: KindUnsupportedValue}
	ErrConnectTimeout    = &Error{Kind: KindConnectTimeout}
	ErrConnectRefused    = &Error{Kind: KindConnectRefused}
	ErrReadTimeout       = &Error{Kind: KindReadTimeout}
	ErrShortRead         = &Error{Kind: KindShortRead}
	ErrSocketUnavailable = &Error{Kind: KindSocketUnavailable}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Errorf builds a kinded error for sibling packages (transport adapters).
func Errorf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}
