package at

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// CRLF line ending for AT commands
	CRLF = "\x0d\x0a"
	// CtrlZ terminates the payload of a two-phase command
	CtrlZ = "\x1a"
	// Prompt is sent by the modem when it waits for the payload of a two-phase command
	Prompt = "> "

	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	NoDialtone = "NO DIALTONE"
	CMEPrefix  = "+CME ERROR:"
	CMSPrefix  = "+CMS ERROR:"
)

// Kind classifies the outcome of a command.
type Kind int

// All outcome kinds
const (
	NoError Kind = iota
	GenericError
	Timeout
	CMEError
	CMSError
	ChannelClosed
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "no error"
	case GenericError:
		return "error"
	case Timeout:
		return "timeout"
	case CMEError:
		return "CME error"
	case CMSError:
		return "CMS error"
	case ChannelClosed:
		return "channel closed"
	default:
		return fmt.Sprintf("kind %d", int(k))
	}
}

// Error is the outcome of a command that did not complete with OK.
type Error struct {
	Kind Kind
	// Code is the numeric subtype of CME and CMS errors.
	Code int
	// Status is the final status line as received, if any.
	Status string
	// Err is the underlying cause, e.g. the transport error of a closed channel.
	Err error

	sentinel bool
}

// Sentinel errors to be used with errors.Is. They match any error of the same kind.
var (
	ErrGeneric = &Error{Kind: GenericError, sentinel: true}
	ErrTimeout = &Error{Kind: Timeout, sentinel: true}
	ErrCME     = &Error{Kind: CMEError, sentinel: true}
	ErrCMS     = &Error{Kind: CMSError, sentinel: true}
	ErrClosed  = &Error{Kind: ChannelClosed, sentinel: true}
)

func (e *Error) Error() string {
	switch {
	case e.Kind == CMEError || e.Kind == CMSError:
		return fmt.Sprintf("%s %d", e.Kind, e.Code)
	case e.Status != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind, or an Error with the same kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.sentinel || t.Code == e.Code
}

// NewCMEError returns the error for "+CME ERROR: <code>".
func NewCMEError(code int) *Error {
	return &Error{Kind: CMEError, Code: code, Status: fmt.Sprintf("%s %d", CMEPrefix, code)}
}

// NewCMSError returns the error for "+CMS ERROR: <code>".
func NewCMSError(code int) *Error {
	return &Error{Kind: CMSError, Code: code, Status: fmt.Sprintf("%s %d", CMSPrefix, code)}
}

// KindOf maps any error to its outcome kind. Errors that are not an *Error are generic.
func KindOf(err error) Kind {
	if err == nil {
		return NoError
	}
	var atErr *Error
	if errors.As(err, &atErr) {
		return atErr.Kind
	}
	return GenericError
}

// ParseFinal checks if the given line is a final status line. If so, it returns the
// outcome of the command that is terminated by this line: nil for OK, an *Error otherwise.
func ParseFinal(line string) (bool, error) {
	s := strings.TrimSpace(line)
	switch s {
	case OK:
		return true, nil
	case ERROR, NoCarrier, Busy, NoAnswer, NoDialtone:
		return true, &Error{Kind: GenericError, Status: s}
	}

	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, CMEPrefix):
		return true, codedError(CMEError, s, s[len(CMEPrefix):])
	case strings.HasPrefix(upper, CMSPrefix):
		return true, codedError(CMSError, s, s[len(CMSPrefix):])
	}
	return false, nil
}

// IsFinal reports whether the given line terminates a command.
func IsFinal(line string) bool {
	final, _ := ParseFinal(line)
	return final
}

// codedError falls back to a generic error if the code is not numeric (e.g. verbose error reporting).
func codedError(kind Kind, status string, code string) *Error {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return &Error{Kind: GenericError, Status: status}
	}
	return &Error{Kind: kind, Code: n, Status: status}
}
