package script

import (
	"errors"
	"fmt"
)

// Kind classifies a compilation failure.
type Kind int

const (
	SyntaxError Kind = iota
	ParseError
	FrameSizeError
	ResourceError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "Syntax Error"
	case ParseError:
		return "Parsing Error"
	case FrameSizeError:
		return "Frame size error"
	case ResourceError:
		return "Resource error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a fatal compilation error tied to a 1-based script line.
type Error struct {
	Kind Kind
	Line int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	detail := e.Msg
	if e.Err != nil {
		if detail != "" {
			detail += ": "
		}
		detail += e.Err.Error()
	}
	if detail == "" {
		return fmt.Sprintf("%s at line %d", e.Kind, e.Line)
	}
	return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a bare *Error carrying only a Kind, so that
// errors.Is(err, &Error{Kind: ParseError}) works regardless of line.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Line == 0 || t.Line == e.Line)
}

func newError(kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// AtLine attaches a line number and kind to err. An existing *Error keeps its
// kind and only gets the line filled in when it has none.
func AtLine(err error, kind Kind, line int) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		if se.Line == 0 {
			se.Line = line
		}
		return se
	}
	return &Error{Kind: kind, Line: line, Err: err}
}
