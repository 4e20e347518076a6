package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const commentPrefix = "#"

// MaxLineLength is the longest script line the scanner accepts, in bytes.
const MaxLineLength = 1 << 20

// ParseLine classifies a single script line. Comments and blank lines yield
// a nil instruction and a nil error. lineNo is 1-based and is carried by both
// the instruction and any returned *Error.
func ParseLine(lineNo int, text string) (*Instruction, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], commentPrefix) {
		return nil, nil
	}

	switch Op(fields[0]) {
	case OpFrameSize:
		return parseFrameSize(lineNo, fields[1:])
	case OpShow:
		return parseShow(lineNo, fields[1:])
	case OpMove:
		return parseMove(lineNo, fields[1:])
	default:
		return nil, newError(SyntaxError, lineNo, "unknown command %q", fields[0])
	}
}

func parseFrameSize(lineNo int, args []string) (*Instruction, error) {
	if len(args) != 2 {
		return nil, newError(FrameSizeError, lineNo, "frame_size expects 2 fields, got %d", len(args))
	}
	height, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, newError(FrameSizeError, lineNo, "height %q is not an integer", args[0])
	}
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, newError(FrameSizeError, lineNo, "width %q is not an integer", args[1])
	}
	if height <= 0 || width <= 0 {
		return nil, newError(FrameSizeError, lineNo, "frame size %dx%d must be positive", height, width)
	}
	return &Instruction{
		Line:      lineNo,
		Op:        OpFrameSize,
		FrameSize: &FrameSize{Height: height, Width: width},
	}, nil
}

func parseShow(lineNo int, args []string) (*Instruction, error) {
	f := fieldReader{line: lineNo, op: OpShow, args: args}
	f.arity(6)
	show := &Show{
		Path:  f.str(0),
		Start: f.integer(1, "start frame"),
		End:   f.integer(2, "end frame"),
		Scale: f.number(3, "scale"),
		Top:   f.integer(4, "top offset"),
		Right: f.integer(5, "right offset"),
	}
	if f.err == nil {
		f.checkRange(show.Start, show.End, show.Scale)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Instruction{Line: lineNo, Op: OpShow, Show: show}, nil
}

func parseMove(lineNo int, args []string) (*Instruction, error) {
	f := fieldReader{line: lineNo, op: OpMove, args: args}
	f.arity(8)
	move := &Move{
		Path:       f.str(0),
		Start:      f.integer(1, "start frame"),
		End:        f.integer(2, "end frame"),
		Scale:      f.number(3, "scale"),
		StartTop:   f.integer(4, "start top offset"),
		StartRight: f.integer(5, "start right offset"),
		EndTop:     f.integer(6, "end top offset"),
		EndRight:   f.integer(7, "end right offset"),
	}
	if f.err == nil {
		f.checkRange(move.Start, move.End, move.Scale)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Instruction{Line: lineNo, Op: OpMove, Move: move}, nil
}

// fieldReader coerces positional fields and keeps the first failure.
type fieldReader struct {
	line int
	op   Op
	args []string
	err  *Error
}

func (f *fieldReader) fail(format string, args ...interface{}) {
	if f.err == nil {
		f.err = newError(ParseError, f.line, format, args...)
	}
}

func (f *fieldReader) arity(n int) {
	if len(f.args) != n {
		f.fail("%s expects %d fields, got %d", f.op, n, len(f.args))
	}
}

func (f *fieldReader) str(i int) string {
	if f.err != nil {
		return ""
	}
	return f.args[i]
}

func (f *fieldReader) integer(i int, name string) int {
	if f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(f.args[i])
	if err != nil {
		f.fail("%s %q is not an integer", name, f.args[i])
	}
	return v
}

func (f *fieldReader) number(i int, name string) float64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(f.args[i], 64)
	if err != nil {
		f.fail("%s %q is not a number", name, f.args[i])
	}
	return v
}

func (f *fieldReader) checkRange(start, end int, scale float64) {
	if msg := rangeProblem(start, end, scale); msg != "" {
		f.fail("%s", msg)
	}
}

func rangeProblem(start, end int, scale float64) string {
	switch {
	case start < 0:
		return fmt.Sprintf("start frame %d is negative", start)
	case end <= start:
		return fmt.Sprintf("frame range [%d, %d) is empty", start, end)
	case math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0:
		return fmt.Sprintf("scale %v must be a positive number", scale)
	}
	return ""
}

// Scanner reads a script one instruction at a time. It enforces that
// frame_size, if present, is the first meaningful line.
type Scanner struct {
	lines *bufio.Scanner
	line  int
	begun bool
	instr *Instruction
	err   error
}

func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	return &Scanner{lines: lines}
}

// Next advances to the next instruction. It returns false at end of input or
// on the first error, which Err then reports.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	for s.lines.Scan() {
		s.line++
		instr, err := ParseLine(s.line, s.lines.Text())
		if err != nil {
			s.err = err
			return false
		}
		if instr == nil {
			continue
		}
		if instr.Op == OpFrameSize && s.begun {
			s.err = newError(SyntaxError, s.line, "frame_size must be the first instruction")
			return false
		}
		s.begun = true
		s.instr = instr
		return true
	}
	switch err := s.lines.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		s.err = newError(ParseError, s.line+1, "line is longer than %d bytes", MaxLineLength)
	case err != nil:
		s.err = fmt.Errorf("read script after line %d: %w", s.line, err)
	}
	return false
}

// Instruction returns the instruction produced by the last call to Next.
func (s *Scanner) Instruction() *Instruction {
	return s.instr
}

// Line is the 1-based number of the last line read.
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) Err() error {
	return s.err
}

// Parse validates a whole script and returns its instruction stream.
func Parse(r io.Reader) ([]Instruction, error) {
	var out []Instruction
	s := NewScanner(r)
	for s.Next() {
		out = append(out, *s.Instruction())
	}
	return out, s.Err()
}
