package script

import "fmt"

// Op names a script command.
type Op string

const (
	OpFrameSize Op = "frame_size"
	OpShow      Op = "show"
	OpMove      Op = "move"
)

// Instruction is one validated script command. Exactly one of the payload
// fields is set, matching Op.
type Instruction struct {
	Line      int        `yaml:"line"`
	Op        Op         `yaml:"op"`
	FrameSize *FrameSize `yaml:"frame_size,omitempty"`
	Show      *Show      `yaml:"show,omitempty"`
	Move      *Move      `yaml:"move,omitempty"`
}

// FrameSize is the frame_size directive. Height is the row count.
type FrameSize struct {
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
}

// Show draws Path scaled by Scale at a fixed offset into frames [Start, End).
type Show struct {
	Path  string  `yaml:"path"`
	Start int     `yaml:"start"`
	End   int     `yaml:"end"`
	Scale float64 `yaml:"scale"`
	Top   int     `yaml:"top"`
	Right int     `yaml:"right"`
}

// Move draws Path into frames [Start, End), sliding its offset linearly from
// (StartTop, StartRight) to (EndTop, EndRight).
type Move struct {
	Path       string  `yaml:"path"`
	Start      int     `yaml:"start"`
	End        int     `yaml:"end"`
	Scale      float64 `yaml:"scale"`
	StartTop   int     `yaml:"start_top"`
	StartRight int     `yaml:"start_right"`
	EndTop     int     `yaml:"end_top"`
	EndRight   int     `yaml:"end_right"`
}

// Frame returns the single-frame show that places the image at frame with
// the given offset.
func (m *Move) Frame(frame, top, right int) Show {
	return Show{
		Path:  m.Path,
		Start: frame,
		End:   frame + 1,
		Scale: m.Scale,
		Top:   top,
		Right: right,
	}
}

// Validate re-checks an instruction that did not come from ParseLine, such
// as one read back from a plan.
func (i *Instruction) Validate() error {
	switch i.Op {
	case OpFrameSize:
		if i.FrameSize == nil {
			return newError(FrameSizeError, i.Line, "frame_size without dimensions")
		}
		if i.FrameSize.Height <= 0 || i.FrameSize.Width <= 0 {
			return newError(FrameSizeError, i.Line, "frame size %dx%d must be positive", i.FrameSize.Height, i.FrameSize.Width)
		}
	case OpShow:
		if i.Show == nil {
			return newError(ParseError, i.Line, "show without fields")
		}
		if msg := rangeProblem(i.Show.Start, i.Show.End, i.Show.Scale); msg != "" {
			return newError(ParseError, i.Line, "%s", msg)
		}
	case OpMove:
		if i.Move == nil {
			return newError(ParseError, i.Line, "move without fields")
		}
		if msg := rangeProblem(i.Move.Start, i.Move.End, i.Move.Scale); msg != "" {
			return newError(ParseError, i.Line, "%s", msg)
		}
	default:
		return newError(SyntaxError, i.Line, "unknown command %q", string(i.Op))
	}
	return nil
}

func (i *Instruction) String() string {
	switch {
	case i.FrameSize != nil:
		return fmt.Sprintf("frame_size %d %d", i.FrameSize.Height, i.FrameSize.Width)
	case i.Show != nil:
		s := i.Show
		return fmt.Sprintf("show %s %d %d %g %d %d", s.Path, s.Start, s.End, s.Scale, s.Top, s.Right)
	case i.Move != nil:
		m := i.Move
		return fmt.Sprintf("move %s %d %d %g %d %d %d %d", m.Path, m.Start, m.End, m.Scale, m.StartTop, m.StartRight, m.EndTop, m.EndRight)
	}
	return string(i.Op)
}
