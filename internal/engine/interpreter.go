package engine

import (
	"context"
	"image"
	"io"

	"github.com/NisargGB/Flipbook-Compiler/internal/compositor"
	"github.com/NisargGB/Flipbook-Compiler/internal/renderer"
	"github.com/NisargGB/Flipbook-Compiler/internal/script"
	"github.com/NisargGB/Flipbook-Compiler/internal/source"
	"github.com/NisargGB/Flipbook-Compiler/internal/timeline"
)

// State is the execution context of one compilation. It is created by
// NewState and passed explicitly to every Execute call.
type State struct {
	Size timeline.Size
	// Line is the 1-based script line of the instruction being executed.
	Line  int
	Begun bool

	// Placements counts single-frame draws that touched at least one pixel.
	Placements int
	Executed   []script.Instruction

	timeline *timeline.Timeline
}

func NewState() *State {
	return &State{Size: timeline.DefaultSize()}
}

// Timeline returns the frame buffer, creating it at the current frame size
// on first use.
func (st *State) Timeline() *timeline.Timeline {
	if st.timeline == nil {
		st.timeline = timeline.New(st.Size)
	}
	return st.timeline
}

// Frames is the rendered sequence, empty when nothing was drawn.
func (st *State) Frames() []*image.RGBA {
	if st.timeline == nil {
		return nil
	}
	return st.timeline.Frames()
}

// Interpreter executes instructions against a State.
type Interpreter struct {
	Source source.Source
	Guard  timeline.GrowthGuard
}

// Execute runs one instruction. Failures come back as *script.Error carrying
// the instruction's line.
func (in *Interpreter) Execute(st *State, instr *script.Instruction) error {
	st.Line = instr.Line
	if err := instr.Validate(); err != nil {
		return err
	}

	var err error
	switch instr.Op {
	case script.OpFrameSize:
		if st.Begun {
			return &script.Error{Kind: script.SyntaxError, Line: st.Line, Msg: "frame_size must be the first instruction"}
		}
		st.Size = timeline.Size{Height: instr.FrameSize.Height, Width: instr.FrameSize.Width}
	case script.OpShow:
		err = in.show(st, instr.Show)
	case script.OpMove:
		err = in.move(st, instr.Move)
	}
	st.Begun = true
	if err != nil {
		return err
	}
	st.Executed = append(st.Executed, *instr)
	return nil
}

func (in *Interpreter) show(st *State, s *script.Show) error {
	img, err := in.load(st, s.Path, s.Scale)
	if err != nil {
		return err
	}
	defer compositor.Release(img)

	return in.place(st, img, s.Start, s.End, s.Top, s.Right)
}

func (in *Interpreter) move(st *State, m *script.Move) error {
	img, err := in.load(st, m.Path, m.Scale)
	if err != nil {
		return err
	}
	defer compositor.Release(img)

	for _, p := range renderer.Path(m) {
		f := m.Frame(p.Frame, p.Top, p.Right)
		if err := in.place(st, img, f.Start, f.End, f.Top, f.Right); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) load(st *State, path string, scale float64) (*image.NRGBA, error) {
	img, err := in.Source.Load(path)
	if err != nil {
		return nil, &script.Error{Kind: script.ResourceError, Line: st.Line, Msg: path, Err: err}
	}
	scaled, err := compositor.Scale(img, scale)
	if err != nil {
		return nil, &script.Error{Kind: script.ResourceError, Line: st.Line, Msg: path, Err: err}
	}
	return scaled, nil
}

func (in *Interpreter) place(st *State, img *image.NRGBA, start, end, top, right int) error {
	tl := st.Timeline()
	if in.Guard != nil {
		tl.SetGuard(in.Guard)
	}
	n, err := compositor.Place(tl, img, start, end, top, right)
	if err != nil {
		return &script.Error{Kind: script.ResourceError, Line: st.Line, Err: err}
	}
	st.Placements += n
	return nil
}

// Compile reads a script line by line, executing each instruction as soon
// as it is parsed. It stops at the first error.
func Compile(ctx context.Context, r io.Reader, in *Interpreter) (*State, error) {
	st := NewState()
	sc := script.NewScanner(r)
	for sc.Next() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		instr := sc.Instruction()
		Logger.Debug("execute", "line", instr.Line, "instruction", instr.String())
		if err := in.Execute(st, instr); err != nil {
			return st, err
		}
	}
	if err := sc.Err(); err != nil {
		st.Line = sc.Line()
		return st, err
	}
	return st, nil
}

// CompilePlan executes a previously compiled instruction stream.
func CompilePlan(ctx context.Context, plan *script.Plan, in *Interpreter) (*State, error) {
	st := NewState()
	for i := range plan.Instructions {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		instr := &plan.Instructions[i]
		Logger.Debug("execute", "line", instr.Line, "instruction", instr.String())
		if err := in.Execute(st, instr); err != nil {
			return st, err
		}
	}
	return st, nil
}
