package renderer

import (
	"math"

	"github.com/NisargGB/Flipbook-Compiler/internal/script"
)

// Placement is a single-frame draw produced by expanding a move.
type Placement struct {
	Frame int
	Top   int
	Right int
}

// Steps returns the per-frame offset increments of a move: the distance
// between start and end offsets divided by end-1-start. A move covering a
// single frame has no span and does not move.
func Steps(m *script.Move) (top, right float64) {
	span := m.End - 1 - m.Start
	if span <= 0 {
		return 0, 0
	}
	return step(m.StartTop, m.EndTop, span), step(m.StartRight, m.EndRight, span)
}

// Path expands a move into one placement per frame in [Start, End), in
// frame order. The offset starts at the move's start offset and gains one
// step per frame; each placement uses the running offset truncated toward
// zero.
func Path(m *script.Move) []Placement {
	n := m.End - m.Start
	if n <= 0 {
		return nil
	}
	topStep, rightStep := Steps(m)
	top, right := float64(m.StartTop), float64(m.StartRight)

	path := make([]Placement, 0, n)
	for frame := m.Start; frame < m.End; frame++ {
		path = append(path, Placement{Frame: frame, Top: truncate(top), Right: truncate(right)})
		top += topStep
		right += rightStep
	}
	return path
}

// step is the increment that takes from to to over span frames
func step(from, to, span int) float64 {
	return (float64(to) - float64(from)) / float64(span)
}

// truncate converts an offset toward zero, saturating at the int range.
func truncate(v float64) int {
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(v)
}
