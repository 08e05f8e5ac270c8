// Package highlight computes the minimal set of marking changes between
// two resolution passes over the same field.
//
// The differ matches segments by identity — the pair (raw text, start
// offset) — so an edit that leaves a segment's text and position untouched
// produces no instructions for it at all.
package highlight

import (
	"context"

	"github.com/inlet-lang/inlet/pkg/position"
	"github.com/inlet-lang/inlet/pkg/resolve"
)

// Op is the kind of a highlight instruction.
type Op int

const (
	// Add marks a range with the given classification.
	Add Op = iota
	// Remove clears the marking from a range.
	Remove
)

func (o Op) String() string {
	if o == Add {
		return "add"
	}
	return "remove"
}

// Class is the visual classification of a marked range.
type Class int

const (
	// ClassResolvable styles a span that evaluates (or is still being
	// typed — incomplete spans are never styled as errors).
	ClassResolvable Class = iota
	// ClassError styles a span whose expression failed to resolve.
	ClassError
)

func (c Class) String() string {
	if c == ClassResolvable {
		return "resolvable"
	}
	return "error"
}

// Classify maps a resolution outcome to its visual classification.
// Incomplete expressions classify as resolvable so that a half-typed
// expression does not flicker into an error style on every keystroke.
func Classify(res resolve.Resolution) Class {
	switch res.State {
	case resolve.StateResolved, resolve.StateIncomplete:
		return ClassResolvable
	default:
		return ClassError
	}
}

// Instruction is one add/remove directive for the hosting editor surface.
// Instructions are pure output: the core never retains them past emission.
type Instruction struct {
	Op    Op
	Span  position.Pos
	Class Class
}

// CharSpan projects the instruction's span into character offsets within
// buffer, for surfaces that address decorations in characters rather than
// bytes.
func (i Instruction) CharSpan(buffer string) position.CharRange {
	return i.Span.ToCharRange(buffer)
}

// Projector is the boundary to the hosting text-editing surface. Apply
// receives instructions in order: removals for vanished spans first, then
// per-span updates in buffer order (a classification change arrives as
// Remove immediately followed by Add for the same range).
type Projector interface {
	Apply(ctx context.Context, instructions []Instruction) error
}

// Diff computes the instructions that turn the markings of the previous
// pass into those of the current one. It is O(n) in the number of
// segments: previous resolutions are indexed by identity key, never
// compared pairwise.
//
// Diff(s, s) returns nil for any s.
func Diff(previous, current []resolve.Resolution) []Instruction {
	prevByKey := make(map[string]resolve.Resolution, len(previous))
	for _, res := range previous {
		prevByKey[res.Key()] = res
	}

	var out []Instruction
	matched := position.NewSeenMap()

	for _, curr := range current {
		key := curr.Key()
		matched.Add(identity(curr))

		prev, ok := prevByKey[key]
		if !ok {
			out = append(out, Instruction{Op: Add, Span: curr.Segment.Span, Class: Classify(curr)})
			continue
		}
		if prevClass, currClass := Classify(prev), Classify(curr); prevClass != currClass {
			out = append(out,
				Instruction{Op: Remove, Span: prev.Segment.Span, Class: prevClass},
				Instruction{Op: Add, Span: curr.Segment.Span, Class: currClass},
			)
		}
	}

	// vanished spans lose their marking; emitted before adds so a surface
	// applying in order never holds two markings over one range
	var removals []Instruction
	for _, prev := range previous {
		if matched.Has(identity(prev)) {
			continue
		}
		removals = append(removals, Instruction{Op: Remove, Span: prev.Segment.Span, Class: Classify(prev)})
	}
	if len(removals) == 0 {
		return out
	}
	return append(removals, out...)
}

// identity is the matching position of a resolution: raw text at the
// segment's start offset. Its key equals Resolution.Key.
func identity(res resolve.Resolution) position.Pos {
	return position.New(res.Segment.Raw, res.Segment.Span.Offset)
}
