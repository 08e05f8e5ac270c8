// Package position provides byte-offset addressing for spans of an editor
// buffer, plus conversions to the line/column and character-offset forms
// hosting surfaces expect.
//
// Identity of a span for caching purposes is the pair (text, offset) — see
// Pos.Key. Two spans with the same raw text at the same offset are the same
// span across passes.
package position

import (
	"fmt"
	"strings"
)

// Pos is a span of the owning buffer: the raw text of the span and the byte
// offset at which it starts. The end offset is exclusive.
type Pos struct {
	// Offset is the byte offset of the span start in the buffer.
	Offset int
	// Text is the exact buffer slice covered by the span.
	Text string
}

func New(text string, offset int) Pos {
	return Pos{Text: text, Offset: offset}
}

// Key returns the identity of this span for cache/diff matching.
func (p Pos) Key() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

func (p Pos) Len() int {
	return len(p.Text)
}

// End returns the exclusive end offset of the span.
func (p Pos) End() int {
	return p.Offset + len(p.Text)
}

func (p Pos) String() string {
	return p.Key()
}

// ContainsOffset reports whether off falls within [Offset, End]. The end
// offset is included so a cursor sitting immediately after the last byte of
// a span still counts as inside it, which is what an editor caret does.
func (p Pos) ContainsOffset(off int) bool {
	return off >= p.Offset && off <= p.End()
}

// Overlaps reports whether two spans share at least one offset. Zero-length
// spans overlap anything they fall inside of.
func (p Pos) Overlaps(other Pos) bool {
	if p.Len() == 0 {
		return p.Offset >= other.Offset && p.Offset <= other.End()
	}
	if other.Len() == 0 {
		return other.Offset >= p.Offset && other.Offset <= p.End()
	}
	return other.Offset < p.End() && other.End() > p.Offset
}

// Place is a zero-based line/character coordinate.
type Place struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) coordinate pair.
type Range struct {
	Start Place
	End   Place
}

// LineAndColumn returns the zero-based line and column of the span start
// within buffer.
func (p Pos) LineAndColumn(buffer string) (line, col int) {
	if p.Offset <= 0 {
		return 0, 0
	}
	prefix := buffer
	if p.Offset < len(buffer) {
		prefix = buffer[:p.Offset]
	}
	line = strings.Count(prefix, "\n")
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		col = len(prefix) - i - 1
	} else {
		col = len(prefix)
	}
	return line, col
}

// GetRange converts the span into a line/character Range within buffer.
func (p Pos) GetRange(buffer string) Range {
	startLine, startCol := p.LineAndColumn(buffer)
	endLine, endCol := Pos{Offset: p.End()}.LineAndColumn(buffer)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

// SeenMap tracks which span identities have already been visited in a pass.
type SeenMap map[string]struct{}

func NewSeenMap() SeenMap {
	return make(SeenMap)
}

func (m SeenMap) Has(p Pos) bool {
	_, ok := m[p.Key()]
	return ok
}

func (m SeenMap) Add(p Pos) {
	m[p.Key()] = struct{}{}
}
