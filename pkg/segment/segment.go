// Package segment splits a raw editor buffer into an ordered sequence of
// spans that are either static text or resolvable expressions delimited by
// configurable markers.
//
// Segmentation is total and deterministic: every byte of the buffer belongs
// to exactly one segment, and concatenating the segments in order
// reconstructs the buffer exactly.
package segment

import (
	"iter"
	"strings"

	"github.com/inlet-lang/inlet/pkg/position"
)

// Kind classifies a segment.
type Kind int

const (
	// Static is literal text with no evaluation semantics.
	Static Kind = iota
	// Resolvable is a delimited expression to be evaluated against
	// runtime data.
	Resolvable
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Resolvable:
		return "resolvable"
	default:
		return "unknown"
	}
}

// Segment is one span of the buffer.
//
// Span covers the segment's full extent, delimiters included, so that
// offsets across all segments are contiguous. For resolvable segments Raw
// is the expression source between the delimiters; for static segments Raw
// equals Span.Text.
type Segment struct {
	Kind Kind
	Span position.Pos
	Raw  string
	// RawOffset is the buffer offset at which Raw starts: Span.Offset for
	// static segments, past the open delimiter for resolvable ones. Kept
	// explicitly because searching for Raw inside Span.Text mis-anchors
	// when the raw text also occurs in the delimiter.
	RawOffset int
}

// Delimiters are the opening and closing markers of a resolvable span.
type Delimiters struct {
	Open  string
	Close string
}

// DefaultDelimiters are the conventional mustache-style markers.
func DefaultDelimiters() Delimiters {
	return Delimiters{Open: "{{", Close: "}}"}
}

func (d Delimiters) valid() bool {
	return d.Open != "" && d.Close != ""
}

// Scan lazily segments buffer. The returned sequence is restartable and may
// be abandoned early; no work is done past the last segment yielded.
//
// Matching is non-greedy and delimiters do not nest: the first close marker
// after an open marker terminates the resolvable span, and any further open
// marker in between is literal text of that span. An open marker with no
// matching close degrades the rest of the buffer into the pending static
// segment rather than failing.
func Scan(buffer string, delims Delimiters) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		if buffer == "" {
			return
		}
		if !delims.valid() {
			yield(Segment{Kind: Static, Span: position.New(buffer, 0), Raw: buffer})
			return
		}
		static := func(text string, at int) Segment {
			return Segment{Kind: Static, Span: position.New(text, at), Raw: text, RawOffset: at}
		}

		staticStart := 0
		cursor := 0
		for cursor < len(buffer) {
			rel := strings.Index(buffer[cursor:], delims.Open)
			if rel < 0 {
				break
			}
			open := cursor + rel

			inner := open + len(delims.Open)
			rel = strings.Index(buffer[inner:], delims.Close)
			if rel < 0 {
				// unterminated open marker: everything from the
				// pending static start to the end is literal
				break
			}
			closeAt := inner + rel
			end := closeAt + len(delims.Close)

			if open > staticStart {
				if !yield(static(buffer[staticStart:open], staticStart)) {
					return
				}
			}

			full := buffer[open:end]
			if !yield(Segment{Kind: Resolvable, Span: position.New(full, open), Raw: buffer[inner:closeAt], RawOffset: inner}) {
				return
			}

			staticStart = end
			cursor = end
		}

		if staticStart < len(buffer) {
			yield(static(buffer[staticStart:], staticStart))
		}
	}
}

// Split segments buffer eagerly.
func Split(buffer string, delims Delimiters) []Segment {
	var out []Segment
	for seg := range Scan(buffer, delims) {
		out = append(out, seg)
	}
	return out
}

// Resolvables returns only the resolvable segments of buffer.
func Resolvables(buffer string, delims Delimiters) []Segment {
	var out []Segment
	for seg := range Scan(buffer, delims) {
		if seg.Kind == Resolvable {
			out = append(out, seg)
		}
	}
	return out
}
