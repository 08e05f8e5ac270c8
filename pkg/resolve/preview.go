package resolve

import "strings"

// Preview renders the buffer as plain text with each resolved segment
// replaced by its display text. Segments that did not resolve keep their
// original source, as do structural (grouping-rooted) segments — those are
// evaluated for correctness but never substituted into a preview.
//
// resolutions must be in buffer order, as produced by ResolveAll.
func Preview(buffer string, resolutions []Resolution) string {
	var b strings.Builder
	cursor := 0
	for _, res := range resolutions {
		span := res.Segment.Span
		if span.Offset < cursor || span.End() > len(buffer) {
			continue
		}
		b.WriteString(buffer[cursor:span.Offset])
		if res.Resolved() && !res.Structural {
			b.WriteString(res.Display)
		} else {
			b.WriteString(span.Text)
		}
		cursor = span.End()
	}
	b.WriteString(buffer[cursor:])
	return b.String()
}

// Flatten returns the aggregate resolvable list exposed to collaborators:
// every resolution except structural ones, in buffer order.
func Flatten(resolutions []Resolution) []Resolution {
	var out []Resolution
	for _, res := range resolutions {
		if res.Structural {
			continue
		}
		out = append(out, res)
	}
	return out
}
