package position

import (
	"github.com/apparentlymart/go-textseg/v15/textseg"
)

// CharRange is a span expressed in character (grapheme cluster) offsets.
// Editor surfaces address decorations in characters, not bytes; the core
// works in bytes and converts at the boundary.
type CharRange struct {
	Start int
	End   int
}

// CharOffset returns the number of grapheme clusters preceding byteOffset
// in buffer. Offsets past the end of the buffer are clamped.
func CharOffset(buffer string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(buffer) {
		byteOffset = len(buffer)
	}
	n, _ := textseg.TokenCount([]byte(buffer[:byteOffset]), textseg.ScanGraphemeClusters)
	return n
}

// ToCharRange projects the span's byte offsets into character offsets
// within buffer.
func (p Pos) ToCharRange(buffer string) CharRange {
	return CharRange{
		Start: CharOffset(buffer, p.Offset),
		End:   CharOffset(buffer, p.End()),
	}
}
