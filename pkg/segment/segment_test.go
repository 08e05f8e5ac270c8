package segment_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/inlet-lang/inlet/pkg/segment"
)

func TestSplit(t *testing.T) {
	delims := segment.DefaultDelimiters()

	tests := []struct {
		name   string
		buffer string
		want   []segment.Segment
	}{
		{
			name:   "empty buffer",
			buffer: "",
			want:   nil,
		},
		{
			name:   "static only",
			buffer: "SELECT 1",
			want: []segment.Segment{
				{Kind: segment.Static, Raw: "SELECT 1"},
			},
		},
		{
			name:   "static then resolvable",
			buffer: "SELECT * FROM {{ $json.table }}",
			want: []segment.Segment{
				{Kind: segment.Static, Raw: "SELECT * FROM "},
				{Kind: segment.Resolvable, Raw: " $json.table "},
			},
		},
		{
			name:   "resolvable only, no empty statics",
			buffer: "{{ $json.missing.path }}",
			want: []segment.Segment{
				{Kind: segment.Resolvable, Raw: " $json.missing.path "},
			},
		},
		{
			name:   "unterminated open degrades to static",
			buffer: "abc {{ $json.x",
			want: []segment.Segment{
				{Kind: segment.Static, Raw: "abc {{ $json.x"},
			},
		},
		{
			name:   "two adjacent resolvables stay separate",
			buffer: "{{ $a }}{{ $b }}",
			want: []segment.Segment{
				{Kind: segment.Resolvable, Raw: " $a "},
				{Kind: segment.Resolvable, Raw: " $b "},
			},
		},
		{
			name:   "nested open is literal text of the span",
			buffer: "x {{ a {{ b }} y",
			want: []segment.Segment{
				{Kind: segment.Static, Raw: "x "},
				{Kind: segment.Resolvable, Raw: " a {{ b "},
				{Kind: segment.Static, Raw: " y"},
			},
		},
		{
			name:   "close without open is literal",
			buffer: "a }} b",
			want: []segment.Segment{
				{Kind: segment.Static, Raw: "a }} b"},
			},
		},
		{
			name:   "empty expression",
			buffer: "a{{}}b",
			want: []segment.Segment{
				{Kind: segment.Static, Raw: "a"},
				{Kind: segment.Resolvable, Raw: ""},
				{Kind: segment.Static, Raw: "b"},
			},
		},
		{
			name:   "trailing static after resolvable",
			buffer: "{{ $x }} rest",
			want: []segment.Segment{
				{Kind: segment.Resolvable, Raw: " $x "},
				{Kind: segment.Static, Raw: " rest"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := segment.Split(tt.buffer, delims)
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want.Kind, got[i].Kind, "segment %d kind", i)
				assert.Equal(t, want.Raw, got[i].Raw, "segment %d raw", i)
			}
		})
	}
}

func TestSplit_Offsets(t *testing.T) {
	buffer := "SELECT * FROM {{ $json.table }} WHERE id = {{ $json.id }}"
	segs := segment.Split(buffer, segment.DefaultDelimiters())

	require.Len(t, segs, 4)

	// spans are contiguous and reconstruct the buffer
	offset := 0
	var rebuilt strings.Builder
	for _, s := range segs {
		require.Equal(t, offset, s.Span.Offset)
		rebuilt.WriteString(s.Span.Text)
		offset = s.Span.End()
	}
	assert.Equal(t, buffer, rebuilt.String())
	assert.Equal(t, len(buffer), offset)

	// resolvable spans include their delimiters, raw excludes them
	assert.Equal(t, "{{ $json.table }}", segs[1].Span.Text)
	assert.Equal(t, " $json.table ", segs[1].Raw)

	// raw offsets point at the raw text itself
	assert.Equal(t, 0, segs[0].RawOffset)
	assert.Equal(t, segs[1].Span.Offset+2, segs[1].RawOffset)
}

func TestSplit_RawOffsetWhenRawMatchesDelimiter(t *testing.T) {
	// the raw text "{" also occurs inside the open delimiter; RawOffset
	// must point past the delimiter, not at the first match
	segs := segment.Resolvables("{{{}}", segment.DefaultDelimiters())

	require.Len(t, segs, 1)
	assert.Equal(t, "{", segs[0].Raw)
	assert.Equal(t, 2, segs[0].RawOffset)
}

func TestSplit_CustomDelimiters(t *testing.T) {
	segs := segment.Split("a <% x %> b", segment.Delimiters{Open: "<%", Close: "%>"})

	require.Len(t, segs, 3)
	assert.Equal(t, segment.Resolvable, segs[1].Kind)
	assert.Equal(t, " x ", segs[1].Raw)
}

func TestSplit_InvalidDelimitersDegradeToStatic(t *testing.T) {
	segs := segment.Split("{{ x }}", segment.Delimiters{})

	require.Len(t, segs, 1)
	assert.Equal(t, segment.Static, segs[0].Kind)
	assert.Equal(t, "{{ x }}", segs[0].Raw)
}

func TestScan_EarlyAbort(t *testing.T) {
	buffer := "a{{1}}b{{2}}c{{3}}d"

	var got []segment.Segment
	for seg := range segment.Scan(buffer, segment.DefaultDelimiters()) {
		got = append(got, seg)
		if len(got) == 2 {
			break
		}
	}

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Raw)
	assert.Equal(t, "1", got[1].Raw)

	// restartable: a fresh scan starts from the beginning
	var first segment.Segment
	for seg := range segment.Scan(buffer, segment.DefaultDelimiters()) {
		first = seg
		break
	}
	assert.Equal(t, got[0], first)
}

func TestResolvables(t *testing.T) {
	got := segment.Resolvables("a {{ $x }} b {{ $y }}", segment.DefaultDelimiters())

	require.Len(t, got, 2)
	assert.Equal(t, " $x ", got[0].Raw)
	assert.Equal(t, " $y ", got[1].Raw)
}

func TestSplit_CoverageProperty(t *testing.T) {
	delims := segment.DefaultDelimiters()

	rapid.Check(t, func(rt *rapid.T) {
		// alternate arbitrary text with delimiter fragments to hit the
		// interesting paths, not just fully random strings
		parts := rapid.SliceOfN(rapid.SampledFrom([]string{
			"{{", "}}", " $json.x ", "abc", "", "{", "}", "\n", "{{ $a }}",
		}), 0, 12).Draw(rt, "parts")
		buffer := strings.Join(parts, "")

		segs := segment.Split(buffer, delims)

		var rebuilt strings.Builder
		offset := 0
		for i, s := range segs {
			if s.Span.Offset != offset {
				rt.Fatalf("segment %d starts at %d, want %d", i, s.Span.Offset, offset)
			}
			if s.Span.Len() == 0 {
				rt.Fatalf("segment %d is empty", i)
			}
			rebuilt.WriteString(s.Span.Text)
			offset = s.Span.End()
		}
		if rebuilt.String() != buffer {
			rt.Fatalf("segments do not reconstruct buffer: %q != %q", rebuilt.String(), buffer)
		}
	})
}

func TestSplit_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		buffer := rapid.String().Draw(rt, "buffer")
		a := segment.Split(buffer, segment.DefaultDelimiters())
		b := segment.Split(buffer, segment.DefaultDelimiters())
		require.Equal(rt, a, b)
	})
}
