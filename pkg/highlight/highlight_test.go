package highlight_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/inlet-lang/inlet/pkg/highlight"
	"github.com/inlet-lang/inlet/pkg/resolve"
	"github.com/inlet-lang/inlet/pkg/segment"
)

func passFor(buffer string, vars map[string]any) []resolve.Resolution {
	return resolve.New().ResolveAll(context.Background(), buffer,
		segment.DefaultDelimiters(), resolve.NewContext(vars))
}

var okVars = map[string]any{"$json": map[string]any{
	"a": float64(1), "b": float64(2), "table": "users",
}}

func TestDiff_Idempotent(t *testing.T) {
	curr := passFor("x {{ $json.a }} y {{ $json.nope }}", okVars)
	assert.Empty(t, highlight.Diff(curr, curr))
}

func TestDiff_FromEmpty(t *testing.T) {
	curr := passFor("{{ $json.a }} and {{ $json.nope }}", okVars)
	require.Len(t, curr, 2)

	instrs := highlight.Diff(nil, curr)
	require.Len(t, instrs, 2)

	assert.Equal(t, highlight.Add, instrs[0].Op)
	assert.Equal(t, highlight.ClassResolvable, instrs[0].Class)
	assert.Equal(t, "{{ $json.a }}", instrs[0].Span.Text)

	assert.Equal(t, highlight.Add, instrs[1].Op)
	assert.Equal(t, highlight.ClassError, instrs[1].Class)
}

func TestDiff_ToEmpty(t *testing.T) {
	prev := passFor("{{ $json.a }}{{ $json.b }}", okVars)
	require.Len(t, prev, 2)

	instrs := highlight.Diff(prev, nil)
	require.Len(t, instrs, 2)
	for _, in := range instrs {
		assert.Equal(t, highlight.Remove, in.Op)
	}
}

func TestDiff_UnchangedSegmentProducesNothing(t *testing.T) {
	// appending a static suffix leaves the first segment's (offset, raw)
	// pair untouched: no instruction may be emitted for it
	prev := passFor("{{ $json.a }} tail", okVars)
	curr := passFor("{{ $json.a }} tail longer", okVars)

	assert.Empty(t, highlight.Diff(prev, curr))
}

func TestDiff_ShiftedSegmentIsRemoveAndAdd(t *testing.T) {
	prev := passFor("{{ $json.a }}", okVars)
	curr := passFor("x{{ $json.a }}", okVars)

	instrs := highlight.Diff(prev, curr)
	require.Len(t, instrs, 2)
	assert.Equal(t, highlight.Remove, instrs[0].Op)
	assert.Equal(t, 0, instrs[0].Span.Offset)
	assert.Equal(t, highlight.Add, instrs[1].Op)
	assert.Equal(t, 1, instrs[1].Span.Offset)
}

func TestDiff_ClassificationChangeIsRemoveThenAdd(t *testing.T) {
	buffer := "{{ $json.c }}"
	prev := passFor(buffer, okVars) // $json.c missing -> error
	curr := passFor(buffer, map[string]any{"$json": map[string]any{"c": "now"}})

	instrs := highlight.Diff(prev, curr)
	require.Len(t, instrs, 2)

	assert.Equal(t, highlight.Remove, instrs[0].Op)
	assert.Equal(t, highlight.ClassError, instrs[0].Class)
	assert.Equal(t, highlight.Add, instrs[1].Op)
	assert.Equal(t, highlight.ClassResolvable, instrs[1].Class)
	assert.Equal(t, instrs[0].Span, instrs[1].Span)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		state resolve.State
		want  highlight.Class
	}{
		{resolve.StateResolved, highlight.ClassResolvable},
		{resolve.StateIncomplete, highlight.ClassResolvable},
		{resolve.StateUnavailable, highlight.ClassError},
		{resolve.StateErrored, highlight.ClassError},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, highlight.Classify(resolve.Resolution{State: tt.state}))
		})
	}
}

func TestInstruction_CharSpan(t *testing.T) {
	// "héllo " is 6 characters but 7 bytes; the span's char offsets must
	// account for the multibyte prefix
	buffer := "héllo {{ $json.a }}"
	curr := passFor(buffer, okVars)
	require.Len(t, curr, 1)

	instrs := highlight.Diff(nil, curr)
	require.Len(t, instrs, 1)

	cr := instrs[0].CharSpan(buffer)
	assert.Equal(t, 6, cr.Start)
	assert.Equal(t, 19, cr.End)
}

func TestDiff_Properties(t *testing.T) {
	buffers := []string{
		"",
		"static only",
		"{{ $json.a }}",
		"x {{ $json.a }} y",
		"x {{ $json.a }} y {{ $json.nope }}",
		"{{ $json.a }}{{ $json.b }}",
		"moved {{ $json.a }}",
	}

	rapid.Check(t, func(rt *rapid.T) {
		prev := passFor(rapid.SampledFrom(buffers).Draw(rt, "prev"), okVars)
		curr := passFor(rapid.SampledFrom(buffers).Draw(rt, "curr"), okVars)

		// self-diff is always empty
		if len(highlight.Diff(curr, curr)) != 0 {
			rt.Fatalf("diff(s, s) not empty")
		}

		// every current key ends up marked exactly once: adds for keys
		// not in prev, nothing for unchanged matches
		prevKeys := make(map[string]bool)
		for _, r := range prev {
			prevKeys[r.Key()] = true
		}
		adds := 0
		for _, in := range highlight.Diff(prev, curr) {
			if in.Op == highlight.Add {
				adds++
			}
		}
		newKeys := 0
		for _, r := range curr {
			if !prevKeys[r.Key()] {
				newKeys++
			}
		}
		if adds < newKeys {
			rt.Fatalf("got %d adds, want at least %d", adds, newKeys)
		}
	})
}
