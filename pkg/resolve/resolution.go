package resolve

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/inlet-lang/inlet/pkg/position"
	"github.com/inlet-lang/inlet/pkg/segment"
)

// State classifies the outcome of resolving one segment.
type State int

const (
	// StateResolved means the expression evaluated to a value.
	StateResolved State = iota
	// StateIncomplete means the expression is partially typed. This is a
	// recognized subclass of evaluation failure that is never surfaced as
	// a hard error while the buffer is being edited.
	StateIncomplete
	// StateUnavailable means the expression references data the context
	// does not (yet) carry.
	StateUnavailable
	// StateErrored means the expression is malformed or type-invalid.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateIncomplete:
		return "incomplete"
	case StateUnavailable:
		return "unavailable"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrorKind is the taxonomy of evaluation failures.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindIncomplete
	KindUnavailable
	KindType
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindIncomplete:
		return "incomplete"
	case KindUnavailable:
		return "unavailable"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// EvalError describes why a segment failed to resolve. Span is anchored to
// the owning buffer, not the raw expression, so the hosting surface can
// mark the offending range directly. EvalError is a value carried on the
// Resolution; it is never propagated up as a Go error and never aborts
// processing of sibling segments.
type EvalError struct {
	Kind ErrorKind
	Msg  string
	Span position.Pos
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s [%d:%d]", e.Kind, e.Msg, e.Span.Offset, e.Span.End())
}

func (e *EvalError) state() State {
	switch e.Kind {
	case KindIncomplete:
		return StateIncomplete
	case KindUnavailable:
		return StateUnavailable
	default:
		return StateErrored
	}
}

// Resolution is the outcome of evaluating one resolvable segment against a
// data context. It is a pure function of (raw text, context): identical
// inputs always produce an identical Resolution, which is what makes the
// memo cache sound.
type Resolution struct {
	Segment segment.Segment
	State   State
	// Value is the evaluated result when State is StateResolved.
	Value any
	// Display is the plain-text rendering of Value.
	Display string
	// Err is set for every state except StateResolved.
	Err *EvalError
	// Structural marks a grouping-rooted expression. Structural segments
	// are evaluated like any other but are excluded from the flattened
	// resolvable list and from preview substitution.
	Structural bool
}

// Key is the identity used for cache reuse and diff matching: the pair
// (raw text, start offset).
func (r Resolution) Key() string {
	return position.New(r.Segment.Raw, r.Segment.Span.Offset).Key()
}

// Resolved reports whether the segment evaluated to a value.
func (r Resolution) Resolved() bool {
	return r.State == StateResolved
}

// FormatValue renders a resolved value as display text. Strings render
// as-is; composites render as canonical JSON, which is deterministic in Go.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
