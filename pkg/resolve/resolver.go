// Package resolve evaluates resolvable expressions against a runtime data
// context.
//
// Evaluation is sandboxed: it has no side effects, never mutates the
// context, and never returns a Go error for user input — every failure is
// recorded on the Resolution value with a buffer-anchored span, and
// processing of sibling segments continues.
package resolve

import (
	"context"
	"math"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/inlet-lang/inlet/pkg/position"
	"github.com/inlet-lang/inlet/pkg/segment"
)

// Resolver evaluates resolvable segments. The zero value is usable.
type Resolver struct{}

func New() *Resolver {
	return &Resolver{}
}

// Resolve evaluates one resolvable segment against data. The result is a
// pure function of (seg.Raw, data); repeated calls with identical inputs
// yield identical Resolutions.
func (r *Resolver) Resolve(ctx context.Context, seg segment.Segment, data Context) Resolution {
	res := Resolution{Segment: seg}

	ast, perr := parse(seg.Raw)
	if perr != nil {
		kind := KindSyntax
		if perr.incomplete {
			kind = KindIncomplete
		}
		res.Err = &EvalError{
			Kind: kind,
			Msg:  perr.msg,
			Span: errSpan(seg, perr.offset, perr.offset),
		}
		res.State = res.Err.state()
		return res
	}

	if _, ok := ast.(*groupExpr); ok {
		res.Structural = true
	}

	ev := evaluator{data: data, seg: seg}
	val, eerr := ev.eval(ast)
	if eerr != nil {
		res.Err = eerr
		res.State = eerr.state()
		zerolog.Ctx(ctx).Debug().
			Str("segment", seg.Span.Key()).
			Str("kind", eerr.Kind.String()).
			Msg("segment did not resolve")
		return res
	}

	res.State = StateResolved
	res.Value = val
	res.Display = FormatValue(val)
	return res
}

// ResolveAll segments buffer and resolves every resolvable segment in
// order. Static segments are not represented in the result.
func (r *Resolver) ResolveAll(ctx context.Context, buffer string, delims segment.Delimiters, data Context) []Resolution {
	var out []Resolution
	for seg := range segment.Scan(buffer, delims) {
		if seg.Kind != segment.Resolvable {
			continue
		}
		out = append(out, r.Resolve(ctx, seg, data))
	}
	return out
}

// errSpan re-anchors an offset range within the raw expression onto the
// owning buffer.
func errSpan(seg segment.Segment, from, to int) position.Pos {
	if to > len(seg.Raw) {
		to = len(seg.Raw)
	}
	if from > to {
		from = to
	}
	return position.New(seg.Raw[from:to], seg.RawOffset+from)
}

type evaluator struct {
	data Context
	seg  segment.Segment
}

func (ev *evaluator) errAt(kind ErrorKind, msg string, e expr) *EvalError {
	return &EvalError{Kind: kind, Msg: msg, Span: errSpan(ev.seg, e.pos(), e.end())}
}

func (ev *evaluator) eval(e expr) (any, *EvalError) {
	switch n := e.(type) {
	case *litExpr:
		return n.val, nil

	case *identExpr:
		v, ok := ev.data.Lookup(n.name)
		if !ok {
			return nil, ev.errAt(KindUnavailable, n.name+" is not available in the current context", n)
		}
		return v, nil

	case *memberExpr:
		x, err := ev.eval(n.x)
		if err != nil {
			return nil, err
		}
		return ev.member(x, n.name, n)

	case *indexExpr:
		x, err := ev.eval(n.x)
		if err != nil {
			return nil, err
		}
		key, err := ev.eval(n.key)
		if err != nil {
			return nil, err
		}
		return ev.index(x, key, n)

	case *groupExpr:
		return ev.eval(n.x)

	case *unaryExpr:
		x, err := ev.eval(n.x)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case tokMinus:
			f, ok := toNumber(x)
			if !ok {
				return nil, ev.errAt(KindType, "operand of '-' is not a number", n)
			}
			return -f, nil
		case tokBang:
			b, ok := x.(bool)
			if !ok {
				return nil, ev.errAt(KindType, "operand of '!' is not a boolean", n)
			}
			return !b, nil
		}
		return nil, ev.errAt(KindType, "unsupported unary operator", n)

	case *binaryExpr:
		return ev.binary(n)
	}
	return nil, &EvalError{Kind: KindSyntax, Msg: "unknown expression node", Span: ev.seg.Span}
}

func (ev *evaluator) member(x any, name string, n expr) (any, *EvalError) {
	switch t := x.(type) {
	case nil:
		return nil, ev.errAt(KindUnavailable, "cannot read '"+name+"' of null", n)
	case map[string]any:
		v, ok := t[name]
		if !ok {
			return nil, ev.errAt(KindUnavailable, "'"+name+"' is not available in the current context", n)
		}
		return v, nil
	default:
		return nil, ev.errAt(KindType, "'"+name+"' accessed on a non-object value", n)
	}
}

func (ev *evaluator) index(x, key any, n expr) (any, *EvalError) {
	switch t := x.(type) {
	case nil:
		return nil, ev.errAt(KindUnavailable, "cannot index null", n)
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, ev.errAt(KindType, "object index is not a string", n)
		}
		v, ok := t[k]
		if !ok {
			return nil, ev.errAt(KindUnavailable, "'"+k+"' is not available in the current context", n)
		}
		return v, nil
	case []any:
		f, ok := toNumber(key)
		if !ok {
			return nil, ev.errAt(KindType, "array index is not a number", n)
		}
		i := int(f)
		if i < 0 || i >= len(t) {
			return nil, ev.errAt(KindUnavailable, "array index out of range", n)
		}
		return t[i], nil
	default:
		return nil, ev.errAt(KindType, "value is not indexable", n)
	}
}

func (ev *evaluator) binary(n *binaryExpr) (any, *EvalError) {
	// && and || stay strict about booleans but do not short-circuit
	// evaluation errors away: both sides must be inspectable so that a
	// broken right-hand side is still marked while typing.
	l, err := ev.eval(n.l)
	if err != nil {
		return nil, err
	}
	r, err := ev.eval(n.r)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokAnd, tokOr:
		lb, lok := l.(bool)
		rb, rok := r.(bool)
		if !lok || !rok {
			return nil, ev.errAt(KindType, "logical operand is not a boolean", n)
		}
		if n.op == tokAnd {
			return lb && rb, nil
		}
		return lb || rb, nil

	case tokEq:
		return equal(l, r), nil
	case tokNeq:
		return !equal(l, r), nil
	}

	// + concatenates when either side is a string
	if n.op == tokPlus {
		if ls, ok := l.(string); ok {
			return ls + FormatValue(r), nil
		}
		if rs, ok := r.(string); ok {
			return FormatValue(l) + rs, nil
		}
	}

	lf, lok := toNumber(l)
	rf, rok := toNumber(r)
	if !lok || !rok {
		return nil, ev.errAt(KindType, "operands are not numbers", n)
	}

	switch n.op {
	case tokPlus:
		return lf + rf, nil
	case tokMinus:
		return lf - rf, nil
	case tokStar:
		return lf * rf, nil
	case tokSlash:
		if rf == 0 {
			return nil, ev.errAt(KindType, "division by zero", n)
		}
		return lf / rf, nil
	case tokPercent:
		if rf == 0 {
			return nil, ev.errAt(KindType, "modulo by zero", n)
		}
		return math.Mod(lf, rf), nil
	case tokLt:
		return lf < rf, nil
	case tokLe:
		return lf <= rf, nil
	case tokGt:
		return lf > rf, nil
	case tokGe:
		return lf >= rf, nil
	}
	return nil, ev.errAt(KindType, "unsupported operator", n)
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func equal(l, r any) bool {
	if lf, ok := toNumber(l); ok {
		if rf, ok := toNumber(r); ok {
			return lf == rf
		}
	}
	return reflect.DeepEqual(l, r)
}
