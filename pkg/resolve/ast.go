package resolve

// expr is a node of the parsed expression. Offsets are relative to the raw
// expression source; the resolver re-anchors them onto the owning buffer
// when it builds error spans.
type expr interface {
	pos() int
	end() int
}

// litExpr is a literal: string, number, bool or null.
type litExpr struct {
	val      any
	from, to int
}

// identExpr is a root identifier looked up in the data context,
// e.g. $json or $itemIndex.
type identExpr struct {
	name     string
	from, to int
}

// memberExpr is dot property access, e.g. $json.table.
type memberExpr struct {
	x    expr
	name string
	to   int
}

// indexExpr is bracket access, e.g. $json["user name"] or $items[0].
type indexExpr struct {
	x   expr
	key expr
	to  int
}

// unaryExpr is prefix negation, e.g. -x or !x.
type unaryExpr struct {
	op   tokenType
	x    expr
	from int
}

// binaryExpr is an infix operation.
type binaryExpr struct {
	op   tokenType
	l, r expr
}

// groupExpr is a parenthesised sub-expression. Groups are structural: they
// are evaluated like any other node but excluded from the flattened
// resolvable list and from plain-text preview substitution.
type groupExpr struct {
	x        expr
	from, to int
}

func (e *litExpr) pos() int    { return e.from }
func (e *litExpr) end() int    { return e.to }
func (e *identExpr) pos() int  { return e.from }
func (e *identExpr) end() int  { return e.to }
func (e *memberExpr) pos() int { return e.x.pos() }
func (e *memberExpr) end() int { return e.to }
func (e *indexExpr) pos() int  { return e.x.pos() }
func (e *indexExpr) end() int  { return e.to }
func (e *unaryExpr) pos() int  { return e.from }
func (e *unaryExpr) end() int  { return e.x.end() }
func (e *binaryExpr) pos() int { return e.l.pos() }
func (e *binaryExpr) end() int { return e.r.end() }
func (e *groupExpr) pos() int  { return e.from }
func (e *groupExpr) end() int  { return e.to }
