package resolve

import "fmt"

// parseError carries the same incomplete distinction as lexError: input
// that runs out before the expression is finished is reported as
// incomplete so the editor does not flash a hard error on every keystroke.
type parseError struct {
	msg        string
	offset     int
	incomplete bool
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.msg, e.offset)
}

type parser struct {
	toks []token
	cur  int
}

// parse turns a raw expression into an AST. An empty (or all-whitespace)
// expression is incomplete, not a syntax error.
func parse(src string) (expr, *parseError) {
	toks, lerr := lex(src)
	if lerr != nil {
		return nil, &parseError{msg: lerr.msg, offset: lerr.offset, incomplete: lerr.incomplete}
	}
	p := &parser{toks: toks}
	if p.peek().typ == tokEOF {
		return nil, &parseError{msg: "empty expression", offset: 0, incomplete: true}
	}
	e, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, &parseError{msg: fmt.Sprintf("unexpected %q", tok.text), offset: tok.offset}
	}
	return e, nil
}

func (p *parser) peek() token {
	return p.toks[p.cur]
}

func (p *parser) next() token {
	tok := p.toks[p.cur]
	if tok.typ != tokEOF {
		p.cur++
	}
	return tok
}

// binding powers, lowest first
func precedence(t tokenType) int {
	switch t {
	case tokOr:
		return 1
	case tokAnd:
		return 2
	case tokEq, tokNeq:
		return 3
	case tokLt, tokLe, tokGt, tokGe:
		return 4
	case tokPlus, tokMinus:
		return 5
	case tokStar, tokSlash, tokPercent:
		return 6
	default:
		return 0
	}
}

func (p *parser) parseBinary(minPrec int) (expr, *parseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := precedence(p.peek().typ)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		op := p.next()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op.typ, l: left, r: right}
	}
}

func (p *parser) parseUnary() (expr, *parseError) {
	if tok := p.peek(); tok.typ == tokMinus || tok.typ == tokBang {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: tok.typ, x: x, from: tok.offset}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles the .name and [key] chains hanging off a primary.
func (p *parser) parsePostfix() (expr, *parseError) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch tok := p.peek(); tok.typ {
		case tokDot:
			p.next()
			name := p.peek()
			if name.typ == tokEOF {
				// the user just typed the dot
				return nil, &parseError{msg: "expected property name after '.'", offset: name.offset, incomplete: true}
			}
			if name.typ != tokIdent && name.typ != tokBool && name.typ != tokNull {
				return nil, &parseError{msg: "expected property name after '.'", offset: name.offset}
			}
			p.next()
			x = &memberExpr{x: x, name: name.text, to: name.offset + len(name.text)}

		case tokLBracket:
			p.next()
			key, err := p.parseBinary(0)
			if err != nil {
				return nil, err
			}
			closing := p.peek()
			if closing.typ == tokEOF {
				return nil, &parseError{msg: "expected ']'", offset: closing.offset, incomplete: true}
			}
			if closing.typ != tokRBracket {
				return nil, &parseError{msg: "expected ']'", offset: closing.offset}
			}
			p.next()
			x = &indexExpr{x: x, key: key, to: closing.offset + 1}

		default:
			return x, nil
		}
	}
}

func (p *parser) parsePrimary() (expr, *parseError) {
	tok := p.peek()
	switch tok.typ {
	case tokEOF:
		return nil, &parseError{msg: "unexpected end of expression", offset: tok.offset, incomplete: true}

	case tokNumber, tokString, tokBool, tokNull:
		p.next()
		return &litExpr{val: tok.val, from: tok.offset, to: tok.offset + len(tok.text)}, nil

	case tokIdent:
		p.next()
		return &identExpr{name: tok.text, from: tok.offset, to: tok.offset + len(tok.text)}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		closing := p.peek()
		if closing.typ == tokEOF {
			return nil, &parseError{msg: "expected ')'", offset: closing.offset, incomplete: true}
		}
		if closing.typ != tokRParen {
			return nil, &parseError{msg: "expected ')'", offset: closing.offset}
		}
		p.next()
		return &groupExpr{x: inner, from: tok.offset, to: closing.offset + 1}, nil

	default:
		return nil, &parseError{msg: fmt.Sprintf("unexpected %q", tok.text), offset: tok.offset}
	}
}
