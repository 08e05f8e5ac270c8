package resolve

import (
	"fmt"
	"strconv"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokNumber
	tokString
	tokBool
	tokNull
	tokDot
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokEq
	tokNeq
	tokLt
	tokLe
	tokGt
	tokGe
	tokAnd
	tokOr
	tokBang
)

// token is a single lexical unit of a raw expression. Offset is the byte
// offset of the token start within the raw expression source, so that
// errors can be re-anchored onto the owning buffer.
type token struct {
	typ    tokenType
	text   string
	val    any
	offset int
}

// lexError distinguishes hard syntax problems from input that simply ends
// too early, which happens constantly while the user is still typing.
type lexError struct {
	msg        string
	offset     int
	incomplete bool
}

func (e *lexError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.msg, e.offset)
}

// lex tokenizes a raw expression. The returned slice always ends with an
// EOF token whose offset is len(src).
func lex(src string) ([]token, *lexError) {
	var toks []token
	i := 0

	emit := func(typ tokenType, start int, val any) {
		toks = append(toks, token{typ: typ, text: src[start:i], val: val, offset: start})
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '.':
			start := i
			i++
			emit(tokDot, start, nil)

		case c == '[':
			start := i
			i++
			emit(tokLBracket, start, nil)
		case c == ']':
			start := i
			i++
			emit(tokRBracket, start, nil)
		case c == '(':
			start := i
			i++
			emit(tokLParen, start, nil)
		case c == ')':
			start := i
			i++
			emit(tokRParen, start, nil)
		case c == '+':
			start := i
			i++
			emit(tokPlus, start, nil)
		case c == '-':
			start := i
			i++
			emit(tokMinus, start, nil)
		case c == '*':
			start := i
			i++
			emit(tokStar, start, nil)
		case c == '/':
			start := i
			i++
			emit(tokSlash, start, nil)
		case c == '%':
			start := i
			i++
			emit(tokPercent, start, nil)

		case c == '=':
			start := i
			if i+1 < len(src) && src[i+1] == '=' {
				i += 2
				emit(tokEq, start, nil)
			} else {
				return nil, &lexError{msg: "expected '==' after '='", offset: start}
			}
		case c == '!':
			start := i
			if i+1 < len(src) && src[i+1] == '=' {
				i += 2
				emit(tokNeq, start, nil)
			} else {
				i++
				emit(tokBang, start, nil)
			}
		case c == '<':
			start := i
			if i+1 < len(src) && src[i+1] == '=' {
				i += 2
				emit(tokLe, start, nil)
			} else {
				i++
				emit(tokLt, start, nil)
			}
		case c == '>':
			start := i
			if i+1 < len(src) && src[i+1] == '=' {
				i += 2
				emit(tokGe, start, nil)
			} else {
				i++
				emit(tokGt, start, nil)
			}
		case c == '&':
			start := i
			if i+1 < len(src) && src[i+1] == '&' {
				i += 2
				emit(tokAnd, start, nil)
			} else {
				return nil, &lexError{msg: "expected '&&'", offset: start}
			}
		case c == '|':
			start := i
			if i+1 < len(src) && src[i+1] == '|' {
				i += 2
				emit(tokOr, start, nil)
			} else {
				return nil, &lexError{msg: "expected '||'", offset: start}
			}

		case c == '"' || c == '\'':
			start := i
			s, next, lerr := lexString(src, i)
			if lerr != nil {
				return nil, lerr
			}
			i = next
			emit(tokString, start, s)

		case c >= '0' && c <= '9':
			start := i
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				// a dot followed by a non-digit is property access on a
				// number literal, leave it for the parser
				if src[i] == '.' && (i+1 >= len(src) || src[i+1] < '0' || src[i+1] > '9') {
					break
				}
				i++
			}
			f, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, &lexError{msg: "malformed number", offset: start}
			}
			emit(tokNumber, start, f)

		case isIdentStart(c):
			start := i
			i++
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			switch word {
			case "true":
				emit(tokBool, start, true)
			case "false":
				emit(tokBool, start, false)
			case "null":
				emit(tokNull, start, nil)
			default:
				emit(tokIdent, start, word)
			}

		default:
			return nil, &lexError{msg: fmt.Sprintf("unexpected character %q", c), offset: i}
		}
	}

	toks = append(toks, token{typ: tokEOF, offset: len(src)})
	return toks, nil
}

// lexString scans a single- or double-quoted literal starting at i,
// returning the decoded value and the index past the closing quote. An
// unterminated literal is an incomplete error, not a hard one: the user is
// probably mid-keystroke.
func lexString(src string, i int) (string, int, *lexError) {
	quote := src[i]
	start := i
	i++
	var out []byte
	for i < len(src) {
		c := src[i]
		if c == quote {
			return string(out), i + 1, nil
		}
		if c == '\\' {
			if i+1 >= len(src) {
				return "", 0, &lexError{msg: "unfinished escape sequence", offset: start, incomplete: true}
			}
			i++
			switch src[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\', '\'', '"':
				out = append(out, src[i])
			default:
				return "", 0, &lexError{msg: fmt.Sprintf("invalid escape sequence \\%c", src[i]), offset: i - 1}
			}
			i++
			continue
		}
		out = append(out, c)
		i++
	}
	return "", 0, &lexError{msg: "string literal was not terminated", offset: start, incomplete: true}
}

func isIdentStart(c byte) bool {
	return c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
