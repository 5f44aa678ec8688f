package rulefile

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
)

// ErrSyntax is wrapped by every expression parse failure.
var ErrSyntax = errors.New("rulefile: syntax error")

// ParseExpr parses an antecedent such as
//
//	grade is excellent and (attendance is high or motivation is not low)
//
// Precedence from loosest: or, and, not. Keywords are case-insensitive;
// chained and/or collapse into one n-ary node.
func ParseExpr(src string) (fuzzy.Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return e, nil
}

// ParseTerm parses "variable is term".
func ParseTerm(src string) (fuzzy.Term, error) {
	e, err := ParseExpr(src)
	if err != nil {
		return fuzzy.Term{}, err
	}
	t, ok := fuzzy.LeafTerm(e)
	if !ok {
		return fuzzy.Term{}, errors.Wrapf(ErrSyntax, "%q is not a single term", src)
	}
	return t, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var out []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			out = append(out, token{tokLParen, "(", i})
			i++
		case r == ')':
			out = append(out, token{tokRParen, ")", i})
			i++
		case isIdentRune(r):
			start := i
			for i < len(rs) && isIdentRune(rs[i]) {
				i++
			}
			out = append(out, token{tokIdent, string(rs[start:i]), start})
		default:
			return nil, errors.Wrapf(ErrSyntax, "offset %d: unexpected character %q", i, r)
		}
	}
	return append(out, token{kind: tokEOF, pos: len(rs)}), nil
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	if t.kind == tokIdent && strings.EqualFold(t.text, word) {
		p.i++
		return true
	}
	return false
}

func (p *parser) errorf(t token, format string, args ...any) error {
	if t.kind == tokEOF {
		return errors.Wrapf(ErrSyntax, "end of input: "+format, args...)
	}
	return errors.Wrapf(ErrSyntax, "offset %d: "+format, append([]any{t.pos}, args...)...)
}

func (p *parser) or() (fuzzy.Expr, error) {
	first, err := p.and()
	if err != nil {
		return nil, err
	}
	xs := []fuzzy.Expr{first}
	for p.keyword("or") {
		x, err := p.and()
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	if len(xs) == 1 {
		return first, nil
	}
	return fuzzy.Or(xs...), nil
}

func (p *parser) and() (fuzzy.Expr, error) {
	first, err := p.unary()
	if err != nil {
		return nil, err
	}
	xs := []fuzzy.Expr{first}
	for p.keyword("and") {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	if len(xs) == 1 {
		return first, nil
	}
	return fuzzy.And(xs...), nil
}

func (p *parser) unary() (fuzzy.Expr, error) {
	if p.keyword("not") {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return fuzzy.Not(x), nil
	}
	return p.primary()
}

func (p *parser) primary() (fuzzy.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		e, err := p.or()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "expected ')'")
		}
		return e, nil
	case tokIdent:
		if isKeyword(t.text) {
			return nil, p.errorf(t, "expected variable name, got keyword %q", t.text)
		}
		if !p.keyword("is") {
			return nil, p.errorf(p.peek(), "expected 'is' after %q", t.text)
		}
		negate := p.keyword("not")
		term := p.next()
		if term.kind != tokIdent || isKeyword(term.text) {
			return nil, p.errorf(term, "expected term name after '%s is'", t.text)
		}
		var e fuzzy.Expr = fuzzy.Is(t.text, term.text)
		if negate {
			e = fuzzy.Not(e)
		}
		return e, nil
	}
	return nil, p.errorf(t, "expected term or '('")
}

func isKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "and", "or", "not", "is":
		return true
	}
	return false
}
