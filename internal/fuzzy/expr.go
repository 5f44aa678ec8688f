package fuzzy

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Op tags an antecedent node.
type Op int

const (
	OpLeaf Op = iota
	OpAnd
	OpOr
	OpNot
)

func (o Op) String() string {
	switch o {
	case OpLeaf:
		return "leaf"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	}
	return "unknown"
}

// Expr is an antecedent expression: Is, And, Or or Not.
// Implementations live in this package only.
type Expr interface {
	Op() Op
	String() string
	eval(d Degrees) float64
	walk(fn func(Term))
	check() error
}

// Degrees holds fuzzified membership degrees keyed by term.
type Degrees map[Term]float64

// Of returns the degree of t, zero when absent.
func (d Degrees) Of(t Term) float64 { return d[t] }

type leafExpr struct{ term Term }

type listExpr struct {
	op       Op
	children []Expr
}

type notExpr struct{ child Expr }

// Is is the leaf expression "variable is term".
func Is(variable, term string) Expr { return leafExpr{term: T(variable, term)} }

// Leaf wraps an existing Term reference.
func Leaf(t Term) Expr { return leafExpr{term: t} }

// And is the fuzzy conjunction (min) of at least two expressions.
func And(xs ...Expr) Expr { return listExpr{op: OpAnd, children: xs} }

// Or is the fuzzy disjunction (max) of at least two expressions.
func Or(xs ...Expr) Expr { return listExpr{op: OpOr, children: xs} }

// Not is the standard complement 1 - x.
func Not(x Expr) Expr { return notExpr{child: x} }

func (leafExpr) Op() Op                   { return OpLeaf }
func (e leafExpr) String() string         { return e.term.String() }
func (e leafExpr) eval(d Degrees) float64 { return d[e.term] }
func (e leafExpr) walk(fn func(Term))     { fn(e.term) }
func (e leafExpr) check() error {
	if e.term.Variable == "" || e.term.Name == "" {
		return errors.Wrap(ErrMalformedExpr, "leaf with empty variable or term")
	}
	return nil
}

func (e listExpr) Op() Op { return e.op }

func (e listExpr) String() string {
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		s := c.String()
		if c.Op() == OpAnd || c.Op() == OpOr {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " "+e.op.String()+" ")
}

func (e listExpr) eval(d Degrees) float64 {
	v := e.children[0].eval(d)
	for _, c := range e.children[1:] {
		cv := c.eval(d)
		if e.op == OpAnd {
			v = min(v, cv)
		} else {
			v = max(v, cv)
		}
	}
	return v
}

func (e listExpr) walk(fn func(Term)) {
	for _, c := range e.children {
		c.walk(fn)
	}
}

func (e listExpr) check() error {
	if len(e.children) < 2 {
		return errors.Wrapf(ErrMalformedExpr, "%s needs at least two operands, got %d", e.op, len(e.children))
	}
	for _, c := range e.children {
		if c == nil {
			return errors.Wrapf(ErrMalformedExpr, "%s with nil operand", e.op)
		}
		if err := c.check(); err != nil {
			return err
		}
	}
	return nil
}

func (notExpr) Op() Op { return OpNot }

func (e notExpr) String() string {
	if e.child != nil && e.child.Op() != OpLeaf && e.child.Op() != OpNot {
		return "not (" + e.child.String() + ")"
	}
	if e.child == nil {
		return "not <nil>"
	}
	return "not " + e.child.String()
}

func (e notExpr) eval(d Degrees) float64 { return 1 - e.child.eval(d) }
func (e notExpr) walk(fn func(Term))     { e.child.walk(fn) }
func (e notExpr) check() error {
	if e.child == nil {
		return errors.Wrap(ErrMalformedExpr, "not with nil operand")
	}
	return e.child.check()
}

// Eval folds e over already fuzzified degrees.
func Eval(e Expr, d Degrees) float64 { return e.eval(d) }

// Terms lists the term references of e in left-to-right order.
func Terms(e Expr) []Term {
	var out []Term
	e.walk(func(t Term) { out = append(out, t) })
	return out
}

// Children returns the operands of an And/Or/Not node, nil for leaves.
func Children(e Expr) []Expr {
	switch x := e.(type) {
	case listExpr:
		return append([]Expr(nil), x.children...)
	case notExpr:
		return []Expr{x.child}
	}
	return nil
}

// LeafTerm returns the term of a leaf node.
func LeafTerm(e Expr) (Term, bool) {
	if l, ok := e.(leafExpr); ok {
		return l.term, true
	}
	return Term{}, false
}
