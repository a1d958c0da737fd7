// Package filter provides a small, type-safe expression builder for the
// conjunctive tenant + ACL + keyword predicates that vector and lexical
// backends accept alongside a similarity query.
//
// Expressions are built with factory functions (EQ, In, And, ...) rather
// than parsed from text: the only producer of filters in this codebase is
// the retrieval fan-out's ACL-enforcement layer, so there is no need for a
// lexer/parser for user-supplied filter syntax.
package filter

import (
	"fmt"
	"strings"
)

// Expr is a filter expression node. It renders to a backend-agnostic,
// SQL-like string representation that concrete VectorStore/LexicalIndex
// adapters translate into their native query language.
type Expr interface {
	String() string
}

// Field references a document metadata field, e.g. "tenantId" or "acl".
type Field string

func (f Field) String() string { return string(f) }

// Lit is a scalar or list literal operand.
type Lit struct {
	value any
}

// L wraps a value (string, number, bool, or slice of these) as a literal operand.
func L(value any) Lit { return Lit{value: value} }

func (l Lit) String() string { return renderLiteral(l.value) }

// Value returns the literal's underlying operand, for adapters that need
// structured access instead of the rendered string form.
func (l Lit) Value() any { return l.value }

func renderLiteral(v any) string {
	switch typed := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(typed, "'", "\\'") + "'"
	case []string:
		parts := make([]string, len(typed))
		for i, s := range typed {
			parts[i] = renderLiteral(s)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return toString(v)
	}
}

// binary is a two-operand expression such as EQ, IN, AND.
type binary struct {
	op          string
	left, right Expr
}

func (b *binary) String() string {
	return b.left.String() + " " + b.op + " " + b.right.String()
}

// unary negates an expression: NOT (expr).
type unary struct {
	op   string
	expr Expr
}

func (u *unary) String() string {
	return u.op + " (" + u.expr.String() + ")"
}

// EQ builds `field = value`.
func EQ(field string, value any) Expr {
	return &binary{op: "=", left: Field(field), right: L(value)}
}

// NEQ builds `field != value`.
func NEQ(field string, value any) Expr {
	return &binary{op: "!=", left: Field(field), right: L(value)}
}

// In builds `field IN (values...)`. An empty values slice produces an
// expression that matches nothing (field IN ()), which callers should treat
// as "no rows" rather than special-casing.
func In(field string, values []string) Expr {
	return &binary{op: "IN", left: Field(field), right: L(values)}
}

// Intersects builds a predicate meaning "field, interpreted as a set,
// shares at least one element with values" — used for ACL intersection
// between a document's acl set and a user's {userId} ∪ groupIds.
func Intersects(field string, values []string) Expr {
	return &binary{op: "INTERSECTS", left: Field(field), right: L(values)}
}

// And combines two or more expressions with logical conjunction, skipping
// any nil operand so optional predicates can be composed without branching.
func And(exprs ...Expr) Expr {
	return foldBinary("AND", exprs)
}

// Or combines two or more expressions with logical disjunction.
func Or(exprs ...Expr) Expr {
	return foldBinary("OR", exprs)
}

func foldBinary(op string, exprs []Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &binary{op: op, left: out, right: e}
	}
	return out
}

// Not negates an expression.
func Not(expr Expr) Expr {
	if expr == nil {
		return nil
	}
	return &unary{op: "NOT", expr: expr}
}

// LeafOp names a leaf predicate's comparison operator.
type LeafOp string

const (
	OpEQ         LeafOp = "="
	OpNEQ        LeafOp = "!="
	OpIn         LeafOp = "IN"
	OpIntersects LeafOp = "INTERSECTS"
	// OpUnsupported marks a node Flatten could not resolve to a single
	// field/operator/value leaf (OR, NOT, or a non-literal operand).
	OpUnsupported LeafOp = "UNSUPPORTED"
)

// Leaf is a single field-operator-value predicate extracted from an Expr
// tree by Flatten.
type Leaf struct {
	Field string
	Op    LeafOp
	Value any
}

// Flatten decomposes a conjunction of leaf predicates into a flat list,
// the only shape BuildACLFilter ever produces (tenant equality, ACL
// intersection, and an optional caller-supplied conjunct). Concrete
// VectorStore/LexicalIndex adapters use this instead of parsing Expr's
// rendered String() form. A node Flatten cannot resolve to a leaf (OR,
// NOT, or a non-literal right-hand side) comes back as a single
// OpUnsupported entry so the caller can reject it rather than silently
// dropping a predicate.
func Flatten(expr Expr) []Leaf {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *binary:
		if e.op == "AND" {
			return append(Flatten(e.left), Flatten(e.right)...)
		}
		field, ok := e.left.(Field)
		lit, litOk := e.right.(Lit)
		if !ok || !litOk {
			return []Leaf{{Op: OpUnsupported}}
		}
		return []Leaf{{Field: string(field), Op: LeafOp(e.op), Value: lit.value}}
	default:
		return []Leaf{{Op: OpUnsupported}}
	}
}

func toString(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
