// Package predicate implements the tagged Predicate model and the SQL
// Builder/emitter that owns the positional parameter index (spec §9,
// Design Note 1). Grounded on the teacher's hand-rolled
// whereClause/argNum pattern (internal/handlers/handlers.go
// GetProducts), generalized into a reusable set of predicate
// constructors instead of one bespoke handler building its own
// string by hand.
package predicate

import (
	"fmt"
	"strings"
)

// Kind tags which SQL shape a Predicate renders to.
type Kind int

const (
	// ScalarEq renders "column = $n".
	ScalarEq Kind = iota
	// ScalarAny renders "column = ANY($n)" against a slice parameter.
	ScalarAny
	// ArrayOverlap renders "column && $n" against a slice parameter.
	ArrayOverlap
	// Range renders a one- or two-sided numeric range, "column >= $n"
	// / "column <= $n" / both.
	Range
	// Having renders a predicate against an aggregate expression,
	// placed in a HAVING clause rather than WHERE.
	Having
	// Raw renders a caller-supplied SQL fragment with its own already
	// correctly $n-numbered placeholders, for bespoke joins the tagged
	// forms don't cover (spec §9).
	Raw
)

// Predicate is one filter condition, tagged by Kind so the Builder
// knows how to render and parameterize it.
type Predicate struct {
	Kind     Kind
	Column   string
	Value    any
	Min, Max any
	RawSQL   string
	RawArgs  []any
}

// Eq builds a ScalarEq predicate.
func Eq(column string, value any) Predicate {
	return Predicate{Kind: ScalarEq, Column: column, Value: value}
}

// Any builds a ScalarAny predicate ("column = ANY($n)").
func Any(column string, values any) Predicate {
	return Predicate{Kind: ScalarAny, Column: column, Value: values}
}

// Overlap builds an ArrayOverlap predicate ("column && $n").
func Overlap(column string, values any) Predicate {
	return Predicate{Kind: ArrayOverlap, Column: column, Value: values}
}

// RangeBetween builds a Range predicate. Either bound may be nil to
// build a one-sided range.
func RangeBetween(column string, min, max any) Predicate {
	return Predicate{Kind: Range, Column: column, Min: min, Max: max}
}

// HavingRange builds a Having predicate over an aggregate expression
// (column is the raw aggregate SQL, e.g. "COUNT(*)").
func HavingRange(aggExpr string, min, max any) Predicate {
	return Predicate{Kind: Having, Column: aggExpr, Min: min, Max: max}
}

// RawPredicate builds a Raw predicate from a template using %d for
// each placeholder position the Builder will fill in order; args must
// match the number of %d verbs.
func RawPredicate(template string, args ...any) Predicate {
	return Predicate{Kind: Raw, RawSQL: template, RawArgs: args}
}

// Builder accumulates WHERE/HAVING fragments and their positional
// parameters, owning a single shared argument counter so predicates
// compose regardless of order (spec §9, Design Note 1).
type Builder struct {
	where   []string
	having  []string
	args    []any
	argNum  int
}

// New constructs an empty Builder. start is the first positional
// parameter number to use (1, unless a prior query already consumed
// some).
func New(start int) *Builder {
	if start < 1 {
		start = 1
	}
	return &Builder{argNum: start}
}

// Add renders p and appends it to the WHERE or HAVING list as
// appropriate, advancing the parameter counter.
func (b *Builder) Add(p Predicate) {
	switch p.Kind {
	case ScalarEq:
		b.where = append(b.where, fmt.Sprintf("%s = $%d", p.Column, b.next(p.Value)))
	case ScalarAny:
		b.where = append(b.where, fmt.Sprintf("%s = ANY($%d)", p.Column, b.next(p.Value)))
	case ArrayOverlap:
		b.where = append(b.where, fmt.Sprintf("%s && $%d", p.Column, b.next(p.Value)))
	case Range:
		b.addRange(&b.where, p)
	case Having:
		b.addRange(&b.having, p)
	case Raw:
		b.where = append(b.where, b.renderRaw(p))
	}
}

func (b *Builder) addRange(dst *[]string, p Predicate) {
	var parts []string
	if p.Min != nil {
		parts = append(parts, fmt.Sprintf("%s >= $%d", p.Column, b.next(p.Min)))
	}
	if p.Max != nil {
		parts = append(parts, fmt.Sprintf("%s <= $%d", p.Column, b.next(p.Max)))
	}
	if len(parts) == 0 {
		return
	}
	*dst = append(*dst, strings.Join(parts, " AND "))
}

func (b *Builder) renderRaw(p Predicate) string {
	sql := p.RawSQL
	for _, a := range p.RawArgs {
		placeholder := fmt.Sprintf("$%d", b.next(a))
		sql = strings.Replace(sql, "%d", placeholder, 1)
	}
	return sql
}

func (b *Builder) next(value any) int {
	b.args = append(b.args, value)
	n := b.argNum
	b.argNum++
	return n
}

// AddIf appends p only when cond is true — a convenience wrapper for
// optional filter dimensions so callers don't need their own `if`
// ladders around every Add call.
func (b *Builder) AddIf(cond bool, p Predicate) {
	if cond {
		b.Add(p)
	}
}

// Where renders the accumulated WHERE clause (without the leading
// "WHERE"), or "" if no predicates were added.
func (b *Builder) Where() string {
	if len(b.where) == 0 {
		return ""
	}
	return strings.Join(b.where, " AND ")
}

// HavingClause renders the accumulated HAVING clause (without the
// leading "HAVING"), or "" if none were added.
func (b *Builder) HavingClause() string {
	if len(b.having) == 0 {
		return ""
	}
	return strings.Join(b.having, " AND ")
}

// Args returns the positional parameters in the order they were
// consumed, suitable to pass directly to pgx's Query/QueryRow.
func (b *Builder) Args() []any {
	return b.args
}

// NextParam returns the next unused parameter number without
// consuming it, for callers that need to append LIMIT/OFFSET
// placeholders after all predicates are built.
func (b *Builder) NextParam() int {
	return b.argNum
}

// AddArg appends a raw positional argument (e.g. LIMIT/OFFSET) and
// returns its parameter number, advancing the counter like Add would.
func (b *Builder) AddArg(value any) int {
	return b.next(value)
}
