package rest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operator is a PostgREST filter operator token.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpLike  Operator = "like"
	OpILike Operator = "ilike"
	OpIs    Operator = "is"
	OpIn    Operator = "in"

	// full-text search: to_tsquery, plainto_tsquery, phraseto_tsquery, websearch_to_tsquery
	OpFts   Operator = "fts"
	OpPlfts Operator = "plfts"
	OpPhfts Operator = "phfts"
	OpWfts  Operator = "wfts"

	// array, json and range operators
	OpCs  Operator = "cs"  // contains @>
	OpCd  Operator = "cd"  // contained by <@
	OpOv  Operator = "ov"  // overlap &&
	OpSl  Operator = "sl"  // strictly left of <<
	OpSr  Operator = "sr"  // strictly right of >>
	OpNxr Operator = "nxr" // does not extend to the right of &<
	OpNxl Operator = "nxl" // does not extend to the left of &>
	OpAdj Operator = "adj" // adjacent -|-
)

// ErrUnknownOperator is returned by ParseOperator for tokens outside the supported set.
var ErrUnknownOperator = errors.New("unknown operator")

var operators = map[Operator]struct{}{
	OpEq: {}, OpNeq: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpLike: {}, OpILike: {}, OpIs: {}, OpIn: {},
	OpFts: {}, OpPlfts: {}, OpPhfts: {}, OpWfts: {},
	OpCs: {}, OpCd: {}, OpOv: {}, OpSl: {}, OpSr: {}, OpNxr: {}, OpNxl: {}, OpAdj: {},
}

// ParseOperator returns the Operator for token s.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
	return op, nil
}

// Valid reports whether op is one of the supported tokens.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// IsFullText reports whether op is one of the full-text search operators.
func (op Operator) IsFullText() bool {
	switch op {
	case OpFts, OpPlfts, OpPhfts, OpWfts:
		return true
	}
	return false
}

// IsRange reports whether op is an array, json or range operator.
func (op Operator) IsRange() bool {
	switch op {
	case OpCs, OpCd, OpOv, OpSl, OpSr, OpNxr, OpNxl, OpAdj:
		return true
	}
	return false
}

// IsValue is an operand of the is operator.
type IsValue string

const (
	IsNull    IsValue = "null"
	IsTrue    IsValue = "true"
	IsFalse   IsValue = "false"
	IsUnknown IsValue = "unknown"
)

// Range is a two-element operand rendered as (lower,upper).
type Range struct {
	Lower string
	Upper string
}

// IntRange returns a Range with integer bounds.
func IntRange(lower, upper int64) Range {
	return Range{
		Lower: strconv.FormatInt(lower, 10),
		Upper: strconv.FormatInt(upper, 10),
	}
}

func (r Range) String() string {
	return "(" + r.Lower + "," + r.Upper + ")"
}

// Encode renders op and value as op.value. The value is emitted verbatim.
func Encode(op Operator, value string) string {
	return string(op) + "." + value
}

// EncodeIn renders values as in.(v1,v2,...). Elements containing a comma or a
// parenthesis are wrapped in double quotes; nothing else is escaped.
func EncodeIn(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteListElement(v)
	}
	return Encode(OpIn, "("+strings.Join(quoted, ",")+")")
}

// EncodeFullText renders a full-text search filter as op(config).query, or
// op.query when config is empty.
func EncodeFullText(op Operator, query, config string) string {
	if config == "" {
		return Encode(op, query)
	}
	return string(op) + "(" + config + ")." + query
}

func quoteListElement(v string) string {
	if strings.ContainsAny(v, ",()") {
		return `"` + v + `"`
	}
	return v
}
