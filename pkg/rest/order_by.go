package rest

import (
	"strings"
)

// Direction is the sort direction of an order term.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// NullsOrder places nulls first or last in an order term.
type NullsOrder string

const (
	NullsFirst NullsOrder = "nullsfirst"
	NullsLast  NullsOrder = "nullslast"
)

type OrderParam struct {
	Column        string
	Direction     Direction  // empty means server default (asc)
	NullsPosition NullsOrder // empty means server default
}

// String renders the term as column[.direction][.nulls].
func (o OrderParam) String() string {
	var sb strings.Builder
	sb.WriteString(o.Column)
	if o.Direction != "" {
		sb.WriteByte('.')
		sb.WriteString(string(o.Direction))
	}
	if o.NullsPosition != "" {
		sb.WriteByte('.')
		sb.WriteString(string(o.NullsPosition))
	}
	return sb.String()
}

// formatOrder applies dir and nulls to every comma-separated column in columns.
func formatOrder(columns string, dir Direction, nulls NullsOrder) string {
	parts := strings.Split(columns, ",")
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		terms = append(terms, OrderParam{Column: part, Direction: dir, NullsPosition: nulls}.String())
	}
	return strings.Join(terms, ",")
}

// ParseOrder decodes an order parameter value such as "a.desc,b.nullsfirst".
func ParseOrder(order string) []OrderParam {
	parts := strings.Split(order, ",")
	result := make([]OrderParam, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var p OrderParam
		if strings.HasSuffix(part, "."+string(NullsFirst)) {
			part = strings.TrimSuffix(part, "."+string(NullsFirst))
			p.NullsPosition = NullsFirst
		} else if strings.HasSuffix(part, "."+string(NullsLast)) {
			part = strings.TrimSuffix(part, "."+string(NullsLast))
			p.NullsPosition = NullsLast
		}

		if strings.HasSuffix(part, "."+string(Desc)) {
			part = strings.TrimSuffix(part, "."+string(Desc))
			p.Direction = Desc
		} else if strings.HasSuffix(part, "."+string(Asc)) {
			part = strings.TrimSuffix(part, "."+string(Asc))
			p.Direction = Asc
		}

		p.Column = part
		result = append(result, p)
	}

	return result
}
