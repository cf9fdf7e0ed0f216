package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// QueryParams holds decoded query parameters in a structured way
type QueryParams struct {
	Select     []string      // Columns to select
	Order      []OrderParam  // Order by columns
	Limit      *int          // nil when absent
	Offset     *int          // nil when absent
	OnConflict []string      // Upsert conflict target
	Filters    []FilterParam // Column filters in request order
}

// FilterParam is one decoded column=op.value filter.
type FilterParam struct {
	Column   string
	Operator Operator
	Config   string   // full-text search configuration
	Value    string   // raw operand
	Values   []string // in-list elements, unquoted
}

// ParseRawQuery splits a raw query string into parameters, keeping their order.
func ParseRawQuery(raw string) ([]Param, error) {
	var params []Param
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid query value for %q: %w", key, err)
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params, nil
}

// ParseQuery decodes PostgREST query parameters.
func ParseQuery(params []Param) (QueryParams, error) {
	var q QueryParams
	for _, p := range params {
		switch p.Key {
		case "select":
			q.Select = strings.Split(p.Value, ",")
		case "order":
			q.Order = append(q.Order, ParseOrder(p.Value)...)
		case "limit":
			n, err := strconv.Atoi(p.Value)
			if err != nil {
				return q, fmt.Errorf("invalid limit %q: %w", p.Value, err)
			}
			q.Limit = &n
		case "offset":
			n, err := strconv.Atoi(p.Value)
			if err != nil {
				return q, fmt.Errorf("invalid offset %q: %w", p.Value, err)
			}
			q.Offset = &n
		case "on_conflict":
			q.OnConflict = strings.Split(p.Value, ",")
		default:
			f, err := parseFilterParam(p.Key, p.Value)
			if err != nil {
				return q, err
			}
			q.Filters = append(q.Filters, f)
		}
	}
	return q, nil
}

// parseFilterParam decodes op.value, op(config).value and in.(a,"b,c").
func parseFilterParam(column, value string) (FilterParam, error) {
	token, operand, found := strings.Cut(value, ".")
	if !found {
		return FilterParam{}, fmt.Errorf("filter %s=%s: missing operator", column, value)
	}

	f := FilterParam{Column: column, Value: operand}
	if open := strings.IndexByte(token, '('); open >= 0 && strings.HasSuffix(token, ")") {
		f.Config = token[open+1 : len(token)-1]
		token = token[:open]
	}

	op, err := ParseOperator(token)
	if err != nil {
		return FilterParam{}, fmt.Errorf("filter %s=%s: %w", column, value, err)
	}
	f.Operator = op

	if op == OpIn {
		f.Values = splitList(strings.TrimSuffix(strings.TrimPrefix(operand, "("), ")"))
	}
	return f, nil
}

// splitList splits a comma-separated list, ignoring commas inside double quotes.
func splitList(list string) []string {
	var parts []string
	var current strings.Builder
	quoted := false

	for _, char := range list {
		switch {
		case char == '"':
			quoted = !quoted
		case char == ',' && !quoted:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}
	return append(parts, current.String())
}
