package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Doer sends an HTTP request. *http.Client and *httputil.Client implement it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Builder accumulates the state of one PostgREST request. Every method mutates
// the builder and returns it for chaining. A builder must not be shared between
// goroutines and is consumed by Build or Execute.
//
// The first contract violation is recorded and returned by Build; later calls
// are no-ops.
type Builder struct {
	method   string
	baseURL  string
	path     string
	schema   string
	params   []Param
	header   http.Header
	prefer   Prefer
	body     string
	hasBody  bool
	isRPC    bool
	mutation bool
	consumed bool
	err      error
}

func newBuilder(baseURL, path, schema string, header http.Header) *Builder {
	b := &Builder{
		method:  http.MethodGet,
		baseURL: baseURL,
		path:    path,
		schema:  schema,
		header:  header.Clone(),
	}
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b
}

func (b *Builder) fail(format string, args ...any) *Builder {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidState}, args...)...)
	}
	return b
}

// readOnly records an error when call is used after a mutation verb was fixed.
func (b *Builder) readOnly(call string) bool {
	if b.err != nil {
		return false
	}
	if b.mutation {
		b.fail("%s after %s", call, b.method)
		return false
	}
	return true
}

func (b *Builder) mutate(call, method string) bool {
	if b.err != nil {
		return false
	}
	if b.mutation {
		b.fail("%s after %s", call, b.method)
		return false
	}
	if b.isRPC {
		b.fail("%s on rpc builder", call)
		return false
	}
	b.method = method
	b.mutation = true
	return true
}

func (b *Builder) add(key, value string) *Builder {
	if b.err == nil {
		b.params = append(b.params, Param{Key: key, Value: value})
	}
	return b
}

func (b *Builder) set(key, value string) {
	for i := range b.params {
		if b.params[i].Key == key {
			b.params[i].Value = value
			return
		}
	}
	b.params = append(b.params, Param{Key: key, Value: value})
}

// Select sets the columns to return. Column names are not validated.
func (b *Builder) Select(columns ...string) *Builder {
	if b.readOnly("select") {
		b.set("select", strings.Join(columns, ","))
	}
	return b
}

// Order sorts by the comma-separated columns. Empty dir or nulls leave the
// server default. Repeated calls extend the same order parameter.
func (b *Builder) Order(columns string, dir Direction, nulls NullsOrder) *Builder {
	if !b.readOnly("order") {
		return b
	}
	terms := formatOrder(columns, dir, nulls)
	for i := range b.params {
		if b.params[i].Key == "order" {
			b.params[i].Value += "," + terms
			return b
		}
	}
	return b.add("order", terms)
}

// Limit appends the limit parameter.
func (b *Builder) Limit(n int) *Builder {
	return b.add("limit", strconv.Itoa(n))
}

// Offset appends the offset parameter.
func (b *Builder) Offset(n int) *Builder {
	return b.add("offset", strconv.Itoa(n))
}

// Range limits the result to rows from through to (inclusive) with the Range header.
func (b *Builder) Range(from, to int) *Builder {
	if b.err == nil {
		b.header.Set(HeaderRangeUnit, "items")
		b.header.Set(HeaderRange, fmt.Sprintf("%d-%d", from, to))
	}
	return b
}

// Single asks for a single object instead of an array.
func (b *Builder) Single() *Builder {
	if b.err == nil {
		b.header.Set(HeaderAccept, MediaTypeSingleObject)
	}
	return b
}

// Count asks the server for a row count in the Content-Range header.
func (b *Builder) Count(c Count) *Builder {
	if b.err == nil {
		b.prefer.Count = c
	}
	return b
}

// Head switches a read to HEAD, returning headers only.
func (b *Builder) Head() *Builder {
	if b.isRPC {
		return b.fail("head on rpc builder")
	}
	if b.readOnly("head") {
		b.method = http.MethodHead
	}
	return b
}

// Filter appends column=op.value. The value is emitted verbatim, except that an
// in value without parentheses is treated as a comma-separated list.
func (b *Builder) Filter(column string, op Operator, value string) *Builder {
	if op == OpIn && !strings.HasPrefix(value, "(") {
		return b.In(column, strings.Split(value, ","))
	}
	return b.add(column, Encode(op, value))
}

// Eq finds rows whose column equals value.
func (b *Builder) Eq(column, value string) *Builder { return b.add(column, Encode(OpEq, value)) }

// Neq finds rows whose column does not equal value.
func (b *Builder) Neq(column, value string) *Builder { return b.add(column, Encode(OpNeq, value)) }

// Gt finds rows whose column is greater than value.
func (b *Builder) Gt(column, value string) *Builder { return b.add(column, Encode(OpGt, value)) }

// Gte finds rows whose column is greater than or equal to value.
func (b *Builder) Gte(column, value string) *Builder { return b.add(column, Encode(OpGte, value)) }

// Lt finds rows whose column is less than value.
func (b *Builder) Lt(column, value string) *Builder { return b.add(column, Encode(OpLt, value)) }

// Lte finds rows whose column is less than or equal to value.
func (b *Builder) Lte(column, value string) *Builder { return b.add(column, Encode(OpLte, value)) }

// Like matches column against pattern, case sensitive. % and _ are passed through.
func (b *Builder) Like(column, pattern string) *Builder {
	return b.add(column, Encode(OpLike, pattern))
}

// ILike matches column against pattern, case insensitive.
func (b *Builder) ILike(column, pattern string) *Builder {
	return b.add(column, Encode(OpILike, pattern))
}

// Is checks column for null, true, false or unknown.
func (b *Builder) Is(column string, value IsValue) *Builder {
	return b.add(column, Encode(OpIs, string(value)))
}

// In finds rows whose column is one of values.
func (b *Builder) In(column string, values []string) *Builder {
	return b.add(column, EncodeIn(values))
}

// Fts matches a tsvector column against to_tsquery(query). config is the
// optional text search configuration, e.g. "english".
func (b *Builder) Fts(column, query, config string) *Builder {
	return b.add(column, EncodeFullText(OpFts, query, config))
}

// Plfts matches a tsvector column against plainto_tsquery(query).
func (b *Builder) Plfts(column, query, config string) *Builder {
	return b.add(column, EncodeFullText(OpPlfts, query, config))
}

// Phfts matches a tsvector column against phraseto_tsquery(query).
func (b *Builder) Phfts(column, query, config string) *Builder {
	return b.add(column, EncodeFullText(OpPhfts, query, config))
}

// Wfts matches a tsvector column against websearch_to_tsquery(query).
func (b *Builder) Wfts(column, query, config string) *Builder {
	return b.add(column, EncodeFullText(OpWfts, query, config))
}

// Cs finds rows whose json, array or range column contains literal, e.g. "{a,b}" or "[1,5)".
func (b *Builder) Cs(column, literal string) *Builder { return b.add(column, Encode(OpCs, literal)) }

// Cd finds rows whose json, array or range column is contained by literal.
func (b *Builder) Cd(column, literal string) *Builder { return b.add(column, Encode(OpCd, literal)) }

// Ov finds rows whose array or range column overlaps literal.
func (b *Builder) Ov(column, literal string) *Builder { return b.add(column, Encode(OpOv, literal)) }

// Sl finds rows whose range column is strictly left of r.
func (b *Builder) Sl(column string, r Range) *Builder { return b.add(column, Encode(OpSl, r.String())) }

// Sr finds rows whose range column is strictly right of r.
func (b *Builder) Sr(column string, r Range) *Builder { return b.add(column, Encode(OpSr, r.String())) }

// Nxl finds rows whose range column does not extend to the left of r.
func (b *Builder) Nxl(column string, r Range) *Builder {
	return b.add(column, Encode(OpNxl, r.String()))
}

// Nxr finds rows whose range column does not extend to the right of r.
func (b *Builder) Nxr(column string, r Range) *Builder {
	return b.add(column, Encode(OpNxr, r.String()))
}

// Adj finds rows whose range column is adjacent to r.
func (b *Builder) Adj(column string, r Range) *Builder { return b.add(column, Encode(OpAdj, r.String())) }

// Insert creates rows from body. An empty body is sent as is.
func (b *Builder) Insert(body string) *Builder {
	if b.mutate("insert", http.MethodPost) {
		b.prefer.Return = ReturnRepresentation
		b.body, b.hasBody = body, true
	}
	return b
}

// InsertCSV creates rows from a CSV body.
func (b *Builder) InsertCSV(body string) *Builder {
	if b.mutate("insert", http.MethodPost) {
		b.header.Set(HeaderContentType, MediaTypeCSV)
		b.prefer.Return = ReturnRepresentation
		b.body, b.hasBody = body, true
	}
	return b
}

// Upsert creates rows from body, merging rows that conflict on the primary key
// or on the columns given to OnConflict.
func (b *Builder) Upsert(body string) *Builder {
	if b.mutate("upsert", http.MethodPost) {
		b.prefer.Return = ReturnRepresentation
		b.prefer.Resolution = ResolutionMergeDuplicates
		b.body, b.hasBody = body, true
	}
	return b
}

// OnConflict sets the unique columns an upsert resolves conflicts on.
func (b *Builder) OnConflict(columns ...string) *Builder {
	if b.err == nil {
		b.set("on_conflict", strings.Join(columns, ","))
	}
	return b
}

// Update patches the rows matched by the filters with body.
func (b *Builder) Update(body string) *Builder {
	if b.mutate("update", http.MethodPatch) {
		b.prefer.Return = ReturnRepresentation
		b.body, b.hasBody = body, true
	}
	return b
}

// Delete removes the rows matched by the filters.
func (b *Builder) Delete() *Builder {
	if b.mutate("delete", http.MethodDelete) {
		b.prefer.Return = ReturnRepresentation
	}
	return b
}

// Returning overrides the return preference set by a mutation.
func (b *Builder) Returning(r Return) *Builder {
	if b.err == nil {
		b.prefer.Return = r
	}
	return b
}

// Schema overrides the client schema for this request.
func (b *Builder) Schema(name string) *Builder {
	if b.err == nil {
		b.schema = name
	}
	return b
}

// Auth sets a bearer token for this request.
func (b *Builder) Auth(token string) *Builder {
	if b.err == nil {
		b.header.Set(HeaderAuthorization, "Bearer "+token)
	}
	return b
}

// SetHeader sets a header for this request, replacing any existing value.
func (b *Builder) SetHeader(key, value string) *Builder {
	if b.err == nil {
		b.header.Set(key, value)
	}
	return b
}

// Build finalizes the builder into a Request. The builder cannot be used
// afterwards.
func (b *Builder) Build() (*Request, error) {
	if b.consumed {
		return nil, fmt.Errorf("%w: builder already consumed", ErrInvalidState)
	}
	b.consumed = true
	if b.err != nil {
		return nil, b.err
	}

	header := b.header.Clone()
	if b.schema != "" {
		if b.method == http.MethodGet || b.method == http.MethodHead {
			header.Set(HeaderAcceptProfile, b.schema)
		} else {
			header.Set(HeaderContentProfile, b.schema)
		}
	}
	if !b.prefer.IsZero() {
		header.Set(HeaderPrefer, b.prefer.String())
	}

	req := &Request{
		Method:  b.method,
		BaseURL: b.baseURL,
		Path:    b.path,
		Params:  append([]Param(nil), b.params...),
		Header:  header,
		Body:    b.body,
		HasBody: b.hasBody,
	}
	return req, nil
}

// Execute builds the request and sends it with doer. The caller must close
// the response body.
func (b *Builder) Execute(ctx context.Context, doer Doer) (*http.Response, error) {
	r, err := b.Build()
	if err != nil {
		return nil, err
	}
	req, err := r.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
