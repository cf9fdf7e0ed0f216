package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Param is one query parameter. Parameter order is kept for reproducible URLs.
type Param struct {
	Key   string
	Value string
}

// Request is a finalized PostgREST request, independent of any transport.
type Request struct {
	Method  string
	BaseURL string
	Path    string
	Params  []Param
	Header  http.Header
	Body    string
	HasBody bool
}

// Get returns the value of the first parameter named key.
func (r *Request) Get(key string) (string, bool) {
	for _, p := range r.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// RawQuery returns the URL-encoded, &-joined query string in parameter order.
func (r *Request) RawQuery() string {
	return encodeParams(r.Params)
}

// URL returns the full request URL.
func (r *Request) URL() string {
	q := r.RawQuery()
	if q == "" {
		return r.BaseURL + r.Path
	}
	return r.BaseURL + r.Path + "?" + q
}

// HTTPRequest converts r into an *http.Request bound to ctx.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var req *http.Request
	var err error
	if r.HasBody {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL(), strings.NewReader(r.Body))
	} else {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if r.HasBody && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, MediaTypeJSON)
	}
	return req, nil
}

// String renders r the way it would appear on the wire, for dry runs and logs.
func (r *Request) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", r.Method, r.URL())

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}

	if r.HasBody {
		sb.WriteString("\n")
		sb.WriteString(r.Body)
		sb.WriteString("\n")
	}
	return sb.String()
}

func encodeParams(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = url.QueryEscape(p.Key) + "=" + url.QueryEscape(p.Value)
	}
	return strings.Join(pairs, "&")
}
