package rest

import (
	"net/http"
	"strings"
)

// Client is the entry point for building PostgREST requests. It is never
// mutated after construction and can be shared between goroutines.
type Client struct {
	baseURL string
	schema  string
	header  http.Header
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSchema selects the schema used by every request of the client.
func WithSchema(schema string) ClientOption {
	return func(c *Client) {
		c.schema = schema
	}
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// WithToken sends token as a bearer token with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.header.Set(HeaderAuthorization, "Bearer "+token)
	}
}

// NewClient returns a client for the PostgREST API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  make(http.Header),
	}
	c.header.Set(HeaderAccept, MediaTypeJSON)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) clone() *Client {
	return &Client{
		baseURL: c.baseURL,
		schema:  c.schema,
		header:  c.header.Clone(),
	}
}

// Schema returns a copy of c using schema. Builders created earlier are unaffected.
func (c *Client) Schema(schema string) *Client {
	cc := c.clone()
	cc.schema = schema
	return cc
}

// Header returns a copy of c with an additional default header.
func (c *Client) Header(key, value string) *Client {
	cc := c.clone()
	cc.header.Set(key, value)
	return cc
}

// URL returns the base URL.
func (c *Client) URL() string {
	return c.baseURL
}

// SchemaName returns the configured schema, empty for the server default.
func (c *Client) SchemaName() string {
	return c.schema
}

// From starts a read of a table or view. Call a mutation method on the
// builder to insert, update or delete instead.
func (c *Client) From(resource string) *Builder {
	return newBuilder(c.baseURL, "/"+resource, c.schema, c.header)
}

// Rpc starts a call of the stored procedure name with args as JSON body.
func (c *Client) Rpc(name, args string) *Builder {
	b := newBuilder(c.baseURL, "/rpc/"+name, c.schema, c.header)
	b.method = http.MethodPost
	b.isRPC = true
	b.body, b.hasBody = args, true
	return b
}
