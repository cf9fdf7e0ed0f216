package rest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	c := NewClient("https://localhost:3000/")
	assert.Equal(t, "https://localhost:3000", c.URL())
	assert.Empty(t, c.SchemaName())
}

func TestClientSchemaReturnsCopy(t *testing.T) {
	c := NewClient(restURL)
	private := c.Schema("private")

	assert.Equal(t, "private", private.SchemaName())
	assert.Empty(t, c.SchemaName())
}

func TestClientSchemaBeforeFrom(t *testing.T) {
	req := build(t, NewClient(restURL).Schema("personal").From("t").Select("*"))

	assert.Equal(t, "personal", req.Header.Get(HeaderAcceptProfile))
	assert.Equal(t, "/t", req.Path)
	assert.Equal(t, restURL+"/t?select=%2A", req.URL())
}

func TestClientHeaderDoesNotAffectEarlierBuilders(t *testing.T) {
	c := NewClient(restURL)
	early := c.From("users")
	withKey := c.Header("apikey", "secret")
	late := withKey.From("users")

	assert.Empty(t, build(t, early).Header.Get("apikey"))
	assert.Equal(t, "secret", build(t, late).Header.Get("apikey"))
}

func TestClientOptions(t *testing.T) {
	c := NewClient(restURL, WithSchema("personal"), WithHeader("apikey", "k"), WithToken("tok"))
	req := build(t, c.From("users"))

	assert.Equal(t, "personal", req.Header.Get(HeaderAcceptProfile))
	assert.Equal(t, "k", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer tok", req.Header.Get(HeaderAuthorization))
}

func TestBuilderHeadersDoNotLeakIntoClient(t *testing.T) {
	c := NewClient(restURL)
	build(t, c.From("users").SetHeader("X-Test", "1"))

	assert.Empty(t, build(t, c.From("users")).Header.Get("X-Test"))
}

func TestRpc(t *testing.T) {
	req := build(t, NewClient(restURL).Rpc("add", `{"a":1,"b":2}`))

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rpc/add", req.Path)
	assert.Equal(t, `{"a":1,"b":2}`, req.Body)
	assert.Empty(t, req.Params)
	assert.Empty(t, req.Header.Get(HeaderPrefer))
	assert.Equal(t, restURL+"/rpc/add", req.URL())
}

func TestRpcWithSchemaAndSelect(t *testing.T) {
	req := build(t, NewClient(restURL, WithSchema("personal")).
		Rpc("get_status", `{"name_param":"leroyjenkins"}`).
		Select("status"))

	assert.Equal(t, "personal", req.Header.Get(HeaderContentProfile))
	assert.Equal(t, []Param{{Key: "select", Value: "status"}}, req.Params)
}
