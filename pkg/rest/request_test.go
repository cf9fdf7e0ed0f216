package rest

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestURL(t *testing.T) {
	req := build(t, NewClient(restURL).From("users").
		Select("username").
		Eq("username", "ihave.special,c:haracter(s)").
		In("name", []string{"China", "France"}).
		Fts("phrase", "fat cats", ""))

	assert.Equal(t,
		restURL+"/users?select=username"+
			"&username=eq.ihave.special%2Cc%3Aharacter%28s%29"+
			"&name=in.%28China%2CFrance%29"+
			"&phrase=fts.fat+cats",
		req.URL())
}

func TestRequestGet(t *testing.T) {
	req := build(t, NewClient(restURL).From("users").Eq("id", "1").Eq("id", "2"))

	v, ok := req.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "eq.1", v)

	_, ok = req.Get("select")
	assert.False(t, ok)
}

func TestRequestHTTPRequest(t *testing.T) {
	req := build(t, NewClient(restURL).Schema("personal").From("users").Upsert(`{"id":1}`))

	hr, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, hr.Method)
	assert.Equal(t, restURL+"/users", hr.URL.String())
	assert.Equal(t, MediaTypeJSON, hr.Header.Get(HeaderContentType))
	assert.Equal(t, "personal", hr.Header.Get(HeaderContentProfile))
	require.NotNil(t, hr.GetBody)

	body, err := io.ReadAll(hr.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(body))

	// the body can be replayed by a retrying transport
	replay, err := hr.GetBody()
	require.NoError(t, err)
	body, err = io.ReadAll(replay)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(body))
}

func TestRequestHTTPRequestWithoutBody(t *testing.T) {
	req := build(t, NewClient(restURL).From("users").Select("*"))

	hr, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, hr.Body)
	assert.Empty(t, hr.Header.Get(HeaderContentType))
}

func TestRequestHTTPRequestKeepsContentType(t *testing.T) {
	req := build(t, NewClient(restURL).From("users").InsertCSV("id\n1"))

	hr, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MediaTypeCSV, hr.Header.Get(HeaderContentType))
}

func TestRequestString(t *testing.T) {
	req := build(t, NewClient(restURL).From("users").Eq("id", "1").Delete())

	assert.Equal(t,
		"DELETE "+restURL+"/users?id=eq.1\n"+
			"Accept: application/json\n"+
			"Prefer: return=representation\n",
		req.String())
}
