package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawQuery(t *testing.T) {
	params, err := ParseRawQuery("select=%2A&name=in.%28China%2CFrance%29&phrase=fts.fat+cats&&flag")
	require.NoError(t, err)
	assert.Equal(t, []Param{
		{Key: "select", Value: "*"},
		{Key: "name", Value: "in.(China,France)"},
		{Key: "phrase", Value: "fts.fat cats"},
		{Key: "flag", Value: ""},
	}, params)

	_, err = ParseRawQuery("bad=%zz")
	assert.Error(t, err)
}

func TestParseQueryInvertsBuilder(t *testing.T) {
	req := build(t, NewClient(restURL).From("users").
		Select("id", "username").
		Eq("status", "ONLINE").
		In("capital", []string{"Beijing,China", "Paris"}).
		Fts("phrase", "fat cats", "english").
		Sl("age_range", IntRange(1, 5)).
		Order("id", Desc, NullsLast).
		Limit(5).
		Offset(10))

	params, err := ParseRawQuery(req.RawQuery())
	require.NoError(t, err)
	q, err := ParseQuery(params)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "username"}, q.Select)
	assert.Equal(t, []OrderParam{{Column: "id", Direction: Desc, NullsPosition: NullsLast}}, q.Order)
	require.NotNil(t, q.Limit)
	assert.Equal(t, 5, *q.Limit)
	require.NotNil(t, q.Offset)
	assert.Equal(t, 10, *q.Offset)

	require.Len(t, q.Filters, 4)
	assert.Equal(t, FilterParam{Column: "status", Operator: OpEq, Value: "ONLINE"}, q.Filters[0])
	assert.Equal(t, OpIn, q.Filters[1].Operator)
	assert.Equal(t, []string{"Beijing,China", "Paris"}, q.Filters[1].Values)
	assert.Equal(t, FilterParam{Column: "phrase", Operator: OpFts, Config: "english", Value: "fat cats"}, q.Filters[2])
	assert.Equal(t, FilterParam{Column: "age_range", Operator: OpSl, Value: "(1,5)"}, q.Filters[3])
}

func TestParseQueryOnConflict(t *testing.T) {
	q, err := ParseQuery([]Param{{Key: "on_conflict", Value: "username,email"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"username", "email"}, q.OnConflict)
	assert.Nil(t, q.Limit)
}

func TestParseQueryErrors(t *testing.T) {
	_, err := ParseQuery([]Param{{Key: "limit", Value: "ten"}})
	assert.Error(t, err)

	_, err = ParseQuery([]Param{{Key: "id", Value: "1"}})
	assert.Error(t, err)

	_, err = ParseQuery([]Param{{Key: "id", Value: "between.1"}})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input string
		want  []OrderParam
	}{
		{"id", []OrderParam{{Column: "id"}}},
		{"id.asc", []OrderParam{{Column: "id", Direction: Asc}}},
		{"id.desc.nullsfirst", []OrderParam{{Column: "id", Direction: Desc, NullsPosition: NullsFirst}}},
		{"a.nullslast, b.desc", []OrderParam{{Column: "a", NullsPosition: NullsLast}, {Column: "b", Direction: Desc}}},
		{"", []OrderParam{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrder(tt.input))
		})
	}
}

func TestFormatOrder(t *testing.T) {
	assert.Equal(t, "a.desc,b.desc", formatOrder("a,b", Desc, ""))
	assert.Equal(t, "a", formatOrder("a", "", ""))
	assert.Equal(t, "a.asc.nullsfirst", formatOrder(" a ,", Asc, NullsFirst))
}
