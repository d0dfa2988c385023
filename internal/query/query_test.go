package query

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"client_registry/internal/model"
)

func TestBuild_Defaults(t *testing.T) {
	q, err := Build(Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, model.FieldCreatedAt, q.Sort)
	assert.False(t, q.Desc)
	assert.Equal(t, "asc", q.OrderBy())
	assert.True(t, q.Predicate.IsEmpty())
}

func TestBuild_Offset(t *testing.T) {
	tests := []struct {
		page, limit, offset int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
	}
	for _, tt := range tests {
		q, err := Build(Options{Page: tt.page, Limit: tt.limit})
		require.NoError(t, err)
		assert.Equal(t, tt.offset, q.Offset, "page=%d limit=%d", tt.page, tt.limit)
	}
}

func TestBuild_Sort(t *testing.T) {
	q, err := Build(Options{Sort: "name", OrderBy: "desc"})
	require.NoError(t, err)
	assert.Equal(t, model.FieldName, q.Sort)
	assert.True(t, q.Desc)
	assert.Equal(t, "desc", q.OrderBy())
}

func TestBuild_InvalidOptions(t *testing.T) {
	_, err := Build(Options{Page: -1, Limit: -5, Sort: "password", OrderBy: "up", Where: map[string]string{"deletedAt": "x"}})
	require.Error(t, err)

	var oerr OptionsError
	require.True(t, errors.As(err, &oerr))

	fields := make([]string, 0, len(oerr))
	for _, e := range oerr {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"page", "limit", "sort", "orderBy", "where.deletedAt"}, fields)
}

func TestBuild_WhereTakesPrecedenceOverSearch(t *testing.T) {
	q, err := Build(Options{
		Where:  map[string]string{"sector": "Technology", "cnpj": "11.222.333/0001-81"},
		Search: "joão",
	})
	require.NoError(t, err)

	assert.Empty(t, q.Predicate.Search)
	assert.Equal(t, []Condition{
		{Field: model.FieldCnpj, Value: "11222333000181"},
		{Field: model.FieldSector, Value: "Technology"},
	}, q.Predicate.Equals)
}

func TestBuild_Search(t *testing.T) {
	q, err := Build(Options{Search: "  joão "})
	require.NoError(t, err)

	assert.Empty(t, q.Predicate.Equals)
	assert.Equal(t, "joão", q.Predicate.Search)
	assert.Equal(t, model.SearchableFields, q.Predicate.SearchFields)
}

func TestPredicate_Matches(t *testing.T) {
	joao := &model.Client{Name: "João Silva LTDA", Sector: "Retail", City: "Recife", Email: model.StringPtr("contato@joao.com.br")}
	acme := &model.Client{Name: "Acme", Sector: "Technology", City: "São Paulo"}

	search := SearchFilter("JOÃO")
	assert.True(t, search.Matches(joao))
	assert.False(t, search.Matches(acme))

	byCity := SearchFilter("paulo")
	assert.True(t, byCity.Matches(acme))

	where := Predicate{Equals: []Condition{{Field: model.FieldSector, Value: "Technology"}, {Field: model.FieldCity, Value: "São Paulo"}}}
	assert.True(t, where.Matches(acme))
	assert.False(t, where.Matches(joao))

	// точное совпадение чувствительно к регистру и не ищет подстроку
	partial := Predicate{Equals: []Condition{{Field: model.FieldSector, Value: "tech"}}}
	assert.False(t, partial.Matches(acme))

	assert.True(t, Predicate{}.Matches(joao))
}

func TestBuild_RejectsOversizedPaging(t *testing.T) {
	cases := []struct {
		name  string
		opts  Options
		field string
		msg   string
	}{
		{"limit above max", Options{Page: 3, Limit: 1 << 62}, "limit", "Limit must not exceed 100"},
		{"limit just above max", Options{Limit: MaxLimit + 1}, "limit", "Limit must not exceed 100"},
		{"offset overflows", Options{Page: math.MaxInt, Limit: MaxLimit}, "page", "Page is too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.opts)
			var oerr OptionsError
			require.True(t, errors.As(err, &oerr))
			require.Len(t, oerr, 1)
			assert.Equal(t, tc.field, oerr[0].Field)
			assert.Equal(t, tc.msg, oerr[0].Message)
		})
	}

	q, err := Build(Options{Page: 2, Limit: MaxLimit})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, q.Offset)
}

func TestBuild_WhereValueFormats(t *testing.T) {
	_, err := Build(Options{Where: map[string]string{"email": "not-an-email", "cnpj": "11.222.333/0001-82"}})
	var oerr OptionsError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, OptionsError{
		{Field: "where.email", Message: "Email must be a valid email"},
		{Field: "where.cnpj", Message: "Cnpj must be a valid CNPJ"},
	}, oerr)

	q, err := Build(Options{Where: map[string]string{"email": "a@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, []Condition{{Field: model.FieldEmail, Value: "a@example.com"}}, q.Predicate.Equals)
}
