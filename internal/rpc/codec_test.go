package rpc

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestProductStruct_RoundTrip(t *testing.T) {
	p := models.Product{ID: "p1", Code: 1001, Name: "Widget", Price: 9.99, Quantity: 7}

	got, err := ProductFromStruct(ProductToStruct(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProductFromStruct_MissingFieldsDefault(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"name": "only name"})
	require.NoError(t, err)

	p, err := ProductFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, models.Product{Name: "only name"}, p)

	p, err = ProductFromStruct(nil)
	require.NoError(t, err)
	assert.Equal(t, models.Product{}, p)
}

func TestProductFromStruct_WrongKinds(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"name not string", map[string]any{"name": 12}},
		{"price not number", map[string]any{"price": "cheap"}},
		{"quantity fractional", map[string]any{"quantity": 1.5}},
		{"code too large", map[string]any{"code": 1e12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			_, err = ProductFromStruct(s)
			assert.True(t, errors.Is(err, common.ErrorValidation), "got %v", err)
		})
	}
}

func TestProductsList(t *testing.T) {
	in := []models.Product{{ID: "a", Price: 1, Quantity: 2}, {ID: "b", Name: "x"}}

	out, err := ProductsFromList(ProductsToList(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	empty, err := ProductsFromList(ProductsToList(nil))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	bad := &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("nope")}}
	_, err = ProductsFromList(bad)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestCredentialsAndSession(t *testing.T) {
	email, pw, err := CredentialsFromStruct(CredentialsToStruct("a@b.c", "pw"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", email)
	assert.Equal(t, "pw", pw)

	s := Session{UserID: "u1", Email: "a@b.c", AccessToken: "at", RefreshToken: "rt"}
	got, err := SessionFromStruct(SessionToStruct(s))
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, models.User{ID: "u1", Email: "a@b.c"}, got.User())
}
