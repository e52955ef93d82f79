package rpc

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// Session is what Register, Login and RefreshToken return.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

func (s Session) User() models.User {
	return models.User{ID: s.UserID, Email: s.Email}
}

func ProductToStruct(p models.Product) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(p.ID),
		"code":     structpb.NewNumberValue(float64(p.Code)),
		"name":     structpb.NewStringValue(p.Name),
		"price":    structpb.NewNumberValue(p.Price),
		"quantity": structpb.NewNumberValue(float64(p.Quantity)),
	}}
}

// ProductFromStruct decodes a product. Missing fields keep their zero
// defaults; fields of the wrong kind are a validation error.
func ProductFromStruct(s *structpb.Struct) (models.Product, error) {
	var (
		p   models.Product
		err error
	)
	if s == nil {
		return p, nil
	}
	f := s.GetFields()

	if p.ID, err = stringField(f, "id"); err != nil {
		return p, err
	}
	if p.Name, err = stringField(f, "name"); err != nil {
		return p, err
	}
	if p.Price, err = numberField(f, "price"); err != nil {
		return p, err
	}
	if p.Code, err = intField(f, "code"); err != nil {
		return p, err
	}
	if p.Quantity, err = intField(f, "quantity"); err != nil {
		return p, err
	}
	return p, nil
}

func ProductsToList(products []models.Product) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(products))
	for _, p := range products {
		values = append(values, structpb.NewStructValue(ProductToStruct(p)))
	}
	return &structpb.ListValue{Values: values}
}

// ProductsFromList never returns nil on success, so an empty snapshot stays
// distinguishable from "nothing received".
func ProductsFromList(l *structpb.ListValue) ([]models.Product, error) {
	out := make([]models.Product, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: list item %d is not an object", common.ErrorValidation, i)
		}
		p, err := ProductFromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func CredentialsToStruct(email, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"email":    structpb.NewStringValue(email),
		"password": structpb.NewStringValue(password),
	}}
}

func CredentialsFromStruct(s *structpb.Struct) (email, password string, err error) {
	f := s.GetFields()
	if email, err = stringField(f, "email"); err != nil {
		return "", "", err
	}
	if password, err = stringField(f, "password"); err != nil {
		return "", "", err
	}
	return email, password, nil
}

func SessionToStruct(s Session) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"user_id":       structpb.NewStringValue(s.UserID),
		"email":         structpb.NewStringValue(s.Email),
		"access_token":  structpb.NewStringValue(s.AccessToken),
		"refresh_token": structpb.NewStringValue(s.RefreshToken),
	}}
}

func SessionFromStruct(st *structpb.Struct) (Session, error) {
	var (
		s   Session
		err error
	)
	f := st.GetFields()
	if s.UserID, err = stringField(f, "user_id"); err != nil {
		return s, err
	}
	if s.Email, err = stringField(f, "email"); err != nil {
		return s, err
	}
	if s.AccessToken, err = stringField(f, "access_token"); err != nil {
		return s, err
	}
	if s.RefreshToken, err = stringField(f, "refresh_token"); err != nil {
		return s, err
	}
	return s, nil
}

func stringField(f map[string]*structpb.Value, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", common.ErrorValidation, name)
	}
	return sv.StringValue, nil
}

func numberField(f map[string]*structpb.Value, name string) (float64, error) {
	v, ok := f[name]
	if !ok {
		return 0, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: field %q must be a number", common.ErrorValidation, name)
	}
	return nv.NumberValue, nil
}

func intField(f map[string]*structpb.Value, name string) (int, error) {
	n, err := numberField(f, name)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%w: field %q must be an integer", common.ErrorValidation, name)
	}
	return int(n), nil
}
