package validate_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/validate"
)

type payload struct {
	Name    string          `json:"name" validate:"required"`
	Kind    string          `json:"kind" validate:"oneof=a b"`
	Amount  decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Balance decimal.Decimal `json:"balance" validate:"nonnegative_decimal"`
	Items   []string        `json:"items" validate:"dive,required"`
}

func TestStruct(t *testing.T) {
	valid := payload{Name: "x", Kind: "a", Amount: decimal.NewFromInt(1), Items: []string{"w"}}
	require.NoError(t, validate.Struct(valid))

	invalid := payload{Kind: "c", Amount: decimal.Zero, Balance: decimal.NewFromInt(-1), Items: []string{""}}

	err := validate.Struct(invalid)
	require.ErrorIs(t, err, apperr.ErrValidation)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}

	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be one of [a b]", fields["kind"])
	assert.Equal(t, "must be a positive amount", fields["amount"])
	assert.Equal(t, "must not be negative", fields["balance"])
	assert.Contains(t, fields, "items[0]")
}
