package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"validation", NewValidationError("name", "name is required"), KindValidation},
		{"wrapped business rule", fmt.Errorf("join: %w", NewBusinessRuleError(ErrClassFull)), KindBusinessRule},
		{"joined takes first", errors.Join(NewNotFoundError(ErrClassNotFound), NewAuthorizationError(ErrNotYourClass)), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestFlatten(t *testing.T) {
	a := NewValidationError("name", "name is required")
	b := NewValidationError("max", "max is out of range")
	c := NewValidationError("when", "when is in the past")

	got := Flatten(errors.Join(a, errors.Join(b, c)))
	assert.Equal(t, []error{a, b, c}, got)

	assert.Nil(t, Flatten(nil))
	assert.Len(t, Flatten(a), 1)
}

func TestCustomError(t *testing.T) {
	err := NewBusinessRuleError(ErrClassFull)
	assert.True(t, errors.Is(err, ErrClassFull))
	assert.Equal(t, "class is full", err.Error())

	var ce *CustomError
	assert.True(t, errors.As(NewValidationError("max", "max must be a number"), &ce))
	assert.Equal(t, "max must be a number", ce.Error())
	assert.Equal(t, "max", ce.Field)
	assert.Equal(t, "business_rule", KindBusinessRule.String())
}
