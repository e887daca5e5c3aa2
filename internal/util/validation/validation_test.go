package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-shop/internal/domain"

	. "github.com/mkrupp/homecase-shop/internal/util/validation"
)

func TestValidUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "letters and digits", input: "alice_1", want: true},
		{name: "leading underscore", input: "_bobby", want: true},
		{name: "too short", input: "bob", want: false},
		{name: "leading digit", input: "1alice", want: false},
		{name: "comma", input: "ali,ce", want: false},
		{name: "space", input: "ali ce", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ValidUsername(tt.input))
		})
	}
}

func TestValidPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "letters and digits", input: "pass123", want: true},
		{name: "no digit", input: "password", want: false},
		{name: "no letter", input: "12345", want: false},
		{name: "too short", input: "a1", want: false},
		{name: "delimiter", input: "pass,123", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ValidPassword(tt.input))
		})
	}
}

func TestValidPhone(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidPhone("0412345678"))
	assert.True(t, ValidPhone("0312345678"))
	assert.False(t, ValidPhone("0512345678"))
	assert.False(t, ValidPhone("041234567"))
	assert.False(t, ValidPhone("04123456789"))
}

func TestValidator_Struct(t *testing.T) {
	t.Parallel()

	type input struct {
		Name  string `validate:"required,username"`
		Email string `validate:"required,email,nodelim"`
		Phone string `validate:"omitempty,phone"`
	}

	v := New()

	require.NoError(t, v.Struct(input{Name: "alice_1", Email: "a@x.com"}))

	err := v.Struct(input{Name: "al", Email: "nope", Phone: "123"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name must start with")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "phone must have 10 digits")
}

func TestValidator_Var(t *testing.T) {
	t.Parallel()

	v := New()

	require.NoError(t, v.Var("category", "Books", "required,nodelim"))

	err := v.Var("category", "Books,Music", "required,nodelim")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "invalid input: category must not contain commas or line breaks", err.Error())
}
