package validate

import (
	"errors"
	"testing"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&domain.SendCodeRequest{Email: "a@b.com"}))
	assert.NoError(t, Struct(&domain.VerifyCodeRequest{Email: "a@b.com", Code: "123456"}))
}

func TestStruct_UsesJSONFieldNames(t *testing.T) {
	err := Struct(&domain.SendCodeRequest{Email: "not-an-email"})
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.True(t, errs.Has("email", "email"))
	assert.False(t, errs.Has("email", "required"))
	assert.Equal(t, "field 'email' failed 'email'", err.Error())
}

func TestStruct_Required(t *testing.T) {
	err := Struct(&domain.VerifyCodeRequest{})

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.True(t, errs.Has("email", "required"))
	assert.True(t, errs.Has("code", "required"))
	assert.Len(t, errs, 2)
}
