package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setPasswordBody struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type postBody struct {
	Title  string `json:"title" validate:"notblank,max=200"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	err := Validate(setPasswordBody{Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	fields := fieldsOf(t, Validate(setPasswordBody{Email: "a@b.com", Password: "secret1"}))
	assert.Equal(t, "is required", fields["confirm_password"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	fields := fieldsOf(t, Validate(setPasswordBody{Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}))
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestValidate_PasswordTooShort(t *testing.T) {
	fields := fieldsOf(t, Validate(setPasswordBody{Email: "a@b.com", Password: "abc", ConfirmPassword: "abc"}))
	assert.Equal(t, "must be at least 6 characters", fields["password"])
}

func TestValidate_PasswordsDoNotMatch(t *testing.T) {
	fields := fieldsOf(t, Validate(setPasswordBody{Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret2"}))
	assert.Equal(t, "does not match", fields["confirm_password"])
}

func TestValidate_NotBlank(t *testing.T) {
	fields := fieldsOf(t, Validate(postBody{Title: "   "}))
	assert.Equal(t, "is required", fields["title"])
}

func TestValidate_OneOf(t *testing.T) {
	fields := fieldsOf(t, Validate(postBody{Title: "hello", Status: "ARCHIVED"}))
	assert.Equal(t, "must be one of: PENDING APPROVED REJECTED", fields["status"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(postBody{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}
