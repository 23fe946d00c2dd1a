package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name    string   `json:"name"     validate:"required,max=5"`
	Email   string   `json:"email"    validate:"required,email"`
	Secret  string   `json:"password" validate:"required,min=8"`
	Confirm string   `json:"password_confirmation" validate:"eqfield=Secret"`
	Role    string   `json:"role"     validate:"omitempty,oneof=low medium high"`
	IDs     []string `json:"ids"      validate:"omitempty,dive,uuid"`
	Order   *int     `json:"order"    validate:"omitempty,gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		noBody  bool
		wantErr error
		errMsg  bool
	}{
		{name: "valid", body: `{"name":"ada"}`},
		{name: "no body", noBody: true, wantErr: ErrEmptyBody},
		{name: "empty string", body: "", wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"name":`, errMsg: true},
		{name: "wrong type", body: `{"name":5}`, errMsg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.noBody {
				req = httptest.NewRequest(http.MethodPost, "/", nil)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			}

			var out signup
			err := DecodeJSON(req, &out)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrEmptyBody)
			default:
				require.NoError(t, err)
				assert.Equal(t, "ada", out.Name)
			}
		})
	}
}

func TestValidationFields(t *testing.T) {
	neg := -1
	err := ValidateRequest(&signup{
		Name:    "abcdefgh",
		Email:   "not-an-email",
		Secret:  "short",
		Confirm: "different",
		Role:    "urgent",
		IDs:     []string{"nope"},
		Order:   &neg,
	})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"name":                  "must not exceed 5 characters",
		"email":                 "must be a valid email address",
		"password":              "must be at least 8 characters",
		"password_confirmation": "confirmation does not match",
		"role":                  "must be one of: low, medium, high",
		"ids[0]":                "must be a valid UUID",
		"order":                 "must be 0 or greater",
	}, ValidationFields(err))
}

func TestValidationFields_Required(t *testing.T) {
	err := ValidateRequest(&signup{})
	require.Error(t, err)

	fields := ValidationFields(err)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "is required", fields["password"])
}

func TestValidationFields_NonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationFields(ErrEmptyBody))
	assert.Nil(t, ValidationFields(nil))
}
