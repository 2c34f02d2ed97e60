package validation

import (
	"testing"

	"getconnected/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type preferenceInput struct {
	Platform        string   `json:"platform" validate:"required,platform"`
	PreferenceLevel int      `json:"preferenceLevel" validate:"min=1,max=10"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Features        []string `json:"features" validate:"dive,feature"`
}

func isPlatform(key string) bool {
	return key == "signal" || key == "telegram"
}

func TestValidator_Check(t *testing.T) {
	v := New(isPlatform)

	tests := []struct {
		name       string
		input      preferenceInput
		wantFields []string
	}{
		{
			name:  "valid",
			input: preferenceInput{Platform: "signal", PreferenceLevel: 7, Features: []string{"bots"}},
		},
		{
			name:       "unknown platform",
			input:      preferenceInput{Platform: "myspace", PreferenceLevel: 5},
			wantFields: []string{"platform"},
		},
		{
			name:       "level out of range and bad email",
			input:      preferenceInput{Platform: "telegram", PreferenceLevel: 11, Email: "nope"},
			wantFields: []string{"preferenceLevel", "email"},
		},
		{
			name:       "unknown feature inside slice",
			input:      preferenceInput{Platform: "signal", PreferenceLevel: 5, Features: []string{"bots", "teleport"}},
			wantFields: []string{"features[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := v.Check(&tt.input)
			got := make([]string, 0, len(problems))
			for _, p := range problems {
				got = append(got, p.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestValidator_StructReturnsStandardError(t *testing.T) {
	v := New(isPlatform)

	err := v.Struct(&preferenceInput{Platform: "", PreferenceLevel: 0})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	assert.Contains(t, err.(*errors.StandardError).Details, "platform: required field missing")
	assert.Contains(t, err.(*errors.StandardError).Details, "preferenceLevel: must be at least 1")

	assert.NoError(t, v.Struct(&preferenceInput{Platform: "signal", PreferenceLevel: 1}))
}

func TestValidator_NilLookupRejectsPlatforms(t *testing.T) {
	v := New(nil)
	problems := v.Check(&preferenceInput{Platform: "signal", PreferenceLevel: 3})
	require.Len(t, problems, 1)
	assert.Equal(t, "PLATFORM", problems[0].Code)
}
