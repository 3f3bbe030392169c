package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/validation"
)

type testRecord struct {
	Path     string  `json:"-odread-original-path" validate:"required"`
	Duration float64 `json:"audio-duration" validate:"gte=0"`
	Internal string  `json:"-" validate:"omitempty,oneof=a b"`
	Plain    int     `validate:"lte=10"`
}

type testDocument struct {
	Base    string       `json:"download_base,omitempty" validate:"omitempty,url"`
	Records []testRecord `json:"spine" validate:"min=1,dive"`
}

func validDocument() testDocument {
	return testDocument{
		Base:    "https://dewey.example/loan/",
		Records: []testRecord{{Path: "{x}part.mp3", Duration: 12.5}},
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(validDocument()))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name   string
		modify func(*testDocument)
		field  string
		msg    string
	}{
		{
			name:   "missing required field",
			modify: func(d *testDocument) { d.Records[0].Path = "" },
			field:  "spine[0].-odread-original-path",
			msg:    "is required",
		},
		{
			name:   "negative number",
			modify: func(d *testDocument) { d.Records[0].Duration = -1 },
			field:  "spine[0].audio-duration",
			msg:    "must be greater than or equal to 0",
		},
		{
			name:   "invalid url",
			modify: func(d *testDocument) { d.Base = "not a url" },
			field:  "download_base",
			msg:    "must be a valid URL",
		},
		{
			name:   "empty list",
			modify: func(d *testDocument) { d.Records = nil },
			field:  "spine",
			msg:    "must have at least 1 entries",
		},
		{
			name:   "field without json tag",
			modify: func(d *testDocument) { d.Records[0].Plain = 11 },
			field:  "spine[0].Plain",
			msg:    "must be less than or equal to 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.modify(&doc)

			err := v.Validate(doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field], "details: %v", details)
		})
	}
}

func TestValidator_NonStructInput(t *testing.T) {
	v := validation.New()

	err := v.Validate("not a struct")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrValidation)
}
