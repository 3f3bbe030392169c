package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "run_1"})
	require.NoError(t, err)

	out := marshalToMap(t, result)
	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "run_1"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := marshalToMap(t, result)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "422", &APIError{
		status:  http.StatusUnprocessableEntity,
		Code:    string(domainerrors.CodeUnknownPart),
		Message: "unknown part",
		Details: map[string]string{"part": "x"},
	})
	require.NoError(t, err)

	out := marshalToMap(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "UNKNOWN_PART", out["code"])
	assert.Equal(t, "unknown part", out["error"])
	assert.Equal(t, map[string]any{"part": "x"}, out["details"])
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name       string
		status     int
		errs       []error
		wantStatus int
		wantCode   domainerrors.Code
	}{
		{
			name:       "domain error overrides status",
			status:     http.StatusInternalServerError,
			errs:       []error{domainerrors.MissingSpineDataf("part %s", "x")},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   domainerrors.CodeMissingSpineData,
		},
		{
			name:       "request validation",
			status:     http.StatusUnprocessableEntity,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   domainerrors.CodeValidation,
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   domainerrors.CodeNotFound,
		},
		{
			name:       "unexpected",
			status:     http.StatusBadGateway,
			wantStatus: http.StatusBadGateway,
			wantCode:   domainerrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := huma.NewError(tt.status, "message", tt.errs...)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, string(tt.wantCode), apiErr.Code)
		})
	}
}
