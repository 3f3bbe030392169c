package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-timeline/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the shared envelope.
// Errors become failed envelopes, 2xx bodies become the envelope's data.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return response.Failure(apiErr.Code, apiErr.Message, apiErr.Details), nil
	}
	if strings.HasPrefix(status, "2") {
		return response.Success(v), nil
	}
	return v, nil
}
