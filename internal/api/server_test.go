package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-timeline/internal/config"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/probe"
	"github.com/listenupapp/listenup-timeline/internal/service"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// testEnvelope mirrors the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int             `json:"v"`
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func setupTestServer(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()

	prober := probe.Func(func(context.Context, string) (time.Duration, error) {
		return 0, probe.ErrNoDuration
	})
	svc := service.NewTimelineService(prober, logger.Discard(), service.TimelineConfig{
		SkipPartsWithoutMarkers: true,
		BaseURL:                 "https://fallback.example/",
		MaxConcurrent:           2,
	})

	s := NewServer(svc, cfg, logger.Discard())
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
	}
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope), string(body))
	return envelope
}
