package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Uptime     string                     `json:"uptime" doc:"Time since the server started"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"timeline":  s.checkTimelineService(),
		"ratelimit": s.checkRateLimiter(),
	}

	overall := statusHealthy
	for _, c := range components {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Uptime:     time.Since(s.started).Round(time.Second).String(),
			Components: components,
		},
	}, nil
}

func (s *Server) checkTimelineService() ComponentHealth {
	if s.timeline == nil {
		return ComponentHealth{Status: statusUnhealthy, Message: "timeline service not configured"}
	}
	return ComponentHealth{Status: statusHealthy}
}

func (s *Server) checkRateLimiter() ComponentHealth {
	if s.limiter == nil {
		return ComponentHealth{Status: statusHealthy, Message: "disabled"}
	}
	return ComponentHealth{Status: statusHealthy, Message: formatClientCount(s.limiter.Len())}
}

func formatClientCount(n int) string {
	if n == 1 {
		return "1 tracked client"
	}
	return strconv.Itoa(n) + " tracked clients"
}
