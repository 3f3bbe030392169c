package api

// API limits.
const (
	// MaxBodyBytes bounds request bodies. Loan pages with an embedded openbook
	// can be several megabytes.
	MaxBodyBytes = 16 << 20

	// MaxParts bounds the parts accepted in one markers request.
	MaxParts = 500
)

// Health statuses.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)
