package ports

import "context"

// HealthChecker is a dependency reported by the sandbox /health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
