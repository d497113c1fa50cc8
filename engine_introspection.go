package goIdentity

import (
	"context"
	"time"
)

// Health pings the session cache and the association store. Latency covers
// both pings.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.cache == nil || e.associations == nil {
		return HealthStatus{}
	}

	start := time.Now()
	status := HealthStatus{CacheOK: true, AssociationOK: true}

	if err := e.cache.Ping(ctx); err != nil {
		status.CacheOK = false
		status.CacheError = err.Error()
	}
	if err := e.associations.Ping(ctx); err != nil {
		status.AssociationOK = false
		status.AssociationErr = err.Error()
	}

	status.Latency = time.Since(start)
	if !status.Healthy() {
		e.logger.Warn("backend health check failed", "cache_error", status.CacheError, "association_error", status.AssociationErr)
	}
	return status
}
