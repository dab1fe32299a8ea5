package health

import (
	"context"
	"database/sql"
	"time"
)

// poolPressureThreshold degrades the check when most of the connection
// pool is in use.
const poolPressureThreshold = 0.8

// DatabaseChecker verifies Postgres connectivity and pool headroom.
type DatabaseChecker struct {
	db      *sql.DB
	timeout time.Duration
}

func NewDatabaseChecker(db *sql.DB, timeout time.Duration) *DatabaseChecker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &DatabaseChecker{db: db, timeout: timeout}
}

func (c *DatabaseChecker) Name() string { return "database" }

// Check pings the database and reports pool utilization. A pool running
// near its cap is degraded before queries start queueing on it.
func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return NewUnhealthyResult("database", err).WithDuration(time.Since(start))
	}

	stats := c.db.Stats()
	result := NewHealthyResult("database", "connected").
		WithDuration(time.Since(start)).
		WithMetadata("open_connections", stats.OpenConnections).
		WithMetadata("in_use", stats.InUse).
		WithMetadata("idle", stats.Idle)

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections)
		result = result.WithMetadata("pool_utilization", utilization)
		if utilization > poolPressureThreshold {
			result.Status = StatusDegraded
			result.Message = "connection pool near capacity"
		}
	}
	return result
}
