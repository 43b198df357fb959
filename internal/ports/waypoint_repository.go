package ports

import (
	"context"
	"waypoint-route-service/internal/domain"
)

// Port: a boundary for retrieving raw waypoint rows stored for a session.
type WaypointRepository interface {
	// Return the session's rows in their original input order.
	ListRows(ctx context.Context, session string) (domain.Table, error)
	// Replace all rows stored for a session.
	ReplaceRows(ctx context.Context, session string, table domain.Table) error
}
