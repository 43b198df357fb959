package ports

import (
	"context"
	"waypoint-route-service/internal/domain"
)

// Contract for persisting waypoint statuses so progress can resume across sessions.
type StatusStore interface {
	// Return every stored status for a session. Unknown sessions yield an empty map.
	Load(ctx context.Context, session string) (map[string]domain.Status, error)
	// Upsert the given statuses; statuses not mentioned are left untouched.
	Save(ctx context.Context, session string, statuses map[string]domain.Status) error
}
