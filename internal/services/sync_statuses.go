package services

import (
	"context"
	"errors"
	"fmt"

	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/ports"
)

// SyncStatuses copies stored statuses onto the route's waypoints and records
// Unvisited for waypoints the session has not seen before. Existing statuses
// are never overwritten, which is what lets a session resume.
func SyncStatuses(ctx context.Context, store ports.StatusStore, session string, route *domain.Route) error {
	if store == nil {
		return errors.New("sync statuses: store is nil")
	}
	if session == "" {
		return errors.New("sync statuses: session must be non-empty")
	}

	stored, err := store.Load(ctx, session)
	if err != nil {
		return fmt.Errorf("sync statuses: load session %q: %w", session, err)
	}

	fresh := make(map[string]domain.Status)
	for i := range route.Waypoints {
		w := &route.Waypoints[i]
		if s, ok := stored[w.Name]; ok {
			w.Status = s
			continue
		}
		w.Status = domain.StatusUnvisited
		fresh[w.Name] = domain.StatusUnvisited
	}

	if err := store.Save(ctx, session, fresh); err != nil {
		return fmt.Errorf("sync statuses: save session %q: %w", session, err)
	}
	return nil
}
