package trackingstat

import "context"

// Repository persists TrackingStat rows. Upsert fully replaces the row for
// the given key, matching the settlement engine's full-recompute model.
type Repository interface {
	Upsert(ctx context.Context, s TrackingStat) error
	ListAll(ctx context.Context) ([]TrackingStat, error)
}
