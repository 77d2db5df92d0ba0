package rawpayload

import "context"

// Repository persists raw payload audit rows. Inserts are fire-and-forget
// from the caller's perspective; a failure here must never fail the ingest
// or results call it is auditing.
type Repository interface {
	Insert(ctx context.Context, p Payload) error
}
