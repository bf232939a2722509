package subfamily

import "context"

// Store persists confirmed subfamilies.  Create must reject a duplicate
// CoupleKey with ErrCodeSubfamilyExists so that a suggestion accepted twice
// (double-tap, retried request) materializes only once.
type Store interface {
	ListExisting(ctx context.Context) ([]*Subfamily, error)
	Create(ctx context.Context, s *Subfamily) error
}
