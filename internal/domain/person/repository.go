package person

import "context"

// GraphStore is the authoritative store of Person records.  Put has upsert
// semantics keyed by ID.  An error from any method denotes either a definite
// failure or an unknown state; retries happen at the job level, never inside a
// single engine pass.
type GraphStore interface {
	GetAll(ctx context.Context) ([]*Person, error)
	Get(ctx context.Context, id string) (*Person, bool, error)
	Put(ctx context.Context, p *Person) error
	Delete(ctx context.Context, id string) error
}
