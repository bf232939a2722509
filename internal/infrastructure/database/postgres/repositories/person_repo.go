// Package repositories provides the PostgreSQL-backed implementations of the
// domain store interfaces.  Records are persisted as JSONB documents keyed by
// id; the engine reads whole snapshots, so no per-field columns are needed
// beyond the keys it filters on.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// PersonRepository implements person.GraphStore over the persons table.
type PersonRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewPersonRepository constructs a ready-to-use repository.
func NewPersonRepository(pool *pgxpool.Pool, log logging.Logger) *PersonRepository {
	return &PersonRepository{pool: pool, log: log.Named("person-repo")}
}

// GetAll loads the full graph snapshot ordered by id.
func (r *PersonRepository) GetAll(ctx context.Context) ([]*person.Person, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM persons ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query persons")
	}
	defer rows.Close()

	var out []*person.Person
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan person row")
		}
		p := &person.Person{}
		if err := json.Unmarshal(doc, p); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode person document")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate person rows")
	}
	return out, nil
}

// Get loads one record by id.
func (r *PersonRepository) Get(ctx context.Context, id string) (*person.Person, bool, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM persons WHERE id = $1`, id).Scan(&doc)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query person")
	}
	p := &person.Person{}
	if err := json.Unmarshal(doc, p); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode person document")
	}
	return p, true, nil
}

// Put upserts keyed by id.
func (r *PersonRepository) Put(ctx context.Context, p *person.Person) error {
	if p == nil || p.ID == "" {
		return errors.InvalidParam("person record requires an id")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode person document")
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO persons (id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		p.ID, doc, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert person")
	}
	return nil
}

// Delete removes one record.  Deleting a missing id is not an error.
func (r *PersonRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete person")
	}
	if tag.RowsAffected() == 0 {
		r.log.Debug("delete of absent person", logging.String("person_id", id))
	}
	return nil
}
