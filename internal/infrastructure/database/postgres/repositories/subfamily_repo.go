package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

const pgUniqueViolation = "23505"

// SubfamilyRepository implements subfamily.Store over the subfamilies table.
// The couple_key unique index enforces detection idempotence at the storage
// boundary.
type SubfamilyRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewSubfamilyRepository constructs a ready-to-use repository.
func NewSubfamilyRepository(pool *pgxpool.Pool, log logging.Logger) *SubfamilyRepository {
	return &SubfamilyRepository{pool: pool, log: log.Named("subfamily-repo")}
}

// ListExisting returns all confirmed subfamilies ordered by couple key.
func (r *SubfamilyRepository) ListExisting(ctx context.Context) ([]*subfamily.Subfamily, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM subfamilies ORDER BY couple_key`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query subfamilies")
	}
	defer rows.Close()

	var out []*subfamily.Subfamily
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan subfamily row")
		}
		g := &subfamily.Subfamily{}
		if err := json.Unmarshal(doc, g); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode subfamily document")
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate subfamily rows")
	}
	return out, nil
}

// Create inserts one confirmed subfamily.  A duplicate couple key fails with
// SubfamilyExists so a twice-accepted suggestion materializes only once.
func (r *SubfamilyRepository) Create(ctx context.Context, g *subfamily.Subfamily) error {
	if err := g.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode subfamily document")
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO subfamilies (id, couple_key, doc, created_at)
		VALUES ($1, $2, $3, $4)`,
		g.ID, g.CoupleKey, doc, g.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return errors.New(errors.ErrCodeSubfamilyExists, "subfamily already exists").
				WithDetail("couple_key=" + g.CoupleKey).WithCause(err)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert subfamily")
	}
	return nil
}
