// Package repositories provides the neo4j-backed GraphStore.  Person records
// are nodes carrying the full document plus projected relationship edges, so
// kinship-style queries can run natively in Cypher alongside the engine.
package repositories

import (
	"context"
	"encoding/json"

	driver "github.com/minhaarvore/arvore/internal/infrastructure/database/neo4j"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// PersonGraphRepository implements person.GraphStore over Person nodes with
// FATHER_OF, MOTHER_OF, and SPOUSE_OF relationships.
type PersonGraphRepository struct {
	exec driver.Executor
	log  logging.Logger
}

// NewPersonGraphRepository constructs a ready-to-use repository.
func NewPersonGraphRepository(exec driver.Executor, log logging.Logger) *PersonGraphRepository {
	return &PersonGraphRepository{exec: exec, log: log.Named("person-graph-repo")}
}

// GetAll loads the full snapshot ordered by id.
func (r *PersonGraphRepository) GetAll(ctx context.Context) ([]*person.Person, error) {
	res, err := r.exec.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, `MATCH (p:Person) RETURN p.doc AS doc ORDER BY p.id`, nil)
		if err != nil {
			return nil, err
		}
		var out []*person.Person
		for result.Next(ctx) {
			p, err := decodeDoc(result.Record().Values[0])
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, result.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load person snapshot")
	}
	persons, _ := res.([]*person.Person)
	return persons, nil
}

// Get loads one record by id.
func (r *PersonGraphRepository) Get(ctx context.Context, id string) (*person.Person, bool, error) {
	res, err := r.exec.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		result, err := tx.Run(ctx, `MATCH (p:Person {id: $id}) RETURN p.doc AS doc`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return nil, result.Err()
		}
		return decodeDoc(result.Record().Values[0])
	})
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load person")
	}
	p, ok := res.(*person.Person)
	if !ok || p == nil {
		return nil, false, nil
	}
	return p, true, nil
}

// Put upserts the node and rebuilds its outgoing relationship projection.
func (r *PersonGraphRepository) Put(ctx context.Context, p *person.Person) error {
	if p == nil || p.ID == "" {
		return errors.InvalidParam("person record requires an id")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode person document")
	}

	// The doc property is the source of truth; the typed edges are a
	// projection of this record's own parent and spouse fields, rebuilt on
	// every write.
	_, err = r.exec.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (p:Person {id: $id})
			SET p.doc = $doc, p.name = $name
			WITH p
			OPTIONAL MATCH (p)<-[in:FATHER_OF|MOTHER_OF]-()
			DELETE in
			WITH DISTINCT p
			OPTIONAL MATCH (p)-[out:SPOUSE_OF]->()
			DELETE out`,
			map[string]any{"id": p.ID, "doc": string(doc), "name": p.Name}); err != nil {
			return nil, err
		}

		if p.FatherID != "" {
			if _, err := tx.Run(ctx, `
				MATCH (p:Person {id: $id})
				MERGE (f:Person {id: $father})
				MERGE (f)-[:FATHER_OF]->(p)`,
				map[string]any{"id": p.ID, "father": p.FatherID}); err != nil {
				return nil, err
			}
		}
		if p.MotherID != "" {
			if _, err := tx.Run(ctx, `
				MATCH (p:Person {id: $id})
				MERGE (m:Person {id: $mother})
				MERGE (m)-[:MOTHER_OF]->(p)`,
				map[string]any{"id": p.ID, "mother": p.MotherID}); err != nil {
				return nil, err
			}
		}
		if p.SpouseID != "" {
			if _, err := tx.Run(ctx, `
				MATCH (p:Person {id: $id})
				MERGE (s:Person {id: $spouse})
				MERGE (p)-[:SPOUSE_OF]->(s)`,
				map[string]any{"id": p.ID, "spouse": p.SpouseID}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert person node")
	}
	return nil
}

// Delete detaches and removes the node.
func (r *PersonGraphRepository) Delete(ctx context.Context, id string) error {
	_, err := r.exec.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		return tx.Run(ctx, `MATCH (p:Person {id: $id}) DETACH DELETE p`, map[string]any{"id": id})
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete person node")
	}
	return nil
}

func decodeDoc(value any) (*person.Person, error) {
	doc, ok := value.(string)
	if !ok {
		return nil, errors.New(errors.ErrCodeSerialization, "person node carries no document")
	}
	p := &person.Person{}
	if err := json.Unmarshal([]byte(doc), p); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode person document")
	}
	return p, nil
}
