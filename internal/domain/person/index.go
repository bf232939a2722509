package person

// Index is an id → record view over a snapshot.  Engines build it once per
// pass; it never outlives the snapshot it was built from.
type Index map[string]*Person

// BuildIndex indexes a snapshot by ID.  Later occurrences of a duplicated ID
// win, matching upsert semantics of the stores.
func BuildIndex(snapshot []*Person) Index {
	idx := make(Index, len(snapshot))
	for _, p := range snapshot {
		idx[p.ID] = p
	}
	return idx
}

// Get returns the record for id, or nil when absent or id is empty.
func (idx Index) Get(id string) *Person {
	if id == "" {
		return nil
	}
	return idx[id]
}

// Has reports whether id resolves to a record.
func (idx Index) Has(id string) bool {
	return idx.Get(id) != nil
}
