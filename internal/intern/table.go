// Package intern maps strings to stable 64-bit identifiers and back.
package intern

import "github.com/hupe1980/hast/internal/hash"

// Table is an append-only interning table. It is not safe for concurrent
// use; callers serialize access.
type Table struct {
	values map[uint64]string
}

// New returns an empty table.
func New() *Table {
	return &Table{values: make(map[uint64]string)}
}

// Intern returns the identifier of value, storing value if its identifier is
// not present yet. collided reports that a different string already owns the
// identifier; the stored string is kept.
func (t *Table) Intern(value string) (id uint64, collided bool) {
	id = hash.ID(value)
	if prev, ok := t.values[id]; ok {
		return id, prev != value
	}
	t.values[id] = value
	return id, false
}

// Resolve returns the string stored under id.
func (t *Table) Resolve(id uint64) (string, bool) {
	v, ok := t.values[id]
	return v, ok
}

// Contains reports whether id has been interned.
func (t *Table) Contains(id uint64) bool {
	_, ok := t.values[id]
	return ok
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	return len(t.values)
}
