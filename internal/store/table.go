package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record exists for the given id
var ErrNotFound = errors.New("record not found")

// Record is anything the store can stamp with an id and creation time.
// Clone returns an independent copy; the table hands out copies so that
// background routines mutating a record through Update never share memory
// with readers holding an earlier result.
type Record[T any] interface {
	SetMeta(id string, createdAt time.Time)
	Clone() T
}

// Table is an in-memory table for one record kind. Records live for the
// process lifetime only. Iteration follows insertion order, so listings can
// rely on creation order without an index. All accessors return copies;
// the stored record is only ever touched under the table lock.
type Table[T Record[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	now   func() time.Time
}

// NewTable creates an empty table
func NewTable[T Record[T]]() *Table[T] {
	return &Table[T]{
		items: make(map[string]T),
		now:   time.Now,
	}
}

// Create stamps the record with a fresh id and creation timestamp and
// inserts it. A copy of the stored record is returned.
func (t *Table[T]) Create(rec T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.New().String()
	rec.SetMeta(id, t.now())

	t.items[id] = rec
	t.order = append(t.order, id)
	return rec.Clone()
}

// Get retrieves a copy of a record by id
func (t *Table[T]) Get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return rec.Clone(), nil
}

// List returns copies of all records matching filter, in insertion order.
// A nil filter matches everything. This is a linear scan; acceptable at
// demo scale with no persistence.
func (t *Table[T]) List(filter func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []T
	for _, id := range t.order {
		rec := t.items[id]
		if filter == nil || filter(rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Update applies mutate to the stored record under the table lock and
// returns a copy of the result. ErrNotFound if the id does not exist; no
// record is ever created here.
func (t *Table[T]) Update(id string, mutate func(T)) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	mutate(rec)
	return rec.Clone(), nil
}

// Delete removes a record and reports whether it existed
func (t *Table[T]) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored records
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
