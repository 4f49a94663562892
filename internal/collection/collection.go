// Package collection is a hierarchical store of mergeable objects addressed
// by (path, name).
//
// Objects are created lazily through a Factory the first time a key is
// resolved; afterwards the key maps to the same object, with the same kind,
// for the lifetime of the collection. Collections are owned by exactly one
// goroutine. Merge moves the content of one collection into another and is
// associative and commutative, with the empty collection as identity.
package collection

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
)

// Factory creates the object registered under name. It returns an error
// wrapping ErrUnknownObject for names it does not know.
type Factory func(name string) (Object, error)

// Entry is one key and its object.
type Entry struct {
	Key    ir.Key
	Object Object
}

type slot struct {
	key ir.Key
	obj Object
}

// Collection maps keys to objects. Not safe for concurrent use.
type Collection struct {
	objects map[string]slot
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{objects: make(map[string]slot)}
}

// Len returns the number of objects.
func (c *Collection) Len() int {
	return len(c.objects)
}

// Resolve returns the object at (path, name), creating it with factory if
// absent. created reports whether a new object was inserted. On error
// nothing is inserted.
func (c *Collection) Resolve(path ir.Path, name string, factory Factory) (obj Object, created bool, err error) {
	key, err := ir.NewKey(path, name)
	if err != nil {
		return Object{}, false, err
	}
	id := key.String()
	if s, ok := c.objects[id]; ok {
		return s.obj, false, nil
	}

	if factory == nil {
		return Object{}, false, newError(ErrCodeUnknownObject, id, "no factory for "+name)
	}
	obj, err = factory(key.Name)
	if err != nil {
		if errors.Is(err, ErrUnknownObject) {
			return Object{}, false, newError(ErrCodeUnknownObject, id, err.Error())
		}
		return Object{}, false, fmt.Errorf("create %s: %w", id, err)
	}
	if !obj.Valid() {
		return Object{}, false, fmt.Errorf("create %s: factory returned an invalid object", id)
	}
	c.objects[id] = slot{key: key, obj: obj}
	return obj, true, nil
}

// Get returns the object at key.
func (c *Collection) Get(key ir.Key) (Object, bool) {
	s, ok := c.objects[key.String()]
	return s.obj, ok
}

// Histogram returns the histogram at (path, name), or false if absent or
// of another kind.
func (c *Collection) Histogram(path ir.Path, name string) (*hist.Histogram, bool) {
	obj, ok := c.Get(ir.Key{Path: path, Name: name})
	if !ok || obj.Kind() != KindHistogram {
		return nil, false
	}
	return obj.Histogram(), true
}

// Counter returns the counter at (path, name), or false if absent or of
// another kind.
func (c *Collection) Counter(path ir.Path, name string) (*Counter, bool) {
	obj, ok := c.Get(ir.Key{Path: path, Name: name})
	if !ok || obj.Kind() != KindCounter {
		return nil, false
	}
	return obj.Counter(), true
}

// Add inserts obj at key, merging it into an existing object. Used to
// rebuild collections from storage.
func (c *Collection) Add(key ir.Key, obj Object) error {
	if !obj.Valid() {
		return fmt.Errorf("add %s: invalid object", key)
	}
	id := key.String()
	if s, ok := c.objects[id]; ok {
		return s.obj.merge(id, obj)
	}
	c.objects[id] = slot{key: key, obj: obj}
	return nil
}

// Merge moves other's objects into c. Objects under keys present in both
// are summed; the rest are adopted without copying. A key whose objects
// cannot be combined keeps c's object unchanged and contributes an Error
// to the joined result, while the remaining keys are still merged.
//
// other is empty afterwards and may be reused.
func (c *Collection) Merge(other *Collection) error {
	if other == nil || other == c {
		return nil
	}
	var errs []error
	for _, id := range other.sortedIDs() {
		src := other.objects[id]
		dst, ok := c.objects[id]
		if !ok {
			c.objects[id] = src
			continue
		}
		if err := dst.obj.merge(id, src.obj); err != nil {
			errs = append(errs, err)
		}
	}
	clear(other.objects)
	return errors.Join(errs...)
}

// Fold merges collections left to right into a new collection. The inputs
// are consumed.
func Fold(colls ...*Collection) (*Collection, error) {
	out := New()
	var errs []error
	for _, c := range colls {
		if err := out.Merge(c); err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

// TreeReduce merges collections pairwise, level by level. It produces the
// same content as Fold. The inputs are consumed.
func TreeReduce(colls ...*Collection) (*Collection, error) {
	level := make([]*Collection, 0, len(colls))
	for _, c := range colls {
		if c != nil {
			level = append(level, c)
		}
	}
	if len(level) == 0 {
		return New(), nil
	}

	var errs []error
	for len(level) > 1 {
		next := make([]*Collection, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			if err := level[i].Merge(level[i+1]); err != nil {
				errs = append(errs, err)
			}
			next = append(next, level[i])
		}
		level = next
	}
	return level[0], errors.Join(errs...)
}

// Entries returns every object ordered by key.
func (c *Collection) Entries() []Entry {
	out := make([]Entry, 0, len(c.objects))
	for _, s := range c.objects {
		out = append(out, Entry{Key: s.key, Object: s.obj})
	}
	slices.SortFunc(out, func(a, b Entry) int { return a.Key.Compare(b.Key) })
	return out
}

// Paths returns the distinct paths, sorted.
func (c *Collection) Paths() []ir.Path {
	seen := make(map[string]ir.Path)
	for _, s := range c.objects {
		seen[s.key.Path.String()] = s.key.Path
	}
	out := slices.Collect(maps.Values(seen))
	slices.SortFunc(out, func(a, b ir.Path) int { return slices.Compare(a, b) })
	return out
}

// Keys returns the distinct path segments at level, sorted. Level 0 lists
// the trigger labels, level 1 the cut levels and so on.
func (c *Collection) Keys(level int) []string {
	seen := make(map[string]struct{})
	for _, s := range c.objects {
		if seg := s.key.Path.Segment(level); seg != "" {
			seen[seg] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// EstimateSize approximates the memory held by the collection in bytes.
func (c *Collection) EstimateSize() int64 {
	var size int64 = 48
	for id, s := range c.objects {
		size += int64(len(id))*2 + 64 + s.obj.estimateSize()
	}
	return size
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := &Collection{objects: make(map[string]slot, len(c.objects))}
	for id, s := range c.objects {
		out.objects[id] = slot{key: s.key, obj: s.obj.clone()}
	}
	return out
}

// Equal reports whether both collections hold equal objects under the same
// keys.
func (c *Collection) Equal(other *Collection) bool {
	if other == nil || len(c.objects) != len(other.objects) {
		return false
	}
	for id, s := range c.objects {
		o, ok := other.objects[id]
		if !ok || !s.obj.equal(o.obj) {
			return false
		}
	}
	return true
}

// Snapshot returns the canonical form of the collection, keyed by the
// rendered object key.
func (c *Collection) Snapshot() ir.IRObject {
	obj := make(ir.IRObject, len(c.objects))
	for id, s := range c.objects {
		obj[id] = s.obj.snapshot()
	}
	return obj
}

// Digest returns a content hash of the collection. Two aggregates with the
// same digest hold the same objects and bin contents.
func (c *Collection) Digest() (string, error) {
	return ir.Digest(ir.DomainCollection, c.Snapshot())
}

func (c *Collection) sortedIDs() []string {
	return slices.Sorted(maps.Keys(c.objects))
}
