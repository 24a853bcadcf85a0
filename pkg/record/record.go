// Package record holds the per-dispatch-point registry kept inside one collect
// context: one table per axis plus the authoritative list of the constraint sets
// every implementation was registered under.
package record

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"flywheel/pkg/entity"
	"flywheel/pkg/overload"
)

// Identity names one dispatch point. Identities are minted once per declared point
// and compared by value.
type Identity struct {
	ID   uuid.UUID
	Name string
}

// NewIdentity mints a fresh identity.
func NewIdentity(name string) Identity {
	return Identity{ID: uuid.New(), Name: name}
}

func (i Identity) String() string {
	return i.Name + "#" + i.ID.String()[:8]
}

// Segment is one digested constraint of a registration.
type Segment struct {
	Name     string
	Overload overload.Overload
	Value    any
}

func (s Segment) equal(o Segment) bool {
	return s.Name == o.Name && s.Overload == o.Overload && s.Value == o.Value
}

// Signature is the full constraint set of one registration, sorted by axis name.
type Signature []Segment

// Equal compares signatures as sets.
func (s Signature) Equal(o Signature) bool {
	for _, seg := range s {
		if !o.contains(seg) {
			return false
		}
	}
	for _, seg := range o {
		if !s.contains(seg) {
			return false
		}
	}
	return true
}

func (s Signature) contains(seg Segment) bool {
	return slices.ContainsFunc(s, seg.equal)
}

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, seg := range s {
		parts[i] = fmt.Sprintf("%s=%v", seg.Name, seg.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Entry is a snapshot of one registration.
type Entry struct {
	Signature Signature
	Entity    *entity.Entity
	Seq       uint64
}

// Record is the registry of one dispatch point inside one collect context.
type Record struct {
	Point  Identity
	Scopes map[string]overload.Scope

	owners  map[string]overload.Overload
	entries []*Entry
	seq     uint64
	latest  map[*entity.Entity]uint64
}

// New creates an empty record for point.
func New(point Identity) *Record {
	return &Record{
		Point:  point,
		Scopes: make(map[string]overload.Scope),
		owners: make(map[string]overload.Overload),
		latest: make(map[*entity.Entity]uint64),
	}
}

// Lookup returns the entity registered under exactly sig.
func (r *Record) Lookup(sig Signature) (*entity.Entity, bool) {
	if e := r.find(sig); e != nil {
		return e.Entity, true
	}
	return nil, false
}

// Entries returns registrations in commit order.
func (r *Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Len is the number of registrations.
func (r *Record) Len() int {
	return len(r.entries)
}

// Seq is the sequence number of e's most recent registration, 0 if e is unknown.
// Later registrations have larger numbers.
func (r *Record) Seq(e *entity.Entity) uint64 {
	return r.latest[e]
}

// Signatures lists every constraint set e is registered under.
func (r *Record) Signatures(e *entity.Entity) []Signature {
	var out []Signature
	for _, en := range r.entries {
		if en.Entity == e {
			out = append(out, en.Signature)
		}
	}
	return out
}

// Holds reports whether e is still stored in any bucket the record references.
func (r *Record) Holds(e *entity.Entity) bool {
	for _, en := range r.entries {
		for _, seg := range en.Signature {
			if bucket, ok := r.Scopes[seg.Name].Access(seg.Value); ok && bucket.Has(e) {
				return true
			}
		}
	}
	return false
}

// Scope returns the table stored under name, or nil.
func (r *Record) Scope(name string) overload.Scope {
	return r.Scopes[name]
}

// Merge folds other's registrations into r in other's commit order. Entries with
// a signature r already holds replace r's entity.
func (r *Record) Merge(other *Record) error {
	if other == nil {
		return nil
	}
	for _, en := range other.entries {
		if err := r.checkOwners(en.Signature); err != nil {
			return err
		}
	}
	for _, en := range other.entries {
		r.commit(en.Signature, en.Entity)
	}
	return nil
}

func (r *Record) find(sig Signature) *Entry {
	for _, en := range r.entries {
		if en.Signature.Equal(sig) {
			return en
		}
	}
	return nil
}

func (r *Record) checkOwners(sig Signature) error {
	for _, seg := range sig {
		if owner, ok := r.owners[seg.Name]; ok && owner != seg.Overload {
			return fmt.Errorf("table %q of %s already belongs to another axis", seg.Name, r.Point.Name)
		}
	}
	return nil
}

func (r *Record) scope(name string, ov overload.Overload) overload.Scope {
	sc, ok := r.Scopes[name]
	if !ok {
		sc = ov.NewScope()
		r.Scopes[name] = sc
		r.owners[name] = ov
	}
	return sc
}

// commit stores e under sig, evicting whatever was registered under an equal
// signature first. It returns the evicted entity, if any.
func (r *Record) commit(sig Signature, e *entity.Entity) *entity.Entity {
	var replaced *entity.Entity
	if old := r.find(sig); old != nil {
		r.entries = slices.DeleteFunc(r.entries, func(en *Entry) bool { return en == old })
		if old.Entity != e {
			replaced = old.Entity
			r.evict(old)
		}
	}

	for _, seg := range sig {
		r.scope(seg.Name, seg.Overload).Collect(seg.Value).Add(e)
	}
	r.seq++
	r.entries = append(r.entries, &Entry{Signature: sig, Entity: e, Seq: r.seq})
	r.latest[e] = r.seq
	return replaced
}

// evict removes old.Entity from the buckets of old.Signature, keeping buckets the
// entity still needs for its other registrations.
func (r *Record) evict(old *Entry) {
	remaining := r.Signatures(old.Entity)
	for _, seg := range old.Signature {
		shared := false
		for _, sig := range remaining {
			if sig.contains(seg) {
				shared = true
				break
			}
		}
		if shared {
			continue
		}
		if bucket, ok := r.Scopes[seg.Name].Access(seg.Value); ok {
			bucket.Remove(old.Entity)
		}
	}
	if len(remaining) == 0 {
		delete(r.latest, old.Entity)
	}
}
