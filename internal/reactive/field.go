// Package reactive provides the single-value change-notifying cells
// the form model is built from. A field's set of instances is only
// known after schema discovery, so fields live in a Bag keyed by
// their camel-case property key rather than as struct members.
package reactive

import "sort"

// TypeTag classifies a field's canonical value. It is fixed at
// construction and never changes for the life of the field.
type TypeTag string

const (
	TagText        TypeTag = "Text"
	TagNote        TypeTag = "Note"
	TagChoice      TypeTag = "Choice"
	TagMultiChoice TypeTag = "MultiChoice"
	TagBoolean     TypeTag = "Boolean"
	TagNumber      TypeTag = "Number"
	TagCurrency    TypeTag = "Currency"
	TagDateTime    TypeTag = "DateTime"
	TagUser        TypeTag = "User"
	TagUserMulti   TypeTag = "UserMulti"
)

// IsMulti reports whether values of this tag are sequences.
func (t TypeTag) IsMulti() bool {
	return t == TagMultiChoice || t == TagUserMulti
}

// Meta carries the schema-derived description of a field. WireName
// uniquely identifies the field in the persistence service's record
// shape; FieldKey is the normalized property key used in the Bag.
type Meta struct {
	FieldKey     string
	DisplayName  string
	WireName     string
	Format       string
	Required     bool
	ReadOnly     bool
	Description  string
	Tag          TypeTag
	Choices      []string
	FillIn       bool
	IsMultiValue bool
}

// Subscriber observes writes to a field. The new value is the
// canonical value, not a display string.
type Subscriber func(value any)

// Field is a mutable single-value cell. Writes notify subscribers in
// registration order. Multi-value fields hold []string and must be
// written through SetItems so structural mutations notify even when
// the slice header is unchanged.
type Field struct {
	meta  Meta
	value any
	subs  []Subscriber
}

// New creates a field seeded with an initial canonical value.
func New(meta Meta, initial any) *Field {
	return &Field{meta: meta, value: initial}
}

func (f *Field) Meta() Meta { return f.meta }

func (f *Field) Value() any { return f.value }

// Set writes the canonical value and notifies all subscribers,
// regardless of whether the value compares equal to the old one:
// sequences are compared by identity in this layer, so a same-header
// write after an in-place mutation must still fan out.
func (f *Field) Set(value any) {
	f.value = value
	for _, s := range f.subs {
		s(value)
	}
}

// Subscribe registers an observer for subsequent writes. It is not
// invoked with the current value.
func (f *Field) Subscribe(s Subscriber) {
	f.subs = append(f.subs, s)
}

// String returns the value as a string, or "" when nil or non-string.
func (f *Field) String() string {
	s, _ := f.value.(string)
	return s
}

// Items returns the value as a sequence, or nil.
func (f *Field) Items() []string {
	items, _ := f.value.([]string)
	return items
}

// SetItems replaces the sequence value with a fresh copy and
// notifies, so callers may keep mutating their slice afterwards.
func (f *Field) SetItems(items []string) {
	copied := make([]string, len(items))
	copy(copied, items)
	f.Set(copied)
}

// Bag is the dynamic property map of a form: one field per discovered
// schema entry plus the fixed framework fields. Keys iterate in
// sorted order for reproducible serialization.
type Bag struct {
	fields map[string]*Field
}

func NewBag() *Bag {
	return &Bag{fields: map[string]*Field{}}
}

// Add registers a field under its FieldKey. The first registration
// wins; a second field normalizing to the same key is rejected.
func (b *Bag) Add(f *Field) bool {
	key := f.Meta().FieldKey
	if _, exists := b.fields[key]; exists {
		return false
	}
	b.fields[key] = f
	return true
}

func (b *Bag) Get(key string) (*Field, bool) {
	f, ok := b.fields[key]
	return f, ok
}

// ByWireName finds the field whose schema wire name matches.
func (b *Bag) ByWireName(wireName string) (*Field, bool) {
	for _, f := range b.fields {
		if f.Meta().WireName == wireName {
			return f, true
		}
	}
	return nil, false
}

// Keys returns all field keys sorted alphabetically.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.fields))
	for k := range b.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Bag) Len() int { return len(b.fields) }
