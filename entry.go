package directory

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Attribute is a named, ordered sequence of string values.
type Attribute struct {
	Name   string
	Values []string
}

// Entry is an immutable directory record: a distinguished name plus an
// ordered sequence of attributes. Attribute lookup is case-insensitive, as
// LDAP attribute names are.
type Entry struct {
	dn    string
	attrs []Attribute
	index map[string]int // lowercased name -> attrs position
}

// NewEntry constructs an Entry from a DN and attributes, copying both so the
// entry cannot be mutated through the inputs afterwards.
func NewEntry(dn string, attrs []Attribute) *Entry {
	e := &Entry{
		dn:    dn,
		attrs: make([]Attribute, len(attrs)),
		index: make(map[string]int, len(attrs)),
	}

	for i, attr := range attrs {
		e.attrs[i] = Attribute{
			Name:   attr.Name,
			Values: append([]string(nil), attr.Values...),
		}
		key := strings.ToLower(attr.Name)
		if _, dup := e.index[key]; !dup {
			e.index[key] = i
		}
	}

	return e
}

// HydrateEntry converts a raw go-ldap entry into an Entry, preserving
// attribute arrival order. It is the default HydrateFunc.
func HydrateEntry(raw *ldap.Entry) (*Entry, error) {
	if raw == nil {
		return nil, fmt.Errorf("cannot hydrate nil entry")
	}

	attrs := make([]Attribute, 0, len(raw.Attributes))
	for _, attr := range raw.Attributes {
		attrs = append(attrs, Attribute{Name: attr.Name, Values: attr.Values})
	}

	return NewEntry(raw.DN, attrs), nil
}

// DN returns the entry's distinguished name.
func (e *Entry) DN() string {
	return e.dn
}

// AttributeNames returns attribute names in arrival order.
func (e *Entry) AttributeNames() []string {
	names := make([]string, len(e.attrs))
	for i, attr := range e.attrs {
		names[i] = attr.Name
	}
	return names
}

// Attributes returns a copy of the entry's attributes in arrival order.
func (e *Entry) Attributes() []Attribute {
	attrs := make([]Attribute, len(e.attrs))
	for i, attr := range e.attrs {
		attrs[i] = Attribute{
			Name:   attr.Name,
			Values: append([]string(nil), attr.Values...),
		}
	}
	return attrs
}

// Has reports whether the entry carries the named attribute.
func (e *Entry) Has(name string) bool {
	_, ok := e.index[strings.ToLower(name)]
	return ok
}

// Values returns a copy of the named attribute's values in arrival order,
// or nil when the attribute is absent.
func (e *Entry) Values(name string) []string {
	i, ok := e.index[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return append([]string(nil), e.attrs[i].Values...)
}

// Value returns the first value of the named attribute, or "" when absent.
func (e *Entry) Value(name string) string {
	i, ok := e.index[strings.ToLower(name)]
	if !ok || len(e.attrs[i].Values) == 0 {
		return ""
	}
	return e.attrs[i].Values[0]
}

// HydrateFunc converts a raw record into a caller-defined entry
// representation. Supplied at cursor construction, it lets callers substitute
// domain-specific types without altering cursor logic.
type HydrateFunc[E any] func(raw *ldap.Entry) (E, error)
