package directory

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawEntry(dn string, attrs ...*ldap.EntryAttribute) *ldap.Entry {
	return &ldap.Entry{DN: dn, Attributes: attrs}
}

func TestHydrateEntry(t *testing.T) {
	raw := rawEntry("cn=alice,ou=people,dc=example,dc=com",
		&ldap.EntryAttribute{Name: "cn", Values: []string{"alice"}},
		&ldap.EntryAttribute{Name: "mail", Values: []string{"alice@example.com", "a@example.com"}},
		&ldap.EntryAttribute{Name: "objectClass", Values: []string{"person", "top"}},
	)

	entry, err := HydrateEntry(raw)
	require.NoError(t, err)

	assert.Equal(t, "cn=alice,ou=people,dc=example,dc=com", entry.DN())
	assert.Equal(t, []string{"cn", "mail", "objectClass"}, entry.AttributeNames())
	assert.Equal(t, []string{"alice@example.com", "a@example.com"}, entry.Values("mail"))
	assert.Equal(t, "person", entry.Value("objectClass"))
	assert.True(t, entry.Has("cn"))
	assert.False(t, entry.Has("sn"))
}

func TestHydrateEntryNil(t *testing.T) {
	_, err := HydrateEntry(nil)
	assert.Error(t, err)
}

func TestEntryCaseInsensitiveLookup(t *testing.T) {
	entry := NewEntry("cn=x", []Attribute{{Name: "objectClass", Values: []string{"person"}}})

	assert.True(t, entry.Has("OBJECTCLASS"))
	assert.Equal(t, "person", entry.Value("objectclass"))
	assert.Equal(t, []string{"person"}, entry.Values("ObjectClass"))
}

func TestEntryAbsentAttribute(t *testing.T) {
	entry := NewEntry("cn=x", nil)

	assert.Nil(t, entry.Values("mail"))
	assert.Equal(t, "", entry.Value("mail"))
	assert.Empty(t, entry.AttributeNames())
}

func TestEntryImmutability(t *testing.T) {
	values := []string{"one", "two"}
	entry := NewEntry("cn=x", []Attribute{{Name: "member", Values: values}})

	// Mutating the input after construction must not leak through.
	values[0] = "corrupted"
	assert.Equal(t, []string{"one", "two"}, entry.Values("member"))

	// Mutating an accessor's return value must not alter the entry.
	got := entry.Values("member")
	got[1] = "corrupted"
	assert.Equal(t, []string{"one", "two"}, entry.Values("member"))

	attrs := entry.Attributes()
	require.Len(t, attrs, 1)
	attrs[0].Values[0] = "corrupted"
	assert.Equal(t, "one", entry.Value("member"))
}

func TestEntryDuplicateAttributeKeepsFirst(t *testing.T) {
	entry := NewEntry("cn=x", []Attribute{
		{Name: "cn", Values: []string{"first"}},
		{Name: "CN", Values: []string{"second"}},
	})

	assert.Equal(t, "first", entry.Value("cn"))
	assert.Equal(t, []string{"cn", "CN"}, entry.AttributeNames())
}
