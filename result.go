package directory

import "github.com/go-ldap/ldap/v3"

// ResultSet is the logical concatenation of all pages fetched for one search.
// It is created empty, grows only by appending pages, and is discarded by an
// explicit Release. A single-shot search produces a one-page set.
//
// A ResultSet is not safe for concurrent use; concurrent searches must each
// consume their own set.
type ResultSet struct {
	entries  []*ldap.Entry
	pages    int
	released bool
}

// appendPage merges one page of raw records into the set, preserving arrival
// order.
func (rs *ResultSet) appendPage(entries []*ldap.Entry) {
	rs.entries = append(rs.entries, entries...)
	rs.pages++
}

// Len returns the total number of entries accumulated so far.
func (rs *ResultSet) Len() int {
	return len(rs.entries)
}

// Pages returns the number of pages merged into the set.
func (rs *ResultSet) Pages() int {
	return rs.pages
}

// entry returns the raw record at position i. Callers must bounds-check via
// Len.
func (rs *ResultSet) entry(i int) *ldap.Entry {
	return rs.entries[i]
}

// Release drops all entry references so they become collectable. Releasing
// an already-released set is a no-op.
func (rs *ResultSet) Release() {
	if rs == nil || rs.released {
		return
	}
	rs.entries = nil
	rs.released = true
}

// Released reports whether the set has been released.
func (rs *ResultSet) Released() bool {
	return rs.released
}
