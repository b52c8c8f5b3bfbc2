/*
Package directory provides a typed client facade over LDAP directory servers,
built on github.com/go-ldap/ldap/v3.

The package is organized around three collaborating pieces:

  - Client: connection management with pooling, bind, entry mutation, and
    search dispatch with structured error translation
  - Paged accumulation: a loop over the LDAP paged-results control that merges
    successive pages into a single ResultSet, threading the server's opaque
    continuation cookie between round trips
  - Cursor: a single-pass forward iterator that lazily hydrates one typed
    entry at a time from a ResultSet

# Searching

Search requests carry a base DN, scope, filter, optional attribute list, and
an optional page size. A positive page size combined with whole-subtree scope
drives the paged accumulator; anything else performs a single round trip. The
accumulator never retries: any page failure aborts the whole search with a
typed error, so callers can always distinguish a clean exhaustion from an
aborted run.

# Error Handling

All go-ldap failures are translated into *Error values categorized by Kind
(bind, option, connection, persistence, no_result, size_limit, filter,
search). LDAP result codes stay an adapter-internal detail; callers branch on
Kind via helpers such as IsNoResult or IsFilter, or with errors.As.

# Resource Model

Directory operations are synchronous and blocking. A paged search holds one
pooled connection for its full duration, since paging cookies are
per-connection state. ResultSet release is explicit: cursors release their
previous set on Reset and Close, and Release itself is idempotent.

# Example Usage

	cfg := directory.DefaultConfig()
	cfg.URLs = []string{"ldaps://ldap.example.com"}
	cfg.BindDN = "cn=reader,dc=example,dc=com"
	cfg.BindPassword = "secret"

	client, err := directory.NewClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	set, err := client.Search(ctx, &directory.SearchRequest{
		BaseDN:   "ou=people,dc=example,dc=com",
		Scope:    directory.ScopeWholeSubtree,
		Filter:   "(objectClass=person)",
		PageSize: 500,
	})
	if err != nil {
		return err
	}

	cur := directory.NewCursor(set)
	defer cur.Close()
	for dn, entry := range cur.All() {
		fmt.Println(dn, entry.Value("cn"))
	}
*/
package directory
