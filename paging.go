package directory

import (
	"context"
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

// searcher is the page-level search primitive. *ldap.Conn satisfies it.
type searcher interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
}

// usePagedSearch reports whether req routes to the paged accumulator: a
// positive page size over the whole subtree. Everything else is a single
// round trip with no paging control.
func usePagedSearch(req *SearchRequest) bool {
	return req.PageSize > 0 && req.Scope == ScopeWholeSubtree
}

// accumulatePages drives successive paged searches over one connection until
// the server returns an empty continuation cookie, merging every page into a
// single ResultSet in arrival order.
//
// The loop never retries. Any page failure aborts the whole search and
// discards entries already merged, so a returned ResultSet always means clean
// exhaustion. An empty page with a non-empty cookie is treated as benign
// continuation; only the cookie signals completion.
//
// maxPages bounds a server that never returns an empty cookie (0 disables
// the cap). The context is checked between pages; cancellation mid-page is
// not supported.
func accumulatePages(ctx context.Context, conn searcher, req *SearchRequest, maxPages int, log Logger) (*ResultSet, error) {
	paging := ldap.NewControlPaging(uint32(req.PageSize))
	set := &ResultSet{}

	fields := map[string]any{
		"base_dn":   req.BaseDN,
		"filter":    req.Filter,
		"page_size": req.PageSize,
	}
	log.Debug("starting paged search", fields)

	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			set.Release()
			log.Error("paged search exceeded page cap", map[string]any{
				"base_dn":   req.BaseDN,
				"filter":    req.Filter,
				"max_pages": maxPages,
			})
			return nil, &Error{
				Op:      "paged_search",
				Kind:    KindSearch,
				Message: fmt.Sprintf("page cap of %d exceeded without an empty continuation cookie", maxPages),
			}
		}

		select {
		case <-ctx.Done():
			set.Release()
			return nil, &Error{
				Op:      "paged_search",
				Kind:    KindSearch,
				Message: "search cancelled between pages",
				Cause:   ctx.Err(),
			}
		default:
		}

		ldapReq := ldap.NewSearchRequest(
			req.BaseDN,
			int(req.Scope),
			int(req.DerefAliases),
			0, // No size limit when paging
			int(req.TimeLimit.Seconds()),
			false,
			req.Filter,
			req.Attributes,
			[]ldap.Control{paging},
		)

		result, err := conn.Search(ldapReq)
		if err != nil {
			set.Release()
			return nil, newSearchError("paged_search", err)
		}

		set.appendPage(result.Entries)

		log.Debug("page merged", map[string]any{
			"page":            page,
			"entries_in_page": len(result.Entries),
			"total_entries":   set.Len(),
		})

		ctrl, ok := ldap.FindControl(result.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
		if !ok || len(ctrl.Cookie) == 0 {
			// Empty or absent cookie: the server is done.
			break
		}
		paging.SetCookie(ctrl.Cookie)
	}

	log.Debug("paged search completed", map[string]any{
		"base_dn":       req.BaseDN,
		"filter":        req.Filter,
		"pages":         set.Pages(),
		"total_entries": set.Len(),
	})

	return set, nil
}

// singleSearch performs one non-paged round trip. No continuation cookie is
// ever constructed on this path.
func singleSearch(conn searcher, req *SearchRequest) (*ResultSet, error) {
	ldapReq := ldap.NewSearchRequest(
		req.BaseDN,
		int(req.Scope),
		int(req.DerefAliases),
		req.SizeLimit,
		int(req.TimeLimit.Seconds()),
		false,
		req.Filter,
		req.Attributes,
		nil,
	)

	result, err := conn.Search(ldapReq)
	if err != nil {
		return nil, newSearchError("search", err)
	}

	set := &ResultSet{}
	set.appendPage(result.Entries)
	return set, nil
}
