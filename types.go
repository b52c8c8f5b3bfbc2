package directory

import (
	"context"
	"time"
)

// Scope defines search breadth.
type Scope int

const (
	ScopeBaseObject Scope = iota // The base entry only
	ScopeSingleLevel             // Immediate children of the base entry
	ScopeWholeSubtree            // The base entry and its entire subtree
)

// String returns the RFC 4516 scope keyword.
func (s Scope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "one"
	case ScopeWholeSubtree:
		return "sub"
	default:
		return "unknown"
	}
}

// DerefAliases defines alias dereferencing behavior.
type DerefAliases int

const (
	NeverDerefAliases DerefAliases = iota
	DerefInSearching
	DerefFindingBaseObj
	DerefAlways
)

// Option identifies a tunable connection option.
type Option string

const (
	// OptionNetworkTimeout is the per-operation network timeout
	// (time.Duration). Applies to connections created after the change.
	OptionNetworkTimeout Option = "network_timeout"

	// OptionMaxPages caps the number of pages one paged search may fetch
	// (int). Zero disables the cap.
	OptionMaxPages Option = "max_pages"

	// OptionSizeLimit is the default server-side size limit for non-paged
	// searches (int). Zero means no client-requested limit.
	OptionSizeLimit Option = "size_limit"
)

// SearchRequest encapsulates directory search parameters.
type SearchRequest struct {
	BaseDN       string
	Scope        Scope
	Filter       string
	Attributes   []string // nil requests all user attributes
	PageSize     int      // > 0 with ScopeWholeSubtree enables paged accumulation
	SizeLimit    int      // non-paged searches only
	TimeLimit    time.Duration
	DerefAliases DerefAliases
}

// Client provides high-level directory operations.
type Client interface {
	// Authentication. Identity and credential must be supplied together;
	// both empty performs an anonymous bind.
	Bind(ctx context.Context, identity, credential string) error

	// Connection options
	SetOption(opt Option, value any) error
	GetOption(opt Option) (any, error)

	// Entry mutation
	AddEntry(ctx context.Context, dn string, attrs map[string][]string) error
	DeleteEntry(ctx context.Context, dn string) error
	AddAttributeValues(ctx context.Context, dn string, attrs map[string][]string) error
	ReplaceAttributeValues(ctx context.Context, dn string, attrs map[string][]string) error
	DeleteAttributeValues(ctx context.Context, dn string, attrs map[string][]string) error

	// Search
	Search(ctx context.Context, req *SearchRequest) (*ResultSet, error)

	// Health and statistics
	Ping(ctx context.Context) error
	BaseDN(ctx context.Context) (string, error)
	Stats() PoolStats

	Close() error
}
