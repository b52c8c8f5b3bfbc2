package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// binder is the bind primitive. *ldap.Conn satisfies it.
type binder interface {
	Bind(username, password string) error
	UnauthenticatedBind(username string) error
}

// mutator covers the entry mutation primitives. *ldap.Conn satisfies it.
type mutator interface {
	Add(req *ldap.AddRequest) error
	Del(req *ldap.DelRequest) error
	Modify(req *ldap.ModifyRequest) error
}

// client implements the Client interface.
type client struct {
	pool   *connectionPool
	config *ConnectionConfig
	log    Logger

	mu        sync.RWMutex // guards the option fields below
	maxPages  int
	sizeLimit int
}

// NewClient creates a new directory client with connection pooling.
// Connections are dialed lazily on first use.
func NewClient(config *ConnectionConfig) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	log := config.Logger
	if log == nil {
		log = nopLogger{}
	}

	pool, err := newConnectionPool(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	log.Debug("directory client created", map[string]any{
		"servers":         len(config.URLs),
		"max_connections": config.MaxConnections,
		"use_tls":         config.UseTLS,
	})

	return &client{
		pool:      pool,
		config:    config,
		log:       log,
		maxPages:  config.MaxPages,
		sizeLimit: config.SizeLimit,
	}, nil
}

// Close closes the client and all its connections.
func (c *client) Close() error {
	if err := c.pool.Close(); err != nil {
		return newConnectionError("close", false, err)
	}
	return nil
}

// Bind authenticates against the directory. Both identity and credential
// empty performs an anonymous bind; supplying exactly one of the two is
// rejected locally before any wire call.
func (c *client) Bind(ctx context.Context, identity, credential string) error {
	if (identity == "") != (credential == "") {
		return &Error{
			Op:      "bind",
			Kind:    KindBind,
			Message: "identity and credential must be supplied together or both omitted",
		}
	}

	return logOperation(c.log, "bind", map[string]any{
		"identity":  identity,
		"anonymous": identity == "",
	}, func() error {
		conn, err := c.pool.Get(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		err = c.withRetry(ctx, func() error {
			return bindConn(conn.Conn(), identity, credential)
		})
		if err != nil {
			return newBindError("bind", err)
		}
		return nil
	})
}

// bindConn performs the actual bind on one connection.
func bindConn(conn binder, identity, credential string) error {
	if identity == "" {
		return conn.UnauthenticatedBind("")
	}
	return conn.Bind(identity, credential)
}

// SetOption applies a connection option. Unknown options and ill-typed
// values are rejected with an option error.
func (c *client) SetOption(opt Option, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch opt {
	case OptionNetworkTimeout:
		d, ok := value.(time.Duration)
		if !ok || d <= 0 {
			return newOptionError("set_option", opt, "requires a positive time.Duration")
		}
		c.config.Timeout = d
	case OptionMaxPages:
		n, ok := value.(int)
		if !ok || n < 0 {
			return newOptionError("set_option", opt, "requires a non-negative int")
		}
		c.maxPages = n
	case OptionSizeLimit:
		n, ok := value.(int)
		if !ok || n < 0 {
			return newOptionError("set_option", opt, "requires a non-negative int")
		}
		c.sizeLimit = n
	default:
		return newOptionError("set_option", opt, "unknown option")
	}

	return nil
}

// GetOption returns the current value of a connection option.
func (c *client) GetOption(opt Option) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch opt {
	case OptionNetworkTimeout:
		return c.config.Timeout, nil
	case OptionMaxPages:
		return c.maxPages, nil
	case OptionSizeLimit:
		return c.sizeLimit, nil
	default:
		return nil, newOptionError("get_option", opt, "unknown option")
	}
}

// AddEntry creates a new entry at dn with the given attributes.
func (c *client) AddEntry(ctx context.Context, dn string, attrs map[string][]string) error {
	if dn == "" {
		return newPersistenceError("add_entry", dn, errors.New("DN cannot be empty"))
	}

	return c.mutate(ctx, "add_entry", dn, func(conn mutator) error {
		return conn.Add(newAddRequest(dn, attrs))
	})
}

// DeleteEntry removes the entry at dn.
func (c *client) DeleteEntry(ctx context.Context, dn string) error {
	if dn == "" {
		return newPersistenceError("delete_entry", dn, errors.New("DN cannot be empty"))
	}

	return c.mutate(ctx, "delete_entry", dn, func(conn mutator) error {
		return conn.Del(ldap.NewDelRequest(dn, nil))
	})
}

// AddAttributeValues appends values to the named attributes of dn.
func (c *client) AddAttributeValues(ctx context.Context, dn string, attrs map[string][]string) error {
	return c.modifyAttributes(ctx, "add_attribute_values", dn, attrs, (*ldap.ModifyRequest).Add)
}

// ReplaceAttributeValues replaces the named attributes of dn wholesale.
func (c *client) ReplaceAttributeValues(ctx context.Context, dn string, attrs map[string][]string) error {
	return c.modifyAttributes(ctx, "replace_attribute_values", dn, attrs, (*ldap.ModifyRequest).Replace)
}

// DeleteAttributeValues removes the given values from the named attributes
// of dn. An empty value slice removes the attribute entirely.
func (c *client) DeleteAttributeValues(ctx context.Context, dn string, attrs map[string][]string) error {
	return c.modifyAttributes(ctx, "delete_attribute_values", dn, attrs, (*ldap.ModifyRequest).Delete)
}

// modifyAttributes runs one modify operation built by applying op per
// attribute.
func (c *client) modifyAttributes(ctx context.Context, operation, dn string, attrs map[string][]string, op func(*ldap.ModifyRequest, string, []string)) error {
	if dn == "" {
		return newPersistenceError(operation, dn, errors.New("DN cannot be empty"))
	}
	if len(attrs) == 0 {
		return newPersistenceError(operation, dn, errors.New("no attributes given"))
	}

	return c.mutate(ctx, operation, dn, func(conn mutator) error {
		return conn.Modify(newModifyRequest(dn, attrs, op))
	})
}

// mutate acquires a connection and runs one mutation with retry, translating
// failures into persistence errors.
func (c *client) mutate(ctx context.Context, operation, dn string, fn func(mutator) error) error {
	return logOperation(c.log, operation, map[string]any{"dn": dn}, func() error {
		conn, err := c.pool.Get(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		err = c.withRetry(ctx, func() error {
			return fn(conn.Conn())
		})
		if err != nil {
			return newPersistenceError(operation, dn, err)
		}
		return nil
	})
}

// newAddRequest builds a go-ldap add request from an attribute map.
func newAddRequest(dn string, attrs map[string][]string) *ldap.AddRequest {
	req := ldap.NewAddRequest(dn, nil)
	for attr, values := range attrs {
		req.Attribute(attr, values)
	}
	return req
}

// newModifyRequest builds a go-ldap modify request, applying op per
// attribute.
func newModifyRequest(dn string, attrs map[string][]string, op func(*ldap.ModifyRequest, string, []string)) *ldap.ModifyRequest {
	req := ldap.NewModifyRequest(dn, nil)
	for attr, values := range attrs {
		op(req, attr, values)
	}
	return req
}

// Search performs a directory search. A positive page size over the whole
// subtree drives the paged accumulator on a single held connection;
// everything else is one round trip. The returned ResultSet is owned by the
// caller and released through a cursor or an explicit Release.
func (c *client) Search(ctx context.Context, req *SearchRequest) (*ResultSet, error) {
	if req == nil {
		return nil, &Error{Op: "search", Kind: KindSearch, Message: "search request cannot be nil"}
	}

	c.mu.RLock()
	maxPages := c.maxPages
	sizeLimit := c.sizeLimit
	c.mu.RUnlock()

	fields := map[string]any{
		"base_dn": req.BaseDN,
		"scope":   req.Scope.String(),
		"filter":  req.Filter,
		"paged":   usePagedSearch(req),
	}

	var set *ResultSet
	err := logOperation(c.log, "search", fields, func() error {
		conn, err := c.pool.Get(ctx)
		if err != nil {
			return err
		}
		// The paged loop threads per-connection cookies, so the connection
		// is held until the final page has been merged.
		defer conn.Close()

		if usePagedSearch(req) {
			set, err = accumulatePages(ctx, conn.Conn(), req, maxPages, c.log)
			return err
		}

		if req.SizeLimit == 0 && sizeLimit > 0 {
			limited := *req
			limited.SizeLimit = sizeLimit
			req = &limited
		}
		set, err = singleSearch(conn.Conn(), req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// Ping tests connectivity with a minimal root DSE read.
func (c *client) Ping(ctx context.Context) error {
	conn, err := c.pool.Get(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = singleSearch(conn.Conn(), rootDSERequest([]string{"supportedLDAPVersion"}))
	if err != nil {
		return newConnectionError("ping", true, err)
	}
	return nil
}

// BaseDN reads the server's default naming context from the root DSE.
func (c *client) BaseDN(ctx context.Context) (string, error) {
	set, err := c.Search(ctx, rootDSERequest([]string{"defaultNamingContext", "namingContexts"}))
	if err != nil {
		return "", fmt.Errorf("failed to read root DSE: %w", err)
	}
	defer set.Release()

	if set.Len() == 0 {
		return "", errors.New("no root DSE found")
	}

	entry, err := HydrateEntry(set.entry(0))
	if err != nil {
		return "", err
	}

	if dn := entry.Value("defaultNamingContext"); dn != "" {
		return dn, nil
	}
	if dn := entry.Value("namingContexts"); dn != "" {
		return dn, nil
	}
	return "", errors.New("no naming context found in root DSE")
}

// rootDSERequest builds a base-scope read of the root DSE.
func rootDSERequest(attrs []string) *SearchRequest {
	return &SearchRequest{
		BaseDN:     "",
		Scope:      ScopeBaseObject,
		Filter:     "(objectClass=*)",
		Attributes: attrs,
		SizeLimit:  1,
		TimeLimit:  5 * time.Second,
	}
}

// Stats returns pool statistics.
func (c *client) Stats() PoolStats {
	return c.pool.Stats()
}

// withRetry executes an operation, retrying transient failures with
// exponential backoff. Search paging deliberately bypasses this.
func (c *client) withRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	backoff := c.config.InitialBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		if attempt == c.config.MaxRetries {
			break
		}

		c.log.Debug("retrying operation", map[string]any{
			"attempt":    attempt + 1,
			"max_retry":  c.config.MaxRetries,
			"backoff_ms": backoff.Milliseconds(),
			"last_error": err.Error(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff = min(time.Duration(float64(backoff)*c.config.BackoffFactor), c.config.MaxBackoff)
		}
	}

	return lastErr
}
