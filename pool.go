package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// PooledConnection is a pool-owned directory connection. Close returns it to
// the pool rather than tearing it down.
type PooledConnection struct {
	conn         *ldap.Conn
	lastUsed     time.Time
	healthy      bool
	bound        bool
	server       *ServerInfo
	returnToPool func(*PooledConnection)
}

// Close returns the connection to its pool.
func (pc *PooledConnection) Close() {
	if pc.returnToPool != nil {
		pc.returnToPool(pc)
	}
}

// Conn exposes the underlying go-ldap connection.
func (pc *PooledConnection) Conn() *ldap.Conn {
	return pc.conn
}

// Server returns the endpoint this connection is bound to.
func (pc *PooledConnection) Server() *ServerInfo {
	return pc.server
}

// PoolStats provides statistics about the connection pool.
type PoolStats struct {
	Idle    int           // Connections parked in the pool
	Active  int64         // Connections currently handed out
	Created int64         // Total connections created
	Errors  int64         // Total connection failures
	Uptime  time.Duration // Pool uptime
}

// connectionPool hands out authenticated connections, recycling idle ones
// and failing over across the configured servers.
type connectionPool struct {
	config      *ConnectionConfig
	servers     []*ServerInfo
	connections chan *PooledConnection
	log         Logger

	mu     sync.RWMutex
	closed bool

	activeConns  int64
	totalCreated int64
	totalErrors  int64
	startTime    time.Time
}

// newConnectionPool validates the configuration, parses the server URLs, and
// prepares an empty pool. Connections are created lazily on Get.
func newConnectionPool(config *ConnectionConfig) (*connectionPool, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	servers, err := parseServerURLs(config.URLs)
	if err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = nopLogger{}
	}

	return &connectionPool{
		config:      config,
		servers:     servers,
		connections: make(chan *PooledConnection, config.MaxConnections),
		log:         log,
		startTime:   time.Now(),
	}, nil
}

// Get retrieves a healthy connection from the pool, creating one when none
// is available.
func (p *connectionPool) Get(ctx context.Context) (*PooledConnection, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, newConnectionError("pool_get", false, errors.New("connection pool is closed"))
	}
	p.mu.RUnlock()

	select {
	case conn := <-p.connections:
		if p.isConnectionHealthy(conn) {
			conn.lastUsed = time.Now()
			atomic.AddInt64(&p.activeConns, 1)
			return conn, nil
		}
		// Stale or unhealthy, replace it.
		p.closeConnection(conn)
	default:
	}

	return p.createConnection(ctx)
}

// createConnection dials the configured servers in order, retrying the whole
// list with exponential backoff.
func (p *connectionPool) createConnection(ctx context.Context) (*PooledConnection, error) {
	var lastErr error
	backoff := p.config.InitialBackoff

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		for _, server := range p.servers {
			conn, err := p.dialServer(server)
			if err != nil {
				lastErr = err
				atomic.AddInt64(&p.totalErrors, 1)
				p.log.Warn("server dial failed", map[string]any{
					"server": server.URL(),
					"error":  err.Error(),
				})
				continue
			}

			atomic.AddInt64(&p.totalCreated, 1)
			atomic.AddInt64(&p.activeConns, 1)
			return conn, nil
		}

		if attempt < p.config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff = min(time.Duration(float64(backoff)*p.config.BackoffFactor), p.config.MaxBackoff)
			}
		}
	}

	return nil, newConnectionError("pool_dial", true, lastErr)
}

// dialServer opens, secures, and binds a single connection.
func (p *connectionPool) dialServer(server *ServerInfo) (*PooledConnection, error) {
	var conn *ldap.Conn
	var err error

	if server.UseTLS {
		conn, err = ldap.DialURL(server.URL(), ldap.DialWithTLSConfig(p.config.TLSConfig))
	} else {
		conn, err = ldap.DialURL(server.URL())
		if err == nil && p.config.UseTLS && !p.config.SkipTLS {
			err = conn.StartTLS(p.config.TLSConfig)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", server.URL(), err)
	}

	conn.SetTimeout(p.config.Timeout)

	pooled := &PooledConnection{
		conn:         conn,
		lastUsed:     time.Now(),
		healthy:      true,
		server:       server,
		returnToPool: p.returnConnection,
	}

	if p.config.BindDN != "" {
		if err := conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to bind to %s: %w", server.URL(), err)
		}
		pooled.bound = true
	}

	return pooled, nil
}

// returnConnection parks a connection back in the pool, closing it when the
// pool is full, shut down, or the connection has aged out.
func (p *connectionPool) returnConnection(conn *PooledConnection) {
	if conn == nil {
		return
	}

	atomic.AddInt64(&p.activeConns, -1)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || !p.isConnectionHealthy(conn) {
		p.closeConnection(conn)
		return
	}

	select {
	case p.connections <- conn:
	default:
		p.closeConnection(conn)
	}
}

// isConnectionHealthy checks liveness and idle age.
func (p *connectionPool) isConnectionHealthy(conn *PooledConnection) bool {
	if conn == nil || conn.conn == nil || !conn.healthy {
		return false
	}

	if time.Since(conn.lastUsed) > p.config.MaxIdleTime {
		return false
	}

	if p.config.BindDN != "" && !conn.bound {
		return false
	}

	return true
}

// closeConnection tears down a pooled connection.
func (p *connectionPool) closeConnection(conn *PooledConnection) {
	if conn != nil && conn.conn != nil {
		conn.conn.Close()
		conn.healthy = false
		conn.bound = false
	}
}

// Close closes all pooled connections and shuts down the pool.
func (p *connectionPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	close(p.connections)
	for conn := range p.connections {
		p.closeConnection(conn)
	}

	return nil
}

// Stats returns pool statistics.
func (p *connectionPool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PoolStats{
		Idle:    len(p.connections),
		Active:  atomic.LoadInt64(&p.activeConns),
		Created: atomic.LoadInt64(&p.totalCreated),
		Errors:  atomic.LoadInt64(&p.totalErrors),
		Uptime:  time.Since(p.startTime),
	}
}
