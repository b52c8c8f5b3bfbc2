package directory

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// MaxConnectionPoolLimit is the maximum allowed connections in a pool.
// Keeps the client well below typical directory server connection limits
// while preventing socket and memory exhaustion on the client side.
const MaxConnectionPoolLimit = 100

// ConnectionConfig holds configuration for directory connections.
type ConnectionConfig struct {
	// Connection settings
	URLs    []string      // Server URLs (ldap:// or ldaps://), tried in order
	Timeout time.Duration `default:"30s"` // Network timeout per operation

	// Authentication settings. Empty BindDN and BindPassword together mean
	// anonymous access.
	BindDN       string
	BindPassword string

	// TLS settings
	TLSConfig *tls.Config // Custom TLS configuration
	UseTLS    bool        `default:"true"` // Upgrade plain connections with StartTLS
	SkipTLS   bool        // Skip TLS entirely (not recommended)

	// Pool settings
	MaxConnections int           `default:"10"`
	MaxIdleTime    time.Duration `default:"5m"` // Idle age before a connection is recycled

	// Retry settings for bind and mutation operations. Paged searches never
	// retry; a page failure aborts the whole search.
	MaxRetries     int           `default:"3"`
	InitialBackoff time.Duration `default:"500ms"`
	MaxBackoff     time.Duration `default:"30s"`
	BackoffFactor  float64       `default:"2.0"`

	// Search settings
	MaxPages  int `default:"1000"` // Pages per paged search before aborting; 0 disables
	SizeLimit int // Default size limit for non-paged searches; 0 means none

	// Logger receives structured operation logs. Defaults to a no-op logger.
	Logger Logger
}

// DefaultConfig returns a secure default configuration.
func DefaultConfig() *ConnectionConfig {
	cfg := &ConnectionConfig{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("directory: bad config defaults: %v", err))
	}

	cfg.TLSConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	cfg.Logger = nopLogger{}

	return cfg
}

// validateConfig validates the connection configuration.
func validateConfig(config *ConnectionConfig) error {
	if config.MaxConnections <= 0 {
		return errors.New("MaxConnections must be positive")
	}

	if config.MaxConnections > MaxConnectionPoolLimit {
		return fmt.Errorf("MaxConnections too high (max %d)", MaxConnectionPoolLimit)
	}

	if config.MaxIdleTime <= 0 {
		return errors.New("MaxIdleTime must be positive")
	}

	if config.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if config.MaxRetries < 0 {
		return errors.New("MaxRetries cannot be negative")
	}

	if config.BackoffFactor <= 1.0 {
		return errors.New("BackoffFactor must be greater than 1.0")
	}

	if config.MaxPages < 0 {
		return errors.New("MaxPages cannot be negative")
	}

	if (config.BindDN == "") != (config.BindPassword == "") {
		return errors.New("BindDN and BindPassword must be supplied together")
	}

	return nil
}
