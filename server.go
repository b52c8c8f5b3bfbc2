package directory

import (
	"fmt"
	"strconv"
	"strings"
)

// Default LDAP ports.
const (
	defaultPort  = 389
	defaultPortS = 636
)

// ServerInfo identifies one directory server endpoint.
type ServerInfo struct {
	Host   string
	Port   int
	UseTLS bool
}

// URL renders the server back into ldap:// or ldaps:// form.
func (s *ServerInfo) URL() string {
	scheme := "ldap"
	if s.UseTLS {
		scheme = "ldaps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}

// ParseServerURL parses an ldap:// or ldaps:// URL into a ServerInfo,
// applying the scheme's default port when none is given.
func ParseServerURL(rawURL string) (*ServerInfo, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	var useTLS bool
	var rest string

	switch {
	case strings.HasPrefix(rawURL, "ldaps://"):
		useTLS = true
		rest = strings.TrimPrefix(rawURL, "ldaps://")
	case strings.HasPrefix(rawURL, "ldap://"):
		rest = strings.TrimPrefix(rawURL, "ldap://")
	default:
		return nil, fmt.Errorf("unsupported scheme in %q, must be ldap:// or ldaps://", rawURL)
	}

	// Ignore any DN or query component after the authority.
	rest, _, _ = strings.Cut(rest, "/")
	if rest == "" {
		return nil, fmt.Errorf("missing host in %q", rawURL)
	}

	host, portStr, hasPort := strings.Cut(rest, ":")
	if host == "" {
		return nil, fmt.Errorf("missing host in %q", rawURL)
	}

	port := defaultPort
	if useTLS {
		port = defaultPortS
	}

	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid port %q in %q", portStr, rawURL)
		}
		port = p
	}

	return &ServerInfo{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
	}, nil
}

// parseServerURLs parses each configured URL, failing on the first bad one.
func parseServerURLs(urls []string) ([]*ServerInfo, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one server URL is required")
	}

	servers := make([]*ServerInfo, 0, len(urls))
	for _, u := range urls {
		server, err := ParseServerURL(u)
		if err != nil {
			return nil, fmt.Errorf("invalid server URL %s: %w", u, err)
		}
		servers = append(servers, server)
	}

	return servers, nil
}
