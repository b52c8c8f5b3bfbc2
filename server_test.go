package directory

import "testing"

func TestParseServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    ServerInfo
		wantErr bool
	}{
		{
			name: "ldap with default port",
			url:  "ldap://ldap.example.com",
			want: ServerInfo{Host: "ldap.example.com", Port: 389, UseTLS: false},
		},
		{
			name: "ldaps with default port",
			url:  "ldaps://ldap.example.com",
			want: ServerInfo{Host: "ldap.example.com", Port: 636, UseTLS: true},
		},
		{
			name: "explicit port",
			url:  "ldap://ldap.example.com:3389",
			want: ServerInfo{Host: "ldap.example.com", Port: 3389, UseTLS: false},
		},
		{
			name: "trailing path ignored",
			url:  "ldaps://ldap.example.com:636/dc=example,dc=com",
			want: ServerInfo{Host: "ldap.example.com", Port: 636, UseTLS: true},
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			url:     "http://ldap.example.com",
			wantErr: true,
		},
		{
			name:    "missing host",
			url:     "ldap://",
			wantErr: true,
		},
		{
			name:    "bad port",
			url:     "ldap://ldap.example.com:notaport",
			wantErr: true,
		},
		{
			name:    "port out of range",
			url:     "ldap://ldap.example.com:70000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServerURL(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseServerURL(%q) = %+v, want error", tt.url, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseServerURL(%q) error: %v", tt.url, err)
			}

			if *got != tt.want {
				t.Errorf("ParseServerURL(%q) = %+v, want %+v", tt.url, *got, tt.want)
			}
		})
	}
}

func TestServerInfoURL(t *testing.T) {
	tests := []struct {
		name   string
		server ServerInfo
		want   string
	}{
		{
			name:   "plain",
			server: ServerInfo{Host: "dc1.example.com", Port: 389},
			want:   "ldap://dc1.example.com:389",
		},
		{
			name:   "tls",
			server: ServerInfo{Host: "dc1.example.com", Port: 636, UseTLS: true},
			want:   "ldaps://dc1.example.com:636",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseServerURLs(t *testing.T) {
	servers, err := parseServerURLs([]string{"ldap://a.example.com", "ldaps://b.example.com"})
	if err != nil {
		t.Fatalf("parseServerURLs() error: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("parseServerURLs() returned %d servers, want 2", len(servers))
	}

	if _, err := parseServerURLs(nil); err == nil {
		t.Error("parseServerURLs(nil) should fail")
	}

	if _, err := parseServerURLs([]string{"ldap://ok.example.com", "bogus"}); err == nil {
		t.Error("parseServerURLs() should fail on the first bad URL")
	}
}
