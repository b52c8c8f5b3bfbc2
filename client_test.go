package directory

import (
	"context"
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.URLs = []string{"ldap://localhost"}

	c, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectionConfig)
	}{
		{"no URLs", func(cfg *ConnectionConfig) { cfg.URLs = nil }},
		{"bad URL scheme", func(cfg *ConnectionConfig) { cfg.URLs = []string{"http://x"} }},
		{"zero max connections", func(cfg *ConnectionConfig) { cfg.MaxConnections = 0 }},
		{"bind DN without password", func(cfg *ConnectionConfig) { cfg.BindDN = "cn=admin" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.URLs = []string{"ldap://localhost"}
			tt.mutate(cfg)

			_, err := NewClient(cfg)
			assert.Error(t, err)
		})
	}
}

func TestBindRejectsHalfAnonymous(t *testing.T) {
	c := testClient(t)

	tests := []struct {
		name       string
		identity   string
		credential string
	}{
		{"identity without credential", "cn=admin,dc=example,dc=com", ""},
		{"credential without identity", "", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Bind(context.Background(), tt.identity, tt.credential)
			require.Error(t, err)
			assert.True(t, IsBind(err))

			var dirErr *Error
			require.ErrorAs(t, err, &dirErr)
			assert.Equal(t, uint16(0), dirErr.Code, "rejected locally, no wire call")
		})
	}
}

func TestBindConnDispatch(t *testing.T) {
	fake := &fakeBinder{}

	require.NoError(t, bindConn(fake, "", ""))
	assert.Equal(t, []string{"unauthenticated"}, fake.calls)

	fake.calls = nil
	require.NoError(t, bindConn(fake, "cn=admin", "secret"))
	assert.Equal(t, []string{"simple"}, fake.calls)
	assert.Equal(t, "cn=admin", fake.identity)
}

type fakeBinder struct {
	calls    []string
	identity string
}

func (f *fakeBinder) Bind(username, password string) error {
	f.calls = append(f.calls, "simple")
	f.identity = username
	return nil
}

func (f *fakeBinder) UnauthenticatedBind(string) error {
	f.calls = append(f.calls, "unauthenticated")
	return nil
}

func TestOptionRoundTrip(t *testing.T) {
	c := testClient(t)

	require.NoError(t, c.SetOption(OptionNetworkTimeout, 10*time.Second))
	require.NoError(t, c.SetOption(OptionMaxPages, 50))
	require.NoError(t, c.SetOption(OptionSizeLimit, 200))

	got, err := c.GetOption(OptionNetworkTimeout)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, got)

	got, err = c.GetOption(OptionMaxPages)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = c.GetOption(OptionSizeLimit)
	require.NoError(t, err)
	assert.Equal(t, 200, got)
}

func TestOptionRejections(t *testing.T) {
	c := testClient(t)

	tests := []struct {
		name  string
		opt   Option
		value any
	}{
		{"unknown option", Option("bogus"), 1},
		{"timeout wrong type", OptionNetworkTimeout, "10s"},
		{"timeout not positive", OptionNetworkTimeout, time.Duration(0)},
		{"max pages wrong type", OptionMaxPages, "many"},
		{"max pages negative", OptionMaxPages, -1},
		{"size limit negative", OptionSizeLimit, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SetOption(tt.opt, tt.value)
			require.Error(t, err)
			assert.Equal(t, KindOption, KindOf(err))
		})
	}

	_, err := c.GetOption(Option("bogus"))
	require.Error(t, err)
	assert.Equal(t, KindOption, KindOf(err))
}

func TestMutationsRejectEmptyDN(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	attrs := map[string][]string{"cn": {"x"}}

	tests := []struct {
		name string
		call func() error
	}{
		{"add entry", func() error { return c.AddEntry(ctx, "", attrs) }},
		{"delete entry", func() error { return c.DeleteEntry(ctx, "") }},
		{"add values", func() error { return c.AddAttributeValues(ctx, "", attrs) }},
		{"replace values", func() error { return c.ReplaceAttributeValues(ctx, "", attrs) }},
		{"delete values", func() error { return c.DeleteAttributeValues(ctx, "", attrs) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, KindPersistence, KindOf(err))
		})
	}
}

func TestModifyRejectsEmptyAttributeMap(t *testing.T) {
	c := testClient(t)

	err := c.ReplaceAttributeValues(context.Background(), "cn=x,dc=example,dc=com", nil)
	require.Error(t, err)
	assert.Equal(t, KindPersistence, KindOf(err))
}

func TestNewAddRequest(t *testing.T) {
	req := newAddRequest("cn=x,dc=example,dc=com", map[string][]string{
		"objectClass": {"person", "top"},
		"cn":          {"x"},
	})

	assert.Equal(t, "cn=x,dc=example,dc=com", req.DN)
	require.Len(t, req.Attributes, 2)

	byName := map[string][]string{}
	for _, attr := range req.Attributes {
		byName[attr.Type] = attr.Vals
	}
	assert.Equal(t, []string{"person", "top"}, byName["objectClass"])
	assert.Equal(t, []string{"x"}, byName["cn"])
}

func TestNewModifyRequest(t *testing.T) {
	tests := []struct {
		name   string
		op     func(*ldap.ModifyRequest, string, []string)
		wantOp uint // BER modify operation tag
	}{
		{"add", (*ldap.ModifyRequest).Add, ldap.AddAttribute},
		{"replace", (*ldap.ModifyRequest).Replace, ldap.ReplaceAttribute},
		{"delete", (*ldap.ModifyRequest).Delete, ldap.DeleteAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newModifyRequest("cn=x", map[string][]string{"mail": {"x@example.com"}}, tt.op)

			assert.Equal(t, "cn=x", req.DN)
			require.Len(t, req.Changes, 1)
			assert.Equal(t, tt.wantOp, req.Changes[0].Operation)
			assert.Equal(t, "mail", req.Changes[0].Modification.Type)
		})
	}
}

func TestSearchRejectsNilRequest(t *testing.T) {
	c := testClient(t)

	_, err := c.Search(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, KindSearch, KindOf(err))
}

func TestStatsFreshClient(t *testing.T) {
	c := testClient(t)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Created)
	assert.Equal(t, int64(0), stats.Active)
	assert.Equal(t, 0, stats.Idle)
}
