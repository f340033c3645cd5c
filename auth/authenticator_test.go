package auth

import (
	"errors"
	"testing"
)

func TestRequireAuth(t *testing.T) {
	excluded := []string{"/api/v1/status/", "/api/v1/stat*", "/api/v1/unauthorized/"}

	tests := []struct {
		name     string
		path     string
		excluded []string
		want     bool
	}{
		{"empty path", "", excluded, true},
		{"nil excluded", "/api/v1/users", nil, true},
		{"empty excluded", "/api/v1/users", []string{}, true},
		{"exact match", "/api/v1/status/", excluded, false},
		{"missing trailing slash", "/api/v1/status", excluded, false},
		{"excluded prefixes path", "/api/v1/unauthorized/extra", excluded, false},
		{"wildcard", "/api/v1/stats", excluded, false},
		{"wildcard deeper", "/api/v1/statistics/daily", excluded, false},
		{"path prefixes wildcard entry", "/api/v1/sta", excluded, false},
		{"wildcard stem without slash", "/api", []string{"/api/*"}, false},
		{"protected", "/api/v1/users", excluded, true},
		{"protected sibling", "/api/v1/forbidden", excluded, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequireAuth(tt.path, tt.excluded); got != tt.want {
				t.Errorf("RequireAuth(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRequireAuthWildcardNeedsStem(t *testing.T) {
	if !RequireAuth("/api/v2/users", []string{"/api/v1/*"}) {
		t.Fatal("path outside the wildcard stem should require auth")
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"", StrategyNone},
		{"none", StrategyNone},
		{"auth", StrategyNull},
		{"basic_auth", StrategyBasic},
		{"Basic", StrategyBasic},
		{"session_auth", StrategySession},
		{"session_exp_auth", StrategyExpiringSession},
		{"session_db_auth", StrategyPersistedSession},
		{" persisted_session ", StrategyPersistedSession},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseStrategy(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseStrategy("kerberos"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("got %v, want ErrUnknownStrategy", err)
	}
}

func TestNewRequiresMatchingStore(t *testing.T) {
	dir, _ := newTestDirectory(t)

	a, err := New(StrategyNone, Deps{})
	if err != nil || a != nil {
		t.Fatalf("none = (%v, %v), want (nil, nil)", a, err)
	}
	if _, err := New(StrategyNull, Deps{}); err != nil {
		t.Fatalf("null: %v", err)
	}
	if _, err := New(StrategyBasic, Deps{}); err == nil {
		t.Fatal("basic without a directory should fail")
	}
	if _, err := New(StrategyExpiringSession, Deps{Directory: dir}); !errors.Is(err, ErrMissingStore) {
		t.Fatalf("got %v, want ErrMissingStore", err)
	}

	a, err = New(StrategyBasic, Deps{Directory: dir})
	if err != nil || a.Kind() != StrategyBasic {
		t.Fatalf("basic = (%v, %v)", a, err)
	}
}
