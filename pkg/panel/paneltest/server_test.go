package paneltest

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

func TestTokenRoundTrip(t *testing.T) {
	tok := MintToken(map[string]any{"sub": "admin", "exp": time.Now().Add(time.Minute).Unix()})
	claims, ok := ParseToken(tok)
	if !ok || claims["sub"] != "admin" {
		t.Fatalf("ParseToken = %v, %v", claims, ok)
	}

	expired := MintToken(map[string]any{"sub": "admin", "exp": time.Now().Add(-time.Minute).Unix()})
	if _, ok := ParseToken(expired); ok {
		t.Error("expired token accepted")
	}
	if _, ok := ParseToken(MintToken(map[string]any{"sub": "admin"})); ok {
		t.Error("token without exp accepted")
	}
	if _, ok := ParseToken("not.a.token"); ok {
		t.Error("garbage accepted")
	}
}

func TestNewHandlerUnknownKind(t *testing.T) {
	if _, err := NewHandler("nope", Options{}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestEveryKindHasFake(t *testing.T) {
	for _, kind := range api.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			srv := NewServer(kind, Options{Users: 2, Nodes: 3})
			defer srv.Close()
			if srv.UserCount() != 2 || srv.NodeCount() != 3 {
				t.Errorf("seeded %d users, %d nodes", srv.UserCount(), srv.NodeCount())
			}
			resp, err := http.Get(srv.URL + "/healthz")
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("healthz = %d", resp.StatusCode)
			}
		})
	}
}

func TestRejectsMissingToken(t *testing.T) {
	srv := NewServer(api.KindMarzban, Options{Users: 1})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestFormLogin(t *testing.T) {
	srv := NewServer(api.KindGuard, Options{})
	defer srv.Close()

	tests := []struct {
		password string
		want     int
	}{
		{AdminPassword, http.StatusOK},
		{"wrong", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		form := url.Values{"grant_type": {"password"}, "username": {AdminUser}, "password": {tt.password}}
		resp, err := http.Post(srv.URL+"/api/admins/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("password %q: status = %d, want %d", tt.password, resp.StatusCode, tt.want)
		}
	}
}

func TestUserStatusPrecedence(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		u    userRecord
		want string
	}{
		{"active", userRecord{enabled: true}, "active"},
		{"disabled wins", userRecord{enabled: false, limit: 1, used: 2}, "disabled"},
		{"limited", userRecord{enabled: true, limit: 10, used: 10}, "limited"},
		{"expired", userRecord{enabled: true, expire: now.Add(-time.Hour)}, "expired"},
		{"future expiry", userRecord{enabled: true, expire: now.Add(time.Hour)}, "active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.status(now); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		offset, limit int
		want          int
	}{
		{0, 0, 5},
		{0, 2, 2},
		{4, 2, 1},
		{5, 2, 0},
		{-1, 3, 3},
	}
	for _, tt := range tests {
		if got := window(items, tt.offset, tt.limit); len(got) != tt.want {
			t.Errorf("window(%d, %d) len = %d, want %d", tt.offset, tt.limit, len(got), tt.want)
		}
	}
}

func TestDuplicatesRejected(t *testing.T) {
	f, err := newFake(api.KindMarzban, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if f.addUser("alice", time.Time{}, 0, "") == nil {
		t.Fatal("first add failed")
	}
	if f.addUser("alice", time.Time{}, 0, "") != nil {
		t.Error("duplicate user accepted")
	}
	if f.addNode("n1", "10.0.0.1", 1) == nil || f.addNode("n2", "10.0.0.1", 1) != nil {
		t.Error("duplicate node address accepted")
	}
}
