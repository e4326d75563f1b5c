// Package paneltest provides in-process fake panels and helpers for testing
// code built on pkg/panel.
//
// Each fake serves the subset of its backend's REST API that the adapter
// uses, keeps users and nodes in memory, and issues JWT access tokens shaped
// like the real backend's. Fakes are safe for concurrent use.
//
//	srv := paneltest.NewServer(api.KindMarzban, paneltest.Options{})
//	defer srv.Close()
//	sess, err := p.Login(ctx, srv.URL, paneltest.AdminUser, paneltest.AdminPassword)
package paneltest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
)

// Default credentials accepted by every fake.
const (
	AdminUser     = "admin"
	AdminPassword = "admin-password"
)

var signingKey = []byte("paneltest-signing-key")

// MintToken signs claims as an HS256 JWT.
func MintToken(claims map[string]any) string {
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims(claims)).SignedString(signingKey)
	if err != nil {
		panic("paneltest: signing token: " + err.Error())
	}
	return tok
}

// ParseToken verifies a token minted by MintToken and returns its claims.
func ParseToken(token string) (map[string]any, bool) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) { return signingKey, nil },
		jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithExpirationRequired())
	if err != nil {
		return nil, false
	}
	return claims, true
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteDetail writes a FastAPI-style {"detail": msg} error.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"detail": msg})
}

// Session builds a session for tests that do not exercise Login.
func Session(t testing.TB, kind api.Kind, host string) *api.Session {
	t.Helper()
	tok := MintToken(map[string]any{"sub": AdminUser, "exp": time.Now().Add(time.Hour).Unix()})
	sess, err := api.NewSession(kind, host, AdminUser, tok)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

// CheckUnsupported calls every operation p does not declare in its
// Capabilities and fails t unless each returns an unsupported error.
func CheckUnsupported(t *testing.T, p panel.Panel, sess *api.Session) {
	t.Helper()
	ctx := context.Background()
	caps := p.Capabilities()
	page := api.FirstPage(1)
	now := time.Now()

	calls := map[panel.Op]func() error{
		panel.OpListAdmins:   func() error { _, err := p.ListAdmins(ctx, sess, page); return err },
		panel.OpListUsers:    func() error { _, err := p.ListUsers(ctx, sess, page); return err },
		panel.OpListNodes:    func() error { _, err := p.ListNodes(ctx, sess, page); return err },
		panel.OpListServices: func() error { _, err := p.ListServices(ctx, sess, page); return err },
		panel.OpListHosts:    func() error { _, err := p.ListHosts(ctx, sess, page); return err },
		panel.OpListInbounds: func() error { _, err := p.ListInbounds(ctx, sess, page); return err },
		panel.OpStats:        func() error { _, err := p.Stats(ctx, sess); return err },
		panel.OpUsersStats:   func() error { _, err := p.UsersStats(ctx, sess); return err },
		panel.OpNodesStats:   func() error { _, err := p.NodesStats(ctx, sess); return err },
		panel.OpTrafficStats: func() error {
			_, err := p.TrafficStats(ctx, sess, now.Add(-time.Hour), now)
			return err
		},
		panel.OpCreateUser: func() error {
			_, err := p.CreateUser(ctx, sess, &api.UserCreate{Username: "probe"})
			return err
		},
		panel.OpUpdateUserStatus: func() error {
			_, err := p.UpdateUserStatus(ctx, sess, api.NameID("probe"), api.UserStatusUpdate{})
			return err
		},
		panel.OpDeleteUser: func() error { _, err := p.DeleteUser(ctx, sess, api.NameID("probe")); return err },
		panel.OpCreateNode: func() error {
			_, err := p.CreateNode(ctx, sess, &api.NodeCreate{Name: "probe", Address: "10.0.0.1"})
			return err
		},
		panel.OpDeleteNode: func() error { _, err := p.DeleteNode(ctx, sess, api.NumericID(1)); return err },
	}

	for op, call := range calls {
		if caps.Supports(op) {
			continue
		}
		if err := call(); !api.IsType(err, api.ErrorTypeUnsupported) {
			t.Errorf("%s: %s is not declared but returned %v, want unsupported", caps.Kind, op, err)
		}
	}
}
