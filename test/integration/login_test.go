package integration

import (
	"context"
	"testing"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
	"github.com/rhuss/opexcore/pkg/panel/paneltest"
)

func TestLoginProducesSession(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind api.Kind) {
		b := newBackend(t, kind, paneltest.Options{})

		if b.sess.Kind() != kind {
			t.Errorf("session kind = %s, want %s", b.sess.Kind(), kind)
		}
		if b.sess.Host() != b.srv.URL {
			t.Errorf("session host = %q, want %q", b.sess.Host(), b.srv.URL)
		}
		if b.sess.Token() == "" {
			t.Error("session token is empty")
		}
		if _, ok := b.sess.ExpiresAt(); !ok {
			t.Error("token expiry not read from claims")
		}
	})
}

func TestInvalidLogin(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind api.Kind) {
		srv := paneltest.NewServer(kind, paneltest.Options{})
		defer srv.Close()
		p, err := panel.New(kind, panel.Config{})
		if err != nil {
			t.Fatal(err)
		}

		sess, err := p.Login(context.Background(), srv.URL, paneltest.AdminUser, "not-the-password")
		if sess != nil {
			t.Error("session returned for bad credentials")
		}
		apiErr, ok := api.AsAPIError(err)
		if !ok {
			t.Fatalf("Login error = %v, want *api.APIError", err)
		}
		if apiErr.Type != api.ErrorTypeAuthentication {
			t.Errorf("error type = %s, want authentication_error (%v)", apiErr.Type, err)
		}
		if apiErr.Backend != kind {
			t.Errorf("error backend = %s, want %s", apiErr.Backend, kind)
		}
	})
}

func TestForgedTokenRejected(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind api.Kind) {
		b := newBackend(t, kind, paneltest.Options{Users: 1})

		forged, err := api.NewSession(kind, b.srv.URL, paneltest.AdminUser, "forged.token.value")
		if err != nil {
			t.Fatal(err)
		}
		_, err = b.panel.ListUsers(context.Background(), forged, api.FirstPage(10))
		if !api.IsType(err, api.ErrorTypeAuthentication) {
			t.Errorf("ListUsers with forged token = %v, want authentication_error", err)
		}
	})
}

func TestSessionBoundToKind(t *testing.T) {
	b := newBackend(t, api.KindMarzban, paneltest.Options{})
	other, err := panel.New(api.KindGuard, panel.Config{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = other.ListUsers(context.Background(), b.sess, api.FirstPage(10))
	if !api.IsType(err, api.ErrorTypeInvalidRequest) {
		t.Errorf("foreign session error = %v, want invalid_request", err)
	}
}

func TestCurrentAdmin(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind api.Kind) {
		b := newBackend(t, kind, paneltest.Options{})
		b.supports(t, panel.OpCurrentAdmin)

		admin, err := b.panel.CurrentAdmin(context.Background(), b.sess)
		if err != nil {
			t.Fatalf("CurrentAdmin: %v", err)
		}
		if admin.Username != paneltest.AdminUser {
			t.Errorf("admin username = %q, want %q", admin.Username, paneltest.AdminUser)
		}
	})
}
