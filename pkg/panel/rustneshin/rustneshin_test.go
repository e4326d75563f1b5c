package rustneshin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
	"github.com/rhuss/opexcore/pkg/panel/paneltest"
)

func TestUsersAddressedByID(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users":
			paneltest.WriteJSON(w, http.StatusOK, map[string]any{
				"items": []map[string]any{
					{"id": 21, "username": "frank", "status": "limited", "enabled": true, "activated": true, "is_active": false},
					{"id": 22, "username": "grace", "status": "on_hold", "enabled": true, "activated": false},
				},
				"total": 2, "page": 1, "size": 10, "pages": 1,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/21/enable":
			paneltest.WriteJSON(w, http.StatusOK, map[string]any{"id": 21, "username": "frank", "status": "active", "enabled": true})
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	p := New(panel.Config{Timeout: 5 * time.Second})
	defer p.Close()
	sess := paneltest.Session(t, api.KindRustneshin, srv.URL)
	ctx := context.Background()

	page, err := p.ListUsers(ctx, sess, api.FirstPage(10))
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	frank := page.Items[0]
	if frank.ID != api.NumericID(21) {
		t.Fatalf("ID = %+v, want numeric 21", frank.ID)
	}
	if frank.Status.State != api.StateLimited || frank.Status.Raw != "limited" {
		t.Errorf("status = %+v", frank.Status)
	}
	if page.Items[1].Status.State != api.StateOnHold {
		t.Errorf("grace status = %+v", page.Items[1].Status)
	}

	res, err := p.UpdateUserStatus(ctx, sess, frank.ID, api.UserStatusUpdate{Enabled: true})
	if err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	if res.Record.Status.State != api.StateActive {
		t.Errorf("status = %+v", res.Record.Status)
	}

	if _, err := p.DeleteUser(ctx, sess, frank.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted != "/api/users/21" {
		t.Errorf("deleted = %q", deleted)
	}

	if _, err := p.DeleteUser(ctx, sess, api.NameID("frank")); !api.IsType(err, api.ErrorTypeInvalidRequest) {
		t.Errorf("username id: err = %v, want invalid_request", err)
	}
}

func TestServiceUserCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paneltest.WriteJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{"id": 1, "name": "main", "inbound_ids": []int{1, 2}, "user_count": 40}},
			"total": 1, "page": 1, "size": 10,
		})
	}))
	defer srv.Close()
	p := New(panel.Config{})
	defer p.Close()

	page, err := p.ListServices(context.Background(), paneltest.Session(t, api.KindRustneshin, srv.URL), api.FirstPage(10))
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	if *page.Items[0].UserCount != 40 {
		t.Errorf("UserCount = %d", *page.Items[0].UserCount)
	}
}

func TestCapabilities(t *testing.T) {
	p, err := panel.New(api.KindRustneshin, panel.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	caps := p.Capabilities()
	if caps.Kind != api.KindRustneshin || caps.UserID != api.IDNumeric || caps.NodeID != api.IDNumeric {
		t.Errorf("caps = %+v", caps)
	}
}

func TestUserWithoutIDIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/users":
			paneltest.WriteJSON(w, http.StatusOK, map[string]any{"username": "testuser", "status": "active", "enabled": true})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users":
			paneltest.WriteJSON(w, http.StatusOK, map[string]any{
				"items": []map[string]any{{"username": "testuser", "status": "active", "enabled": true}},
				"total": 1, "page": 1, "size": 10, "pages": 1,
			})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	p := New(panel.Config{Timeout: 5 * time.Second})
	defer p.Close()
	sess := paneltest.Session(t, api.KindRustneshin, srv.URL)
	ctx := context.Background()

	_, err := p.CreateUser(ctx, sess, &api.UserCreate{Username: "testuser"})
	if !api.IsType(err, api.ErrorTypeDecode) {
		t.Errorf("CreateUser err = %v, want decode_error", err)
	}
	if apiErr, ok := api.AsAPIError(err); ok && apiErr.Param != "id" {
		t.Errorf("Param = %q, want id", apiErr.Param)
	}

	if _, err := p.ListUsers(ctx, sess, api.FirstPage(10)); !api.IsType(err, api.ErrorTypeDecode) {
		t.Errorf("ListUsers err = %v, want decode_error", err)
	}
}
