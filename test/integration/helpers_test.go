// Package integration runs the same scenarios against every panel kind.
//
// Each test starts a stateful paneltest fake in-process with
// net/http/httptest and drives it through the adapter registered for that
// kind, exactly as a caller of pkg/panel would.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
	_ "github.com/rhuss/opexcore/pkg/panel/all"
	"github.com/rhuss/opexcore/pkg/panel/paneltest"
)

// backend is one logged-in adapter talking to its fake.
type backend struct {
	kind  api.Kind
	srv   *paneltest.Server
	panel panel.Panel
	sess  *api.Session
}

// newBackend starts a fake of the given kind and logs in to it.
func newBackend(t *testing.T, kind api.Kind, opts paneltest.Options) *backend {
	t.Helper()

	srv := paneltest.NewServer(kind, opts)
	t.Cleanup(srv.Close)

	p, err := panel.New(kind, panel.Config{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("panel.New(%s): %v", kind, err)
	}
	sess, err := p.Login(context.Background(), srv.URL, paneltest.AdminUser, paneltest.AdminPassword)
	if err != nil {
		t.Fatalf("%s login: %v", kind, err)
	}
	return &backend{kind: kind, srv: srv, panel: p, sess: sess}
}

// forEachKind runs fn as a subtest for every supported backend.
func forEachKind(t *testing.T, fn func(t *testing.T, kind api.Kind)) {
	t.Helper()
	for _, kind := range api.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			fn(t, kind)
		})
	}
}

// supports skips the test when the backend lacks op.
func (b *backend) supports(t *testing.T, op panel.Op) {
	t.Helper()
	if !b.panel.Capabilities().Supports(op) {
		t.Skipf("%s does not support %s", b.kind, op)
	}
}

// allUsers lists users with a page large enough to hold the whole store.
func (b *backend) allUsers(t *testing.T) []api.User {
	t.Helper()
	page, err := b.panel.ListUsers(context.Background(), b.sess, api.FirstPage(100))
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	return page.Items
}

func (b *backend) allNodes(t *testing.T) []api.Node {
	t.Helper()
	page, err := b.panel.ListNodes(context.Background(), b.sess, api.FirstPage(100))
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	return page.Items
}

func findUser(users []api.User, name string) (api.User, bool) {
	for _, u := range users {
		if u.Username == name {
			return u, true
		}
	}
	return api.User{}, false
}

func findNode(nodes []api.Node, name string) (api.Node, bool) {
	for _, n := range nodes {
		if n.Name == name {
			return n, true
		}
	}
	return api.Node{}, false
}

// userCreate builds a request every backend accepts.
func userCreate(name string) *api.UserCreate {
	expire := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	return &api.UserCreate{
		Username:  name,
		ExpireAt:  &expire,
		DataLimit: api.Ptr(int64(10 << 30)),
		Note:      "integration",
	}
}

// nodeCreate builds a request every backend accepts.
func nodeCreate(name, address string) *api.NodeCreate {
	return &api.NodeCreate{
		Name:        name,
		Address:     address,
		Port:        62050,
		APIPort:     62051,
		Key:         "node-key",
		ServicePort: 1194,
		Enabled:     true,
	}
}
