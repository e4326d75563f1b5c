package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/auth"
	"github.com/rhuss/opexcore/pkg/auth/apikey"
	"github.com/rhuss/opexcore/pkg/config"
	"github.com/rhuss/opexcore/pkg/fleet"
	_ "github.com/rhuss/opexcore/pkg/panel/all"
	"github.com/rhuss/opexcore/pkg/panel/paneltest"
)

// setupFleet starts a marzban and a guard fake and returns a fleet with a
// profile for each.
func setupFleet(t *testing.T) *fleet.Fleet {
	t.Helper()

	marzban := paneltest.NewServer(api.KindMarzban, paneltest.Options{Users: 5, Nodes: 3})
	t.Cleanup(marzban.Close)
	guard := paneltest.NewServer(api.KindGuard, paneltest.Options{Users: 2, Nodes: 1})
	t.Cleanup(guard.Close)

	f, err := fleet.New([]config.PanelProfile{
		{Name: "edge", Kind: "marzban", Host: marzban.URL, Username: paneltest.AdminUser, Password: paneltest.AdminPassword},
		{Name: "core", Kind: "guard", Host: guard.URL, Username: paneltest.AdminUser, Password: paneltest.AdminPassword},
	})
	if err != nil {
		t.Fatalf("fleet.New: %v", err)
	}
	return f
}

// connect runs srv over in-memory transports and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcp.ClientSession {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() {
		_ = srv.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	var text strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	return text.String(), res.IsError
}

func TestListTools(t *testing.T) {
	cs := connect(t, New(setupFleet(t), "test").ForIdentity(nil))

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{ToolListProfiles, ToolListUsers, ToolListNodes, ToolGetStats, ToolOverview} {
		if !got[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}

func TestListProfiles(t *testing.T) {
	cs := connect(t, New(setupFleet(t), "test").ForIdentity(nil))

	text, isErr := call(t, cs, ToolListProfiles, map[string]any{})
	if isErr {
		t.Fatalf("list_profiles error: %s", text)
	}
	var out ProfilesOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if len(out.Profiles) != 2 || out.Profiles[0].Name != "edge" || out.Profiles[1].Kind != api.KindGuard {
		t.Errorf("profiles = %+v", out.Profiles)
	}
	if out.Profiles[0].LoggedIn {
		t.Error("profile reported logged in before any call")
	}
	if strings.Contains(text, paneltest.AdminPassword) {
		t.Error("password leaked into list_profiles")
	}
}

func TestListUsersAndNodes(t *testing.T) {
	cs := connect(t, New(setupFleet(t), "test").ForIdentity(nil))

	text, isErr := call(t, cs, ToolListUsers, map[string]any{"profile": "edge", "page": 2, "size": 2})
	if isErr {
		t.Fatalf("list_users error: %s", text)
	}
	var users api.Page[api.User]
	if err := json.Unmarshal([]byte(text), &users); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if len(users.Items) != 2 || users.Items[0].Username != "user-03" {
		t.Errorf("users page = %+v", users.Items)
	}
	if users.Total == nil || *users.Total != 5 {
		t.Errorf("users total = %v, want 5", users.Total)
	}

	text, isErr = call(t, cs, ToolListNodes, map[string]any{"profile": "core"})
	if isErr {
		t.Fatalf("list_nodes error: %s", text)
	}
	var nodes api.Page[api.Node]
	if err := json.Unmarshal([]byte(text), &nodes); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if len(nodes.Items) != 1 || nodes.Items[0].Name != "node-1" {
		t.Errorf("nodes = %+v", nodes.Items)
	}
}

func TestGetStatsAndOverview(t *testing.T) {
	cs := connect(t, New(setupFleet(t), "test").ForIdentity(nil))

	text, isErr := call(t, cs, ToolGetStats, map[string]any{"profile": "edge"})
	if isErr {
		t.Fatalf("get_stats error: %s", text)
	}
	var stats api.Stats
	if err := json.Unmarshal([]byte(text), &stats); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if stats.Users.Total == nil || *stats.Users.Total != 5 {
		t.Errorf("stats users total = %v, want 5", stats.Users.Total)
	}

	text, isErr = call(t, cs, ToolOverview, map[string]any{"profile": "edge", "size": 2})
	if isErr {
		t.Fatalf("overview error: %s", text)
	}
	var ov struct {
		Stats *api.Stats          `json:"stats"`
		Nodes *api.Page[api.Node] `json:"nodes"`
		Users *api.Page[api.User] `json:"users"`
	}
	if err := json.Unmarshal([]byte(text), &ov); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if ov.Stats == nil || ov.Nodes == nil || ov.Users == nil {
		t.Fatalf("overview missing parts: %s", text)
	}
	if len(ov.Users.Items) != 2 || len(ov.Nodes.Items) != 2 {
		t.Errorf("overview sizes: %d users, %d nodes; want 2 and 2", len(ov.Users.Items), len(ov.Nodes.Items))
	}
}

func TestUnknownProfile(t *testing.T) {
	cs := connect(t, New(setupFleet(t), "test").ForIdentity(nil))

	text, isErr := call(t, cs, ToolGetStats, map[string]any{"profile": "nope"})
	if !isErr {
		t.Fatalf("get_stats on unknown profile succeeded: %s", text)
	}
	var body struct {
		Error api.APIError `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if body.Error.Type != api.ErrorTypeInvalidRequest || body.Error.Param != "profile" {
		t.Errorf("error = %+v, want invalid_request on profile", body.Error)
	}
}

func TestIdentityScopesProfiles(t *testing.T) {
	srv := New(setupFleet(t), "test")
	id := &auth.Identity{Subject: "ops", Profiles: []string{"core"}}
	cs := connect(t, srv.ForIdentity(id))

	text, _ := call(t, cs, ToolListProfiles, map[string]any{})
	var out ProfilesOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if len(out.Profiles) != 1 || out.Profiles[0].Name != "core" {
		t.Errorf("scoped profiles = %+v, want only core", out.Profiles)
	}

	text, isErr := call(t, cs, ToolListUsers, map[string]any{"profile": "edge"})
	if !isErr || !strings.Contains(text, `unknown profile \"edge\"`) {
		t.Errorf("hidden profile result = %s (error %v)", text, isErr)
	}

	if srv.ForIdentity(id) != srv.ForIdentity(&auth.Identity{Subject: "ops"}) {
		t.Error("server not cached by subject")
	}
}

func TestBackendErrorSurfaces(t *testing.T) {
	srv := paneltest.NewServer(api.KindRemnawave, paneltest.Options{})
	defer srv.Close()
	f, err := fleet.New([]config.PanelProfile{
		{Name: "r", Kind: "remnawave", Host: srv.URL, Username: paneltest.AdminUser, Password: "wrong"},
	})
	if err != nil {
		t.Fatal(err)
	}
	cs := connect(t, New(f, "test").ForIdentity(nil))

	text, isErr := call(t, cs, ToolListNodes, map[string]any{"profile": "r"})
	if !isErr || !strings.Contains(text, string(api.ErrorTypeAuthentication)) {
		t.Errorf("list_nodes with bad credentials = %s (error %v)", text, isErr)
	}
}

func TestHandlerOverHTTP(t *testing.T) {
	srv := New(setupFleet(t), "test")
	chain := &auth.AuthChain{
		Authenticators: []auth.Authenticator{apikey.New([]apikey.RawKeyEntry{
			{Key: "k-edge", Identity: auth.Identity{Subject: "edge-only", Profiles: []string{"edge"}}},
		})},
		DefaultDecision: auth.No,
	}
	mux := http.NewServeMux()
	mux.Handle("/mcp", auth.Middleware(chain, nil, auth.DefaultBypassEndpoints)(srv.Handler()))
	hs := httptest.NewServer(mux)
	defer hs.Close()

	resp, err := http.Post(hs.URL+"/mcp", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{
		Endpoint:   hs.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: "k-edge"}},
	}, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer cs.Close()

	text, isErr := call(t, cs, ToolListProfiles, map[string]any{})
	if isErr {
		t.Fatalf("list_profiles error: %s", text)
	}
	var out ProfilesOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decoding %s: %v", text, err)
	}
	if len(out.Profiles) != 1 || out.Profiles[0].Name != "edge" {
		t.Errorf("profiles over HTTP = %+v, want only edge", out.Profiles)
	}
}

type bearerTransport struct {
	token string
}

func (b bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(r)
}
