package tools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/auth"
	"github.com/rhuss/opexcore/pkg/debug"
	"github.com/rhuss/opexcore/pkg/fleet"
	"github.com/rhuss/opexcore/pkg/observability"
)

// Tool names.
const (
	ToolListProfiles = "list_profiles"
	ToolListUsers    = "list_users"
	ToolListNodes    = "list_nodes"
	ToolGetStats     = "get_stats"
	ToolOverview     = "overview"
)

// Server builds MCP servers over a fleet, one per caller subject.
type Server struct {
	fleet   *fleet.Fleet
	version string

	mu      sync.Mutex
	servers map[string]*mcp.Server
}

// New creates a tool server for f.
func New(f *fleet.Fleet, version string) *Server {
	return &Server{
		fleet:   f,
		version: version,
		servers: make(map[string]*mcp.Server),
	}
}

// Handler serves the tools over streamable HTTP. The identity placed in
// the request context by auth.Middleware selects the visible profiles; a
// request without identity sees every profile.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.ForIdentity(auth.IdentityFromContext(r.Context()))
	}, nil)
}

// ForIdentity returns the MCP server scoped to id. Servers are cached by
// subject.
func (s *Server) ForIdentity(id *auth.Identity) *mcp.Server {
	key := ""
	if id != nil {
		key = id.Subject
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if srv, ok := s.servers[key]; ok {
		return srv
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "opexcore", Version: s.version}, nil)
	t := &toolset{fleet: s.fleet, scope: newScope(id)}
	t.register(srv)
	s.servers[key] = srv

	debug.Log("mcp", "tool server created", "subject", key, "profiles", t.scope.names(s.fleet.Names()))
	return srv
}

// reply renders v as the JSON text of a tool result, or err as an error
// result. Both outcomes are counted.
func reply(tool string, v any, err error) (*mcp.CallToolResult, any, error) {
	observability.ToolCallsTotal.WithLabelValues(tool, observability.Outcome(err)).Inc()
	if err != nil {
		slog.Warn("tool call failed", "tool", tool, "error", err)
		return errorResult(err), nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

type errorBody struct {
	Error *api.APIError `json:"error"`
}

func errorResult(err error) *mcp.CallToolResult {
	apiErr, ok := api.AsAPIError(err)
	if !ok {
		apiErr = &api.APIError{Type: "error", Message: err.Error()}
	}
	data, _ := json.Marshal(errorBody{Error: apiErr})
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
