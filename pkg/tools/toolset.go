package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/fleet"
	"github.com/rhuss/opexcore/pkg/panel"
)

// ProfileInput selects a panel profile.
type ProfileInput struct {
	Profile string `json:"profile" jsonschema:"name of the panel profile"`
}

// ListInput selects a profile and a page.
type ListInput struct {
	Profile string `json:"profile" jsonschema:"name of the panel profile"`
	Page    int    `json:"page,omitempty" jsonschema:"1-based page number"`
	Size    int    `json:"size,omitempty" jsonschema:"page size; 0 returns the backend default"`
}

// ProfilesOutput is the result of list_profiles.
type ProfilesOutput struct {
	Profiles []fleet.Info `json:"profiles"`
}

type toolset struct {
	fleet *fleet.Fleet
	scope scope
}

func (t *toolset) register(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        ToolListProfiles,
		Description: "Lists the configured panel profiles with their backend kind, supported operations and session state",
	}, t.listProfiles)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        ToolListUsers,
		Description: "Lists one page of users (subscriptions) of a panel",
	}, t.listUsers)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        ToolListNodes,
		Description: "Lists one page of proxy nodes of a panel with their normalized status",
	}, t.listNodes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        ToolGetStats,
		Description: "Returns panel-wide user, node and system counters",
	}, t.getStats)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        ToolOverview,
		Description: "Fetches stats, nodes and users of a panel concurrently",
	}, t.overview)
}

// member resolves a visible profile. Hidden profiles are reported as unknown.
func (t *toolset) member(profile string) (*fleet.Member, error) {
	if !t.scope.allows(profile) {
		return nil, api.NewInvalidRequestError("profile", fmt.Sprintf("unknown profile %q", profile))
	}
	return t.fleet.Member(profile)
}

func (t *toolset) listProfiles(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	out := ProfilesOutput{Profiles: []fleet.Info{}}
	for _, name := range t.scope.names(t.fleet.Names()) {
		m, err := t.fleet.Member(name)
		if err != nil {
			return reply(ToolListProfiles, nil, err)
		}
		out.Profiles = append(out.Profiles, m.Info())
	}
	return reply(ToolListProfiles, out, nil)
}

func (t *toolset) listUsers(ctx context.Context, _ *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, any, error) {
	m, err := t.member(in.Profile)
	if err != nil {
		return reply(ToolListUsers, nil, err)
	}
	page, err := fleet.Call(ctx, m, func(ctx context.Context, sess *api.Session) (*api.Page[api.User], error) {
		return m.Panel.ListUsers(ctx, sess, api.PageRequest{Page: in.Page, Size: in.Size})
	})
	return reply(ToolListUsers, page, err)
}

func (t *toolset) listNodes(ctx context.Context, _ *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, any, error) {
	m, err := t.member(in.Profile)
	if err != nil {
		return reply(ToolListNodes, nil, err)
	}
	page, err := fleet.Call(ctx, m, func(ctx context.Context, sess *api.Session) (*api.Page[api.Node], error) {
		return m.Panel.ListNodes(ctx, sess, api.PageRequest{Page: in.Page, Size: in.Size})
	})
	return reply(ToolListNodes, page, err)
}

func (t *toolset) getStats(ctx context.Context, _ *mcp.CallToolRequest, in ProfileInput) (*mcp.CallToolResult, any, error) {
	m, err := t.member(in.Profile)
	if err != nil {
		return reply(ToolGetStats, nil, err)
	}
	stats, err := fleet.Call(ctx, m, func(ctx context.Context, sess *api.Session) (*api.Stats, error) {
		return m.Panel.Stats(ctx, sess)
	})
	return reply(ToolGetStats, stats, err)
}

func (t *toolset) overview(ctx context.Context, _ *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, any, error) {
	m, err := t.member(in.Profile)
	if err != nil {
		return reply(ToolOverview, nil, err)
	}
	res, err := fleet.Call(ctx, m, func(ctx context.Context, sess *api.Session) (*panel.OverviewResult, error) {
		return panel.Overview(ctx, m.Panel, sess, api.PageRequest{Page: in.Page, Size: in.Size})
	})
	return reply(ToolOverview, res, err)
}
