package marzban

import (
	"context"
	"net/url"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/decode"
	"github.com/rhuss/opexcore/pkg/panel"
)

func init() {
	panel.Register(api.KindMarzban, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the Marzban adapter.
type Panel struct {
	panel.Unsupported
	*panel.Base
}

// Compile-time interface check.
var _ panel.Panel = (*Panel)(nil)

// New creates a Marzban adapter.
func New(cfg panel.Config) *Panel {
	return NewVariant(api.KindMarzban, cfg)
}

// NewVariant creates the adapter labeled with another kind, for backends
// that extend the Marzban API.
func NewVariant(kind api.Kind, cfg panel.Config) *Panel {
	return &Panel{
		Unsupported: panel.Unsupported{Backend: kind},
		Base:        panel.NewBase(kind, cfg),
	}
}

// Capabilities returns what Marzban supports.
func (p *Panel) Capabilities() panel.Capabilities {
	return panel.Capabilities{
		Kind:       p.Kind(),
		Pagination: panel.PaginationOffset,
		UserID:     api.IDName,
		NodeID:     api.IDNumeric,
		Ops: []panel.Op{
			panel.OpLogin, panel.OpCurrentAdmin,
			panel.OpListAdmins, panel.OpListUsers, panel.OpListNodes, panel.OpListInbounds,
			panel.OpStats, panel.OpUsersStats, panel.OpTrafficStats,
			panel.OpCreateUser, panel.OpUpdateUserStatus, panel.OpDeleteUser,
			panel.OpCreateNode, panel.OpDeleteNode,
		},
	}
}

// Login exchanges credentials for an access token.
func (p *Panel) Login(ctx context.Context, host, username, password string) (*api.Session, error) {
	body, err := p.FormLogin(ctx, host, "/api/admin/token", username, password)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := decode.Object(body, &tok, "access_token"); err != nil {
		return nil, p.Wrap(panel.OpLogin, err)
	}
	return p.NewSession(host, username, tok.AccessToken)
}

// CurrentAdmin returns the admin the token was issued to.
func (p *Panel) CurrentAdmin(ctx context.Context, sess *api.Session) (*api.Admin, error) {
	body, err := p.Get(ctx, sess, panel.OpCurrentAdmin, "/api/admin", nil)
	if err != nil {
		return nil, err
	}
	var a Admin
	if err := decode.Object(body, &a, "username"); err != nil {
		return nil, p.Wrap(panel.OpCurrentAdmin, err)
	}
	admin := ToAdmin(a)
	return &admin, nil
}

// ListAdmins returns one page of admins. The backend reports no total.
func (p *Panel) ListAdmins(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Admin], error) {
	body, err := p.Get(ctx, sess, panel.OpListAdmins, "/api/admins", OffsetQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Flat[Admin](body, req, "username")
	if err != nil {
		return nil, p.Wrap(panel.OpListAdmins, err)
	}
	return api.MapPage(page, ToAdmin), nil
}

// ListUsers returns one page of users with the backend's total.
func (p *Panel) ListUsers(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.User], error) {
	body, err := p.Get(ctx, sess, panel.OpListUsers, "/api/users", OffsetQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Totaled[User](body, "users", "total", req, "username", "status")
	if err != nil {
		return nil, p.Wrap(panel.OpListUsers, err)
	}
	return api.MapPage(page, ToUser), nil
}

// ListNodes fetches every node and returns the requested window.
func (p *Panel) ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error) {
	body, err := p.Get(ctx, sess, panel.OpListNodes, "/api/nodes", nil)
	if err != nil {
		return nil, err
	}
	nodes, err := decode.List[Node](body, "id", "name")
	if err != nil {
		return nil, p.Wrap(panel.OpListNodes, err)
	}
	return api.MapPage(api.Window(nodes, req), ToNode), nil
}

// ListInbounds returns the configured inbounds ordered by protocol.
func (p *Panel) ListInbounds(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Inbound], error) {
	body, err := p.Get(ctx, sess, panel.OpListInbounds, "/api/inbounds", nil)
	if err != nil {
		return nil, err
	}
	var byProto map[string][]Inbound
	if err := decode.Object(body, &byProto); err != nil {
		return nil, p.Wrap(panel.OpListInbounds, err)
	}
	return api.Window(flattenInbounds(byProto), req), nil
}

// SystemStats returns the raw /api/system response.
func (p *Panel) SystemStats(ctx context.Context, sess *api.Session) (*SystemStats, error) {
	body, err := p.Get(ctx, sess, panel.OpStats, "/api/system", nil)
	if err != nil {
		return nil, err
	}
	var s SystemStats
	if err := decode.Object(body, &s, "total_user"); err != nil {
		return nil, p.Wrap(panel.OpStats, err)
	}
	return &s, nil
}

// Stats returns system and user counters.
func (p *Panel) Stats(ctx context.Context, sess *api.Session) (*api.Stats, error) {
	s, err := p.SystemStats(ctx, sess)
	if err != nil {
		return nil, err
	}
	stats := ToStats(*s)
	return &stats, nil
}

// UsersStats returns the user counters of /api/system.
func (p *Panel) UsersStats(ctx context.Context, sess *api.Session) (*api.UserCounts, error) {
	s, err := p.SystemStats(ctx, sess)
	if err != nil {
		return nil, p.Wrap(panel.OpUsersStats, err)
	}
	counts := ToUserCounts(*s)
	return &counts, nil
}

// TrafficStats sums node uplink and downlink in [start, end]. Each node
// contributes one usage entry stamped with start.
func (p *Panel) TrafficStats(ctx context.Context, sess *api.Session, start, end time.Time) (*api.TrafficStats, error) {
	if err := api.ValidateTimeRange(start, end); err != nil {
		return nil, p.Wrap(panel.OpTrafficStats, err)
	}
	q := url.Values{"start": {usageWindow(start)}, "end": {usageWindow(end)}}
	body, err := p.Get(ctx, sess, panel.OpTrafficStats, "/api/nodes/usage", q)
	if err != nil {
		return nil, err
	}
	var usage nodesUsage
	if err := decode.Object(body, &usage, "usages"); err != nil {
		return nil, p.Wrap(panel.OpTrafficStats, err)
	}
	out := &api.TrafficStats{Start: start, End: end}
	for _, u := range usage.Usages {
		bytes := u.Uplink + u.Downlink
		out.Total += bytes
		out.Usages = append(out.Usages, api.TrafficUsage{At: start, Bytes: bytes})
	}
	return out, nil
}

// CoreStats returns the Xray core version and state.
func (p *Panel) CoreStats(ctx context.Context, sess *api.Session) (*CoreStats, error) {
	body, err := p.Get(ctx, sess, "CoreStats", "/api/core", nil)
	if err != nil {
		return nil, err
	}
	var c CoreStats
	if err := decode.Object(body, &c, "version"); err != nil {
		return nil, p.Wrap("CoreStats", err)
	}
	return &c, nil
}

// CreateUser creates a user. The returned user's ID is its username.
func (p *Panel) CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error) {
	if err := api.ValidateUserCreate(req, time.Now()); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateUser, "/api/user", toUserCreate(req))
	if err != nil {
		return nil, err
	}
	return p.userResult(panel.OpCreateUser, body)
}

// UpdateUserStatus sets a user active or disabled.
func (p *Panel) UpdateUserStatus(ctx context.Context, sess *api.Session, id api.ID, upd api.UserStatusUpdate) (*api.Result[api.User], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpUpdateUserStatus, err)
	}
	body, err := p.Put(ctx, sess, panel.OpUpdateUserStatus, "/api/user/"+url.PathEscape(id.Value), toUserModify(upd))
	if err != nil {
		return nil, err
	}
	return p.userResult(panel.OpUpdateUserStatus, body)
}

// DeleteUser removes a user.
func (p *Panel) DeleteUser(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDName); err != nil {
		return nil, p.Wrap(panel.OpDeleteUser, err)
	}
	if _, err := p.Delete(ctx, sess, panel.OpDeleteUser, "/api/user/"+url.PathEscape(id.Value)); err != nil {
		return nil, err
	}
	return api.Succeeded(&id), nil
}

// CreateNode registers a node. The returned node's ID is numeric.
func (p *Panel) CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error) {
	if err := api.ValidateNodeCreate(req); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateNode, "/api/node", toNodeCreate(req))
	if err != nil {
		return nil, err
	}
	var n Node
	if err := decode.Object(body, &n, "id", "name"); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	node := ToNode(n)
	return api.Succeeded(&node), nil
}

// DeleteNode removes a node.
func (p *Panel) DeleteNode(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	if err := id.Expect("id", api.IDNumeric); err != nil {
		return nil, p.Wrap(panel.OpDeleteNode, err)
	}
	if _, err := p.Delete(ctx, sess, panel.OpDeleteNode, "/api/node/"+id.Value); err != nil {
		return nil, err
	}
	return api.Succeeded(&id), nil
}

func (p *Panel) userResult(op panel.Op, body []byte) (*api.Result[api.User], error) {
	var u User
	if err := decode.Object(body, &u, "username", "status"); err != nil {
		return nil, p.Wrap(op, err)
	}
	user := ToUser(u)
	return api.Succeeded(&user), nil
}

