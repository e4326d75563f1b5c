package marzneshin

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/decode"
	"github.com/rhuss/opexcore/pkg/panel"
)

func init() {
	panel.Register(api.KindMarzneshin, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the Marzneshin adapter.
type Panel struct {
	panel.Unsupported
	*panel.Base

	// userID is how user mutation paths address a user.
	userID   api.IDKind
	userKeys []string
	toUser   func(User) api.User
}

// Compile-time interface check.
var _ panel.Panel = (*Panel)(nil)

// New creates a Marzneshin adapter. Users are addressed by username.
func New(cfg panel.Config) *Panel {
	return NewVariant(api.KindMarzneshin, api.IDName, cfg)
}

// NewVariant creates the adapter for a backend that serves the Marzneshin
// paths but addresses users with the given identifier kind.
func NewVariant(kind api.Kind, userID api.IDKind, cfg panel.Config) *Panel {
	keys := []string{"username"}
	if userID == api.IDNumeric {
		keys = append(keys, "id")
	}
	return &Panel{
		Unsupported: panel.Unsupported{Backend: kind},
		Base:        panel.NewBase(kind, cfg),
		userID:      userID,
		userKeys:    keys,
		toUser:      userConverter(userID),
	}
}

// Capabilities returns what the backend supports.
func (p *Panel) Capabilities() panel.Capabilities {
	return panel.Capabilities{
		Kind:       p.Kind(),
		Pagination: panel.PaginationPage,
		UserID:     p.userID,
		NodeID:     api.IDNumeric,
		Ops: []panel.Op{
			panel.OpLogin, panel.OpCurrentAdmin,
			panel.OpListAdmins, panel.OpListUsers, panel.OpListNodes,
			panel.OpListServices, panel.OpListHosts, panel.OpListInbounds,
			panel.OpStats, panel.OpUsersStats, panel.OpNodesStats, panel.OpTrafficStats,
			panel.OpCreateUser, panel.OpUpdateUserStatus, panel.OpDeleteUser,
			panel.OpCreateNode, panel.OpDeleteNode,
		},
	}
}

// Login exchanges credentials for an access token. The sudo flag reported
// by the token endpoint takes precedence over token claims.
func (p *Panel) Login(ctx context.Context, host, username, password string) (*api.Session, error) {
	body, err := p.FormLogin(ctx, host, "/api/admins/token", username, password)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := decode.Object(body, &tok, "access_token"); err != nil {
		return nil, p.Wrap(panel.OpLogin, err)
	}
	sess, err := p.NewSession(host, username, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	if tok.IsSudo != nil {
		sess = sess.WithSudo(*tok.IsSudo)
	}
	return sess, nil
}

// CurrentAdmin returns the admin the token was issued to.
func (p *Panel) CurrentAdmin(ctx context.Context, sess *api.Session) (*api.Admin, error) {
	body, err := p.Get(ctx, sess, panel.OpCurrentAdmin, "/api/admins/current", nil)
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

// ListAdmins returns one page of admins.
func (p *Panel) ListAdmins(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Admin], error) {
	page, err := listPage[Admin](ctx, p, sess, panel.OpListAdmins, "/api/admins", req, "username")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToAdmin), nil
}

// ListUsers returns one page of users.
func (p *Panel) ListUsers(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.User], error) {
	page, err := listPage[User](ctx, p, sess, panel.OpListUsers, "/api/users", req, p.userKeys...)
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, p.toUser), nil
}

// ListNodes returns one page of nodes.
func (p *Panel) ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error) {
	page, err := listPage[Node](ctx, p, sess, panel.OpListNodes, "/api/nodes", req, "id", "name", "status")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToNode), nil
}

// ListServices returns one page of services.
func (p *Panel) ListServices(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Service], error) {
	page, err := listPage[Service](ctx, p, sess, panel.OpListServices, "/api/services", req, "id")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToService), nil
}

// ListInbounds returns one page of inbounds.
func (p *Panel) ListInbounds(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Inbound], error) {
	page, err := listPage[Inbound](ctx, p, sess, panel.OpListInbounds, "/api/inbounds", req, "id", "tag")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToInbound), nil
}

// ListHosts returns one page of hosts across all inbounds.
func (p *Panel) ListHosts(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Host], error) {
	page, err := listPage[Host](ctx, p, sess, panel.OpListHosts, "/api/inbounds/hosts", req, "remark")
	if err != nil {
		return nil, err
	}
	return api.MapPage(page, ToHost), nil
}

func listPage[T any](ctx context.Context, p *Panel, sess *api.Session, op panel.Op, path string, req api.PageRequest, required ...string) (*api.Page[T], error) {
	body, err := p.Get(ctx, sess, op, path, PageQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Echoed[T](body, req, required...)
	if err != nil {
		return nil, p.Wrap(op, err)
	}
	return page, nil
}

// UsersStats returns the user counters.
func (p *Panel) UsersStats(ctx context.Context, sess *api.Session) (*api.UserCounts, error) {
	var s UsersStats
	if err := p.getObject(ctx, sess, panel.OpUsersStats, "/api/system/stats/users", &s, "total"); err != nil {
		return nil, err
	}
	counts := ToUserCounts(s)
	return &counts, nil
}

// NodesStats returns the node counters.
func (p *Panel) NodesStats(ctx context.Context, sess *api.Session) (*api.NodeCounts, error) {
	var s NodesStats
	if err := p.getObject(ctx, sess, panel.OpNodesStats, "/api/system/stats/nodes", &s, "total"); err != nil {
		return nil, err
	}
	counts := ToNodeCounts(s)
	return &counts, nil
}

// AdminsStats returns the admin counters.
func (p *Panel) AdminsStats(ctx context.Context, sess *api.Session) (*AdminsStats, error) {
	var s AdminsStats
	if err := p.getObject(ctx, sess, "AdminsStats", "/api/system/stats/admins", &s, "total"); err != nil {
		return nil, err
	}
	return &s, nil
}

// Stats combines the users, nodes and admins stats, fetched concurrently.
func (p *Panel) Stats(ctx context.Context, sess *api.Session) (*api.Stats, error) {
	var (
		users  *api.UserCounts
		nodes  *api.NodeCounts
		admins *AdminsStats
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = p.UsersStats(ctx, sess)
		return err
	})
	g.Go(func() (err error) {
		nodes, err = p.NodesStats(ctx, sess)
		return err
	})
	g.Go(func() (err error) {
		admins, err = p.AdminsStats(ctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, p.Wrap(panel.OpStats, err)
	}
	return &api.Stats{
		Users:  *users,
		Nodes:  *nodes,
		Admins: api.Ptr(admins.Total),
	}, nil
}

// TrafficStats returns the traffic series in [start, end].
func (p *Panel) TrafficStats(ctx context.Context, sess *api.Session, start, end time.Time) (*api.TrafficStats, error) {
	if err := api.ValidateTimeRange(start, end); err != nil {
		return nil, p.Wrap(panel.OpTrafficStats, err)
	}
	q := url.Values{
		"start": {start.UTC().Format(time.RFC3339)},
		"end":   {end.UTC().Format(time.RFC3339)},
	}
	body, err := p.Get(ctx, sess, panel.OpTrafficStats, "/api/system/stats/traffic", q)
	if err != nil {
		return nil, err
	}
	var s TrafficStats
	if err := decode.Object(body, &s, "total"); err != nil {
		return nil, p.Wrap(panel.OpTrafficStats, err)
	}
	out := &api.TrafficStats{Start: start, End: end, Total: s.Total}
	for _, u := range s.Usages {
		out.Usages = append(out.Usages, api.TrafficUsage{At: u.At.Time, Bytes: u.Bytes})
	}
	return out, nil
}

// CreateUser creates a user attached to the services in ServiceIDs.
func (p *Panel) CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error) {
	if err := api.ValidateUserCreate(req, time.Now()); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateUser, "/api/users", toUserCreate(req))
	if err != nil {
		return nil, err
	}
	return p.userResult(panel.OpCreateUser, body)
}

// UpdateUserStatus enables or disables a user. ExpireAt is ignored.
func (p *Panel) UpdateUserStatus(ctx context.Context, sess *api.Session, id api.ID, upd api.UserStatusUpdate) (*api.Result[api.User], error) {
	path, err := p.userPath(panel.OpUpdateUserStatus, id)
	if err != nil {
		return nil, err
	}
	action := "/disable"
	if upd.Enabled {
		action = "/enable"
	}
	body, err := p.Post(ctx, sess, panel.OpUpdateUserStatus, path+action, nil)
	if err != nil {
		return nil, err
	}
	return p.userResult(panel.OpUpdateUserStatus, body)
}

// DeleteUser removes a user.
func (p *Panel) DeleteUser(ctx context.Context, sess *api.Session, id api.ID) (*api.Result[api.ID], error) {
	path, err := p.userPath(panel.OpDeleteUser, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.Delete(ctx, sess, panel.OpDeleteUser, path); err != nil {
		return nil, err
	}
	return api.Succeeded(&id), nil
}

// CreateNode registers a node. Port defaults to the marznode service port.
func (p *Panel) CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error) {
	if err := api.ValidateNodeCreate(req); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateNode, "/api/nodes", toNodeCreate(req))
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
	if _, err := p.Delete(ctx, sess, panel.OpDeleteNode, "/api/nodes/"+id.Value); err != nil {
		return nil, err
	}
	return api.Succeeded(&id), nil
}

func (p *Panel) userPath(op panel.Op, id api.ID) (string, error) {
	if err := id.Expect("id", p.userID); err != nil {
		return "", p.Wrap(op, err)
	}
	return "/api/users/" + url.PathEscape(id.Value), nil
}

func (p *Panel) userResult(op panel.Op, body []byte) (*api.Result[api.User], error) {
	var u User
	if err := decode.Object(body, &u, p.userKeys...); err != nil {
		return nil, p.Wrap(op, err)
	}
	user := p.toUser(u)
	return api.Succeeded(&user), nil
}

func (p *Panel) getObject(ctx context.Context, sess *api.Session, op panel.Op, path string, v any, required ...string) error {
	body, err := p.Get(ctx, sess, op, path, nil)
	if err != nil {
		return err
	}
	if err := decode.Object(body, v, required...); err != nil {
		return p.Wrap(op, err)
	}
	return nil
}
