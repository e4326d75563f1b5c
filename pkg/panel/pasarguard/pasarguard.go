package pasarguard

import (
	"context"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/decode"
	"github.com/rhuss/opexcore/pkg/panel"
	"github.com/rhuss/opexcore/pkg/panel/marzban"
)

func init() {
	panel.Register(api.KindPasarGuard, func(cfg panel.Config) panel.Panel { return New(cfg) })
}

// Panel is the PasarGuard adapter. Operations not overridden here are
// served by the embedded Marzban adapter.
type Panel struct {
	*marzban.Panel
}

// Compile-time interface check.
var _ panel.Panel = (*Panel)(nil)

// New creates a PasarGuard adapter.
func New(cfg panel.Config) *Panel {
	return &Panel{Panel: marzban.NewVariant(api.KindPasarGuard, cfg)}
}

// Capabilities returns what PasarGuard supports.
func (p *Panel) Capabilities() panel.Capabilities {
	return panel.Capabilities{
		Kind:       api.KindPasarGuard,
		Pagination: panel.PaginationOffset,
		UserID:     api.IDName,
		NodeID:     api.IDNumeric,
		Ops: []panel.Op{
			panel.OpLogin, panel.OpCurrentAdmin,
			panel.OpListAdmins, panel.OpListUsers, panel.OpListNodes,
			panel.OpListServices, panel.OpListHosts, panel.OpListInbounds,
			panel.OpStats, panel.OpUsersStats,
			panel.OpCreateUser, panel.OpUpdateUserStatus, panel.OpDeleteUser,
			panel.OpCreateNode, panel.OpDeleteNode,
		},
	}
}

// ListNodes returns one page of nodes. The backend reports no total.
func (p *Panel) ListNodes(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Node], error) {
	body, err := p.Get(ctx, sess, panel.OpListNodes, "/api/nodes", marzban.OffsetQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Flat[marzban.Node](body, req, "id", "name")
	if err != nil {
		return nil, p.Wrap(panel.OpListNodes, err)
	}
	return api.MapPage(page, marzban.ToNode), nil
}

// ListHosts returns one page of hosts.
func (p *Panel) ListHosts(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Host], error) {
	body, err := p.Get(ctx, sess, panel.OpListHosts, "/api/hosts", marzban.OffsetQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Flat[Host](body, req, "remark")
	if err != nil {
		return nil, p.Wrap(panel.OpListHosts, err)
	}
	return api.MapPage(page, ToHost), nil
}

// ListGroups returns one page of groups as reported by the backend.
func (p *Panel) ListGroups(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[Group], error) {
	body, err := p.Get(ctx, sess, panel.OpListServices, "/api/groups", marzban.OffsetQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Totaled[Group](body, "groups", "total", req, "id", "name")
	if err != nil {
		return nil, p.Wrap(panel.OpListServices, err)
	}
	return page, nil
}

// ListServices returns groups as services.
func (p *Panel) ListServices(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Service], error) {
	groups, err := p.ListGroups(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	return api.MapPage(groups, ToService), nil
}

// ListCores returns one page of core configurations.
func (p *Panel) ListCores(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[Core], error) {
	body, err := p.Get(ctx, sess, "ListCores", "/api/cores", marzban.OffsetQuery(req))
	if err != nil {
		return nil, err
	}
	page, err := decode.Totaled[Core](body, "cores", "count", req, "id", "name")
	if err != nil {
		return nil, p.Wrap("ListCores", err)
	}
	return page, nil
}

// ListInbounds returns the inbound tags.
func (p *Panel) ListInbounds(ctx context.Context, sess *api.Session, req api.PageRequest) (*api.Page[api.Inbound], error) {
	body, err := p.Get(ctx, sess, panel.OpListInbounds, "/api/inbounds", nil)
	if err != nil {
		return nil, err
	}
	tags, err := decode.List[string](body)
	if err != nil {
		return nil, p.Wrap(panel.OpListInbounds, err)
	}
	return api.Window(toInbounds(tags), req), nil
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

// TrafficStats is not offered by PasarGuard.
func (p *Panel) TrafficStats(context.Context, *api.Session, time.Time, time.Time) (*api.TrafficStats, error) {
	return nil, api.NewUnsupportedError(api.KindPasarGuard, string(panel.OpTrafficStats))
}

// CoreStats is not offered by PasarGuard; use ListCores.
func (p *Panel) CoreStats(context.Context, *api.Session) (*marzban.CoreStats, error) {
	return nil, api.NewUnsupportedError(api.KindPasarGuard, "CoreStats")
}

// CreateUser creates a user in the groups named by ServiceIDs.
func (p *Panel) CreateUser(ctx context.Context, sess *api.Session, req *api.UserCreate) (*api.Result[api.User], error) {
	if err := api.ValidateUserCreate(req, time.Now()); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateUser, "/api/user", toUserCreate(req))
	if err != nil {
		return nil, err
	}
	var u marzban.User
	if err := decode.Object(body, &u, "username", "status"); err != nil {
		return nil, p.Wrap(panel.OpCreateUser, err)
	}
	user := marzban.ToUser(u)
	return api.Succeeded(&user), nil
}

// CreateNode registers a node on the default core configuration. Key is
// sent as the node's api_key.
func (p *Panel) CreateNode(ctx context.Context, sess *api.Session, req *api.NodeCreate) (*api.Result[api.Node], error) {
	if err := api.ValidateNodeCreate(req); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	body, err := p.Post(ctx, sess, panel.OpCreateNode, "/api/node", toNodeCreate(req))
	if err != nil {
		return nil, err
	}
	var n marzban.Node
	if err := decode.Object(body, &n, "id", "name"); err != nil {
		return nil, p.Wrap(panel.OpCreateNode, err)
	}
	node := marzban.ToNode(n)
	return api.Succeeded(&node), nil
}
