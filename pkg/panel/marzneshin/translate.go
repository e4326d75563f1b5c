package marzneshin

import (
	"net/url"
	"strconv"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

// ToAdmin converts an admin. Admins are addressed by username.
func ToAdmin(a Admin) api.Admin {
	return api.Admin{
		ID:          api.NameID(a.Username),
		Username:    a.Username,
		Sudo:        api.Ptr(a.IsSudo),
		Enabled:     a.Enabled,
		UsedTraffic: a.UsersDataUsage,
		Detail:      a,
	}
}

// UserStatus derives a user's status. A status string reported by the
// backend wins; otherwise the first deciding flag is used.
func UserStatus(u User) api.Status {
	if u.Status != nil && *u.Status != "" {
		return api.ParseStatus(*u.Status)
	}
	switch {
	case !u.Enabled:
		return api.FlagStatus("enabled", false, api.StateActive, api.StateDisabled)
	case u.Expired:
		return api.FlagStatus("expired", true, api.StateExpired, api.StateActive)
	case u.DataLimitReached:
		return api.FlagStatus("data_limit_reached", true, api.StateLimited, api.StateActive)
	case !u.Activated:
		return api.FlagStatus("activated", false, api.StateActive, api.StateOnHold)
	default:
		return api.FlagStatus("enabled", true, api.StateActive, api.StateDisabled)
	}
}

// userConverter returns the conversion for a user addressing scheme. A
// numeric scheme never falls back to the username.
func userConverter(scheme api.IDKind) func(User) api.User {
	return func(u User) api.User {
		out := api.User{
			Username:        u.Username,
			Status:          UserStatus(u),
			UsedTraffic:     api.Ptr(u.UsedTraffic),
			DataLimit:       u.DataLimit,
			ExpireAt:        u.ExpireDate.Ptr(),
			OnlineAt:        u.OnlineAt.Ptr(),
			SubscriptionURL: u.SubscriptionURL,
			Detail:          u,
		}
		switch {
		case scheme != api.IDNumeric:
			out.ID = api.NameID(u.Username)
		case u.ID != nil:
			out.ID = api.NumericID(*u.ID)
		}
		if u.Note != nil {
			out.Note = *u.Note
		}
		return out
	}
}

// ToNode converts a node. Nodes are addressed by integer id.
func ToNode(n Node) api.Node {
	out := api.Node{
		ID:      api.NumericID(n.ID),
		Name:    n.Name,
		Status:  api.ParseStatus(n.Status),
		Address: n.Address,
		Detail:  n,
	}
	if n.Port != 0 {
		out.Port = api.Ptr(n.Port)
	}
	if n.XrayVersion != nil {
		out.Version = *n.XrayVersion
	}
	if n.Message != nil {
		out.Message = *n.Message
	}
	return out
}

// ToService converts a service. Unnamed services are named by id.
func ToService(s Service) api.Service {
	out := api.Service{
		ID:        api.NumericID(s.ID),
		UserCount: s.UserCount,
		Detail:    s,
	}
	if s.Name != nil {
		out.Name = *s.Name
	} else {
		out.Name = "service-" + strconv.FormatInt(s.ID, 10)
	}
	if out.UserCount == nil && s.UserIDs != nil {
		out.UserCount = api.Ptr(len(s.UserIDs))
	}
	return out
}

// ToInbound converts an inbound.
func ToInbound(in Inbound) api.Inbound {
	return api.Inbound{
		ID:       api.NumericID(in.ID),
		Tag:      in.Tag,
		Protocol: in.Protocol,
		Detail:   in,
	}
}

// ToHost converts a host.
func ToHost(h Host) api.Host {
	out := api.Host{
		Remark:   h.Remark,
		Address:  h.Address,
		Port:     h.Port,
		Disabled: h.IsDisabled,
		Detail:   h,
	}
	if h.ID != nil {
		out.ID = api.NumericID(*h.ID)
	} else {
		out.ID = api.NameID(h.Remark)
	}
	return out
}

// ToUserCounts converts the users stats.
func ToUserCounts(s UsersStats) api.UserCounts {
	return api.UserCounts{
		Total:   api.Ptr(s.Total),
		Active:  s.Active,
		Expired: s.Expired,
		Limited: s.Limited,
		OnHold:  s.OnHold,
		Online:  s.Online,
	}
}

// ToNodeCounts converts the nodes stats.
func ToNodeCounts(s NodesStats) api.NodeCounts {
	return api.NodeCounts{
		Total:     api.Ptr(s.Total),
		Healthy:   s.Healthy,
		Unhealthy: s.Unhealthy,
	}
}

func toUserCreate(req *api.UserCreate) userCreate {
	body := userCreate{
		Username:               req.Username,
		ExpireStrategy:         "never",
		DataLimit:              req.DataLimit,
		DataLimitResetStrategy: "no_reset",
		ServiceIDs:             req.ServiceIDs,
		Note:                   req.Note,
	}
	if body.ServiceIDs == nil {
		body.ServiceIDs = []int64{}
	}
	if req.ExpireAt != nil {
		body.ExpireStrategy = "fixed_date"
		body.ExpireDate = req.ExpireAt.UTC().Format(time.RFC3339)
	}
	return body
}

func toNodeCreate(req *api.NodeCreate) nodeCreate {
	port := req.Port
	if port == 0 {
		port = defaultNodePort
	}
	return nodeCreate{
		Name:              req.Name,
		Address:           req.Address,
		Port:              port,
		ConnectionBackend: "grpclib",
		UsageCoefficient:  req.UsageCoefficient,
	}
}

// defaultNodePort is the port marznode listens on out of the box.
const defaultNodePort = 53042

// PageQuery renders a page request as page/size parameters. An unbounded
// request sends neither and gets the backend's default page size.
func PageQuery(req api.PageRequest) url.Values {
	req = req.Normalize()
	if !req.Bounded() {
		return nil
	}
	return url.Values{
		"page": {strconv.Itoa(req.Page)},
		"size": {strconv.Itoa(req.Size)},
	}
}
