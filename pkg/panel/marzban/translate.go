package marzban

import (
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

// ToAdmin converts a Marzban admin.
func ToAdmin(a Admin) api.Admin {
	out := api.Admin{
		ID:          api.NameID(a.Username),
		Username:    a.Username,
		Sudo:        api.Ptr(a.IsSudo),
		TelegramID:  a.TelegramID,
		UsedTraffic: a.UsersUsage,
		Detail:      a,
	}
	if a.IsDisabled != nil {
		out.Enabled = api.Ptr(!*a.IsDisabled)
	}
	return out
}

// ToUser converts a Marzban user. Users are addressed by username.
func ToUser(u User) api.User {
	out := api.User{
		ID:              api.NameID(u.Username),
		Username:        u.Username,
		Status:          api.ParseStatus(u.Status),
		UsedTraffic:     api.Ptr(u.UsedTraffic),
		DataLimit:       u.DataLimit,
		ExpireAt:        u.Expire.Ptr(),
		OnlineAt:        u.OnlineAt.Ptr(),
		SubscriptionURL: u.SubscriptionURL,
		Detail:          u,
	}
	if u.DataLimit != nil && *u.DataLimit == 0 {
		// Zero means unlimited.
		out.DataLimit = nil
	}
	if u.Note != nil {
		out.Note = *u.Note
	}
	return out
}

// ToNode converts a Marzban node. Nodes are addressed by integer id.
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
	} else if n.CoreVersion != nil {
		out.Version = *n.CoreVersion
	}
	if n.Message != nil {
		out.Message = *n.Message
	}
	return out
}

// ToStats converts the /api/system response.
func ToStats(s SystemStats) api.Stats {
	return api.Stats{
		Users:           ToUserCounts(s),
		Version:         s.Version,
		IncomingTraffic: s.IncomingBandwidth,
		OutgoingTraffic: s.OutgoingBandwidth,
		MemoryTotal:     s.MemTotal,
		MemoryUsed:      s.MemUsed,
		CPUCores:        s.CPUCores,
		CPUUsage:        s.CPUUsage,
		Detail:          s,
	}
}

// ToUserCounts extracts the user counters of /api/system.
func ToUserCounts(s SystemStats) api.UserCounts {
	return api.UserCounts{
		Total:    api.Ptr(s.TotalUser),
		Active:   s.UsersActive,
		Disabled: s.UsersDisabled,
		Expired:  s.UsersExpired,
		Limited:  s.UsersLimited,
		OnHold:   s.UsersOnHold,
		Online:   s.OnlineUsers,
	}
}

// flattenInbounds turns the {protocol: [inbound]} map into a list ordered
// by protocol, keeping the backend order within a protocol.
func flattenInbounds(byProto map[string][]Inbound) []api.Inbound {
	protos := make([]string, 0, len(byProto))
	for p := range byProto {
		protos = append(protos, p)
	}
	sort.Strings(protos)

	var out []api.Inbound
	for _, p := range protos {
		for _, in := range byProto[p] {
			proto := in.Protocol
			if proto == "" {
				proto = p
			}
			out = append(out, api.Inbound{
				ID:       api.NameID(in.Tag),
				Tag:      in.Tag,
				Protocol: proto,
				Detail:   in,
			})
		}
	}
	return out
}

// toUserCreate builds the create body. Marzban requires a proxies map;
// one empty settings object per selected protocol lets the panel generate
// credentials.
func toUserCreate(req *api.UserCreate) userCreate {
	body := userCreate{
		Username:  req.Username,
		Proxies:   make(map[string]map[string]any),
		Inbounds:  req.Inbounds,
		GroupIDs:  req.ServiceIDs,
		DataLimit: req.DataLimit,
		Note:      req.Note,
		Status:    "active",
	}
	for proto := range req.Inbounds {
		body.Proxies[proto] = map[string]any{}
	}
	if len(body.Proxies) == 0 {
		body.Proxies["vless"] = map[string]any{}
	}
	if req.ExpireAt != nil {
		body.Expire = api.Ptr(req.ExpireAt.Unix())
	}
	return body
}

func toUserModify(upd api.UserStatusUpdate) userModify {
	m := userModify{Status: "disabled"}
	if upd.Enabled {
		m.Status = "active"
	}
	if upd.ExpireAt != nil {
		m.Expire = api.Ptr(upd.ExpireAt.Unix())
	}
	return m
}

func toNodeCreate(req *api.NodeCreate) nodeCreate {
	return nodeCreate{
		Name:             req.Name,
		Address:          req.Address,
		Port:             req.Port,
		APIPort:          req.APIPort,
		UsageCoefficient: req.UsageCoefficient,
	}
}

// usageWindow formats a traffic window bound the way the panel parses it.
func usageWindow(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}

// OffsetQuery renders a page request as offset/limit parameters. An
// unbounded request sends neither.
func OffsetQuery(req api.PageRequest) url.Values {
	req = req.Normalize()
	if !req.Bounded() {
		return nil
	}
	return url.Values{
		"offset": {strconv.Itoa(req.Offset())},
		"limit":  {strconv.Itoa(req.Size)},
	}
}
