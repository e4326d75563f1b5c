package remnawave

import (
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/auth"
)

// Status values reported in User.Status and statusCounts.
const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
	StatusLimited  = "LIMITED"
	StatusExpired  = "EXPIRED"
)

// ToUser converts a user. Users are addressed by UUID; a zero traffic
// limit means unlimited.
func ToUser(u User) api.User {
	out := api.User{
		ID:              api.UUIDID(u.UUID),
		Username:        u.Username,
		Status:          api.ParseStatus(u.Status),
		UsedTraffic:     u.UsedTrafficBytes,
		ExpireAt:        u.ExpireAt.Ptr(),
		OnlineAt:        u.OnlineAt.Ptr(),
		SubscriptionURL: u.SubscriptionURL,
		Detail:          u,
	}
	if u.UserTraffic != nil {
		out.UsedTraffic = api.Ptr(u.UserTraffic.UsedTrafficBytes)
		if u.UserTraffic.OnlineAt.Valid {
			out.OnlineAt = u.UserTraffic.OnlineAt.Ptr()
		}
	}
	if u.TrafficLimitBytes != nil && *u.TrafficLimitBytes > 0 {
		out.DataLimit = u.TrafficLimitBytes
	}
	if u.Description != nil {
		out.Note = *u.Description
	}
	return out
}

// NodeStatus derives a node's status from its connection flags, checked
// in order: disabled, connected, connecting.
func NodeStatus(n Node) api.Status {
	switch {
	case n.IsDisabled:
		return api.FlagStatus("isDisabled", true, api.StateDisabled, api.StateActive)
	case n.IsConnected:
		return api.FlagStatus("isConnected", true, api.StateConnected, api.StateError)
	case n.IsConnecting:
		return api.FlagStatus("isConnecting", true, api.StateConnecting, api.StateError)
	default:
		return api.FlagStatus("isConnected", false, api.StateConnected, api.StateError)
	}
}

// ToNode converts a node. Nodes are addressed by UUID.
func ToNode(n Node) api.Node {
	out := api.Node{
		ID:          api.UUIDID(n.UUID),
		Name:        n.Name,
		Status:      NodeStatus(n),
		Address:     n.Address,
		Port:        n.Port,
		CountryCode: n.CountryCode,
		UsersOnline: n.UsersOnline,
		Detail:      n,
	}
	if n.XrayVersion != nil {
		out.Version = *n.XrayVersion
	}
	if n.LastStatusMessage != nil {
		out.Message = *n.LastStatusMessage
	}
	return out
}

// ToHost converts a host.
func ToHost(h Host) api.Host {
	return api.Host{
		ID:       api.UUIDID(h.UUID),
		Remark:   h.Remark,
		Address:  h.Address,
		Port:     h.Port,
		Disabled: h.IsDisabled,
		Hidden:   h.IsHidden,
		Detail:   h,
	}
}

// ToUserCounts converts the users block of the system stats. Statuses the
// panel did not count stay nil.
func ToUserCounts(s SystemStats) api.UserCounts {
	count := func(status string) *int {
		if n, ok := s.Users.StatusCounts[status]; ok {
			return api.Ptr(n)
		}
		return nil
	}
	return api.UserCounts{
		Total:    api.Ptr(s.Users.TotalUsers),
		Active:   count(StatusActive),
		Disabled: count(StatusDisabled),
		Limited:  count(StatusLimited),
		Expired:  count(StatusExpired),
		Online:   s.OnlineStats.OnlineNow,
	}
}

// ToNodeCounts converts the nodes block. Only online nodes are counted.
func ToNodeCounts(s SystemStats) api.NodeCounts {
	return api.NodeCounts{Online: s.Nodes.TotalOnline}
}

// ToStats converts the full system stats.
func ToStats(s SystemStats) api.Stats {
	return api.Stats{
		Users:       ToUserCounts(s),
		Nodes:       ToNodeCounts(s),
		MemoryTotal: s.Memory.Total,
		MemoryUsed:  s.Memory.Used,
		CPUCores:    s.CPU.Cores,
		Detail:      s,
	}
}

// adminFromToken builds the current admin from access token claims. The
// admin is addressed by the uuid claim when present.
func adminFromToken(info *auth.TokenInfo, fallback string) api.Admin {
	name := info.ClaimString("username")
	if name == "" {
		name = info.Subject
	}
	if name == "" {
		name = fallback
	}
	out := api.Admin{
		ID:       api.NameID(name),
		Username: name,
		Detail:   info.Claims,
	}
	if id := info.ClaimString("uuid"); id != "" {
		out.ID = api.UUIDID(id)
	}
	return out
}

func toUserCreate(req *api.UserCreate) userCreate {
	return userCreate{
		Username:             req.Username,
		ExpireAt:             req.ExpireAt.UTC().Format(time.RFC3339),
		TrafficLimitBytes:    req.DataLimit,
		TrafficLimitStrategy: "NO_RESET",
		Description:          req.Note,
		Tag:                  req.Tag,
		Status:               StatusActive,
	}
}

func toNodeCreate(req *api.NodeCreate) nodeCreate {
	return nodeCreate{
		Name:        req.Name,
		Address:     req.Address,
		Port:        req.Port,
		CountryCode: req.CountryCode,
	}
}
