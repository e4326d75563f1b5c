package guard

import (
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

// ownerRole is the Guard role with full privileges.
const ownerRole = "owner"

// ToAdmin converts an admin.
func ToAdmin(a Admin) api.Admin {
	return api.Admin{
		ID:          api.NameID(a.Username),
		Username:    a.Username,
		Sudo:        api.Ptr(a.Role == ownerRole),
		Enabled:     api.Ptr(a.Enabled),
		UsedTraffic: a.CurrentUsage,
		Detail:      a,
	}
}

// SubscriptionStatus derives a subscription's status from its flags.
func SubscriptionStatus(s Subscription) api.Status {
	switch {
	case !s.Enabled:
		return api.FlagStatus("enabled", false, api.StateActive, api.StateDisabled)
	case s.Expired:
		return api.FlagStatus("expired", true, api.StateExpired, api.StateActive)
	case s.Limited:
		return api.FlagStatus("limited", true, api.StateLimited, api.StateActive)
	case !s.Activated:
		return api.FlagStatus("activated", false, api.StateActive, api.StateOnHold)
	default:
		return api.FlagStatus("enabled", true, api.StateActive, api.StateDisabled)
	}
}

// ToUser converts a subscription. Subscriptions are addressed by username.
func ToUser(s Subscription) api.User {
	out := api.User{
		ID:              api.NameID(s.Username),
		Username:        s.Username,
		Status:          SubscriptionStatus(s),
		UsedTraffic:     api.Ptr(s.CurrentUsage),
		OnlineAt:        s.OnlineAt.Ptr(),
		SubscriptionURL: s.Link,
		Detail:          s,
	}
	if s.LimitUsage > 0 {
		out.DataLimit = api.Ptr(s.LimitUsage)
	}
	if s.LimitExpire > 0 {
		out.ExpireAt = api.Ptr(time.Unix(s.LimitExpire, 0).UTC())
	}
	if s.Note != nil {
		out.Note = *s.Note
	}
	return out
}

// ToNode converts a node. The remark serves as its name.
func ToNode(n Node) api.Node {
	out := api.Node{
		ID:      api.NumericID(n.ID),
		Name:    n.Remark,
		Status:  api.FlagStatus("enabled", n.Enabled, api.StateActive, api.StateDisabled),
		Address: n.Address,
		Detail:  n,
	}
	if n.Port != 0 {
		out.Port = api.Ptr(n.Port)
	}
	return out
}

// ToService converts a service.
func ToService(s Service) api.Service {
	return api.Service{
		ID:        api.NumericID(s.ID),
		Name:      s.Remark,
		UserCount: s.UsersCount,
		Detail:    s,
	}
}

// ToStats converts the /api/stats response.
func ToStats(s Stats) api.Stats {
	return api.Stats{
		Users: api.UserCounts{
			Total:    api.Ptr(s.TotalSubscriptions),
			Active:   s.ActiveSubscriptions,
			Disabled: s.InactiveSubscriptions,
			Online:   s.OnlineSubscriptions,
		},
		Nodes:  ToNodeCounts(s),
		Admins: s.TotalAdmins,
		Detail: s,
	}
}

// ToNodeCounts extracts the node counters of /api/stats.
func ToNodeCounts(s Stats) api.NodeCounts {
	return api.NodeCounts{
		Total:     s.TotalNodes,
		Healthy:   s.ActiveNodes,
		Unhealthy: s.InactiveNodes,
	}
}

// ToUserCounts converts the /api/stats/subscriptions response.
func ToUserCounts(s SubscriptionStats) api.UserCounts {
	return api.UserCounts{
		Total:    api.Ptr(s.Total),
		Active:   s.Active,
		Disabled: s.Disabled,
		Expired:  s.Expired,
		Limited:  s.Limited,
		Online:   s.Online,
	}
}

func toSubscriptionCreate(req *api.UserCreate) subscriptionCreate {
	body := subscriptionCreate{
		Username:   req.Username,
		ServiceIDs: req.ServiceIDs,
		Note:       req.Note,
	}
	if body.ServiceIDs == nil {
		body.ServiceIDs = []int64{}
	}
	if req.DataLimit != nil {
		body.LimitUsage = *req.DataLimit
	}
	if req.ExpireAt != nil {
		body.LimitExpire = req.ExpireAt.Unix()
	}
	return body
}

func toNodeCreate(req *api.NodeCreate) nodeCreate {
	return nodeCreate{
		Remark:    req.Name,
		Address:   req.Address,
		Port:      req.Port,
		APIKey:    req.Key,
		UsageRate: req.UsageCoefficient,
	}
}
