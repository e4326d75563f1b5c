package pasarguard

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rhuss/opexcore/pkg/api"
)

// defaultCoreID is the core configuration PasarGuard creates on install.
const defaultCoreID = 1

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
		Active:   s.ActiveUsers,
		Disabled: s.DisabledUsers,
		Expired:  s.ExpiredUsers,
		Limited:  s.LimitedUsers,
		OnHold:   s.OnHoldUsers,
		Online:   s.OnlineUsers,
	}
}

// ToHost converts a PasarGuard host. A list address is joined with commas.
func ToHost(h Host) api.Host {
	out := api.Host{
		Remark:   h.Remark,
		Address:  hostAddress(h.Address),
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

func hostAddress(raw json.RawMessage) string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, ",")
	}
	return ""
}

// ToService converts a group.
func ToService(g Group) api.Service {
	return api.Service{
		ID:        api.NumericID(g.ID),
		Name:      g.Name,
		UserCount: g.TotalUsers,
		Detail:    g,
	}
}

func toInbounds(tags []string) []api.Inbound {
	out := make([]api.Inbound, 0, len(tags))
	for _, tag := range tags {
		out = append(out, api.Inbound{ID: api.NameID(tag), Tag: tag, Detail: tag})
	}
	return out
}

func toUserCreate(req *api.UserCreate) userCreate {
	body := userCreate{
		Username:      req.Username,
		ProxySettings: map[string]any{},
		GroupIDs:      req.ServiceIDs,
		DataLimit:     req.DataLimit,
		Note:          req.Note,
		Status:        "active",
	}
	if req.ExpireAt != nil {
		body.Expire = req.ExpireAt.UTC().Format(time.RFC3339)
	}
	return body
}

func toNodeCreate(req *api.NodeCreate) nodeCreate {
	return nodeCreate{
		Name:             req.Name,
		Address:          req.Address,
		Port:             req.Port,
		UsageCoefficient: req.UsageCoefficient,
		ConnectionType:   "grpc",
		APIKey:           req.Key,
		CoreConfigID:     defaultCoreID,
	}
}
