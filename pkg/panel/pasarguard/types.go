package pasarguard

import (
	"encoding/json"

	"github.com/rhuss/opexcore/pkg/decode"
)

// SystemStats is the /api/system response.
type SystemStats struct {
	Version           string   `json:"version"`
	MemTotal          *int64   `json:"mem_total"`
	MemUsed           *int64   `json:"mem_used"`
	CPUCores          *int     `json:"cpu_cores"`
	CPUUsage          *float64 `json:"cpu_usage"`
	TotalUser         int      `json:"total_user"`
	OnlineUsers       *int     `json:"online_users"`
	ActiveUsers       *int     `json:"active_users"`
	OnHoldUsers       *int     `json:"on_hold_users"`
	DisabledUsers     *int     `json:"disabled_users"`
	ExpiredUsers      *int     `json:"expired_users"`
	LimitedUsers      *int     `json:"limited_users"`
	IncomingBandwidth *int64   `json:"incoming_bandwidth"`
	OutgoingBandwidth *int64   `json:"outgoing_bandwidth"`
}

// Host is a PasarGuard host. Address is a string or a list of strings
// depending on the release.
type Host struct {
	ID         *int64          `json:"id"`
	Remark     string          `json:"remark"`
	Address    json.RawMessage `json:"address"`
	Port       *int            `json:"port"`
	InboundTag string          `json:"inbound_tag"`
	IsDisabled bool            `json:"is_disabled"`
	Priority   int             `json:"priority"`
}

// Group is a named set of inbounds users are granted.
type Group struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	InboundTags []string `json:"inbound_tags"`
	IsDisabled  bool     `json:"is_disabled"`
	TotalUsers  *int     `json:"total_users"`
}

// Core is a core configuration nodes run.
type Core struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Config             json.RawMessage `json:"config"`
	ExcludeInboundTags []string        `json:"exclude_inbound_tags"`
	FallbacksInbound   []string        `json:"fallbacks_inbound_tags"`
	CreatedAt          decode.Time     `json:"created_at"`
}

// userCreate is the POST /api/user body.
type userCreate struct {
	Username      string         `json:"username"`
	ProxySettings map[string]any `json:"proxy_settings"`
	GroupIDs      []int64        `json:"group_ids,omitempty"`
	Expire        string         `json:"expire,omitempty"`
	DataLimit     *int64         `json:"data_limit,omitempty"`
	Note          string         `json:"note,omitempty"`
	Status        string         `json:"status"`
}

// nodeCreate is the POST /api/node body.
type nodeCreate struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Port             int      `json:"port,omitempty"`
	UsageCoefficient *float64 `json:"usage_coefficient,omitempty"`
	ConnectionType   string   `json:"connection_type"`
	APIKey           string   `json:"api_key,omitempty"`
	CoreConfigID     int64    `json:"core_config_id"`
	KeepAlive        int      `json:"keep_alive"`
}
