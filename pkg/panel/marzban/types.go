package marzban

import (
	"encoding/json"

	"github.com/rhuss/opexcore/pkg/decode"
)

// Token is the /api/admin/token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Admin is a Marzban administrator.
type Admin struct {
	Username   string `json:"username"`
	IsSudo     bool   `json:"is_sudo"`
	TelegramID *int64 `json:"telegram_id"`
	UsersUsage *int64 `json:"users_usage"`
	IsDisabled *bool  `json:"is_disabled"`
}

// User is a Marzban user record.
type User struct {
	ID                     *int64                     `json:"id"`
	Username               string                     `json:"username"`
	Status                 string                     `json:"status"`
	UsedTraffic            int64                      `json:"used_traffic"`
	LifetimeUsedTraffic    *int64                     `json:"lifetime_used_traffic"`
	DataLimit              *int64                     `json:"data_limit"`
	DataLimitResetStrategy string                     `json:"data_limit_reset_strategy"`
	Expire                 decode.Time                `json:"expire"`
	OnlineAt               decode.Time                `json:"online_at"`
	CreatedAt              decode.Time                `json:"created_at"`
	SubscriptionURL        string                     `json:"subscription_url"`
	Note                   *string                    `json:"note"`
	Proxies                map[string]json.RawMessage `json:"proxies"`
	Inbounds               map[string][]string        `json:"inbounds"`
	GroupIDs               []int64                    `json:"group_ids"`
}

// Node is a Marzban node.
type Node struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Port             int     `json:"port"`
	APIPort          int     `json:"api_port"`
	UsageCoefficient float64 `json:"usage_coefficient"`
	XrayVersion      *string `json:"xray_version"`
	CoreVersion      *string `json:"core_version"`
	Status           string  `json:"status"`
	Message          *string `json:"message"`
}

// SystemStats is the /api/system response.
type SystemStats struct {
	Version           string   `json:"version"`
	MemTotal          *int64   `json:"mem_total"`
	MemUsed           *int64   `json:"mem_used"`
	CPUCores          *int     `json:"cpu_cores"`
	CPUUsage          *float64 `json:"cpu_usage"`
	TotalUser         int      `json:"total_user"`
	OnlineUsers       *int     `json:"online_users"`
	UsersActive       *int     `json:"users_active"`
	UsersOnHold       *int     `json:"users_on_hold"`
	UsersDisabled     *int     `json:"users_disabled"`
	UsersExpired      *int     `json:"users_expired"`
	UsersLimited      *int     `json:"users_limited"`
	IncomingBandwidth *int64   `json:"incoming_bandwidth"`
	OutgoingBandwidth *int64   `json:"outgoing_bandwidth"`
}

// CoreStats is the /api/core response.
type CoreStats struct {
	Version       string `json:"version"`
	Started       bool   `json:"started"`
	LogsWebsocket string `json:"logs_websocket"`
}

// Inbound is one protocol listener from /api/inbounds.
type Inbound struct {
	Tag      string          `json:"tag"`
	Protocol string          `json:"protocol"`
	Network  string          `json:"network"`
	TLS      string          `json:"tls"`
	Port     json.RawMessage `json:"port"`
}

// NodeUsage is one entry of /api/nodes/usage.
type NodeUsage struct {
	NodeID   *int64 `json:"node_id"`
	NodeName string `json:"node_name"`
	Uplink   int64  `json:"uplink"`
	Downlink int64  `json:"downlink"`
}

type nodesUsage struct {
	Usages []NodeUsage `json:"usages"`
}

// userCreate is the POST /api/user body.
type userCreate struct {
	Username  string                    `json:"username"`
	Proxies   map[string]map[string]any `json:"proxies"`
	Inbounds  map[string][]string       `json:"inbounds,omitempty"`
	GroupIDs  []int64                   `json:"group_ids,omitempty"`
	Expire    *int64                    `json:"expire,omitempty"`
	DataLimit *int64                    `json:"data_limit,omitempty"`
	Note      string                    `json:"note,omitempty"`
	Status    string                    `json:"status,omitempty"`
}

// userModify is the PUT /api/user/{username} body.
type userModify struct {
	Status string `json:"status"`
	Expire *int64 `json:"expire,omitempty"`
}

// nodeCreate is the POST /api/node body.
type nodeCreate struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Port             int      `json:"port,omitempty"`
	APIPort          int      `json:"api_port,omitempty"`
	UsageCoefficient *float64 `json:"usage_coefficient,omitempty"`
	AddAsNewHost     bool     `json:"add_as_new_host"`
}
