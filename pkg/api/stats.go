package api

import "time"

// UserCounts holds aggregate user counters. A nil field means the backend
// does not report that counter.
type UserCounts struct {
	Total    *int `json:"total,omitempty"`
	Active   *int `json:"active,omitempty"`
	Disabled *int `json:"disabled,omitempty"`
	Expired  *int `json:"expired,omitempty"`
	Limited  *int `json:"limited,omitempty"`
	OnHold   *int `json:"on_hold,omitempty"`
	Online   *int `json:"online,omitempty"`
}

// NodeCounts holds aggregate node counters.
type NodeCounts struct {
	Total     *int `json:"total,omitempty"`
	Healthy   *int `json:"healthy,omitempty"`
	Unhealthy *int `json:"unhealthy,omitempty"`
	Online    *int `json:"online,omitempty"`
}

// Stats is a read-only snapshot of panel-wide counters. It is always
// fetched fresh from the backend.
type Stats struct {
	Users  UserCounts `json:"users"`
	Nodes  NodeCounts `json:"nodes"`
	Admins *int       `json:"admins,omitempty"`

	Version         string   `json:"version,omitempty"`
	IncomingTraffic *int64   `json:"incoming_traffic,omitempty"`
	OutgoingTraffic *int64   `json:"outgoing_traffic,omitempty"`
	MemoryTotal     *int64   `json:"memory_total,omitempty"`
	MemoryUsed      *int64   `json:"memory_used,omitempty"`
	CPUCores        *int     `json:"cpu_cores,omitempty"`
	CPUUsage        *float64 `json:"cpu_usage,omitempty"`

	Detail any `json:"-"`
}

// TrafficUsage is one bucket of a traffic series.
type TrafficUsage struct {
	At    time.Time `json:"at"`
	Bytes int64     `json:"bytes"`
}

// TrafficStats is the traffic consumed in [Start, End].
type TrafficStats struct {
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	Total  int64          `json:"total"`
	Usages []TrafficUsage `json:"usages,omitempty"`
}
