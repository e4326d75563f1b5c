package marzneshin

import (
	"encoding/json"
	"fmt"

	"github.com/rhuss/opexcore/pkg/decode"
)

// Token is the /api/admins/token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsSudo      *bool  `json:"is_sudo"`
}

// Admin is a Marzneshin administrator.
type Admin struct {
	ID                *int64  `json:"id"`
	Username          string  `json:"username"`
	IsSudo            bool    `json:"is_sudo"`
	Enabled           *bool   `json:"enabled"`
	AllServicesAccess bool    `json:"all_services_access"`
	ModifyUsersAccess bool    `json:"modify_users_access"`
	ServiceIDs        []int64 `json:"service_ids"`
	UsersDataUsage    *int64  `json:"users_data_usage"`
}

// User is a Marzneshin user. Rustneshin adds Status and IsActive.
type User struct {
	ID                     *int64      `json:"id"`
	Username               string      `json:"username"`
	Status                 *string     `json:"status"`
	Enabled                bool        `json:"enabled"`
	Activated              bool        `json:"activated"`
	IsActive               *bool       `json:"is_active"`
	Expired                bool        `json:"expired"`
	DataLimitReached       bool        `json:"data_limit_reached"`
	ExpireStrategy         string      `json:"expire_strategy"`
	ExpireDate             decode.Time `json:"expire_date"`
	UsageDuration          *int64      `json:"usage_duration"`
	DataLimit              *int64      `json:"data_limit"`
	DataLimitResetStrategy string      `json:"data_limit_reset_strategy"`
	UsedTraffic            int64       `json:"used_traffic"`
	LifetimeUsedTraffic    *int64      `json:"lifetime_used_traffic"`
	OnlineAt               decode.Time `json:"online_at"`
	CreatedAt              decode.Time `json:"created_at"`
	Note                   *string     `json:"note"`
	ServiceIDs             []int64     `json:"service_ids"`
	SubscriptionURL        string      `json:"subscription_url"`
	OwnerUsername          *string     `json:"owner_username"`
}

// Node is a Marzneshin node.
type Node struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Port              int      `json:"port"`
	ConnectionBackend string   `json:"connection_backend"`
	UsageCoefficient  *float64 `json:"usage_coefficient"`
	XrayVersion       *string  `json:"xray_version"`
	Status            string   `json:"status"`
	Message           *string  `json:"message"`
}

// Service groups inbounds. Rustneshin reports UserCount.
type Service struct {
	ID         int64   `json:"id"`
	Name       *string `json:"name"`
	InboundIDs []int64 `json:"inbound_ids"`
	UserIDs    []int64 `json:"user_ids"`
	UserCount  *int    `json:"user_count"`
}

// Inbound is a protocol listener on a node.
type Inbound struct {
	ID         int64           `json:"id"`
	Tag        string          `json:"tag"`
	Protocol   string          `json:"protocol"`
	Config     json.RawMessage `json:"config"`
	ServiceIDs []int64         `json:"service_ids"`
}

// Host is a connection endpoint template attached to an inbound.
type Host struct {
	ID         *int64 `json:"id"`
	Remark     string `json:"remark"`
	Address    string `json:"address"`
	Port       *int   `json:"port"`
	SNI        string `json:"sni"`
	Security   string `json:"security"`
	IsDisabled bool   `json:"is_disabled"`
	InboundID  *int64 `json:"inbound_id"`
}

// UsersStats is the /api/system/stats/users response.
type UsersStats struct {
	Total   int  `json:"total"`
	Active  *int `json:"active"`
	OnHold  *int `json:"on_hold"`
	Expired *int `json:"expired"`
	Limited *int `json:"limited"`
	Online  *int `json:"online"`
}

// NodesStats is the /api/system/stats/nodes response.
type NodesStats struct {
	Total     int  `json:"total"`
	Healthy   *int `json:"healthy"`
	Unhealthy *int `json:"unhealthy"`
}

// AdminsStats is the /api/system/stats/admins response.
type AdminsStats struct {
	Total int `json:"total"`
}

// TrafficUsage is one bucket of /api/system/stats/traffic. Marzneshin sends
// [timestamp, bytes] pairs; Rustneshin sends objects.
type TrafficUsage struct {
	At    decode.Time
	Bytes int64
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *TrafficUsage) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("traffic usage pair has %d elements", len(pair))
		}
		if err := json.Unmarshal(pair[0], &u.At); err != nil {
			return err
		}
		return json.Unmarshal(pair[1], &u.Bytes)
	}
	var obj struct {
		Date        decode.Time `json:"date"`
		Timestamp   decode.Time `json:"timestamp"`
		UsedTraffic int64       `json:"used_traffic"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	u.At = obj.Date
	if !u.At.Valid {
		u.At = obj.Timestamp
	}
	u.Bytes = obj.UsedTraffic
	return nil
}

// TrafficStats is the /api/system/stats/traffic response.
type TrafficStats struct {
	Total  int64          `json:"total"`
	Usages []TrafficUsage `json:"usages"`
}

// userCreate is the POST /api/users body.
type userCreate struct {
	Username               string  `json:"username"`
	ExpireStrategy         string  `json:"expire_strategy"`
	ExpireDate             string  `json:"expire_date,omitempty"`
	DataLimit              *int64  `json:"data_limit,omitempty"`
	DataLimitResetStrategy string  `json:"data_limit_reset_strategy"`
	ServiceIDs             []int64 `json:"service_ids"`
	Note                   string  `json:"note,omitempty"`
}

// nodeCreate is the POST /api/nodes body.
type nodeCreate struct {
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Port              int      `json:"port"`
	ConnectionBackend string   `json:"connection_backend"`
	UsageCoefficient  *float64 `json:"usage_coefficient,omitempty"`
}
