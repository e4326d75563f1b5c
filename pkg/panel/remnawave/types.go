package remnawave

import "github.com/rhuss/opexcore/pkg/decode"

// Token is the login response payload.
type Token struct {
	AccessToken string `json:"accessToken"`
}

// UserTraffic is the nested traffic block of newer releases.
type UserTraffic struct {
	UsedTrafficBytes         int64       `json:"usedTrafficBytes"`
	LifetimeUsedTrafficBytes int64       `json:"lifetimeUsedTrafficBytes"`
	OnlineAt                 decode.Time `json:"onlineAt"`
}

// User is a Remnawave user. Traffic counters are top-level in older
// releases and nested under UserTraffic in newer ones.
type User struct {
	UUID                 string       `json:"uuid"`
	ShortUUID            string       `json:"shortUuid"`
	Username             string       `json:"username"`
	Status               string       `json:"status"`
	UsedTrafficBytes     *int64       `json:"usedTrafficBytes"`
	TrafficLimitBytes    *int64       `json:"trafficLimitBytes"`
	TrafficLimitStrategy string       `json:"trafficLimitStrategy"`
	ExpireAt             decode.Time  `json:"expireAt"`
	OnlineAt             decode.Time  `json:"onlineAt"`
	SubscriptionURL      string       `json:"subscriptionUrl"`
	Description          *string      `json:"description"`
	Tag                  *string      `json:"tag"`
	TelegramID           *int64       `json:"telegramId"`
	Email                *string      `json:"email"`
	UserTraffic          *UserTraffic `json:"userTraffic"`
	CreatedAt            decode.Time  `json:"createdAt"`
}

// Node is a Remnawave node.
type Node struct {
	UUID              string  `json:"uuid"`
	Name              string  `json:"name"`
	Address           string  `json:"address"`
	Port              *int    `json:"port"`
	IsConnected       bool    `json:"isConnected"`
	IsConnecting      bool    `json:"isConnecting"`
	IsDisabled        bool    `json:"isDisabled"`
	IsNodeOnline      bool    `json:"isNodeOnline"`
	IsXrayRunning     bool    `json:"isXrayRunning"`
	XrayVersion       *string `json:"xrayVersion"`
	UsersOnline       *int    `json:"usersOnline"`
	CountryCode       string  `json:"countryCode"`
	TrafficUsedBytes  *int64  `json:"trafficUsedBytes"`
	LastStatusMessage *string `json:"lastStatusMessage"`
}

// Host is a Remnawave host.
type Host struct {
	UUID        string `json:"uuid"`
	Remark      string `json:"remark"`
	Address     string `json:"address"`
	Port        *int   `json:"port"`
	IsDisabled  bool   `json:"isDisabled"`
	IsHidden    *bool  `json:"isHidden"`
	InboundUUID string `json:"inboundUuid"`
}

// SystemStats is the /api/system/stats payload.
type SystemStats struct {
	CPU         CPUStats    `json:"cpu"`
	Memory      MemoryStats `json:"memory"`
	Uptime      *float64    `json:"uptime"`
	Users       UsersStats  `json:"users"`
	OnlineStats OnlineStats `json:"onlineStats"`
	Nodes       NodesStats  `json:"nodes"`
}

// CPUStats describes the panel host CPU.
type CPUStats struct {
	Cores         *int `json:"cores"`
	PhysicalCores *int `json:"physicalCores"`
}

// MemoryStats describes the panel host memory in bytes.
type MemoryStats struct {
	Total *int64 `json:"total"`
	Used  *int64 `json:"used"`
	Free  *int64 `json:"free"`
}

// UsersStats counts users by status (ACTIVE, DISABLED, LIMITED, EXPIRED).
type UsersStats struct {
	StatusCounts map[string]int `json:"statusCounts"`
	TotalUsers   int            `json:"totalUsers"`
}

// OnlineStats counts users by recent activity.
type OnlineStats struct {
	OnlineNow   *int `json:"onlineNow"`
	LastDay     *int `json:"lastDay"`
	LastWeek    *int `json:"lastWeek"`
	NeverOnline *int `json:"neverOnline"`
}

// NodesStats counts connected nodes.
type NodesStats struct {
	TotalOnline *int `json:"totalOnline"`
}

// SubscriptionInfo is the public /api/sub/{shortUuid}/info payload.
type SubscriptionInfo struct {
	IsFound         bool             `json:"isFound"`
	User            SubscriptionUser `json:"user"`
	Links           []string         `json:"links"`
	SubscriptionURL string           `json:"subscriptionUrl"`
}

// SubscriptionUser is the user summary shown to subscription holders.
// Traffic values are preformatted by the panel (e.g. "1.5 GiB").
type SubscriptionUser struct {
	ShortUUID            string      `json:"shortUuid"`
	Username             string      `json:"username"`
	DaysLeft             *int        `json:"daysLeft"`
	TrafficUsed          string      `json:"trafficUsed"`
	TrafficLimit         string      `json:"trafficLimit"`
	ExpiresAt            decode.Time `json:"expiresAt"`
	IsActive             bool        `json:"isActive"`
	UserStatus           string      `json:"userStatus"`
	TrafficLimitStrategy string      `json:"trafficLimitStrategy"`
}

// userCreate is the POST /api/users body.
type userCreate struct {
	Username             string `json:"username"`
	ExpireAt             string `json:"expireAt"`
	TrafficLimitBytes    *int64 `json:"trafficLimitBytes,omitempty"`
	TrafficLimitStrategy string `json:"trafficLimitStrategy"`
	Description          string `json:"description,omitempty"`
	Tag                  string `json:"tag,omitempty"`
	Status               string `json:"status"`
}

// nodeCreate is the POST /api/nodes body.
type nodeCreate struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Port        int    `json:"port,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}
