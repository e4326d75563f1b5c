package guard

import "github.com/rhuss/opexcore/pkg/decode"

// Token is the /api/admins/token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Admin is a Guard administrator. Role is owner, seller or reseller.
type Admin struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Role         string      `json:"role"`
	Enabled      bool        `json:"enabled"`
	ServiceIDs   []int64     `json:"service_ids"`
	TelegramID   *string     `json:"telegram_id"`
	CountLimit   *int        `json:"count_limit"`
	UsageLimit   *int64      `json:"usage_limit"`
	CurrentCount *int        `json:"current_count"`
	CurrentUsage *int64      `json:"current_usage"`
	LastLoginAt  decode.Time `json:"last_login_at"`
	CreatedAt    decode.Time `json:"created_at"`
}

// Subscription is a Guard end user. LimitExpire is a Unix timestamp when
// positive, an on-hold duration in seconds when negative, and unlimited
// when zero.
type Subscription struct {
	ID            int64       `json:"id"`
	Username      string      `json:"username"`
	OwnerUsername string      `json:"owner_username"`
	AccessKey     string      `json:"access_key"`
	Enabled       bool        `json:"enabled"`
	Activated     bool        `json:"activated"`
	Limited       bool        `json:"limited"`
	Expired       bool        `json:"expired"`
	IsActive      bool        `json:"is_active"`
	IsOnline      bool        `json:"is_online"`
	Link          string      `json:"link"`
	LimitUsage    int64       `json:"limit_usage"`
	LimitExpire   int64       `json:"limit_expire"`
	CurrentUsage  int64       `json:"current_usage"`
	TotalUsage    int64       `json:"total_usage"`
	ServiceIDs    []int64     `json:"service_ids"`
	Note          *string     `json:"note"`
	OnlineAt      decode.Time `json:"online_at"`
	CreatedAt     decode.Time `json:"created_at"`
}

// Keys a subscription or node object must carry. The subscription flags
// are the ones SubscriptionStatus decides on.
var (
	subscriptionKeys = []string{"username", "enabled", "activated", "expired", "limited"}
	nodeKeys         = []string{"id", "remark", "enabled"}
)

// Node is a Guard node.
type Node struct {
	ID           int64    `json:"id"`
	Remark       string   `json:"remark"`
	Address      string   `json:"address"`
	Port         int      `json:"port"`
	UsageRate    *float64 `json:"usage_rate"`
	Enabled      bool     `json:"enabled"`
	CurrentUsage *int64   `json:"current_usage"`
}

// Service is a Guard service.
type Service struct {
	ID         int64   `json:"id"`
	Remark     string  `json:"remark"`
	NodeIDs    []int64 `json:"node_ids"`
	UsersCount *int    `json:"users_count"`
}

// Stats is the /api/stats response.
type Stats struct {
	TotalSubscriptions    int  `json:"total_subscriptions"`
	ActiveSubscriptions   *int `json:"active_subscriptions"`
	InactiveSubscriptions *int `json:"inactive_subscriptions"`
	OnlineSubscriptions   *int `json:"online_subscriptions"`
	TotalAdmins           *int `json:"total_admins"`
	TotalNodes            *int `json:"total_nodes"`
	ActiveNodes           *int `json:"active_nodes"`
	InactiveNodes         *int `json:"inactive_nodes"`
}

// SubscriptionStats is the /api/stats/subscriptions response.
type SubscriptionStats struct {
	Total      int    `json:"total"`
	Active     *int   `json:"active"`
	Inactive   *int   `json:"inactive"`
	Disabled   *int   `json:"disabled"`
	Expired    *int   `json:"expired"`
	Limited    *int   `json:"limited"`
	Online     *int   `json:"online"`
	TotalUsage *int64 `json:"total_usage"`
}

// subscriptionCreate is one element of the POST /api/subscriptions body.
type subscriptionCreate struct {
	Username    string  `json:"username"`
	LimitUsage  int64   `json:"limit_usage"`
	LimitExpire int64   `json:"limit_expire"`
	ServiceIDs  []int64 `json:"service_ids"`
	Note        string  `json:"note,omitempty"`
}

// nodeCreate is the POST /api/nodes body.
type nodeCreate struct {
	Remark    string   `json:"remark"`
	Address   string   `json:"address"`
	Port      int      `json:"port"`
	APIKey    string   `json:"api_key"`
	UsageRate *float64 `json:"usage_rate,omitempty"`
}
