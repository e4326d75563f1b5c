package api

import "time"

// Admin is a panel administrator account.
type Admin struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`

	// Sudo is nil when the backend does not report privileges.
	Sudo    *bool `json:"sudo,omitempty"`
	Enabled *bool `json:"enabled,omitempty"`

	TelegramID  *int64 `json:"telegram_id,omitempty"`
	UsedTraffic *int64 `json:"used_traffic,omitempty"`

	// Detail holds the adapter's own typed record.
	Detail any `json:"-"`
}

// User is a proxy/VPN end user (called "subscription" by some backends).
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Status   Status `json:"status"`

	UsedTraffic     *int64     `json:"used_traffic,omitempty"`
	DataLimit       *int64     `json:"data_limit,omitempty"`
	ExpireAt        *time.Time `json:"expire_at,omitempty"`
	OnlineAt        *time.Time `json:"online_at,omitempty"`
	SubscriptionURL string     `json:"subscription_url,omitempty"`
	Note            string     `json:"note,omitempty"`

	Detail any `json:"-"`
}

// Node is a proxy server managed by a panel.
type Node struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Address string `json:"address,omitempty"`
	Port    *int   `json:"port,omitempty"`

	CountryCode string `json:"country_code,omitempty"`
	Version     string `json:"version,omitempty"`
	Message     string `json:"message,omitempty"`
	UsersOnline *int   `json:"users_online,omitempty"`

	Detail any `json:"-"`
}

// Service groups inbounds that users are granted access to.
type Service struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	UserCount *int   `json:"user_count,omitempty"`

	Detail any `json:"-"`
}

// Host is a client-facing connection endpoint template.
type Host struct {
	ID       ID     `json:"id"`
	Remark   string `json:"remark"`
	Address  string `json:"address"`
	Port     *int   `json:"port,omitempty"`
	Disabled bool   `json:"disabled"`
	Hidden   *bool  `json:"hidden,omitempty"`

	Detail any `json:"-"`
}

// Inbound is a protocol listener on a node.
type Inbound struct {
	ID       ID     `json:"id"`
	Tag      string `json:"tag"`
	Protocol string `json:"protocol,omitempty"`

	Detail any `json:"-"`
}

// UserCreate describes a user to create. Backends ignore fields they do
// not model; required fields are validated by ValidateUserCreate.
type UserCreate struct {
	Username  string
	ExpireAt  *time.Time
	DataLimit *int64
	Note      string
	Tag       string

	// ServiceIDs selects services (marzneshin family) or groups.
	ServiceIDs []int64
	// Inbounds maps protocol to inbound tags (marzban family).
	Inbounds map[string][]string
}

// UserStatusUpdate changes the enabled state of a user. ExpireAt is sent to
// backends whose status endpoint requires it.
type UserStatusUpdate struct {
	Enabled  bool
	ExpireAt *time.Time
}

// NodeCreate describes a node to register with a panel.
type NodeCreate struct {
	Name    string
	Address string
	Port    int
	APIPort int

	// Key is a shared secret some backends require (OVPanel).
	Key      string
	Protocol string
	// ServicePort is the data-plane port (OVPanel ovpn_port).
	ServicePort int
	Enabled     bool

	CountryCode      string
	UsageCoefficient *float64
}
