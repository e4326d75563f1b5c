package paneltest

import (
	"net/http"
	"strconv"
	"time"
)

// routeGuard serves the Guard API, where users are called subscriptions.
func (f *fake) routeGuard() {
	auth := func(h http.HandlerFunc) http.HandlerFunc { return bearer(h, denyDetail) }
	admin := map[string]any{"id": 1, "username": AdminUser, "role": "owner", "enabled": true, "service_ids": []int64{1}}

	f.mux.HandleFunc("POST /api/admins/token", func(w http.ResponseWriter, r *http.Request) {
		if !formCredentials(r) {
			WriteDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"access_token": f.issue(map[string]any{"role": "owner"}),
			"token_type":   "bearer",
		})
	})
	f.mux.HandleFunc("GET /api/admins/current", auth(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, admin)
	}))
	f.mux.HandleFunc("GET /api/admins", auth(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, []map[string]any{admin})
	}))

	f.mux.HandleFunc("GET /api/subscriptions", auth(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		q := r.URL.Query()
		all := f.usersSnapshot()
		if size := queryInt(q, "size", 0); size > 0 {
			all = window(all, (queryInt(q, "page", 1)-1)*size, size)
		}
		items := []map[string]any{}
		for _, u := range all {
			items = append(items, guardSubscription(u, now))
		}
		WriteJSON(w, http.StatusOK, items)
	}))
	f.mux.HandleFunc("GET /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]any{}
		for _, n := range f.nodesSnapshot() {
			items = append(items, guardNode(n))
		}
		WriteJSON(w, http.StatusOK, items)
	}))
	f.mux.HandleFunc("GET /api/services", auth(func(w http.ResponseWriter, r *http.Request) {
		ids := []int64{}
		for _, n := range f.nodesSnapshot() {
			ids = append(ids, n.id)
		}
		WriteJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "remark": "default", "node_ids": ids, "users_count": len(f.usersSnapshot())},
		})
	}))

	f.mux.HandleFunc("GET /api/stats", auth(func(w http.ResponseWriter, r *http.Request) {
		c := f.counts(time.Now())
		users := len(f.usersSnapshot())
		nodes := f.nodesSnapshot()
		active := 0
		for _, n := range nodes {
			if n.enabled {
				active++
			}
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"total_subscriptions":    users,
			"active_subscriptions":   c["active"],
			"inactive_subscriptions": users - c["active"],
			"online_subscriptions":   0,
			"total_admins":           1,
			"total_nodes":            len(nodes),
			"active_nodes":           active,
			"inactive_nodes":         len(nodes) - active,
		})
	}))
	f.mux.HandleFunc("GET /api/stats/subscriptions", auth(func(w http.ResponseWriter, r *http.Request) {
		c := f.counts(time.Now())
		users := len(f.usersSnapshot())
		WriteJSON(w, http.StatusOK, map[string]any{
			"total":    users,
			"active":   c["active"],
			"inactive": users - c["active"],
			"disabled": c["disabled"],
			"expired":  c["expired"],
			"limited":  c["limited"],
			"online":   0,
		})
	}))

	f.mux.HandleFunc("POST /api/subscriptions", auth(func(w http.ResponseWriter, r *http.Request) {
		var body []struct {
			Username    string `json:"username"`
			LimitUsage  int64  `json:"limit_usage"`
			LimitExpire int64  `json:"limit_expire"`
			Note        string `json:"note"`
		}
		if err := decodeBody(r, &body); err != nil || len(body) == 0 {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid subscriptions")
			return
		}
		now := time.Now()
		created := []map[string]any{}
		for _, s := range body {
			var expire time.Time
			if s.LimitExpire > 0 {
				expire = time.Unix(s.LimitExpire, 0).UTC()
			}
			u := f.addUser(s.Username, expire, s.LimitUsage, s.Note)
			if u == nil {
				WriteDetail(w, http.StatusConflict, "subscription "+s.Username+" already exists")
				return
			}
			created = append(created, guardSubscription(*u, now))
		}
		WriteJSON(w, http.StatusOK, created)
	}))

	setEnabled := func(enabled bool) http.HandlerFunc {
		return auth(func(w http.ResponseWriter, r *http.Request) {
			name := r.PathValue("username")
			u, ok := f.updateUser(func(u *userRecord) bool { return u.name == name }, func(u *userRecord) { u.enabled = enabled })
			if !ok {
				WriteDetail(w, http.StatusNotFound, "subscription not found")
				return
			}
			WriteJSON(w, http.StatusOK, guardSubscription(u, time.Now()))
		})
	}
	f.mux.HandleFunc("PUT /api/subscriptions/{username}/enable", setEnabled(true))
	f.mux.HandleFunc("PUT /api/subscriptions/{username}/disable", setEnabled(false))

	f.mux.HandleFunc("DELETE /api/subscriptions/{username}", auth(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("username")
		if !f.deleteUser(func(u *userRecord) bool { return u.name == name }) {
			WriteDetail(w, http.StatusNotFound, "subscription not found")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{})
	}))

	f.mux.HandleFunc("POST /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Remark  string `json:"remark"`
			Address string `json:"address"`
			Port    int    `json:"port"`
			APIKey  string `json:"api_key"`
		}
		if err := decodeBody(r, &body); err != nil || body.Remark == "" || body.Address == "" {
			WriteDetail(w, http.StatusUnprocessableEntity, "invalid node")
			return
		}
		n := f.addNode(body.Remark, body.Address, body.Port)
		if n == nil {
			WriteDetail(w, http.StatusConflict, "node already exists")
			return
		}
		WriteJSON(w, http.StatusOK, guardNode(*n))
	}))
	f.mux.HandleFunc("DELETE /api/nodes/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || !f.deleteNode(func(n *nodeRecord) bool { return n.id == id }) {
			WriteDetail(w, http.StatusNotFound, "node not found")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{})
	}))
}

func guardSubscription(u userRecord, now time.Time) map[string]any {
	status := u.status(now)
	var limitExpire int64
	if !u.expire.IsZero() {
		limitExpire = u.expire.Unix()
	}
	return map[string]any{
		"id":             u.id,
		"username":       u.name,
		"owner_username": AdminUser,
		"access_key":     u.shortID,
		"enabled":        u.enabled,
		"activated":      true,
		"limited":        status == "limited",
		"expired":        status == "expired",
		"is_active":      status == "active",
		"is_online":      false,
		"link":           "/guards/" + u.shortID,
		"limit_usage":    u.limit,
		"limit_expire":   limitExpire,
		"current_usage":  u.used,
		"total_usage":    u.used,
		"service_ids":    []int64{1},
		"note":           u.note,
		"online_at":      nil,
		"created_at":     u.createdAt.Format(time.RFC3339),
	}
}

func guardNode(n nodeRecord) map[string]any {
	return map[string]any{
		"id":            n.id,
		"remark":        n.name,
		"address":       n.address,
		"port":          n.port,
		"usage_rate":    1.0,
		"enabled":       n.enabled,
		"current_usage": 0,
	}
}
