package paneltest

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/opexcore/pkg/decode"
)

// adminUUID identifies the fake Remnawave admin in token claims.
var adminUUID = uuid.NewString()

// routeRemnawave serves the Remnawave API. Every body is wrapped in
// {"response": ...} and errors carry a message field.
func (f *fake) routeRemnawave() {
	deny := func(w http.ResponseWriter) { remnaError(w, http.StatusUnauthorized, "Unauthorized") }
	auth := func(h http.HandlerFunc) http.HandlerFunc { return bearer(h, deny) }

	f.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &creds); err != nil || creds.Username != AdminUser || creds.Password != AdminPassword {
			remnaError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		token := f.issue(map[string]any{"uuid": adminUUID, "username": AdminUser, "role": "ADMIN"})
		remnaRespond(w, map[string]string{"accessToken": token})
	})

	f.mux.HandleFunc("GET /api/users", auth(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		q := r.URL.Query()
		all := f.usersSnapshot()
		items := []map[string]any{}
		for _, u := range window(all, queryInt(q, "start", 0), queryInt(q, "size", 25)) {
			items = append(items, remnaUser(u, now))
		}
		remnaRespond(w, map[string]any{"users": items, "total": len(all)})
	}))
	f.mux.HandleFunc("GET /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]any{}
		for _, n := range f.nodesSnapshot() {
			items = append(items, remnaNode(n))
		}
		remnaRespond(w, items)
	}))
	f.mux.HandleFunc("GET /api/hosts", auth(func(w http.ResponseWriter, r *http.Request) {
		remnaRespond(w, []map[string]any{
			{"uuid": uuid.NewString(), "remark": "default", "address": "0.0.0.0", "port": 443, "isDisabled": false, "inboundUuid": uuid.NewString()},
		})
	}))
	f.mux.HandleFunc("GET /api/system/stats", auth(func(w http.ResponseWriter, r *http.Request) {
		c := f.counts(time.Now())
		online := 0
		for _, n := range f.nodesSnapshot() {
			if n.enabled {
				online++
			}
		}
		remnaRespond(w, map[string]any{
			"cpu":    map[string]any{"cores": 4, "physicalCores": 2},
			"memory": map[string]any{"total": int64(8 << 30), "used": int64(2 << 30), "free": int64(6 << 30)},
			"uptime": 3600,
			"users": map[string]any{
				"totalUsers": len(f.usersSnapshot()),
				"statusCounts": map[string]int{
					"ACTIVE":   c["active"],
					"DISABLED": c["disabled"],
					"LIMITED":  c["limited"],
					"EXPIRED":  c["expired"],
				},
			},
			"onlineStats": map[string]any{"onlineNow": 0, "lastDay": 0, "lastWeek": 0, "neverOnline": len(f.usersSnapshot())},
			"nodes":       map[string]any{"totalOnline": online},
		})
	}))

	f.mux.HandleFunc("POST /api/users", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username          string `json:"username"`
			ExpireAt          string `json:"expireAt"`
			TrafficLimitBytes int64  `json:"trafficLimitBytes"`
			Description       string `json:"description"`
		}
		if err := decodeBody(r, &body); err != nil || body.Username == "" {
			remnaError(w, http.StatusBadRequest, "Validation failed")
			return
		}
		expire, err := decode.ParseTime(body.ExpireAt)
		if err != nil {
			remnaError(w, http.StatusBadRequest, "expireAt is required")
			return
		}
		u := f.addUser(body.Username, expire, body.TrafficLimitBytes, body.Description)
		if u == nil {
			remnaError(w, http.StatusConflict, "User username already exists")
			return
		}
		remnaRespond(w, remnaUser(*u, time.Now()))
	}))

	setEnabled := func(enabled bool) http.HandlerFunc {
		return auth(func(w http.ResponseWriter, r *http.Request) {
			id := r.PathValue("uuid")
			u, ok := f.updateUser(func(u *userRecord) bool { return u.uuid == id }, func(u *userRecord) { u.enabled = enabled })
			if !ok {
				remnaError(w, http.StatusNotFound, "User not found")
				return
			}
			remnaRespond(w, remnaUser(u, time.Now()))
		})
	}
	f.mux.HandleFunc("POST /api/users/{uuid}/actions/enable", setEnabled(true))
	f.mux.HandleFunc("POST /api/users/{uuid}/actions/disable", setEnabled(false))

	f.mux.HandleFunc("DELETE /api/users/{uuid}", auth(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("uuid")
		if !f.deleteUser(func(u *userRecord) bool { return u.uuid == id }) {
			remnaError(w, http.StatusNotFound, "User not found")
			return
		}
		remnaRespond(w, map[string]bool{"isDeleted": true})
	}))

	f.mux.HandleFunc("POST /api/nodes", auth(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Port    int    `json:"port"`
		}
		if err := decodeBody(r, &body); err != nil || body.Name == "" || body.Address == "" {
			remnaError(w, http.StatusBadRequest, "Validation failed")
			return
		}
		if body.Port == 0 {
			body.Port = 2222
		}
		n := f.addNode(body.Name, body.Address, body.Port)
		if n == nil {
			remnaError(w, http.StatusConflict, "Node already exists")
			return
		}
		remnaRespond(w, remnaNode(*n))
	}))
	f.mux.HandleFunc("DELETE /api/nodes/{uuid}", auth(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("uuid")
		if !f.deleteNode(func(n *nodeRecord) bool { return n.uuid == id }) {
			remnaError(w, http.StatusNotFound, "Node not found")
			return
		}
		remnaRespond(w, map[string]bool{"isDeleted": true})
	}))

	f.mux.HandleFunc("GET /api/sub/{short}/info", func(w http.ResponseWriter, r *http.Request) {
		short := r.PathValue("short")
		u, ok := f.findUser(func(u *userRecord) bool { return u.shortID == short })
		if !ok {
			remnaRespond(w, map[string]any{"isFound": false, "links": []string{}})
			return
		}
		status := strings.ToUpper(u.status(time.Now()))
		var daysLeft any
		if !u.expire.IsZero() {
			daysLeft = int(time.Until(u.expire).Hours() / 24)
		}
		remnaRespond(w, map[string]any{
			"isFound": true,
			"user": map[string]any{
				"shortUuid":            u.shortID,
				"username":             u.name,
				"daysLeft":             daysLeft,
				"trafficUsed":          "0 B",
				"trafficLimit":         "0",
				"expiresAt":            rfc3339OrNil(u.expire),
				"isActive":             status == "ACTIVE",
				"userStatus":           status,
				"trafficLimitStrategy": "NO_RESET",
			},
			"links":           []string{"vless://" + u.uuid + "@0.0.0.0:443"},
			"subscriptionUrl": "/api/sub/" + u.shortID,
		})
	})
}

func remnaRespond(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, map[string]any{"response": v})
}

func remnaError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"message": msg, "statusCode": status})
}

func remnaUser(u userRecord, now time.Time) map[string]any {
	return map[string]any{
		"uuid":                 u.uuid,
		"shortUuid":            u.shortID,
		"username":             u.name,
		"status":               strings.ToUpper(u.status(now)),
		"trafficLimitBytes":    u.limit,
		"trafficLimitStrategy": "NO_RESET",
		"expireAt":             rfc3339OrNil(u.expire),
		"subscriptionUrl":      "/api/sub/" + u.shortID,
		"description":          u.note,
		"createdAt":            u.createdAt.Format(time.RFC3339),
		"userTraffic":          map[string]any{"usedTrafficBytes": u.used, "lifetimeUsedTrafficBytes": u.used, "onlineAt": nil},
	}
}

func remnaNode(n nodeRecord) map[string]any {
	return map[string]any{
		"uuid":          n.uuid,
		"name":          n.name,
		"address":       n.address,
		"port":          n.port,
		"isConnected":   n.enabled,
		"isConnecting":  false,
		"isDisabled":    !n.enabled,
		"isNodeOnline":  n.enabled,
		"isXrayRunning": n.enabled,
		"xrayVersion":   "1.8.24",
		"usersOnline":   0,
		"countryCode":   "XX",
	}
}
