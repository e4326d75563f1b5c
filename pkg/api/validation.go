package api

import (
	"fmt"
	"regexp"
	"time"
)

// usernamePattern accepts the union of what the supported backends allow
// for user names: 3-32 characters of letters, digits, underscore, dash, dot.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,32}$`)

// ValidateUserCreate checks a UserCreate for validity. It returns an
// *APIError describing the first validation failure, or nil.
func ValidateUserCreate(req *UserCreate, now time.Time) *APIError {
	if req.Username == "" {
		return NewInvalidRequestError("username", "username is required")
	}
	if !usernamePattern.MatchString(req.Username) {
		return NewInvalidRequestError("username",
			fmt.Sprintf("username %q must be 3-32 letters, digits, '_', '-' or '.'", req.Username))
	}
	if req.DataLimit != nil && *req.DataLimit < 0 {
		return NewInvalidRequestError("data_limit", "data_limit must not be negative")
	}
	if req.ExpireAt != nil && !req.ExpireAt.After(now) {
		return NewInvalidRequestError("expire_at", "expire_at must be in the future")
	}
	return nil
}

// ValidateNodeCreate checks a NodeCreate for validity.
func ValidateNodeCreate(req *NodeCreate) *APIError {
	if req.Name == "" {
		return NewInvalidRequestError("name", "name is required")
	}
	if req.Address == "" {
		return NewInvalidRequestError("address", "address is required")
	}
	if req.Port < 0 || req.Port > 65535 {
		return NewInvalidRequestError("port", fmt.Sprintf("port %d out of range", req.Port))
	}
	if req.APIPort < 0 || req.APIPort > 65535 {
		return NewInvalidRequestError("api_port", fmt.Sprintf("api_port %d out of range", req.APIPort))
	}
	if req.ServicePort < 0 || req.ServicePort > 65535 {
		return NewInvalidRequestError("service_port", fmt.Sprintf("service_port %d out of range", req.ServicePort))
	}
	return nil
}

// ValidateTimeRange checks a [start, end] window for traffic queries.
func ValidateTimeRange(start, end time.Time) *APIError {
	if start.IsZero() || end.IsZero() {
		return NewInvalidRequestError("start", "start and end are required")
	}
	if !start.Before(end) {
		return NewInvalidRequestError("end", "end must be after start")
	}
	return nil
}
