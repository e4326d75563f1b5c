package auth

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what a panel access token reveals about its session. Fields
// the token does not carry stay at their zero value.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Sudo is nil unless a privilege claim was present.
	Sudo *bool
	// Role is the raw role or access claim value.
	Role string

	Claims map[string]any
}

// InspectToken parses token as a JWT without verifying its signature; the
// panel, not the client, is the authority on validity. It returns false for
// opaque tokens.
func InspectToken(token string) (*TokenInfo, bool) {
	if strings.Count(token, ".") != 2 {
		return nil, false
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	info := &TokenInfo{Claims: claims}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if name, ok := claims["username"].(string); ok {
		info.Subject = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time.UTC()
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time.UTC()
	}

	switch {
	case claims["is_sudo"] != nil:
		if v, ok := claims["is_sudo"].(bool); ok {
			info.Sudo = &v
		}
	case claims["access"] != nil:
		// Marzban-family tokens: "sudo" or "admin".
		if s, ok := claims["access"].(string); ok {
			info.Role = s
			v := strings.EqualFold(s, "sudo")
			info.Sudo = &v
		}
	case claims["role"] != nil:
		// Role vocabularies differ per backend; callers interpret Role.
		if s, ok := claims["role"].(string); ok {
			info.Role = s
		}
	}
	return info, true
}

// ClaimString returns a string claim or "".
func (t *TokenInfo) ClaimString(key string) string {
	if s, ok := t.Claims[key].(string); ok {
		return s
	}
	return ""
}
