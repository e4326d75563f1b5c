package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rhuss/opexcore/pkg/api"
)

// maxErrorMessage bounds the backend text carried in an error.
const maxErrorMessage = 512

// MapHTTPError converts a non-2xx backend response into an APIError.
// The message is taken from the backend's detail/message/msg field when
// the body carries one.
func MapHTTPError(status int, body []byte) *api.APIError {
	message := ExtractErrorMessage(body)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = "backend rejected the credentials"
		}
		return api.NewAuthenticationError(status, message)

	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		if message == "" {
			message = fmt.Sprintf("backend unavailable (HTTP %d)", status)
		}
		e := api.NewTransportError(message, nil)
		e.Status = status
		return e

	default:
		if message == "" {
			message = fmt.Sprintf("backend rejected the request (HTTP %d)", status)
		}
		return api.NewBusinessError(status, message)
	}
}

// MapNetworkError converts a failed round trip into an APIError. Deadline
// expiry becomes transport_timeout; everything else, including caller
// cancellation, is transport_error.
func MapNetworkError(err error) *api.APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewTimeoutError("backend call timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return api.NewTimeoutError("backend call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return api.NewTransportError("backend call cancelled", err)
	}
	return api.NewTransportError(fmt.Sprintf("backend connection error: %s", err.Error()), err)
}

// errorBody covers the error shapes the supported backends produce:
// {"detail": "..."}, {"detail": [{"msg": "..."}]}, {"message": "..."},
// {"msg": "..."} and {"error": "..."}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message any             `json:"message"`
	Msg     string          `json:"msg"`
	Error   any             `json:"error"`
}

// ExtractErrorMessage pulls a human-readable message from an error body.
// It returns "" when the body carries none.
func ExtractErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if msg := detailMessage(eb.Detail); msg != "" {
		return truncate(msg)
	}
	if msg := textOf(eb.Message); msg != "" {
		return truncate(msg)
	}
	if eb.Msg != "" {
		return truncate(eb.Msg)
	}
	return truncate(textOf(eb.Error))
}

// detailMessage handles FastAPI's string and validation-list detail forms.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// textOf renders string messages and Nest-style string arrays.
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func truncate(s string) string {
	if len(s) <= maxErrorMessage {
		return s
	}
	// Cut on a rune boundary so the message stays valid UTF-8.
	n := maxErrorMessage
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
