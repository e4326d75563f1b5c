package api

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

// IDKind describes how a backend addresses a resource in mutation paths.
type IDKind int

const (
	// IDName addresses a resource by its human-readable name.
	IDName IDKind = iota + 1
	// IDNumeric addresses a resource by a backend-generated integer.
	IDNumeric
	// IDUUID addresses a resource by a backend-generated UUID.
	IDUUID
)

// String returns a readable name for the kind.
func (k IDKind) String() string {
	switch k {
	case IDName:
		return "name"
	case IDNumeric:
		return "numeric"
	case IDUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// ID identifies a resource for update and delete calls. Callers capture the
// ID returned by a create call and pass it back unchanged; adapters never
// derive one kind of identifier from another.
type ID struct {
	Value string `json:"value"`
	Kind  IDKind `json:"kind"`
}

// NameID builds an identifier that addresses a resource by name.
func NameID(name string) ID {
	return ID{Value: name, Kind: IDName}
}

// NumericID builds an identifier from a backend-generated integer.
func NumericID(n int64) ID {
	return ID{Value: strconv.FormatInt(n, 10), Kind: IDNumeric}
}

// UUIDID builds an identifier from a backend-generated UUID string.
func UUIDID(s string) ID {
	return ID{Value: s, Kind: IDUUID}
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id.Value == ""
}

// String returns the raw identifier value.
func (id ID) String() string {
	return id.Value
}

// Expect checks that id is set, has the wanted kind, and is well formed
// for that kind. param names the argument in the returned error.
func (id ID) Expect(param string, want IDKind) *APIError {
	if id.IsZero() {
		return NewInvalidRequestError(param, "identifier is required")
	}
	if id.Kind != want {
		return NewInvalidRequestError(param, fmt.Sprintf(
			"backend addresses this resource by %s identifier, got %s %q; pass the ID returned by the create call",
			want, id.Kind, id.Value))
	}
	switch want {
	case IDNumeric:
		if _, err := strconv.ParseInt(id.Value, 10, 64); err != nil {
			return NewInvalidRequestError(param, fmt.Sprintf("%q is not a numeric identifier", id.Value))
		}
	case IDUUID:
		if _, err := uuid.Parse(id.Value); err != nil {
			return NewInvalidRequestError(param, fmt.Sprintf("%q is not a UUID", id.Value))
		}
	}
	return nil
}

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	requestIDPrefix = "req_"
)

var requestIDPattern = regexp.MustCompile(`^req_[a-zA-Z0-9]{24}$`)

// NewRequestID generates a correlation ID sent as X-Request-ID with every
// backend call: "req_" followed by 24 random alphanumeric characters.
func NewRequestID() string {
	return requestIDPrefix + randomAlphanumeric(idLength)
}

// ValidateRequestID checks whether s is a well-formed request ID.
func ValidateRequestID(s string) bool {
	return requestIDPattern.MatchString(s)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
