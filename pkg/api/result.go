package api

import "encoding/json"

// Result is the outcome of a mutation. Backends that report logical
// failure in a {success, msg} envelope produce Success=false here rather
// than an error; Record is nil when the backend returned no record.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Record  *T     `json:"record,omitempty"`

	// Data is the envelope payload as received, for envelope backends.
	Data json.RawMessage `json:"data,omitempty"`
}

// Succeeded builds a successful result around rec.
func Succeeded[T any](rec *T) *Result[T] {
	return &Result[T]{Success: true, Record: rec}
}

// Failed builds an unsuccessful result carrying the backend message.
func Failed[T any](msg string) *Result[T] {
	return &Result[T]{Success: false, Message: msg}
}
