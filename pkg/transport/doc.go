// Package transport performs the HTTP calls that panel adapters make
// against backend REST APIs.
//
// A [Client] builds each request from a [Request] value, attaches the
// session's bearer token, applies the per-call timeout and optional
// client-side rate limit, and returns the fully read response body.
// Non-2xx statuses are mapped to typed errors by [MapHTTPError]; network
// failures by [MapNetworkError].
//
// # Retries
//
// Only GET requests are retried, only on transport_error, and only up to
// Options.MaxRetries times (default 0). Timeouts, 4xx responses and every
// mutation are returned to the caller as-is so that a create or delete is
// never executed twice by the library.
//
// # Correlation
//
// Every call carries an X-Request-ID header. A caller may choose the value
// with [ContextWithRequestID]; otherwise one is generated.
//
// # Logging
//
// Calls are logged through pkg/debug under the "transport" category.
// Authorization headers, form bodies and token fields never reach the log.
package transport
