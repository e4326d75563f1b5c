// Package api defines the shared vocabulary of opexcore: the records,
// pagination types, sessions and errors that every panel adapter returns.
//
// Callers program against these types regardless of which backend they
// talk to. Each record carries a common subset (ID, name, Status) that is
// reliable across backends; backend-specific attributes are optional
// pointer fields, and the adapter's own typed record is kept in Detail.
//
// Core types:
//   - [Session]: immutable authenticated context produced by a login
//   - [ID]: resource identifier tagged with its addressing scheme
//   - [Status]: normalized state plus the backend's raw status value
//   - [Page]: one page of a collection with an optional reported total
//   - [Result]: mutation outcome for envelope-style backends
//   - [APIError]: typed error with transport/auth/decode/business categories
//
// The package performs no I/O.
package api
