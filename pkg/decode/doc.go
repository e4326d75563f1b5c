// Package decode turns panel response bodies into typed values.
//
// Decoding fails fast: malformed JSON, a missing or null required key, or a
// value of the wrong type yields a decode_error naming the offending field.
// Unknown fields are ignored so that newer backend releases stay readable.
//
// Three pagination shapes are supported:
//
//	Flat     [ {...}, {...} ]                          no total
//	Totaled  {"users": [...], "total": 42}            item and total keys vary
//	Echoed   {"items": [...], "total": 42, "page": 1, "size": 10}
//
// Wrapper envelopes such as {"response": {...}} are removed with [Unwrap];
// {success, msg, data} envelopes are read with [DecodeEnvelope].
package decode
