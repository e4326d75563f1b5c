// Package tools serves read-only panel operations as MCP tools.
//
// Each tool takes a profile name and runs against the fleet member of
// that name, logging in again once when the backend rejects a token.
// Callers only see the profiles their identity grants; an unknown and a
// forbidden profile produce the same error.
//
// Tools:
//   - list_profiles: configured profiles with kind, capabilities and session state
//   - list_users: one page of users
//   - list_nodes: one page of nodes
//   - get_stats: panel-wide counters
//   - overview: stats, nodes and users fetched concurrently
package tools
