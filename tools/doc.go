// Package tools exposes Privilege Cloud operations as MCP tools.
//
// Each tool validates its declared parameters before any network call,
// delegates to the pcloud client, and returns the JSON-shaped result. API
// failures are mapped to a structured error payload with a troubleshooting
// hint; credential and token values never appear in payloads or logs.
package tools
