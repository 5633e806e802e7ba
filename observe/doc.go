// Package observe provides logging and metrics for the MCP server.
//
// Logging is structured JSON written to stderr: stdout carries the MCP
// protocol frames and must stay clean. Metrics are OpenTelemetry counters
// covering token refreshes, upstream API calls, and tool invocations.
// Credential and token values must never appear in log fields.
package observe
