// Package config loads process configuration for the Privilege Cloud MCP
// server.
//
// Configuration is environment-first: the CYBERARK_* variables are the
// primary interface because MCP clients pass settings through the launch
// environment. An optional YAML file (PRIVILEGE_CLOUD_CONFIG) can supply
// defaults; environment variables always win. The loaded Config is immutable
// for the process lifetime.
package config
