package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

// requireString returns the named argument, failing with a validation
// error when it is absent, empty, or not a string.
func requireString(req mcp.CallToolRequest, name string) (string, error) {
	raw, ok := req.GetArguments()[name]
	if !ok {
		return "", pcloud.NewValidationError(fmt.Sprintf("required parameter %q is missing", name))
	}
	s, ok := raw.(string)
	if !ok {
		return "", pcloud.NewValidationError(fmt.Sprintf("parameter %q must be a string", name))
	}
	if strings.TrimSpace(s) == "" {
		return "", pcloud.NewValidationError(fmt.Sprintf("required parameter %q must not be empty", name))
	}
	return s, nil
}

// optionalString returns the named argument or "" when absent.
func optionalString(req mcp.CallToolRequest, name string) (string, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", pcloud.NewValidationError(fmt.Sprintf("parameter %q must be a string", name))
	}
	return s, nil
}

// optionalInt returns the named argument or 0 when absent. JSON numbers
// arrive as float64; fractional values are rejected.
func optionalInt(req mcp.CallToolRequest, name string) (int, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return 0, nil
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) {
		return 0, pcloud.NewValidationError(fmt.Sprintf("parameter %q must be an integer", name))
	}
	return int(f), nil
}

// optionalBool returns the named argument, reporting whether it was set.
func optionalBool(req mcp.CallToolRequest, name string) (value, set bool, err error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return false, false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, false, pcloud.NewValidationError(fmt.Sprintf("parameter %q must be a boolean", name))
	}
	return b, true, nil
}
