package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

// ErrorPayload is the structured error object returned to the protocol
// layer in place of a result.
type ErrorPayload struct {
	Error           string `json:"error"`
	Details         string `json:"details,omitempty"`
	Troubleshooting string `json:"troubleshooting"`
}

// troubleshooting hints per error kind.
var hints = map[pcloud.ErrorKind]string{
	pcloud.KindAuthentication: "Check CYBERARK_CLIENT_ID and CYBERARK_CLIENT_SECRET, and confirm the service account is not locked or suspended.",
	pcloud.KindPermission:     "The service account lacks permission for this operation. Review its safe memberships and role assignments.",
	pcloud.KindNotFound:       "The referenced entity does not exist or is not visible to the service account. Verify the identifier and safe permissions.",
	pcloud.KindRateLimited:    "The tenant is throttling requests. Wait before retrying and reduce request frequency.",
	pcloud.KindValidation:     "A required parameter is missing or malformed. Check the tool's parameter schema.",
	pcloud.KindTransport:      "The tenant could not be reached. Check network connectivity, CYBERARK_SUBDOMAIN, and CYBERARK_API_TIMEOUT.",
	pcloud.KindMalformed:      "The tenant returned an unparseable response. Retry, and report the issue if it persists.",
	pcloud.KindUpstream:       "The tenant reported a server-side failure. Retry later and check the CyberArk status page.",
}

// errorResult maps err to an MCP error result carrying the structured
// payload.
func errorResult(err error) *mcp.CallToolResult {
	kind := pcloud.KindOf(err)

	details := ""
	var apiErr *pcloud.APIError
	if errors.As(err, &apiErr) {
		details = apiErr.Error()
	} else if err != nil {
		details = err.Error()
	}

	payload := ErrorPayload{
		Error:           kind.String(),
		Details:         details,
		Troubleshooting: hints[kind],
	}

	encoded, marshalErr := json.MarshalIndent(payload, "", "  ")
	if marshalErr != nil {
		return mcp.NewToolResultError(kind.String())
	}
	return mcp.NewToolResultError(string(encoded))
}
