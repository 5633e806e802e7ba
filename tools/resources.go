package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// HealthResourceURI identifies the health resource.
const HealthResourceURI = "cyberark://health"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(HealthResourceURI, "Server health",
		mcp.WithResourceDescription("Token cache state and tenant reachability."),
		mcp.WithMIMEType("application/json"),
	), s.readHealth)
}

func (s *Server) readHealth(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var report any
	if s.checks != nil {
		report = s.checks.Run(ctx)
	} else {
		report = map[string]string{"status": "unknown", "message": "health checks disabled"}
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      HealthResourceURI,
			MIMEType: "application/json",
			Text:     string(encoded),
		},
	}, nil
}
