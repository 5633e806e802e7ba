package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

func (s *Server) registerPlatformTools() {
	s.mcp.AddTool(mcp.NewTool("list_platforms",
		mcp.WithDescription("List the platforms configured on the tenant."),
		mcp.WithString("search", mcp.Description("Case-insensitive substring match on platform id or name.")),
		mcp.WithBoolean("active_only", mcp.Description("Only return active platforms.")),
	), s.handle("list_platforms", s.listPlatforms))

	s.mcp.AddTool(mcp.NewTool("get_platform_details",
		mcp.WithDescription("Get the details of one platform by its id."),
		mcp.WithString("platform_id", mcp.Required(), mcp.Description("The platform id, e.g. \"WinDomain\".")),
	), s.handle("get_platform_details", s.getPlatformDetails))
}

func (s *Server) listPlatforms(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	search, err := optionalString(req, "search")
	if err != nil {
		return nil, err
	}
	activeOnly, activeSet, err := optionalBool(req, "active_only")
	if err != nil {
		return nil, err
	}

	opts := pcloud.ListPlatformsOptions{}
	if activeSet && activeOnly {
		opts.Active = &activeOnly
	}

	platforms, err := s.client.ListPlatforms(ctx, opts)
	if err != nil {
		return nil, err
	}

	// The platform list endpoint ignores unsupported search terms on some
	// tenant versions, so filter client-side as well.
	platforms = filterPlatforms(platforms, search)

	return map[string]any{"platforms": platforms, "count": len(platforms)}, nil
}

func filterPlatforms(platforms []pcloud.Platform, search string) []pcloud.Platform {
	if search == "" {
		return platforms
	}
	needle := strings.ToLower(search)
	filtered := make([]pcloud.Platform, 0, len(platforms))
	for _, p := range platforms {
		if strings.Contains(strings.ToLower(p.ID), needle) ||
			strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (s *Server) getPlatformDetails(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	platformID, err := requireString(req, "platform_id")
	if err != nil {
		return nil, err
	}
	return s.client.GetPlatform(ctx, platformID)
}
