package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

func (s *Server) registerSafeTools() {
	s.mcp.AddTool(mcp.NewTool("list_safes",
		mcp.WithDescription("List safes visible to the service account."),
		mcp.WithString("search", mcp.Description("Free-text keyword search.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of safes to return.")),
	), s.handle("list_safes", s.listSafes))

	s.mcp.AddTool(mcp.NewTool("get_safe_details",
		mcp.WithDescription("Get the details of one safe by name."),
		mcp.WithString("safe_name", mcp.Required(), mcp.Description("The safe name.")),
	), s.handle("get_safe_details", s.getSafeDetails))

	s.mcp.AddTool(mcp.NewTool("add_safe",
		mcp.WithDescription("Create a new safe."),
		mcp.WithString("safe_name", mcp.Required(), mcp.Description("The safe name.")),
		mcp.WithString("description", mcp.Description("A description of the safe's purpose.")),
		mcp.WithNumber("number_of_days_retention", mcp.Description("Version retention period in days.")),
	), s.handle("add_safe", s.addSafe))

	s.mcp.AddTool(mcp.NewTool("list_safe_members",
		mcp.WithDescription("List the members of a safe and their permissions."),
		mcp.WithString("safe_name", mcp.Required(), mcp.Description("The safe name.")),
	), s.handle("list_safe_members", s.listSafeMembers))
}

func (s *Server) listSafes(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	search, err := optionalString(req, "search")
	if err != nil {
		return nil, err
	}
	limit, err := optionalInt(req, "limit")
	if err != nil {
		return nil, err
	}

	safes, err := s.client.ListSafes(ctx, pcloud.ListSafesOptions{Search: search, Limit: limit})
	if err != nil {
		return nil, err
	}
	return map[string]any{"safes": safes, "count": len(safes)}, nil
}

func (s *Server) getSafeDetails(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	safeName, err := requireString(req, "safe_name")
	if err != nil {
		return nil, err
	}
	return s.client.GetSafe(ctx, safeName)
}

func (s *Server) addSafe(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	safeName, err := requireString(req, "safe_name")
	if err != nil {
		return nil, err
	}
	description, err := optionalString(req, "description")
	if err != nil {
		return nil, err
	}
	retention, err := optionalInt(req, "number_of_days_retention")
	if err != nil {
		return nil, err
	}

	return s.client.AddSafe(ctx, pcloud.AddSafeInput{
		SafeName:              safeName,
		Description:           description,
		NumberOfDaysRetention: retention,
	})
}

func (s *Server) listSafeMembers(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	safeName, err := requireString(req, "safe_name")
	if err != nil {
		return nil, err
	}
	members, err := s.client.ListSafeMembers(ctx, safeName)
	if err != nil {
		return nil, err
	}
	return map[string]any{"safe_name": safeName, "members": members, "count": len(members)}, nil
}
