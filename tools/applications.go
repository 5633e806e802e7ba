package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

func (s *Server) registerApplicationTools() {
	s.mcp.AddTool(mcp.NewTool("list_applications",
		mcp.WithDescription("List application identities on the tenant."),
		mcp.WithString("search", mcp.Description("Case-insensitive substring match on the application id.")),
		mcp.WithString("location", mcp.Description("Restrict results to a vault location, e.g. \"\\\\Applications\".")),
	), s.handle("list_applications", s.listApplications))

	s.mcp.AddTool(mcp.NewTool("get_application_details",
		mcp.WithDescription("Get the details of one application by its id."),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("The application id.")),
	), s.handle("get_application_details", s.getApplicationDetails))

	s.mcp.AddTool(mcp.NewTool("add_application",
		mcp.WithDescription("Create a new application identity."),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("The application id.")),
		mcp.WithString("description", mcp.Description("A description of the application.")),
		mcp.WithString("location", mcp.Description("The vault location for the application.")),
	), s.handle("add_application", s.addApplication))

	s.mcp.AddTool(mcp.NewTool("delete_application",
		mcp.WithDescription("Delete an application identity."),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("The application id.")),
	), s.handle("delete_application", s.deleteApplication))

	s.mcp.AddTool(mcp.NewTool("list_application_auth_methods",
		mcp.WithDescription("List the authentication methods bound to an application."),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("The application id.")),
	), s.handle("list_application_auth_methods", s.listApplicationAuthMethods))
}

func (s *Server) listApplications(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	search, err := optionalString(req, "search")
	if err != nil {
		return nil, err
	}
	location, err := optionalString(req, "location")
	if err != nil {
		return nil, err
	}

	apps, err := s.client.ListApplications(ctx, location)
	if err != nil {
		return nil, err
	}

	if search != "" {
		needle := strings.ToLower(search)
		filtered := make([]pcloud.Application, 0, len(apps))
		for _, app := range apps {
			if strings.Contains(strings.ToLower(app.AppID), needle) {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}

	return map[string]any{"applications": apps, "count": len(apps)}, nil
}

func (s *Server) getApplicationDetails(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	appID, err := requireString(req, "app_id")
	if err != nil {
		return nil, err
	}
	return s.client.GetApplication(ctx, appID)
}

func (s *Server) addApplication(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	appID, err := requireString(req, "app_id")
	if err != nil {
		return nil, err
	}
	description, err := optionalString(req, "description")
	if err != nil {
		return nil, err
	}
	location, err := optionalString(req, "location")
	if err != nil {
		return nil, err
	}

	input := pcloud.AddApplicationInput{AppID: appID, Description: description, Location: location}
	if err := s.client.AddApplication(ctx, input); err != nil {
		return nil, err
	}
	return map[string]any{"created": true, "app_id": appID}, nil
}

func (s *Server) deleteApplication(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	appID, err := requireString(req, "app_id")
	if err != nil {
		return nil, err
	}
	if err := s.client.DeleteApplication(ctx, appID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "app_id": appID}, nil
}

func (s *Server) listApplicationAuthMethods(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	appID, err := requireString(req, "app_id")
	if err != nil {
		return nil, err
	}
	methods, err := s.client.ListApplicationAuthMethods(ctx, appID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"app_id": appID, "auth_methods": methods, "count": len(methods)}, nil
}
