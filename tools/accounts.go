package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaearon/mcp-privilege-cloud-sub001/pcloud"
)

func (s *Server) registerAccountTools() {
	s.mcp.AddTool(mcp.NewTool("list_accounts",
		mcp.WithDescription("List privileged accounts, optionally filtered by keyword or safe."),
		mcp.WithString("search", mcp.Description("Free-text keyword search.")),
		mcp.WithString("safe_name", mcp.Description("Restrict results to one safe.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of accounts to return.")),
	), s.handle("list_accounts", s.listAccounts))

	s.mcp.AddTool(mcp.NewTool("get_account_details",
		mcp.WithDescription("Get the details of one account by its id."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account id, e.g. \"11_3\".")),
	), s.handle("get_account_details", s.getAccountDetails))

	s.mcp.AddTool(mcp.NewTool("create_account",
		mcp.WithDescription("Onboard a new privileged account."),
		mcp.WithString("platform_id", mcp.Required(), mcp.Description("The platform the account is assigned to.")),
		mcp.WithString("safe_name", mcp.Required(), mcp.Description("The safe the account is stored in.")),
		mcp.WithString("name", mcp.Description("The account name.")),
		mcp.WithString("address", mcp.Description("The target address.")),
		mcp.WithString("user_name", mcp.Description("The account's user name on the target.")),
		mcp.WithString("secret", mcp.Description("The initial secret value.")),
		mcp.WithString("secret_type", mcp.Description("\"password\" or \"key\".")),
	), s.handle("create_account", s.createAccount))

	s.mcp.AddTool(mcp.NewTool("delete_account",
		mcp.WithDescription("Delete an account by its id."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account id.")),
	), s.handle("delete_account", s.deleteAccount))

	s.mcp.AddTool(mcp.NewTool("get_account_password",
		mcp.WithDescription("Retrieve an account's current secret. The reason is written to the audit trail."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account id.")),
		mcp.WithString("reason", mcp.Description("Audit reason for retrieving the secret.")),
	), s.handle("get_account_password", s.getAccountPassword))

	s.mcp.AddTool(mcp.NewTool("change_account_password",
		mcp.WithDescription("Mark an account for an immediate CPM-driven password change."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account id.")),
	), s.handle("change_account_password", s.changeAccountPassword))

	s.mcp.AddTool(mcp.NewTool("verify_account_password",
		mcp.WithDescription("Mark an account for CPM password verification."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account id.")),
	), s.handle("verify_account_password", s.verifyAccountPassword))

	s.mcp.AddTool(mcp.NewTool("reconcile_account_password",
		mcp.WithDescription("Mark an account for CPM password reconciliation."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("The account id.")),
	), s.handle("reconcile_account_password", s.reconcileAccountPassword))
}

func (s *Server) listAccounts(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	search, err := optionalString(req, "search")
	if err != nil {
		return nil, err
	}
	safeName, err := optionalString(req, "safe_name")
	if err != nil {
		return nil, err
	}
	limit, err := optionalInt(req, "limit")
	if err != nil {
		return nil, err
	}

	accounts, err := s.client.ListAccounts(ctx, pcloud.ListAccountsOptions{
		Search:   search,
		SafeName: safeName,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"accounts": accounts, "count": len(accounts)}, nil
}

func (s *Server) getAccountDetails(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	accountID, err := requireString(req, "account_id")
	if err != nil {
		return nil, err
	}
	return s.client.GetAccount(ctx, accountID)
}

func (s *Server) createAccount(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	platformID, err := requireString(req, "platform_id")
	if err != nil {
		return nil, err
	}
	safeName, err := requireString(req, "safe_name")
	if err != nil {
		return nil, err
	}

	input := pcloud.CreateAccountInput{PlatformID: platformID, SafeName: safeName}
	for _, opt := range []struct {
		param string
		dst   *string
	}{
		{"name", &input.Name},
		{"address", &input.Address},
		{"user_name", &input.UserName},
		{"secret", &input.Secret},
		{"secret_type", &input.SecretType},
	} {
		v, err := optionalString(req, opt.param)
		if err != nil {
			return nil, err
		}
		*opt.dst = v
	}

	return s.client.CreateAccount(ctx, input)
}

func (s *Server) deleteAccount(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	accountID, err := requireString(req, "account_id")
	if err != nil {
		return nil, err
	}
	if err := s.client.DeleteAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "account_id": accountID}, nil
}

func (s *Server) getAccountPassword(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	accountID, err := requireString(req, "account_id")
	if err != nil {
		return nil, err
	}
	reason, err := optionalString(req, "reason")
	if err != nil {
		return nil, err
	}

	secretValue, err := s.client.GetAccountPassword(ctx, accountID, reason)
	if err != nil {
		return nil, err
	}
	return map[string]any{"account_id": accountID, "password": secretValue}, nil
}

func (s *Server) changeAccountPassword(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	return s.cpmAction(ctx, req, "change", s.client.ChangeAccountPassword)
}

func (s *Server) verifyAccountPassword(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	return s.cpmAction(ctx, req, "verify", s.client.VerifyAccountPassword)
}

func (s *Server) reconcileAccountPassword(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	return s.cpmAction(ctx, req, "reconcile", s.client.ReconcileAccountPassword)
}

func (s *Server) cpmAction(ctx context.Context, req mcp.CallToolRequest, action string, fn func(context.Context, string) error) (any, error) {
	accountID, err := requireString(req, "account_id")
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, accountID); err != nil {
		return nil, err
	}
	return map[string]any{"account_id": accountID, "action": action, "scheduled": true}, nil
}
