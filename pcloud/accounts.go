package pcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Account is a privileged account managed by Privilege Cloud.
type Account struct {
	ID                        string            `json:"id"`
	Name                      string            `json:"name"`
	Address                   string            `json:"address"`
	UserName                  string            `json:"userName"`
	PlatformID                string            `json:"platformId"`
	SafeName                  string            `json:"safeName"`
	SecretType                string            `json:"secretType"`
	PlatformAccountProperties map[string]string `json:"platformAccountProperties,omitempty"`
	SecretManagement          *SecretManagement `json:"secretManagement,omitempty"`
	CreatedTime               int64             `json:"createdTime"`
}

// SecretManagement describes CPM handling of an account's secret.
type SecretManagement struct {
	AutomaticManagementEnabled bool   `json:"automaticManagementEnabled"`
	ManualManagementReason     string `json:"manualManagementReason,omitempty"`
	LastModifiedTime           int64  `json:"lastModifiedTime,omitempty"`
}

// accountPage is the list response envelope. Older API generations emit
// "Value"; both spellings decode into the same canonical slice.
type accountPage struct {
	Accounts []Account
	Count    int
}

func (p *accountPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value      []Account `json:"value"`
		ValueUpper []Account `json:"Value"`
		Count      int       `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Accounts = raw.Value
	if p.Accounts == nil {
		p.Accounts = raw.ValueUpper
	}
	p.Count = raw.Count
	return nil
}

// ListAccountsOptions filter the account listing.
type ListAccountsOptions struct {
	// Search is a free-text keyword search applied upstream.
	Search string

	// SafeName restricts results to one safe.
	SafeName string

	// Offset and Limit page through results. Zero values are omitted.
	Offset int
	Limit  int
}

// ListAccounts returns accounts visible to the service account.
func (c *Client) ListAccounts(ctx context.Context, opts ListAccountsOptions) ([]Account, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.SafeName != "" {
		query.Set("filter", "safeName eq "+opts.SafeName)
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page accountPage
	if err := c.get(ctx, "/Accounts", query, &page); err != nil {
		return nil, err
	}
	return page.Accounts, nil
}

// GetAccount returns one account by its id.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var account Account
	if err := c.get(ctx, "/Accounts/"+url.PathEscape(accountID), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccountInput is the request body for CreateAccount.
type CreateAccountInput struct {
	Name                      string            `json:"name,omitempty"`
	Address                   string            `json:"address,omitempty"`
	UserName                  string            `json:"userName,omitempty"`
	PlatformID                string            `json:"platformId"`
	SafeName                  string            `json:"safeName"`
	SecretType                string            `json:"secretType,omitempty"`
	Secret                    string            `json:"secret,omitempty"`
	PlatformAccountProperties map[string]string `json:"platformAccountProperties,omitempty"`
	SecretManagement          *SecretManagement `json:"secretManagement,omitempty"`
}

// CreateAccount onboards a new account.
func (c *Client) CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error) {
	var account Account
	if err := c.post(ctx, "/Accounts", input, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account by its id.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	return c.delete(ctx, "/Accounts/"+url.PathEscape(accountID))
}

// GetAccountPassword retrieves the account's current secret. The reason is
// recorded in the upstream audit trail.
func (c *Client) GetAccountPassword(ctx context.Context, accountID, reason string) (string, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}

	// The endpoint returns the secret as a bare JSON string.
	var secretValue string
	path := fmt.Sprintf("/Accounts/%s/Password/Retrieve", url.PathEscape(accountID))
	if err := c.post(ctx, path, body, &secretValue); err != nil {
		return "", err
	}
	return secretValue, nil
}

// ChangeAccountPassword marks the account for an immediate CPM-driven
// password change.
func (c *Client) ChangeAccountPassword(ctx context.Context, accountID string) error {
	path := fmt.Sprintf("/Accounts/%s/Change", url.PathEscape(accountID))
	return c.post(ctx, path, map[string]bool{"ChangeEntireGroup": false}, nil)
}

// VerifyAccountPassword marks the account for CPM verification.
func (c *Client) VerifyAccountPassword(ctx context.Context, accountID string) error {
	path := fmt.Sprintf("/Accounts/%s/Verify", url.PathEscape(accountID))
	return c.post(ctx, path, struct{}{}, nil)
}

// ReconcileAccountPassword marks the account for CPM reconciliation.
func (c *Client) ReconcileAccountPassword(ctx context.Context, accountID string) error {
	path := fmt.Sprintf("/Accounts/%s/Reconcile", url.PathEscape(accountID))
	return c.post(ctx, path, struct{}{}, nil)
}
