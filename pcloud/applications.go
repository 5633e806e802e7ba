package pcloud

import (
	"context"
	"net/url"
)

// Application is an application identity permitted to fetch secrets.
type Application struct {
	AppID               string `json:"AppID"`
	Description         string `json:"Description"`
	Location            string `json:"Location"`
	AccessPermittedFrom int    `json:"AccessPermittedFrom"`
	AccessPermittedTo   int    `json:"AccessPermittedTo"`
	BusinessOwnerName   string `json:"BusinessOwnerFName"`
	Disabled            bool   `json:"Disabled"`
}

// applicationList is the application list envelope. This endpoint family
// predates the "value" envelope and keeps capitalized keys.
type applicationList struct {
	Applications []Application `json:"application"`
}

// ListApplications returns the application identities on the tenant.
func (c *Client) ListApplications(ctx context.Context, location string) ([]Application, error) {
	query := url.Values{}
	if location != "" {
		query.Set("Location", location)
	}

	var list applicationList
	if err := c.get(ctx, "/Applications", query, &list); err != nil {
		return nil, err
	}
	return list.Applications, nil
}

// GetApplication returns one application by its id.
func (c *Client) GetApplication(ctx context.Context, appID string) (*Application, error) {
	var envelope struct {
		Application Application `json:"application"`
	}
	if err := c.get(ctx, "/Applications/"+url.PathEscape(appID), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Application, nil
}

// AddApplicationInput is the request body for AddApplication.
type AddApplicationInput struct {
	AppID               string `json:"AppID"`
	Description         string `json:"Description,omitempty"`
	Location            string `json:"Location,omitempty"`
	AccessPermittedFrom int    `json:"AccessPermittedFrom,omitempty"`
	AccessPermittedTo   int    `json:"AccessPermittedTo,omitempty"`
	Disabled            bool   `json:"Disabled,omitempty"`
}

// AddApplication creates a new application identity.
func (c *Client) AddApplication(ctx context.Context, input AddApplicationInput) error {
	body := map[string]AddApplicationInput{"application": input}
	return c.post(ctx, "/Applications", body, nil)
}

// DeleteApplication removes an application identity.
func (c *Client) DeleteApplication(ctx context.Context, appID string) error {
	return c.delete(ctx, "/Applications/"+url.PathEscape(appID))
}

// AuthMethod is an authentication method bound to an application.
type AuthMethod struct {
	AuthID    string `json:"authID"`
	AuthType  string `json:"AuthType"`
	AuthValue string `json:"AuthValue"`
	Comment   string `json:"Comment,omitempty"`
}

// authMethodList is the auth method list envelope.
type authMethodList struct {
	Methods []AuthMethod `json:"authentication"`
}

// ListApplicationAuthMethods returns the auth methods of an application.
func (c *Client) ListApplicationAuthMethods(ctx context.Context, appID string) ([]AuthMethod, error) {
	var list authMethodList
	path := "/Applications/" + url.PathEscape(appID) + "/Authentications"
	if err := c.get(ctx, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Methods, nil
}
