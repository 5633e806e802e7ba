package pcloud

import (
	"context"
	"encoding/json"
	"net/url"
)

// Platform is a normalized platform definition. The upstream list endpoint
// nests identity fields under a "general" block while the details endpoint
// returns them flat; both decode into this one shape.
type Platform struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SystemType   string `json:"systemType"`
	Active       bool   `json:"active"`
	PlatformType string `json:"platformType"`
	Description  string `json:"description"`
}

func (p *Platform) UnmarshalJSON(data []byte) error {
	type flat struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		SystemType   string `json:"systemType"`
		Active       bool   `json:"active"`
		PlatformType string `json:"platformType"`
		Description  string `json:"description"`
	}
	var raw struct {
		flat
		General *flat `json:"general"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	src := raw.flat
	if raw.General != nil {
		src = *raw.General
		// The details endpoint can carry platformType at the top level
		// even when the rest is nested.
		if src.PlatformType == "" {
			src.PlatformType = raw.PlatformType
		}
	}

	p.ID = src.ID
	p.Name = src.Name
	p.SystemType = src.SystemType
	p.Active = src.Active
	p.PlatformType = src.PlatformType
	p.Description = src.Description
	return nil
}

// platformPage is the platform list envelope. The list endpoint uses a
// "Platforms" key rather than the "value" envelope of newer endpoints.
type platformPage struct {
	Platforms []Platform
	Total     int
}

func (p *platformPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Platforms []Platform `json:"Platforms"`
		Value     []Platform `json:"value"`
		Total     int        `json:"Total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Platforms = raw.Platforms
	if p.Platforms == nil {
		p.Platforms = raw.Value
	}
	p.Total = raw.Total
	return nil
}

// ListPlatformsOptions filter the platform listing.
type ListPlatformsOptions struct {
	Search string
	Active *bool
}

// ListPlatforms returns the platforms configured on the tenant.
func (c *Client) ListPlatforms(ctx context.Context, opts ListPlatformsOptions) ([]Platform, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Active != nil {
		if *opts.Active {
			query.Set("active", "true")
		} else {
			query.Set("active", "false")
		}
	}

	var page platformPage
	if err := c.get(ctx, "/Platforms", query, &page); err != nil {
		return nil, err
	}
	return page.Platforms, nil
}

// GetPlatform returns one platform by its id.
func (c *Client) GetPlatform(ctx context.Context, platformID string) (*Platform, error) {
	var platform Platform
	if err := c.get(ctx, "/Platforms/"+url.PathEscape(platformID), nil, &platform); err != nil {
		return nil, err
	}
	return &platform, nil
}
