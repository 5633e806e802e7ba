package pcloud

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Safe is a Privilege Cloud safe.
type Safe struct {
	SafeURLID                 string `json:"safeUrlId"`
	SafeName                  string `json:"safeName"`
	SafeNumber                int    `json:"safeNumber"`
	Description               string `json:"description"`
	Location                  string `json:"location"`
	Creator                   *Actor `json:"creator,omitempty"`
	NumberOfDaysRetention     int    `json:"numberOfDaysRetention"`
	NumberOfVersionsRetention int    `json:"numberOfVersionsRetention"`
	AutoPurgeEnabled          bool   `json:"autoPurgeEnabled"`
	CreationTime              int64  `json:"creationTime"`
	LastModificationTime      int64  `json:"lastModificationTime"`
	ManagingCPM               string `json:"managingCPM"`
}

// Actor identifies a user or component referenced by a safe.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// safePage is the safe list envelope, tolerant of casing drift.
type safePage struct {
	Safes []Safe
	Count int
}

func (p *safePage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value      []Safe `json:"value"`
		ValueUpper []Safe `json:"Value"`
		Count      int    `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Safes = raw.Value
	if p.Safes == nil {
		p.Safes = raw.ValueUpper
	}
	p.Count = raw.Count
	return nil
}

// ListSafesOptions filter the safe listing.
type ListSafesOptions struct {
	Search string
	Offset int
	Limit  int
}

// ListSafes returns safes visible to the service account.
func (c *Client) ListSafes(ctx context.Context, opts ListSafesOptions) ([]Safe, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page safePage
	if err := c.get(ctx, "/Safes", query, &page); err != nil {
		return nil, err
	}
	return page.Safes, nil
}

// GetSafe returns one safe by name.
func (c *Client) GetSafe(ctx context.Context, safeName string) (*Safe, error) {
	var safe Safe
	if err := c.get(ctx, "/Safes/"+url.PathEscape(safeName), nil, &safe); err != nil {
		return nil, err
	}
	return &safe, nil
}

// AddSafeInput is the request body for AddSafe.
type AddSafeInput struct {
	SafeName                  string `json:"safeName"`
	Description               string `json:"description,omitempty"`
	Location                  string `json:"location,omitempty"`
	NumberOfDaysRetention     int    `json:"numberOfDaysRetention,omitempty"`
	NumberOfVersionsRetention int    `json:"numberOfVersionsRetention,omitempty"`
	ManagingCPM               string `json:"managingCPM,omitempty"`
}

// AddSafe creates a new safe.
func (c *Client) AddSafe(ctx context.Context, input AddSafeInput) (*Safe, error) {
	var safe Safe
	if err := c.post(ctx, "/Safes", input, &safe); err != nil {
		return nil, err
	}
	return &safe, nil
}

// SafeMember is a member of a safe with its permission set.
type SafeMember struct {
	MemberName  string          `json:"memberName"`
	MemberType  string          `json:"memberType"`
	Permissions map[string]bool `json:"permissions"`
}

// safeMemberPage is the member list envelope.
type safeMemberPage struct {
	Members []SafeMember
	Count   int
}

func (p *safeMemberPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value      []SafeMember `json:"value"`
		ValueUpper []SafeMember `json:"Value"`
		Count      int          `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Members = raw.Value
	if p.Members == nil {
		p.Members = raw.ValueUpper
	}
	p.Count = raw.Count
	return nil
}

// ListSafeMembers returns the members of a safe.
func (c *Client) ListSafeMembers(ctx context.Context, safeName string) ([]SafeMember, error) {
	var page safeMemberPage
	if err := c.get(ctx, "/Safes/"+url.PathEscape(safeName)+"/Members", nil, &page); err != nil {
		return nil, err
	}
	return page.Members, nil
}
