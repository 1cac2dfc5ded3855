// Package models defines the core data structures shared by the dashboard
// client and the service it talks to.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EntryID is the opaque identifier the service assigns to a stored credential.
// The service may encode it as a JSON number or string; both decode to the
// same textual form.
type EntryID string

// UnmarshalJSON accepts both `42` and `"42"`.
func (id *EntryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("entry id: %w", err)
		}
		*id = EntryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	*id = EntryID(n.String())
	return nil
}

// String returns the id as it appears in request paths.
func (id EntryID) String() string { return string(id) }

// CredentialSummary is the non-secret part of a stored credential.
// It never carries plaintext secret material.
type CredentialSummary struct {
	// ID is the unique identifier for the entry.
	ID EntryID `json:"id"`
	// SiteName is the display name of the site.
	SiteName string `json:"site_name"`
	// SiteURL is the optional address of the site.
	SiteURL string `json:"site_url,omitempty"`
	// SiteUsername is the login used on the site.
	SiteUsername string `json:"site_username"`
	// CreatedAt is the creation timestamp as sent by the service.
	CreatedAt string `json:"created_at,omitempty"`
}

// SearchText is the lowercased concatenation of the fields a search matches against.
func (c CredentialSummary) SearchText() string {
	return strings.ToLower(c.SiteName + " " + c.SiteUsername + " " + c.SiteURL)
}

// HasURL reports whether the entry has a site address.
func (c CredentialSummary) HasURL() bool {
	return strings.TrimSpace(c.SiteURL) != ""
}

// NewEntryRequest is the payload for adding a credential. The master
// passphrase and the site password are sent once and never kept.
type NewEntryRequest struct {
	MasterPassword string `json:"master_password"`
	SiteName       string `json:"site_name"`
	SiteURL        string `json:"site_url,omitempty"`
	SiteUsername   string `json:"site_username"`
	SitePassword   string `json:"site_password"`
}

// MissingFields lists the required fields that are empty.
func (r NewEntryRequest) MissingFields() []string {
	var missing []string
	if r.SiteName == "" {
		missing = append(missing, "site_name")
	}
	if r.SiteUsername == "" {
		missing = append(missing, "site_username")
	}
	if r.SitePassword == "" {
		missing = append(missing, "site_password")
	}
	if r.MasterPassword == "" {
		missing = append(missing, "master_password")
	}
	return missing
}

// Summary returns the non-secret projection of the request.
func (r NewEntryRequest) Summary(id EntryID) CredentialSummary {
	return CredentialSummary{
		ID:           id,
		SiteName:     r.SiteName,
		SiteURL:      r.SiteURL,
		SiteUsername: r.SiteUsername,
	}
}

// ParseEntryID normalizes user input such as " 7 " into an EntryID.
func ParseEntryID(s string) EntryID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return EntryID(strconv.FormatInt(n, 10))
	}
	return EntryID(s)
}

// AddResult is the service's answer to a successful add. ID is empty when the
// service does not report it.
type AddResult struct {
	Message string  `json:"message"`
	ID      EntryID `json:"id,omitempty"`
}

// RecoveryKey is a freshly generated account recovery key. Message is the
// service's advisory text, if any.
type RecoveryKey struct {
	Key     string `json:"recovery_key"`
	Message string `json:"message,omitempty"`
}
