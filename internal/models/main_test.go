package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want EntryID
	}{
		{"number", `{"id":42}`, "42"},
		{"string", `{"id":"a1b2"}`, "a1b2"},
		{"null", `{"id":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CredentialSummary
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestEntryID_UnmarshalJSON_Invalid(t *testing.T) {
	var got CredentialSummary
	err := json.Unmarshal([]byte(`{"id":{}}`), &got)
	require.Error(t, err)
}

func TestCredentialSummary_DecodeServiceRecord(t *testing.T) {
	body := `{"id":3,"site_name":"GitHub","site_url":null,"site_username":"octo","created_at":"2024-01-01 10:00:00"}`
	var got CredentialSummary
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, CredentialSummary{
		ID:           "3",
		SiteName:     "GitHub",
		SiteUsername: "octo",
		CreatedAt:    "2024-01-01 10:00:00",
	}, got)
	assert.False(t, got.HasURL())
}

func TestCredentialSummary_SearchText(t *testing.T) {
	c := CredentialSummary{SiteName: "GitHub", SiteUsername: "Octo", SiteURL: "https://GitHub.com"}
	assert.Equal(t, "github octo https://github.com", c.SearchText())
}

func TestNewEntryRequest_MissingFields(t *testing.T) {
	full := NewEntryRequest{MasterPassword: "m", SiteName: "s", SiteUsername: "u", SitePassword: "p"}
	assert.Empty(t, full.MissingFields())

	empty := NewEntryRequest{SiteURL: "https://example.com"}
	assert.Equal(t, []string{"site_name", "site_username", "site_password", "master_password"}, empty.MissingFields())
}

func TestNewEntryRequest_SummaryDropsSecrets(t *testing.T) {
	req := NewEntryRequest{MasterPassword: "m", SiteName: "s", SiteURL: "https://x", SiteUsername: "u", SitePassword: "p"}
	got := req.Summary("9")

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"p"`)
	assert.NotContains(t, string(b), "master")
	assert.Equal(t, EntryID("9"), got.ID)
}

func TestParseEntryID(t *testing.T) {
	assert.Equal(t, EntryID("7"), ParseEntryID(" 007 "))
	assert.Equal(t, EntryID("abc"), ParseEntryID("abc"))
}
