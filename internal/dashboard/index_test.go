package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

func TestIndex_LoadReplacesAndDedupes(t *testing.T) {
	svc := newFakeService(
		summary("1", "GitHub", "octo", "https://github.com"),
		summary("2", "Mail", "me", ""),
		summary("1", "Duplicate", "x", ""),
	)
	sink := &recordingSink{}
	ix := NewIndex(svc, nil, sink, nil)

	require.NoError(t, ix.Load(context.Background()))
	all := ix.All()
	require.Len(t, all, 2)
	assert.Equal(t, "GitHub", all[0].SiteName)
	assert.Equal(t, "Mail", all[1].SiteName)
	assert.Equal(t, 1, sink.count(EventIndexChanged))
}

func TestIndex_LoadFailureKeepsPrevious(t *testing.T) {
	svc := newFakeService(summary("1", "GitHub", "octo", ""))
	busy := NewBusy(nil)
	ix := NewIndex(svc, busy, nil, nil)
	require.NoError(t, ix.Load(context.Background()))

	svc.listErr = apperr.New(apperr.KindFetchFailed, "list", "connection refused")
	err := ix.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
	assert.Equal(t, 1, ix.Len())

	active, _ := busy.Active()
	assert.False(t, active)
}

func TestIndex_LoadFailureIsFetchFailedWhateverTheCause(t *testing.T) {
	svc := newFakeService()
	svc.listErr = apperr.New(apperr.KindServerRejected, "list", "Not authenticated")
	ix := NewIndex(svc, nil, nil, nil)

	err := ix.Load(context.Background())
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
	assert.Equal(t, "Failed to load passwords: Not authenticated", apperr.Message(err))
}

func TestIndex_AddValidation(t *testing.T) {
	full := models.NewEntryRequest{
		MasterPassword: "master", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	}
	tests := []struct {
		name  string
		clear func(*models.NewEntryRequest)
	}{
		{"site name", func(r *models.NewEntryRequest) { r.SiteName = "" }},
		{"username", func(r *models.NewEntryRequest) { r.SiteUsername = "" }},
		{"password", func(r *models.NewEntryRequest) { r.SitePassword = "" }},
		{"master password", func(r *models.NewEntryRequest) { r.MasterPassword = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(summary("1", "Mail", "me", ""))
			ix := NewIndex(svc, nil, nil, nil)
			require.NoError(t, ix.Load(context.Background()))
			before := ix.All()

			req := full
			tt.clear(&req)
			_, err := ix.Add(context.Background(), req)
			assert.ErrorIs(t, err, apperr.ErrValidationFailed)
			assert.Equal(t, before, ix.All())

			list, add, _ := svc.calls()
			assert.Equal(t, 1, list)
			assert.Zero(t, add)
		})
	}
}

func TestIndex_AddAppendsAfterRefetch(t *testing.T) {
	svc := newFakeService(summary("1", "Mail", "me", ""))
	ix := NewIndex(svc, nil, nil, nil)
	require.NoError(t, ix.Load(context.Background()))

	got, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "master", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EntryID("101"), got.ID)
	assert.Equal(t, "GitHub", got.SiteName)

	all := ix.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Mail", all[0].SiteName)
	assert.Equal(t, got, all[1])

	list, add, _ := svc.calls()
	assert.Equal(t, 2, list)
	assert.Equal(t, 1, add)
}

func TestIndex_AddAppendsOnlyTheNewEntry(t *testing.T) {
	svc := newFakeService(summary("1", "Mail", "me", ""))
	ix := NewIndex(svc, nil, nil, nil)
	require.NoError(t, ix.Load(context.Background()))

	// Another session added an entry meanwhile.
	svc.entries = append(svc.entries, summary("50", "Other", "x", ""))

	got, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "master", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EntryID("101"), got.ID)

	var ids []models.EntryID
	for _, e := range ix.All() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []models.EntryID{"1", "101"}, ids)
}

func TestIndex_AddDoesNotBringBackRemovedEntries(t *testing.T) {
	svc := newFakeService(summary("1", "GitHub", "octo", ""), summary("2", "Mail", "me", ""))
	ix := NewIndex(svc, nil, nil, nil)
	require.NoError(t, ix.Load(context.Background()))
	require.True(t, ix.Remove("1"))

	got, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "master", SiteName: "New", SiteUsername: "n", SitePassword: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", got.SiteName)

	var ids []models.EntryID
	for _, e := range ix.All() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []models.EntryID{"2", "101"}, ids)
	_, ok := ix.Get("1")
	assert.False(t, ok)

	// A reload mirrors the service again.
	require.NoError(t, ix.Load(context.Background()))
	assert.Equal(t, 3, ix.Len())
}

func TestIndex_AddSavedButRefetchFails(t *testing.T) {
	svc := newFakeService(summary("1", "Mail", "me", ""))
	ix := NewIndex(svc, nil, nil, nil)
	require.NoError(t, ix.Load(context.Background()))
	svc.listErr = errBroken

	_, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "master", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSavedNotListed)
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, apperr.KindFetchFailed, apperr.KindOf(err))
	assert.Equal(t, "Password saved, but the list could not be refreshed", apperr.Message(err))

	assert.Len(t, svc.entries, 2)
	assert.Equal(t, 1, ix.Len())
}

func TestIndex_AddSavedButNotInList(t *testing.T) {
	svc := newFakeService()
	svc.listHook = func([]models.CredentialSummary) []models.CredentialSummary { return nil }
	ix := NewIndex(svc, nil, nil, nil)

	_, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "master", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	})
	assert.ErrorIs(t, err, ErrSavedNotListed)
	assert.Zero(t, ix.Len())
}

func TestIndex_AddUsesReturnedID(t *testing.T) {
	svc := newFakeService()
	svc.returnAddID = true
	ix := NewIndex(svc, nil, nil, nil)

	got, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "master", SiteName: "GitHub", SiteURL: "https://github.com", SiteUsername: "octo", SitePassword: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CredentialSummary{
		ID: "101", SiteName: "GitHub", SiteURL: "https://github.com", SiteUsername: "octo",
	}, got)
	assert.Equal(t, 1, ix.Len())

	list, _, _ := svc.calls()
	assert.Zero(t, list)
}

func TestIndex_AddRejected(t *testing.T) {
	svc := newFakeService()
	busy := NewBusy(nil)
	ix := NewIndex(svc, busy, nil, nil)

	_, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "wrong", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	})
	assert.ErrorIs(t, err, apperr.ErrServerRejected)
	assert.Equal(t, "Invalid master password", apperr.Message(err))
	assert.Zero(t, ix.Len())

	active, _ := busy.Active()
	assert.False(t, active)
}

func TestIndex_AddTransportFailureIsServerError(t *testing.T) {
	ix := NewIndex(brokenAdder{}, nil, nil, nil)
	_, err := ix.Add(context.Background(), models.NewEntryRequest{
		MasterPassword: "m", SiteName: "GitHub", SiteUsername: "octo", SitePassword: "pw",
	})
	assert.ErrorIs(t, err, apperr.ErrServerError)
	assert.ErrorIs(t, err, errBroken)
	assert.Zero(t, ix.Len())
}

type brokenAdder struct{}

func (brokenAdder) ListPasswords(context.Context) ([]models.CredentialSummary, error) {
	return nil, nil
}

func (brokenAdder) AddPassword(context.Context, models.NewEntryRequest) (models.AddResult, error) {
	return models.AddResult{}, errBroken
}

func TestFilter(t *testing.T) {
	entries := []models.CredentialSummary{
		summary("1", "GitHub", "octo", "https://github.com"),
		summary("2", "Mail", "me@example.com", ""),
		summary("3", "Bank", "alice", "https://bank.example.com"),
	}

	tests := []struct {
		query string
		want  []models.EntryID
	}{
		{"", []models.EntryID{"1", "2", "3"}},
		{"GIT", []models.EntryID{"1"}},
		{"example", []models.EntryID{"2", "3"}},
		{"ALICE", []models.EntryID{"3"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(entries, tt.query)
			var ids []models.EntryID
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Equal(t, entries, Filter(entries, ""))
	assert.Equal(t, Filter(entries, "example"), Filter(entries, "example"))
}

func TestIndex_QueryAndRemove(t *testing.T) {
	svc := newFakeService(
		summary("1", "GitHub", "octo", ""),
		summary("2", "GitLab", "octo", ""),
		summary("3", "Mail", "me", ""),
	)
	ix := NewIndex(svc, nil, nil, nil)
	require.NoError(t, ix.Load(context.Background()))

	ix.SetQuery("git")
	assert.Equal(t, "git", ix.Query())
	assert.Equal(t, 2, ix.VisibleCount())

	assert.True(t, ix.Remove("1"))
	assert.False(t, ix.Remove("1"))
	assert.Equal(t, 1, ix.VisibleCount())
	assert.Equal(t, 2, ix.Len())

	_, ok := ix.Get("1")
	assert.False(t, ok)
	e, ok := ix.Get("3")
	require.True(t, ok)
	assert.Equal(t, "Mail", e.SiteName)
}
