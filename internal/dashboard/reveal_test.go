package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

func newTestReveal(t *testing.T) (*Reveal, *fakeService, *fakeClipboard) {
	t.Helper()
	svc := newFakeService(
		summary("1", "GitHub", "octo", "https://github.com"),
		summary("2", "Mail", "me", ""),
	)
	svc.secrets["1"] = "hunter2"
	svc.secrets["2"] = "letmein"
	clip := &fakeClipboard{}
	return NewReveal(svc, clip, nil, nil, nil, nil), svc, clip
}

func TestReveal_HappyPathAndHide(t *testing.T) {
	r, svc, _ := newTestReveal(t)
	r.Open(summary("1", "GitHub", "octo", ""))
	assert.Equal(t, PhaseHidden, r.State().Phase)

	require.NoError(t, r.Reveal(context.Background(), "master"))
	assert.Equal(t, PhaseRevealed, r.State().Phase)
	secret, ok := r.Secret()
	require.True(t, ok)
	assert.Equal(t, "hunter2", secret)

	// Revealing again while revealed does not call the service.
	require.NoError(t, r.Reveal(context.Background(), "master"))
	_, _, decrypts := svc.calls()
	assert.Equal(t, 1, decrypts)

	r.Hide()
	assert.Equal(t, PhaseHidden, r.State().Phase)
	_, ok = r.Secret()
	assert.False(t, ok)

	err := r.Reveal(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	_, ok = r.Secret()
	assert.False(t, ok)
	_, _, decrypts = svc.calls()
	assert.Equal(t, 1, decrypts)

	require.NoError(t, r.Reveal(context.Background(), "master"))
	_, _, decrypts = svc.calls()
	assert.Equal(t, 2, decrypts)
}

func TestReveal_HideWipesPlaintextBuffer(t *testing.T) {
	r, _, _ := newTestReveal(t)
	r.Open(summary("1", "GitHub", "octo", ""))
	require.NoError(t, r.Reveal(context.Background(), "master"))

	r.mu.Lock()
	buf := r.secret
	r.mu.Unlock()
	require.Equal(t, []byte("hunter2"), buf)

	r.Hide()
	assert.Equal(t, make([]byte, len("hunter2")), buf)
}

func TestReveal_Validation(t *testing.T) {
	r, svc, _ := newTestReveal(t)

	err := r.Reveal(context.Background(), "master")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed, "no entry open")

	r.Open(summary("1", "GitHub", "octo", ""))
	err = r.Reveal(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.Equal(t, PhaseHidden, r.State().Phase)

	_, _, decrypts := svc.calls()
	assert.Zero(t, decrypts)
}

func TestReveal_SelectingAnotherEntryResetsState(t *testing.T) {
	r, _, _ := newTestReveal(t)
	a := summary("1", "GitHub", "octo", "")
	b := summary("2", "Mail", "me", "")

	r.Open(a)
	require.NoError(t, r.Reveal(context.Background(), "master"))
	r.Open(b)
	_, ok := r.Secret()
	assert.False(t, ok)

	r.Open(a)
	st := r.State()
	assert.Equal(t, a, st.Entry)
	assert.Equal(t, PhaseHidden, st.Phase)
	_, ok = r.Secret()
	assert.False(t, ok)
}

func TestReveal_FailureReportedOnce(t *testing.T) {
	r, _, _ := newTestReveal(t)
	r.Open(summary("1", "GitHub", "octo", ""))

	err := r.Reveal(context.Background(), "wrong")
	assert.ErrorIs(t, err, apperr.ErrServerRejected)
	st := r.State()
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.ErrorIs(t, st.Reason, apperr.ErrServerRejected)

	reason := r.TakeFailure()
	assert.Equal(t, "Invalid master password", apperr.Message(reason))
	assert.Equal(t, PhaseHidden, r.State().Phase)
	assert.NoError(t, r.TakeFailure())
}

func TestReveal_HideFromFailed(t *testing.T) {
	r, _, _ := newTestReveal(t)
	r.Open(summary("1", "GitHub", "octo", ""))
	require.Error(t, r.Reveal(context.Background(), "wrong"))

	r.Hide()
	st := r.State()
	assert.Equal(t, PhaseHidden, st.Phase)
	assert.NoError(t, st.Reason)
}

// blockingDecrypt holds every decrypt until release is closed.
func blockingDecrypt(started chan<- models.EntryID, release <-chan struct{}, plain string) func(context.Context, models.EntryID, string) (string, error) {
	return func(ctx context.Context, id models.EntryID, _ string) (string, error) {
		started <- id
		select {
		case <-release:
			return plain, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func TestReveal_AlreadyPending(t *testing.T) {
	r, svc, _ := newTestReveal(t)
	started := make(chan models.EntryID, 1)
	release := make(chan struct{})
	svc.decryptHook = blockingDecrypt(started, release, "hunter2")

	r.Open(summary("1", "GitHub", "octo", ""))
	errc := make(chan error, 1)
	go func() { errc <- r.Reveal(context.Background(), "master") }()
	<-started

	assert.Equal(t, PhasePending, r.State().Phase)
	err := r.Reveal(context.Background(), "master")
	assert.ErrorIs(t, err, apperr.ErrAlreadyPending)

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, PhaseRevealed, r.State().Phase)
}

func TestReveal_StaleResponseDiscarded(t *testing.T) {
	r, svc, _ := newTestReveal(t)
	started := make(chan models.EntryID, 1)
	release := make(chan struct{})
	svc.decryptHook = blockingDecrypt(started, release, "hunter2")

	a := summary("1", "GitHub", "octo", "")
	b := summary("2", "Mail", "me", "")
	r.Open(a)

	errc := make(chan error, 1)
	go func() { errc <- r.Reveal(context.Background(), "master") }()
	assert.Equal(t, models.EntryID("1"), <-started)

	r.Open(b)
	before := r.State()
	close(release)

	assert.ErrorIs(t, <-errc, ErrStaleResponse)
	assert.Equal(t, before, r.State())
	assert.Equal(t, PhaseHidden, r.State().Phase)
	_, ok := r.Secret()
	assert.False(t, ok)
}

func TestReveal_StaleAfterReopeningSameEntry(t *testing.T) {
	r, svc, _ := newTestReveal(t)
	started := make(chan models.EntryID, 1)
	release := make(chan struct{})
	svc.decryptHook = blockingDecrypt(started, release, "hunter2")

	a := summary("1", "GitHub", "octo", "")
	r.Open(a)
	errc := make(chan error, 1)
	go func() { errc <- r.Reveal(context.Background(), "master") }()
	<-started

	r.Close()
	r.Open(a)
	close(release)

	assert.ErrorIs(t, <-errc, ErrStaleResponse)
	assert.Equal(t, PhaseHidden, r.State().Phase)
}

func TestReveal_HideWhilePendingDropsAnswer(t *testing.T) {
	r, svc, _ := newTestReveal(t)
	started := make(chan models.EntryID, 1)
	release := make(chan struct{})
	svc.decryptHook = blockingDecrypt(started, release, "hunter2")

	r.Open(summary("1", "GitHub", "octo", ""))
	errc := make(chan error, 1)
	go func() { errc <- r.Reveal(context.Background(), "master") }()
	<-started

	r.Hide()
	close(release)
	assert.ErrorIs(t, <-errc, ErrStaleResponse)
	_, ok := r.Secret()
	assert.False(t, ok)
}

func TestReveal_CancelledContextFails(t *testing.T) {
	r, svc, _ := newTestReveal(t)
	started := make(chan models.EntryID, 1)
	svc.decryptHook = blockingDecrypt(started, make(chan struct{}), "")

	r.Open(summary("1", "GitHub", "octo", ""))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := r.Reveal(ctx, "master")
	assert.ErrorIs(t, err, apperr.ErrServerError)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, PhaseFailed, r.State().Phase)
}

func TestReveal_Copy(t *testing.T) {
	r, _, clip := newTestReveal(t)

	assert.ErrorIs(t, r.CopyUsername(), apperr.ErrNothingToCopy)

	r.Open(summary("1", "GitHub", "octo", ""))
	assert.ErrorIs(t, r.CopySecret(), apperr.ErrNothingToCopy)

	require.NoError(t, r.CopyUsername())
	assert.Equal(t, "octo", clip.Text())

	require.NoError(t, r.Reveal(context.Background(), "master"))
	require.NoError(t, r.CopySecret())
	assert.Equal(t, "hunter2", clip.Text())

	clip.err = errBroken
	err := r.CopySecret()
	assert.ErrorIs(t, err, apperr.ErrClipboardUnavailable)
	assert.ErrorIs(t, err, errBroken)
}

func TestReveal_VisitSite(t *testing.T) {
	var mu sync.Mutex
	var opened []string
	opener := OpenerFunc(func(url string) error {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, url)
		return nil
	})
	r := NewReveal(newFakeService(), &fakeClipboard{}, opener, nil, nil, nil)

	assert.ErrorIs(t, r.VisitSite(), apperr.ErrValidationFailed)

	r.Open(summary("2", "Mail", "me", ""))
	assert.ErrorIs(t, r.VisitSite(), apperr.ErrValidationFailed)

	r.Open(summary("1", "GitHub", "octo", "https://github.com"))
	require.NoError(t, r.VisitSite())
	assert.Equal(t, []string{"https://github.com"}, opened)
}

func TestReveal_VisitSiteRejectsNonWebAddresses(t *testing.T) {
	var opened []string
	opener := OpenerFunc(func(url string) error {
		opened = append(opened, url)
		return nil
	})
	r := NewReveal(newFakeService(), &fakeClipboard{}, opener, nil, nil, nil)

	for _, raw := range []string{
		"file:///etc/passwd",
		"-flag",
		"javascript:alert(1)",
		"github.com",
		"ftp://example.com/x",
		"http://",
	} {
		r.Open(summary("9", "Odd", "me", raw))
		err := r.VisitSite()
		assert.ErrorIs(t, err, apperr.ErrValidationFailed, raw)
		assert.Equal(t, "Only http and https addresses can be opened", apperr.Message(err), raw)
	}
	assert.Empty(t, opened)

	r.Open(summary("3", "Plain", "me", "http://example.com/login"))
	require.NoError(t, r.VisitSite())
	assert.Equal(t, []string{"http://example.com/login"}, opened)
}
