package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

// ErrStaleResponse is returned when a decrypt answer arrives after the
// detail view moved on. The answer is dropped and nothing is reported.
var ErrStaleResponse = errors.New("stale decrypt response discarded")

// Phase is the reveal state of the open entry.
type Phase int

const (
	PhaseHidden Phase = iota
	PhasePending
	PhaseRevealed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseRevealed:
		return "revealed"
	case PhaseFailed:
		return "failed"
	default:
		return "hidden"
	}
}

// RevealState is a snapshot of the detail view. It never carries plaintext;
// use Reveal.Secret for that.
type RevealState struct {
	Open   bool
	Entry  models.CredentialSummary
	Phase  Phase
	Reason error
}

// Reveal controls the detail view of one entry: showing its secret on
// demand, hiding it again and copying it.
//
// Plaintext lives only while the phase is PhaseRevealed and is wiped on
// hide, close or switching entries. Passphrases are passed through to the
// service and never stored.
type Reveal struct {
	mu      sync.Mutex
	open    bool
	entry   models.CredentialSummary
	phase   Phase
	secret  []byte
	reason  error
	attempt uuid.UUID

	svc    Decrypter
	clip   Clipboard
	opener Opener
	busy   *Busy
	sink   Sink
	log    *zap.Logger
}

// NewReveal creates a closed detail view.
func NewReveal(svc Decrypter, clip Clipboard, opener Opener, busy *Busy, sink Sink, log *zap.Logger) *Reveal {
	if log == nil {
		log = zap.NewNop()
	}
	if busy == nil {
		busy = NewBusy(sink)
	}
	if clip == nil {
		clip = SystemClipboard{}
	}
	return &Reveal{svc: svc, clip: clip, opener: opener, busy: busy, sink: sinkOrNop(sink), log: log}
}

// Open shows entry in the detail view, hidden. Any previous secret is wiped.
func (r *Reveal) Open(entry models.CredentialSummary) {
	r.mu.Lock()
	r.resetLocked()
	r.open = true
	r.entry = entry
	r.mu.Unlock()
	r.sink.Notify(Event{Kind: EventRevealChanged})
}

// Close dismisses the detail view and wipes any secret.
func (r *Reveal) Close() {
	r.mu.Lock()
	r.resetLocked()
	r.open = false
	r.entry = models.CredentialSummary{}
	r.mu.Unlock()
	r.sink.Notify(Event{Kind: EventRevealChanged})
}

// State returns a snapshot of the detail view.
func (r *Reveal) State() RevealState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RevealState{Open: r.open, Entry: r.entry, Phase: r.phase, Reason: r.reason}
}

// Secret returns the plaintext while revealed.
func (r *Reveal) Secret() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseRevealed {
		return "", false
	}
	return string(r.secret), true
}

// Reveal asks the service for the open entry's secret.
//
// It fails with ValidationFailed when no entry is open or passphrase is
// empty, and with AlreadyPending while another request is in flight.
// Revealing an already revealed entry is a no-op. A service failure moves
// the view to PhaseFailed and is returned. If the view changed while the
// request was in flight the answer is dropped and ErrStaleResponse is
// returned.
func (r *Reveal) Reveal(ctx context.Context, passphrase string) error {
	const op = "decrypt"

	r.mu.Lock()
	if !r.open {
		r.mu.Unlock()
		return apperr.New(apperr.KindValidationFailed, op, "No password selected")
	}
	if passphrase == "" {
		r.mu.Unlock()
		return apperr.New(apperr.KindValidationFailed, op, "Please enter your master password to decrypt")
	}
	switch r.phase {
	case PhasePending:
		r.mu.Unlock()
		return apperr.New(apperr.KindAlreadyPending, op, "Decryption already in progress")
	case PhaseRevealed:
		r.mu.Unlock()
		return nil
	}
	token := uuid.New()
	id := r.entry.ID
	r.attempt = token
	r.phase = PhasePending
	r.reason = nil
	r.mu.Unlock()
	r.sink.Notify(Event{Kind: EventRevealChanged})

	plain, err := r.decrypt(ctx, id, passphrase)

	r.mu.Lock()
	if !r.open || r.attempt != token || r.entry.ID != id || r.phase != PhasePending {
		r.mu.Unlock()
		r.log.Debug("dropping stale decrypt response", zap.String("entry_id", id.String()))
		return ErrStaleResponse
	}
	r.attempt = uuid.Nil
	if err != nil {
		r.phase = PhaseFailed
		r.reason = err
		r.mu.Unlock()
		r.sink.Notify(Event{Kind: EventRevealChanged})
		return err
	}
	r.phase = PhaseRevealed
	r.secret = []byte(plain)
	r.mu.Unlock()
	r.sink.Notify(Event{Kind: EventRevealChanged})
	return nil
}

func (r *Reveal) decrypt(ctx context.Context, id models.EntryID, passphrase string) (string, error) {
	done := r.busy.Start("Decrypting password...")
	defer done()

	plain, err := r.svc.DecryptPassword(ctx, id, passphrase)
	if err == nil {
		return plain, nil
	}
	r.log.Warn("decrypt failed", zap.String("entry_id", id.String()), zap.Error(err))
	if apperr.KindOf(err) == apperr.KindServerRejected {
		return "", err
	}
	return "", &apperr.Error{Kind: apperr.KindServerError, Op: "decrypt", Msg: "Failed to decrypt password", Err: err}
}

// Hide wipes the secret and returns the view to PhaseHidden. A request in
// flight is abandoned and its answer will be dropped.
func (r *Reveal) Hide() {
	r.mu.Lock()
	if !r.open || r.phase == PhaseHidden {
		r.mu.Unlock()
		return
	}
	r.resetLocked()
	r.mu.Unlock()
	r.sink.Notify(Event{Kind: EventRevealChanged})
}

// TakeFailure returns the failure reason once and moves the view back to
// PhaseHidden. It returns nil when the view is not in PhaseFailed.
func (r *Reveal) TakeFailure() error {
	r.mu.Lock()
	if r.phase != PhaseFailed {
		r.mu.Unlock()
		return nil
	}
	reason := r.reason
	r.phase = PhaseHidden
	r.reason = nil
	r.mu.Unlock()
	r.sink.Notify(Event{Kind: EventRevealChanged})
	return reason
}

// CopySecret puts the revealed secret on the clipboard.
func (r *Reveal) CopySecret() error {
	r.mu.Lock()
	if r.phase != PhaseRevealed {
		r.mu.Unlock()
		return apperr.New(apperr.KindNothingToCopy, "copy", "Please decrypt the password first")
	}
	text := string(r.secret)
	r.mu.Unlock()
	return writeClipboard(r.clip, "copy", text)
}

// CopyUsername puts the open entry's username on the clipboard.
func (r *Reveal) CopyUsername() error {
	r.mu.Lock()
	if !r.open {
		r.mu.Unlock()
		return apperr.New(apperr.KindNothingToCopy, "copy username", "No password selected")
	}
	text := r.entry.SiteUsername
	r.mu.Unlock()
	return writeClipboard(r.clip, "copy username", text)
}

// VisitSite opens the open entry's address.
func (r *Reveal) VisitSite() error {
	r.mu.Lock()
	entry, open := r.entry, r.open
	r.mu.Unlock()

	if !open || !entry.HasURL() {
		return apperr.New(apperr.KindValidationFailed, "visit", "No URL provided")
	}
	if !webAddress(entry.SiteURL) {
		return apperr.New(apperr.KindValidationFailed, "visit", "Only http and https addresses can be opened")
	}
	if r.opener == nil {
		return fmt.Errorf("visit %s: no browser available", entry.SiteURL)
	}
	if err := r.opener.Open(entry.SiteURL); err != nil {
		return fmt.Errorf("visit %s: %w", entry.SiteURL, err)
	}
	return nil
}

// webAddress reports whether raw is an absolute http or https URL with a host.
func webAddress(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (r *Reveal) resetLocked() {
	clear(r.secret)
	r.secret = nil
	r.phase = PhaseHidden
	r.reason = nil
	r.attempt = uuid.Nil
}

func writeClipboard(clip Clipboard, op, text string) error {
	if err := clip.WriteAll(text); err != nil {
		return &apperr.Error{Kind: apperr.KindClipboardUnavailable, Op: op, Msg: "Failed to copy to clipboard", Err: err}
	}
	return nil
}
