// Package dashboard holds the client-side state of the vault dashboard: the
// credential index, the per-entry reveal state machine, the recovery key flow
// and the command dispatcher that ties them to a front end.
//
// Nothing here encrypts, stores or authorizes anything. Secrets are handled
// by the remote service; this package only decides when to ask for them and
// how long the answer may stay in memory.
package dashboard

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"

	"github.com/atinyakov/SecurePass/internal/models"
)

// IndexService is the part of the remote service the index needs.
type IndexService interface {
	ListPasswords(ctx context.Context) ([]models.CredentialSummary, error)
	AddPassword(ctx context.Context, req models.NewEntryRequest) (models.AddResult, error)
}

// Decrypter re-authenticates with a master password and returns one entry's plaintext.
type Decrypter interface {
	DecryptPassword(ctx context.Context, id models.EntryID, masterPassword string) (string, error)
}

// RecoveryService issues recovery keys.
type RecoveryService interface {
	GenerateRecoveryKey(ctx context.Context) (models.RecoveryKey, error)
}

// PasswordGenerator fills the add form with a service-generated password.
type PasswordGenerator interface {
	GeneratePassword(ctx context.Context, length int) (string, error)
}

// Service is everything the dashboard consumes from the vault service.
// *api.Client implements it.
type Service interface {
	IndexService
	Decrypter
	RecoveryService
	PasswordGenerator
}

// Clipboard writes text to the platform clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

var errClipboardUnsupported = errors.New("clipboard is not supported on this system")

// SystemClipboard uses the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// Opener opens a site address outside the dashboard, usually in a browser.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open implements Opener.
func (f OpenerFunc) Open(url string) error { return f(url) }
