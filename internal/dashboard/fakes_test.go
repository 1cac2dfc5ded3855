package dashboard

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

// fakeService is an in-memory Service. Hooks override the default behavior
// and count calls.
type fakeService struct {
	mu      sync.Mutex
	entries []models.CredentialSummary
	secrets map[models.EntryID]string
	master  string
	nextID  int

	listErr     error
	listHook    func([]models.CredentialSummary) []models.CredentialSummary
	returnAddID bool

	decryptHook func(ctx context.Context, id models.EntryID, master string) (string, error)

	listCalls, addCalls, decryptCalls, genCalls, recoveryCalls int

	recoveryKey models.RecoveryKey
	recoveryErr error
	genErr      error
}

func newFakeService(entries ...models.CredentialSummary) *fakeService {
	return &fakeService{
		entries: entries,
		secrets: map[models.EntryID]string{},
		master:  "master",
		nextID:  100,
	}
}

func (f *fakeService) ListPasswords(context.Context) ([]models.CredentialSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.CredentialSummary, len(f.entries))
	copy(out, f.entries)
	if f.listHook != nil {
		out = f.listHook(out)
	}
	return out, nil
}

func (f *fakeService) AddPassword(_ context.Context, req models.NewEntryRequest) (models.AddResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if req.MasterPassword != f.master {
		return models.AddResult{}, apperr.New(apperr.KindServerRejected, "add", "Invalid master password")
	}
	f.nextID++
	id := models.EntryID(strconv.Itoa(f.nextID))
	f.entries = append(f.entries, req.Summary(id))
	f.secrets[id] = req.SitePassword
	res := models.AddResult{Message: "Password added successfully"}
	if f.returnAddID {
		res.ID = id
	}
	return res, nil
}

func (f *fakeService) DecryptPassword(ctx context.Context, id models.EntryID, master string) (string, error) {
	f.mu.Lock()
	f.decryptCalls++
	hook := f.decryptHook
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, id, master)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if master != f.master {
		return "", apperr.New(apperr.KindServerRejected, "decrypt", "Invalid master password")
	}
	s, ok := f.secrets[id]
	if !ok {
		return "", apperr.New(apperr.KindServerRejected, "decrypt", "Password not found")
	}
	return s, nil
}

func (f *fakeService) GeneratePassword(_ context.Context, length int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genCalls++
	if f.genErr != nil {
		return "", f.genErr
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = 'a' + byte(i%26)
	}
	return string(b), nil
}

func (f *fakeService) GenerateRecoveryKey(context.Context) (models.RecoveryKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recoveryCalls++
	if f.recoveryErr != nil {
		return models.RecoveryKey{}, f.recoveryErr
	}
	return f.recoveryKey, nil
}

func (f *fakeService) calls() (list, add, decrypt int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.addCalls, f.decryptCalls
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func (c *fakeClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

var errBroken = errors.New("broken")

// recordingSink keeps every event.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Notify(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Alert
	for _, e := range s.events {
		if e.Kind == EventAlert {
			out = append(out, e.Alert)
		}
	}
	return out
}

func (s *recordingSink) count(kind EventKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func summary(id, name, user, url string) models.CredentialSummary {
	return models.CredentialSummary{ID: models.EntryID(id), SiteName: name, SiteUsername: user, SiteURL: url}
}
