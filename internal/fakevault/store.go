// Package fakevault is an in-memory stand-in for the vault service. It speaks
// the same JSON contract as the real service so the client can be exercised
// end to end in tests and local runs. It does no encryption: secrets live in
// process memory and the master password is compared literally.
package fakevault

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/SecurePass/internal/models"
)

// Errors returned by Store; handlers map them to the service's messages.
var (
	ErrUserNotFound    = errors.New("User not found")
	ErrInvalidMaster   = errors.New("Invalid master password")
	ErrEntryNotFound   = errors.New("Password not found")
	ErrMissingRequired = errors.New("Missing required fields")
)

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+-=[]{}|;:,.<>?"

type entry struct {
	summary  models.CredentialSummary
	owner    string
	password string
}

// Store holds users, entries and recovery keys.
type Store struct {
	mu           sync.Mutex
	users        map[string]string
	entries      []entry
	recoveryKeys map[string]string
	now          func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]string),
		recoveryKeys: make(map[string]string),
		now:          time.Now,
	}
}

// AddUser registers username with its master password.
func (s *Store) AddUser(username, masterPassword string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = masterPassword
}

// Verify checks the master password of username.
func (s *Store) Verify(username, masterPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyLocked(username, masterPassword)
}

func (s *Store) verifyLocked(username, masterPassword string) error {
	want, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	if want != masterPassword {
		return ErrInvalidMaster
	}
	return nil
}

// List returns the summaries owned by username in insertion order.
func (s *Store) List(username string) []models.CredentialSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CredentialSummary{}
	for _, e := range s.entries {
		if e.owner == username {
			out = append(out, e.summary)
		}
	}
	return out
}

// Add stores a new entry after checking the master password.
func (s *Store) Add(username string, req models.NewEntryRequest) (models.EntryID, error) {
	if len(req.MissingFields()) > 0 {
		return "", ErrMissingRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verifyLocked(username, req.MasterPassword); err != nil {
		return "", err
	}
	id := models.EntryID(uuid.NewString())
	sum := req.Summary(id)
	sum.CreatedAt = s.now().UTC().Format(time.DateTime)
	s.entries = append(s.entries, entry{summary: sum, owner: username, password: req.SitePassword})
	return id, nil
}

// Decrypt returns the password of entry id after checking the master password.
func (s *Store) Decrypt(username string, id models.EntryID, masterPassword string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verifyLocked(username, masterPassword); err != nil {
		return "", err
	}
	for _, e := range s.entries {
		if e.summary.ID == id && e.owner == username {
			return e.password, nil
		}
	}
	return "", ErrEntryNotFound
}

// NewRecoveryKey issues a fresh recovery key for username, replacing the previous one.
func (s *Store) NewRecoveryKey(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return "", ErrUserNotFound
	}
	key, err := randomString("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_", 43)
	if err != nil {
		return "", err
	}
	s.recoveryKeys[username] = key
	return key, nil
}

// GeneratePassword returns a random password drawn from the dashboard charset.
func GeneratePassword(length int) (string, error) {
	return randomString(passwordCharset, length)
}

func randomString(charset string, length int) (string, error) {
	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
