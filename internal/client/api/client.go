// Package api is the HTTP client for the vault service.
//
// Every method converts transport and service failures into apperr kinds:
// a body carrying an "error" field is KindServerRejected whatever the status,
// anything else that went wrong is KindServerError (KindFetchFailed for the
// list fetch).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

const (
	apiGeneratePassword    = "/api/generate-password"
	apiPasswords           = "/api/passwords"
	apiDecryptFmt          = "/api/passwords/%s/decrypt"
	apiGenerateRecoveryKey = "/generate_recovery_key"
	apiLogin               = "/login"

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	maxBodySize = 1 << 20
)

// Client talks to the vault service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a Client for baseURL. A nil httpClient uses http.DefaultClient,
// a nil log discards output.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// BaseURL returns the service address without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// errorEnvelope is the shape of every rejection the service sends.
type errorEnvelope struct {
	Error string `json:"error"`
}

// call sends in as JSON (when not nil) and decodes the response into out.
// failKind classifies transport and status failures for this operation.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any, failKind apperr.Kind) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperr.Wrap(failKind, op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Wrap(failKind, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	log := c.log.With(zap.String("op", op), zap.String("request_id", requestID))
	log.Debug("request", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return apperr.Wrap(failKind, op, fmt.Errorf("%s failed: %w", op, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warn("read response failed", zap.Error(err))
		return apperr.Wrap(failKind, op, fmt.Errorf("read response: %w", err))
	}
	log.Debug("response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))

	var env errorEnvelope
	if json.Unmarshal(data, &env) == nil && env.Error != "" {
		log.Info("rejected by service", zap.Int("status", resp.StatusCode), zap.String("reason", env.Error))
		return apperr.New(apperr.KindServerRejected, op, env.Error)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		log.Warn("unexpected status", zap.Int("status", resp.StatusCode))
		return apperr.Wrap(failKind, op, fmt.Errorf("server error: %s", msg))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn("invalid response", zap.Error(err))
		return apperr.Wrap(failKind, op, fmt.Errorf("invalid response: %w", err))
	}
	return nil
}

// ListPasswords fetches every credential summary of the session's user.
func (c *Client) ListPasswords(ctx context.Context) ([]models.CredentialSummary, error) {
	var out struct {
		Passwords []models.CredentialSummary `json:"passwords"`
	}
	if err := c.call(ctx, "list passwords", http.MethodGet, apiPasswords, nil, &out, apperr.KindFetchFailed); err != nil {
		return nil, err
	}
	if out.Passwords == nil {
		out.Passwords = []models.CredentialSummary{}
	}
	return out.Passwords, nil
}

// AddPassword asks the service to encrypt and store a new credential.
func (c *Client) AddPassword(ctx context.Context, req models.NewEntryRequest) (models.AddResult, error) {
	var out models.AddResult
	if err := c.call(ctx, "add password", http.MethodPost, apiPasswords, req, &out, apperr.KindServerError); err != nil {
		return models.AddResult{}, err
	}
	return out, nil
}

// DecryptPassword re-authenticates with masterPassword and returns the
// plaintext of entry id. Nothing is cached.
func (c *Client) DecryptPassword(ctx context.Context, id models.EntryID, masterPassword string) (string, error) {
	in := struct {
		MasterPassword string `json:"master_password"`
	}{MasterPassword: masterPassword}
	var out struct {
		Password string `json:"password"`
	}

	path := fmt.Sprintf(apiDecryptFmt, url.PathEscape(id.String()))
	if err := c.call(ctx, "decrypt password", http.MethodPost, path, in, &out, apperr.KindServerError); err != nil {
		return "", err
	}
	return out.Password, nil
}

// GeneratePassword asks the service for a random password of length runes.
func (c *Client) GeneratePassword(ctx context.Context, length int) (string, error) {
	in := struct {
		Length int `json:"length"`
	}{Length: length}
	var out struct {
		Password string `json:"password"`
	}
	if err := c.call(ctx, "generate password", http.MethodPost, apiGeneratePassword, in, &out, apperr.KindServerError); err != nil {
		return "", err
	}
	return out.Password, nil
}

// GenerateRecoveryKey asks the service for a new one-time recovery key.
func (c *Client) GenerateRecoveryKey(ctx context.Context) (models.RecoveryKey, error) {
	var out models.RecoveryKey
	if err := c.call(ctx, "generate recovery key", http.MethodPost, apiGenerateRecoveryKey, nil, &out, apperr.KindServerError); err != nil {
		return models.RecoveryKey{}, err
	}
	if out.Key == "" {
		return models.RecoveryKey{}, apperr.New(apperr.KindServerError, "generate recovery key", "empty recovery key in response")
	}
	return out, nil
}
