package fakevault

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/middleware"
	"github.com/atinyakov/SecurePass/internal/models"
)

const (
	defaultPasswordLength = 16
	minPasswordLength     = 4
	maxPasswordLength     = 128
)

// Handler serves the vault contract on top of a Store.
type Handler struct {
	Store *Store
	log   *zap.Logger

	mu       sync.Mutex
	sessions map[string]string
}

// NewHandler returns a Handler for store. A nil log discards output.
func NewHandler(store *Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, log: log, sessions: make(map[string]string)}
}

// UserForSession implements middleware.SessionLookup.
func (h *Handler) UserForSession(token string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.sessions[token]
	return u, ok
}

// NewSession opens a session for username and returns its token.
func (h *Handler) NewSession(username string) string {
	token := uuid.NewString()
	h.mu.Lock()
	h.sessions[token] = username
	h.mu.Unlock()
	return token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps store errors to the statuses the service uses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidMaster):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Login handles the form login. Valid credentials set the session cookie and
// redirect to the dashboard; invalid ones re-render the login page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	if err := h.Store.Verify(username, r.PostForm.Get("master_password")); err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p class=\"error\">Invalid username or password</p>"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    h.NewSession(username),
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Dashboard answers the post-login redirect.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(middleware.SessionCookie)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if _, ok := h.UserForSession(c.Value); !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<h2>Dashboard</h2>"))
}

// GeneratePassword handles POST /api/generate-password.
func (h *Handler) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Length int `json:"length"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Length == 0 {
		req.Length = defaultPasswordLength
	}
	req.Length = max(minPasswordLength, min(req.Length, maxPasswordLength))

	pw, err := GeneratePassword(req.Length)
	if err != nil {
		h.log.Error("generate password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": pw})
}

// ListPasswords handles GET /api/passwords.
func (h *Handler) ListPasswords(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"passwords": h.Store.List(user)})
}

// AddPassword handles POST /api/passwords.
func (h *Handler) AddPassword(w http.ResponseWriter, r *http.Request) {
	var req models.NewEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	user := middleware.GetUserFromContext(r.Context())
	if _, err := h.Store.Add(user, req); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password added successfully"})
}

// DecryptPassword handles POST /api/passwords/{id}/decrypt.
func (h *Handler) DecryptPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MasterPassword string `json:"master_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MasterPassword == "" {
		writeError(w, http.StatusBadRequest, "Master password required")
		return
	}
	user := middleware.GetUserFromContext(r.Context())
	id := models.EntryID(chi.URLParam(r, "id"))

	pw, err := h.Store.Decrypt(user, id, req.MasterPassword)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"password": pw})
}

// GenerateRecoveryKey handles POST /generate_recovery_key.
func (h *Handler) GenerateRecoveryKey(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	key, err := h.Store.NewRecoveryKey(user)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("generate recovery key", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate recovery key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"recovery_key": key,
		"message":      "Save this recovery key in a secure location. It can only be viewed once.",
	})
}
