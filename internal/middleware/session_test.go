package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type staticSessions map[string]string

func (s staticSessions) UserForSession(token string) (string, bool) {
	u, ok := s[token]
	return u, ok
}

func TestSessionAuth(t *testing.T) {
	sessions := staticSessions{"tok-alice": "alice"}

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantCalled bool
		wantCode   int
		wantUser   string
	}{
		{"no cookie", nil, false, http.StatusUnauthorized, ""},
		{"unknown token", &http.Cookie{Name: SessionCookie, Value: "nope"}, false, http.StatusUnauthorized, ""},
		{"valid session", &http.Cookie{Name: SessionCookie, Value: "tok-alice"}, true, http.StatusOK, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := SessionAuth(sessions)(dummy)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/passwords", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, dummy.called)
			assert.Equal(t, tt.wantCode, rec.Code)
			if !tt.wantCalled {
				assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String())
				return
			}
			assert.Equal(t, tt.wantUser, GetUserFromContext(dummy.ctx))
		})
	}
}

func TestGetUserFromContext(t *testing.T) {
	assert.Empty(t, GetUserFromContext(context.Background()))

	ctx := context.WithValue(context.Background(), userKey, "bob")
	assert.Equal(t, "bob", GetUserFromContext(ctx))
}

func TestWithRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	logger := zap.New(core)

	h := WithRequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/passwords", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "/api/passwords")
	assert.Contains(t, out, "418")
	assert.Contains(t, out, "req-123")
}
