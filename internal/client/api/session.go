package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/apperr"
)

const dashboardPath = "/dashboard"

// Login submits the service's login form so the cookie jar holds a session.
// The service redirects to the dashboard on success and re-renders the login
// page otherwise.
func (c *Client) Login(ctx context.Context, username, masterPassword string) error {
	const op = "login"
	if username == "" || masterPassword == "" {
		return apperr.New(apperr.KindValidationFailed, op, "username and master password are required")
	}
	if c.http.Jar == nil {
		return apperr.New(apperr.KindServerError, op, "http client has no cookie jar")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("master_password", masterPassword)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiLogin, strings.NewReader(form.Encode()))
	if err != nil {
		return apperr.Wrap(apperr.KindServerError, op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindServerError, op, fmt.Errorf("login failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.Wrap(apperr.KindServerError, op, fmt.Errorf("server error: %s", resp.Status))
	}
	if resp.Request == nil || !strings.HasSuffix(resp.Request.URL.Path, dashboardPath) {
		c.log.Info("login rejected", zap.String("username", username))
		return apperr.New(apperr.KindServerRejected, op, "Invalid username or password")
	}

	c.log.Info("logged in", zap.String("username", username))
	return nil
}
