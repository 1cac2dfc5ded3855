package api

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

// NewHTTPClient builds the HTTP client used to reach the vault service.
// The client keeps the session cookie set by Login. When caFile is not empty
// the service certificate is verified against it instead of the system pool.
func NewHTTPClient(caFile string, timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		transport.TLSClientConfig = &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		}
	}

	return &http.Client{Transport: transport, Jar: jar, Timeout: timeout}, nil
}
