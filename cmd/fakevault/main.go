// Package main starts a local in-memory vault service for developing and
// demonstrating the SecurePass client. Nothing it stores survives a restart.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/certgen"
	"github.com/atinyakov/SecurePass/internal/fakevault"
	"github.com/atinyakov/SecurePass/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

type options struct {
	Addr     string
	User     string
	Master   string
	LogLevel string
	TLSDir   string
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := pflag.NewFlagSet("fakevault", pflag.ContinueOnError)
	fs.StringVarP(&o.Addr, "addr", "a", "localhost:5000", "listen on ip:port")
	fs.StringVarP(&o.User, "user", "u", "alice", "seed account name")
	fs.StringVarP(&o.Master, "master", "m", "", "seed account master password (env VAULT_MASTER)")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&o.TLSDir, "tls-dir", "", "serve HTTPS with development certificates kept in this directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.Master = cmp.Or(o.Master, os.Getenv("VAULT_MASTER"))
	if o.User == "" || o.Master == "" {
		return nil, errors.New("a seed user and master password are required")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(opts.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log.Log); err != nil {
		log.Log.Fatal("vault stopped", zap.Error(err))
	}
}

// newServer builds the HTTP server. With a TLS dir it also makes sure the
// development certificates exist.
func newServer(opts *options, log *zap.Logger) (*http.Server, error) {
	store := fakevault.NewStore()
	store.AddUser(opts.User, opts.Master)
	handler := fakevault.NewHandler(store, log.Named("handler"))

	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           fakevault.NewRouter(handler, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if opts.TLSDir == "" {
		return server, nil
	}

	p, err := certgen.EnsureDevCerts(opts.TLSDir, []string{"localhost", "127.0.0.1"})
	if err != nil {
		return nil, err
	}
	cert, err := tls.LoadX509KeyPair(p.ServerCert, p.ServerKey)
	if err != nil {
		return nil, fmt.Errorf("load server TLS cert/key: %w", err)
	}
	server.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	log.Info("serving with development certificates", zap.String("ca_file", p.CACert))
	return server, nil
}

func run(ctx context.Context, opts *options, log *zap.Logger) error {
	server, err := newServer(opts, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting vault", zap.String("addr", opts.Addr), zap.Bool("tls", server.TLSConfig != nil))
		if server.TLSConfig != nil {
			errCh <- server.ListenAndServeTLS("", "")
		} else {
			errCh <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
