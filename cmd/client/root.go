package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/client/api"
	"github.com/atinyakov/SecurePass/internal/client/prompt"
	"github.com/atinyakov/SecurePass/internal/config"
	"github.com/atinyakov/SecurePass/internal/dashboard"
	"github.com/atinyakov/SecurePass/internal/logger"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	opts   *config.Options
	log    *logger.Logger
	prompt *prompt.Prompter
	client *api.Client
	owner  string
	opener dashboard.Opener
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{log: logger.New(), opener: browserOpener()}

	root := &cobra.Command{
		Use:           "securepass",
		Short:         "SecurePass - terminal client for your password vault",
		Long:          "securepass signs in to a SecurePass vault service and lets you browse, reveal and add saved passwords.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Log.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, a)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(
		newTUICmd(a),
		newShellCmd(a),
		newListCmd(a),
		newGenerateCmd(a),
		newRecoveryKeyCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and opens the log file.
func (a *app) setup(cmd *cobra.Command) error {
	opts, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.opts = opts
	a.prompt = prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr())

	var outputs []string
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o700); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		outputs = append(outputs, opts.LogFile)
	}
	if err := a.log.Init(opts.LogLevel, outputs...); err != nil {
		return err
	}
	a.log.Log.Debug("configuration loaded",
		zap.String("server_url", opts.ServerURL),
		zap.String("config_file", opts.ConfigFile),
	)
	return nil
}

// connect signs in. The master password is used for this request only.
func (a *app) connect(ctx context.Context) error {
	hc, err := api.NewHTTPClient(a.opts.CAFile, a.opts.Timeout)
	if err != nil {
		return err
	}
	a.client = api.New(a.opts.ServerURL, hc, a.log.Log.Named("api"))

	user := a.opts.Username
	if user == "" {
		if user, err = a.prompt.Line("Username: "); err != nil {
			return err
		}
	}
	master, err := a.prompt.Secret("Master password: ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()
	if err := a.client.Login(ctx, user, master); err != nil {
		return fmt.Errorf("sign in to %s: %w", a.opts.ServerURL, err)
	}
	a.owner = user
	a.log.Log.Info("signed in", zap.String("user", user))
	return nil
}

func (a *app) newDashboard(sink dashboard.Sink) *dashboard.Dashboard {
	return dashboard.New(a.client, dashboard.Options{
		Owner:          a.owner,
		ExportDir:      a.opts.ExportDir,
		PasswordLength: a.opts.PasswordLength,
		AlertTTL:       a.opts.AlertTTL,
		Opener:         a.opener,
		Sink:           sink,
		Logger:         a.log.Log.Named("dashboard"),
	})
}

func (a *app) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.opts.Timeout)
}
