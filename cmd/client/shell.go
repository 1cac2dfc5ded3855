package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atinyakov/SecurePass/internal/client/prompt"
	"github.com/atinyakov/SecurePass/internal/dashboard"
	"github.com/atinyakov/SecurePass/internal/models"
)

const shellHelp = `Available commands:
  list [text]        list saved passwords, optionally filtered
  show <id>          open an entry
  reveal             decrypt the open entry (asks for the master password)
  hide               hide the decrypted password
  copy               copy the decrypted password
  copy-user          copy the username of the open entry
  visit              open the entry's site in a browser
  close              close the open entry
  add [-g]           add a password (-g generates one)
  generate [length]  generate a password
  delete <id>        remove an entry from this session's list
  recovery           generate a recovery key
  recovery-copy      copy the recovery key
  recovery-save [dir] save the recovery key to a file
  refresh            reload the list
  exit`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Line-oriented dashboard for scripts and plain terminals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			sh := &shell{prompt: a.prompt, out: cmd.OutOrStdout(), app: a}
			sh.d = a.newDashboard(sh)
			defer sh.d.Reveal.Close()
			defer sh.d.Recovery.Reset()

			_ = sh.exec(cmd.Context(), dashboard.Refresh{})
			return sh.run(cmd.Context())
		},
	}
}

type shell struct {
	d      *dashboard.Dashboard
	prompt *prompt.Prompter
	out    io.Writer
	app    *app

	// generated holds the last password handed out by the dashboard.
	generated string
}

// Notify prints alerts as lines of output and keeps generated passwords.
// Dispatch calls it synchronously, so no locking is needed.
func (s *shell) Notify(e dashboard.Event) {
	switch e.Kind {
	case dashboard.EventPasswordGenerated:
		s.generated = e.Password
	case dashboard.EventAlert:
		if e.Alert.Level == dashboard.LevelError {
			fmt.Fprintf(s.out, "! %s\n", e.Alert.Message)
			return
		}
		fmt.Fprintln(s.out, e.Alert.Message)
	}
}

// run reads commands until exit or end of input.
func (s *shell) run(ctx context.Context) error {
	for {
		line, err := s.prompt.Line("securepass> ")
		if errors.Is(err, prompt.ErrCancelled) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
		args := strings.Fields(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}
		if err := s.handle(ctx, args); errors.Is(err, prompt.ErrCancelled) {
			return nil
		}
	}
}

func (s *shell) handle(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "list", "ls":
		_ = s.d.Dispatch(ctx, dashboard.Search{Query: strings.Join(args[1:], " ")})
		s.printList()
	case "show", "open":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: show <id>")
			return nil
		}
		if s.exec(ctx, dashboard.SelectEntry{ID: models.ParseEntryID(args[1])}) == nil {
			s.printDetail()
		}
	case "reveal":
		if !s.d.Reveal.State().Open {
			fmt.Fprintln(s.out, "Usage: show <id> first")
			return nil
		}
		pass, err := s.prompt.Secret("Master password: ")
		if err != nil {
			return err
		}
		if s.exec(ctx, dashboard.RevealRequested{Passphrase: pass}) == nil {
			s.printDetail()
		}
	case "hide":
		_ = s.exec(ctx, dashboard.HideRequested{})
	case "copy":
		_ = s.exec(ctx, dashboard.CopySecret{})
	case "copy-user":
		_ = s.exec(ctx, dashboard.CopyUsername{})
	case "visit":
		_ = s.exec(ctx, dashboard.VisitSite{})
	case "close":
		_ = s.exec(ctx, dashboard.CloseDetail{})
	case "add":
		var generated string
		if len(args) > 1 && args[1] == "-g" {
			pw, ok := s.generate(ctx, 0)
			if !ok {
				return nil
			}
			generated = pw
		}
		req, err := s.prompt.Entry(generated)
		if err != nil {
			return err
		}
		_ = s.exec(ctx, dashboard.SubmitEntry{Request: req})
	case "generate":
		length := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				fmt.Fprintln(s.out, "Usage: generate [length]")
				return nil
			}
			length = n
		}
		if pw, ok := s.generate(ctx, length); ok {
			fmt.Fprintln(s.out, pw)
		}
	case "delete", "rm":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: delete <id>")
			return nil
		}
		id := models.ParseEntryID(args[1])
		if _, ok := s.d.Index.Get(id); !ok {
			fmt.Fprintln(s.out, "Password not found")
			return nil
		}
		_ = s.exec(ctx, dashboard.DeleteRequested{ID: id})
	case "recovery":
		if s.exec(ctx, dashboard.GenerateRecoveryKey{}) == nil {
			key, _ := s.d.Recovery.Key()
			fmt.Fprintf(s.out, "Recovery key: %s\n", key)
		}
	case "recovery-copy":
		_ = s.exec(ctx, dashboard.CopyRecoveryKey{})
	case "recovery-save":
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		}
		_ = s.exec(ctx, dashboard.ExportRecoveryKey{Dir: dir})
	case "refresh":
		if s.exec(ctx, dashboard.Refresh{}) == nil {
			s.printList()
		}
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

// exec dispatches cmd with the request timeout. Failures are already
// printed by the alert sink.
func (s *shell) exec(ctx context.Context, cmd dashboard.Command) error {
	ctx, cancel := s.app.requestContext(ctx)
	defer cancel()
	return s.d.Dispatch(ctx, cmd)
}

// generate dispatches a password request and returns the password the
// dashboard announced.
func (s *shell) generate(ctx context.Context, length int) (string, bool) {
	s.generated = ""
	if s.exec(ctx, dashboard.GeneratePassword{Length: length}) != nil {
		return "", false
	}
	pw := s.generated
	s.generated = ""
	return pw, pw != ""
}

func (s *shell) printList() {
	visible := s.d.Index.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(s.out, "No passwords found")
		return
	}
	for _, e := range visible {
		line := fmt.Sprintf("%-6s %-24s %s", e.ID, e.SiteName, e.SiteUsername)
		if e.HasURL() {
			line += "  " + e.SiteURL
		}
		fmt.Fprintln(s.out, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(s.out, "(%d of %d)\n", len(visible), s.d.Index.Len())
}

func (s *shell) printDetail() {
	st := s.d.Reveal.State()
	if !st.Open {
		return
	}
	e := st.Entry
	fmt.Fprintf(s.out, "Site:     %s\n", e.SiteName)
	fmt.Fprintf(s.out, "Username: %s\n", e.SiteUsername)
	if e.HasURL() {
		fmt.Fprintf(s.out, "URL:      %s\n", e.SiteURL)
	}
	if secret, ok := s.d.Reveal.Secret(); ok {
		fmt.Fprintf(s.out, "Password: %s\n", secret)
	} else {
		fmt.Fprintln(s.out, "Password: ••••••••")
	}
}
