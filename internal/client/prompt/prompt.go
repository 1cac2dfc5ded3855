// Package prompt reads answers from the user for the shell and the login step.
// Secrets are read without echo when the input is a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/atinyakov/SecurePass/internal/models"
)

// ErrCancelled is returned when input ends before an answer is given.
var ErrCancelled = errors.New("input closed")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// New creates a Prompter. If in is a terminal, secrets are read without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Line prints label and returns the next line without its line ending.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret prints label and reads a line without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	if p.fd < 0 {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(b), nil
}

// Entry asks for the fields of a new credential. password is used for the
// site password when not empty, e.g. after generating one.
func (p *Prompter) Entry(password string) (models.NewEntryRequest, error) {
	var req models.NewEntryRequest
	var err error

	if req.SiteName, err = p.Line("Site name: "); err != nil {
		return req, err
	}
	if req.SiteURL, err = p.Line("URL (optional): "); err != nil {
		return req, err
	}
	if req.SiteUsername, err = p.Line("Username: "); err != nil {
		return req, err
	}
	if password != "" {
		req.SitePassword = password
	} else if req.SitePassword, err = p.Secret("Password: "); err != nil {
		return req, err
	}
	if req.MasterPassword, err = p.Secret("Master password: "); err != nil {
		return req, err
	}

	req.SiteName = strings.TrimSpace(req.SiteName)
	req.SiteURL = strings.TrimSpace(req.SiteURL)
	req.SiteUsername = strings.TrimSpace(req.SiteUsername)
	return req, nil
}
