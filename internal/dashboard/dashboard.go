package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

// DefaultPasswordLength is used when GeneratePassword asks for zero.
const DefaultPasswordLength = 16

// Options configures a Dashboard.
type Options struct {
	// Owner labels exported recovery key files, usually the account name.
	Owner string
	// ExportDir is where recovery keys are written. Empty means DefaultExportDir.
	ExportDir string
	// PasswordLength is the default for generated passwords.
	PasswordLength int
	// AlertTTL is how long alerts stay visible.
	AlertTTL time.Duration

	Clipboard Clipboard
	Opener    Opener
	Sink      Sink
	Logger    *zap.Logger
}

// Dashboard wires the index, the detail view and the recovery flow to one
// service and turns user commands into calls on them.
type Dashboard struct {
	Index    *Index
	Reveal   *Reveal
	Recovery *Recovery
	Busy     *Busy
	Alerts   *Alerts

	svc       Service
	sink      Sink
	log       *zap.Logger
	owner     string
	exportDir string
	pwLength  int
}

// New builds a dashboard over svc.
func New(svc Service, opts Options) *Dashboard {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sink := sinkOrNop(opts.Sink)
	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard{}
	}
	length := opts.PasswordLength
	if length <= 0 {
		length = DefaultPasswordLength
	}

	busy := NewBusy(sink)
	return &Dashboard{
		Index:     NewIndex(svc, busy, sink, log.Named("index")),
		Reveal:    NewReveal(svc, clip, opts.Opener, busy, sink, log.Named("reveal")),
		Recovery:  NewRecovery(svc, clip, busy, sink, log.Named("recovery")),
		Busy:      busy,
		Alerts:    NewAlerts(opts.AlertTTL),
		svc:       svc,
		sink:      sink,
		log:       log,
		owner:     opts.Owner,
		exportDir: opts.ExportDir,
		pwLength:  length,
	}
}

// Command is a user action. Each front end maps its input to one of these.
type Command interface {
	commandName() string
}

type (
	// AddRequested opens the add form.
	AddRequested struct{}
	// FocusSearch moves input focus to the search box.
	FocusSearch struct{}
	// Search sets the filter query.
	Search struct{ Query string }
	// SelectEntry opens an entry in the detail view.
	SelectEntry struct{ ID models.EntryID }
	// CloseDetail dismisses the detail view.
	CloseDetail struct{}
	// RevealRequested decrypts the open entry.
	RevealRequested struct{ Passphrase string }
	// HideRequested hides the open entry's secret.
	HideRequested struct{}
	// CopySecret copies the revealed secret.
	CopySecret struct{}
	// CopyUsername copies the open entry's username.
	CopyUsername struct{}
	// VisitSite opens the open entry's address.
	VisitSite struct{}
	// DeleteRequested removes an entry from this view.
	DeleteRequested struct{ ID models.EntryID }
	// GenerateRecoveryKey asks the service for a new recovery key.
	GenerateRecoveryKey struct{}
	// CopyRecoveryKey copies the held recovery key.
	CopyRecoveryKey struct{}
	// ExportRecoveryKey saves the held recovery key. Empty Dir uses the configured one.
	ExportRecoveryKey struct{ Dir string }
	// SubmitEntry adds a credential.
	SubmitEntry struct{ Request models.NewEntryRequest }
	// GeneratePassword fills the add form. Zero Length uses the configured default.
	GeneratePassword struct{ Length int }
	// Refresh reloads the index.
	Refresh struct{}
)

func (AddRequested) commandName() string        { return "add_requested" }
func (FocusSearch) commandName() string         { return "focus_search" }
func (Search) commandName() string              { return "search" }
func (SelectEntry) commandName() string         { return "select_entry" }
func (CloseDetail) commandName() string         { return "close_detail" }
func (RevealRequested) commandName() string     { return "reveal" }
func (HideRequested) commandName() string       { return "hide" }
func (CopySecret) commandName() string          { return "copy_secret" }
func (CopyUsername) commandName() string        { return "copy_username" }
func (VisitSite) commandName() string           { return "visit_site" }
func (DeleteRequested) commandName() string     { return "delete" }
func (GenerateRecoveryKey) commandName() string { return "generate_recovery_key" }
func (CopyRecoveryKey) commandName() string     { return "copy_recovery_key" }
func (ExportRecoveryKey) commandName() string   { return "export_recovery_key" }
func (SubmitEntry) commandName() string         { return "submit_entry" }
func (GeneratePassword) commandName() string    { return "generate_password" }
func (Refresh) commandName() string             { return "refresh" }

// Dispatch runs cmd. Any failure is shown as exactly one alert and also
// returned. A dropped stale decrypt answer returns ErrStaleResponse without
// an alert.
func (d *Dashboard) Dispatch(ctx context.Context, cmd Command) error {
	d.log.Debug("dispatch", zap.String("command", cmd.commandName()))

	err := d.run(ctx, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleResponse):
		return err
	default:
		d.fail(err)
		return err
	}
}

func (d *Dashboard) run(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case AddRequested:
		d.sink.Notify(Event{Kind: EventAddFormOpened})
		return nil

	case FocusSearch:
		d.sink.Notify(Event{Kind: EventSearchFocused})
		return nil

	case Search:
		d.Index.SetQuery(c.Query)
		return nil

	case SelectEntry:
		entry, ok := d.Index.Get(c.ID)
		if !ok {
			return apperr.New(apperr.KindValidationFailed, "select", "Password not found")
		}
		d.Reveal.Open(entry)
		return nil

	case CloseDetail:
		d.Reveal.Close()
		return nil

	case RevealRequested:
		err := d.Reveal.Reveal(ctx, c.Passphrase)
		if err != nil && !errors.Is(err, ErrStaleResponse) && d.Reveal.State().Phase == PhaseFailed {
			// The alert raised for err is the failure's one report.
			d.Reveal.TakeFailure()
		}
		return err

	case HideRequested:
		d.Reveal.Hide()
		return nil

	case CopySecret:
		if err := d.Reveal.CopySecret(); err != nil {
			return err
		}
		d.notice(LevelSuccess, "Copied!")
		return nil

	case CopyUsername:
		if err := d.Reveal.CopyUsername(); err != nil {
			return err
		}
		d.notice(LevelSuccess, "Username copied!")
		return nil

	case VisitSite:
		return d.Reveal.VisitSite()

	case DeleteRequested:
		removed := d.Index.Remove(c.ID)
		d.Reveal.Close()
		if removed {
			d.notice(LevelInfo, "Password removed from this view")
		}
		return nil

	case GenerateRecoveryKey:
		msg, err := d.Recovery.Generate(ctx)
		if err != nil {
			return err
		}
		if msg == "" {
			msg = "Recovery key generated"
		}
		d.notice(LevelInfo, msg)
		return nil

	case CopyRecoveryKey:
		if err := d.Recovery.CopyToClipboard(); err != nil {
			return err
		}
		d.notice(LevelSuccess, "Recovery key copied to clipboard!")
		return nil

	case ExportRecoveryKey:
		_, err := d.ExportRecoveryKey(c.Dir)
		return err

	case SubmitEntry:
		_, err := d.AddEntry(ctx, c.Request)
		return err

	case GeneratePassword:
		_, err := d.GeneratePassword(ctx, c.Length)
		return err

	case Refresh:
		return d.Index.Load(ctx)
	}
	return apperr.New(apperr.KindUnknown, "dispatch", "Unknown command")
}

// AddEntry submits req and announces the new entry.
func (d *Dashboard) AddEntry(ctx context.Context, req models.NewEntryRequest) (models.CredentialSummary, error) {
	sum, err := d.Index.Add(ctx, req)
	if err != nil {
		return sum, err
	}
	d.sink.Notify(Event{Kind: EventEntryAdded, Entry: sum})
	d.notice(LevelSuccess, "Password added successfully!")
	return sum, nil
}

// GeneratePassword asks the service for a password of length runes, or
// the configured default when length is zero. The result is handed to the
// front end and not kept.
func (d *Dashboard) GeneratePassword(ctx context.Context, length int) (string, error) {
	if length <= 0 {
		length = d.pwLength
	}
	done := d.Busy.Start("Generating password...")
	defer done()

	pw, err := d.svc.GeneratePassword(ctx, length)
	if err != nil {
		d.log.Warn("generate password failed", zap.Error(err))
		if apperr.KindOf(err) != apperr.KindServerRejected {
			err = &apperr.Error{Kind: apperr.KindServerError, Op: "generate", Msg: "Failed to generate password", Err: err}
		}
		return "", err
	}
	d.sink.Notify(Event{Kind: EventPasswordGenerated, Password: pw})
	return pw, nil
}

// ExportRecoveryKey writes the held recovery key to dir, or the configured
// directory when dir is empty, and returns the file path.
func (d *Dashboard) ExportRecoveryKey(dir string) (string, error) {
	art, err := d.Recovery.ExportAsFile(d.owner)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = d.exportDir
	}
	path, err := WriteArtifact(dir, art)
	if err != nil {
		return "", err
	}
	d.log.Info("recovery key exported", zap.String("path", path))
	d.notice(LevelSuccess, "Recovery key saved to "+path)
	return path, nil
}

// Owner returns the label used for exported files.
func (d *Dashboard) Owner() string { return d.owner }

func (d *Dashboard) fail(err error) {
	msg := apperr.Message(err)
	if apperr.KindOf(err) == apperr.KindServerRejected {
		msg = "Error: " + msg
	}
	d.notice(LevelError, msg)
}

func (d *Dashboard) notice(level Level, msg string) {
	al := d.Alerts.Show(level, msg)
	d.sink.Notify(Event{Kind: EventAlert, Alert: al})
}
