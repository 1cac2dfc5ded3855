package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/apperr"
)

// recoveryFilePrefix and recoveryFileExt frame the export filename around the owner label.
const (
	recoveryFilePrefix = "securepass-recovery-key-"
	recoveryFileExt    = ".txt"
)

// Artifact is an exported recovery key ready to be saved.
type Artifact struct {
	Filename string
	Content  []byte
}

// Recovery holds the most recently generated recovery key for copy and export.
type Recovery struct {
	mu  sync.Mutex
	key string
	msg string

	svc  RecoveryService
	clip Clipboard
	busy *Busy
	sink Sink
	log  *zap.Logger
}

// NewRecovery creates a recovery flow with no key.
func NewRecovery(svc RecoveryService, clip Clipboard, busy *Busy, sink Sink, log *zap.Logger) *Recovery {
	if log == nil {
		log = zap.NewNop()
	}
	if busy == nil {
		busy = NewBusy(sink)
	}
	if clip == nil {
		clip = SystemClipboard{}
	}
	return &Recovery{svc: svc, clip: clip, busy: busy, sink: sinkOrNop(sink), log: log}
}

// Generate asks the service for a new recovery key. On success it replaces
// the held key; on failure the previous key stays.
func (rc *Recovery) Generate(ctx context.Context) (string, error) {
	done := rc.busy.Start("Generating recovery key...")
	defer done()

	res, err := rc.svc.GenerateRecoveryKey(ctx)
	if err != nil {
		rc.log.Warn("generate recovery key failed", zap.Error(err))
		if apperr.KindOf(err) != apperr.KindServerRejected {
			err = &apperr.Error{Kind: apperr.KindServerError, Op: "recovery key", Msg: "Failed to generate recovery key", Err: err}
		}
		return "", err
	}

	rc.mu.Lock()
	rc.key = res.Key
	rc.msg = res.Message
	rc.mu.Unlock()
	rc.sink.Notify(Event{Kind: EventRecoveryChanged})
	return res.Message, nil
}

// Key returns the held key.
func (rc *Recovery) Key() (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.key, rc.key != ""
}

// Message returns the service's note that came with the held key.
func (rc *Recovery) Message() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.msg
}

// Reset forgets the held key.
func (rc *Recovery) Reset() {
	rc.mu.Lock()
	rc.key, rc.msg = "", ""
	rc.mu.Unlock()
	rc.sink.Notify(Event{Kind: EventRecoveryChanged})
}

// ExportAsFile packages the held key as a text file named after owner.
// The content is exactly the key. Owner must not contain path separators.
func (rc *Recovery) ExportAsFile(owner string) (Artifact, error) {
	key, ok := rc.Key()
	if !ok {
		return Artifact{}, apperr.New(apperr.KindNothingToCopy, "export", "Generate a recovery key first")
	}
	if owner == "" {
		return Artifact{}, apperr.New(apperr.KindValidationFailed, "export", "Owner name is required")
	}
	if strings.ContainsAny(owner, `/\`) {
		return Artifact{}, apperr.New(apperr.KindValidationFailed, "export", "Owner name cannot contain path separators")
	}
	return Artifact{
		Filename: RecoveryFilename(owner),
		Content:  []byte(key),
	}, nil
}

// RecoveryFilename is the export file name for owner's recovery key.
func RecoveryFilename(owner string) string {
	return recoveryFilePrefix + owner + recoveryFileExt
}

// CopyToClipboard puts the held key on the clipboard.
func (rc *Recovery) CopyToClipboard() error {
	key, ok := rc.Key()
	if !ok {
		return apperr.New(apperr.KindNothingToCopy, "copy recovery key", "Generate a recovery key first")
	}
	return writeClipboard(rc.clip, "copy recovery key", key)
}

// DefaultExportDir is where artifacts go when no directory is configured.
func DefaultExportDir() string {
	return xdg.UserDirs.Download
}

// WriteArtifact saves a into dir, readable only by the current user, and
// returns the full path. An empty dir means DefaultExportDir.
func WriteArtifact(dir string, a Artifact) (string, error) {
	if a.Filename == "" || strings.ContainsAny(a.Filename, `/\`) || a.Filename != filepath.Base(a.Filename) {
		return "", apperr.New(apperr.KindValidationFailed, "export", fmt.Sprintf("Invalid file name %q", a.Filename))
	}
	if dir == "" {
		dir = DefaultExportDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Content, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Filename, err)
	}
	return path, nil
}
