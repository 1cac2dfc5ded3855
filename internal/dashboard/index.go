package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/apperr"
	"github.com/atinyakov/SecurePass/internal/models"
)

// ErrSavedNotListed marks an add the service accepted whose entry could not
// be found afterwards. The password is stored; submitting again would store
// it twice.
var ErrSavedNotListed = errors.New("password saved but not listed")

// Index is the in-memory list of credential summaries plus the current
// search query. Entries are unique by ID and kept in the order the service
// returned or the user added them.
type Index struct {
	mu      sync.RWMutex
	entries []models.CredentialSummary
	query   string
	// removed holds ids dropped by Remove since the last Load.
	removed map[models.EntryID]struct{}

	svc  IndexService
	busy *Busy
	sink Sink
	log  *zap.Logger
}

// NewIndex creates an empty index.
func NewIndex(svc IndexService, busy *Busy, sink Sink, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	if busy == nil {
		busy = NewBusy(sink)
	}
	return &Index{svc: svc, busy: busy, sink: sinkOrNop(sink), log: log}
}

// Load replaces the index with the service's list. On failure the previous
// contents are kept.
func (ix *Index) Load(ctx context.Context) error {
	list, err := ix.fetch(ctx)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.entries = dedupe(list)
	ix.removed = nil
	n := len(ix.entries)
	ix.mu.Unlock()

	ix.log.Debug("index loaded", zap.Int("entries", n))
	ix.sink.Notify(Event{Kind: EventIndexChanged})
	return nil
}

func (ix *Index) fetch(ctx context.Context) ([]models.CredentialSummary, error) {
	done := ix.busy.Start("Loading passwords...")
	defer done()

	list, err := ix.svc.ListPasswords(ctx)
	if err != nil {
		ix.log.Warn("load passwords failed", zap.Error(err))
		return nil, &apperr.Error{
			Kind: apperr.KindFetchFailed,
			Op:   "load",
			Msg:  "Failed to load passwords: " + apperr.Message(err),
			Err:  err,
		}
	}
	return list, nil
}

// Add validates req, submits it and appends the new summary.
//
// When the service does not report the new id, the list is fetched again
// and the one entry that was not there before is appended: the newest
// unseen entry with the submitted name and username, else the newest unseen
// entry. Entries removed from this view are not brought back. If the entry
// cannot be found the error matches ErrSavedNotListed.
func (ix *Index) Add(ctx context.Context, req models.NewEntryRequest) (models.CredentialSummary, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		ix.log.Debug("add rejected locally", zap.Strings("missing", missing))
		return models.CredentialSummary{}, apperr.New(apperr.KindValidationFailed, "add", "Please fill in all required fields")
	}

	res, err := ix.submit(ctx, req)
	if err != nil {
		return models.CredentialSummary{}, err
	}

	if res.ID != "" {
		sum := req.Summary(res.ID)
		ix.mu.Lock()
		if !containsID(ix.entries, sum.ID) {
			ix.entries = append(ix.entries, sum)
		}
		ix.mu.Unlock()
		ix.sink.Notify(Event{Kind: EventIndexChanged})
		return sum, nil
	}

	list, err := ix.fetch(ctx)
	if err != nil {
		return models.CredentialSummary{}, savedNotListed(err)
	}

	ix.mu.Lock()
	sum, ok := ix.pickNewLocked(list, req)
	if ok {
		ix.entries = append(ix.entries, sum)
	}
	ix.mu.Unlock()

	if !ok {
		return models.CredentialSummary{}, savedNotListed(nil)
	}
	ix.sink.Notify(Event{Kind: EventIndexChanged})
	return sum, nil
}

// pickNewLocked finds the entry an id-less add created in a fresh list.
func (ix *Index) pickNewLocked(list []models.CredentialSummary, req models.NewEntryRequest) (models.CredentialSummary, bool) {
	var unseen []models.CredentialSummary
	for _, e := range dedupe(list) {
		if _, gone := ix.removed[e.ID]; gone || containsID(ix.entries, e.ID) {
			continue
		}
		unseen = append(unseen, e)
	}
	if len(unseen) == 0 {
		return models.CredentialSummary{}, false
	}
	for i := len(unseen) - 1; i >= 0; i-- {
		if unseen[i].SiteName == req.SiteName && unseen[i].SiteUsername == req.SiteUsername {
			return unseen[i], true
		}
	}
	return unseen[len(unseen)-1], true
}

func savedNotListed(cause error) error {
	e := &apperr.Error{
		Kind: apperr.KindFetchFailed,
		Op:   "add",
		Msg:  "Password saved, but the list could not be refreshed",
		Err:  ErrSavedNotListed,
	}
	if cause != nil {
		e.Err = fmt.Errorf("%w: %w", ErrSavedNotListed, cause)
	}
	return e
}

func (ix *Index) submit(ctx context.Context, req models.NewEntryRequest) (models.AddResult, error) {
	done := ix.busy.Start("Adding password...")
	defer done()

	res, err := ix.svc.AddPassword(ctx, req)
	if err == nil {
		return res, nil
	}
	ix.log.Warn("add password failed", zap.Error(err))
	if apperr.KindOf(err) == apperr.KindServerRejected {
		return res, err
	}
	return res, &apperr.Error{Kind: apperr.KindServerError, Op: "add", Msg: "Failed to add password", Err: err}
}

// SetQuery stores the search query used by Visible.
func (ix *Index) SetQuery(q string) {
	ix.mu.Lock()
	ix.query = q
	ix.mu.Unlock()
	ix.sink.Notify(Event{Kind: EventIndexChanged})
}

// Query returns the current search query.
func (ix *Index) Query() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.query
}

// Visible returns the entries matching the current query.
func (ix *Index) Visible() []models.CredentialSummary {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Filter(ix.entries, ix.query)
}

// VisibleCount is len(Visible()).
func (ix *Index) VisibleCount() int {
	return len(ix.Visible())
}

// All returns a copy of every entry.
func (ix *Index) All() []models.CredentialSummary {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]models.CredentialSummary, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Get looks up an entry by id.
func (ix *Index) Get(id models.EntryID) (models.CredentialSummary, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, e := range ix.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.CredentialSummary{}, false
}

// Remove drops an entry from the index. It reports whether it was present.
// The service is not told, and the entry stays out until the next Load.
func (ix *Index) Remove(id models.EntryID) bool {
	ix.mu.Lock()
	removed := false
	for i, e := range ix.entries {
		if e.ID == id {
			ix.entries = append(ix.entries[:i:i], ix.entries[i+1:]...)
			if ix.removed == nil {
				ix.removed = make(map[models.EntryID]struct{})
			}
			ix.removed[id] = struct{}{}
			removed = true
			break
		}
	}
	ix.mu.Unlock()
	if removed {
		ix.sink.Notify(Event{Kind: EventIndexChanged})
	}
	return removed
}

// Filter returns the entries whose name, username or address contains query,
// ignoring case. An empty query matches everything. The result is a new
// slice in index order.
func Filter(entries []models.CredentialSummary, query string) []models.CredentialSummary {
	q := strings.ToLower(query)
	out := make([]models.CredentialSummary, 0, len(entries))
	for _, e := range entries {
		if q == "" || strings.Contains(e.SearchText(), q) {
			out = append(out, e)
		}
	}
	return out
}

func dedupe(list []models.CredentialSummary) []models.CredentialSummary {
	seen := make(map[models.EntryID]struct{}, len(list))
	out := make([]models.CredentialSummary, 0, len(list))
	for _, e := range list {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func containsID(entries []models.CredentialSummary, id models.EntryID) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
