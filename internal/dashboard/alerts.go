package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAlertTTL is how long an alert stays visible.
const DefaultAlertTTL = 5 * time.Second

// Level is the severity of an alert.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Alert is a transient message shown to the user.
type Alert struct {
	ID      uuid.UUID
	Level   Level
	Message string
	Expires time.Time
}

// Alerts keeps at most one alert. A new alert replaces the current one.
type Alerts struct {
	mu      sync.Mutex
	current *Alert
	ttl     time.Duration
	now     func() time.Time
}

// NewAlerts creates an empty slot. A non-positive ttl uses DefaultAlertTTL.
func NewAlerts(ttl time.Duration) *Alerts {
	if ttl <= 0 {
		ttl = DefaultAlertTTL
	}
	return &Alerts{ttl: ttl, now: time.Now}
}

// TTL returns how long each alert lives.
func (a *Alerts) TTL() time.Duration { return a.ttl }

// Show replaces the current alert.
func (a *Alerts) Show(level Level, msg string) Alert {
	al := Alert{
		ID:      uuid.New(),
		Level:   level,
		Message: msg,
		Expires: a.now().Add(a.ttl),
	}
	a.mu.Lock()
	a.current = &al
	a.mu.Unlock()
	return al
}

// Current returns the visible alert, if any.
func (a *Alerts) Current() (Alert, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Alert{}, false
	}
	if !a.now().Before(a.current.Expires) {
		a.current = nil
		return Alert{}, false
	}
	return *a.current, true
}

// Dismiss clears the alert with the given id. An older id never clears a newer alert.
func (a *Alerts) Dismiss(id uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil && a.current.ID == id {
		a.current = nil
	}
}
