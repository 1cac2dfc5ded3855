package dashboard

import "github.com/atinyakov/SecurePass/internal/models"

// EventKind says which part of the dashboard changed.
type EventKind int

const (
	EventIndexChanged EventKind = iota
	EventRevealChanged
	EventRecoveryChanged
	EventBusyChanged
	EventAlert
	EventAddFormOpened
	EventSearchFocused
	EventPasswordGenerated
	EventEntryAdded
)

// Event tells the front end to re-render. Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind
	// Alert is set for EventAlert.
	Alert Alert
	// Password is set for EventPasswordGenerated.
	Password string
	// Entry is set for EventEntryAdded.
	Entry models.CredentialSummary
}

// Sink receives dashboard events. Implementations must not block.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Notify implements Sink.
func (f SinkFunc) Notify(e Event) { f(e) }

type nopSink struct{}

func (nopSink) Notify(Event) {}

func sinkOrNop(s Sink) Sink {
	if s == nil {
		return nopSink{}
	}
	return s
}
