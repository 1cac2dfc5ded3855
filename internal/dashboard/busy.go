package dashboard

import "sync"

// Busy is the shared activity indicator. Each operation that talks to the
// service holds it for the duration of the call; it is active while at
// least one holder remains.
type Busy struct {
	mu     sync.Mutex
	count  int
	labels []string
	sink   Sink
}

// NewBusy creates an idle indicator.
func NewBusy(sink Sink) *Busy {
	return &Busy{sink: sinkOrNop(sink)}
}

// Start marks an operation as in flight. The returned func releases it and
// is safe to call more than once; callers defer it so failures release too.
func (b *Busy) Start(label string) (done func()) {
	b.mu.Lock()
	b.count++
	b.labels = append(b.labels, label)
	b.mu.Unlock()
	b.sink.Notify(Event{Kind: EventBusyChanged})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.count--
			for i := len(b.labels) - 1; i >= 0; i-- {
				if b.labels[i] == label {
					b.labels = append(b.labels[:i], b.labels[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
			b.sink.Notify(Event{Kind: EventBusyChanged})
		})
	}
}

// Active reports whether anything is in flight and the most recent label.
func (b *Busy) Active() (bool, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return false, ""
	}
	return true, b.labels[len(b.labels)-1]
}
