package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusy_CountsHolders(t *testing.T) {
	sink := &recordingSink{}
	b := NewBusy(sink)

	active, _ := b.Active()
	assert.False(t, active)

	doneA := b.Start("Loading passwords...")
	doneB := b.Start("Decrypting password...")
	active, label := b.Active()
	assert.True(t, active)
	assert.Equal(t, "Decrypting password...", label)

	doneB()
	doneB()
	active, label = b.Active()
	assert.True(t, active)
	assert.Equal(t, "Loading passwords...", label)

	doneA()
	active, _ = b.Active()
	assert.False(t, active)
	assert.Equal(t, 4, sink.count(EventBusyChanged))
}

func TestAlerts_SingleSlot(t *testing.T) {
	a := NewAlerts(0)
	assert.Equal(t, DefaultAlertTTL, a.TTL())

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	first := a.Show(LevelError, "first")
	second := a.Show(LevelSuccess, "second")

	cur, ok := a.Current()
	require.True(t, ok)
	assert.Equal(t, second, cur)

	a.Dismiss(first.ID)
	_, ok = a.Current()
	assert.True(t, ok, "an old id must not clear a newer alert")

	now = now.Add(DefaultAlertTTL)
	_, ok = a.Current()
	assert.False(t, ok)

	third := a.Show(LevelInfo, "third")
	a.Dismiss(third.ID)
	_, ok = a.Current()
	assert.False(t, ok)
}
