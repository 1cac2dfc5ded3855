package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atinyakov/SecurePass/internal/dashboard"
)

func (m Model) updateRecovery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matches(msg, m.keys.Back):
		m.view = listView
	case matches(msg, m.keys.NewKey):
		return m, m.dispatchAsync(dashboard.GenerateRecoveryKey{})
	case matches(msg, m.keys.CopyKey):
		_ = m.dispatch(dashboard.CopyRecoveryKey{})
	case matches(msg, m.keys.ExportKey):
		_ = m.dispatch(dashboard.ExportRecoveryKey{})
	}
	return m, nil
}

func (m Model) viewRecovery() string {
	var b strings.Builder
	b.WriteString("Recovery key\n\n")

	key, ok := m.d.Recovery.Key()
	if !ok {
		b.WriteString(subtleStyle.Render("No recovery key generated in this session. Press g to generate one."))
		return b.String()
	}
	b.WriteString(keyBoxStyle.Render(key))
	b.WriteString("\n")
	if note := m.d.Recovery.Message(); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
		b.WriteString("\n")
	}
	if owner := m.d.Owner(); owner != "" {
		b.WriteString(subtleStyle.Render("Saves as " + dashboard.RecoveryFilename(owner)))
	}
	return b.String()
}
