package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/SecurePass/internal/dashboard"
)

const maskedSecret = "••••••••"

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.passphrase.Focused() {
		switch msg.String() {
		case "esc":
			m.passphrase.Reset()
			m.passphrase.Blur()
			return m, nil
		case "enter":
			pass := m.passphrase.Value()
			m.passphrase.Reset()
			m.passphrase.Blur()
			if pass == "" {
				_ = m.dispatch(dashboard.RevealRequested{})
				return m, nil
			}
			return m, m.dispatchAsync(dashboard.RevealRequested{Passphrase: pass})
		}
		var cmd tea.Cmd
		m.passphrase, cmd = m.passphrase.Update(msg)
		return m, cmd
	}

	st := m.d.Reveal.State()
	switch {
	case matches(msg, m.keys.Back):
		_ = m.dispatch(dashboard.CloseDetail{})
		m.view = listView
	case matches(msg, m.keys.Reveal):
		if st.Phase == dashboard.PhaseRevealed {
			_ = m.dispatch(dashboard.HideRequested{})
			return m, nil
		}
		cmd := m.passphrase.Focus()
		return m, cmd
	case matches(msg, m.keys.Hide):
		_ = m.dispatch(dashboard.HideRequested{})
	case matches(msg, m.keys.CopySecret):
		_ = m.dispatch(dashboard.CopySecret{})
	case matches(msg, m.keys.CopyUsername):
		_ = m.dispatch(dashboard.CopyUsername{})
	case matches(msg, m.keys.Visit):
		_ = m.dispatch(dashboard.VisitSite{})
	case matches(msg, m.keys.Delete):
		_ = m.dispatch(dashboard.DeleteRequested{ID: st.Entry.ID})
		m.view = listView
		m.clampCursor()
	}
	return m, nil
}

func (m Model) viewDetail() string {
	st := m.d.Reveal.State()
	if !st.Open {
		return subtleStyle.Render("No password selected.")
	}
	e := st.Entry

	secret := maskedSecret
	switch st.Phase {
	case dashboard.PhasePending:
		secret = m.spinner.View() + " decrypting..."
	case dashboard.PhaseRevealed:
		if s, ok := m.d.Reveal.Secret(); ok {
			secret = secretStyle.Render(s)
		}
	}

	rows := []string{
		field("Site", e.SiteName),
		field("Username", e.SiteUsername),
	}
	if e.HasURL() {
		rows = append(rows, field("URL", e.SiteURL))
	}
	if e.CreatedAt != "" {
		rows = append(rows, field("Created", e.CreatedAt))
	}
	rows = append(rows, field("Password", secret))

	var b strings.Builder
	b.WriteString(cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	if m.passphrase.Focused() {
		b.WriteString("\n\n")
		b.WriteString(m.passphrase.View())
	}
	return b.String()
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}
