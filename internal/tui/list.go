package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atinyakov/SecurePass/internal/dashboard"
)

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmDelete {
		return m.updateConfirmDelete(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}

	visible := m.d.Index.Visible()
	switch {
	case matches(msg, m.keys.Quit):
		return m, tea.Quit
	case matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case matches(msg, m.keys.Open):
		if m.cursor < len(visible) {
			if err := m.dispatch(dashboard.SelectEntry{ID: visible[m.cursor].ID}); err == nil {
				m.view = detailView
				m.passphrase.Reset()
				m.passphrase.Blur()
			}
		}
	case matches(msg, m.keys.New):
		_ = m.dispatch(dashboard.AddRequested{})
		m.form.reset()
		m.view = formView
		cmd := m.form.focus()
		return m, cmd
	case matches(msg, m.keys.Search):
		_ = m.dispatch(dashboard.FocusSearch{})
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case matches(msg, m.keys.Refresh):
		return m, m.dispatchAsync(dashboard.Refresh{})
	case matches(msg, m.keys.Recovery):
		m.view = recoveryView
	case matches(msg, m.keys.Delete):
		if m.cursor < len(visible) {
			m.confirmDelete = true
		}
	case matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.Reset()
			_ = m.dispatch(dashboard.Search{Query: ""})
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.Reset()
		_ = m.dispatch(dashboard.Search{Query: ""})
		m.cursor = 0
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.d.Index.Query() {
		_ = m.dispatch(dashboard.Search{Query: q})
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matches(msg, m.keys.Confirm):
		visible := m.d.Index.Visible()
		if m.cursor < len(visible) {
			_ = m.dispatch(dashboard.DeleteRequested{ID: visible[m.cursor].ID})
		}
		m.confirmDelete = false
		m.clampCursor()
	case matches(msg, m.keys.Cancel):
		m.confirmDelete = false
	}
	return m, nil
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n")

	visible := m.d.Index.Visible()
	b.WriteString(subtleStyle.Render(countLine(len(visible), m.d.Index.Len())))
	b.WriteString("\n\n")

	if len(visible) == 0 {
		if m.d.Index.Len() == 0 {
			b.WriteString(subtleStyle.Render("No passwords yet. Press ctrl+n to add one."))
		} else {
			b.WriteString(subtleStyle.Render("No passwords match your search."))
		}
		return b.String()
	}

	for i, e := range visible {
		line := fmt.Sprintf("%s  %s", e.SiteName, subtleStyle.Render(e.SiteUsername))
		if e.HasURL() {
			line += "  " + subtleStyle.Render(e.SiteURL)
		}
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.confirmDelete && m.cursor < len(visible) {
		b.WriteString("\n")
		b.WriteString(alertStyle(dashboard.LevelError).Render(
			fmt.Sprintf("Remove %q from this view? (y/n)", visible[m.cursor].SiteName)))
	}
	return b.String()
}

func countLine(visible, total int) string {
	if visible == total {
		if total == 1 {
			return "1 password"
		}
		return fmt.Sprintf("%d passwords", total)
	}
	return fmt.Sprintf("Showing %d of %d passwords", visible, total)
}
