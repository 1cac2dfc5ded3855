package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atinyakov/SecurePass/internal/dashboard"
	"github.com/atinyakov/SecurePass/internal/models"
	"github.com/atinyakov/SecurePass/internal/strength"
)

const (
	fieldSiteName = iota
	fieldSiteURL
	fieldUsername
	fieldPassword
	fieldMaster
	fieldCount
)

const meterWidth = 20

type addForm struct {
	inputs []textinput.Model
	index  int
}

func newAddForm() addForm {
	f := addForm{inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 256
		t.Width = 40
		switch i {
		case fieldSiteName:
			t.Prompt = "Site name:        "
			t.Placeholder = "GitHub"
		case fieldSiteURL:
			t.Prompt = "URL (optional):   "
			t.Placeholder = "https://github.com"
		case fieldUsername:
			t.Prompt = "Username:         "
			t.Placeholder = "octocat"
		case fieldPassword:
			t.Prompt = "Password:         "
			t.Placeholder = "ctrl+g to generate"
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		case fieldMaster:
			t.Prompt = "Master password:  "
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		f.inputs[i] = t
	}
	return f
}

func (f *addForm) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.index {
			cmd = f.inputs[i].Focus()
			f.inputs[i].PromptStyle = focusedStyle
			continue
		}
		f.inputs[i].Blur()
		f.inputs[i].PromptStyle = subtleStyle
	}
	return cmd
}

func (f *addForm) focus() tea.Cmd {
	f.index = fieldSiteName
	return f.focusCmd()
}

func (f *addForm) move(delta int) tea.Cmd {
	f.index = (f.index + delta + fieldCount) % fieldCount
	return f.focusCmd()
}

func (f *addForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.index = fieldSiteName
}

func (f *addForm) clearMaster() {
	f.inputs[fieldMaster].Reset()
}

func (f *addForm) setPassword(pw string) {
	f.inputs[fieldPassword].SetValue(pw)
}

func (f addForm) request() models.NewEntryRequest {
	return models.NewEntryRequest{
		SiteName:       strings.TrimSpace(f.inputs[fieldSiteName].Value()),
		SiteURL:        strings.TrimSpace(f.inputs[fieldSiteURL].Value()),
		SiteUsername:   strings.TrimSpace(f.inputs[fieldUsername].Value()),
		SitePassword:   f.inputs[fieldPassword].Value(),
		MasterPassword: f.inputs[fieldMaster].Value(),
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matches(msg, m.keys.Back):
		m.form.reset()
		m.view = listView
		return m, nil
	case matches(msg, m.keys.Generate):
		return m, m.dispatchAsync(dashboard.GeneratePassword{})
	case matches(msg, m.keys.Submit):
		cmd := m.submitForm()
		return m, cmd
	case matches(msg, m.keys.Next):
		cmd := m.form.move(1)
		return m, cmd
	case matches(msg, m.keys.Prev):
		cmd := m.form.move(-1)
		return m, cmd
	case msg.String() == "enter":
		if m.form.index == fieldMaster {
			cmd := m.submitForm()
			return m, cmd
		}
		cmd := m.form.move(1)
		return m, cmd
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.index], cmd = m.form.inputs[m.form.index].Update(msg)
	return m, cmd
}

// submitForm validates locally so an incomplete form never leaves the update loop.
func (m *Model) submitForm() tea.Cmd {
	req := m.form.request()
	if len(req.MissingFields()) > 0 {
		_ = m.dispatch(dashboard.SubmitEntry{Request: req})
		return nil
	}
	return m.dispatchAsync(dashboard.SubmitEntry{Request: req})
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString("Add a password\n\n")
	for i, in := range m.form.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
		if i == fieldPassword {
			b.WriteString(meter(m.form.inputs[fieldPassword].Value()))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func meter(candidate string) string {
	s := strength.Of(candidate)
	return "                  " + strengthStyle(s.Label).Render(s.Bar(meterWidth)+" "+s.String())
}
