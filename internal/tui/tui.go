// Package tui is the terminal front end of the vault dashboard. It turns
// key presses into dashboard commands and renders dashboard state.
package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/SecurePass/internal/dashboard"
)

type view int

const (
	listView view = iota
	detailView
	formView
	recoveryView
)

// eventMsg carries a dashboard event into the update loop.
type eventMsg dashboard.Event

// dispatchedMsg reports a command that ran off the update loop.
type dispatchedMsg struct {
	cmd dashboard.Command
	err error
}

type alertExpiredMsg struct{ id uuid.UUID }

// Sink forwards dashboard events to a running program. Events sent before
// Attach are dropped; the first render reads state directly.
type Sink struct {
	mu sync.Mutex
	p  *tea.Program
}

// NewSink creates a detached sink.
func NewSink() *Sink { return &Sink{} }

// Attach starts forwarding to p.
func (s *Sink) Attach(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

// Notify implements dashboard.Sink. It never blocks the caller, which may
// be the update loop itself.
func (s *Sink) Notify(e dashboard.Event) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		go p.Send(eventMsg(e))
	}
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	d       *dashboard.Dashboard
	log     *zap.Logger
	ctx     context.Context
	timeout time.Duration

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	view          view
	cursor        int
	search        textinput.Model
	searching     bool
	confirmDelete bool
	passphrase    textinput.Model
	form          addForm

	width int
}

// New builds the model. timeout bounds each service call.
func New(ctx context.Context, d *dashboard.Dashboard, timeout time.Duration, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "name, username or url"
	search.CharLimit = 128
	search.Cursor.Style = focusedStyle

	pass := textinput.New()
	pass.Prompt = "Master password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 256
	pass.Cursor.Style = focusedStyle

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = focusedStyle

	return Model{
		d:          d,
		log:        log,
		ctx:        ctx,
		timeout:    timeout,
		keys:       DefaultKeyMap,
		help:       help.New(),
		spinner:    sp,
		search:     search,
		passphrase: pass,
		form:       newAddForm(),
	}
}

// Init loads the index.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.dispatchAsync(dashboard.Refresh{}))
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		return m.handleEvent(dashboard.Event(msg))

	case alertExpiredMsg:
		m.d.Alerts.Dismiss(msg.id)
		return m, nil

	case dispatchedMsg:
		return m.handleDispatched(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case detailView:
			return m.updateDetail(msg)
		case formView:
			return m.updateForm(msg)
		case recoveryView:
			return m.updateRecovery(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) handleEvent(e dashboard.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case dashboard.EventAlert:
		id := e.Alert.ID
		return m, tea.Tick(m.d.Alerts.TTL(), func(time.Time) tea.Msg { return alertExpiredMsg{id: id} })
	case dashboard.EventPasswordGenerated:
		m.form.setPassword(e.Password)
	case dashboard.EventIndexChanged:
		m.clampCursor()
	}
	return m, nil
}

func (m Model) handleDispatched(msg dispatchedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Debug("command failed", zap.Error(msg.err))
	}
	switch msg.cmd.(type) {
	case dashboard.SubmitEntry:
		// ErrSavedNotListed means the service stored the entry.
		if msg.err == nil || errors.Is(msg.err, dashboard.ErrSavedNotListed) {
			m.form.reset()
			m.view = listView
			m.cursor = max(0, m.d.Index.VisibleCount()-1)
		} else {
			m.form.clearMaster()
		}
	case dashboard.RevealRequested:
		m.passphrase.Reset()
	case dashboard.Refresh:
		m.clampCursor()
	}
	return m, nil
}

// dispatch runs a command that does not touch the network.
func (m *Model) dispatch(cmd dashboard.Command) error {
	return m.d.Dispatch(m.ctx, cmd)
}

// dispatchAsync runs a command that calls the service off the update loop.
func (m Model) dispatchAsync(cmd dashboard.Command) tea.Cmd {
	d, parent, timeout := m.d, m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return dispatchedMsg{cmd: cmd, err: d.Dispatch(ctx, cmd)}
	}
}

func (m *Model) clampCursor() {
	n := m.d.Index.VisibleCount()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the current screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SecurePass"))
	b.WriteString("\n")

	switch m.view {
	case detailView:
		b.WriteString(m.viewDetail())
	case formView:
		b.WriteString(m.viewForm())
	case recoveryView:
		b.WriteString(m.viewRecovery())
	default:
		b.WriteString(m.viewList())
	}

	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys.forView(m.view, m))))
	return docStyle.Render(b.String())
}

func (m Model) statusLine() string {
	var parts []string
	if active, label := m.d.Busy.Active(); active {
		parts = append(parts, m.spinner.View()+" "+label)
	}
	if al, ok := m.d.Alerts.Current(); ok {
		parts = append(parts, alertStyle(al.Level).Render(al.Message))
	}
	return strings.Join(parts, "  ")
}

func matches(msg tea.KeyMsg, b key.Binding) bool { return key.Matches(msg, b) }

// Run starts the dashboard in the alternate screen and blocks until the user quits.
func Run(ctx context.Context, d *dashboard.Dashboard, sink *Sink, timeout time.Duration, log *zap.Logger) error {
	p := tea.NewProgram(New(ctx, d, timeout, log), tea.WithAltScreen(), tea.WithContext(ctx))
	sink.Attach(p)
	_, err := p.Run()
	// Leave nothing decrypted behind once the screen is gone.
	d.Reveal.Close()
	d.Recovery.Reset()
	return err
}
