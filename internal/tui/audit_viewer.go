// File: internal/tui/audit_viewer.go
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"secret.module/internal/audit"
)

// --- Styles ---
type Styles struct {
	App, Title, Status, Error, Help, Bordered lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		App:      lipgloss.NewStyle().Margin(1, 2),
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#25A065")).Padding(0, 1),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5733")).Bold(true),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Bordered: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1),
	}
}

// --- Keymaps ---
type KeyMap struct {
	Quit, Back, Enter, Failures key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Failures, k.Back, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Enter, k.Failures}, {k.Back, k.Quit}}
}

var Keys = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Failures: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "failures only")),
}

// --- List Items ---
type entryItem struct{ e audit.Entry }

func (i entryItem) Title() string { return i.e.Summary() }

func (i entryItem) Description() string {
	return fmt.Sprintf("%s  %s", i.e.Time.Format("2006-01-02 15:04:05"), i.e.Level)
}

func (i entryItem) FilterValue() string {
	return strings.Join([]string{i.e.Event, i.e.Variant, i.e.Op, i.e.Command, i.e.ErrorCode}, " ")
}

// AuditViewer browses audit log entries. Entries carry lifecycle metadata
// only, so the viewer never handles secret content.
type AuditViewer struct {
	entries  []audit.Entry
	skipped  int
	list     list.Model
	detail   viewport.Model
	help     help.Model
	styles   Styles
	showing  bool
	failures bool
	width    int
	height   int
}

// NewAuditViewer returns a viewer over entries, newest first. skipped is the
// number of unreadable lines reported in the status bar.
func NewAuditViewer(entries []audit.Entry, skipped int) *AuditViewer {
	m := &AuditViewer{
		entries: entries,
		skipped: skipped,
		detail:  viewport.New(0, 0),
		help:    help.New(),
		styles:  NewStyles(),
	}
	m.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.list.Title = "Audit Log"
	m.list.SetShowHelp(false)
	m.refresh()
	return m
}

func (m *AuditViewer) refresh() {
	var items []list.Item
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.failures && !m.entries[i].Failed() {
			continue
		}
		items = append(items, entryItem{e: m.entries[i]})
	}
	m.list.SetItems(items)
}

// Visible returns the entries currently listed, newest first.
func (m *AuditViewer) Visible() []audit.Entry {
	var out []audit.Entry
	for _, it := range m.list.Items() {
		out = append(out, it.(entryItem).e)
	}
	return out
}

func (m *AuditViewer) Init() tea.Cmd { return nil }

func (m *AuditViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := m.styles.App.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)
		m.detail.Width = msg.Width - h
		m.detail.Height = msg.Height - v - 2
		m.help.Width = msg.Width - h
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			return m, tea.Quit
		case m.showing && key.Matches(msg, Keys.Back):
			m.showing = false
			return m, nil
		case !m.showing && key.Matches(msg, Keys.Enter):
			if it, ok := m.list.SelectedItem().(entryItem); ok {
				m.detail.SetContent(m.describe(it.e))
				m.detail.GotoTop()
				m.showing = true
			}
			return m, nil
		case !m.showing && key.Matches(msg, Keys.Failures):
			m.failures = !m.failures
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.showing {
		m.detail, cmd = m.detail.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *AuditViewer) describe(e audit.Entry) string {
	var b strings.Builder
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-10s %s\n", label+":", value)
		}
	}
	row("Time", e.Time.Format("2006-01-02 15:04:05.000"))
	row("Level", e.Level)
	row("Message", e.Msg)
	row("Event", e.Event)
	row("Op", e.Op)
	row("Variant", e.Variant)
	if e.Event != "" {
		row("Size", fmt.Sprintf("%d bytes", e.Size))
	}
	row("Mode", e.Mode)
	row("Command", e.Command)
	row("Code", e.ErrorCode)
	row("Error", e.Error)
	return b.String()
}

func (m *AuditViewer) View() string {
	var body string
	if m.showing {
		body = m.styles.Title.Render("Entry") + "\n\n" + m.styles.Bordered.Render(m.detail.View())
	} else {
		body = m.list.View()
	}

	status := fmt.Sprintf("%d entries", len(m.list.Items()))
	if m.failures {
		status += " (failures only)"
	}
	line := m.styles.Status.Render(status)
	if m.skipped > 0 {
		line += "  " + m.styles.Error.Render(fmt.Sprintf("%d unreadable lines skipped", m.skipped))
	}
	return m.styles.App.Render(body + "\n" + line + "\n" + m.styles.Help.Render(m.help.View(Keys)))
}

// RunAuditViewer runs the viewer full screen on the given terminal streams.
func RunAuditViewer(entries []audit.Entry, skipped int, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(NewAuditViewer(entries, skipped),
		tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
	_, err := p.Run()
	return err
}
