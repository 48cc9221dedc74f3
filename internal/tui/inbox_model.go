package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/civica-dev/civica/internal/format"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/state"
)

// inboxChangedMsg tells the model to re-read the buffer snapshot. Sent by
// the inbox subscription whenever the buffer publishes.
type inboxChangedMsg struct{}

// InboxModel is the Bubble Tea model for the live notification inbox.
type InboxModel struct {
	inbox *state.Inbox

	notices      []model.Notice
	unread       int
	cursor       int
	windowWidth  int
	windowHeight int
	quitting     bool
}

// NewInboxModel creates an inbox model over the given buffer.
func NewInboxModel(inbox *state.Inbox) InboxModel {
	snapshot := inbox.State()
	return InboxModel{
		inbox:        inbox,
		notices:      snapshot.Notices,
		unread:       snapshot.Unread,
		windowWidth:  80,
		windowHeight: 24,
	}
}

// Init initializes the model.
func (m InboxModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m InboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case inboxChangedMsg:
		return m.refresh(), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.notices)-1 {
				m.cursor++
			}
			return m, nil

		case "enter", " ":
			// The buffer publishes; the subscription delivers the refresh.
			m.inbox.MarkRead(m.cursor)
			return m, nil

		case "a":
			m.inbox.MarkAllRead()
			return m, nil

		case "c":
			m.inbox.Clear()
			return m, nil
		}
	}

	return m, nil
}

// refresh re-reads the buffer and clamps the cursor to the new length.
func (m InboxModel) refresh() InboxModel {
	snapshot := m.inbox.State()
	m.notices = snapshot.Notices
	m.unread = snapshot.Unread
	if m.cursor >= len(m.notices) {
		m.cursor = len(m.notices) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// View renders the inbox, newest notice first.
func (m InboxModel) View() string {
	if m.quitting {
		return ""
	}

	s := inboxTitleStyle.Render("  Notifications") + "\n\n"

	if len(m.notices) == 0 {
		s += readStyle.Render("  Waiting for notifications...") + "\n"
	}

	visible := m.windowHeight - 6
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	bodyWidth := m.windowWidth - 40
	if bodyWidth < 16 {
		bodyWidth = 16
	}

	for i := start; i < len(m.notices) && i < start+visible; i++ {
		n := m.notices[i]

		title, _ := format.TruncateToWidth(n.Title, 28)
		body, _ := format.TruncateToWidth(n.Body, bodyWidth)
		age := format.FormatAge(time.Since(n.ReceivedAt))

		line := fmt.Sprintf("%s %-30s %s  %s", format.NoticeIcon(n.Read), title, body, age)

		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case !n.Read:
			line = unreadStyle.Render(line)
		default:
			line = readStyle.Render(line)
		}

		s += "  " + line + "\n"
	}

	s += "\n" + statusBarStyle.Render(fmt.Sprintf("  %d unread of %d", m.unread, len(m.notices)))
	s += footerStyle.Render("\n  enter: mark read • a: mark all read • c: clear • q: quit") + "\n"

	return s
}
