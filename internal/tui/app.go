package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/notes"
	"github.com/jayan110105/neura/internal/store"
)

type pane int

const (
	paneComposer pane = iota
	paneChat
	paneNotes
)

const scrollPage = 10

// --- async result messages ---

type transcriptLoadedMsg struct {
	messages []domain.Message
}

type notesLoadedMsg struct {
	notes []domain.Note
	query string
}

type turnEventMsg struct {
	event agent.Event
}

type turnDoneMsg struct {
	result *agent.Result
}

// turnFailedMsg carries the user text of the failed turn so it can be
// restored into the composer.
type turnFailedMsg struct {
	err  error
	text string
}

type chatResetMsg struct{}

type errMsg struct {
	err error
}

// ChatAgent runs one assistant turn.
type ChatAgent interface {
	Run(ctx context.Context, sess agent.Session, messages []domain.Message, onEvent agent.EventFunc) (*agent.Result, error)
}

// NoteLister lists a user's notes.
type NoteLister interface {
	List(ctx context.Context, ownerID string, f notes.Filter) ([]domain.Note, error)
}

// Deps holds what the interactive chat needs.
type Deps struct {
	Agent       ChatAgent
	Transcripts store.TranscriptStore
	Notes       NoteLister
	Session     agent.Session
}

// --- root model ---

type model struct {
	ctx  context.Context
	deps Deps

	chat     chatModel
	composer composerModel
	sidebar  sidebarModel
	reader   readerModel
	search   searchModel

	activePane pane
	statusBar  statusBar

	// events delivers the progress of the turn in flight; nil when idle.
	events <-chan tea.Msg

	width  int
	height int
}

func newModel(ctx context.Context, deps Deps) model {
	m := model{
		ctx:       ctx,
		deps:      deps,
		chat:      newChat(),
		composer:  newComposer(),
		sidebar:   newSidebar(),
		reader:    newReader(),
		search:    newSearch(),
		statusBar: newStatusBar(),
	}
	m.setFocus(paneComposer)
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.loadTranscriptCmd(),
		m.loadNotesCmd(""),
		textarea.Blink,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- window resize ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.width = msg.Width
		m.resizeSubModels()
		return m, nil

	// --- async result messages ---
	case transcriptLoadedMsg:
		m.chat.SetMessages(msg.messages)
		if n := len(msg.messages); n > 0 {
			m.statusBar.setMessage(fmt.Sprintf("Loaded %d messages", n))
		}
		return m, nil

	case notesLoadedMsg:
		m.sidebar.SetNotes(msg.notes, msg.query)
		m.statusBar.setMessage(fmt.Sprintf("Loaded %d notes", len(msg.notes)))
		return m, nil

	case turnEventMsg:
		m.applyEvent(msg.event)
		return m, m.waitForTurn()

	case turnDoneMsg:
		m.events = nil
		m.statusBar.busy = false
		msgs := append(slices.Clone(m.chat.messages), msg.result.Messages...)
		m.chat.SetMessages(msgs)
		if msg.result.StepLimitReached {
			m.statusBar.setError(fmt.Sprintf("Stopped after %d steps", msg.result.Steps))
		} else {
			m.statusBar.setMessage("Ready")
		}
		if createdNote(msg.result.Messages) {
			return m, m.loadNotesCmd(m.sidebar.query)
		}
		return m, nil

	case turnFailedMsg:
		m.events = nil
		m.statusBar.busy = false
		// The failed turn was not saved; drop the optimistic user message.
		msgs := m.chat.messages
		if n := len(msgs); n > 0 && msgs[n-1].Role == domain.RoleUser {
			msgs = msgs[:n-1]
		}
		m.chat.SetMessages(msgs)
		if m.composer.Value() == "" {
			m.composer.SetValue(msg.text)
		}
		m.statusBar.setError(fmt.Sprintf("Error: %v", msg.err))
		return m, nil

	case chatResetMsg:
		m.chat.SetMessages(nil)
		m.statusBar.setMessage("Conversation cleared")
		return m, nil

	case errMsg:
		m.statusBar.setError(fmt.Sprintf("Error: %v", msg.err))
		return m, nil

	// --- sub-model emitted messages ---
	case sendMsg:
		if m.events != nil {
			m.composer.SetValue(msg.text)
			m.statusBar.setMessage("Waiting for the assistant...")
			return m, nil
		}
		return m, m.startTurn(msg.text)

	case noteSelectedMsg:
		m.reader.Show(msg.note)
		return m, m.setFocus(paneChat)

	case closeReaderMsg:
		m.reader.Close()
		return m, m.setFocus(paneNotes)

	case searchQueryMsg:
		m.search.Close()
		m.resizeSubModels()
		m.statusBar.setMessage("Loading notes...")
		return m, m.loadNotesCmd(msg.query)

	case closeSearchMsg:
		m.search.Close()
		m.resizeSubModels()
		return m, nil

	// --- key events ---
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

		// The filter input gets all other keys while open.
		if m.search.IsActive() {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Tab):
			return m, m.setFocus((m.activePane + 1) % 3)

		case key.Matches(msg, keys.PageUp):
			m.chat.ScrollUp(scrollPage)
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.chat.ScrollDown(scrollPage)
			return m, nil

		case key.Matches(msg, keys.Reset):
			if m.events != nil {
				return m, nil
			}
			m.statusBar.setMessage("Clearing conversation...")
			return m, m.resetChatCmd()

		case key.Matches(msg, keys.Reload):
			m.statusBar.setMessage("Loading notes...")
			return m, m.loadNotesCmd(m.sidebar.query)
		}

		var cmd tea.Cmd
		switch m.activePane {
		case paneComposer:
			m.composer, cmd = m.composer.Update(msg)

		case paneChat:
			if m.reader.IsVisible() {
				m.reader, cmd = m.reader.Update(msg)
				return m, cmd
			}
			if key.Matches(msg, keys.Back) {
				return m, m.setFocus(paneComposer)
			}
			m.chat, cmd = m.chat.Update(msg)

		case paneNotes:
			if key.Matches(msg, keys.Search) {
				cmd = m.search.Open(m.sidebar.query)
				m.resizeSubModels()
				return m, cmd
			}
			m.sidebar, cmd = m.sidebar.Update(msg)
		}
		return m, cmd
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	if m.search.IsActive() {
		m.search, cmd = m.search.Update(msg)
	} else {
		m.composer, cmd = m.composer.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebarWidth, contentWidth := m.layoutWidths()
	contentHeight := m.height - 3
	composerHeight := composerLines + 2
	chatHeight := contentHeight - composerHeight

	// --- Sidebar ---
	sidebarContent := m.sidebar.View()
	if m.search.IsActive() {
		sidebarContent = m.search.View() + "\n" + sidebarContent
	}
	sidebarView := focusBorder(sidebarStyle, m.activePane == paneNotes).
		Width(sidebarWidth).
		Height(contentHeight).
		Render(sidebarContent)

	// --- Chat or note reader ---
	body := m.chat.View()
	if m.reader.IsVisible() {
		body = m.reader.View()
	}
	chatView := focusBorder(chatStyle, m.activePane == paneChat).
		Width(contentWidth).
		Height(chatHeight - 2).
		Render(body)

	composerView := focusBorder(composerStyle, m.activePane == paneComposer).
		Width(contentWidth).
		Render(m.composer.View())

	content := lipgloss.JoinVertical(lipgloss.Left, chatView, composerView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, content)

	m.statusBar.focus = m.activePane
	return lipgloss.JoinVertical(lipgloss.Left, main, m.statusBar.View())
}

// --- focus management ---

func (m *model) setFocus(p pane) tea.Cmd {
	m.activePane = p
	m.statusBar.focus = p
	m.chat.focused = p == paneChat
	m.reader.focused = p == paneChat
	m.sidebar.focused = p == paneNotes
	if p == paneComposer {
		return m.composer.Focus()
	}
	m.composer.Blur()
	return nil
}

// --- layout helpers ---

func (m model) layoutWidths() (sidebarWidth, contentWidth int) {
	sidebarWidth = max(m.width/4, 24)
	contentWidth = m.width - sidebarWidth - 4
	return
}

func (m *model) resizeSubModels() {
	sidebarWidth, contentWidth := m.layoutWidths()
	contentHeight := m.height - 3
	chatHeight := contentHeight - (composerLines + 2)

	// sidebarStyle: Border(2h + 2v) + Padding(2h + 2v) = 4h, 4v
	sidebarHeight := contentHeight - 4
	if m.search.IsActive() {
		sidebarHeight--
	}
	m.sidebar.SetSize(sidebarWidth-4, sidebarHeight)
	m.search.SetWidth(sidebarWidth - 4)

	// chatStyle: Border(2h + 2v) + Padding(2h + 0v) = 4h, 2v
	m.chat.SetSize(contentWidth-4, chatHeight-2)
	m.reader.SetSize(contentWidth-4, chatHeight-2)

	m.composer.SetWidth(contentWidth - 2)
}

// applyEvent records the progress of the turn in flight.
func (m *model) applyEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventToolCall:
		if ev.ToolCall != nil {
			m.chat.AddActivity("→ " + ev.ToolCall.Name)
			m.statusBar.setMessage(fmt.Sprintf("Running %s...", ev.ToolCall.Name))
		}
	case agent.EventToolResult:
		if ev.ToolResult != nil {
			m.chat.AddActivity(renderToolResult(*ev.ToolResult))
		}
	case agent.EventText:
		m.statusBar.setMessage("Writing...")
	}
}

// --- async commands ---

// startTurn appends the user message and runs the agent in the background.
// Events arrive through m.events and are read one at a time by
// waitForTurn.
func (m *model) startTurn(text string) tea.Cmd {
	user := domain.NewMessage(domain.RoleUser, text)
	msgs := append(slices.Clone(m.chat.messages), user)
	m.chat.SetMessages(msgs)
	m.chat.AddActivity("Thinking...")
	m.statusBar.busy = true
	m.statusBar.setMessage("Thinking...")

	ch := make(chan tea.Msg, 16)
	m.events = ch

	ctx, a, sess := m.ctx, m.deps.Agent, m.deps.Session
	conv := slices.Clone(msgs)
	go func() {
		defer close(ch)
		res, err := a.Run(ctx, sess, conv, func(ev agent.Event) {
			if ev.Type == agent.EventDone {
				return
			}
			ch <- turnEventMsg{event: ev}
		})
		if err != nil {
			ch <- turnFailedMsg{err: err, text: text}
			return
		}
		ch <- turnDoneMsg{result: res}
	}()

	return m.waitForTurn()
}

func (m model) waitForTurn() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m model) loadTranscriptCmd() tea.Cmd {
	return func() tea.Msg {
		t, err := m.deps.Transcripts.GetTranscript(m.ctx, m.deps.Session.UserID)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to load conversation: %w", err)}
		}
		return transcriptLoadedMsg{messages: t.Messages}
	}
}

func (m model) loadNotesCmd(query string) tea.Cmd {
	return func() tea.Msg {
		list, err := m.deps.Notes.List(m.ctx, m.deps.Session.UserID, notes.Filter{Query: query})
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to load notes: %w", err)}
		}
		return notesLoadedMsg{notes: list, query: query}
	}
}

func (m model) resetChatCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Transcripts.DeleteTranscript(m.ctx, m.deps.Session.UserID); err != nil {
			return errMsg{err: fmt.Errorf("failed to reset conversation: %w", err)}
		}
		return chatResetMsg{}
	}
}

// createdNote reports whether a turn stored a note.
func createdNote(msgs []domain.Message) bool {
	for _, m := range msgs {
		for _, r := range m.ToolResults {
			if r.Name == agent.ToolCreateNote && !r.IsError {
				return true
			}
		}
	}
	return false
}

// Run starts the interactive chat and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	prog := tea.NewProgram(
		newModel(ctx, deps),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := prog.Run()
	return err
}
