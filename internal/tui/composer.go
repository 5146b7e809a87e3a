package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

const composerLines = 3

// sendMsg is emitted when the user submits a chat message.
type sendMsg struct {
	text string
}

// composerModel is the chat input at the bottom of the screen.
type composerModel struct {
	input   textarea.Model
	width   int
	focused bool
}

func newComposer() composerModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about your email or notes..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(composerLines)
	// Enter sends; a newline needs alt+enter.
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	return composerModel{input: ta}
}

// Update handles key events while the composer has focus.
func (c composerModel) Update(msg tea.Msg) (composerModel, tea.Cmd) {
	if !c.focused {
		return c, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Send) {
		text := strings.TrimSpace(c.input.Value())
		if text == "" {
			return c, nil
		}
		c.input.Reset()
		return c, func() tea.Msg { return sendMsg{text: text} }
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c composerModel) View() string {
	return c.input.View()
}

// Focus gives the composer keyboard focus and starts the cursor blink.
func (c *composerModel) Focus() tea.Cmd {
	c.focused = true
	return c.input.Focus()
}

func (c *composerModel) Blur() {
	c.focused = false
	c.input.Blur()
}

// SetValue replaces the input text, used to restore a message whose turn
// failed.
func (c *composerModel) SetValue(s string) {
	c.input.SetValue(s)
}

func (c composerModel) Value() string {
	return c.input.Value()
}

func (c *composerModel) SetWidth(w int) {
	c.width = w
	c.input.SetWidth(w)
}
