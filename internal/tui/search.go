package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages emitted by searchModel.

type searchQueryMsg struct {
	query string
}

type closeSearchMsg struct{}

// searchModel is the note filter input shown above the notes list. An
// empty query clears the filter.
type searchModel struct {
	input  textinput.Model
	active bool
	width  int
}

func newSearch() searchModel {
	ti := textinput.New()
	ti.Placeholder = "Filter notes..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	return searchModel{input: ti}
}

func (s searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	if !s.active {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Back):
			return s, func() tea.Msg { return closeSearchMsg{} }

		case key.Matches(msg, keys.Enter):
			q := strings.TrimSpace(s.input.Value())
			return s, func() tea.Msg { return searchQueryMsg{query: q} }
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s searchModel) View() string {
	if !s.active {
		return ""
	}
	return s.input.View()
}

// Open activates the filter input, prefilled with the current query.
func (s *searchModel) Open(query string) tea.Cmd {
	s.active = true
	s.input.SetValue(query)
	s.input.CursorEnd()
	return s.input.Focus()
}

func (s *searchModel) Close() {
	s.active = false
	s.input.Blur()
}

func (s *searchModel) SetWidth(w int) {
	s.width = w
	s.input.Width = max(w-4, 1)
}

func (s searchModel) IsActive() bool {
	return s.active
}
