package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jayan110105/neura/internal/domain"
)

type closeReaderMsg struct{}

// readerModel displays one note in a scrollable pane over the chat.
type readerModel struct {
	note         *domain.Note
	content      string
	scrollOffset int
	maxScroll    int
	width        int
	height       int
	focused      bool
	visible      bool
}

func newReader() readerModel {
	return readerModel{}
}

func (r readerModel) Update(msg tea.Msg) (readerModel, tea.Cmd) {
	if !r.focused || !r.visible {
		return r, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if r.scrollOffset > 0 {
				r.scrollOffset--
			}

		case key.Matches(msg, keys.Down):
			if r.scrollOffset < r.maxScroll {
				r.scrollOffset++
			}

		case key.Matches(msg, keys.Back):
			return r, func() tea.Msg {
				return closeReaderMsg{}
			}
		}
	}

	return r, nil
}

func (r readerModel) View() string {
	if !r.visible || r.width == 0 || r.height == 0 {
		return ""
	}

	lines := strings.Split(r.content, "\n")

	visibleHeight := max(r.height, 1)
	start := min(r.scrollOffset, len(lines))
	end := min(start+visibleHeight, len(lines))

	return strings.Join(lines[start:end], "\n")
}

// Show displays a note in the reader pane.
func (r *readerModel) Show(n domain.Note) {
	r.note = &n
	r.visible = true
	r.scrollOffset = 0
	r.content = renderNote(n, r.width)
	r.recalcMaxScroll()
}

// Close hides the reader and clears its content.
func (r *readerModel) Close() {
	r.visible = false
	r.note = nil
	r.content = ""
	r.scrollOffset = 0
	r.maxScroll = 0
}

// SetSize updates the reader dimensions and recalculates scroll bounds.
func (r *readerModel) SetSize(w, h int) {
	r.width = w
	r.height = h
	if r.note != nil {
		r.content = renderNote(*r.note, r.width)
	}
	r.recalcMaxScroll()
}

func (r readerModel) IsVisible() bool {
	return r.visible
}

func (r *readerModel) recalcMaxScroll() {
	if r.content == "" {
		r.maxScroll = 0
		r.scrollOffset = 0
		return
	}

	lines := strings.Count(r.content, "\n") + 1
	r.maxScroll = max(lines-max(r.height, 1), 0)
	if r.scrollOffset > r.maxScroll {
		r.scrollOffset = r.maxScroll
	}
}

// renderNote formats a note with its metadata above the content.
func renderNote(n domain.Note, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(n.Title))
	b.WriteByte('\n')

	b.WriteString(mutedTextStyle.Render("Category: "))
	b.WriteString(categoryName(n.Category))
	b.WriteByte('\n')

	if len(n.Tags) > 0 {
		b.WriteString(mutedTextStyle.Render("Tags:     "))
		b.WriteString(strings.Join(n.Tags, ", "))
		b.WriteByte('\n')
	}

	b.WriteString(mutedTextStyle.Render("Created:  "))
	b.WriteString(n.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM"))
	b.WriteByte('\n')

	sepWidth := max(width, 20)
	b.WriteString(mutedTextStyle.Render(strings.Repeat("─", sepWidth)))
	b.WriteByte('\n')

	if n.Content == "" {
		b.WriteString(mutedTextStyle.Render("(no content)"))
		return b.String()
	}
	b.WriteByte('\n')
	b.WriteString(lipgloss.NewStyle().Width(sepWidth).Render(n.Content))

	return b.String()
}
