package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jayan110105/neura/internal/domain"
)

// toolPreviewLen caps how much of a tool result is shown inline.
const toolPreviewLen = 120

// chatModel shows the conversation in a scrollable pane. Activity lines
// report the progress of the turn in flight.
type chatModel struct {
	messages     []domain.Message
	activity     []string
	content      string
	scrollOffset int
	maxScroll    int
	width        int
	height       int
	focused      bool
}

func newChat() chatModel {
	return chatModel{}
}

func (c chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	if !c.focused {
		return c, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			c.ScrollUp(1)
		case key.Matches(msg, keys.Down):
			c.ScrollDown(1)
		}
	}
	return c, nil
}

func (c chatModel) View() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}

	lines := strings.Split(c.content, "\n")

	visibleHeight := max(c.height, 1)
	start := min(c.scrollOffset, len(lines))
	end := min(start+visibleHeight, len(lines))

	return strings.Join(lines[start:end], "\n")
}

// SetMessages replaces the conversation and clears the activity lines.
func (c *chatModel) SetMessages(msgs []domain.Message) {
	c.messages = msgs
	c.activity = nil
	c.refresh()
}

// AddActivity appends a progress line for the turn in flight.
func (c *chatModel) AddActivity(line string) {
	c.activity = append(c.activity, line)
	c.refresh()
}

// SetSize updates the pane dimensions and re-renders for the new width.
func (c *chatModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	c.refresh()
}

func (c *chatModel) ScrollUp(n int) {
	c.scrollOffset = max(c.scrollOffset-n, 0)
}

func (c *chatModel) ScrollDown(n int) {
	c.scrollOffset = min(c.scrollOffset+n, c.maxScroll)
}

// AtBottom reports whether the last line is visible.
func (c chatModel) AtBottom() bool {
	return c.scrollOffset >= c.maxScroll
}

// refresh re-renders the content. A pane scrolled to the bottom follows
// new output.
func (c *chatModel) refresh() {
	follow := c.AtBottom()
	c.content = renderTranscript(c.messages, c.activity, c.width)

	lines := strings.Count(c.content, "\n") + 1
	c.maxScroll = max(lines-max(c.height, 1), 0)
	if follow || c.scrollOffset > c.maxScroll {
		c.scrollOffset = c.maxScroll
	}
}

// renderTranscript formats the conversation for display. Tool messages are
// shown as one status line per result.
func renderTranscript(msgs []domain.Message, activity []string, width int) string {
	if len(msgs) == 0 && len(activity) == 0 {
		return mutedTextStyle.Render("Ask about your inbox or your notes. Try \"summarize my unread emails\".")
	}

	wrap := lipgloss.NewStyle().Width(max(width, 20))

	var blocks []string
	for _, m := range msgs {
		var b strings.Builder
		switch m.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteByte('\n')
			b.WriteString(wrap.Render(m.Content))

		case domain.RoleAssistant:
			for i, call := range m.ToolCalls {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(toolStyle.Render("→ " + call.Name))
			}
			if strings.TrimSpace(m.Content) != "" {
				if len(m.ToolCalls) > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(assistantStyle.Render("Neura"))
				b.WriteByte('\n')
				b.WriteString(wrap.Render(m.Content))
			}

		case domain.RoleTool:
			for i, r := range m.ToolResults {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(renderToolResult(r))
			}
		}
		if b.Len() > 0 {
			blocks = append(blocks, b.String())
		}
	}

	for _, line := range activity {
		blocks = append(blocks, mutedTextStyle.Render(line))
	}

	return strings.Join(blocks, "\n\n")
}

func renderToolResult(r domain.ToolResult) string {
	if r.IsError {
		return toolErrorStyle.Render(fmt.Sprintf("✗ %s: %s", r.Name, preview(r.Content)))
	}
	return toolOKStyle.Render("✓ " + r.Name)
}

// preview returns the first line of s, cut to toolPreviewLen runes.
func preview(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > toolPreviewLen {
		return string(r[:toolPreviewLen-1]) + "…"
	}
	return s
}
