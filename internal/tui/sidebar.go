package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jayan110105/neura/internal/domain"
)

// noteSelectedMsg is sent when the user opens a note via Enter.
type noteSelectedMsg struct {
	note domain.Note
}

// sidebarModel lists the user's notes grouped by category.
type sidebarModel struct {
	notes   []domain.Note
	query   string
	loaded  bool
	cursor  int
	width   int
	height  int
	focused bool
}

func newSidebar() sidebarModel {
	return sidebarModel{}
}

// SetNotes replaces the listed notes. query is the filter they were
// loaded with.
func (s *sidebarModel) SetNotes(notes []domain.Note, query string) {
	s.notes = groupByCategory(notes)
	s.query = query
	s.loaded = true
	if s.cursor >= len(s.notes) {
		s.cursor = max(len(s.notes)-1, 0)
	}
}

func (s *sidebarModel) SetSize(w, h int) {
	s.width = w
	s.height = h
}

// Update handles key events for note navigation.
func (s sidebarModel) Update(msg tea.Msg) (sidebarModel, tea.Cmd) {
	if !s.focused || len(s.notes) == 0 {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			s.cursor--
			if s.cursor < 0 {
				s.cursor = len(s.notes) - 1
			}
		case key.Matches(msg, keys.Down):
			s.cursor++
			if s.cursor >= len(s.notes) {
				s.cursor = 0
			}
		case key.Matches(msg, keys.Enter):
			n := s.notes[s.cursor]
			return s, func() tea.Msg {
				return noteSelectedMsg{note: n}
			}
		}
	}

	return s, nil
}

func (s sidebarModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("neura notes"))
	b.WriteString("\n")
	if s.query != "" {
		b.WriteString(mutedTextStyle.Render("filter: " + truncate(s.query, max(s.width-8, 4))))
	}
	b.WriteString("\n")

	switch {
	case !s.loaded:
		b.WriteString(mutedTextStyle.Render("Loading notes..."))
		return b.String()
	case len(s.notes) == 0:
		b.WriteString(mutedTextStyle.Render("No notes"))
		return b.String()
	}

	lines, cursorLine := s.lines()
	// Keep the cursor on screen when the list is taller than the pane.
	room := max(s.height-2, 1)
	start := 0
	if cursorLine >= room {
		start = cursorLine - room + 1
	}
	end := min(start+room, len(lines))
	b.WriteString(strings.Join(lines[start:end], "\n"))

	return b.String()
}

// lines renders category headers and note rows, returning the index of the
// cursor row.
func (s sidebarModel) lines() ([]string, int) {
	counts := make(map[domain.Category]int)
	for _, n := range s.notes {
		counts[n.Category]++
	}

	var out []string
	cursorLine := 0
	var current domain.Category
	for i, n := range s.notes {
		if i == 0 || n.Category != current {
			current = n.Category
			if i > 0 {
				out = append(out, "")
			}
			out = append(out, mutedTextStyle.Render(fmt.Sprintf("%s (%d)", categoryName(current), counts[current])))
		}
		if i == s.cursor {
			cursorLine = len(out)
		}
		out = append(out, s.renderLine(n.Title, i))
	}
	return out, cursorLine
}

// renderLine renders a single note row with cursor highlighting.
func (s sidebarModel) renderLine(title string, idx int) string {
	width := max(s.width, 10)
	line := "  " + truncate(title, width-2)

	padded := lipgloss.NewStyle().Width(width).Render(line)
	if s.focused && idx == s.cursor {
		return selectedStyle.Render(padded)
	}
	return padded
}

// groupByCategory orders notes by category, keeping the incoming order
// within each category.
func groupByCategory(notes []domain.Note) []domain.Note {
	out := slices.Clone(notes)
	slices.SortStableFunc(out, func(a, b domain.Note) int {
		return categoryRank(a.Category) - categoryRank(b.Category)
	})
	return out
}

func categoryRank(c domain.Category) int {
	if i := slices.Index(domain.Categories, c); i >= 0 {
		return i
	}
	return len(domain.Categories)
}

func categoryName(c domain.Category) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
