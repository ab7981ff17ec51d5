package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Path    lipgloss.Style

	priorities map[rule.Priority]lipgloss.Style
}

// NewStyles builds the style set on lr, so color output follows the
// renderer's profile.
func NewStyles(lr *lipgloss.Renderer) Styles {
	return Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("9")),
		Path:    lr.NewStyle().Underline(true),

		priorities: map[rule.Priority]lipgloss.Style{
			1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			2: lr.NewStyle().Foreground(lipgloss.Color("9")),
			3: lr.NewStyle().Foreground(lipgloss.Color("11")),
			4: lr.NewStyle().Foreground(lipgloss.Color("14")),
			5: lr.NewStyle().Foreground(lipgloss.Color("8")),
		},
	}
}

// Priority returns the style for priority p.
func (s Styles) Priority(p rule.Priority) lipgloss.Style {
	if style, ok := s.priorities[p]; ok {
		return style
	}
	return s.Muted
}

// Title title-cases s ("too many methods" -> "Too Many Methods").
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// FormatHeader renders a markdown heading.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown list item with a bold key.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// EscapeMarkdownCell escapes pipes so s fits in a markdown table cell.
func EscapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
