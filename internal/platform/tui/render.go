package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/moves"
)

// Shared styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
	superArtStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))
	comboStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// moveStyle picks the highlight color for a move type.
func moveStyle(t moves.MoveType) lipgloss.Style {
	if t == moves.TypeSuperArt {
		return superArtStyle
	}
	return comboStyle
}

// RenderListing formats the moves overlay for a loadout.
func RenderListing(l moves.Listing, gamepad bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s - Moves", l.Character)))
	b.WriteString("\n")

	if l.Len() == 0 {
		b.WriteString(dimStyle.Render("No moves for this loadout."))
		return b.String()
	}

	width := 0
	for _, r := range append(append([]moves.Row(nil), l.SuperArts...), l.Combos...) {
		width = max(width, lipgloss.Width(r.Name))
	}

	section := func(title string, rows []moves.Row, style lipgloss.Style) {
		if len(rows) == 0 {
			return
		}
		b.WriteString("\n")
		b.WriteString(style.Render(title))
		b.WriteString("\n")
		for _, r := range rows {
			name := r.Name + strings.Repeat(" ", width-lipgloss.Width(r.Name))
			b.WriteString(fmt.Sprintf("  %s  %s\n", name, moves.FormatSequence(r.Sequence, gamepad)))
		}
	}
	section("Super Arts", l.SuperArts, superArtStyle)
	section("Combos", l.Combos, comboStyle)

	return strings.TrimRight(b.String(), "\n")
}

// renderHistory shows the recent inputs as glyphs, oldest first.
func renderHistory(events []core.InputEvent, gamepad bool) string {
	if len(events) == 0 {
		return dimStyle.Render("-")
	}
	glyphs := make([]string, 0, len(events))
	for _, ev := range events {
		if g := ev.Action.Glyph(gamepad); g != "" {
			glyphs = append(glyphs, g)
		}
	}
	return strings.Join(glyphs, " ")
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
