package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func RenderBottomBar(a *App) string {
	left := strings.Join(actionHints(a), " ")

	mode := "new"
	if !a.controller.ViewModel().IsNew() {
		mode = fmt.Sprintf("#%d", a.controller.ViewModel().RecordID())
	}
	right := fmt.Sprintf("%s %s", a.listTitle, mode)

	contentWidth := a.windowWidth
	padding := 1
	if contentWidth > 0 {
		contentWidth = contentWidth - padding*2
		if contentWidth < 0 {
			contentWidth = 0
		}
	}
	bar := layoutBar(left, right, contentWidth)

	style := lipgloss.NewStyle().Reverse(true).Padding(0, padding)
	return style.Render(bar)
}

func actionHints(a *App) []string {
	if len(a.failures) > 0 || a.confirmDelete || a.attachPick != nil {
		return []string{"[esc] close"}
	}
	hints := []string{"[tab] next"}
	if a.actions.Save {
		hints = append(hints, "[^s] save")
	}
	if a.actions.Submit {
		hints = append(hints, "[^b] submit")
	}
	if a.actions.Delete && !a.controller.ViewModel().IsNew() {
		hints = append(hints, "[^x] delete")
	}
	if a.actions.Print {
		hints = append(hints, "[^p] print")
	}
	if a.sectionVisible[SectionAttachments] && len(a.controller.ViewModel().AttachmentRefs()) > 0 {
		hints = append(hints, "[^a] attachments")
	}
	hints = append(hints, "[^f] people", "[esc] cancel")
	return hints
}

func layoutBar(left string, right string, width int) string {
	if width <= 0 {
		return left + " " + right
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	gap := width - leftWidth - rightWidth
	if gap < 1 {
		availableLeft := width - rightWidth - 1
		if availableLeft < 0 {
			return truncate(right, width)
		}
		left = truncate(left, availableLeft)
		leftWidth = lipgloss.Width(left)
		gap = width - leftWidth - rightWidth
		if gap < 1 {
			gap = 1
		}
	}
	bar := left + strings.Repeat(" ", gap) + right
	return truncate(bar, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
