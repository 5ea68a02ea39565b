package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fieldglass/listform/internal/binding"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	invalidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func (a *App) View() string {
	if a.fatal {
		return invalidStyle.Render(a.status) + "\n\nPress any key to exit.\n"
	}
	if !a.ready {
		loading := "Loading form..."
		if a.status != "" {
			loading = a.status
		}
		return loading + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.headerLine()) + "\n\n")

	for _, row := range a.rows {
		b.WriteString(a.renderRow(row))
	}

	if a.sectionVisible[SectionAudit] {
		b.WriteString(a.renderAudit())
	}
	if a.sectionVisible[SectionAttachments] {
		b.WriteString(a.renderAttachments())
	}
	if a.sectionVisible[SectionHistory] {
		b.WriteString(a.renderHistory())
	}

	if a.search != nil {
		b.WriteString(a.renderSearch())
	}
	if a.attachPick != nil {
		b.WriteString(a.renderAttachmentPick())
	}
	if len(a.failures) > 0 {
		b.WriteString(a.renderValidationDialog())
	}
	if a.confirmDelete {
		b.WriteString(a.renderConfirmDelete())
	}

	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status) + "\n")
	}
	b.WriteString("\n" + RenderBottomBar(a))
	return b.String()
}

func (a *App) headerLine() string {
	vm := a.controller.ViewModel()
	if vm.IsNew() {
		return fmt.Sprintf("%s — New Record", a.listTitle)
	}
	return fmt.Sprintf("%s — Record #%d", a.listTitle, vm.RecordID())
}

func (a *App) renderRow(row *formRow) string {
	label := row.control.Label()
	if row.meta.Required {
		label += " *"
	}
	styled := labelStyle.Render(label + ":")
	if row.control.Invalid() {
		styled = invalidStyle.Render(label + ": ✗")
	}

	value := row.control.View(a.windowWidth)
	if styler, ok := row.control.(*InputControl); ok && styler.Negative() {
		value = negativeStyle.Render(value)
	}
	if row.control.ReadOnly() {
		display := row.control.Display()
		if list, ok := row.control.(*ListItemsControl); ok {
			display = strings.Join(list.Items(), ", ")
		}
		value = labelStyle.Render(display)
	}
	return styled + "\n" + value + "\n\n"
}

func (a *App) renderAudit() string {
	vm := a.controller.ViewModel()
	createdBy, _ := vm.CreatedBy.Value().(string)
	modifiedBy, _ := vm.ModifiedBy.Value().(string)
	created := ""
	if t := vm.CreatedAt(); !t.IsZero() {
		created = binding.FormatDateTimeDisplay(t)
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("── Record info ──") + "\n")
	b.WriteString(fmt.Sprintf("Created %s by %s\n", created, binding.PersonDisplay(createdBy)))
	if modified, ok := vm.Modified.Value().(time.Time); ok && !modified.IsZero() {
		b.WriteString(fmt.Sprintf("Last modified %s by %s\n",
			binding.FormatDateTimeDisplay(modified), binding.PersonDisplay(modifiedBy)))
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderAttachments() string {
	refs := a.controller.ViewModel().AttachmentRefs()
	if len(refs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("── Attachments ──") + "\n")
	for _, ref := range refs {
		b.WriteString("  📎 " + ref.FileName + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderHistory() string {
	items := a.controller.ViewModel().History()
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("── History ──") + "\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			binding.FormatDateTimeDisplay(item.OccurredAt), item.Description))
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderSearch() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("── People ──") + "\n")
	for i, c := range a.search.candidates {
		marker := "  "
		if i == a.search.index {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s (%s)\n", marker, c.DisplayName, c.AccountName))
	}
	b.WriteString(labelStyle.Render("enter: pick • esc: close") + "\n\n")
	return b.String()
}

func (a *App) renderAttachmentPick() string {
	refs := a.controller.ViewModel().AttachmentRefs()
	if len(refs) == 0 {
		return ""
	}
	pick := a.attachPick
	selected := pick.index
	if selected >= len(refs) {
		selected = len(refs) - 1
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("── Remove attachment ──") + "\n")
	for i, ref := range refs {
		marker := "  "
		if i == selected {
			marker = "> "
		}
		b.WriteString(marker + ref.FileName + "\n")
	}
	if pick.confirm {
		prompt := fmt.Sprintf("Delete %s? Y: delete • N: keep", refs[selected].FileName)
		b.WriteString(invalidStyle.Render(prompt) + "\n\n")
	} else {
		b.WriteString(labelStyle.Render("enter: remove • esc: close") + "\n\n")
	}
	return b.String()
}

func (a *App) renderValidationDialog() string {
	lines := []string{invalidStyle.Render("⚠ Please fix the following:"), ""}
	for _, failure := range a.failures {
		lines = append(lines, "  • "+failure)
	}
	lines = append(lines, "", labelStyle.Render("esc: close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2)
	return "\n" + box.Render(strings.Join(lines, "\n")) + "\n"
}

func (a *App) renderConfirmDelete() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("220")).
		Padding(1, 2)
	body := fmt.Sprintf("Delete record #%d? This cannot be undone.\n\nY: delete • N: keep",
		a.controller.ViewModel().RecordID())
	return "\n" + box.Render(body) + "\n"
}
