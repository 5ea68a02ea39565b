package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fieldglass/listform/internal/binding"
)

// writeFile is swappable so tests can capture print output.
var writeFile = os.WriteFile

// printForm writes a plain-text rendering of the current form to a
// file in the working directory and reports the path in the status
// line.
func (a *App) printForm() {
	if !a.actions.Print || !a.ready {
		return
	}
	name := a.printFileName()
	if err := writeFile(name, []byte(a.renderPrintable()), 0o644); err != nil {
		a.status = fmt.Sprintf("Print failed: %v", err)
		return
	}
	a.status = fmt.Sprintf("Printed to %s", name)
}

func (a *App) printFileName() string {
	title := strings.ReplaceAll(a.listTitle, " ", "-")
	vm := a.controller.ViewModel()
	if vm.IsNew() {
		return fmt.Sprintf("%s-new-record.txt", title)
	}
	return fmt.Sprintf("%s-record-%d.txt", title, vm.RecordID())
}

// renderPrintable is the styling-free rendering used for print: the
// header, every field with its display value, and the visible
// supplementary sections.
func (a *App) renderPrintable() string {
	header := a.headerLine()
	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(header))) + "\n\n")

	for _, row := range a.rows {
		value := row.control.Display()
		if list, ok := row.control.(*ListItemsControl); ok {
			value = strings.Join(list.Items(), ", ")
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", row.control.Label(), value))
	}

	vm := a.controller.ViewModel()
	if a.sectionVisible[SectionAudit] && !vm.CreatedAt().IsZero() {
		createdBy, _ := vm.CreatedBy.Value().(string)
		b.WriteString(fmt.Sprintf("\nCreated %s by %s\n",
			binding.FormatDateTimeDisplay(vm.CreatedAt()), binding.PersonDisplay(createdBy)))
	}
	if refs := vm.AttachmentRefs(); a.sectionVisible[SectionAttachments] && len(refs) > 0 {
		b.WriteString("\nAttachments:\n")
		for _, ref := range refs {
			b.WriteString("  " + ref.FileName + "\n")
		}
	}
	if items := vm.History(); a.sectionVisible[SectionHistory] && len(items) > 0 {
		b.WriteString("\nHistory:\n")
		for _, item := range items {
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				binding.FormatDateTimeDisplay(item.OccurredAt), item.Description))
		}
	}
	return b.String()
}
