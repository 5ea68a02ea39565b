package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldglass/listform/internal/binding"
	"github.com/fieldglass/listform/internal/form"
	"github.com/fieldglass/listform/internal/reactive"
)

func (a *App) Init() tea.Cmd {
	return func() tea.Msg { return bootMsg{} }
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case bootMsg:
		// Initialization runs synchronously on the event loop; every
		// surface callback during the pipeline mutates this model.
		a.controller.Init(a.ctx)
		return a, nil

	case DispatchMsg:
		typed.Fn()
		return a, nil

	case closeMsg:
		return a, tea.Quit

	case tea.WindowSizeMsg:
		a.windowWidth = typed.Width
		a.windowHeight = typed.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(typed)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if a.fatal {
		return a, tea.Quit
	}

	if len(a.failures) > 0 {
		// Validation dialog: any dismissal key closes it.
		switch key {
		case "esc", "enter", " ":
			a.failures = nil
		}
		return a, nil
	}

	if a.confirmDelete {
		return a.handleConfirmDeleteKey(key)
	}

	if a.attachPick != nil {
		return a.handleAttachmentKey(key)
	}

	if a.search != nil {
		if handled, cmd := a.handleSearchKey(key); handled {
			return a, cmd
		}
	}

	switch key {
	case "esc":
		return a, tea.Quit
	case "tab", "down":
		a.moveFocus(1)
		return a, nil
	case "shift+tab", "up":
		a.moveFocus(-1)
		return a, nil
	case "ctrl+s":
		if a.actions.Save {
			return a, a.save(false)
		}
		return a, nil
	case "ctrl+b":
		if a.actions.Submit {
			return a, a.save(true)
		}
		return a, nil
	case "ctrl+x":
		if a.actions.Delete && !a.controller.ViewModel().IsNew() {
			a.confirmDelete = true
		}
		return a, nil
	case "ctrl+p":
		a.printForm()
		return a, nil
	case "ctrl+a":
		a.openAttachmentPick()
		return a, nil
	case "ctrl+f":
		a.openPersonSearch()
		return a, nil
	}

	row := a.focusedRow()
	if row == nil {
		return a, nil
	}
	cmd := row.control.Update(msg)
	return a, cmd
}

func (a *App) handleConfirmDeleteKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y", "enter":
		a.confirmDelete = false
		if err := a.controller.Delete(a.ctx); err != nil {
			a.status = fmt.Sprintf("Delete failed: %v", err)
			return a, nil
		}
		a.status = "Record deleted"
		return a, a.closeAfterDelay()
	case "n", "N", "esc":
		a.confirmDelete = false
	}
	return a, nil
}

// openAttachmentPick opens the attachment removal overlay when the
// attachments section is visible and the record has any.
func (a *App) openAttachmentPick() {
	if !a.sectionVisible[SectionAttachments] {
		return
	}
	if len(a.controller.ViewModel().AttachmentRefs()) == 0 {
		return
	}
	a.attachPick = &attachmentPick{}
}

func (a *App) handleAttachmentKey(key string) (tea.Model, tea.Cmd) {
	pick := a.attachPick
	refs := a.controller.ViewModel().AttachmentRefs()
	if len(refs) == 0 {
		a.attachPick = nil
		return a, nil
	}
	if pick.index >= len(refs) {
		pick.index = len(refs) - 1
	}

	if pick.confirm {
		switch key {
		case "y", "Y", "enter":
			ref := refs[pick.index]
			a.attachPick = nil
			if err := a.controller.DeleteAttachment(a.ctx, ref.MetadataID); err != nil {
				a.status = fmt.Sprintf("Attachment delete failed: %v", err)
				return a, nil
			}
			a.status = fmt.Sprintf("Removed %s", ref.FileName)
		case "n", "N", "esc":
			pick.confirm = false
		}
		return a, nil
	}

	switch key {
	case "esc":
		a.attachPick = nil
	case "down", "tab":
		pick.index = (pick.index + 1) % len(refs)
	case "up", "shift+tab":
		pick.index = (pick.index - 1 + len(refs)) % len(refs)
	case "enter", " ":
		pick.confirm = true
	}
	return a, nil
}

// save flushes the focused edit, runs the full save flow, and either
// opens the validation dialog or shows the confirmation status.
func (a *App) save(isSubmit bool) tea.Cmd {
	a.commitFocused()
	result, err := a.controller.Save(a.ctx, isSubmit)
	if err != nil {
		if errors.Is(err, form.ErrValidation) {
			a.failures = result.Failures
			return nil
		}
		a.status = fmt.Sprintf("Save failed: %v", err)
		return nil
	}
	verb := "Saved"
	if isSubmit {
		verb = "Submitted"
	}
	a.status = fmt.Sprintf("%s record #%d", verb, result.RecordID)
	return a.closeAfterDelay()
}

func (a *App) closeAfterDelay() tea.Cmd {
	if a.redirectDelay <= 0 {
		return nil
	}
	return tea.Tick(a.redirectDelay, func(time.Time) tea.Msg {
		return closeMsg{}
	})
}

// --- people search ---

// openPersonSearch looks up candidates for the focused person control
// using its staged text as the query.
func (a *App) openPersonSearch() {
	row := a.focusedRow()
	if row == nil || a.people == nil {
		return
	}
	if row.meta.Tag != reactive.TagUser && row.meta.Tag != reactive.TagUserMulti {
		return
	}
	term := strings.TrimSpace(row.control.Display())
	if term == "" {
		return
	}
	candidates, err := a.people.Search(a.ctx, term)
	if err != nil {
		if a.fctx != nil && a.fctx.Sink != nil {
			a.fctx.Sink.LogError("people search failed", "term", term, "error", err)
		}
		return
	}
	if len(candidates) == 0 {
		a.status = fmt.Sprintf("No matches for %q", term)
		return
	}
	a.search = &personSearch{candidates: candidates, forRow: a.focus[a.focusIndex].row}
}

func (a *App) handleSearchKey(key string) (bool, tea.Cmd) {
	s := a.search
	switch key {
	case "esc":
		a.search = nil
		return true, nil
	case "down", "tab":
		s.index = (s.index + 1) % len(s.candidates)
		return true, nil
	case "up", "shift+tab":
		s.index = (s.index - 1 + len(s.candidates)) % len(s.candidates)
		return true, nil
	case "enter":
		picked := s.candidates[s.index]
		row := a.rows[s.forRow]
		row.control.SetDisplay(binding.EncodePerson(picked.ID, picked.AccountName))
		if list, ok := row.control.(*ListItemsControl); ok {
			list.Accept()
		}
		a.search = nil
		return true, nil
	}
	return false, nil
}
