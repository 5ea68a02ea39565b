package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeString(c Control, s string) {
	for _, r := range s {
		c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestInputControlCommitsOnBlur(t *testing.T) {
	ctl := NewInputControl("Title", false)
	committed := 0
	ctl.OnCommit(func() { committed++ })

	ctl.FocusPart(0)
	typeString(ctl, "hello")
	if got := ctl.Display(); got != "hello" {
		t.Fatalf("Display() = %q, want %q", got, "hello")
	}
	if committed != 0 {
		t.Fatalf("commit fired during typing: %d", committed)
	}

	ctl.Blur()
	if committed != 1 {
		t.Fatalf("commit count after blur = %d, want 1", committed)
	}

	// Blur without focus is a no-op.
	ctl.Blur()
	if committed != 1 {
		t.Fatalf("commit count after second blur = %d, want 1", committed)
	}
}

func TestInputControlReadOnlyIgnoresInput(t *testing.T) {
	ctl := NewInputControl("Serial", true)
	ctl.FocusPart(0)
	typeString(ctl, "edit")
	if got := ctl.Display(); got != "" {
		t.Fatalf("read-only control accepted input: %q", got)
	}
}

func TestDateTimeControlParts(t *testing.T) {
	ctl := NewDateTimeControl("Due", false)
	ctl.SetPart("date", "03/15/2024")
	ctl.SetPart("hour", "2")
	ctl.SetPart("minute", "30")
	ctl.SetPart("meridiem", "PM")

	if got := ctl.Part("date"); got != "03/15/2024" {
		t.Fatalf("Part(date) = %q", got)
	}
	if got := ctl.Part("meridiem"); got != "PM" {
		t.Fatalf("Part(meridiem) = %q", got)
	}
	if got := ctl.Part("unknown"); got != "" {
		t.Fatalf("Part(unknown) = %q, want empty", got)
	}
	if got := ctl.PartCount(); got != 4 {
		t.Fatalf("PartCount() = %d, want 4", got)
	}
}

func TestDateTimeControlCommitsOncePerBlur(t *testing.T) {
	ctl := NewDateTimeControl("Due", false)
	committed := 0
	ctl.OnCommit(func() { committed++ })

	ctl.FocusPart(0)
	ctl.Blur()
	if committed != 1 {
		t.Fatalf("commit count = %d, want 1", committed)
	}

	ctl.Blur()
	if committed != 1 {
		t.Fatalf("blur without focus fired commit: %d", committed)
	}
}

func TestListItemsControlStagedAdd(t *testing.T) {
	ctl := NewListItemsControl("Tags", false)
	var added int
	ctl.OnAdd(func() {
		added++
		ctl.SetItems(append(ctl.Items(), ctl.Display()))
		ctl.input.SetValue("")
	})
	commits := 0
	ctl.OnCommit(func() { commits++ })

	ctl.FocusPart(0)
	typeString(ctl, "A")
	if commits == 0 {
		t.Fatal("staged-text change did not fire commit")
	}

	ctl.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if added != 1 {
		t.Fatalf("add count = %d, want 1", added)
	}
	if got := ctl.Items(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("Items() = %v", got)
	}
}

func TestListItemsControlBackspaceRemovesLast(t *testing.T) {
	ctl := NewListItemsControl("Tags", false)
	ctl.SetItems([]string{"A", "B"})
	var removed []int
	ctl.OnRemove(func(i int) {
		removed = append(removed, i)
		items := ctl.Items()
		ctl.SetItems(append(items[:i:i], items[i+1:]...))
	})

	ctl.FocusPart(0)
	ctl.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if len(removed) != 1 || removed[0] != 1 {
		t.Fatalf("removed = %v, want [1]", removed)
	}
	if got := ctl.Items(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("Items() = %v", got)
	}

	// With staged text present, backspace edits the staging input.
	typeString(ctl, "xy")
	ctl.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := ctl.Display(); got != "x" {
		t.Fatalf("Display() = %q, want %q", got, "x")
	}
	if len(removed) != 1 {
		t.Fatalf("removed grew during staging edit: %v", removed)
	}
}

func TestListItemsControlItemsCopy(t *testing.T) {
	ctl := NewListItemsControl("Tags", false)
	ctl.SetItems([]string{"A"})
	items := ctl.Items()
	items[0] = "mutated"
	if got := ctl.Items()[0]; got != "A" {
		t.Fatalf("Items() shares backing array: %q", got)
	}
}
