package tui

import (
	"context"
	"testing"

	"github.com/fieldglass/listform/internal/form"
	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/schema"
)

func buildTestRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	info := schema.ListInfo{
		Title: "Tasks",
		Fields: []schema.Entry{
			{WireName: "Title", DisplayName: "Title", TypeName: "Text", Required: true},
			{WireName: "Notes", DisplayName: "Notes", TypeName: "Note"},
			{WireName: "Due", DisplayName: "Due", TypeName: "DateTime"},
			{WireName: "Tags", DisplayName: "Tags", TypeName: "MultiChoice", Choices: []string{"A", "B"}},
			{WireName: "Owner", DisplayName: "Owner", TypeName: "User"},
			{WireName: "Serial", DisplayName: "Serial", TypeName: "Text", ReadOnly: true},
		},
	}
	return schema.Build(info, ports.SystemClock{}, nil)
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(context.Background(), &form.Context{}, nil, nil)
}

func TestBuildFormControlShapes(t *testing.T) {
	app := newTestApp(t)
	reg := buildTestRegistry(t)
	if err := app.BuildForm(reg, form.Actions{Save: true, Cancel: true}); err != nil {
		t.Fatalf("BuildForm: %v", err)
	}

	cases := []struct {
		key  string
		want string
	}{
		{"title", "*tui.InputControl"},
		{"notes", "*tui.NoteControl"},
		{"due", "*tui.DateTimeControl"},
		{"tags", "*tui.ListItemsControl"},
		{"owner", "*tui.InputControl"},
		{"serial", "*tui.InputControl"},
	}
	for _, tc := range cases {
		ctl, ok := app.Control(tc.key)
		if !ok {
			t.Fatalf("Control(%q) missing", tc.key)
		}
		if got := typeName(ctl); got != tc.want {
			t.Errorf("Control(%q) = %s, want %s", tc.key, got, tc.want)
		}
	}

	if _, ok := app.Control("ghost"); ok {
		t.Error("Control(ghost) unexpectedly present")
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *InputControl:
		return "*tui.InputControl"
	case *NoteControl:
		return "*tui.NoteControl"
	case *DateTimeControl:
		return "*tui.DateTimeControl"
	case *ListItemsControl:
		return "*tui.ListItemsControl"
	default:
		return "unknown"
	}
}

func TestFinalizeSkipsReadOnlyControls(t *testing.T) {
	app := newTestApp(t)
	reg := buildTestRegistry(t)
	if err := app.BuildForm(reg, form.Actions{}); err != nil {
		t.Fatalf("BuildForm: %v", err)
	}
	app.Finalize()

	for _, stop := range app.focus {
		if app.rows[stop.row].control.ReadOnly() {
			t.Fatalf("focus order includes read-only row %q", app.rows[stop.row].key)
		}
	}

	// The datetime row contributes four focus stops.
	dueStops := 0
	for _, stop := range app.focus {
		if app.rows[stop.row].key == "due" {
			dueStops++
		}
	}
	if dueStops != 4 {
		t.Fatalf("datetime focus stops = %d, want 4", dueStops)
	}
}

func TestInvalidControlsReportLabels(t *testing.T) {
	app := newTestApp(t)
	reg := buildTestRegistry(t)
	if err := app.BuildForm(reg, form.Actions{}); err != nil {
		t.Fatalf("BuildForm: %v", err)
	}

	if got := app.InvalidControls(); len(got) != 0 {
		t.Fatalf("InvalidControls() = %v, want none", got)
	}

	ctl, _ := app.Control("due")
	ctl.SetInvalid(true)
	got := app.InvalidControls()
	if len(got) != 1 || got[0] != "Due" {
		t.Fatalf("InvalidControls() = %v, want [Due]", got)
	}
}

func TestSectionVisibility(t *testing.T) {
	app := newTestApp(t)

	sections := app.Sections()
	if len(sections) != 3 {
		t.Fatalf("Sections() = %d, want 3 defaults", len(sections))
	}
	for _, s := range sections {
		if s.Rule != form.RuleEditOnly {
			t.Errorf("section %q rule = %q, want edit-only", s.ID, s.Rule)
		}
	}

	app.SetSectionVisible(SectionHistory, false)
	if app.sectionVisible[SectionHistory] {
		t.Error("history section still visible after SetSectionVisible(false)")
	}
}

func TestSetStatus(t *testing.T) {
	app := newTestApp(t)
	app.SetStatus("loading schema")
	if app.status != "loading schema" {
		t.Fatalf("status = %q", app.status)
	}
}
