package binding

import (
	"testing"
	"time"

	"github.com/fieldglass/listform/internal/reactive"
)

type fakeControl struct {
	display  string
	readOnly bool
	invalid  bool
	negative bool
	commit   func()
	parts    map[string]string
}

func (c *fakeControl) Display() string         { return c.display }
func (c *fakeControl) SetDisplay(v string)     { c.display = v }
func (c *fakeControl) ReadOnly() bool          { return c.readOnly }
func (c *fakeControl) OnCommit(fn func())      { c.commit = fn }
func (c *fakeControl) SetInvalid(invalid bool) { c.invalid = invalid }
func (c *fakeControl) SetNegative(neg bool)    { c.negative = neg }

func (c *fakeControl) Part(name string) string { return c.parts[name] }
func (c *fakeControl) SetPart(name, v string) {
	if c.parts == nil {
		c.parts = map[string]string{}
	}
	c.parts[name] = v
}

func (c *fakeControl) type_(t *testing.T, display string) {
	t.Helper()
	if c.commit == nil {
		t.Fatalf("no commit hook attached")
	}
	c.display = display
	c.commit()
}

type fakeListControl struct {
	fakeControl
	items      []string
	add        func()
	remove     func(int)
	addEnabled bool
}

func (c *fakeListControl) Items() []string         { return c.items }
func (c *fakeListControl) SetItems(items []string) { c.items = items }
func (c *fakeListControl) OnAdd(fn func())         { c.add = fn }
func (c *fakeListControl) OnRemove(fn func(int))   { c.remove = fn }
func (c *fakeListControl) SetAddEnabled(on bool)   { c.addEnabled = on }

func newField(tag reactive.TypeTag, initial any) *reactive.Field {
	return reactive.New(reactive.Meta{FieldKey: "f", WireName: "F", Tag: tag}, initial)
}

func TestTextBindingCommitAndRefresh(t *testing.T) {
	ctl := &fakeControl{}
	f := newField(reactive.TagText, nil)
	if err := (Text{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	ctl.type_(t, "hello")
	if f.Value() != "hello" {
		t.Fatalf("canonical = %v, want hello", f.Value())
	}

	// Programmatic write reflects back into the control.
	f.Set("from server")
	if ctl.display != "from server" {
		t.Fatalf("display = %q after programmatic write", ctl.display)
	}

	ctl.type_(t, "")
	if f.Value() != nil {
		t.Fatalf("empty commit should clear to nil, got %v", f.Value())
	}
}

func TestMountSkipsReadOnlyControls(t *testing.T) {
	ctl := &fakeControl{readOnly: true}
	f := newField(reactive.TagText, "initial")
	if err := (Text{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}
	if ctl.commit != nil {
		t.Fatalf("commit hook attached to read-only control")
	}
	if ctl.display != "" {
		t.Fatalf("read-only control mutated on mount: %q", ctl.display)
	}
}

func TestNumberBinding(t *testing.T) {
	ctl := &fakeControl{}
	f := newField(reactive.TagNumber, nil)
	if err := (Number{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	ctl.type_(t, "1,250 units")
	if f.Value() != float64(1250) {
		t.Fatalf("canonical = %v, want 1250", f.Value())
	}
	if ctl.display != "1250" {
		t.Fatalf("display = %q, want normalized integer", ctl.display)
	}

	ctl.type_(t, "n/a")
	if f.Value() != nil {
		t.Fatalf("unparseable commit should clear, got %v", f.Value())
	}
}

func TestMoneyBindingFlagsNegative(t *testing.T) {
	ctl := &fakeControl{}
	f := newField(reactive.TagCurrency, nil)
	if err := (Money{Symbol: "$", Precision: 2}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	ctl.type_(t, "($1,234.50)")
	if f.Value() != float64(-1234.5) {
		t.Fatalf("canonical = %v, want -1234.5", f.Value())
	}
	if ctl.display != "-$1,234.50" {
		t.Fatalf("display = %q", ctl.display)
	}
	if !ctl.negative {
		t.Fatalf("negative styling flag not set")
	}

	ctl.type_(t, "20")
	if ctl.negative {
		t.Fatalf("negative styling flag not cleared")
	}
}

func TestDateBindingInvalidInputKeepsCanonical(t *testing.T) {
	ctl := &fakeControl{}
	f := newField(reactive.TagDateTime, nil)
	if err := (Date{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	ctl.type_(t, "03/15/2024")
	first := f.Value()
	if first == nil {
		t.Fatalf("valid date did not commit")
	}

	ctl.type_(t, "not a date")
	if !ctl.invalid {
		t.Fatalf("invalid flag not set")
	}
	if f.Value() != first {
		t.Fatalf("invalid input overwrote canonical value")
	}
}

func TestDateTimeBindingRoundTrip(t *testing.T) {
	ctl := &fakeControl{parts: map[string]string{}}
	f := newField(reactive.TagDateTime, nil)
	if err := (DateTime{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	ctl.SetPart("date", "03/15/2024")
	ctl.SetPart("hour", "2")
	ctl.SetPart("minute", "30")
	ctl.SetPart("meridiem", "PM")
	ctl.commit()

	canonical, ok := f.Value().(time.Time)
	if !ok {
		t.Fatalf("canonical = %v, want time.Time", f.Value())
	}
	if canonical.UTC().Hour() != 14 || canonical.UTC().Minute() != 30 {
		t.Fatalf("canonical UTC fields = %v, want 14:30", canonical.UTC())
	}

	// Refresh from the canonical value repopulates all sub-controls.
	f.Set(canonical)
	if ctl.Part("date") != "03/15/2024" || ctl.Part("hour") != "2" ||
		ctl.Part("minute") != "30" || ctl.Part("meridiem") != "PM" {
		t.Fatalf("sub-controls after refresh = %v", ctl.parts)
	}

	// Clearing the date part clears everything together.
	ctl.SetPart("date", "")
	ctl.commit()
	if f.Value() != nil {
		t.Fatalf("reset did not clear canonical value")
	}
}

func TestPersonBindingValidation(t *testing.T) {
	ctl := &fakeControl{}
	f := newField(reactive.TagUser, nil)
	if err := (Person{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	ctl.type_(t, "somebody")
	if !ctl.invalid {
		t.Fatalf("unencoded person not flagged invalid")
	}
	if f.Value() != nil {
		t.Fatalf("invalid person leaked into canonical value: %v", f.Value())
	}

	ctl.type_(t, "7;#DOMAIN\\asmith")
	if ctl.invalid {
		t.Fatalf("valid person still flagged invalid")
	}
	if f.Value() != "7;#DOMAIN\\asmith" {
		t.Fatalf("canonical = %v", f.Value())
	}
	if ctl.display != "DOMAIN\\asmith" {
		t.Fatalf("display = %q, want name portion", ctl.display)
	}
}

func TestPersonMultiStagedAddRemove(t *testing.T) {
	ctl := &fakeListControl{}
	f := newField(reactive.TagUserMulti, []string{})
	if err := (PersonMulti{}).Mount(ctl, f); err != nil {
		t.Fatal(err)
	}

	notifications := 0
	f.Subscribe(func(any) { notifications++ })

	// Add stays disabled while staging is invalid.
	ctl.display = "partial name"
	ctl.commit()
	if ctl.addEnabled {
		t.Fatalf("add enabled for invalid staging value")
	}
	ctl.add()
	if len(f.Items()) != 0 {
		t.Fatalf("invalid staging value was added")
	}

	ctl.display = "3;#DOMAIN\\jdoe"
	ctl.commit()
	if !ctl.addEnabled {
		t.Fatalf("add disabled for valid staging value")
	}
	ctl.add()

	ctl.display = "9;#DOMAIN\\mlee"
	ctl.commit()
	ctl.add()

	if got := f.Items(); len(got) != 2 {
		t.Fatalf("items = %v, want 2 entries", got)
	}
	if notifications != 2 {
		t.Fatalf("add fired %d notifications, want 2", notifications)
	}
	if ctl.display != "" {
		t.Fatalf("staging input not cleared after add")
	}

	// Removal is a structural mutation and must notify.
	ctl.remove(0)
	if got := f.Items(); len(got) != 1 || got[0] != "9;#DOMAIN\\mlee" {
		t.Fatalf("items after remove = %v", got)
	}
	if notifications != 3 {
		t.Fatalf("remove did not notify (saw %d)", notifications)
	}
	// List rows render the display name portion.
	if len(ctl.items) != 1 || ctl.items[0] != "DOMAIN\\mlee" {
		t.Fatalf("rendered rows = %v", ctl.items)
	}
}

func TestForMetaSelection(t *testing.T) {
	tests := []struct {
		name string
		meta reactive.Meta
		want string
	}{
		{name: "text", meta: reactive.Meta{Tag: reactive.TagText}, want: "text"},
		{name: "note", meta: reactive.Meta{Tag: reactive.TagNote}, want: "note"},
		{name: "number", meta: reactive.Meta{Tag: reactive.TagNumber}, want: "number"},
		{name: "currency", meta: reactive.Meta{Tag: reactive.TagCurrency}, want: "money"},
		{name: "currency decimal format", meta: reactive.Meta{Tag: reactive.TagCurrency, Format: "decimal"}, want: "decimal"},
		{name: "datetime", meta: reactive.Meta{Tag: reactive.TagDateTime}, want: "datetime"},
		{name: "date only", meta: reactive.Meta{Tag: reactive.TagDateTime, Format: "DateOnly"}, want: "date"},
		{name: "bool", meta: reactive.Meta{Tag: reactive.TagBoolean}, want: "bool"},
		{name: "choice", meta: reactive.Meta{Tag: reactive.TagChoice}, want: "choice"},
		{name: "multichoice", meta: reactive.Meta{Tag: reactive.TagMultiChoice}, want: "multichoice"},
		{name: "user", meta: reactive.Meta{Tag: reactive.TagUser}, want: "person"},
		{name: "usermulti", meta: reactive.Meta{Tag: reactive.TagUserMulti}, want: "personmulti"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ForMeta(tc.meta).Name(); got != tc.want {
				t.Fatalf("ForMeta(%v) = %q, want %q", tc.meta.Tag, got, tc.want)
			}
		})
	}
}
