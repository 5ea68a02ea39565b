package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/fieldglass/listform/internal/reactive"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type recordingSink struct{ messages []string }

func (s *recordingSink) LogError(msg string, kv ...any) { s.messages = append(s.messages, msg) }

func TestPropertyKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Title", want: "title"},
		{in: "DueDate", want: "dueDate"},
		{in: "Assigned_x0020_To", want: "assignedX0020To"},
		{in: "_Status", want: "status"},
		{in: "Project Phase", want: "projectPhase"},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := PropertyKey(tc.in); got != tc.want {
			t.Fatalf("PropertyKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTagForTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want reactive.TypeTag
	}{
		{in: "Text", want: reactive.TagText},
		{in: "Note", want: reactive.TagNote},
		{in: "Choice", want: reactive.TagChoice},
		{in: "MultiChoice", want: reactive.TagMultiChoice},
		{in: "multichoice", want: reactive.TagMultiChoice},
		{in: "Boolean", want: reactive.TagBoolean},
		{in: "Number", want: reactive.TagNumber},
		{in: "Counter", want: reactive.TagNumber},
		{in: "Currency", want: reactive.TagCurrency},
		{in: "DateTime", want: reactive.TagDateTime},
		{in: "User", want: reactive.TagUser},
		{in: "UserMulti", want: reactive.TagUserMulti},
		{in: "SomethingNew", want: reactive.TagText},
	}
	for _, tc := range tests {
		if got := TagForTypeName(tc.in); got != tc.want {
			t.Fatalf("TagForTypeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildProducesFieldsWithInferredDefaults(t *testing.T) {
	info := ListInfo{
		Title: "Tasks",
		Fields: []Entry{
			{WireName: "Title", DisplayName: "Title", TypeName: "Text", Required: true},
			{WireName: "Due", DisplayName: "Due", TypeName: "DateTime"},
			{WireName: "Tags", DisplayName: "Tags", TypeName: "MultiChoice", Choices: []string{"A", "B"}},
		},
	}
	reg := Build(info, fixedClock{}, nil)

	if reg.Bag.Len() != 3 {
		t.Fatalf("built %d fields, want 3", reg.Bag.Len())
	}
	if !reflect.DeepEqual(reg.FieldNames, []string{"due", "tags", "title"}) {
		t.Fatalf("FieldNames = %v, want sorted keys", reg.FieldNames)
	}

	title, _ := reg.Bag.Get("title")
	if title.Value() != nil {
		t.Fatalf("Title default = %v, want nil (not empty string)", title.Value())
	}
	if !title.Meta().Required {
		t.Fatalf("Title not marked required")
	}

	due, _ := reg.Bag.Get("due")
	if due.Value() != nil {
		t.Fatalf("Due default = %v, want nil", due.Value())
	}
	if due.Meta().Tag != reactive.TagDateTime {
		t.Fatalf("Due tag = %q", due.Meta().Tag)
	}

	tags, _ := reg.Bag.Get("tags")
	items, ok := tags.Value().([]string)
	if !ok || items == nil || len(items) != 0 {
		t.Fatalf("Tags default = %#v, want empty sequence (not nil)", tags.Value())
	}
	if !tags.Meta().IsMultiValue {
		t.Fatalf("Tags not marked multi-value")
	}
	if !reflect.DeepEqual(tags.Meta().Choices, []string{"A", "B"}) {
		t.Fatalf("Tags choices = %v", tags.Meta().Choices)
	}
}

func TestBuildExclusionRules(t *testing.T) {
	info := ListInfo{
		Fields: []Entry{
			{WireName: "Title", DisplayName: "Title", TypeName: "Text"},
			{WireName: "NoLabel", DisplayName: "", TypeName: "Text"},
			{WireName: "Secret", DisplayName: "Secret", TypeName: "Text", Hidden: true},
			{WireName: "ContentType", DisplayName: "Content Type", TypeName: "Text"},
			{WireName: "GUID", DisplayName: "GUID", TypeName: "Text"},
		},
	}
	reg := Build(info, fixedClock{}, nil)

	if reg.Bag.Len() != 1 {
		t.Fatalf("built %d fields, want only Title", reg.Bag.Len())
	}
	if len(reg.Skipped) != 4 {
		t.Fatalf("Skipped = %v, want 4 entries", reg.Skipped)
	}
}

func TestBuildFirstRegisteredWinsOnCollision(t *testing.T) {
	sink := &recordingSink{}
	info := ListInfo{
		Fields: []Entry{
			{WireName: "Due_Date", DisplayName: "Due Date", TypeName: "Text"},
			{WireName: "Due Date", DisplayName: "Duplicate", TypeName: "Number"},
		},
	}
	reg := Build(info, fixedClock{}, sink)

	if reg.Bag.Len() != 1 {
		t.Fatalf("built %d fields, want 1", reg.Bag.Len())
	}
	f, _ := reg.Bag.Get("dueDate")
	if f.Meta().WireName != "Due_Date" {
		t.Fatalf("winner = %q, want first registered", f.Meta().WireName)
	}
	if len(sink.messages) != 1 {
		t.Fatalf("collision not reported to sink")
	}
}

func TestDefaultValueParsing(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	clock := fixedClock{t: now}
	tests := []struct {
		name  string
		entry Entry
		want  any
	}{
		{name: "bool zero", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Boolean", DefaultValue: "0"}, want: false},
		{name: "bool one", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Boolean", DefaultValue: "1"}, want: true},
		{name: "bool empty", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Boolean"}, want: nil},
		{name: "number", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Number", DefaultValue: "12.5"}, want: 12.5},
		{name: "number garbage", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Number", DefaultValue: "x"}, want: nil},
		{name: "currency", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Currency", DefaultValue: "100"}, want: float64(100)},
		{name: "datetime today", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "DateTime", DefaultValue: "[today]"}, want: now},
		{name: "text literal", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Text", DefaultValue: "hello"}, want: "hello"},
		{name: "text empty", entry: Entry{DisplayName: "F", WireName: "F", TypeName: "Text"}, want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := Build(ListInfo{Fields: []Entry{tc.entry}}, clock, nil)
			f, ok := reg.Bag.Get("f")
			if !ok {
				t.Fatalf("field not built")
			}
			if !reflect.DeepEqual(f.Value(), tc.want) {
				t.Fatalf("default = %#v, want %#v", f.Value(), tc.want)
			}
		})
	}
}

func TestMultiPrefixedTypeIsMultiValue(t *testing.T) {
	reg := Build(ListInfo{Fields: []Entry{
		{WireName: "Owners", DisplayName: "Owners", TypeName: "UserMulti"},
		{WireName: "Labels", DisplayName: "Labels", TypeName: "MultiChoice"},
	}}, fixedClock{}, nil)

	for _, key := range []string{"owners", "labels"} {
		f, ok := reg.Bag.Get(key)
		if !ok {
			t.Fatalf("field %q not built", key)
		}
		if !f.Meta().IsMultiValue {
			t.Fatalf("field %q not multi-valued", key)
		}
		if items, ok := f.Value().([]string); !ok || len(items) != 0 {
			t.Fatalf("field %q initial = %#v, want empty sequence", key, f.Value())
		}
	}
}
