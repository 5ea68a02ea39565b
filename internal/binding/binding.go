// Package binding holds the bidirectional field adapters that keep a
// form control's displayed value and a reactive field's canonical
// value in sync. Each adapter owns its own parse/format rules; the
// control itself stays a dumb string surface.
package binding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fieldglass/listform/internal/reactive"
)

// Control is the contract a presentation-surface control satisfies.
// Display carries the typed/rendered string; OnCommit fires when the
// user finishes editing (the blur/change moment).
type Control interface {
	Display() string
	SetDisplay(string)
	ReadOnly() bool
	OnCommit(func())
	SetInvalid(bool)
}

// PartedControl exposes named sub-controls. The datetime adapter uses
// parts "date", "hour", "minute", "meridiem"; committing with an
// empty date part clears the whole value (the reset control clears
// all sub-controls together).
type PartedControl interface {
	Control
	Part(name string) string
	SetPart(name, value string)
}

// ListControl is a staged multi-value control: Display is the staging
// input, Items the committed sequence. OnAdd fires when the user
// accepts the staging value, OnRemove with the index of a removed row.
type ListControl interface {
	Control
	Items() []string
	SetItems([]string)
	OnAdd(func())
	OnRemove(func(index int))
	SetAddEnabled(bool)
}

// NegativeStyler is implemented by controls that render negative
// amounts distinctly.
type NegativeStyler interface {
	SetNegative(bool)
}

// Binding converts between a field's canonical value and a control's
// display. Mount wires commit events and performs the initial render;
// it must no-op entirely for read-only controls, attaching nothing.
// Refresh re-renders from the canonical value and runs on every field
// write, whichever writer caused it.
type Binding interface {
	Name() string
	Mount(ctl Control, f *reactive.Field) error
	Refresh(ctl Control, f *reactive.Field)
}

// ForMeta selects the adapter for a discovered field.
func ForMeta(meta reactive.Meta) Binding {
	switch meta.Tag {
	case reactive.TagNote:
		return Text{Multiline: true}
	case reactive.TagNumber:
		return Number{}
	case reactive.TagCurrency:
		if meta.Format == "decimal" {
			return Decimal{Precision: 2}
		}
		return Money{Symbol: "$", Precision: 2}
	case reactive.TagDateTime:
		if meta.Format == "DateOnly" {
			return Date{}
		}
		return DateTime{}
	case reactive.TagBoolean:
		return Bool{}
	case reactive.TagChoice:
		return Choice{Options: meta.Choices, FillIn: meta.FillIn}
	case reactive.TagMultiChoice:
		return MultiChoice{Options: meta.Choices, FillIn: meta.FillIn}
	case reactive.TagUser:
		return Person{}
	case reactive.TagUserMulti:
		return PersonMulti{}
	default:
		return Text{}
	}
}

// mount wires the standard lifecycle shared by the scalar adapters:
// skip read-only controls wholesale, subscribe refresh-on-write,
// register the commit hook, then render once.
func mount(b Binding, ctl Control, f *reactive.Field, commit func()) error {
	if ctl == nil || f == nil {
		return fmt.Errorf("binding %s: mount requires a control and a field", b.Name())
	}
	if ctl.ReadOnly() {
		return nil
	}
	f.Subscribe(func(any) { b.Refresh(ctl, f) })
	ctl.OnCommit(commit)
	b.Refresh(ctl, f)
	return nil
}

// Text is the raw string adapter; escaping happens at render time in
// the surface, not here.
type Text struct {
	Multiline bool
}

func (t Text) Name() string {
	if t.Multiline {
		return "note"
	}
	return "text"
}

func (t Text) Mount(ctl Control, f *reactive.Field) error {
	return mount(t, ctl, f, func() {
		v := ctl.Display()
		if v == "" {
			f.Set(nil)
			return
		}
		f.Set(v)
	})
}

func (t Text) Refresh(ctl Control, f *reactive.Field) {
	ctl.SetDisplay(f.String())
}

// Number holds integer-ish numbers; empty display clears the value.
type Number struct{}

func (Number) Name() string { return "number" }

func (n Number) Mount(ctl Control, f *reactive.Field) error {
	return mount(n, ctl, f, func() {
		v, ok := ParseNumber(ctl.Display())
		if !ok {
			f.Set(nil)
			return
		}
		f.Set(v)
	})
}

func (Number) Refresh(ctl Control, f *reactive.Field) {
	v, ok := f.Value().(float64)
	if !ok {
		ctl.SetDisplay("")
		return
	}
	ctl.SetDisplay(strconv.FormatInt(int64(v), 10))
}

// Decimal renders at fixed precision with decimal-exact rounding.
type Decimal struct {
	Precision int
}

func (Decimal) Name() string { return "decimal" }

func (d Decimal) precision() int {
	if d.Precision <= 0 {
		return 2
	}
	return d.Precision
}

func (d Decimal) Mount(ctl Control, f *reactive.Field) error {
	return mount(d, ctl, f, func() {
		v, ok := ParseDecimal(ctl.Display())
		if !ok {
			f.Set(nil)
			return
		}
		f.Set(v)
	})
}

func (d Decimal) Refresh(ctl Control, f *reactive.Field) {
	v, ok := f.Value().(float64)
	if !ok {
		ctl.SetDisplay("")
		return
	}
	ctl.SetDisplay(ToFixedDecimal(v, d.precision()))
}

// Money renders symbol-prefixed grouped currency and flags negative
// values for distinct styling on controls that support it.
type Money struct {
	Symbol    string
	Precision int
}

func (Money) Name() string { return "money" }

func (m Money) Mount(ctl Control, f *reactive.Field) error {
	return mount(m, ctl, f, func() {
		v, ok := ParseMoney(ctl.Display())
		if !ok {
			f.Set(nil)
			return
		}
		f.Set(v)
	})
}

func (m Money) Refresh(ctl Control, f *reactive.Field) {
	v, ok := f.Value().(float64)
	if !ok {
		ctl.SetDisplay("")
		if styler, styled := ctl.(NegativeStyler); styled {
			styler.SetNegative(false)
		}
		return
	}
	ctl.SetDisplay(FormatMoney(v, m.Symbol, m.Precision))
	if styler, styled := ctl.(NegativeStyler); styled {
		styler.SetNegative(v < 0)
	}
}

// Date binds a single MM/DD/YYYY input to a local-midnight value.
type Date struct{}

func (Date) Name() string { return "date" }

func (d Date) Mount(ctl Control, f *reactive.Field) error {
	return mount(d, ctl, f, func() {
		display := strings.TrimSpace(ctl.Display())
		if display == "" {
			ctl.SetInvalid(false)
			f.Set(nil)
			return
		}
		t, ok := ParseDateDisplay(display)
		if !ok {
			ctl.SetInvalid(true)
			return
		}
		ctl.SetInvalid(false)
		f.Set(t)
	})
}

func (Date) Refresh(ctl Control, f *reactive.Field) {
	t, ok := f.Value().(time.Time)
	if !ok {
		ctl.SetDisplay("")
		return
	}
	ctl.SetDisplay(FormatDateDisplay(t))
}

// DateTime binds the date/hour/minute/meridiem sub-controls to a
// single canonical instant using the UTC-field encoding of
// CombineDateTime. Clearing the date part clears the whole value.
type DateTime struct{}

func (DateTime) Name() string { return "datetime" }

func (dt DateTime) Mount(ctl Control, f *reactive.Field) error {
	parted, ok := ctl.(PartedControl)
	if !ok {
		return fmt.Errorf("binding datetime: control has no sub-controls")
	}
	return mount(dt, ctl, f, func() {
		dateDisplay := strings.TrimSpace(parted.Part("date"))
		if dateDisplay == "" {
			parted.SetInvalid(false)
			f.Set(nil)
			return
		}
		hour, _ := strconv.Atoi(parted.Part("hour"))
		minute, _ := strconv.Atoi(parted.Part("minute"))
		t, valid := CombineDateTime(dateDisplay, hour, minute, parted.Part("meridiem"))
		if !valid {
			parted.SetInvalid(true)
			return
		}
		parted.SetInvalid(false)
		f.Set(t)
	})
}

func (DateTime) Refresh(ctl Control, f *reactive.Field) {
	parted, ok := ctl.(PartedControl)
	if !ok {
		return
	}
	t, isTime := f.Value().(time.Time)
	if !isTime {
		parted.SetPart("date", "")
		parted.SetPart("hour", "12")
		parted.SetPart("minute", "00")
		parted.SetPart("meridiem", "AM")
		parted.SetDisplay("")
		return
	}
	dateDisplay, hour12, minute, meridiem := SplitDateTime(t)
	parted.SetPart("date", dateDisplay)
	parted.SetPart("hour", strconv.Itoa(hour12))
	parted.SetPart("minute", fmt.Sprintf("%02d", minute))
	parted.SetPart("meridiem", meridiem)
	parted.SetDisplay(FormatDateTimeDisplay(t))
}

// Bool binds a yes/no toggle.
type Bool struct{}

func (Bool) Name() string { return "bool" }

func (b Bool) Mount(ctl Control, f *reactive.Field) error {
	return mount(b, ctl, f, func() {
		switch strings.ToLower(strings.TrimSpace(ctl.Display())) {
		case "":
			f.Set(nil)
		case "yes", "true", "1":
			f.Set(true)
		default:
			f.Set(false)
		}
	})
}

func (Bool) Refresh(ctl Control, f *reactive.Field) {
	v, ok := f.Value().(bool)
	if !ok {
		ctl.SetDisplay("")
		return
	}
	if v {
		ctl.SetDisplay("Yes")
		return
	}
	ctl.SetDisplay("No")
}

// Choice binds a single selection against the schema's option list;
// free text is accepted only when the schema permits fill-in.
type Choice struct {
	Options []string
	FillIn  bool
}

func (Choice) Name() string { return "choice" }

func (c Choice) Mount(ctl Control, f *reactive.Field) error {
	return mount(c, ctl, f, func() {
		v := strings.TrimSpace(ctl.Display())
		if v == "" {
			ctl.SetInvalid(false)
			f.Set(nil)
			return
		}
		if !c.FillIn && !containsOption(c.Options, v) {
			ctl.SetInvalid(true)
			return
		}
		ctl.SetInvalid(false)
		f.Set(v)
	})
}

func (Choice) Refresh(ctl Control, f *reactive.Field) {
	ctl.SetDisplay(f.String())
}

// MultiChoice binds a staged option list.
type MultiChoice struct {
	Options []string
	FillIn  bool
}

func (MultiChoice) Name() string { return "multichoice" }

func (mc MultiChoice) Mount(ctl Control, f *reactive.Field) error {
	list, ok := ctl.(ListControl)
	if !ok {
		return fmt.Errorf("binding multichoice: control is not a list control")
	}
	if list.ReadOnly() {
		return nil
	}
	f.Subscribe(func(any) { mc.Refresh(ctl, f) })
	list.OnCommit(func() {
		staged := strings.TrimSpace(list.Display())
		valid := staged != "" && (mc.FillIn || containsOption(mc.Options, staged))
		list.SetAddEnabled(valid)
	})
	list.OnAdd(func() {
		staged := strings.TrimSpace(list.Display())
		if staged == "" || (!mc.FillIn && !containsOption(mc.Options, staged)) {
			return
		}
		items := append(f.Items(), staged)
		list.SetDisplay("")
		list.SetAddEnabled(false)
		f.SetItems(items)
	})
	list.OnRemove(func(index int) {
		items := f.Items()
		if index < 0 || index >= len(items) {
			return
		}
		f.SetItems(append(items[:index:index], items[index+1:]...))
	})
	mc.Refresh(ctl, f)
	return nil
}

func (MultiChoice) Refresh(ctl Control, f *reactive.Field) {
	if list, ok := ctl.(ListControl); ok {
		list.SetItems(f.Items())
	}
}

func containsOption(options []string, v string) bool {
	for _, opt := range options {
		if opt == v {
			return true
		}
	}
	return false
}
