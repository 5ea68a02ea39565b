package binding

import (
	"fmt"
	"strings"

	"github.com/fieldglass/listform/internal/reactive"
)

// Person binds a single person picker. The canonical value is the
// "<id>;#<accountName>" encoding or nil; an unvalidated typed name is
// tracked only through the control's invalid flag and never written
// into the canonical value. Candidate resolution (autocomplete)
// happens in the surface against the people-search collaborator; by
// the time a commit reaches this adapter the display either carries
// the resolved encoding or free text that fails validation.
type Person struct{}

func (Person) Name() string { return "person" }

func (p Person) Mount(ctl Control, f *reactive.Field) error {
	return mount(p, ctl, f, func() {
		display := strings.TrimSpace(ctl.Display())
		if display == "" {
			ctl.SetInvalid(false)
			f.Set(nil)
			return
		}
		if !ValidPerson(display) {
			ctl.SetInvalid(true)
			return
		}
		ctl.SetInvalid(false)
		f.Set(display)
	})
}

func (Person) Refresh(ctl Control, f *reactive.Field) {
	v := f.String()
	if v == "" {
		ctl.SetDisplay("")
		return
	}
	ctl.SetDisplay(PersonDisplay(v))
}

// PersonMulti binds a staged list of person values. Add stays
// disabled until the staging value validates; removing a row writes
// a structurally fresh sequence so subscribers fire even though
// sequences compare by identity.
type PersonMulti struct{}

func (PersonMulti) Name() string { return "personmulti" }

func (pm PersonMulti) Mount(ctl Control, f *reactive.Field) error {
	list, ok := ctl.(ListControl)
	if !ok {
		return fmt.Errorf("binding personmulti: control is not a list control")
	}
	if list.ReadOnly() {
		return nil
	}
	f.Subscribe(func(any) { pm.Refresh(ctl, f) })
	list.OnCommit(func() {
		staged := strings.TrimSpace(list.Display())
		valid := ValidPerson(staged)
		list.SetInvalid(staged != "" && !valid)
		list.SetAddEnabled(valid)
	})
	list.OnAdd(func() {
		staged := strings.TrimSpace(list.Display())
		if !ValidPerson(staged) {
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
	pm.Refresh(ctl, f)
	return nil
}

func (PersonMulti) Refresh(ctl Control, f *reactive.Field) {
	list, ok := ctl.(ListControl)
	if !ok {
		return
	}
	items := f.Items()
	display := make([]string, len(items))
	for i, item := range items {
		display[i] = PersonDisplay(item)
	}
	list.SetItems(display)
}
