package reactive

import (
	"reflect"
	"testing"
)

func TestFieldNotifiesSubscribersInOrder(t *testing.T) {
	f := New(Meta{FieldKey: "title", Tag: TagText}, nil)
	var seen []string
	f.Subscribe(func(v any) { seen = append(seen, "a") })
	f.Subscribe(func(v any) { seen = append(seen, "b") })

	f.Set("x")
	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Fatalf("notification order = %v", seen)
	}
}

func TestFieldNotifiesOnEqualWrite(t *testing.T) {
	f := New(Meta{FieldKey: "n", Tag: TagNumber}, nil)
	count := 0
	f.Subscribe(func(any) { count++ })
	f.Set(1.0)
	f.Set(1.0)
	if count != 2 {
		t.Fatalf("notified %d times, want every write to fan out", count)
	}
}

func TestSetItemsCopiesAndNotifies(t *testing.T) {
	f := New(Meta{FieldKey: "tags", Tag: TagMultiChoice, IsMultiValue: true}, []string{})
	notified := 0
	f.Subscribe(func(any) { notified++ })

	src := []string{"a", "b"}
	f.SetItems(src)
	src[0] = "mutated"

	if got := f.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Items = %v, caller mutation leaked in", got)
	}
	if notified != 1 {
		t.Fatalf("notified %d times, want 1", notified)
	}
}

func TestBagFirstRegistrationWins(t *testing.T) {
	b := NewBag()
	first := New(Meta{FieldKey: "due", WireName: "Due_Date"}, nil)
	second := New(Meta{FieldKey: "due", WireName: "DueDate"}, nil)

	if !b.Add(first) {
		t.Fatalf("first Add rejected")
	}
	if b.Add(second) {
		t.Fatalf("second Add accepted for duplicate key")
	}
	got, _ := b.Get("due")
	if got.Meta().WireName != "Due_Date" {
		t.Fatalf("bag holds %q, want first registration", got.Meta().WireName)
	}
}

func TestBagKeysSorted(t *testing.T) {
	b := NewBag()
	for _, key := range []string{"zeta", "alpha", "mid"} {
		b.Add(New(Meta{FieldKey: key}, nil))
	}
	if got := b.Keys(); !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("Keys = %v, want sorted", got)
	}
}

func TestBagByWireName(t *testing.T) {
	b := NewBag()
	b.Add(New(Meta{FieldKey: "dueDate", WireName: "Due_Date"}, nil))
	f, ok := b.ByWireName("Due_Date")
	if !ok || f.Meta().FieldKey != "dueDate" {
		t.Fatalf("ByWireName lookup failed")
	}
	if _, ok := b.ByWireName("Nope"); ok {
		t.Fatalf("ByWireName found a missing field")
	}
}
