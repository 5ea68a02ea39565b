package form

import (
	"time"

	"github.com/fieldglass/listform/internal/binding"
	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/reactive"
)

// Framework field keys always present on a view-model, alongside the
// per-list discovered fields.
const (
	KeyID           = "id"
	KeyCreated      = "created"
	KeyCreatedBy    = "createdBy"
	KeyModified     = "modified"
	KeyModifiedBy   = "modifiedBy"
	KeyAttachments  = "attachments"
	KeyHistoryItems = "historyItems"
	KeyCurrentUser  = "currentUser"
)

// ViewModel is the reactive state of one form: the discovered field
// bag plus the fixed framework fields. It lives exactly as long as
// the form instance.
type ViewModel struct {
	Fields *reactive.Bag

	ID           *reactive.Field
	Created      *reactive.Field
	CreatedBy    *reactive.Field
	Modified     *reactive.Field
	ModifiedBy   *reactive.Field
	Attachments  *reactive.Field
	HistoryItems *reactive.Field
	CurrentUser  *reactive.Field

	// snapshot is the last-fetched server representation, swapped
	// atomically after every successful fetch or save.
	snapshot *ports.RecordSnapshot
}

func NewViewModel() *ViewModel {
	frameworkField := func(key string, tag reactive.TypeTag, initial any) *reactive.Field {
		return reactive.New(reactive.Meta{FieldKey: key, WireName: key, Tag: tag, ReadOnly: true}, initial)
	}
	return &ViewModel{
		Fields:       reactive.NewBag(),
		ID:           frameworkField(KeyID, reactive.TagNumber, nil),
		Created:      frameworkField(KeyCreated, reactive.TagDateTime, nil),
		CreatedBy:    frameworkField(KeyCreatedBy, reactive.TagUser, nil),
		Modified:     frameworkField(KeyModified, reactive.TagDateTime, nil),
		ModifiedBy:   frameworkField(KeyModifiedBy, reactive.TagUser, nil),
		Attachments:  frameworkField(KeyAttachments, reactive.TagText, []ports.AttachmentRef{}),
		HistoryItems: frameworkField(KeyHistoryItems, reactive.TagText, []ports.HistoryItem{}),
		CurrentUser:  frameworkField(KeyCurrentUser, reactive.TagUser, nil),
	}
}

// IsNew reports whether the form edits a record that does not exist
// on the server yet.
func (vm *ViewModel) IsNew() bool {
	return vm.RecordID() == 0
}

// RecordID returns the current record id, 0 when unsaved.
func (vm *ViewModel) RecordID() int {
	if id, ok := vm.ID.Value().(int); ok {
		return id
	}
	return 0
}

// Snapshot returns the last-fetched server representation, nil in
// new-record mode before the first save.
func (vm *ViewModel) Snapshot() *ports.RecordSnapshot {
	return vm.snapshot
}

// AdoptSnapshot swaps the record snapshot wholesale and updates the
// framework fields derived from it. Discovered fields are mapped
// separately by the controller, which knows each field's type.
func (vm *ViewModel) AdoptSnapshot(snap ports.RecordSnapshot) {
	copied := snap
	vm.snapshot = &copied
	vm.ID.Set(snap.ID)
	if !snap.CreatedAt.IsZero() {
		vm.Created.Set(snap.CreatedAt)
	}
	if !snap.ModifiedAt.IsZero() {
		vm.Modified.Set(snap.ModifiedAt)
	}
	if snap.CreatedBy != "" {
		vm.CreatedBy.Set(snap.CreatedBy)
	}
	if snap.ModifiedBy != "" {
		vm.ModifiedBy.Set(snap.ModifiedBy)
	}
	attachments := make([]ports.AttachmentRef, len(snap.Attachments))
	copy(attachments, snap.Attachments)
	vm.Attachments.Set(attachments)
}

// AttachmentRefs returns the current attachment set.
func (vm *ViewModel) AttachmentRefs() []ports.AttachmentRef {
	refs, _ := vm.Attachments.Value().([]ports.AttachmentRef)
	return refs
}

// RemoveAttachment drops one attachment from the in-memory set after
// a successful server-side delete.
func (vm *ViewModel) RemoveAttachment(metadataID string) {
	refs := vm.AttachmentRefs()
	kept := make([]ports.AttachmentRef, 0, len(refs))
	for _, ref := range refs {
		if ref.MetadataID != metadataID {
			kept = append(kept, ref)
		}
	}
	vm.Attachments.Set(kept)
}

// History returns the fetched workflow history, chronological
// ascending as returned by the query.
func (vm *ViewModel) History() []ports.HistoryItem {
	items, _ := vm.HistoryItems.Value().([]ports.HistoryItem)
	return items
}

// User returns the acting user, zero before the identity stage runs.
func (vm *ViewModel) User() ports.User {
	u, _ := vm.CurrentUser.Value().(ports.User)
	return u
}

// IsAuthor reports whether the acting user authored the record. A new
// record has no author yet; the acting user counts as the author so
// author-only regions show while drafting.
func (vm *ViewModel) IsAuthor() bool {
	if vm.IsNew() {
		return true
	}
	createdBy, _ := vm.CreatedBy.Value().(string)
	if createdBy == "" {
		return false
	}
	if id, ok := binding.PersonID(createdBy); ok {
		return id == vm.User().ID
	}
	return false
}

// CreatedAt returns the server creation time, zero when unsaved.
func (vm *ViewModel) CreatedAt() time.Time {
	t, _ := vm.Created.Value().(time.Time)
	return t
}
