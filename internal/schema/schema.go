// Package schema translates a list's field definitions into the
// reactive fields that form the view-model. Discovery happens once
// per form load; entries are read-only afterwards.
package schema

import (
	"context"

	"github.com/fieldglass/listform/internal/reactive"
)

// Entry describes one list field as reported by the metadata
// collaborator, before any normalization.
type Entry struct {
	WireName     string
	DisplayName  string
	TypeName     string
	Format       string
	Required     bool
	ReadOnly     bool
	Hidden       bool
	Description  string
	DefaultValue string
	Choices      []string
	FillIn       bool
}

// ListInfo is everything discovery learns about a list.
type ListInfo struct {
	ListID             string
	Title              string
	RequiresCheckout   bool
	AttachmentsEnabled bool
	Fields             []Entry
}

// MetadataService is the discovery collaborator. A schema fetch
// failure is fatal to form initialization; per-field parse failures
// are not (the registry skips and continues).
type MetadataService interface {
	ListSchema(ctx context.Context, listName string) (ListInfo, error)
}

// TagForTypeName maps a declared field type name onto a canonical
// type tag. Unknown types degrade to Text so unfamiliar columns still
// render as something editable.
func TagForTypeName(typeName string) reactive.TypeTag {
	switch normalizeTypeName(typeName) {
	case "text":
		return reactive.TagText
	case "note":
		return reactive.TagNote
	case "choice":
		return reactive.TagChoice
	case "multichoice":
		return reactive.TagMultiChoice
	case "boolean":
		return reactive.TagBoolean
	case "number", "integer", "counter":
		return reactive.TagNumber
	case "currency":
		return reactive.TagCurrency
	case "datetime":
		return reactive.TagDateTime
	case "user":
		return reactive.TagUser
	case "usermulti":
		return reactive.TagUserMulti
	default:
		return reactive.TagText
	}
}
