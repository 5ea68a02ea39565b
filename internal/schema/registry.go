package schema

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/reactive"
)

// systemFieldDenylist holds internal list fields that never become
// form fields: content-type plumbing, versioning, attachment markers,
// and the edit-link pseudo columns.
var systemFieldDenylist = map[string]bool{
	"ContentType":            true,
	"ContentTypeId":          true,
	"Attachments":            true,
	"Edit":                   true,
	"LinkTitle":              true,
	"LinkTitleNoMenu":        true,
	"LinkFilename":           true,
	"DocIcon":                true,
	"ItemChildCount":         true,
	"FolderChildCount":       true,
	"AppAuthor":              true,
	"AppEditor":              true,
	"ComplianceAssetId":      true,
	"_UIVersionString":       true,
	"owshiddenversion":       true,
	"InstanceID":             true,
	"Order":                  true,
	"GUID":                   true,
	"WorkflowVersion":        true,
	"WorkflowInstanceID":     true,
	"FileRef":                true,
	"FileDirRef":             true,
	"Last_x0020_Modified":    true,
	"Created_x0020_Date":     true,
	"FSObjType":              true,
	"SortBehavior":           true,
	"PermMask":               true,
	"UniqueId":               true,
	"SyncClientId":           true,
	"ProgId":                 true,
	"ScopeId":                true,
	"MetaInfo":               true,
	"_Level":                 true,
	"_IsCurrentVersion":      true,
	"SelectTitle":            true,
	"SelectFilename":         true,
	"ServerUrl":              true,
	"EncodedAbsUrl":          true,
	"BaseName":               true,
	"_ModerationComments":    true,
	"_ModerationStatus":      true,
	"_HasCopyDestinations":   true,
	"_CopySource":            true,
	"_EditMenuTableStart":    true,
	"_EditMenuTableStart2":   true,
	"_EditMenuTableEnd":      true,
}

// DateTimeTodaySentinel in a default value resolves to the current
// instant at discovery time.
const DateTimeTodaySentinel = "[today]"

// Registry is the outcome of one schema discovery: the reactive field
// bag plus the sorted field-name index used for editable-field
// selection and record (de)serialization. The sort is alphabetical
// purely so iteration order is deterministic.
type Registry struct {
	List       ListInfo
	Bag        *reactive.Bag
	FieldNames []string
	Skipped    []string
}

// Build materializes reactive fields from discovered entries. A field
// that fails a rule is skipped and recorded, never fatal: a partially
// discovered schema still yields a usable form.
func Build(info ListInfo, clock ports.Clock, sink ports.ErrorSink) *Registry {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	reg := &Registry{List: info, Bag: reactive.NewBag()}

	for _, entry := range info.Fields {
		if !Eligible(entry) {
			reg.Skipped = append(reg.Skipped, entry.WireName)
			continue
		}
		meta := metaFor(entry)
		field := reactive.New(meta, defaultValue(entry, meta, clock))
		if !reg.Bag.Add(field) {
			// Two administrative names normalizing to the same
			// property key: first registered wins.
			if sink != nil {
				sink.LogError("duplicate field key, skipping",
					"fieldKey", meta.FieldKey, "wireName", entry.WireName)
			}
			reg.Skipped = append(reg.Skipped, entry.WireName)
			continue
		}
		reg.FieldNames = append(reg.FieldNames, meta.FieldKey)
	}
	sort.Strings(reg.FieldNames)
	return reg
}

// Eligible reports whether an entry becomes a form field at all.
func Eligible(entry Entry) bool {
	if strings.TrimSpace(entry.DisplayName) == "" {
		return false
	}
	if entry.Hidden {
		return false
	}
	if systemFieldDenylist[entry.WireName] {
		return false
	}
	return true
}

func metaFor(entry Entry) reactive.Meta {
	tag := TagForTypeName(entry.TypeName)
	return reactive.Meta{
		FieldKey:     PropertyKey(entry.WireName),
		DisplayName:  entry.DisplayName,
		WireName:     entry.WireName,
		Format:       entry.Format,
		Required:     entry.Required,
		ReadOnly:     entry.ReadOnly,
		Description:  entry.Description,
		Tag:          tag,
		Choices:      entry.Choices,
		FillIn:       entry.FillIn,
		IsMultiValue: isMultiTypeName(entry.TypeName),
	}
}

// isMultiTypeName: a "multi"-prefixed type name (case-insensitive)
// marks a multi-valued field. UserMulti carries the suffix instead
// and is covered by its tag.
func isMultiTypeName(typeName string) bool {
	normalized := normalizeTypeName(typeName)
	return strings.HasPrefix(normalized, "multi") || TagForTypeName(typeName).IsMulti()
}

func normalizeTypeName(typeName string) string {
	return strings.ToLower(strings.TrimSpace(typeName))
}

// PropertyKey converts an administrative field name to a camel-case
// identifier usable as a property key: "DueDate" -> "dueDate",
// "Assigned_x0020_To" -> "assignedX0020To" style cleanup collapses
// non-alphanumeric runs and lowercases the leading rune.
func PropertyKey(wireName string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range wireName {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext && b.Len() > 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		upperNext = false
	}
	key := b.String()
	if key == "" {
		return key
	}
	return strings.ToLower(key[:1]) + key[1:]
}

// defaultValue parses an entry's declared default into the canonical
// representation for its tag. Multi-valued fields always start as an
// empty sequence, never nil, so structural appends have a base.
func defaultValue(entry Entry, meta reactive.Meta, clock ports.Clock) any {
	if meta.IsMultiValue {
		return []string{}
	}
	raw := entry.DefaultValue
	switch meta.Tag {
	case reactive.TagBoolean:
		if raw == "" {
			return nil
		}
		return raw != "0"
	case reactive.TagNumber, reactive.TagCurrency:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return n
	case reactive.TagDateTime:
		if strings.EqualFold(raw, DateTimeTodaySentinel) {
			return clock.Now()
		}
		if raw == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		return nil
	default:
		if raw == "" {
			return nil
		}
		return raw
	}
}
