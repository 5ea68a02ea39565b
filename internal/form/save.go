package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fieldglass/listform/internal/binding"
	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/reactive"
)

// wireMultiDelimiter joins multi-valued entries on the wire.
const wireMultiDelimiter = ";#"

// ErrValidation reports a save short-circuited on validation; the
// persistence collaborator was never called.
var ErrValidation = errors.New("form is not valid")

// SaveResult describes a completed save.
type SaveResult struct {
	RecordID  int
	Created   bool
	Submitted bool
	Failures  []string
}

// Save validates, builds the wire payload from the editable field
// set, and creates or updates the record. On success the snapshot is
// re-fetched and swapped; on any failure the in-memory model is left
// untouched. isSubmit additionally flips the submitted flag, but only
// when transitioning from not-yet-submitted: a later plain save must
// never revert an already-submitted record.
func (c *Controller) Save(ctx context.Context, isSubmit bool) (SaveResult, error) {
	ok, failures := c.Validate()
	if !ok {
		return SaveResult{Failures: failures}, ErrValidation
	}

	payload := c.BuildPayload()
	if isSubmit {
		if f := c.submittedField(); f != nil {
			if submitted, _ := f.Value().(bool); !submitted {
				payload[c.opts.SubmittedWireName] = "1"
			}
		}
	}

	created := false
	recordID := c.vm.RecordID()
	if recordID == 0 {
		newID, err := c.services.Records.Create(ctx, c.opts.ListName, payload)
		if err != nil {
			c.fctx.logError("create failed", "list", c.opts.ListName, "error", err)
			return SaveResult{}, fmt.Errorf("create record: %w", err)
		}
		recordID = newID
		created = true
	} else {
		ref := ports.RecordRef{ListName: c.opts.ListName, ID: recordID}
		if err := c.services.Records.Update(ctx, ref, payload); err != nil {
			c.fctx.logError("update failed", "list", c.opts.ListName, "id", recordID, "error", err)
			return SaveResult{}, fmt.Errorf("update record %d: %w", recordID, err)
		}
	}

	// Adopt the server's view wholesale so id, etag, timestamps, and
	// any server-computed values land in the model.
	snap, err := c.services.Records.Get(ctx, c.opts.ListName, recordID)
	if err != nil {
		c.fctx.logError("post-save fetch failed", "id", recordID, "error", err)
		return SaveResult{}, fmt.Errorf("reload record %d: %w", recordID, err)
	}
	c.opts.RecordID = recordID
	c.adoptRecord(snap)

	return SaveResult{RecordID: recordID, Created: created, Submitted: isSubmit}, nil
}

// Delete removes the record. Confirmation is a synchronous gate the
// surface performs before calling here; on failure the record is not
// assumed deleted and the model is untouched.
func (c *Controller) Delete(ctx context.Context) error {
	recordID := c.vm.RecordID()
	if recordID == 0 {
		return fmt.Errorf("delete: record has never been saved")
	}
	ref := ports.RecordRef{ListName: c.opts.ListName, ID: recordID}
	if err := c.services.Records.Delete(ctx, ref); err != nil {
		c.fctx.logError("delete failed", "list", c.opts.ListName, "id", recordID, "error", err)
		return fmt.Errorf("delete record %d: %w", recordID, err)
	}
	return nil
}

// DeleteAttachment removes one attachment server-side, then drops it
// from the in-memory set.
func (c *Controller) DeleteAttachment(ctx context.Context, metadataID string) error {
	recordID := c.vm.RecordID()
	if recordID == 0 {
		return fmt.Errorf("delete attachment: record has never been saved")
	}
	ref := ports.RecordRef{ListName: c.opts.ListName, ID: recordID}
	if err := c.services.Records.DeleteAttachment(ctx, ref, metadataID); err != nil {
		c.fctx.logError("attachment delete failed", "id", recordID, "attachment", metadataID, "error", err)
		return fmt.Errorf("delete attachment: %w", err)
	}
	c.vm.RemoveAttachment(metadataID)
	return nil
}

// BuildPayload scans the editable field set (fields with a bound
// control, sorted, excluding schema read-only fields and the
// submitted flag) and applies type-specific wire coercion.
func (c *Controller) BuildPayload() map[string]string {
	payload := map[string]string{}
	if c.registry == nil {
		return payload
	}
	for _, key := range c.registry.FieldNames {
		field, ok := c.vm.Fields.Get(key)
		if !ok {
			continue
		}
		meta := field.Meta()
		if meta.ReadOnly {
			continue
		}
		if _, bound := c.surface.Control(key); !bound {
			continue
		}
		if c.opts.SubmittedWireName != "" && meta.WireName == c.opts.SubmittedWireName {
			// The submitted flag moves only through the explicit
			// submit transition.
			continue
		}
		payload[meta.WireName] = wireValue(field)
	}
	return payload
}

// wireValue coerces one field's canonical value for the wire.
func wireValue(field *reactive.Field) string {
	meta := field.Meta()
	if meta.IsMultiValue {
		return joinWireMulti(field.Items())
	}
	switch v := field.Value().(type) {
	case nil:
		return ""
	case string:
		if meta.Tag == reactive.TagUser {
			// The persistence layer addresses people by the numeric
			// id portion alone.
			if id, ok := binding.PersonID(v); ok {
				return strconv.Itoa(id)
			}
		}
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return binding.WireDateTime(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinWireMulti(items []string) string {
	return strings.Join(items, wireMultiDelimiter)
}

func splitWireMulti(wire string) []string {
	if wire == "" {
		return []string{}
	}
	parts := strings.Split(wire, wireMultiDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
