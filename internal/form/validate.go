package form

import (
	"strings"
	"time"
)

// Validate checks every required bound field plus externally-marked
// invalid controls plus the attachment rule. Failures are aggregated
// as human-readable labels, deduplicated by label text (two required
// fields sharing a label produce one entry, matching the historical
// display behavior). Showing the resulting dialog is the caller's
// job.
func (c *Controller) Validate() (bool, []string) {
	var failures []string
	seen := map[string]bool{}
	record := func(label string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		failures = append(failures, label)
	}

	if c.registry != nil {
		for _, key := range c.registry.FieldNames {
			field, ok := c.vm.Fields.Get(key)
			if !ok || !field.Meta().Required {
				continue
			}
			if _, bound := c.surface.Control(key); !bound {
				continue
			}
			if fieldEmpty(field.Value()) {
				record(field.Meta().DisplayName)
			}
		}
	}

	for _, label := range c.surface.InvalidControls() {
		record(label)
	}

	if c.opts.RequireAttachment && len(c.vm.AttachmentRefs()) == 0 {
		record("Attachment")
	}

	return len(failures) == 0, failures
}

// fieldEmpty reports whether a canonical value fails a required
// check: nil, blank-after-trim strings, and empty sequences all
// count as missing.
func fieldEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case time.Time:
		return v.IsZero()
	default:
		return false
	}
}
