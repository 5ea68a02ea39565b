package form

import (
	"github.com/fieldglass/listform/internal/binding"
	"github.com/fieldglass/listform/internal/schema"
)

// VisibilityRule keys a conditional region's visibility off the form
// mode, record authorship, or group membership.
type VisibilityRule string

const (
	RuleAlways       VisibilityRule = ""
	RuleNewOnly      VisibilityRule = "new-only"
	RuleEditOnly     VisibilityRule = "edit-only"
	RuleAuthorOnly   VisibilityRule = "author-only"
	RuleNonAuthor    VisibilityRule = "non-author-only"
	RuleGroupLimited VisibilityRule = "group-limited"
)

// Section is one conditionally visible region of the surface. Groups
// is the allowlist for group-limited sections; entries match a group
// name (case-sensitive exact) or a numeric group id.
type Section struct {
	ID     string
	Rule   VisibilityRule
	Groups []string
}

// Actions are the fixed form operations the surface exposes, gated by
// configuration flags.
type Actions struct {
	Save   bool
	Submit bool
	Delete bool
	Print  bool
	Cancel bool
}

// Surface is the presentation side of a form. The core's only
// assumption is that controls carrying known binding markers exist
// under the mount root; concrete markup is the surface's concern.
// All methods are called from the owning event loop.
type Surface interface {
	// BuildForm materializes one control per registry field plus the
	// action affordances. Called exactly once, before bindings apply.
	BuildForm(reg *schema.Registry, actions Actions) error

	// Control returns the control bound to a field key, if the
	// surface rendered one.
	Control(fieldKey string) (binding.Control, bool)

	// Sections lists the conditional regions the surface declares.
	Sections() []Section

	// SetSectionVisible re-evaluates one region's visibility.
	SetSectionVisible(id string, visible bool)

	// InvalidControls returns display labels of controls carrying an
	// externally-applied invalid marker.
	InvalidControls() []string

	// SetStatus surfaces a status message (load progress, fatal
	// pipeline errors, save confirmations).
	SetStatus(message string)

	// Finalize performs post-binding cosmetic wiring. Runs strictly
	// after bindings apply, never before.
	Finalize()
}
