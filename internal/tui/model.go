package tui

import (
	"context"
	"time"

	"github.com/fieldglass/listform/internal/binding"
	"github.com/fieldglass/listform/internal/form"
	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/reactive"
	"github.com/fieldglass/listform/internal/schema"
)

// Section ids the surface declares. Visibility is controller-driven.
const (
	SectionAudit       = "audit"
	SectionAttachments = "attachments"
	SectionHistory     = "history"
)

type formRow struct {
	key     string
	meta    reactive.Meta
	control Control
}

// focusStop addresses one focusable sub-input: a row and a part index
// within its control.
type focusStop struct {
	row  int
	part int
}

type bootMsg struct{}

// DispatchMsg carries a deferred mutation onto the event loop. The
// form context's Dispatch wraps mutations in these.
type DispatchMsg struct {
	Fn func()
}

type closeMsg struct{}

type personSearch struct {
	candidates []ports.PersonCandidate
	index      int
	forRow     int
}

// attachmentPick is the modal state for removing an attachment:
// navigate the set, confirm, then delete through the controller.
type attachmentPick struct {
	index   int
	confirm bool
}

// App is the terminal form: the bubbletea model and, at the same time,
// the surface the form controller drives. All controller callbacks run
// on the event loop, so no locking is needed.
type App struct {
	ctx        context.Context
	fctx       *form.Context
	controller *form.Controller
	people     ports.PeopleSearch

	listTitle     string
	redirectDelay time.Duration

	rows           []*formRow
	controlsByKey  map[string]Control
	sections       []form.Section
	sectionVisible map[string]bool
	actions        form.Actions

	focus      []focusStop
	focusIndex int

	status        string
	failures      []string
	confirmDelete bool
	search        *personSearch
	attachPick    *attachmentPick
	fatal         bool
	ready         bool

	windowWidth  int
	windowHeight int
}

// NewApp builds the surface. The controller is attached afterwards via
// SetController; construction order is surface first because the
// controller requires a surface.
func NewApp(ctx context.Context, fctx *form.Context, people ports.PeopleSearch, sections []form.Section) *App {
	if sections == nil {
		sections = []form.Section{
			{ID: SectionAudit, Rule: form.RuleEditOnly},
			{ID: SectionAttachments, Rule: form.RuleEditOnly},
			{ID: SectionHistory, Rule: form.RuleEditOnly},
		}
	}
	visible := make(map[string]bool, len(sections))
	for _, s := range sections {
		visible[s.ID] = true
	}
	return &App{
		ctx:            ctx,
		fctx:           fctx,
		people:         people,
		sections:       sections,
		sectionVisible: visible,
		controlsByKey:  map[string]Control{},
		windowWidth:    80,
		windowHeight:   24,
	}
}

func (a *App) SetController(c *form.Controller) { a.controller = c }

// SetRedirectDelay sets how long a save confirmation stays up before
// the form closes. Zero keeps the form open.
func (a *App) SetRedirectDelay(d time.Duration) { a.redirectDelay = d }

// --- surface contract ---

func (a *App) BuildForm(reg *schema.Registry, actions form.Actions) error {
	a.actions = actions
	a.listTitle = reg.List.Title
	a.rows = a.rows[:0]
	for _, key := range reg.FieldNames {
		field, ok := reg.Bag.Get(key)
		if !ok {
			continue
		}
		meta := field.Meta()
		ctl := controlForMeta(meta)
		a.rows = append(a.rows, &formRow{key: key, meta: meta, control: ctl})
		a.controlsByKey[key] = ctl
	}
	return nil
}

func controlForMeta(meta reactive.Meta) Control {
	switch meta.Tag {
	case reactive.TagNote:
		return NewNoteControl(meta.DisplayName, meta.ReadOnly)
	case reactive.TagDateTime:
		if meta.Format == "DateOnly" {
			return NewInputControl(meta.DisplayName, meta.ReadOnly)
		}
		return NewDateTimeControl(meta.DisplayName, meta.ReadOnly)
	case reactive.TagMultiChoice:
		return NewListItemsControl(meta.DisplayName, meta.ReadOnly)
	case reactive.TagUserMulti:
		ctl := NewListItemsControl(meta.DisplayName, meta.ReadOnly)
		ctl.SetRenderItem(binding.PersonDisplay)
		return ctl
	default:
		return NewInputControl(meta.DisplayName, meta.ReadOnly)
	}
}

func (a *App) Control(fieldKey string) (binding.Control, bool) {
	ctl, ok := a.controlsByKey[fieldKey]
	if !ok {
		return nil, false
	}
	return ctl, true
}

func (a *App) Sections() []form.Section { return a.sections }

func (a *App) SetSectionVisible(id string, visible bool) {
	a.sectionVisible[id] = visible
}

func (a *App) InvalidControls() []string {
	var labels []string
	for _, row := range a.rows {
		if row.control.Invalid() {
			labels = append(labels, row.control.Label())
		}
	}
	return labels
}

func (a *App) SetStatus(message string) { a.status = message }

// Finalize builds the focus order and lands focus on the first
// editable control. Runs strictly after bindings apply.
func (a *App) Finalize() {
	a.focus = a.focus[:0]
	for i, row := range a.rows {
		if row.control.ReadOnly() {
			continue
		}
		for part := 0; part < row.control.PartCount(); part++ {
			a.focus = append(a.focus, focusStop{row: i, part: part})
		}
	}
	a.focusIndex = 0
	if len(a.focus) > 0 {
		stop := a.focus[0]
		a.rows[stop.row].control.FocusPart(stop.part)
	}
	a.ready = true
}

// --- event loop helpers ---

func (a *App) focusedRow() *formRow {
	if len(a.focus) == 0 {
		return nil
	}
	return a.rows[a.focus[a.focusIndex].row]
}

func (a *App) moveFocus(delta int) {
	if len(a.focus) == 0 {
		return
	}
	current := a.focus[a.focusIndex]
	next := (a.focusIndex + delta + len(a.focus)) % len(a.focus)
	// Leaving a sub-input is the commit moment for its control.
	a.rows[current.row].control.Blur()
	a.focusIndex = next
	stop := a.focus[next]
	a.rows[stop.row].control.FocusPart(stop.part)
	a.search = nil
}

// commitFocused flushes the in-progress edit without moving focus,
// used before save so the last keystrokes land in the model.
func (a *App) commitFocused() {
	row := a.focusedRow()
	if row == nil {
		return
	}
	stop := a.focus[a.focusIndex]
	row.control.Blur()
	row.control.FocusPart(stop.part)
}
