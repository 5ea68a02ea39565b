package form

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fieldglass/listform/internal/binding"
	"github.com/fieldglass/listform/internal/pipeline"
	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/reactive"
	"github.com/fieldglass/listform/internal/schema"
)

// Services bundles the collaborators a controller drives.
type Services struct {
	Identity ports.IdentityService
	Metadata schema.MetadataService
	Records  ports.RecordService
	History  ports.HistoryService
	People   ports.PeopleSearch
}

// Controller owns a form instance: it drives the initialization
// pipeline, owns the view-model, and exposes the save/submit/delete
// operations. One controller per mounted form.
type Controller struct {
	fctx     *Context
	opts     Options
	services Services
	surface  Surface

	vm       *ViewModel
	registry *schema.Registry

	// viewModelIsBound guards the one-shot binding application;
	// re-applying bindings to a bound form is a no-op.
	viewModelIsBound bool

	// PreRender and PostRender are optional extension hooks run as
	// their own pipeline stages.
	PreRender  func(*Controller) error
	PostRender func(*Controller) error

	// OnReady runs after the whole pipeline finishes; OnFatal runs
	// once on the first fatal stage failure.
	OnReady func()
	OnFatal func(message string)
}

func NewController(fctx *Context, opts Options, services Services, surface Surface) *Controller {
	if fctx == nil {
		panic("form: controller requires a context")
	}
	if surface == nil {
		panic("form: controller requires a surface")
	}
	if services.Identity == nil || services.Metadata == nil || services.Records == nil {
		panic("form: controller requires identity, metadata, and record services")
	}
	if fctx.Clock == nil {
		fctx.Clock = ports.SystemClock{}
	}
	return &Controller{
		fctx:     fctx,
		opts:     opts,
		services: services,
		surface:  surface,
		vm:       NewViewModel(),
	}
}

func (c *Controller) ViewModel() *ViewModel      { return c.vm }
func (c *Controller) Registry() *schema.Registry { return c.registry }
func (c *Controller) Options() Options           { return c.opts }
func (c *Controller) Bound() bool                { return c.viewModelIsBound }

// Init runs the fixed initialization sequence. Stage order is load
// bearing: schema discovery completes before any field is touched,
// bindings apply exactly once before any record value lands, widget
// finalization runs last. Identity and schema failures are fatal;
// history failure degrades.
func (c *Controller) Init(ctx context.Context) {
	steps := []pipeline.Step{
		c.stage("fetch current user", c.stageFetchCurrentUser(ctx)),
		c.stage("pre-render hook", c.stagePreRender),
		c.stage("fetch schema", c.stageFetchSchema(ctx)),
		c.stage("init form and actions", c.stageInitForm),
		c.stage("apply bindings", c.stageApplyBindings),
		c.stage("fetch record", c.stageFetchRecord(ctx)),
		c.stage("fetch history", c.stageFetchHistory(ctx)),
		c.stage("post-render hook", c.stagePostRender),
		c.stage("permission scoping", c.stagePermissionScoping),
		c.stage("finalize widgets", c.stageFinalize),
	}
	runner := pipeline.New(steps, pipeline.Hooks{
		OnStepDone: func(message string) {
			if message != "" {
				c.fctx.debugf("stage done: %s", message)
			}
		},
		OnFail: func(message string) {
			c.surface.SetStatus(message)
			c.fctx.logError("form initialization halted", "reason", message)
			if c.OnFatal != nil {
				c.OnFatal(message)
			}
		},
		OnFinally: func(string) {
			if c.OnReady != nil {
				c.OnReady()
			}
		},
	})
	runner.Start("init")
}

// stage names a step for observability without changing its contract.
func (c *Controller) stage(name string, fn func(advance func(bool, string))) pipeline.Step {
	return func(r *pipeline.Runner, _ any) {
		c.fctx.debugf("stage start: %s", name)
		fn(func(success bool, message string) {
			if message == "" {
				message = name
			}
			r.Advance(success, message, nil)
		})
	}
}

func (c *Controller) stageFetchCurrentUser(ctx context.Context) func(func(bool, string)) {
	return func(advance func(bool, string)) {
		user, err := c.services.Identity.CurrentUser(ctx)
		if err != nil {
			// A form cannot render without knowing who is using it.
			advance(false, fmt.Sprintf("could not resolve current user: %v", err))
			return
		}
		c.vm.CurrentUser.Set(user)
		advance(true, "")
	}
}

func (c *Controller) stagePreRender(advance func(bool, string)) {
	if c.PreRender != nil {
		if err := c.PreRender(c); err != nil {
			advance(false, fmt.Sprintf("pre-render hook failed: %v", err))
			return
		}
	}
	advance(true, "")
}

func (c *Controller) stageFetchSchema(ctx context.Context) func(func(bool, string)) {
	return func(advance func(bool, string)) {
		info, err := c.services.Metadata.ListSchema(ctx, c.opts.ListName)
		if err != nil {
			advance(false, fmt.Sprintf("could not load schema for %q: %v", c.opts.ListName, err))
			return
		}
		c.registry = schema.Build(info, c.fctx.Clock, c.fctx.Sink)
		for _, key := range c.registry.FieldNames {
			if f, ok := c.registry.Bag.Get(key); ok {
				c.vm.Fields.Add(f)
			}
		}
		advance(true, "")
	}
}

func (c *Controller) stageInitForm(advance func(bool, string)) {
	actions := Actions{
		Save:   c.opts.AllowSave,
		Submit: c.opts.AllowSave && c.submittedField() != nil,
		Delete: c.opts.AllowDelete,
		Print:  c.opts.AllowPrint,
		Cancel: true,
	}
	if err := c.surface.BuildForm(c.registry, actions); err != nil {
		advance(false, fmt.Sprintf("could not build form: %v", err))
		return
	}
	c.applySectionVisibility()
	advance(true, "")
}

// stageApplyBindings performs the one-shot binding application.
// Guarded by viewModelIsBound: the binding pass may only ever happen
// once per form instance.
func (c *Controller) stageApplyBindings(advance func(bool, string)) {
	if c.viewModelIsBound {
		advance(true, "")
		return
	}
	for _, key := range c.registry.FieldNames {
		field, ok := c.vm.Fields.Get(key)
		if !ok {
			continue
		}
		ctl, ok := c.surface.Control(key)
		if !ok {
			continue
		}
		b := binding.ForMeta(field.Meta())
		if err := b.Mount(ctl, field); err != nil {
			c.fctx.logError("binding mount failed, field skipped",
				"field", key, "binding", b.Name(), "error", err)
		}
	}
	c.viewModelIsBound = true
	advance(true, "")
}

func (c *Controller) stageFetchRecord(ctx context.Context) func(func(bool, string)) {
	return func(advance func(bool, string)) {
		if c.opts.RecordID == 0 {
			// New-record mode: nothing to fetch.
			advance(true, "")
			return
		}
		snap, err := c.services.Records.Get(ctx, c.opts.ListName, c.opts.RecordID)
		if err != nil {
			advance(false, fmt.Sprintf("could not load record %d: %v", c.opts.RecordID, err))
			return
		}
		c.adoptRecord(snap)
		c.enrichProfiles(ctx, snap)
		advance(true, "")
	}
}

// adoptRecord maps wire values into reactive fields with
// type-directed coercion and swaps the snapshot.
func (c *Controller) adoptRecord(snap ports.RecordSnapshot) {
	c.vm.AdoptSnapshot(snap)
	for wireName, wireValue := range snap.FieldValues {
		field, ok := c.vm.Fields.ByWireName(wireName)
		if !ok {
			continue
		}
		setFromWire(field, wireValue)
	}
	c.applySectionVisibility()
}

// setFromWire writes one wire value into a field using its tag.
func setFromWire(field *reactive.Field, wireValue string) {
	meta := field.Meta()
	if meta.IsMultiValue {
		field.SetItems(splitWireMulti(wireValue))
		return
	}
	if wireValue == "" {
		field.Set(nil)
		return
	}
	switch meta.Tag {
	case reactive.TagDateTime:
		if t, ok := binding.ParseWireDateTime(wireValue); ok {
			field.Set(t)
		} else {
			field.Set(nil)
		}
	case reactive.TagNumber, reactive.TagCurrency:
		if n, err := strconv.ParseFloat(wireValue, 64); err == nil {
			field.Set(n)
		} else {
			field.Set(nil)
		}
	case reactive.TagBoolean:
		field.Set(wireValue == "1" || wireValue == "true" || wireValue == "TRUE")
	default:
		field.Set(wireValue)
	}
}

// enrichProfiles resolves author and editor display profiles off the
// pipeline: the stage has already advanced by the time these land.
// Each enrichment patches a disjoint reactive field, so the races are
// harmless; failures only degrade the displayed names.
func (c *Controller) enrichProfiles(ctx context.Context, snap ports.RecordSnapshot) {
	resolve := func(encoded string, target *reactive.Field) {
		id, ok := binding.PersonID(encoded)
		if !ok {
			return
		}
		go func() {
			user, err := c.services.Identity.UserByID(ctx, id)
			if err != nil {
				c.fctx.logError("profile enrichment failed", "userID", id, "error", err)
				return
			}
			c.fctx.dispatch(func() {
				target.Set(binding.EncodePerson(user.ID, user.DisplayName))
			})
		}()
	}
	resolve(snap.CreatedBy, c.vm.CreatedBy)
	resolve(snap.ModifiedBy, c.vm.ModifiedBy)
}

func (c *Controller) stageFetchHistory(ctx context.Context) func(func(bool, string)) {
	return func(advance func(bool, string)) {
		if !c.opts.HistoryEnabled || c.opts.RecordID == 0 || c.services.History == nil {
			advance(true, "")
			return
		}
		listName := c.opts.HistoryList
		if listName == "" {
			listName = c.opts.ListName
		}
		items, err := c.services.History.History(ctx, listName, c.opts.RecordID)
		if err != nil {
			// History is supplementary display; its absence must not
			// block the form.
			c.fctx.logError("history fetch failed, continuing without it", "error", err)
			advance(true, "history unavailable")
			return
		}
		c.vm.HistoryItems.Set(items)
		advance(true, "")
	}
}

func (c *Controller) stagePostRender(advance func(bool, string)) {
	if c.PostRender != nil {
		if err := c.PostRender(c); err != nil {
			advance(false, fmt.Sprintf("post-render hook failed: %v", err))
			return
		}
	}
	advance(true, "")
}

func (c *Controller) stagePermissionScoping(advance func(bool, string)) {
	c.applySectionVisibility()
	advance(true, "")
}

func (c *Controller) stageFinalize(advance func(bool, string)) {
	c.surface.Finalize()
	advance(true, "")
}

// applySectionVisibility re-evaluates every declared section against
// the current {isNew, isAuthor, groups} state. Visibility is a pure
// function of that state, so re-running after a record fetch or a
// save is always safe.
func (c *Controller) applySectionVisibility() {
	user := c.vm.User()
	for _, section := range c.surface.Sections() {
		c.surface.SetSectionVisible(section.ID, c.sectionVisible(section, user))
	}
}

func (c *Controller) sectionVisible(section Section, user ports.User) bool {
	switch section.Rule {
	case RuleNewOnly:
		return c.vm.IsNew()
	case RuleEditOnly:
		return !c.vm.IsNew()
	case RuleAuthorOnly:
		return c.vm.IsAuthor()
	case RuleNonAuthor:
		return !c.vm.IsAuthor()
	case RuleGroupLimited:
		return userInGroups(user, section.Groups)
	default:
		return true
	}
}

// userInGroups matches by exact group name or numeric group id.
func userInGroups(user ports.User, allowlist []string) bool {
	for _, allowed := range allowlist {
		for _, g := range user.Groups {
			if g.Name == allowed {
				return true
			}
			if id, err := strconv.Atoi(allowed); err == nil && g.ID == id {
				return true
			}
		}
	}
	return false
}

// submittedField returns the reactive field backing the
// save-before-submit workflow, nil when the list has none.
func (c *Controller) submittedField() *reactive.Field {
	if c.opts.SubmittedWireName == "" || c.vm == nil {
		return nil
	}
	f, ok := c.vm.Fields.ByWireName(c.opts.SubmittedWireName)
	if !ok {
		return nil
	}
	if f.Meta().Tag != reactive.TagBoolean {
		return nil
	}
	return f
}
