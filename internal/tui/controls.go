package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldglass/listform/internal/binding"
)

// Control is what a form row renders and focuses. It extends the
// binding contract with the focus lifecycle the event loop drives:
// PartCount reports focusable sub-inputs, Blur fires the commit hooks.
type Control interface {
	binding.Control
	Label() string
	Invalid() bool
	PartCount() int
	FocusPart(index int)
	Blur()
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
}

// InputControl is the single-line control backing text, number,
// currency, date, bool, choice, and person fields.
type InputControl struct {
	input    textinput.Model
	label    string
	readOnly bool
	invalid  bool
	negative bool
	commits  []func()
}

func NewInputControl(label string, readOnly bool) *InputControl {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 512
	return &InputControl{input: ti, label: label, readOnly: readOnly}
}

func (c *InputControl) Label() string           { return c.label }
func (c *InputControl) Display() string         { return c.input.Value() }
func (c *InputControl) SetDisplay(v string)     { c.input.SetValue(v) }
func (c *InputControl) ReadOnly() bool          { return c.readOnly }
func (c *InputControl) OnCommit(fn func())      { c.commits = append(c.commits, fn) }
func (c *InputControl) SetInvalid(invalid bool) { c.invalid = invalid }
func (c *InputControl) Invalid() bool           { return c.invalid }
func (c *InputControl) SetNegative(v bool)      { c.negative = v }
func (c *InputControl) Negative() bool          { return c.negative }
func (c *InputControl) PartCount() int          { return 1 }

func (c *InputControl) FocusPart(int) {
	if c.readOnly {
		return
	}
	c.input.Focus()
}

func (c *InputControl) Blur() {
	if !c.input.Focused() {
		return
	}
	c.input.Blur()
	c.fireCommits()
}

func (c *InputControl) fireCommits() {
	for _, fn := range c.commits {
		fn()
	}
}

func (c *InputControl) Update(msg tea.Msg) tea.Cmd {
	if c.readOnly || !c.input.Focused() {
		return nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *InputControl) View(width int) string {
	c.input.Width = inputWidth(width)
	return c.input.View()
}

// NoteControl is the multi-line variant over a textarea.
type NoteControl struct {
	area     textarea.Model
	label    string
	readOnly bool
	invalid  bool
	commits  []func()
}

func NewNoteControl(label string, readOnly bool) *NoteControl {
	ta := textarea.New()
	ta.SetHeight(3)
	ta.CharLimit = 5000
	return &NoteControl{area: ta, label: label, readOnly: readOnly}
}

func (c *NoteControl) Label() string           { return c.label }
func (c *NoteControl) Display() string         { return c.area.Value() }
func (c *NoteControl) SetDisplay(v string)     { c.area.SetValue(v) }
func (c *NoteControl) ReadOnly() bool          { return c.readOnly }
func (c *NoteControl) OnCommit(fn func())      { c.commits = append(c.commits, fn) }
func (c *NoteControl) SetInvalid(invalid bool) { c.invalid = invalid }
func (c *NoteControl) Invalid() bool           { return c.invalid }
func (c *NoteControl) PartCount() int          { return 1 }

func (c *NoteControl) FocusPart(int) {
	if c.readOnly {
		return
	}
	c.area.Focus()
}

func (c *NoteControl) Blur() {
	if !c.area.Focused() {
		return
	}
	c.area.Blur()
	for _, fn := range c.commits {
		fn()
	}
}

func (c *NoteControl) Update(msg tea.Msg) tea.Cmd {
	if c.readOnly || !c.area.Focused() {
		return nil
	}
	var cmd tea.Cmd
	c.area, cmd = c.area.Update(msg)
	return cmd
}

func (c *NoteControl) View(width int) string {
	c.area.SetWidth(inputWidth(width))
	return c.area.View()
}

var dateTimeParts = []string{"date", "hour", "minute", "meridiem"}

// DateTimeControl exposes the date, hour, minute, and meridiem
// sub-inputs the datetime adapter binds to. Each sub-input is its own
// focus stop; leaving any of them commits the whole group.
type DateTimeControl struct {
	inputs   map[string]*textinput.Model
	display  string
	label    string
	readOnly bool
	invalid  bool
	commits  []func()
}

func NewDateTimeControl(label string, readOnly bool) *DateTimeControl {
	inputs := make(map[string]*textinput.Model, len(dateTimeParts))
	widths := map[string]int{"date": 10, "hour": 2, "minute": 2, "meridiem": 2}
	for _, part := range dateTimeParts {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = widths[part]
		ti.Width = widths[part] + 1
		inputs[part] = &ti
	}
	return &DateTimeControl{inputs: inputs, label: label, readOnly: readOnly}
}

func (c *DateTimeControl) Label() string           { return c.label }
func (c *DateTimeControl) Display() string         { return c.display }
func (c *DateTimeControl) SetDisplay(v string)     { c.display = v }
func (c *DateTimeControl) ReadOnly() bool          { return c.readOnly }
func (c *DateTimeControl) OnCommit(fn func())      { c.commits = append(c.commits, fn) }
func (c *DateTimeControl) SetInvalid(invalid bool) { c.invalid = invalid }
func (c *DateTimeControl) Invalid() bool           { return c.invalid }
func (c *DateTimeControl) PartCount() int          { return len(dateTimeParts) }

func (c *DateTimeControl) Part(name string) string {
	if ti, ok := c.inputs[name]; ok {
		return ti.Value()
	}
	return ""
}

func (c *DateTimeControl) SetPart(name, value string) {
	if ti, ok := c.inputs[name]; ok {
		ti.SetValue(value)
	}
}

func (c *DateTimeControl) FocusPart(index int) {
	if c.readOnly || index < 0 || index >= len(dateTimeParts) {
		return
	}
	c.inputs[dateTimeParts[index]].Focus()
}

func (c *DateTimeControl) Blur() {
	focused := false
	for _, part := range dateTimeParts {
		if c.inputs[part].Focused() {
			c.inputs[part].Blur()
			focused = true
		}
	}
	if !focused {
		return
	}
	for _, fn := range c.commits {
		fn()
	}
}

func (c *DateTimeControl) Update(msg tea.Msg) tea.Cmd {
	if c.readOnly {
		return nil
	}
	var cmds []tea.Cmd
	for _, part := range dateTimeParts {
		if !c.inputs[part].Focused() {
			continue
		}
		updated, cmd := c.inputs[part].Update(msg)
		*c.inputs[part] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (c *DateTimeControl) View(int) string {
	return strings.Join([]string{
		c.inputs["date"].View(),
		c.inputs["hour"].View() + ":" + c.inputs["minute"].View(),
		c.inputs["meridiem"].View(),
	}, " ")
}

// ListItemsControl is the staged multi-value control. Display is the
// staging input; enter accepts it, backspace on an empty staging input
// removes the last committed row.
type ListItemsControl struct {
	input      textinput.Model
	items      []string
	label      string
	readOnly   bool
	invalid    bool
	addEnabled bool
	renderItem func(string) string
	commits    []func()
	adds       []func()
	removes    []func(int)
}

func NewListItemsControl(label string, readOnly bool) *ListItemsControl {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 512
	return &ListItemsControl{input: ti, label: label, readOnly: readOnly}
}

func (c *ListItemsControl) Label() string           { return c.label }
func (c *ListItemsControl) Display() string         { return c.input.Value() }
func (c *ListItemsControl) ReadOnly() bool          { return c.readOnly }
func (c *ListItemsControl) OnCommit(fn func())      { c.commits = append(c.commits, fn) }
func (c *ListItemsControl) SetInvalid(invalid bool) { c.invalid = invalid }
func (c *ListItemsControl) Invalid() bool           { return c.invalid }
func (c *ListItemsControl) OnAdd(fn func())         { c.adds = append(c.adds, fn) }
func (c *ListItemsControl) OnRemove(fn func(int))   { c.removes = append(c.removes, fn) }
func (c *ListItemsControl) SetAddEnabled(v bool)    { c.addEnabled = v }
func (c *ListItemsControl) AddEnabled() bool        { return c.addEnabled }
func (c *ListItemsControl) PartCount() int          { return 1 }

// SetRenderItem installs a row formatter, e.g. person rows rendering
// display names instead of raw encodings.
func (c *ListItemsControl) SetRenderItem(fn func(string) string) { c.renderItem = fn }

func (c *ListItemsControl) SetDisplay(v string) {
	c.input.SetValue(v)
	c.fireCommits()
}

func (c *ListItemsControl) Items() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

func (c *ListItemsControl) SetItems(items []string) {
	c.items = make([]string, len(items))
	copy(c.items, items)
}

func (c *ListItemsControl) FocusPart(int) {
	if c.readOnly {
		return
	}
	c.input.Focus()
}

func (c *ListItemsControl) Blur() {
	if !c.input.Focused() {
		return
	}
	c.input.Blur()
}

func (c *ListItemsControl) fireCommits() {
	for _, fn := range c.commits {
		fn()
	}
}

// Accept asks the adapter to take the staged value.
func (c *ListItemsControl) Accept() {
	for _, fn := range c.adds {
		fn()
	}
}

// RemoveLast drops the newest committed row.
func (c *ListItemsControl) RemoveLast() {
	if len(c.items) == 0 {
		return
	}
	index := len(c.items) - 1
	for _, fn := range c.removes {
		fn(index)
	}
}

func (c *ListItemsControl) Update(msg tea.Msg) tea.Cmd {
	if c.readOnly || !c.input.Focused() {
		return nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			c.Accept()
			return nil
		case "backspace":
			if c.input.Value() == "" {
				c.RemoveLast()
				return nil
			}
		}
	}
	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if c.input.Value() != before {
		// Staged-text changes re-validate the add affordance.
		c.fireCommits()
	}
	return cmd
}

func (c *ListItemsControl) View(width int) string {
	c.input.Width = inputWidth(width)
	var b strings.Builder
	for _, item := range c.items {
		rendered := item
		if c.renderItem != nil {
			rendered = c.renderItem(item)
		}
		b.WriteString("  • " + rendered + "\n")
	}
	if !c.readOnly {
		b.WriteString(c.input.View())
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func inputWidth(rowWidth int) int {
	w := rowWidth - 4
	if w < 20 {
		w = 20
	}
	if w > 80 {
		w = 80
	}
	return w
}
