package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldglass/listform/internal/form"
)

// StartOptions gather everything Start needs to mount one form.
type StartOptions struct {
	Context       *form.Context
	Form          form.Options
	Services      form.Services
	RedirectDelay time.Duration
}

// Start mounts the form and runs the terminal program until the user
// closes it. The form context's Dispatch is wired to the program so
// enrichment goroutines mutate state on the event loop only.
func Start(ctx context.Context, opts StartOptions) error {
	app := NewApp(ctx, opts.Context, opts.Services.People, nil)
	app.SetRedirectDelay(opts.RedirectDelay)

	controller := form.NewController(opts.Context, opts.Form, opts.Services, app)
	app.SetController(controller)
	controller.OnFatal = func(string) { app.fatal = true }

	program := tea.NewProgram(app, tea.WithAltScreen())
	opts.Context.Dispatch = func(fn func()) {
		program.Send(DispatchMsg{Fn: fn})
	}

	_, err := program.Run()
	return err
}
