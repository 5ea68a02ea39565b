// Package form owns the orchestration of a list form: the fixed
// initialization pipeline, the reactive view-model, validation, and
// the save/submit/delete operations against the persistence
// collaborators.
package form

import (
	"go.uber.org/zap"

	"github.com/fieldglass/listform/internal/ports"
)

// Context carries the cross-cutting collaborators every component
// needs. It is passed explicitly; there is no package-level shared
// state.
type Context struct {
	Logger *zap.SugaredLogger
	Sink   ports.ErrorSink
	Clock  ports.Clock
	Debug  bool

	// Dispatch marshals a mutation onto the owning event loop.
	// Secondary enrichment fetches complete on their own goroutines
	// but must write reactive fields on the loop that reads them.
	// A nil Dispatch runs the mutation inline.
	Dispatch func(func())
}

func (c *Context) dispatch(fn func()) {
	if c.Dispatch != nil {
		c.Dispatch(fn)
		return
	}
	fn()
}

func (c *Context) logError(msg string, keysAndValues ...any) {
	if c.Sink != nil {
		c.Sink.LogError(msg, keysAndValues...)
		return
	}
	if c.Logger != nil {
		c.Logger.Errorw(msg, keysAndValues...)
	}
}

func (c *Context) debugf(format string, args ...any) {
	if c.Debug && c.Logger != nil {
		c.Logger.Debugf(format, args...)
	}
}

// Options configure one form instance.
type Options struct {
	ListName          string
	RecordID          int // 0 means new-record mode
	AllowSave         bool
	AllowDelete       bool
	AllowPrint        bool
	RequireAttachment bool
	HistoryEnabled    bool
	HistoryList       string
	// SubmittedWireName is the boolean field enabling the
	// save-before-submit workflow, when the list has one.
	SubmittedWireName string
}
