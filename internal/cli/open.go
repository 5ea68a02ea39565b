package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldglass/listform/internal/form"
	"github.com/fieldglass/listform/internal/logging"
	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/tui"
)

func newOpenCmd() *cobra.Command {
	var listName string

	cmd := &cobra.Command{
		Use:   "open [record-id]",
		Short: "Open a record in the terminal form",
		Long:  "Open the configured list's form. With no argument a new record is drafted; with a record id the existing record is loaded for editing.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.logger.Sync() }()

			if listName == "" {
				listName = app.settings.ListName
			}
			if listName == "" {
				return fmt.Errorf("no list configured; set %s or pass --list", "list.name")
			}

			recordID := 0
			if len(args) == 1 {
				recordID, err = strconv.Atoi(args[0])
				if err != nil || recordID <= 0 {
					return fmt.Errorf("record id must be a positive integer, got %q", args[0])
				}
			}

			fctx := &form.Context{
				Logger: app.logger,
				Sink:   logging.Sink{Logger: app.logger},
				Clock:  ports.SystemClock{},
				Debug:  app.settings.Debug,
			}
			opts := form.Options{
				ListName:          listName,
				RecordID:          recordID,
				AllowSave:         app.settings.AllowSave,
				AllowDelete:       app.settings.AllowDelete,
				AllowPrint:        app.settings.AllowPrint,
				RequireAttachment: app.settings.RequireAttachment,
				HistoryEnabled:    app.settings.HistoryEnabled,
				HistoryList:       app.settings.HistoryList,
				SubmittedWireName: app.settings.SubmittedField,
			}
			services := form.Services{
				Identity: app.store,
				Metadata: app.store,
				Records:  app.store,
				History:  app.store,
				People:   app.store,
			}

			return tui.Start(cmd.Context(), tui.StartOptions{
				Context:       fctx,
				Form:          opts,
				Services:      services,
				RedirectDelay: time.Duration(app.settings.RedirectDelaySeconds) * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&listName, "list", "", "list to open (defaults to the configured list)")
	return cmd
}
