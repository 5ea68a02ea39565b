package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldglass/listform/internal/ports"
)

func newAttachCmd() *cobra.Command {
	var listName string

	cmd := &cobra.Command{
		Use:   "attach <record-id> <file>",
		Short: "Attach a file to a record",
		Args:  cobra.ExactArgs(2),
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

			recordID, err := strconv.Atoi(args[0])
			if err != nil || recordID <= 0 {
				return fmt.Errorf("record id must be a positive integer, got %q", args[0])
			}

			fileName := filepath.Base(args[1])
			ref := ports.RecordRef{ListName: listName, ID: recordID}
			if _, err := app.store.AddAttachment(cmd.Context(), ref, fileName, args[1]); err != nil {
				return fmt.Errorf("attach %s: %w", fileName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s to record #%d\n", fileName, recordID)
			return nil
		},
	}

	cmd.Flags().StringVar(&listName, "list", "", "list holding the record (defaults to the configured list)")
	return cmd
}
