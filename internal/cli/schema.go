package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	var listName string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the discovered form schema for a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			info, err := app.store.ListSchema(cmd.Context(), listName)
			if err != nil {
				return err
			}
			reg := schema.Build(info, ports.SystemClock{}, nil)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d fields)\n\n", reg.List.Title, len(reg.FieldNames))

			w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tWIRE NAME\tTYPE\tFLAGS")
			for _, key := range reg.FieldNames {
				field, ok := reg.Bag.Get(key)
				if !ok {
					continue
				}
				meta := field.Meta()
				flags := ""
				if meta.Required {
					flags += "required "
				}
				if meta.ReadOnly {
					flags += "read-only "
				}
				if meta.IsMultiValue {
					flags += "multi "
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, meta.WireName, meta.Tag, flags)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(reg.Skipped) > 0 {
				fmt.Fprintf(out, "\nSkipped system fields: %d\n", len(reg.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listName, "list", "", "list to inspect (defaults to the configured list)")
	return cmd
}
