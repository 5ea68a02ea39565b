// Package cli defines the listform command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fieldglass/listform/internal/adapters/listfile"
	"github.com/fieldglass/listform/internal/config"
	"github.com/fieldglass/listform/internal/logging"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "listform",
		Short:         "Terminal forms over list data",
		Long:          "listform renders a list's schema as an interactive terminal form: open records, edit typed fields, save, submit, and delete.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newOpenCmd(),
		newAttachCmd(),
		newSchemaCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// app bundles the wired collaborators commands share. Wiring is
// per-command so config-only commands never require the data file.
type app struct {
	settings config.Settings
	logger   *zap.SugaredLogger
	store    *listfile.Store
}

func wireApp() (*app, error) {
	settings, err := config.Load(viper.New())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Debug:   settings.Debug,
		Format:  settings.LogFormat,
		LogFile: settings.LogFile,
	})
	if err != nil {
		return nil, err
	}

	store, err := listfile.Open(settings.DataFile, nil)
	if err != nil {
		return nil, fmt.Errorf("open list data %s: %w", settings.DataFile, err)
	}

	return &app{settings: settings, logger: logger, store: store}, nil
}
