package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidegrid/fishtrack-go/internal/conf"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
	"github.com/tidegrid/fishtrack-go/internal/ingest"
	"github.com/tidegrid/fishtrack-go/internal/logging"
)

// Command creates the ingest command, which loads a census CSV into the store.
func Command(settings *conf.Settings) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "ingest [census.csv]",
		Short: "Load a vessel census CSV into the registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := settings.Ingest.CensusPath
			if len(args) > 0 {
				path = args[0]
			}
			return runIngest(cmd.Context(), settings, path, replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace existing registry rows instead of skipping the load")

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func runIngest(ctx context.Context, settings *conf.Settings, path string, replace bool) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("error closing datastore", "error", err)
		}
	}()

	report, err := ingest.NewIngestor(store).IngestFile(ctx, path, replace)
	if err != nil {
		return fmt.Errorf("census load failed: %w", err)
	}

	logging.Info("census load finished",
		"inserted", report.InsertedCount,
		"rows", report.RowsSeen,
		"message", report.Message)
	return nil
}

// setupFlags configures flags specific to the ingest command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Ingest.CensusPath, "census", viper.GetString("ingest.censuspath"), "Path to the census CSV file")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
