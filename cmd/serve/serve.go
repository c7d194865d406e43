package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidegrid/fishtrack-go/internal/conf"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
	"github.com/tidegrid/fishtrack-go/internal/httpserver"
	"github.com/tidegrid/fishtrack-go/internal/logging"
)

// Command creates the serve command, which runs the HTTP service.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry and voyage HTTP service",
		Long:  "Open the vessel store, seed it when empty, and serve the JSON API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func runServer(settings *conf.Settings) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("error closing datastore", "error", err)
		}
	}()

	if err := store.SeedSampleVoyages(); err != nil {
		logging.Warn("failed to seed sample voyages", "error", err)
	}

	server := httpserver.New(settings, store)
	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	logging.Info("shutdown signal received", "signal", sig.String())

	return server.Shutdown()
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")
	cmd.Flags().StringVar(&settings.Archive.Root, "archiveroot", viper.GetString("archive.root"), "Root directory of the track archive")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
