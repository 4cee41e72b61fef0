package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fhir-ingestion-service/internal/app/delivery/http/controllers"
	"fhir-ingestion-service/internal/app/delivery/http/middlewares"
	"fhir-ingestion-service/internal/app/delivery/http/routers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ingestor",
		Short:        "FHIR resource ingestion service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(scanBucketCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP ingestion API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Ingest every *.json file in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDir, _ := cmd.Flags().GetString("input-dir")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			return runWithSummary(cmd, func(ctx context.Context, app *application) error {
				if inputDir == "" {
					inputDir = app.bootstrap.InternalConfig.Ingestion.InputDir
				}
				report, err := app.directoryScanner.Scan(ctx, inputDir, batchSize)
				if report != nil {
					printScanReport(cmd.OutOrStdout(), report)
				}
				return err
			})
		},
	}
	cmd.Flags().String("input-dir", "", "directory holding FHIR JSON files (default INGESTION_INPUT_DIR)")
	cmd.Flags().Int("batch-size", 0, "resources per batch (default INGESTION_BATCH_SIZE)")
	return cmd
}

func scanBucketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan-bucket",
		Short: "Ingest every *.json object under a bucket prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, _ := cmd.Flags().GetString("prefix")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			return runWithSummary(cmd, func(ctx context.Context, app *application) error {
				if app.bucketScanner == nil {
					return errors.New("bucket source is disabled, set MINIO_ENABLED=true")
				}
				if prefix == "" {
					prefix = app.bootstrap.InternalConfig.Ingestion.BucketPrefix
				}
				report, err := app.bucketScanner.Scan(ctx, prefix, batchSize)
				if report != nil {
					printScanReport(cmd.OutOrStdout(), report)
				}
				return err
			})
		},
	}
	cmd.Flags().String("prefix", "", "object key prefix (default INGESTION_BUCKET_PREFIX)")
	cmd.Flags().Int("batch-size", 0, "resources per batch (default INGESTION_BATCH_SIZE)")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print document counts per collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSummary(cmd, func(ctx context.Context, app *application) error {
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the collection indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication()
			if err != nil {
				return err
			}
			defer app.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.ensureIndexes(ctx)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Tag: %s\n", Tag)
		},
	}
}

// runWithSummary sets up the application, runs fn and then prints the collection
// summary. The summary is printed even when fn fails part way.
func runWithSummary(cmd *cobra.Command, fn func(ctx context.Context, app *application) error) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.ensureIndexes(ctx)
	if err != nil {
		return err
	}

	runErr := fn(ctx, app)

	// counts are read after a cancelled run too
	counts, err := app.ingestionUsecase.CollectionCounts(context.WithoutCancel(ctx))
	if err != nil {
		return errors.Join(runErr, err)
	}
	printCollectionCounts(cmd.OutOrStdout(), counts)

	return runErr
}

func runServer() error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	log := app.bootstrap.Logger
	internalConfig := app.bootstrap.InternalConfig

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.ensureIndexes(ctx)
	if err != nil {
		return err
	}

	routers.SetupRoutes(
		app.bootstrap.Router,
		internalConfig,
		middlewares.NewMiddlewares(log, internalConfig),
		controllers.NewIngestionController(log, app.ingestionUsecase, internalConfig),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler: app.bootstrap.Router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr), zap.String("version", Version))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), internalConfig.App.ShutdownTimeout())
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}
