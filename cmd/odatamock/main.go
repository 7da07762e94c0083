package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	odatamock "github.com/nlstn/go-odata-mock"
	"github.com/nlstn/go-odata-mock/internal/export"
	"github.com/nlstn/go-odata-mock/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "odatamock",
		Short:         "Generate mock data from OData v2 metadata",
		Long:          `odatamock reads an OData v2 $metadata document and generates a deterministic mock dataset for every entity set, following optional predefined value rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a mock dataset",
		Long: `Generate a mock dataset from a metadata document.

Without --out or --db-dialect the dataset is written to stdout as one JSON object.
With --out one <EntitySet>.json file is written per entity set.
With --db-dialect and --db-dsn the dataset is seeded into a database, one table per entity set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Config file (default: ./odatamock.yaml if present)")
	cmd.Flags().StringP("metadata", "m", "", "OData v2 metadata document (EDMX)")
	cmd.Flags().StringP("options", "p", "", "Options file in JSON (numberOfEntitiesToGenerate, mockDataRootURI, rules)")
	cmd.Flags().IntP("count", "n", 0, "Records per entity set; overrides the options file (default: 30)")
	cmd.Flags().String("root-uri", "", "Root URI for entity URIs; overrides the options file")
	cmd.Flags().StringP("out", "o", "", "Output directory for one JSON file per entity set")
	cmd.Flags().String("db-dialect", "", "Seed a database: sqlite or postgres")
	cmd.Flags().String("db-dsn", "", "Database connection string")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().String("log-format", "text", "Log format: text or json")
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	metadataXML, err := os.ReadFile(cfg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	opts, err := readOptions(cfg.Options)
	if err != nil {
		return err
	}
	if cfg.Count > 0 {
		opts.NumberOfEntitiesToGenerate = cfg.Count
	}
	if cfg.RootURI != "" {
		opts.MockDataRootURI = cfg.RootURI
	}

	gen, err := odatamock.New(string(metadataXML), opts)
	if err != nil {
		return err
	}
	if err := gen.SetLogger(logger); err != nil {
		return err
	}

	data, err := gen.GenerateContext(ctx)
	if err != nil {
		return err
	}

	wrote := false
	if cfg.Out != "" {
		paths, err := export.WriteDir(cfg.Out, data)
		if err != nil {
			return err
		}
		logger.Info("Wrote mock data files", "dir", cfg.Out, "files", len(paths))
		wrote = true
	}

	if cfg.DBDialect != "" {
		if err := seed(ctx, gen, data, cfg, logger); err != nil {
			return err
		}
		wrote = true
	}

	if !wrote {
		return export.Write(cmd.OutOrStdout(), data)
	}
	return nil
}

func readOptions(path string) (odatamock.Options, error) {
	if path == "" {
		return odatamock.Options{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return odatamock.Options{}, fmt.Errorf("failed to open options file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return odatamock.LoadOptions(f)
}

func seed(ctx context.Context, gen *odatamock.Generator, data odatamock.Dataset, cfg *Config, logger *slog.Logger) error {
	db, err := store.Open(cfg.DBDialect, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection", "error", err)
		}
	}()

	if _, err := db.Seed(ctx, gen.Schema(), data); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
