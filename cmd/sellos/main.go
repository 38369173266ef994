package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/analysis"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/checks"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/config"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/server"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/site"
)

var verbose bool

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "sellos",
		Short: "Static dashboard for the APL clean production seal program",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newVerifyCmd(),
		newStatsCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunLogger() *internal.Logger {
	if verbose {
		return internal.NewLogger(internal.LogLevelDebug)
	}
	return internal.NewDefaultLogger()
}

func newGenerateCmd() *cobra.Command {
	var dataDir string
	var outDir string
	var vendorDir string
	var workers int
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the static dashboard from the processed datasets",
		Long: `Build the static dashboard: load the processed datasets, verify their
cross-file consistency and render every page and artifact into the output
directory.

Example: sellos generate --data data/processed --out public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Data.Dir = dataDir
			}
			if outDir != "" {
				cfg.Site.OutputDir = outDir
			}
			if vendorDir != "" {
				cfg.Site.VendorDir = vendorDir
			}
			if workers > 0 {
				cfg.Site.Workers = workers
			}
			return runGenerate(cmd.Context(), cfg, skipChecks)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "Directory with the processed data files (default: embedded data)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory for the generated site")
	cmd.Flags().StringVar(&vendorDir, "vendor", "", "Directory with a local Plotly bundle to vendor into the site")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent artifact writes")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip the consistency checks before rendering")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the datasets' cross-file consistency",
		Long: `Check that the published breakdowns agree with each other: the yearly
summary matches the per-year files, every breakdown adds up to the yearly
totals, and the series start where the program did.

Example: sellos verify --data data/processed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Data.Dir = dataDir
			}
			return runVerify(cfg)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "Directory with the processed data files (default: embedded data)")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var dataDir string
	var column string

	cmd := &cobra.Command{
		Use:   "stats [dataset]",
		Short: "Describe a dataset series and its linear trend",
		Long: `Describe one numeric series of a dataset: five-number summary,
dispersion and, for yearly datasets, the fitted linear trend.

Example: sellos stats adhesion_by_year --column installations`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := apl.DatasetAdhesionByYear
			if len(args) == 1 {
				name = args[0]
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Data.Dir = dataDir
			}
			return runStats(cfg, name, column)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "Directory with the processed data files (default: embedded data)")
	cmd.Flags().StringVar(&column, "column", apl.ColInstallations, "Numeric column to describe")

	return cmd
}

func newServeCmd() *cobra.Command {
	var dataDir string
	var outDir string
	var addr string
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated dashboard with a JSON API over the datasets",
		Long: `Serve the generated site together with a small JSON API over the loaded
datasets. The site is rebuilt before serving unless --skip-build is set.

Example: sellos serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Data.Dir = dataDir
			}
			if outDir != "" {
				cfg.Site.OutputDir = outDir
			}
			if addr != "" {
				cfg.Server.ListenAddr = addr
			}
			return runServe(cmd.Context(), cfg, skipBuild)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "Directory with the processed data files (default: embedded data)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory with the generated site")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Serve the output directory as-is without rebuilding")

	return cmd
}

func runGenerate(ctx context.Context, cfg *config.Config, skipChecks bool) error {
	logger := newRunLogger()

	bundle, err := loadBundle(cfg, logger)
	if err != nil {
		return err
	}

	if skipChecks {
		logger.Warn("Skipping consistency checks")
	} else {
		report := checks.Run(bundle)
		if !report.Passed() {
			printFindings(report)
			return report.Err()
		}
	}

	result, err := buildSite(ctx, cfg, bundle)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== GENERATE RESULTS ===\n")
	fmt.Printf("Build ID: %s\n", result.Manifest.BuildID)
	fmt.Printf("Source: %s\n", bundle.Source)
	fmt.Printf("Sections: %d\n", len(result.Manifest.Sections))
	fmt.Printf("Artifacts: %d\n", len(result.Files))
	fmt.Printf("Output: %s\n", cfg.Site.OutputDir)
	for _, rel := range result.Files {
		logger.Debug("wrote %s", rel)
	}

	fmt.Printf("\n✅ SITE GENERATED\n")
	return nil
}

func runVerify(cfg *config.Config) error {
	logger := newRunLogger()

	bundle, err := loadBundle(cfg, logger)
	if err != nil {
		return err
	}

	report := checks.Run(bundle)
	printFindings(report)
	if !report.Passed() {
		return report.Err()
	}

	fmt.Printf("\n✅ DATASETS CONSISTENT\n")
	return nil
}

func runStats(cfg *config.Config, name, column string) error {
	logger := newRunLogger()

	bundle, err := loadBundle(cfg, logger)
	if err != nil {
		return err
	}

	ds := bundle.Get(name)
	if ds == nil {
		return errors.DatasetMissing(name)
	}
	if ds.Spec.ColumnKindOf(column) != apl.KindCount {
		return errors.InvalidInput(fmt.Sprintf("dataset %s has no numeric column %s", name, column))
	}

	values := ds.Floats(column)
	summary, err := analysis.Describe(values)
	if err != nil {
		return err
	}
	box, err := analysis.BoxStats(values)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== SERIES STATISTICS ===\n")
	fmt.Printf("Dataset: %s\n", ds.Spec.Title)
	fmt.Printf("Column: %s\n", apl.ColumnDisplay(column))
	fmt.Printf("Count: %d\n", summary.Count)
	fmt.Printf("Min / Max: %.0f / %.0f\n", summary.Min, summary.Max)
	fmt.Printf("Mean: %.1f\n", summary.Mean)
	fmt.Printf("Median: %.1f\n", summary.Median)
	fmt.Printf("Std Dev: %.1f\n", summary.StdDev)
	fmt.Printf("Quartiles: %.1f / %.1f / %.1f\n", box.Q1, box.Median, box.Q3)
	fmt.Printf("Fences: %.1f / %.1f\n", box.LowerFence, box.UpperFence)

	if ds.Spec.HasColumn(apl.ColYear) {
		yearInts := ds.Years()
		years := make([]float64, len(yearInts))
		for i, y := range yearInts {
			years[i] = float64(y)
		}
		trend, err := analysis.LinearTrend(years, values)
		if err != nil {
			return err
		}

		lastYear := yearInts[len(yearInts)-1]
		fmt.Printf("\n=== LINEAR TREND ===\n")
		fmt.Printf("Slope: %+.1f per year\n", trend.Beta)
		fmt.Printf("R²: %.3f\n", trend.R2)
		fmt.Printf("Fit at %d: %.0f\n", lastYear, trend.At(float64(lastYear)))
	}

	return nil
}

func runServe(ctx context.Context, cfg *config.Config, skipBuild bool) error {
	logger := newRunLogger()

	bundle, err := loadBundle(cfg, logger)
	if err != nil {
		return err
	}

	if skipBuild {
		logger.Info("Serving %s without rebuilding", cfg.Site.OutputDir)
	} else {
		report := checks.Run(bundle)
		if !report.Passed() {
			printFindings(report)
			return report.Err()
		}
		result, err := buildSite(ctx, cfg, bundle)
		if err != nil {
			return err
		}
		fmt.Printf("Site %s generated into %s\n", result.Manifest.BuildID, cfg.Site.OutputDir)
	}

	mode := cfg.Server.GinMode
	if cfg.Debug {
		mode = "debug"
	}
	srv := server.NewServer(bundle, server.Options{
		SiteDir:         cfg.Site.OutputDir,
		GinMode:         mode,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %s on %s (Ctrl+C to stop)\n", cfg.Site.OutputDir, cfg.Server.ListenAddr)
	return srv.Run(ctx, cfg.Server.ListenAddr)
}

func loadBundle(cfg *config.Config, logger *internal.Logger) (*dataset.Bundle, error) {
	source := cfg.Data.Dir
	if source == "" {
		source = "embedded data"
	}
	fmt.Printf("Loading datasets from %s...\n", source)

	bundle, err := dataset.NewLoader(cfg.Data.Dir).Load()
	if err != nil {
		return nil, err
	}
	for _, ds := range bundle.All() {
		logger.Debug("dataset %s: %d rows", ds.Spec.Name, ds.Len())
	}
	return bundle, nil
}

func buildSite(ctx context.Context, cfg *config.Config, bundle *dataset.Bundle) (*site.Result, error) {
	builder, err := site.NewBuilder(site.Options{
		OutputDir: cfg.Site.OutputDir,
		PlotlySrc: cfg.Site.PlotlySrc,
		VendorDir: cfg.Site.VendorDir,
		Workers:   int64(cfg.Site.Workers),
	})
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx, bundle)
}

func printFindings(report *checks.Report) {
	fmt.Printf("\n=== CONSISTENCY RESULTS ===\n")
	for _, finding := range report.Findings {
		mark := "✅"
		if !finding.Passed {
			mark = "❌"
		}
		fmt.Printf("%s %s: %s\n", mark, finding.Check, finding.Detail)
	}
}
