package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Clark-Hu/readlog/internal/analytics"
	"github.com/Clark-Hu/readlog/internal/domain"
	"github.com/Clark-Hu/readlog/internal/export"
	"github.com/Clark-Hu/readlog/internal/repository"
)

// migrateCmd applies the embedded schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

// statsCmd prints the analytics report for one user
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a user's reading analytics as JSON",
	Long: `Computes the same report GET /analytics returns.

Example:
  readlog stats --user abc123 --year 2024 --scale whole`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

// exportCmd writes a user's journal as CSV
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's reviews as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	statsUser  string
	statsYear  int
	statsScale string

	exportUser string
	exportOut  string
)

func init() {
	statsCmd.Flags().StringVar(&statsUser, "user", "", "User id (required)")
	statsCmd.Flags().IntVar(&statsYear, "year", 0, "Year to report on (default: current year)")
	statsCmd.Flags().StringVar(&statsScale, "scale", "", "Rating scale: half or whole (default: RATING_SCALE)")
	_ = statsCmd.MarkFlagRequired("user")

	exportCmd.Flags().StringVar(&exportUser, "user", "", "User id (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("user")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	applied, err := st.Migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	}
	for _, version := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opts, err := statsOptions(cfg.RatingScale, statsScale, statsYear)
	if err != nil {
		return err
	}

	repo := repository.New(st)
	reviews, err := repo.Reviews.All(ctx, statsUser)
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}
	goals, err := repo.Goals.List(ctx, statsUser)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}

	report := buildReport(reviews, goals, opts, cfg.DefaultGoal)
	logger.Debug("computed report", zap.String("user", statsUser), zap.Int("year", report.Year), zap.Int("records", len(reviews)))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func statsOptions(fallback analytics.RatingScale, scaleName string, year int) (analytics.Options, error) {
	opts := analytics.Options{Scale: fallback, Now: time.Now()}
	if scaleName != "" {
		scale, err := analytics.ParseScale(scaleName)
		if err != nil {
			return opts, err
		}
		opts.Scale = scale
	}
	if year != 0 {
		opts.Year = &year
	}
	return opts, nil
}

// buildReport resolves the year first so the goal matches the year reported.
func buildReport(reviews []domain.Review, goals []domain.Goal, opts analytics.Options, defaultGoal int) analytics.Report {
	year := analytics.ResolveYear(opts.Year, analytics.AvailableYears(reviews, opts.Now), opts.Now)
	opts.Year = &year
	opts.Goal = defaultGoal
	for _, g := range goals {
		if g.Year == year {
			opts.Goal = g.Target
		}
	}
	return analytics.Compute(reviews, opts)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	reviews, err := repository.New(st).Reviews.All(ctx, exportUser)
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteReviews(w, reviews); err != nil {
		return err
	}
	logger.Info("export written", zap.String("user", exportUser), zap.Int("reviews", len(reviews)))
	return nil
}
