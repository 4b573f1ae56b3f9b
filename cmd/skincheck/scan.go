package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kapu/skincheck-go/internal/adapter"
	"github.com/kapu/skincheck-go/internal/app"
	"github.com/kapu/skincheck-go/internal/config"
	"github.com/kapu/skincheck-go/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanFile       string
	scanSkin       string
	scanNoRemote   bool
	scanNoEnrich   bool
	scanShowSource bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze one recognized ingredient label",
	Long:  "Reads OCR text from --file or stdin, prints the ingredient list, remote analysis, per-ingredient details and a product summary.",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFile, "file", "f", "", "file with the recognized label text (default stdin)")
	scanCmd.Flags().StringVarP(&scanSkin, "skin", "s", "", "comma-separated skin types, overrides SKIN_TYPES")
	scanCmd.Flags().BoolVar(&scanNoRemote, "no-remote", false, "skip the remote analysis service")
	scanCmd.Flags().BoolVar(&scanNoEnrich, "no-enrich", false, "skip the generative tier")
	scanCmd.Flags().BoolVar(&scanShowSource, "show-source", false, "show where each value came from")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if scanSkin != "" {
		// A CLI profile replaces whatever Redis holds.
		cfg.Profile.SkinTypes = strings.Split(scanSkin, ",")
		cfg.Redis.Enabled = false
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	raw, err := readInput(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buildCtx, buildCancel := context.WithTimeout(ctx, 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger, app.Options{
		DisableRemote:     scanNoRemote,
		DisableGenerative: scanNoEnrich,
	})
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		return err
	}
	defer container.Close()

	out := cmd.OutOrStdout()
	formatter := adapter.NewReportFormatter(scanShowSource)
	analyzer := container.Analyzer

	session, err := analyzer.Scan(ctx, raw)
	if err != nil {
		fmt.Fprintln(out, formatter.FormatFailure(err))
		return err
	}
	fmt.Fprintln(out, formatter.FormatCandidates(session.Snapshot(), session.Profile, session.CreatedAt))

	if analyzer.RemoteEnabled() {
		if _, err := analyzer.Analyze(ctx, session); err != nil {
			// The session keeps its candidates; enrichment continues locally.
			fmt.Fprintln(out, "\n"+formatter.FormatFailure(err))
		} else {
			fmt.Fprintln(out, "\n"+formatter.FormatMatches(session.Analysis()))
		}
	}

	fmt.Fprintln(out)
	for ev := range analyzer.Enrich(ctx, session) {
		if line := formatter.FormatEvent(ev); line != "" {
			fmt.Fprintln(out, line)
		}
	}
	if ctx.Err() != nil {
		logger.Info("Scan cancelled", zap.String("session", session.ID))
		return nil
	}

	fmt.Fprintln(out, "\n"+formatter.FormatDetails(session.Snapshot()))
	if summary := formatter.FormatSummary(analyzer.Summary(ctx, session)); summary != "" {
		fmt.Fprintln(out, "\n"+summary)
	}
	return nil
}

func readInput(stdin io.Reader) (string, error) {
	if scanFile != "" {
		data, err := os.ReadFile(scanFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", scanFile, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
