package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/app"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/config"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/drive"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/export"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pipeline"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/service"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "First day of the range (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "Last day of the range (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:    "cost-basis",
			Usage:   "Fixed cost basis; the price book is used when empty",
			EnvVars: []string{"SETTLEMENT_COST_BASIS"},
		},
		&cli.StringSliceFlag{
			Name:  "file",
			Usage: "Read sales from a local CSV or XLSX export instead of the spreadsheet",
		},
		&cli.BoolFlag{
			Name:  "drive",
			Usage: "Download exports from the configured Google Drive folder first",
		},
		&cli.StringFlag{
			Name:  "reported",
			Usage: "Reported revenue for file sources without a takings column",
		},
		newDBURLFlag(false),
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate one settlement report",
		Flags: append(sourceFlags(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, json, csv or xlsx",
				Value: "text",
			},
		),
		Before: initDB,
		After:  closeDB,
		Action: runReport,
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Report every settlement period in a range",
		Flags: append(sourceFlags(),
			&cli.IntFlag{
				Name:    "days",
				Usage:   "Period length in days",
				EnvVars: []string{"SETTLEMENT_PERIOD_DAYS"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "Concurrent periods",
				EnvVars: []string{"SETTLEMENT_WORKERS"},
			},
		),
		Before: initDB,
		After:  closeDB,
		Action: runBatch,
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, cfg)
	if err != nil {
		return err
	}

	out := c.App.Writer
	switch strings.ToLower(c.String("format")) {
	case "text":
		report, err := svc.Generate(c.Context, req)
		if err != nil {
			return err
		}
		fmt.Fprint(out, export.RenderText(report))
	case "json":
		report, err := svc.Generate(c.Context, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(settlement.ToDisplay(report))
	case "csv":
		report, err := svc.Generate(c.Context, req)
		if err != nil {
			return err
		}
		return export.WriteCSV(out, report)
	case "xlsx":
		result, err := svc.Export(c.Context, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Path)
		if result.ObjectKey != "" {
			fmt.Fprintln(out, result.ObjectKey)
		}
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
	return nil
}

func runBatch(c *cli.Context) error {
	cfg := config.Load()
	svc, err := newService(c, cfg)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, cfg)
	if err != nil {
		return err
	}

	pcfg := pipeline.Config{PeriodDays: cfg.Settlement.PeriodDays, WorkerCount: cfg.Settlement.Workers}
	if days := c.Int("days"); days > 0 {
		pcfg.PeriodDays = days
	}
	if workers := c.Int("workers"); workers > 0 {
		pcfg.WorkerCount = workers
	}

	orchestrator := pipeline.NewOrchestrator(pcfg, func(ctx context.Context, rng domain.DateRange) (*domain.Report, error) {
		return svc.Generate(ctx, service.ReportRequest{Range: rng, CostBasis: req.CostBasis})
	})
	results, err := orchestrator.Run(c.Context, req.Range)
	if err != nil {
		return err
	}

	out := c.App.Writer
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "%s：失敗 %v\n\n", res.Range, res.Err)
			continue
		}
		fmt.Fprintln(out, export.RenderText(res.Report))
	}

	totals := pipeline.Totals(results)
	fmt.Fprintf(out, "期數：%d（失敗 %d）\n", totals.Periods, totals.Failed)
	fmt.Fprintf(out, "總銷售數量：%d 份\n", totals.TotalQuantity)
	fmt.Fprintf(out, "總銷售金額：$%s\n", totals.TotalSales.StringFixed(0))
	fmt.Fprintf(out, "利潤：$%s\n", totals.Profit.StringFixed(0))
	if totals.Failed > 0 {
		return fmt.Errorf("%d of %d periods failed", totals.Failed, totals.Periods)
	}
	return nil
}

func newService(c *cli.Context, cfg *config.Config) (*service.ReportService, error) {
	opts := app.Options{
		Files:   c.StringSlice("file"),
		Runs:    runRepository(c),
		NoCache: true,
	}

	if c.Bool("drive") {
		files, err := downloadDriveExports(c, cfg)
		if err != nil {
			return nil, err
		}
		opts.Files = append(opts.Files, files...)
	}

	if raw := strings.TrimSpace(c.String("reported")); raw != "" {
		reported, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --reported %q: %w", raw, err)
		}
		opts.Reported = &reported
	}

	return app.NewReportService(c.Context, cfg, opts)
}

func downloadDriveExports(c *cli.Context, cfg *config.Config) ([]string, error) {
	svc, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	files, err := drive.NewDownloader(svc).DownloadFolder(c.Context, drive.DownloadOptions{
		FolderID:    cfg.Drive.FolderID,
		DownloadDir: cfg.Drive.DownloadDir,
	})
	if err != nil {
		return nil, fmt.Errorf("drive sync: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no exports found in drive folder %s", cfg.Drive.FolderID)
	}
	return files, nil
}

// buildRequest reads --start, --end and --cost-basis. Without a range the
// settlement period ending today is used.
func buildRequest(c *cli.Context, cfg *config.Config) (service.ReportRequest, error) {
	var req service.ReportRequest
	loc := cfg.Settlement.Location()

	start, end := c.String("start"), c.String("end")
	switch {
	case start == "" && end == "":
		rng, err := settlement.PeriodEndingAt(time.Now().In(loc), cfg.Settlement.PeriodDays)
		if err != nil {
			return req, err
		}
		req.Range = rng
	case start == "" || end == "":
		return req, fmt.Errorf("--start and --end must be given together")
	default:
		rng, err := domain.ParseDateRange(start, end, loc)
		if err != nil {
			return req, err
		}
		req.Range = rng
	}

	if raw := strings.TrimSpace(c.String("cost-basis")); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return req, fmt.Errorf("invalid --cost-basis %q: %w", raw, err)
		}
		req.CostBasis = &cost
	}

	log.Debug().Str("range", req.Range.String()).Msg("settle: request built")
	return req, nil
}
