package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/docintel"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("invoice-extract failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoice-extract",
		Usage: "extract invoice fields with Azure AI Document Intelligence and save them as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file to load before reading the environment"},
			&cli.StringFlag{Name: "url", Usage: "document URL to analyze (env DOCUMENT_URL)"},
			&cli.StringFlag{Name: "model", Usage: "model id (env MODEL_ID)"},
			&cli.StringFlag{Name: "locale", Usage: "locale hint (env LOCALE)"},
			&cli.StringFlag{Name: "out", Usage: "JSON output path (env OUTPUT_PATH)"},
			&cli.StringFlag{Name: "xlsx", Usage: "also write an XLSX workbook to this path (env XLSX_PATH)"},
			&cli.DurationFlag{Name: "timeout", Usage: "maximum wait for the analysis (env ANALYZE_TIMEOUT)"},
			&cli.DurationFlag{Name: "poll-interval", Usage: "wait between status polls (env POLL_INTERVAL)"},
			&cli.StringFlag{Name: "db", Usage: "run-history database: sqlite path or postgres:// URL (env DB_URL)"},
			&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "list recorded runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to show"},
				},
				Action: historyAction,
			},
		},
	}
}

// setup loads .env and the environment, applies flag overrides and installs the logger.
func setup(c *cli.Context) (*common.Config, *slog.Logger, error) {
	if err := common.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, nil, err
	}
	cfg := common.LoadConfig()
	applyFlags(c, cfg)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)
	docintel.ForwardSDKLogs(logger)
	return cfg, logger, nil
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(c *cli.Context, cfg *common.Config) {
	if c.IsSet("url") {
		cfg.Override("DOCUMENT_URL", func(cfg *common.Config) { cfg.Analysis.DocumentURL = c.String("url") })
	}
	if c.IsSet("model") {
		cfg.Override("MODEL_ID", func(cfg *common.Config) { cfg.Analysis.ModelID = c.String("model") })
	}
	if c.IsSet("locale") {
		cfg.Override("LOCALE", func(cfg *common.Config) { cfg.Analysis.Locale = c.String("locale") })
	}
	if c.IsSet("out") {
		cfg.Override("OUTPUT_PATH", func(cfg *common.Config) { cfg.Output.JSONPath = c.String("out") })
	}
	if c.IsSet("xlsx") {
		cfg.Override("XLSX_PATH", func(cfg *common.Config) { cfg.Output.XLSXPath = c.String("xlsx") })
	}
	if c.IsSet("timeout") {
		cfg.Override("ANALYZE_TIMEOUT", func(cfg *common.Config) { cfg.Analysis.Timeout = c.Duration("timeout") })
	}
	if c.IsSet("poll-interval") {
		cfg.Override("POLL_INTERVAL", func(cfg *common.Config) { cfg.Analysis.PollInterval = c.Duration("poll-interval") })
	}
	if c.IsSet("db") {
		cfg.Override("DB_URL", func(cfg *common.Config) { cfg.Database.DSN = c.String("db") })
	}
	if c.Bool("quiet") {
		cfg.Override("LOG_LEVEL", func(cfg *common.Config) { cfg.LogLevel = slog.LevelError })
	}
}

func runAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	// fail before opening anything else
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jobsRepo repo.ExtractJobRepository
	if cfg.Database.DSN != "" {
		db, err := repo.Open(ctx, repo.Config{DSN: cfg.Database.DSN, DialTimeout: cfg.Database.DialTimeout}, logger)
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer repo.Close(db, logger)
		jobsRepo = repo.NewExtractJobRepository(db, logger)
	}

	p := pipeline.NewProcessor(cfg, pipeline.NewDocIntelAnalyzer, jobsRepo, logger, os.Stdout)
	_, err = p.Run(ctx)
	return err
}

func historyAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return common.ConfigErrorf("history needs DB_URL or --db")
	}

	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	db, err := repo.Open(ctx, repo.Config{DSN: cfg.Database.DSN, DialTimeout: cfg.Database.DialTimeout}, logger)
	if err != nil {
		return fmt.Errorf("open history db: %w", err)
	}
	defer repo.Close(db, logger)

	jobs, err := repo.NewExtractJobRepository(db, logger).ListRecent(ctx, c.Int("limit"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tSTARTED\tSTATUS\tDOCS\tMODEL\tOUTPUT / ERROR")
	for _, j := range jobs {
		docs := "-"
		if j.DocumentCount != nil {
			docs = fmt.Sprint(*j.DocumentCount)
		}
		detail := j.OutputPath
		if j.ErrorMessage != "" {
			detail = j.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.StartedAt.Format(time.RFC3339), j.Status, docs, j.ModelID, detail)
	}
	return w.Flush()
}
