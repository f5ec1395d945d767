package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/docintel"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// AnalyzerFactory builds the remote analyzer once the configuration is known to be valid.
type AnalyzerFactory func(cfg docintel.Config, logger *slog.Logger) (docintel.Analyzer, error)

// NewDocIntelAnalyzer is the production AnalyzerFactory.
func NewDocIntelAnalyzer(cfg docintel.Config, logger *slog.Logger) (docintel.Analyzer, error) {
	c, err := docintel.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Summary describes a finished run.
type Summary struct {
	JobID     uuid.UUID // zero when history is disabled
	Documents int
	RequestID string
	JSONPath  string
}

// Processor coordinates client setup, analysis, projection and output for one run.
type Processor struct {
	cfg         *common.Config
	newAnalyzer AnalyzerFactory
	jobsRepo    repository.ExtractJobRepository
	logger      *slog.Logger
	out         io.Writer
}

// NewProcessor wires a Processor. jobsRepo may be nil to skip run history; out receives
// the human-readable progress lines and defaults to stdout.
func NewProcessor(
	cfg *common.Config,
	newAnalyzer AnalyzerFactory,
	jobsRepo repository.ExtractJobRepository,
	logger *slog.Logger,
	out io.Writer,
) *Processor {
	if newAnalyzer == nil {
		newAnalyzer = NewDocIntelAnalyzer
	}
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Processor{
		cfg:         cfg,
		newAnalyzer: newAnalyzer,
		jobsRepo:    jobsRepo,
		logger:      logger,
		out:         out,
	}
}

// Run executes the whole job. Configuration is validated before any client exists,
// so a missing ENDPOINT or KEY never reaches the network.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	if err := p.cfg.Validate(); err != nil {
		p.logger.Error("pipeline.config.invalid", "error", err)
		return nil, err
	}
	start := time.Now()
	summary := &Summary{RequestID: uuid.NewString(), JSONPath: p.cfg.Output.JSONPath}
	ctx = common.WithRequestID(ctx, summary.RequestID)

	analyzer, err := p.newAnalyzer(docintel.Config{
		Endpoint:     p.cfg.Service.Endpoint,
		Key:          p.cfg.Service.Key,
		Timeout:      p.cfg.Service.HTTPTimeout,
		PollInterval: p.cfg.Analysis.PollInterval,
	}, p.logger)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	req := docintel.AnalyzeRequest{
		ModelID:     p.cfg.Analysis.ModelID,
		DocumentURL: p.cfg.Analysis.DocumentURL,
		Locale:      p.cfg.Analysis.Locale,
	}

	if p.jobsRepo != nil {
		job, err := p.jobsRepo.Start(ctx, repository.StartParams{
			ModelID:     req.ModelID,
			DocumentURL: req.DocumentURL,
			Locale:      req.Locale,
		})
		if err != nil {
			return nil, fmt.Errorf("record job start: %w", err)
		}
		summary.JobID = job.ID
		ctx = common.WithJobID(ctx, job.ID.String())
	}

	result, err := invoice.NewInvoker(analyzer, p.cfg.Analysis.Timeout, p.logger).Analyze(ctx, req)
	if err != nil {
		return nil, p.fail(ctx, summary.JobID, err)
	}

	records := invoice.Project(result)
	summary.Documents = len(records)
	fmt.Fprintf(p.out, "Extracted document(s): %d\n", len(records))

	if _, err := export.WriteJSON(p.cfg.Output.JSONPath, records); err != nil {
		return nil, p.fail(ctx, summary.JobID, err)
	}
	fmt.Fprintf(p.out, "Saved %s\n", p.cfg.Output.JSONPath)

	if p.cfg.Output.XLSXPath != "" {
		if err := export.WriteXLSX(p.cfg.Output.XLSXPath, records, p.logger); err != nil {
			return nil, p.fail(ctx, summary.JobID, err)
		}
		fmt.Fprintf(p.out, "Saved %s\n", p.cfg.Output.XLSXPath)
	}

	if p.jobsRepo != nil {
		if err := p.jobsRepo.FinishSuccess(ctx, summary.JobID, summary.Documents, summary.JSONPath); err != nil {
			return nil, fmt.Errorf("record job success: %w", err)
		}
	}

	p.logger.Info("pipeline.run.ok",
		"req_id", summary.RequestID,
		"job_id", common.JobIDFromContext(ctx),
		"documents", summary.Documents,
		"output", summary.JSONPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	fmt.Fprintln(p.out, "Analysis Complete!")
	return summary, nil
}

// fail records the failure on the job row (when history is on) and returns err unchanged.
func (p *Processor) fail(ctx context.Context, jobID uuid.UUID, err error) error {
	p.logger.Error("pipeline.run.failed", "req_id", common.RequestIDFromContext(ctx), "job_id", common.JobIDFromContext(ctx), "error", err)
	if p.jobsRepo == nil || jobID == uuid.Nil {
		return err
	}
	// the run context may already be expired
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := p.jobsRepo.FinishFailure(recCtx, jobID, err.Error()); rerr != nil {
		p.logger.Warn("pipeline.record_failure.error", "job_id", jobID, "error", rerr)
	}
	return err
}
