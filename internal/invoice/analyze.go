package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/docintel"
)

// Invoker runs one analysis to completion with a bounded wait.
type Invoker struct {
	analyzer docintel.Analyzer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewInvoker wraps analyzer. A non-positive timeout waits until ctx is done.
func NewInvoker(analyzer docintel.Analyzer, timeout time.Duration, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{analyzer: analyzer, timeout: timeout, logger: logger}
}

// Analyze submits req and blocks until the service reports a terminal state.
func (i *Invoker) Analyze(ctx context.Context, req docintel.AnalyzeRequest) (*docintel.AnalyzeResult, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	start := time.Now()

	poller, err := i.analyzer.BeginAnalyzeDocumentFromURL(ctx, req)
	if err != nil {
		return nil, i.mapDeadline(fmt.Errorf("begin analyze: %w", err))
	}
	result, err := poller.PollUntilDone(ctx)
	if err != nil {
		return nil, i.mapDeadline(fmt.Errorf("poll analyze: %w", err))
	}

	i.logger.Info("invoice.analyze.ok",
		"job_id", common.JobIDFromContext(ctx),
		"model", req.ModelID,
		"documents", len(result.Documents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (i *Invoker) mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewAppError(common.CodeTimeout,
			fmt.Sprintf("analysis did not finish within %s", i.timeout),
			fmt.Errorf("%w: %w", common.ErrTimeout, err))
	}
	return err
}
