package docintel

import "context"

// AnalyzeRequest is the model selector, document source and locale hint of one analysis.
type AnalyzeRequest struct {
	ModelID     string
	DocumentURL string
	Locale      string
}

// Analyzer submits documents for asynchronous analysis.
type Analyzer interface {
	BeginAnalyzeDocumentFromURL(ctx context.Context, req AnalyzeRequest) (Poller, error)
}

// Poller is a handle on an in-progress analysis.
type Poller interface {
	// PollUntilDone blocks until the job is terminal or ctx is done.
	PollUntilDone(ctx context.Context) (*AnalyzeResult, error)
}
