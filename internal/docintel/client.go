// Package docintel adapts the Azure AI Document Intelligence SDK to the small
// Analyzer/Poller surface the extractor needs.
package docintel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azdocumentintelligence"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Config for the Document Intelligence client.
type Config struct {
	Endpoint     string        // e.g. https://<resource>.cognitiveservices.azure.com/
	Key          string        // resource key
	Timeout      time.Duration // per-try timeout of a single HTTP request
	PollInterval time.Duration // wait between polls when the service sends no Retry-After
	MaxRetries   int32         // 0 keeps the SDK default; negative disables retries
	HTTPClient   *http.Client  // optional transport
}

type Client struct {
	cfg    Config
	sdk    *azdocumentintelligence.Client
	logger *slog.Logger
}

var _ Analyzer = (*Client)(nil)

// NewClient builds an authenticated client. It fails fast on a missing endpoint or key;
// the key itself is only checked by the service on the first call.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Key = strings.TrimSpace(cfg.Key)
	if cfg.Endpoint == "" {
		return nil, common.ConfigErrorf("document intelligence endpoint is required")
	}
	if cfg.Key == "" {
		return nil, common.ConfigErrorf("document intelligence key is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, common.ConfigErrorf("invalid endpoint %q", cfg.Endpoint)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := &azdocumentintelligence.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries: cfg.MaxRetries,
				TryTimeout: cfg.Timeout,
			},
		},
	}
	if cfg.HTTPClient != nil {
		opts.Transport = cfg.HTTPClient
	}

	sdk, err := azdocumentintelligence.NewClientWithKey(cfg.Endpoint, azcore.NewKeyCredential(cfg.Key), opts)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "create document intelligence client", fmt.Errorf("%w: %w", common.ErrConfig, err))
	}
	return &Client{
		cfg:    cfg,
		sdk:    sdk,
		logger: logger,
	}, nil
}

// BeginAnalyzeDocumentFromURL submits req and returns a poller for the created operation.
func (c *Client) BeginAnalyzeDocumentFromURL(ctx context.Context, req AnalyzeRequest) (Poller, error) {
	if strings.TrimSpace(req.ModelID) == "" {
		return nil, common.ConfigErrorf("model id is required")
	}
	if strings.TrimSpace(req.DocumentURL) == "" {
		return nil, common.ConfigErrorf("document url is required")
	}

	start := time.Now()
	jobID := common.JobIDFromContext(ctx)
	c.logger.Info("docintel.analyze.submit",
		"req_id", common.RequestIDFromContext(ctx),
		"job_id", jobID,
		"model", req.ModelID,
		"locale", req.Locale,
		"document_url", req.DocumentURL,
	)

	opts := &azdocumentintelligence.ClientBeginAnalyzeDocumentOptions{}
	if req.Locale != "" {
		opts.Locale = to.Ptr(req.Locale)
	}
	poller, err := c.sdk.BeginAnalyzeDocument(withRequestID(ctx), req.ModelID,
		azdocumentintelligence.AnalyzeDocumentRequest{URLSource: to.Ptr(req.DocumentURL)}, opts)
	if err != nil {
		err = classify(ctx, "submit analyze", err)
		c.logger.Error("docintel.analyze.submit_failed",
			"job_id", jobID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	c.logger.Info("docintel.analyze.accepted",
		"job_id", jobID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Operation{client: c, poller: poller}, nil
}

// withRequestID forwards the run's request id as the client request id header.
func withRequestID(ctx context.Context) context.Context {
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		return ctx
	}
	return policy.WithHTTPHeader(ctx, http.Header{"x-ms-client-request-id": []string{reqID}})
}
