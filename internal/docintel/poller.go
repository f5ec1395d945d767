package docintel

import (
	"context"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azdocumentintelligence"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Operation is one submitted analysis. The SDK poller follows Operation-Location
// and honours Retry-After.
type Operation struct {
	client *Client
	poller *runtime.Poller[azdocumentintelligence.ClientAnalyzeDocumentResponse]
}

var _ Poller = (*Operation)(nil)

func (o *Operation) PollUntilDone(ctx context.Context) (*AnalyzeResult, error) {
	log := o.client.logger
	jobID := common.JobIDFromContext(ctx)
	start := time.Now()

	resp, err := o.poller.PollUntilDone(withRequestID(ctx), &runtime.PollUntilDoneOptions{
		Frequency: o.client.cfg.PollInterval,
	})
	if err != nil {
		err = classify(ctx, "poll analyze", err)
		log.Error("docintel.poll.failed",
			"job_id", jobID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	if resp.AnalyzeResult == nil {
		return nil, common.NewAppError(common.CodeService, "succeeded operation without analyzeResult", common.ErrService)
	}

	result := fromSDK(resp.AnalyzeResult)
	log.Info("docintel.poll.succeeded",
		"job_id", jobID,
		"documents", len(result.Documents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func fromSDK(in *azdocumentintelligence.AnalyzeResult) *AnalyzeResult {
	out := &AnalyzeResult{
		APIVersion: deref(in.APIVersion),
		ModelID:    deref(in.ModelID),
		Documents:  make([]AnalyzedDocument, 0, len(in.Documents)),
	}
	for _, d := range in.Documents {
		if d == nil {
			out.Documents = append(out.Documents, AnalyzedDocument{})
			continue
		}
		doc := AnalyzedDocument{
			DocType:    deref(d.DocType),
			Confidence: widen(d.Confidence),
		}
		if d.Fields != nil {
			doc.Fields = make(map[string]*DocumentField, len(d.Fields))
			for name, f := range d.Fields {
				if f == nil {
					doc.Fields[name] = nil
					continue
				}
				field := &DocumentField{
					Content:    f.Content,
					Confidence: widen(f.Confidence),
				}
				if f.Type != nil {
					field.Type = string(*f.Type)
				}
				doc.Fields[name] = field
			}
		}
		out.Documents = append(out.Documents, doc)
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// widen converts an SDK confidence to float64. float32 values go through their
// shortest decimal form so 0.98 stays 0.98 rather than 0.9800000190734863.
func widen[F float32 | float64](p *F) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	if _, ok := any(*p).(float32); ok {
		v, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'g', -1, 32), 64)
	}
	return &v
}
