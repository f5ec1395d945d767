package invoice

import (
	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/docintel"
)

// Project turns the service result into one record per document, numbered from 1 in
// service order. Only allow-listed fields are copied; lookups are independent.
// A field the service sent as null counts as absent.
func Project(result *docintel.AnalyzeResult) []DocumentRecord {
	if result == nil {
		return []DocumentRecord{}
	}
	records := make([]DocumentRecord, 0, len(result.Documents))
	for i, doc := range result.Documents {
		rec := DocumentRecord{
			DocumentNumber: i + 1,
			Fields:         make(map[constants.InvoiceField]*ExtractedField, len(constants.InvoiceFields)),
		}
		for _, name := range constants.InvoiceFields {
			src := doc.Fields[string(name)]
			if src == nil {
				continue
			}
			rec.Fields[name] = &ExtractedField{
				Content:    copyPtr(src.Content),
				Confidence: copyPtr(src.Confidence),
			}
		}
		records = append(records, rec)
	}
	return records
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
