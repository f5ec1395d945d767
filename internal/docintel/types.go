package docintel

// AnalyzeResult is the subset of the service's analyze result this tool reads.
type AnalyzeResult struct {
	APIVersion string
	ModelID    string
	Documents  []AnalyzedDocument
}

// AnalyzedDocument is one document recognized in the submission.
type AnalyzedDocument struct {
	DocType    string
	Confidence *float64
	// Fields maps field names to values. A nil entry means the service sent the
	// field as null and is treated as absent.
	Fields map[string]*DocumentField
}

// DocumentField is a single extracted value. Typed value* members are ignored; Content is the raw text.
type DocumentField struct {
	Type       string
	Content    *string
	Confidence *float64
}
