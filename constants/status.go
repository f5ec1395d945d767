package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning   JobStatus = "RUNNING"   // submitted, waiting on the service
	JobStatusSucceeded JobStatus = "SUCCEEDED" // records written
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)

// Defaults used when nothing overrides them.
const (
	DefaultModelID     = "prebuilt-invoice"
	DefaultLocale      = "en-US"
	DefaultDocumentURL = "https://github.com/MicrosoftLearning/mslearn-ai-document-intelligence/blob/main/Labfiles/01-prebuild-models/sample-invoice/sample-invoice.pdf?raw=true"
	DefaultOutputPath  = "invoices_extracted.json"
)
