package constants

// JobStatus is the canonical status of an asynchronous processing job.
type JobStatus string

// Stable values (reported verbatim by the jobs API).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOCROK   JobStatus = "OCR_OK"  // pages acquired, core not finished yet
	JobStatusDone    JobStatus = "DONE"    // results available
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// Terminal reports whether no further transition is expected.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// FieldStatus is the per-field verdict of the accuracy scorer.
type FieldStatus string

const (
	FieldCorrect      FieldStatus = "Correct"
	FieldIncorrect    FieldStatus = "Incorrect"
	FieldNotExtracted FieldStatus = "Not Extracted"
	FieldEmpty        FieldStatus = "Empty"
)
