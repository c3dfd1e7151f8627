package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued   JobStatus = "QUEUED"    // waiting on a worker
	JobStatusRunning  JobStatus = "RUNNING"   // in progress
	JobStatusTextOK   JobStatus = "TEXT_OK"   // stage 1 completed (text extracted)
	JobStatusFieldsOK JobStatus = "FIELDS_OK" // stage 2 completed (fields extracted)
	JobStatusSkipped  JobStatus = "SKIPPED"   // content hash already processed
	JobStatusFailed   JobStatus = "FAILED"    // terminal failure
)
