package constants

// JobStatus is the canonical status for rows in the extraction history store.
type JobStatus string

// Stable values (store these exact strings in the DB).
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // extraction completed, workbook produced
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
