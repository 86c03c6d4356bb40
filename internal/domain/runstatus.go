package domain

// RunStatus is the terminal state of one pipeline invocation.
type RunStatus string

const (
	// RunSkippedNonBusinessDay: weekend or public holiday, nothing expected.
	RunSkippedNonBusinessDay RunStatus = "skipped_non_business_day"
	// RunSkippedAlreadyCaptured: both quotation kinds already stored for the
	// run date and the run was not forced.
	RunSkippedAlreadyCaptured RunStatus = "skipped_already_captured"
	// RunDone: the pipeline ran to completion, possibly with degraded stages.
	RunDone RunStatus = "done"
)
