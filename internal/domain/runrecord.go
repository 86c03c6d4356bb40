package domain

import "time"

// RunRecord is one row of the append-only audit log; every terminal pipeline
// state writes exactly one. Rows are never updated or deleted.
type RunRecord struct {
	ID               string
	RunDate          time.Time
	RunTime          time.Time
	Status           RunStatus
	ExchangeCaptured bool
	GoldCaptured     bool
	ExchangeSource   Source
	GoldSource       Source
	Notes            string
}
