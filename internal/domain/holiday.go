package domain

import "time"

// Holiday is one public holiday as published by the calendar API.
type Holiday struct {
	Date      time.Time
	Name      string
	LocalName string
}
