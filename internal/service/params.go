package service

import "time"

// LogFilter narrows the event log listing. Zero values mean "no bound".
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}
