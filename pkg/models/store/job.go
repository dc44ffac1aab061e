package store

import "time"

type Job struct {
	ID        int64
	JobNumber string
	Company   string
	Stage     string
	Amount    float64
	Currency  string
	CreatedAt time.Time
}

type JobStageTotal struct {
	Stage  string
	Count  int64
	Amount float64
}
