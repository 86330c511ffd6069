package domain

import "time"

// StatDurations are the test lengths, in seconds, that personal bests are tracked for.
var StatDurations = []int{10, 30, 60}

// TestResult is one finished typing test. Username is captured at write time
// and is not updated when the user later renames.
type TestResult struct {
	ID             string
	UserID         string
	Username       string
	WPM            float64
	RawWPM         float64
	Accuracy       float64
	Duration       int
	CorrectChars   int
	IncorrectChars int
	Timestamp      time.Time
}

// PageRequest selects a zero-based page of a result listing.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// ResultPage is one page of test results plus the totals needed for paging.
type ResultPage struct {
	Results       []TestResult
	Page          int
	Size          int
	TotalElements int64
}

// TotalPages is the number of pages of Size needed to cover TotalElements.
func (p ResultPage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// UserStats holds personal-best WPM per tracked duration.
type UserStats struct {
	MaxWPM10 float64
	MaxWPM30 float64
	MaxWPM60 float64
}
