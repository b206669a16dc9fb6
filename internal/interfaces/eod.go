package interfaces

import (
	"context"
	"time"
)

// EodSummarizer rolls one UTC day of the order journal up into a CSV report.
type EodSummarizer interface {
	// SummarizeDay returns the report path, or "" when no orders were journaled.
	SummarizeDay(ctx context.Context, day time.Time) (csvPath string, err error)
	// ShouldRunNow reports whether the cutoff for now's day has passed and
	// the report does not exist yet.
	ShouldRunNow(now time.Time) (shouldRun bool, csvPath string)
}
