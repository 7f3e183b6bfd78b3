package loader

import (
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
)

// PartRun represents the replay of a single part
type PartRun struct {
	Part      *discovery.DiscoveredFile
	StartTime time.Time
	EndTime   time.Time
	Status    PartStatus
	Error     error // Non-nil if the part failed
}

// PartStatus represents the current state of a part replay
type PartStatus int

const (
	PartPending PartStatus = iota
	PartLoaded
	PartSkipped
	PartFailed
)

// String returns a string representation of PartStatus
func (ps PartStatus) String() string {
	switch ps {
	case PartPending:
		return "pending"
	case PartLoaded:
		return "loaded"
	case PartSkipped:
		return "skipped"
	case PartFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Duration returns the replay duration
func (pr *PartRun) Duration() time.Duration {
	if pr.EndTime.IsZero() {
		return time.Since(pr.StartTime)
	}
	return pr.EndTime.Sub(pr.StartTime)
}

// Summary summarizes a load run
type Summary struct {
	TotalParts    int
	LoadedParts   int
	SkippedParts  int
	FailedParts   int
	LoadedBytes   int64
	TotalDuration time.Duration
}

// AllLoaded returns true if no part failed
func (s *Summary) AllLoaded() bool {
	return s.FailedParts == 0
}

// Summarize creates a summary of part replays
func Summarize(runs []*PartRun) *Summary {
	summary := &Summary{
		TotalParts: len(runs),
	}

	for _, run := range runs {
		summary.TotalDuration += run.Duration()

		switch run.Status {
		case PartLoaded:
			summary.LoadedParts++
			summary.LoadedBytes += run.Part.Size
		case PartSkipped:
			summary.SkippedParts++
		case PartFailed:
			summary.FailedParts++
		}
	}

	return summary
}
