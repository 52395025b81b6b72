// Package workqueue supplies the active work-queue data consumed by the
// queue status report: an ordered sequence of job descriptors per worker
// and a wall-clock estimator for each.
package workqueue

import (
	"github.com/primestat/primestat/pkg/savefile"
)

// Entry is one queued job descriptor.
type Entry struct {
	savefile.WorkUnit
	// Pminus1ed is true once P-1 factoring has been run on the candidate,
	// which slightly raises its conditional chance of being prime.
	Pminus1ed bool
	// PRPDblChk marks a secondary PRP pass over an already-tested candidate.
	PRPDblChk bool
}

// Provider hands out queue entries in order.  Next returns the entry for
// the given worker following the cursor entry, or the first entry when the
// cursor is nil, and nil at the end of that worker's queue.
type Provider interface {
	Next(worker int, cursor *Entry) *Entry
}

// Estimator estimates the remaining wall-clock seconds for an entry run by
// a given worker.
type Estimator interface {
	Estimate(worker int, entry *Entry) float64
}
