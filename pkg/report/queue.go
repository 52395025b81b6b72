package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/primestat/primestat/pkg/savefile"
	"github.com/primestat/primestat/pkg/workqueue"
)

// Queue report strings.
const (
	statIntro    = "Below is a report on the work you have queued and any expected completion dates.\n"
	statOddsOne  = "The chance that the exponent you are testing will yield a %sprime is about 1 in %d. "
	statOddsMany = "The chance that one of the %d exponents you are testing will yield a %sprime is about 1 in %d. "
	statNoWork   = "No work queued up.\n"
	moreMarker   = "More...\n"
)

// Latest completion date representable before the report falls back to a
// fixed overflow phrase.
const maxCompletionUnix = 2147483640.0

// QueueConfig carries the tunables for the queue status report.
type QueueConfig struct {
	NumWorkers int
	// StatusLines is the total line budget for the report; zero derives
	// it from the buffer size at roughly one line per 62 bytes.
	StatusLines int
	// ErrorRate is the chance a completed first LL test returned a wrong
	// residue, making its double-check worth running.
	ErrorRate float64
	// PRPErrorRate is the same for PRP tests, far lower thanks to the
	// Gerbicz error check.
	PRPErrorRate float64
	// Now is the clock used for completion dates; nil means time.Now.
	Now func() time.Time
}

// QueueStatus builds the work-queue report: per-worker queued entries with
// completion dates, then the aggregate chance any queued test finds a
// prime.  Output is bounded at maxBytes.
func QueueStatus(queue workqueue.Provider, est workqueue.Estimator, cfg QueueConfig, maxBytes int) string {
	numWorkers := cfg.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	linesPerWorker := cfg.StatusLines
	if linesPerWorker == 0 {
		linesPerWorker = maxBytes / 62
	}
	linesPerWorker /= numWorkers
	if linesPerWorker < 3 {
		linesPerWorker = 3
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	b := NewBuilder(maxBytes)
	b.Append(statIntro)

	testCount := 0
	prob := 0.0
	mersennes := true

	for tnum := 0; tnum < numWorkers; tnum++ {
		linesOutput := 0
		truncated := false
		if numWorkers > 1 {
			b.Line("[Worker thread #%d]", tnum+1)
			linesOutput++
		}

		estSecs := 0.0
		for entry := queue.Next(tnum, nil); entry != nil; entry = queue.Next(tnum, entry) {
			if entry.WorkType == savefile.WorkNone {
				continue
			}

			if entry.K != 1 || entry.B != 2 || entry.C != -1 || len(entry.KnownFactors) > 0 {
				mersennes = false
			}

			bits := entry.SieveDepth
			if bits < 32 {
				bits = 32
			}
			// A candidate that survived P-1 factoring is slightly more
			// likely to be prime.
			pm1Bonus := 1.0
			if entry.Pminus1ed {
				pm1Bonus = 1.04
			}
			sizeLog := math.Log2(entry.K) + math.Log2(float64(entry.B))*float64(entry.N)
			switch entry.WorkType {
			case savefile.WorkTest:
				testCount++
				prob += (bits - 1) * 1.733 * pm1Bonus / sizeLog
			case savefile.WorkDblChk:
				testCount++
				prob += (bits - 1) * 1.733 * cfg.ErrorRate * pm1Bonus / sizeLog
			case savefile.WorkPRP:
				testCount++
				errorFactor := 1.0
				if entry.PRPDblChk {
					errorFactor = cfg.PRPErrorRate
				}
				prob += (bits - 1) * 1.733 * errorFactor * pm1Bonus / sizeLog
			}

			estSecs += est.Estimate(tnum, entry)

			// Keep consuming entries past the cap so the probability
			// figure still covers the whole queue.
			if b.NearFull() || linesOutput >= linesPerWorker-1 {
				if !truncated {
					b.Append(moreMarker)
					truncated = true
				}

				continue
			}

			b.Append(queueLine(entry, estSecs, now()))
			linesOutput++
		}

		if estSecs == 0 && !truncated {
			b.Append(statNoWork)
		}
	}

	if testCount > 0 && prob > 0 {
		prefix := ""
		if mersennes {
			prefix = "Mersenne "
		}
		odds := int64(1.0 / prob)
		if testCount == 1 {
			b.Append(fmt.Sprintf(statOddsOne, prefix, odds))
		} else {
			b.Append(fmt.Sprintf(statOddsMany, testCount, prefix, odds))
		}
	}

	return b.String()
}

func queueLine(entry *workqueue.Entry, estSecs float64, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(numberString(entry.K, entry.B, entry.N, entry.C))
	if entry.WorkType == savefile.WorkPRP && len(entry.KnownFactors) > 0 {
		sb.WriteString("/known_factors")
	}
	sb.WriteString(", ")
	sb.WriteString(workDescription(entry))
	sb.WriteString(", ")
	sb.WriteString(completionDate(estSecs, now))
	sb.WriteString("\n")

	return sb.String()
}

// numberString formats the candidate k*b^n+c the way the numeric engine
// prints it.
func numberString(k float64, b, n uint32, c int32) string {
	var sb strings.Builder
	if k != 1 {
		fmt.Fprintf(&sb, "%.0f*", k)
	}
	fmt.Fprintf(&sb, "%d^%d", b, n)
	if c < 0 {
		fmt.Fprintf(&sb, "%d", c)
	} else {
		fmt.Fprintf(&sb, "+%d", c)
	}

	return sb.String()
}

func workDescription(entry *workqueue.Entry) string {
	switch entry.WorkType {
	case savefile.WorkECM:
		plural := "s"
		if entry.CurvesToDo == 1 {
			plural = ""
		}

		return fmt.Sprintf("ECM %d curve%s B1=%.0f", entry.CurvesToDo, plural, entry.B1)
	case savefile.WorkPminus1:
		if entry.B1 > 0 {
			return fmt.Sprintf("P-1 B1=%.0f", entry.B1)
		}

		return "P-1"
	case savefile.WorkFactor:
		return fmt.Sprintf("factor from 2^%d to 2^%d", int(entry.SieveDepth), int(entry.FactorTo))
	case savefile.WorkTest, savefile.WorkAdvancedTest:
		return "Lucas-Lehmer test"
	case savefile.WorkDblChk:
		return "Double-check"
	default:
		return "PRP"
	}
}

func completionDate(estSecs float64, now time.Time) string {
	if estSecs+float64(now.Unix()) >= maxCompletionUnix {
		return "after Jan 19 2038"
	}

	return now.Add(time.Duration(estSecs) * time.Second).Format("Mon Jan _2 15:04 2006")
}
