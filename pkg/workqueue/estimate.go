package workqueue

import (
	"math"

	"github.com/primestat/primestat/pkg/savefile"
)

// Reference point for per-iteration cost scaling: one squaring of a
// candidate near this exponent takes defaultIterationSecs on a typical
// desktop core.
const (
	referenceExponent     = 50_000_000.0
	defaultIterationSecs  = 0.004
	secondsPerFactorByBit = 3600.0
)

// CPUEstimator is a coarse wall-clock estimator.  It stands in for the
// numeric engine's calibrated per-machine estimator so the queue report
// can show completion dates when running stand-alone; per-iteration cost
// scales as n*log(n) with candidate size, which tracks FFT cost closely
// enough for report purposes.
type CPUEstimator struct {
	// IterationSecs overrides the per-squaring cost at the reference
	// exponent.  Zero selects the built-in default.
	IterationSecs float64
}

// Estimate implements Estimator.
func (e CPUEstimator) Estimate(worker int, entry *Entry) float64 {
	iterSecs := e.IterationSecs
	if iterSecs == 0 {
		iterSecs = defaultIterationSecs
	}
	n := float64(entry.N)
	if n < 2 {
		return 0
	}
	perIter := iterSecs * (n / referenceExponent) * (math.Log(n) / math.Log(referenceExponent))

	switch entry.WorkType {
	case savefile.WorkTest, savefile.WorkDblChk, savefile.WorkAdvancedTest, savefile.WorkPRP:
		return n * perIter
	case savefile.WorkPminus1:
		// Stage 1 squares roughly 1.44*B1 bits; stage 2 costs about the
		// same again when run.
		return 2.9 * entry.B1 * perIter
	case savefile.WorkECM:
		curves := float64(entry.CurvesToDo)
		if curves < 1 {
			curves = 1
		}

		return curves * 13 * entry.B1 * perIter
	case savefile.WorkFactor:
		bits := entry.FactorTo - entry.SieveDepth
		if bits <= 0 {
			return 0
		}

		return bits * secondsPerFactorByBit
	default:
		return 0
	}
}
