package report

import (
	"fmt"
	"strings"

	"github.com/primestat/primestat/pkg/savefile"
)

// MaxLineLen bounds a single rendered status line.
const MaxLineLen = 200

// Render formats the progress of one decoded work unit as a single-line
// detail string of at most MaxLineLen bytes.
func Render(wu *savefile.WorkUnit) string {
	pct := 100 * wu.PctComplete

	var detail string
	switch p := wu.Progress.(type) {
	case savefile.ECMProgress:
		detail = fmt.Sprintf("ECM | Curve %d | Stage %d (%.1f%%)", p.CurveNumber, p.Stage+1, pct)
	case savefile.Pminus1Progress:
		detail = renderPminus1(p, pct)
	case savefile.IterationProgress:
		label := "PRP"
		if wu.WorkType == savefile.WorkTest {
			label = "LL "
		}
		detail = fmt.Sprintf("%s | Iteration %d/%d [%.2f%%]", label, p.IterationsDone, wu.N, pct)
	}
	if detail == "" {
		detail = "UNKNOWN"
	}
	if len(detail) > MaxLineLen {
		detail = detail[:MaxLineLen]
	}

	return detail
}

func renderPminus1(p savefile.Pminus1Progress, pct float64) string {
	switch p.Stage {
	case savefile.Pminus1Stage0:
		// Still squaring small primes; Processed is the bit number.
		return fmt.Sprintf("P-1 | Stage 1 (%.1f%%) B1 <%d", pct, p.Processed)
	case savefile.Pminus1Stage1:
		// Past the small primes; Processed is the current prime.
		return fmt.Sprintf("P-1 | Stage 1 (%.1f%%) B1 @ %d", pct, p.Processed)
	case savefile.Pminus1Stage2:
		return fmt.Sprintf("P-1 | B1=%d complete, Stage 2 (%.1f%%)", p.B, pct)
	case savefile.Pminus1Done:
		var sb strings.Builder
		fmt.Fprintf(&sb, "P-1 | B1=%d", p.B)
		if p.C > p.B {
			fmt.Fprintf(&sb, ",B2=%d", p.C)
			if p.E >= 2 {
				fmt.Fprintf(&sb, ",E=%d", p.E)
			}
		}
		sb.WriteString(" complete")

		return sb.String()
	default:
		return fmt.Sprintf("UNKNOWN STAGE=%d", p.Stage)
	}
}

// BackupLine formats the full report line for one checkpoint file.
func BackupLine(filename string, wu *savefile.WorkUnit) string {
	return fmt.Sprintf("Backup %-16s | %s.", filename, Render(wu))
}
