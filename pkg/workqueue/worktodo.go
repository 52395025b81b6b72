package workqueue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/primestat/primestat/pkg/logger"
	"github.com/primestat/primestat/pkg/savefile"
)

// FileQueue is a Provider backed by a worktodo file.  It is a read-only
// snapshot; reload by calling LoadFile again.
type FileQueue struct {
	workers [][]*Entry
}

// LoadFile reads a worktodo file under a shared lock, so a concurrent
// engine rewrite is never observed half-written, and parses it into a
// FileQueue with one entry list per worker.
func LoadFile(filename string, numWorkers int) (*FileQueue, error) {
	data, err := lockedfile.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read work file: %w", err)
	}

	return Parse(string(data), numWorkers), nil
}

// Parse parses worktodo text.  Entries appear under "[Worker #N]" section
// headers; entries before any header belong to the first worker.  Lines
// that cannot be parsed become WorkNone entries, which reports skip.
func Parse(data string, numWorkers int) *FileQueue {
	if numWorkers < 1 {
		numWorkers = 1
	}
	q := &FileQueue{workers: make([][]*Entry, numWorkers)}
	worker := 0
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			worker = parseWorkerHeader(line, worker, numWorkers)

			continue
		}
		q.workers[worker] = append(q.workers[worker], parseLine(line))
	}

	return q
}

// Next implements Provider.
func (q *FileQueue) Next(worker int, cursor *Entry) *Entry {
	if worker < 0 || worker >= len(q.workers) {
		return nil
	}
	entries := q.workers[worker]
	if cursor == nil {
		if len(entries) == 0 {
			return nil
		}

		return entries[0]
	}
	for i, entry := range entries {
		if entry == cursor && i+1 < len(entries) {
			return entries[i+1]
		}
	}

	return nil
}

func parseWorkerHeader(line string, current, numWorkers int) int {
	var n int
	if _, err := fmt.Sscanf(line, "[Worker #%d]", &n); err != nil || n < 1 {
		logger.Warning("Ignoring malformed worker header %q in work file.", line)

		return current
	}
	if n > numWorkers {
		logger.Warning("Work file references worker %d but only %d configured.", n, numWorkers)

		return numWorkers - 1
	}

	return n - 1
}

func parseLine(line string) *Entry {
	workType, args, found := strings.Cut(line, "=")
	if !found {
		logger.Warning("Ignoring malformed work line %q.", line)

		return &Entry{}
	}

	// A quoted trailing field lists known factors of the candidate.
	var factors []string
	args, quoted, hasFactors := strings.Cut(args, `,"`)
	if hasFactors {
		factors = strings.Split(strings.TrimSuffix(quoted, `"`), ",")
	}

	fields := strings.Split(args, ",")
	entry := &Entry{}
	entry.KnownFactors = factors

	var err error
	switch workType {
	case "Test":
		entry.WorkType = savefile.WorkTest
		err = parseExponentLine(entry, fields)
	case "DoubleCheck":
		entry.WorkType = savefile.WorkDblChk
		err = parseExponentLine(entry, fields)
	case "AdvancedTest":
		entry.WorkType = savefile.WorkAdvancedTest
		err = parseExponentLine(entry, fields)
	case "PRP", "PRPDC":
		entry.WorkType = savefile.WorkPRP
		entry.PRPDblChk = workType == "PRPDC"
		err = parseKBNCLine(entry, fields)
	case "Pminus1", "Pfactor":
		entry.WorkType = savefile.WorkPminus1
		err = parseKBNCLine(entry, fields)
	case "ECM", "ECM2":
		entry.WorkType = savefile.WorkECM
		err = parseECMLine(entry, fields)
	case "Factor":
		entry.WorkType = savefile.WorkFactor
		err = parseFactorLine(entry, fields)
	default:
		logger.Warning("Ignoring work line with unknown type %q.", workType)

		return &Entry{}
	}
	if err != nil {
		logger.Warning("Ignoring malformed work line %q: %s.", line, err)

		return &Entry{}
	}

	return entry
}

// parseExponentLine handles Mersenne-form lines: exponent[,sieve_depth[,pminus1ed]].
func parseExponentLine(entry *Entry, fields []string) error {
	if len(fields) < 1 {
		return fmt.Errorf("missing exponent")
	}
	n, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return fmt.Errorf("bad exponent %q", fields[0])
	}
	entry.K, entry.B, entry.N, entry.C = 1, 2, uint32(n), -1
	if len(fields) > 1 {
		if entry.SieveDepth, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return fmt.Errorf("bad sieve depth %q", fields[1])
		}
	}
	if len(fields) > 2 {
		entry.Pminus1ed = fields[2] == "1"
	}

	return nil
}

// parseKBNC reads the leading k,b,n,c fields shared by PRP and P-1 lines.
func parseKBNC(entry *Entry, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("expected k,b,n,c")
	}
	var err error
	if entry.K, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return fmt.Errorf("bad k %q", fields[0])
	}
	b, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return fmt.Errorf("bad b %q", fields[1])
	}
	entry.B = uint32(b)
	n, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return fmt.Errorf("bad n %q", fields[2])
	}
	entry.N = uint32(n)
	c, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return fmt.Errorf("bad c %q", fields[3])
	}
	entry.C = int32(c)

	return nil
}

// parseKBNCLine handles PRP and P-1 lines:
// k,b,n,c[,sieve_depth[,B1_or_tests_saved[,B2]]].
func parseKBNCLine(entry *Entry, fields []string) error {
	if err := parseKBNC(entry, fields); err != nil {
		return err
	}
	var err error
	switch entry.WorkType {
	case savefile.WorkPRP:
		if len(fields) > 4 {
			if entry.SieveDepth, err = strconv.ParseFloat(fields[4], 64); err != nil {
				return fmt.Errorf("bad sieve depth %q", fields[4])
			}
		}
		if len(fields) > 5 {
			// tests_saved of zero means this is a double-check pass.
			saved, err := strconv.ParseFloat(fields[5], 64)
			if err != nil {
				return fmt.Errorf("bad tests saved %q", fields[5])
			}
			if saved == 0 {
				entry.PRPDblChk = true
			}
		}
	case savefile.WorkPminus1:
		if len(fields) > 4 {
			if entry.B1, err = strconv.ParseFloat(fields[4], 64); err != nil {
				return fmt.Errorf("bad B1 %q", fields[4])
			}
		}
	}

	return nil
}

// parseECMLine handles ECM lines: k,b,n,c,B1,B2,curves_to_do.
func parseECMLine(entry *Entry, fields []string) error {
	if err := parseKBNC(entry, fields); err != nil {
		return err
	}
	var err error
	if len(fields) > 4 {
		if entry.B1, err = strconv.ParseFloat(fields[4], 64); err != nil {
			return fmt.Errorf("bad B1 %q", fields[4])
		}
	}
	if len(fields) > 6 {
		curves, err := strconv.ParseUint(fields[6], 10, 32)
		if err != nil {
			return fmt.Errorf("bad curve count %q", fields[6])
		}
		entry.CurvesToDo = uint32(curves)
	}

	return nil
}

// parseFactorLine handles trial-factoring lines: exponent,sieve_depth,factor_to.
func parseFactorLine(entry *Entry, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("expected exponent,sieve_depth,factor_to")
	}
	n, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return fmt.Errorf("bad exponent %q", fields[0])
	}
	entry.K, entry.B, entry.N, entry.C = 1, 2, uint32(n), -1
	if entry.SieveDepth, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return fmt.Errorf("bad sieve depth %q", fields[1])
	}
	if entry.FactorTo, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return fmt.Errorf("bad factor target %q", fields[2])
	}

	return nil
}
