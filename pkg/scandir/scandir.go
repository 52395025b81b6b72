// Package scandir discovers checkpoint candidate files in a working
// directory.  It never follows symlinks and never reads file contents.
package scandir

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
)

// ErrDirUnreadable indicates the working directory could not be opened or
// enumerated.
var ErrDirUnreadable = errors.New("unable to read directory")

// MaxBackupFiles caps the number of candidates a scan returns.  The cap
// bounds report-generation cost; files beyond it (in sort order) are
// silently excluded.
const MaxBackupFiles = 100

// minBackupName is the length of the shortest legal candidate name, "p13_3".
const minBackupName = 5

// Candidate grammar: one type letter (m/p = P-1 and LL, e = ECM, f = trial
// factoring), one or two runs of digits separated by a single underscore,
// then optionally ".bu" plus a numeric backup-generation suffix.
var backupPattern = regexp.MustCompile(`^[mpef][0-9]+(_[0-9]+)?(\.bu[0-9]*)?$`)

// IsBackupName reports whether name matches the checkpoint candidate
// grammar.  The match is a strict grammar, not a fuzzy heuristic.
func IsBackupName(name string) bool {
	if len(name) < minBackupName {
		return false
	}

	return backupPattern.MatchString(name)
}

// Lister enumerates the regular files in a directory.  Implementations
// must exclude directories, symlinks, and devices, and must close any
// directory handle on every exit path.
type Lister interface {
	ListRegularFiles(dir string) ([]string, error)
}

// OSLister is the operating-system implementation of Lister.
type OSLister struct{}

// ListRegularFiles returns the names of regular files in dir.
func (OSLister) ListRegularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDirUnreadable, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// ListCandidates returns up to MaxBackupFiles checkpoint candidate
// filenames in dir, sorted ascending by byte order so repeated scans of an
// unchanged directory produce identical report ordering.
func ListCandidates(lister Lister, dir string) ([]string, error) {
	names, err := lister.ListRegularFiles(dir)
	if err != nil {
		return nil, err
	}
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		if IsBackupName(name) {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)
	if len(candidates) > MaxBackupFiles {
		candidates = candidates[:MaxBackupFiles]
	}

	return candidates, nil
}
