package report

import (
	"path/filepath"

	"github.com/primestat/primestat/pkg/logger"
	"github.com/primestat/primestat/pkg/savefile"
	"github.com/primestat/primestat/pkg/scandir"
)

// Backup report strings.
const (
	backupCwdHeader  = "Status of files in '%s'."
	backupCwdError   = "Unable to read working directory."
	backupNone       = "No Backup files (*.bu) were found in %s."
	backupParseError = "Unable to parse (%s)."
)

// BackupStatus builds the backup-file report for dir, bounded at maxBytes.
// One checkpoint file failing to decode contributes a parse-error line;
// only a directory-level failure degrades the whole report, and then to a
// single diagnostic line, never an error to the caller.
func BackupStatus(lister scandir.Lister, codec *savefile.Codec, dir string, maxBytes int) string {
	b := NewBuilder(maxBytes)

	names, err := scandir.ListCandidates(lister, dir)
	if err != nil {
		logger.Warning("Unable to read working directory %s: %s.", dir, err)
		b.Line(backupCwdError)

		return b.String()
	}

	base := dir
	if abs, err := filepath.Abs(dir); err == nil {
		base = filepath.Base(abs)
	}
	b.Line(backupCwdHeader, base)

	if len(names) == 0 {
		b.Line(backupNone, base)

		return b.String()
	}

	for _, name := range names {
		wu, err := codec.DecodeFile(filepath.Join(dir, name))
		var fits bool
		if err != nil {
			logger.Debug("Could not decode checkpoint %s: %s.", name, err)
			fits = b.Line(backupParseError, name)
		} else {
			fits = b.Append(BackupLine(name, wu) + "\n")
		}
		if !fits {
			break
		}
	}

	return b.String()
}
