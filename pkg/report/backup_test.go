package report_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/primestat/primestat/pkg/report"
	"github.com/primestat/primestat/pkg/savefile"
	"github.com/primestat/primestat/pkg/scandir"
)

// llCheckpoint builds a minimal valid LL checkpoint byte stream.
func llCheckpoint(n, iterationsDone uint32, pct float64) []byte {
	buf := &bytes.Buffer{}
	le := binary.LittleEndian
	_ = binary.Write(buf, le, savefile.LLMagicnum)
	_ = binary.Write(buf, le, savefile.LLVersion)
	_ = binary.Write(buf, le, math.Float64bits(1)) // k
	_ = binary.Write(buf, le, uint32(2))           // b
	_ = binary.Write(buf, le, n)
	_ = binary.Write(buf, le, int32(-1)) // c
	var stage [12]byte
	buf.Write(stage[:]) // stage label + pad
	_ = binary.Write(buf, le, math.Float64bits(pct))
	_ = binary.Write(buf, le, uint32(0)) // checksum
	_ = binary.Write(buf, le, uint32(0)) // error count
	_ = binary.Write(buf, le, iterationsDone)

	return buf.Bytes()
}

func TestBackupStatus(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "m002267"), llCheckpoint(2267, 1133, 0.5), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "p13_3"), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "results.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), dir, 1000)
	want := []string{
		"Status of files in '" + filepath.Base(dir) + "'.",
		"Backup m002267          | LL  | Iteration 1133/2267 [50.00%].",
		"Unable to parse (p13_3).",
	}
	if diff := cmp.Diff(want, strings.Split(strings.TrimRight(got, "\n"), "\n")); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestBackupStatusDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"m002267", "m002269", "p500009.bu"} {
		if err := os.WriteFile(filepath.Join(dir, name), llCheckpoint(2267, 100, 0.1), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	first := report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), dir, 1000)
	second := report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), dir, 1000)
	if first != second {
		t.Errorf("same directory produced different reports:\n%q\n%q", first, second)
	}
}

func TestBackupStatusEmptyDir(t *testing.T) {
	dir := t.TempDir()
	got := report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), dir, 1000)
	base := filepath.Base(dir)
	want := "Status of files in '" + base + "'.\nNo Backup files (*.bu) were found in " + base + ".\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBackupStatusUnreadableDir(t *testing.T) {
	got := report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), "/nonexistent-primestat-dir", 1000)
	if got != "Unable to read working directory.\n" {
		t.Errorf("unexpected report %q", got)
	}
}

func TestBackupStatusBounded(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 30; i++ {
		name := filepath.Join(dir, fmtName(i))
		if err := os.WriteFile(name, llCheckpoint(2267, 100, 0.1), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	maxBytes := 200
	got := report.BackupStatus(scandir.OSLister{}, savefile.NewCodec(nil), dir, maxBytes)
	if len(got) > maxBytes {
		t.Errorf("report exceeds %d bytes: %d", maxBytes, len(got))
	}
	// No partial-line writes: every line is complete.
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		if !strings.HasSuffix(line, ".") {
			t.Errorf("line %q looks cut mid-write", line)
		}
	}
}

func fmtName(i int) string {
	return "m" + string(rune('0'+i/10)) + string(rune('0'+i%10)) + "2267"
}
