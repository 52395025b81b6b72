package savefile_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/primestat/primestat/pkg/savefile"
)

type headerParams struct {
	magic   uint32
	version uint32
	k       float64
	b       uint32
	n       uint32
	c       int32
	pct     float64
}

func writeHeader(buf *bytes.Buffer, h headerParams) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, h.magic)
	_ = binary.Write(buf, le, h.version)
	_ = binary.Write(buf, le, math.Float64bits(h.k))
	_ = binary.Write(buf, le, h.b)
	_ = binary.Write(buf, le, h.n)
	_ = binary.Write(buf, le, h.c)
	var stage [11]byte
	copy(stage[:], "S1")
	buf.Write(stage[:])
	buf.WriteByte(0) // pad
	_ = binary.Write(buf, le, math.Float64bits(h.pct))
	_ = binary.Write(buf, le, uint32(0)) // checksum, ignored by the read path
}

func pminus1File(h headerParams, p savefile.Pminus1Progress) []byte {
	buf := &bytes.Buffer{}
	writeHeader(buf, h)
	le := binary.LittleEndian
	_ = binary.Write(buf, le, uint32(p.Stage))
	_ = binary.Write(buf, le, p.BDone)
	_ = binary.Write(buf, le, p.B)
	_ = binary.Write(buf, le, p.CDone)
	_ = binary.Write(buf, le, p.CStart)
	_ = binary.Write(buf, le, p.C)
	_ = binary.Write(buf, le, p.Processed)
	_ = binary.Write(buf, le, p.D)
	_ = binary.Write(buf, le, p.E)

	return buf.Bytes()
}

func ecmFile(h headerParams, p savefile.ECMProgress) []byte {
	buf := &bytes.Buffer{}
	writeHeader(buf, h)
	le := binary.LittleEndian
	_ = binary.Write(buf, le, p.Stage)
	_ = binary.Write(buf, le, p.CurveNumber)
	_ = binary.Write(buf, le, math.Float64bits(p.Sigma))
	_ = binary.Write(buf, le, p.B)
	_ = binary.Write(buf, le, p.BDone)
	_ = binary.Write(buf, le, p.CDone)

	return buf.Bytes()
}

func iterationFile(h headerParams, p savefile.IterationProgress) []byte {
	buf := &bytes.Buffer{}
	writeHeader(buf, h)
	le := binary.LittleEndian
	_ = binary.Write(buf, le, p.ErrorCount)
	_ = binary.Write(buf, le, p.IterationsDone)

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	codec := savefile.NewCodec(nil)

	testCases := []struct {
		name string
		data []byte
		want *savefile.WorkUnit
	}{
		{
			name: "P-1 Done",
			data: pminus1File(
				headerParams{savefile.Pminus1Magicnum, savefile.Pminus1Version, 1, 2, 500009, -1, 1.0},
				savefile.Pminus1Progress{Stage: savefile.Pminus1Done, BDone: 100000, B: 100000, C: 1000000, CDone: 1000000, Processed: 100000, D: 210, E: 4},
			),
			want: &savefile.WorkUnit{
				WorkType: savefile.WorkPminus1, K: 1, B: 2, N: 500009, C: -1, PctComplete: 1.0, B1: 100000,
				Progress: savefile.Pminus1Progress{Stage: savefile.Pminus1Done, BDone: 100000, B: 100000, C: 1000000, CDone: 1000000, Processed: 100000, D: 210, E: 4},
			},
		},
		{
			name: "ECM Stage 2",
			data: ecmFile(
				headerParams{savefile.ECMMagicnum, savefile.ECMVersion, 1, 2, 1277, -1, 0.25},
				savefile.ECMProgress{Stage: 1, CurveNumber: 7, Sigma: 8398418713, B: 50000, BDone: 50000, CDone: 12345},
			),
			want: &savefile.WorkUnit{
				WorkType: savefile.WorkECM, K: 1, B: 2, N: 1277, C: -1, PctComplete: 0.25, CurvesToDo: 7, B1: 50000,
				Progress: savefile.ECMProgress{Stage: 1, CurveNumber: 7, Sigma: 8398418713, B: 50000, BDone: 50000, CDone: 12345},
			},
		},
		{
			name: "LL Midway",
			data: iterationFile(
				headerParams{savefile.LLMagicnum, savefile.LLVersion, 1, 2, 2267, -1, 0.5},
				savefile.IterationProgress{ErrorCount: 0, IterationsDone: 1133},
			),
			want: &savefile.WorkUnit{
				WorkType: savefile.WorkTest, K: 1, B: 2, N: 2267, C: -1, PctComplete: 0.5,
				Progress: savefile.IterationProgress{ErrorCount: 0, IterationsDone: 1133},
			},
		},
		{
			name: "PRP Midway",
			data: iterationFile(
				headerParams{savefile.PRPMagicnum, savefile.PRPVersion, 3, 2, 14009, 1, 0.75},
				savefile.IterationProgress{ErrorCount: 2, IterationsDone: 10507},
			),
			want: &savefile.WorkUnit{
				WorkType: savefile.WorkPRP, K: 3, B: 2, N: 14009, C: 1, PctComplete: 0.75,
				Progress: savefile.IterationProgress{ErrorCount: 2, IterationsDone: 10507},
			},
		},
		{
			name: "Factor Header Only",
			data: func() []byte {
				buf := &bytes.Buffer{}
				writeHeader(buf, headerParams{savefile.FactorMagicnum, savefile.FactorVersion, 1, 2, 13466917, -1, 0.1})

				return buf.Bytes()
			}(),
			want: &savefile.WorkUnit{
				WorkType: savefile.WorkFactor, K: 1, B: 2, N: 13466917, C: -1, PctComplete: 0.1,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := codec.Decode(bytes.NewReader(tc.data))
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("work unit mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeDeterministic(t *testing.T) {
	codec := savefile.NewCodec(nil)
	data := pminus1File(
		headerParams{savefile.Pminus1Magicnum, savefile.Pminus1Version, 1, 2, 500009, -1, 0.4},
		savefile.Pminus1Progress{Stage: savefile.Pminus1Stage2, B: 700000, BDone: 700000, C: 21000000},
	)

	first, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	second, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same bytes decoded differently (-first +second):\n%s", diff)
	}
}

func TestDecodeUnknownMagic(t *testing.T) {
	codec := savefile.NewCodec(nil)
	data := pminus1File(
		headerParams{0xdeadbeef, 1, 1, 2, 1279, -1, 0},
		savefile.Pminus1Progress{},
	)
	if _, err := codec.Decode(bytes.NewReader(data)); !errors.Is(err, savefile.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	testCases := []struct {
		name    string
		magic   uint32
		version uint32
	}{
		{"ECM Version 2", savefile.ECMMagicnum, 2},
		{"P-1 Version 3", savefile.Pminus1Magicnum, 3},
		{"P-1 Version 6", savefile.Pminus1Magicnum, 6},
		{"LL Version 2", savefile.LLMagicnum, 2},
		{"PRP Version 0", savefile.PRPMagicnum, 0},
		{"PRP Version 5", savefile.PRPMagicnum, 5},
		{"Factor Version 2", savefile.FactorMagicnum, 2},
	}

	codec := savefile.NewCodec(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := pminus1File(
				headerParams{tc.magic, tc.version, 1, 2, 1279, -1, 0},
				savefile.Pminus1Progress{},
			)
			if _, err := codec.Decode(bytes.NewReader(data)); !errors.Is(err, savefile.ErrUnsupportedVersion) {
				t.Errorf("expected ErrUnsupportedVersion, got %v", err)
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	codec := savefile.NewCodec(nil)
	data := pminus1File(
		headerParams{savefile.Pminus1Magicnum, savefile.Pminus1Version, 1, 2, 500009, -1, 0.4},
		savefile.Pminus1Progress{Stage: savefile.Pminus1Stage1, B: 700000, Processed: 12345},
	)

	// Cutting the stream at any offset before the final field must yield
	// ErrTruncated, never a decode with garbage fields.
	for cut := 0; cut < len(data); cut++ {
		wu, err := codec.Decode(bytes.NewReader(data[:cut]))
		if !errors.Is(err, savefile.ErrTruncated) {
			t.Fatalf("cut at %d: expected ErrTruncated, got %v", cut, err)
		}
		if wu != nil {
			t.Fatalf("cut at %d: partial work unit escaped", cut)
		}
	}
}

func TestDecodeClampsPctComplete(t *testing.T) {
	testCases := []struct {
		name string
		pct  float64
		want float64
	}{
		{"Above One", 1.5, 1.0},
		{"Below Zero", -0.5, 0.0},
		{"In Range", 0.31, 0.31},
	}

	codec := savefile.NewCodec(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := iterationFile(
				headerParams{savefile.LLMagicnum, savefile.LLVersion, 1, 2, 2267, -1, tc.pct},
				savefile.IterationProgress{IterationsDone: 100},
			)
			wu, err := codec.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if wu.PctComplete != tc.want {
				t.Errorf("expected pct %f, got %f", tc.want, wu.PctComplete)
			}
		})
	}
}

type rejectAllValidator struct{}

func (rejectAllValidator) ValidateHeader(*savefile.Header) error {
	return errors.New("rejected")
}

func TestDecodeValidatorFailureAborts(t *testing.T) {
	codec := savefile.NewCodec(rejectAllValidator{})
	data := iterationFile(
		headerParams{savefile.LLMagicnum, savefile.LLVersion, 1, 2, 2267, -1, 0.5},
		savefile.IterationProgress{IterationsDone: 1133},
	)
	wu, err := codec.Decode(bytes.NewReader(data))
	if err == nil {
		t.Error("expected validator error")
	}
	if wu != nil {
		t.Error("partial work unit escaped a failed validation")
	}
}

func TestDefaultValidator(t *testing.T) {
	testCases := []struct {
		name    string
		header  savefile.Header
		wantErr bool
	}{
		{"Valid Mersenne", savefile.Header{K: 1, B: 2, N: 500009, C: -1}, false},
		{"Zero K", savefile.Header{K: 0, B: 2, N: 500009}, true},
		{"Base One", savefile.Header{K: 1, B: 1, N: 500009}, true},
		{"Zero N", savefile.Header{K: 1, B: 2, N: 0}, true},
	}

	v := savefile.DefaultValidator{}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateHeader(&tc.header)
			if tc.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodeFileMissing(t *testing.T) {
	codec := savefile.NewCodec(nil)
	if _, err := codec.DecodeFile("/nonexistent/checkpoint"); err == nil {
		t.Error("expected error for missing file")
	}
}
