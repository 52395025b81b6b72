package savefile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Magic numbers identifying each checkpoint file type.  These match the
// numeric engine's writer and must never change.
const (
	FactorMagicnum  uint32 = 0x1567234D
	LLMagicnum      uint32 = 0x2c7330a8
	PRPMagicnum     uint32 = 0x87f2a91b
	ECMMagicnum     uint32 = 0x1725bcd9
	Pminus1Magicnum uint32 = 0x317a394b
)

// Highest format version each decoder understands.
const (
	FactorVersion  uint32 = 1
	LLVersion      uint32 = 1
	PRPVersion     uint32 = 4
	ECMVersion     uint32 = 1
	Pminus1Version uint32 = 2
)

// Decode error kinds.  Wrapped errors carry file/field context; use
// errors.Is against these to classify a failure.
var (
	ErrUnknownFormat      = errors.New("unknown checkpoint format")
	ErrUnsupportedVersion = errors.New("unsupported checkpoint version")
	ErrTruncated          = errors.New("checkpoint file truncated")
)

// Header is the common header present at the start of every checkpoint
// file, laid out identically across all types.
type Header struct {
	Magic       uint32
	Version     uint32
	K           float64
	B           uint32
	N           uint32
	C           int32
	Stage       string  // stage label written by the engine, NUL-trimmed
	PctComplete float64 // clamped to [0,1]
	Checksum    uint32  // read but never verified; validating it is the writer's concern
}

// HeaderValidator applies engine-wide sanity checks to a decoded common
// header.  The hosting engine may supply its own; a failure aborts the
// decode of that one file.
type HeaderValidator interface {
	ValidateHeader(h *Header) error
}

// DefaultValidator rejects headers whose number parameters could not have
// been produced by the engine's writer.
type DefaultValidator struct{}

// ValidateHeader implements HeaderValidator.
func (DefaultValidator) ValidateHeader(h *Header) error {
	if h.K < 1.0 {
		return fmt.Errorf("header k value %f out of range", h.K)
	}
	if h.B < 2 {
		return fmt.Errorf("header b value %d out of range", h.B)
	}
	if h.N == 0 {
		return fmt.Errorf("header n value must be nonzero")
	}

	return nil
}

// Codec decodes checkpoint files into work units.  The zero value is not
// usable; call NewCodec.
type Codec struct {
	validator HeaderValidator
}

// NewCodec returns a Codec using the given header validator, or
// DefaultValidator if nil.
func NewCodec(validator HeaderValidator) *Codec {
	if validator == nil {
		validator = DefaultValidator{}
	}

	return &Codec{validator: validator}
}

// DecodeFile opens and decodes one checkpoint file.  The file is only ever
// read, never modified.
func (c *Codec) DecodeFile(filename string) (*WorkUnit, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open checkpoint file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return c.Decode(file)
}

// Decode reads one checkpoint byte stream and returns the decoded work
// unit.  Decoding is all-or-nothing: on any error the returned WorkUnit is
// nil and no partial state escapes.
func (c *Codec) Decode(r io.Reader) (*WorkUnit, error) {
	fr := &fieldReader{r: r}

	magic, err := fr.uint32()
	if err != nil {
		return nil, err
	}

	hdr := Header{Magic: magic}
	if err := c.readHeader(fr, &hdr); err != nil {
		return nil, err
	}

	wu := &WorkUnit{
		K:           hdr.K,
		B:           hdr.B,
		N:           hdr.N,
		C:           hdr.C,
		PctComplete: hdr.PctComplete,
	}

	switch magic {
	case ECMMagicnum:
		wu.WorkType = WorkECM
		err = decodeECM(fr, hdr.Version, wu)
	case Pminus1Magicnum:
		wu.WorkType = WorkPminus1
		err = decodePminus1(fr, hdr.Version, wu)
	case LLMagicnum:
		wu.WorkType = WorkTest
		err = decodeIterations(fr, hdr.Version, LLVersion, wu)
	case PRPMagicnum:
		wu.WorkType = WorkPRP
		err = decodeIterations(fr, hdr.Version, PRPVersion, wu)
	case FactorMagicnum:
		wu.WorkType = WorkFactor
		err = decodeFactor(hdr.Version)
	default:
		return nil, fmt.Errorf("magic number 0x%08x: %w", magic, ErrUnknownFormat)
	}
	if err != nil {
		return nil, err
	}

	return wu, nil
}

// readHeader decodes the rest of the common header after the magic number.
// The field order is fixed by the writer and must not be reordered.
func (c *Codec) readHeader(fr *fieldReader, hdr *Header) error {
	var err error
	if hdr.Version, err = fr.uint32(); err != nil {
		return err
	}
	if hdr.K, err = fr.float64(); err != nil {
		return err
	}
	if hdr.B, err = fr.uint32(); err != nil {
		return err
	}
	if hdr.N, err = fr.uint32(); err != nil {
		return err
	}
	if hdr.C, err = fr.int32(); err != nil {
		return err
	}

	// Stage label (11 bytes) plus one byte of padding.
	stage, err := fr.bytes(12)
	if err != nil {
		return err
	}
	hdr.Stage = trimStage(stage[:11])

	if hdr.PctComplete, err = fr.float64(); err != nil {
		return err
	}
	if hdr.PctComplete < 0 {
		hdr.PctComplete = 0
	}
	if hdr.PctComplete > 1 {
		hdr.PctComplete = 1
	}

	if hdr.Checksum, err = fr.uint32(); err != nil {
		return err
	}

	return c.validator.ValidateHeader(hdr)
}

func trimStage(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}

	return string(raw)
}

func decodeECM(fr *fieldReader, version uint32, wu *WorkUnit) error {
	if version != ECMVersion {
		return fmt.Errorf("ECM version %d: %w", version, ErrUnsupportedVersion)
	}
	var p ECMProgress
	var err error
	if p.Stage, err = fr.uint32(); err != nil {
		return err
	}
	if p.CurveNumber, err = fr.uint32(); err != nil {
		return err
	}
	if p.Sigma, err = fr.float64(); err != nil {
		return err
	}
	if p.B, err = fr.uint64(); err != nil {
		return err
	}
	if p.BDone, err = fr.uint64(); err != nil {
		return err
	}
	if p.CDone, err = fr.uint64(); err != nil {
		return err
	}
	wu.CurvesToDo = p.CurveNumber
	wu.B1 = float64(p.B)
	wu.Progress = p

	return nil
}

func decodePminus1(fr *fieldReader, version uint32, wu *WorkUnit) error {
	// Versions 3 and 6 are the 30.8+ writer's layout, which this decoder
	// does not understand yet.
	if version != 1 && version != Pminus1Version {
		return fmt.Errorf("P-1 version %d: %w", version, ErrUnsupportedVersion)
	}
	var p Pminus1Progress
	stage, err := fr.uint32()
	if err != nil {
		return err
	}
	p.Stage = Pminus1Stage(stage)
	if p.BDone, err = fr.uint64(); err != nil {
		return err
	}
	if p.B, err = fr.uint64(); err != nil {
		return err
	}
	if p.CDone, err = fr.uint64(); err != nil {
		return err
	}
	if p.CStart, err = fr.uint64(); err != nil {
		return err
	}
	if p.C, err = fr.uint64(); err != nil {
		return err
	}
	if p.Processed, err = fr.uint64(); err != nil {
		return err
	}
	if p.D, err = fr.uint32(); err != nil {
		return err
	}
	if p.E, err = fr.uint32(); err != nil {
		return err
	}
	wu.B1 = float64(p.B)
	wu.Progress = p

	return nil
}

func decodeIterations(fr *fieldReader, version uint32, maxVersion uint32, wu *WorkUnit) error {
	if version == 0 || version > maxVersion {
		return fmt.Errorf("%s version %d: %w", wu.WorkType, version, ErrUnsupportedVersion)
	}
	var p IterationProgress
	var err error
	if p.ErrorCount, err = fr.uint32(); err != nil {
		return err
	}
	if p.IterationsDone, err = fr.uint32(); err != nil {
		return err
	}
	wu.Progress = p

	return nil
}

func decodeFactor(version uint32) error {
	if version != FactorVersion {
		return fmt.Errorf("factor version %d: %w", version, ErrUnsupportedVersion)
	}

	// Trial factoring files carry no payload this layer reports on.
	return nil
}

// fieldReader reads the little-endian fixed-width fields of the checkpoint
// format.  Any short read surfaces as ErrTruncated.
type fieldReader struct {
	r   io.Reader
	buf [8]byte
}

func (fr *fieldReader) read(n int) ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.buf[:n]); err != nil {
		return nil, ErrTruncated
	}

	return fr.buf[:n], nil
}

func (fr *fieldReader) uint32() (uint32, error) {
	b, err := fr.read(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

func (fr *fieldReader) int32() (int32, error) {
	v, err := fr.uint32()

	return int32(v), err
}

func (fr *fieldReader) uint64() (uint64, error) {
	b, err := fr.read(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

func (fr *fieldReader) float64() (float64, error) {
	v, err := fr.uint64()

	return math.Float64frombits(v), err
}

func (fr *fieldReader) bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(fr.r, b); err != nil {
		return nil, ErrTruncated
	}

	return b, nil
}
