package savefile

// WorkType represents the kind of computation a work unit performs.
type WorkType int

// Work type constants.
const (
	WorkNone WorkType = iota
	WorkFactor
	WorkPminus1
	WorkECM
	WorkTest
	WorkDblChk
	WorkAdvancedTest
	WorkPRP
)

// String returns a string representation of a WorkType.
func (wt WorkType) String() string {
	switch wt {
	case WorkNone:
		return "None"
	case WorkFactor:
		return "Factor"
	case WorkPminus1:
		return "P-1"
	case WorkECM:
		return "ECM"
	case WorkTest:
		return "LL"
	case WorkDblChk:
		return "Double-check"
	case WorkAdvancedTest:
		return "Advanced-test"
	case WorkPRP:
		return "PRP"
	default:
		return "Unknown"
	}
}

// WorkUnit is the in-memory state of one numeric job: the candidate number
// k*b^n+c it operates on, the kind of work, and decoded progress.  Which
// fields are meaningful is determined by WorkType; Progress is nil for types
// without a decoded payload.
type WorkUnit struct {
	WorkType     WorkType
	K            float64
	B            uint32
	N            uint32
	C            int32
	KnownFactors []string
	SieveDepth   float64 // trial factoring done to this many bits
	FactorTo     float64 // trial factoring requested to this many bits
	PctComplete  float64 // completion fraction in [0,1]
	CurvesToDo   uint32
	B1           float64
	Progress     StageProgress
}

// StageProgress is the decoded type-specific payload of a checkpoint file.
// The concrete type is selected by the work type: Pminus1Progress for P-1,
// IterationProgress for LL and PRP, ECMProgress for ECM.
type StageProgress interface {
	stageProgress()
}

// Pminus1Stage identifies the phase a P-1 run is in.
type Pminus1Stage uint32

// P-1 stage codes as stored by the engine's writer.
const (
	Pminus1Stage1 Pminus1Stage = 0 // stage 1, processing larger primes
	Pminus1Stage2 Pminus1Stage = 1 // stage 2
	Pminus1Done   Pminus1Stage = 2
	Pminus1Stage0 Pminus1Stage = 3 // stage 1, squaring small primes
)

// Pminus1Progress is the payload of a P-1 checkpoint.
type Pminus1Progress struct {
	Stage  Pminus1Stage
	BDone  uint64
	B      uint64 // stage 1 bound target
	CDone  uint64
	CStart uint64
	C      uint64 // stage 2 bound target
	// Processed is the bit number while squaring small primes, and the
	// current prime once past them.
	Processed uint64
	D         uint32
	E         uint32 // stage 2 Brent-Suyama exponent
}

func (Pminus1Progress) stageProgress() {}

// IterationProgress is the payload of an iteration-based (LL or PRP)
// checkpoint.
type IterationProgress struct {
	ErrorCount     uint32
	IterationsDone uint32
}

func (IterationProgress) stageProgress() {}

// ECMProgress is the payload of an ECM checkpoint.
type ECMProgress struct {
	Stage       uint32 // 0 = stage 1, 1 = stage 2
	CurveNumber uint32
	Sigma       float64 // seed of the current curve
	B           uint64
	BDone       uint64
	CDone       uint64
}

func (ECMProgress) stageProgress() {}
