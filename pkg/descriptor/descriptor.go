// Package descriptor defines the InstructionDescriptor value type and
// its component enums (spec.md §3): the invariant per-instruction
// record that the catalog loads and the mapper/modifier engine consume.
//
// It is deliberately dependency-light (arch + coord only) so that both
// pkg/catalog (which builds descriptors from data) and pkg/mapper
// (which computes over them) can depend on it without a cycle.
package descriptor

import (
	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/coord"
)

// Encoding is the instruction's wire encoding class.
type Encoding int

const (
	VOP3PMAI Encoding = iota
	VOP3P
)

func (e Encoding) String() string {
	if e == VOP3PMAI {
		return "VOP3P-MAI"
	}
	return "VOP3P"
}

// DType is the element data type of one operand slot.
type DType int

const (
	FP32 DType = iota
	FP64
	FP16
	BF16
	INT8
	INT4
	FP8E4M3
	FP8E5M2
	SparseIndex // 2-bit packed compression-index field (K matrix)
)

var dtypeNames = map[DType]string{
	FP32: "FP32", FP64: "FP64", FP16: "FP16", BF16: "BF16",
	INT8: "INT8", INT4: "INT4", FP8E4M3: "FP8-E4M3", FP8E5M2: "FP8-E5M2",
	SparseIndex: "sparse-index",
}

func (d DType) String() string { return dtypeNames[d] }

// Bits is the element width in bits. SparseIndex is not register-packed
// the way the other types are (see pkg/mapper's sparse-K family) and
// reports 2, its true field width.
func (d DType) Bits() int {
	switch d {
	case FP64:
		return 64
	case FP32:
		return 32
	case FP16, BF16:
		return 16
	case INT8, FP8E4M3, FP8E5M2:
		return 8
	case INT4:
		return 4
	case SparseIndex:
		return 2
	default:
		return 32
	}
}

// RegFile records which physical register files (architected and/or
// accumulator) an operand may use.
type RegFile struct {
	Arch bool
	Acc  bool
}

// BLGPMode selects which of BLGP's two unrelated meanings an
// instruction's BLGP support refers to (spec.md §4.4 rules 3 and 4).
type BLGPMode int

const (
	BLGPNone BLGPMode = iota
	BLGPLaneSwizzle
	BLGPFP64Negate
)

// ABIDMode selects which of CBSZ/ABID's two meanings applies (spec.md
// §4.4 rules 1 and 2).
type ABIDMode int

const (
	ABIDNone ABIDMode = iota
	ABIDBroadcast
	ABIDSparseSelect
)

// ModifierSupport is the bitmap over {CBSZ, ABID, BLGP, OPSEL, NEG,
// NEG_HI} plus the BLGP/CBSZ-ABID sub-modes, per spec.md §3.
type ModifierSupport struct {
	CBSZ     bool
	ABID     bool
	BLGP     bool
	OPSEL    bool
	NEG      bool
	NEGHI    bool
	BLGPMode BLGPMode
	ABIDMode ABIDMode
}

// Pattern identifies one of the four closed-form mapping families that
// govern A/B/C/D (spec.md §4.3 families 1-4). Sparse-K (family 5) is not
// a Pattern value: it governs only the K matrix, layered on top of
// whichever of these four families the same descriptor uses for its
// dense operands (spec.md §3's `is_sparse` flag gates it orthogonally;
// see pkg/mapper.Locate). The catalog never encodes per-instruction
// mapping code; it carries a Pattern plus the descriptor's own
// dimensions/element sizes, which the pattern's Locate/Lookup
// implementation in pkg/mapper reads directly.
type Pattern int

const (
	DenseMFMA Pattern = iota
	MultiRowPerLane
	FP64Pair
	Wave32WMMA
)

func (p Pattern) String() string {
	switch p {
	case DenseMFMA:
		return "dense-mfma"
	case MultiRowPerLane:
		return "multi-row-per-lane"
	case FP64Pair:
		return "fp64-pair"
	case Wave32WMMA:
		return "wave32-wmma"
	default:
		return "unknown"
	}
}

// Execution carries the published performance constants of spec.md §3.
type Execution struct {
	FLOPs           int
	Cycles          int
	FLOPsPerCUCycle float64
	CoExecuteVALU   bool
	CoExecuteCycles int
}

// GPRCounts is the (A, B, C, D) GPR count; C equals D by invariant. K is
// populated only for sparse descriptors.
type GPRCounts struct {
	A, B, C, D, K int
}

// InstructionDescriptor is the invariant per-instruction record of
// spec.md §3.
type InstructionDescriptor struct {
	Arch      arch.ID
	Mnemonic  string // normalized uppercase
	Encoding  Encoding
	OpcodeVOP3P    int
	OpcodeMAI      int // -1 when the encoding has no MAI opcode field
	M, N, K, Blocks int
	Exec      Execution
	GPRs      GPRCounts
	AlignmentBytes int
	SrcTypes  [4]DType // Src0, Src1, Src2, Vdst
	RegFiles  [3]RegFile // A, B, C/D
	ModSupport ModifierSupport
	IsSparse  bool
	Pattern   Pattern
}

// ElementBits returns the element width used by the given matrix's
// mapping formulas: Src0/A and K share Src0's type, B is Src1, C/D and
// the accumulator share Vdst's type.
func (d *InstructionDescriptor) ElementBits(m coord.Matrix) int {
	switch m {
	case coord.A, coord.K:
		return d.SrcTypes[0].Bits()
	case coord.B:
		return d.SrcTypes[1].Bits()
	default:
		return d.SrcTypes[3].Bits()
	}
}

// Enumerate lists every legal coordinate for a matrix on this
// descriptor, per the ignores described in spec.md §3 ("A ignores j; B
// ignores i; C and D ignore k; K follows A's (i, k, block) schema").
// Shared by pkg/mapper's construction-time self-check and pkg/query's
// layout operations, the two places that need the full coordinate space
// rather than a single mapped point.
func (d *InstructionDescriptor) Enumerate(m coord.Matrix) []coord.Coordinate {
	var out []coord.Coordinate
	switch m {
	case coord.A:
		for b := 0; b < d.Blocks; b++ {
			for i := 0; i < d.M; i++ {
				for k := 0; k < d.K; k++ {
					out = append(out, coord.Coordinate{Matrix: m, I: i, K: k, Block: b})
				}
			}
		}
	case coord.B:
		for b := 0; b < d.Blocks; b++ {
			for j := 0; j < d.N; j++ {
				for k := 0; k < d.K; k++ {
					out = append(out, coord.Coordinate{Matrix: m, J: j, K: k, Block: b})
				}
			}
		}
	case coord.C, coord.D:
		for b := 0; b < d.Blocks; b++ {
			for i := 0; i < d.M; i++ {
				for j := 0; j < d.N; j++ {
					out = append(out, coord.Coordinate{Matrix: m, I: i, J: j, Block: b})
				}
			}
		}
	case coord.K:
		for b := 0; b < d.Blocks; b++ {
			for i := 0; i < d.M; i++ {
				for k := 0; k < d.K; k++ {
					out = append(out, coord.Coordinate{Matrix: m, I: i, K: k, Block: b})
				}
			}
		}
	}
	return out
}

// GPRCount returns the GPR budget for the given matrix.
func (d *InstructionDescriptor) GPRCount(m coord.Matrix) int {
	switch m {
	case coord.A:
		return d.GPRs.A
	case coord.B:
		return d.GPRs.B
	case coord.C, coord.D:
		return d.GPRs.C
	case coord.K:
		return d.GPRs.K
	default:
		return 0
	}
}
