// Package coord defines the value types shared by the catalog, mapper,
// and modifier engine: matrix selectors, coordinates, register locations,
// and the runtime modifier set.
package coord

import "fmt"

// Matrix names one of the five logical operand matrices.
type Matrix int

const (
	A Matrix = iota
	B
	C
	D
	K
)

func (m Matrix) String() string {
	switch m {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	case K:
		return "K"
	default:
		return fmt.Sprintf("Matrix(%d)", int(m))
	}
}

// ParseMatrix accepts a case-insensitive single-letter matrix name.
func ParseMatrix(s string) (Matrix, bool) {
	switch s {
	case "A", "a":
		return A, true
	case "B", "b":
		return B, true
	case "C", "c":
		return C, true
	case "D", "d":
		return D, true
	case "K", "k":
		return K, true
	default:
		return 0, false
	}
}

// Coordinate identifies a single logical matrix entry. A matrix ignores J;
// B ignores I; C and D ignore K; K follows A's (I, K, Block) schema.
type Coordinate struct {
	Matrix Matrix
	I      int
	J      int
	K      int
	Block  int
}

// String renders Matrix[row][col].Bblock, or K[row][col] for the sparse
// compression-index matrix, per spec.md §6. The .Bblock suffix is
// omitted for block 0.
func (c Coordinate) String() string {
	switch c.Matrix {
	case A:
		return blockSuffix(fmt.Sprintf("A[%d][%d]", c.I, c.K), c.Block)
	case B:
		return blockSuffix(fmt.Sprintf("B[%d][%d]", c.K, c.J), c.Block)
	case C:
		return blockSuffix(fmt.Sprintf("C[%d][%d]", c.I, c.J), c.Block)
	case D:
		return blockSuffix(fmt.Sprintf("D[%d][%d]", c.I, c.J), c.Block)
	case K:
		return fmt.Sprintf("K[%d][%d]", c.I, c.K)
	default:
		return "?"
	}
}

func blockSuffix(base string, block int) string {
	if block == 0 {
		return base
	}
	return fmt.Sprintf("%s.B%d", base, block)
}

// Sign annotates a RegisterLocation with the NEG/NEG_HI/BLGP-FP64-negate
// outcome for that operand.
type Sign int

const (
	Positive Sign = iota
	Negated
	Absolute
	NegatedAbsolute
)

// Apply wraps a value string with this sign's prefix/bars.
func (s Sign) Apply(value string) string {
	switch s {
	case Negated:
		return "-" + value
	case Absolute:
		return "|" + value + "|"
	case NegatedAbsolute:
		return "-|" + value + "|"
	default:
		return value
	}
}

// RegisterLocation is (gpr_offset, lane, bit_lo, bit_hi, sign). GPROffset is
// relative to the instruction's Src0/Src1/Src2/Vdst field base, not
// absolute. Pair is set for 64-bit elements, where the location spans the
// register pair [GPROffset+1:GPROffset].
type RegisterLocation struct {
	GPROffset int
	Pair      bool
	Lane      int
	BitLo     int
	BitHi     int
	Sign      Sign
}

// RegisterName renders "v{G}" or "v[{G+1}:{G}]" for register pairs.
func (r RegisterLocation) RegisterName() string {
	if r.Pair {
		return fmt.Sprintf("v[%d:%d]", r.GPROffset+1, r.GPROffset)
	}
	return fmt.Sprintf("v%d", r.GPROffset)
}

// String renders v{GPR}{LANE}[.[hi:lo]], per spec.md §6. The bit-range
// suffix is omitted when it spans the full 32 (or 64, for pairs) bits.
func (r RegisterLocation) String() string {
	full := 32
	if r.Pair {
		full = 64
	}
	base := fmt.Sprintf("%s{%d}", r.RegisterName(), r.Lane)
	if r.BitLo == 0 && r.BitHi == full-1 {
		return base
	}
	return fmt.Sprintf("%s.[%d:%d]", base, r.BitHi, r.BitLo)
}

// Absent marks a modifier field that the caller did not supply; the
// instruction descriptor's default (always zero, per spec.md §3) applies.
const Absent = -1

// Modifiers is the user-supplied runtime configuration for a query:
// {cbsz, abid, blgp, opsel, neg, neg_hi}, each an integer or Absent.
type Modifiers struct {
	CBSZ  int
	ABID  int
	BLGP  int
	OPSEL int
	NEG   int
	NEGHI int
}

// Resolved substitutes Absent fields with zero, the documented default
// for every modifier in spec.md §3.
func (m Modifiers) Resolved() Modifiers {
	r := m
	for _, f := range []*int{&r.CBSZ, &r.ABID, &r.BLGP, &r.OPSEL, &r.NEG, &r.NEGHI} {
		if *f == Absent {
			*f = 0
		}
	}
	return r
}

// IsDefault reports whether every field is absent or zero.
func (m Modifiers) IsDefault() bool {
	r := m.Resolved()
	return r.CBSZ == 0 && r.ABID == 0 && r.BLGP == 0 && r.OPSEL == 0 && r.NEG == 0 && r.NEGHI == 0
}
