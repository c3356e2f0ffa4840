package mapper

import (
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// denseInputLocate implements the gfx9 (CDNA) A/B input-register
// formula, grounded on InstCalcGfx9.__get_input_reg_lanes in
// _examples/original_source/matrix_calculator.py. It is shared by
// spec.md's "Dense MFMA" and "FP64 pair-register" families: the pair
// behavior falls out of regLoc's bits==64 case, not a separate formula.
//
// rowDim is M for the A matrix, N for the B matrix; row is i for A, j
// for B; the contraction index k and block b are shared. kDim is the
// instruction's full contraction dimension (K), needed for the second
// of the original's two divisions: elements_in_contiguous_gprs starts
// as floor(64/(rowDim*blocks)), then gets reassigned to
// floor(kDim/elements_in_contiguous_gprs) before it governs
// local_element and the lane's block-stride term.
func denseInputLocate(bits, rowDim, blocks, kDim, row, k, block int) coord.RegisterLocation {
	elementsPerGPR := 64 / (rowDim * blocks)
	if elementsPerGPR < 1 {
		elementsPerGPR = 1
	}
	groupSize := kDim / elementsPerGPR
	if groupSize < 1 {
		groupSize = 1
	}
	localElement := k % groupSize
	lane := block*rowDim + (k/groupSize)*rowDim*blocks + row
	return regLoc(bits, localElement, lane)
}

// denseInputLookup inverts denseInputLocate: given a physical (gpr,
// lane), recover every (row, k, block) coordinate that reads from it.
// It enumerates the instruction's small coordinate space rather than
// deriving a closed-form inverse, which by construction can never
// disagree with the forward formula above (spec.md §8 invariant 1).
func denseInputLookup(bits, rowDim, kDim, blocks, gpr, lane int) [][3]int {
	var out [][3]int
	for block := 0; block < blocks; block++ {
		for row := 0; row < rowDim; row++ {
			for k := 0; k < kDim; k++ {
				loc := denseInputLocate(bits, rowDim, blocks, kDim, row, k, block)
				if loc.GPROffset == gpr && loc.Lane == lane {
					out = append(out, [3]int{row, k, block})
				}
			}
		}
	}
	return out
}

// denseOutputLocate implements the gfx9 C/D output-register formula,
// grounded on InstCalcGfx9.__get_output_reg_lanes. It generalizes over
// every M/N shape the real ISA uses (4x4, 16x16, 32x32), which is why
// spec.md's "Multi-row-per-lane C/D" family is not a distinct code
// path here: the multirow behavior is this same formula evaluated with
// a larger M.
func denseOutputLocate(bits, m, n, i, j, block int) coord.RegisterLocation {
	multirowsPerRegister := 64 / n
	multirowHeight := 4
	if bits == 64 {
		multirowHeight = 1
	}
	perRegBlock := (n * m) / multirowHeight
	if perRegBlock < 1 {
		perRegBlock = 1
	}
	blocksPerRegister := ceilDiv(64, perRegBlock)

	localElement := block*((m*n)/64) + (i/(multirowHeight*multirowsPerRegister))*multirowHeight + i%multirowHeight
	lane := (block%blocksPerRegister)*n + ((i/multirowHeight)%multirowsPerRegister)*blocksPerRegister*n + j
	return regLoc(bits, localElement, lane)
}

func denseOutputLookup(bits, m, n, blocks, gpr, lane int) [][3]int {
	var out [][3]int
	for block := 0; block < blocks; block++ {
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				loc := denseOutputLocate(bits, m, n, i, j, block)
				if loc.GPROffset == gpr && loc.Lane == lane {
					out = append(out, [3]int{i, j, block})
				}
			}
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// DenseLocate dispatches A/B/C/D for the DenseMFMA, MultiRowPerLane, and
// FP64Pair patterns, per spec.md §4.3 families 1-3.
func DenseLocate(d *descriptor.InstructionDescriptor, c coord.Coordinate) (coord.RegisterLocation, error) {
	switch c.Matrix {
	case coord.A:
		if c.I >= d.M || c.K >= d.K || c.Block >= d.Blocks {
			return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
				"coordinate %s out of range for %s (M=%d K=%d blocks=%d)", c, d.Mnemonic, d.M, d.K, d.Blocks)
		}
		return denseInputLocate(d.ElementBits(coord.A), d.M, d.Blocks, d.K, c.I, c.K, c.Block), nil
	case coord.B:
		if c.J >= d.N || c.K >= d.K || c.Block >= d.Blocks {
			return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
				"coordinate %s out of range for %s (N=%d K=%d blocks=%d)", c, d.Mnemonic, d.N, d.K, d.Blocks)
		}
		return denseInputLocate(d.ElementBits(coord.B), d.N, d.Blocks, d.K, c.J, c.K, c.Block), nil
	case coord.C, coord.D:
		if c.I >= d.M || c.J >= d.N || c.Block >= d.Blocks {
			return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
				"coordinate %s out of range for %s (M=%d N=%d blocks=%d)", c, d.Mnemonic, d.M, d.N, d.Blocks)
		}
		return denseOutputLocate(d.ElementBits(c.Matrix), d.M, d.N, c.I, c.J, c.Block), nil
	default:
		return coord.RegisterLocation{}, calcerr.New(calcerr.BadUsage, "matrix %s not valid for dense pattern", c.Matrix)
	}
}

// DenseLookup is the inverse of DenseLocate.
func DenseLookup(d *descriptor.InstructionDescriptor, m coord.Matrix, gpr, lane int) ([]coord.Coordinate, error) {
	switch m {
	case coord.A:
		hits := denseInputLookup(d.ElementBits(coord.A), d.M, d.K, d.Blocks, gpr, lane)
		return toCoords(m, hits, func(h [3]int) coord.Coordinate {
			return coord.Coordinate{Matrix: m, I: h[0], K: h[1], Block: h[2]}
		}), nil
	case coord.B:
		hits := denseInputLookup(d.ElementBits(coord.B), d.N, d.K, d.Blocks, gpr, lane)
		return toCoords(m, hits, func(h [3]int) coord.Coordinate {
			return coord.Coordinate{Matrix: m, J: h[0], K: h[1], Block: h[2]}
		}), nil
	case coord.C, coord.D:
		hits := denseOutputLookup(d.ElementBits(m), d.M, d.N, d.Blocks, gpr, lane)
		return toCoords(m, hits, func(h [3]int) coord.Coordinate {
			return coord.Coordinate{Matrix: m, I: h[0], J: h[1], Block: h[2]}
		}), nil
	default:
		return nil, calcerr.New(calcerr.BadUsage, "matrix %s not valid for dense pattern", m)
	}
}

func toCoords(_ coord.Matrix, hits [][3]int, build func([3]int) coord.Coordinate) []coord.Coordinate {
	out := make([]coord.Coordinate, 0, len(hits))
	for _, h := range hits {
		out = append(out, build(h))
	}
	return out
}
