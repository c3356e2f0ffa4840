package mapper

import (
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// wave32InputLocate implements the gfx11 (RDNA) WMMA A/B input formula,
// grounded on InstCalcGfx11.__get_input_reg_lanes: each element's
// register holds the contraction index k directly (no elements-per-gpr
// packing across k, unlike the CDNA family), and the row index i is
// broadcast-duplicated every 16 lanes across the wave.
func wave32InputLocate(bits, _, i, k int) coord.RegisterLocation {
	// locate reports the first (lowest-lane) duplicate; modifiers/layout
	// enumeration consult wave32InputLanes for the full duplicate set.
	return regLoc(bits, k, i)
}

// wave32InputLanes returns every lane the given element is duplicated
// onto, per the "copies_to_return" loop in __get_input_reg_lanes.
func wave32InputLanes(waveSize, i int) []int {
	copies := 2
	if waveSize == 64 {
		copies = 4
	}
	lanes := make([]int, copies)
	l := i
	for n := 0; n < copies; n++ {
		lanes[n] = l
		l += 16
	}
	return lanes
}

// wave32OutputLocate implements the gfx11 C/D output formula, grounded
// on InstCalcGfx11.__get_output_reg_lanes: 16-bit outputs use OPSEL>>2
// to select between the low and high register half (see
// _calculate_initial_regno_offset). The half is folded into the element
// index handed to regLoc, so for 16-bit outputs it moves the bit range
// from [15:0] to [31:16] and leaves GPROffset unchanged.
func wave32OutputLocate(bits, waveSize, n, i, j, opselHalf int) coord.RegisterLocation {
	rowsPerRegSlot := waveSize / 16
	skipHalf := 1
	if bits == 16 {
		skipHalf = 2
	}
	regno := skipHalf*(i/rowsPerRegSlot) + opselHalf
	rowsPerVGPR := (waveSize * 16) / n
	lane := (n*(i%rowsPerVGPR) + j) % waveSize
	loc := regLoc(bits, regno, lane)
	return loc
}

// Wave32Locate dispatches A/B/C/D for the Wave32WMMA pattern (spec.md
// §4.3 family 4).
func Wave32Locate(d *descriptor.InstructionDescriptor, waveSize int, c coord.Coordinate, opselHalf int) (coord.RegisterLocation, error) {
	switch c.Matrix {
	case coord.A:
		if c.I >= d.M || c.K >= d.K {
			return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
				"coordinate %s out of range for %s", c, d.Mnemonic)
		}
		return wave32InputLocate(d.ElementBits(coord.A), waveSize, c.I, c.K), nil
	case coord.B:
		if c.J >= d.N || c.K >= d.K {
			return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
				"coordinate %s out of range for %s", c, d.Mnemonic)
		}
		return wave32InputLocate(d.ElementBits(coord.B), waveSize, c.J, c.K), nil
	case coord.C, coord.D:
		if c.I >= d.M || c.J >= d.N {
			return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
				"coordinate %s out of range for %s", c, d.Mnemonic)
		}
		return wave32OutputLocate(d.ElementBits(c.Matrix), waveSize, d.N, c.I, c.J, opselHalf), nil
	default:
		return coord.RegisterLocation{}, calcerr.New(calcerr.BadUsage, "matrix %s not valid for wave32 pattern", c.Matrix)
	}
}

// Wave32Lookup is the inverse of Wave32Locate, by exhaustive enumeration
// of the instruction's (small) coordinate space.
func Wave32Lookup(d *descriptor.InstructionDescriptor, waveSize int, m coord.Matrix, gpr, lane, opselHalf int) ([]coord.Coordinate, error) {
	switch m {
	case coord.A, coord.B:
		bits := d.ElementBits(m)
		rowDim, kDim := d.M, d.K
		if m == coord.B {
			rowDim = d.N
		}
		var out []coord.Coordinate
		for row := 0; row < rowDim; row++ {
			for k := 0; k < kDim; k++ {
				l := wave32InputLocate(bits, waveSize, row, k)
				if l.GPROffset != gpr {
					continue
				}
				for _, ln := range wave32InputLanes(waveSize, row) {
					if ln == lane {
						if m == coord.A {
							out = append(out, coord.Coordinate{Matrix: m, I: row, K: k})
						} else {
							out = append(out, coord.Coordinate{Matrix: m, J: row, K: k})
						}
						break
					}
				}
			}
		}
		return out, nil
	case coord.C, coord.D:
		bits := d.ElementBits(m)
		var out []coord.Coordinate
		for i := 0; i < d.M; i++ {
			for j := 0; j < d.N; j++ {
				loc := wave32OutputLocate(bits, waveSize, d.N, i, j, opselHalf)
				if loc.GPROffset == gpr && loc.Lane == lane {
					out = append(out, coord.Coordinate{Matrix: m, I: i, J: j})
				}
			}
		}
		return out, nil
	default:
		return nil, calcerr.New(calcerr.BadUsage, "matrix %s not valid for wave32 pattern", m)
	}
}
