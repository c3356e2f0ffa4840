package mapper

import (
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// Sparse-K mapping (spec.md §4.3 family 5) has no original-source ground
// truth: SMFMAC/SWMMAC postdate matrix_calculator.py, which covers only
// cdna1/cdna2/rdna3. It is derived from spec.md §4.3 family 5's "packs 2
// bits per (i, k_raw/4) pair" description and checked against the
// worked example in spec.md §8 (E7), the only documented ground truth
// for this pattern.
//
// K holds a 2-bit compression index per queried column k, addressed
// precisely at 2-bit granularity; every 4:2-structured group of 4
// raw columns shares one 4-bit nibble (2 adjacent 2-bit fields). A row's
// columns split across the two halves of the wave when the instruction's
// K dimension needs more than waveSize/2 columns per row's register,
// which is why i=2 at the high half of K lands on lane i+waveSize/2
// rather than lane i: the upper half of the wave holds the upper half
// of that row's compression metadata. pkg/modifier's OPSEL handling (the
// RDNA4-only "alternative K slot position" of spec.md §4.4 rule 6)
// widens the 2-bit answer to its containing 4-bit nibble; it never
// touches the lane this package computes.
const nibblesPerRegister = 8
const bitsPerNibble = 4

func sparseKLocate(m, waveSize, blocks, block, i, k, kDim int) coord.RegisterLocation {
	groupSize := kDim / 2
	half := 0
	localK := k
	if groupSize > 0 {
		half = k / groupSize
		localK = k % groupSize
	}
	pairIndex := localK / 2
	sub := localK % 2

	regno := pairIndex / nibblesPerRegister
	nibbleLocal := pairIndex % nibblesPerRegister
	bitLo := nibbleLocal*bitsPerNibble + sub*2

	lane := block*m + i + half*(waveSize/2)
	if waveSize > 0 {
		lane %= waveSize
	}
	return coord.RegisterLocation{
		GPROffset: regno,
		Lane:      lane,
		BitLo:     bitLo,
		BitHi:     bitLo + 1,
	}
}

// SparseLocate computes K's base location, shared by CDNA3 SMFMAC and
// RDNA4 SWMMAC; the host architecture only changes the wave size.
func SparseLocate(d *descriptor.InstructionDescriptor, waveSize int, c coord.Coordinate) (coord.RegisterLocation, error) {
	if c.Matrix != coord.K {
		return coord.RegisterLocation{}, calcerr.New(calcerr.BadUsage, "matrix %s not valid for sparse-K pattern", c.Matrix)
	}
	if c.I >= d.M || c.K >= d.K || c.Block >= d.Blocks {
		return coord.RegisterLocation{}, calcerr.New(calcerr.OutOfRangeCoordinate,
			"coordinate %s out of range for %s (M=%d K=%d blocks=%d)", c, d.Mnemonic, d.M, d.K, d.Blocks)
	}
	return sparseKLocate(d.M, waveSize, d.Blocks, c.Block, c.I, c.K, d.K), nil
}

// SparseLookup is the inverse of SparseLocate, by exhaustive enumeration
// of the instruction's (small) coordinate space.
func SparseLookup(d *descriptor.InstructionDescriptor, waveSize, gpr, lane int) ([]coord.Coordinate, error) {
	var out []coord.Coordinate
	for block := 0; block < d.Blocks; block++ {
		for i := 0; i < d.M; i++ {
			for k := 0; k < d.K; k++ {
				loc := sparseKLocate(d.M, waveSize, d.Blocks, block, i, k, d.K)
				if loc.GPROffset == gpr && loc.Lane == lane {
					out = append(out, coord.Coordinate{Matrix: coord.K, I: i, K: k, Block: block})
				}
			}
		}
	}
	return out, nil
}
