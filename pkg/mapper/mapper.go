package mapper

import (
	"sort"

	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// Locate dispatches to the descriptor's Pattern family and returns the
// RegisterLocation for a fully-resolved coordinate (any CBSZ/ABID block
// pre-map must already have been applied by the caller; see
// pkg/modifier). opselHalf is consulted only by the Wave32WMMA pattern.
//
// K (spec.md §4.3 family 5) is not one of the four Pattern values: it is
// an orthogonal addition gated by IsSparse, layered on top of whichever
// Pattern governs the same descriptor's A/B/C/D. A sparse descriptor's
// Pattern still describes its dense operands and must be checked first
// for every other matrix.
func Locate(d *descriptor.InstructionDescriptor, waveSize int, c coord.Coordinate, opselHalf int) (coord.RegisterLocation, error) {
	if d.IsSparse && c.Matrix == coord.K {
		return SparseLocate(d, waveSize, c)
	}
	switch d.Pattern {
	case descriptor.DenseMFMA, descriptor.MultiRowPerLane, descriptor.FP64Pair:
		return DenseLocate(d, c)
	case descriptor.Wave32WMMA:
		return Wave32Locate(d, waveSize, c, opselHalf)
	default:
		return coord.RegisterLocation{}, calcerr.New(calcerr.CatalogInconsistency, "unknown pattern %v for %s", d.Pattern, d.Mnemonic)
	}
}

// Lookup dispatches to the descriptor's Pattern family and returns every
// coordinate that reads or writes the given (gpr, lane), ordered from
// least-significant bit range to most-significant (spec.md §4.3). See
// Locate for why K is routed on IsSparse rather than Pattern.
func Lookup(d *descriptor.InstructionDescriptor, waveSize int, m coord.Matrix, gpr, lane, opselHalf int) ([]coord.Coordinate, error) {
	var out []coord.Coordinate
	var err error
	if d.IsSparse && m == coord.K {
		out, err = SparseLookup(d, waveSize, gpr, lane)
	} else {
		switch d.Pattern {
		case descriptor.DenseMFMA, descriptor.MultiRowPerLane, descriptor.FP64Pair:
			out, err = DenseLookup(d, m, gpr, lane)
		case descriptor.Wave32WMMA:
			out, err = Wave32Lookup(d, waveSize, m, gpr, lane, opselHalf)
		default:
			return nil, calcerr.New(calcerr.CatalogInconsistency, "unknown pattern %v for %s", d.Pattern, d.Mnemonic)
		}
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		li, _ := Locate(d, waveSize, out[i], opselHalf)
		lj, _ := Locate(d, waveSize, out[j], opselHalf)
		return li.BitLo < lj.BitLo
	})
	return out, nil
}
