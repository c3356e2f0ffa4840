package mapper

import (
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// SelfCheck runs the construction-time self-consistency check of
// spec.md §4.2: for every matrix legal on the descriptor, enumerate its
// coordinate space, compute the forward mapping, invert it, and assert
// the round trip (§8 invariant 1), that every coordinate's (gpr, lane,
// bit-range) triple is distinct from every other coordinate's (§8
// invariant 3), and that the maximum gpr/lane reported stays within the
// descriptor's declared budget (§8 invariant 4). A mismatch is
// CatalogInconsistency and is fatal at initialization, per spec.md §4.2
// and §9 ("this must be a startup-time self-test, not an optional
// utility").
func SelfCheck(d *descriptor.InstructionDescriptor) error {
	waveSize := d.Arch.WaveSize()
	matrices := []coord.Matrix{coord.A, coord.B, coord.C, coord.D}
	if d.IsSparse {
		matrices = append(matrices, coord.K)
	}
	for _, m := range matrices {
		if err := selfCheckMatrix(d, waveSize, m); err != nil {
			return err
		}
	}
	return nil
}

func selfCheckMatrix(d *descriptor.InstructionDescriptor, waveSize int, m coord.Matrix) error {
	coords := d.Enumerate(m)
	seen := make(map[[3]int]coord.Coordinate) // (gpr, lane, bitLo) -> owning coordinate

	maxGPR := -1
	maxLane := -1
	for _, c := range coords {
		loc, err := Locate(d, waveSize, c, 0)
		if err != nil {
			return calcerr.New(calcerr.CatalogInconsistency,
				"%s: locate(%s) failed: %v", d.Mnemonic, c, err)
		}
		key := [3]int{loc.GPROffset, loc.Lane, loc.BitLo}
		if other, dup := seen[key]; dup && other != c {
			return calcerr.New(calcerr.CatalogInconsistency,
				"%s: coordinates %s and %s both map to %s (disjointness violated)", d.Mnemonic, other, c, loc)
		}
		seen[key] = c

		if loc.GPROffset > maxGPR {
			maxGPR = loc.GPROffset
		}
		if loc.Lane > maxLane {
			maxLane = loc.Lane
		}
		if loc.Lane < 0 || loc.Lane >= waveSize {
			return calcerr.New(calcerr.CatalogInconsistency,
				"%s: %s locates to out-of-range lane %d (wave size %d)", d.Mnemonic, c, loc.Lane, waveSize)
		}

		inverted, err := Lookup(d, waveSize, m, loc.GPROffset, loc.Lane, 0)
		if err != nil {
			return calcerr.New(calcerr.CatalogInconsistency,
				"%s: lookup(%s) failed: %v", d.Mnemonic, d.Mnemonic, err)
		}
		if !contains(inverted, c) {
			return calcerr.New(calcerr.CatalogInconsistency,
				"%s: round trip failed for %s -> %s -> %v", d.Mnemonic, c, loc, inverted)
		}
	}

	wantMaxGPR := d.GPRCount(m) - 1
	if d.ElementBits(m) == 64 {
		wantMaxGPR--
	}
	if maxGPR > wantMaxGPR {
		return calcerr.New(calcerr.CatalogInconsistency,
			"%s: matrix %s uses gpr %d beyond declared budget %d", d.Mnemonic, m, maxGPR, wantMaxGPR)
	}
	return nil
}

func contains(cs []coord.Coordinate, target coord.Coordinate) bool {
	for _, c := range cs {
		if c == target {
			return true
		}
	}
	return false
}
