package mapper

import (
	"testing"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// TestLocate_SparseRoutesKOrthogonallyFromPattern is the regression test
// for the dispatch bug this package was missing coverage for: a sparse
// descriptor's Pattern still governs A/B/C/D, and only K is diverted to
// the sparse-K formula. A dispatcher that branched on Pattern alone
// (treating sparse as a fifth pattern) would send every matrix through
// SparseLocate and fail on A/B/C/D.
func TestLocate_SparseRoutesKOrthogonallyFromPattern(t *testing.T) {
	d := rdna4Swmmac()
	waveSize := d.Arch.WaveSize()

	aCoord := coord.Coordinate{Matrix: coord.A, I: 0, K: 0}
	aFromLocate, err := Locate(d, waveSize, aCoord, 0)
	if err != nil {
		t.Fatalf("Locate(A): %v", err)
	}
	aFromWave32, err := Wave32Locate(d, waveSize, aCoord, 0)
	if err != nil {
		t.Fatalf("Wave32Locate(A): %v", err)
	}
	if aFromLocate != aFromWave32 {
		t.Errorf("Locate(A) = %+v, want the descriptor's base Pattern formula %+v", aFromLocate, aFromWave32)
	}

	kCoord := coord.Coordinate{Matrix: coord.K, I: 2, K: 31}
	kFromLocate, err := Locate(d, waveSize, kCoord, 0)
	if err != nil {
		t.Fatalf("Locate(K): %v", err)
	}
	kFromSparse, err := SparseLocate(d, waveSize, kCoord)
	if err != nil {
		t.Fatalf("SparseLocate: %v", err)
	}
	if kFromLocate != kFromSparse {
		t.Errorf("Locate(K) = %+v, want the sparse-K formula %+v", kFromLocate, kFromSparse)
	}
}

// TestLookup_SparseRoutesKOrthogonallyFromPattern mirrors the above at
// the Lookup half of the pair, for a dense (non-wave32) sparse pattern
// too, so the dispatch fix is pinned for both base Pattern families that
// can carry IsSparse.
func TestLookup_SparseRoutesKOrthogonallyFromPattern(t *testing.T) {
	d := &descriptor.InstructionDescriptor{
		Arch:     arch.CDNA3,
		Mnemonic: "V_SMFMAC_F32_16X16X32_F16",
		M: 16, N: 16, K: 32, Blocks: 1,
		GPRs:     descriptor.GPRCounts{A: 2, B: 4, C: 4, D: 4, K: 1},
		SrcTypes: [4]descriptor.DType{descriptor.FP16, descriptor.FP16, descriptor.FP32, descriptor.FP32},
		Pattern:  descriptor.MultiRowPerLane,
		IsSparse: true,
	}
	waveSize := d.Arch.WaveSize()

	dLoc, err := Locate(d, waveSize, coord.Coordinate{Matrix: coord.D, I: 3, J: 5}, 0)
	if err != nil {
		t.Fatalf("Locate(D): %v", err)
	}
	fromLookup, err := Lookup(d, waveSize, coord.D, dLoc.GPROffset, dLoc.Lane, 0)
	if err != nil {
		t.Fatalf("Lookup(D): %v", err)
	}
	if !containsCoord(fromLookup, coord.Coordinate{Matrix: coord.D, I: 3, J: 5}) {
		t.Fatalf("Lookup(D) at (%d,%d) = %v, missing D[3][5]", dLoc.GPROffset, dLoc.Lane, fromLookup)
	}

	kLoc, err := Locate(d, waveSize, coord.Coordinate{Matrix: coord.K, I: 0, K: 0}, 0)
	if err != nil {
		t.Fatalf("Locate(K): %v", err)
	}
	fromSparseLookup, err := Lookup(d, waveSize, coord.K, kLoc.GPROffset, kLoc.Lane, 0)
	if err != nil {
		t.Fatalf("Lookup(K): %v", err)
	}
	if !containsCoord(fromSparseLookup, coord.Coordinate{Matrix: coord.K, I: 0, K: 0}) {
		t.Fatalf("Lookup(K) at (%d,%d) = %v, missing K[0][0]", kLoc.GPROffset, kLoc.Lane, fromSparseLookup)
	}
}

// TestLocate_UnknownPatternIsRejected checks the default-case guard
// fires rather than silently mismapping an uninitialized Pattern.
func TestLocate_UnknownPatternIsRejected(t *testing.T) {
	d := cdna2_4x4x4f16()
	d.Pattern = descriptor.Pattern(99)
	if _, err := Locate(d, d.Arch.WaveSize(), coord.Coordinate{Matrix: coord.A, I: 0, K: 0}, 0); err == nil {
		t.Fatal("expected an error for an unrecognized pattern")
	}
}
