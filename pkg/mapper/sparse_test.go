package mapper

import (
	"testing"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

// rdna4Swmmac mirrors the catalog row backing spec.md's E7 worked example:
// RDNA4 V_SWMMAC_F32_16X16X32_F16, M=16, K=32, compression (sparse) on.
func rdna4Swmmac() *descriptor.InstructionDescriptor {
	return &descriptor.InstructionDescriptor{
		Arch:     arch.RDNA4,
		Mnemonic: "V_SWMMAC_F32_16X16X32_F16",
		M: 16, N: 16, K: 32, Blocks: 1,
		GPRs:     descriptor.GPRCounts{A: 16, B: 16, C: 8, D: 8, K: 1},
		SrcTypes: [4]descriptor.DType{descriptor.FP16, descriptor.FP16, descriptor.FP32, descriptor.FP32},
		Pattern:  descriptor.Wave32WMMA,
		IsSparse: true,
	}
}

// TestSparseLocate_E7Base pins the un-widened half of spec.md E7:
// K[2][31] locates to gpr=0, lane=18, bits [31:30], the high 2-bit field
// of nibble [31:28] (E7's opsel=1 makes pkg/modifier widen that field to
// the whole nibble, so the base 2-bit answer here sits inside E7's
// reported [31:28] range).
func TestSparseLocate_E7Base(t *testing.T) {
	d := rdna4Swmmac()
	loc, err := SparseLocate(d, d.Arch.WaveSize(), coord.Coordinate{Matrix: coord.K, I: 2, K: 31})
	if err != nil {
		t.Fatalf("SparseLocate: %v", err)
	}
	if loc.GPROffset != 0 || loc.Lane != 18 {
		t.Fatalf("K[2][31] = gpr%d{%d}, want gpr0{18}", loc.GPROffset, loc.Lane)
	}
	if loc.BitLo < 28 || loc.BitHi > 31 {
		t.Errorf("K[2][31] bits [%d:%d] not contained in E7's [31:28]", loc.BitHi, loc.BitLo)
	}
}

// TestSparseLookup_RoundTrip checks every K coordinate inverts through
// SparseLookup.
func TestSparseLookup_RoundTrip(t *testing.T) {
	d := rdna4Swmmac()
	waveSize := d.Arch.WaveSize()
	for i := 0; i < d.M; i++ {
		for k := 0; k < d.K; k++ {
			c := coord.Coordinate{Matrix: coord.K, I: i, K: k}
			loc, err := SparseLocate(d, waveSize, c)
			if err != nil {
				t.Fatalf("SparseLocate(%s): %v", c, err)
			}
			if loc.Lane < 0 || loc.Lane >= waveSize {
				t.Fatalf("%s locates to out-of-range lane %d", c, loc.Lane)
			}
			inverted, err := SparseLookup(d, waveSize, loc.GPROffset, loc.Lane)
			if err != nil {
				t.Fatalf("SparseLookup: %v", err)
			}
			if !containsCoord(inverted, c) {
				t.Fatalf("round trip failed for %s -> %s -> %v", c, loc, inverted)
			}
		}
	}
}

// TestSparseLocate_RejectsNonKMatrix checks the guard that routes A/B/C/D
// away from this family even when called directly.
func TestSparseLocate_RejectsNonKMatrix(t *testing.T) {
	d := rdna4Swmmac()
	if _, err := SparseLocate(d, d.Arch.WaveSize(), coord.Coordinate{Matrix: coord.A, I: 0, K: 0}); err == nil {
		t.Fatal("expected an error locating A through the sparse-K formula")
	}
}

// TestSparseLocate_OutOfRangeCoordinate checks the bounds guard on I.
func TestSparseLocate_OutOfRangeCoordinate(t *testing.T) {
	d := rdna4Swmmac()
	if _, err := SparseLocate(d, d.Arch.WaveSize(), coord.Coordinate{Matrix: coord.K, I: d.M, K: 0}); err == nil {
		t.Fatal("expected an out-of-range error for I=M")
	}
}
