package mapper

import (
	"testing"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
)

func rdna3Wmma() *descriptor.InstructionDescriptor {
	return &descriptor.InstructionDescriptor{
		Arch:     arch.RDNA3,
		Mnemonic: "V_WMMA_F32_16X16X16_F16",
		M: 16, N: 16, K: 16, Blocks: 1,
		GPRs:     descriptor.GPRCounts{A: 8, B: 8, C: 8, D: 8},
		SrcTypes: [4]descriptor.DType{descriptor.FP16, descriptor.FP16, descriptor.FP32, descriptor.FP32},
		Pattern:  descriptor.Wave32WMMA,
	}
}

// TestWave32InputLocate_DuplicatedAcrossHalfWave pins spec.md family 4's
// A/B rule: a row is duplicated every 16 lanes across the wave, so the
// same (gpr, bit range) shows up at row and row+16.
func TestWave32InputLocate_DuplicatedAcrossHalfWave(t *testing.T) {
	d := rdna3Wmma()
	loc, err := Wave32Locate(d, d.Arch.WaveSize(), coord.Coordinate{Matrix: coord.A, I: 5, K: 3}, 0)
	if err != nil {
		t.Fatalf("Wave32Locate: %v", err)
	}
	if loc.Lane != 5 {
		t.Errorf("expected row 5 to locate to lane 5, got %d", loc.Lane)
	}
	hits, err := Wave32Lookup(d, d.Arch.WaveSize(), coord.A, loc.GPROffset, loc.Lane, 0)
	if err != nil {
		t.Fatalf("Wave32Lookup: %v", err)
	}
	if !containsCoord(hits, coord.Coordinate{Matrix: coord.A, I: 5, K: 3}) {
		t.Fatalf("expected lookup(%d,%d) to include A[5][3], got %v", loc.GPROffset, loc.Lane, hits)
	}
}

// TestWave32OutputLocate_RoundTrip exercises the C/D formula (opselHalf
// 0) across the full coordinate space.
func TestWave32OutputLocate_RoundTrip(t *testing.T) {
	d := rdna3Wmma()
	waveSize := d.Arch.WaveSize()
	for i := 0; i < d.M; i++ {
		for j := 0; j < d.N; j++ {
			c := coord.Coordinate{Matrix: coord.D, I: i, J: j}
			loc, err := Wave32Locate(d, waveSize, c, 0)
			if err != nil {
				t.Fatalf("Wave32Locate(%s): %v", c, err)
			}
			if loc.Lane < 0 || loc.Lane >= waveSize {
				t.Fatalf("%s locates to out-of-range lane %d", c, loc.Lane)
			}
			inverted, err := Wave32Lookup(d, waveSize, coord.D, loc.GPROffset, loc.Lane, 0)
			if err != nil {
				t.Fatalf("Wave32Lookup: %v", err)
			}
			if !containsCoord(inverted, c) {
				t.Fatalf("round trip failed for %s -> %s -> %v", c, loc, inverted)
			}
		}
	}
}
