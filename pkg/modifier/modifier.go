// Package modifier implements the Modifier Engine (spec.md §4.4): it
// validates a query's {cbsz, abid, blgp, opsel, neg, neg_hi} against an
// instruction descriptor's modifier_support flags, then wraps
// pkg/mapper's locate/lookup with the pre-map coordinate rewrites and
// post-map location annotations each modifier requires.
//
// Per spec.md §9's design note, no modifier logic lives inside the base
// mapping arithmetic in pkg/mapper: every modifier here is either a
// rewrite of the coordinate/lane handed to the mapper, or a rewrite of
// the RegisterLocation/Coordinate the mapper returns.
package modifier

import (
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
	"github.com/amd/mfmacalc/pkg/mapper"
)

// Validate checks structural legality (modifier allowed for this
// instruction) before range legality (value within its allowed set),
// per spec.md §4.4's stated precedence.
func Validate(d *descriptor.InstructionDescriptor, mods coord.Modifiers) error {
	r := mods.Resolved()

	if err := checkSupport(d.ModSupport.CBSZ, r.CBSZ, "cbsz"); err != nil {
		return err
	}
	if err := checkSupport(d.ModSupport.ABID, r.ABID, "abid"); err != nil {
		return err
	}
	if err := checkSupport(d.ModSupport.BLGP, r.BLGP, "blgp"); err != nil {
		return err
	}
	if err := checkSupport(d.ModSupport.OPSEL, r.OPSEL, "opsel"); err != nil {
		return err
	}
	if err := checkSupport(d.ModSupport.NEG, r.NEG, "neg"); err != nil {
		return err
	}
	if err := checkSupport(d.ModSupport.NEGHI, r.NEGHI, "neg_hi"); err != nil {
		return err
	}

	if d.ModSupport.CBSZ {
		maxCBSZ := log2(d.Blocks)
		if r.CBSZ < 0 || r.CBSZ > maxCBSZ {
			return calcerr.New(calcerr.ModifierOutOfRange, "cbsz %d out of range [0,%d] for %s", r.CBSZ, maxCBSZ, d.Mnemonic)
		}
	}
	if d.ModSupport.ABID {
		if err := validateABID(d, r); err != nil {
			return err
		}
	}
	if d.ModSupport.BLGP {
		if r.BLGP < 0 || r.BLGP > 7 {
			return calcerr.New(calcerr.ModifierOutOfRange, "blgp %d out of range [0,7] for %s", r.BLGP, d.Mnemonic)
		}
	}
	if d.ModSupport.OPSEL {
		if err := validateOPSEL(d, r); err != nil {
			return err
		}
	}
	if d.ModSupport.NEG && (r.NEG < 0 || r.NEG > 7) {
		return calcerr.New(calcerr.ModifierOutOfRange, "neg %d out of range [0,7] for %s", r.NEG, d.Mnemonic)
	}
	if d.ModSupport.NEGHI && (r.NEGHI < 0 || r.NEGHI > 7) {
		return calcerr.New(calcerr.ModifierOutOfRange, "neg_hi %d out of range [0,7] for %s", r.NEGHI, d.Mnemonic)
	}
	return nil
}

func checkSupport(supported bool, value int, name string) error {
	if !supported && value != 0 {
		return calcerr.New(calcerr.UnsupportedModifier, "%s is not supported on this instruction (value %d)", name, value)
	}
	return nil
}

func validateABID(d *descriptor.InstructionDescriptor, r coord.Modifiers) error {
	switch d.ModSupport.ABIDMode {
	case descriptor.ABIDBroadcast:
		max := (1 << uint(r.CBSZ)) - 1
		if r.ABID < 0 || r.ABID > max {
			return calcerr.New(calcerr.ModifierOutOfRange, "abid %d out of range [0,%d] for cbsz=%d on %s", r.ABID, max, r.CBSZ, d.Mnemonic)
		}
	case descriptor.ABIDSparseSelect:
		if r.CBSZ != 0 {
			// rule 2: CBSZ != 0 forces slot 0 and ignores ABID.
			return nil
		}
		max := 3
		if d.SrcTypes[0].Bits() == 8 {
			max = 1
		}
		if r.ABID < 0 || r.ABID > max {
			return calcerr.New(calcerr.ModifierOutOfRange, "abid %d out of range [0,%d] for sparse field-select on %s", r.ABID, max, d.Mnemonic)
		}
	}
	return nil
}

func validateOPSEL(d *descriptor.InstructionDescriptor, r coord.Modifiers) error {
	switch {
	case d.IsSparse:
		if r.OPSEL < 0 || r.OPSEL > 1 {
			return calcerr.New(calcerr.ModifierOutOfRange, "opsel %d out of range [0,1] for sparse K select on %s", r.OPSEL, d.Mnemonic)
		}
	case d.Pattern == descriptor.Wave32WMMA && d.ElementBits(coord.C) == 16:
		if r.OPSEL != 0 && r.OPSEL != 4 {
			return calcerr.New(calcerr.ModifierOutOfRange, "opsel %d must be 0 or 4 for 16-bit output on %s", r.OPSEL, d.Mnemonic)
		}
	default:
		// spec.md §9 open question (ii): undocumented whether OPSEL has any
		// effect on non-sparse, non-16-bit-output instructions. Until the
		// source's behavior is known, only the no-op value is accepted.
		if r.OPSEL != 0 {
			return calcerr.New(calcerr.ModifierOutOfRange, "opsel %d has no defined effect on %s", r.OPSEL, d.Mnemonic)
		}
	}
	return nil
}

func log2(n int) int {
	r := 0
	for n > 1 {
		n >>= 1
		r++
	}
	return r
}

// preMapBlock implements rule 1 and, restricted to sparse descriptors,
// its K-matrix extension: effective_block = (block &^ mask) | (abid &
// mask), mask = (1<<cbsz)-1. Only the A and K matrices broadcast this
// way; B, C, D are untouched.
func preMapBlock(d *descriptor.InstructionDescriptor, m coord.Matrix, block int, r coord.Modifiers) int {
	if (m != coord.A && m != coord.K) || !d.ModSupport.CBSZ || r.CBSZ == 0 {
		return block
	}
	if m == coord.K && d.ModSupport.ABIDMode != descriptor.ABIDSparseSelect {
		return block
	}
	mask := (1 << uint(r.CBSZ)) - 1
	return (block &^ mask) | (r.ABID & mask)
}

// opselHalf translates the raw OPSEL value into the 0/1 register-half
// index pkg/mapper's Wave32 output formula consumes, per rule 5.
func opselHalf(r coord.Modifiers) int {
	if r.OPSEL == 4 {
		return 1
	}
	return 0
}

// Locate is the modifier-aware counterpart of mapper.Locate: it
// validates mods, applies every pre-map rewrite, delegates to
// pkg/mapper, then applies every post-map annotation.
func Locate(d *descriptor.InstructionDescriptor, waveSize int, c coord.Coordinate, mods coord.Modifiers) (coord.RegisterLocation, error) {
	if err := Validate(d, mods); err != nil {
		return coord.RegisterLocation{}, err
	}
	r := mods.Resolved()

	c.Block = preMapBlock(d, c.Matrix, c.Block, r)

	loc, err := mapper.Locate(d, waveSize, c, opselHalf(r))
	if err != nil {
		return coord.RegisterLocation{}, err
	}

	if d.ModSupport.BLGPMode == descriptor.BLGPLaneSwizzle && c.Matrix == coord.B && r.BLGP != 0 {
		loc.Lane = blgpSource(r.BLGP, loc.Lane, waveSize)
	}
	if d.ModSupport.BLGPMode == descriptor.BLGPFP64Negate {
		loc.Sign = fp64NegateSign(c.Matrix, r.BLGP)
	}
	if d.ModSupport.NEG || d.ModSupport.NEGHI {
		loc = applyNegSigns(d, c.Matrix, loc, r)
	}
	if d.IsSparse && d.ModSupport.OPSEL && c.Matrix == coord.K {
		loc = applySparseOpsel(loc, r.OPSEL)
	}
	return loc, nil
}

// Lookup is the modifier-aware counterpart of mapper.Lookup.
func Lookup(d *descriptor.InstructionDescriptor, waveSize int, m coord.Matrix, gpr, lane int, mods coord.Modifiers) ([]coord.Coordinate, error) {
	if err := Validate(d, mods); err != nil {
		return nil, err
	}
	r := mods.Resolved()

	if d.ModSupport.BLGPMode == descriptor.BLGPLaneSwizzle && m == coord.B && r.BLGP != 0 {
		seen := make(map[coord.Coordinate]bool)
		var out []coord.Coordinate
		for _, targetLane := range blgpTargets(r.BLGP, lane, waveSize) {
			hits, err := mapper.Lookup(d, waveSize, m, gpr, targetLane, opselHalf(r))
			if err != nil {
				return nil, err
			}
			for _, c := range hits {
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
		return out, nil
	}

	return mapper.Lookup(d, waveSize, m, gpr, lane, opselHalf(r))
}

// blgpSource inverts the BLGP lane-swizzle permutation of spec.md §4.4
// rule 3: given the natural (unswizzled) lane the base mapping computed
// for a B coordinate, it returns the physical lane the instruction
// actually reads that value from.
func blgpSource(blgp, outputLane, w int) int {
	half := w / 2
	quarter := w / 4
	switch blgp {
	case 0:
		return outputLane
	case 1: // broadcast [0,W/2) to [W/2,W)
		if outputLane >= half {
			return outputLane - half
		}
		return outputLane
	case 2: // broadcast [W/2,W) to [0,W/2)
		if outputLane < half {
			return outputLane + half
		}
		return outputLane
	case 3: // rotate down by W/4: output_lane = (input_lane + W/4) mod W (spec.md §9 open question iii)
		return ((outputLane-quarter)%w + w) % w
	default: // 4-7: broadcast quarter group (blgp-4) to every other quarter group
		g := blgp - 4
		outGroup := outputLane / quarter
		if outGroup == g {
			return outputLane
		}
		return g*quarter + outputLane%quarter
	}
}

// blgpTargets is the forward direction of blgpSource, found by
// enumeration rather than a hand-derived closed form, consistent with
// pkg/mapper's brute-force inverses.
func blgpTargets(blgp, sourceLane, w int) []int {
	var out []int
	for output := 0; output < w; output++ {
		if blgpSource(blgp, output, w) == sourceLane {
			out = append(out, output)
		}
	}
	return out
}

// fp64NegateSign implements rule 4: on CDNA3 FP64 MFMA, BLGP is
// repurposed as a 3-bit negate mask over (A, B, C); no lane remap.
func fp64NegateSign(m coord.Matrix, blgp int) coord.Sign {
	bit := 0
	switch m {
	case coord.A:
		bit = 0
	case coord.B:
		bit = 1
	case coord.C, coord.D:
		bit = 2
	default:
		return coord.Positive
	}
	if blgp&(1<<uint(bit)) != 0 {
		return coord.Negated
	}
	return coord.Positive
}

// applyNegSigns implements rule 7. For A/B, NEG toggles the low
// 16-bit half's sign and NEG_HI the high half's; for C/D, NEG negates
// and NEG_HI takes the absolute value, with both set resolved as
// absolute-then-negate (spec.md §9 open question (i)).
func applyNegSigns(d *descriptor.InstructionDescriptor, m coord.Matrix, loc coord.RegisterLocation, r coord.Modifiers) coord.RegisterLocation {
	var bit int
	switch m {
	case coord.A:
		bit = 0
	case coord.B:
		bit = 1
	case coord.C, coord.D:
		bit = 2
	default:
		return loc
	}
	negSet := r.NEG&(1<<uint(bit)) != 0
	neghiSet := r.NEGHI&(1<<uint(bit)) != 0

	if m == coord.C || m == coord.D {
		sign := coord.Positive
		if neghiSet {
			sign = coord.Absolute
		}
		if negSet {
			if sign == coord.Absolute {
				sign = coord.NegatedAbsolute
			} else {
				sign = coord.Negated
			}
		}
		loc.Sign = sign
		return loc
	}

	// A/B: NEG governs the low half, NEG_HI the high half, unless the
	// element occupies the whole register (32-bit or wider), in which
	// case only NEG applies.
	if d.ElementBits(m) == 16 && loc.BitLo >= 16 {
		if neghiSet {
			loc.Sign = coord.Negated
		}
		return loc
	}
	if negSet {
		loc.Sign = coord.Negated
	}
	return loc
}

// applySparseOpsel implements rule 6: OPSEL selects among alternative K
// slot positions within a register. Sparse K has no ground truth in
// original_source (SWMMAC postdates it); pkg/mapper.sparseKLocate packs
// two 2-bit compression fields per 4-bit nibble, and OPSEL=1 widens the
// queried field from its own 2 bits to the full containing nibble
// rather than shifting to a disjoint field, matching spec.md §8's E7.
func applySparseOpsel(loc coord.RegisterLocation, opsel int) coord.RegisterLocation {
	if opsel == 0 {
		return loc
	}
	nibbleLo := (loc.BitLo / 4) * 4
	loc.BitLo = nibbleLo
	loc.BitHi = nibbleLo + 3
	return loc
}
