// Package mapper implements the Coordinate<->Register Mapper (spec.md
// §4.3): the pair of total functions locate/lookup for every
// (instruction, matrix), dispatched by the descriptor's Pattern.
//
// Mapper functions never look at modifiers. Per spec.md §9's design
// note ("never entangle modifier logic with base mapping arithmetic"),
// every modifier is applied by pkg/modifier as a pre-map rewrite of the
// coordinate/lane passed in here, or a post-map rewrite of the
// RegisterLocation/Coordinate this package returns.
package mapper

import "github.com/amd/mfmacalc/pkg/coord"

// regLoc builds a RegisterLocation from an element's bit width and its
// flat "local_element" index (the unit the closed-form formulas
// compute, shared across dtypes) plus a lane. This is the Go
// counterpart of the original tool's InstCalc._get_reg_name: rather
// than building and re-splitting a formatted string, it returns the
// typed fields directly.
func regLoc(bits, element, lane int) coord.RegisterLocation {
	switch bits {
	case 64:
		return coord.RegisterLocation{
			GPROffset: element * 2, Pair: true, Lane: lane,
			BitLo: 0, BitHi: 63,
		}
	case 32:
		return coord.RegisterLocation{
			GPROffset: element, Lane: lane,
			BitLo: 0, BitHi: 31,
		}
	case 16:
		regno, bitno := element/2, element%2
		return coord.RegisterLocation{
			GPROffset: regno, Lane: lane,
			BitLo: 16 * bitno, BitHi: 16*bitno + 15,
		}
	case 8:
		regno, bitno := element/4, element%4
		return coord.RegisterLocation{
			GPROffset: regno, Lane: lane,
			BitLo: 8 * bitno, BitHi: 8*bitno + 7,
		}
	case 4:
		regno, bitno := element/8, element%8
		return coord.RegisterLocation{
			GPROffset: regno, Lane: lane,
			BitLo: 4 * bitno, BitHi: 4*bitno + 3,
		}
	default: // 2-bit sparse-index packing; 16 slots per 32-bit register
		regno, bitno := element/16, element%16
		return coord.RegisterLocation{
			GPROffset: regno, Lane: lane,
			BitLo: 2 * bitno, BitHi: 2*bitno + 1,
		}
	}
}

// elementFromBitLo is the inverse of regLoc restricted to a single
// register: given the bit width and a bit-lo offset within GPROffset,
// recover the flat element index regLoc was built from. Families use
// this during Lookup to recover which "local_element" a queried
// (gpr, bitLo) pair corresponds to, before mapping that back to a
// coordinate.
func elementFromBitLo(bits, gpr, bitLo int) int {
	switch bits {
	case 64, 32:
		return gpr
	case 16:
		return gpr*2 + bitLo/16
	case 8:
		return gpr*4 + bitLo/8
	case 4:
		return gpr*8 + bitLo/4
	default:
		return gpr*16 + bitLo/2
	}
}

// subFieldsPerGPR returns how many elements of the given bit width pack
// into one 32-bit register, used by families to enumerate every
// sub-field lookup must report for a packed register.
func subFieldsPerGPR(bits int) int {
	switch bits {
	case 64:
		return 1
	case 32:
		return 1
	default:
		return 32 / bits
	}
}
