// Package arch implements the Architecture Registry (spec.md §4.1): it
// maps case-insensitive architecture aliases to a canonical architecture
// identifier and enumerates the instruction set per architecture.
package arch

import (
	"strings"

	"github.com/amd/mfmacalc/pkg/calcerr"
)

// ID is a tagged enum over the five supported architecture generations.
type ID int

const (
	CDNA1 ID = iota
	CDNA2
	CDNA3
	RDNA3
	RDNA4
)

func (a ID) String() string {
	switch a {
	case CDNA1:
		return "CDNA1"
	case CDNA2:
		return "CDNA2"
	case CDNA3:
		return "CDNA3"
	case RDNA3:
		return "RDNA3"
	case RDNA4:
		return "RDNA4"
	default:
		return "Unknown"
	}
}

// WaveSize returns 32 for the client (RDNA) generations and 64 for the
// datacenter (CDNA) generations.
func (a ID) WaveSize() int {
	switch a {
	case RDNA3, RDNA4:
		return 32
	default:
		return 64
	}
}

// IsCDNA reports whether the architecture belongs to the datacenter
// (CDNA) family, as opposed to the client (RDNA) family.
func (a ID) IsCDNA() bool {
	return a == CDNA1 || a == CDNA2 || a == CDNA3
}

// aliases lists every accepted name for each architecture, per spec.md
// §4.1. Matching is case-insensitive; names are stored lower-cased.
var aliases = map[ID][]string{
	CDNA1: {"cdna", "cdna1", "gfx908", "arcturus", "mi100"},
	CDNA2: {"cdna2", "gfx90a", "aldebaran", "mi200", "mi210", "mi250", "mi250x"},
	CDNA3: {
		"cdna3", "gfx940", "gfx941", "gfx942", "aqua_vanjaram",
		"mi300", "mi300a", "mi300x", "mi325x",
	},
	RDNA3: {
		"rdna3", "gfx1100", "gfx1101", "gfx1102", "gfx1103",
		"gfx1150", "gfx1151", "gfx1152", "gfx1153",
	},
	RDNA4: {"rdna4", "gfx1200", "gfx1201"},
}

// canonicalOrder lists every architecture ID in iteration order,
// used both to build the reverse alias index and to iterate registries.
var canonicalOrder = []ID{CDNA1, CDNA2, CDNA3, RDNA3, RDNA4}

var byAlias = func() map[string]ID {
	m := make(map[string]ID)
	for _, id := range canonicalOrder {
		for _, a := range aliases[id] {
			m[a] = id
		}
		m[strings.ToLower(id.String())] = id
	}
	return m
}()

// Resolve maps an architecture alias (generation name, codename, chip
// marketing name, or gfx ID), matched case-insensitively, to its
// canonical ID. Returns calcerr.InvalidArch if name is not recognized.
func Resolve(name string) (ID, error) {
	id, ok := byAlias[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, calcerr.New(calcerr.InvalidArch, "unrecognized architecture %q", name)
	}
	return id, nil
}

// All returns every architecture ID in canonical order.
func All() []ID {
	out := make([]ID, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// Aliases returns the accepted alias list for an architecture (for
// --help text and detail output).
func Aliases(id ID) []string {
	return aliases[id]
}
