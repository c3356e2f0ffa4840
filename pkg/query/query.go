// Package query implements the Query Facade (spec.md §4.5): the five
// user-facing operations layered on top of pkg/catalog, pkg/mapper, and
// pkg/modifier, plus the pre-query argument legality checks of §4.5.
package query

import (
	"fmt"
	"sort"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/catalog"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/descriptor"
	"github.com/amd/mfmacalc/pkg/modifier"
)

// Facade orchestrates queries against a loaded catalog.
type Facade struct {
	cat *catalog.Catalog
}

// New builds a Facade over an already-loaded, self-checked catalog.
func New(cat *catalog.Catalog) *Facade {
	return &Facade{cat: cat}
}

// ListInstructions implements list_instructions(arch).
func (f *Facade) ListInstructions(id arch.ID) []string {
	return f.cat.InstructionsOf(id)
}

// Detail implements detail(arch, mnem): the full descriptor plus a
// textual rendering of the zero-modifier mapping formulas.
type Detail struct {
	Descriptor *descriptor.InstructionDescriptor
	Formulas   map[coord.Matrix]string
}

func (f *Facade) Detail(id arch.ID, mnemonic string) (*Detail, error) {
	d, err := f.cat.Get(id, mnemonic)
	if err != nil {
		return nil, err
	}
	matrices := []coord.Matrix{coord.A, coord.B, coord.C, coord.D}
	if d.IsSparse {
		matrices = append(matrices, coord.K)
	}
	formulas := make(map[coord.Matrix]string, len(matrices))
	for _, m := range matrices {
		formulas[m] = formulaText(d, m)
	}
	return &Detail{Descriptor: d, Formulas: formulas}, nil
}

// formulaText renders the closed-form rule governing m's mapping, per
// spec.md §4.2's "must be faithful to the numeric rule ... so a reader
// can manually verify a mapping."
func formulaText(d *descriptor.InstructionDescriptor, m coord.Matrix) string {
	bits := d.ElementBits(m)
	if d.IsSparse && m == coord.K {
		return "half = floor(k/(K/2)); lane = (block*M + i + half*W/2) mod W; pair = floor((k mod K/2)/2); gpr = floor(pair/8); bits = [4*(pair mod 8)+2*(k mod 2)+1 : 4*(pair mod 8)+2*(k mod 2)]"
	}
	switch d.Pattern {
	case descriptor.DenseMFMA, descriptor.MultiRowPerLane, descriptor.FP64Pair:
		switch m {
		case coord.A, coord.B:
			return fmt.Sprintf("group = K/max(1, 64/(rowDim*blocks)); gpr = floor((k mod group)*%d/32); lane = block*rowDim + (k/group)*rowDim*blocks + row", bits)
		case coord.C, coord.D:
			return fmt.Sprintf("element = block*(M*N/64) + (i/(multirow*multirowsPerReg))*multirow + (i mod multirow); gpr = floor(element*%d/32); lane = (block mod blocksPerReg)*N + (i/multirow mod multirowsPerReg)*blocksPerReg*N + j", bits)
		}
	case descriptor.Wave32WMMA:
		switch m {
		case coord.A, coord.B:
			return "gpr = k (packed by element width); lane = row, duplicated every 16 lanes across the wave"
		case coord.C, coord.D:
			return fmt.Sprintf("element = skipHalf*(i/(W/16)) + opselHalf; gpr = floor(element*%d/32); lane = (N*(i mod rowsPerVGPR) + j) mod W", bits)
		}
	}
	return "n/a"
}

// Args is the common coordinate/register-pick/modifier input shared by
// get_register and matrix_entry.
type Args struct {
	Matrix    coord.Matrix
	I, J, K   int
	Block     int
	Register  int
	Lane      int
	Modifiers coord.Modifiers
}

// Result is one located entry, optionally expanded into a sum-of-products.
type Result struct {
	Coordinate coord.Coordinate
	Location   coord.RegisterLocation
	OutputCalc string
}

// GetRegister implements get_register: coordinate -> location, with the
// sum-of-products expansion when matrix==D and outputCalc is set.
func (f *Facade) GetRegister(id arch.ID, mnemonic string, a Args, outputCalc bool) (*Result, error) {
	d, err := f.cat.Get(id, mnemonic)
	if err != nil {
		return nil, err
	}
	if err := checkMatrix(d, a.Matrix); err != nil {
		return nil, err
	}
	if outputCalc && a.Matrix != coord.D {
		return nil, calcerr.New(calcerr.BadUsage, "--output-calculation requires --D-matrix")
	}
	c := coord.Coordinate{Matrix: a.Matrix, I: a.I, J: a.J, K: a.K, Block: a.Block}
	waveSize := id.WaveSize()
	loc, err := modifier.Locate(d, waveSize, c, a.Modifiers)
	if err != nil {
		return nil, err
	}
	res := &Result{Coordinate: c, Location: loc}
	if outputCalc {
		res.OutputCalc, err = sumOfProducts(d, waveSize, a.I, a.J, a.Block, a.Modifiers)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// MatrixEntry implements matrix_entry: (register, lane) -> every
// coordinate stored there, ordered least-significant bit range first.
func (f *Facade) MatrixEntry(id arch.ID, mnemonic string, a Args, outputCalc bool) ([]*Result, error) {
	d, err := f.cat.Get(id, mnemonic)
	if err != nil {
		return nil, err
	}
	if err := checkMatrix(d, a.Matrix); err != nil {
		return nil, err
	}
	if outputCalc && a.Matrix != coord.D {
		return nil, calcerr.New(calcerr.BadUsage, "--output-calculation requires --D-matrix")
	}
	waveSize := id.WaveSize()
	if a.Lane < 0 || a.Lane >= waveSize {
		return nil, calcerr.New(calcerr.OutOfRangeCoordinate, "lane %d out of range [0,%d) for %s", a.Lane, waveSize, id)
	}
	if a.Register < 0 || a.Register >= d.GPRCount(a.Matrix) {
		return nil, calcerr.New(calcerr.OutOfRangeCoordinate, "register %d out of range [0,%d) for matrix %s", a.Register, d.GPRCount(a.Matrix), a.Matrix)
	}
	coords, err := modifier.Lookup(d, waveSize, a.Matrix, a.Register, a.Lane, a.Modifiers)
	if err != nil {
		return nil, err
	}
	out := make([]*Result, 0, len(coords))
	for _, c := range coords {
		loc, err := modifier.Locate(d, waveSize, c, a.Modifiers)
		if err != nil {
			return nil, err
		}
		r := &Result{Coordinate: c, Location: loc}
		if outputCalc {
			r.OutputCalc, err = sumOfProducts(d, waveSize, c.I, c.J, c.Block, a.Modifiers)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.BitLo < out[j].Location.BitLo })
	return out, nil
}

// sumOfProducts renders D[i][j].Bblock's defining sum, grounded on the
// original tool's __calculate_source_string: one A·B term per
// contraction index k, plus the C accumulator term.
func sumOfProducts(d *descriptor.InstructionDescriptor, waveSize, i, j, block int, mods coord.Modifiers) (string, error) {
	terms := make([]string, 0, d.K+1)
	for k := 0; k < d.K; k++ {
		aLoc, err := modifier.Locate(d, waveSize, coord.Coordinate{Matrix: coord.A, I: i, K: k, Block: block}, mods)
		if err != nil {
			return "", err
		}
		bLoc, err := modifier.Locate(d, waveSize, coord.Coordinate{Matrix: coord.B, J: j, K: k, Block: block}, mods)
		if err != nil {
			return "", err
		}
		terms = append(terms, fmt.Sprintf("Src0_%s·Src1_%s", aLoc.Sign.Apply(aLoc.String()), bLoc.Sign.Apply(bLoc.String())))
	}
	cLoc, err := modifier.Locate(d, waveSize, coord.Coordinate{Matrix: coord.C, I: i, J: j, Block: block}, mods)
	if err != nil {
		return "", err
	}
	terms = append(terms, fmt.Sprintf("Src2_%s", cLoc.Sign.Apply(cLoc.String())))

	dLoc, err := modifier.Locate(d, waveSize, coord.Coordinate{Matrix: coord.D, I: i, J: j, Block: block}, mods)
	if err != nil {
		return "", err
	}
	expr := terms[0]
	for _, t := range terms[1:] {
		expr += " + " + t
	}
	return fmt.Sprintf("Vdst_%s = %s", dLoc.String(), expr), nil
}

// LayoutCell is one entry in a full register- or matrix-layout table.
type LayoutCell struct {
	Coordinate coord.Coordinate
	Location   coord.RegisterLocation
}

// RegisterLayout implements register_layout: every coordinate that
// legally maps onto the matrix with its location, in logical
// (block, i, j/k) enumeration order; pkg/format.FromLayout groups the
// cells by (gpr, lane).
func (f *Facade) RegisterLayout(id arch.ID, mnemonic string, m coord.Matrix, mods coord.Modifiers) ([]LayoutCell, error) {
	d, err := f.cat.Get(id, mnemonic)
	if err != nil {
		return nil, err
	}
	if err := checkMatrix(d, m); err != nil {
		return nil, err
	}
	waveSize := id.WaveSize()
	coords := d.Enumerate(m)
	out := make([]LayoutCell, 0, len(coords))
	for _, c := range coords {
		loc, err := modifier.Locate(d, waveSize, c, mods)
		if err != nil {
			return nil, err
		}
		out = append(out, LayoutCell{Coordinate: c, Location: loc})
	}
	return out, nil
}

// MatrixLayout implements matrix_layout: it returns exactly the cells
// RegisterLayout returns, in the same order; pkg/format's transpose
// option swaps the axis the sink iterates first.
func (f *Facade) MatrixLayout(id arch.ID, mnemonic string, m coord.Matrix, mods coord.Modifiers) ([]LayoutCell, error) {
	return f.RegisterLayout(id, mnemonic, m, mods)
}

func checkMatrix(d *descriptor.InstructionDescriptor, m coord.Matrix) error {
	switch m {
	case coord.A, coord.B, coord.C, coord.D:
		return nil
	case coord.K:
		if !d.IsSparse {
			return calcerr.New(calcerr.BadUsage, "matrix K is only legal on sparse instructions")
		}
		return nil
	default:
		return calcerr.New(calcerr.BadUsage, "unknown matrix %v", m)
	}
}
