// Command mfmacalc is the CLI entry point for the matrix-instruction
// reference calculator: for a chosen (architecture, instruction) it
// answers metadata, coordinate<->register, and full-layout queries
// against the embedded instruction catalog (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/catalog"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/format"
	"github.com/amd/mfmacalc/pkg/query"
)

// Version info, set by the release build's ldflags, mirroring the
// teacher's cmd/dasm version-var pattern.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if _, ok := calcerr.KindOf(err); ok {
		return 1
	}
	return 2
}

type cliArgs struct {
	architecture string
	instruction  string
	list         bool

	detail         bool
	getRegister    bool
	matrixEntry    bool
	registerLayout bool
	matrixLayout   bool

	matrixA, matrixB, matrixC, matrixD, matrixK bool

	i, j, k, block    int
	register, lane    int
	cbsz, abid, blgp  int
	opsel, neg, neghi int
	outputCalc        bool

	csv, markdown, asciidoc bool
	transpose               bool

	showVersion bool
	showHelp    bool
}

func parseArgs(args []string) (*cliArgs, error) {
	fs := flag.NewFlagSet("mfmacalc", flag.ContinueOnError)
	a := &cliArgs{}

	str := func(long, short, def, usage string, dst *string) {
		fs.StringVar(dst, long, def, usage)
		fs.StringVar(dst, short, def, usage)
	}
	boolFlag := func(long, short string, dst *bool) {
		fs.BoolVar(dst, long, false, "")
		fs.BoolVar(dst, short, false, "")
	}
	intFlag := func(long, short string, dst *int) {
		fs.IntVar(dst, long, 0, "")
		fs.IntVar(dst, short, 0, "")
	}

	str("architecture", "a", "", "target architecture (name, codename, or gfx ID)", &a.architecture)
	str("instruction", "i", "", "instruction mnemonic", &a.instruction)
	boolFlag("list-instructions", "L", &a.list)

	boolFlag("detail-instruction", "d", &a.detail)
	boolFlag("get-register", "g", &a.getRegister)
	boolFlag("matrix-entry", "m", &a.matrixEntry)
	boolFlag("register-layout", "R", &a.registerLayout)
	boolFlag("matrix-layout", "M", &a.matrixLayout)

	boolFlag("A-matrix", "A", &a.matrixA)
	boolFlag("B-matrix", "B", &a.matrixB)
	boolFlag("C-matrix", "C", &a.matrixC)
	boolFlag("D-matrix", "D", &a.matrixD)
	boolFlag("compression", "k", &a.matrixK)

	intFlag("I-coordinate", "I", &a.i)
	intFlag("J-coordinate", "J", &a.j)
	intFlag("K-coordinate", "K", &a.k)
	intFlag("block", "b", &a.block)
	intFlag("register", "r", &a.register)
	intFlag("lane", "l", &a.lane)

	fs.IntVar(&a.cbsz, "cbsz", 0, "")
	fs.IntVar(&a.abid, "abid", 0, "")
	fs.IntVar(&a.blgp, "blgp", 0, "")
	fs.IntVar(&a.opsel, "opsel", 0, "")
	fs.IntVar(&a.neg, "neg", 0, "")
	fs.IntVar(&a.neghi, "neg_hi", 0, "")

	boolFlag("output-calculation", "o", &a.outputCalc)
	boolFlag("csv", "c", &a.csv)
	fs.BoolVar(&a.markdown, "markdown", false, "")
	fs.BoolVar(&a.asciidoc, "asciidoc", false, "")
	fs.BoolVar(&a.transpose, "transpose", false, "")

	boolFlag("version", "v", &a.showVersion)
	boolFlag("help", "h", &a.showHelp)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a, nil
}

func run(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	if a.showHelp {
		printUsage()
		return nil
	}
	if a.showVersion {
		fmt.Printf("mfmacalc version %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cat := catalog.MustLoad()
	f := query.New(cat)

	if a.architecture == "" {
		return calcerr.New(calcerr.BadUsage, "--architecture is required")
	}
	id, err := arch.Resolve(a.architecture)
	if err != nil {
		return err
	}

	if a.list {
		for _, mnem := range f.ListInstructions(id) {
			fmt.Println(mnem)
		}
		return nil
	}

	if a.instruction == "" {
		return calcerr.New(calcerr.BadUsage, "--instruction is required unless --list-instructions")
	}

	queries := 0
	for _, b := range []bool{a.detail, a.getRegister, a.matrixEntry, a.registerLayout, a.matrixLayout} {
		if b {
			queries++
		}
	}
	if queries != 1 {
		return calcerr.New(calcerr.BadUsage, "exactly one of --detail-instruction/--get-register/--matrix-entry/--register-layout/--matrix-layout is required")
	}

	mods := coord.Modifiers{CBSZ: a.cbsz, ABID: a.abid, BLGP: a.blgp, OPSEL: a.opsel, NEG: a.neg, NEGHI: a.neghi}

	if a.detail {
		return runDetail(f, id, a.instruction)
	}

	matrix, err := selectMatrix(a)
	if err != nil {
		return err
	}

	switch {
	case a.getRegister:
		return runGetRegister(f, id, a.instruction, matrix, a, mods)
	case a.matrixEntry:
		return runMatrixEntry(f, id, a.instruction, matrix, a, mods)
	case a.registerLayout, a.matrixLayout:
		return runLayout(f, id, a.instruction, matrix, mods, a)
	}
	return nil
}

func selectMatrix(a *cliArgs) (coord.Matrix, error) {
	selected := 0
	var m coord.Matrix
	for _, opt := range []struct {
		set bool
		m   coord.Matrix
	}{{a.matrixA, coord.A}, {a.matrixB, coord.B}, {a.matrixC, coord.C}, {a.matrixD, coord.D}, {a.matrixK, coord.K}} {
		if opt.set {
			selected++
			m = opt.m
		}
	}
	if selected != 1 {
		return 0, calcerr.New(calcerr.BadUsage, "exactly one matrix selector (-A/-B/-C/-D/-k) is required")
	}
	return m, nil
}

func runDetail(f *query.Facade, id arch.ID, mnem string) error {
	d, err := f.Detail(id, mnem)
	if err != nil {
		return err
	}
	desc := d.Descriptor
	fmt.Printf("%s %s\n", desc.Arch, desc.Mnemonic)
	fmt.Printf("  encoding: %s  opcode_vop3p=0x%x opcode_mai=0x%x\n", desc.Encoding, desc.OpcodeVOP3P, desc.OpcodeMAI)
	fmt.Printf("  dims: M=%d N=%d K=%d blocks=%d\n", desc.M, desc.N, desc.K, desc.Blocks)
	fmt.Printf("  exec: flops=%d cycles=%d flops/cu/cycle=%.2f\n", desc.Exec.FLOPs, desc.Exec.Cycles, desc.Exec.FLOPsPerCUCycle)
	fmt.Printf("  gprs: A=%d B=%d C=%d D=%d K=%d  alignment=%d bytes\n", desc.GPRs.A, desc.GPRs.B, desc.GPRs.C, desc.GPRs.D, desc.GPRs.K, desc.AlignmentBytes)
	for _, m := range []coord.Matrix{coord.A, coord.B, coord.C, coord.D, coord.K} {
		if text, ok := d.Formulas[m]; ok {
			fmt.Printf("  %s: %s\n", m, text)
		}
	}
	return nil
}

func runGetRegister(f *query.Facade, id arch.ID, mnem string, m coord.Matrix, a *cliArgs, mods coord.Modifiers) error {
	res, err := f.GetRegister(id, mnem, query.Args{Matrix: m, I: a.i, J: a.j, K: a.k, Block: a.block, Modifiers: mods}, a.outputCalc)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", res.Coordinate, res.Location.Sign.Apply(res.Location.String()))
	if res.OutputCalc != "" {
		fmt.Printf("%s = %s\n", res.Coordinate, res.OutputCalc)
	}
	return nil
}

func runMatrixEntry(f *query.Facade, id arch.ID, mnem string, m coord.Matrix, a *cliArgs, mods coord.Modifiers) error {
	results, err := f.MatrixEntry(id, mnem, query.Args{Matrix: m, Register: a.register, Lane: a.lane, Modifiers: mods}, a.outputCalc)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Printf("%s = %s\n", res.Location.Sign.Apply(res.Location.String()), res.Coordinate)
		if res.OutputCalc != "" {
			fmt.Printf("%s = %s\n", res.Coordinate, res.OutputCalc)
		}
	}
	return nil
}

func runLayout(f *query.Facade, id arch.ID, mnem string, m coord.Matrix, mods coord.Modifiers, a *cliArgs) error {
	cells, err := f.RegisterLayout(id, mnem, m, mods)
	if err != nil {
		return err
	}
	table := format.FromLayout(cells, id.WaveSize())
	if a.transpose {
		table = table.Transpose()
	}
	switch {
	case a.csv:
		return format.WriteCSV(os.Stdout, table)
	case a.markdown:
		format.WriteMarkdown(os.Stdout, table)
	case a.asciidoc:
		format.WriteAsciiDoc(os.Stdout, table)
	default:
		format.WriteASCII(os.Stdout, table)
	}
	return nil
}

func printUsage() {
	fmt.Println(`mfmacalc - reference calculator for GPU matrix multiply-accumulate instructions

Usage:
  mfmacalc -a <architecture> -L
  mfmacalc -a <architecture> -i <instruction> -d
  mfmacalc -a <architecture> -i <instruction> -g -A|-B|-C|-D|-k [-I N] [-J N] [-K N] [-b N] [modifiers] [-o]
  mfmacalc -a <architecture> -i <instruction> -m -A|-B|-C|-D|-k -r N -l N [modifiers] [-o]
  mfmacalc -a <architecture> -i <instruction> -R|-M -A|-B|-C|-D|-k [modifiers] [-c|--markdown|--asciidoc] [--transpose]

Selection:
  -a, --architecture NAME   Target architecture (required)
  -i, --instruction MNEM    Instruction mnemonic (required except -L)
  -L, --list-instructions   List instructions for the architecture

Queries (exactly one required, unless -L):
  -d, --detail-instruction
  -g, --get-register
  -m, --matrix-entry
  -R, --register-layout
  -M, --matrix-layout

Matrix selection:
  -A, -B, -C, -D            Operand matrix
  -k, --compression         Sparse compression-index matrix K

Coordinates and register picking:
  -I, -J, -K N               Coordinate indices (default 0)
  -b, --block N               Block index (default 0)
  -r, --register N             GPR index (default 0)
  -l, --lane N                 Lane index (default 0)

Modifiers:
  --cbsz N --abid N --blgp N --opsel N --neg N --neg_hi N

Output:
  -o, --output-calculation   Expand D's sum-of-products
  -c, --csv                  CSV layout output
  --markdown, --asciidoc     Markdown/AsciiDoc layout output
  --transpose                Swap layout table axes

Meta:
  -v, --version
  -h, --help`)
}
