// Package repl implements an interactive exploration shell over the
// matrix instruction calculator, adapted from the teacher's pkg/repl:
// same read-eval-print loop and command dispatch shape, commands
// reworked from DSL/assembly evaluation into catalog navigation and
// register/coordinate queries.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/catalog"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/query"
)

const prompt = "mfmacalc> "

// REPL provides an interactive shell over a loaded catalog.
type REPL struct {
	facade  *query.Facade
	arch    arch.ID
	archSet bool
	history []string
}

// New creates a REPL over cat.
func New(cat *catalog.Catalog) *REPL {
	return &REPL{facade: query.New(cat)}
}

// Start runs the read-eval-print loop until in is exhausted.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "mfmacalc REPL - matrix instruction reference calculator")
	fmt.Fprintln(out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(out)

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.history = append(r.history, line)
		if r.eval(line, out) {
			return
		}
	}
}

// eval dispatches one command line; returns true when the shell should exit.
func (r *REPL) eval(line string, out io.Writer) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		return true

	case "help", "h", "?":
		r.printHelp(out)

	case "arch":
		r.cmdArch(parts[1:], out)

	case "list", "ls":
		r.cmdList(out)

	case "detail", "d":
		r.cmdDetail(parts[1:], out)

	case "get", "g":
		r.cmdGet(parts[1:], out)

	case "history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}

	default:
		fmt.Fprintf(out, "unknown command %q; type 'help' for a list\n", parts[0])
	}
	return false
}

func (r *REPL) cmdArch(args []string, out io.Writer) {
	if len(args) == 0 {
		if !r.archSet {
			fmt.Fprintln(out, "no architecture selected")
			return
		}
		fmt.Fprintln(out, r.arch)
		return
	}
	id, err := arch.Resolve(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	r.arch, r.archSet = id, true
	fmt.Fprintf(out, "architecture set to %s (wave size %d)\n", id, id.WaveSize())
}

func (r *REPL) cmdList(out io.Writer) {
	if !r.archSet {
		fmt.Fprintln(out, "select an architecture first with 'arch <name>'")
		return
	}
	for _, mnem := range r.facade.ListInstructions(r.arch) {
		fmt.Fprintln(out, mnem)
	}
}

func (r *REPL) cmdDetail(args []string, out io.Writer) {
	if !r.archSet || len(args) < 1 {
		fmt.Fprintln(out, "usage: detail <mnemonic>  (select an architecture first)")
		return
	}
	d, err := r.facade.Detail(r.arch, args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	desc := d.Descriptor
	fmt.Fprintf(out, "%s %s: M=%d N=%d K=%d blocks=%d gprs(A=%d,B=%d,C=%d,D=%d)\n",
		desc.Arch, desc.Mnemonic, desc.M, desc.N, desc.K, desc.Blocks,
		desc.GPRs.A, desc.GPRs.B, desc.GPRs.C, desc.GPRs.D)
	for _, m := range []coord.Matrix{coord.A, coord.B, coord.C, coord.D, coord.K} {
		if text, ok := d.Formulas[m]; ok {
			fmt.Fprintf(out, "  %s: %s\n", m, text)
		}
	}
}

// cmdGet implements: get <mnemonic> <matrix> <i> <j> <k> <block>
func (r *REPL) cmdGet(args []string, out io.Writer) {
	if !r.archSet || len(args) < 2 {
		fmt.Fprintln(out, "usage: get <mnemonic> <matrix> [i] [j] [k] [block]  (select an architecture first)")
		return
	}
	mnem := args[0]
	m, ok := coord.ParseMatrix(args[1])
	if !ok {
		fmt.Fprintf(out, "error: unknown matrix %q\n", args[1])
		return
	}
	vals := [4]int{}
	for i := 2; i < len(args) && i-2 < 4; i++ {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			fmt.Fprintf(out, "error: %q is not an integer\n", args[i])
			return
		}
		vals[i-2] = n
	}
	res, err := r.facade.GetRegister(r.arch, mnem, query.Args{
		Matrix: m, I: vals[0], J: vals[1], K: vals[2], Block: vals[3],
	}, false)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s = %s\n", res.Coordinate, res.Location.Sign.Apply(res.Location.String()))
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
mfmacalc REPL Commands:
  help, h, ?            Show this help message
  quit, exit, q          Exit the REPL
  arch [name]            Show or set the current architecture
  list, ls               List instructions for the current architecture
  detail, d <mnemonic>   Show the full descriptor and mapping formulas
  get, g <mnemonic> <matrix> [i] [j] [k] [block]
                         Map a coordinate to its register location
  history                Show command history

Examples:
  arch cdna2
  list
  detail V_MFMA_F32_4X4X4F16
  get V_MFMA_F32_4X4X4F16 A 2 0 1 0
`
	fmt.Fprint(out, help)
}
