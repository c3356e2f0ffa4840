package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amd/mfmacalc/internal/testutil"
	"github.com/amd/mfmacalc/pkg/catalog"
)

func testREPL(t *testing.T) *REPL {
	t.Helper()
	cat, err := catalog.LoadFrom(testutil.SampleCatalogCSV())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return New(cat)
}

func TestREPL_New(t *testing.T) {
	r := testREPL(t)
	if r.archSet {
		t.Error("expected no architecture selected initially")
	}
}

func TestREPL_Eval_Help(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	for _, cmd := range []string{"help", "h", "?"} {
		out.Reset()
		r.eval(cmd, &out)
		if !strings.Contains(out.String(), "mfmacalc REPL Commands") {
			t.Errorf("command %q: expected help text, got: %s", cmd, out.String())
		}
	}
}

func TestREPL_Eval_Quit(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	for _, cmd := range []string{"quit", "exit", "q"} {
		out.Reset()
		if !r.eval(cmd, &out) {
			t.Errorf("expected %q to signal shell exit", cmd)
		}
		if !strings.Contains(out.String(), "Goodbye") {
			t.Errorf("expected goodbye message, got: %s", out.String())
		}
	}
}

func TestREPL_Eval_Empty(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("", &out)
	r.eval("   ", &out)
	if out.Len() != 0 {
		t.Errorf("expected no output for empty input, got: %s", out.String())
	}
}

func TestREPL_Eval_Unknown(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("unknowncommand", &out)
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("expected unknown-command message, got: %s", out.String())
	}
}

func TestREPL_Eval_ArchSetAndShow(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch cdna2", &out)
	if !strings.Contains(out.String(), "CDNA2") {
		t.Errorf("expected architecture confirmation, got: %s", out.String())
	}
	if !r.archSet {
		t.Fatal("expected archSet to be true after 'arch cdna2'")
	}

	out.Reset()
	r.eval("arch", &out)
	if !strings.Contains(out.String(), "CDNA2") {
		t.Errorf("expected current architecture echoed, got: %s", out.String())
	}
}

func TestREPL_Eval_ArchInvalid(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch bogus", &out)
	if !strings.Contains(out.String(), "error") {
		t.Errorf("expected error for unrecognized architecture, got: %s", out.String())
	}
}

func TestREPL_Eval_ListRequiresArch(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("list", &out)
	if !strings.Contains(out.String(), "select an architecture") {
		t.Errorf("expected prompt to select an architecture, got: %s", out.String())
	}
}

func TestREPL_Eval_List(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch cdna2", &out)
	out.Reset()
	r.eval("list", &out)
	if !strings.Contains(out.String(), "V_MFMA_F32_4X4X4F16") {
		t.Errorf("expected instruction mnemonic in listing, got: %s", out.String())
	}
}

func TestREPL_Eval_Detail(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch cdna2", &out)
	out.Reset()
	r.eval("detail V_MFMA_F32_4X4X4F16", &out)
	if !strings.Contains(out.String(), "M=4 N=4 K=4") {
		t.Errorf("expected descriptor dimensions, got: %s", out.String())
	}
}

func TestREPL_Eval_Get(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch cdna2", &out)
	out.Reset()
	r.eval("get V_MFMA_F32_4X4X4F16 A 2 0 1 0", &out)
	if !strings.Contains(out.String(), "A[2][1]") {
		t.Errorf("expected located coordinate, got: %s", out.String())
	}
}

func TestREPL_Eval_GetUnknownMatrix(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch cdna2", &out)
	out.Reset()
	r.eval("get V_MFMA_F32_4X4X4F16 Z", &out)
	if !strings.Contains(out.String(), "unknown matrix") {
		t.Errorf("expected unknown-matrix error, got: %s", out.String())
	}
}

func TestREPL_Eval_History(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer
	r.eval("arch cdna2", &out)
	r.eval("list", &out)

	out.Reset()
	r.history = append(r.history, "arch cdna2", "list")
	r.eval("history", &out)
	output := out.String()
	if !strings.Contains(output, "arch cdna2") || !strings.Contains(output, "list") {
		t.Errorf("expected history entries, got: %s", output)
	}
}

func TestREPL_Start_BasicInteraction(t *testing.T) {
	r := testREPL(t)
	input := "arch cdna2\nlist\nquit\n"
	in := strings.NewReader(input)
	var out bytes.Buffer

	r.Start(in, &out)

	output := out.String()
	if !strings.Contains(output, "mfmacalc REPL") {
		t.Error("expected welcome message")
	}
	if !strings.Contains(output, "V_MFMA_F32_4X4X4F16") {
		t.Errorf("expected instruction listing, got: %s", output)
	}
	if !strings.Contains(output, "Goodbye") {
		t.Error("expected goodbye message on quit")
	}
}

func TestREPL_PrintHelp(t *testing.T) {
	r := testREPL(t)
	var out bytes.Buffer

	r.printHelp(&out)
	output := out.String()

	for _, s := range []string{"mfmacalc REPL Commands", "help", "quit", "arch", "list", "detail", "get", "history"} {
		if !strings.Contains(output, s) {
			t.Errorf("expected help to contain %q", s)
		}
	}
}
