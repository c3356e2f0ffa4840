package catalog

import (
	"strings"
	"testing"

	"github.com/amd/mfmacalc/internal/testutil"
	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/calcerr"
)

func TestLoad_EmbeddedCatalogSelfChecks(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Architectures()) == 0 {
		t.Fatal("expected at least one architecture in the embedded catalog")
	}
}

func TestLoad_CoversEveryArchitecture(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, id := range []arch.ID{arch.CDNA1, arch.CDNA2, arch.CDNA3, arch.RDNA3, arch.RDNA4} {
		if len(c.InstructionsOf(id)) == 0 {
			t.Errorf("expected at least one instruction for %s", id)
		}
	}
}

func TestGet_UnknownInstruction(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = c.Get(arch.CDNA1, "V_MFMA_DOES_NOT_EXIST")
	if !calcerr.Is(err, calcerr.UnknownInstruction) {
		t.Fatalf("expected UnknownInstruction, got %v", err)
	}
}

func TestGet_CaseInsensitiveMnemonic(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	mnemonics := c.InstructionsOf(arch.CDNA2)
	if len(mnemonics) == 0 {
		t.Fatal("expected CDNA2 instructions")
	}
	d, err := c.Get(arch.CDNA2, strings.ToLower(mnemonics[0]))
	if err != nil {
		t.Fatalf("Get lower-case mnemonic: %v", err)
	}
	if d.Mnemonic != mnemonics[0] {
		t.Errorf("expected mnemonic %s, got %s", mnemonics[0], d.Mnemonic)
	}
}

func TestLoadFrom_DuplicateRowIsRejected(t *testing.T) {
	row := "CDNA2,V_MFMA_F32_4X4X1F32,VOP3P-MAI,0x42,0x2,4,4,1,16,512,8,1.0,0,0,1,1,4,0,8,FP32,FP32,FP32,FP32,Both,Both,Both,1,1,1,0,0,0,lane-swizzle,broadcast,0,dense-mfma"
	csv := testutil.CatalogHeader() + "\n" + row + "\n" + row + "\n"
	_, err := LoadFrom([]byte(csv))
	if !calcerr.Is(err, calcerr.CatalogInconsistency) {
		t.Fatalf("expected CatalogInconsistency for duplicate row, got %v", err)
	}
}

func TestLoadFrom_MalformedRowIsRejected(t *testing.T) {
	row := "NOT_AN_ARCH,V_MFMA_F32_4X4X1F32,VOP3P-MAI,0x42,0x2,4,4,1,16,512,8,1.0,0,0,1,1,4,0,8,FP32,FP32,FP32,FP32,Both,Both,Both,1,1,1,0,0,0,lane-swizzle,broadcast,0,dense-mfma"
	csv := testutil.CatalogHeader() + "\n" + row + "\n"
	_, err := LoadFrom([]byte(csv))
	if !calcerr.Is(err, calcerr.CatalogInconsistency) {
		t.Fatalf("expected CatalogInconsistency for malformed row, got %v", err)
	}
}
