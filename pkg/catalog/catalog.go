// Package catalog implements the Instruction Catalog (spec.md §4.2): it
// loads the embedded instruction table, builds one InstructionDescriptor
// per row, and runs the mapper's construction-time self-check against
// every one of them before the catalog is usable.
//
// The catalog is data-driven per spec.md §9's design note ("express the
// catalog as literal data ... avoid per-instruction hand-written
// functions"): instructions.csv is the only place new instructions are
// added, mirroring how the teacher's pkg/loader treats a CSV as the
// source of truth for a DataFrame rather than hand-built Go literals.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/loggo"

	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/calcerr"
	"github.com/amd/mfmacalc/pkg/descriptor"
	"github.com/amd/mfmacalc/pkg/loader"
	"github.com/amd/mfmacalc/pkg/mapper"
)

//go:embed instructions.csv
var embeddedCSV []byte

var logger = loggo.GetLogger("mfmacalc.catalog")

// key identifies one descriptor by its (architecture, mnemonic) pair,
// the catalog's natural primary key per spec.md §4.1/§4.2.
type key struct {
	Arch     arch.ID
	Mnemonic string
}

// Catalog is the loaded, self-checked instruction table.
type Catalog struct {
	byKey  map[key]*descriptor.InstructionDescriptor
	byArch map[arch.ID][]string
}

// Load parses the embedded catalog CSV, builds a descriptor per row, and
// self-checks every descriptor via mapper.SelfCheck. A malformed row or
// a failed self-check is returned as CatalogInconsistency: per spec.md
// §4.2 and §9, this must fail loudly at construction time rather than
// surface later as a wrong answer.
func Load() (*Catalog, error) {
	return load(embeddedCSV)
}

// LoadFrom parses a caller-supplied CSV in the same schema, for tests
// and for callers who want a smaller or larger catalog than the
// representative one shipped in instructions.csv.
func LoadFrom(csv []byte) (*Catalog, error) {
	return load(csv)
}

func load(csv []byte) (*Catalog, error) {
	// Columns are parsed by hand below (hex opcodes, "-1" sentinels, and
	// named enums all need bespoke handling that InferDataTypes's
	// int64/float64/bool detection would fight), so type inference stays off.
	df, err := loader.Load(strings.NewReader(string(csv)), false)
	if err != nil {
		return nil, calcerr.New(calcerr.CatalogInconsistency, "loading catalog CSV: %v", err)
	}

	cols := make(map[string]int, len(df.Series))
	for i, s := range df.Series {
		cols[s.Name()] = i
	}
	// A CSV in some other schema is rejected even when it has no rows.
	for _, name := range strings.Split("arch,mnemonic,encoding,opcode_vop3p,opcode_mai,m,n,k,blocks,flops,cycles,flops_per_cu_cycle,coexec_valu,coexec_cycles,gprs_a,gprs_b,gprs_c,gprs_k,alignment_bytes,src0_type,src1_type,src2_type,vdst_type,a_regfile,b_regfile,cd_regfile,mod_cbsz,mod_abid,mod_blgp,mod_opsel,mod_neg,mod_neghi,blgp_mode,abid_mode,is_sparse,pattern", ",") {
		if _, ok := cols[name]; !ok {
			return nil, calcerr.New(calcerr.CatalogInconsistency, "catalog CSV is missing column %q", name)
		}
	}

	c := &Catalog{
		byKey:  make(map[key]*descriptor.InstructionDescriptor),
		byArch: make(map[arch.ID][]string),
	}

	nrows := 0
	if len(df.Series) > 0 {
		nrows = df.Series[0].NRows()
	}
	for row := 0; row < nrows; row++ {
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok {
				return ""
			}
			v := df.Series[idx].Value(row)
			if v == nil {
				return ""
			}
			return fmt.Sprintf("%v", v)
		}
		d, err := buildDescriptor(get)
		if err != nil {
			return nil, calcerr.New(calcerr.CatalogInconsistency, "row %d: %v", row, err)
		}
		if err := mapper.SelfCheck(d); err != nil {
			return nil, err
		}
		logger.Debugf("self-check passed: %s %s", d.Arch, d.Mnemonic)

		k := key{Arch: d.Arch, Mnemonic: d.Mnemonic}
		if _, dup := c.byKey[k]; dup {
			return nil, calcerr.New(calcerr.CatalogInconsistency, "duplicate catalog entry %s %s", d.Arch, d.Mnemonic)
		}
		c.byKey[k] = d
		c.byArch[d.Arch] = append(c.byArch[d.Arch], d.Mnemonic)
	}

	for id := range c.byArch {
		sort.Strings(c.byArch[id])
	}
	logger.Infof("catalog loaded: %d instructions across %d architectures", len(c.byKey), len(c.byArch))
	return c, nil
}

// MustLoad loads the embedded catalog or panics. cmd/mfmacalc calls this
// once at startup and pkg/embed's package-level default calculator calls
// it on first use; pkg/repl is handed an already-loaded catalog. This
// follows spec.md §9's "startup-time self-test, not an optional utility."
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("mfmacalc: embedded catalog failed self-check: %v", err))
	}
	return c
}

// Get returns the descriptor for (id, mnemonic), matched
// case-insensitively on the mnemonic.
func (c *Catalog) Get(id arch.ID, mnemonic string) (*descriptor.InstructionDescriptor, error) {
	k := key{Arch: id, Mnemonic: strings.ToUpper(strings.TrimSpace(mnemonic))}
	d, ok := c.byKey[k]
	if !ok {
		return nil, calcerr.New(calcerr.UnknownInstruction, "no instruction %q for architecture %s", mnemonic, id)
	}
	return d, nil
}

// InstructionsOf returns every mnemonic catalogued for an architecture,
// sorted.
func (c *Catalog) InstructionsOf(id arch.ID) []string {
	out := make([]string, len(c.byArch[id]))
	copy(out, c.byArch[id])
	return out
}

// Architectures returns every architecture with at least one catalogued
// instruction.
func (c *Catalog) Architectures() []arch.ID {
	var out []arch.ID
	for _, id := range arch.All() {
		if len(c.byArch[id]) > 0 {
			out = append(out, id)
		}
	}
	return out
}

func buildDescriptor(get func(string) string) (*descriptor.InstructionDescriptor, error) {
	id, err := arch.Resolve(get("arch"))
	if err != nil {
		return nil, err
	}
	enc, err := parseEncoding(get("encoding"))
	if err != nil {
		return nil, err
	}
	opcodeVOP3P, err := parseHexInt(get("opcode_vop3p"))
	if err != nil {
		return nil, fmt.Errorf("opcode_vop3p: %w", err)
	}
	opcodeMAI, err := parseHexInt(get("opcode_mai"))
	if err != nil {
		return nil, fmt.Errorf("opcode_mai: %w", err)
	}
	m, err := parseInt(get("m"))
	if err != nil {
		return nil, fmt.Errorf("m: %w", err)
	}
	n, err := parseInt(get("n"))
	if err != nil {
		return nil, fmt.Errorf("n: %w", err)
	}
	k, err := parseInt(get("k"))
	if err != nil {
		return nil, fmt.Errorf("k: %w", err)
	}
	blocks, err := parseInt(get("blocks"))
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	flops, err := parseInt(get("flops"))
	if err != nil {
		return nil, fmt.Errorf("flops: %w", err)
	}
	cycles, err := parseInt(get("cycles"))
	if err != nil {
		return nil, fmt.Errorf("cycles: %w", err)
	}
	flopsPerCU, err := strconv.ParseFloat(get("flops_per_cu_cycle"), 64)
	if err != nil {
		return nil, fmt.Errorf("flops_per_cu_cycle: %w", err)
	}
	coexecVALU, err := parseBool01(get("coexec_valu"))
	if err != nil {
		return nil, fmt.Errorf("coexec_valu: %w", err)
	}
	coexecCycles, err := parseInt(get("coexec_cycles"))
	if err != nil {
		return nil, fmt.Errorf("coexec_cycles: %w", err)
	}
	gprsA, err := parseInt(get("gprs_a"))
	if err != nil {
		return nil, fmt.Errorf("gprs_a: %w", err)
	}
	gprsB, err := parseInt(get("gprs_b"))
	if err != nil {
		return nil, fmt.Errorf("gprs_b: %w", err)
	}
	gprsC, err := parseInt(get("gprs_c"))
	if err != nil {
		return nil, fmt.Errorf("gprs_c: %w", err)
	}
	gprsK, err := parseInt(get("gprs_k"))
	if err != nil {
		return nil, fmt.Errorf("gprs_k: %w", err)
	}
	alignment, err := parseInt(get("alignment_bytes"))
	if err != nil {
		return nil, fmt.Errorf("alignment_bytes: %w", err)
	}
	src0, err := parseDType(get("src0_type"))
	if err != nil {
		return nil, fmt.Errorf("src0_type: %w", err)
	}
	src1, err := parseDType(get("src1_type"))
	if err != nil {
		return nil, fmt.Errorf("src1_type: %w", err)
	}
	src2, err := parseDType(get("src2_type"))
	if err != nil {
		return nil, fmt.Errorf("src2_type: %w", err)
	}
	vdst, err := parseDType(get("vdst_type"))
	if err != nil {
		return nil, fmt.Errorf("vdst_type: %w", err)
	}
	aReg, err := parseRegFile(get("a_regfile"))
	if err != nil {
		return nil, fmt.Errorf("a_regfile: %w", err)
	}
	bReg, err := parseRegFile(get("b_regfile"))
	if err != nil {
		return nil, fmt.Errorf("b_regfile: %w", err)
	}
	cdReg, err := parseRegFile(get("cd_regfile"))
	if err != nil {
		return nil, fmt.Errorf("cd_regfile: %w", err)
	}
	cbsz, err := parseBool01(get("mod_cbsz"))
	if err != nil {
		return nil, fmt.Errorf("mod_cbsz: %w", err)
	}
	abid, err := parseBool01(get("mod_abid"))
	if err != nil {
		return nil, fmt.Errorf("mod_abid: %w", err)
	}
	blgp, err := parseBool01(get("mod_blgp"))
	if err != nil {
		return nil, fmt.Errorf("mod_blgp: %w", err)
	}
	opsel, err := parseBool01(get("mod_opsel"))
	if err != nil {
		return nil, fmt.Errorf("mod_opsel: %w", err)
	}
	neg, err := parseBool01(get("mod_neg"))
	if err != nil {
		return nil, fmt.Errorf("mod_neg: %w", err)
	}
	neghi, err := parseBool01(get("mod_neghi"))
	if err != nil {
		return nil, fmt.Errorf("mod_neghi: %w", err)
	}
	blgpMode, err := parseBLGPMode(get("blgp_mode"))
	if err != nil {
		return nil, fmt.Errorf("blgp_mode: %w", err)
	}
	abidMode, err := parseABIDMode(get("abid_mode"))
	if err != nil {
		return nil, fmt.Errorf("abid_mode: %w", err)
	}
	isSparse, err := parseBool01(get("is_sparse"))
	if err != nil {
		return nil, fmt.Errorf("is_sparse: %w", err)
	}
	pattern, err := parsePattern(get("pattern"))
	if err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}

	return &descriptor.InstructionDescriptor{
		Arch:        id,
		Mnemonic:    strings.ToUpper(strings.TrimSpace(get("mnemonic"))),
		Encoding:    enc,
		OpcodeVOP3P: opcodeVOP3P,
		OpcodeMAI:   opcodeMAI,
		M:           m,
		N:           n,
		K:           k,
		Blocks:      blocks,
		Exec: descriptor.Execution{
			FLOPs:           flops,
			Cycles:          cycles,
			FLOPsPerCUCycle: flopsPerCU,
			CoExecuteVALU:   coexecVALU,
			CoExecuteCycles: coexecCycles,
		},
		GPRs:           descriptor.GPRCounts{A: gprsA, B: gprsB, C: gprsC, D: gprsC, K: gprsK},
		AlignmentBytes: alignment,
		SrcTypes:       [4]descriptor.DType{src0, src1, src2, vdst},
		RegFiles:       [3]descriptor.RegFile{aReg, bReg, cdReg},
		ModSupport: descriptor.ModifierSupport{
			CBSZ: cbsz, ABID: abid, BLGP: blgp, OPSEL: opsel, NEG: neg, NEGHI: neghi,
			BLGPMode: blgpMode, ABIDMode: abidMode,
		},
		IsSparse: isSparse,
		Pattern:  pattern,
	}, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseHexInt(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseBool01(s string) (bool, error) {
	v, err := parseInt(s)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func parseEncoding(s string) (descriptor.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VOP3P-MAI":
		return descriptor.VOP3PMAI, nil
	case "VOP3P":
		return descriptor.VOP3P, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}

func parseDType(s string) (descriptor.DType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FP32":
		return descriptor.FP32, nil
	case "FP64":
		return descriptor.FP64, nil
	case "FP16":
		return descriptor.FP16, nil
	case "BF16":
		return descriptor.BF16, nil
	case "INT8":
		return descriptor.INT8, nil
	case "INT4":
		return descriptor.INT4, nil
	case "FP8E4M3", "FP8-E4M3":
		return descriptor.FP8E4M3, nil
	case "FP8E5M2", "FP8-E5M2":
		return descriptor.FP8E5M2, nil
	case "SPARSEINDEX", "SPARSE-INDEX":
		return descriptor.SparseIndex, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", s)
	}
}

func parseRegFile(s string) (descriptor.RegFile, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BOTH":
		return descriptor.RegFile{Arch: true, Acc: true}, nil
	case "ARCH":
		return descriptor.RegFile{Arch: true}, nil
	case "ACC":
		return descriptor.RegFile{Acc: true}, nil
	case "NONE":
		return descriptor.RegFile{}, nil
	default:
		return descriptor.RegFile{}, fmt.Errorf("unknown regfile %q", s)
	}
}

func parseBLGPMode(s string) (descriptor.BLGPMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return descriptor.BLGPNone, nil
	case "lane-swizzle":
		return descriptor.BLGPLaneSwizzle, nil
	case "fp64-negate":
		return descriptor.BLGPFP64Negate, nil
	default:
		return 0, fmt.Errorf("unknown blgp_mode %q", s)
	}
}

func parseABIDMode(s string) (descriptor.ABIDMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return descriptor.ABIDNone, nil
	case "broadcast":
		return descriptor.ABIDBroadcast, nil
	case "sparse-select":
		return descriptor.ABIDSparseSelect, nil
	default:
		return 0, fmt.Errorf("unknown abid_mode %q", s)
	}
}

func parsePattern(s string) (descriptor.Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dense-mfma":
		return descriptor.DenseMFMA, nil
	case "multi-row-per-lane":
		return descriptor.MultiRowPerLane, nil
	case "fp64-pair":
		return descriptor.FP64Pair, nil
	case "wave32-wmma":
		return descriptor.Wave32WMMA, nil
	default:
		return 0, fmt.Errorf("unknown pattern %q", s)
	}
}
