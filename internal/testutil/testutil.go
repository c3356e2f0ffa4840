// Package testutil provides shared test fixtures for the calculator's
// package tests: a minimal, self-consistent instruction catalog CSV so
// pkg/catalog, pkg/embed, and pkg/repl tests don't each hand-roll their
// own header string.
package testutil

// CatalogHeader is instructions.csv's column header line.
func CatalogHeader() string {
	return "arch,mnemonic,encoding,opcode_vop3p,opcode_mai,m,n,k,blocks,flops,cycles,flops_per_cu_cycle,coexec_valu,coexec_cycles,gprs_a,gprs_b,gprs_c,gprs_k,alignment_bytes,src0_type,src1_type,src2_type,vdst_type,a_regfile,b_regfile,cd_regfile,mod_cbsz,mod_abid,mod_blgp,mod_opsel,mod_neg,mod_neghi,blgp_mode,abid_mode,is_sparse,pattern"
}

// SampleCatalogCSV is a one-instruction catalog (CDNA2 dense MFMA) used
// by tests that need a small, real, self-checking catalog rather than
// the full embedded one.
func SampleCatalogCSV() []byte {
	row := "CDNA2,V_MFMA_F32_4X4X4F16,VOP3P-MAI,0x4a,0xa,4,4,4,16,2048,8,1.0,1,4,2,2,4,0,8,FP16,FP16,FP32,FP32,Both,Both,Both,1,1,1,0,0,0,lane-swizzle,broadcast,0,dense-mfma"
	return []byte(CatalogHeader() + "\n" + row + "\n")
}
