// Package embed is the Go-embeddable facade for the matrix instruction
// calculator: a host application links this package directly instead
// of shelling out to cmd/mfmacalc, using the teacher's pkg/embed
// functional-options idiom.
//
// Basic usage:
//
//	res, err := embed.GetRegister("CDNA2", "V_MFMA_F32_4X4X4F16", query.Args{
//	    Matrix: coord.A, I: 2, K: 1,
//	}, false)
//
// With advanced options:
//
//	calc, err := embed.New(embed.WithCatalogCSV(customCSV))
//	res, err := calc.GetRegister("CDNA2", "V_MFMA_F32_4X4X4F16", args, false)
package embed

import (
	"github.com/amd/mfmacalc/pkg/arch"
	"github.com/amd/mfmacalc/pkg/catalog"
	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/query"
)

// Calculator wraps a loaded catalog and its query facade for embedding.
type Calculator struct {
	facade *query.Facade
}

// Options configures Calculator construction.
type Options struct {
	// CatalogCSV overrides the embedded catalog with a caller-supplied
	// CSV, in the catalog's own column format. Nil uses the default
	// embedded catalog.
	CatalogCSV []byte
}

// Option is a functional option for New.
type Option func(*Options)

// WithCatalogCSV replaces the embedded instruction catalog with csv,
// useful for testing against a synthetic descriptor set.
func WithCatalogCSV(csv []byte) Option {
	return func(o *Options) { o.CatalogCSV = csv }
}

// New builds a Calculator, loading and self-checking the catalog.
func New(opts ...Option) (*Calculator, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	var cat *catalog.Catalog
	var err error
	if options.CatalogCSV != nil {
		cat, err = catalog.LoadFrom(options.CatalogCSV)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		return nil, err
	}
	return &Calculator{facade: query.New(cat)}, nil
}

// mustDefault is a lazily-built package-level Calculator over the
// embedded catalog, backing the package-level convenience functions.
var mustDefault = func() *Calculator {
	return &Calculator{facade: query.New(catalog.MustLoad())}
}

var defaultCalc *Calculator

func def() *Calculator {
	if defaultCalc == nil {
		defaultCalc = mustDefault()
	}
	return defaultCalc
}

// ListInstructions lists every instruction mnemonic for archName.
func (c *Calculator) ListInstructions(archName string) ([]string, error) {
	id, err := arch.Resolve(archName)
	if err != nil {
		return nil, err
	}
	return c.facade.ListInstructions(id), nil
}

// Detail returns the full descriptor and mapping-formula text for one
// instruction.
func (c *Calculator) Detail(archName, mnemonic string) (*query.Detail, error) {
	id, err := arch.Resolve(archName)
	if err != nil {
		return nil, err
	}
	return c.facade.Detail(id, mnemonic)
}

// GetRegister maps a logical coordinate to its physical register location.
func (c *Calculator) GetRegister(archName, mnemonic string, a query.Args, outputCalc bool) (*query.Result, error) {
	id, err := arch.Resolve(archName)
	if err != nil {
		return nil, err
	}
	return c.facade.GetRegister(id, mnemonic, a, outputCalc)
}

// MatrixEntry maps a physical register location to every coordinate it holds.
func (c *Calculator) MatrixEntry(archName, mnemonic string, a query.Args, outputCalc bool) ([]*query.Result, error) {
	id, err := arch.Resolve(archName)
	if err != nil {
		return nil, err
	}
	return c.facade.MatrixEntry(id, mnemonic, a, outputCalc)
}

// RegisterLayout returns the complete register layout for one matrix.
func (c *Calculator) RegisterLayout(archName, mnemonic string, m coord.Matrix, mods coord.Modifiers) ([]query.LayoutCell, error) {
	id, err := arch.Resolve(archName)
	if err != nil {
		return nil, err
	}
	return c.facade.RegisterLayout(id, mnemonic, m, mods)
}

// Package-level convenience wrappers over a lazily-built default
// Calculator, for callers who don't need a custom catalog.

// ListInstructions is the package-level convenience form of (*Calculator).ListInstructions.
func ListInstructions(archName string) ([]string, error) { return def().ListInstructions(archName) }

// Detail is the package-level convenience form of (*Calculator).Detail.
func Detail(archName, mnemonic string) (*query.Detail, error) { return def().Detail(archName, mnemonic) }

// GetRegister is the package-level convenience form of (*Calculator).GetRegister.
func GetRegister(archName, mnemonic string, a query.Args, outputCalc bool) (*query.Result, error) {
	return def().GetRegister(archName, mnemonic, a, outputCalc)
}

// MatrixEntry is the package-level convenience form of (*Calculator).MatrixEntry.
func MatrixEntry(archName, mnemonic string, a query.Args, outputCalc bool) ([]*query.Result, error) {
	return def().MatrixEntry(archName, mnemonic, a, outputCalc)
}
