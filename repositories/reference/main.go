package reference

import (
	"fmt"
	"io/ioutil"
	"strings"
	"sync/atomic"

	"github.com/Jeffail/gabs"
)

/*
	Curated, read-only gene-membership tables consumed by the
	evidence-assignment rules. Tables are built once and shared by
	reference across any number of workers; a reload produces a brand
	new Tables value and swaps the package-level reference atomically,
	never mutating a published table in place.
*/

type GeneTable struct {
	name    string
	symbols map[string]struct{}
}

func NewGeneTable(name string, symbols []string) *GeneTable {
	table := &GeneTable{
		name:    name,
		symbols: make(map[string]struct{}, len(symbols)),
	}
	for _, symbol := range symbols {
		normalized := strings.ToUpper(strings.TrimSpace(symbol))
		if normalized == "" {
			continue
		}
		table.symbols[normalized] = struct{}{}
	}
	return table
}

func (t *GeneTable) Name() string {
	return t.name
}

func (t *GeneTable) Size() int {
	return len(t.symbols)
}

func (t *GeneTable) Contains(symbol string) bool {
	_, ok := t.symbols[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}

func (t *GeneTable) ContainsAny(symbols []string) bool {
	for _, symbol := range symbols {
		if t.Contains(symbol) {
			return true
		}
	}
	return false
}

// Tables bundles the gene tables the assignment rules consult.
type Tables struct {
	lofIntolerant       *GeneTable
	missenseConstrained *GeneTable
}

func NewTables(lofIntolerant *GeneTable, missenseConstrained *GeneTable) *Tables {
	return &Tables{
		lofIntolerant:       lofIntolerant,
		missenseConstrained: missenseConstrained,
	}
}

func (t *Tables) LofIntolerant() *GeneTable {
	return t.lofIntolerant
}

func (t *Tables) MissenseConstrained() *GeneTable {
	return t.missenseConstrained
}

// genes where loss-of-function is an established disease mechanism
// (haploinsufficient / LOF-intolerant), seeded from the ClinGen
// dosage-sensitivity curations commonly used for PVS1
var defaultLofIntolerantGenes = []string{
	"APC", "ATM", "BMPR1A", "BRCA1", "BRCA2", "CDH1", "CHEK2", "DMD",
	"MLH1", "MSH2", "MSH6", "NF1", "NF2", "PALB2", "PMS2", "PTEN",
	"RB1", "SMAD4", "STK11", "TSC1", "TSC2", "VHL", "WT1",
}

// genes with a low rate of benign missense variation, where missense
// is a common mechanism of disease (the PP2 gene list); largely the
// RASopathy and channelopathy sets
var defaultMissenseConstrainedGenes = []string{
	"BRAF", "CACNA1C", "FBN1", "HRAS", "KCNH2", "KCNQ1", "KRAS",
	"MAP2K1", "MAP2K2", "MYH7", "NRAS", "PTPN11", "RAF1", "RIT1",
	"SCN1A", "SCN5A", "SHOC2", "SOS1", "TP53",
}

func DefaultTables() *Tables {
	return NewTables(
		NewGeneTable("lof-intolerant", defaultLofIntolerantGenes),
		NewGeneTable("missense-constrained", defaultMissenseConstrainedGenes),
	)
}

// LoadTablesFromJson builds a fresh Tables value from a curated JSON
// file of shape {"lofIntolerant": [...], "missenseConstrained": [...]}.
// Either list may be omitted, in which case the built-in curation is kept.
func LoadTablesFromJson(path string) (*Tables, error) {
	contents, readErr := ioutil.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read gene table file %s: %w", path, readErr)
	}

	jsonParsed, parseErr := gabs.ParseJSON(contents)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse gene table file %s: %w", path, parseErr)
	}

	defaults := DefaultTables()

	lof := defaults.LofIntolerant()
	if symbols, ok := extractSymbols(jsonParsed, "lofIntolerant"); ok {
		lof = NewGeneTable("lof-intolerant", symbols)
	}

	missense := defaults.MissenseConstrained()
	if symbols, ok := extractSymbols(jsonParsed, "missenseConstrained"); ok {
		missense = NewGeneTable("missense-constrained", symbols)
	}

	return NewTables(lof, missense), nil
}

func extractSymbols(jsonParsed *gabs.Container, key string) ([]string, bool) {
	children, err := jsonParsed.Path(key).Children()
	if err != nil {
		return nil, false
	}

	symbols := make([]string, 0, len(children))
	for _, child := range children {
		if symbol, ok := child.Data().(string); ok {
			symbols = append(symbols, symbol)
		}
	}
	return symbols, true
}

// package-level published tables, read via Current() by the engine
var current atomic.Value

func init() {
	current.Store(DefaultTables())
}

func Current() *Tables {
	return current.Load().(*Tables)
}

// Swap atomically publishes a new set of tables. In-flight
// classifications keep the tables they started with.
func Swap(tables *Tables) {
	current.Store(tables)
}
