// Package dataset loads the processed aggregate files against the catalog
// contracts: required columns, row filters, count coercion and display order.
package dataset

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/adapters/tabular"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/data"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
)

// SourceEmbedded names the bundle source when no data directory is set
const SourceEmbedded = "embedded"

// headerAliases translates canonical forms of raw export headers to catalog
// column names, so a Spanish XLSX drop loads without hand renaming.
var headerAliases = map[string]string{
	"ano":               apl.ColYear,
	"anio":              apl.ColYear,
	"instalaciones":     apl.ColInstallations,
	"empresas":          apl.ColCompanies,
	"rubro":             apl.ColSector,
	"sector_productivo": apl.ColSector,
	"tamano_de_empresa": apl.ColCompanySize,
	"tamano_empresa":    apl.ColCompanySize,
}

// Bundle holds the six loaded datasets
type Bundle struct {
	Source   string
	datasets map[string]*apl.Dataset
}

// Get returns a dataset by canonical name, nil when absent
func (b *Bundle) Get(name string) *apl.Dataset {
	return b.datasets[name]
}

// All returns the datasets in publication order
func (b *Bundle) All() []*apl.Dataset {
	out := make([]*apl.Dataset, 0, len(b.datasets))
	for _, name := range apl.DatasetNames() {
		if ds, ok := b.datasets[name]; ok {
			out = append(out, ds)
		}
	}
	return out
}

// Loader reads the catalog datasets from a directory or the embedded copies
type Loader struct {
	dir string
}

// NewLoader creates a loader. An empty dir selects the embedded datasets.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads and validates every dataset in the catalog
func (l *Loader) Load() (*Bundle, error) {
	source := l.dir
	if source == "" {
		source = SourceEmbedded
	}
	log.Printf("[Loader] Loading %d datasets from %s", len(apl.Catalog()), source)

	bundle := &Bundle{
		Source:   source,
		datasets: make(map[string]*apl.Dataset, len(apl.Catalog())),
	}
	for _, spec := range apl.Catalog() {
		table, err := l.readTable(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "loading dataset %s", spec.Name)
		}
		ds, err := buildDataset(spec, table)
		if err != nil {
			return nil, err
		}
		log.Printf("[Loader] %s: %d rows", spec.Name, ds.Len())
		bundle.datasets[spec.Name] = ds
	}
	return bundle, nil
}

func (l *Loader) readTable(spec apl.Spec) (*tabular.Table, error) {
	if l.dir == "" {
		f, err := data.FS.Open(path.Join(data.ProcessedDir, spec.File))
		if err != nil {
			return nil, errors.DatasetMissing(spec.Name)
		}
		defer f.Close()
		return tabular.ReadCSVFrom(f, spec.File)
	}

	csvPath := filepath.Join(l.dir, spec.File)
	if _, err := os.Stat(csvPath); err == nil {
		return tabular.NewReader(csvPath).Read()
	}

	// A raw XLSX drop may stand in for the processed CSV
	xlsxPath := strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
	if _, err := os.Stat(xlsxPath); err == nil {
		return tabular.NewReader(xlsxPath).Read()
	}

	return nil, errors.DatasetMissing(spec.Name)
}

// buildDataset applies the spec contract to a raw table
func buildDataset(spec apl.Spec, table *tabular.Table) (*apl.Dataset, error) {
	if table.IsEmpty() {
		return nil, errors.DatasetInvalid(spec.Name, "no data rows")
	}

	columns, err := resolveColumns(spec, table.Headers)
	if err != nil {
		return nil, err
	}

	rows := make([]apl.Record, 0, len(table.Rows))
	seenYears := make(map[int64]bool)
	for _, raw := range table.Rows {
		record, keep, err := buildRecord(spec, columns, raw, seenYears)
		if err != nil {
			return nil, err
		}
		if keep {
			rows = append(rows, record)
		}
	}
	if len(rows) == 0 {
		return nil, errors.DatasetInvalid(spec.Name, "no rows survive the contract filters")
	}

	sortRows(spec, rows)
	return &apl.Dataset{Spec: spec, Rows: rows}, nil
}

// resolveColumns maps each catalog column to the table header carrying it
func resolveColumns(spec apl.Spec, headers []string) (map[string]string, error) {
	available := make(map[string]string, len(headers))
	for _, h := range headers {
		available[h] = h
		if canonical, ok := headerAliases[h]; ok {
			if _, taken := available[canonical]; !taken {
				available[canonical] = h
			}
		}
	}

	columns := make(map[string]string, len(spec.Columns))
	var missing []string
	for _, col := range spec.Columns {
		header, ok := available[col.Name]
		if !ok {
			missing = append(missing, col.Name)
			continue
		}
		columns[col.Name] = header
	}
	if len(missing) > 0 {
		return nil, errors.DatasetInvalid(spec.Name,
			"missing required columns: "+strings.Join(missing, ", "))
	}
	return columns, nil
}

func buildRecord(spec apl.Spec, columns map[string]string, raw map[string]string, seenYears map[int64]bool) (apl.Record, bool, error) {
	record := apl.Record{
		Text: make(map[string]string),
		Num:  make(map[string]int64),
	}

	for _, col := range spec.Columns {
		cell := strings.TrimSpace(raw[columns[col.Name]])

		switch col.Kind {
		case apl.KindYear:
			year, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				if spec.YearFiltered {
					// Footer and annotation rows ("Total", blanks) are dropped
					return apl.Record{}, false, nil
				}
				return apl.Record{}, false, errors.DatasetInvalid(spec.Name, "year cell is not numeric: "+cell)
			}
			if seenYears[year] {
				return apl.Record{}, false, errors.DatasetInvalid(spec.Name,
					"duplicate year "+cell)
			}
			seenYears[year] = true
			record.Num[col.Name] = year

		case apl.KindCount:
			value := coerceCount(cell)
			if value < 0 {
				return apl.Record{}, false, errors.DatasetInvalid(spec.Name,
					"negative count in column "+col.Name)
			}
			record.Num[col.Name] = value

		default:
			if allowed, restricted := spec.AllowedValues[col.Name]; restricted {
				if !valueAllowed(cell, allowed) {
					return apl.Record{}, false, nil
				}
			}
			record.Text[col.Name] = cell
		}
	}
	return record, true, nil
}

// coerceCount parses a count cell charitably: empty and unparseable cells
// become 0, decimal renderings of whole numbers are accepted.
func coerceCount(cell string) int64 {
	if cell == "" {
		return 0
	}
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return int64(f)
	}
	return 0
}

func valueAllowed(cell string, allowed []string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(cell))
	for _, v := range allowed {
		if normalized == v {
			return true
		}
	}
	return false
}

func sortRows(spec apl.Spec, rows []apl.Record) {
	column := spec.Sort.Column
	if column == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if spec.Sort.Descending {
			return rows[i].Num[column] > rows[j].Num[column]
		}
		return rows[i].Num[column] < rows[j].Num[column]
	})
}
