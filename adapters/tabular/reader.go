// Package tabular reads the processed aggregate files. It accepts both the
// published CSVs and raw XLSX drops so a fresh registry export can be pointed
// at directly.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Table is a raw tabular file after header canonicalization: canonical
// headers in file order and one cell map per surviving row.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// IsEmpty reports whether the table has no data rows
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Reader handles reading CSV and XLSX aggregate files
type Reader struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// NewReader creates a reader for the given file, picking the format from the
// extension.
func NewReader(filePath string) *Reader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Read loads the file into a Table
func (r *Reader) Read() (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readXLSX()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *Reader) readCSV() (*Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return r.readCSVFrom(file)
}

// ReadCSVFrom parses CSV content from an arbitrary source, used for the
// datasets embedded in the binary.
func ReadCSVFrom(src io.Reader, name string) (*Table, error) {
	r := &Reader{filePath: name, fileType: "csv"}
	return r.readCSVFrom(src)
}

func (r *Reader) readCSVFrom(src io.Reader) (*Table, error) {
	reader := csv.NewReader(src)
	// Raw exports carry ragged annotation rows; length is checked later
	// against the dataset contract, not here.
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[TableReader] CSV %s read in %.2fms (%d rows)",
		filepath.Base(r.filePath), float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return processRows(rows)
}

func (r *Reader) readXLSX() (*Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	log.Printf("[TableReader] XLSX %s sheet %s read in %.2fms (%d rows)",
		filepath.Base(r.filePath), sheets[0],
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("XLSX file must have at least a header row and one data row")
	}

	return processRows(rows)
}

// processRows canonicalizes headers, maps cells by header and drops rows and
// columns that are entirely empty.
func processRows(rows [][]string) (*Table, error) {
	headerRow := rows[0]
	headers := make([]string, 0, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for _, raw := range headerRow {
		header := CanonicalHeader(raw)
		if header == "" {
			// Unnamed columns hold no addressable data; cells under them are
			// dropped with the column.
			headers = append(headers, "")
			continue
		}
		if seen[header] {
			return nil, fmt.Errorf("duplicate column %q after normalization", header)
		}
		seen[header] = true
		headers = append(headers, header)
	}

	var dataRows []map[string]string
	nonEmpty := make(map[string]bool, len(headers))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(map[string]string, len(headers))
		empty := true

		for j, cell := range row {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			rowData[headers[j]] = value
			if value != "" {
				empty = false
				nonEmpty[headers[j]] = true
			}
		}

		if !empty {
			dataRows = append(dataRows, rowData)
		}
	}

	kept := make([]string, 0, len(headers))
	for _, header := range headers {
		if header != "" && nonEmpty[header] {
			kept = append(kept, header)
		}
	}

	return &Table{Headers: kept, Rows: dataRows}, nil
}
