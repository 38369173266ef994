// Package apl holds the domain model for the Sellos APL aggregates: the
// catalog of processed datasets published by the clean-production agreement
// program and the loaded, validated form of each one.
package apl

// ColumnKind discriminates how a column's cells are interpreted
type ColumnKind string

const (
	// KindLabel marks free-text category columns (sector, company_size)
	KindLabel ColumnKind = "label"
	// KindYear marks the calendar-year column of the time series datasets
	KindYear ColumnKind = "year"
	// KindCount marks non-negative integer measure columns
	KindCount ColumnKind = "count"
)

// Column describes one column of a processed dataset
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// SortRule fixes the row order a dataset is rendered in
type SortRule struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// Spec declares the contract of one processed dataset: its identity, source
// file, column layout and the row rules the loader enforces.
type Spec struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`

	// YearFiltered keeps only rows whose year cell parses as an integer,
	// dropping footer and annotation rows present in raw exports.
	YearFiltered bool `json:"year_filtered,omitempty"`

	// AllowedValues whitelists cell values per label column; rows with other
	// values are dropped.
	AllowedValues map[string][]string `json:"allowed_values,omitempty"`

	Sort SortRule `json:"sort"`
}

// ColumnNames returns the canonical column names in declaration order
func (s Spec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the spec declares the named column
func (s Spec) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnKindOf returns the declared kind of a column, KindLabel when unknown
func (s Spec) ColumnKindOf(name string) ColumnKind {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Kind
		}
	}
	return KindLabel
}

// Record holds one row's cells keyed by canonical column name. Label columns
// live in Text; year and count columns are parsed into Num.
type Record struct {
	Text map[string]string `json:"text,omitempty"`
	Num  map[string]int64  `json:"num,omitempty"`
}

// Dataset is a loaded and validated processed dataset with its rows in
// display order.
type Dataset struct {
	Spec Spec     `json:"spec"`
	Rows []Record `json:"rows"`
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Ints returns the named numeric column as a vector in row order
func (d *Dataset) Ints(column string) []int64 {
	values := make([]int64, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row.Num[column]
	}
	return values
}

// Floats returns the named numeric column as float64s, for statistics
func (d *Dataset) Floats(column string) []float64 {
	values := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = float64(row.Num[column])
	}
	return values
}

// Labels returns the named label column as a vector in row order
func (d *Dataset) Labels(column string) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row.Text[column]
	}
	return values
}

// Years returns the year column of a time series dataset
func (d *Dataset) Years() []int64 {
	return d.Ints(ColYear)
}

// Total sums the named numeric column
func (d *Dataset) Total(column string) int64 {
	var total int64
	for _, row := range d.Rows {
		total += row.Num[column]
	}
	return total
}

// YearValue returns the named column's value for a given year and whether the
// year is present.
func (d *Dataset) YearValue(year int64, column string) (int64, bool) {
	for _, row := range d.Rows {
		if row.Num[ColYear] == year {
			return row.Num[column], true
		}
	}
	return 0, false
}

// Records flattens rows into JSON-friendly maps, one per row, preserving row
// order. Used by the dataset exports and the preview API.
func (d *Dataset) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, len(d.Rows))
	for i, row := range d.Rows {
		record := make(map[string]interface{}, len(d.Spec.Columns))
		for _, col := range d.Spec.Columns {
			switch col.Kind {
			case KindLabel:
				record[col.Name] = row.Text[col.Name]
			default:
				record[col.Name] = row.Num[col.Name]
			}
		}
		records[i] = record
	}
	return records
}
