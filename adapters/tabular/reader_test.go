package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCanonicalHeader(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Año", "ano"},
		{" Instalaciones ", "instalaciones"},
		{"Tamaño de Empresa", "tamano_de_empresa"},
		{"N° de empresas", "n_de_empresas"},
		{"EMPRESAS  (total)", "empresas_total"},
		{"sector", "sector"},
		{"--", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, CanonicalHeader(tc.raw))
		})
	}
}

func TestReadCSV(t *testing.T) {
	csvContent := strings.Join([]string{
		"Año,Instalaciones,Empresas,Notas",
		"2002,120,85,",
		"2003,210,150,",
		",,,",
		"2004,340,245,",
	}, "\n")

	path := filepath.Join(t.TempDir(), "adhesion_by_year.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvContent), 0o644))

	table, err := NewReader(path).Read()
	require.NoError(t, err)

	// the empty "Notas" column and the all-empty row are dropped
	assert.Equal(t, []string{"ano", "instalaciones", "empresas"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "210", table.Rows[1]["instalaciones"])
	assert.False(t, table.IsEmpty())
}

func TestReadCSVRaggedRows(t *testing.T) {
	csvContent := "sector,instalaciones\nTurismo,2120\nMinería,1140,extra\n"
	path := filepath.Join(t.TempDir(), "sectors.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvContent), 0o644))

	table, err := NewReader(path).Read()
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1140", table.Rows[1]["instalaciones"])
}

func TestReadXLSXMatchesCSV(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "by_size.csv")
	csvContent := "Tamaño de Empresa,Empresas,Instalaciones\nPEQUEÑA,3340,4080\nMICRO,2410,2650\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0o644))

	xlsxPath := filepath.Join(dir, "by_size.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1",
		&[]interface{}{"Tamaño de Empresa", "Empresas", "Instalaciones"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"PEQUEÑA", 3340, 4080}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"MICRO", 2410, 2650}))
	require.NoError(t, f.SaveAs(xlsxPath))

	fromCSV, err := NewReader(csvPath).Read()
	require.NoError(t, err)
	fromXLSX, err := NewReader(xlsxPath).Read()
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Headers, fromXLSX.Headers)
	assert.Equal(t, fromCSV.Rows, fromXLSX.Rows)
}

func TestReadCSVFrom(t *testing.T) {
	table, err := ReadCSVFrom(strings.NewReader("year,installations\n2002,120\n"), "embedded.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "installations"}, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestReadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewReader(filepath.Join(t.TempDir(), "nope.csv")).Read()
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, []byte("year,installations\n"), 0o644))
		_, err := NewReader(path).Read()
		assert.Error(t, err)
	})

	t.Run("duplicate headers after normalization", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dup.csv")
		require.NoError(t, os.WriteFile(path, []byte("Año,AÑO\n2002,2002\n"), 0o644))
		_, err := NewReader(path).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate column")
	})
}
