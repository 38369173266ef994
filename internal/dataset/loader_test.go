package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
)

func TestLoadEmbedded(t *testing.T) {
	bundle, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, SourceEmbedded, bundle.Source)
	require.Len(t, bundle.All(), 6)

	adhesion := bundle.Get(apl.DatasetAdhesionByYear)
	require.NotNil(t, adhesion)
	years := adhesion.Years()
	require.NotEmpty(t, years)
	assert.Equal(t, int64(apl.FirstAdhesionYear), years[0])
	for i := 1; i < len(years); i++ {
		assert.Less(t, years[i-1], years[i], "years must be ascending")
	}

	sectors := bundle.Get(apl.DatasetAdhesionBySector)
	require.NotNil(t, sectors)
	installations := sectors.Ints(apl.ColInstallations)
	for i := 1; i < len(installations); i++ {
		assert.GreaterOrEqual(t, installations[i-1], installations[i],
			"sector rows must be sorted by installations descending")
	}

	sizes := bundle.Get(apl.DatasetAdhesionBySize)
	require.NotNil(t, sizes)
	for _, code := range sizes.Labels(apl.ColCompanySize) {
		assert.Contains(t, apl.AllowedSizes, code)
	}

	// the published aggregates agree across views
	assert.Equal(t,
		adhesion.Total(apl.ColInstallations),
		sectors.Total(apl.ColInstallations))
	assert.Equal(t,
		adhesion.Total(apl.ColCompanies),
		sizes.Total(apl.ColCompanies))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeMinimalData(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "yearly_summary.csv",
		"year,installations_adhesion,companies_adhesion,installations_certification,companies_certification\n"+
			"2002,10,8,0,0\n2003,20,12,0,0\n2004,15,9,5,4\n")
	writeFile(t, dir, "adhesion_by_year.csv",
		"year,installations,companies\n2002,10,8\n2003,20,12\n2004,15,9\nTotal,45,29\n")
	writeFile(t, dir, "adhesion_by_sector.csv",
		"sector,installations\nTurismo,27\nAgroindustria,18\n")
	writeFile(t, dir, "certification_by_sector.csv",
		"sector,installations\nTurismo,5\n")
	writeFile(t, dir, "adhesion_by_size.csv",
		"company_size,companies,installations\nPEQUEÑA,17,27\nMICRO,12,18\nDESCONOCIDA,4,6\n")

	// certification_by_year arrives as a raw Spanish XLSX drop
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Año", "Instalaciones", "Empresas"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{2004, 5, 4}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "certification_by_year.xlsx")))
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeMinimalData(t, dir)

	bundle, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, dir, bundle.Source)

	adhesion := bundle.Get(apl.DatasetAdhesionByYear)
	require.NotNil(t, adhesion)
	assert.Equal(t, 3, adhesion.Len(), "the Total footer row must be dropped")
	assert.Equal(t, int64(45), adhesion.Total(apl.ColInstallations))

	// xlsx stand-in with Spanish headers resolves through the aliases
	certification := bundle.Get(apl.DatasetCertificationByYear)
	require.NotNil(t, certification)
	require.Equal(t, 1, certification.Len())
	v, ok := certification.YearValue(2004, apl.ColInstallations)
	require.True(t, ok)
	assert.Equal(t, int64(5), v)

	sizes := bundle.Get(apl.DatasetAdhesionBySize)
	require.NotNil(t, sizes)
	assert.Equal(t, 2, sizes.Len(), "unknown size codes must be dropped")
	assert.Equal(t, []string{"PEQUEÑA", "MICRO"}, sizes.Labels(apl.ColCompanySize))
}

func TestLoadMissingDataset(t *testing.T) {
	dir := t.TempDir()
	writeMinimalData(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "adhesion_by_sector.csv")))

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetMissing, errors.GetCode(err))
}

func TestLoadDuplicateYear(t *testing.T) {
	dir := t.TempDir()
	writeMinimalData(t, dir)
	writeFile(t, dir, "adhesion_by_year.csv",
		"year,installations,companies\n2002,10,8\n2002,20,12\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetInvalid, errors.GetCode(err))
}

func TestLoadNegativeCount(t *testing.T) {
	dir := t.TempDir()
	writeMinimalData(t, dir)
	writeFile(t, dir, "adhesion_by_sector.csv",
		"sector,installations\nTurismo,27\nAgroindustria,-3\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "negative count")
}

func TestLoadMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeMinimalData(t, dir)
	writeFile(t, dir, "adhesion_by_sector.csv", "sector,total\nTurismo,27\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "installations")
}

func TestCoerceCount(t *testing.T) {
	cases := []struct {
		cell string
		want int64
	}{
		{"", 0},
		{"120", 120},
		{"120.0", 120},
		{"s/i", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, coerceCount(tc.cell), "cell %q", tc.cell)
	}
}
