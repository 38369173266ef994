package apl

// Canonical dataset names. They bind 1:1 to the processed CSV files and are
// the identifiers used across the generator, the checks and the preview API.
const (
	DatasetYearlySummary         = "yearly_summary"
	DatasetAdhesionByYear        = "adhesion_by_year"
	DatasetCertificationByYear   = "certification_by_year"
	DatasetAdhesionBySector      = "adhesion_by_sector"
	DatasetCertificationBySector = "certification_by_sector"
	DatasetAdhesionBySize        = "adhesion_by_size"
)

// Canonical column names shared by the datasets
const (
	ColYear          = "year"
	ColInstallations = "installations"
	ColCompanies     = "companies"
	ColSector        = "sector"
	ColCompanySize   = "company_size"

	ColInstallationsAdhesion      = "installations_adhesion"
	ColCompaniesAdhesion          = "companies_adhesion"
	ColInstallationsCertification = "installations_certification"
	ColCompaniesCertification     = "companies_certification"
)

// FirstAdhesionYear is the first year the program registered adhesions.
// Earlier years in an input file indicate a broken export.
const FirstAdhesionYear = 2002

// AllowedSizes are the company size codes the program classifies by
var AllowedSizes = []string{"PEQUEÑA", "MICRO", "MEDIANA", "GRANDE", "SSPP"}

var catalog = []Spec{
	{
		Name:  DatasetYearlySummary,
		File:  "yearly_summary.csv",
		Title: "Resumen anual de adhesión y certificación",
		Columns: []Column{
			{Name: ColYear, Kind: KindYear},
			{Name: ColInstallationsAdhesion, Kind: KindCount},
			{Name: ColCompaniesAdhesion, Kind: KindCount},
			{Name: ColInstallationsCertification, Kind: KindCount},
			{Name: ColCompaniesCertification, Kind: KindCount},
		},
		YearFiltered: true,
		Sort:         SortRule{Column: ColYear},
	},
	{
		Name:  DatasetAdhesionByYear,
		File:  "adhesion_by_year.csv",
		Title: "Adhesiones por año",
		Columns: []Column{
			{Name: ColYear, Kind: KindYear},
			{Name: ColInstallations, Kind: KindCount},
			{Name: ColCompanies, Kind: KindCount},
		},
		YearFiltered: true,
		Sort:         SortRule{Column: ColYear},
	},
	{
		Name:  DatasetCertificationByYear,
		File:  "certification_by_year.csv",
		Title: "Certificaciones por año",
		Columns: []Column{
			{Name: ColYear, Kind: KindYear},
			{Name: ColInstallations, Kind: KindCount},
			{Name: ColCompanies, Kind: KindCount},
		},
		YearFiltered: true,
		Sort:         SortRule{Column: ColYear},
	},
	{
		Name:  DatasetAdhesionBySector,
		File:  "adhesion_by_sector.csv",
		Title: "Adhesiones por sector productivo",
		Columns: []Column{
			{Name: ColSector, Kind: KindLabel},
			{Name: ColInstallations, Kind: KindCount},
		},
		Sort: SortRule{Column: ColInstallations, Descending: true},
	},
	{
		Name:  DatasetCertificationBySector,
		File:  "certification_by_sector.csv",
		Title: "Certificaciones por sector productivo",
		Columns: []Column{
			{Name: ColSector, Kind: KindLabel},
			{Name: ColInstallations, Kind: KindCount},
		},
		Sort: SortRule{Column: ColInstallations, Descending: true},
	},
	{
		Name:  DatasetAdhesionBySize,
		File:  "adhesion_by_size.csv",
		Title: "Adhesiones por tamaño de empresa",
		Columns: []Column{
			{Name: ColCompanySize, Kind: KindLabel},
			{Name: ColCompanies, Kind: KindCount},
			{Name: ColInstallations, Kind: KindCount},
		},
		AllowedValues: map[string][]string{
			ColCompanySize: AllowedSizes,
		},
		Sort: SortRule{Column: ColCompanies, Descending: true},
	},
}

// Catalog returns the specs of the six processed datasets in publication order
func Catalog() []Spec {
	specs := make([]Spec, len(catalog))
	copy(specs, catalog)
	return specs
}

// SpecFor looks a dataset spec up by canonical name
func SpecFor(name string) (Spec, bool) {
	for _, spec := range catalog {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

// DatasetNames returns the canonical names in publication order
func DatasetNames() []string {
	names := make([]string, len(catalog))
	for i, spec := range catalog {
		names[i] = spec.Name
	}
	return names
}
