package apl

import "strings"

// Series display names used across charts and tables
const (
	SeriesAdhesion      = "Adhesión"
	SeriesCertification = "Certificación"

	MeasureInstallations = "Instalaciones"
	MeasureCompanies     = "Empresas"
)

// sectorShortNames maps sector names that overflow chart labels to their
// rendering form. Stored data keeps the long names.
var sectorShortNames = map[string]string{
	"Agricultura, ganadería, pesca y silvicultura": "Agro, pesca y silvicultura",
}

// sizeDisplayNames maps the registry's company size codes to rendering labels
var sizeDisplayNames = map[string]string{
	"PEQUEÑA": "Pequeña",
	"MICRO":   "Micro",
	"MEDIANA": "Mediana",
	"GRANDE":  "Grande",
	"SSPP":    "Servicios públicos",
}

// DisplaySector returns the rendering label for a sector name
func DisplaySector(sector string) string {
	if short, ok := sectorShortNames[sector]; ok {
		return short
	}
	return sector
}

// DisplaySectors maps DisplaySector over a label vector
func DisplaySectors(sectors []string) []string {
	out := make([]string, len(sectors))
	for i, s := range sectors {
		out[i] = DisplaySector(s)
	}
	return out
}

// DisplaySize returns the rendering label for a company size code
func DisplaySize(code string) string {
	if label, ok := sizeDisplayNames[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return label
	}
	return code
}

// DisplaySizes maps DisplaySize over a label vector
func DisplaySizes(codes []string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = DisplaySize(c)
	}
	return out
}

// ColumnDisplay returns the Spanish label for a canonical column name
func ColumnDisplay(column string) string {
	switch column {
	case ColYear:
		return "Año"
	case ColInstallations:
		return MeasureInstallations
	case ColCompanies:
		return MeasureCompanies
	case ColSector:
		return "Sector"
	case ColCompanySize:
		return "Tamaño de empresa"
	case ColInstallationsAdhesion:
		return "Instalaciones adheridas"
	case ColCompaniesAdhesion:
		return "Empresas adheridas"
	case ColInstallationsCertification:
		return "Instalaciones certificadas"
	case ColCompaniesCertification:
		return "Empresas certificadas"
	}
	return column
}
