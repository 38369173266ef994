package site

import (
	"fmt"
	"strconv"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/analysis"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/plotly"
)

// Series colors shared by every chart
const (
	colorAdhesion      = "#1f77b4"
	colorCertification = "#ff7f0e"
	colorNeutral       = "#8c8c8c"
)

// Section is one dashboard section: a nav entry, the chart drawn into its
// container and the table fallback for script-less browsers.
type Section struct {
	ID      string
	Label   string
	Heading string
	Caption string
	Figure  plotly.Figure
	Table   Table
}

// Table is the noscript fallback of a section
type Table struct {
	Headers []string
	Rows    [][]string
}

// BuildSections builds the dashboard sections in navigation order. Every
// series a figure embeds is copied verbatim from the loaded datasets; only
// the distribution sections carry values derived from them.
func BuildSections(bundle *dataset.Bundle) ([]Section, error) {
	builders := []func(*dataset.Bundle) (Section, error){
		companiesEvolution,
		installationsByYear,
		logScaleGrowth,
		sectorShare,
		sectorComparison,
		companySize,
		yearlyDistribution,
		indicatorSpread,
	}

	sections := make([]Section, 0, len(builders))
	for _, build := range builders {
		section, err := build(bundle)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func need(bundle *dataset.Bundle, name string) (*apl.Dataset, error) {
	ds := bundle.Get(name)
	if ds == nil {
		return nil, errors.DatasetMissing(name)
	}
	return ds, nil
}

func companiesEvolution(bundle *dataset.Bundle) (Section, error) {
	summary, err := need(bundle, apl.DatasetYearlySummary)
	if err != nil {
		return Section{}, err
	}

	years := summary.Years()
	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type: plotly.TypeScatter,
				Mode: plotly.ModeLinesMarkers,
				Name: apl.SeriesAdhesion,
				X:    years,
				Y:    summary.Ints(apl.ColCompaniesAdhesion),
				Line: &plotly.Line{Color: colorAdhesion, Width: 2.5},
			},
			{
				Type: plotly.TypeScatter,
				Mode: plotly.ModeLinesMarkers,
				Name: apl.SeriesCertification,
				X:    years,
				Y:    summary.Ints(apl.ColCompaniesCertification),
				Line: &plotly.Line{Color: colorCertification, Width: 2.5},
			},
		},
		Layout: plotly.Layout{
			Title:     &plotly.Title{Text: "Empresas adheridas y certificadas por año"},
			XAxis:     &plotly.Axis{Title: &plotly.Title{Text: "Año"}},
			YAxis:     &plotly.Axis{Title: &plotly.Title{Text: apl.MeasureCompanies}},
			HoverMode: "x unified",
			Legend:    &plotly.Legend{Title: &plotly.Title{Text: "Ámbito"}, Orientation: "h"},
		},
	}

	return Section{
		ID:      "evolucion",
		Label:   "Evolución anual",
		Heading: "Evolución anual de empresas",
		Caption: "Empresas que adhirieron y certificaron un acuerdo en cada año del programa.",
		Figure:  fig,
		Table:   yearlyTable(summary, apl.ColCompaniesAdhesion, apl.ColCompaniesCertification),
	}, nil
}

func installationsByYear(bundle *dataset.Bundle) (Section, error) {
	summary, err := need(bundle, apl.DatasetYearlySummary)
	if err != nil {
		return Section{}, err
	}

	years := summary.Years()
	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type:   plotly.TypeBar,
				Name:   apl.SeriesAdhesion,
				X:      years,
				Y:      summary.Ints(apl.ColInstallationsAdhesion),
				Marker: &plotly.Marker{Color: colorAdhesion},
			},
			{
				Type:   plotly.TypeBar,
				Name:   apl.SeriesCertification,
				X:      years,
				Y:      summary.Ints(apl.ColInstallationsCertification),
				Marker: &plotly.Marker{Color: colorCertification},
			},
		},
		Layout: plotly.Layout{
			Title:   &plotly.Title{Text: "Instalaciones por año"},
			Barmode: plotly.BarmodeStack,
			XAxis:   &plotly.Axis{Title: &plotly.Title{Text: "Año"}},
			YAxis:   &plotly.Axis{Title: &plotly.Title{Text: apl.MeasureInstallations}},
			Legend:  &plotly.Legend{Title: &plotly.Title{Text: "Tipo"}, Orientation: "h"},
		},
	}

	return Section{
		ID:      "instalaciones",
		Label:   "Instalaciones",
		Heading: "Instalaciones por año",
		Caption: "Columnas apiladas con las instalaciones que adhirieron y certificaron cada año.",
		Figure:  fig,
		Table:   yearlyTable(summary, apl.ColInstallationsAdhesion, apl.ColInstallationsCertification),
	}, nil
}

func logScaleGrowth(bundle *dataset.Bundle) (Section, error) {
	adhesion, err := need(bundle, apl.DatasetAdhesionByYear)
	if err != nil {
		return Section{}, err
	}
	certification, err := need(bundle, apl.DatasetCertificationByYear)
	if err != nil {
		return Section{}, err
	}

	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type: plotly.TypeScatter,
				Mode: plotly.ModeLines,
				Name: apl.SeriesAdhesion,
				X:    adhesion.Years(),
				Y:    adhesion.Ints(apl.ColInstallations),
				Line: &plotly.Line{Color: colorAdhesion, Width: 2.5},
			},
			{
				Type: plotly.TypeScatter,
				Mode: plotly.ModeLines,
				Name: apl.SeriesCertification,
				X:    certification.Years(),
				Y:    certification.Ints(apl.ColInstallations),
				Line: &plotly.Line{Color: colorCertification, Width: 2.5},
			},
		},
		Layout: plotly.Layout{
			Title: &plotly.Title{Text: "Instalaciones anuales en escala logarítmica"},
			XAxis: &plotly.Axis{Title: &plotly.Title{Text: "Año"}},
			YAxis: &plotly.Axis{
				Type:  plotly.AxisLog,
				Title: &plotly.Title{Text: "Instalaciones (escala log)"},
			},
			HoverMode: "x unified",
			Legend:    &plotly.Legend{Title: &plotly.Title{Text: "Ámbito"}, Orientation: "h"},
		},
	}

	return Section{
		ID:      "escala-log",
		Label:   "Escala logarítmica",
		Heading: "Crecimiento en escala logarítmica",
		Caption: "La escala logarítmica hace visible el crecimiento de los primeros años del programa.",
		Figure:  fig,
		Table:   yearlyPairTable(adhesion, certification, apl.ColInstallations),
	}, nil
}

func sectorShare(bundle *dataset.Bundle) (Section, error) {
	sectors, err := need(bundle, apl.DatasetAdhesionBySector)
	if err != nil {
		return Section{}, err
	}

	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type:          plotly.TypePie,
				Labels:        apl.DisplaySectors(sectors.Labels(apl.ColSector)),
				Values:        sectors.Ints(apl.ColInstallations),
				HoverTemplate: "%{label}: %{value} instalaciones (%{percent})<extra></extra>",
			},
		},
		Layout: plotly.Layout{
			Title:  &plotly.Title{Text: "Participación de cada sector en las adhesiones"},
			Height: 520,
		},
	}

	return Section{
		ID:      "sectores",
		Label:   "Sectores",
		Heading: "Adhesión por sector",
		Caption: "Distribución de las instalaciones adheridas entre los sectores productivos.",
		Figure:  fig,
		Table:   labelTable(sectors, apl.ColSector, apl.DisplaySector, apl.ColInstallations),
	}, nil
}

func sectorComparison(bundle *dataset.Bundle) (Section, error) {
	adhesion, err := need(bundle, apl.DatasetAdhesionBySector)
	if err != nil {
		return Section{}, err
	}
	certification, err := need(bundle, apl.DatasetCertificationBySector)
	if err != nil {
		return Section{}, err
	}

	// Align the certification values to the adhesion dataset's sector order
	certBySector := make(map[string]int64, certification.Len())
	for _, row := range certification.Rows {
		certBySector[row.Text[apl.ColSector]] = row.Num[apl.ColInstallations]
	}

	sectors := adhesion.Labels(apl.ColSector)
	display := apl.DisplaySectors(sectors)
	adhesionValues := adhesion.Ints(apl.ColInstallations)
	certificationValues := make([]int64, len(sectors))
	for i, sector := range sectors {
		certificationValues[i] = certBySector[sector]
	}

	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type:          plotly.TypeBar,
				Orientation:   plotly.OrientationHorizontal,
				Name:          apl.SeriesAdhesion,
				X:             adhesionValues,
				Y:             display,
				Text:          formatValues(adhesionValues),
				TextPosition:  "outside",
				HoverTemplate: "Sector: %{y}<br>Instalaciones: %{x}<extra>" + apl.SeriesAdhesion + "</extra>",
				Marker:        &plotly.Marker{Color: colorAdhesion},
			},
			{
				Type:          plotly.TypeBar,
				Orientation:   plotly.OrientationHorizontal,
				Name:          apl.SeriesCertification,
				X:             certificationValues,
				Y:             display,
				Text:          formatValues(certificationValues),
				TextPosition:  "outside",
				HoverTemplate: "Sector: %{y}<br>Instalaciones: %{x}<extra>" + apl.SeriesCertification + "</extra>",
				Marker:        &plotly.Marker{Color: colorCertification},
			},
		},
		Layout: plotly.Layout{
			Title:   &plotly.Title{Text: "Adhesión y certificación por sector"},
			Barmode: plotly.BarmodeGroup,
			XAxis:   &plotly.Axis{Title: &plotly.Title{Text: apl.MeasureInstallations}},
			YAxis:   &plotly.Axis{AutoRange: "reversed"},
			Margin:  &plotly.Margin{L: 220},
			Height:  560,
			Legend:  &plotly.Legend{Title: &plotly.Title{Text: "Tipo"}, Orientation: "h"},
		},
	}

	rows := make([][]string, len(sectors))
	for i := range sectors {
		rows[i] = []string{
			display[i],
			strconv.FormatInt(adhesionValues[i], 10),
			strconv.FormatInt(certificationValues[i], 10),
		}
	}

	return Section{
		ID:      "comparativa",
		Label:   "Comparativa sectorial",
		Heading: "Comparativa por sector",
		Caption: "Instalaciones adheridas y certificadas lado a lado en cada sector.",
		Figure:  fig,
		Table: Table{
			Headers: []string{"Sector", apl.SeriesAdhesion, apl.SeriesCertification},
			Rows:    rows,
		},
	}, nil
}

func companySize(bundle *dataset.Bundle) (Section, error) {
	sizes, err := need(bundle, apl.DatasetAdhesionBySize)
	if err != nil {
		return Section{}, err
	}

	companies := sizes.Ints(apl.ColCompanies)
	installations := sizes.Ints(apl.ColInstallations)
	labels := apl.DisplaySizes(sizes.Labels(apl.ColCompanySize))

	// Variwide: each segment's width is its company count, its height the
	// installation count, laid out edge to edge on a cumulative axis.
	centers := make([]float64, len(companies))
	var cum int64
	for i, width := range companies {
		centers[i] = float64(cum) + float64(width)/2
		cum += width
	}

	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type:          plotly.TypeBar,
				X:             centers,
				Y:             installations,
				Width:         companies,
				Text:          labels,
				Customdata:    companies,
				HoverTemplate: "%{text}: %{customdata} empresas, %{y} instalaciones<extra></extra>",
				Marker:        &plotly.Marker{Color: colorAdhesion},
			},
		},
		Layout: plotly.Layout{
			Title: &plotly.Title{Text: "Adhesión por tamaño de empresa"},
			XAxis: &plotly.Axis{
				Title:    &plotly.Title{Text: "Empresas (ancho del segmento)"},
				TickMode: "array",
				TickVals: centers,
				TickText: labels,
			},
			YAxis:      &plotly.Axis{Title: &plotly.Title{Text: apl.MeasureInstallations}},
			ShowLegend: plotly.Bool(false),
		},
	}

	rows := make([][]string, sizes.Len())
	for i := range rows {
		rows[i] = []string{
			labels[i],
			strconv.FormatInt(companies[i], 10),
			strconv.FormatInt(installations[i], 10),
		}
	}

	return Section{
		ID:      "tamano",
		Label:   "Tamaño de empresa",
		Heading: "Adhesión por tamaño de empresa",
		Caption: "El ancho de cada segmento es el número de empresas y la altura sus instalaciones.",
		Figure:  fig,
		Table: Table{
			Headers: []string{"Tamaño", apl.MeasureCompanies, apl.MeasureInstallations},
			Rows:    rows,
		},
	}, nil
}

func yearlyDistribution(bundle *dataset.Bundle) (Section, error) {
	adhesion, err := need(bundle, apl.DatasetAdhesionByYear)
	if err != nil {
		return Section{}, err
	}

	hist, err := analysis.HistogramBins(adhesion.Floats(apl.ColInstallations), 6)
	if err != nil {
		return Section{}, errors.Wrap(err, "binning yearly adhesions")
	}

	bins := make([]string, len(hist.Counts))
	for i := range hist.Counts {
		bins[i] = fmt.Sprintf("%.0f-%.0f", hist.Edges[i], hist.Edges[i+1])
	}

	fig := plotly.Figure{
		Data: []plotly.Trace{
			{
				Type:          plotly.TypeBar,
				X:             bins,
				Y:             hist.Counts,
				Marker:        &plotly.Marker{Color: colorNeutral},
				HoverTemplate: "%{x} instalaciones: %{y} años<extra></extra>",
			},
		},
		Layout: plotly.Layout{
			Title:      &plotly.Title{Text: "Distribución de las adhesiones anuales"},
			XAxis:      &plotly.Axis{Title: &plotly.Title{Text: "Instalaciones adheridas en un año"}},
			YAxis:      &plotly.Axis{Title: &plotly.Title{Text: "Años"}},
			ShowLegend: plotly.Bool(false),
		},
	}

	rows := make([][]string, len(bins))
	for i := range bins {
		rows[i] = []string{bins[i], strconv.FormatFloat(hist.Counts[i], 'f', 0, 64)}
	}

	return Section{
		ID:      "distribucion",
		Label:   "Distribución",
		Heading: "Distribución de adhesiones anuales",
		Caption: "Cuántos años del programa cayeron en cada rango de instalaciones adheridas.",
		Figure:  fig,
		Table:   Table{Headers: []string{"Rango", "Años"}, Rows: rows},
	}, nil
}

func indicatorSpread(bundle *dataset.Bundle) (Section, error) {
	adhesion, err := need(bundle, apl.DatasetAdhesionByYear)
	if err != nil {
		return Section{}, err
	}
	certification, err := need(bundle, apl.DatasetCertificationByYear)
	if err != nil {
		return Section{}, err
	}

	adhesionBox, err := analysis.BoxStats(adhesion.Floats(apl.ColInstallations))
	if err != nil {
		return Section{}, errors.Wrap(err, "summarizing adhesion installations")
	}
	certificationBox, err := analysis.BoxStats(certification.Floats(apl.ColInstallations))
	if err != nil {
		return Section{}, errors.Wrap(err, "summarizing certification installations")
	}

	fig := plotly.Figure{
		Data: []plotly.Trace{
			boxTrace(apl.SeriesAdhesion, adhesionBox, colorAdhesion),
			boxTrace(apl.SeriesCertification, certificationBox, colorCertification),
		},
		Layout: plotly.Layout{
			Title:      &plotly.Title{Text: "Dispersión de las instalaciones anuales"},
			YAxis:      &plotly.Axis{Title: &plotly.Title{Text: "Instalaciones por año"}},
			ShowLegend: plotly.Bool(false),
		},
	}

	return Section{
		ID:      "indicadores",
		Label:   "Indicadores",
		Heading: "Dispersión de indicadores",
		Caption: "Resumen de cinco números de las instalaciones anuales de cada indicador.",
		Figure:  fig,
		Table: Table{
			Headers: []string{"Indicador", "Límite inferior", "Q1", "Mediana", "Q3", "Límite superior"},
			Rows: [][]string{
				boxRow(apl.SeriesAdhesion, adhesionBox),
				boxRow(apl.SeriesCertification, certificationBox),
			},
		},
	}, nil
}

func boxTrace(name string, box analysis.Box, color string) plotly.Trace {
	return plotly.Trace{
		Type:       plotly.TypeBox,
		Name:       name,
		Q1:         []float64{box.Q1},
		Median:     []float64{box.Median},
		Q3:         []float64{box.Q3},
		LowerFence: []float64{box.LowerFence},
		UpperFence: []float64{box.UpperFence},
		Marker:     &plotly.Marker{Color: color},
	}
}

func boxRow(name string, box analysis.Box) []string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) }
	return []string{
		name,
		format(box.LowerFence),
		format(box.Q1),
		format(box.Median),
		format(box.Q3),
		format(box.UpperFence),
	}
}

// formatValues stringifies a series for on-bar value labels
func formatValues(values []int64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}

// yearlyTable renders a yearly dataset's columns as a fallback table
func yearlyTable(ds *apl.Dataset, columns ...string) Table {
	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, "Año")
	for _, col := range columns {
		headers = append(headers, apl.ColumnDisplay(col))
	}

	rows := make([][]string, ds.Len())
	for i, row := range ds.Rows {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, strconv.FormatInt(row.Num[apl.ColYear], 10))
		for _, col := range columns {
			cells = append(cells, strconv.FormatInt(row.Num[col], 10))
		}
		rows[i] = cells
	}
	return Table{Headers: headers, Rows: rows}
}

// yearlyPairTable joins two yearly datasets on year for the fallback table
func yearlyPairTable(adhesion, certification *apl.Dataset, column string) Table {
	rows := make([][]string, 0, adhesion.Len())
	for _, row := range adhesion.Rows {
		year := row.Num[apl.ColYear]
		cells := []string{
			strconv.FormatInt(year, 10),
			strconv.FormatInt(row.Num[column], 10),
		}
		if v, ok := certification.YearValue(year, column); ok {
			cells = append(cells, strconv.FormatInt(v, 10))
		} else {
			cells = append(cells, "-")
		}
		rows = append(rows, cells)
	}
	return Table{
		Headers: []string{"Año", apl.SeriesAdhesion, apl.SeriesCertification},
		Rows:    rows,
	}
}

// labelTable renders a label+counts dataset as a fallback table
func labelTable(ds *apl.Dataset, labelCol string, display func(string) string, columns ...string) Table {
	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, apl.ColumnDisplay(labelCol))
	for _, col := range columns {
		headers = append(headers, apl.ColumnDisplay(col))
	}

	rows := make([][]string, ds.Len())
	for i, row := range ds.Rows {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, display(row.Text[labelCol]))
		for _, col := range columns {
			cells = append(cells, strconv.FormatInt(row.Num[col], 10))
		}
		rows[i] = cells
	}
	return Table{Headers: headers, Rows: rows}
}
