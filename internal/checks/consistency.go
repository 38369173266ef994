// Package checks verifies that the published aggregates agree with each
// other: the yearly summary must mirror the by-year files and every breakdown
// must sum to the same program totals.
package checks

import (
	"fmt"
	"log"
	"strings"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
)

// Check identifiers, in evaluation order
const (
	CheckSummaryAdhesion      = "summary_mirrors_adhesion"
	CheckSummaryCertification = "summary_mirrors_certification"
	CheckSectorAdhesion       = "sector_total_adhesion"
	CheckSectorCertification  = "sector_total_certification"
	CheckSizeTotals           = "size_totals_adhesion"
	CheckSeriesShape          = "series_shape"
)

// Finding is the outcome of one consistency check
type Finding struct {
	Check  string `json:"check"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report collects the findings of a full run
type Report struct {
	Findings []Finding `json:"findings"`
}

// Passed reports whether every check passed
func (r *Report) Passed() bool {
	for _, f := range r.Findings {
		if !f.Passed {
			return false
		}
	}
	return true
}

// Failures returns the findings that did not pass
func (r *Report) Failures() []Finding {
	var failed []Finding
	for _, f := range r.Findings {
		if !f.Passed {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err converts a failed report into a typed error, nil when all passed
func (r *Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	details := make([]string, len(failures))
	for i, f := range failures {
		details[i] = f.Check + ": " + f.Detail
	}
	return errors.ConsistencyFailed(strings.Join(details, "; "))
}

// Run evaluates every cross-dataset consistency check against the bundle
func Run(bundle *dataset.Bundle) *Report {
	report := &Report{}

	summary := bundle.Get(apl.DatasetYearlySummary)
	adhesionYearly := bundle.Get(apl.DatasetAdhesionByYear)
	certificationYearly := bundle.Get(apl.DatasetCertificationByYear)

	report.add(CheckSummaryAdhesion, compareSummary(summary, adhesionYearly,
		apl.ColInstallationsAdhesion, apl.ColCompaniesAdhesion))
	report.add(CheckSummaryCertification, compareSummary(summary, certificationYearly,
		apl.ColInstallationsCertification, apl.ColCompaniesCertification))

	report.add(CheckSectorAdhesion, compareTotals("adhesion installations",
		bundle.Get(apl.DatasetAdhesionBySector).Total(apl.ColInstallations),
		adhesionYearly.Total(apl.ColInstallations)))
	report.add(CheckSectorCertification, compareTotals("certification installations",
		bundle.Get(apl.DatasetCertificationBySector).Total(apl.ColInstallations),
		certificationYearly.Total(apl.ColInstallations)))

	report.add(CheckSizeTotals, compareSizeTotals(
		bundle.Get(apl.DatasetAdhesionBySize), adhesionYearly))

	report.add(CheckSeriesShape, seriesShape(adhesionYearly, certificationYearly))

	if report.Passed() {
		log.Printf("[Checks] %d checks passed", len(report.Findings))
	} else {
		log.Printf("[Checks] %d of %d checks FAILED",
			len(report.Failures()), len(report.Findings))
	}
	return report
}

func (r *Report) add(check string, problems []string) {
	if len(problems) == 0 {
		r.Findings = append(r.Findings, Finding{Check: check, Passed: true, Detail: "ok"})
		return
	}
	r.Findings = append(r.Findings, Finding{
		Check:  check,
		Passed: false,
		Detail: strings.Join(problems, "; "),
	})
}

// compareSummary verifies that the summary's column pair mirrors a by-year
// dataset: equal values for shared years, zeros where the by-year side has no
// row.
func compareSummary(summary, byYear *apl.Dataset, instCol, compCol string) []string {
	var problems []string

	for _, row := range byYear.Rows {
		year := row.Num[apl.ColYear]
		inst, ok := summary.YearValue(year, instCol)
		if !ok {
			problems = append(problems, fmt.Sprintf("summary is missing year %d", year))
			continue
		}
		comp, _ := summary.YearValue(year, compCol)
		if inst != row.Num[apl.ColInstallations] || comp != row.Num[apl.ColCompanies] {
			problems = append(problems, fmt.Sprintf(
				"year %d: summary has %d/%d, source has %d/%d",
				year, inst, comp,
				row.Num[apl.ColInstallations], row.Num[apl.ColCompanies]))
		}
	}

	for _, row := range summary.Rows {
		year := row.Num[apl.ColYear]
		if _, ok := byYear.YearValue(year, apl.ColInstallations); ok {
			continue
		}
		if row.Num[instCol] != 0 || row.Num[compCol] != 0 {
			problems = append(problems, fmt.Sprintf(
				"year %d has no source row but summary reports %d/%d",
				year, row.Num[instCol], row.Num[compCol]))
		}
	}
	return problems
}

func compareTotals(what string, breakdown, yearly int64) []string {
	if breakdown == yearly {
		return nil
	}
	return []string{fmt.Sprintf("%s: breakdown total %d != yearly total %d",
		what, breakdown, yearly)}
}

func compareSizeTotals(bySize, byYear *apl.Dataset) []string {
	var problems []string
	if got, want := bySize.Total(apl.ColCompanies), byYear.Total(apl.ColCompanies); got != want {
		problems = append(problems, fmt.Sprintf(
			"companies: size total %d != yearly total %d", got, want))
	}
	if got, want := bySize.Total(apl.ColInstallations), byYear.Total(apl.ColInstallations); got != want {
		problems = append(problems, fmt.Sprintf(
			"installations: size total %d != yearly total %d", got, want))
	}
	return problems
}

// seriesShape covers the registry invariants the loader cannot see on its
// own: the program's first adhesion year and certification never predating
// adhesion.
func seriesShape(adhesion, certification *apl.Dataset) []string {
	var problems []string

	adhesionYears := adhesion.Years()
	if len(adhesionYears) == 0 {
		return []string{"adhesion series is empty"}
	}
	if adhesionYears[0] != apl.FirstAdhesionYear {
		problems = append(problems, fmt.Sprintf(
			"adhesion series starts at %d, registry starts at %d",
			adhesionYears[0], apl.FirstAdhesionYear))
	}

	certificationYears := certification.Years()
	if len(certificationYears) > 0 && certificationYears[0] < adhesionYears[0] {
		problems = append(problems, fmt.Sprintf(
			"certification starts at %d, before first adhesion year %d",
			certificationYears[0], adhesionYears[0]))
	}
	return problems
}
