// Package site renders the dashboard: it turns a loaded dataset bundle into
// the static pages, figure payloads and export artifacts of one build.
package site

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/plotly"
)

const (
	siteTitle         = "Panel de Sellos APL"
	aboutTitle        = "Acerca de los datos"
	sourceAttribution = "Agencia de Sustentabilidad y Cambio Climático (ASCC)"
)

// Options configure one build of the site
type Options struct {
	// OutputDir receives every artifact of the build
	OutputDir string
	// PlotlySrc is the script URL the pages load Plotly from
	PlotlySrc string
	// VendorDir, when set, holds a local Plotly bundle that is copied into
	// the output and referenced instead of PlotlySrc
	VendorDir string
	// Workers bounds concurrent artifact writes
	Workers int64
}

// Builder renders the dashboard pages and writes the artifacts of a build
type Builder struct {
	templates *Templates
	opts      Options
}

// NewBuilder parses the page templates and validates the build options
func NewBuilder(opts Options) (*Builder, error) {
	if opts.OutputDir == "" {
		return nil, errors.InvalidInput("output directory is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	templates, err := NewTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "loading templates")
	}
	return &Builder{templates: templates, opts: opts}, nil
}

// Result summarizes a finished build
type Result struct {
	Manifest Manifest
	// Files lists the artifacts written, relative to the output directory
	Files []string
}

// Build renders every page and artifact for the bundle. Artifact writes fan
// out under a weighted semaphore; the first failure aborts the build.
func (b *Builder) Build(ctx context.Context, bundle *dataset.Bundle) (*Result, error) {
	sections, err := BuildSections(bundle)
	if err != nil {
		return nil, err
	}

	plotlySrc := b.opts.PlotlySrc
	var vendorBundle string
	if b.opts.VendorDir != "" {
		vendorBundle, err = findPlotlyBundle(b.opts.VendorDir)
		if err != nil {
			return nil, err
		}
		plotlySrc = "assets/" + filepath.Base(vendorBundle)
	}
	if plotlySrc == "" {
		return nil, errors.InvalidInput("no Plotly source configured")
	}

	manifest := NewManifest(bundle, sections, plotlySrc)

	if err := os.MkdirAll(filepath.Join(b.opts.OutputDir, "datasets"), 0o755); err != nil {
		return nil, errors.IOFailed(b.opts.OutputDir, err)
	}
	if err := os.MkdirAll(filepath.Join(b.opts.OutputDir, "assets"), 0o755); err != nil {
		return nil, errors.IOFailed(b.opts.OutputDir, err)
	}

	sem := semaphore.NewWeighted(b.opts.Workers)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		written  []string
	)

	run := func(rel string, produce func() ([]byte, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			data, err := produce()
			if err == nil {
				path := filepath.Join(b.opts.OutputDir, rel)
				if werr := os.WriteFile(path, data, 0o644); werr != nil {
					err = errors.IOFailed(path, werr)
				}
			}

			mu.Lock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				written = append(written, rel)
			}
			mu.Unlock()
		}()
	}

	run("index.html", func() ([]byte, error) {
		return b.renderIndex(bundle, sections, manifest, plotlySrc)
	})
	run("acerca.html", func() ([]byte, error) {
		return b.renderAbout(manifest)
	})
	run("manifest.json", func() ([]byte, error) {
		return json.MarshalIndent(manifest, "", "  ")
	})
	run(filepath.Join("assets", "interactions.js"), func() ([]byte, error) {
		return assetFS.ReadFile("assets/interactions.js")
	})
	if vendorBundle != "" {
		run(filepath.Join("assets", filepath.Base(vendorBundle)), func() ([]byte, error) {
			data, err := os.ReadFile(vendorBundle)
			if err != nil {
				return nil, errors.IOFailed(vendorBundle, err)
			}
			return data, nil
		})
	}
	for _, ds := range bundle.All() {
		ds := ds
		run(filepath.Join("datasets", ds.Spec.Name+".json"), func() ([]byte, error) {
			return exportDataset(ds)
		})
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Strings(written)
	log.Printf("[Site] Build %s wrote %d artifacts to %s", manifest.BuildID, len(written), b.opts.OutputDir)
	return &Result{Manifest: manifest, Files: written}, nil
}

// indexData feeds the dashboard page template
type indexData struct {
	Title       string
	Subtitle    string
	Totals      pageTotals
	Sections    []Section
	FiguresJSON template.JS
	PlotlySrc   string
	Source      string
	BuildID     string
	GeneratedAt string
}

// pageTotals are the headline figures of the header cards
type pageTotals struct {
	AdhesionInstallations      int64
	AdhesionCompanies          int64
	CertificationInstallations int64
	CertificationCompanies     int64
}

func (b *Builder) renderIndex(bundle *dataset.Bundle, sections []Section, manifest Manifest, plotlySrc string) ([]byte, error) {
	figures := make(map[string]plotly.Figure, len(sections))
	for _, section := range sections {
		figures[section.ID] = section.Figure
	}
	payload, err := json.Marshal(figures)
	if err != nil {
		return nil, errors.Wrap(err, "encoding figures")
	}

	adhesion := bundle.Get(apl.DatasetAdhesionByYear)
	certification := bundle.Get(apl.DatasetCertificationByYear)
	data := indexData{
		Title:    siteTitle,
		Subtitle: subtitle(bundle),
		Totals: pageTotals{
			AdhesionInstallations:      adhesion.Total(apl.ColInstallations),
			AdhesionCompanies:          adhesion.Total(apl.ColCompanies),
			CertificationInstallations: certification.Total(apl.ColInstallations),
			CertificationCompanies:     certification.Total(apl.ColCompanies),
		},
		Sections:    sections,
		FiguresJSON: template.JS(payload),
		PlotlySrc:   plotlySrc,
		Source:      sourceAttribution,
		BuildID:     manifest.BuildID,
		GeneratedAt: manifest.GeneratedAt.Format("2006-01-02 15:04 UTC"),
	}

	out, err := b.templates.Render("index.gohtml", data)
	if err != nil {
		return nil, errors.RenderFailed("index.html", err)
	}
	return out, nil
}

// aboutData feeds the about page template
type aboutData struct {
	Title       string
	Body        template.HTML
	BuildID     string
	GeneratedAt string
}

func (b *Builder) renderAbout(manifest Manifest) ([]byte, error) {
	data := aboutData{
		Title:       aboutTitle,
		Body:        renderMarkdown(acercaMarkdown),
		BuildID:     manifest.BuildID,
		GeneratedAt: manifest.GeneratedAt.Format("2006-01-02 15:04 UTC"),
	}
	out, err := b.templates.Render("acerca.gohtml", data)
	if err != nil {
		return nil, errors.RenderFailed("acerca.html", err)
	}
	return out, nil
}

func subtitle(bundle *dataset.Bundle) string {
	base := "Adhesión y certificación de los Acuerdos de Producción Limpia en Chile"
	summary := bundle.Get(apl.DatasetYearlySummary)
	if summary == nil || summary.Len() == 0 {
		return base
	}
	years := summary.Years()
	return fmt.Sprintf("%s, %d-%d", base, years[0], years[len(years)-1])
}

// datasetExport is the JSON artifact written for one dataset
type datasetExport struct {
	Name    string                   `json:"name"`
	Title   string                   `json:"title"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

func exportDataset(ds *apl.Dataset) ([]byte, error) {
	export := datasetExport{
		Name:    ds.Spec.Name,
		Title:   ds.Spec.Title,
		Columns: ds.Spec.ColumnNames(),
		Rows:    ds.Records(),
	}
	return json.MarshalIndent(export, "", "  ")
}

// findPlotlyBundle locates the Plotly file to vendor from dir
func findPlotlyBundle(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.IOFailed(dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(name, "plotly") && strings.HasSuffix(name, ".js") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", errors.NotFound("plotly bundle in " + dir)
}
