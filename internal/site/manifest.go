package site

import (
	"time"

	"github.com/google/uuid"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
)

// Manifest describes one build of the site. It is written next to the pages
// so a deployed dashboard can report which data and build produced it.
type Manifest struct {
	BuildID     string            `json:"build_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	PlotlySrc   string            `json:"plotly_src"`
	Sections    []ManifestSection `json:"sections"`
	Datasets    []ManifestDataset `json:"datasets"`
}

// ManifestSection is a nav entry as the manifest records it
type ManifestSection struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ManifestDataset points at one exported dataset artifact
type ManifestDataset struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	File string `json:"file"`
}

// NewBuildID returns a time-ordered identifier for a build
func NewBuildID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// NewManifest assembles the manifest for a build of the given sections
func NewManifest(bundle *dataset.Bundle, sections []Section, plotlySrc string) Manifest {
	manifest := Manifest{
		BuildID:     NewBuildID(),
		GeneratedAt: time.Now().UTC(),
		Source:      bundle.Source,
		PlotlySrc:   plotlySrc,
		Sections:    make([]ManifestSection, 0, len(sections)),
	}
	for _, section := range sections {
		manifest.Sections = append(manifest.Sections, ManifestSection{
			ID:    section.ID,
			Label: section.Label,
		})
	}
	for _, ds := range bundle.All() {
		manifest.Datasets = append(manifest.Datasets, ManifestDataset{
			Name: ds.Spec.Name,
			Rows: ds.Len(),
			File: "datasets/" + ds.Spec.Name + ".json",
		})
	}
	return manifest
}
