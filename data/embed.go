// Package data embeds the published processed aggregates so the generator
// renders the current figures with zero configuration. A data directory set
// via SELLOS_DATA_DIR overrides these files for fresh registry drops.
package data

import "embed"

//go:embed processed/*.csv
var FS embed.FS

// ProcessedDir is the directory inside FS holding the CSVs
const ProcessedDir = "processed"
