package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed assets/*
var assetFS embed.FS

//go:embed content/acerca.md
var acercaMarkdown []byte

// Templates renders the site's pages from their embedded sources
type Templates struct {
	pages *template.Template
}

// NewTemplates parses the embedded page templates
func NewTemplates() (*Templates, error) {
	funcMap := template.FuncMap{
		"nfmt":  formatThousands,
		"upper": strings.ToUpper,
		"add":   func(a, b int) int { return a + b },
	}

	pages, err := template.New("site").Funcs(funcMap).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return &Templates{pages: pages}, nil
}

// Render executes one page into a buffer first, so a template error never
// leaves a half-written file in the output directory.
func (t *Templates) Render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.pages.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// formatThousands prints a count with Chilean digit grouping, 14000 -> 14.000
func formatThousands(v int64) string {
	digits := strconv.FormatInt(v, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ".")
}

// renderMarkdown turns the embedded about-page markdown into HTML. The
// source ships inside the binary, so the output is trusted template HTML.
func renderMarkdown(src []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(src)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.Render(doc, renderer))
}
