package site

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatThousands(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1.000",
		9880:    "9.880",
		14000:   "14.000",
		1234567: "1.234.567",
		-14000:  "-14.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatThousands(in), "%d", in)
	}
}

func TestRenderMarkdownProducesHTML(t *testing.T) {
	out := string(renderMarkdown([]byte("# Título\n\nTexto con **énfasis**.")))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>énfasis</strong>")
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	_, err = templates.Render("nope.gohtml", nil)
	assert.Error(t, err)
}

func TestAboutTemplateEscapesNothingInBody(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	out, err := templates.Render("acerca.gohtml", aboutData{
		Title:       "Acerca",
		Body:        template.HTML("<p>contenido</p>"),
		BuildID:     "b",
		GeneratedAt: "g",
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<p>contenido</p>")
}
