package tabular

import "strings"

// accentFolds maps the accented characters that appear in registry exports to
// their plain form, mirroring how the published CSV headers were derived.
var accentFolds = map[rune]rune{
	'á': 'a',
	'é': 'e',
	'í': 'i',
	'ó': 'o',
	'ú': 'u',
	'ü': 'u',
	'ñ': 'n',
}

// CanonicalHeader converts a raw header cell into its canonical snake_case
// form: trimmed, lower-cased, accents folded, non-alphanumeric runs collapsed
// into single underscores. "Tamaño de Empresa" becomes "tamano_de_empresa".
func CanonicalHeader(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if folded, ok := accentFolds[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
