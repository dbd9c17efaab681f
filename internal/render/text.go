package render

import "strings"

// text prepares UTF-8 input for the core fonts: runes the cp1252 code page
// cannot hold are dropped or mapped by the translator.
func (r *renderer) text(s string) string {
	return r.tr(clean(s))
}

func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch {
		case c > 0xFFFF:
		case c >= 0xFE00 && c <= 0xFE0F: // variation selectors
		case c == 0x200D: // zero width joiner
		case c == '\t' || c == '\n' || c == '\r':
			b.WriteByte(' ')
		default:
			b.WriteRune(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// wrap splits translated text into lines that fit the current font. The first
// line gets width first, the rest get width rest. Words longer than a line are
// cut.
func (r *renderer) wrap(text string, first, rest float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	width := first
	cur := ""
	for _, word := range words {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if r.pdf.GetStringWidth(candidate) <= width {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			width = rest
		}
		for len(word) > 1 && r.pdf.GetStringWidth(word) > width {
			n := r.fit(word, width)
			lines = append(lines, word[:n])
			word = word[n:]
			width = rest
		}
		cur = word
	}
	return append(lines, cur)
}

// fit returns how many leading bytes of s fit in width, at least one
func (r *renderer) fit(s string, width float64) int {
	n := 1
	for n < len(s) && r.pdf.GetStringWidth(s[:n+1]) <= width {
		n++
	}
	return n
}
