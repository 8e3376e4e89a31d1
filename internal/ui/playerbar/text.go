package playerbar

import (
	"image/color"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// sanitize drops control characters that would break the terminal layout.
// Tags and stream titles come from untrusted sources.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\u00a0':
			return ' '
		case unicode.IsControl(r) || r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, s)
}

// truncate shortens s to at most maxWidth cells, cutting on grapheme
// boundaries and appending "…" when anything was removed.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	var b strings.Builder
	width := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := runewidth.StringWidth(gr.Str())
		if width+w > maxWidth-1 {
			break
		}
		b.WriteString(gr.Str())
		width += w
	}
	return b.String() + "…"
}

// gradient renders n copies of cell blending from -> to in HCL space.
func gradient(cell string, n int, from, to lipgloss.Color) string {
	if n <= 0 {
		return ""
	}
	c1, _ := colorful.MakeColor(hexColor(from))
	c2, _ := colorful.MakeColor(hexColor(to))

	var b strings.Builder
	for i := range n {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c1.BlendHcl(c2, t).Clamped().Hex()))
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

func hexColor(c lipgloss.Color) color.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	// ANSI palette indexes get a neutral gray
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}
