package blog

import (
	"strings"
	"unicode"

	"github.com/russross/blackfriday/v2"
)

// Renderer turns post markdown into HTML.
type Renderer struct {
	extensions blackfriday.Extensions
	flags      blackfriday.HTMLFlags
}

func NewRenderer() *Renderer {
	return &Renderer{
		extensions: blackfriday.NoIntraEmphasis |
			blackfriday.Tables |
			blackfriday.FencedCode |
			blackfriday.Autolink |
			blackfriday.Strikethrough,
		flags: blackfriday.UseXHTML |
			blackfriday.Smartypants |
			blackfriday.SmartypantsFractions |
			blackfriday.SmartypantsLatexDashes,
	}
}

func (r *Renderer) Render(markdown string) string {
	out := blackfriday.Run([]byte(markdown),
		blackfriday.WithExtensions(r.extensions),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: r.flags,
		})))
	return string(out)
}

// Excerpt derives a short plain-text teaser from markdown content:
// first paragraph, word-bounded, capped at maxRunes.
func Excerpt(markdown string, maxRunes int) string {
	paragraph := strings.TrimSpace(markdown)
	if idx := strings.Index(paragraph, "\n\n"); idx >= 0 {
		paragraph = paragraph[:idx]
	}
	paragraph = stripInlineMarkup(paragraph)

	runes := []rune(paragraph)
	if len(runes) <= maxRunes {
		return paragraph
	}

	cut := maxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxRunes
	}
	return strings.TrimRight(string(runes[:cut]), " \t") + "…"
}

func stripInlineMarkup(s string) string {
	replacer := strings.NewReplacer(
		"**", "", "__", "", "`", "", "#", "", "*", "", "_", "",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
