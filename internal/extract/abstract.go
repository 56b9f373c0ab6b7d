package extract

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/matsen/pubmedxml/internal/article"
	"github.com/matsen/pubmedxml/internal/xmltree"
	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxEntityPasses bounds how many times nested entity escapes are undone.
const MaxEntityPasses = 5

// entityPattern matches named and numeric character references.
var entityPattern = regexp.MustCompile(`&#?\w{2,7};`)

// specialChars maps typographic spaces and operators to ASCII.
var specialChars = runes.Map(func(r rune) rune {
	switch r {
	case '\u2009', '\u202f', '\u00a0':
		return ' '
	case '\u2217':
		return '*'
	}
	return r
})

// NormalizeAbstract collapses the AbstractText elements of a citation into
// one string. Structured abstracts yield one "Label: text" paragraph per
// section. The result is never empty.
func (e *Extractor) NormalizeAbstract(nodes []*xmltree.Node) string {
	var text string
	switch len(nodes) {
	case 0:
		return article.Placeholder
	case 1:
		text = nodes[0].InnerText()
	default:
		paragraphs := make([]string, 0, len(nodes))
		for _, n := range nodes {
			p := n.InnerText()
			if label := n.Attr("Label"); label != "" {
				p = label + ": " + p
			}
			paragraphs = append(paragraphs, p)
		}
		text = strings.Join(paragraphs, "\n")
	}

	if text == "" {
		return article.Placeholder
	}
	if text = e.NormalizeText(text); text == "" {
		return article.Placeholder
	}
	return text
}

// NormalizeText strips inline tags, resolves entities and replaces special
// characters, in that order. Escaped "<" therefore survives tag stripping.
func (e *Extractor) NormalizeText(text string) string {
	text = StripTags(text)

	unescaped, ok := ReplaceEntities(text)
	if !ok {
		e.logger.Warn("too many entity levels", "text", text, "passes", MaxEntityPasses)
	}

	return ReplaceSpecialChars(unescaped)
}

// StripTags removes complete markup tags and comments, keeping text
// content byte-for-byte, so entities are left for ReplaceEntities. A '<'
// that never closes (e.g. "a<b in every cohort") and an unterminated
// comment are kept as text. Elements such as <script> or <plaintext> get
// no raw-text treatment: tags inside them are stripped like any other.
func StripTags(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	b.Grow(len(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				b.Write(z.Raw())
			}
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		case html.StartTagToken:
			z.NextIsNotRawText()
		case html.CommentToken, html.DoctypeToken:
			if raw := z.Raw(); !closedComment(raw) {
				b.Write(raw)
			}
		}
	}
}

// closedComment reports whether raw ends the way its opener requires:
// "<!--" needs "-->", other markup declarations need ">".
func closedComment(raw []byte) bool {
	if bytes.HasPrefix(raw, []byte("<!--")) {
		return bytes.HasSuffix(raw, []byte("-->"))
	}
	return bytes.HasSuffix(raw, []byte(">"))
}

// ReplaceEntities unescapes character references one level per pass until
// none remain or MaxEntityPasses is reached. ok is false when references
// are still present after the last pass.
func ReplaceEntities(text string) (string, bool) {
	for range MaxEntityPasses {
		if !entityPattern.MatchString(text) {
			return text, true
		}
		text = html.UnescapeString(text)
	}
	return text, !entityPattern.MatchString(text)
}

// ReplaceSpecialChars maps thin, narrow no-break and no-break spaces to
// a plain space and the asterisk operator to '*'.
func ReplaceSpecialChars(text string) string {
	out, _, err := transform.String(specialChars, text)
	if err != nil {
		return text
	}
	return out
}
