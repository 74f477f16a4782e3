package fs

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const previewMax = 60

// Preview returns the first two paragraphs of a markdown description as
// plain text, truncated for display under a card title.
func Preview(markdown string) string {
	source := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var preview strings.Builder
	paragraphs := 0

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindHeading:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph:
			if paragraphs >= 2 {
				return ast.WalkStop, nil
			}
			if t := strings.TrimSpace(string(n.Text(source))); t != "" {
				if preview.Len() > 0 {
					preview.WriteString(" ")
				}
				preview.WriteString(t)
				paragraphs++
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	out := []rune(preview.String())
	if len(out) > previewMax {
		return string(out[:previewMax-3]) + "..."
	}
	return string(out)
}
