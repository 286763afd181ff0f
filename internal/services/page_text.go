package services

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Head:     true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Form:     true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Tr: true, atom.Table: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Main: true, atom.Aside: true, atom.Dt: true, atom.Dd: true,
	atom.Dl: true, atom.Blockquote: true, atom.Pre: true, atom.Br: true, atom.Hr: true,
	atom.Figure: true, atom.Figcaption: true,
}

var headingElements = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// ExtractPageText flattens an HTML document into one text line per block.
// Cells of a table row share a line and headings end in a colon so the menu
// parser can pick them up as categories.
func ExtractPageText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	w := &textWriter{}
	w.walk(doc)
	w.flush()

	return strings.Join(w.lines, "\n"), nil
}

type textWriter struct {
	lines   []string
	current strings.Builder
}

func (w *textWriter) flush() {
	line := strings.Join(strings.Fields(w.current.String()), " ")
	w.current.Reset()
	if line != "" {
		w.lines = append(w.lines, line)
	}
}

func (w *textWriter) write(s string) {
	if w.current.Len() > 0 {
		w.current.WriteByte(' ')
	}
	w.current.WriteString(s)
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			w.write(text)
		}
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		if headingElements[n.DataAtom] {
			w.flush()
			heading := &textWriter{}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				heading.walk(c)
			}
			heading.flush()
			if text := strings.Join(heading.lines, " "); text != "" {
				w.lines = append(w.lines, strings.TrimRight(text, ":")+":")
			}
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		w.flush()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if block {
		w.flush()
	}
}
