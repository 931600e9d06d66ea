package extractor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockIDAttr marks an element as an addressable block in Notion's DOM
const blockIDAttr = "data-block-id"

// leafAttr marks the innermost editable text container of a Notion block
const leafAttr = "data-content-editable-leaf"

func attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}

func classTokens(n *html.Node) []string {
	v, _ := attr(n, "class")
	return strings.Fields(v)
}

// classContains reports whether any class token contains one of the
// substrings, case-insensitively
func classContains(n *html.Node, subs ...string) bool {
	for _, tok := range classTokens(n) {
		tok = strings.ToLower(tok)
		for _, s := range subs {
			if strings.Contains(tok, s) {
				return true
			}
		}
	}
	return false
}

func hasClass(n *html.Node, name string) bool {
	for _, tok := range classTokens(n) {
		if tok == name {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, atoms ...atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(atoms) == 0 {
		return true
	}
	for _, a := range atoms {
		if n.DataAtom == a {
			return true
		}
	}
	return false
}

func isHeadingTag(n *html.Node) bool {
	return isElement(n, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)
}

// isSkipped reports subtrees that never contribute content
func isSkipped(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
		return true
	}
	if v, ok := attr(n, "aria-hidden"); ok && v == "true" {
		return true
	}
	return false
}

// findFirst returns the first element in document order below n (n
// included) that satisfies pred
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isSkipped(c) {
			continue
		}
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element below n (n excluded) satisfying pred,
// without descending into matches
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if isSkipped(c) || c.Type != html.ElementNode {
				continue
			}
			if pred(c) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// isBlockLevel reports elements whose boundaries separate words
func isBlockLevel(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.P, atom.Br, atom.Li, atom.Td, atom.Th, atom.Tr,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Section, atom.Article, atom.Figcaption:
		return true
	}
	return false
}
