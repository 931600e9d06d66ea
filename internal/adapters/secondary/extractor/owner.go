package extractor

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// containerTags own the blocks nested inside them in plain HTML documents
var containerTags = map[atom.Atom]bool{
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Li:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Figure:     true,
	atom.Table:      true,
}

// nestedTags are the plain HTML elements that become child blocks when they
// appear inside a list item or quote
var nestedTags = map[atom.Atom]bool{
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Figure:     true,
	atom.Table:      true,
	atom.Hr:         true,
	atom.Img:        true,
	atom.Iframe:     true,
	atom.Video:      true,
	atom.Audio:      true,
	atom.Embed:      true,
	atom.Object:     true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
}

// isOwningBlock reports whether n carries a block identity that owns the
// content below it
func isOwningBlock(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return hasAttr(n, blockIDAttr) || containerTags[n.DataAtom]
}

// nearestOwningBlock walks up from n and returns the first ancestor with a
// block identity, stopping at root. It returns nil when only root owns n.
func nearestOwningBlock(n, root *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if isOwningBlock(p) {
			return p
		}
	}
	return nil
}

// owns reports whether block is the closest block above n, treating nested
// candidates between them as owners of their own subtree
func (p *pass) owns(block, n *html.Node) bool {
	for q := n.Parent; q != nil; q = q.Parent {
		if q == block {
			return true
		}
		if q == p.root || isOwningBlock(q) || p.isNestedCandidate(q) {
			return false
		}
	}
	return false
}

// isNestedCandidate reports elements that form their own block inside
// another block
func (p *pass) isNestedCandidate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if hasAttr(n, blockIDAttr) {
		return true
	}
	if p.notion {
		return false
	}
	return nestedTags[n.DataAtom]
}

// ownedCandidates returns the nested blocks directly owned by owner
func (p *pass) ownedCandidates(owner *html.Node) []*html.Node {
	var out []*html.Node
	for _, c := range findAll(owner, p.isNestedCandidate) {
		if p.owns(owner, c) {
			out = append(out, c)
		}
	}
	return out
}

// findOwned returns the first element below block that block owns and that
// satisfies pred
func (p *pass) findOwned(block *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || isSkipped(c) {
				continue
			}
			if pred(c) {
				found = c
				return true
			}
			if isOwningBlock(c) || p.isNestedCandidate(c) {
				continue
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(block)
	return found
}
