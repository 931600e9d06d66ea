// Package extractor turns a rendered Notion page, or any plain HTML document,
// into the ordered content blocks that slides are built from.
package extractor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// NotionExtractor implements ports.BlockExtractor over golang.org/x/net/html trees
type NotionExtractor struct {
	logger *slog.Logger
}

// NewNotionExtractor creates a new extractor
func NewNotionExtractor(logger *slog.Logger) *NotionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotionExtractor{logger: logger.With("component", "extractor")}
}

// Extract walks the document and returns its blocks in document order.
// Malformed elements are skipped with a diagnostic; a failure to traverse the
// document at all is reported through Fatal.
func (e *NotionExtractor) Extract(root *html.Node) (result ports.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction aborted", "panic", r)
			result = ports.ExtractionResult{
				Blocks: []entities.ContentBlock{},
				Fatal:  fmt.Errorf("%w: %v", entities.ErrUnableToParse, r),
			}
		}
	}()

	if root == nil {
		return ports.ExtractionResult{
			Blocks:      []entities.ContentBlock{},
			Diagnostics: []ports.Diagnostic{{Message: "empty document"}},
		}
	}

	content := findContentRoot(root)
	p := newPass(content)
	blocks := p.extractRun(p.topCandidates())
	if blocks == nil {
		blocks = []entities.ContentBlock{}
	}

	e.logger.Debug("extracted blocks",
		"blocks", len(blocks),
		"diagnostics", len(p.diags),
		"notion", p.notion)

	return ports.ExtractionResult{
		Blocks:      blocks,
		Diagnostics: p.diags,
		Title:       findTitle(root),
	}
}

// Recognizes reports whether the tree is a rendered Notion page
func (e *NotionExtractor) Recognizes(root *html.Node) bool {
	return findFirst(root, func(n *html.Node) bool {
		return hasAttr(n, blockIDAttr) ||
			hasClass(n, "notion-app") ||
			hasClass(n, "notion-frame") ||
			hasClass(n, "notion-page-content")
	}) != nil
}

// findContentRoot narrows the tree to the page body
func findContentRoot(root *html.Node) *html.Node {
	if n := findFirst(root, func(n *html.Node) bool { return hasClass(n, "notion-page-content") }); n != nil {
		return n
	}
	for _, a := range []atom.Atom{atom.Article, atom.Main, atom.Body} {
		if n := findFirst(root, func(n *html.Node) bool { return n.DataAtom == a }); n != nil {
			return n
		}
	}
	return root
}

// findTitle returns the text of the document's <title> element
func findTitle(root *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			title = fullText(n)
			return true
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return title
}

// pass holds the state of a single extraction
type pass struct {
	root   *html.Node
	notion bool
	prefix string
	seq    int
	diags  []ports.Diagnostic
}

func newPass(root *html.Node) *pass {
	return &pass{
		root:   root,
		notion: findFirst(root, func(n *html.Node) bool { return hasAttr(n, blockIDAttr) }) != nil,
		prefix: uuid.NewString()[:8],
	}
}

func (p *pass) nextID() string {
	p.seq++
	return fmt.Sprintf("blk-%s-%d", p.prefix, p.seq)
}

func (p *pass) diag(id string, kind entities.BlockKind, format string, args ...any) {
	p.diags = append(p.diags, ports.Diagnostic{
		BlockID:   id,
		BlockKind: kind,
		Message:   fmt.Sprintf(format, args...),
	})
}

// topBlockTags start a block of their own in plain HTML
var topBlockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Figure:     true,
	atom.Hr:         true,
	atom.Img:        true,
	atom.Table:      true,
	atom.Iframe:     true,
	atom.Video:      true,
	atom.Audio:      true,
	atom.Embed:      true,
	atom.Object:     true,
}

func isTopBlock(n *html.Node) bool {
	if topBlockTags[n.DataAtom] {
		return true
	}
	role, _ := attr(n, "role")
	return role == "heading" || role == "list" || role == "separator"
}

// topCandidates returns the elements that become top-level blocks
func (p *pass) topCandidates() []*html.Node {
	if p.notion {
		return findAll(p.root, func(n *html.Node) bool { return hasAttr(n, blockIDAttr) })
	}
	var out []*html.Node
	p.plainCandidates(p.root, &out)
	return out
}

// plainCandidates descends through wrappers until it reaches block elements.
// Wrappers holding no block elements become candidates themselves.
func (p *pass) plainCandidates(n *html.Node, out *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isSkipped(c) {
			continue
		}
		switch c.Type {
		case html.TextNode:
			if normalize(c.Data) != "" {
				*out = append(*out, c)
			}
		case html.ElementNode:
			if isTopBlock(c) || findFirst(c, isTopBlock) == nil {
				*out = append(*out, c)
				continue
			}
			p.plainCandidates(c, out)
		}
	}
}

// extractRun classifies nodes in order. Consecutive single-item Notion list
// blocks of the same kind merge into one list.
func (p *pass) extractRun(nodes []*html.Node) []entities.ContentBlock {
	var out []entities.ContentBlock
	merging := false
	for _, n := range nodes {
		c, ok := p.classifySafe(n)
		if !ok {
			merging = false
			continue
		}

		if c.block != nil {
			last := len(out) - 1
			if c.listItem && merging && out[last].Kind == c.block.Kind {
				out[last].ListEntries = append(out[last].ListEntries, c.block.ListEntries...)
				out[last].Children = append(out[last].Children, c.block.Children...)
			} else {
				out = append(out, *c.block)
			}
			merging = c.listItem
		}

		if len(c.trailing) > 0 {
			out = append(out, p.extractRun(c.trailing)...)
			merging = false
		}
	}
	return out
}

// classifySafe classifies one candidate, turning a panic into a diagnostic
func (p *pass) classifySafe(n *html.Node) (c classified, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.diag("", "", "skipped <%s>: %v", strings.ToLower(n.Data), r)
			c, ok = classified{}, false
		}
	}()
	c = p.classify(n)
	return c, c.block != nil || len(c.trailing) > 0
}
