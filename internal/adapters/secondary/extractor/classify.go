package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// classified is the outcome of classifying one candidate element
type classified struct {
	// block is nil when the candidate produced no block of its own
	block *entities.ContentBlock

	// trailing holds nested blocks that are emitted after block as siblings
	trailing []*html.Node

	// listItem marks a single-item list block that may merge with the
	// previous list of the same kind
	listItem bool
}

var headingClassPattern = regexp.MustCompile(`(?i)(heading|header)[-_]?([1-6])`)

// classify runs the classification cascade; the first match wins
func (p *pass) classify(n *html.Node) classified {
	if n.Type == html.TextNode {
		text := normalize(n.Data)
		if text == "" {
			return classified{}
		}
		b := entities.NewParagraph(p.nextID(), text, nil)
		return classified{block: &b}
	}

	switch {
	case p.isHeading(n):
		return p.buildHeading(n)
	case p.isList(n):
		return p.buildList(n)
	case isDivider(n):
		b := entities.NewDivider(p.nextID())
		return classified{block: &b}
	case isUnsupported(n):
		b := entities.NewUnsupported(p.nextID(), embedType(n))
		return classified{block: &b}
	}

	if img := p.imageNode(n); img != nil {
		return p.buildImage(img)
	}
	if p.isCode(n) {
		return p.buildCode(n)
	}
	if isQuote(n) {
		return p.buildQuote(n)
	}
	return p.buildParagraph(n)
}

func (p *pass) isHeading(n *html.Node) bool {
	if isHeadingTag(n) || hasAttr(n, "aria-level") {
		return true
	}
	if role, _ := attr(n, "role"); role == "heading" {
		return true
	}
	if classContains(n, "heading", "header") {
		return true
	}
	return p.notion && p.findOwned(n, isHeadingTag) != nil
}

func (p *pass) buildHeading(n *html.Node) classified {
	id := p.nextID()
	text, regions := p.ownText(n)
	marks := p.marks(regions, text, id, entities.BlockHeading)
	level, ok := p.headingLevel(n)
	if !ok {
		p.diag(id, entities.BlockHeading, "heading level unresolved, defaulted to 1")
	}
	b := entities.NewHeading(id, text, level, marks)
	return classified{block: &b, trailing: p.ownedCandidates(n)}
}

// headingLevel resolves a heading's level from its attributes, tag and
// classes, in that order
func (p *pass) headingLevel(n *html.Node) (int, bool) {
	for _, key := range []string{"aria-level", "data-level"} {
		if v, ok := attr(n, key); ok {
			if level, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && level >= 1 {
				return level, true
			}
		}
	}

	if isHeadingTag(n) {
		return int(n.Data[1] - '0'), true
	}

	for _, tok := range classTokens(n) {
		if m := headingClassPattern.FindStringSubmatch(tok); m != nil {
			return int(m[2][0] - '0'), true
		}
	}
	switch {
	case classContains(n, "sub_sub_header", "sub-sub-header"):
		return 3, true
	case classContains(n, "sub_header", "sub-header"):
		return 2, true
	case classContains(n, "header"):
		return 1, true
	}

	if h := p.findOwned(n, isHeadingTag); h != nil {
		return int(h.Data[1] - '0'), true
	}
	return 1, false
}

func (p *pass) isList(n *html.Node) bool {
	if isElement(n, atom.Ul, atom.Ol) {
		return true
	}
	if role, _ := attr(n, "role"); role == "list" {
		return true
	}
	return classContains(n, "bulleted_list", "numbered_list", "to_do", "toggle")
}

func isListItem(n *html.Node) bool {
	if isElement(n, atom.Li) {
		return true
	}
	role, _ := attr(n, "role")
	return role == "listitem"
}

func listStyle(n *html.Node) entities.ListStyle {
	if isElement(n, atom.Ol) || classContains(n, "numbered") {
		return entities.ListNumbered
	}
	return entities.ListBullet
}

// buildList collects one entry per owned list item. A Notion list block is
// a single item that carries its own text.
func (p *pass) buildList(n *html.Node) classified {
	id := p.nextID()
	style := listStyle(n)

	items := findAll(n, func(c *html.Node) bool {
		return isListItem(c) || p.isNestedCandidate(c)
	})
	var owned []*html.Node
	for _, item := range items {
		if isListItem(item) && p.owns(n, item) {
			owned = append(owned, item)
		}
	}

	if len(owned) == 0 && !isElement(n, atom.Ul, atom.Ol) {
		var entries []string
		if text, _ := p.ownText(n); text != "" {
			entries = append(entries, text)
		}
		b := entities.NewList(id, style, entries, p.extractRun(p.ownedCandidates(n)))
		return classified{block: &b, listItem: p.notion && hasAttr(n, blockIDAttr)}
	}

	var entries []string
	var children []entities.ContentBlock
	for _, item := range owned {
		if text, _ := p.ownText(item); text != "" {
			entries = append(entries, text)
		}
		children = append(children, p.extractRun(p.ownedCandidates(item))...)
	}
	b := entities.NewList(id, style, entries, children)
	return classified{block: &b}
}

func isDivider(n *html.Node) bool {
	if isElement(n, atom.Hr) || classContains(n, "divider-block") {
		return true
	}
	role, _ := attr(n, "role")
	return role == "separator"
}

func isUnsupported(n *html.Node) bool {
	if hasAttr(n, "data-unsupported") {
		return true
	}
	if isElement(n, atom.Iframe, atom.Video, atom.Audio, atom.Embed, atom.Object) {
		return true
	}
	return classContains(n, "embed-block", "video-block", "bookmark-block", "audio-block", "pdf-block")
}

// embedType names the kind of unrenderable content for the placeholder text
func embedType(n *html.Node) string {
	if v, ok := attr(n, "data-unsupported"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if isElement(n, atom.Iframe, atom.Video, atom.Audio, atom.Embed, atom.Object) {
		return n.Data
	}
	for _, tok := range classTokens(n) {
		tok = strings.ToLower(tok)
		if strings.HasPrefix(tok, "notion-") && strings.HasSuffix(tok, "-block") {
			if name := strings.TrimSuffix(strings.TrimPrefix(tok, "notion-"), "-block"); name != "" {
				return name
			}
		}
	}
	return "embed"
}

func isImageSource(n *html.Node) bool {
	if !isElement(n, atom.Img) || classContains(n, "emoji") {
		return false
	}
	src, _ := attr(n, "src")
	return strings.TrimSpace(src) != ""
}

// imageNode returns the img element that makes n an image block
func (p *pass) imageNode(n *html.Node) *html.Node {
	if isImageSource(n) {
		return n
	}
	return p.findOwned(n, isImageSource)
}

func (p *pass) buildImage(img *html.Node) classified {
	src, _ := attr(img, "src")
	alt, _ := attr(img, "alt")
	b := entities.NewImage(p.nextID(), src, normalize(alt))
	return classified{block: &b}
}

func (p *pass) isCode(n *html.Node) bool {
	if isElement(n, atom.Pre, atom.Code) || classContains(n, "code-block") {
		return true
	}
	return p.findOwned(n, func(c *html.Node) bool { return isElement(c, atom.Pre) }) != nil
}

func (p *pass) buildCode(n *html.Node) classified {
	target := n
	if !isElement(n, atom.Pre, atom.Code) {
		if pre := p.findOwned(n, func(c *html.Node) bool { return isElement(c, atom.Pre) }); pre != nil {
			target = pre
		} else if code := p.findOwned(n, func(c *html.Node) bool { return isElement(c, atom.Code) }); code != nil {
			target = code
		}
	}

	lang := codeLanguage(n)
	if lang == "" && target != n {
		lang = codeLanguage(target)
	}
	if lang == "" {
		if code := p.findOwned(target, func(c *html.Node) bool { return isElement(c, atom.Code) }); code != nil {
			lang = codeLanguage(code)
		}
	}
	if lang == "" {
		lang = p.wrapperLanguage(n)
	}

	b := entities.NewCode(p.nextID(), codeText(target), lang)
	return classified{block: &b}
}

// wrapperLanguage reads a language from the plain wrappers around a code
// element, stopping at the content root or the nearest owning block
func (p *pass) wrapperLanguage(n *html.Node) string {
	for a := n.Parent; a != nil && a != p.root; a = a.Parent {
		if isOwningBlock(a) {
			break
		}
		if lang := codeLanguage(a); lang != "" {
			return lang
		}
	}
	return ""
}

// codeLanguage reads a language from class tokens first, then data attributes
func codeLanguage(n *html.Node) string {
	for _, tok := range classTokens(n) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(tok, prefix) && len(tok) > len(prefix) {
				return tok[len(prefix):]
			}
		}
	}
	for _, key := range []string{"data-language", "data-lang"} {
		if v, ok := attr(n, key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func isQuote(n *html.Node) bool {
	return isElement(n, atom.Blockquote) || classContains(n, "quote", "callout-block")
}

func (p *pass) buildQuote(n *html.Node) classified {
	id := p.nextID()
	text, regions := p.ownText(n)
	marks := p.marks(regions, text, id, entities.BlockQuote)
	b := entities.NewQuote(id, text, marks, p.extractRun(p.ownedCandidates(n)))
	return classified{block: &b}
}

// buildParagraph is the fallback. Nested blocks are flattened after it and
// elements without text only contribute their nested blocks.
func (p *pass) buildParagraph(n *html.Node) classified {
	trailing := p.ownedCandidates(n)
	text, regions := p.ownText(n)
	if text == "" {
		return classified{trailing: trailing}
	}
	id := p.nextID()
	b := entities.NewParagraph(id, text, p.marks(regions, text, id, entities.BlockParagraph))
	return classified{block: &b, trailing: trailing}
}
