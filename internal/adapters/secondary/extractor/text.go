package extractor

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

var invisibles = strings.NewReplacer(
	"\u00a0", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// normalize applies NFC, maps non-breaking spaces to spaces and collapses
// whitespace runs
func normalize(s string) string {
	s = invisibles.Replace(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// collectText appends the raw text below n, separating block-level elements
// with spaces. Subtrees matching skip are left out.
func collectText(n *html.Node, skip func(*html.Node) bool, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isSkipped(c):
			continue
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case c.Type == html.ElementNode:
			if skip != nil && skip(c) {
				sb.WriteByte(' ')
				continue
			}
			if c.DataAtom == atom.Br {
				sb.WriteByte(' ')
				continue
			}
			block := isBlockLevel(c)
			if block {
				sb.WriteByte(' ')
			}
			collectText(c, skip, sb)
			if block {
				sb.WriteByte(' ')
			}
		}
	}
}

// fullText returns the normalized text content of n
func fullText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, nil, &sb)
	return normalize(sb.String())
}

// textRegions returns the subtrees whose text belongs to block n. Leaf text
// containers are preferred when n owns any.
func (p *pass) textRegions(n *html.Node) []*html.Node {
	leaves := findAll(n, func(c *html.Node) bool {
		return hasAttr(c, leafAttr) || p.isNestedCandidate(c)
	})
	var regions []*html.Node
	for _, l := range leaves {
		if hasAttr(l, leafAttr) && p.owns(n, l) {
			regions = append(regions, l)
		}
	}
	if len(regions) == 0 {
		regions = []*html.Node{n}
	}
	return regions
}

// ownText extracts the text of block n excluding every nested block it owns.
// The returned regions are where inline marks for that text are searched.
func (p *pass) ownText(n *html.Node) (string, []*html.Node) {
	regions := p.textRegions(n)
	parts := make([]string, 0, len(regions))
	for _, r := range regions {
		var sb strings.Builder
		collectText(r, p.isNestedCandidate, &sb)
		if t := normalize(sb.String()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), regions
}

// codeText returns the text of a code container with its whitespace intact
func codeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case isSkipped(c):
				continue
			case c.Type == html.TextNode:
				sb.WriteString(c.Data)
			case c.Type == html.ElementNode && c.DataAtom == atom.Br:
				sb.WriteByte('\n')
			case c.Type == html.ElementNode:
				walk(c)
				if isElement(c, atom.Div, atom.P) {
					if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
						sb.WriteByte('\n')
					}
				}
			}
		}
	}
	walk(n)
	s := invisibles.Replace(norm.NFC.String(sb.String()))
	return strings.Trim(s, "\r\n")
}

// markOrder fixes the order kinds are reported for one element
var markOrder = []entities.MarkKind{
	entities.MarkBold,
	entities.MarkItalic,
	entities.MarkUnderline,
	entities.MarkStrikethrough,
	entities.MarkInlineCode,
}

// styleDecls parses an inline style attribute into lowercase declarations
func styleDecls(n *html.Node) map[string]string {
	v, ok := attr(n, "style")
	if !ok || v == "" {
		return nil
	}
	decls := make(map[string]string)
	for _, d := range strings.Split(v, ";") {
		name, value, found := strings.Cut(d, ":")
		if !found {
			continue
		}
		decls[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(strings.TrimSpace(value))
	}
	return decls
}

// markKinds reports the formatting an element applies to its text
func markKinds(n *html.Node) map[entities.MarkKind]bool {
	kinds := make(map[entities.MarkKind]bool)
	switch n.DataAtom {
	case atom.B, atom.Strong:
		kinds[entities.MarkBold] = true
	case atom.I, atom.Em:
		kinds[entities.MarkItalic] = true
	case atom.U, atom.Ins:
		kinds[entities.MarkUnderline] = true
	case atom.S, atom.Strike, atom.Del:
		kinds[entities.MarkStrikethrough] = true
	case atom.Code, atom.Kbd, atom.Samp:
		kinds[entities.MarkInlineCode] = true
	}
	if classContains(n, "inline-code") {
		kinds[entities.MarkInlineCode] = true
	}

	decls := styleDecls(n)
	switch decls["font-weight"] {
	case "bold", "bolder", "600", "700", "800", "900":
		kinds[entities.MarkBold] = true
	}
	if decls["font-style"] == "italic" {
		kinds[entities.MarkItalic] = true
	}
	decoration := decls["text-decoration"] + " " + decls["text-decoration-line"]
	if strings.Contains(decoration, "underline") {
		kinds[entities.MarkUnderline] = true
	}
	if strings.Contains(decoration, "line-through") {
		kinds[entities.MarkStrikethrough] = true
	}
	if bb, ok := decls["border-bottom"]; ok && bb != "none" && bb != "0" && !strings.HasPrefix(bb, "0 ") {
		kinds[entities.MarkUnderline] = true
	}
	if ff := decls["font-family"]; strings.Contains(ff, "mono") || strings.Contains(ff, "courier") || strings.Contains(ff, "consolas") {
		kinds[entities.MarkInlineCode] = true
	}
	return kinds
}

// marks locates formatted runs inside text. Each kind keeps its own search
// cursor so repeated runs map to successive occurrences.
func (p *pass) marks(regions []*html.Node, text, id string, kind entities.BlockKind) []entities.InlineMark {
	cursor := make(map[entities.MarkKind]int)
	var out []entities.InlineMark

	var walk func(n *html.Node, active map[entities.MarkKind]bool)
	walk = func(n *html.Node, active map[entities.MarkKind]bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || isSkipped(c) || p.isNestedCandidate(c) {
				continue
			}
			kinds := markKinds(c)
			next := active
			var fresh []entities.MarkKind
			for _, k := range markOrder {
				if kinds[k] && !active[k] {
					fresh = append(fresh, k)
				}
			}
			if len(fresh) > 0 {
				next = make(map[entities.MarkKind]bool, len(active)+len(fresh))
				for k := range active {
					next[k] = true
				}
				run := fullText(c)
				for _, k := range fresh {
					next[k] = true
					if run == "" {
						continue
					}
					idx := strings.Index(text[cursor[k]:], run)
					if idx < 0 {
						p.diag(id, kind, "formatted text %q not found for %s mark", run, k)
						continue
					}
					start := cursor[k] + idx
					end := start + len(run)
					cursor[k] = end
					out = append(out, entities.InlineMark{
						Kind:  k,
						Start: utf8.RuneCountInString(text[:start]),
						End:   utf8.RuneCountInString(text[:end]),
					})
				}
			}
			walk(c, next)
		}
	}
	for _, r := range regions {
		walk(r, map[entities.MarkKind]bool{})
	}
	return dedupeMarks(out)
}

func dedupeMarks(marks []entities.InlineMark) []entities.InlineMark {
	if len(marks) == 0 {
		return nil
	}
	sort.SliceStable(marks, func(i, j int) bool {
		if marks[i].Start != marks[j].Start {
			return marks[i].Start < marks[j].Start
		}
		if marks[i].End != marks[j].End {
			return marks[i].End < marks[j].End
		}
		return marks[i].Kind < marks[j].Kind
	})
	out := marks[:1]
	for _, m := range marks[1:] {
		if m != out[len(out)-1] {
			out = append(out, m)
		}
	}
	return out
}
