package renderer

import (
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// markTags maps each inline mark to the element that renders it. Nesting
// follows the declaration order of the marks.
var markTags = []struct {
	kind entities.MarkKind
	tag  string
}{
	{entities.MarkBold, "strong"},
	{entities.MarkItalic, "em"},
	{entities.MarkUnderline, "u"},
	{entities.MarkStrikethrough, "s"},
	{entities.MarkInlineCode, "code"},
}

// createBlockSanitizer allows exactly the markup renderBlocks produces
func createBlockSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "hr")
	p.AllowElements("strong", "em", "u", "s", "code")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "figure")
	p.AllowElements("img").AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)

	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "div", "p")
	p.AllowElements("div")

	return p
}

var blockSanitizer = createBlockSanitizer()

// renderBlocks renders blocks to sanitized HTML
func renderBlocks(blocks []entities.ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		writeBlock(&sb, b)
	}
	return blockSanitizer.Sanitize(sb.String())
}

func writeBlock(sb *strings.Builder, b entities.ContentBlock) {
	switch b.Kind {
	case entities.BlockHeading:
		level := b.Level()
		if level > 6 {
			level = 6
		}
		tag := "h" + strconv.Itoa(level)
		sb.WriteString("<" + tag + ">")
		sb.WriteString(applyMarks(b.Text, b.InlineMarks))
		sb.WriteString("</" + tag + ">")

	case entities.BlockParagraph:
		sb.WriteString("<p>")
		sb.WriteString(applyMarks(b.Text, b.InlineMarks))
		sb.WriteString("</p>")

	case entities.BlockBulletList, entities.BlockNumberedList:
		tag := "ul"
		if b.Kind == entities.BlockNumberedList {
			tag = "ol"
		}
		sb.WriteString("<" + tag + ">")
		for _, entry := range b.ListEntries {
			sb.WriteString("<li>" + html.EscapeString(entry) + "</li>")
		}
		sb.WriteString("</" + tag + ">")
		for _, child := range b.Children {
			writeBlock(sb, child)
		}

	case entities.BlockImage:
		var src, alt string
		if b.ImageSource != nil {
			src = *b.ImageSource
		}
		if b.ImageAltText != nil {
			alt = *b.ImageAltText
		}
		sb.WriteString(`<figure><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `"></figure>`)

	case entities.BlockCode:
		sb.WriteString("<pre><code")
		if b.CodeLanguage != nil {
			sb.WriteString(` class="language-` + html.EscapeString(*b.CodeLanguage) + `"`)
		}
		sb.WriteString(">" + html.EscapeString(b.Text) + "</code></pre>")

	case entities.BlockQuote:
		sb.WriteString("<blockquote>")
		if b.Text != "" {
			sb.WriteString("<p>" + applyMarks(b.Text, b.InlineMarks) + "</p>")
		}
		for _, child := range b.Children {
			writeBlock(sb, child)
		}
		sb.WriteString("</blockquote>")

	case entities.BlockDivider:
		sb.WriteString("<hr>")

	case entities.BlockUnsupported:
		sb.WriteString(`<p class="unsupported">` + html.EscapeString(b.Text) + "</p>")
	}
}

// applyMarks escapes text and wraps marked rune ranges in their elements.
// Overlapping marks are split at every boundary so the output stays well
// nested.
func applyMarks(text string, marks []entities.InlineMark) string {
	if len(marks) == 0 {
		return html.EscapeString(text)
	}

	runes := []rune(text)
	cuts := map[int]bool{0: true, len(runes): true}
	for _, m := range marks {
		if m.Start < 0 || m.End > len(runes) || m.Start >= m.End {
			continue
		}
		cuts[m.Start] = true
		cuts[m.End] = true
	}
	points := make([]int, 0, len(cuts))
	for p := range cuts {
		points = append(points, p)
	}
	sort.Ints(points)

	var sb strings.Builder
	for i := 0; i+1 < len(points); i++ {
		start, end := points[i], points[i+1]
		var open []string
		for _, mt := range markTags {
			for _, m := range marks {
				if m.Kind == mt.kind && m.Start <= start && end <= m.End {
					open = append(open, mt.tag)
					break
				}
			}
		}
		for _, tag := range open {
			sb.WriteString("<" + tag + ">")
		}
		sb.WriteString(html.EscapeString(string(runes[start:end])))
		for j := len(open) - 1; j >= 0; j-- {
			sb.WriteString("</" + open[j] + ">")
		}
	}
	return sb.String()
}
