package entities

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// BlockKind identifies the semantic type of a content block
type BlockKind string

const (
	BlockHeading      BlockKind = "heading"
	BlockParagraph    BlockKind = "paragraph"
	BlockBulletList   BlockKind = "bullet_list"
	BlockNumberedList BlockKind = "numbered_list"
	BlockImage        BlockKind = "image"
	BlockCode         BlockKind = "code"
	BlockQuote        BlockKind = "quote"
	BlockDivider      BlockKind = "divider"
	BlockUnsupported  BlockKind = "unsupported"
)

// IsList reports whether the kind is one of the list kinds
func (k BlockKind) IsList() bool {
	return k == BlockBulletList || k == BlockNumberedList
}

// MarkKind identifies an inline formatting span
type MarkKind string

const (
	MarkBold          MarkKind = "bold"
	MarkItalic        MarkKind = "italic"
	MarkUnderline     MarkKind = "underline"
	MarkStrikethrough MarkKind = "strikethrough"
	MarkInlineCode    MarkKind = "inline_code"
)

// ListStyle is the marker style of a list block
type ListStyle string

const (
	ListBullet   ListStyle = "bullet"
	ListNumbered ListStyle = "numbered"
)

// DefaultImageAlt is used when an image carries no alt text
const DefaultImageAlt = "Image"

// InlineMark is a formatting span over a block's text.
// Start and End are rune offsets forming a half-open range.
type InlineMark struct {
	Kind  MarkKind `json:"kind" yaml:"kind"`
	Start int      `json:"start" yaml:"start"`
	End   int      `json:"end" yaml:"end"`
}

// ContentBlock is a single semantic unit of extracted content.
// Optional fields are nil unless Kind allows them.
type ContentBlock struct {
	ID           string         `json:"id" yaml:"id"`
	Kind         BlockKind      `json:"kind" yaml:"kind"`
	Text         string         `json:"text,omitempty" yaml:"text,omitempty"`
	HeadingLevel *int           `json:"headingLevel,omitempty" yaml:"heading_level,omitempty"`
	InlineMarks  []InlineMark   `json:"inlineMarks,omitempty" yaml:"inline_marks,omitempty"`
	ImageSource  *string        `json:"imageSource,omitempty" yaml:"image_source,omitempty"`
	ImageAltText *string        `json:"imageAltText,omitempty" yaml:"image_alt_text,omitempty"`
	ListEntries  []string       `json:"listEntries,omitempty" yaml:"list_entries,omitempty"`
	ListStyle    *ListStyle     `json:"listStyle,omitempty" yaml:"list_style,omitempty"`
	CodeLanguage *string        `json:"codeLanguage,omitempty" yaml:"code_language,omitempty"`
	Children     []ContentBlock `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewHeading creates a heading block. Levels below 1 are raised to 1.
func NewHeading(id, text string, level int, marks []InlineMark) ContentBlock {
	if level < 1 {
		level = 1
	}
	return ContentBlock{ID: id, Kind: BlockHeading, Text: text, HeadingLevel: &level, InlineMarks: marks}
}

// NewParagraph creates a paragraph block
func NewParagraph(id, text string, marks []InlineMark) ContentBlock {
	return ContentBlock{ID: id, Kind: BlockParagraph, Text: text, InlineMarks: marks}
}

// NewList creates a bullet or numbered list block
func NewList(id string, style ListStyle, entries []string, children []ContentBlock) ContentBlock {
	kind := BlockBulletList
	if style == ListNumbered {
		kind = BlockNumberedList
	} else {
		style = ListBullet
	}
	if entries == nil {
		entries = []string{}
	}
	return ContentBlock{ID: id, Kind: kind, ListEntries: entries, ListStyle: &style, Children: children}
}

// NewImage creates an image block; an empty alt falls back to DefaultImageAlt
func NewImage(id, src, alt string) ContentBlock {
	if strings.TrimSpace(alt) == "" {
		alt = DefaultImageAlt
	}
	return ContentBlock{ID: id, Kind: BlockImage, ImageSource: &src, ImageAltText: &alt}
}

// NewCode creates a code block. An empty language leaves CodeLanguage absent.
func NewCode(id, code, language string) ContentBlock {
	b := ContentBlock{ID: id, Kind: BlockCode, Text: code}
	if language != "" {
		b.CodeLanguage = &language
	}
	return b
}

// NewQuote creates a quote block
func NewQuote(id, text string, marks []InlineMark, children []ContentBlock) ContentBlock {
	return ContentBlock{ID: id, Kind: BlockQuote, Text: text, InlineMarks: marks, Children: children}
}

// NewDivider creates a divider block
func NewDivider(id string) ContentBlock {
	return ContentBlock{ID: id, Kind: BlockDivider}
}

// NewUnsupported creates a placeholder for content that cannot be rendered
func NewUnsupported(id, embedType string) ContentBlock {
	if embedType == "" {
		embedType = "embed"
	}
	return ContentBlock{ID: id, Kind: BlockUnsupported, Text: fmt.Sprintf("[Unsupported content: %s]", embedType)}
}

// Level returns the heading level, or 0 for non-heading blocks
func (b ContentBlock) Level() int {
	if b.HeadingLevel == nil {
		return 0
	}
	return *b.HeadingLevel
}

// IsHeading reports whether the block is a heading at the given level
func (b ContentBlock) IsHeading(level int) bool {
	return b.Kind == BlockHeading && b.Level() == level
}

// Words returns the whitespace-separated words of the block, its list entries
// and its children.
func (b ContentBlock) Words() int {
	n := len(strings.Fields(b.Text))
	for _, entry := range b.ListEntries {
		n += len(strings.Fields(entry))
	}
	for _, child := range b.Children {
		n += child.Words()
	}
	return n
}

// Validate checks that only fields allowed by Kind are populated and that
// inline marks stay inside the text.
func (b ContentBlock) Validate() error {
	if b.ID == "" {
		return errors.New("block id cannot be empty")
	}

	isHeading := b.Kind == BlockHeading
	isImage := b.Kind == BlockImage
	isList := b.Kind.IsList()
	isCode := b.Kind == BlockCode

	switch {
	case (b.HeadingLevel != nil) != isHeading:
		return fmt.Errorf("block %s: heading level not allowed for kind %s", b.ID, b.Kind)
	case isHeading && *b.HeadingLevel < 1:
		return fmt.Errorf("block %s: heading level must be >= 1", b.ID)
	case !isImage && (b.ImageSource != nil || b.ImageAltText != nil):
		return fmt.Errorf("block %s: image fields not allowed for kind %s", b.ID, b.Kind)
	case isImage && (b.ImageSource == nil || b.ImageAltText == nil):
		return fmt.Errorf("block %s: image requires source and alt text", b.ID)
	case (b.ListStyle != nil) != isList:
		return fmt.Errorf("block %s: list style not allowed for kind %s", b.ID, b.Kind)
	case !isList && b.ListEntries != nil:
		return fmt.Errorf("block %s: list entries not allowed for kind %s", b.ID, b.Kind)
	case !isCode && b.CodeLanguage != nil:
		return fmt.Errorf("block %s: code language not allowed for kind %s", b.ID, b.Kind)
	case len(b.Children) > 0 && !isList && b.Kind != BlockQuote:
		return fmt.Errorf("block %s: children not allowed for kind %s", b.ID, b.Kind)
	}

	switch b.Kind {
	case BlockImage, BlockDivider:
		if b.Text != "" {
			return fmt.Errorf("block %s: text not allowed for kind %s", b.ID, b.Kind)
		}
	case BlockBulletList, BlockNumberedList:
		if b.Text != "" {
			return fmt.Errorf("block %s: list text belongs in entries", b.ID)
		}
	}

	length := utf8.RuneCountInString(b.Text)
	for _, m := range b.InlineMarks {
		if m.Start < 0 || m.Start >= m.End || m.End > length {
			return fmt.Errorf("block %s: mark %s [%d,%d) outside text of length %d", b.ID, m.Kind, m.Start, m.End, length)
		}
	}

	for _, child := range b.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}

	return nil
}
