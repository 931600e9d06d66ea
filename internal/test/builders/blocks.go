package builders

import (
	"fmt"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// BlocksBuilder helps build ordered block sequences for testing. IDs are
// assigned sequentially as b1, b2...
type BlocksBuilder struct {
	blocks []entities.ContentBlock
	seq    int
}

// NewBlocksBuilder creates an empty block sequence builder
func NewBlocksBuilder() *BlocksBuilder {
	return &BlocksBuilder{blocks: []entities.ContentBlock{}}
}

func (b *BlocksBuilder) nextID() string {
	b.seq++
	return fmt.Sprintf("b%d", b.seq)
}

// Heading appends a heading block
func (b *BlocksBuilder) Heading(level int, text string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewHeading(b.nextID(), text, level, nil))
	return b
}

// Paragraph appends a paragraph block
func (b *BlocksBuilder) Paragraph(text string, marks ...entities.InlineMark) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewParagraph(b.nextID(), text, marks))
	return b
}

// Bullets appends a bullet list
func (b *BlocksBuilder) Bullets(entries ...string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewList(b.nextID(), entities.ListBullet, entries, nil))
	return b
}

// Numbered appends a numbered list
func (b *BlocksBuilder) Numbered(entries ...string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewList(b.nextID(), entities.ListNumbered, entries, nil))
	return b
}

// Image appends an image block
func (b *BlocksBuilder) Image(src, alt string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewImage(b.nextID(), src, alt))
	return b
}

// Code appends a code block
func (b *BlocksBuilder) Code(code, language string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewCode(b.nextID(), code, language))
	return b
}

// Quote appends a quote block
func (b *BlocksBuilder) Quote(text string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewQuote(b.nextID(), text, nil, nil))
	return b
}

// Divider appends a divider block
func (b *BlocksBuilder) Divider() *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewDivider(b.nextID()))
	return b
}

// Unsupported appends an unsupported-content placeholder
func (b *BlocksBuilder) Unsupported(embedType string) *BlocksBuilder {
	b.blocks = append(b.blocks, entities.NewUnsupported(b.nextID(), embedType))
	return b
}

// Block appends an arbitrary block as is
func (b *BlocksBuilder) Block(block entities.ContentBlock) *BlocksBuilder {
	b.blocks = append(b.blocks, block)
	return b
}

// Build returns the built blocks
func (b *BlocksBuilder) Build() []entities.ContentBlock {
	return b.blocks
}
