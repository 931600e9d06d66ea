package services

import "github.com/zorro901/presenotion/internal/domain/entities"

// DetectBoundary picks the heading level that delimits slides: the shallowest
// heading level deeper than excludeLevel. ok is false when the document has no
// such heading.
func DetectBoundary(blocks []entities.ContentBlock, excludeLevel int) (level int, ok bool) {
	for _, b := range blocks {
		if b.Kind != entities.BlockHeading {
			continue
		}
		l := b.Level()
		if l <= excludeLevel {
			continue
		}
		if !ok || l < level {
			level, ok = l, true
		}
	}
	return level, ok
}
