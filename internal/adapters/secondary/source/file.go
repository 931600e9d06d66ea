package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/zorro901/presenotion/internal/domain/ports"
)

// FileSource loads saved HTML pages and markdown exports from disk
type FileSource struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewFileSource creates a file-backed document source
func NewFileSource(logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // Notion exports embed raw HTML for callouts
		),
	)
	return &FileSource{md: md, logger: logger.With("component", "file_source")}
}

// FilePath strips an optional file:// scheme from a local identifier
func FilePath(identifier string) string {
	return strings.TrimPrefix(strings.TrimSpace(identifier), "file://")
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Supports reports whether identifier names a local HTML or markdown file
func (s *FileSource) Supports(identifier string) bool {
	if strings.Contains(identifier, "://") && !strings.HasPrefix(strings.TrimSpace(identifier), "file://") {
		return false
	}
	path := FilePath(identifier)
	return isHTML(path) || isMarkdown(path)
}

// Fetch reads and parses the file. Markdown is rendered to HTML first and
// its frontmatter title becomes the document title.
func (s *FileSource) Fetch(ctx context.Context, identifier string) (*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := FilePath(identifier)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := &ports.Document{Identifier: identifier}
	if isMarkdown(path) {
		frontmatter, body := extractFrontmatter(data)
		if title, ok := frontmatter["title"].(string); ok {
			doc.Title = strings.TrimSpace(title)
		}

		var buf bytes.Buffer
		if err := s.md.Convert(body, &buf); err != nil {
			return nil, fmt.Errorf("rendering markdown %s: %w", path, err)
		}
		data = buf.Bytes()
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Root = root

	s.logger.Debug("loaded file", "path", path, "bytes", len(data))
	return doc, nil
}

// extractFrontmatter splits YAML frontmatter from markdown content. Content
// without a closed, parseable frontmatter block is returned unchanged.
func extractFrontmatter(content []byte) (map[string]interface{}, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			endIndex = i
			break
		}
	}
	if endIndex == -1 {
		return nil, content
	}

	var frontmatter map[string]interface{}
	raw := bytes.Join(lines[1:endIndex], []byte("\n"))
	if len(bytes.TrimSpace(raw)) == 0 {
		frontmatter = make(map[string]interface{})
	} else if err := yaml.Unmarshal(raw, &frontmatter); err != nil {
		return nil, content
	}

	return frontmatter, bytes.Join(lines[endIndex+1:], []byte("\n"))
}
