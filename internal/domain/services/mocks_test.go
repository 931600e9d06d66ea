package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"golang.org/x/net/html"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// MockExtractor is a mock implementation of ports.BlockExtractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(root *html.Node) ports.ExtractionResult {
	return m.Called(root).Get(0).(ports.ExtractionResult)
}

func (m *MockExtractor) Recognizes(root *html.Node) bool {
	return m.Called(root).Bool(0)
}

// MockSource is a mock implementation of ports.DocumentSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Supports(identifier string) bool {
	return m.Called(identifier).Bool(0)
}

func (m *MockSource) Fetch(ctx context.Context, identifier string) (*ports.Document, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Document), args.Error(1)
}

func testDocument(identifier string) *ports.Document {
	return &ports.Document{
		Identifier: identifier,
		Root:       &html.Node{Type: html.DocumentNode},
	}
}

func extracted(blocks []entities.ContentBlock, diags ...ports.Diagnostic) ports.ExtractionResult {
	return ports.ExtractionResult{Blocks: blocks, Diagnostics: diags}
}
