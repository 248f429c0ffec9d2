package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for bookfeed resources.
	uriScheme = "bookfeed://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing the library.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "books",
		Name:        "books",
		Description: "List of all books in the library",
		MIMEType:    "application/json",
	}, s.handleBooksResource)

	// Template for one book.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "books/{bookId}",
		Name:        "book",
		Description: "One book with its per-chunk delivery status",
		MIMEType:    "application/json",
	}, s.handleBookResource)

	// Template for chunk content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "books/{bookId}/chunks/{chunkIndex}",
		Name:        "chunk-content",
		Description: "Text content of a specific chunk",
		MIMEType:    "text/plain",
	}, s.handleChunkResource)
}

// handleBooksResource returns a summary list of all books.
func (s *Server) handleBooksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	books, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	infos := make([]BookSummary, len(books))
	for i := range books {
		infos[i] = summarise(&books[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling books: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleBookResource returns one book with its chunk statuses.
func (s *Server) handleBookResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	bookID, chunkPart := splitBookURI(req.Params.URI)
	if bookID == "" || chunkPart != "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	book, err := s.ports.Library.Get(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}

	output := GetBookOutput{
		Book:   summarise(book),
		Chunks: make([]ChunkOutput, len(book.Chunks)),
	}
	for i, c := range book.Chunks {
		output.Chunks[i] = ChunkOutput{
			Index:        c.Index,
			Chapter:      c.Chapter,
			ChapterIndex: c.ChapterIndex,
			Status:       c.Status.String(),
			Length:       len(c.Content),
		}
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling book: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleChunkResource returns the text content of one chunk.
func (s *Server) handleChunkResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	bookID, chunkPart := splitBookURI(req.Params.URI)
	if bookID == "" || chunkPart == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	index, err := strconv.Atoi(chunkPart)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	book, err := s.ports.Library.Get(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}

	chunk, ok := book.ChunkAt(index)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     chunk.Content,
		}},
	}, nil
}

// splitBookURI splits a URI like bookfeed://books/{bookId} or
// bookfeed://books/{bookId}/chunks/{chunkIndex} into its id and
// optional chunk-index parts. Both are empty when the URI does not
// match either shape.
func splitBookURI(uri string) (bookID, chunkIndex string) {
	const prefix = uriScheme + "books/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	rest := strings.TrimPrefix(uri, prefix)
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		return parts[0], ""
	case 3:
		if parts[1] != "chunks" {
			return "", ""
		}
		return parts[0], parts[2]
	default:
		return "", ""
	}
}
