// Package retrieval issues concurrent dense (vector) and lexical (keyword)
// searches against external backends, enforcing tenant/ACL isolation inside
// the query sent to each backend rather than by post-filtering results.
package retrieval

import (
	"context"

	"github.com/ragforge/queryengine/domain"
)

// VectorStore performs dense similarity search over embedded documents.
type VectorStore interface {
	SearchVectors(ctx context.Context, query string, filter domain.Filter, limit int) ([]domain.RetrievalHit, error)
}

// LexicalIndex performs keyword/BM25-style text search. It may be backed by
// the same store as VectorStore with a text predicate, or a dedicated
// full-text engine.
type LexicalIndex interface {
	SearchText(ctx context.Context, query string, filter domain.Filter, limit int) ([]domain.RetrievalHit, error)
}
