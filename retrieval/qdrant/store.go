// Package qdrant adapts a Qdrant collection to the vector half of C2's
// retrieval fan-out.
package qdrant

import (
	"context"
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/retrieval"
	"github.com/ragforge/queryengine/vectorstore/filter"
)

var _ retrieval.VectorStore = (*Store)(nil)

const (
	payloadDocID       = "docId"
	payloadTenantID    = "tenantId"
	payloadSource      = "source"
	payloadURL         = "url"
	payloadFilePath    = "filePath"
	payloadDocTitle    = "docTitle"
	payloadSectionPath = "sectionPath"
	payloadHeader      = "header"
	payloadContent     = "content"
)

// Embedder turns query text into the dense vector Qdrant searches
// against. Concrete implementations wrap whatever embedding provider a
// deployment uses; this package only consumes the interface.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store queries one Qdrant collection.
type Store struct {
	Client         *qc.Client
	CollectionName string
	Embedder       Embedder
	MinScore       float32
}

// New builds a Store for collectionName, embedding query text via embedder.
func New(client *qc.Client, collectionName string, embedder Embedder) *Store {
	return &Store{Client: client, CollectionName: collectionName, Embedder: embedder}
}

// SearchVectors embeds q, runs a filtered nearest-neighbor query, and maps
// the scored points back onto domain.RetrievalHit.
func (s *Store) SearchVectors(ctx context.Context, q string, f domain.Filter, limit int) ([]domain.RetrievalHit, error) {
	vector, err := s.Embedder.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("qdrant: embed query: %w", err)
	}

	limit64 := uint64(limit)
	queryPoints := &qc.QueryPoints{
		CollectionName: s.CollectionName,
		Query:          qc.NewQuery(vector...),
		Limit:          &limit64,
		WithPayload:    qc.NewWithPayload(true),
	}
	if s.MinScore > 0 {
		threshold := s.MinScore
		queryPoints.ScoreThreshold = &threshold
	}

	if f != nil {
		expr, ok := f.(filter.Expr)
		if !ok {
			return nil, fmt.Errorf("qdrant: unsupported filter type %T", f)
		}
		qf, err := buildFilter(expr)
		if err != nil {
			return nil, err
		}
		queryPoints.Filter = qf
	}

	scored, err := s.Client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("qdrant: query collection %s: %w", s.CollectionName, err)
	}

	hits := make([]domain.RetrievalHit, 0, len(scored))
	for i, point := range scored {
		payload := point.GetPayload()
		hits = append(hits, domain.RetrievalHit{
			DocID:      payloadString(payload, payloadDocID),
			InternalID: pointIDString(point.GetId()),
			Score:      float64(point.GetScore()),
			Rank:       i + 1,
			Content:    payloadString(payload, payloadContent),
			Payload: domain.DocumentPayload{
				DocID:       payloadString(payload, payloadDocID),
				TenantID:    payloadString(payload, payloadTenantID),
				Source:      payloadString(payload, payloadSource),
				URL:         payloadString(payload, payloadURL),
				FilePath:    payloadString(payload, payloadFilePath),
				DocTitle:    payloadString(payload, payloadDocTitle),
				SectionPath: payloadString(payload, payloadSectionPath),
				Header:      payloadString(payload, payloadHeader),
			},
		})
	}
	return hits, nil
}

func buildFilter(expr filter.Expr) (*qc.Filter, error) {
	leaves := filter.Flatten(expr)
	must := make([]*qc.Condition, 0, len(leaves))
	for _, leaf := range leaves {
		cond, err := leafToCondition(leaf)
		if err != nil {
			return nil, err
		}
		must = append(must, cond)
	}
	return &qc.Filter{Must: must}, nil
}

func leafToCondition(leaf filter.Leaf) (*qc.Condition, error) {
	switch leaf.Op {
	case filter.OpEQ:
		v, ok := leaf.Value.(string)
		if !ok {
			return nil, fmt.Errorf("qdrant: unsupported EQ value type %T on %s", leaf.Value, leaf.Field)
		}
		return qc.NewMatchKeyword(leaf.Field, v), nil
	case filter.OpIn, filter.OpIntersects:
		values, ok := leaf.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("qdrant: expected []string for %s on %s", leaf.Op, leaf.Field)
		}
		return qc.NewMatchKeywords(leaf.Field, values...), nil
	default:
		return nil, fmt.Errorf("qdrant: unsupported filter predicate %s on %s", leaf.Op, leaf.Field)
	}
}

func payloadString(payload map[string]*qc.Value, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return v.GetStringValue()
}

func pointIDString(id *qc.PointId) string {
	if id == nil {
		return ""
	}
	if uid := id.GetUuid(); uid != "" {
		return uid
	}
	return fmt.Sprint(id.GetNum())
}
