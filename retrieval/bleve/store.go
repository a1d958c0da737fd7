// Package bleve adapts a local bleve full-text index to the lexical half
// of C2's retrieval fan-out.
package bleve

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/retrieval"
	"github.com/ragforge/queryengine/vectorstore/filter"
)

var _ retrieval.LexicalIndex = (*Index)(nil)

const (
	fieldDocID       = "docId"
	fieldTenantID    = "tenantId"
	fieldACL         = "acl"
	fieldContent     = "content"
	fieldSource      = "source"
	fieldURL         = "url"
	fieldFilePath    = "filePath"
	fieldDocTitle    = "docTitle"
	fieldSectionPath = "sectionPath"
	fieldHeader      = "header"
)

var storedFields = []string{
	fieldDocID, fieldTenantID, fieldACL, fieldSource, fieldURL,
	fieldFilePath, fieldDocTitle, fieldSectionPath, fieldHeader, fieldContent,
}

// Index wraps an open bleve index. Whatever offline ingestion pipeline
// builds the index is expected to store the fields listed above; this
// type only queries it.
type Index struct {
	bleveIndex bleve.Index
}

// New wraps an already-open bleve index.
func New(bleveIndex bleve.Index) *Index {
	return &Index{bleveIndex: bleveIndex}
}

// Open opens the bleve index at path and wraps it.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bleve: open index at %s: %w", path, err)
	}
	return New(idx), nil
}

// SearchText runs a match query against the content field, ANDed with the
// caller's ACL filter translated via vectorstore/filter.Flatten.
func (idx *Index) SearchText(ctx context.Context, q string, f domain.Filter, limit int) ([]domain.RetrievalHit, error) {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return nil, nil
	}

	textQuery := bleve.NewMatchQuery(trimmed)
	textQuery.SetField(fieldContent)

	combined, err := buildConjunction(textQuery, f)
	if err != nil {
		return nil, fmt.Errorf("bleve: %w", err)
	}

	req := bleve.NewSearchRequestOptions(combined, limit, 0, false)
	req.Fields = storedFields

	res, err := idx.bleveIndex.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve: search failed: %w", err)
	}

	hits := make([]domain.RetrievalHit, 0, len(res.Hits))
	for i, h := range res.Hits {
		hits = append(hits, domain.RetrievalHit{
			DocID:      asString(h.Fields[fieldDocID]),
			InternalID: h.ID,
			Score:      h.Score,
			Rank:       i + 1,
			Content:    asString(h.Fields[fieldContent]),
			Payload: domain.DocumentPayload{
				DocID:       asString(h.Fields[fieldDocID]),
				TenantID:    asString(h.Fields[fieldTenantID]),
				Source:      asString(h.Fields[fieldSource]),
				URL:         asString(h.Fields[fieldURL]),
				FilePath:    asString(h.Fields[fieldFilePath]),
				DocTitle:    asString(h.Fields[fieldDocTitle]),
				SectionPath: asString(h.Fields[fieldSectionPath]),
				Header:      asString(h.Fields[fieldHeader]),
			},
		})
	}
	return hits, nil
}

func buildConjunction(base query.Query, f domain.Filter) (query.Query, error) {
	queries := []query.Query{base}
	if f == nil {
		return bleve.NewConjunctionQuery(queries...), nil
	}
	expr, ok := f.(filter.Expr)
	if !ok {
		return nil, fmt.Errorf("unsupported filter type %T", f)
	}
	for _, leaf := range filter.Flatten(expr) {
		q, err := leafToQuery(leaf)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return bleve.NewConjunctionQuery(queries...), nil
}

func leafToQuery(leaf filter.Leaf) (query.Query, error) {
	switch leaf.Op {
	case filter.OpEQ:
		term := bleve.NewTermQuery(fmt.Sprint(leaf.Value))
		term.SetField(leaf.Field)
		return term, nil
	case filter.OpIn, filter.OpIntersects:
		values, ok := leaf.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("expected []string for %s on %s", leaf.Op, leaf.Field)
		}
		if len(values) == 0 {
			return bleve.NewMatchNoneQuery(), nil
		}
		disjuncts := make([]query.Query, len(values))
		for i, v := range values {
			term := bleve.NewTermQuery(v)
			term.SetField(leaf.Field)
			disjuncts[i] = term
		}
		return bleve.NewDisjunctionQuery(disjuncts...), nil
	default:
		return nil, fmt.Errorf("unsupported filter predicate %s on %s", leaf.Op, leaf.Field)
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
