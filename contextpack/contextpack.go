// Package contextpack assembles a token-budgeted prompt context out of
// reranked retrieval candidates: greedy selection under per-document and
// per-section caps, a novelty filter to avoid near-duplicate sections, and
// a hard token budget that the packer never exceeds.
package contextpack

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/tenant"
)

// TokenCounter estimates the token cost of a rendered text block. See
// tokenizer.TextEstimator for the concrete adapter used in production.
type TokenCounter interface {
	EstimateText(ctx context.Context, text string) (int, error)
}

// charsPerTokenFallback is used only when no TokenCounter is configured;
// it is a coarse approximation, never the production path.
const charsPerTokenFallback = 3.5

// Policy is the resolved packing policy for a single request.
type Policy struct {
	MaxContextTokens   int
	PerDocCap          int
	PerSectionCap      int
	NoveltyAlpha       float64
	AnswerabilityBonus float64
}

// FromConfig builds a Policy from a resolved tenant context configuration.
func FromConfig(cfg tenant.ContextConfig) Policy {
	return Policy{
		MaxContextTokens:   cfg.MaxContextTokens,
		PerDocCap:          cfg.PerDocCap,
		PerSectionCap:      cfg.PerSectionCap,
		NoveltyAlpha:       cfg.NoveltyAlpha,
		AnswerabilityBonus: cfg.AnswerabilityBonus,
	}
}

// Packer greedily selects and renders reranked hits into a single prompt
// context string under a token budget.
type Packer struct {
	Counter TokenCounter
	Logger  *slog.Logger
}

// New builds a Packer around a token counter. A nil counter falls back to
// a char-count heuristic; production callers should always supply one (see
// tokenizer.Tiktoken).
func New(counter TokenCounter, logger *slog.Logger) *Packer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packer{Counter: counter, Logger: logger}
}

func (p *Packer) countTokens(ctx context.Context, text string) int {
	if p.Counter != nil {
		n, err := p.Counter.EstimateText(ctx, text)
		if err == nil {
			return n
		}
		p.logger().Warn("token counter failed, falling back to char heuristic", "error", err)
	}
	return int(float64(len(text))/charsPerTokenFallback) + 1
}

func (p *Packer) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// docGroup accumulates every selected section belonging to one document, in
// the order sections were accepted, so a reunification pass can merge them
// under a single citation number instead of fragmenting one source across
// several "[Document i]" blocks.
type docGroup struct {
	docID          string
	representative domain.RerankedHit
	sections       []domain.RerankedHit
}

// Pack runs the greedy six-step selection:
//  1. order candidates by effective score (rerank score, with an
//     answerability bonus applied to the single best-scoring candidate so
//     it survives later caps/novelty pruning);
//  2. enforce a per-document cap on number of sections;
//  3. enforce a per-section(-path) cap, relaxed when sections are
//     contiguous by OrderIndex (a contiguous run reads as one unit);
//  4. drop near-duplicate sections via a novelty filter;
//  5. accumulate under the token budget, truncating the first accepted
//     document rather than emitting nothing if even it does not fit;
//  6. reunify sections belonging to the same document under one citation
//     number and render "[Document i] (Source: ...)" headers.
func (p *Packer) Pack(ctx context.Context, query string, hits []domain.RerankedHit, policy Policy, withTrace bool) domain.PackedContext {
	ordered := orderByEffectiveScore(hits, policy.AnswerabilityBonus)

	var trace *domain.PackingTrace
	if withTrace {
		trace = &domain.PackingTrace{
			Rejected:     make(map[string]domain.DropReason),
			TokensPerDoc: make(map[string]int),
		}
	}

	groups := make([]*docGroup, 0, len(ordered))
	groupByDoc := make(map[string]*docGroup)
	perDocCount := make(map[string]int)
	var selectedTexts []string

	budget := policy.MaxContextTokens
	usedTokens := 0
	truncated := false

	for _, hit := range ordered {
		docID := hit.DocID

		if policy.PerDocCap > 0 && perDocCount[docID] >= policy.PerDocCap {
			reject(trace, hit, domain.DropPerDocCap)
			continue
		}

		if policy.PerSectionCap > 0 {
			g := groupByDoc[docID]
			if g != nil && !contiguous(g.sections, hit) {
				sameSection := 0
				for _, s := range g.sections {
					if s.Payload.SectionPath == hit.Payload.SectionPath {
						sameSection++
					}
				}
				if sameSection >= policy.PerSectionCap {
					reject(trace, hit, domain.DropPerSectionCap)
					continue
				}
			}
		}

		if isNearDuplicate(hit.Content, selectedTexts, policy.NoveltyAlpha) {
			reject(trace, hit, domain.DropNovelty)
			continue
		}

		tentative := renderSection(hit)
		tokens := p.countTokens(ctx, tentative)

		if usedTokens+tokens > budget {
			if len(groups) == 0 && len(selectedTexts) == 0 {
				// Nothing selected yet: truncate this first candidate to
				// whatever room remains rather than emit an empty context.
				remaining := budget - usedTokens
				if remaining <= 0 {
					reject(trace, hit, domain.DropBudget)
					break
				}
				hit.Content = truncateToTokens(p, ctx, hit.Content, remaining)
				tentative = renderSection(hit)
				tokens = p.countTokens(ctx, tentative)
				for tokens > remaining && hit.Content != "" {
					hit.Content = truncateToTokens(p, ctx, hit.Content, p.countTokens(ctx, hit.Content)-(tokens-remaining))
					tentative = renderSection(hit)
					tokens = p.countTokens(ctx, tentative)
				}
				if tokens > remaining {
					reject(trace, hit, domain.DropBudget)
					break
				}
				truncated = true
			} else {
				reject(trace, hit, domain.DropBudget)
				continue
			}
		}

		usedTokens += tokens
		perDocCount[docID]++
		selectedTexts = append(selectedTexts, hit.Content)

		g, ok := groupByDoc[docID]
		if !ok {
			g = &docGroup{docID: docID, representative: hit}
			groupByDoc[docID] = g
			groups = append(groups, g)
		}
		g.sections = append(g.sections, hit)

		if trace != nil {
			trace.SelectedDocIDs = append(trace.SelectedDocIDs, docID)
			trace.TokensPerDoc[docID] += tokens
		}
	}

	text, selectedDocs, perDocTokens := renderDocuments(p, ctx, groups)

	return domain.PackedContext{
		Text:         text,
		SelectedDocs: selectedDocs,
		TokensUsed:   usedTokens,
		Truncated:    truncated,
		PerDocTokens: perDocTokens,
		Trace:        trace,
	}
}

func reject(trace *domain.PackingTrace, hit domain.RerankedHit, reason domain.DropReason) {
	if trace == nil {
		return
	}
	key := hit.DocID + "#" + hit.Payload.SectionPath
	trace.Rejected[key] = reason
}

// orderByEffectiveScore sorts hits by rerank score descending, tie-breaking
// by DocID, then boosts the single top candidate by the configured
// answerability bonus so it is the last thing the budget or caps can evict.
func orderByEffectiveScore(hits []domain.RerankedHit, bonus float64) []domain.RerankedHit {
	out := make([]domain.RerankedHit, len(hits))
	copy(out, hits)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RerankScore != out[j].RerankScore {
			return out[i].RerankScore > out[j].RerankScore
		}
		return out[i].DocID < out[j].DocID
	})

	if len(out) > 0 && bonus != 0 {
		out[0].RerankScore += bonus
	}

	return out
}

// contiguous reports whether candidate's OrderIndex immediately follows the
// last accepted section for the same document, in which case the
// per-section cap is relaxed: a contiguous run of sections from one
// document reads as a single unit, not N separate sections.
func contiguous(accepted []domain.RerankedHit, candidate domain.RerankedHit) bool {
	if len(accepted) == 0 {
		return false
	}
	last := accepted[len(accepted)-1]
	return candidate.Payload.OrderIndex == last.Payload.OrderIndex+1
}

// isNearDuplicate reports whether content's token-shingle overlap with any
// already-selected text exceeds the novelty tolerance. noveltyAlpha is the
// minimum required novelty (1 - similarity); a candidate whose similarity
// to any accepted section exceeds (1 - noveltyAlpha) is dropped.
func isNearDuplicate(content string, accepted []string, noveltyAlpha float64) bool {
	if len(accepted) == 0 || noveltyAlpha <= 0 {
		return false
	}
	threshold := 1 - noveltyAlpha
	shingles := shingleSet(content)
	if len(shingles) == 0 {
		return false
	}
	for _, other := range accepted {
		sim := jaccard(shingles, shingleSet(other))
		if sim > threshold {
			return true
		}
	}
	return false
}

func shingleSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	const shingleSize = 3
	set := make(map[string]struct{})
	if len(words) < shingleSize {
		for _, w := range words {
			set[w] = struct{}{}
		}
		return set
	}
	for i := 0; i+shingleSize <= len(words); i++ {
		set[strings.Join(words[i:i+shingleSize], " ")] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func truncateToTokens(p *Packer, ctx context.Context, content string, remainingTokens int) string {
	if remainingTokens <= 0 {
		return ""
	}
	lo, hi := 0, len(content)
	best := ""
	for lo <= hi {
		mid := (lo + hi) / 2
		candidate := content[:mid]
		if p.countTokens(ctx, candidate) <= remainingTokens {
			best = candidate
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

func renderSection(hit domain.RerankedHit) string {
	if hit.Payload.Header != "" {
		return hit.Payload.Header + "\n" + hit.Content
	}
	return hit.Content
}

// renderDocuments reunifies selected sections by document and renders the
// final "[Document i] (Source: ...)" blocks, returning the assembled text,
// the flattened representative hit list (one per numbered document, used
// for citation numbering), and per-document token totals.
func renderDocuments(p *Packer, ctx context.Context, groups []*docGroup) (string, []domain.RerankedHit, map[string]int) {
	var b strings.Builder
	selectedDocs := make([]domain.RerankedHit, 0, len(groups))
	perDocTokens := make(map[string]int)

	for i, g := range groups {
		number := i + 1
		sort.SliceStable(g.sections, func(a, bIdx int) bool {
			return g.sections[a].Payload.OrderIndex < g.sections[bIdx].Payload.OrderIndex
		})

		source := sourceLabel(g.representative.Payload)
		b.WriteString(fmt.Sprintf("[Document %d] (Source: %s)\n", number, source))

		var sectionTexts []string
		for _, s := range g.sections {
			sectionTexts = append(sectionTexts, renderSection(s))
		}
		body := strings.Join(sectionTexts, "\n...\n")
		b.WriteString(body)
		b.WriteString("\n\n")

		perDocTokens[g.docID] = p.countTokens(ctx, body)

		merged := g.representative
		if len(sectionTexts) > 1 {
			merged.Content = body
		}
		selectedDocs = append(selectedDocs, merged)
	}

	return strings.TrimRight(b.String(), "\n"), selectedDocs, perDocTokens
}

func sourceLabel(payload domain.DocumentPayload) string {
	switch {
	case payload.URL != "":
		return payload.URL
	case payload.FilePath != "":
		return payload.FilePath
	case payload.DocTitle != "":
		return payload.DocTitle
	default:
		return payload.DocID
	}
}
