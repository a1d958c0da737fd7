// Package citation turns packed context documents into a numbered
// bibliography, validates that an LLM-generated answer only cites numbers
// that actually exist, and computes document freshness.
package citation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/tenant"
)

// Builder extracts and validates citations against a tenant's freshness
// policy.
type Builder struct {
	Freshness tenant.FreshnessConfig
	Now       func() time.Time
}

// New builds a Builder from a resolved tenant freshness configuration.
func New(cfg tenant.FreshnessConfig) *Builder {
	return &Builder{Freshness: cfg, Now: time.Now}
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// ExtractCitations builds the numbered bibliography for a packed context's
// selected documents. Numbering matches packing order (1-based), which is
// also the order in which "[Document i]" headers appear in the prompt, so
// the numbers an LLM sees in context are exactly the numbers it must cite.
func (b *Builder) ExtractCitations(docs []domain.RerankedHit) map[int]domain.Citation {
	out := make(map[int]domain.Citation, len(docs))
	for i, doc := range docs {
		number := i + 1
		out[number] = domain.Citation{
			Number:    number,
			DocID:     doc.DocID,
			Source:    resolveSource(doc.Payload),
			URL:       doc.Payload.URL,
			FilePath:  doc.Payload.FilePath,
			Version:   doc.Payload.Version,
			Authors:   doc.Payload.Authors,
			Freshness: b.computeFreshness(doc.Payload),
		}
	}
	return out
}

// resolveSource picks the best human-readable source label, preferring
// URL, then file path, then doc ID, then falling back to the raw source
// field reported by the retrieval backend.
func resolveSource(payload domain.DocumentPayload) string {
	switch {
	case payload.URL != "":
		return payload.URL
	case payload.FilePath != "":
		return payload.FilePath
	case payload.DocID != "":
		return payload.DocID
	default:
		return payload.Source
	}
}

// computeFreshness buckets a document's age using ModifiedAt, falling back
// to CreatedAt when ModifiedAt is absent. Documents with neither timestamp
// get no freshness info at all.
func (b *Builder) computeFreshness(payload domain.DocumentPayload) *domain.FreshnessInfo {
	ts := payload.ModifiedAt
	if ts == nil {
		ts = payload.CreatedAt
	}
	if ts == nil {
		return nil
	}

	ageDays := int(b.now().Sub(*ts).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}

	freshDays := b.Freshness.FreshDays
	recentDays := b.Freshness.RecentDays

	var category domain.FreshnessCategory
	var badge string
	switch {
	case ageDays <= freshDays:
		category = domain.FreshnessFresh
		badge = "🟢"
	case ageDays <= recentDays:
		category = domain.FreshnessRecent
		badge = "🟡"
	default:
		category = domain.FreshnessStale
		badge = "🔴"
	}

	return &domain.FreshnessInfo{
		AgeDays:       ageDays,
		Category:      category,
		HumanReadable: humanAge(ageDays),
		Badge:         badge,
	}
}

func humanAge(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := days / 365
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// citationMarker matches both "[1]" and "[^1]" inline citation styles.
var citationMarker = regexp.MustCompile(`\[\^?(\d+)\]`)

// ValidateCitations reports whether every citation marker referenced in
// answerText exists in citations. An answer that cites a number outside the
// bibliography is considered invalid: the LLM hallucinated a source.
func ValidateCitations(answerText string, citations map[int]domain.Citation) bool {
	for _, match := range citationMarker.FindAllStringSubmatch(answerText, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if _, ok := citations[n]; !ok {
			return false
		}
	}
	return true
}

// CitedNumbers returns the set of citation numbers actually referenced in
// answerText, in first-occurrence order.
func CitedNumbers(answerText string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, match := range citationMarker.FindAllStringSubmatch(answerText, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Bibliography renders the markdown "Sources" section appended after the
// synthesized answer, ordered by citation number ascending.
func Bibliography(citations map[int]domain.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	numbers := make([]int, 0, len(citations))
	for n := range citations {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var b strings.Builder
	b.WriteString("\n\n## Sources\n")
	for _, n := range numbers {
		c := citations[n]
		b.WriteString(fmt.Sprintf("\n%d. %s", n, renderEntry(c)))
	}
	return b.String()
}

func renderEntry(c domain.Citation) string {
	var b strings.Builder

	label := c.Source
	if label == "" {
		label = c.DocID
	}
	if c.URL != "" {
		b.WriteString(fmt.Sprintf("[%s](%s)", label, c.URL))
	} else {
		b.WriteString(label)
	}

	if len(c.Authors) > 0 {
		b.WriteString(fmt.Sprintf(" — %s", strings.Join(c.Authors, ", ")))
	}
	if c.Version != "" {
		b.WriteString(fmt.Sprintf(" (v%s)", c.Version))
	}
	if c.Freshness != nil {
		b.WriteString(fmt.Sprintf(" %s %s", c.Freshness.Badge, c.Freshness.HumanReadable))
	}

	return b.String()
}
