// Package classifier enriches chunks with a category, priority, summary,
// and tag set derived from keyword-rule scoring. It is the rule-based
// counterpart of an LLM classifier and serves as the default.
package classifier

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

const (
	// mediumLengthThreshold is the content length in characters above
	// which a chunk without urgency markers is ranked medium priority.
	mediumLengthThreshold = 2000

	// summaryLimit caps the generated summary length in characters.
	summaryLimit = 100

	// maxTags caps the number of extracted tags.
	maxTags = 5

	// wordsPerConfidenceUnit normalises the confidence score against
	// text length. Confidence is not bounded above by 1.
	wordsPerConfidenceUnit = 100
)

// categoryKeywords holds the keyword list scored against lower-cased
// text for each category. Categories are evaluated in the order of
// domain.AllCategories, so ties resolve to the earlier category.
var categoryKeywords = map[domain.Category][]string{
	domain.CategoryWork:      {"project", "meeting", "deadline", "task", "client", "report", "requirement"},
	domain.CategoryStudy:     {"learn", "tutorial", "course", "lecture", "lesson", "exercise", "exam"},
	domain.CategoryPersonal:  {"diary", "journal", "family", "holiday", "health", "personal", "friend"},
	domain.CategoryReference: {"reference", "manual", "guide", "documentation", "specification", "standard", "glossary"},
	domain.CategoryResearch:  {"research", "analysis", "experiment", "hypothesis", "dataset", "conclusion", "finding"},
	domain.CategoryIdeas:     {"idea", "brainstorm", "concept", "draft", "proposal", "sketch", "inspiration"},
}

// urgencyMarkers promote a chunk to high priority when any appears in
// the lower-cased text.
var urgencyMarkers = []string{"urgent", "important", "asap", "critical"}

// stopwords are excluded from tag extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "if": true, "then": true, "else": true, "for": true,
	"of": true, "to": true, "in": true, "on": true, "at": true,
	"by": true, "with": true, "from": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "it": true,
	"its": true, "this": true, "that": true, "these": true, "those": true,
	"as": true, "not": true, "no": true, "we": true, "you": true,
	"they": true, "he": true, "she": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "can": true, "could": true, "should": true,
}

// tagPunctuation is trimmed from token edges before tag counting.
const tagPunctuation = ".,!?;:\"'()[]{}<>-*_`#"

// Classification is the result of scoring a piece of text.
type Classification struct {
	Category   domain.Category
	Priority   domain.Priority
	Summary    string
	Tags       []string
	Confidence float64
}

// Processor classifies chunk content using fixed keyword rules.
// It implements the driven.PostProcessor interface.
type Processor struct{}

// New creates a new classifier processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "classifier"
}

// Process classifies each chunk and writes the result into its
// metadata. The chunks themselves must already exist; a classifier
// never creates or removes chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		c := p.Classify(chunks[i].Content)
		chunks[i].Metadata.Category = c.Category
		chunks[i].Metadata.Priority = c.Priority
		chunks[i].Metadata.Summary = c.Summary
		chunks[i].Metadata.Tags = c.Tags
		if chunks[i].Metadata.Custom == nil {
			chunks[i].Metadata.Custom = make(map[string]string)
		}
		chunks[i].Metadata.Custom["confidence"] = strconv.FormatFloat(c.Confidence, 'f', -1, 64)
	}
	return chunks, nil
}

// Classify scores text against the category keyword lists and derives
// priority, summary, tags, and a confidence value. Every occurrence of
// a keyword counts, so a keyword repeated three times scores 3.
//
// The confidence is the winning occurrence count divided by
// max(word_count/100, 1). Keyword-dense short texts can push it above
// 1, so callers must not treat it as a probability.
func (p *Processor) Classify(text string) Classification {
	lower := strings.ToLower(text)

	category := domain.DefaultCategory
	winning := 0
	for _, cat := range domain.AllCategories() {
		score := 0
		for _, keyword := range categoryKeywords[cat] {
			score += strings.Count(lower, keyword)
		}
		if score > winning {
			winning = score
			category = cat
		}
	}

	priority := domain.PriorityLow
	switch {
	case containsAny(lower, urgencyMarkers):
		priority = domain.PriorityHigh
	case len(text) > mediumLengthThreshold:
		priority = domain.PriorityMedium
	}

	wordCount := len(strings.Fields(text))
	denom := math.Max(float64(wordCount)/wordsPerConfidenceUnit, 1)
	confidence := math.Round(float64(winning)/denom*1000) / 1000

	return Classification{
		Category:   category,
		Priority:   priority,
		Summary:    summarise(text),
		Tags:       extractTags(text),
		Confidence: confidence,
	}
}

// containsAny reports whether any marker appears in the text.
func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// summarise truncates text to the summary limit, appending an ellipsis
// when content was cut.
func summarise(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit]) + "..."
}

// extractTags returns the top-5 most frequent non-stopword tokens.
// Ties are broken by first occurrence order.
func extractTags(text string) []string {
	freq := make(map[string]int)
	var order []string

	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, tagPunctuation)
		if len(word) <= 1 || stopwords[strings.ToLower(word)] {
			continue
		}
		if _, seen := freq[word]; !seen {
			order = append(order, word)
		}
		freq[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > maxTags {
		order = order[:maxTags]
	}
	return order
}
