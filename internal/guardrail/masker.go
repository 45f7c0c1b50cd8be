package guardrail

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"talent-graph/internal/apperror"
)

// Placeholder is the fixed literal written over every protected span. It
// carries no residual information from the original text.
const Placeholder = "[MASKED_ENTITY]"

// Span is one recognized entity occurrence. Start/End are byte offsets into
// the original UTF-8 text, End exclusive.
type Span struct {
	Start    int
	End      int
	Category string
}

// Recognizer is the pluggable entity-recognition backend. Any NER capable of
// returning labeled spans for a text satisfies it.
type Recognizer interface {
	Detect(ctx context.Context, text string) ([]Span, error)
}

// Masker removes protected-attribute spans from free text before anything
// downstream sees it. The category set comes from guardrail config at
// startup; masking must run before extraction, embedding, or storage.
type Masker struct {
	recognizer Recognizer
	categories map[string]struct{}
}

func NewMasker(recognizer Recognizer, categories []string) *Masker {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return &Masker{recognizer: recognizer, categories: set}
}

// Mask replaces every recognized span whose category is protected with
// Placeholder and reports how many regions were masked. The returned text is
// the only form of the document allowed to reach storage or the embedder.
// A recognizer failure aborts the document; callers must not fall back to
// the unmasked input.
func (m *Masker) Mask(ctx context.Context, text string) (string, int, error) {
	if text == "" {
		return "", 0, nil
	}

	detected, err := m.recognizer.Detect(ctx, text)
	if err != nil {
		return "", 0, apperror.ExtractionUnavailable(err)
	}

	spans := make([]Span, 0, len(detected))
	for _, s := range detected {
		if _, ok := m.categories[strings.ToUpper(s.Category)]; !ok {
			continue
		}
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
			return "", 0, apperror.ExtractionUnavailable(
				fmt.Errorf("recognizer returned invalid span [%d:%d) for text of length %d", s.Start, s.End, len(text)))
		}
		spans = append(spans, s)
	}
	if len(spans) == 0 {
		return text, 0, nil
	}

	merged := mergeSpans(spans)

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range merged {
		b.WriteString(text[last:s.Start])
		b.WriteString(Placeholder)
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String(), len(merged), nil
}

// mergeSpans collapses overlapping spans into their union so each protected
// region maps to exactly one placeholder.
func mergeSpans(spans []Span) []Span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		cur := &merged[len(merged)-1]
		if s.Start < cur.End {
			if s.End > cur.End {
				cur.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
