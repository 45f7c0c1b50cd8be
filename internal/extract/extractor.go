package extract

import (
	"sort"
	"strings"
)

// DefaultRoleKeywords is the fixed role-title list checked by token
// membership.
var DefaultRoleKeywords = []string{"developer", "engineer", "analyst"}

// Record is the normalized output of extraction: the guardrail-compliant
// text plus the skills and role mentions found in it. Skills and Roles are
// deduplicated and sorted, so equal inputs always produce equal records.
type Record struct {
	CleanText string
	Skills    []string
	Roles     []string
}

// Extractor finds controlled-vocabulary skills and role mentions in masked
// text. It performs no masking of its own: callers must only hand it text
// that already went through the guardrail masker.
type Extractor struct {
	lexicon *Lexicon
	roles   map[string]struct{}
}

func NewExtractor(lexicon *Lexicon, roleKeywords []string) *Extractor {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	if len(roleKeywords) == 0 {
		roleKeywords = DefaultRoleKeywords
	}
	roles := make(map[string]struct{}, len(roleKeywords))
	for _, r := range roleKeywords {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			roles[r] = struct{}{}
		}
	}
	return &Extractor{lexicon: lexicon, roles: roles}
}

func (e *Extractor) Extract(maskedText string) Record {
	tokens := tokenize(maskedText)

	skillSet := make(map[string]struct{})
	for i := range tokens {
		maxN := e.lexicon.maxLen
		if rest := len(tokens) - i; rest < maxN {
			maxN = rest
		}
		for n := 1; n <= maxN; n++ {
			joined := strings.Join(tokens[i:i+n], " ")
			if canonical, ok := e.lexicon.match(joined); ok {
				skillSet[canonical] = struct{}{}
			}
		}
	}

	roleSet := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := e.roles[tok]; ok {
			roleSet[tok] = struct{}{}
		}
	}

	return Record{
		CleanText: maskedText,
		Skills:    sortedKeys(skillSet),
		Roles:     sortedKeys(roleSet),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
