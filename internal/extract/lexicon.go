package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Lexicon is the controlled skills vocabulary (ESCO-style). An entry matches
// a text iff its token sequence appears contiguously; there is no fuzzy or
// partial matching, so "java" never fires inside "javascript".
type Lexicon struct {
	byTokens map[string]string // joined token form -> canonical name
	maxLen   int               // longest entry, in tokens
}

// Starter vocabulary used when no lexicon file is configured.
var defaultSkills = []string{
	"python", "django", "flask", "javascript", "developer", "engineer",
	"java", "go", "sql", "postgresql", "docker", "kubernetes", "react",
	"node.js", "c++", "c#", "machine learning", "data analysis",
}

func NewLexicon(names []string) *Lexicon {
	l := &Lexicon{byTokens: make(map[string]string, len(names))}
	for _, name := range names {
		canonical := strings.ToLower(strings.TrimSpace(name))
		if canonical == "" {
			continue
		}
		tokens := tokenize(canonical)
		if len(tokens) == 0 {
			continue
		}
		l.byTokens[strings.Join(tokens, " ")] = canonical
		if len(tokens) > l.maxLen {
			l.maxLen = len(tokens)
		}
	}
	return l
}

func DefaultLexicon() *Lexicon {
	return NewLexicon(defaultSkills)
}

// LoadLexiconFile reads skill names from the first CSV column, tolerating a
// header row. Falls back to nothing: an unreadable file is the caller's call.
func LoadLexiconFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}

	names := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if i == 0 && isLexiconHeader(name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("lexicon file %s contains no skill names", path)
	}
	return names, nil
}

func isLexiconHeader(field string) bool {
	switch strings.ToLower(field) {
	case "name", "skill", "skills", "skill_name", "preferredlabel":
		return true
	}
	return false
}

func (l *Lexicon) match(joinedTokens string) (string, bool) {
	canonical, ok := l.byTokens[joinedTokens]
	return canonical, ok
}

func (l *Lexicon) Size() int {
	return len(l.byTokens)
}

// tokenize lower-cases and splits on separators, keeping + # . inside tokens
// so entries like c++, c# and node.js survive. Sentence punctuation at token
// edges is trimmed.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := strings.Trim(b.String(), ".")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		b.Reset()
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
