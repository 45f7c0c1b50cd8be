package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLexiconSkills(t *testing.T) {
	e := NewExtractor(NewLexicon([]string{"Python", "Django", "Flask"}), nil)

	rec := e.Extract("Experienced Python developer, strong in Django and Flask.")

	assert.Equal(t, []string{"django", "flask", "python"}, rec.Skills)
}

func TestExtractCaseInsensitive(t *testing.T) {
	e := NewExtractor(NewLexicon([]string{"python"}), nil)

	rec := e.Extract("PYTHON and more Python")

	assert.Equal(t, []string{"python"}, rec.Skills)
}

func TestExtractNoSubstringFalsePositives(t *testing.T) {
	e := NewExtractor(NewLexicon([]string{"java", "javascript"}), nil)

	rec := e.Extract("Built frontends in JavaScript only.")

	assert.Equal(t, []string{"javascript"}, rec.Skills)
	assert.NotContains(t, rec.Skills, "java")
}

func TestExtractMultiWordSkillContiguous(t *testing.T) {
	e := NewExtractor(NewLexicon([]string{"machine learning"}), nil)

	hit := e.Extract("Applied machine learning at scale.")
	miss := e.Extract("machine assisted deep learning")

	assert.Equal(t, []string{"machine learning"}, hit.Skills)
	assert.Empty(t, miss.Skills)
}

func TestExtractSymbolTokens(t *testing.T) {
	e := NewExtractor(NewLexicon([]string{"c++", "c#", "node.js"}), nil)

	rec := e.Extract("Services in C++ and Node.js, some C# tooling.")

	assert.Equal(t, []string{"c#", "c++", "node.js"}, rec.Skills)
}

func TestExtractTrailingPunctuation(t *testing.T) {
	e := NewExtractor(NewLexicon([]string{"django"}), nil)

	rec := e.Extract("Five years of Django.")

	assert.Equal(t, []string{"django"}, rec.Skills)
}

func TestExtractRoles(t *testing.T) {
	e := NewExtractor(DefaultLexicon(), nil)

	rec := e.Extract("Python Developer, previously a data Analyst.")

	assert.Equal(t, []string{"analyst", "developer"}, rec.Roles)
}

func TestExtractDeterminism(t *testing.T) {
	e := NewExtractor(DefaultLexicon(), nil)
	text := "Python and Django engineer, Python again, Docker and SQL."

	first := e.Extract(text)
	second := e.Extract(text)

	assert.Equal(t, first.Skills, second.Skills)
	assert.Equal(t, first.Roles, second.Roles)
	assert.Equal(t, text, first.CleanText)
}

func TestExtractPlaceholderIgnored(t *testing.T) {
	e := NewExtractor(DefaultLexicon(), nil)

	rec := e.Extract("[MASKED_ENTITY] is a Python engineer from [MASKED_ENTITY].")

	assert.Contains(t, rec.Skills, "python")
	assert.NotContains(t, rec.Skills, "masked_entity")
}

func TestLoadLexiconFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.csv")
	content := "name\nPython\nMachine Learning\n\nDjango\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	names, err := LoadLexiconFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Machine Learning", "Django"}, names)

	lex := NewLexicon(names)
	assert.Equal(t, 3, lex.Size())
}

func TestLoadLexiconFileMissing(t *testing.T) {
	_, err := LoadLexiconFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
