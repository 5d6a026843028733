package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pulsedeck/internal/model"
)

func economyRules() []Rule {
	return []Rule{
		{Category: "Economy", Tematicas: []Tematica{
			{Name: "Inflation", Keywords: []string{"inflación", "  "}},
			{Name: "Jobs", Keywords: []string{"empleo"}},
		}},
		{Category: "Politics", Tematicas: []Tematica{
			{Name: "Congress", Keywords: []string{"CONGRESO", "inflación"}},
			{Name: "Empty", Keywords: nil},
		}},
	}
}

func TestClassify_ScenarioB(t *testing.T) {
	records := []model.Record{{HitSentence: "", Keywords: "inflación alta"}}
	rules := []Rule{{Category: "Economy", Tematicas: []Tematica{{Name: "Inflation", Keywords: []string{"inflación"}}}}}

	withoutFallback := append([]model.Record(nil), records...)
	stats := Classify(withoutFallback, rules, Options{})
	assert.Equal(t, model.DefaultUnclassified, withoutFallback[0].Categoria, "pass 1 must not match the keywords field")
	assert.Equal(t, 0, stats.Pass1)
	assert.Equal(t, 1, stats.Unclassified)

	stats = Classify(records, rules, Options{UseKeywords: true})
	assert.Equal(t, "Economy", records[0].Categoria)
	assert.Equal(t, "Inflation", records[0].Tematica)
	assert.Equal(t, Stats{Pass1: 0, Pass2: 1, Unclassified: 0}, stats)
}

func TestClassify_FirstRuleWins(t *testing.T) {
	records := []model.Record{
		{HitSentence: "La INFLACIÓN sube"},
		{HitSentence: "debate en el congreso"},
		{HitSentence: "nada relevante"},
	}

	stats := Classify(records, economyRules(), Options{Default: "N/A"})

	got := [][2]string{}
	for _, r := range records {
		got = append(got, [2]string{r.Categoria, r.Tematica})
	}
	want := [][2]string{
		{"Economy", "Inflation"},
		{"Politics", "Congress"},
		{"N/A", "N/A"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("classification mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, stats.Pass1)
	assert.Equal(t, 1, stats.Unclassified)
}

func TestClassify_Idempotent(t *testing.T) {
	records := []model.Record{
		{HitSentence: "inflación y empleo"},
		{HitSentence: "congreso"},
		{HitSentence: "otro tema", Keywords: "empleo"},
	}
	opts := Options{UseKeywords: true}
	Classify(records, economyRules(), opts)

	snapshot := append([]model.Record(nil), records...)
	stats := Classify(records, economyRules(), opts)

	if diff := cmp.Diff(snapshot, records); diff != "" {
		t.Errorf("second run changed records (-first +second):\n%s", diff)
	}
	assert.Zero(t, stats.Pass1)
	assert.Zero(t, stats.Pass2)
}

func TestClassify_KeywordPassNeverOverwrites(t *testing.T) {
	records := []model.Record{
		{HitSentence: "sesión del congreso", Keywords: "inflación"},
	}

	stats := Classify(records, economyRules(), Options{UseKeywords: true})

	assert.Equal(t, "Politics", records[0].Categoria)
	assert.Equal(t, "Congress", records[0].Tematica)
	assert.Equal(t, 1, stats.Pass1)
	assert.Equal(t, 0, stats.Pass2)
}

func TestClassify_RespectsExistingValues(t *testing.T) {
	records := []model.Record{
		{HitSentence: "inflación", Categoria: "Manual", Tematica: "Curated"},
		{HitSentence: "inflación", Categoria: "Manual"},
	}

	Classify(records, economyRules(), Options{})

	assert.Equal(t, "Manual", records[0].Categoria)
	assert.Equal(t, "Curated", records[0].Tematica)
	assert.Equal(t, "Manual", records[1].Categoria)
	assert.Equal(t, "Inflation", records[1].Tematica)
}

func TestParseRules_JSONAndDefaults(t *testing.T) {
	data := []byte(`[
		{"category": "Economy", "tematicas": [{"name": "Inflation", "keywords": ["precios"]}]},
		{"category": "", "tematicas": [{"keywords": ["misc"]}]}
	]`)

	rules, err := ParseRules(data)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, DefaultCategory, rules[1].Category)
	assert.Equal(t, DefaultTematica, rules[1].Tematicas[0].Name)
	assert.Equal(t, []string{"Economy", DefaultCategory}, Categories(rules))
}

func TestLoadRules_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
- category: Salud
  tematicas:
    - name: Vacunas
      keywords: [vacuna, "dosis"]
- category: Salud
  tematicas:
    - name: Hospitales
      keywords: [hospital]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, []string{"vacuna", "dosis"}, rules[0].Tematicas[0].Keywords)
	assert.Equal(t, []string{"Salud"}, Categories(rules))

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
