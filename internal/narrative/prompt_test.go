package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Acme", []string{"uno", "dos"})

	assert.Contains(t, p, "menciones de redes sociales sobre Acme.")
	assert.Contains(t, p, `"hallazgos_destacados": "..."`)
	assert.True(t, strings.HasSuffix(p, "A continuación, las menciones:\nuno\ndos\n"))
}

func TestExtractJSON(t *testing.T) {
	raw, ok := ExtractJSON("Aquí tienes:\n```json\n{\"a\": {\"b\": 1}}\n```")
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, raw)

	_, ok = ExtractJSON("no hay objeto")
	assert.False(t, ok)
}

func TestRender_FormatsAnalysis(t *testing.T) {
	reply := `{
		"temas_principales": [
			{"tema": "Servicio", "descripcion": "Quejas por demoras."},
			{"tema": "Precio", "descripcion": "Comparaciones con la competencia."}
		],
		"sentimiento_general": {
			"positivo": {"porcentaje": 20, "ejemplo": "Buen trato"},
			"negativo": {"porcentaje": "50%", "ejemplo": "Muy lento"},
			"neutro": {"porcentaje": 30.5, "ejemplo": "Consulta de horarios"}
		},
		"hallazgos_destacados": "Pico de quejas el lunes."
	}`

	got, ok := Render(reply)
	assert.True(t, ok)

	want := strings.Join([]string{
		"* Temas Principales:\n",
		"1. Servicio\nQuejas por demoras.\n",
		"2. Precio\nComparaciones con la competencia.\n",
		"* Sentimiento General",
		"Positivo: Buen trato (20%)",
		"Neutro: Consulta de horarios (30.5%)",
		"Negativo: Muy lento (50%)",
		"\n* Hallazgos destacados:\nPico de quejas el lunes.",
	}, "\n\n")
	assert.Equal(t, want, got)
}

func TestRender_MissingPolarityIsSkipped(t *testing.T) {
	got, ok := Render(`{"sentimiento_general": {"neutro": {"porcentaje": 100, "ejemplo": "x"}}}`)
	assert.True(t, ok)
	assert.Contains(t, got, "Neutro: x (100%)")
	assert.NotContains(t, got, "Positivo")
}

func TestRender_Fallbacks(t *testing.T) {
	got, ok := Render("lo siento, no puedo")
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = Render("prefijo {temas: sin comillas} sufijo")
	assert.True(t, ok, "malformed JSON is shown verbatim")
	assert.Equal(t, "{temas: sin comillas}", got)
}
