package narrative

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// DefaultMaxMentions caps how many mentions go into one prompt
const DefaultMaxMentions = 80

// BuildPrompt asks for the social-listening analysis as a bare JSON object
func BuildPrompt(entity string, mentions []string) string {
	return fmt.Sprintf(`Analiza las siguientes menciones de redes sociales sobre %s. Devuelve **solo un objeto JSON válido**. No incluyas explicaciones, encabezados ni formato de Markdown.

Estructura esperada:
{
  "temas_principales": [
    { "tema": "...", "descripcion": "..." },
    ...
  ],
  "sentimiento_general": {
    "positivo": { "porcentaje": ..., "ejemplo": "..." },
    "negativo": { "porcentaje": ..., "ejemplo": "..." },
    "neutro": { "porcentaje": ..., "ejemplo": "..." }
  },
  "hallazgos_destacados": "..."
}

A continuación, las menciones:
%s
`, entity, strings.Join(mentions, "\n"))
}

// Analysis is the structured reply
type Analysis struct {
	Themes    []Theme              `json:"temas_principales"`
	Sentiment map[string]Sentiment `json:"sentimiento_general"`
	Findings  string               `json:"hallazgos_destacados"`
}

// Theme is one main conversation topic
type Theme struct {
	Name        string `json:"tema"`
	Description string `json:"descripcion"`
}

// Sentiment is the share and a representative example of one polarity
type Sentiment struct {
	Percent any    `json:"porcentaje"` // Models answer with numbers or strings
	Example string `json:"ejemplo"`
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON returns the outermost {...} span of a reply
func ExtractJSON(reply string) (string, bool) {
	m := jsonObject.FindString(reply)
	return m, m != ""
}

// Render turns a model reply into slide text. A reply without a JSON
// object is unusable; one whose object does not parse is shown as is.
func Render(reply string) (string, bool) {
	raw, ok := ExtractJSON(reply)
	if !ok {
		return "", false
	}
	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return raw, true
	}
	return a.Format(), true
}

var polarities = []struct{ key, label string }{
	{"positivo", "Positivo"},
	{"neutro", "Neutro"},
	{"negativo", "Negativo"},
}

// Format lays the analysis out as the slide expects
func (a Analysis) Format() string {
	sections := []string{"* Temas Principales:\n"}
	for i, t := range a.Themes {
		sections = append(sections, fmt.Sprintf("%d. %s\n%s\n", i+1, t.Name, t.Description))
	}

	sections = append(sections, "* Sentimiento General")
	for _, p := range polarities {
		s, ok := a.Sentiment[p.key]
		if !ok {
			continue
		}
		sections = append(sections, fmt.Sprintf("%s: %s (%s%%)", p.label, s.Example, percent(s.Percent)))
	}
	sections = append(sections, "\n* Hallazgos destacados:\n"+a.Findings)

	return strings.Join(sections, "\n\n")
}

func percent(v any) string {
	switch p := v.(type) {
	case float64:
		return model.FormatFloat(p)
	case string:
		return strings.TrimSuffix(strings.TrimSpace(p), "%")
	case nil:
		return "0"
	default:
		return fmt.Sprint(p)
	}
}
