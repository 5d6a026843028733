package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Names used when a rule leaves them blank
const (
	DefaultCategory = "Otros"
	DefaultTematica = "General"
)

// Rule is one category of the taxonomy with its ordered themes
type Rule struct {
	Category  string     `yaml:"category" json:"category"`
	Tematicas []Tematica `yaml:"tematicas" json:"tematicas"`
}

// Tematica is a theme and the keywords that select it
type Tematica struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// LoadRules reads an ordered rule list from a YAML or JSON file
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a rule list. JSON is valid YAML, so both are accepted.
func ParseRules(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for i := range rules {
		if strings.TrimSpace(rules[i].Category) == "" {
			rules[i].Category = DefaultCategory
		}
		for j := range rules[i].Tematicas {
			if strings.TrimSpace(rules[i].Tematicas[j].Name) == "" {
				rules[i].Tematicas[j].Name = DefaultTematica
			}
		}
	}
	return rules, nil
}

// Categories returns the category names in rule order, without repeats
func Categories(rules []Rule) []string {
	seen := make(map[string]struct{}, len(rules))
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		name := categoryName(r)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func categoryName(r Rule) string {
	if strings.TrimSpace(r.Category) == "" {
		return DefaultCategory
	}
	return r.Category
}

func tematicaName(t Tematica) string {
	if strings.TrimSpace(t.Name) == "" {
		return DefaultTematica
	}
	return t.Name
}
