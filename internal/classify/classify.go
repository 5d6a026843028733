package classify

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// Options control a classification run
type Options struct {
	Default     string // sentinel for unclassified rows; model.DefaultUnclassified when empty
	UseKeywords bool   // enable the second pass over the Keywords field
}

// Stats counts the outcome of a run
type Stats struct {
	Pass1        int
	Pass2        int
	Unclassified int
}

// matcher is a rule flattened into one theme with folded keywords
type matcher struct {
	category string
	tematica string
	keywords []string
}

// Classify tags records in place with Categoria and Tematica.
//
// Both fields are write-once: a rule only sets a field that still holds the
// sentinel, so the first matching rule wins and the keyword pass never
// overwrites a row classified by the text pass. Values already present in
// the export are kept.
func Classify(records []model.Record, rules []Rule, opts Options) Stats {
	def := opts.Default
	if def == "" {
		def = model.DefaultUnclassified
	}

	fold := cases.Fold()
	matchers := compile(rules, fold)

	for i := range records {
		if strings.TrimSpace(records[i].Categoria) == "" {
			records[i].Categoria = def
		}
		if strings.TrimSpace(records[i].Tematica) == "" {
			records[i].Tematica = def
		}
	}

	var stats Stats
	stats.Pass1 = pass(records, matchers, def, fold, func(r *model.Record) string { return r.HitSentence })

	if opts.UseKeywords {
		stats.Pass2 = pass(records, matchers, def, fold, func(r *model.Record) string { return r.Keywords })
	}

	for i := range records {
		if records[i].Categoria == def {
			stats.Unclassified++
		}
	}
	return stats
}

// pass applies every matcher in order over one text field and returns how
// many rows left the sentinel during the pass
func pass(records []model.Record, matchers []matcher, def string, fold cases.Caser, field func(*model.Record) string) int {
	classified := 0
	for i := range records {
		rec := &records[i]
		if rec.Categoria != def && rec.Tematica != def {
			continue
		}
		text := fold.String(field(rec))
		if text == "" {
			continue
		}

		wasDefault := rec.Categoria == def
		for _, m := range matchers {
			if !m.matches(text) {
				continue
			}
			if rec.Tematica == def {
				rec.Tematica = m.tematica
			}
			if rec.Categoria == def {
				rec.Categoria = m.category
			}
		}
		if wasDefault && rec.Categoria != def {
			classified++
		}
	}
	return classified
}

func (m matcher) matches(text string) bool {
	for _, kw := range m.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func compile(rules []Rule, fold cases.Caser) []matcher {
	var out []matcher
	for _, r := range rules {
		for _, t := range r.Tematicas {
			m := matcher{category: categoryName(r), tematica: tematicaName(t)}
			for _, kw := range t.Keywords {
				kw = strings.TrimSpace(kw)
				if kw == "" {
					continue
				}
				m.keywords = append(m.keywords, fold.String(kw))
			}
			if len(m.keywords) == 0 {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}
