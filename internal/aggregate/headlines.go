package aggregate

import (
	"io"
	"sort"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"golang.org/x/net/html"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// Headline excerpt defaults
const (
	DefaultHeadlineCount = 5
	DefaultHeadlineWidth = 100
)

// TopHeadlines returns the text of the highest-reach press mentions,
// stripped of markup and wrapped to width columns
func TopHeadlines(records []model.Record, n, width int) []string {
	if n <= 0 {
		n = DefaultHeadlineCount
	}
	if width <= 0 {
		width = DefaultHeadlineWidth
	}

	press := make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.Platform == model.PlatformPress {
			press = append(press, r)
		}
	}
	sort.SliceStable(press, func(i, j int) bool {
		return press[i].Reach > press[j].Reach
	})

	out := make([]string, 0, n)
	for _, r := range press {
		if len(out) == n {
			break
		}
		text := stripMarkup(r.HitSentence)
		if text == "" {
			continue
		}
		// Words longer than width are broken as well
		out = append(out, wrap.String(wordwrap.String(text, width), width))
	}
	return out
}

// stripMarkup removes HTML tags, decodes entities and collapses whitespace
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return strings.Join(strings.Fields(s), " ")
			}
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
