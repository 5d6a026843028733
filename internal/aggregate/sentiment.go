package aggregate

import (
	"sort"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// FallbackColor fills slices whose label has no palette entry
const FallbackColor = "D3D3D3"

// DefaultPalette is the canonical sentiment coloring
func DefaultPalette() map[string]string {
	return map[string]string{
		string(model.SentimentNegative): "FF0000",
		string(model.SentimentPositive): "00B050",
		string(model.SentimentNeutral):  "BFBFBF",
	}
}

// SentimentBreakdown counts mentions per sentiment, excluding Not Rated.
// Slices are ordered by count descending, then label.
func SentimentBreakdown(records []model.Record, palette map[string]string) []model.SentimentSlice {
	if palette == nil {
		palette = DefaultPalette()
	}

	counts := make(map[string]int)
	for _, r := range records {
		if r.Sentiment == model.SentimentNotRated {
			continue
		}
		counts[string(r.Sentiment)]++
	}

	slices := make([]model.SentimentSlice, 0, len(counts))
	for label, n := range counts {
		color, ok := palette[label]
		if !ok {
			color = FallbackColor
		}
		slices = append(slices, model.SentimentSlice{Label: label, Value: n, Color: color})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Label < slices[j].Label
	})
	return slices
}
