package aggregate

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// Summarize computes the headline numbers of a report
func Summarize(records []model.Record) model.KPIs {
	reach := EstimatedReach(records)
	counts := PlatformCounts(records)

	return model.KPIs{
		TotalMentions:     len(records),
		UniqueAuthors:     uniqueAuthors(records),
		EstimatedReach:    reach,
		EstimatedReachFmt: FormatNumber(reach),
		MentionsPress:     counts[model.PlatformPress],
		MentionsSocial:    counts[model.PlatformSocial],
	}
}

// EstimatedReach sums the maximum reach observed per distinct influencer.
// Reposts by the same author are counted once; rows without an author
// contribute nothing.
func EstimatedReach(records []model.Record) float64 {
	maxByAuthor := make(map[string]float64)
	for _, r := range records {
		if strings.TrimSpace(r.Influencer) == "" {
			continue
		}
		if cur, ok := maxByAuthor[r.Influencer]; !ok || r.Reach > cur {
			maxByAuthor[r.Influencer] = r.Reach
		}
	}

	var total float64
	for _, v := range maxByAuthor {
		total += v
	}
	return total
}

// PlatformCounts returns the number of mentions per platform bucket
func PlatformCounts(records []model.Record) map[model.Platform]int {
	counts := map[model.Platform]int{
		model.PlatformSocial: 0,
		model.PlatformPress:  0,
	}
	for _, r := range records {
		counts[r.Platform]++
	}
	return counts
}

func uniqueAuthors(records []model.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if strings.TrimSpace(r.Influencer) == "" {
			continue
		}
		seen[r.Influencer] = struct{}{}
	}
	return len(seen)
}

// FormatNumber abbreviates large numbers: 1.2M, 3.4k, 999
func FormatNumber(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		return model.FormatFloat(v)
	}
}

// FormatReach renders a reach value with thousands separators
func FormatReach(v float64) string {
	return humanize.Comma(int64(v))
}
