package aggregate

import (
	"sort"
	"strings"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// RankBy selects the primary sort key of an influencer table
type RankBy int

const (
	// ByPosts ranks by mention count, then max reach
	ByPosts RankBy = iota
	// ByReach ranks by max reach, then mention count
	ByReach
)

type authorStats struct {
	name     string
	posts    int
	maxReach float64
	source   string
}

// TopInfluencers returns the top n authors of one platform.
// Ties are broken deterministically so equal inputs always rank the same.
func TopInfluencers(records []model.Record, platform model.Platform, by RankBy, n int) []model.InfluencerRow {
	byName := make(map[string]*authorStats)
	var order []*authorStats
	for _, r := range records {
		if r.Platform != platform || strings.TrimSpace(r.Influencer) == "" {
			continue
		}
		s, ok := byName[r.Influencer]
		if !ok {
			s = &authorStats{name: r.Influencer, maxReach: r.Reach, source: r.Source}
			byName[r.Influencer] = s
			order = append(order, s)
		}
		s.posts++
		if r.Reach > s.maxReach {
			s.maxReach = r.Reach
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		switch by {
		case ByReach:
			if a.maxReach != b.maxReach {
				return a.maxReach > b.maxReach
			}
			if a.posts != b.posts {
				return a.posts > b.posts
			}
		default:
			if a.posts != b.posts {
				return a.posts > b.posts
			}
			if a.maxReach != b.maxReach {
				return a.maxReach > b.maxReach
			}
		}
		return a.name < b.name
	})

	if n > 0 && len(order) > n {
		order = order[:n]
	}

	rows := make([]model.InfluencerRow, 0, len(order))
	for _, s := range order {
		rows = append(rows, model.InfluencerRow{
			Influencer: s.name,
			Posts:      s.posts,
			MaxReach:   s.maxReach,
			Reach:      FormatReach(s.maxReach),
			Source:     s.source,
		})
	}
	return rows
}
