package model

import (
	"strconv"
	"time"
)

// ReportContext is the aggregated snapshot a deck is filled from.
// It is built once per synthesis and never mutated by injectors.
type ReportContext struct {
	Meta Meta `json:"meta"`
	KPIs KPIs `json:"kpis"`

	PlatformCounts map[Platform]int `json:"platform_counts"`
	Evolution      []SeriesPoint    `json:"evolution"`
	Sentiment      []SentimentSlice `json:"sentiment"`

	TopPress         []InfluencerRow `json:"top_press"`
	TopSocialByPosts []InfluencerRow `json:"top_social_posts"`
	TopSocialByReach []InfluencerRow `json:"top_social_reach"`
	TopHeadlines     []string        `json:"top_headlines"`

	Classification *Classification `json:"classification,omitempty"` // Only when rules were applied
}

// Meta identifies the report
type Meta struct {
	ClientName    string    `json:"client_name"`
	DateGenerated string    `json:"date_generated"`
	GeneratedAt   time.Time `json:"generated_at"`
	RequestID     string    `json:"request_id"`
	TemplateID    string    `json:"template_id,omitempty"`
}

// KPIs are the headline numbers of the report
type KPIs struct {
	TotalMentions     int     `json:"total_mentions"`
	UniqueAuthors     int     `json:"unique_authors"`
	EstimatedReach    float64 `json:"estimated_reach"`
	EstimatedReachFmt string  `json:"estimated_reach_fmt"`
	MentionsPress     int     `json:"mentions_prensa"`
	MentionsSocial    int     `json:"mentions_redes"`
}

// SeriesPoint is one bucket of the evolution series
type SeriesPoint struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
	Count int       `json:"count"`
}

// SentimentSlice is one entry of the sentiment distribution
type SentimentSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"` // RRGGBB
}

// InfluencerRow is one line of a ranked author table
type InfluencerRow struct {
	Influencer string  `json:"influencer"`
	Posts      int     `json:"posts"`
	MaxReach   float64 `json:"max_reach"`
	Reach      string  `json:"reach"` // MaxReach with thousands separators
	Source     string  `json:"source"`
}

// Table column headers understood by InfluencerRow.Cells
const (
	HeaderInfluencer = "Influencer"
	HeaderPosts      = "Posts"
	HeaderReach      = "Reach"
	HeaderSource     = "Source"
)

// Cells returns the row keyed by table header
func (r InfluencerRow) Cells() map[string]string {
	return map[string]string{
		HeaderInfluencer: r.Influencer,
		HeaderPosts:      strconv.Itoa(r.Posts),
		HeaderReach:      r.Reach,
		HeaderSource:     r.Source,
	}
}

// Classification summarizes classifier output per category and theme
type Classification struct {
	Default string          `json:"default"`
	Counts  []CategoryCount `json:"counts"`
}

// CategoryCount is the number of mentions tagged with a category/theme pair
type CategoryCount struct {
	Categoria string `json:"categoria"`
	Tematica  string `json:"tematica"`
	Mentions  int    `json:"mentions"`
}

// FormatFloat renders a number the way the export does: integers without a
// fractional part, everything else in shortest form
func FormatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
