package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// DefaultTopN is the length of every influencer table
const DefaultTopN = 10

// Options parameterize Build
type Options struct {
	ClientName string
	RequestID  string
	TemplateID string
	Now        time.Time
	DateLayout string // layout of Meta.DateGenerated

	Granularity Granularity
	Layouts     Layouts
	Palette     map[string]string

	TopN          int
	HeadlineCount int
	HeadlineWidth int

	// Categories is the rule order of an applied classification; nil when
	// no classifier ran
	Categories []string
	Default    string
}

// Stats reports rows the aggregator had to ignore
type Stats struct {
	SkippedTimestamps int
}

// Build composes every aggregate into a report context
func Build(ds *model.Dataset, opts Options) (*model.ReportContext, Stats) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.DateLayout == "" {
		opts.DateLayout = "02-Jan-2006"
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	records := ds.Records
	evolution, skipped := Evolution(records, opts.Granularity, opts.Layouts)

	rc := &model.ReportContext{
		Meta: model.Meta{
			ClientName:    opts.ClientName,
			DateGenerated: opts.Now.Format(opts.DateLayout),
			GeneratedAt:   opts.Now,
			RequestID:     opts.RequestID,
			TemplateID:    opts.TemplateID,
		},
		KPIs:             Summarize(records),
		PlatformCounts:   PlatformCounts(records),
		Evolution:        evolution,
		Sentiment:        SentimentBreakdown(records, opts.Palette),
		TopPress:         TopInfluencers(records, model.PlatformPress, ByPosts, opts.TopN),
		TopSocialByPosts: TopInfluencers(records, model.PlatformSocial, ByPosts, opts.TopN),
		TopSocialByReach: TopInfluencers(records, model.PlatformSocial, ByReach, opts.TopN),
		TopHeadlines:     TopHeadlines(records, opts.HeadlineCount, opts.HeadlineWidth),
	}

	if opts.Categories != nil {
		rc.Classification = CategoryBreakdown(records, opts.Categories, opts.Default)
	}

	return rc, Stats{SkippedTimestamps: skipped}
}

// CategoryBreakdown counts mentions per (Categoria, Tematica). Categories
// follow the given rule order, themes their first appearance, and the
// unclassified bucket goes last.
func CategoryBreakdown(records []model.Record, categories []string, def string) *model.Classification {
	if def == "" {
		def = model.DefaultUnclassified
	}

	rank := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, ok := rank[c]; !ok {
			rank[c] = i
		}
	}

	type key struct{ cat, tem string }
	counts := make(map[key]int)
	firstSeen := make(map[key]int)
	for i, r := range records {
		cat := strings.TrimSpace(r.Categoria)
		if cat == "" {
			cat = def
		}
		tem := strings.TrimSpace(r.Tematica)
		if tem == "" {
			tem = def
		}
		k := key{cat, tem}
		if _, ok := counts[k]; !ok {
			firstSeen[k] = i
		}
		counts[k]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	categoryRank := func(c string) int {
		if c == def {
			return len(categories) + 1
		}
		if r, ok := rank[c]; ok {
			return r
		}
		return len(categories)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := categoryRank(keys[i].cat), categoryRank(keys[j].cat)
		if ri != rj {
			return ri < rj
		}
		if keys[i].cat != keys[j].cat {
			return keys[i].cat < keys[j].cat
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	out := &model.Classification{Default: def, Counts: make([]model.CategoryCount, 0, len(keys))}
	for _, k := range keys {
		out.Counts = append(out.Counts, model.CategoryCount{Categoria: k.cat, Tematica: k.tem, Mentions: counts[k]})
	}
	return out
}
