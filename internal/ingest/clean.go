package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// droppedColumns are export columns no report uses
var droppedColumns = map[string]struct{}{
	"Opening Text":         {},
	"Subregion":            {},
	"Desktop Reach":        {},
	"Mobile Reach":         {},
	"Twitter Social Echo":  {},
	"Facebook Social Echo": {},
	"Reddit Social Echo":   {},
	"National Viewership":  {},
	"AVE":                  {},
	"State":                {},
	"City":                 {},
	"Social Echo Total":    {},
	"Editorial Echo":       {},
	"Views":                {},
	"Estimated Views":      {},
	"Likes":                {},
	"Replies":              {},
	"Retweets":             {},
	"Comments":             {},
	"Shares":               {},
	"Reactions":            {},
	"Threads":              {},
	"Is Verified":          {},
}

// requiredColumns must be present for a report to make sense
var requiredColumns = []string{model.ColumnHitSentence, model.ColumnSentiment}

// commentPrefix marks reach-less Facebook rows, which are comments on a page
const commentPrefix = "Comment on "

// Clean turns a raw export into a cleaned dataset.
// It fails with *model.SchemaError when a required column is absent.
func Clean(t *Table) (*model.Dataset, error) {
	var missing []string
	for _, col := range requiredColumns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &model.SchemaError{Missing: missing}
	}

	// Older exports name the keyword column in singular
	keywordsCol := model.ColumnKeywords
	if !t.Has(model.ColumnKeywords) && t.Has(model.ColumnKeyword) {
		keywordsCol = model.ColumnKeyword
	}

	ds := &model.Dataset{}
	for _, h := range t.Header {
		if _, drop := droppedColumns[h]; drop || h == "" {
			continue
		}
		if h == keywordsCol {
			h = model.ColumnKeywords
		}
		ds.EnsureColumn(h)
	}
	ds.EnsureColumn(model.ColumnPlatform)

	ds.Records = make([]model.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		raw := toRaw(t, row, keywordsCol)
		ds.Records = append(ds.Records, CleanRecord(raw))
	}

	return ds, nil
}

// CleanRecord applies the per-row normalization rules
func CleanRecord(raw model.RawRecord) model.Record {
	source := strings.TrimSpace(raw.Source)

	hit := raw.HitSentence
	if strings.TrimSpace(raw.Headline) != "" {
		hit = raw.Headline
	}

	influencer := raw.Influencer
	if source != "" && !model.IsSocialSource(source) {
		// Press mentions are attributed to the outlet
		influencer = source
	}

	reach := ParseReach(raw.Reach)
	if source == "Facebook" && reach == 0 {
		influencer = commentPrefix + influencer
	}

	return model.Record{
		Date:        raw.Date,
		Time:        raw.Time,
		Source:      source,
		Reach:       reach,
		Sentiment:   model.NormalizeSentiment(raw.Sentiment),
		HitSentence: hit,
		Headline:    raw.Headline,
		Influencer:  influencer,
		Keywords:    raw.Keywords,
		Platform:    model.PlatformOf(source),
		Categoria:   raw.Categoria,
		Tematica:    raw.Tematica,
		Fields:      raw.Fields,
	}
}

// ParseReach coerces an exported reach value to a number.
// Empty, unparsable, NaN and infinite values count as zero.
func ParseReach(value string) float64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, " ", "")

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toRaw(t *Table, row []string, keywordsCol string) model.RawRecord {
	raw := model.RawRecord{Fields: make(map[string]string)}
	for i, h := range t.Header {
		v := row[i]
		switch h {
		case model.ColumnDate:
			raw.Date = v
		case model.ColumnTime:
			raw.Time = v
		case model.ColumnSource:
			raw.Source = v
		case model.ColumnReach:
			raw.Reach = v
		case model.ColumnSentiment:
			raw.Sentiment = v
		case model.ColumnHitSentence:
			raw.HitSentence = v
		case model.ColumnHeadline:
			raw.Headline = v
		case model.ColumnInfluencer:
			raw.Influencer = v
		case keywordsCol:
			raw.Keywords = v
		case model.ColumnCategoria:
			raw.Categoria = v
		case model.ColumnTematica:
			raw.Tematica = v
		default:
			if _, drop := droppedColumns[h]; !drop {
				raw.Fields[h] = v
			}
		}
	}
	return raw
}
