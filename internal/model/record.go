package model

import "strings"

// Column names used by the monitoring export
const (
	ColumnHitSentence = "Hit Sentence"
	ColumnHeadline    = "Headline"
	ColumnSource      = "Source"
	ColumnReach       = "Reach"
	ColumnSentiment   = "Sentiment"
	ColumnInfluencer  = "Influencer"
	ColumnDate        = "Alternate Date Format"
	ColumnTime        = "Time"
	ColumnKeywords    = "Keywords"
	ColumnKeyword     = "Keyword" // older exports
	ColumnPlatform    = "Plataforma"
	ColumnCategoria   = "Categoria"
	ColumnTematica    = "Tematica"
)

// Platform is the coarse bucket a mention source belongs to
type Platform string

const (
	PlatformSocial Platform = "Redes Sociales"
	PlatformPress  Platform = "Prensa Digital"
)

// socialSources is the fixed set of social network sources.
// Anything outside it is digital press.
var socialSources = map[string]struct{}{
	"Twitter":   {},
	"Youtube":   {},
	"Instagram": {},
	"Facebook":  {},
	"Pinterest": {},
	"Reddit":    {},
	"TikTok":    {},
	"Twitch":    {},
}

// PlatformOf maps a mention source to its platform bucket
func PlatformOf(source string) Platform {
	if _, ok := socialSources[source]; ok {
		return PlatformSocial
	}
	return PlatformPress
}

// IsSocialSource reports whether source is one of the known social networks
func IsSocialSource(source string) bool {
	_, ok := socialSources[source]
	return ok
}

// Sentiment is the normalized sentiment label of a mention
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentNotRated Sentiment = "Not Rated"
)

// NormalizeSentiment collapses Unknown and missing labels to Neutral
func NormalizeSentiment(raw string) Sentiment {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "Unknown") || strings.EqualFold(s, "nan") {
		return SentimentNeutral
	}
	return Sentiment(s)
}

// RawRecord is one row of the export as read, before cleaning
type RawRecord struct {
	Date        string
	Time        string
	Source      string
	Reach       string // as exported; may be empty or unparsable
	Sentiment   string
	HitSentence string
	Headline    string
	Influencer  string
	Keywords    string
	Categoria   string
	Tematica    string

	// Fields holds every other retained column keyed by header name
	Fields map[string]string
}

// Record is a cleaned mention
type Record struct {
	Date        string
	Time        string
	Source      string
	Reach       float64
	Sentiment   Sentiment
	HitSentence string
	Headline    string
	Influencer  string
	Keywords    string
	Platform    Platform

	// Classification fields, empty until a classifier runs
	Categoria string
	Tematica  string

	Fields map[string]string
}

// Field returns the value of the named output column for this record
func (r *Record) Field(column string) string {
	switch column {
	case ColumnDate:
		return r.Date
	case ColumnTime:
		return r.Time
	case ColumnSource:
		return r.Source
	case ColumnReach:
		return FormatFloat(r.Reach)
	case ColumnSentiment:
		return string(r.Sentiment)
	case ColumnHitSentence:
		return r.HitSentence
	case ColumnHeadline:
		return r.Headline
	case ColumnInfluencer:
		return r.Influencer
	case ColumnKeywords:
		return r.Keywords
	case ColumnPlatform:
		return string(r.Platform)
	case ColumnCategoria:
		return r.Categoria
	case ColumnTematica:
		return r.Tematica
	}
	return r.Fields[column]
}

// Dataset is a cleaned table: ordered output columns plus records
type Dataset struct {
	Columns []string
	Records []Record
}

// HasColumn reports whether the dataset exposes the named column
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends the column to the output order if absent
func (d *Dataset) EnsureColumn(name string) {
	if !d.HasColumn(name) {
		d.Columns = append(d.Columns, name)
	}
}
