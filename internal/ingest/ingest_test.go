package ingest

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/ppiankov/pulsedeck/internal/model"
)

func utf16Export(t *testing.T, lines ...string) []byte {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	s, err := enc.String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	return []byte(s)
}

func TestRead_UTF16Tab(t *testing.T) {
	data := utf16Export(t,
		"Alternate Date Format\tTime\tSource\tReach\tSentiment\tHit Sentence\tHeadline\tInfluencer\tAVE",
		"05-Mar-24\t3:15 PM\tTwitter\t1,500\tPositive\tgood day\t\t@a\t12",
		"",
		"05-Mar-24\t4:00 PM\tEl Tiempo\t\tUnknown\tbody\tTitular\tjdoe",
	)

	table, err := Read(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Alternate Date Format", table.Header[0], "BOM must be stripped from the first header")
	assert.Len(t, table.Rows, 2, "blank lines are skipped")
	assert.Len(t, table.Rows[1], len(table.Header), "short rows are padded")
	assert.True(t, table.Has("Hit Sentence"))
	assert.False(t, table.Has("Opening Text"))
}

func TestRead_EmptyExport(t *testing.T) {
	if _, err := Read(strings.NewReader(""), Options{Encoding: "utf-8"}); err == nil {
		t.Fatal("expected error for empty export")
	}
}

func TestOptionsFrom(t *testing.T) {
	opts, err := OptionsFrom("utf-8", ";")
	require.NoError(t, err)
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "utf-8", opts.Encoding)

	if _, err := OptionsFrom("ebcdic", ""); err == nil {
		t.Error("expected unsupported encoding error")
	}
	if _, err := OptionsFrom("", "ab"); err == nil {
		t.Error("expected multi-character delimiter error")
	}
}

func TestClean_MissingRequiredColumns(t *testing.T) {
	table := &Table{Header: []string{"Source", "Reach"}}

	_, err := Clean(table)
	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err)
	assert.Equal(t, []string{model.ColumnHitSentence, model.ColumnSentiment}, schemaErr.Missing)
	assert.True(t, model.IsFatal(err))
}

func TestClean_NormalizesRows(t *testing.T) {
	table := &Table{
		Header: []string{"Source", "Reach", "Sentiment", "Hit Sentence", "Headline", "Influencer", "Keyword", "Likes", "Country"},
		Rows: [][]string{
			{"Twitter", "15", "Positive", "tweet text", "", "@a", "kw1", "3", "CO"},
			{"Facebook", "", "Unknown", "comment text", "", "Ana", "", "1", "CO"},
			{"El Tiempo", "2,300", "", "body", "Big Headline", "reporter", "", "", "CO"},
		},
	}

	ds, err := Clean(table)
	require.NoError(t, err)

	assert.NotContains(t, ds.Columns, "Likes")
	assert.Contains(t, ds.Columns, model.ColumnKeywords)
	assert.NotContains(t, ds.Columns, model.ColumnKeyword)
	assert.Equal(t, model.ColumnPlatform, ds.Columns[len(ds.Columns)-1])

	tweet, comment, press := ds.Records[0], ds.Records[1], ds.Records[2]

	assert.Equal(t, model.PlatformSocial, tweet.Platform)
	assert.Equal(t, "kw1", tweet.Keywords)
	assert.Equal(t, "@a", tweet.Influencer)

	assert.Equal(t, "Comment on Ana", comment.Influencer)
	assert.Equal(t, model.SentimentNeutral, comment.Sentiment)
	assert.Equal(t, 0.0, comment.Reach)

	assert.Equal(t, model.PlatformPress, press.Platform)
	assert.Equal(t, "Big Headline", press.HitSentence)
	assert.Equal(t, "El Tiempo", press.Influencer)
	assert.Equal(t, 2300.0, press.Reach)
	assert.Equal(t, "CO", press.Field("Country"))
}

func TestPlatformIsTotal(t *testing.T) {
	sources := []string{"Twitter", "Youtube", "Instagram", "Facebook", "Pinterest", "Reddit", "TikTok", "Twitch", "WebSite", "", "twitter", "Blog"}
	for _, src := range sources {
		rec := CleanRecord(model.RawRecord{Source: src})
		if rec.Platform != model.PlatformSocial && rec.Platform != model.PlatformPress {
			t.Errorf("source %q mapped to %q", src, rec.Platform)
		}
		if again := CleanRecord(model.RawRecord{Source: src}); again.Platform != rec.Platform {
			t.Errorf("source %q is not deterministic", src)
		}
	}
	if CleanRecord(model.RawRecord{Source: "twitter"}).Platform != model.PlatformPress {
		t.Error("source lookup must be exact")
	}
}

func TestParseReach(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"42", 42},
		{" 1,234,567 ", 1234567},
		{"12.5", 12.5},
	}
	for _, tt := range tests {
		got := ParseReach(tt.in)
		if got != tt.want || math.IsNaN(got) {
			t.Errorf("ParseReach(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	ds := &model.Dataset{
		Columns: []string{model.ColumnSource, model.ColumnReach, model.ColumnSentiment, model.ColumnHitSentence, model.ColumnPlatform, model.ColumnCategoria},
		Records: []model.Record{
			{Source: "Twitter", Reach: 10, Sentiment: model.SentimentPositive, HitSentence: "hola, mundo", Platform: model.PlatformSocial, Categoria: "Economía"},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "export.csv")
	require.NoError(t, WriteFile(path, ds, DefaultOptions()))

	table, err := ReadFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ds.Columns, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Twitter", "10", "Positive", "hola, mundo", "Redes Sociales", "Economía"}, table.Rows[0])
}

func TestWrite_StartsWithBOM(t *testing.T) {
	var buf bytes.Buffer
	ds := &model.Dataset{Columns: []string{model.ColumnSource}}
	require.NoError(t, Write(&buf, ds, DefaultOptions()))

	b := buf.Bytes()
	require.GreaterOrEqual(t, len(b), 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, b[:2])
}
