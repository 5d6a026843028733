package pipeline

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/ppiankov/pulsedeck/internal/inject"
	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/narrative"
	"github.com/ppiankov/pulsedeck/internal/pptx"
)

// Template tokens
const (
	TokenClient        = "REPORT_CLIENT"
	TokenDate          = "REPORT_DATE"
	TokenMentions      = "NUMB_MENTIONS"
	TokenActors        = "NUMB_ACTORS"
	TokenReach         = "EST_REACH"
	TokenPress         = "NUMB_PRENSA"
	TokenSocial        = "NUMB_REDES"
	TokenTopNews       = "TOP_NEWS"
	TokenAnalysis      = "CONVERSATION_ANALISIS"
	TokenEvolution     = "CONVERSATION_CHART"
	TokenSentiment     = "SENTIMENT_PIE"
	TokenPressTable    = "TOP_INFLUENCERS_PRENSA_TABLE"
	TokenPostsTable    = "TOP_INFLUENCERS_REDES_POSTS_TABLE"
	TokenReachTable    = "TOP_INFLUENCERS_REDES_REACH_TABLE"
	TokenWordcloud     = "WORDCLOUD"
	TokenCategoryTable = "CATEGORY_TABLE"
)

// planTokens is the full vocabulary in fill order; the last two are optional
var planTokens = []string{
	TokenClient, TokenDate, TokenMentions, TokenActors, TokenReach, TokenPress, TokenSocial,
	TokenTopNews, TokenAnalysis, TokenEvolution, TokenSentiment,
	TokenPressTable, TokenPostsTable, TokenReachTable,
	TokenWordcloud, TokenCategoryTable,
}

// Tokens returns every placeholder the plan knows, in fill order
func Tokens() []string {
	return slices.Clone(planTokens)
}

// Table headers
var (
	pressHeaders  = []string{model.HeaderInfluencer, model.HeaderPosts, model.HeaderReach}
	socialHeaders = []string{model.HeaderInfluencer, model.HeaderPosts, model.HeaderReach, model.HeaderSource}
	categoryCols  = []string{"Categoria", "Tematica", "Menciones"}
)

// styles are the text policies derived from configuration
type styles struct {
	title, date, kpi, body pptx.TextStyle
	table                  inject.TableStyle
	line                   inject.LineStyle
}

func (p *Pipeline) styles() styles {
	s := p.config.Style
	base := pptx.TextStyle{FontName: s.FontName, Color: s.TextColor}

	title := base
	title.SizePt, title.Bold, title.Align = s.TitleSizePt, true, pptx.AlignCenter

	date := title
	date.Color = s.DateColor

	kpi := base
	kpi.SizePt, kpi.Bold, kpi.Align = s.KPISizePt, true, pptx.AlignCenter

	body := base
	body.SizePt, body.Align = s.BodySizePt, pptx.AlignLeft

	header := base
	header.SizePt, header.Bold, header.Align = s.HeaderSizePt, true, pptx.AlignCenter

	cell := base
	cell.SizePt, cell.Align = s.CellSizePt, pptx.AlignCenter

	return styles{
		title: title,
		date:  date,
		kpi:   kpi,
		body:  body,
		table: inject.TableStyle{
			HeaderFill: s.HeaderFill,
			Header:     header,
			Body:       cell,
			Empty:      s.EmptyCell,
		},
		line: inject.LineStyle{
			SeriesName: "Menciones",
			Color:      s.LineColor,
			WidthPt:    s.LineWidthPt,
			Smooth:     s.SmoothLine,
		},
	}
}

// inject applies the fixed plan in order and returns one outcome per token
func (p *Pipeline) inject(ctx context.Context, ix *inject.Index, rc *model.ReportContext, ds *model.Dataset, req Request) []inject.Outcome {
	st := p.styles()
	layout := p.config.Layout

	out := []inject.Outcome{
		inject.Text(ix, TokenClient, rc.Meta.ClientName, st.title),
		inject.Text(ix, TokenDate, rc.Meta.DateGenerated, st.date),
		inject.Text(ix, TokenMentions, strconv.Itoa(rc.KPIs.TotalMentions), st.kpi),
		inject.Text(ix, TokenActors, strconv.Itoa(rc.KPIs.UniqueAuthors), st.kpi),
		inject.Text(ix, TokenReach, rc.KPIs.EstimatedReachFmt, st.kpi),
		inject.Text(ix, TokenPress, strconv.Itoa(rc.KPIs.MentionsPress), st.kpi),
		inject.Text(ix, TokenSocial, strconv.Itoa(rc.KPIs.MentionsSocial), st.kpi),
		inject.Text(ix, TokenTopNews, topNews(rc.TopHeadlines), st.body),
	}

	// Only decks with an analysis slot pay for the narrative call
	var analysis string
	if _, _, ok := ix.Find(TokenAnalysis); ok {
		var outcome narrative.Outcome
		analysis, outcome = p.narrator.Narrate(ctx, rc.Meta.ClientName, mentions(ds.Records))
		p.metrics.ObserveNarrative(string(outcome))
	}
	out = append(out, inject.Text(ix, TokenAnalysis, analysis, st.body))

	out = append(out,
		inject.LineChart(ix, TokenEvolution, rc.Evolution, st.line, layout.LineChart),
		inject.PieChart(ix, TokenSentiment, "Sentimiento", rc.Sentiment, layout.PieChart),
		inject.Table(ix, TokenPressTable, pressHeaders, rows(rc.TopPress), st.table, layout.Tables),
		inject.Table(ix, TokenPostsTable, socialHeaders, rows(rc.TopSocialByPosts), st.table, layout.Tables),
		inject.Table(ix, TokenReachTable, socialHeaders, rows(rc.TopSocialByReach), st.table, layout.Tables),
	)

	if len(req.Wordcloud) > 0 {
		out = append(out, inject.Image(ix, TokenWordcloud, req.Wordcloud, layout.Wordcloud))
	}
	if rc.Classification != nil {
		out = append(out, inject.Table(ix, TokenCategoryTable, categoryCols, categoryRows(rc.Classification), st.table, layout.Tables))
	}
	return out
}

func topNews(headlines []string) string {
	if len(headlines) == 0 {
		return model.NoHeadlines
	}
	return strings.Join(headlines, "\n\n")
}

// mentions are the non-empty mention texts in export order
func mentions(records []model.Record) []string {
	var out []string
	for _, r := range records {
		if s := strings.TrimSpace(r.HitSentence); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rows(influencers []model.InfluencerRow) []map[string]string {
	out := make([]map[string]string, len(influencers))
	for i, r := range influencers {
		out[i] = r.Cells()
	}
	return out
}

func categoryRows(c *model.Classification) []map[string]string {
	out := make([]map[string]string, len(c.Counts))
	for i, cc := range c.Counts {
		out[i] = map[string]string{
			categoryCols[0]: cc.Categoria,
			categoryCols[1]: cc.Tematica,
			categoryCols[2]: strconv.Itoa(cc.Mentions),
		}
	}
	return out
}
