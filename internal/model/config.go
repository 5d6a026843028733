package model

import "time"

// Config holds every tunable of a synthesis run
type Config struct {
	Input        InputConfig        `yaml:"input" mapstructure:"input"`
	Template     TemplateConfig     `yaml:"template" mapstructure:"template"`
	Style        StyleConfig        `yaml:"style" mapstructure:"style"`
	Layout       LayoutConfig       `yaml:"layout" mapstructure:"layout"`
	Evolution    EvolutionConfig    `yaml:"evolution" mapstructure:"evolution"`
	Classifier   ClassifierConfig   `yaml:"classifier" mapstructure:"classifier"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
}

// InputConfig describes the export format
type InputConfig struct {
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`       // utf-16, utf-8, latin-1, windows-1252
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`     // single character
	DateLayout string `yaml:"date_layout" mapstructure:"date_layout"` // Go layout of the date column
	TimeLayout string `yaml:"time_layout" mapstructure:"time_layout"` // Go layout of the time column
}

// TemplateConfig points at the deck template
type TemplateConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	ID   string `yaml:"id" mapstructure:"id"` // Defaults to the file name
}

// StyleConfig carries fonts and colors applied by the injectors
type StyleConfig struct {
	FontName         string            `yaml:"font_name" mapstructure:"font_name"`
	TitleSizePt      float64           `yaml:"title_size_pt" mapstructure:"title_size_pt"`
	KPISizePt        float64           `yaml:"kpi_size_pt" mapstructure:"kpi_size_pt"`
	BodySizePt       float64           `yaml:"body_size_pt" mapstructure:"body_size_pt"`
	TextColor        string            `yaml:"text_color" mapstructure:"text_color"`
	DateColor        string            `yaml:"date_color" mapstructure:"date_color"`
	HeaderFill       string            `yaml:"header_fill" mapstructure:"header_fill"`
	HeaderSizePt     float64           `yaml:"header_size_pt" mapstructure:"header_size_pt"`
	CellSizePt       float64           `yaml:"cell_size_pt" mapstructure:"cell_size_pt"`
	EmptyCell        string            `yaml:"empty_cell" mapstructure:"empty_cell"`
	LineColor        string            `yaml:"line_color" mapstructure:"line_color"`
	LineWidthPt      float64           `yaml:"line_width_pt" mapstructure:"line_width_pt"`
	SmoothLine       bool              `yaml:"smooth_line" mapstructure:"smooth_line"`
	SentimentColors  map[string]string `yaml:"sentiment_colors" mapstructure:"sentiment_colors"`
	ReportDateLayout string            `yaml:"report_date_layout" mapstructure:"report_date_layout"`
}

// Size is an explicit width/height override in inches. Zero means "use the
// placeholder's own bounds".
type Size struct {
	WidthIn  float64 `yaml:"width_in" mapstructure:"width_in"`
	HeightIn float64 `yaml:"height_in" mapstructure:"height_in"`
}

// IsZero reports whether no override is set
func (s Size) IsZero() bool {
	return s.WidthIn <= 0 || s.HeightIn <= 0
}

// LayoutConfig holds geometry overrides per content kind
type LayoutConfig struct {
	PieChart  Size `yaml:"pie_chart" mapstructure:"pie_chart"`
	LineChart Size `yaml:"line_chart" mapstructure:"line_chart"`
	Tables    Size `yaml:"tables" mapstructure:"tables"`
	Wordcloud Size `yaml:"wordcloud" mapstructure:"wordcloud"`
}

// EvolutionConfig selects the time-series granularity
type EvolutionConfig struct {
	ByDate bool `yaml:"by_date" mapstructure:"by_date"` // false groups by date and hour
}

// ClassifierConfig configures the hierarchical classifier
type ClassifierConfig struct {
	RulesPath   string `yaml:"rules_path" mapstructure:"rules_path"`
	Default     string `yaml:"default" mapstructure:"default"`
	UseKeywords bool   `yaml:"use_keywords" mapstructure:"use_keywords"`
}

// LLMConfig configures the narrative service
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`         // openai, groq, anthropic, ollama, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"api_key"`                 // Never written to config files
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"`           // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxMentions int     `yaml:"max_mentions" mapstructure:"max_mentions"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy   string  `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy     string  `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures the narrative response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls where bundles land
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig bounds narrative requests per provider host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LoggingConfig configures logrus
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// MetricsConfig controls the Prometheus textfile dump
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" mapstructure:"textfile_path"`
}

// Default sentinel and fallback texts
const (
	DefaultUnclassified  = "Sin Clasificar"
	NarrativeUnavailable = "Análisis no disponible."
	NoHeadlines          = "No hay noticias destacadas."
)

// DefaultConfig returns the configuration matching the stock template
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Encoding:   "utf-16",
			Delimiter:  "\t",
			DateLayout: "02-Jan-06",
			TimeLayout: "3:04 PM",
		},
		Template: TemplateConfig{
			Path: "powerpoints/Reporte_plantilla.pptx",
		},
		Style: StyleConfig{
			FontName:     "Arial",
			TitleSizePt:  24,
			KPISizePt:    28,
			BodySizePt:   11,
			TextColor:    "000000",
			DateColor:    "FFFFFF",
			HeaderFill:   "FFC000",
			HeaderSizePt: 12,
			CellSizePt:   10,
			EmptyCell:    "",
			LineColor:    "FFA500",
			LineWidthPt:  5,
			SmoothLine:   true,
			SentimentColors: map[string]string{
				string(SentimentPositive): "00B050",
				string(SentimentNeutral):  "BFBFBF",
				string(SentimentNegative): "FF0000",
			},
			ReportDateLayout: "02-Jan-2006",
		},
		Layout: LayoutConfig{
			PieChart:  Size{WidthIn: 5.75, HeightIn: 5.09},
			LineChart: Size{WidthIn: 9.07, HeightIn: 5.15},
			Wordcloud: Size{WidthIn: 4.2, HeightIn: 2.66},
		},
		Classifier: ClassifierConfig{
			Default: DefaultUnclassified,
		},
		LLM: LLMConfig{
			Provider:    "", // Disabled by default
			Timeout:     30,
			MaxTokens:   1500,
			Temperature: 0.3,
			MaxMentions: 80,
			MaxRetries:  1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // Resolved to ~/.pulsedeck/cache by the CLI
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Dir: "scratch",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
