package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ppiankov/pulsedeck/internal/cache"
	"github.com/ppiankov/pulsedeck/internal/model"
	"github.com/ppiankov/pulsedeck/internal/narrative"
	"github.com/ppiankov/pulsedeck/internal/pipeline"
	"github.com/ppiankov/pulsedeck/internal/telemetry"
	"github.com/ppiankov/pulsedeck/internal/worker"
)

// envKeys are config keys viper must know about for AutomaticEnv to reach
// them during Unmarshal
var envKeys = []string{
	"template.path", "template.id",
	"input.encoding", "input.delimiter",
	"classifier.rules_path", "classifier.use_keywords",
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
	"llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"cache.enabled", "cache.dir",
	"output.dir", "concurrency.workers",
	"logging.level", "logging.format",
	"metrics.textfile_path",
}

func bindEnv() {
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}
}

// loadConfig layers the config file, environment and flags over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(&cfg.LLM)

	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		if dir, err := configDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(dir, "cache")
		}
	}
	return cfg, nil
}

// applyProviderEnv fills the API key and base URL from the provider's
// conventional variables when the config leaves them empty
func applyProviderEnv(c *model.LLMConfig) {
	var keyVar, urlVar string
	switch strings.ToLower(c.Provider) {
	case "openai":
		keyVar = "OPENAI_API_KEY"
	case "groq":
		keyVar = "GROQ_API_KEY"
	case "anthropic", "claude":
		keyVar = "ANTHROPIC_API_KEY"
	case "ollama":
		urlVar = "OLLAMA_BASE_URL"
	}
	if c.APIKey == "" && keyVar != "" {
		c.APIKey = os.Getenv(keyVar)
	}
	if c.BaseURL == "" && urlVar != "" {
		c.BaseURL = os.Getenv(urlVar)
	}
}

// newNarrator builds the analysis service. A misconfigured provider is
// logged and disables the narrative instead of failing the run.
func newNarrator(cfg *model.Config) *narrative.Narrator {
	providerCfg := narrative.ConfigFromModel(cfg.LLM)
	provider, err := narrative.NewProvider(providerCfg)
	if err != nil {
		logger.WithError(err).Warn("Narrative service disabled")
		return nil
	}
	if provider == nil {
		logger.Debug("No LLM provider configured; analysis slot gets the fallback text")
		return nil
	}

	return narrative.New(provider, narrative.Options{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     providerCfg.Timeout,
		MaxMentions: cfg.LLM.MaxMentions,
		MaxRetries:  cfg.LLM.MaxRetries,
		Cache:       cache.New(cfg.Cache),
		CacheTTL:    cfg.Cache.DiskTTL,
		Limiter:     worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		Logger:      logger,
	})
}

// newPipeline assembles the pipeline and its metrics
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, *telemetry.Metrics) {
	metrics := telemetry.NewMetrics()
	p := pipeline.NewPipeline(cfg,
		pipeline.WithNarrator(newNarrator(cfg)),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
	)
	return p, metrics
}

// writeMetrics dumps metrics when a textfile path is configured
func writeMetrics(metrics *telemetry.Metrics, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.WithError(err).Warn("Failed to write metrics textfile")
		return
	}
	logger.WithField("path", path).Debug("Metrics written")
}
