// Package tenant resolves per-tenant pipeline configuration: retrieval
// weights, reranker and guardrail thresholds, context packing policy, and
// LLM provider selection. Configuration is cached read-mostly per tenant;
// modules elsewhere in the pipeline only ever see a resolved Config, never
// raw environment or store reads.
package tenant

import "time"

// RetrievalConfig controls C2/C3.
type RetrievalConfig struct {
	KBase                int
	VectorWeight         float64
	LexicalWeight        float64
	QueryAdaptiveWeights bool
	VectorTimeout        time.Duration
	LexicalTimeout       time.Duration
}

// RerankerConfig controls C4.
type RerankerConfig struct {
	Enabled         bool
	TopIn           int
	TopOut          int
	FallbackOnError bool
	Timeout         time.Duration
}

// GuardrailPreset names a bundled threshold profile.
type GuardrailPreset string

const (
	PresetPermissive GuardrailPreset = "permissive"
	PresetModerate   GuardrailPreset = "moderate"
	PresetStrict     GuardrailPreset = "strict"
	PresetParanoid   GuardrailPreset = "paranoid"
)

// GuardrailConfig controls C5.
type GuardrailConfig struct {
	Preset         GuardrailPreset
	MinConfidence  float64
	MinTopScore    float64
	MinMeanScore   float64
	MinResultCount int
}

// ContextConfig controls C7.
type ContextConfig struct {
	MaxContextTokens   int
	PerDocCap          int
	PerSectionCap      int
	NoveltyAlpha       float64
	AnswerabilityBonus float64
}

// ProviderName identifies an LLM vendor. Dispatch on this tag is explicit
// (llm.Provider implementations keyed by name), never a runtime string switch
// threaded through call sites.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderAzure     ProviderName = "azure-openai"
	ProviderVLLM      ProviderName = "vllm"
	ProviderOther     ProviderName = "other"
)

// LLMConfig controls C8.
type LLMConfig struct {
	Provider          ProviderName
	Model             string
	Temperature       float64
	TopP              float64
	MaxOutputTokens   int
	Timeout           time.Duration
	MaxRetries        int
	FallbackProviders []ProviderName
	Streaming         bool
}

// FreshnessConfig controls citation freshness categorization.
type FreshnessConfig struct {
	FreshDays  int
	RecentDays int
}

// Config is the fully-resolved, per-tenant pipeline configuration.
type Config struct {
	TenantID        string
	Retrieval       RetrievalConfig
	Reranker        RerankerConfig
	Guardrail       GuardrailConfig
	Context         ContextConfig
	LLM             LLMConfig
	Freshness       FreshnessConfig
	Language        string
	OverallTimeout  time.Duration
}

// Defaults is the subset of process-wide environment configuration
// (see package config) that seeds the built-in fallback Config.
type Defaults struct {
	KBase            int
	MaxContextTokens int
	DefaultProvider  ProviderName
	DefaultModel     string
	OverallTimeout   time.Duration
}

// Default returns the built-in fallback configuration, seeded from process
// environment defaults (see config.Defaults). Resolve never fails; a tenant
// without an explicit override gets this value.
func Default(env Defaults) Config {
	return Config{
		Retrieval: RetrievalConfig{
			KBase:                env.KBase,
			VectorWeight:         0.7,
			LexicalWeight:        0.3,
			QueryAdaptiveWeights: true,
			VectorTimeout:        5 * time.Second,
			LexicalTimeout:       3 * time.Second,
		},
		Reranker: RerankerConfig{
			Enabled:         true,
			TopIn:           20,
			TopOut:          8,
			FallbackOnError: true,
			Timeout:         10 * time.Second,
		},
		Guardrail: GuardrailConfig{
			Preset:         PresetModerate,
			MinConfidence:  0.35,
			MinTopScore:    0.15,
			MinMeanScore:   0.05,
			MinResultCount: 1,
		},
		Context: ContextConfig{
			MaxContextTokens:   env.MaxContextTokens,
			PerDocCap:          2,
			PerSectionCap:      1,
			NoveltyAlpha:       0.5,
			AnswerabilityBonus: 0.1,
		},
		LLM: LLMConfig{
			Provider:          env.DefaultProvider,
			Model:             env.DefaultModel,
			Temperature:       0.2,
			TopP:              1.0,
			MaxOutputTokens:   1024,
			Timeout:           25 * time.Second,
			MaxRetries:        2,
			FallbackProviders: []ProviderName{ProviderAnthropic},
			Streaming:         true,
		},
		Freshness: FreshnessConfig{
			FreshDays:  7,
			RecentDays: 30,
		},
		Language:       "en",
		OverallTimeout: env.OverallTimeout,
	}
}
