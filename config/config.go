// Package config loads process-wide defaults from the environment, the
// ambient layer that seeds the tenant resolver's built-in fallback config
// before any per-tenant override is applied.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ragforge/queryengine/tenant"
)

// Env is the flat set of environment-driven knobs. Struct tags mirror the
// caarlos0/env convention: env:"KEY" envDefault:"value".
type Env struct {
	DefaultProvider string `env:"RAGQE_DEFAULT_PROVIDER" envDefault:"openai"`
	DefaultModel    string `env:"RAGQE_DEFAULT_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIAPIKey    string `env:"RAGQE_OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"RAGQE_ANTHROPIC_API_KEY"`

	QdrantURL        string `env:"RAGQE_QDRANT_URL" envDefault:"localhost:6334"`
	QdrantCollection string `env:"RAGQE_QDRANT_COLLECTION" envDefault:"documents"`
	BleveIndexPath   string `env:"RAGQE_BLEVE_INDEX_PATH" envDefault:"./data/bleve"`

	KBase              int           `env:"RAGQE_KBASE" envDefault:"12"`
	MaxContextTokens   int           `env:"RAGQE_MAX_CONTEXT_TOKENS" envDefault:"8000"`
	OverallTimeoutMs   int           `env:"RAGQE_OVERALL_TIMEOUT_MS" envDefault:"45000"`
	TenantCacheTTL     time.Duration `env:"RAGQE_TENANT_CACHE_TTL" envDefault:"5m"`
}

// Load reads a .env file if present (ignored if absent) and parses the
// environment into Env, applying envDefault tags for anything unset.
func Load() (Env, error) {
	_ = godotenv.Load()

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// TenantDefaults projects Env onto the subset of knobs tenant.Default needs.
func (e Env) TenantDefaults() tenant.Defaults {
	return tenant.Defaults{
		KBase:            e.KBase,
		MaxContextTokens: e.MaxContextTokens,
		DefaultProvider:  tenant.ProviderName(e.DefaultProvider),
		DefaultModel:     e.DefaultModel,
		OverallTimeout:   time.Duration(e.OverallTimeoutMs) * time.Millisecond,
	}
}
