package model

import "time"

// Config is the complete treelint configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" json:"store"`
	Analysis    AnalysisConfig    `yaml:"analysis" json:"analysis"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Server      ServerConfig      `yaml:"server" json:"server"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// StoreConfig locates the research cache and tunes its read cache.
type StoreConfig struct {
	Path         string        `yaml:"path" json:"path"`
	CacheEnabled bool          `yaml:"cache_enabled" json:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// AnalysisConfig carries the thresholds and traversal bounds.
type AnalysisConfig struct {
	DuplicateThreshold float64 `yaml:"duplicate_threshold" json:"duplicate_threshold"`
	ClusterThreshold   float64 `yaml:"cluster_threshold" json:"cluster_threshold"`
	MaxCycleDepth      int     `yaml:"max_cycle_depth" json:"max_cycle_depth"`
	MaxTreePersons     int     `yaml:"max_tree_persons" json:"max_tree_persons"`
	MaxGenerations     int     `yaml:"max_generations" json:"max_generations"`
	MinSeverity        string  `yaml:"min_severity" json:"min_severity"`
}

// OutputConfig controls rendered artifacts.
type OutputConfig struct {
	Dir           string `yaml:"dir" json:"dir"`
	IncludeFooter bool   `yaml:"include_footer" json:"include_footer"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// ServerConfig tunes the HTTP tool surface.
type ServerConfig struct {
	Addr              string  `yaml:"addr" json:"addr"`
	Mode              string  `yaml:"mode" json:"mode"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// LLMConfig configures the optional research summarizer.
type LLMConfig struct {
	Provider        string `yaml:"provider" json:"provider"`
	Model           string `yaml:"model" json:"model"`
	APIKey          string `yaml:"api_key,omitempty" json:"-"`
	BaseURL         string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout         int    `yaml:"timeout" json:"timeout"`
	StrictCitations bool   `yaml:"strict_citations" json:"strict_citations"`
	MaxTokens       int    `yaml:"max_tokens" json:"max_tokens"`

	// Proxy overrides for provider traffic; the standard environment
	// variables apply when unset.
	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// ConcurrencyConfig sizes the batch worker pool.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the built-in defaults, the lowest layer of the
// flag > env > file > default hierarchy.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:         "research_cache.db",
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Analysis: AnalysisConfig{
			DuplicateThreshold: 0.85,
			ClusterThreshold:   0.60,
			MaxCycleDepth:      20,
			MaxTreePersons:     1000,
			MaxGenerations:     4,
			MinSeverity:        string(SeverityInfo),
		},
		Output: OutputConfig{
			Dir:           "treelint-reports",
			IncludeFooter: true,
		},
		Server: ServerConfig{
			Addr:              ":8088",
			Mode:              "release",
			RequestsPerSecond: 10,
			Burst:             20,
		},
		LLM: LLMConfig{
			Provider:        "",
			Timeout:         30,
			StrictCitations: true,
			MaxTokens:       1000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
