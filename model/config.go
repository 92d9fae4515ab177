package model

import "time"

// ScenarioConfig holds the tunables of one scenario synthesis run.
type ScenarioConfig struct {
	// EnrichmentTimeout bounds the single external narrative-enrichment
	// call, the only unbounded-latency operation in the pipeline.
	EnrichmentTimeout time.Duration `json:"enrichment_timeout"`

	// ArcMaxLength is the truncation length for fallback character arcs
	// built from raw narrative text.
	ArcMaxLength int `json:"arc_max_length"`
}

// DefaultScenarioConfig returns a sensible default configuration.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		EnrichmentTimeout: 30 * time.Second,
		ArcMaxLength:      160,
	}
}
