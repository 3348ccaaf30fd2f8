package outbound

import "time"

// PipelineMetrics records retrieval and generation outcomes
type PipelineMetrics interface {
	ModelCall(operation, status string, attempts int, duration time.Duration)
	ImageTierOutcome(tier, outcome string)
	RecipesSynthesized(count int)
	RetrievalCompleted(catalogCount, generatedCount int)
	MealPlanGenerated(status string)
	CacheOperation(operation, status string)
}

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) ModelCall(string, string, int, time.Duration) {}
func (NopMetrics) ImageTierOutcome(string, string)              {}
func (NopMetrics) RecipesSynthesized(int)                       {}
func (NopMetrics) RetrievalCompleted(int, int)                  {}
func (NopMetrics) MealPlanGenerated(string)                     {}
func (NopMetrics) CacheOperation(string, string)                {}
