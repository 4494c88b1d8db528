package domain

import "time"

// Optimizer phases.
const (
	PhaseRandom   = "random"
	PhaseRefine   = "refine"
	PhaseFineTune = "fine_tune"
)

// OptimizationTrial is one evaluated weight configuration.
type OptimizationTrial struct {
	Index   int                 `json:"index"`
	Phase   string              `json:"phase"`
	Weights WeightConfiguration `json:"weights"`
	Score   float64             `json:"score"` // hit rate, percent
}

// OptimizationRun is the persisted state of one optimizer run.
type OptimizationRun struct {
	RunID     string              `json:"run_id"`
	Strategy  string              `json:"strategy"`
	Threshold int                 `json:"threshold"`
	FromRound int                 `json:"from_round"`
	ToRound   int                 `json:"to_round"`
	Best      WeightConfiguration `json:"best_weights"`
	BestScore float64             `json:"best_score"`
	CreatedAt time.Time           `json:"timestamp"`
	Trials    []OptimizationTrial `json:"history"`
}
