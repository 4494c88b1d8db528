package domain

// Generation strategy names.
const (
	StrategyScore       = "score"
	StrategyProbability = "probability"
	StrategyPattern     = "pattern"
	StrategyGrid        = "grid"
	StrategySpatial     = "spatial"
	StrategyConsecutive = "consecutive"
	StrategySafe        = "safe"
	StrategyRandom      = "random"
	StrategyHybrid      = "hybrid"
)

// Strategies lists every supported strategy name.
var Strategies = []string{
	StrategyScore,
	StrategyProbability,
	StrategyPattern,
	StrategyGrid,
	StrategySpatial,
	StrategyConsecutive,
	StrategySafe,
	StrategyRandom,
	StrategyHybrid,
}

// IsStrategy reports whether name is a supported strategy.
func IsStrategy(name string) bool {
	for _, s := range Strategies {
		if s == name {
			return true
		}
	}
	return false
}
