package domain

// Zone is a third of the number range.
type Zone int

const (
	ZoneLow  Zone = iota // 1-15
	ZoneMid              // 16-30
	ZoneHigh             // 31-45
)

// ZoneCount is the number of zones.
const ZoneCount = 3

// ZoneOf returns the zone of n.
func ZoneOf(n int) Zone {
	switch {
	case n <= 15:
		return ZoneLow
	case n <= 30:
		return ZoneMid
	default:
		return ZoneHigh
	}
}

func (z Zone) String() string {
	switch z {
	case ZoneLow:
		return "low"
	case ZoneMid:
		return "mid"
	default:
		return "high"
	}
}

// NumberProfile holds the features derived for one number from a series.
type NumberProfile struct {
	Number         int     `json:"number"`
	TotalFrequency int     `json:"total_frequency"`
	Recent50       int     `json:"recent_50"`
	Recent100      int     `json:"recent_100"`
	Absence        int     `json:"absence"` // rounds since last appearance
	GapMean        float64 `json:"gap_mean"`
	GapStdDev      float64 `json:"gap_std"`
	Zone           Zone    `json:"zone"`
	Odd            bool    `json:"odd"`
	Hotness        float64 `json:"hotness"`
}

// ScoreRecord is the scored form of a NumberProfile.
type ScoreRecord struct {
	Number    int     `json:"number"`
	Frequency float64 `json:"frequency_score"`
	Trend     float64 `json:"trend_score"`
	Absence   float64 `json:"absence_score"`
	Hotness   float64 `json:"hotness_score"`
	Total     float64 `json:"total_score"`
}
