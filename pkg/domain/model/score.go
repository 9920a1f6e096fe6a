package model

import (
	"fmt"
	"math"
	"time"
)

const (
	// MaxScore is the upper bound of every contact score
	MaxScore = 100.0

	frequencyWindow    = 30 * 24 * time.Hour
	frequencyTarget    = 30.0
	frequencyWeight    = 50.0
	decayRatePerDay    = 0.1
	qualityWeight      = 20.0
	qualityNoteLength  = 100.0
	similarityFallback = 0.0
)

// ResponseScore estimates how engaged the user is with a contact.
//
//	frequency = min(interactions in trailing 30 days / 30, 1) * 50
//	decay     = exp(-0.1 * days since last contact)
//	quality   = min(sum over entries of min(len(notes)/100, 1) * 20, 20)
//	score     = clamp(frequency*decay + quality, 0, 100)
//
// A contact without history scores exactly 0.
func ResponseScore(c *Contact, now time.Time) float64 {
	if c == nil || len(c.History) == 0 {
		return 0
	}

	recent := 0
	var quality float64
	var newest time.Time
	for _, h := range c.History {
		if age := now.Sub(h.Timestamp); age <= frequencyWindow {
			recent++
		}
		quality += math.Min(float64(len(h.Notes))/qualityNoteLength, 1) * qualityWeight
		if h.Timestamp.After(newest) {
			newest = h.Timestamp
		}
	}
	quality = math.Min(quality, qualityWeight)

	last := newest
	if c.LastContact != nil {
		last = *c.LastContact
	}
	days := math.Max(now.Sub(last).Hours()/24, 0)

	frequency := math.Min(float64(recent)/frequencyTarget, 1) * frequencyWeight
	decay := math.Exp(-decayRatePerDay * days)

	return ClampScore(frequency*decay + quality)
}

// ClampScore bounds s to [0, 100]. NaN becomes 0.
func ClampScore(s float64) float64 {
	if math.IsNaN(s) {
		return similarityFallback
	}
	return math.Max(0, math.Min(MaxScore, s))
}

// ScoreColor maps a response score to a red-to-green chart colour
func ScoreColor(responseScore float64) string {
	s := ClampScore(responseScore)
	r := int(math.Floor((MaxScore - s) * 2.55))
	g := int(math.Floor(s * 2.55))
	return fmt.Sprintf("rgb(%d, %d, 0)", r, g)
}
