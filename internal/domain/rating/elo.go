// Package rating implements the Elo-style skill model used by the arena:
// banded K-factors, expected outcome, team-average deltas, and the tier
// classifier derived from the current rating value.
package rating

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultValue is the rating assigned on first query for a player/mode pair.
const DefaultValue = 1200

// Observed match outcomes fed into the Elo update.
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// K-factor bands. Lower-rated players move faster.
const (
	kBandFast     = 40
	kBandMid      = 32
	kBandSlow     = 24
	kBandVeteran  = 16
	kBandFastMax  = 1600
	kBandMidMax   = 2000
	kBandSlowMax  = 2400
	expectedScale = 400
)

// KFactor returns the rating-banded K multiplier for value.
func KFactor(value int) int {
	switch {
	case value < kBandFastMax:
		return kBandFast
	case value < kBandMidMax:
		return kBandMid
	case value < kBandSlowMax:
		return kBandSlow
	default:
		return kBandVeteran
	}
}

// Expected returns the expected outcome for a player rated a against an
// opponent rated b: 1 / (1 + 10^((b-a)/400)).
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/expectedScale))
}

// TeamAverage returns the arithmetic mean of a team's member ratings.
// Each side of a team match is approximated as one virtual player at
// this average.
func TeamAverage(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = float64(v)
	}
	return stat.Mean(fs, nil)
}

// TeamDelta computes the single rating delta for the side averaging avgA
// against the side averaging avgB, given the observed score for side A
// (ScoreWin, ScoreDraw, or ScoreLoss). The same delta is applied to every
// member of side A, and its negation to every member of side B; teammates
// move together regardless of individual rating.
//
// The K band is taken from side A's average.
func TeamDelta(avgA, avgB, score float64) int {
	k := float64(KFactor(int(math.Round(avgA))))
	return int(math.Round(k * (score - Expected(avgA, avgB))))
}
