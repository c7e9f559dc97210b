// Package rating implements the pairwise Bayesian skill-rating engine.
// Ratings are Glicko-style (mean, deviation) pairs updated one game at a
// time. The package is pure: no I/O, no hidden state, no randomness.
package rating

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultValue is the skill mean assigned to an unseen player-character pair.
	DefaultValue = 1500.0

	// DefaultDeviation is the uncertainty assigned to an unseen pair.
	DefaultDeviation = 250.0

	// RankableDeviation is the confidence threshold: only ratings with a
	// deviation below it are eligible for leaderboards and reports.
	RankableDeviation = 30.0

	// Decay parameters. Each hourly decay pass multiplies the deviation
	// by DecayFactor and adds DecayBias, but only for rows already below
	// DecayCeiling, which bounds repeated application.
	DecayFactor  = 1.003
	DecayBias    = 0.01
	DecayCeiling = 250.0

	// q maps the 400-point logistic scale onto the natural exponent.
	q = math.Ln10 / 400.0
)

// ══════════════════════════════════════════════════════════════════════════════
// RATING PAIR
// ══════════════════════════════════════════════════════════════════════════════

// Rating is one skill estimate: a mean and its uncertainty, both in
// rating points.
type Rating struct {
	Value     float64
	Deviation float64
}

// Default returns the estimate assigned to an unseen player-character pair.
func Default() Rating {
	return Rating{Value: DefaultValue, Deviation: DefaultDeviation}
}

// Rankable reports whether the estimate is confident enough for rank tables.
func (r Rating) Rankable() bool {
	return r.Deviation < RankableDeviation
}

// gFactor dampens an opponent's influence by their uncertainty.
func gFactor(deviation float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*q*q*deviation*deviation/(math.Pi*math.Pi))
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH UPDATE
// ══════════════════════════════════════════════════════════════════════════════

// Rate computes both sides' updated estimates and the pre-match win
// probability of side A given the outcome of one game.
//
// Properties the numeric form guarantees:
//   - deterministic, and symmetric under swapping sides with the outcome
//     inverted;
//   - neither side's deviation ever increases (no uncertainty aging is
//     applied inside match updates, only by the decay pass);
//   - winProb is in (0, 1), strictly increasing in a.Value-b.Value, and
//     winProbA + winProbB = 1 exactly;
//   - an upset win moves means further than an expected win.
func Rate(a, b Rating, aWins bool) (newA, newB Rating, winProb float64) {
	winProb = WinProbability(a, b)

	scoreA := 0.0
	if aWins {
		scoreA = 1.0
	}

	newA = updateOne(a, b, scoreA)
	newB = updateOne(b, a, 1.0-scoreA)
	return newA, newB, winProb
}

// updateOne applies the single-opponent update to one side.
func updateOne(r, opp Rating, score float64) Rating {
	g := gFactor(opp.Deviation)
	e := 1.0 / (1.0 + math.Exp(-q*g*(r.Value-opp.Value)))

	// dSquared is the precision one game against this opponent carries.
	dSquared := 1.0 / (q * q * g * g * e * (1.0 - e))

	newDeviation := 1.0 / math.Sqrt(1.0/(r.Deviation*r.Deviation)+1.0/dSquared)
	newValue := r.Value + q*newDeviation*newDeviation*g*(score-e)

	return Rating{Value: newValue, Deviation: newDeviation}
}

// WinProbability returns the pre-match win probability of side A. The
// logistic runs over the combined uncertainty of both estimates, which
// makes the two sides' probabilities exact complements.
func WinProbability(a, b Rating) float64 {
	g := gFactor(math.Hypot(a.Deviation, b.Deviation))
	return 1.0 / (1.0 + math.Exp(-q*g*(a.Value-b.Value)))
}

// ══════════════════════════════════════════════════════════════════════════════
// DECAY
// ══════════════════════════════════════════════════════════════════════════════

// Decay returns the estimate after one staleness pass. Estimates at or
// above DecayCeiling are returned unchanged; the persistence layer applies
// the same rule in bulk SQL.
func Decay(r Rating) Rating {
	if r.Deviation >= DecayCeiling {
		return r
	}
	r.Deviation = r.Deviation*DecayFactor + DecayBias
	return r
}
