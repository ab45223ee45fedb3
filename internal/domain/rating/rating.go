package rating

// Outcome is a player's result in a finished match.
type Outcome int

// Match outcomes from a single player's perspective.
const (
	Loss Outcome = iota
	Win
	Draw
)

// Score maps an outcome to the observed Elo score S.
func (o Outcome) Score() float64 {
	switch o {
	case Win:
		return ScoreWin
	case Draw:
		return ScoreDraw
	default:
		return ScoreLoss
	}
}

// Rating is the persistent skill record for one player in one mode.
type Rating struct {
	Value  int
	Wins   int
	Losses int
	// Streak is a signed run length: positive for consecutive wins,
	// negative for consecutive losses. Draws reset it to zero.
	Streak int
}

// New returns a fresh rating at the default value.
func New() Rating {
	return Rating{Value: DefaultValue}
}

// ApplyResult folds one match result into the record. delta already carries
// the win/loss direction from the caller; it is added as-is.
func (r *Rating) ApplyResult(outcome Outcome, delta int) {
	r.Value += delta
	switch outcome {
	case Win:
		r.Wins++
		if r.Streak > 0 {
			r.Streak++
		} else {
			r.Streak = 1
		}
	case Loss:
		r.Losses++
		if r.Streak < 0 {
			r.Streak--
		} else {
			r.Streak = -1
		}
	case Draw:
		r.Streak = 0
	}
}

// Games returns the total number of decided matches on the record.
func (r *Rating) Games() int {
	return r.Wins + r.Losses
}
