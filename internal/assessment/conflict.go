package assessment

// Choice is a forced-choice answer, "A" or "B".
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
)

func (c Choice) Valid() bool {
	return c == ChoiceA || c == ChoiceB
}

// ConflictScores maps each style to the number of times it was picked.
type ConflictScores map[Style]int

type ConflictResult struct {
	DominantStyle Style          `json:"dominant_style"`
	Scores        ConflictScores `json:"scores"`
}

// ScoreConflict tallies A/B answers keyed by question index. Every style
// present in the chosen score map is credited, so one option may feed
// several styles.
func ScoreConflict(questions []ConflictQuestion, answers map[int]Choice) ConflictResult {
	scores := make(ConflictScores, len(Styles))
	for _, style := range Styles {
		scores[style] = 0
	}

	for i, question := range questions {
		var credit map[Style]int
		switch answers[i] {
		case ChoiceA:
			credit = question.ScoreA
		case ChoiceB:
			credit = question.ScoreB
		default:
			continue
		}
		for style, points := range credit {
			if _, known := scores[style]; !known || points < 0 {
				continue
			}
			scores[style] += points
		}
	}

	return ConflictResult{DominantStyle: dominantStyle(scores), Scores: scores}
}

// dominantStyle folds left over Styles keeping the current best only when it
// strictly beats the candidate, so a tie goes to the later style.
func dominantStyle(scores ConflictScores) Style {
	best := Styles[0]
	for _, candidate := range Styles[1:] {
		if scores[best] > scores[candidate] {
			continue
		}
		best = candidate
	}
	return best
}
