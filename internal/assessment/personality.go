package assessment

const (
	MinLikert     = 1
	NeutralLikert = 4
	MaxLikert     = 7
)

// PersonalityScores maps each of the eight letters to its accumulated points.
type PersonalityScores map[string]int

type PersonalityResult struct {
	Type   string            `json:"type"`
	Scores PersonalityScores `json:"scores"`
}

func newPersonalityScores() PersonalityScores {
	scores := make(PersonalityScores, 2*len(Axes))
	for _, axis := range Axes {
		first, second := axis.Letters()
		scores[first] = 0
		scores[second] = 0
	}
	return scores
}

// ValidLikert reports whether v is on the 1..7 scale.
func ValidLikert(v int) bool {
	return v >= MinLikert && v <= MaxLikert
}

// ScorePersonality tallies Likert answers keyed by question index.
// Missing or off-scale answers contribute nothing to either letter.
func ScorePersonality(questions []PersonalityQuestion, answers map[int]int) PersonalityResult {
	scores := newPersonalityScores()

	for i, question := range questions {
		answer, ok := answers[i]
		if !ok || !ValidLikert(answer) {
			continue
		}
		first, second := question.Dimension.Letters()
		switch {
		case answer < NeutralLikert:
			scores[second] += NeutralLikert - answer
		case answer > NeutralLikert:
			scores[first] += answer - (NeutralLikert - 1)
		}
	}

	return PersonalityResult{Type: typeCode(scores), Scores: scores}
}

// typeCode picks the stronger letter per axis; ties fall to the second letter.
func typeCode(scores PersonalityScores) string {
	code := make([]byte, 0, len(Axes))
	for _, axis := range Axes {
		first, second := axis.Letters()
		if scores[first] > scores[second] {
			code = append(code, first...)
		} else {
			code = append(code, second...)
		}
	}
	return string(code)
}
