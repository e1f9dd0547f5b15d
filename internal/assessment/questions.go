package assessment

import "strings"

// Dimension names the two letters of a dichotomy axis, e.g. "E/I".
type Dimension string

const (
	DimensionEI Dimension = "E/I"
	DimensionSN Dimension = "S/N"
	DimensionTF Dimension = "T/F"
	DimensionJP Dimension = "J/P"
)

// Axes is the fixed order in which the type code is assembled.
var Axes = []Dimension{DimensionEI, DimensionSN, DimensionTF, DimensionJP}

// Letters splits the dimension into its agree (first) and disagree (second) letters.
func (d Dimension) Letters() (first, second string) {
	first, second, _ = strings.Cut(string(d), "/")
	return first, second
}

type PersonalityQuestion struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Dimension Dimension `json:"dimension"`
	Category  string    `json:"category"`
}

// Style is one of the five conflict-handling modes.
type Style string

const (
	StyleCompeting     Style = "competing"
	StyleAccommodating Style = "accommodating"
	StyleAvoiding      Style = "avoiding"
	StyleCollaborating Style = "collaborating"
	StyleCompromising  Style = "compromising"
)

// Styles is the declaration order used when folding for the dominant style.
var Styles = []Style{StyleCompeting, StyleAccommodating, StyleAvoiding, StyleCollaborating, StyleCompromising}

type ConflictQuestion struct {
	ID      int           `json:"id"`
	OptionA string        `json:"option_a"`
	OptionB string        `json:"option_b"`
	ScoreA  map[Style]int `json:"-"`
	ScoreB  map[Style]int `json:"-"`
}

var personalityQuestions = []PersonalityQuestion{
	{ID: 1, Text: "You regularly make new friends.", Dimension: DimensionEI, Category: "Extraversion vs Introversion"},
	{ID: 2, Text: "Complex and novel ideas excite you more than simple and straightforward ones.", Dimension: DimensionSN, Category: "Sensing vs Intuition"},
	{ID: 3, Text: "You usually feel more persuaded by what resonates emotionally with you than by factual arguments.", Dimension: DimensionTF, Category: "Thinking vs Feeling"},
	{ID: 4, Text: "Your living and working spaces are clean and organized.", Dimension: DimensionJP, Category: "Judging vs Perceiving"},
	{ID: 5, Text: "You usually stay calm, even under a lot of pressure.", Dimension: DimensionTF, Category: "Thinking vs Feeling"},
	{ID: 6, Text: "You find the idea of networking or promoting yourself to strangers very daunting.", Dimension: DimensionEI, Category: "Extraversion vs Introversion"},
	{ID: 7, Text: "You prefer to stick with things you know work rather than try new approaches.", Dimension: DimensionSN, Category: "Sensing vs Intuition"},
	{ID: 8, Text: "You often get so lost in thoughts that you ignore or forget your surroundings.", Dimension: DimensionSN, Category: "Sensing vs Intuition"},
	{ID: 9, Text: "You prefer to completely finish one project before starting another.", Dimension: DimensionJP, Category: "Judging vs Perceiving"},
	{ID: 10, Text: "You are very sentimental and emotional.", Dimension: DimensionTF, Category: "Thinking vs Feeling"},
	{ID: 11, Text: "You enjoy having a wide circle of acquaintances.", Dimension: DimensionEI, Category: "Extraversion vs Introversion"},
	{ID: 12, Text: "You often rely on your gut feeling when making decisions.", Dimension: DimensionTF, Category: "Thinking vs Feeling"},
}

var conflictQuestions = []ConflictQuestion{
	{
		ID:      1,
		OptionA: "In a dispute, one needs to show their strength and assertiveness.",
		OptionB: "To maintain good relations, one can give in during an argument.",
		ScoreA:  map[Style]int{StyleCompeting: 1},
		ScoreB:  map[Style]int{StyleAccommodating: 1},
	},
	{
		ID:      2,
		OptionA: "If both parties give in in terms of their demands, then any conflict can be solved.",
		OptionB: "If one makes an effort, they can find a solution that completely satisfies both parties involved in the conflict.",
		ScoreA:  map[Style]int{StyleCompromising: 1},
		ScoreB:  map[Style]int{StyleCollaborating: 1},
	},
	{
		ID:      3,
		OptionA: "I try to find a compromise solution.",
		OptionB: "I attempt to deal with all of his and my concerns.",
		ScoreA:  map[Style]int{StyleCompromising: 1},
		ScoreB:  map[Style]int{StyleCollaborating: 1},
	},
	{
		ID:      4,
		OptionA: "I might try to soothe the other's feelings and preserve our relationship.",
		OptionB: "I try to do what is necessary to avoid useless tensions.",
		ScoreA:  map[Style]int{StyleAccommodating: 1},
		ScoreB:  map[Style]int{StyleAvoiding: 1},
	},
	{
		ID:      5,
		OptionA: "I try to find a compromise solution.",
		OptionB: "I consistently try to get my way.",
		ScoreA:  map[Style]int{StyleCompromising: 1},
		ScoreB:  map[Style]int{StyleCompeting: 1},
	},
	{
		ID:      6,
		OptionA: "I attempt to avoid creating unpleasantness for myself.",
		OptionB: "I try to win my position.",
		ScoreA:  map[Style]int{StyleAvoiding: 1},
		ScoreB:  map[Style]int{StyleCompeting: 1},
	},
	{
		ID:      7,
		OptionA: "I try to postpone the issue until I have had some time to think it over.",
		OptionB: "I give up some points in exchange for others.",
		ScoreA:  map[Style]int{StyleAvoiding: 1},
		ScoreB:  map[Style]int{StyleCompromising: 1},
	},
	{
		ID:      8,
		OptionA: "I am usually firm in pursuing my goals.",
		OptionB: "I might try to soothe the other's feelings and preserve our relationship.",
		ScoreA:  map[Style]int{StyleCompeting: 1},
		ScoreB:  map[Style]int{StyleAccommodating: 1},
	},
	{
		ID:      9,
		OptionA: "I feel that differences are not always worth worrying about.",
		OptionB: "I make some effort to get my way.",
		ScoreA:  map[Style]int{StyleAvoiding: 1},
		ScoreB:  map[Style]int{StyleCompeting: 1},
	},
	{
		ID:      10,
		OptionA: "I am firm in pursuing my goals.",
		OptionB: "I try to find a compromise solution.",
		ScoreA:  map[Style]int{StyleCompeting: 1},
		ScoreB:  map[Style]int{StyleCompromising: 1},
	},
	{
		ID:      11,
		OptionA: "I attempt to get all concerns and issues immediately out in the open.",
		OptionB: "I might try to soothe the other's feelings and preserve our relationship.",
		ScoreA:  map[Style]int{StyleCollaborating: 1},
		ScoreB:  map[Style]int{StyleAccommodating: 1},
	},
	{
		ID:      12,
		OptionA: "I sometimes sacrifice my own wishes for the wishes of the other person.",
		OptionB: "I try to get the other person to settle for a compromise.",
		ScoreA:  map[Style]int{StyleAccommodating: 1},
		ScoreB:  map[Style]int{StyleCompromising: 1},
	},
}

// PersonalityQuestions returns a copy of the fixed Likert questionnaire.
func PersonalityQuestions() []PersonalityQuestion {
	out := make([]PersonalityQuestion, len(personalityQuestions))
	copy(out, personalityQuestions)
	return out
}

// ConflictQuestions returns a copy of the fixed forced-choice questionnaire.
// Score maps are shared with the package data and must not be mutated.
func ConflictQuestions() []ConflictQuestion {
	out := make([]ConflictQuestion, len(conflictQuestions))
	copy(out, conflictQuestions)
	return out
}
