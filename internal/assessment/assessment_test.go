package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformLikert(n, v int) map[int]int {
	answers := make(map[int]int, n)
	for i := 0; i < n; i++ {
		answers[i] = v
	}
	return answers
}

func uniformChoice(n int, c Choice) map[int]Choice {
	answers := make(map[int]Choice, n)
	for i := 0; i < n; i++ {
		answers[i] = c
	}
	return answers
}

func TestScorePersonality(t *testing.T) {
	questions := PersonalityQuestions()
	require.Len(t, questions, 12)

	t.Run("all neutral ties to INFP", func(t *testing.T) {
		result := ScorePersonality(questions, uniformLikert(len(questions), NeutralLikert))
		assert.Equal(t, "INFP", result.Type)
		for letter, v := range result.Scores {
			assert.Zerof(t, v, "letter %s", letter)
		}
		assert.Len(t, result.Scores, 8)
	})

	t.Run("strong agree on E/I adds four to E", func(t *testing.T) {
		result := ScorePersonality(questions, map[int]int{0: 7})
		assert.Equal(t, 4, result.Scores["E"])
		assert.Equal(t, 0, result.Scores["I"])
		assert.Equal(t, "ENFP", result.Type)
	})

	t.Run("strong disagree on T/F adds three to F", func(t *testing.T) {
		require.Equal(t, DimensionTF, questions[2].Dimension)
		result := ScorePersonality(questions, map[int]int{2: 1})
		assert.Equal(t, 3, result.Scores["F"])
		assert.Equal(t, 0, result.Scores["T"])
	})

	t.Run("likert weights", func(t *testing.T) {
		cases := []struct {
			answer      int
			first, secd int
		}{
			{1, 0, 3}, {2, 0, 2}, {3, 0, 1}, {4, 0, 0}, {5, 2, 0}, {6, 3, 0}, {7, 4, 0},
		}
		for _, tc := range cases {
			result := ScorePersonality(questions, map[int]int{0: tc.answer})
			assert.Equalf(t, tc.first, result.Scores["E"], "answer %d", tc.answer)
			assert.Equalf(t, tc.secd, result.Scores["I"], "answer %d", tc.answer)
		}
	})

	t.Run("all strong agree", func(t *testing.T) {
		result := ScorePersonality(questions, uniformLikert(len(questions), 7))
		assert.Equal(t, "ESTJ", result.Type)
		assert.Equal(t, PersonalityScores{"E": 12, "I": 0, "S": 12, "N": 0, "T": 16, "F": 0, "J": 8, "P": 0}, result.Scores)
	})

	t.Run("all strong disagree", func(t *testing.T) {
		result := ScorePersonality(questions, uniformLikert(len(questions), 1))
		assert.Equal(t, "INFP", result.Type)
		assert.Equal(t, PersonalityScores{"E": 0, "I": 9, "S": 0, "N": 9, "T": 0, "F": 12, "J": 0, "P": 6}, result.Scores)
	})

	t.Run("missing and off-scale answers are ignored", func(t *testing.T) {
		result := ScorePersonality(questions, map[int]int{0: 0, 1: 9, 40: 7})
		assert.Equal(t, "INFP", result.Type)
		for _, v := range result.Scores {
			assert.Zero(t, v)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		answers := map[int]int{0: 6, 1: 2, 2: 5, 3: 7, 5: 1, 8: 3, 11: 4}
		first := ScorePersonality(questions, answers)
		second := ScorePersonality(questions, answers)
		assert.Equal(t, first, second)
	})
}

func TestScoreConflict(t *testing.T) {
	questions := ConflictQuestions()
	require.Len(t, questions, 12)

	t.Run("all A", func(t *testing.T) {
		expected := ConflictScores{}
		for _, style := range Styles {
			expected[style] = 0
		}
		for _, q := range questions {
			for style, points := range q.ScoreA {
				expected[style] += points
			}
		}

		result := ScoreConflict(questions, uniformChoice(len(questions), ChoiceA))
		assert.Equal(t, expected, result.Scores)
		assert.Equal(t, ConflictScores{
			StyleCompeting:     3,
			StyleAccommodating: 2,
			StyleAvoiding:      3,
			StyleCollaborating: 1,
			StyleCompromising:  3,
		}, result.Scores)
		// competing, avoiding and compromising tie at 3; the last one folded wins.
		assert.Equal(t, StyleCompromising, result.DominantStyle)
	})

	t.Run("all B", func(t *testing.T) {
		result := ScoreConflict(questions, uniformChoice(len(questions), ChoiceB))
		assert.Equal(t, ConflictScores{
			StyleCompeting:     3,
			StyleAccommodating: 3,
			StyleAvoiding:      1,
			StyleCollaborating: 2,
			StyleCompromising:  3,
		}, result.Scores)
		assert.Equal(t, StyleCompromising, result.DominantStyle)
	})

	t.Run("competing only from A answers", func(t *testing.T) {
		answers := map[int]Choice{}
		want := 0
		for i, q := range questions {
			if q.ScoreA[StyleCompeting] == 1 {
				answers[i] = ChoiceA
				want++
			}
		}
		result := ScoreConflict(questions, answers)
		assert.Equal(t, want, result.Scores[StyleCompeting])
		assert.Equal(t, StyleCompeting, result.DominantStyle)
	})

	t.Run("tie goes to later style", func(t *testing.T) {
		custom := []ConflictQuestion{
			{ID: 1, ScoreA: map[Style]int{StyleAccommodating: 1}, ScoreB: map[Style]int{StyleAvoiding: 1}},
			{ID: 2, ScoreA: map[Style]int{StyleAccommodating: 1}, ScoreB: map[Style]int{StyleCollaborating: 1}},
		}
		result := ScoreConflict(custom, map[int]Choice{0: ChoiceA, 1: ChoiceB})
		assert.Equal(t, 1, result.Scores[StyleAccommodating])
		assert.Equal(t, 1, result.Scores[StyleCollaborating])
		assert.Equal(t, StyleCollaborating, result.DominantStyle)
	})

	t.Run("empty answers resolve to last style", func(t *testing.T) {
		result := ScoreConflict(questions, nil)
		assert.Equal(t, StyleCompromising, result.DominantStyle)
	})

	t.Run("multi-style credit", func(t *testing.T) {
		custom := []ConflictQuestion{
			{ID: 1, ScoreA: map[Style]int{StyleCompeting: 1, StyleAvoiding: 2}, ScoreB: map[Style]int{}},
		}
		result := ScoreConflict(custom, map[int]Choice{0: ChoiceA})
		assert.Equal(t, 1, result.Scores[StyleCompeting])
		assert.Equal(t, 2, result.Scores[StyleAvoiding])
		assert.Equal(t, StyleAvoiding, result.DominantStyle)
	})

	t.Run("idempotent", func(t *testing.T) {
		answers := map[int]Choice{0: ChoiceA, 1: ChoiceB, 4: ChoiceB, 7: ChoiceA, 11: ChoiceB}
		assert.Equal(t, ScoreConflict(questions, answers), ScoreConflict(questions, answers))
	})
}

func TestPersonalityQuiz(t *testing.T) {
	quiz := NewPersonalityQuiz()
	q, idx, ok := quiz.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, q.ID)
	assert.InDelta(t, 100.0/12, quiz.Progress(), 1e-9)

	_, err := quiz.Answer(8)
	require.ErrorIs(t, err, ErrInvalidAnswer)

	for i := 0; i < quiz.Len()-1; i++ {
		done, err := quiz.Answer(NeutralLikert)
		require.NoError(t, err)
		require.False(t, done)
	}
	require.NoError(t, quiz.Revise(0, 7))
	_, ok = quiz.Result()
	assert.False(t, ok)

	done, err := quiz.Answer(NeutralLikert)
	require.NoError(t, err)
	require.True(t, done)

	result, ok := quiz.Result()
	require.True(t, ok)
	assert.Equal(t, "ENFP", result.Type)

	_, _, ok = quiz.Current()
	assert.False(t, ok)
	_, err = quiz.Answer(4)
	assert.ErrorIs(t, err, ErrQuizComplete)
	assert.ErrorIs(t, quiz.Revise(0, 4), ErrQuizComplete)
}

func TestConflictQuiz(t *testing.T) {
	quiz := NewConflictQuiz()
	_, err := quiz.Answer(Choice("C"))
	require.ErrorIs(t, err, ErrInvalidAnswer)

	var done bool
	for i := 0; i < quiz.Len(); i++ {
		done, err = quiz.Answer(ChoiceA)
		require.NoError(t, err)
	}
	require.True(t, done)
	result, ok := quiz.Result()
	require.True(t, ok)
	assert.Equal(t, StyleCompromising, result.DominantStyle)
	assert.Error(t, NewConflictQuiz().Revise(3, ChoiceA))
}

func TestDescriptions(t *testing.T) {
	assert.Equal(t, "The Mediator - Poetic and kind altruist", DescribeType("INFP"))
	assert.Equal(t, "Unique personality type", DescribeType("XXXX"))

	for _, style := range Styles {
		p, ok := DescribeStyle(style)
		require.Truef(t, ok, "style %s", style)
		assert.Len(t, p.Characteristics, 4)
	}
	_, ok := DescribeStyle("sulking")
	assert.False(t, ok)

	docs := KnowledgeDocuments()
	assert.Len(t, docs, 21)
	assert.Contains(t, docs[0], "ESTJ")
}
