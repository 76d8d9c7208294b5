package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() *Quiz {
	return &Quiz{
		Title:        "Safety basics",
		PassingScore: 70,
		Questions: []QuizQuestion{
			{
				ID:           "q1",
				QuestionText: "Pick the right answer",
				Type:         "single-choice",
				Order:        1,
				Points:       2,
				Options: []QuizOption{
					{ID: "q1a", Text: "Wrong"},
					{ID: "q1b", Text: "Right", IsCorrect: true},
				},
			},
			{
				ID:           "q2",
				QuestionText: "Pick all that apply",
				Type:         "multiple-choice",
				Order:        2,
				Points:       3,
				Options: []QuizOption{
					{ID: "q2a", Text: "Yes", IsCorrect: true},
					{ID: "q2b", Text: "Also yes", IsCorrect: true},
					{ID: "q2c", Text: "No"},
				},
			},
		},
	}
}

func TestValidateQuestions(t *testing.T) {
	assert.NoError(t, sampleQuiz().ValidateQuestions())

	empty := &Quiz{}
	assert.EqualError(t, empty.ValidateQuestions(), "quiz must have at least one question")

	oneOption := sampleQuiz()
	oneOption.Questions[0].Options = oneOption.Questions[0].Options[:1]
	assert.EqualError(t, oneOption.ValidateQuestions(), "each question must have at least 2 options")

	noCorrect := sampleQuiz()
	noCorrect.Questions[0].Options[1].IsCorrect = false
	assert.EqualError(t, noCorrect.ValidateQuestions(), "each question must have at least one correct answer")

	twoCorrectSingle := sampleQuiz()
	twoCorrectSingle.Questions[0].Options[0].IsCorrect = true
	assert.EqualError(t, twoCorrectSingle.ValidateQuestions(), "single-choice questions can only have one correct answer")
}

func TestGrade(t *testing.T) {
	quiz := sampleQuiz()

	perfect := quiz.Grade(map[string][]string{
		"q1": {"q1b"},
		"q2": {"q2a", "q2b"},
	})
	assert.Equal(t, 2, perfect.TotalQuestions)
	assert.Equal(t, 2, perfect.CorrectQuestions)
	assert.Equal(t, 5, perfect.EarnedPoints)
	assert.Equal(t, 5, perfect.TotalPoints)
	assert.Equal(t, 100, perfect.Percentage)
	assert.True(t, perfect.Passed)

	// a partial selection on a multiple-choice question earns nothing
	partial := quiz.Grade(map[string][]string{
		"q1": {"q1b"},
		"q2": {"q2a"},
	})
	assert.Equal(t, 1, partial.CorrectQuestions)
	assert.Equal(t, 2, partial.EarnedPoints)
	assert.Equal(t, 40, partial.Percentage)
	assert.False(t, partial.Passed)

	// selecting a wrong option alongside the right ones also earns nothing
	over := quiz.Grade(map[string][]string{
		"q2": {"q2a", "q2b", "q2c"},
	})
	assert.Equal(t, 0, over.CorrectQuestions)

	none := quiz.Grade(nil)
	assert.Equal(t, 0, none.EarnedPoints)
	assert.False(t, none.Passed)
}

func TestGradeDuplicateSelections(t *testing.T) {
	quiz := sampleQuiz()
	result := quiz.Grade(map[string][]string{
		"q1": {"q1b", "q1b"},
	})
	assert.Equal(t, 1, result.CorrectQuestions)
}

func TestShuffleQuestionsKeepsOrderWhenDisabled(t *testing.T) {
	quiz := sampleQuiz()
	quiz.Questions[0], quiz.Questions[1] = quiz.Questions[1], quiz.Questions[0]

	quiz.ShuffleQuestions(rand.New(rand.NewSource(1)))
	assert.Equal(t, "q1", quiz.Questions[0].ID)
	assert.Equal(t, "q2", quiz.Questions[1].ID)
}

func TestShuffleQuestionsPreservesContent(t *testing.T) {
	quiz := sampleQuiz()
	quiz.RandomizeQuestions = true
	quiz.ShuffleQuestions(rand.New(rand.NewSource(42)))

	ids := map[string]bool{}
	for _, q := range quiz.Questions {
		ids[q.ID] = true
	}
	assert.True(t, ids["q1"])
	assert.True(t, ids["q2"])
}

func TestShuffleOptions(t *testing.T) {
	quiz := sampleQuiz()
	quiz.ShuffleOptions(rand.New(rand.NewSource(1)))
	assert.Equal(t, "q1a", quiz.Questions[0].Options[0].ID) // disabled: untouched

	quiz.RandomizeOptions = true
	quiz.ShuffleOptions(rand.New(rand.NewSource(1)))
	seen := map[string]bool{}
	for _, o := range quiz.Questions[1].Options {
		seen[o.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestSanitizeStripsAnswerKey(t *testing.T) {
	quiz := sampleQuiz()
	quiz.Questions[0].Explanation = "Because it is right"
	quiz.Sanitize()

	for _, q := range quiz.Questions {
		for _, o := range q.Options {
			assert.False(t, o.IsCorrect)
		}
	}
	// explanations survive unless the quiz hides them
	assert.Equal(t, "Because it is right", quiz.Questions[0].Explanation)

	quiz = sampleQuiz()
	quiz.Questions[0].Explanation = "Because it is right"
	quiz.ShowExplanations = false
	quiz.Sanitize()
	assert.Empty(t, quiz.Questions[0].Explanation)
}

func TestQuizTotals(t *testing.T) {
	quiz := sampleQuiz()
	require.Equal(t, 2, quiz.QuestionCount())
	assert.Equal(t, 5, quiz.TotalPoints())
}
