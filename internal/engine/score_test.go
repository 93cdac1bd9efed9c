package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compat-quiz-service/internal/domain"
)

func singleChoice(weights ...float64) domain.QuestionSpec {
	options := make([]string, len(weights))
	for i := range options {
		options[i] = string(rune('A' + i))
	}
	return domain.QuestionSpec{Prompt: "Q", Options: options, Weights: weights}
}

func TestScoreMaxWeightChoiceCountsFully(t *testing.T) {
	questions := []domain.QuestionSpec{singleChoice(0.5, 1, 1, 0.7)}
	result := Score(domain.Answers{0: {1}}, questions)
	assert.Equal(t, 100, result.Percentage)
	assert.Equal(t, "Excellent Match", result.Bucket.Label)
}

func TestScoreAllMaxAcrossEightQuestions(t *testing.T) {
	weights := [][]float64{
		{0.5, 1, 1, 0.7}, {0.8, 1, 1, 0.6}, {1, 0.9, 0.8, 0.7}, {1, 0.7, 0.5, 0.3},
		{1, 1, 0.6, 0.5}, {1, 0.9, 1, 0.7}, {1, 1, 0.9, 0.9}, {1, 0.9, 0.8, 0.9},
	}
	questions := make([]domain.QuestionSpec, 0, len(weights))
	answers := domain.Answers{}
	for i, w := range weights {
		questions = append(questions, singleChoice(w...))
		for j, v := range w {
			if v == 1 {
				answers[i] = []int{j}
				break
			}
		}
	}
	result := Score(answers, questions)
	assert.Equal(t, 100, result.Percentage)
	assert.Equal(t, "Excellent Match", result.Bucket.Label)
}

func TestScoreNothingAnswered(t *testing.T) {
	questions := []domain.QuestionSpec{singleChoice(1, 0.5), singleChoice(0.2, 1)}
	result := Score(domain.Answers{}, questions)
	assert.Equal(t, 0, result.Percentage)
	assert.Equal(t, "Different Paths", result.Bucket.Label)

	empty := Score(nil, nil)
	assert.Equal(t, 0, empty.Percentage)
}

func TestScoreAveragesMultiSelection(t *testing.T) {
	q := singleChoice(1, 0.9, 0.8, 0.7)
	q.MaxSelections = domain.Unlimited
	result := Score(domain.Answers{0: {0, 2}}, []domain.QuestionSpec{q})
	assert.Equal(t, 90, result.Percentage)
	assert.Equal(t, "Excellent Match", result.Bucket.Label)
}

func TestScoreUnansweredStillCountsInMaximum(t *testing.T) {
	questions := []domain.QuestionSpec{singleChoice(1, 0.5), singleChoice(1, 0.5)}
	result := Score(domain.Answers{0: {0}}, questions)
	assert.Equal(t, 50, result.Percentage)
	assert.Equal(t, "Different Paths", result.Bucket.Label)
}

func TestScoreMixedBuckets(t *testing.T) {
	questions := []domain.QuestionSpec{singleChoice(1, 0.7), singleChoice(1, 0.7)}
	result := Score(domain.Answers{0: {0}, 1: {1}}, questions)
	// (1 + 0.7) / 2 = 85%
	assert.Equal(t, 85, result.Percentage)
	assert.Equal(t, "Excellent Match", result.Bucket.Label)

	result = Score(domain.Answers{0: {1}, 1: {1}}, questions)
	assert.Equal(t, 70, result.Percentage)
	assert.Equal(t, "Great Compatibility", result.Bucket.Label)
}

func TestScoreIsDeterministic(t *testing.T) {
	e, err := New(testQuiz(false))
	require.NoError(t, err)
	answers := domain.Answers{0: {0}, 1: {1, 3}, 2: {0, 2}}
	first := Score(answers, e.Quiz().Questions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(answers, e.Quiz().Questions))
	}
	assert.Equal(t, domain.Answers{0: {0}, 1: {1, 3}, 2: {0, 2}}, answers)
}
