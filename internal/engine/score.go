package engine

import (
	"math"

	"compat-quiz-service/internal/domain"
)

// Score computes the compatibility percentage and bucket for a set of answers.
//
// Each answered question contributes the average weight of its selected options. Every
// question contributes its best weight to the maximum, answered or not.
func Score(answers domain.Answers, questions []domain.QuestionSpec) domain.Result {
	var total, maxPossible float64
	for i, question := range questions {
		if selected := answers[i]; len(selected) > 0 {
			var sum float64
			for _, idx := range selected {
				if idx >= 0 && idx < len(question.Weights) {
					sum += question.Weights[idx]
				}
			}
			total += sum / float64(len(selected))
		}
		maxPossible += question.MaxWeight()
	}
	if maxPossible == 0 {
		maxPossible = 1
	}
	percentage := int(math.Round(100 * total / maxPossible))
	return domain.Result{
		Percentage: percentage,
		Bucket:     domain.BucketFor(percentage),
	}
}
