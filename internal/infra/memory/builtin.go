package memory

import "compat-quiz-service/internal/domain"

// CompatibilityQuizID identifies the built-in quiz.
const CompatibilityQuizID = "compatibility"

// CompatibilityQuiz is the default eight question matrimonial compatibility quiz.
func CompatibilityQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          CompatibilityQuizID,
		Title:       "Compatibility Quiz",
		CollectName: true,
		Questions: []domain.QuestionSpec{
			{
				ID:      "age",
				Prompt:  "What's your age range?",
				Options: []string{"25-28", "28-31", "31-34", "34+"},
				Weights: []float64{0.5, 1, 1, 0.7},
			},
			{
				ID:      "education",
				Prompt:  "What's your educational background?",
				Options: []string{"Undergraduate", "Master's", "PhD/Professional", "Other"},
				Weights: []float64{0.8, 1, 1, 0.6},
			},
			{
				ID:            "values",
				Prompt:        "What's most important in a relationship?",
				Options:       []string{"Family values", "Career balance", "Personal growth", "Adventure & fun"},
				Weights:       []float64{1, 0.9, 0.8, 0.7},
				MaxSelections: domain.Unlimited,
			},
			{
				ID:            "lifestyle",
				Prompt:        "Your lifestyle preferences?",
				Options:       []string{"Vegetarian/Non-smoking", "Flexible diet", "Social drinker", "Party lifestyle"},
				Weights:       []float64{1, 0.7, 0.5, 0.3},
				MaxSelections: domain.Unlimited,
			},
			{
				ID:      "location",
				Prompt:  "How do you feel about living in the USA?",
				Options: []string{"Love it, settled here", "Comfortable, occasional India visits", "Prefer India long-term", "Undecided"},
				Weights: []float64{1, 1, 0.6, 0.5},
			},
			{
				ID:            "career",
				Prompt:        "Your career aspirations?",
				Options:       []string{"Established career", "Growing career", "Entrepreneurial", "Career break/transition"},
				Weights:       []float64{1, 0.9, 1, 0.7},
				MaxSelections: 2,
			},
			{
				ID:            "hobbies",
				Prompt:        "Hobbies and interests?",
				Options:       []string{"Sports & outdoors", "Cooking & food", "Reading & learning", "Travel & culture"},
				Weights:       []float64{1, 1, 0.9, 0.9},
				MaxSelections: domain.Unlimited,
			},
			{
				ID:      "family",
				Prompt:  "Family dynamics preference?",
				Options: []string{"Close-knit family", "Independent but connected", "Nuclear family focus", "Extended family"},
				Weights: []float64{1, 0.9, 0.8, 0.9},
			},
		},
	}
}

// BuiltinQuizzes returns the quizzes served when no file or database is configured.
func BuiltinQuizzes() map[string]domain.Quiz {
	quiz := CompatibilityQuiz()
	return map[string]domain.Quiz{quiz.ID: quiz}
}
