package memory

import (
	"fmt"
	"os"

	"compat-quiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type quizFile struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// LoadQuizFile reads quiz definitions from a YAML file and validates every one of them.
func LoadQuizFile(path string) (map[string]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseQuizzes(data)
}

// ParseQuizzes decodes a YAML document with a top-level "quizzes" list.
func ParseQuizzes(data []byte) (map[string]domain.Quiz, error) {
	var file quizFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse quizzes: %w", err)
	}
	quizzes := make(map[string]domain.Quiz, len(file.Quizzes))
	for _, quiz := range file.Quizzes {
		if err := quiz.Validate(); err != nil {
			return nil, err
		}
		if _, dup := quizzes[quiz.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate quiz id %s", domain.ErrInvalidQuiz, quiz.ID)
		}
		quizzes[quiz.ID] = quiz
	}
	return quizzes, nil
}
