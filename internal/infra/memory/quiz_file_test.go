package memory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"compat-quiz-service/internal/domain"
)

const quizYAML = `
quizzes:
  - id: short
    title: Short quiz
    collect_name: true
    questions:
      - id: q1
        prompt: Pick hobbies
        options: [Sports, Cooking]
        weights: [1, 0.8]
        max_selections: -1
      - id: q2
        prompt: Pick one
        options: [Yes, No]
        weights: [1, 0]
`

func TestLoadQuizFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzes.yaml")
	if err := os.WriteFile(path, []byte(quizYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	quizzes, err := LoadQuizFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	quiz, ok := quizzes["short"]
	if !ok {
		t.Fatalf("expected quiz short, got %v", quizzes)
	}
	if !quiz.CollectName || !quiz.Questions[0].Unlimited() || quiz.Questions[1].Limit() != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if quiz.Questions[1].Options[0] != "Yes" {
		t.Fatalf("expected option text, got %q", quiz.Questions[1].Options[0])
	}
}

func TestParseQuizzesFailsFast(t *testing.T) {
	_, err := ParseQuizzes([]byte(`
quizzes:
  - id: bad
    questions:
      - prompt: Mismatch
        options: [a, b]
        weights: [1]
`))
	if !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected invalid quiz, got %v", err)
	}
}
