package notify

import (
	"context"
	"fmt"
	"strings"

	"compat-quiz-service/internal/domain"
)

// Notifier delivers a completed quiz to an outbound endpoint.
type Notifier interface {
	Notify(ctx context.Context, sub Submission) error
}

// Submission is the human-readable summary of a completed quiz.
type Submission struct {
	ParticipantName string
	Percentage      int
	ResultLabel     string
	Answers         string
}

// NewSubmission formats a completion against the quiz it belongs to.
func NewSubmission(quiz domain.Quiz, c domain.Completion) Submission {
	return Submission{
		ParticipantName: c.ParticipantName,
		Percentage:      c.Result.Percentage,
		ResultLabel:     c.Result.Bucket.Label,
		Answers:         FormatAnswers(quiz, c.Answers),
	}
}

// Subject is the mail subject line for the submission.
func (s Submission) Subject() string {
	return fmt.Sprintf("Quiz Submission: %s - %s (%d%%)", s.ParticipantName, s.ResultLabel, s.Percentage)
}

// FormatAnswers renders answered questions as "Q<n>: prompt\nAnswer(s): a, b" blocks.
func FormatAnswers(quiz domain.Quiz, answers domain.Answers) string {
	blocks := make([]string, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		selected := answers[i]
		if len(selected) == 0 {
			continue
		}
		labels := make([]string, 0, len(selected))
		for _, idx := range selected {
			if idx >= 0 && idx < len(question.Options) {
				labels = append(labels, question.Options[idx])
			}
		}
		blocks = append(blocks, fmt.Sprintf("Q%d: %s\nAnswer(s): %s", i+1, question.Prompt, strings.Join(labels, ", ")))
	}
	return strings.Join(blocks, "\n\n")
}

// Nop drops submissions; used when no endpoint is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Submission) error { return nil }
