package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Unlimited is the MaxSelections sentinel for questions without an upper bound.
const Unlimited = -1

// QuestionSpec models a weighted question. Options and Weights are aligned by index.
type QuestionSpec struct {
	ID            string    `json:"id" yaml:"id"`
	Prompt        string    `json:"prompt" yaml:"prompt"`
	Options       []string  `json:"options" yaml:"options"`
	Weights       []float64 `json:"weights" yaml:"weights"`
	MaxSelections int       `json:"maxSelections,omitempty" yaml:"max_selections"` // 0 means single choice
}

// Limit returns the effective selection cap: 1 when unset, Unlimited, or the configured cap.
func (q QuestionSpec) Limit() int {
	if q.MaxSelections == 0 {
		return 1
	}
	return q.MaxSelections
}

// Unlimited reports whether the question accepts any number of selections.
func (q QuestionSpec) Unlimited() bool {
	return q.MaxSelections == Unlimited
}

// MaxWeight is the best score a single question can contribute.
func (q QuestionSpec) MaxWeight() float64 {
	if len(q.Weights) == 0 {
		return 0
	}
	return slices.Max(q.Weights)
}

// Hint is the instruction shown above multi-choice options.
func (q QuestionSpec) Hint() string {
	switch {
	case q.Unlimited():
		return "Select all that apply"
	case q.Limit() > 1:
		return fmt.Sprintf("Select up to %d options", q.Limit())
	default:
		return ""
	}
}

func (q QuestionSpec) validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("prompt is blank")
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("no options")
	}
	if len(q.Weights) != len(q.Options) {
		return fmt.Errorf("%d weights for %d options", len(q.Weights), len(q.Options))
	}
	if q.MaxSelections < Unlimited {
		return fmt.Errorf("max selections %d is negative", q.MaxSelections)
	}
	return nil
}

// Quiz is an ordered list of weighted questions.
type Quiz struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title,omitempty" yaml:"title"`
	CollectName bool           `json:"collectName,omitempty" yaml:"collect_name"`
	Questions   []QuestionSpec `json:"questions" yaml:"questions"`
}

// Validate checks the quiz definition; loaders call it before a quiz is served.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz %s has no questions", ErrInvalidQuiz, q.ID)
	}
	for i, question := range q.Questions {
		if err := question.validate(); err != nil {
			return fmt.Errorf("%w: quiz %s question %d: %v", ErrInvalidQuiz, q.ID, i+1, err)
		}
	}
	return nil
}

// NormalizeAnswers checks externally supplied answers against the quiz and returns
// them sorted. Unknown questions or options and repeated options are ErrInvalidIndex;
// more picks than a question allows is ErrSelectionLimitExceeded.
func (q Quiz) NormalizeAnswers(a Answers) (Answers, error) {
	out := make(Answers, len(a))
	for qi, selected := range a {
		if qi < 0 || qi >= len(q.Questions) {
			return nil, fmt.Errorf("%w: question %d not in [0,%d)", ErrInvalidIndex, qi, len(q.Questions))
		}
		if len(selected) == 0 {
			continue
		}
		question := q.Questions[qi]
		sorted := slices.Clone(selected)
		slices.Sort(sorted)
		for i, opt := range sorted {
			if opt < 0 || opt >= len(question.Options) {
				return nil, fmt.Errorf("%w: question %d option %d not in [0,%d)", ErrInvalidIndex, qi, opt, len(question.Options))
			}
			if i > 0 && sorted[i-1] == opt {
				return nil, fmt.Errorf("%w: question %d option %d selected twice", ErrInvalidIndex, qi, opt)
			}
		}
		if !question.Unlimited() && len(sorted) > question.Limit() {
			return nil, fmt.Errorf("%w: question %d allows %d selections, got %d", ErrSelectionLimitExceeded, qi, question.Limit(), len(sorted))
		}
		out[qi] = sorted
	}
	return out, nil
}

// Answers maps a question index to the ascending, de-duplicated option indices selected for it.
type Answers map[int][]int

// Clone returns a deep copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for q, sel := range a {
		if len(sel) == 0 {
			continue
		}
		out[q] = slices.Clone(sel)
	}
	return out
}

// Has reports whether option opt is selected for question q.
func (a Answers) Has(q, opt int) bool {
	_, found := slices.BinarySearch(a[q], opt)
	return found
}

// Count returns the number of selections for question q.
func (a Answers) Count(q int) int {
	return len(a[q])
}

// Phase is the position of a quiz state in the navigation chain.
type Phase string

const (
	PhaseName      Phase = "name"
	PhaseQuestion  Phase = "question"
	PhaseCompleted Phase = "completed"
)

// NameStep is the index of the pre-quiz name collection step.
const NameStep = -1

// State is a single participant's progress through a quiz.
type State struct {
	Phase           Phase     `json:"phase"`
	Index           int       `json:"index"`
	Answers         Answers   `json:"answers"`
	ParticipantName string    `json:"participantName,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
}

// Completed reports whether the state is terminal.
func (s State) Completed() bool {
	return s.Phase == PhaseCompleted
}

// Bucket is a qualitative result category.
type Bucket struct {
	Label       string `json:"label"`
	Headline    string `json:"headline"`
	Emoji       string `json:"emoji"`
	MinPercent  int    `json:"minPercent"`
	description string
}

// Describe renders the bucket description for a participant.
func (b Bucket) Describe(name string) string {
	if name == "" {
		name = "Friend"
	}
	tmpl := b.description
	if tmpl == "" {
		// decoded buckets carry only the exported fields
		for _, known := range Buckets {
			if known.Label == b.Label {
				tmpl = known.description
			}
		}
	}
	if tmpl == "" {
		return name
	}
	return fmt.Sprintf(tmpl, name)
}

// Buckets are ordered by descending lower bound.
var Buckets = []Bucket{
	{
		Label:       "Excellent Match",
		Headline:    "Excellent Match!",
		Emoji:       "🎉",
		MinPercent:  85,
		description: "%s, our values, lifestyle, and goals align wonderfully! I'd love to connect and explore this potential further. Let's have a conversation!",
	},
	{
		Label:       "Great Compatibility",
		Headline:    "Great Compatibility!",
		Emoji:       "😊",
		MinPercent:  70,
		description: "%s, we share many important values and preferences. Let's chat and see where it goes!",
	},
	{
		Label:       "Good Potential",
		Headline:    "Good Potential!",
		Emoji:       "🤔",
		MinPercent:  55,
		description: "%s, we have some good alignment with room to learn more about each other. Worth exploring further through conversation!",
	},
	{
		Label:       "Different Paths",
		Headline:    "Different Paths",
		Emoji:       "💭",
		MinPercent:  0,
		description: "%s, while we might have different preferences, compatibility is complex. If you feel there's a connection, I'm open to conversation!",
	},
}

// BucketFor classifies a percentage using inclusive lower bounds.
func BucketFor(percentage int) Bucket {
	for _, b := range Buckets {
		if percentage >= b.MinPercent {
			return b
		}
	}
	return Buckets[len(Buckets)-1]
}

// Result is the scored outcome of a set of answers.
type Result struct {
	Percentage int    `json:"percentage"`
	Bucket     Bucket `json:"bucket"`
}

// Completion is the terminal value produced when the last question is advanced.
type Completion struct {
	QuizID          string        `json:"quizId"`
	ParticipantName string        `json:"participantName,omitempty"`
	Answers         Answers       `json:"answers"`
	Result          Result        `json:"result"`
	Duration        time.Duration `json:"duration"`
}

// Session binds a participant's state to the quiz it is playing.
type Session struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuestionView is what a client needs to render the current step.
type QuestionView struct {
	Phase     Phase    `json:"phase"`
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Prompt    string   `json:"prompt,omitempty"`
	Options   []string `json:"options,omitempty"`
	Hint      string   `json:"hint,omitempty"`
	Multiple  bool     `json:"multiple"`
	Selected  []int    `json:"selected"`
	IsFirst   bool     `json:"isFirst"`
	IsLast    bool     `json:"isLast"`
	NameGiven string   `json:"name,omitempty"`
}

// ResultView is what a client needs to render the result screen.
type ResultView struct {
	Emoji       string `json:"emoji"`
	Headline    string `json:"headline"`
	Label       string `json:"label"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}
