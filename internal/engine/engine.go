// Package engine implements the quiz navigation state machine and weighted scoring.
//
// States move along NameCollection -> Question(0) -> ... -> Question(N-1) -> Completed.
// Every operation takes a State value and returns a new one; the input is never
// modified, so a rejected operation leaves the caller's state as it was.
package engine

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"compat-quiz-service/internal/domain"
)

// Engine runs a single validated quiz definition.
type Engine struct {
	quiz domain.Quiz
	now  func() time.Time
}

// New validates the quiz and returns an engine for it.
func New(quiz domain.Quiz) (*Engine, error) {
	return NewWithClock(quiz, time.Now)
}

// NewWithClock allows deterministic timestamps in tests.
func NewWithClock(quiz domain.Quiz, now func() time.Time) (*Engine, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	return &Engine{quiz: quiz, now: now}, nil
}

// Quiz returns the definition the engine runs.
func (e *Engine) Quiz() domain.Quiz {
	return e.quiz
}

func (e *Engine) firstIndex() int {
	if e.quiz.CollectName {
		return domain.NameStep
	}
	return 0
}

func (e *Engine) initial() domain.State {
	s := domain.State{
		Phase:     domain.PhaseQuestion,
		Index:     e.firstIndex(),
		Answers:   domain.Answers{},
		StartedAt: e.now(),
	}
	if s.Index == domain.NameStep {
		s.Phase = domain.PhaseName
	}
	return s
}

// Begin creates a fresh state. An empty name means the name has not been collected yet;
// a whitespace-only name is rejected.
func (e *Engine) Begin(name string) (domain.State, error) {
	trimmed := strings.TrimSpace(name)
	if name != "" && trimmed == "" {
		return domain.State{}, fmt.Errorf("%w: participant name is blank", domain.ErrValidation)
	}
	s := e.initial()
	s.ParticipantName = trimmed
	return s, nil
}

// SubmitName records the participant name on the name collection step.
func (e *Engine) SubmitName(s domain.State, name string) (domain.State, error) {
	if s.Completed() {
		return s, domain.ErrCompleted
	}
	if s.Phase != domain.PhaseName {
		return s, fmt.Errorf("%w: name is collected before the first question", domain.ErrOutOfSequence)
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return s, fmt.Errorf("%w: please enter your name to continue", domain.ErrValidation)
	}
	next := cloneState(s)
	next.ParticipantName = trimmed
	return next, nil
}

// Select applies a click on option optionIndex of question questionIndex.
// Single choice replaces the selection; multi choice toggles, refusing to grow past the cap.
func (e *Engine) Select(s domain.State, questionIndex, optionIndex int) (domain.State, error) {
	if s.Completed() {
		return s, domain.ErrCompleted
	}
	if s.Phase != domain.PhaseQuestion || questionIndex != s.Index {
		return s, fmt.Errorf("%w: question %d is not the current step %d", domain.ErrOutOfSequence, questionIndex, s.Index)
	}
	question, err := e.current(s)
	if err != nil {
		return s, err
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return s, fmt.Errorf("%w: option %d not in [0,%d)", domain.ErrInvalidIndex, optionIndex, len(question.Options))
	}

	current := e.liveSelection(s.Index, s.Answers[s.Index])
	var updated []int
	switch {
	case question.Limit() == 1:
		updated = []int{optionIndex}
	case slices.Contains(current, optionIndex):
		updated = slices.DeleteFunc(slices.Clone(current), func(i int) bool { return i == optionIndex })
	case !question.Unlimited() && len(current) >= question.Limit():
		return s, fmt.Errorf("%w: you can select up to %d options only", domain.ErrSelectionLimitExceeded, question.Limit())
	default:
		updated = append(slices.Clone(current), optionIndex)
		slices.Sort(updated)
	}

	next := cloneState(s)
	if len(updated) == 0 {
		delete(next.Answers, s.Index)
	} else {
		next.Answers[s.Index] = updated
	}
	return next, nil
}

// Advance moves to the next step. From the last question it returns the completed state
// and the scored completion; otherwise the completion is nil.
func (e *Engine) Advance(s domain.State) (domain.State, *domain.Completion, error) {
	switch s.Phase {
	case domain.PhaseCompleted:
		return s, nil, domain.ErrCompleted
	case domain.PhaseName:
		if strings.TrimSpace(s.ParticipantName) == "" {
			return s, nil, fmt.Errorf("%w: please enter your name to continue", domain.ErrValidation)
		}
		next := cloneState(s)
		next.Phase = domain.PhaseQuestion
		next.Index = 0
		return next, nil, nil
	}

	if _, err := e.current(s); err != nil {
		return s, nil, err
	}
	live := e.liveAnswers(s.Answers)
	if live.Count(s.Index) == 0 {
		return s, nil, fmt.Errorf("%w: please select at least one option", domain.ErrNoSelection)
	}

	next := s
	next.Answers = live
	if s.Index < len(e.quiz.Questions)-1 {
		next.Index++
		return next, nil, nil
	}

	next.Phase = domain.PhaseCompleted
	completion := &domain.Completion{
		QuizID:          e.quiz.ID,
		ParticipantName: next.ParticipantName,
		Answers:         next.Answers.Clone(),
		Result:          Score(next.Answers, e.quiz.Questions),
	}
	if !s.StartedAt.IsZero() {
		completion.Duration = e.now().Sub(s.StartedAt)
	}
	return next, completion, nil
}

// Retreat steps back one question, keeping earlier selections. At the first step it is a no-op.
func (e *Engine) Retreat(s domain.State) (domain.State, error) {
	if s.Completed() {
		return s, domain.ErrCompleted
	}
	if s.Index <= e.firstIndex() {
		return s, nil
	}
	next := cloneState(s)
	next.Index--
	if last := len(e.quiz.Questions) - 1; next.Index > last {
		// the quiz lost questions since this state was saved
		next.Index = last
	}
	if next.Index == domain.NameStep {
		next.Phase = domain.PhaseName
	}
	return next, nil
}

// Reset returns a fresh state from any phase. The participant name is dropped.
func (e *Engine) Reset(domain.State) domain.State {
	return e.initial()
}

// View describes the current step for rendering.
func (e *Engine) View(s domain.State) domain.QuestionView {
	total := len(e.quiz.Questions)
	view := domain.QuestionView{
		Phase:     s.Phase,
		Index:     s.Index,
		Total:     total,
		Selected:  []int{},
		IsFirst:   s.Index <= e.firstIndex(),
		NameGiven: s.ParticipantName,
	}
	if s.Phase != domain.PhaseQuestion || s.Index < 0 || s.Index >= total {
		return view
	}
	question := e.quiz.Questions[s.Index]
	view.Prompt = question.Prompt
	view.Options = slices.Clone(question.Options)
	view.Hint = question.Hint()
	view.Multiple = question.Limit() != 1
	view.IsLast = s.Index == total-1
	if sel := s.Answers[s.Index]; len(sel) > 0 {
		view.Selected = slices.Clone(sel)
	}
	return view
}

// ResultView describes a completion for the result screen.
func ResultView(c domain.Completion) domain.ResultView {
	b := c.Result.Bucket
	return domain.ResultView{
		Emoji:       b.Emoji,
		Headline:    b.Headline,
		Label:       b.Label,
		Percentage:  c.Result.Percentage,
		Description: b.Describe(c.ParticipantName),
	}
}

// current returns the question the state points at. A state saved against a longer
// version of the quiz may point past the end; that is rejected, never indexed.
func (e *Engine) current(s domain.State) (domain.QuestionSpec, error) {
	if s.Index < 0 || s.Index >= len(e.quiz.Questions) {
		return domain.QuestionSpec{}, fmt.Errorf("%w: question %d no longer exists in quiz %s", domain.ErrOutOfSequence, s.Index, e.quiz.ID)
	}
	return e.quiz.Questions[s.Index], nil
}

// liveSelection drops options the question no longer has.
func (e *Engine) liveSelection(qi int, selected []int) []int {
	if qi < 0 || qi >= len(e.quiz.Questions) {
		return nil
	}
	n := len(e.quiz.Questions[qi].Options)
	return slices.DeleteFunc(slices.Clone(selected), func(opt int) bool { return opt < 0 || opt >= n })
}

// liveAnswers is a copy of a restricted to questions and options the quiz still has.
func (e *Engine) liveAnswers(a domain.Answers) domain.Answers {
	out := make(domain.Answers, len(a))
	for qi, selected := range a {
		if kept := e.liveSelection(qi, selected); len(kept) > 0 {
			out[qi] = kept
		}
	}
	return out
}

func cloneState(s domain.State) domain.State {
	s.Answers = s.Answers.Clone()
	return s
}
