package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"compat-quiz-service/internal/domain"
	"compat-quiz-service/internal/engine"
	"compat-quiz-service/internal/telemetry"
)

// SessionRepository abstracts how participant sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultDispatcher hands a completed quiz to the result notification collaborator.
// Implementations must not block and must not report delivery failures back.
type ResultDispatcher interface {
	Dispatch(quiz domain.Quiz, completion domain.Completion)
}

// Option configures a QuizService.
type Option func(*QuizService)

// WithTracker sets the telemetry sink.
func WithTracker(t telemetry.Tracker) Option {
	return func(s *QuizService) {
		if t != nil {
			s.tracker = t
		}
	}
}

// WithDispatcher sets the result notification sink.
func WithDispatcher(d ResultDispatcher) Option {
	return func(s *QuizService) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *QuizService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

// QuizService hosts participant sessions on top of the quiz engine.
type QuizService struct {
	sessions   SessionRepository
	quizzes    QuizRepository
	tracker    telemetry.Tracker
	dispatcher ResultDispatcher
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:   store,
		quizzes:    quizzes,
		tracker:    telemetry.Nop{},
		dispatcher: noDispatch{},
		log:        zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new session for quizID.
func (s *QuizService) Start(ctx context.Context, quizID, name string) (domain.Session, error) {
	eng, err := s.engine(ctx, quizID)
	if err != nil {
		return domain.Session{}, err
	}
	state, err := eng.Begin(name)
	if err != nil {
		return domain.Session{}, err
	}
	session := domain.Session{
		ID:        s.newID(),
		QuizID:    quizID,
		State:     state,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	s.track(ctx, telemetry.EventQuizStarted, map[string]any{"quiz_id": quizID})
	return session, nil
}

// SubmitName records the participant name on the name step.
func (s *QuizService) SubmitName(ctx context.Context, sessionID, name string) (domain.Session, error) {
	session, eng, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	state, err := eng.SubmitName(session.State, name)
	if err != nil {
		return session, err
	}
	session, err = s.save(ctx, session, state)
	if err != nil {
		return session, err
	}
	s.track(ctx, telemetry.EventNameSubmitted, map[string]any{"name_length": len(state.ParticipantName)})
	return session, nil
}

// Select toggles or replaces an option on the current question.
func (s *QuizService) Select(ctx context.Context, sessionID string, questionIndex, optionIndex int) (domain.Session, error) {
	session, eng, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	state, err := eng.Select(session.State, questionIndex, optionIndex)
	if err != nil {
		return session, err
	}
	return s.save(ctx, session, state)
}

// Next advances the session. The completion is non-nil once the last question is passed;
// the result is then handed to the dispatcher without waiting for delivery.
func (s *QuizService) Next(ctx context.Context, sessionID string) (domain.Session, *domain.Completion, error) {
	session, eng, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, err
	}
	prev := session.State
	state, completion, err := eng.Advance(prev)
	if err != nil {
		return session, nil, err
	}
	session, err = s.save(ctx, session, state)
	if err != nil {
		return session, nil, err
	}

	quiz := eng.Quiz()
	if prev.Phase == domain.PhaseQuestion {
		question := quiz.Questions[prev.Index]
		maxAllowed := any(question.Limit())
		if question.Unlimited() {
			maxAllowed = "unlimited"
		}
		s.track(ctx, telemetry.EventQuestionAnswered, map[string]any{
			"question_number":  prev.Index + 1,
			"question_text":    question.Prompt,
			"selections_count": state.Answers.Count(prev.Index),
			"max_allowed":      maxAllowed,
		})
	}

	if completion != nil {
		s.dispatcher.Dispatch(quiz, *completion)
		s.track(ctx, telemetry.EventQuizCompleted, map[string]any{
			"participant_name": completion.ParticipantName,
			"score":            completion.Result.Percentage,
			"result_category":  completion.Result.Bucket.Label,
			"duration_seconds": int(completion.Duration.Round(time.Second) / time.Second),
			"answers_summary":  answersSummary(quiz, completion.Answers),
		})
	}
	return session, completion, nil
}

// Back moves to the previous step; at the first step nothing changes.
func (s *QuizService) Back(ctx context.Context, sessionID string) (domain.Session, error) {
	session, eng, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	state, err := eng.Retreat(session.State)
	if err != nil {
		return session, err
	}
	if state.Index == session.State.Index {
		return session, nil
	}
	from := session.State.Index
	session, err = s.save(ctx, session, state)
	if err != nil {
		return session, err
	}
	s.track(ctx, telemetry.EventQuestionBack, map[string]any{
		"from_question": from + 1,
		"to_question":   state.Index + 1,
	})
	return session, nil
}

// Retake resets the session from any phase, including a completed one.
func (s *QuizService) Retake(ctx context.Context, sessionID string) (domain.Session, error) {
	session, eng, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	session, err = s.save(ctx, session, eng.Reset(session.State))
	if err != nil {
		return session, err
	}
	s.track(ctx, telemetry.EventRetake, nil)
	return session, nil
}

// Contact records the result screen's contact action and ends the session. It is only
// offered once the quiz is completed.
func (s *QuizService) Contact(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.State.Completed() {
		return fmt.Errorf("%w: contact is offered on the result screen", domain.ErrOutOfSequence)
	}
	s.track(ctx, telemetry.EventCTAClicked, map[string]any{"source": "quiz_result", "action": "contact"})
	return s.sessions.Delete(ctx, sessionID)
}

// Close discards the session. Closing before completion counts as abandoning the quiz.
func (s *QuizService) Close(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.State.Completed() {
		props := map[string]any{"at_question": session.State.Index + 1}
		if quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID); err == nil {
			props["total_questions"] = len(quiz.Questions)
		}
		s.track(ctx, telemetry.EventQuizAbandoned, props)
	}
	return s.sessions.Delete(ctx, sessionID)
}

// View renders the session's current step.
func (s *QuizService) View(ctx context.Context, sessionID string) (domain.QuestionView, error) {
	session, eng, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	return eng.View(session.State), nil
}

// ViewOf renders a session value without reloading it.
func (s *QuizService) ViewOf(ctx context.Context, session domain.Session) (domain.QuestionView, error) {
	eng, err := s.engine(ctx, session.QuizID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	return eng.View(session.State), nil
}

// Score rates answers against a quiz without a session. Answers are checked against the
// quiz first; malformed ones are rejected rather than scored.
func (s *QuizService) Score(ctx context.Context, quizID string, answers domain.Answers) (domain.Result, error) {
	eng, err := s.engine(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}
	quiz := eng.Quiz()
	normalized, err := quiz.NormalizeAnswers(answers)
	if err != nil {
		return domain.Result{}, err
	}
	return engine.Score(normalized, quiz.Questions), nil
}

// Quiz returns the validated quiz definition.
func (s *QuizService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	eng, err := s.engine(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return eng.Quiz(), nil
}

func (s *QuizService) engine(ctx context.Context, quizID string) (*engine.Engine, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return engine.NewWithClock(quiz, s.now)
}

func (s *QuizService) load(ctx context.Context, sessionID string) (domain.Session, *engine.Engine, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, nil, err
	}
	eng, err := s.engine(ctx, session.QuizID)
	if err != nil {
		return domain.Session{}, nil, err
	}
	return session, eng, nil
}

// save persists state and only then returns the updated session, so a failed write
// leaves the caller holding the previous state.
func (s *QuizService) save(ctx context.Context, session domain.Session, state domain.State) (domain.Session, error) {
	updated := session
	updated.State = state
	if err := s.sessions.Save(ctx, updated); err != nil {
		return session, fmt.Errorf("save session: %w", err)
	}
	return updated, nil
}

func (s *QuizService) track(ctx context.Context, event string, props map[string]any) {
	s.tracker.Track(ctx, event, props)
	s.log.Debug("quiz event", zap.String("event", event))
}

func answersSummary(quiz domain.Quiz, answers domain.Answers) []map[string]any {
	summary := make([]map[string]any, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		selected := answers[i]
		if len(selected) == 0 {
			continue
		}
		options := make([]string, 0, len(selected))
		for _, idx := range selected {
			if idx >= 0 && idx < len(question.Options) {
				options = append(options, question.Options[idx])
			}
		}
		summary = append(summary, map[string]any{
			"question_number":  i + 1,
			"question":         question.Prompt,
			"selections_count": len(selected),
			"selected_options": options,
		})
	}
	return summary
}

type noDispatch struct{}

func (noDispatch) Dispatch(domain.Quiz, domain.Completion) {}
