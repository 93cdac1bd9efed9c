package domain

import "errors"

var (
	// ErrValidation is returned for missing or blank required input, such as the participant name.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidIndex indicates an option index outside the question's options.
	ErrInvalidIndex = errors.New("invalid option index")
	// ErrSelectionLimitExceeded is returned when a capped question already holds its maximum selections.
	ErrSelectionLimitExceeded = errors.New("selection limit exceeded")
	// ErrOutOfSequence indicates a selection aimed at a question other than the current one.
	ErrOutOfSequence = errors.New("question out of sequence")
	// ErrNoSelection is returned when advancing past a question with nothing selected.
	ErrNoSelection = errors.New("no option selected")
	// ErrCompleted is returned for navigation or selection after the quiz has finished.
	ErrCompleted = errors.New("quiz already completed")
	// ErrInvalidQuiz indicates a quiz definition that fails validation.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a quiz session does not exist or has expired.
	ErrSessionNotFound = errors.New("quiz session not found")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrValidation, "validation"},
	{ErrInvalidIndex, "invalid_index"},
	{ErrSelectionLimitExceeded, "selection_limit_exceeded"},
	{ErrOutOfSequence, "out_of_sequence"},
	{ErrNoSelection, "no_selection"},
	{ErrCompleted, "completed"},
	{ErrInvalidQuiz, "invalid_quiz"},
	{ErrQuizNotFound, "quiz_not_found"},
	{ErrSessionNotFound, "session_not_found"},
}

// Code maps an error to a stable wire code. Unknown errors map to "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// IsRejection reports whether err is a local engine rejection that leaves state untouched.
func IsRejection(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidIndex) ||
		errors.Is(err, ErrSelectionLimitExceeded) ||
		errors.Is(err, ErrOutOfSequence) ||
		errors.Is(err, ErrNoSelection) ||
		errors.Is(err, ErrCompleted)
}
