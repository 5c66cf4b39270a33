package domain

import "errors"

var (
	// ErrNotFound covers both a missing resource and a resource owned by
	// another user. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrExerciseInUse is returned when deleting an exercise that is still
	// referenced by a workout.
	ErrExerciseInUse = errors.New("exercise is referenced by a workout")
)

// ValidationError reports the first violated rule per field. It is
// produced before any data access happens.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
