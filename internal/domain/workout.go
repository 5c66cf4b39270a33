// Package domain defines the workout data model and the mutation layer
// that guards it.
package domain

import "time"

// Exercise is a movement definition in the library shared by all users.
// CreatedBy is nil for seed entries.
type Exercise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Workout is a logged session owned by exactly one user. The owner is
// immutable after creation.
type Workout struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// WorkoutExercise places one exercise in one workout at a display
// position. Positions are assigned by appending max(existing)+1 and are
// never renumbered, so gaps after removal are expected.
type WorkoutExercise struct {
	ID         string    `json:"id"`
	WorkoutID  string    `json:"workout_id"`
	ExerciseID string    `json:"exercise_id"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

// Set records one reps/weight entry under a workout exercise. SetNumber
// is an append-only sequence marker starting at 1; deleted numbers are
// never reused. Reps and Weight are independently optional.
type Set struct {
	ID                string    `json:"id"`
	WorkoutExerciseID string    `json:"workout_exercise_id"`
	SetNumber         int       `json:"set_number"`
	Reps              *int      `json:"reps,omitempty"`
	Weight            *float64  `json:"weight,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// WorkoutExerciseDetail joins a workout exercise with its library entry
// and its sets ordered by set number.
type WorkoutExerciseDetail struct {
	WorkoutExercise
	Exercise Exercise `json:"exercise"`
	Sets     []Set    `json:"sets"`
}

// WorkoutDetail is a workout with its exercises ordered by position.
type WorkoutDetail struct {
	Workout
	Exercises []WorkoutExerciseDetail `json:"exercises"`
}

// WorkoutUpdate carries a partial update; nil fields are left untouched.
type WorkoutUpdate struct {
	Name      *string
	StartedAt *time.Time
}

// SetUpdate carries a partial update; nil fields are left untouched.
// Omitting a field is distinct from clearing it; the layer never clears.
type SetUpdate struct {
	Reps   *int
	Weight *float64
}
