package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/cache"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/observability"
)

// Repository captures persistence operations. Implementations are the
// sole enforcers of ownership: any operation that cannot resolve the
// target to the acting user returns ErrNotFound, whether the resource is
// absent or owned by someone else.
type Repository interface {
	ListWorkouts(ctx context.Context, userID string, day *LocalDate) ([]WorkoutDetail, error)
	GetWorkout(ctx context.Context, userID, workoutID string) (*WorkoutDetail, error)
	CreateWorkout(ctx context.Context, workout Workout) error
	UpdateWorkout(ctx context.Context, userID, workoutID string, update WorkoutUpdate) (*Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID string) error
	AddWorkoutExercise(ctx context.Context, userID string, entry WorkoutExercise) (*WorkoutExercise, error)
	RemoveWorkoutExercise(ctx context.Context, userID, workoutExerciseID string) error
	AddSet(ctx context.Context, userID string, set Set) (*Set, error)
	UpdateSet(ctx context.Context, userID, setID string, update SetUpdate) (*Set, error)
	DeleteSet(ctx context.Context, userID, setID string) error
	ListExercises(ctx context.Context) ([]Exercise, error)
	CreateExercise(ctx context.Context, exercise Exercise) error
	DeleteExercise(ctx context.Context, exerciseID string) error
}

// Service is the boundary between untrusted input and the repository.
// Every operation takes the acting user id explicitly; nothing is read
// from ambient state.
type Service struct {
	repo  Repository
	cache cache.Invalidator
}

// NewService constructs a Service.
func NewService(repo Repository, invalidator cache.Invalidator) *Service {
	if invalidator == nil {
		invalidator = cache.NoopInvalidator{}
	}
	return &Service{repo: repo, cache: invalidator}
}

const (
	maxNameLen = 100
	maxReps    = 999
	maxWeight  = 9999.99
)

// ListWorkouts returns the user's workouts with nested detail, newest
// first, optionally restricted to one calendar day.
func (s *Service) ListWorkouts(ctx context.Context, userID string, day *LocalDate) ([]WorkoutDetail, error) {
	return s.repo.ListWorkouts(ctx, userID, day)
}

// GetWorkout fetches one workout with nested detail, or ErrNotFound when
// it does not exist or belongs to another user.
func (s *Service) GetWorkout(ctx context.Context, userID, workoutID string) (*WorkoutDetail, error) {
	detail, err := s.repo.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrNotFound
	}
	return detail, nil
}

// CreateWorkoutInput captures the payload for CreateWorkout.
type CreateWorkoutInput struct {
	Name      string
	StartedAt time.Time
}

// CreateWorkout validates the input and persists a new workout owned by
// userID.
func (s *Service) CreateWorkout(ctx context.Context, userID string, input CreateWorkoutInput) (*Workout, error) {
	if verr := Validate(
		Field{Name: "name", Rules: []Rule{Required(input.Name), MaxLen(input.Name, maxNameLen)}},
		Field{Name: "started_at", Rules: []Rule{RequiredTime(input.StartedAt)}},
	); verr != nil {
		return nil, verr
	}

	now := time.Now().UTC()
	started := input.StartedAt.UTC()
	workout := Workout{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      input.Name,
		StartedAt: &started,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWorkout(ctx, workout); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID)); err != nil {
		return nil, fmt.Errorf("cache invalidation: %w", err)
	}
	observability.RecordWorkoutLogged(now)
	observability.CountMutation("create_workout")
	return &workout, nil
}

// UpdateWorkoutInput captures the partial payload for UpdateWorkout.
type UpdateWorkoutInput struct {
	Name      *string
	StartedAt *time.Time
}

// UpdateWorkout applies a partial update to a workout the user owns.
func (s *Service) UpdateWorkout(ctx context.Context, userID, workoutID string, input UpdateWorkoutInput) (*Workout, error) {
	if verr := Validate(
		Field{Name: "id", Rules: []Rule{Required(workoutID), ValidID(workoutID)}},
		Field{Name: "name", Rules: []Rule{RequiredName(input.Name), MaxLenOpt(input.Name, maxNameLen)}},
	); verr != nil {
		return nil, verr
	}

	updated, err := s.repo.UpdateWorkout(ctx, userID, workoutID, WorkoutUpdate{
		Name:      input.Name,
		StartedAt: input.StartedAt,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID), cache.WorkoutView(workoutID)); err != nil {
		return nil, fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("update_workout")
	return updated, nil
}

// DeleteWorkout removes a workout the user owns; linked exercises and
// their sets go with it by cascade.
func (s *Service) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	if verr := Validate(
		Field{Name: "id", Rules: []Rule{Required(workoutID), ValidID(workoutID)}},
	); verr != nil {
		return verr
	}

	if err := s.repo.DeleteWorkout(ctx, userID, workoutID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID), cache.WorkoutView(workoutID)); err != nil {
		return fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("delete_workout")
	return nil
}

// AddWorkoutExerciseInput captures the payload for AddExerciseToWorkout.
type AddWorkoutExerciseInput struct {
	WorkoutID  string
	ExerciseID string
}

// AddExerciseToWorkout appends an exercise at the next display position
// of a workout the user owns.
func (s *Service) AddExerciseToWorkout(ctx context.Context, userID string, input AddWorkoutExerciseInput) (*WorkoutExercise, error) {
	if verr := Validate(
		Field{Name: "workout_id", Rules: []Rule{Required(input.WorkoutID), ValidID(input.WorkoutID)}},
		Field{Name: "exercise_id", Rules: []Rule{Required(input.ExerciseID), ValidID(input.ExerciseID)}},
	); verr != nil {
		return nil, verr
	}

	entry, err := s.repo.AddWorkoutExercise(ctx, userID, WorkoutExercise{
		ID:         uuid.NewString(),
		WorkoutID:  input.WorkoutID,
		ExerciseID: input.ExerciseID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID), cache.WorkoutView(input.WorkoutID)); err != nil {
		return nil, fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("add_workout_exercise")
	return entry, nil
}

// RemoveExerciseFromWorkout deletes a workout-exercise link the user
// owns through the workout; its sets cascade away.
func (s *Service) RemoveExerciseFromWorkout(ctx context.Context, userID, workoutExerciseID string) error {
	if verr := Validate(
		Field{Name: "id", Rules: []Rule{Required(workoutExerciseID), ValidID(workoutExerciseID)}},
	); verr != nil {
		return verr
	}

	if err := s.repo.RemoveWorkoutExercise(ctx, userID, workoutExerciseID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID)); err != nil {
		return fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("remove_workout_exercise")
	return nil
}

// AddSetInput captures the payload for AddSet. Reps and Weight are
// independently optional.
type AddSetInput struct {
	WorkoutExerciseID string
	Reps              *int
	Weight            *float64
}

// AddSet appends a set with the next set number under a workout exercise
// the user owns.
func (s *Service) AddSet(ctx context.Context, userID string, input AddSetInput) (*Set, error) {
	if verr := Validate(
		Field{Name: "workout_exercise_id", Rules: []Rule{Required(input.WorkoutExerciseID), ValidID(input.WorkoutExerciseID)}},
		Field{Name: "reps", Rules: []Rule{IntRange(input.Reps, 0, maxReps)}},
		Field{Name: "weight", Rules: []Rule{DecimalRange(input.Weight, 0, maxWeight), TwoDecimalPlaces(input.Weight)}},
	); verr != nil {
		return nil, verr
	}

	now := time.Now().UTC()
	set, err := s.repo.AddSet(ctx, userID, Set{
		ID:                uuid.NewString(),
		WorkoutExerciseID: input.WorkoutExerciseID,
		Reps:              input.Reps,
		Weight:            input.Weight,
		CreatedAt:         now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID)); err != nil {
		return nil, fmt.Errorf("cache invalidation: %w", err)
	}
	observability.RecordSetRecorded(now)
	observability.CountMutation("add_set")
	return set, nil
}

// UpdateSetInput captures the partial payload for UpdateSet. A nil field
// leaves the stored value untouched; there is no way to clear a field.
type UpdateSetInput struct {
	Reps   *int
	Weight *float64
}

// UpdateSet applies a partial update to a set the user owns through the
// workout-exercise chain.
func (s *Service) UpdateSet(ctx context.Context, userID, setID string, input UpdateSetInput) (*Set, error) {
	if verr := Validate(
		Field{Name: "id", Rules: []Rule{Required(setID), ValidID(setID)}},
		Field{Name: "reps", Rules: []Rule{IntRange(input.Reps, 0, maxReps)}},
		Field{Name: "weight", Rules: []Rule{DecimalRange(input.Weight, 0, maxWeight), TwoDecimalPlaces(input.Weight)}},
	); verr != nil {
		return nil, verr
	}

	set, err := s.repo.UpdateSet(ctx, userID, setID, SetUpdate{Reps: input.Reps, Weight: input.Weight})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID)); err != nil {
		return nil, fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("update_set")
	return set, nil
}

// DeleteSet removes a set the user owns. The freed set number is never
// reused.
func (s *Service) DeleteSet(ctx context.Context, userID, setID string) error {
	if verr := Validate(
		Field{Name: "id", Rules: []Rule{Required(setID), ValidID(setID)}},
	); verr != nil {
		return verr
	}

	if err := s.repo.DeleteSet(ctx, userID, setID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, cache.UserWorkoutsView(userID)); err != nil {
		return fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("delete_set")
	return nil
}

// ListExercises returns the shared library ordered by name.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	return s.repo.ListExercises(ctx)
}

// CreateExerciseInput captures the payload for CreateExercise.
type CreateExerciseInput struct {
	Name string
}

// CreateExercise adds a library entry attributed to the creating user.
// Duplicate names are permitted.
func (s *Service) CreateExercise(ctx context.Context, userID string, input CreateExerciseInput) (*Exercise, error) {
	if verr := Validate(
		Field{Name: "name", Rules: []Rule{Required(input.Name), MaxLen(input.Name, maxNameLen)}},
	); verr != nil {
		return nil, verr
	}

	creator := userID
	exercise := Exercise{
		ID:        uuid.NewString(),
		Name:      input.Name,
		CreatedBy: &creator,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateExercise(ctx, exercise); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, cache.ExerciseLibraryView); err != nil {
		return nil, fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("create_exercise")
	return &exercise, nil
}

// DeleteExercise removes a library entry. A referenced exercise is
// refused with ErrExerciseInUse.
func (s *Service) DeleteExercise(ctx context.Context, exerciseID string) error {
	if verr := Validate(
		Field{Name: "id", Rules: []Rule{Required(exerciseID), ValidID(exerciseID)}},
	); verr != nil {
		return verr
	}

	if err := s.repo.DeleteExercise(ctx, exerciseID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, cache.ExerciseLibraryView); err != nil {
		return fmt.Errorf("cache invalidation: %w", err)
	}
	observability.CountMutation("delete_exercise")
	return nil
}
