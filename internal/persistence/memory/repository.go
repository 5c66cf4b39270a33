// Package memory stores the workout model in process memory for local
// development and unit tests. Semantics mirror the Postgres repository,
// including the conflated not-found/not-owned signal.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/domain"
)

// Repository implements domain.Repository over in-memory maps.
type Repository struct {
	mu               sync.RWMutex
	loc              *time.Location
	exercises        map[string]domain.Exercise
	workouts         map[string]domain.Workout
	workoutExercises map[string]domain.WorkoutExercise
	sets             map[string]domain.Set
}

// NewRepository constructs an empty Repository interpreting day filters
// in the local time zone.
func NewRepository() *Repository {
	return NewRepositoryInLocation(time.Local)
}

// NewRepositoryInLocation constructs a Repository with an explicit
// location for calendar-day filtering.
func NewRepositoryInLocation(loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{
		loc:              loc,
		exercises:        make(map[string]domain.Exercise),
		workouts:         make(map[string]domain.Workout),
		workoutExercises: make(map[string]domain.WorkoutExercise),
		sets:             make(map[string]domain.Set),
	}
}

// ListWorkouts implements domain.Repository.
func (r *Repository) ListWorkouts(ctx context.Context, userID string, day *domain.LocalDate) ([]domain.WorkoutDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.WorkoutDetail, 0)
	for _, workout := range r.workouts {
		if workout.UserID != userID {
			continue
		}
		if day != nil {
			if workout.StartedAt == nil || !day.Contains(*workout.StartedAt, r.loc) {
				continue
			}
		}
		results = append(results, r.detailLocked(workout))
	}

	sort.Slice(results, func(i, j int) bool {
		if day != nil {
			return results[i].StartedAt.After(*results[j].StartedAt)
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// GetWorkout implements domain.Repository. A missing or foreign workout
// yields (nil, nil).
func (r *Repository) GetWorkout(ctx context.Context, userID, workoutID string) (*domain.WorkoutDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workout, ok := r.workouts[workoutID]
	if !ok || workout.UserID != userID {
		return nil, nil
	}
	detail := r.detailLocked(workout)
	return &detail, nil
}

func (r *Repository) detailLocked(workout domain.Workout) domain.WorkoutDetail {
	entries := make([]domain.WorkoutExerciseDetail, 0)
	for _, we := range r.workoutExercises {
		if we.WorkoutID != workout.ID {
			continue
		}
		sets := make([]domain.Set, 0)
		for _, set := range r.sets {
			if set.WorkoutExerciseID == we.ID {
				sets = append(sets, set)
			}
		}
		sort.Slice(sets, func(i, j int) bool { return sets[i].SetNumber < sets[j].SetNumber })
		entries = append(entries, domain.WorkoutExerciseDetail{
			WorkoutExercise: we,
			Exercise:        r.exercises[we.ExerciseID],
			Sets:            sets,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
	return domain.WorkoutDetail{Workout: workout, Exercises: entries}
}

// CreateWorkout implements domain.Repository.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.workouts[workout.ID] = workout
	return nil
}

// UpdateWorkout implements domain.Repository.
func (r *Repository) UpdateWorkout(ctx context.Context, userID, workoutID string, update domain.WorkoutUpdate) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workout, ok := r.workouts[workoutID]
	if !ok || workout.UserID != userID {
		return nil, domain.ErrNotFound
	}

	if update.Name != nil {
		workout.Name = *update.Name
	}
	if update.StartedAt != nil {
		started := update.StartedAt.UTC()
		workout.StartedAt = &started
	}
	workout.UpdatedAt = time.Now().UTC()
	r.workouts[workoutID] = workout
	return &workout, nil
}

// DeleteWorkout implements domain.Repository, cascading to linked
// exercises and their sets.
func (r *Repository) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	workout, ok := r.workouts[workoutID]
	if !ok || workout.UserID != userID {
		return domain.ErrNotFound
	}

	delete(r.workouts, workoutID)
	for weID, we := range r.workoutExercises {
		if we.WorkoutID != workoutID {
			continue
		}
		delete(r.workoutExercises, weID)
		r.deleteSetsLocked(weID)
	}
	return nil
}

// AddWorkoutExercise implements domain.Repository, appending at
// max(position)+1 within the workout.
func (r *Repository) AddWorkoutExercise(ctx context.Context, userID string, entry domain.WorkoutExercise) (*domain.WorkoutExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workout, ok := r.workouts[entry.WorkoutID]
	if !ok || workout.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if _, ok := r.exercises[entry.ExerciseID]; !ok {
		return nil, domain.ErrNotFound
	}

	next := 0
	for _, we := range r.workoutExercises {
		if we.WorkoutID == entry.WorkoutID && we.Order+1 > next {
			next = we.Order + 1
		}
	}
	entry.Order = next
	r.workoutExercises[entry.ID] = entry
	return &entry, nil
}

// RemoveWorkoutExercise implements domain.Repository, cascading to sets.
func (r *Repository) RemoveWorkoutExercise(ctx context.Context, userID, workoutExerciseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resolveOwnedLocked(userID, workoutExerciseID); !ok {
		return domain.ErrNotFound
	}
	delete(r.workoutExercises, workoutExerciseID)
	r.deleteSetsLocked(workoutExerciseID)
	return nil
}

// AddSet implements domain.Repository, numbering at max(set_number)+1.
// Freed numbers are never handed out again while higher ones exist.
func (r *Repository) AddSet(ctx context.Context, userID string, set domain.Set) (*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resolveOwnedLocked(userID, set.WorkoutExerciseID); !ok {
		return nil, domain.ErrNotFound
	}

	next := 1
	for _, existing := range r.sets {
		if existing.WorkoutExerciseID == set.WorkoutExerciseID && existing.SetNumber+1 > next {
			next = existing.SetNumber + 1
		}
	}
	set.SetNumber = next
	r.sets[set.ID] = set
	return &set, nil
}

// UpdateSet implements domain.Repository. Nil update fields are left
// untouched.
func (r *Repository) UpdateSet(ctx context.Context, userID, setID string, update domain.SetUpdate) (*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sets[setID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, owned := r.resolveOwnedLocked(userID, set.WorkoutExerciseID); !owned {
		return nil, domain.ErrNotFound
	}

	if update.Reps != nil {
		reps := *update.Reps
		set.Reps = &reps
	}
	if update.Weight != nil {
		weight := *update.Weight
		set.Weight = &weight
	}
	r.sets[setID] = set
	return &set, nil
}

// DeleteSet implements domain.Repository.
func (r *Repository) DeleteSet(ctx context.Context, userID, setID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sets[setID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, owned := r.resolveOwnedLocked(userID, set.WorkoutExerciseID); !owned {
		return domain.ErrNotFound
	}
	delete(r.sets, setID)
	return nil
}

// ListExercises implements domain.Repository, ordered by name.
func (r *Repository) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.Exercise, 0, len(r.exercises))
	for _, exercise := range r.exercises {
		results = append(results, exercise)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

// CreateExercise implements domain.Repository. Duplicate names are
// allowed.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exercises[exercise.ID] = exercise
	return nil
}

// DeleteExercise implements domain.Repository, refusing when any workout
// still references the exercise.
func (r *Repository) DeleteExercise(ctx context.Context, exerciseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exercises[exerciseID]; !ok {
		return domain.ErrNotFound
	}
	for _, we := range r.workoutExercises {
		if we.ExerciseID == exerciseID {
			return domain.ErrExerciseInUse
		}
	}
	delete(r.exercises, exerciseID)
	return nil
}

// resolveOwnedLocked walks workout-exercise -> workout -> owner.
func (r *Repository) resolveOwnedLocked(userID, workoutExerciseID string) (domain.WorkoutExercise, bool) {
	we, ok := r.workoutExercises[workoutExerciseID]
	if !ok {
		return domain.WorkoutExercise{}, false
	}
	workout, ok := r.workouts[we.WorkoutID]
	if !ok || workout.UserID != userID {
		return domain.WorkoutExercise{}, false
	}
	return we, true
}

func (r *Repository) deleteSetsLocked(workoutExerciseID string) {
	for setID, set := range r.sets {
		if set.WorkoutExerciseID == workoutExerciseID {
			delete(r.sets, setID)
		}
	}
}
