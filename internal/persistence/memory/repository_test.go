package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/domain"
)

func seedWorkout(t *testing.T, repo *Repository, owner, name string, startedAt time.Time) domain.Workout {
	t.Helper()
	now := time.Now().UTC()
	workout := domain.Workout{
		ID:        uuid.NewString(),
		UserID:    owner,
		Name:      name,
		StartedAt: &startedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateWorkout(context.Background(), workout); err != nil {
		t.Fatalf("seed workout: %v", err)
	}
	return workout
}

func TestListWorkoutsNewestFirst(t *testing.T) {
	repo := NewRepositoryInLocation(time.UTC)

	older := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, time.March, 12, 8, 0, 0, 0, time.UTC)
	seedWorkout(t, repo, "user-1", "Older", older)
	seedWorkout(t, repo, "user-1", "Newer", newer)

	listed, err := repo.ListWorkouts(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(listed))
	}
	if listed[0].Name != "Newer" || listed[1].Name != "Older" {
		t.Fatalf("unexpected order: %s then %s", listed[0].Name, listed[1].Name)
	}
}

func TestListExercisesSortedByName(t *testing.T) {
	repo := NewRepositoryInLocation(time.UTC)
	ctx := context.Background()

	for _, name := range []string{"Squats", "Bench Press", "Deadlift"} {
		if err := repo.CreateExercise(ctx, domain.Exercise{
			ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("seed exercise: %v", err)
		}
	}

	listed, err := repo.ListExercises(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"Bench Press", "Deadlift", "Squats"}
	for i, name := range want {
		if listed[i].Name != name {
			t.Fatalf("position %d: got %q want %q", i, listed[i].Name, name)
		}
	}
}

func TestAddWorkoutExerciseRequiresLibraryEntry(t *testing.T) {
	repo := NewRepositoryInLocation(time.UTC)
	ctx := context.Background()

	workout := seedWorkout(t, repo, "user-1", "Push", time.Now().UTC())

	_, err := repo.AddWorkoutExercise(ctx, "user-1", domain.WorkoutExercise{
		ID:         uuid.NewString(),
		WorkoutID:  workout.ID,
		ExerciseID: uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown exercise, got %v", err)
	}
}

func TestDeleteWorkoutCascades(t *testing.T) {
	repo := NewRepositoryInLocation(time.UTC)
	ctx := context.Background()

	workout := seedWorkout(t, repo, "user-1", "Pull", time.Now().UTC())
	exercise := domain.Exercise{ID: uuid.NewString(), Name: "Row", CreatedAt: time.Now().UTC()}
	if err := repo.CreateExercise(ctx, exercise); err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	entry, err := repo.AddWorkoutExercise(ctx, "user-1", domain.WorkoutExercise{
		ID: uuid.NewString(), WorkoutID: workout.ID, ExerciseID: exercise.ID, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	set, err := repo.AddSet(ctx, "user-1", domain.Set{
		ID: uuid.NewString(), WorkoutExerciseID: entry.ID, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed set: %v", err)
	}

	if err := repo.DeleteWorkout(ctx, "user-1", workout.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := repo.RemoveWorkoutExercise(ctx, "user-1", entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("entry should be gone, got %v", err)
	}
	if err := repo.DeleteSet(ctx, "user-1", set.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("set should be gone, got %v", err)
	}
	// The library entry is untouched by the cascade.
	if err := repo.DeleteExercise(ctx, exercise.ID); err != nil {
		t.Fatalf("exercise should be deletable, got %v", err)
	}
}
