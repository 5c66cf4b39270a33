//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/domain"
)

func setupRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("liftingdiary"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return NewRepositoryInLocation(pool, time.UTC)
}

func TestRepositoryEnforcesOwnershipChain(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)

	owner := "user-" + uuid.NewString()
	intruder := "user-" + uuid.NewString()

	workout := seedWorkout(t, ctx, repo, owner, "Push Day", time.Now().UTC())
	exercise := seedExercise(t, ctx, repo, owner, "Bench Press")

	entry, err := repo.AddWorkoutExercise(ctx, owner, domain.WorkoutExercise{
		ID:         uuid.NewString(),
		WorkoutID:  workout.ID,
		ExerciseID: exercise.ID,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, 0, entry.Order)

	reps := 8
	set, err := repo.AddSet(ctx, owner, domain.Set{
		ID:                uuid.NewString(),
		WorkoutExerciseID: entry.ID,
		Reps:              &reps,
		CreatedAt:         time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, set.SetNumber)

	// The intruder can reach nothing in the chain.
	stored, err := repo.GetWorkout(ctx, intruder, workout.ID)
	require.NoError(t, err)
	require.Nil(t, stored)

	_, err = repo.AddWorkoutExercise(ctx, intruder, domain.WorkoutExercise{
		ID:         uuid.NewString(),
		WorkoutID:  workout.ID,
		ExerciseID: exercise.ID,
		CreatedAt:  time.Now().UTC(),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.AddSet(ctx, intruder, domain.Set{
		ID:                uuid.NewString(),
		WorkoutExerciseID: entry.ID,
		CreatedAt:         time.Now().UTC(),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, repo.DeleteSet(ctx, intruder, set.ID), domain.ErrNotFound)
	require.ErrorIs(t, repo.RemoveWorkoutExercise(ctx, intruder, entry.ID), domain.ErrNotFound)
	require.ErrorIs(t, repo.DeleteWorkout(ctx, intruder, workout.ID), domain.ErrNotFound)

	// The owner still sees the full nested detail.
	detail, err := repo.GetWorkout(ctx, owner, workout.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Exercises, 1)
	require.Equal(t, "Bench Press", detail.Exercises[0].Exercise.Name)
	require.Len(t, detail.Exercises[0].Sets, 1)
}

func TestRepositoryAppendsPositionsAndSetNumbers(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)

	owner := "user-" + uuid.NewString()
	workout := seedWorkout(t, ctx, repo, owner, "Legs", time.Now().UTC())
	squat := seedExercise(t, ctx, repo, owner, "Squats")
	lunge := seedExercise(t, ctx, repo, owner, "Lunges")

	first, err := repo.AddWorkoutExercise(ctx, owner, domain.WorkoutExercise{
		ID: uuid.NewString(), WorkoutID: workout.ID, ExerciseID: squat.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	second, err := repo.AddWorkoutExercise(ctx, owner, domain.WorkoutExercise{
		ID: uuid.NewString(), WorkoutID: workout.ID, ExerciseID: lunge.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, 0, first.Order)
	require.Equal(t, 1, second.Order)

	// A removal leaves a gap; the next append continues past the max.
	require.NoError(t, repo.RemoveWorkoutExercise(ctx, owner, first.ID))
	third, err := repo.AddWorkoutExercise(ctx, owner, domain.WorkoutExercise{
		ID: uuid.NewString(), WorkoutID: workout.ID, ExerciseID: squat.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, 2, third.Order)

	var setIDs []string
	for i := 0; i < 3; i++ {
		set, setErr := repo.AddSet(ctx, owner, domain.Set{
			ID: uuid.NewString(), WorkoutExerciseID: third.ID, CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, setErr)
		require.Equal(t, i+1, set.SetNumber)
		setIDs = append(setIDs, set.ID)
	}

	require.NoError(t, repo.DeleteSet(ctx, owner, setIDs[1]))
	replacement, err := repo.AddSet(ctx, owner, domain.Set{
		ID: uuid.NewString(), WorkoutExerciseID: third.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, 4, replacement.SetNumber)
}

func TestRepositoryPartialUpdatesCoalesce(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)

	owner := "user-" + uuid.NewString()
	workout := seedWorkout(t, ctx, repo, owner, "Pull", time.Now().UTC())
	exercise := seedExercise(t, ctx, repo, owner, "Deadlift")

	entry, err := repo.AddWorkoutExercise(ctx, owner, domain.WorkoutExercise{
		ID: uuid.NewString(), WorkoutID: workout.ID, ExerciseID: exercise.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	reps := 5
	weight := 140.0
	set, err := repo.AddSet(ctx, owner, domain.Set{
		ID: uuid.NewString(), WorkoutExerciseID: entry.ID, Reps: &reps, Weight: &weight, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	newReps := 3
	updated, err := repo.UpdateSet(ctx, owner, set.ID, domain.SetUpdate{Reps: &newReps})
	require.NoError(t, err)
	require.Equal(t, 3, *updated.Reps)
	require.InDelta(t, 140.0, *updated.Weight, 0.001)

	newName := "Pull A"
	renamed, err := repo.UpdateWorkout(ctx, owner, workout.ID, domain.WorkoutUpdate{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "Pull A", renamed.Name)
	require.NotNil(t, renamed.StartedAt)
}

func TestRepositoryRefusesDeletingReferencedExercise(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)

	owner := "user-" + uuid.NewString()
	workout := seedWorkout(t, ctx, repo, owner, "Push", time.Now().UTC())
	exercise := seedExercise(t, ctx, repo, owner, "Overhead Press")

	entry, err := repo.AddWorkoutExercise(ctx, owner, domain.WorkoutExercise{
		ID: uuid.NewString(), WorkoutID: workout.ID, ExerciseID: exercise.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.ErrorIs(t, repo.DeleteExercise(ctx, exercise.ID), domain.ErrExerciseInUse)

	require.NoError(t, repo.RemoveWorkoutExercise(ctx, owner, entry.ID))
	require.NoError(t, repo.DeleteExercise(ctx, exercise.ID))
	require.ErrorIs(t, repo.DeleteExercise(ctx, exercise.ID), domain.ErrNotFound)
}

func TestRepositoryListsByCalendarDay(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)

	owner := "user-" + uuid.NewString()
	seedWorkout(t, ctx, repo, owner, "Evening", time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC))
	seedWorkout(t, ctx, repo, owner, "Morning", time.Date(2024, time.March, 11, 7, 0, 0, 0, time.UTC))

	day, err := domain.ParseLocalDate("2024-03-10")
	require.NoError(t, err)

	listed, err := repo.ListWorkouts(ctx, owner, &day)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Evening", listed[0].Name)

	all, err := repo.ListWorkouts(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func seedWorkout(t *testing.T, ctx context.Context, repo *Repository, owner, name string, startedAt time.Time) domain.Workout {
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
	require.NoError(t, repo.CreateWorkout(ctx, workout))
	return workout
}

func seedExercise(t *testing.T, ctx context.Context, repo *Repository, creator, name string) domain.Exercise {
	t.Helper()
	exercise := domain.Exercise{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: &creator,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateExercise(ctx, exercise))
	return exercise
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
