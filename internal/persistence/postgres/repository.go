// Package postgres implements the data-access layer over pgx. Every
// query that touches a workout, workout exercise, or set carries the
// owner filter; a row that exists but belongs to another user is
// indistinguishable from a row that does not exist.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/domain"
)

const foreignKeyViolation = "23503"

// Repository provides Postgres-backed persistence for the workout model.
type Repository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewRepository constructs a Repository interpreting day filters in the
// local time zone.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return NewRepositoryInLocation(pool, time.Local)
}

// NewRepositoryInLocation constructs a Repository with an explicit
// location for calendar-day filtering.
func NewRepositoryInLocation(pool *pgxpool.Pool, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{pool: pool, loc: loc}
}

const workoutColumns = `workout_id, user_id, name, started_at, created_at, updated_at`

// ListWorkouts returns the user's workouts with nested detail. With a day
// filter the result is ordered by start time descending, otherwise by
// creation time descending.
func (r *Repository) ListWorkouts(ctx context.Context, userID string, day *domain.LocalDate) ([]domain.WorkoutDetail, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id=$1 ORDER BY created_at DESC`
	args := []interface{}{userID}
	if day != nil {
		start, end := day.Bounds(r.loc)
		query = `SELECT ` + workoutColumns + ` FROM workouts
        WHERE user_id=$1 AND started_at >= $2 AND started_at < $3 ORDER BY started_at DESC`
		args = append(args, start, end)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]domain.Workout, 0)
	for rows.Next() {
		var w domain.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.assembleDetails(ctx, workouts)
}

// GetWorkout returns one workout with nested detail, or (nil, nil) when
// absent or not owned by the user.
func (r *Repository) GetWorkout(ctx context.Context, userID, workoutID string) (*domain.WorkoutDetail, error) {
	const query = `SELECT ` + workoutColumns + ` FROM workouts WHERE workout_id=$1 AND user_id=$2`

	var w domain.Workout
	err := r.pool.QueryRow(ctx, query, workoutID, userID).
		Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	details, err := r.assembleDetails(ctx, []domain.Workout{w})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// assembleDetails loads workout exercises and sets for a batch of
// workouts with one query per level.
func (r *Repository) assembleDetails(ctx context.Context, workouts []domain.Workout) ([]domain.WorkoutDetail, error) {
	details := make([]domain.WorkoutDetail, 0, len(workouts))
	if len(workouts) == 0 {
		return details, nil
	}

	workoutIDs := make([]string, 0, len(workouts))
	for _, w := range workouts {
		workoutIDs = append(workoutIDs, w.ID)
	}

	const entryQuery = `SELECT we.workout_exercise_id, we.workout_id, we.exercise_id, we.position, we.created_at,
        e.exercise_id, e.name, e.created_by, e.created_at
        FROM workout_exercises we
        JOIN exercises e ON e.exercise_id = we.exercise_id
        WHERE we.workout_id = ANY($1)
        ORDER BY we.position ASC`

	rows, err := r.pool.Query(ctx, entryQuery, workoutIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entriesByWorkout := make(map[string][]domain.WorkoutExerciseDetail)
	entryIDs := make([]string, 0)
	for rows.Next() {
		var entry domain.WorkoutExerciseDetail
		if err := rows.Scan(
			&entry.ID, &entry.WorkoutID, &entry.ExerciseID, &entry.Order, &entry.CreatedAt,
			&entry.Exercise.ID, &entry.Exercise.Name, &entry.Exercise.CreatedBy, &entry.Exercise.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Sets = make([]domain.Set, 0)
		entriesByWorkout[entry.WorkoutID] = append(entriesByWorkout[entry.WorkoutID], entry)
		entryIDs = append(entryIDs, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	setsByEntry := make(map[string][]domain.Set)
	if len(entryIDs) > 0 {
		const setQuery = `SELECT set_id, workout_exercise_id, set_number, reps, weight, created_at
            FROM sets WHERE workout_exercise_id = ANY($1) ORDER BY set_number ASC`

		setRows, err := r.pool.Query(ctx, setQuery, entryIDs)
		if err != nil {
			return nil, err
		}
		defer setRows.Close()

		for setRows.Next() {
			var set domain.Set
			if err := setRows.Scan(&set.ID, &set.WorkoutExerciseID, &set.SetNumber, &set.Reps, &set.Weight, &set.CreatedAt); err != nil {
				return nil, err
			}
			setsByEntry[set.WorkoutExerciseID] = append(setsByEntry[set.WorkoutExerciseID], set)
		}
		if err := setRows.Err(); err != nil {
			return nil, err
		}
	}

	for _, w := range workouts {
		entries := entriesByWorkout[w.ID]
		if entries == nil {
			entries = make([]domain.WorkoutExerciseDetail, 0)
		}
		for i := range entries {
			if sets := setsByEntry[entries[i].ID]; sets != nil {
				entries[i].Sets = sets
			}
		}
		details = append(details, domain.WorkoutDetail{Workout: w, Exercises: entries})
	}
	return details, nil
}

// CreateWorkout persists a new workout row.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	const stmt = `INSERT INTO workouts (workout_id, user_id, name, started_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := r.pool.Exec(ctx, stmt,
		workout.ID, workout.UserID, workout.Name, workout.StartedAt, workout.CreatedAt, workout.UpdatedAt)
	return err
}

// UpdateWorkout applies a partial update filtered by id and owner. Zero
// rows affected surfaces as ErrNotFound.
func (r *Repository) UpdateWorkout(ctx context.Context, userID, workoutID string, update domain.WorkoutUpdate) (*domain.Workout, error) {
	const stmt = `UPDATE workouts
        SET name = COALESCE($3, name), started_at = COALESCE($4, started_at), updated_at = $5
        WHERE workout_id=$1 AND user_id=$2
        RETURNING ` + workoutColumns

	var w domain.Workout
	err := r.pool.QueryRow(ctx, stmt, workoutID, userID, update.Name, update.StartedAt, time.Now().UTC()).
		Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// DeleteWorkout removes a workout; linked exercises and sets cascade.
func (r *Repository) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE workout_id=$1 AND user_id=$2`, workoutID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddWorkoutExercise confirms ownership, then appends the entry at
// max(position)+1 within a single transaction. The read-then-insert is
// not serialized beyond that; see the accepted race note in DESIGN.md.
func (r *Repository) AddWorkoutExercise(ctx context.Context, userID string, entry domain.WorkoutExercise) (*domain.WorkoutExercise, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM workouts WHERE workout_id=$1 AND user_id=$2`, entry.WorkoutID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position)+1, 0) FROM workout_exercises WHERE workout_id=$1`,
		entry.WorkoutID).Scan(&entry.Order); err != nil {
		return nil, err
	}

	const stmt = `INSERT INTO workout_exercises (workout_exercise_id, workout_id, exercise_id, position, created_at)
        VALUES ($1,$2,$3,$4,$5)`

	if _, err := tx.Exec(ctx, stmt, entry.ID, entry.WorkoutID, entry.ExerciseID, entry.Order, entry.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			// unknown exercise id
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveWorkoutExercise deletes the entry after resolving ownership
// through its workout; sets cascade away.
func (r *Repository) RemoveWorkoutExercise(ctx context.Context, userID, workoutExerciseID string) error {
	const stmt = `DELETE FROM workout_exercises we
        USING workouts w
        WHERE we.workout_exercise_id=$1 AND w.workout_id = we.workout_id AND w.user_id=$2`

	tag, err := r.pool.Exec(ctx, stmt, workoutExerciseID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddSet resolves ownership transitively, then appends the set with
// max(set_number)+1 within a single transaction.
func (r *Repository) AddSet(ctx context.Context, userID string, set domain.Set) (*domain.Set, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM workout_exercises we
        JOIN workouts w ON w.workout_id = we.workout_id
        WHERE we.workout_exercise_id=$1 AND w.user_id=$2`, set.WorkoutExerciseID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(set_number), 0) + 1 FROM sets WHERE workout_exercise_id=$1`,
		set.WorkoutExerciseID).Scan(&set.SetNumber); err != nil {
		return nil, err
	}

	const stmt = `INSERT INTO sets (set_id, workout_exercise_id, set_number, reps, weight, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	if _, err := tx.Exec(ctx, stmt, set.ID, set.WorkoutExerciseID, set.SetNumber, set.Reps, set.Weight, set.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &set, nil
}

// UpdateSet applies a partial update after resolving ownership through
// workout-exercise and workout. COALESCE keeps omitted fields untouched.
func (r *Repository) UpdateSet(ctx context.Context, userID, setID string, update domain.SetUpdate) (*domain.Set, error) {
	const stmt = `UPDATE sets s
        SET reps = COALESCE($3, s.reps), weight = COALESCE($4, s.weight)
        FROM workout_exercises we
        JOIN workouts w ON w.workout_id = we.workout_id
        WHERE s.set_id=$1 AND s.workout_exercise_id = we.workout_exercise_id AND w.user_id=$2
        RETURNING s.set_id, s.workout_exercise_id, s.set_number, s.reps, s.weight, s.created_at`

	var set domain.Set
	err := r.pool.QueryRow(ctx, stmt, setID, userID, update.Reps, update.Weight).
		Scan(&set.ID, &set.WorkoutExerciseID, &set.SetNumber, &set.Reps, &set.Weight, &set.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &set, nil
}

// DeleteSet removes a set after resolving ownership transitively.
func (r *Repository) DeleteSet(ctx context.Context, userID, setID string) error {
	const stmt = `DELETE FROM sets s
        USING workout_exercises we, workouts w
        WHERE s.set_id=$1 AND s.workout_exercise_id = we.workout_exercise_id
        AND w.workout_id = we.workout_id AND w.user_id=$2`

	tag, err := r.pool.Exec(ctx, stmt, setID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListExercises returns the shared library ordered by name; there is no
// ownership filter.
func (r *Repository) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	const query = `SELECT exercise_id, name, created_by, created_at FROM exercises ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Exercise, 0)
	for rows.Next() {
		var e domain.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// CreateExercise inserts a library entry. Names are deliberately not
// unique.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) error {
	const stmt = `INSERT INTO exercises (exercise_id, name, created_by, created_at) VALUES ($1,$2,$3,$4)`

	_, err := r.pool.Exec(ctx, stmt, exercise.ID, exercise.Name, exercise.CreatedBy, exercise.CreatedAt)
	return err
}

// DeleteExercise removes a library entry. The restrict FK turns a delete
// of a referenced exercise into ErrExerciseInUse.
func (r *Repository) DeleteExercise(ctx context.Context, exerciseID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exercises WHERE exercise_id=$1`, exerciseID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrExerciseInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
