package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rongwang/fittrack-server/internal/models"
)

// ErrDuplicate is returned when an insert or update trips a uniqueness
// constraint: a taken username/email, a reused exercise name, or a
// repeated (workout, exercise, set number) triple.
var ErrDuplicate = errors.New("duplicate record")

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Exercise operations
	CreateExercise(ctx context.Context, exercise *models.Exercise) error
	GetExercise(ctx context.Context, exerciseID int64) (*models.Exercise, error)
	GetUserExercises(ctx context.Context, userID int64) ([]models.Exercise, error)
	UpdateExercise(ctx context.Context, exercise *models.Exercise) error
	DeleteExercise(ctx context.Context, exerciseID int64) error

	// Workout operations
	CreateWorkout(ctx context.Context, workout *models.Workout) error
	GetWorkout(ctx context.Context, workoutID int64) (*models.Workout, error)
	GetUserWorkouts(ctx context.Context, userID int64) ([]models.Workout, error)
	UpdateWorkout(ctx context.Context, workout *models.Workout) error
	DeleteWorkout(ctx context.Context, workoutID int64) error

	// Workout set operations
	CreateWorkoutSet(ctx context.Context, set *models.WorkoutSet) error
	GetWorkoutSet(ctx context.Context, workoutID, exerciseID int64, setNumber int) (*models.WorkoutSet, error)
	GetWorkoutSets(ctx context.Context, workoutID int64) ([]models.WorkoutSet, error)
	UpdateWorkoutSet(ctx context.Context, set *models.WorkoutSet) error
	DeleteWorkoutSet(ctx context.Context, workoutID, exerciseID int64, setNumber int) error

	// Personal records
	GetPersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// isUniqueViolation reports whether err is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Password, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

// GetUserByLogin matches the identifier against username or email
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE username = $1 OR email = $1`, usernameOrEmail)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

// Exercise repository methods
func (r *PostgresRepository) CreateExercise(ctx context.Context, exercise *models.Exercise) error {
	query := `
		INSERT INTO exercises (name, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING exercise_id
	`

	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		exercise.Name, exercise.Description, exercise.UserID,
		exercise.CreatedAt, exercise.UpdatedAt).Scan(&exercise.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}

	return err
}

func (r *PostgresRepository) GetExercise(ctx context.Context, exerciseID int64) (*models.Exercise, error) {
	query := `SELECT * FROM exercises WHERE exercise_id = $1`

	var exercise models.Exercise
	err := r.db.GetContext(ctx, &exercise, query, exerciseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Exercise not found
		}
		return nil, err
	}

	return &exercise, nil
}

func (r *PostgresRepository) GetUserExercises(ctx context.Context, userID int64) ([]models.Exercise, error) {
	query := `SELECT * FROM exercises WHERE user_id = $1 ORDER BY exercise_id`

	exercises := []models.Exercise{}
	err := r.db.SelectContext(ctx, &exercises, query, userID)
	if err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *PostgresRepository) UpdateExercise(ctx context.Context, exercise *models.Exercise) error {
	query := `
		UPDATE exercises
		SET name = $1, description = $2, updated_at = $3
		WHERE exercise_id = $4
	`

	exercise.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		exercise.Name, exercise.Description, exercise.UpdatedAt, exercise.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}

	return err
}

func (r *PostgresRepository) DeleteExercise(ctx context.Context, exerciseID int64) error {
	// Dependent workout_sets rows go with it via ON DELETE CASCADE
	_, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE exercise_id = $1`, exerciseID)
	return err
}

// Workout repository methods
func (r *PostgresRepository) CreateWorkout(ctx context.Context, workout *models.Workout) error {
	query := `
		INSERT INTO workouts (name, description, date, start_time, end_time, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING workout_id
	`

	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	return r.db.QueryRowContext(ctx, query,
		workout.Name, workout.Description, workout.Date, workout.StartTime,
		workout.EndTime, workout.UserID, workout.CreatedAt, workout.UpdatedAt).Scan(&workout.ID)
}

func (r *PostgresRepository) GetWorkout(ctx context.Context, workoutID int64) (*models.Workout, error) {
	query := `SELECT * FROM workouts WHERE workout_id = $1`

	var workout models.Workout
	err := r.db.GetContext(ctx, &workout, query, workoutID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Workout not found
		}
		return nil, err
	}

	return &workout, nil
}

func (r *PostgresRepository) GetUserWorkouts(ctx context.Context, userID int64) ([]models.Workout, error) {
	query := `SELECT * FROM workouts WHERE user_id = $1 ORDER BY workout_id`

	workouts := []models.Workout{}
	err := r.db.SelectContext(ctx, &workouts, query, userID)
	if err != nil {
		return nil, err
	}

	return workouts, nil
}

func (r *PostgresRepository) UpdateWorkout(ctx context.Context, workout *models.Workout) error {
	query := `
		UPDATE workouts
		SET name = $1, description = $2, date = $3, start_time = $4, end_time = $5, updated_at = $6
		WHERE workout_id = $7
	`

	workout.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		workout.Name, workout.Description, workout.Date, workout.StartTime,
		workout.EndTime, workout.UpdatedAt, workout.ID)

	return err
}

func (r *PostgresRepository) DeleteWorkout(ctx context.Context, workoutID int64) error {
	// Dependent workout_sets rows go with it via ON DELETE CASCADE
	_, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE workout_id = $1`, workoutID)
	return err
}

// Workout set repository methods
func (r *PostgresRepository) CreateWorkoutSet(ctx context.Context, set *models.WorkoutSet) error {
	query := `
		INSERT INTO workout_sets (workout_id, exercise_id, set_number, weight, reps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		set.WorkoutID, set.ExerciseID, set.SetNumber, set.Weight, set.Reps,
		set.CreatedAt, set.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}

	return err
}

func (r *PostgresRepository) GetWorkoutSet(ctx context.Context, workoutID, exerciseID int64, setNumber int) (*models.WorkoutSet, error) {
	query := `
		SELECT * FROM workout_sets
		WHERE workout_id = $1 AND exercise_id = $2 AND set_number = $3
	`

	var set models.WorkoutSet
	err := r.db.GetContext(ctx, &set, query, workoutID, exerciseID, setNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Set not found
		}
		return nil, err
	}

	return &set, nil
}

func (r *PostgresRepository) GetWorkoutSets(ctx context.Context, workoutID int64) ([]models.WorkoutSet, error) {
	query := `
		SELECT * FROM workout_sets
		WHERE workout_id = $1
		ORDER BY exercise_id, set_number
	`

	sets := []models.WorkoutSet{}
	err := r.db.SelectContext(ctx, &sets, query, workoutID)
	if err != nil {
		return nil, err
	}

	return sets, nil
}

func (r *PostgresRepository) UpdateWorkoutSet(ctx context.Context, set *models.WorkoutSet) error {
	// Only weight and reps are mutable; the triple is the identity
	query := `
		UPDATE workout_sets
		SET weight = $1, reps = $2, updated_at = $3
		WHERE workout_id = $4 AND exercise_id = $5 AND set_number = $6
	`

	set.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		set.Weight, set.Reps, set.UpdatedAt,
		set.WorkoutID, set.ExerciseID, set.SetNumber)

	return err
}

func (r *PostgresRepository) DeleteWorkoutSet(ctx context.Context, workoutID, exerciseID int64, setNumber int) error {
	query := `
		DELETE FROM workout_sets
		WHERE workout_id = $1 AND exercise_id = $2 AND set_number = $3
	`

	_, err := r.db.ExecContext(ctx, query, workoutID, exerciseID, setNumber)
	return err
}

// GetPersonalRecords computes the heaviest logged set per exercise for
// one user. Grouping is by exercise id, so two exercises that happen to
// share a name stay separate. Only sets reached through the user's own
// workouts are visible.
func (r *PostgresRepository) GetPersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error) {
	query := `
		SELECT e.exercise_id, e.name, MAX(ws.weight) AS weight
		FROM workout_sets ws
		JOIN workouts w ON w.workout_id = ws.workout_id
		JOIN exercises e ON e.exercise_id = ws.exercise_id
		WHERE w.user_id = $1
		GROUP BY e.exercise_id, e.name
		ORDER BY e.exercise_id
	`

	records := []models.PersonalRecord{}
	err := r.db.SelectContext(ctx, &records, query, userID)
	if err != nil {
		return nil, err
	}

	return records, nil
}
