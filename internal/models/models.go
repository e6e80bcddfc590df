package models

import (
	"time"
)

// User represents a registered account
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"` // bcrypt hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Exercise represents an exercise definition owned by a single user.
// Names are stored lowercase and are unique per owner.
type Exercise struct {
	ID          int64     `db:"exercise_id" json:"exercise_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	UserID      int64     `db:"user_id" json:"user_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Workout represents a single training session owned by a user.
// Serialized through WorkoutResponse so date fields keep the wire layout.
type Workout struct {
	ID          int64      `db:"workout_id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Date        time.Time  `db:"date"`
	StartTime   time.Time  `db:"start_time"`
	EndTime     *time.Time `db:"end_time"`
	UserID      int64      `db:"user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// WorkoutSet is one performed set, identified by the
// (workout, exercise, set number) triple. Ownership follows the workout.
type WorkoutSet struct {
	WorkoutID  int64     `db:"workout_id" json:"workout_id"`
	ExerciseID int64     `db:"exercise_id" json:"exercise_id"`
	SetNumber  int       `db:"set_number" json:"set_number"`
	Weight     int       `db:"weight" json:"weight"`
	Reps       int       `db:"reps" json:"reps"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PersonalRecord is a derived row: the heaviest set a user has logged
// for one exercise, across all of their workouts. Never stored.
type PersonalRecord struct {
	ExerciseID int64  `db:"exercise_id" json:"exercise_id"`
	Name       string `db:"name" json:"name"`
	Weight     int    `db:"weight" json:"weight"`
}
