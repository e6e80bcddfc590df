package models

// Wire layouts for workout dates. The client sends zone-less local
// timestamps, so RFC3339 parsing is not an option here.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Request models
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type WorkoutRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time"`
}

type CreateSetRequest struct {
	WorkoutID  int64 `json:"workout_id" binding:"required"`
	ExerciseID int64 `json:"exercise_id" binding:"required"`
	SetNumber  int   `json:"set_number" binding:"required,min=1"`
	Weight     int   `json:"weight" binding:"required"`
	Reps       int   `json:"reps" binding:"required"`
}

// UpdateSetRequest carries the mutable fields of a set. The identifying
// triple comes from the URL and cannot be changed; extra keys in the
// body are ignored.
type UpdateSetRequest struct {
	Weight int `json:"weight" binding:"required"`
	Reps   int `json:"reps" binding:"required"`
}

// Response models
type LoginResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	JWTToken string `json:"jwt_token"`
}

type WorkoutResponse struct {
	WorkoutID   int64  `json:"workout_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	UserID      int64  `json:"user_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
