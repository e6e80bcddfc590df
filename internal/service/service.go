package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/fittrack-server/internal/models"
	"github.com/rongwang/fittrack-server/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "service").Logger()

// Service defines all the business logic operations
type Service interface {
	// Identity
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)

	// Exercises
	CreateExercise(ctx context.Context, userID int64, req models.ExerciseRequest) (*models.Exercise, error)
	GetExercises(ctx context.Context, userID int64) ([]models.Exercise, error)
	GetExercise(ctx context.Context, userID, exerciseID int64) (*models.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID int64, req models.ExerciseRequest) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID int64) error

	// Workouts
	CreateWorkout(ctx context.Context, userID int64, req models.WorkoutRequest) (*models.Workout, error)
	GetWorkouts(ctx context.Context, userID int64) ([]models.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID int64) (*models.Workout, error)
	UpdateWorkout(ctx context.Context, userID, workoutID int64, req models.WorkoutRequest) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID int64) error

	// Workout sets
	CreateWorkoutSet(ctx context.Context, userID int64, req models.CreateSetRequest) (*models.WorkoutSet, error)
	GetWorkoutSets(ctx context.Context, userID, workoutID int64) ([]models.WorkoutSet, error)
	GetWorkoutSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int) (*models.WorkoutSet, error)
	UpdateWorkoutSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int, req models.UpdateSetRequest) (*models.WorkoutSet, error)
	DeleteWorkoutSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int) error

	// Personal records
	GetPersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret string, tokenDuration time.Duration) Service {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

// Identity methods
func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	// Email collision is checked before username, unconditionally
	existing, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent registration; re-resolve
			// with the same email-first priority
			if taken, lookupErr := s.repo.GetUserByEmail(ctx, req.Email); lookupErr == nil && taken != nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Info().Int64("userID", user.ID).Msg("registered user")
	return user, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	// A single identifier matches either username or email
	user, err := s.repo.GetUserByLogin(ctx, req.UsernameOrEmail)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrUnknownUser
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.LoginResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		JWTToken: token,
	}, nil
}

// Exercise methods
func (s *DefaultService) CreateExercise(ctx context.Context, userID int64, req models.ExerciseRequest) (*models.Exercise, error) {
	exercise := &models.Exercise{
		Name:        strings.ToLower(req.Name),
		Description: req.Description,
		UserID:      userID,
	}

	if err := s.repo.CreateExercise(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, fmt.Errorf("error creating exercise: %w", err)
	}

	return exercise, nil
}

func (s *DefaultService) GetExercises(ctx context.Context, userID int64) ([]models.Exercise, error) {
	exercises, err := s.repo.GetUserExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing exercises: %w", err)
	}

	return exercises, nil
}

func (s *DefaultService) GetExercise(ctx context.Context, userID, exerciseID int64) (*models.Exercise, error) {
	return s.authorizeExercise(ctx, userID, exerciseID, "access")
}

func (s *DefaultService) UpdateExercise(ctx context.Context, userID, exerciseID int64, req models.ExerciseRequest) (*models.Exercise, error) {
	exercise, err := s.authorizeExercise(ctx, userID, exerciseID, "modify")
	if err != nil {
		return nil, err
	}

	exercise.Name = strings.ToLower(req.Name)
	exercise.Description = req.Description

	if err := s.repo.UpdateExercise(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, fmt.Errorf("error updating exercise: %w", err)
	}

	return exercise, nil
}

func (s *DefaultService) DeleteExercise(ctx context.Context, userID, exerciseID int64) error {
	if _, err := s.authorizeExercise(ctx, userID, exerciseID, "delete"); err != nil {
		return err
	}

	if err := s.repo.DeleteExercise(ctx, exerciseID); err != nil {
		return fmt.Errorf("error deleting exercise: %w", err)
	}

	return nil
}

// Workout methods
func (s *DefaultService) CreateWorkout(ctx context.Context, userID int64, req models.WorkoutRequest) (*models.Workout, error) {
	date, start, end, err := parseWorkoutTimes(req)
	if err != nil {
		return nil, err
	}

	workout := &models.Workout{
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		UserID:      userID,
	}

	if err := s.repo.CreateWorkout(ctx, workout); err != nil {
		return nil, fmt.Errorf("error creating workout: %w", err)
	}

	return workout, nil
}

func (s *DefaultService) GetWorkouts(ctx context.Context, userID int64) ([]models.Workout, error) {
	workouts, err := s.repo.GetUserWorkouts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing workouts: %w", err)
	}

	return workouts, nil
}

func (s *DefaultService) GetWorkout(ctx context.Context, userID, workoutID int64) (*models.Workout, error) {
	return s.authorizeWorkout(ctx, userID, workoutID, "access")
}

func (s *DefaultService) UpdateWorkout(ctx context.Context, userID, workoutID int64, req models.WorkoutRequest) (*models.Workout, error) {
	workout, err := s.authorizeWorkout(ctx, userID, workoutID, "modify")
	if err != nil {
		return nil, err
	}

	date, start, end, err := parseWorkoutTimes(req)
	if err != nil {
		return nil, err
	}

	workout.Name = req.Name
	workout.Description = req.Description
	workout.Date = date
	workout.StartTime = start
	workout.EndTime = end

	if err := s.repo.UpdateWorkout(ctx, workout); err != nil {
		return nil, fmt.Errorf("error updating workout: %w", err)
	}

	return workout, nil
}

func (s *DefaultService) DeleteWorkout(ctx context.Context, userID, workoutID int64) error {
	if _, err := s.authorizeWorkout(ctx, userID, workoutID, "delete"); err != nil {
		return err
	}

	if err := s.repo.DeleteWorkout(ctx, workoutID); err != nil {
		return fmt.Errorf("error deleting workout: %w", err)
	}

	return nil
}

// Workout set methods
func (s *DefaultService) CreateWorkoutSet(ctx context.Context, userID int64, req models.CreateSetRequest) (*models.WorkoutSet, error) {
	// Both referenced resources must exist and belong to the requester.
	// The workout is resolved first; the first failure wins.
	if _, err := s.authorizeWorkout(ctx, userID, req.WorkoutID, "access"); err != nil {
		return nil, err
	}

	if _, err := s.authorizeExercise(ctx, userID, req.ExerciseID, "access"); err != nil {
		return nil, err
	}

	set := &models.WorkoutSet{
		WorkoutID:  req.WorkoutID,
		ExerciseID: req.ExerciseID,
		SetNumber:  req.SetNumber,
		Weight:     req.Weight,
		Reps:       req.Reps,
	}

	if err := s.repo.CreateWorkoutSet(ctx, set); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSet
		}
		return nil, fmt.Errorf("error creating workout set: %w", err)
	}

	return set, nil
}

func (s *DefaultService) GetWorkoutSets(ctx context.Context, userID, workoutID int64) ([]models.WorkoutSet, error) {
	if _, err := s.authorizeWorkout(ctx, userID, workoutID, "access"); err != nil {
		return nil, err
	}

	sets, err := s.repo.GetWorkoutSets(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("error listing workout sets: %w", err)
	}

	return sets, nil
}

func (s *DefaultService) GetWorkoutSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int) (*models.WorkoutSet, error) {
	return s.authorizeSet(ctx, userID, workoutID, exerciseID, setNumber, "access")
}

func (s *DefaultService) UpdateWorkoutSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int, req models.UpdateSetRequest) (*models.WorkoutSet, error) {
	set, err := s.authorizeSet(ctx, userID, workoutID, exerciseID, setNumber, "modify")
	if err != nil {
		return nil, err
	}

	set.Weight = req.Weight
	set.Reps = req.Reps

	if err := s.repo.UpdateWorkoutSet(ctx, set); err != nil {
		return nil, fmt.Errorf("error updating workout set: %w", err)
	}

	return set, nil
}

func (s *DefaultService) DeleteWorkoutSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int) error {
	if _, err := s.authorizeSet(ctx, userID, workoutID, exerciseID, setNumber, "delete"); err != nil {
		return err
	}

	if err := s.repo.DeleteWorkoutSet(ctx, workoutID, exerciseID, setNumber); err != nil {
		return fmt.Errorf("error deleting workout set: %w", err)
	}

	return nil
}

// GetPersonalRecords returns the max weight per exercise across all of
// the user's workouts. Recomputed on every call; an empty slice is a
// valid result for a user with no logged sets.
func (s *DefaultService) GetPersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error) {
	records, err := s.repo.GetPersonalRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error computing personal records: %w", err)
	}

	return records, nil
}

// Mediator bindings per resource kind
func (s *DefaultService) authorizeExercise(ctx context.Context, userID, exerciseID int64, action string) (*models.Exercise, error) {
	return resolveAndAuthorize(ctx, "exercise", action, userID,
		func(ctx context.Context) (*models.Exercise, error) {
			return s.repo.GetExercise(ctx, exerciseID)
		},
		func(_ context.Context, e *models.Exercise) (int64, error) {
			return e.UserID, nil
		})
}

func (s *DefaultService) authorizeWorkout(ctx context.Context, userID, workoutID int64, action string) (*models.Workout, error) {
	return resolveAndAuthorize(ctx, "workout", action, userID,
		func(ctx context.Context) (*models.Workout, error) {
			return s.repo.GetWorkout(ctx, workoutID)
		},
		func(_ context.Context, w *models.Workout) (int64, error) {
			return w.UserID, nil
		})
}

// authorizeSet resolves a set by its full triple. A set has no owner
// column of its own: the effective owner is the parent workout's owner.
func (s *DefaultService) authorizeSet(ctx context.Context, userID, workoutID, exerciseID int64, setNumber int, action string) (*models.WorkoutSet, error) {
	return resolveAndAuthorize(ctx, "set", action, userID,
		func(ctx context.Context) (*models.WorkoutSet, error) {
			return s.repo.GetWorkoutSet(ctx, workoutID, exerciseID, setNumber)
		},
		func(ctx context.Context, set *models.WorkoutSet) (int64, error) {
			workout, err := s.repo.GetWorkout(ctx, set.WorkoutID)
			if err != nil {
				return 0, err
			}
			if workout == nil {
				return 0, fmt.Errorf("workout %d missing for set", set.WorkoutID)
			}
			return workout.UserID, nil
		})
}

// Helper methods
func parseWorkoutTimes(req models.WorkoutRequest) (date, start time.Time, end *time.Time, err error) {
	date, parseErr := time.Parse(models.DateLayout, req.Date)
	if parseErr != nil {
		return date, start, nil, invalid("Invalid date: expected format YYYY-MM-DD.")
	}

	start, parseErr = time.Parse(models.DateTimeLayout, req.StartTime)
	if parseErr != nil {
		return date, start, nil, invalid("Invalid start_time: expected format YYYY-MM-DDTHH:MM:SS.")
	}

	if req.EndTime != "" {
		endTime, parseErr := time.Parse(models.DateTimeLayout, req.EndTime)
		if parseErr != nil {
			return date, start, nil, invalid("Invalid end_time: expected format YYYY-MM-DDTHH:MM:SS.")
		}
		end = &endTime
	}

	return date, start, end, nil
}

func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10), // subject
		"username": user.Username,
		"exp":      expirationTime.Unix(),
		"iat":      time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
