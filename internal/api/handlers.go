package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/fittrack-server/internal/models"
	"github.com/rongwang/fittrack-server/internal/service"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

// Handler holds the HTTP handlers for all routes
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Hello)
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	authorized := router.Group("/")
	authorized.Use(AuthMiddleware())
	{
		authorized.POST("/exercises", h.CreateExercise)
		authorized.GET("/exercises", h.GetExercises)
		authorized.GET("/exercises/:exercise_id", h.GetExercise)
		authorized.PUT("/exercises/:exercise_id", h.UpdateExercise)
		authorized.DELETE("/exercises/:exercise_id", h.DeleteExercise)

		authorized.POST("/workouts", h.CreateWorkout)
		authorized.GET("/workouts", h.GetWorkouts)
		authorized.GET("/workouts/:workout_id", h.GetWorkout)
		authorized.PUT("/workouts/:workout_id", h.UpdateWorkout)
		authorized.DELETE("/workouts/:workout_id", h.DeleteWorkout)

		authorized.POST("/workoutexercises", h.CreateWorkoutSet)
		authorized.GET("/workouts/:workout_id/sets", h.GetWorkoutSets)
		authorized.GET("/workouts/:workout_id/sets/:exercise_id/:set_number", h.GetWorkoutSet)
		authorized.PUT("/workouts/:workout_id/sets/:exercise_id/:set_number", h.UpdateWorkoutSet)
		authorized.DELETE("/workouts/:workout_id/sets/:exercise_id/:set_number", h.DeleteWorkoutSet)

		authorized.GET("/prs", h.GetPersonalRecords)
	}
}

func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Hello!"})
}

// Identity handlers
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Exercise handlers
func (h *Handler) CreateExercise(c *gin.Context) {
	var req models.ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	exercise, err := h.svc.CreateExercise(c.Request.Context(), c.GetInt64("userId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

func (h *Handler) GetExercises(c *gin.Context) {
	exercises, err := h.svc.GetExercises(c.Request.Context(), c.GetInt64("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercises)
}

func (h *Handler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercise_id")
	if !ok {
		return
	}

	exercise, err := h.svc.GetExercise(c.Request.Context(), c.GetInt64("userId"), exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercise)
}

func (h *Handler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercise_id")
	if !ok {
		return
	}

	var req models.ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	exercise, err := h.svc.UpdateExercise(c.Request.Context(), c.GetInt64("userId"), exerciseID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercise)
}

func (h *Handler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercise_id")
	if !ok {
		return
	}

	if err := h.svc.DeleteExercise(c.Request.Context(), c.GetInt64("userId"), exerciseID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Workout handlers
func (h *Handler) CreateWorkout(c *gin.Context) {
	var req models.WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	workout, err := h.svc.CreateWorkout(c.Request.Context(), c.GetInt64("userId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWorkoutResponse(workout))
}

func (h *Handler) GetWorkouts(c *gin.Context) {
	workouts, err := h.svc.GetWorkouts(c.Request.Context(), c.GetInt64("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.WorkoutResponse, 0, len(workouts))
	for i := range workouts {
		resp = append(resp, toWorkoutResponse(&workouts[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetWorkout(c *gin.Context) {
	workoutID, ok := pathID(c, "workout_id")
	if !ok {
		return
	}

	workout, err := h.svc.GetWorkout(c.Request.Context(), c.GetInt64("userId"), workoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWorkoutResponse(workout))
}

func (h *Handler) UpdateWorkout(c *gin.Context) {
	workoutID, ok := pathID(c, "workout_id")
	if !ok {
		return
	}

	var req models.WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	workout, err := h.svc.UpdateWorkout(c.Request.Context(), c.GetInt64("userId"), workoutID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWorkoutResponse(workout))
}

func (h *Handler) DeleteWorkout(c *gin.Context) {
	workoutID, ok := pathID(c, "workout_id")
	if !ok {
		return
	}

	if err := h.svc.DeleteWorkout(c.Request.Context(), c.GetInt64("userId"), workoutID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Workout set handlers
func (h *Handler) CreateWorkoutSet(c *gin.Context) {
	var req models.CreateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	set, err := h.svc.CreateWorkoutSet(c.Request.Context(), c.GetInt64("userId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, set)
}

func (h *Handler) GetWorkoutSets(c *gin.Context) {
	workoutID, ok := pathID(c, "workout_id")
	if !ok {
		return
	}

	sets, err := h.svc.GetWorkoutSets(c.Request.Context(), c.GetInt64("userId"), workoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sets)
}

func (h *Handler) GetWorkoutSet(c *gin.Context) {
	workoutID, exerciseID, setNumber, ok := setKey(c)
	if !ok {
		return
	}

	set, err := h.svc.GetWorkoutSet(c.Request.Context(), c.GetInt64("userId"), workoutID, exerciseID, setNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *Handler) UpdateWorkoutSet(c *gin.Context) {
	workoutID, exerciseID, setNumber, ok := setKey(c)
	if !ok {
		return
	}

	var req models.UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	set, err := h.svc.UpdateWorkoutSet(c.Request.Context(), c.GetInt64("userId"), workoutID, exerciseID, setNumber, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *Handler) DeleteWorkoutSet(c *gin.Context) {
	workoutID, exerciseID, setNumber, ok := setKey(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteWorkoutSet(c.Request.Context(), c.GetInt64("userId"), workoutID, exerciseID, setNumber); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Personal record handlers
func (h *Handler) GetPersonalRecords(c *gin.Context) {
	records, err := h.svc.GetPersonalRecords(c.Request.Context(), c.GetInt64("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Helpers
func toWorkoutResponse(w *models.Workout) models.WorkoutResponse {
	resp := models.WorkoutResponse{
		WorkoutID:   w.ID,
		Name:        w.Name,
		Description: w.Description,
		Date:        w.Date.Format(models.DateLayout),
		StartTime:   w.StartTime.Format(models.DateTimeLayout),
		UserID:      w.UserID,
		CreatedAt:   w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   w.UpdatedAt.Format(time.RFC3339),
	}
	if w.EndTime != nil {
		resp.EndTime = w.EndTime.Format(models.DateTimeLayout)
	}

	return resp
}

// pathID parses a numeric path parameter, responding 400 on junk input
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: "Invalid " + name + " in path",
		})
		return 0, false
	}

	return id, true
}

// setKey parses the composite (workout, exercise, set number) identity
// from the path
func setKey(c *gin.Context) (workoutID, exerciseID int64, setNumber int, ok bool) {
	workoutID, ok = pathID(c, "workout_id")
	if !ok {
		return
	}

	exerciseID, ok = pathID(c, "exercise_id")
	if !ok {
		return
	}

	n, ok := pathID(c, "set_number")
	if !ok {
		return
	}
	setNumber = int(n)

	return workoutID, exerciseID, setNumber, true
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}

// respondError maps a classified service failure to its status code.
// Anything unclassified is a storage-layer fault: log it, return a
// generic message.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusForKind(svcErr.Kind), models.ErrorResponse{
			Status:  "error",
			Code:    codeForKind(svcErr.Kind),
			Message: svcErr.Message,
		})
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Status:  "error",
		Code:    "INTERNAL",
		Message: "An internal error occurred",
	})
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func codeForKind(kind service.Kind) string {
	switch kind {
	case service.KindInvalid:
		return "INVALID_REQUEST"
	case service.KindUnauthorized:
		return "UNAUTHORIZED"
	case service.KindForbidden:
		return "FORBIDDEN"
	case service.KindNotFound:
		return "NOT_FOUND"
	case service.KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}
