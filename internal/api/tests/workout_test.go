package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/rongwang/fittrack-server/internal/api/testutils"
	"github.com/rongwang/fittrack-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createWorkout(t *testing.T, router http.Handler, token string, req models.WorkoutRequest) models.WorkoutResponse {
	w := testutils.PerformRequest(router, http.MethodPost, "/workouts", req, testutils.AuthHeaders(token))
	require.Equal(t, http.StatusCreated, w.Code, "create workout failed: %s", w.Body.String())

	var workout models.WorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &workout))
	return workout
}

func TestCreateWorkout(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "wuser1", "pw", "wuser1@example.com")

	workout := createWorkout(t, testCtx.Router, token, models.WorkoutRequest{
		Name:        "Morning Session",
		Description: "Leg day",
		Date:        "2025-10-23",
		StartTime:   "2025-10-23T07:30:00",
	})

	assert.Equal(t, "Morning Session", workout.Name)
	assert.Equal(t, "Leg day", workout.Description)
	assert.Equal(t, "2025-10-23", workout.Date)
	assert.Equal(t, "2025-10-23T07:30:00", workout.StartTime)
	assert.Empty(t, workout.EndTime)
	assert.Greater(t, workout.WorkoutID, int64(0))
}

func TestCreateWorkoutInvalidDate(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "wuser1b", "pw", "wuser1b@example.com")

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/workouts", models.WorkoutRequest{
		Name:      "Bad",
		Date:      "23/10/2025",
		StartTime: "2025-10-23T07:30:00",
	}, testutils.AuthHeaders(token))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid date: expected format YYYY-MM-DD.", testutils.DecodeError(t, w).Message)

	// Missing required fields never reach the service
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/workouts",
		map[string]string{"name": "no_date"}, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllAndSingleWorkout(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "wuser2", "pw", "wuser2@example.com")

	first := createWorkout(t, testCtx.Router, token, models.WorkoutRequest{
		Name: "A", Description: "a", Date: "2025-10-23", StartTime: "2025-10-23T08:00:00",
	})
	second := createWorkout(t, testCtx.Router, token, models.WorkoutRequest{
		Name: "B", Description: "b", Date: "2025-10-24", StartTime: "2025-10-24T09:00:00",
	})

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/workouts", nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)

	var all []models.WorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	ids := make(map[int64]bool)
	for _, workout := range all {
		ids[workout.WorkoutID] = true
	}
	assert.True(t, ids[first.WorkoutID])
	assert.True(t, ids[second.WorkoutID])

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet,
		fmt.Sprintf("/workouts/%d", first.WorkoutID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateWorkout(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "wuser3", "pw", "wuser3@example.com")

	workout := createWorkout(t, testCtx.Router, token, models.WorkoutRequest{
		Name: "S", Description: "x", Date: "2025-10-23", StartTime: "2025-10-23T10:00:00",
	})

	w := testutils.PerformRequest(testCtx.Router, http.MethodPut,
		fmt.Sprintf("/workouts/%d", workout.WorkoutID), models.WorkoutRequest{
			Name:        "Session Updated",
			Description: "updated",
			Date:        "2025-10-25",
			StartTime:   "2025-10-25T11:00:00",
			EndTime:     "2025-10-25T12:00:00",
		}, testutils.AuthHeaders(token))

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.WorkoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Session Updated", updated.Name)
	assert.Equal(t, "2025-10-25", updated.Date)
	assert.Equal(t, "2025-10-25T12:00:00", updated.EndTime)
	assert.Equal(t, workout.WorkoutID, updated.WorkoutID)
}

func TestDeleteWorkout(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "wuser4", "pw", "wuser4@example.com")

	workout := createWorkout(t, testCtx.Router, token, models.WorkoutRequest{
		Name: "ToDelete", Description: "del", Date: "2025-10-23", StartTime: "2025-10-23T12:00:00",
	})

	w := testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		fmt.Sprintf("/workouts/%d", workout.WorkoutID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet,
		fmt.Sprintf("/workouts/%d", workout.WorkoutID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Workout not found.", testutils.DecodeError(t, w).Message)
}

func TestWorkoutOwnershipForbidden(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, ownerToken := testutils.RegisterAndLogin(t, testCtx.Router, "ownerw", "pw", "ownerw@example.com")
	workout := createWorkout(t, testCtx.Router, ownerToken, models.WorkoutRequest{
		Name: "Own", Description: "x", Date: "2025-10-23", StartTime: "2025-10-23T06:00:00",
	})

	_, intruderToken := testutils.RegisterAndLogin(t, testCtx.Router, "intruderw", "pw", "intruderw@example.com")

	path := fmt.Sprintf("/workouts/%d", workout.WorkoutID)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, path, nil, testutils.AuthHeaders(intruderToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: you do not have permission to access this workout.", testutils.DecodeError(t, w).Message)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, path, models.WorkoutRequest{
		Name: "X", Description: "y", Date: "2025-10-23", StartTime: "2025-10-23T06:00:00",
	}, testutils.AuthHeaders(intruderToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: you do not have permission to modify this workout.", testutils.DecodeError(t, w).Message)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, testutils.AuthHeaders(intruderToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: you do not have permission to delete this workout.", testutils.DecodeError(t, w).Message)
}
