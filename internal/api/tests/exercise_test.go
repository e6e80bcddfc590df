package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rongwang/fittrack-server/internal/api/testutils"
	"github.com/rongwang/fittrack-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createExercise(t *testing.T, router http.Handler, token, name, description string) models.Exercise {
	w := testutils.PerformRequest(router, http.MethodPost, "/exercises", models.ExerciseRequest{
		Name:        name,
		Description: description,
	}, testutils.AuthHeaders(token))
	require.Equal(t, http.StatusCreated, w.Code, "create exercise failed: %s", w.Body.String())

	var exercise models.Exercise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exercise))
	return exercise
}

func decodeExercise(t *testing.T, w *httptest.ResponseRecorder) models.Exercise {
	var exercise models.Exercise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exercise))
	return exercise
}

func TestCreateExerciseNormalizesName(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "exuser", "pass1234", "exuser@example.com")

	exercise := createExercise(t, testCtx.Router, token, "Bench Press", "Chest exercise")
	assert.Equal(t, "bench press", exercise.Name)
	assert.Greater(t, exercise.ID, int64(0))

	// Reading it back shows the stored, lowercased form
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet,
		fmt.Sprintf("/exercises/%d", exercise.ID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bench press", decodeExercise(t, w).Name)
}

func TestGetAllAndSingleExercise(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "exuser2", "pass1234", "exuser2@example.com")

	squat := createExercise(t, testCtx.Router, token, "Squat", "Legs")
	deadlift := createExercise(t, testCtx.Router, token, "Deadlift", "Back")

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/exercises", nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)

	var all []models.Exercise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	ids := make(map[int64]bool)
	for _, e := range all {
		ids[e.ID] = true
	}
	assert.True(t, ids[squat.ID])
	assert.True(t, ids[deadlift.ID])

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet,
		fmt.Sprintf("/exercises/%d", squat.ID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, squat.ID, decodeExercise(t, w).ID)

	// Another user's listing must not leak these rows
	_, otherToken := testutils.RegisterAndLogin(t, testCtx.Router, "exuser2b", "pass1234", "exuser2b@example.com")
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/exercises", nil, testutils.AuthHeaders(otherToken))
	assert.Equal(t, http.StatusOK, w.Code)

	var otherAll []models.Exercise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &otherAll))
	assert.Empty(t, otherAll)
}

func TestUpdateExercise(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "exuser3", "pass1234", "exuser3@example.com")

	exercise := createExercise(t, testCtx.Router, token, "OHP", "Shoulders")

	w := testutils.PerformRequest(testCtx.Router, http.MethodPut,
		fmt.Sprintf("/exercises/%d", exercise.ID), models.ExerciseRequest{
			Name:        "Overhead Press",
			Description: "Delts",
		}, testutils.AuthHeaders(token))

	assert.Equal(t, http.StatusOK, w.Code)
	updated := decodeExercise(t, w)
	assert.Equal(t, "overhead press", updated.Name)
	assert.Equal(t, "Delts", updated.Description)
	assert.Equal(t, exercise.ID, updated.ID)
}

func TestDeleteExercise(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "exuser4", "pass1234", "exuser4@example.com")

	exercise := createExercise(t, testCtx.Router, token, "Row", "Back")

	w := testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		fmt.Sprintf("/exercises/%d", exercise.ID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// A deleted resource is NotFound, never Forbidden
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet,
		fmt.Sprintf("/exercises/%d", exercise.ID), nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Exercise not found.", testutils.DecodeError(t, w).Message)
}

func TestDuplicateExerciseName(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, token := testutils.RegisterAndLogin(t, testCtx.Router, "exuser5", "pass1234", "exuser5@example.com")

	createExercise(t, testCtx.Router, token, "Lunge", "Legs")

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/exercises", models.ExerciseRequest{
		Name:        "Lunge",
		Description: "Legs",
	}, testutils.AuthHeaders(token))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t,
		"An exercise with this name already exists. You might want to edit it to make changes.",
		testutils.DecodeError(t, w).Message)

	// The comparison runs on the normalized name, so casing doesn't help
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/exercises", models.ExerciseRequest{
		Name: "LUNGE",
	}, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusConflict, w.Code)

	// A different user may reuse the name
	_, otherToken := testutils.RegisterAndLogin(t, testCtx.Router, "exuser5b", "pass1234", "exuser5b@example.com")
	createExercise(t, testCtx.Router, otherToken, "Lunge", "Legs")
}

func TestExerciseOwnershipForbidden(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, ownerToken := testutils.RegisterAndLogin(t, testCtx.Router, "owner", "ownpass", "owner@example.com")
	exercise := createExercise(t, testCtx.Router, ownerToken, "Pullup", "Back")

	_, intruderToken := testutils.RegisterAndLogin(t, testCtx.Router, "intruder", "badpass", "intruder@example.com")

	path := fmt.Sprintf("/exercises/%d", exercise.ID)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, path, nil, testutils.AuthHeaders(intruderToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: you do not have permission to access this exercise.", testutils.DecodeError(t, w).Message)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, path, models.ExerciseRequest{
		Name:        "Pullup Edited",
		Description: "Back",
	}, testutils.AuthHeaders(intruderToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: you do not have permission to modify this exercise.", testutils.DecodeError(t, w).Message)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, testutils.AuthHeaders(intruderToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: you do not have permission to delete this exercise.", testutils.DecodeError(t, w).Message)

	// The owner still sees the untouched row
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, path, nil, testutils.AuthHeaders(ownerToken))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pullup", decodeExercise(t, w).Name)
}
