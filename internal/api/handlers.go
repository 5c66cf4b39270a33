// Package api exposes HTTP handlers for the lifting diary service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/auth"
	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutSubtree)
	mux.HandleFunc("/v1/workout-exercises/", h.workoutExerciseSubtree)
	mux.HandleFunc("/v1/sets/", h.setByID)
	mux.HandleFunc("/v1/exercises", h.exercises)
	mux.HandleFunc("/v1/exercises/", h.exerciseByID)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listWorkouts(w, r)
	case http.MethodPost:
		h.createWorkout(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.getWorkout(w, r, parts[0])
		case http.MethodPatch:
			h.updateWorkout(w, r, parts[0])
		case http.MethodDelete:
			h.deleteWorkout(w, r, parts[0])
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		}
	case len(parts) == 2 && parts[1] == "exercises" && r.Method == http.MethodPost:
		h.addExerciseToWorkout(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	}
}

func (h *Handler) workoutExerciseSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/workout-exercises/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout exercise id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.removeWorkoutExercise(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "sets" && r.Method == http.MethodPost:
		h.addSet(w, r, parts[0])
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) setByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/sets/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing set id")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.updateSet(w, r, id)
	case http.MethodDelete:
		h.deleteSet(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) exercises(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listExercises(w, r)
	case http.MethodPost:
		h.createExercise(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) exerciseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/exercises/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing exercise id")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.deleteExercise(w, r, id)
}

// requireUser resolves the acting user for primary flows: a missing or
// underscoped identity aborts the request with a hard error body.
func requireUser(w http.ResponseWriter, r *http.Request, write bool) (string, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return "", false
	}
	if !authorized(claims, write) {
		writeError(w, http.StatusForbidden, "forbidden", "insufficient scope")
		return "", false
	}
	return claims.Subject, true
}

// resolveUser resolves the acting user for secondary CRUD actions: a
// missing identity is reported as a structured failure result instead of
// a fault.
func resolveUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, MutationResult{Success: false, Message: "unauthorized"})
		return "", false
	}
	if !authorized(claims, true) {
		writeJSON(w, http.StatusForbidden, MutationResult{Success: false, Message: "insufficient scope"})
		return "", false
	}
	return claims.Subject, true
}

func authorized(claims *auth.Claims, write bool) bool {
	if write {
		return claims.HasScope(auth.ScopeWorkoutsWrite)
	}
	return claims.HasScope(auth.ScopeWorkoutsRead) || claims.HasScope(auth.ScopeWorkoutsWrite)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, false)
	if !ok {
		return
	}

	var day *domain.LocalDate
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseLocalDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	workouts, err := h.service.ListWorkouts(r.Context(), userID, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: workouts})
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r, false)
	if !ok {
		return
	}

	detail, err := h.service.GetWorkout(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateWorkoutRequest is the payload for POST /v1/workouts.
type CreateWorkoutRequest struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, true)
	if !ok {
		return
	}

	var req CreateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	workout, err := h.service.CreateWorkout(r.Context(), userID, domain.CreateWorkoutInput{
		Name:      req.Name,
		StartedAt: req.StartedAt,
	})
	if err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MutationResult{
		Success:  true,
		Workout:  workout,
		Location: "/v1/workouts/" + workout.ID,
	})
}

// UpdateWorkoutRequest is the partial payload for PATCH /v1/workouts/{id}.
// Omitted fields keep their stored values.
type UpdateWorkoutRequest struct {
	Name      *string    `json:"name"`
	StartedAt *time.Time `json:"started_at"`
}

func (h *Handler) updateWorkout(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r, true)
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	workout, err := h.service.UpdateWorkout(r.Context(), userID, id, domain.UpdateWorkoutInput{
		Name:      req.Name,
		StartedAt: req.StartedAt,
	})
	if err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResult{Success: true, Workout: workout})
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r, true)
	if !ok {
		return
	}

	if err := h.service.DeleteWorkout(r.Context(), userID, id); err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResult{Success: true})
}

// AddWorkoutExerciseRequest is the payload for POST /v1/workouts/{id}/exercises.
type AddWorkoutExerciseRequest struct {
	ExerciseID string `json:"exercise_id"`
}

func (h *Handler) addExerciseToWorkout(w http.ResponseWriter, r *http.Request, workoutID string) {
	userID, ok := resolveUser(w, r)
	if !ok {
		return
	}

	var req AddWorkoutExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	entry, err := h.service.AddExerciseToWorkout(r.Context(), userID, domain.AddWorkoutExerciseInput{
		WorkoutID:  workoutID,
		ExerciseID: req.ExerciseID,
	})
	if err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MutationResult{Success: true, WorkoutExercise: entry})
}

func (h *Handler) removeWorkoutExercise(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := resolveUser(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveExerciseFromWorkout(r.Context(), userID, id); err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResult{Success: true})
}

// AddSetRequest is the payload for POST /v1/workout-exercises/{id}/sets.
// Reps and weight arrive as loose numbers; an empty or absent value means
// "omit", never "zero".
type AddSetRequest struct {
	Reps   Number `json:"reps"`
	Weight Number `json:"weight"`
}

func (h *Handler) addSet(w http.ResponseWriter, r *http.Request, workoutExerciseID string) {
	userID, ok := resolveUser(w, r)
	if !ok {
		return
	}

	var req AddSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	reps, weight, verr := coerceSetFields(req.Reps, req.Weight)
	if verr != nil {
		writeMutationFailure(w, verr)
		return
	}

	set, err := h.service.AddSet(r.Context(), userID, domain.AddSetInput{
		WorkoutExerciseID: workoutExerciseID,
		Reps:              reps,
		Weight:            weight,
	})
	if err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MutationResult{Success: true, Set: set})
}

// UpdateSetRequest is the partial payload for PATCH /v1/sets/{id}.
type UpdateSetRequest struct {
	Reps   Number `json:"reps"`
	Weight Number `json:"weight"`
}

func (h *Handler) updateSet(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := resolveUser(w, r)
	if !ok {
		return
	}

	var req UpdateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	reps, weight, verr := coerceSetFields(req.Reps, req.Weight)
	if verr != nil {
		writeMutationFailure(w, verr)
		return
	}

	set, err := h.service.UpdateSet(r.Context(), userID, id, domain.UpdateSetInput{
		Reps:   reps,
		Weight: weight,
	})
	if err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResult{Success: true, Set: set})
}

func (h *Handler) deleteSet(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := resolveUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSet(r.Context(), userID, id); err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResult{Success: true})
}

func (h *Handler) listExercises(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r, false); !ok {
		return
	}

	exercises, err := h.service.ListExercises(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListExercisesResponse{Items: exercises})
}

// CreateExerciseRequest is the payload for POST /v1/exercises.
type CreateExerciseRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(w, r)
	if !ok {
		return
	}

	var req CreateExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	exercise, err := h.service.CreateExercise(r.Context(), userID, domain.CreateExerciseInput{Name: req.Name})
	if err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MutationResult{Success: true, Exercise: exercise})
}

func (h *Handler) deleteExercise(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := resolveUser(w, r); !ok {
		return
	}

	if err := h.service.DeleteExercise(r.Context(), id); err != nil {
		writeMutationFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResult{Success: true})
}

// coerceSetFields applies the numeric coercion rule to reps and weight.
func coerceSetFields(rawReps, rawWeight Number) (*int, *float64, *domain.ValidationError) {
	fields := make(map[string]string)
	reps, err := rawReps.Int()
	if err != nil {
		fields["reps"] = "must be a whole number"
	}
	weight, err := rawWeight.Float()
	if err != nil {
		fields["weight"] = "must be a number"
	}
	if len(fields) > 0 {
		return nil, nil, &domain.ValidationError{Fields: fields}
	}
	return reps, weight, nil
}

// MutationResult is the discriminated response shape shared by every
// mutating endpoint: success with an optional payload and location, or
// failure with either per-field errors or a single message.
type MutationResult struct {
	Success         bool                    `json:"success"`
	Message         string                  `json:"message,omitempty"`
	Errors          map[string]string       `json:"errors,omitempty"`
	Location        string                  `json:"location,omitempty"`
	Workout         *domain.Workout         `json:"workout,omitempty"`
	WorkoutExercise *domain.WorkoutExercise `json:"workout_exercise,omitempty"`
	Set             *domain.Set             `json:"set,omitempty"`
	Exercise        *domain.Exercise        `json:"exercise,omitempty"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items []domain.WorkoutDetail `json:"items"`
}

// ListExercisesResponse packages the shared library listing.
type ListExercisesResponse struct {
	Items []domain.Exercise `json:"items"`
}

// writeMutationFailure translates an expected failure into the
// structured result shape; only store faults keep their raw message.
func writeMutationFailure(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, MutationResult{Success: false, Errors: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, MutationResult{Success: false, Message: "not found"})
	case errors.Is(err, domain.ErrExerciseInUse):
		writeJSON(w, http.StatusConflict, MutationResult{Success: false, Message: "exercise is referenced by a workout"})
	default:
		writeJSON(w, http.StatusInternalServerError, MutationResult{Success: false, Message: err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
