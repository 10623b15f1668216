package handlers

import (
	"net/http"

	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

type GoalHandler struct {
	goalService *services.GoalService
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (handler *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	goal, err := handler.goalService.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "loading goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (handler *GoalHandler) Put(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var goal models.Nutrition
	if !decodeJSON(w, r, &goal) {
		return
	}

	saved, err := handler.goalService.Set(r.Context(), user.ID, goal)
	if err != nil {
		writeError(w, err, "saving goal")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (handler *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if err := handler.goalService.Clear(r.Context(), user.ID); err != nil {
		writeError(w, err, "clearing goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
