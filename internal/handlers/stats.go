package handlers

import (
	"net/http"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

type StatsHandler struct {
	statsService    *services.StatsService
	defaultLocation *time.Location
	now             func() time.Time
}

func NewStatsHandler(statsService *services.StatsService, defaultLocation *time.Location) *StatsHandler {
	return &StatsHandler{
		statsService:    statsService,
		defaultLocation: defaultLocation,
		now:             time.Now,
	}
}

func (handler *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	loc, err := location(r, handler.defaultLocation)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	date := handler.now().In(loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		if date, err = parseDate(raw, loc); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	stats, err := handler.statsService.Daily(r.Context(), user.ID, date, loc)
	if err != nil {
		writeError(w, err, "computing daily stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Weekly defaults to the seven days ending today. With only start_date the
// range is that day plus six; with only end_date it is the six days before.
func (handler *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	query := r.URL.Query()

	loc, err := location(r, handler.defaultLocation)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var start, end time.Time
	rawStart, rawEnd := query.Get("start_date"), query.Get("end_date")
	if rawStart != "" {
		if start, err = parseDate(rawStart, loc); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if rawEnd != "" {
		if end, err = parseDate(rawEnd, loc); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	switch {
	case rawStart == "" && rawEnd == "":
		end = handler.now().In(loc)
		start = end.AddDate(0, 0, -6)
	case rawStart == "":
		start = end.AddDate(0, 0, -6)
	case rawEnd == "":
		end = start.AddDate(0, 0, 6)
	}

	stats, err := handler.statsService.Weekly(r.Context(), user.ID, start, end, loc)
	if err != nil {
		writeError(w, err, "computing weekly stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
