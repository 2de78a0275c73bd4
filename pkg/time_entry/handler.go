package time_entry

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TimeSpanDTO struct {
	Id              string     `json:"id"`
	ActivityId      int        `json:"activityId"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

type TotalDTO struct {
	ActivityId int             `json:"activityId"`
	Minutes    int             `json:"minutes"`
	Hours      decimal.Decimal `json:"hours"`
}

type CloseDTO struct {
	EndTime time.Time `json:"endTime"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	spans, err := h.service.ListSpans(r.Context(), activityId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]TimeSpanDTO, 0, len(spans))
	for _, span := range spans {
		result = append(result, spanToDTO(span))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Record godoc
// @Summary Record a time span on an activity
// @Description Omitting endTime records an open span which counts once closed.
// @Tags TimeSpan
// @Accept json
// @Produce json
// @Param activityId path int true "Activity ID"
// @Param span body TimeSpanDTO true "Time span"
// @Success 201 {object} TimeSpanDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/activity/{activityId}/span [post]
// @Security XUserId
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	log.Debug("Recording time span")
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	var dto TimeSpanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	span, err := h.service.RecordSpan(r.Context(), activityId, dto.StartTime, dto.EndTime, dto.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, spanToDTO(span))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	spanId, ok := spanIdFromPath(w, r)
	if !ok {
		return
	}
	var dto TimeSpanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	span, err := h.service.UpdateSpan(r.Context(), spanId, dto.StartTime, dto.EndTime, dto.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, spanToDTO(span))
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	spanId, ok := spanIdFromPath(w, r)
	if !ok {
		return
	}
	var dto CloseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	span, err := h.service.CloseSpan(r.Context(), spanId, dto.EndTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, spanToDTO(span))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	spanId, ok := spanIdFromPath(w, r)
	if !ok {
		return
	}
	deleted, err := h.service.DeleteSpan(r.Context(), spanId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	minutes, err := h.service.TotalMinutes(r.Context(), activityId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, TotalDTO{ActivityId: activityId, Minutes: minutes, Hours: MinutesToHours(minutes)})
}

func spanIdFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	spanId, err := uuid.Parse(mux.Vars(r)["spanId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid span id", err.Error())
		return uuid.Nil, false
	}
	return spanId, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidSpan):
		rest.WriteError(w, http.StatusBadRequest, "Invalid time span", err.Error())
	case errors.Is(err, ErrSpanAlreadyClosed), errors.Is(err, activity.ErrActivityLocked):
		rest.WriteError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, ErrSpanNotFound), errors.Is(err, activity.ErrActivityNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func spanToDTO(span TimeSpan) TimeSpanDTO {
	return TimeSpanDTO{
		Id:              span.Id.String(),
		ActivityId:      span.ActivityId,
		StartTime:       span.Start,
		EndTime:         span.End,
		DurationMinutes: span.DurationMinutes,
		Notes:           span.Notes,
	}
}
